package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/swarmnav/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/swarmnav/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/swarmnav/pkg/http/server"
	"github.com/lintang-b-s/swarmnav/pkg/metrics"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"
)

type API struct {
	log     *zap.Logger
	hub     *controllers.Hub
	limiter *rate.Limiter
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			swarmnav API
//	@version		1.0
//	@description	multi-strategy (greedy, ant colony, particle swarm) route search over an openstreetmap road graph and a radar hazard grid.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Handler(config http_server.Config, useRateLimit bool, routingService controllers.RoutingService,
	registry *metrics.Registry) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", RequestIDHeader},
		ExposedHeaders:   []string{"Link", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)
	router.Handler(http.MethodGet, "/metrics", registry.Handler())

	group := router_helper.NewRouteGroup(router, "/api")
	routingRoutes := controllers.New(routingService, api.log)
	routingRoutes.Routes(group)

	api.websocketRoutes(router, routingService, registry)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log), Metrics(registry)}
	if useRateLimit {
		api.limiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), max(1, int(2*config.RateLimitRPS)))
		mwChain = append(mwChain, api.Limit)
	}
	return alice.New(mwChain...).Then(router)
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	useRateLimit bool,
	routingService controllers.RoutingService,
	registry *metrics.Registry,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(config, useRateLimit, routingService, registry), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server",
			zap.Int("websocketSubscribers", api.hub.NumberOfSubscribers()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
