package http

import (
	"context"

	http_router "github.com/lintang-b-s/swarmnav/pkg/http/router"
	"github.com/lintang-b-s/swarmnav/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/swarmnav/pkg/http/server"
	"github.com/lintang-b-s/swarmnav/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use. blocks until ctx is cancelled or the listener fails.
func (s *Server) Use(
	ctx context.Context,
	config http_server.Config,
	useRateLimit bool,
	routingService controllers.RoutingService,
	registry *metrics.Registry,
) error {
	server := http_router.NewAPI(s.Log)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gCtx, config, useRateLimit, routingService, registry)
	})

	return g.Wait()
}
