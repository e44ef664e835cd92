package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/swarmnav/pkg/engine"
	"github.com/lintang-b-s/swarmnav/pkg/http"
	http_server "github.com/lintang-b-s/swarmnav/pkg/http/server"
	"github.com/lintang-b-s/swarmnav/pkg/http/usecases"
	"github.com/lintang-b-s/swarmnav/pkg/logger"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
)

var (
	graphFile    = flag.String("graph", "./data/map.graph", "road graph produced by cmd/preprocessor")
	gridFile     = flag.String("grid", "", "radar frame (png) for raster searches, optional")
	useRateLimit = flag.Bool("rate_limit", true, "limit api requests to RATE_LIMIT_RPS")
	cacheSize    = flag.Int("route_cache_size", 1024, "greedy route cache entries")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	routingEngine, err := engine.NewEngine(*graphFile, *gridFile, logger)
	if err != nil {
		logger.Fatal("loading engine", zap.Error(err))
	}

	config := http_server.NewConfigFromViper()
	routingService, err := usecases.NewRoutingService(logger, routingEngine, routingEngine.GetDispatcher(),
		routingEngine.GetSpatialIndex(), routingEngine.GetMetrics(), config.SearchTimeout, *cacheSize)
	if err != nil {
		logger.Fatal("creating routing service", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := http.NewServer(logger)
	if err := api.Use(ctx, config, *useRateLimit, routingService, routingEngine.GetMetrics()); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
	logger.Info("swarmnav routing engine server stopped")
}
