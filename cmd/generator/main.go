package main

import (
	"context"
	"flag"
	"time"

	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/engine"
	"github.com/lintang-b-s/swarmnav/pkg/engine/routing"
	"github.com/lintang-b-s/swarmnav/pkg/logger"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
)

// one-shot benchmark: load the map, run a strategy a few times, log what came out.
var (
	graphFile = flag.String("graph", "./data/map.graph", "road graph produced by cmd/preprocessor")
	gridFile  = flag.String("grid", "", "radar frame (png), required for -mode wx")
	strategy  = flag.String("strategy", "aco", "empty, greedy, aco or pso")
	mode      = flag.String("mode", "graph", "graph or wx")
	startNode = flag.Int64("start", 0, "start node id (graph mode)")
	endNode   = flag.Int64("end", 0, "end node id (graph mode)")
	startX    = flag.Float64("start_x", 10, "start cell x (wx mode)")
	startY    = flag.Float64("start_y", 10, "start cell y (wx mode)")
	endX      = flag.Float64("end_x", 90, "end cell x (wx mode)")
	endY      = flag.Float64("end_y", 90, "end cell y (wx mode)")
	runs      = flag.Int("runs", 1, "number of repetitions")
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

	st, ok := pkg.GetStrategyType(*strategy)
	if !ok {
		logger.Fatal("unknown strategy", zap.String("strategy", *strategy))
	}
	genMode := pkg.GRAPH
	if *mode == "wx" {
		genMode = pkg.WX
	}

	routingEngine, err := engine.NewEngine(*graphFile, *gridFile, logger)
	if err != nil {
		logger.Fatal("loading engine", zap.Error(err))
	}

	req := routing.DispatchRequest{
		Strategy:  st,
		Mode:      genMode,
		Details:   datastructure.NewRouteDetails(datastructure.NodeID(*startNode), datastructure.NodeID(*endNode)),
		WxDetails: datastructure.NewWxRouteDetails(datastructure.NewGridPosition(*startX, *startY), datastructure.NewGridPosition(*endX, *endY)),
		Graph:     routingEngine.GetGraph(),
		Grid:      routingEngine.GetGrid(),
	}

	var total time.Duration
	for i := 0; i < *runs; i++ {
		begin := time.Now()
		res, err := routingEngine.GetDispatcher().Dispatch(context.Background(), req)
		took := time.Since(begin)
		total += took
		if err != nil {
			logger.Fatal("route generation failed", zap.Error(err))
		}

		if genMode == pkg.GRAPH {
			route := res.Route.GetRoute()
			logger.Info("route generated", zap.Int("run", i), zap.String("status", res.Route.GetStatus().String()),
				zap.Int("edges", route.Len()), zap.Float64("length", util.RoundFloat(route.GetLength(), 2)),
				zap.Int("iterations", res.Route.GetIterations()), zap.Duration("took", took))
			continue
		}
		logger.Info("raster route generated", zap.Int("run", i), zap.String("status", res.PixRoute.GetStatus().String()),
			zap.Int("tracePositions", res.PixRoute.GetRoute().Len()), zap.Float64("bestFitness", res.PixRoute.GetBestFitness()),
			zap.Int("iterations", res.PixRoute.GetIterations()), zap.Duration("took", took))
	}

	logger.Sugar().Infof("%d runs of %s finished, average %s", *runs, st, total/time.Duration(util.MaxOf(*runs, 1)))
}
