package usecases

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/engine/routing"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
)

var ErrGridNotLoaded = errors.New("no radar frame loaded")

// RouteSummary. graph mode answer, Polyline encodes the node coordinates of the route.
type RouteSummary struct {
	Strategy   string
	Status     string
	Reason     string
	Iterations int
	Distance   float64
	Polyline   string
	Nodes      []datastructure.NodeID
	Edges      int
	Cached     bool
}

// WxRouteSummary. raster mode answer, Positions is the convergence trace.
type WxRouteSummary struct {
	Strategy    string
	Status      string
	Reason      string
	Iterations  int
	BestFitness float64
	Positions   []datastructure.GridPosition
}

type routeCacheKey struct {
	strategy pkg.StrategyType
	start    datastructure.NodeID
	end      datastructure.NodeID
}

type RoutingService struct {
	log           *zap.Logger
	engine        RoutingEngine
	dispatcher    RouteDispatcher
	spatialIndex  SpatialIndex
	metrics       MetricsRecorder
	searchTimeout time.Duration
	cache         *lru.Cache[routeCacheKey, RouteSummary]
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine, dispatcher RouteDispatcher, spatialIndex SpatialIndex,
	metrics MetricsRecorder, searchTimeout time.Duration, cacheSize int) (*RoutingService, error) {
	cache, err := lru.New[routeCacheKey, RouteSummary](cacheSize)
	if err != nil {
		return nil, err
	}
	return &RoutingService{
		log:           log,
		engine:        engine,
		dispatcher:    dispatcher,
		spatialIndex:  spatialIndex,
		metrics:       metrics,
		searchTimeout: searchTimeout,
		cache:         cache,
	}, nil
}

func (rs *RoutingService) Strategies() []routing.StrategyInfo {
	return rs.dispatcher.GetStrategies()
}

// ComputeRoute. snaps both coordinates to their nearest graph node, then searches between them.
func (rs *RoutingService) ComputeRoute(ctx context.Context, strategy pkg.StrategyType, origLat, origLon, dstLat,
	dstLon float64) (RouteSummary, error) {
	start, end, err := rs.snapOrigDestToNearbyNodes(origLat, origLon, dstLat, dstLon)
	if err != nil {
		return RouteSummary{}, err
	}
	return rs.ComputeRouteBetweenNodes(ctx, strategy, start, end)
}

func (rs *RoutingService) ComputeRouteBetweenNodes(ctx context.Context, strategy pkg.StrategyType, start,
	end datastructure.NodeID) (RouteSummary, error) {
	// greedy is the only deterministic strategy, the swarms are reseeded per call
	key := routeCacheKey{strategy: strategy, start: start, end: end}
	if strategy == pkg.GREEDY {
		summary, ok := rs.cache.Get(key)
		rs.metrics.RecordCacheLookup(ok)
		if ok {
			summary.Cached = true
			return summary, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, rs.searchTimeout)
	defer cancel()

	graph := rs.engine.GetGraph()
	begin := time.Now()
	res, err := rs.dispatcher.GenerateRoute(ctx, strategy, datastructure.NewRouteDetails(start, end), graph, pkg.GRAPH)
	if err != nil {
		return RouteSummary{}, err
	}
	route := res.GetRoute()
	rs.metrics.RecordSearch(strategy.String(), "graph", res.GetStatus().String(), time.Since(begin),
		res.GetIterations(), route.Len())

	summary := RouteSummary{
		Strategy:   strategy.String(),
		Status:     res.GetStatus().String(),
		Reason:     reasonString(res.GetReason()),
		Iterations: res.GetIterations(),
		Distance:   util.RoundFloat(route.GetLength(), 2),
		Polyline:   routePolyline(graph, route),
		Nodes:      route.GetNodeSequence(),
		Edges:      route.Len(),
	}

	rs.log.Debug("route computed", zap.String("strategy", summary.Strategy), zap.String("status", summary.Status),
		zap.Int("edges", summary.Edges), zap.Duration("took", time.Since(begin)))

	if strategy == pkg.GREEDY && res.GetStatus() == routing.SUCCESS {
		rs.cache.Add(key, summary)
	}
	return summary, nil
}

// ComputeWxRoute. observer may be nil, it is called once per simulation iteration.
func (rs *RoutingService) ComputeWxRoute(ctx context.Context, strategy pkg.StrategyType, start,
	end datastructure.GridPosition, observer routing.IterationObserver) (WxRouteSummary, error) {
	grid := rs.engine.GetGrid()
	if grid == nil {
		return WxRouteSummary{}, util.WrapErrorf(ErrGridNotLoaded, util.ErrNotFound, "raster search with %s",
			strategy)
	}

	ctx, cancel := context.WithTimeout(ctx, rs.searchTimeout)
	defer cancel()

	begin := time.Now()
	res, err := rs.dispatcher.GenerateRouteRealNumObserved(ctx, strategy, datastructure.NewWxRouteDetails(start, end),
		grid, observer)
	if err != nil {
		return WxRouteSummary{}, err
	}
	trace := res.GetRoute()
	rs.metrics.RecordSearch(strategy.String(), "wx", res.GetStatus().String(), time.Since(begin),
		res.GetIterations(), trace.Len())

	return WxRouteSummary{
		Strategy:    strategy.String(),
		Status:      res.GetStatus().String(),
		Reason:      reasonString(res.GetReason()),
		Iterations:  res.GetIterations(),
		BestFitness: res.GetBestFitness(),
		Positions:   trace.GetPositions(),
	}, nil
}

func reasonString(reason error) string {
	if reason == nil {
		return ""
	}
	return reason.Error()
}
