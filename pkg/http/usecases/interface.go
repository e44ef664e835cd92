package usecases

import (
	"context"
	"time"

	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/engine/routing"
)

type RoutingEngine interface {
	GetGraph() *datastructure.Graph
	GetGrid() *datastructure.HazardGrid
}

type RouteDispatcher interface {
	GenerateRoute(ctx context.Context, strategy pkg.StrategyType, details datastructure.RouteDetails,
		graph *datastructure.Graph, mode pkg.GenerationMode) (routing.RouteResult, error)
	GenerateRouteRealNumObserved(ctx context.Context, strategy pkg.StrategyType, details datastructure.WxRouteDetails,
		grid *datastructure.HazardGrid, observer routing.IterationObserver) (routing.PixRouteResult, error)
	GetStrategies() []routing.StrategyInfo
}

type SpatialIndex interface {
	NearestNode(lat, lon float64) (datastructure.NodeID, float64, error)
}

type MetricsRecorder interface {
	RecordSearch(strategy, mode, status string, duration time.Duration, iterations, routeLen int)
	RecordCacheLookup(hit bool)
}
