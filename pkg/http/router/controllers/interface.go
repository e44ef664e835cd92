package controllers

import (
	"context"

	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/engine/routing"
	"github.com/lintang-b-s/swarmnav/pkg/http/usecases"
)

type RoutingService interface {
	ComputeRoute(ctx context.Context, strategy pkg.StrategyType, origLat, origLon, dstLat,
		dstLon float64) (usecases.RouteSummary, error)
	ComputeRouteBetweenNodes(ctx context.Context, strategy pkg.StrategyType, start,
		end datastructure.NodeID) (usecases.RouteSummary, error)
	ComputeWxRoute(ctx context.Context, strategy pkg.StrategyType, start, end datastructure.GridPosition,
		observer routing.IterationObserver) (usecases.WxRouteSummary, error)
	Strategies() []routing.StrategyInfo
}
