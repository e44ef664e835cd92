package routing

import (
	"context"
	"sort"

	"github.com/lintang-b-s/swarmnav/pkg"
	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
)

type strategyEntry struct {
	generator        RouteGenerator
	realNum          RealNumRouteGenerator
	supportsRealMode bool
}

type StrategyInfo struct {
	Type             pkg.StrategyType `json:"type"`
	Name             string           `json:"name"`
	SupportsRealMode bool             `json:"supports_real_mode"`
}

// Dispatcher. maps a strategy selector to its implementation. holds no per call state, safe for concurrent use.
type Dispatcher struct {
	strategies map[pkg.StrategyType]strategyEntry
	logger     *zap.Logger
}

func NewDispatcher(cfg Config, logger *zap.Logger) *Dispatcher {
	pso := NewPSO(cfg.PSO, cfg.DiscretePSO, logger)

	d := &Dispatcher{
		strategies: make(map[pkg.StrategyType]strategyEntry, 4),
		logger:     logger,
	}
	d.Register(pkg.EMPTY, emptyStrategy{}, nil)
	d.Register(pkg.GREEDY, NewGreedy(cfg.Greedy, logger), nil)
	d.Register(pkg.ACO, NewACO(cfg.ACO, logger), nil)
	d.Register(pkg.PSO, pso, pso)
	return d
}

// Register. realNum nil marks the strategy as graph only.
func (d *Dispatcher) Register(strategy pkg.StrategyType, generator RouteGenerator, realNum RealNumRouteGenerator) {
	d.strategies[strategy] = strategyEntry{
		generator:        generator,
		realNum:          realNum,
		supportsRealMode: realNum != nil,
	}
}

func (d *Dispatcher) SupportsRealMode(strategy pkg.StrategyType) bool {
	entry, ok := d.strategies[strategy]
	return ok && entry.supportsRealMode
}

func (d *Dispatcher) GetStrategies() []StrategyInfo {
	infos := make([]StrategyInfo, 0, len(d.strategies))
	for st, entry := range d.strategies {
		infos = append(infos, StrategyInfo{
			Type:             st,
			Name:             st.String(),
			SupportsRealMode: entry.supportsRealMode,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Type < infos[j].Type
	})
	return infos
}

func (d *Dispatcher) GenerateRoute(ctx context.Context, strategy pkg.StrategyType, details da.RouteDetails,
	graph *da.Graph, mode pkg.GenerationMode) (RouteResult, error) {
	entry, ok := d.strategies[strategy]
	if !ok {
		err := util.WrapErrorf(nil, ErrUnknownStrategy, "strategy %d is not registered", strategy)
		return NewRouteResult(da.NewEmptyRoute(), FAILED, err, 0), err
	}
	if graph == nil {
		err := util.WrapErrorf(nil, util.ErrBadParamInput, "road graph is not loaded")
		return NewRouteResult(da.NewEmptyRoute(), FAILED, err, 0), err
	}

	d.logger.Debug("generating route", zap.String("strategy", strategy.String()),
		zap.Int64("start", int64(details.GetStartingNode())), zap.Int64("end", int64(details.GetEndingNode())),
		zap.Uint8("mode", uint8(mode)))
	return entry.generator.GenerateRoute(ctx, graph, details)
}

// GenerateRouteRealNum. strategies without raster support answer with an empty trace, not an error.
func (d *Dispatcher) GenerateRouteRealNum(ctx context.Context, strategy pkg.StrategyType, details da.WxRouteDetails,
	grid *da.HazardGrid) (PixRouteResult, error) {
	return d.GenerateRouteRealNumObserved(ctx, strategy, details, grid, nil)
}

func (d *Dispatcher) GenerateRouteRealNumObserved(ctx context.Context, strategy pkg.StrategyType,
	details da.WxRouteDetails, grid *da.HazardGrid, observer IterationObserver) (PixRouteResult, error) {
	entry, ok := d.strategies[strategy]
	if !ok {
		err := util.WrapErrorf(nil, ErrUnknownStrategy, "strategy %d is not registered", strategy)
		return NewPixRouteResult(da.NewEmptyPixRoute(), FAILED, err, 0, 0), err
	}
	if !entry.supportsRealMode {
		return NewPixRouteResult(da.NewEmptyPixRoute(), FAILED, ErrRealModeUnsupported, 0, 0), nil
	}

	if observable, ok := entry.realNum.(ObservableRealNumRouteGenerator); ok && observer != nil {
		return observable.GenerateRouteRealNumObserved(ctx, details, grid, observer)
	}
	return entry.realNum.GenerateRouteRealNum(ctx, details, grid)
}

type DispatchRequest struct {
	Strategy  pkg.StrategyType
	Mode      pkg.GenerationMode
	Details   da.RouteDetails
	WxDetails da.WxRouteDetails
	Graph     *da.Graph
	Grid      *da.HazardGrid
}

// DispatchResult. Route is set in GRAPH mode, PixRoute in WX mode.
type DispatchResult struct {
	Mode     pkg.GenerationMode
	Route    RouteResult
	PixRoute PixRouteResult
}

func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (DispatchResult, error) {
	switch req.Mode {
	case pkg.GRAPH:
		res, err := d.GenerateRoute(ctx, req.Strategy, req.Details, req.Graph, req.Mode)
		return DispatchResult{Mode: req.Mode, Route: res}, err
	case pkg.WX:
		res, err := d.GenerateRouteRealNum(ctx, req.Strategy, req.WxDetails, req.Grid)
		return DispatchResult{Mode: req.Mode, PixRoute: res}, err
	default:
		return DispatchResult{Mode: req.Mode}, util.WrapErrorf(nil, util.ErrBadParamInput,
			"unknown generation mode %d", req.Mode)
	}
}
