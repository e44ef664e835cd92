package engine

import (
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/engine/routing"
	"github.com/lintang-b-s/swarmnav/pkg/metrics"
	"github.com/lintang-b-s/swarmnav/pkg/spatialindex"
	"github.com/lintang-b-s/swarmnav/pkg/wxgrid"
	"go.uber.org/zap"
)

// Engine. everything a query needs, built once at startup and shared read-only afterwards.
type Engine struct {
	graph      *datastructure.Graph
	grid       *datastructure.HazardGrid
	dispatcher *routing.Dispatcher
	rtree      *spatialindex.Rtree
	metrics    *metrics.Registry
}

func (e *Engine) GetGraph() *datastructure.Graph {
	return e.graph
}

// GetGrid. nil when no radar frame was loaded.
func (e *Engine) GetGrid() *datastructure.HazardGrid {
	return e.grid
}

func (e *Engine) GetDispatcher() *routing.Dispatcher {
	return e.dispatcher
}

func (e *Engine) GetSpatialIndex() *spatialindex.Rtree {
	return e.rtree
}

func (e *Engine) GetMetrics() *metrics.Registry {
	return e.metrics
}

// NewEngine. gridFilePath may be empty, raster searches then answer with ErrBadParamInput.
func NewEngine(graphFilePath, gridFilePath string, logger *zap.Logger) (*Engine, error) {
	logger.Info("Starting swarm route search engine...")

	cfg := routing.NewConfigFromViper()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Reading graph from ", zap.String("graphFilePath", graphFilePath))
	graph, err := datastructure.ReadGraph(graphFilePath)
	if err != nil {
		return nil, err
	}

	var grid *datastructure.HazardGrid
	if gridFilePath != "" {
		logger.Info("Reading radar frame from ", zap.String("gridFilePath", gridFilePath))
		grid, err = wxgrid.NewGridLoader(logger).LoadFile(gridFilePath)
		if err != nil {
			return nil, err
		}
	}

	return NewEngineFromParts(graph, grid, cfg, metrics.NewRegistry(), logger), nil
}

func NewEngineFromParts(graph *datastructure.Graph, grid *datastructure.HazardGrid, cfg routing.Config,
	registry *metrics.Registry, logger *zap.Logger) *Engine {
	rt := spatialindex.NewRtree()
	rt.Build(graph, logger)

	blocked := 0
	if grid != nil {
		blocked = grid.NumberOfBlockedCells()
	}
	registry.SetMapStats(graph.NumberOfNodes(), graph.NumberOfEdges(), blocked)

	logger.Sugar().Infof("engine ready: %d nodes, %d edges, %d blocked grid cells", graph.NumberOfNodes(),
		graph.NumberOfEdges(), blocked)
	return &Engine{
		graph:      graph,
		grid:       grid,
		dispatcher: routing.NewDispatcher(cfg, logger),
		rtree:      rt,
		metrics:    registry,
	}
}
