package routing

import (
	"context"
	"math"

	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
)

// Greedy. deterministic best-first walk without a priority queue or a global visited set. only the edges already
// in the route are excluded, so longer cycles through other nodes are possible.
type Greedy struct {
	cfg    GreedyConfig
	logger *zap.Logger
}

func NewGreedy(cfg GreedyConfig, logger *zap.Logger) *Greedy {
	return &Greedy{
		cfg:    cfg,
		logger: logger,
	}
}

func (gr *Greedy) GenerateRoute(ctx context.Context, graph *da.Graph, details da.RouteDetails) (RouteResult, error) {
	start, end := details.GetStartingNode(), details.GetEndingNode()
	if err := checkEndpoints(graph, start, end); err != nil {
		return NewRouteResult(da.NewEmptyRoute(), FAILED, err, 0), err
	}

	route := da.NewEmptyRoute()
	current := start
	steps := 0
	for current != end {
		if util.StopConcurrentOperation(ctx) {
			return partialOrFailed(route, ctx.Err(), steps), nil
		}
		if gr.cfg.MaxSteps > 0 && steps >= gr.cfg.MaxSteps {
			gr.logger.Warn("greedy walk reached its step cap", zap.Int("steps", steps))
			return partialOrFailed(route, ErrMaxStepsExceeded, steps), nil
		}

		next, ok, err := gr.selectNextBest(graph, route, current, end)
		if err != nil {
			return NewRouteResult(route, FAILED, err, steps), err
		}
		if !ok {
			gr.logger.Debug("cannot select next best node", zap.Int64("node", int64(current)))
			reason := util.WrapErrorf(nil, ErrNoPathFound, "greedy walk stuck at node %d", current)
			if route.IsEmpty() {
				reason = util.WrapErrorf(nil, ErrNoAdjacency, "node %d has no usable edges", current)
			}
			return partialOrFailed(route, reason, steps), nil
		}

		route.Append(next)
		current = next.GetTo()
		steps++
	}

	return NewRouteResult(route, SUCCESS, nil, steps), nil
}

// selectNextBest. ties keep adjacency order.
func (gr *Greedy) selectNextBest(graph *da.Graph, route da.Route, current, end da.NodeID) (da.Edge, bool, error) {
	adj, _ := graph.GetAdjacency(current)

	var (
		best      da.Edge
		bestScore = math.Inf(1)
		found     bool
	)
	for _, to := range adj {
		e, err := traverse(graph, current, to)
		if err != nil {
			return da.Edge{}, false, err
		}
		if route.Contains(e) {
			continue
		}

		var score float64
		switch gr.cfg.Metric {
		case EDGE_LENGTH:
			score = e.GetLength()
		default:
			score, err = graph.Distance(to, end)
			if err != nil {
				return da.Edge{}, false, err
			}
		}

		if !found || score < bestScore {
			best, bestScore, found = e, score, true
		}
	}
	return best, found, nil
}

func checkEndpoints(graph *da.Graph, start, end da.NodeID) error {
	if _, ok := graph.GetNode(start); !ok {
		return util.WrapErrorf(nil, ErrUnknownNode, "starting node %d not found", start)
	}
	if _, ok := graph.GetNode(end); !ok {
		return util.WrapErrorf(nil, ErrUnknownNode, "ending node %d not found", end)
	}
	return nil
}

func partialOrFailed(route da.Route, reason error, iterations int) RouteResult {
	if route.IsEmpty() {
		return NewRouteResult(route, FAILED, reason, iterations)
	}
	return NewRouteResult(route, PARTIAL, reason, iterations)
}
