package routing

import (
	"context"
	"errors"
	"math/rand"
	"time"

	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
)

var (
	ErrUnknownNode            = da.ErrUnknownNode
	ErrNoAdjacency            = errors.New("node has no adjacency")
	ErrDegenerateDistribution = errors.New("all candidate weights are zero")
	ErrMaxStepsExceeded       = errors.New("max steps exceeded")
	ErrMaxIterationsExceeded  = errors.New("max iterations exceeded")
	ErrNoPathFound            = errors.New("no path found")
	ErrRealModeUnsupported    = errors.New("strategy does not support real number mode")
	ErrUnknownStrategy        = errors.New("unknown strategy")
	ErrInvalidPosition        = errors.New("position outside grid")
)

type SearchStatus uint8

const (
	SUCCESS SearchStatus = iota
	PARTIAL
	FAILED
)

func (s SearchStatus) String() string {
	switch s {
	case SUCCESS:
		return "success"
	case PARTIAL:
		return "partial"
	default:
		return "failed"
	}
}

// RouteResult. reason is nil on success, otherwise it tells why the route is partial or empty.
type RouteResult struct {
	route      da.Route
	status     SearchStatus
	reason     error
	iterations int
}

func NewRouteResult(route da.Route, status SearchStatus, reason error, iterations int) RouteResult {
	return RouteResult{
		route:      route,
		status:     status,
		reason:     reason,
		iterations: iterations,
	}
}

func (rr RouteResult) GetRoute() da.Route {
	return rr.route
}

func (rr RouteResult) GetStatus() SearchStatus {
	return rr.status
}

func (rr RouteResult) GetReason() error {
	return rr.reason
}

func (rr RouteResult) GetIterations() int {
	return rr.iterations
}

type PixRouteResult struct {
	route       da.PixRoute
	status      SearchStatus
	reason      error
	iterations  int
	bestFitness float64
}

func NewPixRouteResult(route da.PixRoute, status SearchStatus, reason error, iterations int,
	bestFitness float64) PixRouteResult {
	return PixRouteResult{
		route:       route,
		status:      status,
		reason:      reason,
		iterations:  iterations,
		bestFitness: bestFitness,
	}
}

func (pr PixRouteResult) GetRoute() da.PixRoute {
	return pr.route
}

func (pr PixRouteResult) GetStatus() SearchStatus {
	return pr.status
}

func (pr PixRouteResult) GetReason() error {
	return pr.reason
}

func (pr PixRouteResult) GetIterations() int {
	return pr.iterations
}

func (pr PixRouteResult) GetBestFitness() float64 {
	return pr.bestFitness
}

type RouteGenerator interface {
	GenerateRoute(ctx context.Context, graph *da.Graph, details da.RouteDetails) (RouteResult, error)
}

type RealNumRouteGenerator interface {
	GenerateRouteRealNum(ctx context.Context, details da.WxRouteDetails, grid *da.HazardGrid) (PixRouteResult, error)
}

// IterationObserver is called once per simulation step with the current global best.
type IterationObserver func(iteration int, globalBest da.GridPosition, fitness float64)

type ObservableRealNumRouteGenerator interface {
	RealNumRouteGenerator
	GenerateRouteRealNumObserved(ctx context.Context, details da.WxRouteDetails, grid *da.HazardGrid,
		observer IterationObserver) (PixRouteResult, error)
}

// RandomSource. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	Int63() int64
	Intn(n int) int
}

type RandomSourceFactory func() RandomSource

// NewSeededRandomSourceFactory. seed 0 means a fresh time based seed per call.
func NewSeededRandomSourceFactory(seed int64) RandomSourceFactory {
	return func() RandomSource {
		if seed == 0 {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return rand.New(rand.NewSource(seed))
	}
}

// childRandoms. one generator per agent, seeded in agent order so results do not depend on scheduling.
func childRandoms(master RandomSource, n int) []*rand.Rand {
	rngs := make([]*rand.Rand, n)
	for i := 0; i < n; i++ {
		rngs[i] = rand.New(rand.NewSource(master.Int63()))
	}
	return rngs
}

// traverse. edge from->to with the length recomputed from the current node coordinates. keeps the highway type
// of the stored edge when there is one.
func traverse(graph *da.Graph, from, to da.NodeID) (da.Edge, error) {
	e, err := da.CreateEdge(graph, from, to)
	if err != nil {
		return da.Edge{}, err
	}
	if stored, ok := graph.GetEdge(from, to); ok {
		return da.NewEdge(from, to, e.GetLength(), stored.GetHighwayType()), nil
	}
	return e, nil
}

// emptyStrategy. registered no-op, disables search without special casing callers.
type emptyStrategy struct{}

func (emptyStrategy) GenerateRoute(ctx context.Context, graph *da.Graph, details da.RouteDetails) (RouteResult, error) {
	return NewRouteResult(da.NewEmptyRoute(), SUCCESS, nil, 0), nil
}
