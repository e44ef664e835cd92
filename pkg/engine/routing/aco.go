package routing

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/lintang-b-s/swarmnav/pkg/concurrent"
	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
)

// added to both distances to the goal before taking their difference
const distanceToGoalEpsilon = 0.0001

// deposit of a used edge is traceDelta / (length * usedEdgeDepositDivisor)
const usedEdgeDepositDivisor = 50.0

type optimizerMode uint8

const (
	// best route = shortest route that reached the destination
	TARGET_MODE optimizerMode = iota
	// best route = smallest remaining distance to the destination. never switches back.
	DISTANCE_MODE
)

// PheromoneTable. directed edge -> pheromone level. edges without an entry read as the initial level.
type PheromoneTable struct {
	levels  map[da.EdgeKey]float64
	initial float64
	floor   float64
}

func NewPheromoneTable(initial, floor float64) *PheromoneTable {
	return &PheromoneTable{
		levels:  make(map[da.EdgeKey]float64),
		initial: initial,
		floor:   floor,
	}
}

func (pt *PheromoneTable) Level(from, to da.NodeID) float64 {
	if l, ok := pt.levels[da.NewEdgeKey(from, to)]; ok {
		return l
	}
	return pt.initial
}

func (pt *PheromoneTable) Len() int {
	return len(pt.levels)
}

func (pt *PheromoneTable) ForLevels(handle func(key da.EdgeKey, level float64)) {
	for k, l := range pt.levels {
		handle(k, l)
	}
}

// Update. evaporation, then the round deposits, then the elitist deposit of the best route. every entry is
// clamped to the floor afterwards, so no level is ever zero or negative.
func (pt *PheromoneTable) Update(evaporation float64, roundDeposits []map[da.EdgeKey]float64, best da.Route,
	traceDelta float64) {
	for k, l := range pt.levels {
		pt.levels[k] = l * (1 - evaporation)
	}

	for _, deposits := range roundDeposits {
		for k, amount := range deposits {
			pt.levels[k] = pt.Level(k.From, k.To) + amount
		}
	}

	for _, e := range best.GetEdges() {
		pt.levels[e.GetKey()] = pt.Level(e.GetFrom(), e.GetTo()) + traceDelta/depositLength(e)
	}

	for k, l := range pt.levels {
		if l < pt.floor || math.IsNaN(l) {
			pt.levels[k] = pt.floor
		}
	}
}

// zero length edges exist between nodes sharing coordinates
func depositLength(e da.Edge) float64 {
	return math.Max(e.GetLength(), 1.0)
}

type antJob struct {
	index int
	rng   *rand.Rand
}

type antResult struct {
	index     int
	route     da.Route
	reached   bool
	remaining float64
	deposits  map[da.EdgeKey]float64 // round scoped, merged at the barrier
	err       error
}

type acoState struct {
	mode             optimizerMode
	best             da.Route
	bestLength       float64
	bestRemaining    float64
	bestReached      bool
	hasBest          bool
	closest          da.Route
	closestLength    float64
	closestRemaining float64
	hasClosest       bool
}

func newACOState() *acoState {
	return &acoState{
		mode:             TARGET_MODE,
		bestLength:       math.Inf(1),
		bestRemaining:    math.Inf(1),
		closestLength:    math.Inf(1),
		closestRemaining: math.Inf(1),
	}
}

// evaluate. ants are evaluated in index order so a seeded run is reproducible.
func (st *acoState) evaluate(res antResult) {
	if res.route.IsEmpty() {
		return
	}
	length := res.route.GetLength()

	if lexicographicLess(res.remaining, length, st.closestRemaining, st.closestLength) {
		st.closest, st.closestRemaining, st.closestLength, st.hasClosest = res.route, res.remaining, length, true
	}

	if res.reached && st.mode == TARGET_MODE {
		st.mode = DISTANCE_MODE
	}

	switch st.mode {
	case DISTANCE_MODE:
		if lexicographicLess(res.remaining, length, st.bestRemaining, st.bestLength) {
			st.best, st.bestRemaining, st.bestLength, st.hasBest = res.route, res.remaining, length, true
			st.bestReached = res.reached
		}
	default:
		if res.reached && length < st.bestLength {
			st.best, st.bestRemaining, st.bestLength, st.hasBest = res.route, res.remaining, length, true
			st.bestReached = true
		}
	}
}

func (st *acoState) bestSoFar() (da.Route, bool, bool) {
	if st.hasBest {
		return st.best, st.bestReached, true
	}
	if st.hasClosest {
		return st.closest, false, true
	}
	return da.NewEmptyRoute(), false, false
}

// elite. the closest approach fallback is never reinforced.
func (st *acoState) elite() da.Route {
	if st.hasBest {
		return st.best
	}
	return da.NewEmptyRoute()
}

func lexicographicLess(remaining, length, bestRemaining, bestLength float64) bool {
	if remaining != bestRemaining {
		return remaining < bestRemaining
	}
	return length < bestLength
}

// ACO. ant colony optimization with a two phase objective and an elitist double deposit.
type ACO struct {
	cfg             ACOConfig
	logger          *zap.Logger
	newRandomSource RandomSourceFactory
}

func NewACO(cfg ACOConfig, logger *zap.Logger) *ACO {
	return &ACO{
		cfg:             cfg,
		logger:          logger,
		newRandomSource: NewSeededRandomSourceFactory(cfg.Seed),
	}
}

func (aco *ACO) SetRandomSourceFactory(f RandomSourceFactory) {
	aco.newRandomSource = f
}

func (aco *ACO) GenerateRoute(ctx context.Context, graph *da.Graph, details da.RouteDetails) (RouteResult, error) {
	start, end := details.GetStartingNode(), details.GetEndingNode()
	if err := checkEndpoints(graph, start, end); err != nil {
		return NewRouteResult(da.NewEmptyRoute(), FAILED, err, 0), err
	}
	if start == end {
		return NewRouteResult(da.NewEmptyRoute(), SUCCESS, nil, 0), nil
	}

	aco.logger.Sugar().Debugf("starting aco route generation from %d to %d", start, end)

	master := aco.newRandomSource()
	pheromone := NewPheromoneTable(aco.cfg.InitialPheromone, aco.cfg.MinPheromone)
	state := newACOState()

	rounds := 0
	for ; rounds < aco.cfg.Rounds; rounds++ {
		if util.StopConcurrentOperation(ctx) {
			return aco.finish(state, ctx.Err(), rounds), nil
		}

		rngs := childRandoms(master, aco.cfg.Ants)
		jobs := make([]antJob, aco.cfg.Ants)
		for i := range jobs {
			jobs[i] = antJob{index: i, rng: rngs[i]}
		}

		results := concurrent.Run(aco.cfg.Workers, jobs, func(job antJob) antResult {
			return aco.runAnt(graph, pheromone, start, end, job)
		})
		sort.Slice(results, func(i, j int) bool {
			return results[i].index < results[j].index
		})

		deposits := make([]map[da.EdgeKey]float64, 0, len(results))
		for _, res := range results {
			if res.err != nil {
				aco.logger.Error("ant failed", zap.Int("ant", res.index), zap.Error(res.err))
				return NewRouteResult(da.NewEmptyRoute(), FAILED, res.err, rounds), res.err
			}
			state.evaluate(res)
			deposits = append(deposits, res.deposits)
		}

		pheromone.Update(aco.cfg.Evaporation, deposits, state.elite(), aco.cfg.TraceDelta)
	}

	aco.logger.Sugar().Debugf("aco route generation finished after %d rounds", rounds)
	return aco.finish(state, nil, rounds), nil
}

func (aco *ACO) finish(state *acoState, interrupted error, rounds int) RouteResult {
	route, reached, ok := state.bestSoFar()
	route = route.Copy()
	switch {
	case !ok:
		reason := interrupted
		if reason == nil {
			reason = ErrNoPathFound
		}
		return NewRouteResult(route, FAILED, reason, rounds)
	case reached && interrupted == nil:
		return NewRouteResult(route, SUCCESS, nil, rounds)
	case reached:
		return NewRouteResult(route, PARTIAL, interrupted, rounds)
	default:
		reason := interrupted
		if reason == nil {
			reason = ErrNoPathFound
		}
		return NewRouteResult(route, PARTIAL, reason, rounds)
	}
}

// runAnt. builds one route. reads the pheromone table, never writes it.
func (aco *ACO) runAnt(graph *da.Graph, pheromone *PheromoneTable, start, end da.NodeID, job antJob) antResult {
	res := antResult{
		index:    job.index,
		route:    da.NewEmptyRoute(),
		deposits: make(map[da.EdgeKey]float64),
	}

	visited := map[da.NodeID]struct{}{start: {}}
	current := start
	for moves := 0; moves < aco.cfg.MaxMoves && current != end; moves++ {
		next, ok, err := aco.selectNextEdge(graph, pheromone, current, end, visited, job.rng)
		if err != nil {
			res.err = err
			return res
		}
		if !ok {
			break
		}
		visited[next.GetTo()] = struct{}{}
		res.route.Append(next)
		res.deposits[next.GetKey()] += aco.cfg.TraceDelta / (depositLength(next) * usedEdgeDepositDivisor)
		current = next.GetTo()
	}

	res.reached = current == end
	remaining, err := graph.Distance(current, end)
	if err != nil {
		res.err = err
		return res
	}
	res.remaining = remaining
	return res
}

// selectNextEdge. roulette wheel over unvisited neighbours, weight = pheromone * progress^beta.
func (aco *ACO) selectNextEdge(graph *da.Graph, pheromone *PheromoneTable, current, end da.NodeID,
	visited map[da.NodeID]struct{}, rng RandomSource) (da.Edge, bool, error) {
	adj, _ := graph.GetAdjacency(current)

	candidates := make([]da.Edge, 0, len(adj))
	weights := make([]float64, 0, len(adj))
	for _, to := range adj {
		if _, ok := visited[to]; ok {
			continue
		}
		e, err := traverse(graph, current, to)
		if err != nil {
			return da.Edge{}, false, err
		}
		w, err := aco.desirability(graph, pheromone, e, end)
		if err != nil {
			return da.Edge{}, false, err
		}
		candidates = append(candidates, e)
		weights = append(weights, w)
	}
	if len(candidates) == 0 {
		return da.Edge{}, false, nil
	}

	idx, err := rouletteWheel(weights, rng)
	if err != nil {
		return da.Edge{}, false, util.WrapErrorf(err, ErrDegenerateDistribution,
			"cannot pick next node after %d", current)
	}
	return candidates[idx], true, nil
}

func (aco *ACO) desirability(graph *da.Graph, pheromone *PheromoneTable, e da.Edge, end da.NodeID) (float64, error) {
	before, err := graph.Distance(e.GetFrom(), end)
	if err != nil {
		return 0, err
	}
	after, err := graph.Distance(e.GetTo(), end)
	if err != nil {
		return 0, err
	}
	progress := math.Max(1.0, (before+distanceToGoalEpsilon)-(after+distanceToGoalEpsilon))
	return pheromone.Level(e.GetFrom(), e.GetTo()) * math.Pow(progress, aco.cfg.Beta), nil
}

// rouletteWheel. index sampled proportionally to weights.
func rouletteWheel(weights []float64, rng RandomSource) (int, error) {
	total := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return 0, ErrDegenerateDistribution
		}
		total += w
	}
	if total <= 0 || math.IsInf(total, 0) {
		return 0, ErrDegenerateDistribution
	}

	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i, nil
		}
	}
	// r can land on total through rounding
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i, nil
		}
	}
	return 0, ErrDegenerateDistribution
}
