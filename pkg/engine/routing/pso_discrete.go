package routing

import (
	"context"
	"math"
	"math/rand"

	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type velocityOpKind uint8

const (
	// truncate the path and regrow it by a random walk
	REROUTE velocityOpKind = iota
	// cut at a node shared with the personal best and adopt its tail
	SPLICE_PERSONAL_BEST
	// same, toward the global best
	SPLICE_GLOBAL_BEST
)

type velocityOp struct {
	kind velocityOpKind
	at   float64 // relative cut position in [0,1)
}

type discreteParticle struct {
	path        []da.NodeID
	velocity    []velocityOp
	fitness     float64
	bestFitness float64
	bestPath    []da.NodeID
	rng         *rand.Rand
}

// GenerateRoute. discrete variant. a position is a simple node path from the start, a velocity is an ordered
// list of edit operators applied to it.
func (pso *PSO) GenerateRoute(ctx context.Context, graph *da.Graph, details da.RouteDetails) (RouteResult, error) {
	start, end := details.GetStartingNode(), details.GetEndingNode()
	if err := checkEndpoints(graph, start, end); err != nil {
		return NewRouteResult(da.NewEmptyRoute(), FAILED, err, 0), err
	}
	if start == end {
		return NewRouteResult(da.NewEmptyRoute(), SUCCESS, nil, 0), nil
	}
	if adj, ok := graph.GetAdjacency(start); !ok || len(adj) == 0 {
		return NewRouteResult(da.NewEmptyRoute(), FAILED,
			util.WrapErrorf(nil, ErrNoAdjacency, "node %d has no adjacency", start), 0), nil
	}

	cfg := pso.discreteCfg
	master := pso.newDiscreteRandomSource()
	rngs := childRandoms(master, cfg.Particles)

	particles := make([]*discreteParticle, cfg.Particles)
	for i := range particles {
		p := &discreteParticle{
			rng:         rngs[i],
			bestFitness: math.Inf(1),
			fitness:     math.Inf(1),
		}
		p.path = pso.randomWalk(graph, []da.NodeID{start}, end, p.rng)
		particles[i] = p
	}

	globalBest := math.Inf(1)
	var globalBestPath []da.NodeID
	stagnation := 0

	iteration := 0
	var interrupted error
	for ; iteration < cfg.MaxIterations; iteration++ {
		if util.StopConcurrentOperation(ctx) {
			interrupted = ctx.Err()
			break
		}

		improved := false
		for _, p := range particles {
			f, err := pso.pathFitness(graph, p.path, end)
			if err != nil {
				return NewRouteResult(da.NewEmptyRoute(), FAILED, err, iteration), err
			}
			p.fitness = f
			if f < p.bestFitness {
				p.bestFitness = f
				p.bestPath = clonePath(p.path)
			}
			if f < globalBest {
				globalBest = f
				globalBestPath = clonePath(p.path)
				improved = true
			}
		}

		if improved {
			stagnation = 0
		} else {
			stagnation++
		}
		if cfg.StagnationLimit > 0 && stagnation >= cfg.StagnationLimit {
			pso.logger.Sugar().Debugf("discrete pso stagnated after %d iterations", iteration+1)
			iteration++
			break
		}

		var g errgroup.Group
		for _, p := range particles {
			p := p
			g.Go(func() error {
				pso.updateDiscreteVelocity(p)
				pso.applyVelocity(graph, p, globalBestPath, end)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return NewRouteResult(da.NewEmptyRoute(), FAILED, err, iteration), err
		}
	}

	route, err := pathToRoute(graph, globalBestPath)
	if err != nil {
		return NewRouteResult(da.NewEmptyRoute(), FAILED, err, iteration), err
	}

	reached := len(globalBestPath) > 0 && globalBestPath[len(globalBestPath)-1] == end
	switch {
	case reached && interrupted == nil:
		return NewRouteResult(route, SUCCESS, nil, iteration), nil
	case reached:
		return NewRouteResult(route, PARTIAL, interrupted, iteration), nil
	case interrupted != nil:
		return partialOrFailed(route, interrupted, iteration), nil
	default:
		pso.logger.Debug("discrete pso did not reach the destination", zap.Int64("end", int64(end)),
			zap.Float64("fitness", globalBest))
		return partialOrFailed(route, util.WrapErrorf(nil, ErrNoPathFound,
			"destination %d not reached after %d iterations", end, iteration), iteration), nil
	}
}

// updateDiscreteVelocity. operators survive with probability w, splices toward the personal and global best are
// added with probability min(1, c*r), a reroute with the mutation rate.
func (pso *PSO) updateDiscreteVelocity(p *discreteParticle) {
	cfg := pso.discreteCfg
	rng := p.rng

	next := make([]velocityOp, 0, len(p.velocity)+3)
	for _, op := range p.velocity {
		if rng.Float64() < cfg.Inertia {
			next = append(next, op)
		}
	}

	r1 := rng.Float64()
	if rng.Float64() < math.Min(1, cfg.C1*r1) {
		next = append(next, velocityOp{kind: SPLICE_PERSONAL_BEST, at: rng.Float64()})
	}
	r2 := rng.Float64()
	if rng.Float64() < math.Min(1, cfg.C2*r2) {
		next = append(next, velocityOp{kind: SPLICE_GLOBAL_BEST, at: rng.Float64()})
	}
	if rng.Float64() < cfg.MutationRate {
		next = append(next, velocityOp{kind: REROUTE, at: rng.Float64()})
	}

	// oldest operators are dropped first
	if cfg.MaxVelocityOps > 0 && len(next) > cfg.MaxVelocityOps {
		next = next[len(next)-cfg.MaxVelocityOps:]
	}
	p.velocity = next
}

// applyVelocity. reads globalBest and the particle's own state only.
func (pso *PSO) applyVelocity(graph *da.Graph, p *discreteParticle, globalBest []da.NodeID, end da.NodeID) {
	path := p.path
	for _, op := range p.velocity {
		switch op.kind {
		case REROUTE:
			cut := cutIndex(len(path), op.at)
			path = pso.randomWalk(graph, clonePath(path[:cut+1]), end, p.rng)
		case SPLICE_PERSONAL_BEST:
			path = splice(path, p.bestPath, op.at)
		case SPLICE_GLOBAL_BEST:
			path = splice(path, globalBest, op.at)
		}
	}
	p.path = removeLoops(path)
}

// randomWalk. extends prefix without revisiting nodes until the destination, a dead end or the length cap.
// with probability GoalBias the neighbour closest to the destination is taken, otherwise a uniform one.
func (pso *PSO) randomWalk(graph *da.Graph, prefix []da.NodeID, end da.NodeID, rng RandomSource) []da.NodeID {
	path := prefix
	visited := make(map[da.NodeID]struct{}, len(path))
	for _, n := range path {
		visited[n] = struct{}{}
	}

	current := path[len(path)-1]
	for current != end && (pso.discreteCfg.MaxPathLength <= 0 || len(path) < pso.discreteCfg.MaxPathLength) {
		adj, _ := graph.GetAdjacency(current)
		candidates := make([]da.NodeID, 0, len(adj))
		for _, to := range adj {
			if _, ok := visited[to]; ok {
				continue
			}
			if _, ok := graph.GetNode(to); !ok {
				continue
			}
			candidates = append(candidates, to)
		}
		if len(candidates) == 0 {
			break
		}

		next := candidates[rng.Intn(len(candidates))]
		if rng.Float64() < pso.discreteCfg.GoalBias {
			bestDist := math.Inf(1)
			for _, c := range candidates {
				d, err := graph.Distance(c, end)
				if err == nil && d < bestDist {
					bestDist, next = d, c
				}
			}
		}

		visited[next] = struct{}{}
		path = append(path, next)
		current = next
	}
	return path
}

// pathFitness. length plus a penalty and the remaining distance when the destination is not reached.
func (pso *PSO) pathFitness(graph *da.Graph, path []da.NodeID, end da.NodeID) (float64, error) {
	length := 0.0
	for i := 1; i < len(path); i++ {
		d, err := graph.Distance(path[i-1], path[i])
		if err != nil {
			return 0, err
		}
		length += d
	}
	last := path[len(path)-1]
	if last == end {
		return length, nil
	}
	remaining, err := graph.Distance(last, end)
	if err != nil {
		return 0, err
	}
	return length + pso.discreteCfg.UnreachedPenalty + remaining, nil
}

// splice. cuts path at a node shared with guide, picked by at among the shared ones, and adopts the guide's tail
// from there. both paths start at the same node, so there is always at least one shared node.
func splice(path, guide []da.NodeID, at float64) []da.NodeID {
	if len(guide) == 0 {
		return path
	}
	guideIndex := make(map[da.NodeID]int, len(guide))
	for i, n := range guide {
		guideIndex[n] = i
	}

	type shared struct{ pathIdx, guideIdx int }
	common := make([]shared, 0)
	for i, n := range path {
		if j, ok := guideIndex[n]; ok {
			common = append(common, shared{i, j})
		}
	}
	if len(common) == 0 {
		return path
	}

	c := common[cutIndex(len(common), at)]
	out := make([]da.NodeID, 0, c.pathIdx+len(guide)-c.guideIdx)
	out = append(out, path[:c.pathIdx]...)
	out = append(out, guide[c.guideIdx:]...)
	return out
}

// removeLoops. when a node repeats, everything between its two occurrences is dropped. consecutive nodes stay
// adjacent in the graph because every cut joins a node to its own later successor.
func removeLoops(path []da.NodeID) []da.NodeID {
	out := make([]da.NodeID, 0, len(path))
	pos := make(map[da.NodeID]int, len(path))
	for _, n := range path {
		if i, ok := pos[n]; ok {
			for _, dropped := range out[i+1:] {
				delete(pos, dropped)
			}
			out = out[:i+1]
			continue
		}
		pos[n] = len(out)
		out = append(out, n)
	}
	return out
}

func pathToRoute(graph *da.Graph, path []da.NodeID) (da.Route, error) {
	route := da.NewEmptyRoute()
	for i := 1; i < len(path); i++ {
		e, err := traverse(graph, path[i-1], path[i])
		if err != nil {
			return da.NewEmptyRoute(), err
		}
		route.Append(e)
	}
	return route, nil
}

func cutIndex(n int, at float64) int {
	i := int(at * float64(n))
	return util.Clamp(i, 0, n-1)
}

func clonePath(path []da.NodeID) []da.NodeID {
	out := make([]da.NodeID, len(path))
	copy(out, path)
	return out
}
