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

type velocity2D struct {
	vx float64
	vy float64
}

type particle struct {
	position      da.GridPosition
	velocity      velocity2D
	bestFitness   float64
	bestPosition  da.GridPosition
	rng           *rand.Rand
	rejectedMoves int
}

func (p *particle) fitness(target da.GridPosition) float64 {
	return euclidean(p.position, target)
}

// PSO. particle swarm optimization. the raster variant works on a HazardGrid and returns the global best trace,
// the discrete variant (pso_discrete.go) works on the road graph.
type PSO struct {
	cfg                     PSOConfig
	discreteCfg             DiscretePSOConfig
	logger                  *zap.Logger
	newRandomSource         RandomSourceFactory
	newDiscreteRandomSource RandomSourceFactory
}

func NewPSO(cfg PSOConfig, discreteCfg DiscretePSOConfig, logger *zap.Logger) *PSO {
	return &PSO{
		cfg:                     cfg,
		discreteCfg:             discreteCfg,
		logger:                  logger,
		newRandomSource:         NewSeededRandomSourceFactory(cfg.Seed),
		newDiscreteRandomSource: NewSeededRandomSourceFactory(discreteCfg.Seed),
	}
}

// SetRandomSourceFactory. replaces the source of both variants.
func (pso *PSO) SetRandomSourceFactory(f RandomSourceFactory) {
	pso.newRandomSource = f
	pso.newDiscreteRandomSource = f
}

func (pso *PSO) GenerateRouteRealNum(ctx context.Context, details da.WxRouteDetails,
	grid *da.HazardGrid) (PixRouteResult, error) {
	return pso.GenerateRouteRealNumObserved(ctx, details, grid, nil)
}

// GenerateRouteRealNumObserved. observer, if not nil, sees the global best after every iteration.
func (pso *PSO) GenerateRouteRealNumObserved(ctx context.Context, details da.WxRouteDetails,
	grid *da.HazardGrid, observer IterationObserver) (PixRouteResult, error) {
	start, end := details.GetStartingPosition(), details.GetEndingPosition()
	if err := checkGridEndpoints(grid, start, end); err != nil {
		return NewPixRouteResult(da.NewEmptyPixRoute(), FAILED, err, 0, math.Inf(1)), err
	}

	pso.logger.Sugar().Debugf("starting real number generation from (%.1f,%.1f) to (%.1f,%.1f)",
		start.X, start.Y, end.X, end.Y)

	master := pso.newRandomSource()
	particles := pso.initParticles(master, start)

	trace := da.NewEmptyPixRoute()
	globalBest := math.Inf(1)
	globalBestPosition := start

	iteration := 0
	for ; iteration < pso.cfg.MaxIterations; iteration++ {
		if util.StopConcurrentOperation(ctx) {
			return NewPixRouteResult(trace, PARTIAL, ctx.Err(), iteration, globalBest), nil
		}

		// evaluate every particle before anyone moves
		for _, p := range particles {
			f := p.fitness(end)
			if f < p.bestFitness {
				p.bestFitness = f
				p.bestPosition = p.position
			}
			if f < globalBest {
				globalBest = f
				globalBestPosition = p.position
			}
		}

		trace.Append(globalBestPosition)
		if observer != nil {
			observer(iteration, globalBestPosition, globalBest)
		}

		if globalBest <= pso.cfg.StopThreshold {
			pso.logger.Sugar().Debugf("good enough solution found after %d iterations, fitness %.3f",
				iteration+1, globalBest)
			return NewPixRouteResult(trace, SUCCESS, nil, iteration+1, globalBest), nil
		}

		var g errgroup.Group
		for _, p := range particles {
			p := p
			g.Go(func() error {
				pso.updateVelocity(p, globalBestPosition, iteration)
				pso.updatePosition(p, grid)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return NewPixRouteResult(trace, FAILED, err, iteration, globalBest), err
		}
	}

	pso.logger.Sugar().Debugf("pso stopped at the iteration cap, global best %.3f at (%.1f,%.1f)",
		globalBest, globalBestPosition.X, globalBestPosition.Y)
	return NewPixRouteResult(trace, PARTIAL, ErrMaxIterationsExceeded, iteration, globalBest), nil
}

func (pso *PSO) initParticles(master RandomSource, start da.GridPosition) []*particle {
	rngs := childRandoms(master, pso.cfg.Particles)
	particles := make([]*particle, pso.cfg.Particles)
	for i := range particles {
		rng := rngs[i]
		particles[i] = &particle{
			position: start,
			velocity: velocity2D{
				vx: uniform(rng, pso.cfg.VelocityMin, pso.cfg.VelocityMax),
				vy: uniform(rng, pso.cfg.VelocityMin, pso.cfg.VelocityMax),
			},
			bestFitness:  math.Inf(1),
			bestPosition: start,
			rng:          rng,
		}
	}
	return particles
}

// inertiaWeight. constant for now, kept as a function of the iteration for decay schedules.
func (pso *PSO) inertiaWeight(iteration int) float64 {
	return pso.cfg.Inertia
}

func (pso *PSO) updateVelocity(p *particle, globalBest da.GridPosition, iteration int) {
	w := pso.inertiaWeight(iteration)
	p.velocity.vx = pso.velocityComponent(p.rng, w, p.velocity.vx, p.position.X, p.bestPosition.X, globalBest.X)
	p.velocity.vy = pso.velocityComponent(p.rng, w, p.velocity.vy, p.position.Y, p.bestPosition.Y, globalBest.Y)
}

func (pso *PSO) velocityComponent(rng RandomSource, w, v, pos, personalBest, globalBest float64) float64 {
	r1, r2 := rng.Float64(), rng.Float64()
	next := w*v + pso.cfg.C1*r1*(personalBest-pos) + pso.cfg.C2*r2*(globalBest-pos)
	return util.Clamp(next, pso.cfg.VelocityMin, pso.cfg.VelocityMax)
}

// updatePosition. the whole move is rejected if any check point between the old and new position, or the new
// position itself, is outside the grid or blocked.
func (pso *PSO) updatePosition(p *particle, grid *da.HazardGrid) {
	next := da.NewGridPosition(math.Floor(p.position.X+p.velocity.vx), math.Floor(p.position.Y+p.velocity.vy))

	points := designatePointsOnLine(p.position, next, pso.cfg.CheckPoints)
	points = append(points, next)
	for _, point := range points {
		if !grid.IsFree(point) {
			p.rejectedMoves++
			return
		}
	}
	p.position = next
}

// designatePointsOnLine. n evenly spaced cell positions at the midpoints of the n sub-segments of start-end,
// floored to cells, duplicates dropped.
func designatePointsOnLine(start, end da.GridPosition, n int) []da.GridPosition {
	if n <= 0 {
		return []da.GridPosition{}
	}
	dx := (end.X - start.X) / float64(n)
	dy := (end.Y - start.Y) / float64(n)

	points := make([]da.GridPosition, 0, n)
	seen := make(map[da.GridPosition]struct{}, n)
	for i := 0; i < n; i++ {
		t := 0.5 + float64(i)
		p := da.NewGridPosition(math.Floor(start.X+t*dx), math.Floor(start.Y+t*dy))
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		points = append(points, p)
	}
	return points
}

func checkGridEndpoints(grid *da.HazardGrid, start, end da.GridPosition) error {
	if grid == nil {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "hazard grid is not loaded")
	}
	for _, p := range []da.GridPosition{start, end} {
		if !grid.IsInside(int(math.Floor(p.X)), int(math.Floor(p.Y))) {
			return util.WrapErrorf(nil, ErrInvalidPosition, "position (%.2f,%.2f) is outside the %dx%d grid",
				p.X, p.Y, grid.GetSize(), grid.GetSize())
		}
	}
	return nil
}

func euclidean(a, b da.GridPosition) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func uniform(rng RandomSource, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
