package routing

import (
	"context"
	"math"
	"testing"

	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDesignatePointsOnLine(t *testing.T) {
	tests := []struct {
		name       string
		start, end da.GridPosition
		n          int
		want       []da.GridPosition
	}{
		{
			name: "diagonal", start: da.NewGridPosition(0, 0), end: da.NewGridPosition(10, 10), n: 5,
			want: []da.GridPosition{{X: 1, Y: 1}, {X: 3, Y: 3}, {X: 5, Y: 5}, {X: 7, Y: 7}, {X: 9, Y: 9}},
		},
		{
			name: "shallow slope", start: da.NewGridPosition(0, 0), end: da.NewGridPosition(20, 10), n: 5,
			want: []da.GridPosition{{X: 2, Y: 1}, {X: 6, Y: 3}, {X: 10, Y: 5}, {X: 14, Y: 7}, {X: 18, Y: 9}},
		},
		{
			name: "short segment drops duplicates", start: da.NewGridPosition(0, 0), end: da.NewGridPosition(3, -1), n: 5,
			want: []da.GridPosition{{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 2, Y: -1}},
		},
		{
			name: "no points", start: da.NewGridPosition(0, 0), end: da.NewGridPosition(3, 3), n: 0,
			want: []da.GridPosition{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, designatePointsOnLine(tt.start, tt.end, tt.n))
		})
	}
}

func smallPSOConfig(seed int64) PSOConfig {
	cfg := DefaultPSOConfig()
	cfg.Particles = 30
	cfg.MaxIterations = 150
	cfg.Seed = seed
	return cfg
}

// walledGrid. every cell at chebyshev distance 1..4 from center is blocked, the center itself is free.
func walledGrid(center int) *da.HazardGrid {
	grid := da.NewHazardGrid(100)
	for y := center - 4; y <= center+4; y++ {
		for x := center - 4; x <= center+4; x++ {
			if x == center && y == center {
				continue
			}
			grid.SetCell(x, y, da.NewPixelColor(255, 0, 0, 255))
		}
	}
	return grid
}

func TestPSOConvergesOnEmptyGrid(t *testing.T) {
	cfg := DefaultPSOConfig()
	cfg.Seed = 5
	pso := NewPSO(cfg, DefaultDiscretePSOConfig(), zap.NewNop())
	grid := da.NewHazardGrid(100)

	details := da.NewWxRouteDetails(da.NewGridPosition(10, 10), da.NewGridPosition(40, 30))
	res, err := pso.GenerateRouteRealNum(context.Background(), details, grid)
	require.NoError(t, err)

	assert.Equal(t, SUCCESS, res.GetStatus())
	assert.LessOrEqual(t, res.GetBestFitness(), 1.15)
	assert.Equal(t, res.GetIterations(), res.GetRoute().Len())

	positions := res.GetRoute().GetPositions()
	last := positions[len(positions)-1]
	assert.LessOrEqual(t, math.Hypot(last.X-40, last.Y-30), 1.15)
	assert.Equal(t, da.NewGridPosition(10, 10), positions[0])
}

func TestPSODoesNotConvergeOnWalledDestination(t *testing.T) {
	cfg := smallPSOConfig(9)
	cfg.MaxIterations = 100
	pso := NewPSO(cfg, DefaultDiscretePSOConfig(), zap.NewNop())
	grid := walledGrid(50)

	var observed int
	observer := func(iteration int, best da.GridPosition, fitness float64) {
		observed++
		assert.True(t, grid.IsFree(best), "global best at blocked cell (%v,%v)", best.X, best.Y)
	}

	details := da.NewWxRouteDetails(da.NewGridPosition(10, 10), da.NewGridPosition(50, 50))
	res, err := pso.GenerateRouteRealNumObserved(context.Background(), details, grid, observer)
	require.NoError(t, err)

	assert.Equal(t, PARTIAL, res.GetStatus())
	assert.ErrorIs(t, res.GetReason(), ErrMaxIterationsExceeded)
	assert.Greater(t, res.GetBestFitness(), 1.15)
	assert.Equal(t, 100, res.GetRoute().Len())
	assert.Equal(t, 100, observed)
	for _, p := range res.GetRoute().GetPositions() {
		assert.True(t, grid.IsFree(p))
	}
}

func TestPSOUpdatePosition(t *testing.T) {
	grid := da.NewHazardGrid(100)
	grid.SetCell(12, 10, da.NewPixelColor(0, 0, 1, 0))

	tests := []struct {
		name     string
		start    da.GridPosition
		velocity velocity2D
		want     da.GridPosition
	}{
		{name: "free move", start: da.NewGridPosition(10, 10), velocity: velocity2D{1.5, 0}, want: da.NewGridPosition(11, 10)},
		{name: "move through a blocked cell", start: da.NewGridPosition(10, 10), velocity: velocity2D{5, 0}, want: da.NewGridPosition(10, 10)},
		{name: "landing on a blocked cell", start: da.NewGridPosition(10, 10), velocity: velocity2D{2, 0}, want: da.NewGridPosition(10, 10)},
		{name: "outside low bound", start: da.NewGridPosition(1, 1), velocity: velocity2D{-5, 0}, want: da.NewGridPosition(1, 1)},
		{name: "outside high bound", start: da.NewGridPosition(95, 50), velocity: velocity2D{10, 0}, want: da.NewGridPosition(95, 50)},
	}

	pso := NewPSO(DefaultPSOConfig(), DefaultDiscretePSOConfig(), zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &particle{position: tt.start, velocity: tt.velocity}
			pso.updatePosition(p, grid)
			assert.Equal(t, tt.want, p.position)
		})
	}
}

func TestPSOVelocityIsClamped(t *testing.T) {
	pso := NewPSO(DefaultPSOConfig(), DefaultDiscretePSOConfig(), zap.NewNop())
	rng := &fixedRandom{floats: []float64{1}}

	p := &particle{
		position:     da.NewGridPosition(0, 99),
		velocity:     velocity2D{14, -14},
		bestPosition: da.NewGridPosition(99, 0),
		rng:          nil,
	}
	w := pso.inertiaWeight(0)
	p.velocity.vx = pso.velocityComponent(rng, w, p.velocity.vx, p.position.X, p.bestPosition.X, 99)
	p.velocity.vy = pso.velocityComponent(rng, w, p.velocity.vy, p.position.Y, p.bestPosition.Y, 0)

	assert.Equal(t, 15.0, p.velocity.vx)
	assert.Equal(t, -15.0, p.velocity.vy)
}

func TestPSOInvalidEndpoints(t *testing.T) {
	pso := NewPSO(DefaultPSOConfig(), DefaultDiscretePSOConfig(), zap.NewNop())
	grid := da.NewHazardGrid(100)

	_, err := pso.GenerateRouteRealNum(context.Background(),
		da.NewWxRouteDetails(da.NewGridPosition(-1, 0), da.NewGridPosition(10, 10)), grid)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = pso.GenerateRouteRealNum(context.Background(),
		da.NewWxRouteDetails(da.NewGridPosition(0, 0), da.NewGridPosition(100, 10)), grid)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = pso.GenerateRouteRealNum(context.Background(),
		da.NewWxRouteDetails(da.NewGridPosition(0, 0), da.NewGridPosition(10, 10)), nil)
	assert.Error(t, err)
}

func TestPSOCancellation(t *testing.T) {
	pso := NewPSO(smallPSOConfig(2), DefaultDiscretePSOConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := pso.GenerateRouteRealNum(ctx,
		da.NewWxRouteDetails(da.NewGridPosition(0, 0), da.NewGridPosition(50, 50)), da.NewHazardGrid(100))
	require.NoError(t, err)
	assert.Equal(t, PARTIAL, res.GetStatus())
	assert.ErrorIs(t, res.GetReason(), context.Canceled)
	assert.True(t, res.GetRoute().IsEmpty())
}
