package routing

import (
	"context"
	"testing"

	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func smallDiscretePSOConfig(seed int64) DiscretePSOConfig {
	cfg := DefaultDiscretePSOConfig()
	cfg.Particles = 10
	cfg.MaxIterations = 60
	cfg.StagnationLimit = 20
	cfg.Seed = seed
	return cfg
}

func TestDiscretePSOFindsPath(t *testing.T) {
	g := gridGraph(t, 4)
	pso := NewPSO(DefaultPSOConfig(), smallDiscretePSOConfig(3), zap.NewNop())

	res, err := pso.GenerateRoute(context.Background(), g, da.NewRouteDetails(1, 16))
	require.NoError(t, err)

	assert.Equal(t, SUCCESS, res.GetStatus())
	assert.True(t, res.GetRoute().ReachesNode(16))
	requireConnected(t, g, res.GetRoute())

	seq := res.GetRoute().GetNodeSequence()
	assert.Equal(t, da.NodeID(1), seq[0])
	seen := make(map[da.NodeID]struct{})
	for _, n := range seq {
		_, dup := seen[n]
		require.False(t, dup, "node %d visited twice", n)
		seen[n] = struct{}{}
	}
}

func TestDiscretePSOSinglePath(t *testing.T) {
	g := singlePathGraph(t)
	pso := NewPSO(DefaultPSOConfig(), smallDiscretePSOConfig(8), zap.NewNop())

	res, err := pso.GenerateRoute(context.Background(), g, da.NewRouteDetails(1, 5))
	require.NoError(t, err)
	assert.Equal(t, SUCCESS, res.GetStatus())
	assert.Equal(t, []da.NodeID{1, 2, 3, 4, 5}, res.GetRoute().GetNodeSequence())
}

func TestDiscretePSOWithoutPath(t *testing.T) {
	isolated := da.NewGraph()
	isolated.AddNode(da.NewNode(1, 0, 0))
	isolated.AddNode(da.NewNode(2, 0, 0.001))

	pso := NewPSO(DefaultPSOConfig(), smallDiscretePSOConfig(1), zap.NewNop())
	res, err := pso.GenerateRoute(context.Background(), isolated, da.NewRouteDetails(1, 2))
	require.NoError(t, err)
	assert.Equal(t, FAILED, res.GetStatus())
	assert.ErrorIs(t, res.GetReason(), ErrNoAdjacency)
	assert.True(t, res.GetRoute().IsEmpty())

	partial := buildGraph(t, []testNode{{1, 0, 0}, {2, 0, 0.001}, {3, 0, 0.002}}, [][2]da.NodeID{{1, 2}})
	res, err = pso.GenerateRoute(context.Background(), partial, da.NewRouteDetails(1, 3))
	require.NoError(t, err)
	assert.Equal(t, PARTIAL, res.GetStatus())
	assert.ErrorIs(t, res.GetReason(), ErrNoPathFound)
	assert.Equal(t, []da.NodeID{1, 2}, res.GetRoute().GetNodeSequence())

	_, err = pso.GenerateRoute(context.Background(), partial, da.NewRouteDetails(1, 30))
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestSplice(t *testing.T) {
	tests := []struct {
		name  string
		path  []da.NodeID
		guide []da.NodeID
		at    float64
		want  []da.NodeID
	}{
		{
			name: "cut at the start adopts the whole guide",
			path: []da.NodeID{1, 2, 3}, guide: []da.NodeID{1, 5, 6}, at: 0,
			want: []da.NodeID{1, 5, 6},
		},
		{
			name: "cut at a later shared node keeps the prefix",
			path: []da.NodeID{1, 2, 3, 4}, guide: []da.NodeID{1, 7, 3, 9}, at: 0.9,
			want: []da.NodeID{1, 2, 3, 9},
		},
		{
			name: "empty guide keeps the path",
			path: []da.NodeID{1, 2}, guide: nil, at: 0.5,
			want: []da.NodeID{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splice(tt.path, tt.guide, tt.at))
		})
	}
}

func TestRemoveLoops(t *testing.T) {
	tests := []struct {
		name string
		path []da.NodeID
		want []da.NodeID
	}{
		{name: "simple path", path: []da.NodeID{1, 2, 3}, want: []da.NodeID{1, 2, 3}},
		{name: "single loop", path: []da.NodeID{1, 2, 3, 2, 4}, want: []da.NodeID{1, 2, 4}},
		{name: "loop back to start", path: []da.NodeID{1, 2, 3, 1, 5}, want: []da.NodeID{1, 5}},
		{name: "nested loops", path: []da.NodeID{1, 2, 3, 4, 3, 2, 6}, want: []da.NodeID{1, 2, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, removeLoops(tt.path))
		})
	}
}

func TestUpdateDiscreteVelocityIsCapped(t *testing.T) {
	cfg := smallDiscretePSOConfig(1)
	cfg.MaxVelocityOps = 2
	cfg.Inertia = 1
	cfg.MutationRate = 1
	pso := NewPSO(DefaultPSOConfig(), cfg, zap.NewNop())

	p := &discreteParticle{
		velocity: []velocityOp{{kind: REROUTE}, {kind: REROUTE}, {kind: REROUTE}},
	}
	p.rng = childRandoms(&fixedRandom{floats: []float64{0.5}}, 1)[0]
	pso.updateDiscreteVelocity(p)

	assert.Len(t, p.velocity, 2)
	// the mutation is always added last
	assert.Equal(t, REROUTE, p.velocity[1].kind)
}

func TestDiscretePSOUsesItsOwnSeed(t *testing.T) {
	g := gridGraph(t, 4)
	run := func(rasterSeed int64) RouteResult {
		rasterCfg := DefaultPSOConfig()
		rasterCfg.Seed = rasterSeed
		pso := NewPSO(rasterCfg, smallDiscretePSOConfig(5), zap.NewNop())
		res, err := pso.GenerateRoute(context.Background(), g, da.NewRouteDetails(1, 16))
		require.NoError(t, err)
		return res
	}

	first, second := run(11), run(97)
	assert.Equal(t, first.GetRoute().GetNodeSequence(), second.GetRoute().GetNodeSequence())
	assert.Equal(t, first.GetIterations(), second.GetIterations())
	assert.Equal(t, first.GetStatus(), second.GetStatus())
}
