package routing

import (
	"context"
	"errors"
	"testing"

	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGreedyGenerateRoute(t *testing.T) {
	line := buildGraph(t, []testNode{
		{1, 0, 0}, {2, 0, 0.001}, {3, 0, 0.002}, {4, 0, 0.003},
	}, [][2]da.NodeID{{1, 2}, {2, 3}, {3, 4}})

	deadEnd := buildGraph(t, []testNode{
		{1, 0, 0}, {2, 0, 0.001}, {3, 0, 0.005},
	}, [][2]da.NodeID{{1, 2}})

	isolated := da.NewGraph()
	isolated.AddNode(da.NewNode(1, 0, 0))
	isolated.AddNode(da.NewNode(2, 0, 0.001))

	tests := []struct {
		name       string
		graph      *da.Graph
		start, end da.NodeID
		wantStatus SearchStatus
		wantNodes  []da.NodeID
		wantReason error
	}{
		{
			name: "reaches destination", graph: line, start: 1, end: 4,
			wantStatus: SUCCESS, wantNodes: []da.NodeID{1, 2, 3, 4},
		},
		{
			name: "walks backwards too", graph: line, start: 4, end: 2,
			wantStatus: SUCCESS, wantNodes: []da.NodeID{4, 3, 2},
		},
		{
			name: "start equals end", graph: line, start: 3, end: 3,
			wantStatus: SUCCESS, wantNodes: []da.NodeID{},
		},
		{
			name: "dead end returns the partial route", graph: deadEnd, start: 1, end: 3,
			wantStatus: PARTIAL, wantNodes: []da.NodeID{1, 2}, wantReason: ErrNoPathFound,
		},
		{
			name: "isolated start returns empty route", graph: isolated, start: 1, end: 2,
			wantStatus: FAILED, wantNodes: []da.NodeID{}, wantReason: ErrNoAdjacency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			greedy := NewGreedy(DefaultGreedyConfig(), zap.NewNop())
			res, err := greedy.GenerateRoute(context.Background(), tt.graph, da.NewRouteDetails(tt.start, tt.end))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, res.GetStatus())
			assert.Equal(t, tt.wantNodes, res.GetRoute().GetNodeSequence())
			if tt.wantReason != nil {
				assert.ErrorIs(t, res.GetReason(), tt.wantReason)
			} else {
				assert.NoError(t, res.GetReason())
			}
			if tt.wantStatus == SUCCESS && len(tt.wantNodes) > 0 {
				assert.True(t, res.GetRoute().ReachesNode(tt.end))
			}
		})
	}
}

func TestGreedyMetric(t *testing.T) {
	// from 1: node 2 is the short hop but leads away from 4, node 3 is a longer hop right next to 4
	g := buildGraph(t, []testNode{
		{1, 0, 0}, {2, 0, -0.001}, {3, 0, 0.003}, {4, 0, 0.004},
	}, [][2]da.NodeID{{1, 2}, {1, 3}, {3, 4}})

	tests := []struct {
		name      string
		metric    GreedyMetric
		firstNext da.NodeID
	}{
		{name: "goal distance", metric: GOAL_DISTANCE, firstNext: 3},
		{name: "edge length", metric: EDGE_LENGTH, firstNext: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGreedyConfig()
			cfg.Metric = tt.metric
			res, err := NewGreedy(cfg, zap.NewNop()).GenerateRoute(context.Background(), g, da.NewRouteDetails(1, 4))
			require.NoError(t, err)
			require.False(t, res.GetRoute().IsEmpty())
			assert.Equal(t, tt.firstNext, res.GetRoute().GetEdges()[0].GetTo())
			requireConnected(t, g, res.GetRoute())
		})
	}
}

func TestGreedyUnknownNode(t *testing.T) {
	g := singlePathGraph(t)
	greedy := NewGreedy(DefaultGreedyConfig(), zap.NewNop())

	_, err := greedy.GenerateRoute(context.Background(), g, da.NewRouteDetails(1, 99))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNode))

	_, err = greedy.GenerateRoute(context.Background(), g, da.NewRouteDetails(99, 1))
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestGreedyStepCapAndCancellation(t *testing.T) {
	g := singlePathGraph(t)

	cfg := DefaultGreedyConfig()
	cfg.MaxSteps = 2
	res, err := NewGreedy(cfg, zap.NewNop()).GenerateRoute(context.Background(), g, da.NewRouteDetails(1, 5))
	require.NoError(t, err)
	assert.Equal(t, PARTIAL, res.GetStatus())
	assert.ErrorIs(t, res.GetReason(), ErrMaxStepsExceeded)
	assert.Equal(t, 2, res.GetRoute().Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err = NewGreedy(DefaultGreedyConfig(), zap.NewNop()).GenerateRoute(ctx, g, da.NewRouteDetails(1, 5))
	require.NoError(t, err)
	assert.Equal(t, FAILED, res.GetStatus())
	assert.ErrorIs(t, res.GetReason(), context.Canceled)
}
