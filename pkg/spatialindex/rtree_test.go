package spatialindex

import (
	"testing"

	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildIndex(t *testing.T) *Rtree {
	t.Helper()
	g := da.NewGraph()
	g.AddNode(da.NewNode(1, -6.2000, 106.8000))
	g.AddNode(da.NewNode(2, -6.2010, 106.8000))
	g.AddNode(da.NewNode(3, -6.2000, 106.8100))
	g.AddNode(da.NewNode(4, -6.3000, 106.9000))

	rt := NewRtree()
	rt.Build(g, zap.NewNop())
	require.Equal(t, 4, rt.Len())
	return rt
}

func TestNearestNode(t *testing.T) {
	rt := buildIndex(t)

	tests := []struct {
		name       string
		lat, lon   float64
		want       da.NodeID
		wantMeters float64
	}{
		{name: "exact", lat: -6.2000, lon: 106.8000, want: 1, wantMeters: 0},
		{name: "closer to 2", lat: -6.2008, lon: 106.8000, want: 2, wantMeters: 22.22},
		{name: "needs a wider box", lat: -6.2000, lon: 106.8060, want: 3, wantMeters: 444.4},
		{name: "far node", lat: -6.2990, lon: 106.9000, want: 4, wantMeters: 111.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, dist, err := rt.NearestNode(tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
			assert.InDelta(t, tt.wantMeters, dist, 1e-3)
		})
	}
}

func TestNearestNodeOutOfRange(t *testing.T) {
	rt := buildIndex(t)
	_, _, err := rt.NearestNode(10, 10)
	assert.ErrorIs(t, err, ErrNoNodeNearby)

	_, _, err = NewRtree().NearestNode(0, 0)
	assert.ErrorIs(t, err, ErrNoNodeNearby)
}

func TestSearchWithinRadius(t *testing.T) {
	rt := buildIndex(t)
	found := rt.SearchWithinRadius(-6.2005, 106.8000, 100)
	assert.ElementsMatch(t, []da.NodeID{1, 2}, found)
	assert.Empty(t, rt.SearchWithinRadius(0, 0, 100))
}
