package routing

import (
	"testing"

	"github.com/lintang-b-s/swarmnav/pkg"
	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	id       da.NodeID
	lat, lon float64
}

// buildGraph. every segment is inserted in both directions, like the map loader does.
func buildGraph(t *testing.T, nodes []testNode, segments [][2]da.NodeID) *da.Graph {
	t.Helper()
	g := da.NewGraph()
	for _, n := range nodes {
		g.AddNode(da.NewNode(n.id, n.lat, n.lon))
	}
	for _, s := range segments {
		from, ok := g.GetNode(s[0])
		require.True(t, ok)
		to, ok := g.GetNode(s[1])
		require.True(t, ok)
		length := da.EdgeLength(from, to)
		g.AddEdge(da.NewEdge(s[0], s[1], length, pkg.RESIDENTIAL))
		g.AddEdge(da.NewEdge(s[1], s[0], length, pkg.RESIDENTIAL))
		g.AddEdgeConnection(s[0], s[1])
		g.AddEdgeConnection(s[1], s[0])
	}
	return g
}

// singlePathGraph. 1-2-3-4-5 along the equator plus dead end branches 2-6 and 3-7.
func singlePathGraph(t *testing.T) *da.Graph {
	return buildGraph(t, []testNode{
		{1, 0, 0},
		{2, 0, 0.001},
		{3, 0, 0.002},
		{4, 0, 0.003},
		{5, 0, 0.004},
		{6, 0.001, 0.001},
		{7, -0.001, 0.002},
	}, [][2]da.NodeID{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {2, 6}, {3, 7}})
}

// gridGraph. size x size lattice, node id = row*size + col + 1.
func gridGraph(t *testing.T, size int) *da.Graph {
	nodes := make([]testNode, 0, size*size)
	segments := make([][2]da.NodeID, 0)
	id := func(r, c int) da.NodeID { return da.NodeID(r*size + c + 1) }
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			nodes = append(nodes, testNode{id(r, c), float64(r) * 0.001, float64(c) * 0.001})
			if c+1 < size {
				segments = append(segments, [2]da.NodeID{id(r, c), id(r, c+1)})
			}
			if r+1 < size {
				segments = append(segments, [2]da.NodeID{id(r, c), id(r+1, c)})
			}
		}
	}
	return buildGraph(t, nodes, segments)
}

// requireConnected. every consecutive pair of edges shares a node and every edge is in the adjacency index.
func requireConnected(t *testing.T, g *da.Graph, route da.Route) {
	t.Helper()
	edges := route.GetEdges()
	for i, e := range edges {
		adj, ok := g.GetAdjacency(e.GetFrom())
		require.True(t, ok)
		require.Contains(t, adj, e.GetTo())
		if i > 0 {
			require.Equal(t, edges[i-1].GetTo(), e.GetFrom())
		}
	}
}

type fixedRandom struct {
	floats []float64
	i      int
}

func (f *fixedRandom) Float64() float64 {
	v := f.floats[f.i%len(f.floats)]
	f.i++
	return v
}

func (f *fixedRandom) Int63() int64 {
	return int64(f.i)
}

func (f *fixedRandom) Intn(n int) int {
	return int(f.Float64() * float64(n))
}
