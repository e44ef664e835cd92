package datastructure

import (
	"slices"
	"sort"
)

// StronglyConnectedComponents. kosaraju's algorithm over the adjacency index, with an explicit stack so
// country-sized maps do not recurse millions of frames deep. components come back largest first (ties by
// smallest node id), node ids ascending inside a component.
func (g *Graph) StronglyConnectedComponents() [][]NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	reversed := make(map[NodeID][]NodeID, len(g.edgeConnections))
	for _, from := range ids {
		for _, to := range g.edgeConnections[from] {
			reversed[to] = append(reversed[to], from)
		}
	}

	order := make([]NodeID, 0, len(ids))
	visited := make(map[NodeID]bool, len(ids))
	for _, v := range ids {
		if !visited[v] {
			g.dfs(v, g.edgeConnections, visited, &order)
		}
	}
	slices.Reverse(order)

	visited = make(map[NodeID]bool, len(ids))
	components := make([][]NodeID, 0, 10)
	for _, v := range order {
		if visited[v] {
			continue
		}
		component := make([]NodeID, 0, 10)
		g.dfs(v, reversed, visited, &component)
		slices.Sort(component)
		components = append(components, component)
	}

	sort.SliceStable(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0] < components[j][0]
	})
	return components
}

// dfs. appends v and everything reachable from it to output in post order. only nodes known to the graph are
// visited, adjacency entries pointing at missing nodes are ignored.
func (g *Graph) dfs(v NodeID, adj map[NodeID][]NodeID, visited map[NodeID]bool, output *[]NodeID) {
	type frame struct {
		node NodeID
		next int
	}
	visited[v] = true
	stack := []frame{{node: v}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		neighbors := adj[top.node]
		if top.next < len(neighbors) {
			w := neighbors[top.next]
			top.next++
			if _, known := g.nodes[w]; known && !visited[w] {
				visited[w] = true
				stack = append(stack, frame{node: w})
			}
			continue
		}
		*output = append(*output, top.node)
		stack = stack[:len(stack)-1]
	}
}

// LargestComponentSubgraph. copy of the graph restricted to its largest strongly connected component. edge and
// adjacency insertion order is preserved.
func (g *Graph) LargestComponentSubgraph() *Graph {
	sub := NewGraph()
	components := g.StronglyConnectedComponents()
	if len(components) == 0 {
		return sub
	}

	keep := make(map[NodeID]struct{}, len(components[0]))
	for _, id := range components[0] {
		keep[id] = struct{}{}
		sub.AddNode(g.nodes[id])
	}

	inside := func(from, to NodeID) bool {
		_, okFrom := keep[from]
		_, okTo := keep[to]
		return okFrom && okTo
	}
	for _, e := range g.edges {
		if inside(e.from, e.to) {
			sub.AddEdge(e)
		}
	}
	for _, from := range components[0] {
		for _, to := range g.edgeConnections[from] {
			if inside(from, to) {
				sub.AddEdgeConnection(from, to)
			}
		}
	}
	return sub
}
