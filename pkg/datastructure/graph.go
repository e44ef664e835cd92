package datastructure

import (
	"errors"

	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/geo"
	"github.com/lintang-b-s/swarmnav/pkg/util"
)

type NodeID int64

var ErrUnknownNode = errors.New("unknown node")

const (
	DEFAULT_GRAPH_NODES_CAPACITY = 5000
	// each way segment is stored in both directions
	DEFAULT_GRAPH_EDGES_CAPACITY = DEFAULT_GRAPH_NODES_CAPACITY * 2
)

// Node. equality is by id only, coordinates are payload.
type Node struct {
	id  NodeID
	lat float64
	lon float64
}

func NewNode(id NodeID, lat, lon float64) Node {
	return Node{
		id:  id,
		lat: lat,
		lon: lon,
	}
}

func (n Node) GetID() NodeID {
	return n.id
}

func (n Node) GetLat() float64 {
	return n.lat
}

func (n Node) GetLon() float64 {
	return n.lon
}

func (n Node) GetCoordinates() (float64, float64) {
	return n.lat, n.lon
}

func (n Node) Equal(other Node) bool {
	return n.id == other.id
}

// EdgeKey. ordered (from, to) pair.
type EdgeKey struct {
	From NodeID
	To   NodeID
}

func NewEdgeKey(from, to NodeID) EdgeKey {
	return EdgeKey{From: from, To: to}
}

type Edge struct {
	from        NodeID
	to          NodeID
	length      float64 // meters
	highwayType pkg.OsmHighwayType
}

func NewEdge(from, to NodeID, length float64, highwayType pkg.OsmHighwayType) Edge {
	return Edge{
		from:        from,
		to:          to,
		length:      length,
		highwayType: highwayType,
	}
}

func (e Edge) GetFrom() NodeID {
	return e.from
}

func (e Edge) GetTo() NodeID {
	return e.to
}

func (e Edge) GetLength() float64 {
	return e.length
}

func (e Edge) GetHighwayType() pkg.OsmHighwayType {
	return e.highwayType
}

func (e Edge) GetKey() EdgeKey {
	return NewEdgeKey(e.from, e.to)
}

// Equal. direction, length and highway type do not matter: edge(a,b) == edge(b,a).
func (e Edge) Equal(other Edge) bool {
	return (e.from == other.from && e.to == other.to) || (e.from == other.to && e.to == other.from)
}

// EdgeLength. flat-earth distance between two nodes in meters.
func EdgeLength(from, to Node) float64 {
	return geo.CalculateFlatEarthDistance(from.lat, from.lon, to.lat, to.lon)
}

// CreateEdge. synthetic edge between two nodes of the graph, length is always recomputed from the current
// node coordinates.
func CreateEdge(g *Graph, from, to NodeID) (Edge, error) {
	fromNode, ok := g.GetNode(from)
	if !ok {
		return Edge{}, util.WrapErrorf(nil, ErrUnknownNode, "cannot create edge %d->%d: node %d not found", from, to, from)
	}
	toNode, ok := g.GetNode(to)
	if !ok {
		return Edge{}, util.WrapErrorf(nil, ErrUnknownNode, "cannot create edge %d->%d: node %d not found", from, to, to)
	}
	return NewEdge(from, to, EdgeLength(fromNode, toNode), pkg.NOT_APPLICABLE), nil
}

// Graph. road network. built once by a loader, then shared read-only by every search.
type Graph struct {
	nodes           map[NodeID]Node
	edges           []Edge
	edgeByNodeId    map[EdgeKey]Edge
	edgeConnections map[NodeID][]NodeID // source node -> target nodes, insertion order, not deduplicated
	boundingBox     geo.BoundingBox
}

func NewGraph() *Graph {
	return &Graph{
		nodes:           make(map[NodeID]Node, DEFAULT_GRAPH_NODES_CAPACITY),
		edges:           make([]Edge, 0, DEFAULT_GRAPH_EDGES_CAPACITY),
		edgeByNodeId:    make(map[EdgeKey]Edge, DEFAULT_GRAPH_EDGES_CAPACITY),
		edgeConnections: make(map[NodeID][]NodeID, DEFAULT_GRAPH_NODES_CAPACITY),
		boundingBox:     geo.NewBoundingBox(),
	}
}

// AddNode. a node with an already known id replaces the stored coordinates, the bounding box is then rebuilt so
// it no longer covers the old position.
func (g *Graph) AddNode(n Node) {
	old, known := g.nodes[n.id]
	g.nodes[n.id] = n
	if known && (old.lat != n.lat || old.lon != n.lon) {
		g.rebuildBoundingBox()
		return
	}
	g.boundingBox.Extend(n.lat, n.lon)
}

func (g *Graph) rebuildBoundingBox() {
	g.boundingBox = geo.NewBoundingBox()
	for _, n := range g.nodes {
		g.boundingBox.Extend(n.lat, n.lon)
	}
}

// AddEdge. directed. bidirectional segments need the reverse edge inserted by the caller.
func (g *Graph) AddEdge(e Edge) {
	g.edgeByNodeId[e.GetKey()] = e
	g.edges = append(g.edges, e)
}

func (g *Graph) AddEdgeConnection(from, to NodeID) {
	g.edgeConnections[from] = append(g.edgeConnections[from], to)
}

func (g *Graph) GetNode(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// ContainsNode. lookup by id, coordinates of n are ignored.
func (g *Graph) ContainsNode(n Node) bool {
	_, ok := g.nodes[n.id]
	return ok
}

func (g *Graph) GetEdge(from, to NodeID) (Edge, bool) {
	e, ok := g.edgeByNodeId[NewEdgeKey(from, to)]
	return e, ok
}

func (g *Graph) GetEdges() []Edge {
	return g.edges
}

// GetAdjacency. nodes reachable by one edge from id, in insertion order.
func (g *Graph) GetAdjacency(id NodeID) ([]NodeID, bool) {
	adj, ok := g.edgeConnections[id]
	return adj, ok
}

func (g *Graph) NumberOfNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) NumberOfAdjacencyKeys() int {
	return len(g.edgeConnections)
}

func (g *Graph) ForNodes(handle func(n Node)) {
	for _, n := range g.nodes {
		handle(n)
	}
}

func (g *Graph) GetBoundingBox() geo.BoundingBox {
	return g.boundingBox
}

// Distance. flat-earth distance between two node ids.
func (g *Graph) Distance(from, to NodeID) (float64, error) {
	fromNode, ok := g.nodes[from]
	if !ok {
		return 0, util.WrapErrorf(nil, ErrUnknownNode, "node %d not found", from)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return 0, util.WrapErrorf(nil, ErrUnknownNode, "node %d not found", to)
	}
	return EdgeLength(fromNode, toNode), nil
}
