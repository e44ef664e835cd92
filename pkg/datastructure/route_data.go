package datastructure

type RouteDetails struct {
	startingNode NodeID
	endingNode   NodeID
}

func NewRouteDetails(startingNode, endingNode NodeID) RouteDetails {
	return RouteDetails{
		startingNode: startingNode,
		endingNode:   endingNode,
	}
}

func (rd RouteDetails) GetStartingNode() NodeID {
	return rd.startingNode
}

func (rd RouteDetails) GetEndingNode() NodeID {
	return rd.endingNode
}

// Route. edges in traversal order, cycles are allowed.
type Route struct {
	edges []Edge
}

func NewRoute(edges []Edge) Route {
	return Route{edges: edges}
}

func NewEmptyRoute() Route {
	return Route{edges: make([]Edge, 0)}
}

func (r Route) GetEdges() []Edge {
	return r.edges
}

func (r Route) Len() int {
	return len(r.edges)
}

func (r Route) IsEmpty() bool {
	return len(r.edges) == 0
}

func (r *Route) Append(e Edge) {
	r.edges = append(r.edges, e)
}

// Contains. undirected containment, see Edge.Equal.
func (r Route) Contains(e Edge) bool {
	for _, re := range r.edges {
		if re.Equal(e) {
			return true
		}
	}
	return false
}

func (r Route) GetLastEdge() (Edge, bool) {
	if len(r.edges) == 0 {
		return Edge{}, false
	}
	return r.edges[len(r.edges)-1], true
}

// ReachesNode. true if the last edge ends at id.
func (r Route) ReachesNode(id NodeID) bool {
	last, ok := r.GetLastEdge()
	return ok && last.to == id
}

func (r Route) GetLength() float64 {
	total := 0.0
	for _, e := range r.edges {
		total += e.length
	}
	return total
}

// GetNodeSequence. start node followed by the head of every edge.
func (r Route) GetNodeSequence() []NodeID {
	if len(r.edges) == 0 {
		return []NodeID{}
	}
	seq := make([]NodeID, 0, len(r.edges)+1)
	seq = append(seq, r.edges[0].from)
	for _, e := range r.edges {
		seq = append(seq, e.to)
	}
	return seq
}

// Copy. routes handed out to callers never share backing arrays with search state.
func (r Route) Copy() Route {
	edges := make([]Edge, len(r.edges))
	copy(edges, r.edges)
	return Route{edges: edges}
}

// GridPosition. continuous position in raster cell units.
type GridPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewGridPosition(x, y float64) GridPosition {
	return GridPosition{X: x, Y: y}
}

type WxRouteDetails struct {
	startingPosition GridPosition
	endingPosition   GridPosition
}

func NewWxRouteDetails(startingPosition, endingPosition GridPosition) WxRouteDetails {
	return WxRouteDetails{
		startingPosition: startingPosition,
		endingPosition:   endingPosition,
	}
}

func (wd WxRouteDetails) GetStartingPosition() GridPosition {
	return wd.startingPosition
}

func (wd WxRouteDetails) GetEndingPosition() GridPosition {
	return wd.endingPosition
}

// PixRoute. one position per recorded simulation step. a convergence trace, not a validated path.
type PixRoute struct {
	positions []GridPosition
}

func NewPixRoute(positions []GridPosition) PixRoute {
	return PixRoute{positions: positions}
}

func NewEmptyPixRoute() PixRoute {
	return PixRoute{positions: make([]GridPosition, 0)}
}

func (pr PixRoute) GetPositions() []GridPosition {
	return pr.positions
}

func (pr PixRoute) Len() int {
	return len(pr.positions)
}

func (pr PixRoute) IsEmpty() bool {
	return len(pr.positions) == 0
}

func (pr *PixRoute) Append(p GridPosition) {
	pr.positions = append(pr.positions, p)
}
