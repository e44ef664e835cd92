package spatialindex

import (
	"errors"
	"math"

	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

var ErrNoNodeNearby = errors.New("no graph node within the search radius")

const (
	initialSearchRadius = 50.0 // meters
	maxSearchRadius     = 50_000.0
)

// Rtree. point index over graph nodes, used to snap request coordinates to the nearest node.
type Rtree struct {
	tr *rtree.RTreeG[da.NodeID]
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[da.NodeID]
	return &Rtree{
		tr: &tr,
	}
}

// Build. one leaf per node, keyed [lon, lat].
func (rt *Rtree) Build(graph *da.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	graph.ForNodes(func(n da.Node) {
		p := [2]float64{n.GetLon(), n.GetLat()}
		rt.tr.Insert(p, p, n.GetID())
	})
	log.Info("R-tree spatial index built.", zap.Int("nodes", rt.tr.Len()))
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius. all nodes inside the square of half-side radius (meters) around (qLat, qLon).
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []da.NodeID {
	results := make([]da.NodeID, 0, 10)
	rt.searchBox(qLat, qLon, radius, func(_ [2]float64, id da.NodeID) {
		results = append(results, id)
	})
	return results
}

// NearestNode. grows the search box until it hits a node, then searches once more with the best distance
// found so the corner candidates of the first box cannot shadow a closer node just outside it.
func (rt *Rtree) NearestNode(qLat, qLon float64) (da.NodeID, float64, error) {
	for radius := initialSearchRadius; radius <= maxSearchRadius; radius *= 2 {
		id, dist, found := rt.nearestWithin(qLat, qLon, radius)
		if !found {
			continue
		}
		if dist > radius {
			id, dist, _ = rt.nearestWithin(qLat, qLon, dist)
		}
		return id, dist, nil
	}
	return 0, 0, ErrNoNodeNearby
}

func (rt *Rtree) nearestWithin(qLat, qLon, radius float64) (da.NodeID, float64, bool) {
	best := math.Inf(1)
	var bestID da.NodeID
	found := false
	rt.searchBox(qLat, qLon, radius, func(p [2]float64, id da.NodeID) {
		d := geo.CalculateFlatEarthDistance(qLat, qLon, p[1], p[0])
		if d < best || (d == best && id < bestID) {
			best, bestID, found = d, id, true
		}
	})
	return bestID, best, found
}

func (rt *Rtree) searchBox(qLat, qLon, radius float64, handle func(p [2]float64, id da.NodeID)) {
	deg := geo.MetersToDegrees(radius)
	rt.tr.Search([2]float64{qLon - deg, qLat - deg}, [2]float64{qLon + deg, qLat + deg},
		func(min, max [2]float64, data da.NodeID) bool {
			handle(min, data)
			return true
		})
}
