package usecases

import (
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/geo"
	"github.com/lintang-b-s/swarmnav/pkg/util"
)

func (rs *RoutingService) snapOrigDestToNearbyNodes(origLat, origLon, dstLat, dstLon float64) (datastructure.NodeID,
	datastructure.NodeID, error) {
	bb := rs.engine.GetGraph().GetBoundingBox()
	if !bb.Contains(origLat, origLon) {
		return 0, 0, util.WrapErrorf(nil, util.ErrBadParamInput, "origin %f,%f is outside the map", origLat, origLon)
	}
	if !bb.Contains(dstLat, dstLon) {
		return 0, 0, util.WrapErrorf(nil, util.ErrBadParamInput, "destination %f,%f is outside the map", dstLat,
			dstLon)
	}

	start, _, err := rs.spatialIndex.NearestNode(origLat, origLon)
	if err != nil {
		return 0, 0, util.WrapErrorf(err, util.ErrNotFound, "no road near origin %f,%f", origLat, origLon)
	}
	end, _, err := rs.spatialIndex.NearestNode(dstLat, dstLon)
	if err != nil {
		return 0, 0, util.WrapErrorf(err, util.ErrNotFound, "no road near destination %f,%f", dstLat, dstLon)
	}
	return start, end, nil
}

func routePolyline(graph *datastructure.Graph, route datastructure.Route) string {
	nodes := route.GetNodeSequence()
	coords := make([]geo.Coordinate, 0, len(nodes))
	for _, id := range nodes {
		n, ok := graph.GetNode(id)
		if !ok {
			continue
		}
		coords = append(coords, geo.NewCoordinate(n.GetLat(), n.GetLon()))
	}
	return geo.PolylineFromCoords(coords)
}
