package osmparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lintang-b-s/swarmnav/pkg"
	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"
)

var ErrEmptyMap = errors.New("map extract has no routable ways")

type osmWay struct {
	id      int64
	nodes   []int64
	highway pkg.OsmHighwayType
}

// OsmParser. two scans over the extract: the first keeps ways with an approved highway tag, the second picks up
// the coordinates of the nodes those ways reference.
type OsmParser struct {
	logger          *zap.Logger
	ways            []osmWay
	wayNodes        map[int64]struct{}
	acceptedNodeMap map[int64]da.Node
	skippedSegments int
	largestOnly     bool
}

func NewOSMParser(logger *zap.Logger) *OsmParser {
	return &OsmParser{
		logger:          logger,
		ways:            make([]osmWay, 0),
		wayNodes:        make(map[int64]struct{}),
		acceptedNodeMap: make(map[int64]da.Node),
	}
}

// WithLargestComponent. drop every node outside the largest strongly connected component, so no search can
// start or end on an island.
func (p *OsmParser) WithLargestComponent(largestOnly bool) *OsmParser {
	p.largestOnly = largestOnly
	return p
}

func (p *OsmParser) GetSkippedSegments() int {
	return p.skippedSegments
}

// Parse. .osm.pbf / .pbf files go through osmpbf, everything else is read as osm xml.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*da.Graph, error) {
	open := func() (osm.Scanner, io.Closer, error) {
		f, err := os.Open(mapFile)
		if err != nil {
			return nil, nil, err
		}
		if strings.HasSuffix(mapFile, ".pbf") {
			return osmpbf.New(ctx, f, 1), f, nil
		}
		return osmxml.New(ctx, f), f, nil
	}

	p.logger.Info("scanning openstreetmap ways", zap.String("mapFile", mapFile))
	sc, f, err := open()
	if err != nil {
		return nil, err
	}
	err = p.scanWays(sc)
	sc.Close()
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("scanning ways of %s: %w", mapFile, err)
	}

	p.logger.Info("scanning openstreetmap nodes", zap.Int("ways", len(p.ways)))
	sc, f, err = open()
	if err != nil {
		return nil, err
	}
	err = p.scanNodes(sc)
	sc.Close()
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("scanning nodes of %s: %w", mapFile, err)
	}

	return p.buildGraph()
}

// ParseXML. whole osm xml document held in memory, used for small extracts.
func (p *OsmParser) ParseXML(ctx context.Context, r io.Reader) (*da.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	sc := osmxml.New(ctx, bytes.NewReader(data))
	err = p.scanWays(sc)
	sc.Close()
	if err != nil {
		return nil, err
	}

	sc = osmxml.New(ctx, bytes.NewReader(data))
	err = p.scanNodes(sc)
	sc.Close()
	if err != nil {
		return nil, err
	}

	return p.buildGraph()
}

func (p *OsmParser) scanWays(sc osm.Scanner) error {
	countWays := 0
	for sc.Scan() {
		way, ok := sc.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 {
			continue
		}
		highway, ok := acceptOsmWay(way)
		if !ok {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		nodes := make([]int64, 0, len(way.Nodes))
		for _, n := range way.Nodes {
			nodes = append(nodes, int64(n.ID))
			p.wayNodes[int64(n.ID)] = struct{}{}
		}
		p.ways = append(p.ways, osmWay{id: int64(way.ID), nodes: nodes, highway: highway})
	}
	return sc.Err()
}

func (p *OsmParser) scanNodes(sc osm.Scanner) error {
	for sc.Scan() {
		node, ok := sc.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, ok := p.wayNodes[int64(node.ID)]; !ok {
			continue
		}
		p.acceptedNodeMap[int64(node.ID)] = da.NewNode(da.NodeID(node.ID), node.Lat, node.Lon)
	}
	return sc.Err()
}

// buildGraph. every way segment is inserted in both directions, as edges and as adjacency entries.
func (p *OsmParser) buildGraph() (*da.Graph, error) {
	g := da.NewGraph()
	for _, n := range p.acceptedNodeMap {
		g.AddNode(n)
	}

	for _, way := range p.ways {
		for i := 0; i+1 < len(way.nodes); i++ {
			from, okFrom := p.acceptedNodeMap[way.nodes[i]]
			to, okTo := p.acceptedNodeMap[way.nodes[i+1]]
			if !okFrom || !okTo {
				// extracts clipped at a bounding box reference nodes outside of it
				p.skippedSegments++
				continue
			}

			length := da.EdgeLength(from, to)
			g.AddEdge(da.NewEdge(from.GetID(), to.GetID(), length, way.highway))
			g.AddEdge(da.NewEdge(to.GetID(), from.GetID(), length, way.highway))
			g.AddEdgeConnection(from.GetID(), to.GetID())
			g.AddEdgeConnection(to.GetID(), from.GetID())
		}
	}

	if p.skippedSegments > 0 {
		p.logger.Warn("way segments referencing missing nodes were skipped", zap.Int("segments", p.skippedSegments))
	}
	if g.NumberOfEdges() == 0 {
		return nil, ErrEmptyMap
	}

	if p.largestOnly {
		before := g.NumberOfNodes()
		g = g.LargestComponentSubgraph()
		p.logger.Sugar().Infof("kept the largest strongly connected component: %d of %d nodes", g.NumberOfNodes(),
			before)
	}

	p.logger.Sugar().Infof("graph built: %d nodes, %d edges", g.NumberOfNodes(), g.NumberOfEdges())
	return g, nil
}

func acceptOsmWay(way *osm.Way) (pkg.OsmHighwayType, bool) {
	return pkg.GetHighwayType(way.Tags.Find("highway"))
}
