package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/swarmnav/pkg/logger"
	"github.com/lintang-b-s/swarmnav/pkg/osmparser"
)

var (
	mapFile   = flag.String("map", "./data/map.osm.pbf", "openstreetmap extract, .osm.pbf or .osm xml")
	graphFile = flag.String("out", "./data/map.graph", "output graph file")
	largest   = flag.Bool("largest_component", true, "keep only the largest strongly connected component")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	osmParser := osmparser.NewOSMParser(logger).WithLargestComponent(*largest)
	graph, err := osmParser.Parse(context.Background(), *mapFile)
	if err != nil {
		panic(err)
	}

	bb := graph.GetBoundingBox()
	logger.Sugar().Infof("map bounding box: (%f,%f) - (%f,%f)", bb.GetMinLat(), bb.GetMinLon(), bb.GetMaxLat(),
		bb.GetMaxLon())

	if err := graph.WriteGraph(*graphFile); err != nil {
		panic(err)
	}
	logger.Sugar().Infof("Preprocessing completed successfully, graph written to %s", *graphFile)
}
