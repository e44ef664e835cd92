package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/util"
)

var ErrInvalidGraphFile = errors.New("invalid graph file")

// WriteGraph. bzip2 compressed text:
//
//	numNodes numEdges numAdjacencyKeys
//	id lat lon                       (numNodes lines, ascending id)
//	from to length highwayType       (numEdges lines, insertion order)
//	from n to_1 ... to_n             (numAdjacencyKeys lines, ascending from, list order kept)
func (g *Graph) WriteGraph(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return g.WriteTo(f)
}

func (g *Graph) WriteTo(out io.Writer) error {
	bz, err := bzip2.NewWriter(out, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d %d\n", g.NumberOfNodes(), g.NumberOfEdges(), g.NumberOfAdjacencyKeys())

	nodeIds := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		nodeIds = append(nodeIds, id)
	}
	slices.Sort(nodeIds)

	for _, id := range nodeIds {
		n := g.nodes[id]
		latF := strconv.FormatFloat(n.lat, 'f', -1, 64)
		lonF := strconv.FormatFloat(n.lon, 'f', -1, 64)
		fmt.Fprintf(w, "%d %s %s\n", n.id, latF, lonF)
	}

	for _, e := range g.edges {
		lengthF := strconv.FormatFloat(e.length, 'f', -1, 64)
		fmt.Fprintf(w, "%d %d %s %d\n", e.from, e.to, lengthF, e.highwayType)
	}

	adjKeys := make([]NodeID, 0, len(g.edgeConnections))
	for id := range g.edgeConnections {
		adjKeys = append(adjKeys, id)
	}
	slices.Sort(adjKeys)

	for _, from := range adjKeys {
		targets := g.edgeConnections[from]
		fmt.Fprintf(w, "%d %d", from, len(targets))
		for _, to := range targets {
			fmt.Fprintf(w, " %d", to)
		}
		fmt.Fprintf(w, "\n")
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func ReadGraph(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadGraphFrom(f)
}

func ReadGraphFrom(in io.Reader) (*Graph, error) {
	bz, err := bzip2.NewReader(in, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	br := bufio.NewReader(bz)

	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return nil, fmt.Errorf("%w: header must have 3 fields, got %d", ErrInvalidGraphFile, len(tokens))
	}
	header := make([]int, 3)
	for i, tok := range tokens {
		header[i], err = strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGraphFile, err)
		}
	}
	numNodes, numEdges, numAdjKeys := header[0], header[1], header[2]

	g := NewGraph()

	for i := 0; i < numNodes; i++ {
		line, err = readLine(br)
		if err != nil {
			return nil, err
		}
		n, err := parseNode(line)
		if err != nil {
			return nil, err
		}
		g.AddNode(n)
	}

	for i := 0; i < numEdges; i++ {
		line, err = readLine(br)
		if err != nil {
			return nil, err
		}
		e, err := parseEdge(line)
		if err != nil {
			return nil, err
		}
		g.AddEdge(e)
	}

	for i := 0; i < numAdjKeys; i++ {
		line, err = readLine(br)
		if err != nil {
			return nil, err
		}
		tokens = strings.Fields(line)
		if len(tokens) < 2 {
			return nil, fmt.Errorf("%w: adjacency line %q", ErrInvalidGraphFile, line)
		}
		from, err := parseNodeID(tokens[0])
		if err != nil {
			return nil, err
		}
		count, err := strconv.Atoi(tokens[1])
		if err != nil || count != len(tokens)-2 {
			return nil, fmt.Errorf("%w: adjacency line %q", ErrInvalidGraphFile, line)
		}
		for _, tok := range tokens[2:] {
			to, err := parseNodeID(tok)
			if err != nil {
				return nil, err
			}
			g.AddEdgeConnection(from, to)
		}
	}

	if err := g.checkReferences(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkReferences. every edge endpoint and adjacency entry must name a node of the node section.
func (g *Graph) checkReferences() error {
	for _, e := range g.edges {
		for _, id := range []NodeID{e.from, e.to} {
			if _, ok := g.nodes[id]; !ok {
				return util.WrapErrorf(nil, ErrInvalidGraphFile, "edge %d->%d references unknown node %d",
					e.from, e.to, id)
			}
		}
	}
	for from, targets := range g.edgeConnections {
		if _, ok := g.nodes[from]; !ok {
			return util.WrapErrorf(nil, ErrInvalidGraphFile, "adjacency of unknown node %d", from)
		}
		for _, to := range targets {
			if _, ok := g.nodes[to]; !ok {
				return util.WrapErrorf(nil, ErrInvalidGraphFile, "adjacency %d->%d references unknown node %d",
					from, to, to)
			}
		}
	}
	return nil
}

func parseNode(line string) (Node, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return Node{}, fmt.Errorf("%w: node line %q", ErrInvalidGraphFile, line)
	}
	id, err := parseNodeID(tokens[0])
	if err != nil {
		return Node{}, err
	}
	lat, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrInvalidGraphFile, err)
	}
	lon, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrInvalidGraphFile, err)
	}
	return NewNode(id, lat, lon), nil
}

func parseEdge(line string) (Edge, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 4 {
		return Edge{}, fmt.Errorf("%w: edge line %q", ErrInvalidGraphFile, line)
	}
	from, err := parseNodeID(tokens[0])
	if err != nil {
		return Edge{}, err
	}
	to, err := parseNodeID(tokens[1])
	if err != nil {
		return Edge{}, err
	}
	length, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %v", ErrInvalidGraphFile, err)
	}
	hwType, err := strconv.ParseUint(tokens[3], 10, 8)
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %v", ErrInvalidGraphFile, err)
	}
	return NewEdge(from, to, length, pkg.OsmHighwayType(hwType)), nil
}

func parseNodeID(s string) (NodeID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidGraphFile, err)
	}
	return NodeID(id), nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: unexpected end of file", ErrInvalidGraphFile)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
