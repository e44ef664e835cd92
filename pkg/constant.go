package pkg

// enum of route generator strategy. numeric values are part of the external contract, do not reorder.
type StrategyType uint8

const (
	EMPTY StrategyType = iota
	GREEDY
	ACO
	PSO
)

func (s StrategyType) String() string {
	switch s {
	case EMPTY:
		return "empty"
	case GREEDY:
		return "greedy"
	case ACO:
		return "aco"
	case PSO:
		return "pso"
	default:
		return "unknown"
	}
}

func GetStrategyType(name string) (StrategyType, bool) {
	switch name {
	case "empty":
		return EMPTY, true
	case "greedy":
		return GREEDY, true
	case "aco":
		return ACO, true
	case "pso":
		return PSO, true
	default:
		return EMPTY, false
	}
}

// enum of generation mode. WX = hazard raster (weather radar), GRAPH = road network.
type GenerationMode uint8

const (
	WX GenerationMode = iota
	GRAPH
)

const (
	INF_WEIGHT float64 = 1e15

	// flat-earth approximation, meters per degree.
	METERS_PER_DEGREE = 111.1 * 1000.0

	// radar grid is GRID_SIZE x GRID_SIZE cells
	GRID_SIZE = 100
	// a grid cell is blocked if any colour channel is >= this value
	GRID_BLOCKED_THRESHOLD uint8 = 1
)

type OsmHighwayType uint8

// approved osm highway classes. only ways tagged with one of these end up in the graph.
const (
	MOTORWAY       OsmHighwayType = 0
	TRUNK          OsmHighwayType = 1
	PRIMARY        OsmHighwayType = 2
	SECONDARY      OsmHighwayType = 3
	TERTIARY       OsmHighwayType = 4
	RESIDENTIAL    OsmHighwayType = 5
	MOTORWAY_LINK  OsmHighwayType = 6
	TRUNK_LINK     OsmHighwayType = 7
	PRIMARY_LINK   OsmHighwayType = 8
	SECONDARY_LINK OsmHighwayType = 9
	TERTIARY_LINK  OsmHighwayType = 10
	LIVING_STREET  OsmHighwayType = 11
	NOT_APPLICABLE OsmHighwayType = 12 // synthetic edges
)

// GetHighwayType. returns false for every highway value that is not an approved road class.
func GetHighwayType(roadType string) (OsmHighwayType, bool) {
	switch roadType {
	case "motorway":
		return MOTORWAY, true
	case "trunk":
		return TRUNK, true
	case "primary":
		return PRIMARY, true
	case "secondary":
		return SECONDARY, true
	case "tertiary":
		return TERTIARY, true
	case "residential":
		return RESIDENTIAL, true
	case "motorway_link":
		return MOTORWAY_LINK, true
	case "trunk_link":
		return TRUNK_LINK, true
	case "primary_link":
		return PRIMARY_LINK, true
	case "secondary_link":
		return SECONDARY_LINK, true
	case "tertiary_link":
		return TERTIARY_LINK, true
	case "living_street":
		return LIVING_STREET, true
	default:
		return NOT_APPLICABLE, false
	}
}

func (h OsmHighwayType) String() string {
	switch h {
	case MOTORWAY:
		return "motorway"
	case TRUNK:
		return "trunk"
	case PRIMARY:
		return "primary"
	case SECONDARY:
		return "secondary"
	case TERTIARY:
		return "tertiary"
	case RESIDENTIAL:
		return "residential"
	case MOTORWAY_LINK:
		return "motorway_link"
	case TRUNK_LINK:
		return "trunk_link"
	case PRIMARY_LINK:
		return "primary_link"
	case SECONDARY_LINK:
		return "secondary_link"
	case TERTIARY_LINK:
		return "tertiary_link"
	case LIVING_STREET:
		return "living_street"
	default:
		return "n/a"
	}
}
