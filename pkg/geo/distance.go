package geo

import (
	"math"

	"github.com/lintang-b-s/swarmnav/pkg"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// CalculateFlatEarthDistance. euclidean distance in (lat, lon) degree space scaled by pkg.METERS_PER_DEGREE.
// returns meters. not a geodesic distance: search tuning constants (pheromone deltas, fitness thresholds)
// are calibrated against this exact formula.
func CalculateFlatEarthDistance(latOne, lonOne, latTwo, lonTwo float64) float64 {
	latDiff := latOne - latTwo
	lonDiff := lonOne - lonTwo
	return math.Sqrt(latDiff*latDiff+lonDiff*lonDiff) * pkg.METERS_PER_DEGREE
}

// MetersToDegrees. inverse of the flat-earth scale.
func MetersToDegrees(meters float64) float64 {
	return meters / pkg.METERS_PER_DEGREE
}
