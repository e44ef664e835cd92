package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFlatEarthDistance(t *testing.T) {
	tests := []struct {
		name                           string
		latOne, lonOne, latTwo, lonTwo float64
		want                           float64
	}{
		{name: "same point", latOne: 1, lonOne: 1, latTwo: 1, lonTwo: 1, want: 0},
		{name: "3-4-5 triangle", latOne: 0, lonOne: 0, latTwo: 3, lonTwo: 4, want: 555500},
		{name: "one degree of longitude", latOne: 50, lonOne: 19, latTwo: 50, lonTwo: 20, want: 111100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFlatEarthDistance(tt.latOne, tt.lonOne, tt.latTwo, tt.lonTwo)
			assert.InDelta(t, tt.want, got, 1e-6)
			assert.InDelta(t, tt.want, CalculateFlatEarthDistance(tt.latTwo, tt.lonTwo, tt.latOne, tt.lonOne), 1e-6)
		})
	}

	assert.InDelta(t, 1.0, MetersToDegrees(111100), 1e-12)
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox()
	assert.True(t, bb.IsEmpty())
	assert.False(t, bb.Contains(0, 0))

	bb.Extend(-6.2, 106.8)
	bb.Extend(-6.3, 106.9)
	assert.False(t, bb.IsEmpty())
	assert.True(t, bb.Contains(-6.25, 106.85))
	assert.False(t, bb.Contains(-6.25, 107.0))
	assert.InDelta(t, -6.3, bb.GetMinLat(), 1e-9)
	assert.InDelta(t, 106.9, bb.GetMaxLon(), 1e-9)

	fromBounds := NewBoundingBoxFromBounds(-6.3, 106.8, -6.2, 106.9)
	assert.InDelta(t, bb.GetMaxLat(), fromBounds.GetMaxLat(), 1e-9)
	assert.InDelta(t, bb.GetMinLon(), fromBounds.GetMinLon(), 1e-9)
}

func TestPolyline(t *testing.T) {
	coords := []Coordinate{
		NewCoordinate(38.5, -120.2),
		NewCoordinate(40.7, -120.95),
		NewCoordinate(43.252, -126.453),
	}

	encoded := PolylineFromCoords(coords)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded, err := CoordsFromPolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range coords {
		assert.InDelta(t, coords[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, coords[i].Lon, decoded[i].Lon, 1e-5)
	}
}
