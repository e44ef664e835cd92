package geo

import (
	"github.com/golang/geo/s2"
)

// BoundingBox. lat/lon bounds of a map extract.
type BoundingBox struct {
	rect s2.Rect
}

func NewBoundingBox() BoundingBox {
	return BoundingBox{rect: s2.EmptyRect()}
}

func NewBoundingBoxFromBounds(minLat, minLon, maxLat, maxLon float64) BoundingBox {
	bb := NewBoundingBox()
	bb.Extend(minLat, minLon)
	bb.Extend(maxLat, maxLon)
	return bb
}

func (bb *BoundingBox) Extend(lat, lon float64) {
	bb.rect = bb.rect.AddPoint(s2.LatLngFromDegrees(lat, lon))
}

func (bb BoundingBox) Contains(lat, lon float64) bool {
	if bb.rect.IsEmpty() {
		return false
	}
	return bb.rect.ContainsLatLng(s2.LatLngFromDegrees(lat, lon))
}

func (bb BoundingBox) IsEmpty() bool {
	return bb.rect.IsEmpty()
}

func (bb BoundingBox) GetMinLat() float64 {
	return bb.rect.Lo().Lat.Degrees()
}

func (bb BoundingBox) GetMinLon() float64 {
	return bb.rect.Lo().Lng.Degrees()
}

func (bb BoundingBox) GetMaxLat() float64 {
	return bb.rect.Hi().Lat.Degrees()
}

func (bb BoundingBox) GetMaxLon() float64 {
	return bb.rect.Hi().Lng.Degrees()
}
