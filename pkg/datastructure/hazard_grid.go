package datastructure

import (
	"math"

	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/util"
)

// PixelColor. rgba.
type PixelColor [4]uint8

func NewPixelColor(r, g, b, a uint8) PixelColor {
	return PixelColor{r, g, b, a}
}

// Luma. ITU-R BT.601 luma of the rgb channels.
func (c PixelColor) Luma() uint8 {
	l := (299*uint32(c[0]) + 587*uint32(c[1]) + 114*uint32(c[2])) / 1000
	return uint8(l)
}

// HazardGrid. square raster, cell (x, y) is stored at y*size + x.
type HazardGrid struct {
	size      int
	cells     []PixelColor
	threshold uint8
}

func NewHazardGrid(size int) *HazardGrid {
	return &HazardGrid{
		size:      size,
		cells:     make([]PixelColor, size*size),
		threshold: pkg.GRID_BLOCKED_THRESHOLD,
	}
}

func NewHazardGridFromCells(size int, cells []PixelColor, threshold uint8) (*HazardGrid, error) {
	if size <= 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid grid size %d", size)
	}
	if len(cells) != size*size {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "grid of size %d needs %d cells, got %d", size,
			size*size, len(cells))
	}
	if threshold == 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "blocked threshold must be positive")
	}
	return &HazardGrid{
		size:      size,
		cells:     cells,
		threshold: threshold,
	}, nil
}

func (hg *HazardGrid) GetSize() int {
	return hg.size
}

func (hg *HazardGrid) GetThreshold() uint8 {
	return hg.threshold
}

func (hg *HazardGrid) GetCells() []PixelColor {
	return hg.cells
}

func (hg *HazardGrid) IsInside(x, y int) bool {
	return x >= 0 && y >= 0 && x < hg.size && y < hg.size
}

func (hg *HazardGrid) GetCell(x, y int) (PixelColor, bool) {
	if !hg.IsInside(x, y) {
		return PixelColor{}, false
	}
	return hg.cells[y*hg.size+x], true
}

// SetCell. only used by loaders while the grid is being built.
func (hg *HazardGrid) SetCell(x, y int, c PixelColor) {
	if !hg.IsInside(x, y) {
		return
	}
	hg.cells[y*hg.size+x] = c
}

// IsBlocked. any rgb channel at or above the threshold. cells outside the grid are not blocked, use IsInside.
func (hg *HazardGrid) IsBlocked(x, y int) bool {
	c, ok := hg.GetCell(x, y)
	if !ok {
		return false
	}
	return c[0] >= hg.threshold || c[1] >= hg.threshold || c[2] >= hg.threshold
}

// IsFree. inside the grid and not blocked. p is floored to its cell.
func (hg *HazardGrid) IsFree(p GridPosition) bool {
	x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
	return hg.IsInside(x, y) && !hg.IsBlocked(x, y)
}

func (hg *HazardGrid) NumberOfBlockedCells() int {
	count := 0
	for y := 0; y < hg.size; y++ {
		for x := 0; x < hg.size; x++ {
			if hg.IsBlocked(x, y) {
				count++
			}
		}
	}
	return count
}
