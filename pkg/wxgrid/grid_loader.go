package wxgrid

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/lintang-b-s/swarmnav/pkg"
	da "github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
)

// GridLoader. reduces a radar frame to a gridSize x gridSize hazard raster. every cell keeps the brightest
// (highest luma) pixel of the image block it covers.
type GridLoader struct {
	logger    *zap.Logger
	gridSize  int
	threshold uint8
}

func NewGridLoader(logger *zap.Logger) *GridLoader {
	return &GridLoader{
		logger:    logger,
		gridSize:  pkg.GRID_SIZE,
		threshold: pkg.GRID_BLOCKED_THRESHOLD,
	}
}

func (gl *GridLoader) WithGridSize(size int) *GridLoader {
	gl.gridSize = size
	return gl
}

func (gl *GridLoader) WithThreshold(threshold uint8) *GridLoader {
	gl.threshold = threshold
	return gl
}

func (gl *GridLoader) LoadFile(imagePath string) (*da.HazardGrid, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrNotFound, "opening radar frame %s", imagePath)
	}
	defer f.Close()
	return gl.Load(f)
}

func (gl *GridLoader) Load(r io.Reader) (*da.HazardGrid, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "decoding radar frame")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "radar frame is empty")
	}
	gl.logger.Sugar().Infof("radar frame loaded: %dx%d pixels", width, height)

	if gl.gridSize <= 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid grid size %d", gl.gridSize)
	}
	cells := gl.reduce(img)
	grid, err := da.NewHazardGridFromCells(gl.gridSize, cells, gl.threshold)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "building hazard grid")
	}

	gl.logger.Info("hazard grid created", zap.Int("size", gl.gridSize),
		zap.Int("blockedCells", grid.NumberOfBlockedCells()))
	return grid, nil
}

func (gl *GridLoader) reduce(img image.Image) []da.PixelColor {
	bounds := img.Bounds()
	cellWidth := util.MaxOf(bounds.Dx()/gl.gridSize, 1)
	cellHeight := util.MaxOf(bounds.Dy()/gl.gridSize, 1)

	cells := make([]da.PixelColor, gl.gridSize*gl.gridSize)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		gy := (y - bounds.Min.Y) / cellHeight
		if gy >= gl.gridSize {
			// remainder rows when the height is not a multiple of the grid size
			break
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gx := (x - bounds.Min.X) / cellWidth
			if gx >= gl.gridSize {
				break
			}
			c := toPixelColor(img.At(x, y))
			idx := gy*gl.gridSize + gx
			if c.Luma() > cells[idx].Luma() {
				cells[idx] = c
			}
		}
	}
	return cells
}

func toPixelColor(c color.Color) da.PixelColor {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return da.NewPixelColor(n.R, n.G, n.B, n.A)
}
