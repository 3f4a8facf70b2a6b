package export

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/Faultbox/midgard-levelgen/pkg/level"
	"github.com/Faultbox/midgard-levelgen/pkg/placement"
	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

var categoryColors = map[string]color.RGBA{
	"structure": {R: 220, G: 60, B: 60, A: 255},
	"player":    {R: 60, G: 120, B: 255, A: 255},
	"enemy":     {R: 255, G: 140, B: 0, A: 255},
	"tree":      {R: 30, G: 160, B: 60, A: 255},
	"rock":      {R: 150, G: 150, B: 160, A: 255},
	"grass":     {R: 140, G: 220, B: 90, A: 255},
}

// CategoryColor returns the marker color used for category in previews.
func CategoryColor(category string) color.RGBA {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(category))
	sum := h.Sum32()
	return color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}
}

// Heightmap renders hf as grayscale, one pixel per grid vertex, with the
// lowest sample black and the highest white.
func Heightmap(hf *terrain.HeightField) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, hf.Width, hf.Depth))
	lo, hi := hf.Range()
	span := hi - lo
	for z := 0; z < hf.Depth; z++ {
		for x := 0; x < hf.Width; x++ {
			var v uint8
			if span > 0 {
				v = uint8((hf.At(x, z) - lo) / span * 255)
			}
			img.SetGray(x, z, color.Gray{Y: v})
		}
	}
	return img
}

// RenderPreview upscales the heightmap of lvl by scale and marks every
// placement with its category color.
func RenderPreview(lvl *level.Level, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	src := Heightmap(lvl.Heights)
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	cell := lvl.Heights.CellSize
	for _, o := range lvl.Placements {
		mark(dst, o, cell, scale)
	}
	return dst
}

func mark(dst *image.RGBA, o placement.PlacedObject, cellSize float32, scale int) {
	cx := int(o.Position.X() / cellSize * float32(scale))
	cz := int(o.Position.Z() / cellSize * float32(scale))
	r := max(1, scale/2)
	rect := image.Rect(cx-r, cz-r, cx+r+1, cz+r+1).Intersect(dst.Bounds())
	draw.Draw(dst, rect, image.NewUniform(CategoryColor(o.Category)), image.Point{}, draw.Src)
}

// WritePreview encodes RenderPreview(lvl, scale) as PNG.
func WritePreview(w io.Writer, lvl *level.Level, scale int) error {
	if err := png.Encode(w, RenderPreview(lvl, scale)); err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	return nil
}
