package terrain

import (
	"image"

	"golang.org/x/image/draw"
)

// FromImage builds a [0,1] heightfield from the luminance of img. An image
// whose size differs from the grid is resized with bilinear filtering first.
// Pixel row y maps to grid row z, matching the exported heightmap preview.
func FromImage(img image.Image, width, depth int, cellSize float32) (*HeightField, error) {
	if width < 2 || depth < 2 {
		return nil, ErrInvalidDimensions
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrMissingHeightmap
	}

	gray := image.NewGray16(image.Rect(0, 0, width, depth))
	sb := img.Bounds()
	if sb.Dx() == width && sb.Dy() == depth {
		draw.Draw(gray, gray.Bounds(), img, sb.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(gray, gray.Bounds(), img, sb, draw.Src, nil)
	}

	field := NewHeightField(width, depth, cellSize)
	for z := range depth {
		for x := range width {
			field.Set(x, z, float32(gray.Gray16At(x, z).Y)/0xffff)
		}
	}
	return field, nil
}
