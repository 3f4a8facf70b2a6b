package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SlopeField holds per-vertex slope angles in degrees [0, 90] and unit surface
// normals. It shares index space with the HeightField it was derived from.
type SlopeField struct {
	Width    int
	Depth    int
	CellSize float32
	Degrees  []float32
	Normals  []mgl32.Vec3
}

// ComputeSlopes derives slope and normal for every grid vertex using central
// differences over 2*cellSize. Border vertices replicate the nearest interior
// vertex. Along an axis with only two samples there is no interior, so the
// one-sided difference is used.
func ComputeSlopes(hf *HeightField, cellSize float32) *SlopeField {
	n := hf.Width * hf.Depth
	sf := &SlopeField{
		Width:    hf.Width,
		Depth:    hf.Depth,
		CellSize: cellSize,
		Degrees:  make([]float32, n),
		Normals:  make([]mgl32.Vec3, n),
	}

	for z := range hf.Depth {
		iz := interiorIndex(z, hf.Depth)
		for x := range hf.Width {
			ix := interiorIndex(x, hf.Width)
			gx := gradientX(hf, ix, iz, cellSize)
			gz := gradientZ(hf, ix, iz, cellSize)

			i := x + z*hf.Width
			sf.Degrees[i] = float32(math.Atan(math.Hypot(gx, gz)) * 180 / math.Pi)
			sf.Normals[i] = normalizeOrUp(mgl32.Vec3{float32(-gx), 1, float32(-gz)})
		}
	}

	return sf
}

// interiorIndex clamps i to [1, n-2], or 0 when the axis has no interior.
func interiorIndex(i, n int) int {
	if n < 3 {
		return 0
	}
	return clampInt(i, 1, n-2)
}

func gradientX(hf *HeightField, x, z int, cellSize float32) float64 {
	if hf.Width < 3 {
		return float64(hf.At(1, z)-hf.At(0, z)) / float64(cellSize)
	}
	return float64(hf.At(x+1, z)-hf.At(x-1, z)) / float64(2*cellSize)
}

func gradientZ(hf *HeightField, x, z int, cellSize float32) float64 {
	if hf.Depth < 3 {
		return float64(hf.At(x, 1)-hf.At(x, 0)) / float64(cellSize)
	}
	return float64(hf.At(x, z+1)-hf.At(x, z-1)) / float64(2*cellSize)
}

// At returns the slope in degrees at grid coordinate (x, z).
func (s *SlopeField) At(x, z int) float32 {
	return s.Degrees[x+z*s.Width]
}

// NormalAtCell returns the unit normal at grid coordinate (x, z).
func (s *SlopeField) NormalAtCell(x, z int) mgl32.Vec3 {
	return s.Normals[x+z*s.Width]
}

func (s *SlopeField) nearestCell(worldX, worldZ float32) (int, int) {
	x := int(worldX/s.CellSize + 0.5)
	z := int(worldZ/s.CellSize + 0.5)
	return clampInt(x, 0, s.Width-1), clampInt(z, 0, s.Depth-1)
}

// SlopeAt returns the slope of the grid vertex nearest to a world position.
func (s *SlopeField) SlopeAt(worldX, worldZ float32) float32 {
	return s.At(s.nearestCell(worldX, worldZ))
}

// NormalAt returns the normal of the grid vertex nearest to a world position.
func (s *SlopeField) NormalAt(worldX, worldZ float32) mgl32.Vec3 {
	return s.NormalAtCell(s.nearestCell(worldX, worldZ))
}
