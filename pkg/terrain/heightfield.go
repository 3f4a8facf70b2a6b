package terrain

// HeightField is a Width x Depth grid of elevation samples, one per vertex.
// Samples are stored row-major with index x + z*Width.
type HeightField struct {
	Width    int
	Depth    int
	CellSize float32
	Values   []float32
}

// NewHeightField allocates a zeroed field.
func NewHeightField(width, depth int, cellSize float32) *HeightField {
	return &HeightField{
		Width:    width,
		Depth:    depth,
		CellSize: cellSize,
		Values:   make([]float32, width*depth),
	}
}

// At returns the sample at grid coordinate (x, z).
func (h *HeightField) At(x, z int) float32 {
	return h.Values[x+z*h.Width]
}

// Set stores a sample at grid coordinate (x, z).
func (h *HeightField) Set(x, z int, v float32) {
	h.Values[x+z*h.Width] = v
}

// Extent returns the world-space size of the field along X and Z.
func (h *HeightField) Extent() (float32, float32) {
	return float32(h.Width-1) * h.CellSize, float32(h.Depth-1) * h.CellSize
}

// Range returns the minimum and maximum sample.
func (h *HeightField) Range() (float32, float32) {
	if len(h.Values) == 0 {
		return 0, 0
	}
	lo, hi := h.Values[0], h.Values[0]
	for _, v := range h.Values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// NearestCell converts a world position to the closest grid coordinate,
// clamped to the field.
func (h *HeightField) NearestCell(worldX, worldZ float32) (int, int) {
	x := int(worldX/h.CellSize + 0.5)
	z := int(worldZ/h.CellSize + 0.5)
	return clampInt(x, 0, h.Width-1), clampInt(z, 0, h.Depth-1)
}

// NearestAt returns the sample of the grid vertex closest to a world position.
func (h *HeightField) NearestAt(worldX, worldZ float32) float32 {
	x, z := h.NearestCell(worldX, worldZ)
	return h.At(x, z)
}

// HeightAt returns the bilinearly interpolated height at a world position.
// Positions outside the field are clamped to its border.
func (h *HeightField) HeightAt(worldX, worldZ float32) float32 {
	cellFX := worldX / h.CellSize
	cellFZ := worldZ / h.CellSize

	cellX := clampInt(int(cellFX), 0, h.Width-2)
	cellZ := clampInt(int(cellFZ), 0, h.Depth-2)

	fracX := clampf(cellFX-float32(cellX), 0, 1)
	fracZ := clampf(cellFZ-float32(cellZ), 0, 1)

	h00 := h.At(cellX, cellZ)
	h10 := h.At(cellX+1, cellZ)
	h01 := h.At(cellX, cellZ+1)
	h11 := h.At(cellX+1, cellZ+1)

	south := h00*(1-fracX) + h10*fracX
	north := h01*(1-fracX) + h11*fracX
	return south*(1-fracZ) + north*fracZ
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
