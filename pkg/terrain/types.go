// Package terrain provides heightfield synthesis, curve remapping, mesh building
// and slope analysis for procedurally generated levels.
package terrain

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidDimensions = errors.New("terrain dimensions must be at least 2x2")
	ErrInvalidOctaves    = errors.New("octave count must be at least 1")
	ErrInvalidCellSize   = errors.New("cell size must be positive")
	ErrInvalidLacunarity = errors.New("lacunarity must be positive")
	ErrUnknownAlgorithm  = errors.New("unknown noise algorithm")
	ErrMissingHeightmap  = errors.New("image algorithm needs a heightmap image")
)

// Algorithm selects the height source: a gradient noise backend or a
// grayscale image.
type Algorithm string

const (
	AlgorithmPerlin  Algorithm = "perlin"
	AlgorithmSimplex Algorithm = "simplex"
	AlgorithmImage   Algorithm = "image"
)

// Config holds the parameters of one terrain generation run.
type Config struct {
	Width            int         // Grid vertices along X
	Depth            int         // Grid vertices along Z
	CellSize         float32     // World units per grid step
	NoiseScale       float64     // Larger values stretch features
	Octaves          int         // Number of fractal layers
	Persistence      float64     // Amplitude decay per octave
	Lacunarity       float64     // Frequency growth per octave
	HeightMultiplier float32     // Scales the remapped [0,1] field
	Seed             int64       // Drives noise offsets and permutation tables
	Offset           [2]float64  // Shifts the noise pattern in sample space
	Algorithm        Algorithm   // Empty means perlin
	Heightmap        image.Image // Height source for AlgorithmImage
	Curve            Curve       // Nil means identity
}

// Validate reports the first structural problem with the config.
func (c Config) Validate() error {
	if c.Width < 2 || c.Depth < 2 {
		return ErrInvalidDimensions
	}
	if c.CellSize <= 0 {
		return ErrInvalidCellSize
	}
	if c.Algorithm == AlgorithmImage {
		if c.Heightmap == nil || c.Heightmap.Bounds().Empty() {
			return ErrMissingHeightmap
		}
		return nil
	}
	if c.Octaves < 1 {
		return ErrInvalidOctaves
	}
	if c.Lacunarity <= 0 {
		return ErrInvalidLacunarity
	}
	switch c.Algorithm {
	case "", AlgorithmPerlin, AlgorithmSimplex:
	default:
		return ErrUnknownAlgorithm
	}
	return nil
}

// Extent returns the world-space size of the grid along X and Z.
func (c Config) Extent() (float32, float32) {
	return float32(c.Width-1) * c.CellSize, float32(c.Depth-1) * c.CellSize
}

// Vertex represents a terrain mesh vertex.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Mesh holds triangulated terrain ready for a renderer or collider.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// TriangleCount returns the number of triangles in the index buffer.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds holds the axis-aligned bounding box of the terrain.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}
