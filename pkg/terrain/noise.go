package terrain

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

const (
	// octaveOffsetRange bounds the per-octave sample offsets. Offsets stay
	// non-negative because the perlin lattice lookup truncates toward zero.
	octaveOffsetRange = 100000.0
	minNoiseScale     = 0.0001
)

// noiseSource returns gradient noise in [0, 1] for a 2D sample coordinate.
type noiseSource interface {
	Sample(x, y float64) float64
}

type perlinSource struct {
	p *perlin.Perlin
}

// Sample maps single-octave perlin output from [-1, 1] to [0, 1].
func (s perlinSource) Sample(x, y float64) float64 {
	return (s.p.Noise2D(x, y) + 1) / 2
}

type simplexSource struct {
	n opensimplex.Noise
}

func (s simplexSource) Sample(x, y float64) float64 {
	return s.n.Eval2(x, y)
}

func newNoiseSource(algorithm Algorithm, seed int64) (noiseSource, error) {
	switch algorithm {
	case "", AlgorithmPerlin:
		// One octave per call; the fractal sum happens in Synthesize.
		return perlinSource{p: perlin.NewPerlin(2, 2, 1, seed)}, nil
	case AlgorithmSimplex:
		return simplexSource{n: opensimplex.NewNormalized(seed)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// OctaveOffsets derives one sample-space offset per octave from the seed so
// layers do not alias. The same seed always yields the same offsets.
func OctaveOffsets(seed int64, octaves int, shift [2]float64) [][2]float64 {
	rng := rand.New(rand.NewSource(seed))
	offsets := make([][2]float64, octaves)
	for i := range offsets {
		offsets[i][0] = rng.Float64()*octaveOffsetRange + shift[0]
		offsets[i][1] = rng.Float64()*octaveOffsetRange + shift[1]
	}
	return offsets
}

// Synthesize builds the raw heightfield for cfg. Every sample lies in [0, 1]
// and is a pure function of the seed, the grid coordinate and the config.
// With AlgorithmImage the field is sampled from cfg.Heightmap instead.
func Synthesize(cfg Config) (*HeightField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Algorithm == AlgorithmImage {
		return FromImage(cfg.Heightmap, cfg.Width, cfg.Depth, cfg.CellSize)
	}

	source, err := newNoiseSource(cfg.Algorithm, cfg.Seed)
	if err != nil {
		return nil, err
	}

	scale := cfg.NoiseScale
	if scale <= 0 {
		scale = minNoiseScale
	}

	offsets := OctaveOffsets(cfg.Seed, cfg.Octaves, cfg.Offset)
	field := NewHeightField(cfg.Width, cfg.Depth, cfg.CellSize)

	for z := range cfg.Depth {
		for x := range cfg.Width {
			amplitude := 1.0
			frequency := 1.0
			noiseHeight := 0.0
			normalizer := 0.0

			for i := range cfg.Octaves {
				sampleX := float64(x)/scale*frequency + offsets[i][0]
				sampleZ := float64(z)/scale*frequency + offsets[i][1]

				noiseHeight += source.Sample(sampleX, sampleZ) * amplitude
				normalizer += amplitude

				amplitude *= cfg.Persistence
				frequency *= cfg.Lacunarity
			}

			value := 0.0
			if normalizer > 0 {
				value = noiseHeight / normalizer
			}
			field.Set(x, z, float32(clamp01(value)))
		}
	}

	return field, nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
