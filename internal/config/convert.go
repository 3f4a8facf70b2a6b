package config

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"math"
	"os"

	"github.com/Faultbox/midgard-levelgen/internal/export"
	"github.com/Faultbox/midgard-levelgen/pkg/level"
	"github.com/Faultbox/midgard-levelgen/pkg/placement"
	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

// ErrUnknownCurve is returned for a curve type other than identity,
// keyframes or script.
var ErrUnknownCurve = errors.New("unknown curve type")

// ToRequest converts the config into a generation request. Range checks are
// left to the generator; only the curve is built and checked here.
func (c *Config) ToRequest() (level.Request, error) {
	curve, err := c.Curve.build()
	if err != nil {
		return level.Request{}, &level.ConfigurationError{Field: "curve", Reason: err}
	}
	var heightmap image.Image
	if terrain.Algorithm(c.Noise.Algorithm) == terrain.AlgorithmImage {
		heightmap, err = loadHeightmap(c.Noise.HeightmapFile)
		if err != nil {
			return level.Request{}, &level.ConfigurationError{Field: "noise.heightmap_file", Reason: err}
		}
	}

	req := level.Request{
		Terrain: terrain.Config{
			Width:            c.Terrain.Width,
			Depth:            c.Terrain.Depth,
			CellSize:         c.Terrain.CellSize,
			NoiseScale:       c.Noise.Scale,
			Octaves:          c.Noise.Octaves,
			Persistence:      c.Noise.Persistence,
			Lacunarity:       c.Noise.Lacunarity,
			HeightMultiplier: c.Terrain.HeightMultiplier,
			Seed:             c.Noise.Seed,
			Offset:           c.Noise.Offset,
			Algorithm:        terrain.Algorithm(c.Noise.Algorithm),
			Heightmap:        heightmap,
			Curve:            curve,
		},
		Rules:         make([]placement.Rule, 0, len(c.Rules)),
		ClearPrevious: c.Generation.ClearPrevious,
		RandomizeSeed: c.Generation.RandomizeSeed,
	}
	for _, r := range c.Rules {
		req.Rules = append(req.Rules, r.rule(c.Terrain.Width, c.Terrain.Depth))
	}
	if c.Spawn != nil {
		spawn := c.Spawn.rule()
		req.Spawn = &spawn
	}
	return req, nil
}

// GeneratorOptions returns the generator settings carried by the config.
func (c *Config) GeneratorOptions() []level.Option {
	return []level.Option{level.WithAttemptMultiplier(c.Generation.AttemptMultiplier)}
}

// ExportOptions returns the export settings carried by the config.
func (c *Config) ExportOptions() export.Options {
	return export.Options{Formats: c.Output.Formats, PreviewScale: c.Output.PreviewScale}
}

// HasFormat reports whether format is listed in the output formats.
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Output.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (c CurveConfig) build() (terrain.Curve, error) {
	switch c.Type {
	case "", CurveIdentity:
		return terrain.Identity{}, nil
	case CurveKeyframes:
		return terrain.NewKeyframes(c.Keys...), nil
	case CurveScript:
		src := c.Script
		if src == "" && c.ScriptFile != "" {
			data, err := os.ReadFile(c.ScriptFile)
			if err != nil {
				return nil, fmt.Errorf("reading curve script: %w", err)
			}
			src = string(data)
		}
		return terrain.NewScriptCurve(src)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, c.Type)
	}
}

func loadHeightmap(path string) (image.Image, error) {
	if path == "" {
		return nil, terrain.ErrMissingHeightmap
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading heightmap: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding heightmap %s: %w", path, err)
	}
	return img, nil
}

// Count returns the rule's object budget on a width x depth grid.
func (r RuleConfig) Count(width, depth int) int {
	if r.Density == 0 {
		return r.MaxCount
	}
	return int(math.Floor(float64(width*depth) * r.Density / 100))
}

func (r RuleConfig) rule(width, depth int) placement.Rule {
	return placement.Rule{
		Category:             r.Category,
		Variants:             r.Variants,
		MaxCount:             r.Count(width, depth),
		MinHeight:            r.MinHeight,
		MaxHeight:            r.MaxHeight,
		MinSlope:             r.MinSlope,
		MaxSlope:             r.MaxSlope,
		Clearance:            r.Clearance,
		AlignToSurfaceNormal: r.AlignToNormal,
		RandomYRotation:      r.RandomYRotation,
		RequiredTags:         r.RequiredTags,
		TagRadius:            r.TagRadius,
		Tags:                 r.Tags,
		SpawnProbability:     r.SpawnProbability,
		EdgeMargin:           r.EdgeMargin,
		GroundOffset:         r.GroundOffset,
		ScaleMin:             r.ScaleMin,
		ScaleMax:             r.ScaleMax,
	}
}

func (s SpawnConfig) rule() placement.SpawnRule {
	return placement.SpawnRule{
		Category:     s.Category,
		Variant:      s.Variant,
		After:        s.After,
		Attempts:     s.Attempts,
		CenterRadius: s.CenterRadius,
		EdgeMargin:   s.EdgeMargin,
		MinHeight:    s.MinHeight,
		Clearance:    s.Clearance,
		GroundOffset: s.GroundOffset,
	}
}
