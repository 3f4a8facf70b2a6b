// Package config handles level generator configuration loading and management.
package config

import (
	"github.com/Faultbox/midgard-levelgen/internal/export"
	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

// Config holds all generator settings.
type Config struct {
	Terrain    TerrainConfig    `yaml:"terrain"`
	Noise      NoiseConfig      `yaml:"noise"`
	Curve      CurveConfig      `yaml:"curve"`
	Rules      []RuleConfig     `yaml:"rules"`
	Spawn      *SpawnConfig     `yaml:"spawn"`
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// TerrainConfig holds grid dimensions.
type TerrainConfig struct {
	Width            int     `yaml:"width"`
	Depth            int     `yaml:"depth"`
	CellSize         float32 `yaml:"cell_size"`
	HeightMultiplier float32 `yaml:"height_multiplier"`
}

// NoiseConfig holds fractal noise parameters.
type NoiseConfig struct {
	Algorithm     string     `yaml:"algorithm"` // perlin, simplex or image
	Scale         float64    `yaml:"scale"`
	Octaves       int        `yaml:"octaves"`
	Persistence   float64    `yaml:"persistence"`
	Lacunarity    float64    `yaml:"lacunarity"`
	Seed          int64      `yaml:"seed"`
	Offset        [2]float64 `yaml:"offset,flow"`
	HeightmapFile string     `yaml:"heightmap_file,omitempty"` // PNG read by the image algorithm
}

// Curve types.
const (
	CurveIdentity  = "identity"
	CurveKeyframes = "keyframes"
	CurveScript    = "script"
)

// CurveConfig selects the height curve.
type CurveConfig struct {
	Type       string        `yaml:"type"`
	Keys       []terrain.Key `yaml:"keys,omitempty,flow"`
	Script     string        `yaml:"script,omitempty"`
	ScriptFile string        `yaml:"script_file,omitempty"` // Read when Script is empty
}

// RuleConfig holds one placement rule. Slopes are in degrees.
type RuleConfig struct {
	Category         string   `yaml:"category"`
	Variants         []string `yaml:"variants,flow"`
	MaxCount         int      `yaml:"max_count"`
	Density          float64  `yaml:"density,omitempty"` // Objects per 100 grid vertices; overrides MaxCount
	MinHeight        float32  `yaml:"min_height"`
	MaxHeight        float32  `yaml:"max_height"`
	MinSlope         float32  `yaml:"min_slope"`
	MaxSlope         float32  `yaml:"max_slope"`
	Clearance        float32  `yaml:"clearance"`
	AlignToNormal    bool     `yaml:"align_to_normal,omitempty"`
	RandomYRotation  bool     `yaml:"random_y_rotation,omitempty"`
	RequiredTags     []string `yaml:"required_tags,omitempty,flow"`
	TagRadius        float32  `yaml:"tag_radius,omitempty"`
	Tags             []string `yaml:"tags,omitempty,flow"`
	SpawnProbability float32  `yaml:"spawn_probability,omitempty"`
	EdgeMargin       float32  `yaml:"edge_margin,omitempty"`
	GroundOffset     float32  `yaml:"ground_offset,omitempty"`
	ScaleMin         float32  `yaml:"scale_min,omitempty"`
	ScaleMax         float32  `yaml:"scale_max,omitempty"`
}

// SpawnConfig holds the single required placement, usually the player start.
type SpawnConfig struct {
	Category     string  `yaml:"category"`
	Variant      string  `yaml:"variant"`
	After        string  `yaml:"after,omitempty"`
	Attempts     int     `yaml:"attempts,omitempty"`
	CenterRadius float32 `yaml:"center_radius,omitempty"`
	EdgeMargin   float32 `yaml:"edge_margin,omitempty"`
	MinHeight    float32 `yaml:"min_height"`
	Clearance    float32 `yaml:"clearance"`
	GroundOffset float32 `yaml:"ground_offset,omitempty"`
}

// GenerationConfig holds run-level switches.
type GenerationConfig struct {
	ClearPrevious     bool `yaml:"clear_previous"`
	RandomizeSeed     bool `yaml:"randomize_seed"`
	AttemptMultiplier int  `yaml:"attempt_multiplier"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Directory    string   `yaml:"directory"`
	Formats      []string `yaml:"formats,flow"` // placements, obj, preview
	PreviewScale int      `yaml:"preview_scale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // console or json
	LogFile string `yaml:"log_file"`
}

// Default returns a Config that generates a 100x100 island-style level with
// structures, a player start, enemies and scattered vegetation. Enemy and
// vegetation counts scale with the map area.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Width:            100,
			Depth:            100,
			CellSize:         1,
			HeightMultiplier: 20,
		},
		Noise: NoiseConfig{
			Algorithm:   string(terrain.AlgorithmPerlin),
			Scale:       20,
			Octaves:     4,
			Persistence: 0.5,
			Lacunarity:  2,
			Seed:        42,
		},
		Curve: CurveConfig{Type: CurveIdentity},
		Rules: []RuleConfig{
			{
				Category:        "structure",
				Variants:        []string{"hut", "tower", "ruin"},
				MaxCount:        5,
				MinHeight:       5,
				MaxHeight:       15,
				MaxSlope:        15,
				Clearance:       20,
				RandomYRotation: true,
				EdgeMargin:      10,
			},
			{
				Category:        "enemy",
				Variants:        []string{"slime", "wolf"},
				Density:         0.02,
				MinHeight:       2.5,
				MaxHeight:       20,
				MaxSlope:        30,
				Clearance:       7,
				RandomYRotation: true,
				EdgeMargin:      5,
				GroundOffset:    0.1,
			},
			{
				Category:         "tree",
				Variants:         []string{"oak", "pine", "birch"},
				Density:          0.75,
				MinHeight:        2.5,
				MaxHeight:        20,
				MinSlope:         5,
				MaxSlope:         35,
				Clearance:        5,
				RandomYRotation:  true,
				SpawnProbability: 0.7,
				EdgeMargin:       1,
				ScaleMin:         0.8,
				ScaleMax:         1.2,
			},
			{
				Category:         "rock",
				Variants:         []string{"boulder", "stone"},
				Density:          0.25,
				MinHeight:        1,
				MaxHeight:        20,
				MinSlope:         10,
				MaxSlope:         60,
				Clearance:        3,
				AlignToNormal:    true,
				RandomYRotation:  true,
				SpawnProbability: 0.6,
				EdgeMargin:       1,
				ScaleMin:         0.8,
				ScaleMax:         1.2,
			},
			{
				Category:         "grass",
				Variants:         []string{"grass_tuft"},
				Density:          1.5,
				MinHeight:        2,
				MaxHeight:        20,
				MaxSlope:         25,
				AlignToNormal:    true,
				RandomYRotation:  true,
				SpawnProbability: 0.8,
				EdgeMargin:       1,
				ScaleMin:         0.8,
				ScaleMax:         1.2,
			},
		},
		Spawn: &SpawnConfig{
			Category:     "player",
			Variant:      "player",
			After:        "structure",
			MinHeight:    3,
			Clearance:    5,
			EdgeMargin:   5,
			GroundOffset: 1,
		},
		Generation: GenerationConfig{
			ClearPrevious:     true,
			AttemptMultiplier: 10,
		},
		Output: OutputConfig{
			Directory:    "out",
			Formats:      []string{export.FormatPlacements, export.FormatOBJ, export.FormatPreview},
			PreviewScale: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
