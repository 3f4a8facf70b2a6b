// Package export writes generated levels to files that engines and tools
// can consume: placement lists, terrain meshes and heightmap previews.
package export

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-levelgen/pkg/level"
	"github.com/Faultbox/midgard-levelgen/pkg/placement"
)

// PlacementFile is the YAML document written for a level.
type PlacementFile struct {
	Seed     int64          `yaml:"seed"`
	Width    int            `yaml:"width"`
	Depth    int            `yaml:"depth"`
	CellSize float32        `yaml:"cell_size"`
	Spawn    *ObjectRecord  `yaml:"spawn,omitempty"`
	Objects  []ObjectRecord `yaml:"objects"`
	Retained []ObjectRecord `yaml:"retained,omitempty"`
	Summary  Summary        `yaml:"summary"`
}

// ObjectRecord is one placed object. Rotation is stored as x, y, z, w.
type ObjectRecord struct {
	Category string     `yaml:"category"`
	Variant  string     `yaml:"variant"`
	Tags     []string   `yaml:"tags,flow"`
	Position [3]float32 `yaml:"position,flow"`
	Rotation [4]float32 `yaml:"rotation,flow"`
	Scale    float32    `yaml:"scale"`
}

// Summary mirrors the parts of the generation report useful to consumers.
type Summary struct {
	Triangles int           `yaml:"triangles"`
	MinHeight float32       `yaml:"min_height"`
	MaxHeight float32       `yaml:"max_height"`
	Rules     []RuleSummary `yaml:"rules"`
	Warnings  []string      `yaml:"warnings,omitempty"`
}

// RuleSummary holds one rule's counters.
type RuleSummary struct {
	Category  string `yaml:"category"`
	Requested int    `yaml:"requested"`
	Placed    int    `yaml:"placed"`
	Attempts  int    `yaml:"attempts"`
}

// NewPlacementFile builds the placement document for lvl.
func NewPlacementFile(lvl *level.Level) *PlacementFile {
	f := &PlacementFile{
		Seed:     lvl.Report.Seed,
		Width:    lvl.Config.Width,
		Depth:    lvl.Config.Depth,
		CellSize: lvl.Config.CellSize,
		Objects:  records(lvl.Placements),
		Retained: records(lvl.Retained),
		Summary: Summary{
			Triangles: lvl.Report.Triangles,
			MinHeight: lvl.Report.MinHeight,
			MaxHeight: lvl.Report.MaxHeight,
		},
	}
	if lvl.Spawn != nil {
		rec := record(*lvl.Spawn)
		f.Spawn = &rec
	}
	for _, r := range lvl.Report.Rules {
		f.Summary.Rules = append(f.Summary.Rules, RuleSummary{
			Category:  r.Category,
			Requested: r.Requested,
			Placed:    r.Placed,
			Attempts:  r.Attempts,
		})
	}
	for _, w := range lvl.Report.Warnings {
		f.Summary.Warnings = append(f.Summary.Warnings, w.String())
	}
	return f
}

// WritePlacements encodes the placement document of lvl as YAML.
func WritePlacements(w io.Writer, lvl *level.Level) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewPlacementFile(lvl)); err != nil {
		return fmt.Errorf("encoding placements: %w", err)
	}
	return enc.Close()
}

// ReadPlacements decodes a document written by WritePlacements.
func ReadPlacements(r io.Reader) (*PlacementFile, error) {
	var f PlacementFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding placements: %w", err)
	}
	return &f, nil
}

// Object converts the record back into a placed object.
func (r ObjectRecord) Object() placement.PlacedObject {
	return placement.PlacedObject{
		Category: r.Category,
		Variant:  r.Variant,
		Tags:     r.Tags,
		Position: mgl32.Vec3(r.Position),
		Rotation: mgl32.Quat{W: r.Rotation[3], V: mgl32.Vec3{r.Rotation[0], r.Rotation[1], r.Rotation[2]}},
		Scale:    r.Scale,
	}
}

func records(objs []placement.PlacedObject) []ObjectRecord {
	out := make([]ObjectRecord, 0, len(objs))
	for _, o := range objs {
		out = append(out, record(o))
	}
	return out
}

func record(o placement.PlacedObject) ObjectRecord {
	q := o.Rotation
	return ObjectRecord{
		Category: o.Category,
		Variant:  o.Variant,
		Tags:     o.Tags,
		Position: [3]float32(o.Position),
		Rotation: [4]float32{q.X(), q.Y(), q.Z(), q.W},
		Scale:    o.Scale,
	}
}
