package placement

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultSpawnAttempts     = 100
	DefaultSpawnCenterRadius = 0.25
)

var ErrMissingSpawnVariant = errors.New("spawn rule lists no variant")

// SpawnRule describes a single required placement, such as the player start,
// searched for in a disc around the map centre.
type SpawnRule struct {
	Category     string
	Variant      string
	After        string  // Place after this rule's category; empty means after all rules
	Attempts     int     // 0 means DefaultSpawnAttempts
	CenterRadius float32 // Fraction of the shorter map extent; 0 means DefaultSpawnCenterRadius
	EdgeMargin   float32
	MinHeight    float32
	Clearance    float32
	GroundOffset float32
}

// Validate checks the spawn rule.
func (r SpawnRule) Validate() error {
	switch {
	case r.Variant == "":
		return ErrMissingSpawnVariant
	case !finite(r.CenterRadius, r.EdgeMargin, r.MinHeight, r.Clearance, r.GroundOffset):
		return ErrNonFinite
	case r.Clearance < 0:
		return ErrNegativeClearance
	}
	return nil
}

// SpawnResult reports the outcome of a spawn search.
type SpawnResult struct {
	Category string
	Placed   bool
	Attempts int
	Object   PlacedObject
}

// PlaceSpawn searches for one valid position. A failed search leaves occ
// untouched and is reported through the result, not as an error.
func (s *Sampler) PlaceSpawn(rule SpawnRule, occ *Occupancy) SpawnResult {
	res := SpawnResult{Category: rule.Category}

	attempts := rule.Attempts
	if attempts <= 0 {
		attempts = DefaultSpawnAttempts
	}
	fraction := rule.CenterRadius
	if fraction <= 0 {
		fraction = DefaultSpawnCenterRadius
	}

	extentX, extentZ := s.surface.Extent()
	radius := fraction * min(extentX, extentZ)
	cx, cz := extentX/2, extentZ/2

	for res.Attempts < attempts {
		res.Attempts++

		// sqrt keeps the draw uniform over the disc area.
		r := radius * float32(math.Sqrt(float64(s.rng.Float32())))
		theta := s.rng.Float64() * 2 * math.Pi
		x := clampAxis(cx+r*float32(math.Cos(theta)), extentX, rule.EdgeMargin)
		z := clampAxis(cz+r*float32(math.Sin(theta)), extentZ, rule.EdgeMargin)

		height := s.surface.HeightAt(x, z)
		if height < rule.MinHeight {
			continue
		}

		pos := mgl32.Vec3{x, height + rule.GroundOffset, z}
		if !occ.Clear(pos, rule.Clearance) {
			continue
		}

		res.Placed = true
		res.Object = PlacedObject{
			Category: rule.Category,
			Variant:  rule.Variant,
			Tags:     []string{rule.Category},
			Position: pos,
			Rotation: mgl32.QuatIdent(),
			Scale:    1,
		}
		occ.Add(Occupant{Position: pos, Category: rule.Category, Tags: res.Object.Tags})
		return res
	}

	return res
}

func clampAxis(v, extent, margin float32) float32 {
	lo, hi := margin, extent-margin
	if hi < lo {
		return extent / 2
	}
	return max(lo, min(v, hi))
}
