// Package placement scatters objects over a terrain surface by rejection
// sampling against per-rule height, slope, spacing and tag constraints.
package placement

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrMissingVariants   = errors.New("rule places objects but lists no variants")
	ErrNegativeCount     = errors.New("max count must not be negative")
	ErrNegativeClearance = errors.New("clearance must not be negative")
	ErrInvalidHeight     = errors.New("min height exceeds max height")
	ErrInvalidSlope      = errors.New("slope range must lie within [0, 90] degrees")
	ErrInvalidChance     = errors.New("spawn probability must lie within [0, 1]")
	ErrInvalidScale      = errors.New("scale range must be positive and ordered")
	ErrNonFinite         = errors.New("thresholds and distances must be finite")
)

// Rule describes how one category of objects is scattered. Slopes are in
// degrees; heights and distances are in world units.
type Rule struct {
	Category             string
	Variants             []string // Prefab references; one is picked per object
	MaxCount             int
	MinHeight            float32
	MaxHeight            float32
	MinSlope             float32
	MaxSlope             float32
	Clearance            float32 // No prior object may sit closer than this
	AlignToSurfaceNormal bool
	RandomYRotation      bool
	RequiredTags         []string // A nearby object must carry one of these
	TagRadius            float32  // Search radius for RequiredTags; 0 means 2*Clearance
	Tags                 []string // Tags carried by placed objects; empty means Category
	SpawnProbability     float32  // Accept chance once all checks pass; 0 means 1
	EdgeMargin           float32  // Keep-out band along the map border
	GroundOffset         float32  // Added to the sampled height
	ScaleMin             float32  // 0 means 1
	ScaleMax             float32  // 0 means ScaleMin
}

// Validate checks the rule's ranges.
func (r Rule) Validate() error {
	if !finite(r.MinHeight, r.MaxHeight, r.MinSlope, r.MaxSlope, r.Clearance, r.TagRadius,
		r.SpawnProbability, r.EdgeMargin, r.GroundOffset, r.ScaleMin, r.ScaleMax) {
		return ErrNonFinite
	}
	switch {
	case r.MaxCount < 0:
		return ErrNegativeCount
	case r.MaxCount > 0 && len(r.Variants) == 0:
		return ErrMissingVariants
	case r.Clearance < 0 || r.TagRadius < 0:
		return ErrNegativeClearance
	case r.MinHeight > r.MaxHeight:
		return ErrInvalidHeight
	case r.MinSlope < 0 || r.MaxSlope > 90 || r.MinSlope > r.MaxSlope:
		return ErrInvalidSlope
	case r.SpawnProbability < 0 || r.SpawnProbability > 1:
		return ErrInvalidChance
	}
	lo, hi := r.scaleRange()
	if lo <= 0 || hi < lo {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidScale, lo, hi)
	}
	return nil
}

func finite(values ...float32) bool {
	for _, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

func (r Rule) tags() []string {
	if len(r.Tags) > 0 {
		return r.Tags
	}
	return []string{r.Category}
}

func (r Rule) tagRadius() float32 {
	if r.TagRadius > 0 {
		return r.TagRadius
	}
	return 2 * r.Clearance
}

func (r Rule) chance() float32 {
	if r.SpawnProbability == 0 {
		return 1
	}
	return r.SpawnProbability
}

func (r Rule) scaleRange() (float32, float32) {
	lo, hi := r.ScaleMin, r.ScaleMax
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = lo
	}
	return lo, hi
}

// PlacedObject is one accepted placement. Position and rotation are absolute.
type PlacedObject struct {
	Category string
	Variant  string
	Tags     []string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    float32
}

// Reason identifies why a candidate was rejected.
type Reason int

const (
	RejectHeight Reason = iota
	RejectSlope
	RejectClearance
	RejectTags
	RejectChance
	reasonCount
)

func (r Reason) String() string {
	switch r {
	case RejectHeight:
		return "height"
	case RejectSlope:
		return "slope"
	case RejectClearance:
		return "clearance"
	case RejectTags:
		return "tags"
	case RejectChance:
		return "chance"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// RuleResult summarizes one rule's sampling loop.
type RuleResult struct {
	Category   string
	Requested  int
	Placed     int
	Attempts   int
	Rejections [reasonCount]int
}

// Underplaced reports whether the attempt budget ran out before MaxCount.
func (r RuleResult) Underplaced() bool {
	return r.Placed < r.Requested
}
