package level

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-levelgen/pkg/placement"
)

// WarningKind classifies a non-fatal problem found during generation.
type WarningKind int

const (
	UnderPlacement WarningKind = iota
	SpawnFailure
	CurveFallback
)

func (k WarningKind) String() string {
	switch k {
	case UnderPlacement:
		return "under_placement"
	case SpawnFailure:
		return "spawn_failure"
	case CurveFallback:
		return "curve_fallback"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning is reported alongside a successful generation.
type Warning struct {
	Kind     WarningKind
	Category string
	Message  string
}

func (w Warning) String() string {
	if w.Category == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Category, w.Message)
}

// RuleReport holds the counters of one placement rule.
type RuleReport struct {
	Category   string
	Requested  int
	Placed     int
	Attempts   int
	Rejections map[string]int
}

// SpawnReport describes the outcome of the single required placement.
type SpawnReport struct {
	Category string
	Placed   bool
	Attempts int
	Position mgl32.Vec3
}

// Report summarizes a generation run for the caller to log. The core never
// logs on its own.
type Report struct {
	Seed           int64
	SeedRandomized bool
	Cells          int
	Vertices       int
	Triangles      int
	MinHeight      float32
	MaxHeight      float32
	Rules          []RuleReport
	Spawn          *SpawnReport
	Retained       int
	CurveFailures  int
	Warnings       []Warning
	Elapsed        time.Duration
}

// TotalPlaced returns the number of objects placed by all rules, excluding
// the spawn.
func (r *Report) TotalPlaced() int {
	n := 0
	for _, rr := range r.Rules {
		n += rr.Placed
	}
	return n
}

// HasWarning reports whether any warning of kind was raised, optionally
// restricted to category.
func (r *Report) HasWarning(kind WarningKind, category string) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind && (category == "" || w.Category == category) {
			return true
		}
	}
	return false
}

func (r *Report) addRule(res placement.RuleResult) {
	rr := RuleReport{
		Category:   res.Category,
		Requested:  res.Requested,
		Placed:     res.Placed,
		Attempts:   res.Attempts,
		Rejections: make(map[string]int),
	}
	for reason, n := range res.Rejections {
		if n > 0 {
			rr.Rejections[placement.Reason(reason).String()] = n
		}
	}
	r.Rules = append(r.Rules, rr)

	if res.Underplaced() {
		r.Warnings = append(r.Warnings, Warning{
			Kind:     UnderPlacement,
			Category: res.Category,
			Message: fmt.Sprintf("placed %d of %d after %d attempts",
				res.Placed, res.Requested, res.Attempts),
		})
	}
}

func (r *Report) setSpawn(res placement.SpawnResult) {
	r.Spawn = &SpawnReport{
		Category: res.Category,
		Placed:   res.Placed,
		Attempts: res.Attempts,
		Position: res.Object.Position,
	}
	if !res.Placed {
		r.Warnings = append(r.Warnings, Warning{
			Kind:     SpawnFailure,
			Category: res.Category,
			Message:  fmt.Sprintf("no valid position after %d attempts", res.Attempts),
		})
	}
}
