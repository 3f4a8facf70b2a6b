package placement

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

// DefaultAttemptMultiplier bounds each rule at MaxCount*10 candidate draws.
const DefaultAttemptMultiplier = 10

// Surface answers the spatial queries the sampler needs.
type Surface interface {
	HeightAt(worldX, worldZ float32) float32
	SlopeAt(worldX, worldZ float32) float32
	NormalAt(worldX, worldZ float32) mgl32.Vec3
	Extent() (float32, float32)
}

type fieldSurface struct {
	*terrain.HeightField
	slopes *terrain.SlopeField
}

func (s fieldSurface) SlopeAt(worldX, worldZ float32) float32 {
	return s.slopes.SlopeAt(worldX, worldZ)
}

func (s fieldSurface) NormalAt(worldX, worldZ float32) mgl32.Vec3 {
	return s.slopes.NormalAt(worldX, worldZ)
}

// NewSurface pairs a heightfield with its slope field. Heights are sampled
// bilinearly; slopes and normals come from the nearest grid vertex.
func NewSurface(heights *terrain.HeightField, slopes *terrain.SlopeField) Surface {
	return fieldSurface{HeightField: heights, slopes: slopes}
}

// Sampler places objects by rejection sampling. It draws every random number
// from its own rng so runs with equal seeds are reproducible.
type Sampler struct {
	surface    Surface
	rng        *rand.Rand
	multiplier int
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithAttemptMultiplier sets the per-rule attempt budget to MaxCount*k.
func WithAttemptMultiplier(k int) SamplerOption {
	return func(s *Sampler) {
		if k > 0 {
			s.multiplier = k
		}
	}
}

// NewSampler creates a sampler over surface.
func NewSampler(surface Surface, rng *rand.Rand, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		surface:    surface,
		rng:        rng,
		multiplier: DefaultAttemptMultiplier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place evaluates rules in order against a shared occupancy, so each rule is
// constrained by everything placed before it.
func (s *Sampler) Place(rules []Rule, occ *Occupancy) ([]PlacedObject, []RuleResult) {
	var placed []PlacedObject
	results := make([]RuleResult, 0, len(rules))
	for _, rule := range rules {
		objs, res := s.PlaceRule(rule, occ)
		placed = append(placed, objs...)
		results = append(results, res)
	}
	return placed, results
}

// PlaceRule runs one rule's sampling loop until MaxCount objects are accepted
// or the attempt budget is spent. Running out of attempts is not an error.
func (s *Sampler) PlaceRule(rule Rule, occ *Occupancy) ([]PlacedObject, RuleResult) {
	res := RuleResult{Category: rule.Category, Requested: rule.MaxCount}
	maxAttempts := rule.MaxCount * s.multiplier

	var placed []PlacedObject
	for res.Placed < rule.MaxCount && res.Attempts < maxAttempts {
		res.Attempts++

		x, z := s.candidate(rule.EdgeMargin)
		height := s.surface.HeightAt(x, z)
		if height < rule.MinHeight || height > rule.MaxHeight {
			res.Rejections[RejectHeight]++
			continue
		}

		slope := s.surface.SlopeAt(x, z)
		if slope < rule.MinSlope || slope > rule.MaxSlope {
			res.Rejections[RejectSlope]++
			continue
		}

		pos := mgl32.Vec3{x, height + rule.GroundOffset, z}
		if !occ.Clear(pos, rule.Clearance) {
			res.Rejections[RejectClearance]++
			continue
		}

		if len(rule.RequiredTags) > 0 && !occ.NearTagged(pos, rule.tagRadius(), rule.RequiredTags) {
			res.Rejections[RejectTags]++
			continue
		}

		if p := rule.chance(); p < 1 && s.rng.Float32() >= p {
			res.Rejections[RejectChance]++
			continue
		}

		obj := s.accept(rule, pos)
		occ.Add(Occupant{Position: obj.Position, Category: obj.Category, Tags: obj.Tags})
		placed = append(placed, obj)
		res.Placed++
	}

	return placed, res
}

func (s *Sampler) accept(rule Rule, pos mgl32.Vec3) PlacedObject {
	var yaw float32
	if rule.RandomYRotation {
		yaw = s.rng.Float32() * 2 * math.Pi
	}

	lo, hi := rule.scaleRange()
	scale := lo
	if hi > lo {
		scale = lo + s.rng.Float32()*(hi-lo)
	}

	return PlacedObject{
		Category: rule.Category,
		Variant:  s.pickVariant(rule.Variants),
		Tags:     rule.tags(),
		Position: pos,
		Rotation: orientation(s.surface.NormalAt(pos.X(), pos.Z()), rule.AlignToSurfaceNormal, yaw),
		Scale:    scale,
	}
}

func (s *Sampler) pickVariant(variants []string) string {
	switch len(variants) {
	case 0:
		return ""
	case 1:
		return variants[0]
	default:
		return variants[s.rng.Intn(len(variants))]
	}
}

// candidate draws a uniform world position inside the margin band. When the
// margin swallows an axis, that axis collapses to the map centre.
func (s *Sampler) candidate(margin float32) (float32, float32) {
	extentX, extentZ := s.surface.Extent()
	return s.axis(extentX, margin), s.axis(extentZ, margin)
}

func (s *Sampler) axis(extent, margin float32) float32 {
	span := extent - 2*margin
	if span <= 0 {
		return extent / 2
	}
	return margin + s.rng.Float32()*span
}
