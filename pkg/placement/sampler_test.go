package placement

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

func flatSurface(width, depth int, height float32) Surface {
	hf := terrain.NewHeightField(width, depth, 1)
	for i := range hf.Values {
		hf.Values[i] = height
	}
	return NewSurface(hf, terrain.ComputeSlopes(hf, 1))
}

func noiseSurface(t *testing.T, seed int64) Surface {
	t.Helper()
	cfg := terrain.Config{
		Width:            64,
		Depth:            64,
		CellSize:         1,
		NoiseScale:       16,
		Octaves:          4,
		Persistence:      0.5,
		Lacunarity:       2,
		HeightMultiplier: 20,
		Seed:             seed,
	}
	raw, err := terrain.Synthesize(cfg)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	hf := terrain.Remap(raw, nil, cfg.HeightMultiplier)
	return NewSurface(hf, terrain.ComputeSlopes(hf, cfg.CellSize))
}

func openRule(category string, count int) Rule {
	return Rule{
		Category:  category,
		Variants:  []string{category + "_a"},
		MaxCount:  count,
		MinHeight: 0,
		MaxHeight: 10,
		MinSlope:  0,
		MaxSlope:  90,
	}
}

func TestPlaceFlatFieldFillsCount(t *testing.T) {
	sampler := NewSampler(flatSurface(16, 16, 0), rand.New(rand.NewSource(1)))
	objs, res := sampler.PlaceRule(openRule("tree", 5), NewOccupancy(1))

	if len(objs) != 5 || res.Placed != 5 {
		t.Fatalf("placed %d (%d objects), want 5", res.Placed, len(objs))
	}
	if res.Attempts != 5 {
		t.Errorf("used %d attempts, want 5", res.Attempts)
	}
	if res.Underplaced() {
		t.Error("result reports under-placement")
	}
}

func TestPlaceUnreachableHeight(t *testing.T) {
	rule := openRule("structure", 4)
	rule.MinHeight = 100
	rule.MaxHeight = 200

	sampler := NewSampler(flatSurface(16, 16, 10), rand.New(rand.NewSource(1)))
	objs, res := sampler.PlaceRule(rule, NewOccupancy(1))

	if len(objs) != 0 {
		t.Fatalf("placed %d objects, want 0", len(objs))
	}
	if res.Attempts != 40 {
		t.Errorf("attempts = %d, want 40", res.Attempts)
	}
	if res.Rejections[RejectHeight] != 40 {
		t.Errorf("height rejections = %d, want 40", res.Rejections[RejectHeight])
	}
	if !res.Underplaced() {
		t.Error("expected under-placement")
	}
}

func TestPlaceZeroCount(t *testing.T) {
	sampler := NewSampler(flatSurface(8, 8, 0), rand.New(rand.NewSource(1)))
	objs, res := sampler.PlaceRule(openRule("rock", 0), NewOccupancy(1))
	if len(objs) != 0 || res.Attempts != 0 {
		t.Errorf("got %d objects in %d attempts, want none", len(objs), res.Attempts)
	}
}

func TestPlaceRespectsRuleBoundAndClearance(t *testing.T) {
	rules := []Rule{
		openRule("structure", 6),
		openRule("tree", 60),
		openRule("rock", 40),
	}
	rules[0].MaxHeight = 20
	rules[0].Clearance = 12
	rules[1].MaxHeight = 20
	rules[1].MaxSlope = 40
	rules[1].Clearance = 3
	rules[2].MaxHeight = 20
	rules[2].Clearance = 1.5

	sampler := NewSampler(noiseSurface(t, 7), rand.New(rand.NewSource(7)))
	objs, results := sampler.Place(rules, NewOccupancy(4))

	clearance := map[string]float32{}
	for i, r := range rules {
		clearance[r.Category] = r.Clearance
		if results[i].Placed > r.MaxCount {
			t.Errorf("%s placed %d > max %d", r.Category, results[i].Placed, r.MaxCount)
		}
		if results[i].Attempts > r.MaxCount*DefaultAttemptMultiplier {
			t.Errorf("%s used %d attempts", r.Category, results[i].Attempts)
		}
	}

	// Clearance is checked by the rule being placed against everything
	// accepted before it.
	for i, p := range objs {
		for _, q := range objs[:i] {
			if d := p.Position.Sub(q.Position).Len(); d < clearance[p.Category] {
				t.Fatalf("%s at %v is %.2f from earlier %s at %v (clearance %.2f)",
					p.Category, p.Position, d, q.Category, q.Position, clearance[p.Category])
			}
		}
	}
}

func TestPlaceDeterministic(t *testing.T) {
	rules := []Rule{openRule("tree", 20), openRule("rock", 20)}
	rules[0].MaxHeight = 20
	rules[0].Clearance = 2
	rules[0].RandomYRotation = true
	rules[1].MaxHeight = 20
	rules[1].AlignToSurfaceNormal = true

	run := func() []PlacedObject {
		s := NewSampler(noiseSurface(t, 3), rand.New(rand.NewSource(99)))
		objs, _ := s.Place(rules, NewOccupancy(2))
		return objs
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Rotation != b[i].Rotation {
			t.Fatalf("object %d differs", i)
		}
	}
}

func TestPlaceRequiredTags(t *testing.T) {
	occ := NewOccupancy(2)
	occ.Add(Occupant{Position: mgl32.Vec3{8, 0, 8}, Category: "camp", Tags: []string{"camp"}})

	rule := openRule("guard", 20)
	rule.RequiredTags = []string{"camp"}
	rule.TagRadius = 2
	rule.EdgeMargin = 5

	sampler := NewSampler(flatSurface(17, 17, 0), rand.New(rand.NewSource(4)))
	objs, res := sampler.PlaceRule(rule, occ)

	if res.Placed == 0 {
		t.Fatal("no guards placed near the camp")
	}
	for _, o := range objs {
		if d := o.Position.Sub(mgl32.Vec3{8, 0, 8}).Len(); d > 2 {
			t.Errorf("guard at %v is %.2f from camp", o.Position, d)
		}
	}
	if res.Rejections[RejectTags] == 0 {
		t.Error("expected some tag rejections")
	}
}

func TestPlaceRequiredTagsWithoutMatch(t *testing.T) {
	rule := openRule("guard", 3)
	rule.RequiredTags = []string{"camp"}
	rule.TagRadius = 100

	sampler := NewSampler(flatSurface(8, 8, 0), rand.New(rand.NewSource(4)))
	_, res := sampler.PlaceRule(rule, NewOccupancy(1))
	if res.Placed != 0 {
		t.Errorf("placed %d guards with no camp present", res.Placed)
	}
}

func TestPlaceSpawnProbability(t *testing.T) {
	rule := openRule("grass", 50)
	rule.SpawnProbability = 0.5

	sampler := NewSampler(flatSurface(32, 32, 0), rand.New(rand.NewSource(11)))
	_, res := sampler.PlaceRule(rule, NewOccupancy(1))
	if res.Rejections[RejectChance] == 0 {
		t.Error("expected chance rejections at probability 0.5")
	}
	if res.Placed != 50 {
		t.Errorf("placed %d, want 50 within the budget", res.Placed)
	}
}

func TestPlaceEdgeMarginAndScale(t *testing.T) {
	rule := openRule("bush", 40)
	rule.EdgeMargin = 4
	rule.ScaleMin = 0.8
	rule.ScaleMax = 1.2
	rule.GroundOffset = 0.5

	sampler := NewSampler(flatSurface(21, 21, 2), rand.New(rand.NewSource(5)))
	objs, _ := sampler.PlaceRule(rule, NewOccupancy(1))

	for _, o := range objs {
		x, z := o.Position.X(), o.Position.Z()
		if x < 4 || x > 16 || z < 4 || z > 16 {
			t.Errorf("object at %v inside edge margin", o.Position)
		}
		if o.Scale < 0.8 || o.Scale > 1.2 {
			t.Errorf("scale %v outside [0.8, 1.2]", o.Scale)
		}
		if o.Position.Y() != 2.5 {
			t.Errorf("y = %v, want 2.5", o.Position.Y())
		}
	}
}

func TestPlaceVariantsAndTags(t *testing.T) {
	rule := openRule("tree", 30)
	rule.Variants = []string{"oak", "pine"}

	sampler := NewSampler(flatSurface(16, 16, 0), rand.New(rand.NewSource(2)))
	objs, _ := sampler.PlaceRule(rule, NewOccupancy(1))

	seen := map[string]bool{}
	for _, o := range objs {
		seen[o.Variant] = true
		if len(o.Tags) != 1 || o.Tags[0] != "tree" {
			t.Errorf("tags = %v, want [tree]", o.Tags)
		}
	}
	if !seen["oak"] || !seen["pine"] {
		t.Errorf("variants seen = %v, want both", seen)
	}
}

func TestOrientation(t *testing.T) {
	normal := mgl32.Vec3{1, 1, 0}.Normalize()

	q := orientation(normal, true, 0)
	if got := q.Rotate(up); !near(got, normal) {
		t.Errorf("aligned up = %v, want %v", got, normal)
	}

	yawed := orientation(normal, true, math.Pi/3)
	if got := yawed.Rotate(up); !near(got, normal) {
		t.Errorf("yaw changed the up axis: %v", got)
	}

	flat := orientation(normal, false, math.Pi/2)
	if got := flat.Rotate(up); !near(got, up) {
		t.Errorf("unaligned up = %v, want %v", got, up)
	}
	if got := flat.Rotate(mgl32.Vec3{1, 0, 0}); !near(got, mgl32.Vec3{0, 0, -1}) {
		t.Errorf("90 degree yaw of +X = %v, want -Z", got)
	}
}

// near compares with an absolute tolerance; rotated components that should
// be zero come out as tiny nonzero floats.
func near(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < 1e-5
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rule)
		want   error
	}{
		{"ok", func(r *Rule) {}, nil},
		{"negative count", func(r *Rule) { r.MaxCount = -1 }, ErrNegativeCount},
		{"no variants", func(r *Rule) { r.Variants = nil }, ErrMissingVariants},
		{"no variants zero count", func(r *Rule) { r.Variants = nil; r.MaxCount = 0 }, nil},
		{"negative clearance", func(r *Rule) { r.Clearance = -1 }, ErrNegativeClearance},
		{"height order", func(r *Rule) { r.MinHeight = 11 }, ErrInvalidHeight},
		{"slope above 90", func(r *Rule) { r.MaxSlope = 91 }, ErrInvalidSlope},
		{"chance", func(r *Rule) { r.SpawnProbability = 1.5 }, ErrInvalidChance},
		{"scale order", func(r *Rule) { r.ScaleMin = 2; r.ScaleMax = 1 }, ErrInvalidScale},
		{"nan min height", func(r *Rule) { r.MinHeight = float32(math.NaN()) }, ErrNonFinite},
		{"inf clearance", func(r *Rule) { r.Clearance = float32(math.Inf(1)) }, ErrNonFinite},
		{"inf max slope", func(r *Rule) { r.MaxSlope = float32(math.Inf(-1)) }, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := openRule("tree", 3)
			tt.mutate(&r)
			err := r.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
