// Package level ties terrain synthesis and object placement into a single
// generation call and reports what happened.
package level

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-levelgen/pkg/placement"
	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

// maxRandomSeed bounds seeds drawn when a request asks for a random one.
const maxRandomSeed = 100000

// Request is the complete input of one generation run.
type Request struct {
	Terrain       terrain.Config
	Rules         []placement.Rule
	Spawn         *placement.SpawnRule
	ClearPrevious bool // Drop the previous level instead of retaining its placements
	RandomizeSeed bool // Replace Terrain.Seed with a fresh random seed
}

// Level is the result of a generation run. It is read-only once returned.
type Level struct {
	Config     terrain.Config
	Heights    *terrain.HeightField
	Slopes     *terrain.SlopeField
	Mesh       *terrain.Mesh
	Placements []placement.PlacedObject
	Spawn      *placement.PlacedObject
	Retained   []placement.PlacedObject // Placements carried over from earlier runs
	Report     Report

	surface placement.Surface
}

// HeightAt returns the bilinear terrain height at a world position.
func (l *Level) HeightAt(worldX, worldZ float32) float32 {
	return l.surface.HeightAt(worldX, worldZ)
}

// SlopeAt returns the slope in degrees at the nearest grid vertex.
func (l *Level) SlopeAt(worldX, worldZ float32) float32 {
	return l.surface.SlopeAt(worldX, worldZ)
}

// NormalAt returns the unit surface normal at the nearest grid vertex.
func (l *Level) NormalAt(worldX, worldZ float32) mgl32.Vec3 {
	return l.surface.NormalAt(worldX, worldZ)
}

// RandomPosition returns a point on the terrain surface at least margin
// world units from the border.
func (l *Level) RandomPosition(rng *rand.Rand, margin float32) mgl32.Vec3 {
	extentX, extentZ := l.surface.Extent()
	x := randomAxis(rng, extentX, margin)
	z := randomAxis(rng, extentZ, margin)
	return mgl32.Vec3{x, l.HeightAt(x, z), z}
}

func randomAxis(rng *rand.Rand, extent, margin float32) float32 {
	span := extent - 2*margin
	if span <= 0 {
		return extent / 2
	}
	return margin + rng.Float32()*span
}

// Option configures a Generator.
type Option func(*Generator)

// WithAttemptMultiplier sets the per-rule attempt budget to MaxCount*k.
func WithAttemptMultiplier(k int) Option {
	return func(g *Generator) {
		if k > 0 {
			g.multiplier = k
		}
	}
}

// WithSeedSource overrides where random seeds come from.
func WithSeedSource(next func() int64) Option {
	return func(g *Generator) {
		g.nextSeed = next
	}
}

// WithClock overrides the time source used for the elapsed time report.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// Generator runs generation requests one at a time and keeps the most recent
// level.
type Generator struct {
	mu         sync.Mutex
	current    *Level
	multiplier int
	nextSeed   func() int64
	now        func() time.Time
}

// NewGenerator creates a generator with default settings.
func NewGenerator(opts ...Option) *Generator {
	seeds := rand.New(rand.NewSource(time.Now().UnixNano()))
	g := &Generator{
		multiplier: placement.DefaultAttemptMultiplier,
		nextSeed:   func() int64 { return seeds.Int63n(maxRandomSeed) },
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Current returns the most recently generated level, or nil.
func (g *Generator) Current() *Level {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Reset forgets the current level and everything it retained.
func (g *Generator) Reset() {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()
}

// Generate validates req and runs the full pipeline. Only configuration
// problems and cancellation are errors; under-placement and spawn failures
// are reported as warnings. Concurrent calls are serialized.
func (g *Generator) Generate(ctx context.Context, req Request) (*Level, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := validate(req); err != nil {
		return nil, err
	}

	start := g.now()
	cfg := req.Terrain
	report := Report{Seed: cfg.Seed}
	if req.RandomizeSeed {
		cfg.Seed = g.nextSeed()
		report.Seed = cfg.Seed
		report.SeedRandomized = true
	}

	failuresBefore := curveFailures(cfg.Curve)
	raw, err := terrain.Synthesize(cfg)
	if err != nil {
		return nil, configError("terrain", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	heights := terrain.Remap(raw, cfg.Curve, cfg.HeightMultiplier)
	if n := curveFailures(cfg.Curve) - failuresBefore; n > 0 {
		report.CurveFailures = n
		report.Warnings = append(report.Warnings, Warning{
			Kind:    CurveFallback,
			Message: fmt.Sprintf("curve failed on %d cells; raw values were used", n),
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mesh := terrain.Triangulate(heights, cfg.CellSize)
	slopes := terrain.ComputeSlopes(heights, cfg.CellSize)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lvl := &Level{
		Config:  cfg,
		Heights: heights,
		Slopes:  slopes,
		Mesh:    mesh,
		surface: placement.NewSurface(heights, slopes),
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	sampler := placement.NewSampler(lvl.surface, rng, placement.WithAttemptMultiplier(g.multiplier))
	occ := placement.NewOccupancy(bucketSize(req))

	before, after := splitRules(req.Rules, req.Spawn)
	lvl.place(sampler, before, occ, &report)
	if req.Spawn != nil {
		res := sampler.PlaceSpawn(*req.Spawn, occ)
		report.setSpawn(res)
		if res.Placed {
			spawn := res.Object
			lvl.Spawn = &spawn
			lvl.Placements = append(lvl.Placements, spawn)
		}
	}
	lvl.place(sampler, after, occ, &report)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !req.ClearPrevious && g.current != nil {
		prev := g.current
		lvl.Retained = make([]placement.PlacedObject, 0, len(prev.Retained)+len(prev.Placements))
		lvl.Retained = append(lvl.Retained, prev.Retained...)
		lvl.Retained = append(lvl.Retained, prev.Placements...)
	}

	report.Cells = cfg.Width * cfg.Depth
	report.Vertices = len(mesh.Vertices)
	report.Triangles = mesh.TriangleCount()
	report.MinHeight, report.MaxHeight = heights.Range()
	report.Retained = len(lvl.Retained)
	report.Elapsed = g.now().Sub(start)
	lvl.Report = report

	g.current = lvl
	return lvl, nil
}

func (l *Level) place(s *placement.Sampler, rules []placement.Rule, occ *placement.Occupancy, report *Report) {
	objs, results := s.Place(rules, occ)
	l.Placements = append(l.Placements, objs...)
	for _, res := range results {
		report.addRule(res)
	}
}

func validate(req Request) error {
	if err := req.Terrain.Validate(); err != nil {
		return configError("terrain", err)
	}
	for i, rule := range req.Rules {
		if err := rule.Validate(); err != nil {
			return configError(fmt.Sprintf("rules[%d] (%s)", i, rule.Category), err)
		}
	}
	if req.Spawn != nil {
		if err := req.Spawn.Validate(); err != nil {
			return configError("spawn", err)
		}
		if req.Spawn.After != "" && anchorIndex(req.Rules, req.Spawn.After) < 0 {
			return configError("spawn.after", fmt.Errorf("%w: %q", ErrUnknownSpawnAnchor, req.Spawn.After))
		}
	}
	return nil
}

// splitRules divides the rule list around the spawn placement. Without an
// anchor the spawn is placed after every rule.
func splitRules(rules []placement.Rule, spawn *placement.SpawnRule) (before, after []placement.Rule) {
	if spawn == nil || spawn.After == "" {
		return rules, nil
	}
	i := anchorIndex(rules, spawn.After)
	return rules[:i+1], rules[i+1:]
}

// anchorIndex returns the last rule of category, or -1.
func anchorIndex(rules []placement.Rule, category string) int {
	for i := len(rules) - 1; i >= 0; i-- {
		if rules[i].Category == category {
			return i
		}
	}
	return -1
}

// bucketSize sizes occupancy buckets by the largest clearance in play so
// clearance queries touch at most a 3x3 block.
func bucketSize(req Request) float32 {
	size := req.Terrain.CellSize
	for _, r := range req.Rules {
		size = max(size, r.Clearance)
	}
	if req.Spawn != nil {
		size = max(size, req.Spawn.Clearance)
	}
	return size
}

func curveFailures(c terrain.Curve) int {
	if f, ok := c.(interface{ Failures() int }); ok {
		return f.Failures()
	}
	return 0
}
