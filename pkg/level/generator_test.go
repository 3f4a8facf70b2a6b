package level

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Faultbox/midgard-levelgen/pkg/placement"
	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

func smallTerrain() terrain.Config {
	return terrain.Config{
		Width:            4,
		Depth:            4,
		CellSize:         1,
		NoiseScale:       20,
		Octaves:          1,
		Persistence:      0.5,
		Lacunarity:       2,
		HeightMultiplier: 10,
		Seed:             42,
	}
}

func flatTerrain(size int) terrain.Config {
	cfg := smallTerrain()
	cfg.Width, cfg.Depth = size, size
	cfg.HeightMultiplier = 0
	return cfg
}

func treeRule(count int) placement.Rule {
	return placement.Rule{
		Category:  "tree",
		Variants:  []string{"oak"},
		MaxCount:  count,
		MinHeight: 0,
		MaxHeight: 10,
		MinSlope:  0,
		MaxSlope:  90,
	}
}

func TestGenerateExampleScenario(t *testing.T) {
	g := NewGenerator()
	lvl, err := g.Generate(context.Background(), Request{Terrain: smallTerrain()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got := len(lvl.Mesh.Vertices); got != 16 {
		t.Errorf("vertices = %d, want 16", got)
	}
	if got := lvl.Mesh.TriangleCount(); got != 18 {
		t.Errorf("triangles = %d, want 18", got)
	}
	r := lvl.Report
	if r.Cells != 16 || r.Vertices != 16 || r.Triangles != 18 {
		t.Errorf("report counts = %d/%d/%d", r.Cells, r.Vertices, r.Triangles)
	}
	if r.MinHeight < 0 || r.MaxHeight > 10 {
		t.Errorf("height range [%v, %v] outside [0, 10]", r.MinHeight, r.MaxHeight)
	}

	again, err := NewGenerator().Generate(context.Background(), Request{Terrain: smallTerrain()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, v := range lvl.Heights.Values {
		if again.Heights.Values[i] != v {
			t.Fatalf("height %d differs between runs: %v vs %v", i, v, again.Heights.Values[i])
		}
	}
}

func TestGenerateFlatFieldPlacesAll(t *testing.T) {
	lvl, err := NewGenerator().Generate(context.Background(), Request{
		Terrain: flatTerrain(16),
		Rules:   []placement.Rule{treeRule(5)},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(lvl.Placements) != 5 {
		t.Errorf("placed %d, want 5", len(lvl.Placements))
	}
	if lvl.Report.TotalPlaced() != 5 {
		t.Errorf("report total = %d, want 5", lvl.Report.TotalPlaced())
	}
	if len(lvl.Report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", lvl.Report.Warnings)
	}
}

func TestGenerateUnderPlacementWarning(t *testing.T) {
	rule := treeRule(3)
	rule.Category = "structure"
	rule.MinHeight = 100
	rule.MaxHeight = 200

	lvl, err := NewGenerator().Generate(context.Background(), Request{
		Terrain: smallTerrain(),
		Rules:   []placement.Rule{rule},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(lvl.Placements) != 0 {
		t.Fatalf("placed %d, want 0", len(lvl.Placements))
	}
	if !lvl.Report.HasWarning(UnderPlacement, "structure") {
		t.Errorf("missing under-placement warning: %v", lvl.Report.Warnings)
	}
	rr := lvl.Report.Rules[0]
	if rr.Attempts != 30 || rr.Rejections["height"] != 30 {
		t.Errorf("rule report = %+v", rr)
	}
}

func TestGenerateSpawnFailureIsWarning(t *testing.T) {
	lvl, err := NewGenerator().Generate(context.Background(), Request{
		Terrain: flatTerrain(8),
		Rules:   []placement.Rule{treeRule(2)},
		Spawn:   &placement.SpawnRule{Category: "player", Variant: "player", MinHeight: 5},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if lvl.Spawn != nil {
		t.Errorf("spawn placed at %v", lvl.Spawn.Position)
	}
	if lvl.Report.Spawn == nil || lvl.Report.Spawn.Placed {
		t.Fatalf("spawn report = %+v", lvl.Report.Spawn)
	}
	if lvl.Report.Spawn.Attempts != placement.DefaultSpawnAttempts {
		t.Errorf("spawn attempts = %d", lvl.Report.Spawn.Attempts)
	}
	if !lvl.Report.HasWarning(SpawnFailure, "player") {
		t.Errorf("missing spawn warning: %v", lvl.Report.Warnings)
	}
	if len(lvl.Placements) != 2 {
		t.Errorf("rules after failed spawn placed %d, want 2", len(lvl.Placements))
	}
}

func TestGenerateSpawnOrdering(t *testing.T) {
	structure := treeRule(1)
	structure.Category = "structure"
	structure.Variants = []string{"hut"}
	enemy := treeRule(4)
	enemy.Category = "enemy"
	enemy.Variants = []string{"slime"}

	lvl, err := NewGenerator().Generate(context.Background(), Request{
		Terrain: flatTerrain(32),
		Rules:   []placement.Rule{structure, enemy},
		Spawn:   &placement.SpawnRule{Category: "player", Variant: "player", After: "structure"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var order []string
	for _, p := range lvl.Placements {
		if len(order) == 0 || order[len(order)-1] != p.Category {
			order = append(order, p.Category)
		}
	}
	want := []string{"structure", "player", "enemy"}
	if len(order) != len(want) {
		t.Fatalf("category order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("category order = %v, want %v", order, want)
		}
	}
}

func TestGenerateConfigurationErrors(t *testing.T) {
	noVariants := treeRule(2)
	noVariants.Variants = nil

	badDims := smallTerrain()
	badDims.Width = 1
	badOctaves := smallTerrain()
	badOctaves.Octaves = 0
	nanHeight := treeRule(2)
	nanHeight.MinHeight = float32(math.NaN())

	tests := []struct {
		name  string
		req   Request
		field string
		want  error
	}{
		{"width", Request{Terrain: badDims}, "terrain", terrain.ErrInvalidDimensions},
		{"octaves", Request{Terrain: badOctaves}, "terrain", terrain.ErrInvalidOctaves},
		{"variants", Request{Terrain: smallTerrain(), Rules: []placement.Rule{noVariants}}, "rules[0] (tree)", placement.ErrMissingVariants},
		{"nan height", Request{Terrain: smallTerrain(), Rules: []placement.Rule{nanHeight}}, "rules[0] (tree)", placement.ErrNonFinite},
		{"spawn variant", Request{Terrain: smallTerrain(), Spawn: &placement.SpawnRule{Category: "player"}}, "spawn", placement.ErrMissingSpawnVariant},
		{"spawn anchor", Request{Terrain: smallTerrain(), Spawn: &placement.SpawnRule{Variant: "p", After: "castle"}}, "spawn.after", ErrUnknownSpawnAnchor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator()
			lvl, err := g.Generate(context.Background(), tt.req)
			if lvl != nil {
				t.Error("level returned alongside error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %T is not a ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tt.field)
			}
			if g.Current() != nil {
				t.Error("failed run replaced the current level")
			}
		})
	}
}

func TestGenerateClearPrevious(t *testing.T) {
	g := NewGenerator()
	req := Request{Terrain: flatTerrain(16), Rules: []placement.Rule{treeRule(3)}}

	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(second.Retained) != 3 || second.Report.Retained != 3 {
		t.Errorf("retained = %d (report %d), want 3", len(second.Retained), second.Report.Retained)
	}

	third, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(third.Retained) != 6 {
		t.Errorf("retained = %d, want 6", len(third.Retained))
	}

	req.ClearPrevious = true
	cleared, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(cleared.Retained) != 0 {
		t.Errorf("retained = %d after clear, want 0", len(cleared.Retained))
	}
	if g.Current() != cleared {
		t.Error("Current does not return the latest level")
	}
}

func TestGenerateRandomizeSeed(t *testing.T) {
	g := NewGenerator(WithSeedSource(func() int64 { return 777 }))
	lvl, err := g.Generate(context.Background(), Request{Terrain: smallTerrain(), RandomizeSeed: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if lvl.Report.Seed != 777 || !lvl.Report.SeedRandomized || lvl.Config.Seed != 777 {
		t.Errorf("seed = %d (randomized %v, config %d), want 777",
			lvl.Report.Seed, lvl.Report.SeedRandomized, lvl.Config.Seed)
	}
}

func TestGenerateElapsed(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 250 * time.Millisecond)
	}

	lvl, err := NewGenerator(WithClock(clock)).Generate(context.Background(), Request{Terrain: smallTerrain()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if lvl.Report.Elapsed != 250*time.Millisecond {
		t.Errorf("elapsed = %v, want 250ms", lvl.Report.Elapsed)
	}
}

func TestGenerateCurveFallbackWarning(t *testing.T) {
	curve, err := terrain.NewScriptCurve(`y := x > 0 ? "bad" : 0.0`)
	if err != nil {
		t.Fatalf("NewScriptCurve: %v", err)
	}
	cfg := smallTerrain()
	cfg.Curve = curve

	lvl, err := NewGenerator().Generate(context.Background(), Request{Terrain: cfg})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if lvl.Report.CurveFailures == 0 || !lvl.Report.HasWarning(CurveFallback, "") {
		t.Errorf("curve failures = %d, warnings = %v", lvl.Report.CurveFailures, lvl.Report.Warnings)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator()
	if _, err := g.Generate(ctx, Request{Terrain: smallTerrain()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if g.Current() != nil {
		t.Error("cancelled run replaced the current level")
	}
}

func TestGenerateConcurrentCallsSerialize(t *testing.T) {
	g := NewGenerator()
	req := Request{Terrain: flatTerrain(24), Rules: []placement.Rule{treeRule(4)}, ClearPrevious: true}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Generate(context.Background(), req); err != nil {
				t.Errorf("Generate: %v", err)
			}
		}()
	}
	wg.Wait()

	if cur := g.Current(); cur == nil || len(cur.Placements) != 4 {
		t.Fatalf("current level = %+v", cur)
	}
}

func TestLevelQueries(t *testing.T) {
	cfg := smallTerrain()
	cfg.Width, cfg.Depth = 16, 16
	lvl, err := NewGenerator().Generate(context.Background(), Request{Terrain: cfg})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got, want := lvl.HeightAt(3, 5), lvl.Heights.At(3, 5); got != want {
		t.Errorf("HeightAt(3, 5) = %v, want grid value %v", got, want)
	}
	if s := lvl.SlopeAt(7, 7); s < 0 || s > 90 {
		t.Errorf("SlopeAt = %v outside [0, 90]", s)
	}
	if n := lvl.NormalAt(7, 7); n.Y() <= 0 {
		t.Errorf("NormalAt = %v, want upward", n)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		p := lvl.RandomPosition(rng, 2)
		if p.X() < 2 || p.X() > 13 || p.Z() < 2 || p.Z() > 13 {
			t.Fatalf("RandomPosition %v inside margin", p)
		}
		if p.Y() != lvl.HeightAt(p.X(), p.Z()) {
			t.Fatalf("RandomPosition y = %v, want surface height", p.Y())
		}
	}
}
