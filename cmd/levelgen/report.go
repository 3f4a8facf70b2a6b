package main

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-levelgen/internal/logger"
	"github.com/Faultbox/midgard-levelgen/pkg/level"
)

func logReport(r *level.Report) {
	logger.Info("level generated",
		zap.Int64("seed", r.Seed),
		zap.Bool("seed_randomized", r.SeedRandomized),
		zap.Int("cells", r.Cells),
		zap.Int("vertices", r.Vertices),
		zap.Int("triangles", r.Triangles),
		zap.Float32("min_height", r.MinHeight),
		zap.Float32("max_height", r.MaxHeight),
		zap.Int("placed", r.TotalPlaced()),
		zap.Int("retained", r.Retained),
		zap.Duration("elapsed", r.Elapsed),
	)

	for _, rr := range r.Rules {
		logger.Debug("rule",
			zap.String("category", rr.Category),
			zap.Int("requested", rr.Requested),
			zap.Int("placed", rr.Placed),
			zap.Int("attempts", rr.Attempts),
			zap.Any("rejections", rr.Rejections),
		)
	}

	if s := r.Spawn; s != nil && s.Placed {
		logger.Info("spawn placed",
			zap.String("category", s.Category),
			zap.Int("attempts", s.Attempts),
			zap.Float32s("position", s.Position[:]),
		)
	}

	for _, w := range r.Warnings {
		logger.Warn(w.Message,
			zap.Stringer("kind", w.Kind),
			zap.String("category", w.Category),
		)
	}
}
