package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-levelgen/internal/config"
	"github.com/Faultbox/midgard-levelgen/internal/export"
	"github.com/Faultbox/midgard-levelgen/internal/logger"
	"github.com/Faultbox/midgard-levelgen/internal/watch"
	"github.com/Faultbox/midgard-levelgen/pkg/level"
	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

func cmdGenerate(args []string) error {
	var flags config.Flags
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	flags.Register(fs)
	fs.Parse(args)

	cfg, err := setup(&flags)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := level.NewGenerator(cfg.GeneratorOptions()...)
	return run(ctx, gen, cfg)
}

func cmdWatch(args []string) error {
	var flags config.Flags
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	flags.Register(fs)
	fs.Parse(args)

	if flags.ConfigPath == "" {
		return errors.New("watch needs -config")
	}

	cfg, err := setup(&flags)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files := watchedFiles(flags.ConfigPath, cfg)
	w, err := watch.New(files...)
	if err != nil {
		return fmt.Errorf("watching %v: %w", files, err)
	}
	defer func() { w.Close() }()

	gen := level.NewGenerator(cfg.GeneratorOptions()...)
	if err := run(ctx, gen, cfg); err != nil {
		logger.Error("generation failed", zap.Error(err))
	}
	logger.Info("watching for changes", zap.Strings("files", files))

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopped watching")
			return nil
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			logger.Info("config changed", zap.String("file", path))
			next, err := config.Load(&flags)
			if err != nil {
				logger.Error("reloading config", zap.Error(err))
				continue
			}
			if err := reconfigure(cfg, next); err != nil {
				logger.Error("reloading logger", zap.Error(err))
			}
			if nextFiles := watchedFiles(flags.ConfigPath, next); !slices.Equal(nextFiles, files) {
				nw, err := watch.New(nextFiles...)
				if err != nil {
					logger.Error("rewatching", zap.Strings("files", nextFiles), zap.Error(err))
				} else {
					w.Close()
					w, files = nw, nextFiles
					logger.Info("watching for changes", zap.Strings("files", files))
				}
			}
			// The attempt multiplier is a generator setting, so a change
			// needs a fresh generator. Retained placements start over.
			if next.Generation.AttemptMultiplier != cfg.Generation.AttemptMultiplier {
				gen = level.NewGenerator(next.GeneratorOptions()...)
			}
			cfg = next
			if err := run(ctx, gen, cfg); err != nil {
				logger.Error("generation failed", zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}

// watchedFiles lists the config file and the curve script it references.
func watchedFiles(configPath string, cfg *config.Config) []string {
	files := []string{configPath}
	if cfg.Curve.Type == config.CurveScript && cfg.Curve.Script == "" && cfg.Curve.ScriptFile != "" {
		files = append(files, cfg.Curve.ScriptFile)
	}
	if cfg.Noise.HeightmapFile != "" && terrain.Algorithm(cfg.Noise.Algorithm) == terrain.AlgorithmImage {
		files = append(files, cfg.Noise.HeightmapFile)
	}
	return files
}

// reconfigure re-applies logging settings that changed between prev and next.
func reconfigure(prev, next *config.Config) error {
	if prev.Logging == next.Logging {
		return nil
	}
	logger.Sync()
	return logger.Setup(next.Logging.Level, next.Logging.Format, next.Logging.LogFile)
}

func cmdDefaults(args []string) error {
	fs := flag.NewFlagSet("defaults", flag.ExitOnError)
	out := fs.String("o", "", "Write to file instead of stdout")
	fs.Parse(args)

	cfg := config.Default()
	if *out != "" {
		if err := cfg.SaveTo(*out); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", *out)
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// setup loads the config and initializes logging from it.
func setup(flags *config.Flags) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, nil
}

// run generates one level from cfg, logs its report and writes the outputs.
func run(ctx context.Context, gen *level.Generator, cfg *config.Config) error {
	req, err := cfg.ToRequest()
	if err != nil {
		return err
	}

	lvl, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	logReport(&lvl.Report)

	paths, err := export.WriteAll(cfg.Output.Directory, lvl, cfg.ExportOptions())
	if err != nil {
		return err
	}
	for _, p := range paths {
		logger.Info("wrote", zap.String("path", p))
	}
	return nil
}
