package config

import (
	"flag"
	"strconv"
)

// Flags holds command-line overrides. Register binds them to a FlagSet so
// each subcommand can carry its own set.
type Flags struct {
	ConfigPath string
	Debug      bool
	OutDir     string

	seed    int64
	seedSet bool
}

// Register adds the override flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.OutDir, "out", "", "Output directory")
	fs.Func("seed", "Noise seed (overrides config and disables randomize_seed)", func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		f.seed, f.seedSet = v, true
		return nil
	})
}

// SetSeed overrides the seed as if -seed had been given.
func (f *Flags) SetSeed(seed int64) {
	f.seed, f.seedSet = seed, true
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.OutDir != "" {
		cfg.Output.Directory = f.OutDir
	}
	if f.seedSet {
		cfg.Noise.Seed = f.seed
		cfg.Generation.RandomizeSeed = false
	}
}
