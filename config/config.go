// Package config loads uvm.toml tool defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/uvm/dump"
)

// Config represents a uvm.toml configuration.
type Config struct {
	Verbose bool `toml:"verbose"`
	Run     Run  `toml:"run"`
}

// Run configures the memory dump produced by a run.
type Run struct {
	Start  int    `toml:"start"`
	End    int    `toml:"end"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() (cfg *Config) {
	cfg = &Config{
		Run: Run{
			Start:  0,
			End:    64,
			Format: dump.FORMAT_XML.String(),
		},
	}
	return
}

// Load parses a TOML configuration file over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if len(path) == 0 {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %v", path, undecoded[0])
	}

	if _, err := dump.ParseFormat(cfg.Run.Format); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}
