package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/arconv/pkg/arconv/internalerr"
)

// Config is the YAML configuration file shared by the commands.
//
//	coefficients: coefficients.json
//	units: units.yaml
//	database: arconv.db
//	log_file: diagnostics.log
//	workers: 4
//	joiners: [to, "-", x, "+"]
//
// Relative paths are resolved against the directory of the file.
type Config struct {
	Coefficients string   `yaml:"coefficients"`
	Units        string   `yaml:"units"`
	Database     string   `yaml:"database"`
	LogFile      string   `yaml:"log_file"`
	Workers      int      `yaml:"workers"`
	Joiners      []string `yaml:"joiners"`
	Patterns     []string `yaml:"patterns,omitempty"` // number scanner classes, highest priority first
}

// Load reads a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative: %w", internalerr.ErrInvalidConfig)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.Coefficients, &cfg.Units, &cfg.Database, &cfg.LogFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}

	return &cfg, nil
}

// Loader returns a loader for the files named in the config.
func (c *Config) Loader() Loader {
	return Loader{
		CoefficientsPath: c.Coefficients,
		UnitsPath:        c.Units,
		DatabasePath:     c.Database,
		LogPath:          c.LogFile,
		Joiners:          c.Joiners,
		Patterns:         c.Patterns,
	}
}
