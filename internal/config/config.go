// Package config loads the runtime limits the VM Context is configured
// with: the instruction-step budget and the library search path. Values
// are layered, lowest priority first: struct defaults, an optional
// cute.yaml file in the working directory, environment variables, and
// finally whatever the CLI flags in internal/maincmd override.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime limits threaded into machine.Context.
type Config struct {
	MaxSteps    uint64   `yaml:"max_steps" env:"CUTE_MAX_STEPS"`
	LibraryPath []string `yaml:"library_path" env:"CUTE_LIB_PATH" envSeparator:":"`
}

// Default returns the zero-limit configuration: no step budget, no extra
// library search directories.
func Default() Config {
	return Config{}
}

// Load builds a Config by applying, in order, the defaults, an optional
// cute.yaml file in dir (skipped if absent), and environment variables.
// It never fails because cute.yaml is missing; a malformed file or a
// malformed environment variable value is reported.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, "cute.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLibraryPath splits a colon-separated directory list (the format of
// the CUTE_LIB_PATH environment variable; internal/maincmd turns the commas
// of a --lib-path value into colons before calling it), dropping empty
// segments.
func ParseLibraryPath(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
