// Package bundleconfig loads the optional project-level configuration
// file (SPEC_FULL §A): viper-backed, matching the config-loading
// convention ludo-technologies-jscan's internal/config and
// bennypowers-cem's generate/session.go use for their own project files.
// CLI flags always win over a config file value - LoadConfig only ever
// supplies the defaults a flag didn't override.
package bundleconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config mirrors bundle.Options' filesystem-facing fields - everything a
// project would otherwise have to repeat as CLI flags on every invocation.
type Config struct {
	Root              string   `mapstructure:"root" yaml:"root" json:"root"`
	Namespace         string   `mapstructure:"namespace" yaml:"namespace" json:"namespace"`
	RequirePathPrefix string   `mapstructure:"require_path_prefix" yaml:"require_path_prefix" json:"require_path_prefix"`
	EntryPoints       []string `mapstructure:"entry_points" yaml:"entry_points" json:"entry_points"`
	MainModule        string   `mapstructure:"main_module" yaml:"main_module" json:"main_module"`
	Optimize          string   `mapstructure:"optimize" yaml:"optimize" json:"optimize"`
	Include           []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude           []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}

// DefaultConfig returns the configuration used when no project file is
// found, matching spec.md §6's documented parameter defaults.
func DefaultConfig() *Config {
	return &Config{
		Root:              ".",
		Namespace:         "PS",
		RequirePathPrefix: "../",
		Optimize:          "none",
		Include:           []string{"**/*.js"},
	}
}

// candidateNames are searched for, in order, in the directory LoadConfig
// is pointed at. Only the first match is read.
var candidateNames = []string{"psc-bundle.yaml", "psc-bundle.yml", "psc-bundle.json"}

// LoadConfig reads a project config file from dir, if one exists,
// overlaying it onto DefaultConfig. A missing file is not an error - it
// just means every field keeps its default, to be filled in by CLI flags.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := findConfigFile(dir)
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("bundleconfig: failed to read %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("bundleconfig: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func findConfigFile(dir string) string {
	for _, name := range candidateNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
