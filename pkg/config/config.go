// Package config loads haruspex configuration from TOML, YAML, or JSON.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options.
type Config struct {
	Analysis   AnalysisConfig  `koanf:"analysis"`
	Thresholds ThresholdConfig `koanf:"thresholds"`
	Exclude    ExcludeConfig   `koanf:"exclude"`
	Output     OutputConfig    `koanf:"output"`
}

// AnalysisConfig controls how methods are analyzed.
type AnalysisConfig struct {
	// Workers bounds the analysis pool; 0 means derive from CPU count.
	Workers int `koanf:"workers"`

	// IncludeSynthetic analyzes compiler-generated methods too.
	IncludeSynthetic bool `koanf:"include_synthetic"`
}

// ThresholdConfig overrides the hotspot thresholds.
type ThresholdConfig struct {
	MethodCyclomatic int     `koanf:"method_cyclomatic"`
	MethodCognitive  int     `koanf:"method_cognitive"`
	ClassMean        float64 `koanf:"class_mean"`
}

// ExcludeConfig filters classes out of analysis by their internal name
// (slash-separated), e.g. "org/example/generated/*".
type ExcludeConfig struct {
	Classes  []string `koanf:"classes"`
	Packages []string `koanf:"packages"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown
	Color  bool   `koanf:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:          0,
			IncludeSynthetic: false,
		},
		Thresholds: ThresholdConfig{
			MethodCyclomatic: 40,
			MethodCognitive:  15,
			ClassMean:        20,
		},
		Exclude: ExcludeConfig{
			Packages: []string{
				"java/",
				"javax/",
				"kotlin/",
				"scala/",
			},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load reads a config file, layering it over the defaults. The parser is
// chosen by extension; unknown extensions are treated as TOML.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault searches the working directory for a config file and falls
// back to the defaults when none parses.
func LoadOrDefault() *Config {
	names := []string{
		"haruspex.toml",
		"haruspex.yaml",
		"haruspex.yml",
		"haruspex.json",
		".haruspex.toml",
		".haruspex.yaml",
		".haruspex.yml",
		".haruspex.json",
	}

	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}

	return Default()
}

// ShouldExclude reports whether a class (internal, slash-separated name)
// is filtered out of analysis.
func (c *Config) ShouldExclude(className string) bool {
	for _, prefix := range c.Exclude.Packages {
		if strings.HasPrefix(className, prefix) {
			return true
		}
	}
	for _, pattern := range c.Exclude.Classes {
		if matched, _ := filepath.Match(pattern, className); matched {
			return true
		}
	}
	return false
}
