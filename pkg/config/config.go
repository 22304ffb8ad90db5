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

	"github.com/augurhq/augur/pkg/models"
)

// Config holds all configuration options for augur.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// Thresholds passed into each analyzer at construction
	Thresholds Thresholds `koanf:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Layer classification rules
	Layers []LayerRule `koanf:"layers"`

	// Baseline settings
	Baseline BaselineConfig `koanf:"baseline"`

	// Cache settings
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig controls which analyzers run and how.
type AnalysisConfig struct {
	// Analyzers is an allowlist of analyzer ids. Empty means all.
	Analyzers []string `koanf:"analyzers"`
	// Workers bounds the file-level worker pool (0 = 2x NumCPU).
	Workers int `koanf:"workers"`
	// MaxFileSize skips files larger than this many bytes (0 = no limit).
	MaxFileSize int64 `koanf:"max_file_size"`
	// IncludeTests runs analyzers over test files as well.
	IncludeTests bool `koanf:"include_tests"`
}

// Thresholds defines the named limits the analyzers flag against.
// No analyzer carries magic literals; everything tunable lives here.
type Thresholds struct {
	FunctionLines        int     `koanf:"function_lines"`
	Parameters           int     `koanf:"parameters"`
	CyclomaticComplexity int     `koanf:"cyclomatic_complexity"`
	NestingDepth         int     `koanf:"nesting_depth"`
	TypeLines            int     `koanf:"type_lines"`
	TypeMethods          int     `koanf:"type_methods"`
	DuplicateMinLines    int     `koanf:"duplicate_min_lines"`
	SecretMinLength      int     `koanf:"secret_min_length"`
	SecretMinEntropy     float64 `koanf:"secret_min_entropy"`
}

// ExcludeConfig defines file exclusion patterns (gitignore syntax).
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Gitignore bool     `koanf:"gitignore"`
}

// LayerRule maps a path substring to an architectural layer.
// Rules are ordered; first match wins.
type LayerRule struct {
	Segment string `koanf:"segment"`
	Layer   string `koanf:"layer"`
}

// BaselineConfig controls baseline persistence.
type BaselineConfig struct {
	Path string `koanf:"path"`
}

// CacheConfig controls the per-file findings cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Analyzers:    nil,
			Workers:      0,
			MaxFileSize:  0,
			IncludeTests: false,
		},
		Thresholds: Thresholds{
			FunctionLines:        50,
			Parameters:           5,
			CyclomaticComplexity: 10,
			NestingDepth:         4,
			TypeLines:            400,
			TypeMethods:          20,
			DuplicateMinLines:    8,
			SecretMinLength:      20,
			SecretMinEntropy:     4.0,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"vendor/",
				"node_modules/",
				".git/",
				".augur/",
				"dist/",
				"build/",
				"__pycache__/",
				"*.min.js",
				"*.min.css",
			},
			Gitignore: true,
		},
		Layers: []LayerRule{
			{Segment: "test", Layer: string(models.LayerTest)},
			{Segment: "spec", Layer: string(models.LayerTest)},
			{Segment: "repository", Layer: string(models.LayerData)},
			{Segment: "repositories", Layer: string(models.LayerData)},
			{Segment: "dao", Layer: string(models.LayerData)},
			{Segment: "persistence", Layer: string(models.LayerData)},
			{Segment: "storage", Layer: string(models.LayerData)},
			{Segment: "model", Layer: string(models.LayerDomain)},
			{Segment: "domain", Layer: string(models.LayerDomain)},
			{Segment: "service", Layer: string(models.LayerDomain)},
			{Segment: "usecase", Layer: string(models.LayerDomain)},
			{Segment: "ui", Layer: string(models.LayerPresentation)},
			{Segment: "view", Layer: string(models.LayerPresentation)},
			{Segment: "screen", Layer: string(models.LayerPresentation)},
			{Segment: "widget", Layer: string(models.LayerPresentation)},
			{Segment: "handler", Layer: string(models.LayerPresentation)},
			{Segment: "controller", Layer: string(models.LayerPresentation)},
			{Segment: "infra", Layer: string(models.LayerInfrastructure)},
			{Segment: "config", Layer: string(models.LayerInfrastructure)},
		},
		Baseline: BaselineConfig{
			Path: ".augur/baseline.json",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".augur/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
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

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"augur.toml",
		"augur.yaml",
		"augur.yml",
		"augur.json",
		".augur.toml",
		".augur.yaml",
		".augur.yml",
		".augur.json",
	}

	searchDirs := []string{".", ".augur"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// LayerFor classifies a relative path against the ordered layer rules.
// The first rule whose segment appears as a path component (or component
// prefix) wins. No match yields models.LayerUnknown.
func (c *Config) LayerFor(relPath string) models.Layer {
	lower := strings.ToLower(filepath.ToSlash(relPath))
	parts := strings.Split(lower, "/")
	// Only directory segments participate, not the filename.
	if len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	for _, rule := range c.Layers {
		for _, part := range parts {
			if part == rule.Segment || strings.HasPrefix(part, rule.Segment) {
				return models.Layer(rule.Layer)
			}
		}
	}
	return models.LayerUnknown
}
