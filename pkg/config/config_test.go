package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/augurhq/augur/pkg/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Thresholds.FunctionLines != 50 {
		t.Errorf("FunctionLines = %d, want 50", cfg.Thresholds.FunctionLines)
	}
	if cfg.Thresholds.CyclomaticComplexity != 10 {
		t.Errorf("CyclomaticComplexity = %d, want 10", cfg.Thresholds.CyclomaticComplexity)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
	if cfg.Baseline.Path == "" {
		t.Error("default baseline path should be set")
	}
	if len(cfg.Exclude.Patterns) == 0 {
		t.Error("default exclude patterns should not be empty")
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "augur.toml")
	content := `
[thresholds]
function_lines = 80
parameters = 3

[cache]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Thresholds.FunctionLines != 80 {
		t.Errorf("FunctionLines = %d, want 80", cfg.Thresholds.FunctionLines)
	}
	if cfg.Thresholds.Parameters != 3 {
		t.Errorf("Parameters = %d, want 3", cfg.Thresholds.Parameters)
	}
	if cfg.Cache.Enabled {
		t.Error("cache.enabled = true, want false")
	}
	// Untouched keys keep their defaults.
	if cfg.Thresholds.NestingDepth != 4 {
		t.Errorf("NestingDepth = %d, want default 4", cfg.Thresholds.NestingDepth)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "augur.yaml")
	content := "thresholds:\n  function_lines: 25\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Thresholds.FunctionLines != 25 {
		t.Errorf("FunctionLines = %d, want 25", cfg.Thresholds.FunctionLines)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loading a missing explicit config file should error")
	}
}

func TestLayerFor(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		path string
		want models.Layer
	}{
		{"internal/repository/user.go", models.LayerData},
		{"app/services/billing.py", models.LayerDomain},
		{"src/ui/button.tsx", models.LayerPresentation},
		{"web/controllers/users_controller.rb", models.LayerPresentation},
		{"pkg/config/config.go", models.LayerInfrastructure},
		{"tests/helpers.go", models.LayerTest},
		{"lib/misc/util.go", models.LayerUnknown},
		// Filename alone never classifies.
		{"repository.go", models.LayerUnknown},
	}

	for _, tc := range cases {
		if got := cfg.LayerFor(tc.path); got != tc.want {
			t.Errorf("LayerFor(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestLayerFor_FirstMatchWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layers = []LayerRule{
		{Segment: "api", Layer: string(models.LayerPresentation)},
		{Segment: "repository", Layer: string(models.LayerData)},
	}

	// Both segments present; the earlier rule decides.
	if got := cfg.LayerFor("api/repository/store.go"); got != models.LayerPresentation {
		t.Errorf("LayerFor = %s, want presentation (first rule)", got)
	}
}
