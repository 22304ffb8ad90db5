package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/augurhq/augur/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Baseline.Path = ""
	cfg.Analysis.Workers = 2
	return cfg
}

func writeSource(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

const longFunction = `package svc

func process(a, b, c, d, e, f int) int {
	total := 0
	if a > 0 {
		if b > 0 {
			if c > 0 {
				for i := 0; i < d; i++ {
					if e > 0 {
						total++
					}
				}
			}
		}
	}
	total += a
	total += b
	total += c
	total += d
	total += e
	total += f
	total += a
	total += b
	total += c
	total += d
	total += e
	total += f
	total += a
	total += b
	total += c
	total += d
	total += e
	total += f
	total += a
	total += b
	total += c
	total += d
	total += e
	total += f
	total += a
	total += b
	total += c
	total += d
	total += e
	total += f
	total += a
	total += b
	total += c
	total += d
	total += e
	total += f
	return total
}
`

func TestRun_FindsStructuralIssues(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "svc/process.go", longFunction)
	writeSource(t, dir, "svc/clean.go", "package svc\n\nfunc double(x int) int {\n\treturn x * 2\n}\n")

	eng, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := eng.Run(context.Background(), Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FilesDiscovered != 2 || result.FilesAnalyzed != 2 {
		t.Errorf("discovered/analyzed = %d/%d, want 2/2", result.FilesDiscovered, result.FilesAnalyzed)
	}
	if len(result.Findings) == 0 {
		t.Fatal("no findings for a 60-line deeply nested function")
	}

	want := map[string]bool{
		"Function process is too long":            false,
		"Function process has too many parameters": false,
		"Function process is nested too deeply":    false,
	}
	for _, f := range result.Findings {
		if _, ok := want[f.Title]; ok {
			want[f.Title] = true
		}
	}
	for title, seen := range want {
		if !seen {
			t.Errorf("missing finding %q", title)
		}
	}
	if result.Metrics.TotalFindings != len(result.Findings) {
		t.Errorf("Metrics.TotalFindings = %d, want %d", result.Metrics.TotalFindings, len(result.Findings))
	}
}

func TestRun_SortedDeterministically(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "svc/process.go", longFunction)

	eng, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := eng.Run(context.Background(), Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := eng.Run(context.Background(), Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(first.Findings) != len(second.Findings) {
		t.Fatalf("finding counts differ between runs: %d vs %d", len(first.Findings), len(second.Findings))
	}
	for i := range first.Findings {
		if first.Findings[i].ID != second.Findings[i].ID {
			t.Errorf("finding order differs at %d: %s vs %s", i, first.Findings[i].ID, second.Findings[i].ID)
		}
	}
}

func TestNew_UnknownAnalyzer(t *testing.T) {
	_, err := New(testConfig(t), []string{"structure", "nope"})
	if err == nil {
		t.Fatal("New accepted an unknown analyzer id")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %T, want *ConfigError", err)
	}
}

func TestRun_InvalidRootIsConfigError(t *testing.T) {
	eng, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = eng.Run(context.Background(), Options{Paths: []string{"/nonexistent/augur-test-root"}})
	if err == nil {
		t.Fatal("Run accepted a nonexistent root")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %T, want *ConfigError", err)
	}
}

func TestRun_UnreadableFileBecomesDiagnostic(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.go", "package p\n\nfunc a() {}\n")
	writeSource(t, dir, "b.go", "package p\n\nfunc b() {}\n")
	if err := os.Symlink(filepath.Join(dir, "missing.go"), filepath.Join(dir, "broken.go")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	eng, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := eng.Run(context.Background(), Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FilesAnalyzed != 2 {
		t.Errorf("FilesAnalyzed = %d, want 2", result.FilesAnalyzed)
	}
	if len(result.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v, want exactly one for the dangling symlink", result.Diagnostics)
	}
}

func TestRun_BaselineSelfDiffIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "svc/process.go", longFunction)
	basePath := filepath.Join(t.TempDir(), "baseline.json")

	eng, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := eng.Run(context.Background(), Options{
		Paths:          []string{dir},
		BaselinePath:   basePath,
		UpdateBaseline: true,
	})
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if first.Comparison != nil {
		t.Error("first run compared against a baseline that did not exist yet")
	}

	second, err := eng.Run(context.Background(), Options{
		Paths:        []string{dir},
		BaselinePath: basePath,
	})
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if second.Comparison == nil {
		t.Fatal("second run produced no comparison")
	}
	if len(second.Comparison.NewIDs) != 0 || len(second.Comparison.ResolvedIDs) != 0 {
		t.Errorf("self-diff not empty: new=%v resolved=%v",
			second.Comparison.NewIDs, second.Comparison.ResolvedIDs)
	}
}

func TestRun_CacheHitPreservesResults(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "svc/process.go", longFunction)

	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	cfg.Cache.TTL = 24

	eng, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := eng.Run(context.Background(), Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	entries, err := os.ReadDir(cfg.Cache.Dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("first run populated no cache entries")
	}

	second, err := eng.Run(context.Background(), Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if len(first.Findings) != len(second.Findings) {
		t.Fatalf("cached run changed findings: %d vs %d", len(first.Findings), len(second.Findings))
	}
	for i := range first.Findings {
		if first.Findings[i].ID != second.Findings[i].ID {
			t.Errorf("cached finding %d differs: %s vs %s", i, first.Findings[i].ID, second.Findings[i].ID)
		}
	}
	if first.Metrics.AvgComplexity != second.Metrics.AvgComplexity {
		t.Errorf("cached run lost complexity samples: %v vs %v",
			first.Metrics.AvgComplexity, second.Metrics.AvgComplexity)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.go", "package p\n\nfunc a() {}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = eng.Run(ctx, Options{Paths: []string{dir}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
