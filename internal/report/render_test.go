package report

import (
	"strings"
	"testing"

	"github.com/augurhq/augur/internal/engine"
	"github.com/augurhq/augur/pkg/models"
)

func sampleResult() *engine.Result {
	f1 := models.NewFinding("structure", models.CategoryStructure, models.PriorityHigh,
		"Function load is too long", "internal/store/load.go", 12)
	f1.Description = "load spans 80 lines."
	f1.Recommendation = "Extract the validation block."
	f1.Effort = models.EffortMedium

	f2 := models.NewFinding("security", models.CategorySecurity, models.PriorityCritical,
		"Hardcoded credential", "internal/api/client.go", 40)
	f2.Effort = models.EffortSmall

	return &engine.Result{
		Findings: []models.Finding{f2, f1},
		Metrics: models.AnalysisMetrics{
			TotalFiles:    3,
			TotalFindings: 2,
			ByPriority: map[models.Priority]int{
				models.PriorityCritical: 1,
				models.PriorityHigh:     1,
			},
			ByCategory: map[models.Category]int{
				models.CategoryStructure: 1,
				models.CategorySecurity:  1,
			},
			AvgComplexity:     3.5,
			AvgFunctionLength: 22.1,
		},
		FilesDiscovered: 3,
		FilesAnalyzed:   3,
	}
}

func TestRender_StableHeadings(t *testing.T) {
	var out strings.Builder
	if err := Render(&out, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	doc := out.String()
	for _, heading := range []string{
		"# Code Quality Report",
		"## Summary",
		"## Findings by Priority",
		"## Findings by Category",
		"## Details",
	} {
		if !strings.Contains(doc, heading+"\n") {
			t.Errorf("report missing heading %q", heading)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	var first, second strings.Builder
	if err := Render(&first, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if err := Render(&second, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if first.String() != second.String() {
		t.Error("identical input rendered different documents")
	}
}

func TestRender_FindingContent(t *testing.T) {
	var out strings.Builder
	if err := Render(&out, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	doc := out.String()
	if !strings.Contains(doc, "Function load is too long — internal/store/load.go:12") {
		t.Error("priority section missing the structure finding")
	}
	if !strings.Contains(doc, "### Critical (1)") {
		t.Error("missing critical priority group")
	}
	if !strings.Contains(doc, "**Recommendation:** Extract the validation block.") {
		t.Error("missing recommendation line")
	}
}

func TestRender_ComparisonDeltas(t *testing.T) {
	result := sampleResult()
	result.Comparison = &models.Comparison{
		NewIDs:      []string{"aaaaaaaaaaaaaaaa"},
		ResolvedIDs: nil,
		Deltas: map[string]models.MetricDelta{
			"total_findings": {Current: 2, Baseline: 4, Ratio: -0.5, Defined: true},
			"avg_complexity": {Current: 3.5, Baseline: 0, Defined: false},
		},
	}

	var out strings.Builder
	if err := Render(&out, result); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	doc := out.String()
	if !strings.Contains(doc, "### Baseline Comparison") {
		t.Fatal("missing comparison section")
	}
	if !strings.Contains(doc, "- New findings: 1") {
		t.Error("missing new-findings count")
	}
	if !strings.Contains(doc, "| total_findings | 4.00 | 2.00 | -50.0% |") {
		t.Error("missing defined delta row")
	}
	if !strings.Contains(doc, "| avg_complexity | 0.00 | 3.50 | n/a |") {
		t.Error("undefined delta should render n/a")
	}
}

func TestRender_SkippedFilesNoted(t *testing.T) {
	result := sampleResult()
	result.FilesSkipped = 1
	result.Diagnostics = []models.Diagnostic{
		{Stage: models.StageDiscovery, Path: "gen/big.go", Message: "file exceeds size limit"},
	}

	var out strings.Builder
	if err := Render(&out, result); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	doc := out.String()
	if !strings.Contains(doc, "- Files skipped: 1") {
		t.Error("missing skipped-files line")
	}
	if !strings.Contains(doc, "### Diagnostics") {
		t.Error("missing diagnostics section")
	}
	if !strings.Contains(doc, "gen/big.go") {
		t.Error("diagnostic path not rendered")
	}
}
