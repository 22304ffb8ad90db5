// Package aggregate deduplicates findings, fixes their final order and
// computes run metrics.
package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/augurhq/augur/pkg/models"
)

// Samples carries the raw per-declaration measurements the metrics
// averages are computed from. They come from the engine's stats pass,
// not from findings, so a clean codebase still reports its averages.
type Samples struct {
	Complexity     []float64
	FunctionLength []float64
	TypeLength     []float64
}

// Append merges other into s.
func (s *Samples) Append(other Samples) {
	s.Complexity = append(s.Complexity, other.Complexity...)
	s.FunctionLength = append(s.FunctionLength, other.FunctionLength...)
	s.TypeLength = append(s.TypeLength, other.TypeLength...)
}

// Deduplicate collapses findings that share an id. The survivor is the
// highest-priority instance; ties fall to the analyzer registered first,
// then to the longer description. Input order does not affect the result,
// which makes the whole operation idempotent.
func Deduplicate(findings []models.Finding, analyzerOrder map[string]int) []models.Finding {
	byID := make(map[string]models.Finding, len(findings))

	for _, f := range findings {
		existing, ok := byID[f.ID]
		if !ok || wins(f, existing, analyzerOrder) {
			byID[f.ID] = f
		}
	}

	out := make([]models.Finding, 0, len(byID))
	for _, f := range byID {
		out = append(out, f)
	}
	return out
}

// wins reports whether candidate should replace incumbent.
func wins(candidate, incumbent models.Finding, analyzerOrder map[string]int) bool {
	if candidate.Priority.Weight() != incumbent.Priority.Weight() {
		return candidate.Priority.Weight() > incumbent.Priority.Weight()
	}
	co, io := orderOf(candidate.AnalyzerID, analyzerOrder), orderOf(incumbent.AnalyzerID, analyzerOrder)
	if co != io {
		return co < io
	}
	// Longer description wins as a proxy for richer detail.
	return len(candidate.Description) > len(incumbent.Description)
}

func orderOf(id string, analyzerOrder map[string]int) int {
	if i, ok := analyzerOrder[id]; ok {
		return i
	}
	return len(analyzerOrder)
}

// Sort applies the total report order: priority, category, file path,
// line, then id as the final disambiguator. The order is deterministic
// for identical input regardless of completion order upstream.
func Sort(findings []models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Priority.Weight() != b.Priority.Weight() {
			return a.Priority.Weight() > b.Priority.Weight()
		}
		if a.Category.Order() != b.Category.Order() {
			return a.Category.Order() < b.Category.Order()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.ID < b.ID
	})
}

// ComputeMetrics summarizes the final deduplicated finding set.
func ComputeMetrics(findings []models.Finding, totalFiles int, samples Samples) models.AnalysisMetrics {
	m := models.AnalysisMetrics{
		TotalFiles:    totalFiles,
		TotalFindings: len(findings),
		ByPriority:    make(map[models.Priority]int),
		ByCategory:    make(map[models.Category]int),
	}

	for _, f := range findings {
		m.ByPriority[f.Priority]++
		m.ByCategory[f.Category]++
	}

	m.AvgComplexity = mean(samples.Complexity)
	m.AvgFunctionLength = mean(samples.FunctionLength)
	m.AvgTypeLength = mean(samples.TypeLength)

	return m
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
