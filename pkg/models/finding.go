package models

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Category classifies a finding by the kind of issue it reports.
type Category string

const (
	CategoryStructuralSmell  Category = "structural-smell"
	CategoryArchitecture     Category = "architecture"
	CategoryFrameworkIdiom   Category = "framework-idiom"
	CategoryStateManagement  Category = "state-management"
	CategoryErrorHandling    Category = "error-handling"
	CategoryDependencyWiring Category = "dependency-wiring"
	CategoryPersistence      Category = "persistence"
	CategoryPerformance      Category = "performance"
	CategoryNaming           Category = "naming"
	CategoryTestCoverage     Category = "test-coverage"
	CategoryDocumentation    Category = "documentation"
	CategorySecurity         Category = "security"
)

// Categories lists all categories in their fixed report order.
var Categories = []Category{
	CategoryStructuralSmell,
	CategoryArchitecture,
	CategoryFrameworkIdiom,
	CategoryStateManagement,
	CategoryErrorHandling,
	CategoryDependencyWiring,
	CategoryPersistence,
	CategoryPerformance,
	CategoryNaming,
	CategoryTestCoverage,
	CategoryDocumentation,
	CategorySecurity,
}

var categoryOrder = func() map[Category]int {
	m := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		m[c] = i
	}
	return m
}()

// Order returns the category's position in the fixed report order.
// Unknown categories sort last.
func (c Category) Order() int {
	if i, ok := categoryOrder[c]; ok {
		return i
	}
	return len(Categories)
}

// Priority represents how urgently a finding should be addressed.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Weight returns a numeric weight for sorting (higher = more urgent).
func (p Priority) Weight() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Effort estimates the work required to fix a finding.
type Effort string

const (
	EffortTrivial Effort = "trivial"
	EffortSmall   Effort = "small"
	EffortMedium  Effort = "medium"
	EffortLarge   Effort = "large"
)

// Weight returns a numeric weight for sorting (higher = more work).
func (e Effort) Weight() int {
	switch e {
	case EffortLarge:
		return 4
	case EffortMedium:
		return 3
	case EffortSmall:
		return 2
	case EffortTrivial:
		return 1
	default:
		return 0
	}
}

// Finding represents one detected issue. Findings are created by an
// analyzer during a single file's pass and never mutated afterward.
type Finding struct {
	ID             string   `json:"id"`
	AnalyzerID     string   `json:"analyzer_id"`
	Category       Category `json:"category"`
	Priority       Priority `json:"priority"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	File           string   `json:"file"`
	Line           int      `json:"line"`
	Column         int      `json:"column,omitempty"`
	Snippet        string   `json:"snippet,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	Before         string   `json:"before,omitempty"`
	After          string   `json:"after,omitempty"`
	Effort         Effort   `json:"effort"`
	AutoFixable    bool     `json:"auto_fixable"`
}

// FingerprintOf computes the stable identity of a finding. It is a pure
// function of (category, file, line, title) so the same issue produces the
// same id across runs, which baseline diffing depends on. A title edit
// between versions changes the fingerprint and the finding shows up as
// new/resolved; that is accepted behavior.
func FingerprintOf(category Category, file string, line int, title string) string {
	h := xxhash.Sum64String(fmt.Sprintf("%s:%s:%d:%s", category, file, line, title))
	return fmt.Sprintf("%016x", h)
}

// NewFinding creates a finding with its fingerprint id populated.
// Callers fill the remaining descriptive fields before handing the value off.
func NewFinding(analyzerID string, category Category, priority Priority, title, file string, line int) Finding {
	return Finding{
		ID:         FingerprintOf(category, file, line, title),
		AnalyzerID: analyzerID,
		Category:   category,
		Priority:   priority,
		Title:      title,
		File:       file,
		Line:       line,
	}
}
