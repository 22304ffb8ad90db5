// Package analyzer contains the pattern-detection passes that turn a
// parsed file into findings.
package analyzer

import (
	"strings"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// Analyzer is the contract every detection pass implements. Analyzers are
// read-only over the file and its tree; their only output is findings.
type Analyzer interface {
	// ID is the stable identifier used in allowlists and reports.
	ID() string

	// Category is the primary finding category this analyzer produces.
	Category() models.Category

	// AppliesTo reports whether the analyzer should run on the file.
	AppliesTo(file models.FileInfo) bool

	// Analyze walks the file's tree and returns zero or more findings.
	Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error)
}

// snippet extracts a trimmed source line for inclusion in a finding.
func snippet(source []byte, line int) string {
	text := strings.TrimSpace(parser.LineText(source, line))
	const maxLen = 160
	if len(text) > maxLen {
		return text[:maxLen] + "…"
	}
	return text
}

// skipTests is the shared AppliesTo policy for analyzers that only look
// at production code.
func skipTests(file models.FileInfo, includeTests bool) bool {
	return includeTests || !file.IsTest
}
