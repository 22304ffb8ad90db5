package analyzer

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// Duplicates detects repeated blocks of code within a file using
// fixed-size shingles of normalized lines.
type Duplicates struct {
	thresholds   config.Thresholds
	includeTests bool
}

// NewDuplicates creates the duplicate-block analyzer.
func NewDuplicates(t config.Thresholds, includeTests bool) *Duplicates {
	return &Duplicates{thresholds: t, includeTests: includeTests}
}

func (a *Duplicates) ID() string                { return "duplicates" }
func (a *Duplicates) Category() models.Category { return models.CategoryStructuralSmell }

func (a *Duplicates) AppliesTo(file models.FileInfo) bool {
	return skipTests(file, a.includeTests)
}

// codeLine is a normalized source line that participates in shingling.
type codeLine struct {
	text string
	num  int // 1-based original line number
}

func (a *Duplicates) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	window := a.thresholds.DuplicateMinLines
	if window <= 0 {
		return nil, nil
	}

	lines := normalizeLines(result.Source)
	if len(lines) < window*2 {
		return nil, nil
	}

	var findings []models.Finding
	firstSeen := make(map[uint64]int) // shingle hash -> index into lines
	covered := roaring.New()          // original line numbers already reported

	for i := 0; i+window <= len(lines); i++ {
		h := shingleHash(lines[i : i+window])
		orig, seen := firstSeen[h]
		if !seen {
			firstSeen[h] = i
			continue
		}

		startLine := lines[i].num
		endLine := lines[i+window-1].num
		if overlapsCovered(covered, startLine, endLine) {
			continue
		}
		markCovered(covered, startLine, endLine)

		f := models.NewFinding(a.ID(), models.CategoryStructuralSmell, models.PriorityMedium,
			fmt.Sprintf("Duplicated block of %d lines", window), file.RelPath, startLine)
		f.Description = fmt.Sprintf("Lines %d-%d repeat the block starting on line %d. Duplicated logic drifts apart as only one copy gets fixed.", startLine, endLine, lines[orig].num)
		f.Recommendation = "Extract the repeated block into a shared function."
		f.Snippet = snippet(result.Source, startLine)
		f.Effort = models.EffortSmall
		findings = append(findings, f)
	}

	return findings, nil
}

func overlapsCovered(covered *roaring.Bitmap, start, end int) bool {
	for l := start; l <= end; l++ {
		if covered.Contains(uint32(l)) {
			return true
		}
	}
	return false
}

func markCovered(covered *roaring.Bitmap, start, end int) {
	covered.AddRange(uint64(start), uint64(end)+1)
}

// normalizeLines strips blanks, comment-only lines, and leading
// whitespace so that indentation changes do not defeat matching.
func normalizeLines(source []byte) []codeLine {
	raw := strings.Split(string(source), "\n")
	lines := make([]codeLine, 0, len(raw))
	for i, l := range raw {
		t := strings.TrimSpace(l)
		if t == "" || isCommentLine(t) {
			continue
		}
		lines = append(lines, codeLine{text: t, num: i + 1})
	}
	return lines
}

func isCommentLine(t string) bool {
	return strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") ||
		strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*") ||
		strings.HasPrefix(t, "--")
}

// shingleHash hashes a window of normalized lines.
func shingleHash(window []codeLine) uint64 {
	var d xxhash.Digest
	d.Reset()
	for _, l := range window {
		_, _ = d.WriteString(l.text)
		_, _ = d.Write([]byte{'\n'})
	}
	return d.Sum64()
}
