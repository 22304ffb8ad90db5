package analyzer

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// Persistence detects query-construction anti-patterns: SQL assembled by
// string concatenation or formatting instead of parameter placeholders,
// and unbounded SELECT * projections.
type Persistence struct {
	includeTests bool
}

// NewPersistence creates the persistence-pattern analyzer.
func NewPersistence(includeTests bool) *Persistence {
	return &Persistence{includeTests: includeTests}
}

func (a *Persistence) ID() string                { return "persistence" }
func (a *Persistence) Category() models.Category { return models.CategoryPersistence }

func (a *Persistence) AppliesTo(file models.FileInfo) bool {
	return skipTests(file, a.includeTests)
}

var (
	sqlVerbRe    = regexp.MustCompile(`(?i)^\s*["'` + "`" + `]?\s*(SELECT|INSERT|UPDATE|DELETE|MERGE)\b`)
	selectStarRe = regexp.MustCompile(`(?i)SELECT\s+\*\s+FROM`)
	formatVerbRe = regexp.MustCompile(`%[svd]|\{\d*\}|\$\{`)
)

func (a *Persistence) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	var findings []models.Finding

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "binary_expression":
			if f, ok := a.checkConcat(file, n, src); ok {
				findings = append(findings, f)
				return false
			}
		case "call_expression", "call":
			if f, ok := a.checkFormatted(file, n, src); ok {
				findings = append(findings, f)
				return false
			}
		case "interpreted_string_literal", "string_literal", "string", "template_string":
			if f, ok := a.checkSelectStar(file, n, src); ok {
				findings = append(findings, f)
			}
		}
		return true
	})

	return findings, nil
}

// checkConcat flags `"SELECT ..." + expr` shapes.
func (a *Persistence) checkConcat(file models.FileInfo, n *sitter.Node, src []byte) (models.Finding, bool) {
	text := parser.GetNodeText(n, src)
	if !sqlVerbRe.MatchString(text) || !strings.Contains(text, "+") {
		return models.Finding{}, false
	}
	// A pure literal-literal concatenation is just line wrapping.
	if isLiteralOnlyConcat(n) {
		return models.Finding{}, false
	}

	line := int(n.StartPoint().Row) + 1
	f := models.NewFinding(a.ID(), models.CategoryPersistence, models.PriorityHigh,
		"SQL built by string concatenation", file.RelPath, line)
	f.Description = "The query is assembled by concatenating values into the SQL text. Besides the injection risk, the database cannot cache the statement plan."
	f.Recommendation = "Use parameter placeholders and bind the values."
	f.Snippet = snippet(src, line)
	f.Before = `query := "SELECT name FROM users WHERE id = " + id`
	f.After = `rows, err := db.Query("SELECT name FROM users WHERE id = ?", id)`
	f.Effort = models.EffortSmall
	return f, true
}

// isLiteralOnlyConcat reports whether every operand of the (possibly
// nested) concatenation is a string literal.
func isLiteralOnlyConcat(n *sitter.Node) bool {
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		switch child.Type() {
		case "interpreted_string_literal", "string_literal", "string", "raw_string_literal":
		case "binary_expression":
			if !isLiteralOnlyConcat(child) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// checkFormatted flags Sprintf/format-style calls whose template is a SQL
// statement with value verbs.
func (a *Persistence) checkFormatted(file models.FileInfo, n *sitter.Node, src []byte) (models.Finding, bool) {
	fnText := parser.GetNodeText(n.ChildByFieldName("function"), src)
	if !strings.Contains(fnText, "Sprintf") && !strings.Contains(fnText, "format") && !strings.Contains(fnText, "Format") {
		return models.Finding{}, false
	}
	args := parser.GetNodeText(n.ChildByFieldName("arguments"), src)
	if !sqlVerbRe.MatchString(strings.TrimPrefix(args, "(")) || !formatVerbRe.MatchString(args) {
		return models.Finding{}, false
	}

	line := int(n.StartPoint().Row) + 1
	f := models.NewFinding(a.ID(), models.CategoryPersistence, models.PriorityHigh,
		"SQL built by string formatting", file.RelPath, line)
	f.Description = "The query text is produced by a format call that interpolates values directly into the SQL."
	f.Recommendation = "Use parameter placeholders and bind the values."
	f.Snippet = snippet(src, line)
	f.Effort = models.EffortSmall
	return f, true
}

// checkSelectStar flags SELECT * projections in string literals.
func (a *Persistence) checkSelectStar(file models.FileInfo, n *sitter.Node, src []byte) (models.Finding, bool) {
	if !selectStarRe.MatchString(parser.GetNodeText(n, src)) {
		return models.Finding{}, false
	}

	line := int(n.StartPoint().Row) + 1
	f := models.NewFinding(a.ID(), models.CategoryPersistence, models.PriorityLow,
		"SELECT * projection", file.RelPath, line)
	f.Description = "SELECT * couples the code to the table's full column set; schema changes silently change what the query returns."
	f.Recommendation = "Name the columns the code actually reads."
	f.Snippet = snippet(src, line)
	f.Effort = models.EffortTrivial
	return f, true
}
