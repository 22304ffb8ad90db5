package analyzer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// ErrorHandling flags swallowed failures: errors assigned to the blank
// identifier in Go and empty exception handlers elsewhere.
type ErrorHandling struct {
	includeTests bool
}

// NewErrorHandling creates the error-handling analyzer.
func NewErrorHandling(includeTests bool) *ErrorHandling {
	return &ErrorHandling{includeTests: includeTests}
}

func (a *ErrorHandling) ID() string                { return "errorhandling" }
func (a *ErrorHandling) Category() models.Category { return models.CategoryErrorHandling }

func (a *ErrorHandling) AppliesTo(file models.FileInfo) bool {
	return skipTests(file, a.includeTests)
}

// handlerTypes are the exception-handler node types per grammar.
var handlerTypes = map[string]bool{
	"catch_clause":  true,
	"except_clause": true,
	"rescue":        true,
	"catch_block":   true,
}

func (a *ErrorHandling) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	var findings []models.Finding

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch {
		case result.Language == parser.LangGo && nodeType == "assignment_statement":
			if f, ok := a.checkBlankAssign(file, n, src); ok {
				findings = append(findings, f)
			}
		case handlerTypes[nodeType]:
			if f, ok := a.checkEmptyHandler(file, n, src); ok {
				findings = append(findings, f)
			}
		}
		return true
	})

	return findings, nil
}

// checkBlankAssign flags `_ = f()` where the call plausibly returns an
// error. Pure-value discards (e.g. `_ = x` for unused imports tricks)
// are left alone.
func (a *ErrorHandling) checkBlankAssign(file models.FileInfo, n *sitter.Node, src []byte) (models.Finding, bool) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil {
		return models.Finding{}, false
	}
	leftText := strings.TrimSpace(parser.GetNodeText(left, src))
	if leftText != "_" && !strings.HasSuffix(leftText, ", _") {
		return models.Finding{}, false
	}
	if !strings.Contains(parser.GetNodeText(right, src), "(") {
		return models.Finding{}, false
	}

	line := int(n.StartPoint().Row) + 1
	f := models.NewFinding(a.ID(), models.CategoryErrorHandling, models.PriorityMedium,
		"Discarded error result", file.RelPath, line)
	f.Description = "The call's result is assigned to the blank identifier; if it returns an error, the failure is silently dropped."
	f.Recommendation = "Handle the error, or document why ignoring it is safe."
	f.Snippet = snippet(src, line)
	f.Effort = models.EffortTrivial
	return f, true
}

// checkEmptyHandler flags catch/except/rescue blocks with no statements.
func (a *ErrorHandling) checkEmptyHandler(file models.FileInfo, n *sitter.Node, src []byte) (models.Finding, bool) {
	body := n.ChildByFieldName("body")
	if body == nil {
		body = n.ChildByFieldName("block")
	}
	if body == nil {
		// Fall back to the last named child, which is the handler block
		// in the grammars that don't name the field.
		if count := int(n.NamedChildCount()); count > 0 {
			body = n.NamedChild(count - 1)
		}
	}
	if body == nil {
		return models.Finding{}, false
	}

	for i := range int(body.NamedChildCount()) {
		// A lone pass is as empty as no statements at all.
		childType := body.NamedChild(i).Type()
		if childType == "pass_statement" || strings.Contains(childType, "comment") {
			continue
		}
		return models.Finding{}, false
	}

	line := int(n.StartPoint().Row) + 1
	f := models.NewFinding(a.ID(), models.CategoryErrorHandling, models.PriorityHigh,
		"Empty exception handler", file.RelPath, line)
	f.Description = "The handler catches an exception and does nothing with it; failures disappear without a trace."
	f.Recommendation = "Log the exception, rethrow it, or narrow the catch to the cases that are genuinely safe to ignore."
	f.Snippet = snippet(src, line)
	f.Effort = models.EffortSmall
	return f, true
}
