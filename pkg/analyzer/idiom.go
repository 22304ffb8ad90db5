package analyzer

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// Idiom detects violations of per-language framework conventions. It is
// a heuristic pattern analyzer: unrecognized shapes are ignored, never
// an error.
type Idiom struct {
	includeTests bool
}

// NewIdiom creates the framework-idiom analyzer.
func NewIdiom(includeTests bool) *Idiom {
	return &Idiom{includeTests: includeTests}
}

func (a *Idiom) ID() string                { return "idiom" }
func (a *Idiom) Category() models.Category { return models.CategoryFrameworkIdiom }

func (a *Idiom) AppliesTo(file models.FileInfo) bool {
	return skipTests(file, a.includeTests)
}

func (a *Idiom) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	switch result.Language {
	case parser.LangGo:
		return a.analyzeGo(file, result), nil
	case parser.LangPython:
		return a.analyzePython(file, result), nil
	case parser.LangJavaScript, parser.LangTypeScript, parser.LangTSX:
		return a.analyzeJS(file, result), nil
	default:
		return nil, nil
	}
}

func (a *Idiom) analyzeGo(file models.FileInfo, result *parser.ParseResult) []models.Finding {
	var findings []models.Finding

	isMain := file.Package == "main"

	// panic in library code
	if !isMain {
		parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
			if nodeType != "call_expression" {
				return true
			}
			fnNode := n.ChildByFieldName("function")
			if parser.GetNodeText(fnNode, src) != "panic" {
				return true
			}
			line := int(n.StartPoint().Row) + 1
			f := models.NewFinding(a.ID(), models.CategoryFrameworkIdiom, models.PriorityMedium,
				"panic in library code", file.RelPath, line)
			f.Description = "Library packages should return errors instead of panicking; panics cross API boundaries as crashes."
			f.Recommendation = "Return an error and let the caller decide."
			f.Snippet = snippet(src, line)
			f.Effort = models.EffortSmall
			findings = append(findings, f)
			return true
		})
	}

	// context.Context must be the first parameter
	for _, fn := range parser.GetFunctions(result) {
		for i, p := range fn.Parameters {
			if i == 0 {
				continue
			}
			if strings.Contains(p, "context.Context") || p == "ctx" {
				f := models.NewFinding(a.ID(), models.CategoryFrameworkIdiom, models.PriorityLow,
					fmt.Sprintf("Function %s takes context.Context after other parameters", fn.Name), file.RelPath, fn.StartLine)
				f.Description = "By convention context.Context is the first parameter of a function."
				f.Recommendation = "Move ctx to the first position."
				f.Snippet = snippet(result.Source, fn.StartLine)
				f.Effort = models.EffortTrivial
				f.AutoFixable = true
				findings = append(findings, f)
				break
			}
		}
	}

	return findings
}

func (a *Idiom) analyzePython(file models.FileInfo, result *parser.ParseResult) []models.Finding {
	var findings []models.Finding

	// Mutable default arguments are evaluated once at definition time.
	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "default_parameter" {
			return true
		}
		value := n.ChildByFieldName("value")
		if value == nil {
			return true
		}
		switch value.Type() {
		case "list", "dictionary", "set", "call":
			if value.Type() == "call" && !isMutableConstructor(parser.GetNodeText(value.ChildByFieldName("function"), src)) {
				return true
			}
			line := int(n.StartPoint().Row) + 1
			f := models.NewFinding(a.ID(), models.CategoryFrameworkIdiom, models.PriorityMedium,
				"Mutable default argument", file.RelPath, line)
			f.Description = "Default argument values are evaluated once; a mutable default is shared across calls."
			f.Recommendation = "Default to None and create the value inside the function body."
			f.Snippet = snippet(src, line)
			f.Before = "def add(item, items=[]):"
			f.After = "def add(item, items=None):\n    if items is None:\n        items = []"
			f.Effort = models.EffortTrivial
			f.AutoFixable = true
			findings = append(findings, f)
		}
		return true
	})

	return findings
}

func isMutableConstructor(name string) bool {
	switch name {
	case "list", "dict", "set":
		return true
	}
	return false
}

func (a *Idiom) analyzeJS(file models.FileInfo, result *parser.ParseResult) []models.Finding {
	var findings []models.Finding

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "variable_declaration" {
			return true
		}
		// tree-sitter's variable_declaration is the `var` form;
		// let/const parse as lexical_declaration.
		line := int(n.StartPoint().Row) + 1
		f := models.NewFinding(a.ID(), models.CategoryFrameworkIdiom, models.PriorityLow,
			"var declaration", file.RelPath, line)
		f.Description = "var is function-scoped and hoisted; modern code uses let or const."
		f.Recommendation = "Use const, or let when reassignment is required."
		f.Snippet = snippet(src, line)
		f.Effort = models.EffortTrivial
		f.AutoFixable = true
		findings = append(findings, f)
		return true
	})

	return findings
}
