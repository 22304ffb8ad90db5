package analyzer

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// State detects shared mutable state exposed across module boundaries:
// exported package-level variables in Go and public static mutable
// fields in Java/C#.
type State struct {
	includeTests bool
}

// NewState creates the state-management analyzer.
func NewState(includeTests bool) *State {
	return &State{includeTests: includeTests}
}

func (a *State) ID() string                { return "state" }
func (a *State) Category() models.Category { return models.CategoryStateManagement }

func (a *State) AppliesTo(file models.FileInfo) bool {
	return skipTests(file, a.includeTests)
}

func (a *State) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	switch result.Language {
	case parser.LangGo:
		return a.analyzeGo(file, result), nil
	case parser.LangJava, parser.LangCSharp:
		return a.analyzeStaticFields(file, result), nil
	default:
		return nil, nil
	}
}

func (a *State) analyzeGo(file models.FileInfo, result *parser.ParseResult) []models.Finding {
	var findings []models.Finding
	root := result.Tree.RootNode()

	// Only package-level var declarations count; function-local state is fine.
	for i := range int(root.NamedChildCount()) {
		decl := root.NamedChild(i)
		if decl.Type() != "var_declaration" {
			continue
		}
		parser.WalkTyped(decl, result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
			if nodeType != "var_spec" {
				return true
			}
			nameNode := n.ChildByFieldName("name")
			name := parser.GetNodeText(nameNode, src)
			if name == "" || !isExportedGoName(name) {
				return true
			}
			typeText := parser.GetNodeText(n.ChildByFieldName("type"), src)
			valueText := parser.GetNodeText(n.ChildByFieldName("value"), src)
			if !looksMutableGo(typeText, valueText) {
				return true
			}
			line := int(n.StartPoint().Row) + 1
			f := models.NewFinding(a.ID(), models.CategoryStateManagement, models.PriorityHigh,
				fmt.Sprintf("Exported mutable package variable %s", name), file.RelPath, line)
			f.Description = fmt.Sprintf("%s is an exported package-level variable of a mutable type. Any importer can mutate it, making state changes untraceable.", name)
			f.Recommendation = "Unexport the variable and expose read access through a function, or move the state into a struct owned by its users."
			f.Snippet = snippet(src, line)
			f.Effort = models.EffortMedium
			findings = append(findings, f)
			return true
		})
	}

	return findings
}

func isExportedGoName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// looksMutableGo reports whether a package variable's declared type or
// initializer is map-, slice- or pointer-shaped.
func looksMutableGo(typeText, valueText string) bool {
	for _, text := range []string{typeText, valueText} {
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "map[") || strings.HasPrefix(text, "[]") ||
			strings.HasPrefix(text, "*") || strings.HasPrefix(text, "&") ||
			strings.Contains(text, "make(") {
			return true
		}
	}
	return false
}

func (a *State) analyzeStaticFields(file models.FileInfo, result *parser.ParseResult) []models.Finding {
	var findings []models.Finding

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "field_declaration" {
			return true
		}
		text := parser.GetNodeText(n, src)
		if !strings.Contains(text, "public") || !strings.Contains(text, "static") {
			return true
		}
		if strings.Contains(text, "final") || strings.Contains(text, "readonly") || strings.Contains(text, "const") {
			return true
		}
		line := int(n.StartPoint().Row) + 1
		f := models.NewFinding(a.ID(), models.CategoryStateManagement, models.PriorityHigh,
			"Public static mutable field", file.RelPath, line)
		f.Description = "A public static non-final field is global mutable state reachable from anywhere in the program."
		f.Recommendation = "Make the field final/readonly, or encapsulate it behind accessor methods."
		f.Snippet = snippet(src, line)
		f.Effort = models.EffortSmall
		findings = append(findings, f)
		return true
	})

	return findings
}
