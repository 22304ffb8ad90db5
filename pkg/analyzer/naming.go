package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// Naming checks declaration names against each language's case
// conventions: PascalCase types and camelCase or snake_case functions.
type Naming struct{}

// NewNaming creates the naming-convention analyzer.
func NewNaming() *Naming {
	return &Naming{}
}

func (a *Naming) ID() string                { return "naming" }
func (a *Naming) Category() models.Category { return models.CategoryNaming }

// AppliesTo skips test files; test names follow their own conventions
// (Test_xxx, snake-y describe blocks) that would only produce noise.
func (a *Naming) AppliesTo(file models.FileInfo) bool { return !file.IsTest }

var (
	pascalCaseRe = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	camelCaseRe  = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
	snakeCaseRe  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// exemptNames never produce naming findings: operator overloads, dunder
// methods, entry points and single-letter conventions.
var exemptNames = map[string]bool{
	"main": true, "init": true, "String": true,
	"_": true, "self": true,
}

func exempt(name string) bool {
	if name == "" || exemptNames[name] {
		return true
	}
	// Python dunder methods and name-mangled members.
	if strings.HasPrefix(name, "__") || strings.HasPrefix(name, "_") {
		return true
	}
	// Operator overloads (C++/C#/Rust trait impls surface as symbols).
	if strings.HasPrefix(name, "operator") || !isIdentifier(name) {
		return true
	}
	// Single-word lowercase names satisfy both camelCase and snake_case.
	return false
}

func isIdentifier(name string) bool {
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// Analyze checks type and function declaration names.
func (a *Naming) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	var findings []models.Finding

	for _, tn := range parser.GetTypes(result) {
		if exempt(tn.Name) {
			continue
		}
		if !pascalCaseRe.MatchString(strings.TrimPrefix(tn.Name, "_")) {
			f := models.NewFinding(a.ID(), models.CategoryNaming, models.PriorityLow,
				fmt.Sprintf("Type %s is not PascalCase", tn.Name), file.RelPath, tn.StartLine)
			f.Description = fmt.Sprintf("Type names should be PascalCase; %q is not.", tn.Name)
			f.Recommendation = fmt.Sprintf("Rename to %q.", toPascal(tn.Name))
			f.Effort = models.EffortTrivial
			f.AutoFixable = true
			findings = append(findings, f)
		}
	}

	wantSnake := functionCaseIsSnake(result.Language)
	for _, fn := range parser.GetFunctions(result) {
		name := fn.Name
		if exempt(name) {
			continue
		}
		ok := camelCaseRe.MatchString(name) || pascalCaseRe.MatchString(name)
		want := "camelCase"
		if wantSnake {
			ok = snakeCaseRe.MatchString(name)
			want = "snake_case"
		}
		if !ok {
			f := models.NewFinding(a.ID(), models.CategoryNaming, models.PriorityLow,
				fmt.Sprintf("Function %s is not %s", name, want), file.RelPath, fn.StartLine)
			f.Description = fmt.Sprintf("Function names in %s code should be %s; %q is not.", result.Language, want, name)
			f.Snippet = snippet(result.Source, fn.StartLine)
			f.Effort = models.EffortTrivial
			f.AutoFixable = true
			findings = append(findings, f)
		}
	}

	if result.Language == parser.LangGo {
		findings = append(findings, a.goConstants(file, result)...)
	}

	return findings, nil
}

var screamingSnakeRe = regexp.MustCompile(`^[A-Z][A-Z0-9]*(_[A-Z0-9]+)+$`)

// goConstants flags underscore-separated capital constants; Go spells
// constants MixedCaps.
func (a *Naming) goConstants(file models.FileInfo, result *parser.ParseResult) []models.Finding {
	var findings []models.Finding

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "const_spec" {
			return true
		}
		name := parser.GetNodeText(n.ChildByFieldName("name"), src)
		if !screamingSnakeRe.MatchString(name) {
			return true
		}
		line := int(n.StartPoint().Row) + 1
		f := models.NewFinding(a.ID(), models.CategoryNaming, models.PriorityLow,
			fmt.Sprintf("Constant %s is not MixedCaps", name), file.RelPath, line)
		f.Description = fmt.Sprintf("Go constants use MixedCaps; %q follows another language's convention.", name)
		f.Recommendation = fmt.Sprintf("Rename to %q.", toPascal(strings.ToLower(name)))
		f.Effort = models.EffortTrivial
		f.AutoFixable = true
		findings = append(findings, f)
		return true
	})

	return findings
}

// functionCaseIsSnake reports whether the language convention for
// functions is snake_case rather than camelCase.
func functionCaseIsSnake(lang parser.Language) bool {
	switch lang {
	case parser.LangPython, parser.LangRuby, parser.LangRust, parser.LangPHP:
		return true
	default:
		return false
	}
}

// toPascal converts snake_case or camelCase to PascalCase.
func toPascal(name string) string {
	parts := strings.Split(strings.Trim(name, "_"), "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
