package analyzer

import (
	"fmt"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// Documentation flags exported Go declarations with no doc comment.
// Other languages are skipped: their doc conventions (docstrings,
// Javadoc) sit inside the declaration and need per-grammar handling
// this pass does not attempt.
type Documentation struct{}

// NewDocumentation creates the documentation analyzer.
func NewDocumentation() *Documentation {
	return &Documentation{}
}

func (a *Documentation) ID() string                { return "documentation" }
func (a *Documentation) Category() models.Category { return models.CategoryDocumentation }

func (a *Documentation) AppliesTo(file models.FileInfo) bool {
	return !file.IsTest && file.Language == string(parser.LangGo)
}

func (a *Documentation) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	var findings []models.Finding

	for _, fn := range parser.GetFunctions(result) {
		if fn.Node == nil || !isExportedGoName(fn.Name) {
			continue
		}
		if parser.DocComment(fn.Node) {
			continue
		}
		f := models.NewFinding(a.ID(), models.CategoryDocumentation, models.PriorityLow,
			fmt.Sprintf("Exported function %s has no doc comment", fn.Name), file.RelPath, fn.StartLine)
		f.Description = fmt.Sprintf("%s is exported but undocumented; godoc renders an empty entry for it.", fn.Name)
		f.Recommendation = fmt.Sprintf("Add a comment starting with %q above the declaration.", fn.Name)
		f.Effort = models.EffortTrivial
		findings = append(findings, f)
	}

	for _, tn := range parser.GetTypes(result) {
		if tn.Node == nil || !isExportedGoName(tn.Name) {
			continue
		}
		// Go type_spec nodes sit inside a type_declaration; the doc
		// comment attaches to the outer declaration.
		decl := tn.Node.Parent()
		if decl == nil {
			decl = tn.Node
		}
		if parser.DocComment(decl) {
			continue
		}
		f := models.NewFinding(a.ID(), models.CategoryDocumentation, models.PriorityLow,
			fmt.Sprintf("Exported type %s has no doc comment", tn.Name), file.RelPath, tn.StartLine)
		f.Description = fmt.Sprintf("%s is exported but undocumented.", tn.Name)
		f.Recommendation = fmt.Sprintf("Add a comment starting with %q above the declaration.", tn.Name)
		f.Effort = models.EffortTrivial
		findings = append(findings, f)
	}

	return findings, nil
}
