package analyzer

import (
	"fmt"

	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// maxImports is the coupling limit before a file is flagged as a hub.
const maxImports = 30

// Architecture enforces layering rules between the data, domain and
// presentation layers, inferred from import statements.
type Architecture struct {
	config *config.Config
}

// NewArchitecture creates the layering analyzer.
func NewArchitecture(cfg *config.Config) *Architecture {
	return &Architecture{config: cfg}
}

func (a *Architecture) ID() string                { return "architecture" }
func (a *Architecture) Category() models.Category { return models.CategoryArchitecture }

// AppliesTo runs only on files whose layer could be classified; a file
// of unknown layer has no rules to break.
func (a *Architecture) AppliesTo(file models.FileInfo) bool {
	return !file.IsTest && file.Layer != models.LayerUnknown
}

// forbidden maps a layer to the layers it must not import from.
var forbidden = map[models.Layer][]models.Layer{
	models.LayerDomain:       {models.LayerPresentation, models.LayerData},
	models.LayerData:         {models.LayerPresentation},
	models.LayerPresentation: {models.LayerData},
}

// Analyze resolves each import's layer by the same path rules used for
// file classification and flags forbidden edges.
func (a *Architecture) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	var findings []models.Finding

	imports := parser.GetImports(result)
	banned := forbidden[file.Layer]

	for _, imp := range imports {
		// LayerFor expects a path-shaped string; imports in most
		// languages are already slash- or dot-separated segments.
		importLayer := a.config.LayerFor(normalizeImport(imp.Path))
		for _, b := range banned {
			if importLayer != b {
				continue
			}
			f := models.NewFinding(a.ID(), models.CategoryArchitecture, models.PriorityHigh,
				fmt.Sprintf("%s layer imports %s layer", file.Layer, importLayer), file.RelPath, imp.Line)
			f.Description = fmt.Sprintf("%s is classified as %s but imports %q, which resolves to the %s layer. This inverts the intended dependency direction.", file.RelPath, file.Layer, imp.Path, importLayer)
			f.Recommendation = "Depend on an abstraction owned by the lower layer, or move the shared code into the domain layer."
			f.Snippet = snippet(result.Source, imp.Line)
			f.Effort = models.EffortLarge
			findings = append(findings, f)
		}
	}

	if len(imports) > maxImports {
		f := models.NewFinding(a.ID(), models.CategoryDependencyWiring, models.PriorityMedium,
			"File depends on too many modules", file.RelPath, 1)
		f.Description = fmt.Sprintf("%s imports %d modules; more than %d suggests a hub that every change flows through.", file.RelPath, len(imports), maxImports)
		f.Recommendation = "Split the file, or introduce a facade for the cluster of dependencies it wires together."
		f.Effort = models.EffortLarge
		findings = append(findings, f)
	}

	return findings, nil
}

// normalizeImport turns dotted module paths (Java, Python, C#) into
// slash-separated ones so layer rules match either form, and appends a
// trailing pseudo-filename because layer rules only inspect directory
// segments.
func normalizeImport(path string) string {
	out := make([]byte, len(path))
	for i := 0; i < len(path); i++ {
		if path[i] == '.' || path[i] == '\\' {
			out[i] = '/'
		} else {
			out[i] = path[i]
		}
	}
	return string(out) + "/-"
}
