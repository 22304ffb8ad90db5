package analyzer

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// Structure detects structural smells: long functions, high cyclomatic
// complexity, deep nesting, long parameter lists and oversized types.
type Structure struct {
	thresholds config.Thresholds
}

// NewStructure creates the structural smell analyzer.
func NewStructure(t config.Thresholds) *Structure {
	return &Structure{thresholds: t}
}

func (a *Structure) ID() string                { return "structure" }
func (a *Structure) Category() models.Category { return models.CategoryStructuralSmell }

// AppliesTo runs on every parseable file, tests included: structural
// smells in tests rot just as fast.
func (a *Structure) AppliesTo(models.FileInfo) bool { return true }

// Analyze walks every function and type declaration in the file.
func (a *Structure) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	var findings []models.Finding

	for _, fn := range parser.GetFunctions(result) {
		findings = append(findings, a.checkFunction(file, result, fn)...)
	}
	for _, tn := range parser.GetTypes(result) {
		findings = append(findings, a.checkType(file, result, tn)...)
	}

	return findings, nil
}

func (a *Structure) checkFunction(file models.FileInfo, result *parser.ParseResult, fn parser.FunctionNode) []models.Finding {
	var findings []models.Finding
	name := fn.Name
	if name == "" {
		name = "(anonymous)"
	}

	if lines := fn.Lines(); lines > a.thresholds.FunctionLines {
		f := models.NewFinding(a.ID(), models.CategoryStructuralSmell, models.PriorityMedium,
			fmt.Sprintf("Function %s is too long", name), file.RelPath, fn.StartLine)
		f.Description = fmt.Sprintf("%s spans %d lines; the limit is %d. Long functions hide multiple responsibilities and resist testing.", name, lines, a.thresholds.FunctionLines)
		f.Recommendation = "Extract cohesive blocks into named helper functions."
		f.Snippet = snippet(result.Source, fn.StartLine)
		f.Effort = models.EffortMedium
		findings = append(findings, f)
	}

	if params := len(fn.Parameters); params > a.thresholds.Parameters {
		f := models.NewFinding(a.ID(), models.CategoryStructuralSmell, models.PriorityMedium,
			fmt.Sprintf("Function %s has too many parameters", name), file.RelPath, fn.StartLine)
		f.Description = fmt.Sprintf("%s takes %d parameters; the limit is %d.", name, params, a.thresholds.Parameters)
		f.Recommendation = "Group related parameters into a struct or options type."
		f.Snippet = snippet(result.Source, fn.StartLine)
		f.Effort = models.EffortSmall
		findings = append(findings, f)
	}

	if fn.Body == nil {
		return findings
	}

	if cyc := Cyclomatic(fn.Body, result.Source, result.Language); cyc > a.thresholds.CyclomaticComplexity {
		f := models.NewFinding(a.ID(), models.CategoryStructuralSmell, models.PriorityHigh,
			fmt.Sprintf("Function %s is too complex", name), file.RelPath, fn.StartLine)
		f.Description = fmt.Sprintf("%s has cyclomatic complexity %d; the limit is %d.", name, cyc, a.thresholds.CyclomaticComplexity)
		f.Recommendation = "Split decision-heavy paths into separate functions, or replace condition chains with table-driven logic."
		f.Snippet = snippet(result.Source, fn.StartLine)
		f.Effort = models.EffortMedium
		findings = append(findings, f)
	}

	if depth := MaxNesting(fn.Body, 0); depth > a.thresholds.NestingDepth {
		f := models.NewFinding(a.ID(), models.CategoryStructuralSmell, models.PriorityMedium,
			fmt.Sprintf("Function %s is nested too deeply", name), file.RelPath, fn.StartLine)
		f.Description = fmt.Sprintf("%s reaches nesting depth %d; the limit is %d.", name, depth, a.thresholds.NestingDepth)
		f.Recommendation = "Use guard clauses and early returns to flatten the happy path."
		f.Snippet = snippet(result.Source, fn.StartLine)
		f.Effort = models.EffortSmall
		findings = append(findings, f)
	}

	return findings
}

func (a *Structure) checkType(file models.FileInfo, result *parser.ParseResult, tn parser.TypeNode) []models.Finding {
	var findings []models.Finding

	if lines := tn.Lines(); lines > a.thresholds.TypeLines {
		f := models.NewFinding(a.ID(), models.CategoryStructuralSmell, models.PriorityHigh,
			fmt.Sprintf("Type %s is too large", tn.Name), file.RelPath, tn.StartLine)
		f.Description = fmt.Sprintf("%s spans %d lines; the limit is %d. Large types accumulate unrelated responsibilities.", tn.Name, lines, a.thresholds.TypeLines)
		f.Recommendation = "Split the type along its distinct responsibilities."
		f.Effort = models.EffortLarge
		findings = append(findings, f)
	}

	if methods := len(tn.Methods); methods > a.thresholds.TypeMethods {
		f := models.NewFinding(a.ID(), models.CategoryStructuralSmell, models.PriorityMedium,
			fmt.Sprintf("Type %s has too many methods", tn.Name), file.RelPath, tn.StartLine)
		f.Description = fmt.Sprintf("%s declares %d methods; the limit is %d.", tn.Name, methods, a.thresholds.TypeMethods)
		f.Recommendation = "Extract cohesive method groups into collaborating types."
		f.Effort = models.EffortLarge
		findings = append(findings, f)
	}

	return findings
}

// Cyclomatic computes cyclomatic complexity as 1 + the number of decision
// points in the body: conditional branches, switch/match arms, loops,
// short-circuit boolean operators and exception handlers.
func Cyclomatic(body *sitter.Node, source []byte, lang parser.Language) int {
	count := 1

	decisionTypes := decisionNodeTypes(lang)

	parser.WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if decisionTypes[nodeType] {
			count++
		}
		// Short-circuit operators are decision points too.
		if nodeType == "binary_expression" || nodeType == "logical_expression" || nodeType == "boolean_operator" {
			op := operatorOf(n, src)
			if op == "&&" || op == "||" || op == "and" || op == "or" {
				count++
			}
		}
		return true
	})

	return count
}

// MaxNesting returns the maximum block-nesting depth reached inside a
// body. Sequentially independent blocks do not accumulate: only the
// deepest chain counts.
func MaxNesting(node *sitter.Node, currentDepth int) int {
	maxDepth := currentDepth

	for i := range int(node.ChildCount()) {
		child := node.Child(i)

		var childMax int
		if nestingTypes[child.Type()] {
			childMax = MaxNesting(child, currentDepth+1)
		} else {
			childMax = MaxNesting(child, currentDepth)
		}

		if childMax > maxDepth {
			maxDepth = childMax
		}
	}

	return maxDepth
}

// operatorOf extracts the operator token from a binary expression node.
func operatorOf(node *sitter.Node, source []byte) string {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "&&", "||", "and", "or":
			return child.Type()
		case "operator":
			return parser.GetNodeText(child, source)
		}
	}
	return ""
}

// decisionNodeTypes returns AST node types that count as decision points.
func decisionNodeTypes(lang parser.Language) map[string]bool {
	common := []string{
		"if_statement",
		"if_expression",
		"while_statement",
		"while_expression",
		"for_statement",
		"for_expression",
		"case_statement",
		"catch_clause",
		"except_clause",
		"ternary_expression",
		"conditional_expression",
	}

	switch lang {
	case parser.LangGo:
		common = append(common, "select_statement", "type_switch_statement", "expression_switch_statement", "expression_case")
	case parser.LangRust:
		common = append(common, "match_arm", "loop_expression", "if_let_expression")
	case parser.LangPython:
		common = append(common, "elif_clause", "with_statement", "list_comprehension", "conditional_expression")
	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		common = append(common, "switch_case", "do_statement")
	case parser.LangJava, parser.LangCSharp:
		common = append(common, "switch_expression_arm", "switch_block_statement_group", "do_statement", "enhanced_for_statement")
	case parser.LangC, parser.LangCPP:
		common = append(common, "do_statement")
	case parser.LangRuby:
		common = []string{"if", "elsif", "unless", "while", "until", "for", "when", "rescue", "conditional"}
	case parser.LangPHP:
		common = append(common, "switch_statement", "elseif_clause")
	}

	set := make(map[string]bool, len(common))
	for _, t := range common {
		set[t] = true
	}
	return set
}

// nestingTypes are the block-introducing constructs that increment depth.
var nestingTypes = map[string]bool{
	"if_statement": true, "if_expression": true, "if": true, "unless": true,
	"while_statement": true, "while_expression": true, "while": true, "until": true,
	"for_statement": true, "for_expression": true, "for": true,
	"switch_statement": true, "match_expression": true, "case": true,
	"expression_switch_statement": true, "type_switch_statement": true, "select_statement": true,
	"try_statement": true, "begin": true,
	"lambda_expression": true, "arrow_function": true,
}
