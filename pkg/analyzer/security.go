package analyzer

import (
	"math"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// Security detects secret-shaped string literals and query execution
// fed by concatenated input. Security findings are always critical.
type Security struct {
	thresholds config.Thresholds
}

// NewSecurity creates the security-pattern analyzer.
func NewSecurity(t config.Thresholds) *Security {
	return &Security{thresholds: t}
}

func (a *Security) ID() string                { return "security" }
func (a *Security) Category() models.Category { return models.CategorySecurity }

// AppliesTo runs on every file. Committed secrets in test fixtures are
// still committed secrets.
func (a *Security) AppliesTo(models.FileInfo) bool { return true }

var (
	secretNameRe = regexp.MustCompile(`(?i)(password|passwd|secret|token|api_?key|access_?key|private_?key|credential)`)
	// Shapes that are clearly not real secrets.
	placeholderRe = regexp.MustCompile(`(?i)^(\$\{.*\}|<.*>|xxx+|\*{3,}|your[-_ ]|example|changeme|placeholder|dummy|test)`)
	execCallRe    = regexp.MustCompile(`(?i)\b(exec|query|execute|raw)\w*$`)
)

func (a *Security) Analyze(file models.FileInfo, result *parser.ParseResult) ([]models.Finding, error) {
	var findings []models.Finding

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "assignment_statement", "assignment", "short_var_declaration",
			"var_spec", "const_spec", "variable_declarator", "assignment_expression",
			"pair", "keyword_argument":
			if f, ok := a.checkSecretAssignment(file, n, src); ok {
				findings = append(findings, f)
				return false
			}
		case "call_expression", "call", "method_invocation":
			if f, ok := a.checkInjection(file, n, src); ok {
				findings = append(findings, f)
				return false
			}
		}
		return true
	})

	return findings, nil
}

// checkSecretAssignment flags `password = "literal"` shapes where the
// literal looks like an actual credential.
func (a *Security) checkSecretAssignment(file models.FileInfo, n *sitter.Node, src []byte) (models.Finding, bool) {
	text := parser.GetNodeText(n, src)
	eq := strings.IndexAny(text, "=:")
	if eq < 0 {
		return models.Finding{}, false
	}
	name := strings.TrimSpace(text[:eq])
	if !secretNameRe.MatchString(name) {
		return models.Finding{}, false
	}

	literal := extractStringLiteral(n, src)
	if literal == "" {
		return models.Finding{}, false
	}
	if placeholderRe.MatchString(literal) {
		return models.Finding{}, false
	}
	if len(literal) < a.thresholds.SecretMinLength && shannonEntropy(literal) < a.thresholds.SecretMinEntropy {
		return models.Finding{}, false
	}

	line := int(n.StartPoint().Row) + 1
	f := models.NewFinding(a.ID(), models.CategorySecurity, models.PriorityCritical,
		"Hardcoded credential", file.RelPath, line)
	f.Description = "A credential-named variable is assigned a string literal. Secrets in source survive in version history even after removal."
	f.Recommendation = "Load the value from the environment or a secret manager, and rotate the exposed credential."
	f.Snippet = redact(snippet(src, line))
	f.Effort = models.EffortSmall
	return f, true
}

// checkInjection flags query-executing calls whose argument is built by
// concatenation rather than placeholders.
func (a *Security) checkInjection(file models.FileInfo, n *sitter.Node, src []byte) (models.Finding, bool) {
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil {
		fnNode = n.ChildByFieldName("name")
	}
	fnText := parser.GetNodeText(fnNode, src)
	if dot := strings.LastIndexByte(fnText, '.'); dot >= 0 {
		fnText = fnText[dot+1:]
	}
	if !execCallRe.MatchString(fnText) {
		return models.Finding{}, false
	}

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return models.Finding{}, false
	}
	argsText := parser.GetNodeText(args, src)
	if !sqlVerbRe.MatchString(strings.TrimPrefix(argsText, "(")) {
		return models.Finding{}, false
	}
	if !strings.Contains(argsText, "+") && !formatVerbRe.MatchString(argsText) {
		return models.Finding{}, false
	}

	line := int(n.StartPoint().Row) + 1
	f := models.NewFinding(a.ID(), models.CategorySecurity, models.PriorityCritical,
		"Possible SQL injection", file.RelPath, line)
	f.Description = "A query-executing call receives SQL assembled from concatenated or formatted input. If any operand is attacker-controlled, this is injectable."
	f.Recommendation = "Pass the values as bind parameters; never splice them into the SQL text."
	f.Snippet = snippet(src, line)
	f.Effort = models.EffortSmall
	return f, true
}

// extractStringLiteral returns the content of the first string literal
// beneath the node, stripped of quotes.
func extractStringLiteral(n *sitter.Node, src []byte) string {
	var literal string
	parser.WalkTyped(n, src, func(child *sitter.Node, childType string, s []byte) bool {
		switch childType {
		case "interpreted_string_literal", "raw_string_literal", "string_literal", "string", "string_content":
			literal = strings.Trim(parser.GetNodeText(child, s), `"'`+"`")
			return false
		}
		return true
	})
	return literal
}

// shannonEntropy measures bits of entropy per character; random tokens
// score well above natural-language strings.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	for _, r := range s {
		freq[r]++
	}
	var entropy float64
	n := float64(len([]rune(s)))
	for _, count := range freq {
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// redact masks the right-hand side of a snippet so reports do not
// re-publish the secret they flag.
func redact(line string) string {
	eq := strings.IndexAny(line, "=:")
	if eq < 0 {
		return line
	}
	return line[:eq+1] + ` "********"`
}
