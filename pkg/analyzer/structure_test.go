package analyzer

import (
	"strings"
	"testing"

	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

func parse(t *testing.T, lang parser.Language, src, path string) *parser.ParseResult {
	t.Helper()
	p := parser.New()
	t.Cleanup(p.Close)
	result, err := p.Parse([]byte(src), lang, path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return result
}

func goFile(rel string) models.FileInfo {
	return models.FileInfo{Path: rel, RelPath: rel, Language: string(parser.LangGo)}
}

func firstBody(t *testing.T, result *parser.ParseResult) *parser.FunctionNode {
	t.Helper()
	fns := parser.GetFunctions(result)
	if len(fns) == 0 {
		t.Fatal("no functions parsed")
	}
	if fns[0].Body == nil {
		t.Fatal("function has no body")
	}
	return &fns[0]
}

func TestCyclomatic_BaseIsOne(t *testing.T) {
	result := parse(t, parser.LangGo, `package p

func straight(x int) int {
	y := x * 2
	return y
}
`, "p.go")

	fn := firstBody(t, result)
	if got := Cyclomatic(fn.Body, result.Source, result.Language); got != 1 {
		t.Errorf("Cyclomatic = %d, want 1 for a branch-free body", got)
	}
}

func TestCyclomatic_CountsDecisionPoints(t *testing.T) {
	// One if, one for, one && -> 1 + 3.
	result := parse(t, parser.LangGo, `package p

func branchy(x, y int) int {
	total := 0
	if x > 0 && y > 0 {
		total++
	}
	for i := 0; i < x; i++ {
		total += i
	}
	return total
}
`, "p.go")

	fn := firstBody(t, result)
	if got := Cyclomatic(fn.Body, result.Source, result.Language); got != 4 {
		t.Errorf("Cyclomatic = %d, want 4", got)
	}
}

func TestCyclomatic_SwitchArms(t *testing.T) {
	result := parse(t, parser.LangGo, `package p

func classify(x int) string {
	switch {
	case x < 0:
		return "neg"
	case x == 0:
		return "zero"
	default:
		return "pos"
	}
}
`, "p.go")

	fn := firstBody(t, result)
	got := Cyclomatic(fn.Body, result.Source, result.Language)
	// The switch itself plus each non-default arm.
	if got < 3 {
		t.Errorf("Cyclomatic = %d, want >= 3 for a three-way switch", got)
	}
}

func TestMaxNesting_SequentialConditionalsDoNotAccumulate(t *testing.T) {
	result := parse(t, parser.LangGo, `package p

func sequential(a, b, c bool) int {
	n := 0
	if a {
		n++
	}
	if b {
		n++
	}
	if c {
		n++
	}
	return n
}
`, "p.go")

	fn := firstBody(t, result)
	if got := MaxNesting(fn.Body, 0); got != 1 {
		t.Errorf("MaxNesting = %d, want 1 for sequential conditionals", got)
	}
}

func TestMaxNesting_NestedChain(t *testing.T) {
	result := parse(t, parser.LangGo, `package p

func nested(a, b int) int {
	if a > 0 {
		if b > 0 {
			for i := 0; i < b; i++ {
				a += i
			}
		}
	}
	return a
}
`, "p.go")

	fn := firstBody(t, result)
	if got := MaxNesting(fn.Body, 0); got != 3 {
		t.Errorf("MaxNesting = %d, want 3", got)
	}
}

// The canonical structural scenario: a long function with deep nesting
// and a wide parameter list produces exactly those three findings.
func TestStructure_LongNestedWideFunction(t *testing.T) {
	var b strings.Builder
	b.WriteString("package p\n\nfunc process(a, b, c, d, e, f int) int {\n\ttotal := 0\n")
	b.WriteString(strings.Repeat("\ttotal++\n", 45))
	b.WriteString(`	if a > 0 {
		if b > 0 {
			if c > 0 {
				for i := 0; i < d; i++ {
					if e > 0 {
						total += f
					}
				}
			}
		}
	}
	return total
}
`)

	result := parse(t, parser.LangGo, b.String(), "svc/process.go")

	a := NewStructure(config.DefaultConfig().Thresholds)
	findings, err := a.Analyze(goFile("svc/process.go"), result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(findings) != 3 {
		t.Fatalf("len(findings) = %d, want 3: %+v", len(findings), titles(findings))
	}

	want := map[string]bool{
		"Function process is too long":             false,
		"Function process has too many parameters": false,
		"Function process is nested too deeply":    false,
	}
	for _, f := range findings {
		if _, ok := want[f.Title]; !ok {
			t.Errorf("unexpected finding %q", f.Title)
			continue
		}
		want[f.Title] = true
	}
	for title, seen := range want {
		if !seen {
			t.Errorf("missing finding %q", title)
		}
	}
}

func TestStructure_CleanFunctionYieldsNothing(t *testing.T) {
	result := parse(t, parser.LangGo, `package p

func add(a, b int) int {
	return a + b
}
`, "p.go")

	a := NewStructure(config.DefaultConfig().Thresholds)
	findings, err := a.Analyze(goFile("p.go"), result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %v, want none", titles(findings))
	}
}

func TestStructure_OversizedType(t *testing.T) {
	var b strings.Builder
	b.WriteString("package p\n\ntype Big struct {\n")
	for i := 0; i < 405; i++ {
		b.WriteString("\tF")
		b.WriteString(strings.Repeat("f", i%7+1))
		b.WriteString(" int\n")
	}
	b.WriteString("}\n")

	result := parse(t, parser.LangGo, b.String(), "p.go")

	a := NewStructure(config.DefaultConfig().Thresholds)
	findings, err := a.Analyze(goFile("p.go"), result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 1 || findings[0].Title != "Type Big is too large" {
		t.Errorf("findings = %v, want a single oversized-type finding", titles(findings))
	}
}

func titles(findings []models.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Title
	}
	return out
}
