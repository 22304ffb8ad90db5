package analyzer

import (
	"testing"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

func TestState_ExportedMutablePackageVariable(t *testing.T) {
	result := parse(t, parser.LangGo, `package registry

var Handlers = map[string]func(){}

var Version = "1.4.0"

var defaults = map[string]int{}
`, "registry/registry.go")

	a := NewState(false)
	findings, err := a.Analyze(goFile("registry/registry.go"), result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want only Handlers flagged", titles(findings))
	}
	f := findings[0]
	if f.Title != "Exported mutable package variable Handlers" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.Priority != models.PriorityHigh {
		t.Errorf("Priority = %q, want high", f.Priority)
	}
	if f.Line != 3 {
		t.Errorf("Line = %d, want 3", f.Line)
	}
}

func TestState_PointerInitializerIsMutable(t *testing.T) {
	result := parse(t, parser.LangGo, `package registry

var Defaults = &Options{Retries: 3}

type Options struct {
	Retries int
}
`, "registry/registry.go")

	a := NewState(false)
	findings, err := a.Analyze(goFile("registry/registry.go"), result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 1 || findings[0].Title != "Exported mutable package variable Defaults" {
		t.Errorf("findings = %v, want Defaults flagged", titles(findings))
	}
}

func TestState_FunctionLocalStateIsFine(t *testing.T) {
	result := parse(t, parser.LangGo, `package p

func build() map[string]int {
	var Index = map[string]int{}
	return Index
}
`, "p.go")

	a := NewState(false)
	findings, err := a.Analyze(goFile("p.go"), result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %v, want none for function-local variables", titles(findings))
	}
}

func TestState_PublicStaticMutableField(t *testing.T) {
	result := parse(t, parser.LangJava, `public class Counters {
    public static int requests = 0;
    public static final int MAX = 100;
    private static int internal = 0;
}
`, "Counters.java")

	file := models.FileInfo{RelPath: "Counters.java", Language: string(parser.LangJava)}
	a := NewState(false)
	findings, err := a.Analyze(file, result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want only the non-final public field flagged", titles(findings))
	}
	if findings[0].Title != "Public static mutable field" || findings[0].Line != 2 {
		t.Errorf("finding = %q at line %d, want line 2", findings[0].Title, findings[0].Line)
	}
}

func TestState_OtherLanguagesSkipped(t *testing.T) {
	result := parse(t, parser.LangPython, `COUNTERS = {}
`, "counters.py")

	file := models.FileInfo{RelPath: "counters.py", Language: string(parser.LangPython)}
	a := NewState(false)
	findings, err := a.Analyze(file, result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if findings != nil {
		t.Errorf("findings = %v, want nil for an unsupported language", titles(findings))
	}
}
