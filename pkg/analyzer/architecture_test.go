package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

func TestArchitecture_DomainImportsData(t *testing.T) {
	result := parse(t, parser.LangGo, `package services

import (
	"example.com/app/internal/repository/users"
)

var _ = users.Store{}
`, "internal/services/user.go")

	file := goFile("internal/services/user.go")
	file.Layer = models.LayerDomain

	a := NewArchitecture(config.DefaultConfig())
	findings, err := a.Analyze(file, result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want exactly one", titles(findings))
	}
	f := findings[0]
	if f.Title != "domain layer imports data layer" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.Priority != models.PriorityHigh {
		t.Errorf("Priority = %q, want high", f.Priority)
	}
	if f.Category != models.CategoryArchitecture {
		t.Errorf("Category = %q", f.Category)
	}
}

func TestArchitecture_DataImportingDomainIsAllowed(t *testing.T) {
	result := parse(t, parser.LangGo, `package repository

import (
	"example.com/app/internal/services/pricing"
)

var _ = pricing.Rate
`, "internal/repository/orders.go")

	file := goFile("internal/repository/orders.go")
	file.Layer = models.LayerData

	a := NewArchitecture(config.DefaultConfig())
	findings, err := a.Analyze(file, result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %v, want none: data may depend on domain", titles(findings))
	}
}

func TestArchitecture_DottedImportsNormalized(t *testing.T) {
	result := parse(t, parser.LangJava, `package com.example.ui;

import com.example.repository.UserRepo;

public class UserView {}
`, "src/ui/UserView.java")

	file := models.FileInfo{
		RelPath:  "src/ui/UserView.java",
		Language: string(parser.LangJava),
		Layer:    models.LayerPresentation,
	}

	a := NewArchitecture(config.DefaultConfig())
	findings, err := a.Analyze(file, result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 1 || findings[0].Title != "presentation layer imports data layer" {
		t.Errorf("findings = %v, want the dotted repository import flagged", titles(findings))
	}
}

func TestArchitecture_TooManyImports(t *testing.T) {
	var src strings.Builder
	src.WriteString("package services\n\nimport (\n")
	for i := 0; i <= maxImports; i++ {
		fmt.Fprintf(&src, "\t_ \"example.com/app/pkg/dep%d\"\n", i)
	}
	src.WriteString(")\n")

	result := parse(t, parser.LangGo, src.String(), "internal/services/hub.go")

	file := goFile("internal/services/hub.go")
	file.Layer = models.LayerDomain

	a := NewArchitecture(config.DefaultConfig())
	findings, err := a.Analyze(file, result)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want exactly one", titles(findings))
	}
	if findings[0].Title != "File depends on too many modules" {
		t.Errorf("Title = %q", findings[0].Title)
	}
	if findings[0].Category != models.CategoryDependencyWiring {
		t.Errorf("Category = %q, want dependency wiring", findings[0].Category)
	}
}

func TestArchitecture_SkipsUnclassifiedFiles(t *testing.T) {
	file := goFile("scripts/gen.go")
	file.Layer = models.LayerUnknown

	if NewArchitecture(config.DefaultConfig()).AppliesTo(file) {
		t.Error("AppliesTo = true for a file of unknown layer")
	}
}

func TestNormalizeImport(t *testing.T) {
	if got := normalizeImport("com.example.repository.UserRepo"); got != "com/example/repository/UserRepo/-" {
		t.Errorf("normalizeImport = %q", got)
	}
}
