// Package baseline persists run snapshots and diffs them against the
// current run.
package baseline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/augurhq/augur/pkg/models"
)

// Version is the baseline document format version.
const Version = 1

//go:embed schema.json
var schemaText string

var compiledSchema = func() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaText))
	if err != nil {
		panic(fmt.Sprintf("baseline: bad embedded schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("baseline.schema.json", doc); err != nil {
		panic(fmt.Sprintf("baseline: %v", err))
	}
	sch, err := c.Compile("baseline.schema.json")
	if err != nil {
		panic(fmt.Sprintf("baseline: %v", err))
	}
	return sch
}()

// Load reads a baseline document. A missing file is the normal
// first-run case and returns (nil, nil). A present but invalid file is
// an error: silently ignoring it would make every finding look new.
func Load(path string) (*models.Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("baseline is not valid JSON: %w", err)
	}
	if err := compiledSchema.Validate(inst); err != nil {
		return nil, fmt.Errorf("baseline failed schema validation: %w", err)
	}

	var b models.Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode baseline: %w", err)
	}
	return &b, nil
}

// Save replaces the baseline wholesale with a snapshot of the current
// run. The write is atomic (temp file + rename) and ids are sorted so
// saved documents diff cleanly in version control.
func Save(path string, findings []models.Finding, metrics models.AnalysisMetrics) error {
	ids := make([]string, len(findings))
	for i, f := range findings {
		ids[i] = f.ID
	}
	sort.Strings(ids)

	b := models.Baseline{
		Version:    Version,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Metrics:    metrics,
		FindingIDs: ids,
		Findings:   findings,
	}

	data, err := json.MarshalIndent(&b, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Compare diffs the current finding set against a baseline. New ids are
// in current but not the baseline; resolved ids the reverse. An id in
// both sets appears in neither list.
func Compare(current []models.Finding, metrics models.AnalysisMetrics, b *models.Baseline) models.Comparison {
	baseSet := b.IDSet()
	currentSet := make(map[string]struct{}, len(current))

	cmp := models.Comparison{
		Deltas: make(map[string]models.MetricDelta),
	}

	for _, f := range current {
		if _, dup := currentSet[f.ID]; dup {
			continue
		}
		currentSet[f.ID] = struct{}{}
		if _, known := baseSet[f.ID]; !known {
			cmp.NewIDs = append(cmp.NewIDs, f.ID)
		}
	}
	for id := range baseSet {
		if _, still := currentSet[id]; !still {
			cmp.ResolvedIDs = append(cmp.ResolvedIDs, id)
		}
	}
	sort.Strings(cmp.NewIDs)
	sort.Strings(cmp.ResolvedIDs)

	baseSeries := b.Metrics.NumericSeries()
	for name, cur := range metrics.NumericSeries() {
		base := baseSeries[name]
		delta := models.MetricDelta{Current: cur, Baseline: base}
		if base != 0 {
			delta.Ratio = (cur - base) / base
			delta.Defined = true
		}
		cmp.Deltas[name] = delta
	}

	return cmp
}

// Diff compares two saved snapshots, treating next as the current
// state. It works from finding ids alone so it handles baselines saved
// without full finding bodies.
func Diff(prev, next *models.Baseline) models.Comparison {
	prevSet := prev.IDSet()
	nextSet := next.IDSet()

	cmp := models.Comparison{
		Deltas: make(map[string]models.MetricDelta),
	}

	for id := range nextSet {
		if _, known := prevSet[id]; !known {
			cmp.NewIDs = append(cmp.NewIDs, id)
		}
	}
	for id := range prevSet {
		if _, still := nextSet[id]; !still {
			cmp.ResolvedIDs = append(cmp.ResolvedIDs, id)
		}
	}
	sort.Strings(cmp.NewIDs)
	sort.Strings(cmp.ResolvedIDs)

	prevSeries := prev.Metrics.NumericSeries()
	for name, cur := range next.Metrics.NumericSeries() {
		base := prevSeries[name]
		delta := models.MetricDelta{Current: cur, Baseline: base}
		if base != 0 {
			delta.Ratio = (cur - base) / base
			delta.Defined = true
		}
		cmp.Deltas[name] = delta
	}

	return cmp
}
