package analyzer

import (
	"fmt"
	"strings"

	"github.com/augurhq/augur/pkg/config"
)

// Default builds the full analyzer set in its fixed registration order.
// The order is load-bearing: the aggregator uses it to break ties between
// overlapping analyzers, and reports list analyzers in this order.
func Default(cfg *config.Config) []Analyzer {
	t := cfg.Thresholds
	return []Analyzer{
		NewStructure(t),
		NewArchitecture(cfg),
		NewIdiom(cfg.Analysis.IncludeTests),
		NewState(cfg.Analysis.IncludeTests),
		NewErrorHandling(cfg.Analysis.IncludeTests),
		NewPersistence(cfg.Analysis.IncludeTests),
		NewDuplicates(t, cfg.Analysis.IncludeTests),
		NewNaming(),
		NewDocumentation(),
		NewSecurity(t),
	}
}

// Select filters analyzers by an id allowlist, preserving registration
// order. An unknown id is a configuration error and aborts the run.
func Select(all []Analyzer, ids []string) ([]Analyzer, error) {
	if len(ids) == 0 {
		return all, nil
	}

	byID := make(map[string]Analyzer, len(all))
	for _, a := range all {
		byID[a.ID()] = a
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("unknown analyzer id: %q (known: %s)", id, strings.Join(IDs(all), ", "))
		}
		want[id] = true
	}

	selected := make([]Analyzer, 0, len(want))
	for _, a := range all {
		if want[a.ID()] {
			selected = append(selected, a)
		}
	}
	return selected, nil
}

// IDs returns the analyzer ids in registration order.
func IDs(all []Analyzer) []string {
	ids := make([]string, len(all))
	for i, a := range all {
		ids[i] = a.ID()
	}
	return ids
}

// Order maps analyzer id to registration index, used for deterministic
// tie-breaking during deduplication.
func Order(all []Analyzer) map[string]int {
	order := make(map[string]int, len(all))
	for i, a := range all {
		order[a.ID()] = i
	}
	return order
}
