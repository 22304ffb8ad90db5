package models

import "time"

// Baseline is a persisted snapshot of a prior run. Only finding ids are
// required for diffing; full bodies are kept as well so known issues can
// be displayed without re-running analysis.
type Baseline struct {
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	Metrics    AnalysisMetrics `json:"metrics"`
	FindingIDs []string        `json:"finding_ids"`
	Findings   []Finding       `json:"findings,omitempty"`
}

// IDSet returns the baseline's finding ids as a set.
func (b *Baseline) IDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(b.FindingIDs))
	for _, id := range b.FindingIDs {
		set[id] = struct{}{}
	}
	return set
}

// MetricDelta is the relative change of one numeric metric against the
// baseline. Defined is false when the baseline value is zero, in which
// case Ratio is meaningless and reports render "n/a".
type MetricDelta struct {
	Current  float64 `json:"current"`
	Baseline float64 `json:"baseline"`
	Ratio    float64 `json:"ratio"`
	Defined  bool    `json:"defined"`
}

// Comparison is the transient result of diffing a run against a
// baseline. It is never persisted.
type Comparison struct {
	NewIDs      []string               `json:"new_ids"`
	ResolvedIDs []string               `json:"resolved_ids"`
	Deltas      map[string]MetricDelta `json:"deltas"`
}
