package models

import "fmt"

// Stage identifies the pipeline stage that produced a diagnostic.
type Stage string

const (
	StageDiscovery Stage = "discovery"
	StageParse     Stage = "parse"
	StageAnalyzer  Stage = "analyzer"
)

// Diagnostic records a recovered, file-scoped failure. Diagnostics ride
// along with the run result so skipped coverage is never silent.
type Diagnostic struct {
	Stage      Stage  `json:"stage"`
	Path       string `json:"path"`
	AnalyzerID string `json:"analyzer_id,omitempty"`
	Message    string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.AnalyzerID != "" {
		return fmt.Sprintf("[%s/%s] %s: %s", d.Stage, d.AnalyzerID, d.Path, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Stage, d.Path, d.Message)
}
