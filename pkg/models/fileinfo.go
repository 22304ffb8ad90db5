package models

// Layer is a coarse architectural classification of a file inferred
// from its path.
type Layer string

const (
	LayerData           Layer = "data"
	LayerDomain         Layer = "domain"
	LayerPresentation   Layer = "presentation"
	LayerInfrastructure Layer = "infrastructure"
	LayerTest           Layer = "test"
	LayerUnknown        Layer = "unknown"
)

// FileInfo describes one discovered source file. It is created once by
// discovery and read-only afterward.
type FileInfo struct {
	Path     string `json:"path"`
	RelPath  string `json:"relative_path"`
	Layer    Layer  `json:"layer"`
	IsTest   bool   `json:"is_test"`
	Package  string `json:"package,omitempty"`
	Language string `json:"language"`
}
