package models

// AnalysisMetrics holds aggregate counters for one run, computed once
// over the final deduplicated finding set.
type AnalysisMetrics struct {
	TotalFiles        int              `json:"total_files"`
	TotalFindings     int              `json:"total_findings"`
	ByPriority        map[Priority]int `json:"findings_by_priority"`
	ByCategory        map[Category]int `json:"findings_by_category"`
	AvgComplexity     float64          `json:"avg_complexity"`
	AvgFunctionLength float64          `json:"avg_function_length"`
	AvgTypeLength     float64          `json:"avg_type_length"`
}

// NumericSeries returns the metrics that participate in baseline delta
// computation, keyed by stable names used in the baseline document.
func (m AnalysisMetrics) NumericSeries() map[string]float64 {
	return map[string]float64{
		"total_findings":      float64(m.TotalFindings),
		"critical_findings":   float64(m.ByPriority[PriorityCritical]),
		"high_findings":       float64(m.ByPriority[PriorityHigh]),
		"avg_complexity":      m.AvgComplexity,
		"avg_function_length": m.AvgFunctionLength,
		"avg_type_length":     m.AvgTypeLength,
	}
}
