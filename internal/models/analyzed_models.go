package models

import "time"

type AnalysisMode string

const (
	ModeGeneral AnalysisMode = "general"
	ModeAspect  AnalysisMode = "aspect-based"
)

// GeneralAnalysis is the output of a general-mode run: the corpus report and
// the sorted detail table.
type GeneralAnalysis struct {
	RunID    string        `json:"run_id"`
	Report   GeneralReport `json:"report"`
	Details  []DetailRow   `json:"details"`
	Skipped  int           `json:"skipped"`
	Analyzed int           `json:"analyzed"`
}

// AspectAnalysis is the output of an aspect-mode run. Reports is ordered by
// aspect name.
type AspectAnalysis struct {
	RunID    string         `json:"run_id"`
	Aspects  []string       `json:"aspects"`
	Reports  []AspectReport `json:"reports"`
	Details  []DetailRow    `json:"details"`
	Skipped  int            `json:"skipped"`
	Analyzed int            `json:"analyzed"`
}

// ReportMap returns the reports keyed by aspect.
func (a *AspectAnalysis) ReportMap() map[string]AspectReport {
	m := make(map[string]AspectReport, len(a.Reports))
	for _, r := range a.Reports {
		m[r.Aspect] = r
	}
	return m
}

// AnalysisEvent is what gets published to the results stream after a run.
type AnalysisEvent struct {
	RunID         string         `json:"run_id"`
	Mode          AnalysisMode   `json:"mode"`
	Source        string         `json:"source,omitempty"`
	GeneralReport *GeneralReport `json:"general_report,omitempty"`
	AspectReports []AspectReport `json:"aspect_reports,omitempty"`
	Details       []DetailRow    `json:"details,omitempty"`
	Skipped       int            `json:"skipped"`
	Timestamp     time.Time      `json:"timestamp"`
}

// DetailBatch is one chunk of an event's detail rows, published separately so
// large runs stay under the broker's message size.
type DetailBatch struct {
	RunID string      `json:"run_id"`
	Seq   int         `json:"seq"`
	Rows  []DetailRow `json:"rows"`
}
