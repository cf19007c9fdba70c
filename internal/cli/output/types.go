package output

import (
	"time"

	"github.com/leapstack-labs/archgate/pkg/conformance"
	"github.com/leapstack-labs/archgate/pkg/core"
)

// CheckSummary counts root outcomes.
type CheckSummary struct {
	Total            int `json:"total"`
	Passed           int `json:"passed"`
	Violations       int `json:"violations"`
	ExtractionErrors int `json:"extraction_errors"`
	ConfigErrors     int `json:"config_errors"`
}

// CheckOutput is the JSON output of the check command.
type CheckOutput struct {
	RunID    string              `json:"run_id,omitempty"`
	Passed   bool                `json:"passed"`
	Duration time.Duration       `json:"duration_ns"`
	Summary  CheckSummary        `json:"summary"`
	Results  []CheckResultOutput `json:"results"`
}

// CheckResultOutput is one root in CheckOutput.
type CheckResultOutput struct {
	conformance.Result
	Error string `json:"error,omitempty"`
}

// NewCheckOutput builds the JSON view of a report.
func NewCheckOutput(report *conformance.Report, runID string) CheckOutput {
	out := CheckOutput{
		RunID:    runID,
		Passed:   report.Passed(),
		Duration: report.Duration,
		Summary: CheckSummary{
			Total:            len(report.Results),
			Passed:           report.Count(conformance.StatusPass),
			Violations:       report.Count(conformance.StatusViolation),
			ExtractionErrors: report.Count(conformance.StatusExtractionError),
			ConfigErrors:     report.Count(conformance.StatusConfigError),
		},
		Results: make([]CheckResultOutput, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		ro := CheckResultOutput{Result: res}
		if res.Err != nil {
			ro.Error = res.Err.Error()
		}
		out.Results = append(out.Results, ro)
	}
	return out
}

// ExplainTarget is one violating package with the sources that use it.
type ExplainTarget struct {
	Package   string   `json:"package"`
	Tolerated bool     `json:"tolerated"`
	Sources   []string `json:"sources"`
}

// ExplainOutput is the JSON output of the explain command.
type ExplainOutput struct {
	Root    string          `json:"root"`
	Allowed []string        `json:"allowed"`
	Targets []ExplainTarget `json:"targets"`
	Stale   []string        `json:"stale"`
}

// LayerNode is one governed root in LayersOutput.
type LayerNode struct {
	Root      string   `json:"root"`
	Note      string   `json:"note,omitempty"`
	DependsOn []string `json:"depends_on"`
	UsedBy    []string `json:"used_by"`
}

// LayersOutput is the JSON output of the layers command.
type LayersOutput struct {
	Layers     [][]LayerNode `json:"layers"`
	Cycles     [][]string    `json:"cycles,omitempty"`
	TotalRoots int           `json:"total_roots"`
	TotalEdges int           `json:"total_edges"`
}

// LintOutput is the JSON output of the lint command.
type LintOutput struct {
	Path        string            `json:"path"`
	Diagnostics []core.Diagnostic `json:"diagnostics"`
	Errors      int               `json:"errors"`
	Warnings    int               `json:"warnings"`
	Infos       int               `json:"infos"`
}
