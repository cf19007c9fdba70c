package conformance

import (
	"errors"
	"time"
)

// Status is the outcome of checking one root.
type Status string

// Root outcomes.
const (
	StatusPass            Status = "pass"
	StatusViolation       Status = "violation"
	StatusExtractionError Status = "extraction_error"
	StatusConfigError     Status = "config_error"
)

// Result is the outcome for one governed root.
type Result struct {
	Root     string              `json:"root"`
	Status   Status              `json:"status"`
	Actual   []string            `json:"actual"`
	Expected []string            `json:"expected"`
	Added    []string            `json:"added,omitempty"`
	Removed  []string            `json:"removed,omitempty"`
	Evidence map[string][]string `json:"evidence,omitempty"`
	Edges    int                 `json:"edges"`
	Duration time.Duration       `json:"duration_ns"`
	Err      error               `json:"-"`
}

// Passed reports whether the root conforms to its policy.
func (r Result) Passed() bool {
	return r.Status == StatusPass
}

// Report collects the results of one run, in policy order.
type Report struct {
	Results   []Result      `json:"results"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Passed reports whether every root passed.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Failed returns the failing results.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// Count returns how many results have the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Err joins the errors of every failing root, or returns nil when all passed.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}
