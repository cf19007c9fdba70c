package core

import (
	"fmt"
	"strings"
)

// ExtractionError reports that a dependency graph could not be produced for a root.
// It is fatal for that root: no partial results are returned.
type ExtractionError struct {
	Root     string
	Location string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("extract %s from %s: %v", e.Root, e.Location, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Root, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// PolicyViolation reports that a root's computed violations differ from its tolerated set.
type PolicyViolation struct {
	Root    string
	Added   []string // violations that are not tolerated
	Removed []string // tolerated entries that no longer occur
}

func (e *PolicyViolation) Error() string {
	var parts []string
	if len(e.Added) > 0 {
		parts = append(parts, "new: "+strings.Join(e.Added, ", "))
	}
	if len(e.Removed) > 0 {
		parts = append(parts, "stale: "+strings.Join(e.Removed, ", "))
	}
	return fmt.Sprintf("%s violates policy (%s)", e.Root, strings.Join(parts, "; "))
}

// ConfigurationError reports a setup problem rather than an architecture violation.
type ConfigurationError struct {
	Root   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Root == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration for %s: %s", e.Root, e.Reason)
}
