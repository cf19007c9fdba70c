package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionError(t *testing.T) {
	err := fmt.Errorf("run: %w", &ExtractionError{Root: "org.web", Location: "/classes/org/web", Err: fs.ErrNotExist})

	var ee *ExtractionError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, "org.web", ee.Root)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "/classes/org/web")
}

func TestPolicyViolation_Error(t *testing.T) {
	err := &PolicyViolation{Root: "billing", Added: []string{"audit.trail"}, Removed: []string{"reporting.invoice"}}
	assert.Equal(t, "billing violates policy (new: audit.trail; stale: reporting.invoice)", err.Error())
}

func TestConfigurationError_Error(t *testing.T) {
	assert.Equal(t, "configuration: no roots", (&ConfigurationError{Reason: "no roots"}).Error())
	assert.Equal(t, "configuration for web: missing", (&ConfigurationError{Root: "web", Reason: "missing"}).Error())
}

func TestParseSeverity(t *testing.T) {
	s, ok := ParseSeverity("ERROR")
	assert.True(t, ok)
	assert.Equal(t, SeverityError, s)

	s, ok = ParseSeverity("bogus")
	assert.False(t, ok)
	assert.Equal(t, SeverityWarning, s)
	assert.Equal(t, "info", SeverityInfo.String())
}

func TestSeverity_Text(t *testing.T) {
	b, err := json.Marshal(Diagnostic{RuleID: "AG004", Severity: SeverityWarning, Message: "m"})
	assert.NoError(t, err)
	assert.Contains(t, string(b), `"severity":"warning"`)

	var d Diagnostic
	assert.NoError(t, json.Unmarshal(b, &d))
	assert.Equal(t, SeverityWarning, d.Severity)

	var s Severity
	assert.Error(t, s.UnmarshalText([]byte("loud")))
}
