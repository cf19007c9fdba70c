package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/archgate/internal/cli/commands"
	"github.com/leapstack-labs/archgate/pkg/core"
)

func TestExitCode(t *testing.T) {
	failed := &commands.CheckFailedError{
		Failed: 1,
		Total:  3,
		Err:    &core.PolicyViolation{Root: "com.acme.core", Added: []string{"com.acme.billing"}},
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"conformance failure", failed, exitFailed},
		{"wrapped conformance failure", fmt.Errorf("check: %w", failed), exitFailed},
		{"configuration error", &core.ConfigurationError{Root: "com.acme.ghost", Reason: "no policy entry"}, exitMisconfigured},
		{"other error", errors.New("boom"), exitMisconfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
