package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/archgate/pkg/core"
)

func TestStatic_EdgesUnder(t *testing.T) {
	p := NewStatic(".",
		core.Edge{Source: "billing.core", Target: "reporting.invoice"},
		core.Edge{Source: "billing", Target: "billing.core"},
		core.Edge{Source: "billingsvc", Target: "audit"},
		core.Edge{Source: "reporting", Target: "billing"},
	)

	edges, err := p.EdgesUnder(context.Background(), "billing")
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{
		{Source: "billing", Target: "billing.core"},
		{Source: "billing.core", Target: "reporting.invoice"},
	}, edges)
}

func TestStatic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatic(".").EdgesUnder(ctx, "billing")
	var ee *core.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProviderFunc(t *testing.T) {
	var called string
	p := ProviderFunc(func(_ context.Context, root string) ([]core.Edge, error) {
		called = root
		return nil, nil
	})

	_, err := p.EdgesUnder(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, "web", called)
}
