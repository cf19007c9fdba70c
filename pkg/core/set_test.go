package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_Basics(t *testing.T) {
	s := NewSet("b", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, []string{"a", "b"}, s.Sorted())

	s.Add("c")
	assert.Equal(t, []string{"a", "b", "c"}, s.Sorted())
}

func TestSet_Equal(t *testing.T) {
	assert.True(t, NewSet().Equal(NewSet()))
	assert.True(t, NewSet("x", "y").Equal(NewSet("y", "x")))
	assert.False(t, NewSet("x").Equal(NewSet("x", "y")))
	assert.False(t, NewSet("x", "z").Equal(NewSet("x", "y")))
}

func TestSet_Diff(t *testing.T) {
	tests := []struct {
		name        string
		actual      Set
		expected    Set
		wantAdded   []string
		wantRemoved []string
	}{
		{
			name:     "identical",
			actual:   NewSet("reporting.invoice"),
			expected: NewSet("reporting.invoice"),
		},
		{
			name:      "regression",
			actual:    NewSet("reporting.invoice", "audit.trail"),
			expected:  NewSet("reporting.invoice"),
			wantAdded: []string{"audit.trail"},
		},
		{
			name:        "stale tolerance",
			actual:      NewSet(),
			expected:    NewSet("reporting.invoice"),
			wantRemoved: []string{"reporting.invoice"},
		},
		{
			name:        "both directions",
			actual:      NewSet("b", "c"),
			expected:    NewSet("a", "b"),
			wantAdded:   []string{"c"},
			wantRemoved: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := tt.actual.Diff(tt.expected)
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestPolicy_Roots(t *testing.T) {
	p := Policy{
		"org.web":  {Allowed: []string{"org.core"}},
		"org.core": {},
	}
	assert.Equal(t, []string{"org.core", "org.web"}, p.Roots())

	rp, ok := p.Lookup("org.web")
	assert.True(t, ok)
	assert.Equal(t, []string{"org.core"}, rp.Allowed)
	assert.Equal(t, 0, rp.Expected().Len())

	_, ok = p.Lookup("org.missing")
	assert.False(t, ok)
}

func TestEdgesUnder(t *testing.T) {
	edges := []Edge{
		{Source: "billing.core", Target: "util"},
		{Source: "billingx", Target: "util"},
		{Source: "billing", Target: "core"},
	}
	got := EdgesUnder(edges, "billing", ".")
	assert.Len(t, got, 2)

	SortEdges(got)
	assert.Equal(t, "billing", got[0].Source)
	assert.Equal(t, "billing.core", got[1].Source)
}
