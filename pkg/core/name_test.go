package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnder(t *testing.T) {
	tests := []struct {
		name   string
		pkg    string
		prefix string
		delim  string
		want   bool
	}{
		{"equal", "a.b", "a.b", ".", true},
		{"child", "a.b.c", "a.b", ".", true},
		{"grandchild", "a.b.c.d", "a.b", ".", true},
		{"sibling sharing text", "a.bc", "a.b", ".", false},
		{"point vs pointless", "com.x.pointless", "com.x.point", ".", false},
		{"parent is not under child", "a", "a.b", ".", false},
		{"empty prefix", "a.b", "", ".", false},
		{"default delimiter", "a.b.c", "a.b", "", true},
		{"slash delimiter", "example.com/app/internal/db", "example.com/app/internal", "/", true},
		{"slash delimiter boundary", "example.com/app/internalx", "example.com/app/internal", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnder(tt.pkg, tt.prefix, tt.delim))
		})
	}
}

func TestIsUnderAny(t *testing.T) {
	prefixes := []string{"org.core", "org.util"}
	assert.True(t, IsUnderAny("org.util.strings", prefixes, "."))
	assert.False(t, IsUnderAny("org.utility", prefixes, "."))
	assert.False(t, IsUnderAny("org.web", nil, "."))
}

func TestParentAndSegments(t *testing.T) {
	assert.Equal(t, "a.b", Parent("a.b.c", "."))
	assert.Equal(t, "", Parent("a", "."))
	assert.Equal(t, []string{"a", "b", "c"}, Segments("a.b.c", "."))
	assert.Nil(t, Segments("", "."))
}

func TestPathMapping(t *testing.T) {
	p := ToPath("classes", "com.acme.billing", ".")
	assert.Equal(t, filepath.Join("classes", "com", "acme", "billing"), p)

	rel, err := filepath.Rel("classes", p)
	assert.NoError(t, err)
	assert.Equal(t, "com.acme.billing", FromPath(rel, "."))
	assert.Equal(t, "", FromPath(".", "."))
}
