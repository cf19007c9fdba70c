// Package archtest runs a conformance check as part of go test.
//
// A typical governance test loads the policy next to the code and fails one
// subtest per root whose violations differ from what it tolerates:
//
//	func TestArchitecture(t *testing.T) {
//		archtest.RunFile(t, "policy.yaml", goimports.New("."))
//	}
package archtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leapstack-labs/archgate/internal/testutil"
	"github.com/leapstack-labs/archgate/pkg/conformance"
	"github.com/leapstack-labs/archgate/pkg/graph"
	"github.com/leapstack-labs/archgate/pkg/policy"
)

// Run checks every governed root of the checker's policy in its own subtest.
func Run(t *testing.T, c *conformance.Checker) {
	t.Helper()

	roots := c.Policy().Roots()
	if len(roots) == 0 {
		t.Fatal("policy governs no roots")
	}
	for _, root := range roots {
		t.Run(root, func(t *testing.T) {
			res := c.CheckRoot(t.Context(), root)
			if !res.Passed() {
				t.Error(Message(res))
			}
		})
	}
}

// RunFile loads the policy document at path and checks it against provider.
func RunFile(t *testing.T, path string, provider graph.Provider) {
	t.Helper()

	doc, err := policy.Load(path)
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if err := doc.ValidateShared(); err != nil {
		t.Fatalf("invalid policy %s:\n%v", path, err)
	}

	c, err := conformance.New(conformance.Config{
		Policy:     doc.Roots,
		Classifier: doc.Classifier(),
		Provider:   provider,
		Logger:     testutil.NewTestLogger(t),
	})
	if err != nil {
		t.Fatalf("create checker: %v", err)
	}
	Run(t, c)
}

// Message renders a failing result the way a reviewer needs to read it:
// new violations with their sources, then tolerated entries that no longer occur.
func Message(res conformance.Result) string {
	if res.Status != conformance.StatusViolation {
		return fmt.Sprintf("%s: %s: %v", res.Root, res.Status, res.Err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s does not match its tolerated violations", res.Root)
	if len(res.Added) > 0 {
		b.WriteString("\nnew violations (fix them or add them to tolerated):")
		for _, name := range res.Added {
			fmt.Fprintf(&b, "\n  + %s", name)
			for _, src := range res.Evidence[name] {
				fmt.Fprintf(&b, "\n      used by %s", src)
			}
		}
	}
	if len(res.Removed) > 0 {
		b.WriteString("\nno longer violated (remove them from tolerated):")
		for _, name := range res.Removed {
			fmt.Fprintf(&b, "\n  - %s", name)
		}
	}
	return b.String()
}
