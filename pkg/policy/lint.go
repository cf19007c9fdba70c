package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/archgate/internal/dag"
	"github.com/leapstack-labs/archgate/pkg/core"
)

// Rule IDs reported by Lint.
const (
	RuleNoNamespace       = "AG001"
	RuleNoRoots           = "AG002"
	RuleToleratedExternal = "AG003"
	RuleToleratedAllowed  = "AG004"
	RuleDuplicateEntry    = "AG005"
	RuleRedundantAllowed  = "AG006"
	RuleAllowedCycle      = "AG007"
	RuleAllowedExternal   = "AG008"
	RuleBlankEntry        = "AG009"
	RuleRootExternal      = "AG010"
)

type finding struct {
	diag core.Diagnostic
	err  error // set when the finding prevents evaluation
}

func configFinding(rule, root, reason string) finding {
	return finding{
		diag: core.Diagnostic{RuleID: rule, Severity: core.SeverityError, Root: root, Message: reason},
		err:  &core.ConfigurationError{Root: root, Reason: reason},
	}
}

func note(rule string, sev core.Severity, root, format string, args ...any) finding {
	return finding{diag: core.Diagnostic{
		RuleID:   rule,
		Severity: sev,
		Root:     root,
		Message:  fmt.Sprintf(format, args...),
	}}
}

// Lint checks the document and returns its diagnostics ordered by severity,
// root and rule.
func Lint(d *Document) []core.Diagnostic {
	fs := d.findings()
	out := make([]core.Diagnostic, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.diag)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity < out[j].Severity
		}
		if out[i].Root != out[j].Root {
			return out[i].Root < out[j].Root
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

func (d *Document) findings() []finding {
	var fs []finding
	delim := d.Delimiter()
	cls := d.Classifier()
	hasNamespace := len(cls.Roots()) > 0

	if !hasNamespace {
		fs = append(fs, configFinding(RuleNoNamespace, "", "namespace.internal lists no organisation roots"))
	}
	if len(d.Roots) == 0 {
		fs = append(fs, configFinding(RuleNoRoots, "", "policy governs no roots"))
	}

	for _, root := range d.Roots.Roots() {
		rp := d.Roots[root]

		if strings.TrimSpace(root) == "" {
			fs = append(fs, configFinding(RuleBlankEntry, root, "blank root name"))
			continue
		}
		if hasNamespace && !cls.IsInternal(root) {
			fs = append(fs, note(RuleRootExternal, core.SeverityWarning, root,
				"root is outside the internal namespace"))
		}

		for _, list := range []struct {
			key   string
			items []string
		}{{"allowed", rp.Allowed}, {"tolerated", rp.Tolerated}} {
			seen := make(map[string]bool, len(list.items))
			for _, item := range list.items {
				if strings.TrimSpace(item) == "" {
					fs = append(fs, configFinding(RuleBlankEntry, root,
						fmt.Sprintf("blank entry in %s", list.key)))
					continue
				}
				if seen[item] {
					fs = append(fs, note(RuleDuplicateEntry, core.SeverityWarning, root,
						"%s lists %s more than once", list.key, item))
				}
				seen[item] = true
			}
		}

		for _, a := range rp.Allowed {
			if strings.TrimSpace(a) == "" {
				continue
			}
			switch {
			case hasNamespace && !cls.IsInternal(a):
				fs = append(fs, note(RuleAllowedExternal, core.SeverityInfo, root,
					"allowed prefix %s is external and has no effect", a))
			case core.IsUnder(a, root, delim):
				fs = append(fs, note(RuleRedundantAllowed, core.SeverityInfo, root,
					"allowed prefix %s is already covered by the root itself", a))
			default:
				for _, other := range rp.Allowed {
					if other != a && core.IsUnder(a, other, delim) {
						fs = append(fs, note(RuleRedundantAllowed, core.SeverityInfo, root,
							"allowed prefix %s is already covered by %s", a, other))
						break
					}
				}
			}
		}

		for _, tol := range rp.Tolerated {
			if strings.TrimSpace(tol) == "" {
				continue
			}
			if hasNamespace && !cls.IsInternal(tol) {
				fs = append(fs, configFinding(RuleToleratedExternal, root,
					fmt.Sprintf("tolerated entry %s is outside the internal namespace", tol)))
				continue
			}
			if core.IsUnder(tol, root, delim) {
				fs = append(fs, note(RuleToleratedAllowed, core.SeverityWarning, root,
					"tolerated entry %s is under the root and can never be a violation", tol))
				continue
			}
			if core.IsUnderAny(tol, rp.Allowed, delim) {
				fs = append(fs, note(RuleToleratedAllowed, core.SeverityWarning, root,
					"tolerated entry %s is allowed and can never be a violation", tol))
			}
		}
	}

	for _, cycle := range d.LayerGraph().Cycles() {
		fs = append(fs, note(RuleAllowedCycle, core.SeverityWarning, cycle[0],
			"allowed dependencies form a cycle between %s", strings.Join(cycle, ", ")))
	}
	return fs
}

// LayerGraph builds the graph of governed roots. A root depends on another
// governed root when one of its allowed prefixes reaches into it. Nested
// roots are not linked to each other.
func (d *Document) LayerGraph() *dag.Graph {
	delim := d.Delimiter()
	g := dag.NewGraph()
	roots := d.Roots.Roots()
	for _, r := range roots {
		g.AddNode(r, d.Roots[r].Note)
	}

	for _, r := range roots {
		for _, a := range d.Roots[r].Allowed {
			if a == "" {
				continue
			}
			for _, other := range roots {
				if other == r || core.IsUnder(other, r, delim) || core.IsUnder(r, other, delim) {
					continue
				}
				if core.IsUnder(other, a, delim) || core.IsUnder(a, other, delim) {
					_ = g.AddEdge(other, r)
				}
			}
		}
	}
	return g
}
