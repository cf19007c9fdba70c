package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/archgate/internal/cli/output"
	"github.com/leapstack-labs/archgate/pkg/core"
	"github.com/leapstack-labs/archgate/pkg/policy"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Path     string // Policy file, overrides the configured one
	Severity string // Minimum severity: error, warning, info
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [policy]",
		Short: "Validate and lint the policy document",
		Long: `Analyze the policy document for mistakes that make a conformance run
meaningless or misleading: tolerated entries that are external or already
allowed, duplicate or blank entries, redundant allowed prefixes and cycles
between roots.

Errors prevent the policy from being checked and fail the command.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Lint the configured policy
  archgate lint

  # Lint another file
  archgate lint policies/legacy.yaml

  # Only report errors
  archgate lint --severity error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Severity, "severity", "info", "Minimum severity: error, warning, info")

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	threshold, ok := core.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("unknown severity %q (available: error, warning, info)", opts.Severity)
	}

	var doc *policy.Document
	if opts.Path != "" {
		doc, err = policy.Load(opts.Path)
	} else {
		doc, err = cc.loadPolicy()
	}
	if err != nil {
		return err
	}

	diags := filterBySeverity(policy.Lint(doc), threshold)
	out := lintOutput(doc.Path, diags)

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	default:
		lintText(r, out)
	}

	if out.Errors > 0 {
		return fmt.Errorf("policy has %s", output.Plural(out.Errors, "error"))
	}
	return nil
}

// filterBySeverity keeps diagnostics at least as severe as threshold.
func filterBySeverity(diags []core.Diagnostic, threshold core.Severity) []core.Diagnostic {
	out := make([]core.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Severity <= threshold {
			out = append(out, d)
		}
	}
	return out
}

func lintOutput(path string, diags []core.Diagnostic) output.LintOutput {
	out := output.LintOutput{Path: path, Diagnostics: diags}
	for _, d := range diags {
		switch d.Severity {
		case core.SeverityError:
			out.Errors++
		case core.SeverityWarning:
			out.Warnings++
		default:
			out.Infos++
		}
	}
	return out
}

// lintText outputs diagnostics as text or markdown.
func lintText(r *output.Renderer, out output.LintOutput) {
	r.Header(1, "Policy Lint")
	if len(out.Diagnostics) == 0 {
		r.Success(fmt.Sprintf("%s: no issues", out.Path))
		return
	}

	rows := make([][]string, 0, len(out.Diagnostics))
	for _, d := range out.Diagnostics {
		root := d.Root
		if root == "" {
			root = "-"
		}
		rows = append(rows, []string{d.Severity.String(), d.RuleID, root, d.Message})
	}
	r.Table([]string{"Severity", "Rule", "Root", "Message"}, rows)
	r.Println("")

	summary := fmt.Sprintf("%s, %s, %d info",
		output.Plural(out.Errors, "error"), output.Plural(out.Warnings, "warning"), out.Infos)
	if out.Errors > 0 {
		r.Error(summary)
	} else {
		r.Warning(summary)
	}
}
