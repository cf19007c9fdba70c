package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/archgate/internal/cli/output"
	"github.com/leapstack-labs/archgate/pkg/core"
	"github.com/leapstack-labs/archgate/pkg/violation"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	var maxSources int

	cmd := &cobra.Command{
		Use:   "explain <root>",
		Short: "Show the violations of a root and where they come from",
		Long: `List every internal dependency of a governed root that its allowed
prefixes do not cover, with the packages under the root that reference it.

Targets are ordered by how many packages reference them, so the cheapest
violations to remove come last. Tolerated entries that are no longer
referenced are listed as stale.`,
		Example: `  # Explain a root
  archgate explain com.acme.billing

  # Show every referencing package
  archgate explain com.acme.billing --sources 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			root := args[0]
			doc, err := cc.loadPolicy()
			if err != nil {
				return err
			}
			rp, ok := doc.Roots.Lookup(root)
			if !ok {
				return &core.ConfigurationError{Root: root, Reason: "no policy entry"}
			}

			provider, cleanup, err := cc.newProvider(cmd.Context(), doc)
			if err != nil {
				return err
			}
			defer cleanup()

			edges, err := provider.EdgesUnder(cmd.Context(), root)
			if err != nil {
				return err
			}

			calc := violation.Calculate(root, rp, edges, doc.Classifier())
			out := explainOutput(root, rp, calc)

			r := cc.Renderer
			switch r.EffectiveMode() {
			case output.ModeJSON:
				return r.JSON(out)
			default:
				explainText(r, out, rp.Note, maxSources)
				return nil
			}
		},
	}

	cmd.Flags().IntVar(&maxSources, "sources", 3, "Referencing packages shown per target (0 for all)")

	return cmd
}

func explainOutput(root string, rp core.RootPolicy, calc violation.Result) output.ExplainOutput {
	tolerated := rp.Expected()
	out := output.ExplainOutput{
		Root:    root,
		Allowed: append([]string{}, rp.Allowed...),
		Targets: make([]output.ExplainTarget, 0, calc.Violations.Len()),
		Stale:   []string{},
	}
	for _, t := range calc.Targets() {
		out.Targets = append(out.Targets, output.ExplainTarget{
			Package:   t,
			Tolerated: tolerated.Has(t),
			Sources:   calc.Evidence[t],
		})
	}
	for _, t := range tolerated.Sorted() {
		if !calc.Violations.Has(t) {
			out.Stale = append(out.Stale, t)
		}
	}
	return out
}

// explainText outputs the explanation as text or markdown.
func explainText(r *output.Renderer, out output.ExplainOutput, note string, maxSources int) {
	r.Header(1, out.Root)
	if note != "" {
		r.Muted(note)
		r.Println("")
	}

	allowed := "(nothing outside the root)"
	if len(out.Allowed) > 0 {
		allowed = strings.Join(out.Allowed, ", ")
	}
	r.Println(output.FormatKeyValue("Allowed", allowed))
	r.Println("")

	if len(out.Targets) == 0 {
		r.Success("no violations")
	} else {
		rows := make([][]string, 0, len(out.Targets))
		for _, t := range out.Targets {
			status := "new"
			if t.Tolerated {
				status = "tolerated"
			}
			rows = append(rows, []string{t.Package, status, summarizeSources(t.Sources, maxSources)})
		}
		r.Header(2, "Violations")
		r.Table([]string{"Package", "Status", "Used by"}, rows)
	}

	if len(out.Stale) > 0 {
		r.Println("")
		r.Header(2, "Stale tolerated entries")
		for _, s := range out.Stale {
			r.Printf("- %s\n", s)
		}
	}
}

// summarizeSources joins up to limit sources, noting how many were left out.
func summarizeSources(sources []string, limit int) string {
	if limit <= 0 || len(sources) <= limit {
		return strings.Join(sources, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(sources[:limit], ", "), len(sources)-limit)
}
