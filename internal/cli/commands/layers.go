package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/archgate/internal/cli/output"
	"github.com/leapstack-labs/archgate/internal/dag"
)

// NewLayersCommand creates the layers command.
func NewLayersCommand() *cobra.Command {
	var focus string

	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Show governed roots grouped into layers",
		Long: `Display the governed roots as a layered graph built from their allowed
prefixes. A root depends on another root when one of its allowed prefixes
reaches into it. Layer 0 holds the roots that depend on no other root.

Cycles between roots make layering impossible and are reported instead.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show every layer
  archgate layers

  # Only the roots connected to one root
  archgate layers --focus com.acme.billing

  # Output as JSON
  archgate layers --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			doc, err := cc.loadPolicy()
			if err != nil {
				return err
			}

			g := doc.LayerGraph()
			if focus != "" {
				if _, ok := g.Node(focus); !ok {
					return fmt.Errorf("%s is not a governed root", focus)
				}
				ids := append(g.Upstream(focus), g.Downstream(focus)...)
				g = g.Subgraph(append(ids, focus))
			}

			r := cc.Renderer
			layers, err := g.Layers()
			if err != nil {
				cycles := g.Cycles()
				renderCycles(r, cycles)
				return fmt.Errorf("allowed dependencies between roots form %s", output.Plural(len(cycles), "cycle"))
			}

			switch r.EffectiveMode() {
			case output.ModeJSON:
				return r.JSON(layersOutput(g, layers))
			case output.ModeMarkdown:
				layersMarkdown(r, g, layers)
			default:
				layersText(r, g, layers)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "Only show roots connected to this root")

	return cmd
}

// layersText outputs layers in styled text format.
func layersText(r *output.Renderer, g *dag.Graph, layers [][]string) {
	styles := r.Styles()

	r.Header(1, "Layers")
	for i, layer := range layers {
		r.Println(styles.Header2.Render(fmt.Sprintf("Layer %d:", i)))
		for _, root := range layer {
			line := "  " + styles.RootPath.Render(root)
			if n, ok := g.Node(root); ok && n.Note != "" {
				line += " " + styles.Muted.Render("("+n.Note+")")
			}
			r.Println(line)
			if deps := g.Dependencies(root); len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if users := g.Dependents(root); len(users) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(users, ", "))
			}
		}
		r.Println("")
	}

	r.Muted(fmt.Sprintf("Total: %s, %d dependencies", output.Plural(g.NodeCount(), "root"), g.EdgeCount()))
}

// layersMarkdown outputs layers in markdown format.
func layersMarkdown(r *output.Renderer, g *dag.Graph, layers [][]string) {
	r.Header(1, "Layers")

	for i, layer := range layers {
		name := fmt.Sprintf("Layer %d", i)
		if i == 0 {
			name = "Layer 0 (Foundations)"
		}
		r.Header(2, name)
		for _, root := range layer {
			r.Printf("- %s\n", root)
			if deps := g.Dependencies(root); len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if users := g.Dependents(root); len(users) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(users, ", "))
			}
		}
		r.Println("")
	}

	r.Header(2, "Summary")
	r.Println(output.FormatKeyValue("Total Roots", fmt.Sprintf("%d", g.NodeCount())))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", g.EdgeCount())))
	r.Println(output.FormatKeyValue("Foundations", strings.Join(g.Foundations(), ", ")))
	if tops := g.Tops(); len(tops) > 0 {
		r.Println(output.FormatKeyValue("Unused By Other Roots", strings.Join(tops, ", ")))
	}
}

func layersOutput(g *dag.Graph, layers [][]string) output.LayersOutput {
	out := output.LayersOutput{
		Layers:     make([][]output.LayerNode, 0, len(layers)),
		TotalRoots: g.NodeCount(),
		TotalEdges: g.EdgeCount(),
	}
	for _, layer := range layers {
		nodes := make([]output.LayerNode, 0, len(layer))
		for _, root := range layer {
			n := output.LayerNode{
				Root:      root,
				DependsOn: g.Dependencies(root),
				UsedBy:    g.Dependents(root),
			}
			if node, ok := g.Node(root); ok {
				n.Note = node.Note
			}
			nodes = append(nodes, n)
		}
		out.Layers = append(out.Layers, nodes)
	}
	return out
}

func renderCycles(r *output.Renderer, cycles [][]string) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(output.LayersOutput{Layers: [][]output.LayerNode{}, Cycles: cycles})
		return
	}
	r.Header(1, "Cycles")
	for _, c := range cycles {
		path := slices.Clone(c)
		path = append(path, c[0])
		r.Println(r.Styles().Error.Render(r.Styles().FailIcon) + " " + strings.Join(path, " -> "))
	}
}
