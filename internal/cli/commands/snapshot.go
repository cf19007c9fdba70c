package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/archgate/internal/cli/config"
	"github.com/leapstack-labs/archgate/internal/cli/output"
	"github.com/leapstack-labs/archgate/internal/state"
	"github.com/leapstack-labs/archgate/pkg/core"
)

// NewSnapshotCommand creates the snapshot command and its list subcommand.
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the dependency edges of every governed root",
		Long: `Extract the edges of every governed root with the configured provider
and store them in the state database.

A snapshot can later be checked without the artifacts being present by
selecting the snapshot provider. Extraction failures abort the snapshot;
nothing partial is stored.`,
		Example: `  # Capture a snapshot from the artifact tree
  archgate snapshot

  # Check against the newest snapshot
  archgate check --provider snapshot

  # List stored snapshots
  archgate snapshot list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if cc.Cfg.Provider.Type == config.ProviderSnapshot {
				return &core.ConfigurationError{Reason: "cannot take a snapshot from the snapshot provider"}
			}

			ctx := cmd.Context()
			doc, err := cc.loadPolicy()
			if err != nil {
				return err
			}
			provider, cleanup, err := cc.newProvider(ctx, doc)
			if err != nil {
				return err
			}
			defer cleanup()

			var edges []core.Edge
			for _, root := range doc.Roots.Roots() {
				rootEdges, err := provider.EdgesUnder(ctx, root)
				if err != nil {
					return err
				}
				cc.Logger.Debug("extracted", "root", root, "edges", len(rootEdges))
				edges = append(edges, rootEdges...)
			}

			store, err := cc.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := store.SaveSnapshot(ctx, state.SnapshotMeta{
				Provider:  cc.Cfg.Provider.Type,
				Delimiter: doc.Delimiter(),
			}, edges)
			if err != nil {
				return err
			}

			r := cc.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(snap)
			}
			r.Success(fmt.Sprintf("snapshot %s saved (%s from %s)",
				snap.ID, output.Plural(snap.EdgeCount, "edge"), output.Plural(len(doc.Roots), "root")))
			return nil
		},
	}

	cmd.AddCommand(newSnapshotListCommand())
	return cmd
}

func newSnapshotListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snaps, err := store.ListSnapshots(cmd.Context(), limit)
			if err != nil {
				return err
			}

			r := cc.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(snaps)
			}
			if len(snaps) == 0 {
				r.Muted("no snapshots")
				return nil
			}
			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{
					s.ID,
					s.CreatedAt.Local().Format(time.DateTime),
					s.Provider,
					fmt.Sprintf("%d", s.EdgeCount),
				})
			}
			r.Table([]string{"ID", "Created", "Provider", "Edges"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of snapshots to list")
	return cmd
}
