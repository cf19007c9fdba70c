package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/archgate/internal/cli/config"
	"github.com/leapstack-labs/archgate/internal/cli/output"
	"github.com/leapstack-labs/archgate/internal/state"
	"github.com/leapstack-labs/archgate/pkg/conformance"
	"github.com/leapstack-labs/archgate/pkg/core"
	"github.com/leapstack-labs/archgate/pkg/graph"
	"github.com/leapstack-labs/archgate/pkg/graph/goimports"
	"github.com/leapstack-labs/archgate/pkg/graph/gopackages"
	"github.com/leapstack-labs/archgate/pkg/graph/manifest"
	"github.com/leapstack-labs/archgate/pkg/policy"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the config loaded by the root command.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	mode := output.Mode(cfg.OutputFormat)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// getConfig returns the config stored by the root command, loading it from
// the working directory when the command runs on its own.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

// loadPolicy reads the configured policy document.
func (cc *CommandContext) loadPolicy() (*policy.Document, error) {
	if err := cc.Cfg.ValidatePolicy(); err != nil {
		return nil, err
	}
	doc, err := policy.Load(cc.Cfg.PolicyPath)
	if err != nil {
		return nil, err
	}
	cc.Logger.Debug("policy loaded", "path", doc.Path, "roots", len(doc.Roots))
	return doc, nil
}

// newProvider builds the configured dependency graph provider. The returned
// cleanup func must be called once the provider is no longer used.
func (cc *CommandContext) newProvider(ctx context.Context, doc *policy.Document) (graph.Provider, func(), error) {
	pc := cc.Cfg.Provider
	noop := func() {}

	switch pc.Type {
	case config.ProviderManifest:
		p := manifest.New(pc.Dir, doc.Delimiter())
		if pc.Manifest != "" {
			p.FileName = pc.Manifest
		}
		return p, noop, nil

	case config.ProviderGoImports, config.ProviderGoPackages:
		if doc.Delimiter() != goimports.Delimiter {
			return nil, nil, &core.ConfigurationError{Reason: fmt.Sprintf(
				"provider %s names packages by import path; set namespace.delimiter to %q",
				pc.Type, goimports.Delimiter)}
		}
		if pc.Type == config.ProviderGoImports {
			p := goimports.New(pc.Dir)
			p.IncludeTests = pc.IncludeTests
			return p, noop, nil
		}
		p := gopackages.New(pc.Dir)
		p.IncludeTests = pc.IncludeTests
		p.BuildFlags = pc.BuildFlags
		return p, noop, nil

	case config.ProviderSnapshot:
		store, err := cc.openStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return state.NewSnapshotProvider(store, pc.Snapshot), func() { _ = store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider type %q", pc.Type)
	}
}

// newChecker wires the document and provider into a conformance checker.
func (cc *CommandContext) newChecker(doc *policy.Document, provider graph.Provider) (*conformance.Checker, error) {
	return conformance.New(conformance.Config{
		Policy:      doc.Roots,
		Classifier:  doc.Classifier(),
		Provider:    provider,
		Logger:      cc.Logger,
		Concurrency: cc.Cfg.Concurrency,
	})
}

// openStore opens the state database, creating its directory if needed.
func (cc *CommandContext) openStore(ctx context.Context) (*state.SQLiteStore, error) {
	path := cc.Cfg.StatePath
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}
	store := state.NewSQLiteStore(cc.Logger)
	if err := store.Open(ctx, path); err != nil {
		return nil, err
	}
	return store, nil
}
