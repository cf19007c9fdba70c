package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/archgate/internal/cli/config"
	"github.com/leapstack-labs/archgate/internal/cli/output"
	"github.com/leapstack-labs/archgate/internal/state"
	"github.com/leapstack-labs/archgate/pkg/conformance"
	"github.com/leapstack-labs/archgate/pkg/graph/manifest"
)

// watchDebounce is how long check --watch waits for changes to settle.
const watchDebounce = 200 * time.Millisecond

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Watch    bool
	NoRecord bool
}

// CheckFailedError is returned when at least one root fails the conformance
// test. It unwraps to the joined errors of every failing root.
type CheckFailedError struct {
	Failed int
	Total  int
	Err    error
}

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("%d of %s failed conformance", e.Failed, output.Plural(e.Total, "root"))
}

func (e *CheckFailedError) Unwrap() error {
	return e.Err
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [root...]",
		Short: "Run the architecture conformance test",
		Long: `Check that every governed root only depends on what its policy allows.

For each root the actual violations (internal dependencies outside the root
and outside its allowed prefixes) must equal the tolerated list exactly.
New violations and tolerated entries that disappeared both fail the root.
Every root is evaluated, and all failures are reported.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check every governed root
  archgate check

  # Check selected roots
  archgate check com.acme.billing com.acme.reporting

  # Re-run whenever the policy or the artifacts change
  archgate check --watch

  # Check a Go module by import path
  archgate check --provider goimports --dir .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if opts.Watch {
				return watchCheck(cmd.Context(), cc, args, opts)
			}
			_, err = runCheck(cmd.Context(), cc, args, opts)
			return err
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when the policy or artifacts change")
	cmd.Flags().BoolVar(&opts.NoRecord, "no-record", false, "Do not record the run in history")

	return cmd
}

// runCheck performs one conformance run, records and renders it.
func runCheck(ctx context.Context, cc *CommandContext, roots []string, opts *CheckOptions) (*conformance.Report, error) {
	doc, err := cc.loadPolicy()
	if err != nil {
		return nil, err
	}
	if err := doc.ValidateShared(); err != nil {
		return nil, err
	}

	provider, cleanup, err := cc.newProvider(ctx, doc)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	checker, err := cc.newChecker(doc, provider)
	if err != nil {
		return nil, err
	}
	report, err := checker.Run(ctx, roots...)
	if err != nil {
		return nil, err
	}

	var runID string
	if cc.Cfg.Record && !opts.NoRecord {
		run, err := cc.recordRun(ctx, report, doc.Path)
		if err != nil {
			cc.Logger.Warn("failed to record run", "error", err)
		} else {
			runID = run.ID
		}
	}

	if err := renderCheck(cc.Renderer, report, runID); err != nil {
		return report, err
	}

	if failed := report.Failed(); len(failed) > 0 {
		return report, &CheckFailedError{Failed: len(failed), Total: len(report.Results), Err: report.Err()}
	}
	return report, nil
}

func (cc *CommandContext) recordRun(ctx context.Context, report *conformance.Report, policyPath string) (*state.Run, error) {
	store, err := cc.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	return store.RecordRun(ctx, report, state.RunMeta{
		Provider:   cc.Cfg.Provider.Type,
		PolicyPath: policyPath,
	})
}

func renderCheck(r *output.Renderer, report *conformance.Report, runID string) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.NewCheckOutput(report, runID))
	case output.ModeMarkdown:
		checkMarkdown(r, report, runID)
	default:
		checkText(r, report, runID)
	}
	return nil
}

// checkText outputs results in styled text format.
func checkText(r *output.Renderer, report *conformance.Report, runID string) {
	styles := r.Styles()

	r.Header(1, "Architecture Conformance")
	for _, res := range report.Results {
		if res.Passed() {
			r.StatusLine(res.Root, "pass", fmt.Sprintf("(%s)", output.Plural(res.Edges, "edge")))
			continue
		}
		r.StatusLine(res.Root, "fail", statusDetail(res))
		for _, name := range res.Added {
			r.Printf("    %s %s\n", styles.Added.Render("+ "+name), styles.Muted.Render(usedBy(res, name)))
		}
		for _, name := range res.Removed {
			r.Printf("    %s %s\n", styles.Removed.Render("- "+name), styles.Muted.Render("tolerated but no longer used"))
		}
		if res.Err != nil && res.Status != conformance.StatusViolation {
			r.Printf("    %s\n", styles.Error.Render(res.Err.Error()))
		}
	}

	r.Println("")
	summary := summaryLine(report)
	if report.Passed() {
		r.Success(summary)
	} else {
		r.Println(styles.Error.Render(styles.FailIcon + " " + summary))
	}
	if runID != "" {
		r.Muted("run " + runID)
	}
}

// checkMarkdown outputs results in markdown format.
func checkMarkdown(r *output.Renderer, report *conformance.Report, runID string) {
	r.Header(1, "Architecture Conformance")

	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, []string{
			res.Root,
			output.Title(string(res.Status)),
			fmt.Sprintf("%d", len(res.Added)),
			fmt.Sprintf("%d", len(res.Removed)),
			fmt.Sprintf("%d", res.Edges),
		})
	}
	r.Table([]string{"Root", "Status", "Added", "Removed", "Edges"}, rows)
	r.Println("")

	for _, res := range report.Failed() {
		r.Header(2, res.Root)
		for _, name := range res.Added {
			r.Printf("- added `%s` (%s)\n", name, usedBy(res, name))
		}
		for _, name := range res.Removed {
			r.Printf("- removed `%s` (tolerated but no longer used)\n", name)
		}
		if res.Err != nil && res.Status != conformance.StatusViolation {
			r.Println(output.FormatKeyValue(output.Title(string(res.Status)), res.Err.Error()))
		}
		r.Println("")
	}

	r.Header(2, "Summary")
	r.Println(output.FormatKeyValue("Result", summaryLine(report)))
	r.Println(output.FormatKeyValue("Duration", report.Duration.Round(time.Millisecond).String()))
	if runID != "" {
		r.Println(output.FormatKeyValue("Run", runID))
	}
}

func statusDetail(res conformance.Result) string {
	switch res.Status {
	case conformance.StatusViolation:
		return fmt.Sprintf("(+%d -%d)", len(res.Added), len(res.Removed))
	default:
		return "(" + strings.ReplaceAll(string(res.Status), "_", " ") + ")"
	}
}

func usedBy(res conformance.Result, target string) string {
	sources := res.Evidence[target]
	if len(sources) == 0 {
		return ""
	}
	return "used by " + strings.Join(sources, ", ")
}

func summaryLine(report *conformance.Report) string {
	total := len(report.Results)
	failed := len(report.Failed())
	if failed == 0 {
		return fmt.Sprintf("%s conform", output.Plural(total, "root"))
	}
	return fmt.Sprintf("%d of %s failed", failed, output.Plural(total, "root"))
}

// watchCheck runs the check, then re-runs it whenever the policy or the
// provider's inputs change, until interrupted.
func watchCheck(ctx context.Context, cc *CommandContext, roots []string, opts *CheckOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	run := func() {
		if _, err := runCheck(ctx, cc, roots, opts); err != nil {
			cc.Renderer.Error(err.Error())
		}
	}
	run()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(cc.Cfg.PolicyPath)); err != nil {
		return fmt.Errorf("watch policy: %w", err)
	}
	dirs := newDirWatcher(watcher, cc.Cfg)
	if cc.Cfg.Provider.Type != config.ProviderSnapshot {
		if err := dirs.add(cc.Cfg.Provider.Dir); err != nil {
			cc.Logger.Error("failed to watch artifact directory", "dir", cc.Cfg.Provider.Dir, "error", err)
		}
	}
	relevant := watchFilter(cc.Cfg)
	cc.Renderer.Muted("watching for changes, press Ctrl-C to stop")

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = dirs.add(event.Name)
				}
			}
			if !relevant(event.Name) {
				continue
			}
			cc.Logger.Debug("file changed", "file", event.Name)
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			cc.Renderer.Println("")
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Error("watcher error", "error", err)
		}
	}
}

// watchFilter reports which changed files should trigger a re-run.
func watchFilter(cfg *config.Config) func(string) bool {
	policyPath := filepath.Clean(cfg.PolicyPath)
	manifestName := cfg.Provider.Manifest
	if manifestName == "" {
		manifestName = manifest.DefaultFileName
	}
	return func(name string) bool {
		if filepath.Clean(name) == policyPath {
			return true
		}
		base := filepath.Base(name)
		switch cfg.Provider.Type {
		case config.ProviderManifest:
			return base == manifestName
		case config.ProviderGoImports, config.ProviderGoPackages:
			return filepath.Ext(base) == ".go" || base == "go.mod"
		default:
			return false
		}
	}
}

// goIgnorePatterns never hold packages of the module being watched.
var goIgnorePatterns = []string{"vendor/", "testdata/", "node_modules/"}

// dirWatcher adds artifact directories to an fsnotify watcher. For the Go
// providers it skips directories excluded by the module's .gitignore.
type dirWatcher struct {
	watcher *fsnotify.Watcher
	root    string
	ignore  *ignore.GitIgnore
}

func newDirWatcher(watcher *fsnotify.Watcher, cfg *config.Config) *dirWatcher {
	return &dirWatcher{
		watcher: watcher,
		root:    cfg.Provider.Dir,
		ignore:  watchIgnore(cfg),
	}
}

// watchIgnore compiles the ignore rules for cfg's provider, or returns nil
// when every directory should be watched.
func watchIgnore(cfg *config.Config) *ignore.GitIgnore {
	switch cfg.Provider.Type {
	case config.ProviderGoImports, config.ProviderGoPackages:
	default:
		return nil
	}
	gitignore := filepath.Join(cfg.Provider.Dir, ".gitignore")
	if _, err := os.Stat(gitignore); err == nil {
		if gi, err := ignore.CompileIgnoreFileAndLines(gitignore, goIgnorePatterns...); err == nil {
			return gi
		}
	}
	return ignore.CompileIgnoreLines(goIgnorePatterns...)
}

// skip reports whether the directory at path should not be watched.
func (w *dirWatcher) skip(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	if w.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return w.ignore.MatchesPath(filepath.ToSlash(rel) + "/")
}

// add watches dir and all of its subdirectories.
func (w *dirWatcher) add(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skip(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
