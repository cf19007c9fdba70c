package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/archgate/internal/cli/output"
	"github.com/leapstack-labs/archgate/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	Prune int // keep this many runs; negative disables pruning
}

// runDetail is the JSON output of history <run-id>.
type runDetail struct {
	Run     *state.Run         `json:"run"`
	Results []state.RootResult `json:"results"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded conformance runs",
		Long: `List the conformance runs recorded by 'archgate check', or show the
per-root results of one run. A run can be selected by a unique ID prefix
or by "latest".`,
		Example: `  # List recent runs
  archgate history

  # Show the newest run
  archgate history latest

  # Keep only the ten newest runs
  archgate history --prune 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			r := cc.Renderer
			switch {
			case opts.Prune >= 0:
				n, err := store.PruneRuns(cmd.Context(), opts.Prune)
				if err != nil {
					return err
				}
				r.Success(fmt.Sprintf("pruned %s", output.Plural(int(n), "run")))
				return nil

			case len(args) == 1:
				run, results, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if r.EffectiveMode() == output.ModeJSON {
					return r.JSON(runDetail{Run: run, Results: results})
				}
				historyDetail(r, run, results)
				return nil

			default:
				runs, err := store.ListRuns(cmd.Context(), opts.Limit)
				if err != nil {
					return err
				}
				if r.EffectiveMode() == output.ModeJSON {
					return r.JSON(runs)
				}
				historyList(r, runs)
				return nil
			}
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().IntVar(&opts.Prune, "prune", -1, "Delete all but the newest N runs")

	return cmd
}

func historyList(r *output.Renderer, runs []*state.Run) {
	r.Header(1, "Run History")
	if len(runs) == 0 {
		r.Muted("no runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			passFail(run.Passed),
			fmt.Sprintf("%d/%d", run.RootCount-run.FailedCount, run.RootCount),
			run.Provider,
		})
	}
	r.Table([]string{"Run", "Started", "Result", "Passed", "Provider"}, rows)
}

func historyDetail(r *output.Renderer, run *state.Run, results []state.RootResult) {
	r.Header(1, "Run "+run.ID)
	r.Println(output.FormatKeyValue("Started", run.StartedAt.Local().Format(time.DateTime)))
	r.Println(output.FormatKeyValue("Duration", run.Duration.String()))
	r.Println(output.FormatKeyValue("Result", passFail(run.Passed)))
	r.Println(output.FormatKeyValue("Provider", run.Provider))
	if run.PolicyPath != "" {
		r.Println(output.FormatKeyValue("Policy", run.PolicyPath))
	}
	r.Println("")

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		detail := res.Error
		if len(res.Added) > 0 || len(res.Removed) > 0 {
			var parts []string
			for _, a := range res.Added {
				parts = append(parts, "+"+a)
			}
			for _, rm := range res.Removed {
				parts = append(parts, "-"+rm)
			}
			detail = strings.Join(parts, " ")
		}
		rows = append(rows, []string{res.Root, output.Title(string(res.Status)), fmt.Sprintf("%d", res.Edges), detail})
	}
	r.Table([]string{"Root", "Status", "Edges", "Detail"}, rows)
}

func passFail(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
