package conformance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/archgate/pkg/core"
	"github.com/leapstack-labs/archgate/pkg/graph"
	"github.com/leapstack-labs/archgate/pkg/namespace"
	"github.com/leapstack-labs/archgate/pkg/violation"
)

// Config holds the inputs of a Checker.
type Config struct {
	Policy     core.Policy
	Classifier *namespace.Classifier
	Provider   graph.Provider
	Logger     *slog.Logger
	// Concurrency bounds how many roots are evaluated at once. Values below 1 mean 1.
	Concurrency int
}

// Checker runs the conformance test. It holds no state between runs.
type Checker struct {
	policy      core.Policy
	classifier  *namespace.Classifier
	provider    graph.Provider
	logger      *slog.Logger
	concurrency int
}

// New creates a Checker.
func New(cfg Config) (*Checker, error) {
	if cfg.Provider == nil {
		return nil, &core.ConfigurationError{Reason: "no dependency graph provider configured"}
	}
	if cfg.Classifier == nil {
		return nil, &core.ConfigurationError{Reason: "no internal namespace configured"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Checker{
		policy:      cfg.Policy,
		classifier:  cfg.Classifier,
		provider:    cfg.Provider,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Policy returns the policy table being enforced.
func (c *Checker) Policy() core.Policy {
	return c.policy
}

// Run checks the given roots, or every governed root when none are given.
// It always evaluates every root; failures are reported in the Report.
func (c *Checker) Run(ctx context.Context, roots ...string) (*Report, error) {
	if len(roots) == 0 {
		roots = c.policy.Roots()
	}
	if len(roots) == 0 {
		return nil, &core.ConfigurationError{Reason: "policy governs no roots"}
	}

	report := &Report{
		Results:   make([]Result, len(roots)),
		StartedAt: time.Now().UTC(),
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, root := range roots {
		g.Go(func() error {
			report.Results[i] = c.CheckRoot(ctx, root)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.StartedAt)
	c.logger.Info("conformance run finished",
		"roots", len(roots),
		"failed", len(report.Failed()),
		"duration", report.Duration)

	return report, nil
}

// CheckRoot evaluates a single governed root.
func (c *Checker) CheckRoot(ctx context.Context, root string) (res Result) {
	start := time.Now()
	res = Result{Root: root}
	defer func() { res.Duration = time.Since(start) }()

	rp, ok := c.policy.Lookup(root)
	if !ok {
		return c.fail(res, StatusConfigError, &core.ConfigurationError{Root: root, Reason: "no policy entry"})
	}
	for _, a := range rp.Allowed {
		if strings.TrimSpace(a) == "" {
			return c.fail(res, StatusConfigError, &core.ConfigurationError{Root: root, Reason: "blank entry in allowed"})
		}
	}
	for _, t := range rp.Tolerated {
		if strings.TrimSpace(t) == "" {
			return c.fail(res, StatusConfigError, &core.ConfigurationError{Root: root, Reason: "blank entry in tolerated"})
		}
		if !c.classifier.IsInternal(t) {
			return c.fail(res, StatusConfigError, &core.ConfigurationError{
				Root:   root,
				Reason: fmt.Sprintf("tolerated entry %s is external and can never be a violation", t),
			})
		}
	}
	res.Expected = rp.Expected().Sorted()

	c.logger.Debug("extracting dependencies", "root", root)
	edges, err := c.provider.EdgesUnder(ctx, root)
	if err != nil {
		var ee *core.ExtractionError
		if !errors.As(err, &ee) {
			err = &core.ExtractionError{Root: root, Err: err}
		}
		return c.fail(res, StatusExtractionError, err)
	}
	res.Edges = len(edges)

	calc := violation.Calculate(root, rp, edges, c.classifier)
	res.Actual = calc.Violations.Sorted()
	res.Evidence = calc.Evidence
	res.Added, res.Removed = calc.Violations.Diff(rp.Expected())

	if len(res.Added) > 0 || len(res.Removed) > 0 {
		return c.fail(res, StatusViolation, &core.PolicyViolation{Root: root, Added: res.Added, Removed: res.Removed})
	}

	res.Status = StatusPass
	c.logger.Debug("root conforms", "root", root, "edges", res.Edges, "tolerated", len(res.Expected))
	return res
}

func (c *Checker) fail(res Result, status Status, err error) Result {
	res.Status = status
	res.Err = err
	c.logger.Warn("root failed", "root", res.Root, "status", string(status), "error", err)
	return res
}
