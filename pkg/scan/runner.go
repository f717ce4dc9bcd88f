package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/element"
	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/telemetry/logging"
	"a11y-hq/lumen/pkg/telemetry/metrics"
	"a11y-hq/lumen/pkg/telemetry/tracing"
)

// Runner evaluates a rule set over element trees.
// It is safe for concurrent use.
type Runner struct {
	config  config.ScanConfig
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// NewRunner creates a runner. logger, collector and tracer may be nil.
func NewRunner(cfg *config.ScanConfig, logger *logging.Logger, collector *metrics.Collector, tracer *tracing.Tracer) *Runner {
	c := config.Default().Scan
	if cfg != nil {
		c = *cfg
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{
		config:  c,
		logger:  logger.WithComponent("scan"),
		metrics: collector,
		tracer:  tracer,
	}
}

// settings are the effective options of one run.
type settings struct {
	workers              int
	preFilter            bool
	includeNotApplicable bool
	timeout              time.Duration
	maxElements          int
}

func (r *Runner) settings(opts Options) settings {
	s := settings{
		workers:              r.config.Workers,
		preFilter:            r.config.PreFilter,
		includeNotApplicable: r.config.IncludeNotApplicable,
		timeout:              r.config.Timeout,
		maxElements:          r.config.MaxElements,
	}
	if opts.Workers > 0 {
		s.workers = opts.Workers
	}
	if opts.PreFilter != nil {
		s.preFilter = *opts.PreFilter
	}
	if opts.IncludeNotApplicable != nil {
		s.includeNotApplicable = *opts.IncludeNotApplicable
	}
	if opts.Timeout > 0 {
		s.timeout = opts.Timeout
	}
	if opts.MaxElements > 0 {
		s.maxElements = opts.MaxElements
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// Run evaluates every rule of set on every element under root.
//
// Findings are ordered by element (pre-order) and then by rule ID, whatever
// the number of workers. A rule that fails on an element produces an
// ExecutionError finding and the scan continues. Run returns an error only
// when the scan cannot start or is cancelled; a cancelled scan still
// returns the partial Result.
func (r *Runner) Run(ctx context.Context, root element.Element, set *catalog.Set, opts Options) (*Result, error) {
	if element.IsNil(root) {
		return nil, ErrNilRoot
	}
	if set == nil {
		set = catalog.EmptySet()
	}

	st := r.settings(opts)

	rules, err := selectRules(set, opts.RuleIDs)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	elements, err := flatten(root, st.maxElements)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:             uuid.NewString(),
		Target:         opts.Target,
		StartedAt:      time.Now().UTC(),
		CatalogVersion: set.Version(),
	}

	ctx = logging.WithScanID(ctx, res.ID)
	ctx, span := r.tracer.Start(ctx, "scan.run")
	defer span.End()
	tracing.SetScanAttributes(span, res.ID, len(elements), len(rules), st.workers)

	if st.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, st.timeout)
		defer cancel()
	}

	r.metrics.ScanStarted()
	defer r.metrics.ScanFinished()

	r.logger.InfoContext(ctx, "scan started",
		"target", opts.Target,
		"elements", len(elements),
		"rules", len(rules),
		"workers", st.workers,
	)

	perElement := make([][]Finding, len(elements))
	counts := make([][]int, len(elements))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < st.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perElement[i], counts[i] = r.evaluateElement(ctx, elements[i], rules, st)
			}
		}()
	}

	cancelled := false
feed:
	for i := range elements {
		select {
		case <-ctx.Done():
			cancelled = true
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	res.Summary = newSummary()
	res.Summary.Rules = len(rules)
	for i := range elements {
		if counts[i] == nil {
			continue
		}
		res.Summary.Elements++
		for c, n := range counts[i] {
			if n > 0 {
				res.Summary.Counts[rule.EvaluationCode(c).String()] += n
				res.Summary.Evaluations += n
			}
		}
		res.Findings = append(res.Findings, perElement[i]...)
	}

	res.FinishedAt = time.Now().UTC()
	res.Duration = res.FinishedAt.Sub(res.StartedAt)
	res.Status = StatusCompleted
	if cancelled || res.Summary.Elements < len(elements) {
		res.Status = StatusCancelled
	}

	r.metrics.RecordScan(res.Status, res.Duration, res.Summary.Elements)

	if res.Status == StatusCancelled {
		err := fmt.Errorf("scan %s cancelled after %d of %d elements: %w", res.ID, res.Summary.Elements, len(elements), context.Cause(ctx))
		tracing.SetError(span, err)
		r.logger.WarnContext(ctx, "scan cancelled", "evaluated_elements", res.Summary.Elements, "error", err)
		return res, err
	}

	r.logger.InfoContext(ctx, "scan completed",
		"duration_ms", res.Duration.Milliseconds(),
		"errors", res.Summary.Count(rule.Error),
		"open", res.Summary.Count(rule.Open),
		"execution_errors", res.Summary.Count(rule.ExecutionError),
	)
	return res, nil
}

// evaluateElement runs every rule on e. It returns nil counts when the
// scan was cancelled before e was evaluated.
func (r *Runner) evaluateElement(ctx context.Context, e element.Element, rules []*rule.Rule, st settings) ([]Finding, []int) {
	if ctx.Err() != nil {
		return nil, nil
	}

	counts := make([]int, int(rule.ExecutionError)+1)
	var findings []Finding

	for _, rl := range rules {
		f := r.evaluate(ctx, rl, e, st.preFilter)
		counts[f.Code]++
		if f.Code == rule.NotApplicable && !st.includeNotApplicable {
			continue
		}
		findings = append(findings, f)
	}
	return findings, counts
}

func (r *Runner) evaluate(ctx context.Context, rl *rule.Rule, e element.Element, preFilter bool) Finding {
	info := rl.Info()
	f := Finding{
		RuleID:      info.ID,
		ElementID:   e.RuntimeID(),
		ControlType: e.ControlType().String(),
		ElementName: e.Name(),
		Description: info.Description,
		HowToFix:    info.HowToFix,
		Standard:    string(info.Standard),
	}

	if preFilter {
		ok, err := rl.Applies(e)
		if err != nil {
			return r.executionError(ctx, f, err)
		}
		if !ok {
			r.metrics.RecordPreFiltered(info.ID)
			f.Code = rule.NotApplicable
			return f
		}
	}

	start := time.Now()
	code, err := rl.Evaluate(e)
	r.metrics.RecordEvaluation(info.ID, code.String(), time.Since(start))
	if err != nil {
		return r.executionError(ctx, f, err)
	}
	f.Code = code
	return f
}

func (r *Runner) executionError(ctx context.Context, f Finding, err error) Finding {
	f.Code = rule.ExecutionError
	f.Error = err.Error()
	var execErr *rule.EvaluationFailure
	if !errors.As(err, &execErr) {
		f.Error = (&rule.EvaluationFailure{RuleID: f.RuleID, ElementID: f.ElementID, Cause: err}).Error()
	}

	r.metrics.RecordExecutionError(f.RuleID)

	ctx = logging.WithElementID(logging.WithRuleID(ctx, f.RuleID), f.ElementID)
	r.logger.WarnContext(ctx, "rule execution failed", "error", err)

	_, span := r.tracer.Start(ctx, "rule.execution_error")
	tracing.SetFindingAttributes(span, f.RuleID, f.ElementID, f.ControlType, f.Code.String())
	tracing.SetError(span, err)
	span.End()

	return f
}

func selectRules(set *catalog.Set, ids []string) ([]*rule.Rule, error) {
	if len(ids) == 0 {
		return set.Rules(), nil
	}
	seen := make(map[string]bool, len(ids))
	var out []*rule.Rule
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		rl, ok := set.Get(id)
		if !ok {
			return nil, &UnknownRuleError{RuleID: id}
		}
		out = append(out, rl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// flatten lists the tree in pre-order.
func flatten(root element.Element, limit int) ([]element.Element, error) {
	var (
		out      []element.Element
		overflow bool
	)
	element.Walk(root, func(e element.Element, _ int) bool {
		if limit > 0 && len(out) >= limit {
			overflow = true
			return false
		}
		out = append(out, e)
		return true
	})
	if overflow {
		return nil, &TooManyElementsError{Limit: limit}
	}
	return out, nil
}
