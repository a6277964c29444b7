// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package transition

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/stellarcyber/support-tools/pkg/adapters"
	"github.com/stellarcyber/support-tools/pkg/indexes"
	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// Config tunes one orchestrator instance.
type Config struct {
	// Workers bounds the number of concurrently in-flight provider calls.
	Workers int

	// QueueSize bounds the listing-to-worker queue.
	QueueSize int

	// Retry bounds backoff behavior for throttled calls.
	Retry RetryConfig

	// RateLimit caps provider calls per second. Zero means unlimited.
	RateLimit float64

	// Logger receives progress and diagnostics. Defaults to no-op.
	Logger adapters.Logger
}

// Orchestrator runs one tier transition batch: Scanning (stream the
// listing through the filter), Applying (bounded-concurrency per-object
// transitions), Reporting (aggregate outcomes). Each object transition is
// a single idempotent step; operators re-run the same command until all
// objects converge, so partial failure is reported, not retried across
// invocations.
type Orchestrator struct {
	provider tiering.Provider
	cfg      Config
	limiter  *rate.Limiter
	logger   adapters.Logger
}

// New creates an orchestrator over the given provider.
func New(p tiering.Provider, cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = adapters.NewNoOpLogger()
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return &Orchestrator{
		provider: p,
		cfg:      cfg,
		limiter:  limiter,
		logger:   cfg.Logger,
	}
}

// scanSummary carries the producer-side counters back to Run.
type scanSummary struct {
	scanned  int
	matched  int
	skipped  int
	notReady int
	touched  []string
	err      error
}

// Run executes one batch and returns its report. The returned error is
// reserved for pre-flight failures; per-object and provider-fatal
// failures are carried in the report so the caller still sees the
// partial outcome.
func (o *Orchestrator) Run(ctx context.Context, req *tiering.TransitionRequest) (*tiering.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := o.checkCapabilities(req.Operation); err != nil {
		return nil, err
	}

	report := tiering.NewReport(req.Operation)
	logger := o.logger.WithFields(adapters.Field{Key: "run_id", Value: report.RunID})
	logger.Info(ctx, "starting transition batch",
		adapters.Field{Key: "operation", Value: string(req.Operation)},
		adapters.Field{Key: "prefixes", Value: req.IncludedPrefixes})

	var exclusions *indexes.ExclusionList
	if req.UpdateExclusions && (req.Operation == tiering.OpTag || req.Operation == tiering.OpSync) {
		var err error
		exclusions, err = indexes.LoadExclusions(ctx, o.provider)
		if err != nil {
			return nil, err
		}
	}

	tracker := NewRestoreTracker(o.provider)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := newWorkerPool(o.cfg.Workers, o.cfg.QueueSize, logger)
	pool.start(runCtx, func(wctx context.Context, item workItem) workResult {
		res := o.apply(wctx, req, tracker, item)
		if res.err != nil && tiering.IsFatal(res.err) {
			// Cancel at the point of failure: objects queued behind this
			// one must never reach the provider.
			cancel()
		}
		return res
	})

	summaryCh := make(chan scanSummary, 1)
	go func() {
		defer pool.finish()
		summaryCh <- o.scan(runCtx, req, exclusions, pool, logger)
	}()

	// Collect per-object outcomes. The run was already canceled by the
	// worker that hit a provider-fatal error; the first such result is
	// recorded here, duplicates are dropped.
	var promoted []string
	for res := range pool.results {
		if res.err != nil && tiering.IsFatal(res.err) {
			if report.Fatal == "" {
				report.Fatal = res.err.Error()
				logger.Error(ctx, "provider-fatal error, aborting batch",
					adapters.Field{Key: "key", Value: res.key},
					adapters.Field{Key: "error", Value: res.err.Error()})
			}
			continue
		}
		report.Record(res.key, res.outcome, res.err)
		if req.Operation == tiering.OpSync && res.outcome == tiering.OutcomeSucceeded {
			if id, ok := indexes.IndexIDFromKey(res.key); ok {
				promoted = append(promoted, id)
			}
		}
	}

	if req.Operation == tiering.OpSync {
		for _, state := range tracker.States() {
			if report.RestoreStates == nil {
				report.RestoreStates = make(map[string]int)
			}
			report.RestoreStates[state.String()]++
		}
	}

	summary := <-summaryCh
	report.Scanned = summary.scanned
	report.Matched = summary.matched
	report.Skipped += summary.skipped
	report.NotReady += summary.notReady
	if summary.err != nil && report.Fatal == "" && !errors.Is(summary.err, context.Canceled) {
		report.Fatal = summary.err.Error()
	}

	o.updateExclusions(ctx, req, report, exclusions, summary.touched, promoted, logger)

	logger.Info(ctx, "transition batch complete",
		adapters.Field{Key: "scanned", Value: report.Scanned},
		adapters.Field{Key: "matched", Value: report.Matched},
		adapters.Field{Key: "succeeded", Value: report.Succeeded},
		adapters.Field{Key: "skipped", Value: report.Skipped},
		adapters.Field{Key: "failed", Value: report.Failed},
		adapters.Field{Key: "not_ready", Value: report.NotReady})
	return report, nil
}

func (o *Orchestrator) checkCapabilities(op tiering.Operation) error {
	caps := o.provider.Capabilities()
	switch op {
	case tiering.OpArchive:
		if !caps.DirectTierChange {
			return fmt.Errorf("%w: archive requires direct tier mutation; use tag and a lifecycle policy", tiering.ErrNotSupported)
		}
	case tiering.OpSync:
		if !caps.RequiresPromote {
			return fmt.Errorf("%w: sync only applies to two-phase restore providers", tiering.ErrNotSupported)
		}
	}
	return nil
}

// scan streams the listing pages through the filter and feeds matched
// objects to the pool. Listing is sequential and ordered; the pool
// provides the parallelism.
func (o *Orchestrator) scan(ctx context.Context, req *tiering.TransitionRequest, exclusions *indexes.ExclusionList, pool *workerPool, logger adapters.Logger) scanSummary {
	var s scanSummary
	filter := NewFilter(req)
	touched := make(map[string]struct{})

	for _, prefix := range req.IncludedPrefixes {
		token := ""
		for {
			var page *tiering.Page
			err := withRetry(ctx, o.cfg.Retry, logger, prefix, func() error {
				o.wait(ctx)
				var lerr error
				page, lerr = o.provider.ListPage(ctx, prefix, token)
				return lerr
			})
			if err != nil {
				s.err = fmt.Errorf("list %q: %w", prefix, err)
				return s
			}

			for _, h := range page.Objects {
				s.scanned++
				match := filter.Classify(h)
				if match == MatchUnknownTier {
					match = o.resolveTier(ctx, filter, &h, logger)
				}
				switch match {
				case MatchExcluded:
					continue
				case MatchWrongTier:
					s.matched++
					s.skipped++
					logger.Debug(ctx, "skipping object on tier mismatch",
						adapters.Field{Key: "key", Value: h.Key},
						adapters.Field{Key: "tier", Value: string(h.Tier)})
				case MatchUnknownTier:
					s.matched++
					s.notReady++
					logger.Warn(ctx, "object tier unknown, counting as not ready",
						adapters.Field{Key: "key", Value: h.Key})
				case MatchApply:
					s.matched++
					if id, ok := indexes.IndexIDFromKey(h.Key); ok {
						if o.skipExcludedIndex(req, exclusions, id) {
							s.skipped++
							logger.Debug(ctx, "skipping excluded index",
								adapters.Field{Key: "key", Value: h.Key},
								adapters.Field{Key: "index_id", Value: id})
							continue
						}
						touched[id] = struct{}{}
					}
					if !pool.submit(ctx, workItem{handle: h}) {
						return s
					}
				}
			}

			if page.NextToken == "" {
				break
			}
			token = page.NextToken
		}
	}

	for id := range touched {
		s.touched = append(s.touched, id)
	}
	return s
}

// resolveTier attempts one metadata fetch for objects whose listing did
// not report a tier. If the tier is still unknown afterwards the object
// is counted not-ready rather than assigned a guessed default.
func (o *Orchestrator) resolveTier(ctx context.Context, filter *Filter, h *tiering.ObjectHandle, logger adapters.Logger) Match {
	var tier tiering.Tier
	err := withRetry(ctx, o.cfg.Retry, logger, h.Key, func() error {
		o.wait(ctx)
		var gerr error
		tier, gerr = o.provider.GetTier(ctx, h.Key)
		return gerr
	})
	if err != nil || tier == tiering.TierUnknown {
		return MatchUnknownTier
	}
	h.Tier = tier
	return filter.Classify(*h)
}

func (o *Orchestrator) skipExcludedIndex(req *tiering.TransitionRequest, exclusions *indexes.ExclusionList, id string) bool {
	return req.Operation == tiering.OpTag &&
		exclusions != nil &&
		req.DestinationTier == tiering.TierArchive &&
		exclusions.Contains(id)
}

// apply executes the single idempotent transition step for one object,
// retrying throttled calls. Benign conditions map to skipped/not-ready
// so one object's trouble never aborts its siblings.
func (o *Orchestrator) apply(ctx context.Context, req *tiering.TransitionRequest, tracker *RestoreTracker, item workItem) workResult {
	key := item.handle.Key

	var outcome tiering.Outcome
	err := withRetry(ctx, o.cfg.Retry, o.logger, key, func() error {
		var aerr error
		outcome, aerr = o.applyOnce(ctx, req, tracker, key)
		return aerr
	})
	if err != nil {
		switch {
		case errors.Is(err, tiering.ErrObjectNotFound):
			o.logger.Warn(ctx, "object vanished between list and apply",
				adapters.Field{Key: "key", Value: key})
			return workResult{key: key, outcome: tiering.OutcomeSkipped}
		case errors.Is(err, tiering.ErrAlreadyInProgress):
			return workResult{key: key, outcome: tiering.OutcomeSkipped}
		case errors.Is(err, tiering.ErrNotReady):
			return workResult{key: key, outcome: tiering.OutcomeNotReady}
		default:
			return workResult{key: key, outcome: tiering.OutcomeFailed, err: err}
		}
	}
	return workResult{key: key, outcome: outcome}
}

func (o *Orchestrator) applyOnce(ctx context.Context, req *tiering.TransitionRequest, tracker *RestoreTracker, key string) (tiering.Outcome, error) {
	caps := o.provider.Capabilities()

	switch req.Operation {
	case tiering.OpTag:
		o.wait(ctx)
		if err := o.provider.SetTag(ctx, key, req.DestinationTier); err != nil {
			return tiering.OutcomeFailed, err
		}
		return tiering.OutcomeSucceeded, nil

	case tiering.OpArchive:
		o.wait(ctx)
		if err := o.provider.SetTier(ctx, key, tiering.TierArchive); err != nil {
			return tiering.OutcomeFailed, err
		}
		o.wait(ctx)
		if err := o.provider.SetTag(ctx, key, tiering.TierArchive); err != nil {
			return tiering.OutcomeFailed, err
		}
		return tiering.OutcomeSucceeded, nil

	case tiering.OpRestore:
		if caps.DirectTierChange {
			// Single-phase rehydration: flipping the tier back to hot
			// starts it; the tag keeps the lifecycle rule from
			// re-archiving the object while it rehydrates.
			o.wait(ctx)
			if err := o.provider.SetTier(ctx, key, tiering.TierHot); err != nil {
				return tiering.OutcomeFailed, err
			}
			o.wait(ctx)
			if err := o.provider.SetTag(ctx, key, tiering.TierHot); err != nil {
				return tiering.OutcomeFailed, err
			}
			return tiering.OutcomeSucceeded, nil
		}
		o.wait(ctx)
		if err := o.provider.StartRestore(ctx, key, req.RestoreDays); err != nil {
			return tiering.OutcomeFailed, err
		}
		return tiering.OutcomeSucceeded, nil

	case tiering.OpSync:
		o.wait(ctx)
		state, err := tracker.Refresh(ctx, key)
		if err != nil {
			return tiering.OutcomeFailed, err
		}
		switch state {
		case tiering.RestorePermanentlyPromoted:
			return tiering.OutcomeSkipped, nil
		case tiering.RestoreFailed:
			return tiering.OutcomeFailed, fmt.Errorf("provider reported failed restore for %s", key)
		}
		if !tracker.ReadyForPromote(key) {
			return tiering.OutcomeNotReady, tiering.ErrNotReady
		}
		o.wait(ctx)
		if err := o.provider.Promote(ctx, key); err != nil {
			return tiering.OutcomeFailed, err
		}
		o.wait(ctx)
		if err := o.provider.SetTag(ctx, key, tiering.TierHot); err != nil {
			return tiering.OutcomeFailed, err
		}
		return tiering.OutcomeSucceeded, nil
	}

	return tiering.OutcomeFailed, fmt.Errorf("%w: unknown operation %q", tiering.ErrInvalidRequest, req.Operation)
}

// updateExclusions writes the bookkeeping blob after a clean batch:
// tagging toward hot excludes the touched indices from future archive
// runs, tagging toward archive re-includes them, and promoted indices
// are excluded until explicitly re-archived.
func (o *Orchestrator) updateExclusions(ctx context.Context, req *tiering.TransitionRequest, report *tiering.Report, exclusions *indexes.ExclusionList, touched, promoted []string, logger adapters.Logger) {
	if exclusions == nil || report.Fatal != "" || report.Failed > 0 {
		return
	}

	changed := false
	if req.Operation == tiering.OpTag && len(touched) > 0 {
		exclusions.ApplyTierChange(touched, req.DestinationTier)
		changed = true
	}
	if req.Operation == tiering.OpSync && len(promoted) > 0 {
		exclusions.Add(promoted...)
		changed = true
	}
	if !changed {
		return
	}

	if err := exclusions.Save(ctx, o.provider); err != nil {
		logger.Warn(ctx, "failed to update excluded indices",
			adapters.Field{Key: "error", Value: err.Error()})
		return
	}
	logger.Info(ctx, "updated excluded indices",
		adapters.Field{Key: "count", Value: exclusions.Len()})
}

func (o *Orchestrator) wait(ctx context.Context) {
	if o.limiter != nil {
		_ = o.limiter.Wait(ctx)
	}
}
