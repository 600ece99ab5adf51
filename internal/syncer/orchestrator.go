package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/Zig-Index/registry/internal/discovery"
	"github.com/Zig-Index/registry/internal/github"
	"github.com/Zig-Index/registry/internal/ledger"
	"github.com/Zig-Index/registry/internal/logger"
)

// resumeMargin is added to a rate-limit resume time before retrying a
// batch, so a slightly skewed clock does not trip the limit again.
const resumeMargin = 30 * time.Second

// Discoverer runs one search query to completion.
type Discoverer interface {
	Discover(ctx context.Context, query string) ([]discovery.Record, error)
}

// BatchProcessor handles one batch of ids.
type BatchProcessor interface {
	Process(ctx context.Context, ids []string, appTagged map[string]bool, led *ledger.Ledger) error
}

// Options configures an orchestrator run.
type Options struct {
	BatchSize    int
	BatchPause   time.Duration
	LedgerPath   string
	ExtraQueries []string
	DryRun       bool
}

// Orchestrator owns a full sync run: discovery across both topic queries,
// reconciliation against the ledger, and driving the New then Updated
// queues through the batch processor.
type Orchestrator struct {
	discoverer Discoverer
	processor  BatchProcessor
	led        *ledger.Ledger
	opts       Options

	failedBatches int
	sleep         func(context.Context, time.Duration) error
	now           func() time.Time
}

// NewOrchestrator wires a run over an already-loaded ledger.
func NewOrchestrator(d Discoverer, p BatchProcessor, led *ledger.Ledger, opts Options) *Orchestrator {
	return &Orchestrator{
		discoverer: d,
		processor:  p,
		led:        led,
		opts:       opts,
		sleep:      sleepCtx,
		now:        time.Now,
	}
}

// Run executes one full sync. New repositories are processed before
// updated ones; removed ids are logged at the end and never deleted.
func (o *Orchestrator) Run(ctx context.Context) error {
	records, err := o.discoverAll(ctx)
	if err != nil {
		return err
	}

	rec := discovery.Reconcile(records, o.led)
	logger.Info("reconciled against ledger",
		"discovered", len(records),
		"new", len(rec.New),
		"updated", len(rec.Updated),
		"removed", len(rec.Removed))

	if o.opts.DryRun {
		o.reportDryRun(rec)
		return nil
	}

	appTagged := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Application {
			appTagged[r.ID] = true
		}
	}

	if err := o.processQueue(ctx, "new", rec.New, appTagged); err != nil {
		return err
	}
	if err := o.processQueue(ctx, "updated", rec.Updated, appTagged); err != nil {
		return err
	}

	for _, e := range rec.Removed {
		logger.Info("repository no longer discovered, ledger entry kept",
			"id", e.ID, "repo", e.Owner+"/"+e.Name)
	}

	o.led.LastSync = o.now()
	if err := o.led.Save(o.opts.LedgerPath); err != nil {
		return err
	}

	logger.Info("sync complete",
		"new", len(rec.New),
		"updated", len(rec.Updated),
		"removed", len(rec.Removed),
		"failed_batches", o.failedBatches)
	return nil
}

// discoverAll runs the package query, the application query, and any extra
// configured queries, deduplicating by id with first occurrence winning.
func (o *Orchestrator) discoverAll(ctx context.Context) ([]discovery.Record, error) {
	packages, err := o.discoverer.Discover(ctx, github.QueryPackages)
	if err != nil {
		return nil, err
	}
	logger.Info("discovered package-tagged repositories", "count", len(packages))

	applications, err := o.discoverer.Discover(ctx, github.QueryApplications)
	if err != nil {
		return nil, err
	}
	for i := range applications {
		applications[i].Application = true
	}
	logger.Info("discovered application-tagged repositories", "count", len(applications))

	lists := [][]discovery.Record{packages, applications}
	for _, q := range o.opts.ExtraQueries {
		extra, err := o.discoverer.Discover(ctx, q)
		if err != nil {
			return nil, err
		}
		logger.Info("discovered extra-query repositories", "query", q, "count", len(extra))
		lists = append(lists, extra)
	}

	return discovery.Merge(lists...), nil
}

// processQueue partitions the queue into fixed-size batches. A rate-limited
// batch is retried with the identical id list after sleeping past the
// resume time; any other failure abandons just that batch. The ledger is
// flushed after every batch so a crash loses at most one batch of progress.
func (o *Orchestrator) processQueue(ctx context.Context, label string, queue []discovery.Record, appTagged map[string]bool) error {
	for start := 0; start < len(queue); start += o.opts.BatchSize {
		end := min(start+o.opts.BatchSize, len(queue))
		ids := make([]string, 0, end-start)
		for _, r := range queue[start:end] {
			ids = append(ids, r.ID)
		}

		for {
			err := o.processor.Process(ctx, ids, appTagged, o.led)
			if err == nil {
				break
			}
			var rateLimitErr *github.RateLimitError
			if errors.As(err, &rateLimitErr) {
				wait := time.Until(rateLimitErr.ResumeAt) + resumeMargin
				logger.Warn("batch rate limited", "queue", label, "resume_in", wait.Round(time.Second))
				if err := o.sleep(ctx, wait); err != nil {
					return err
				}
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("batch abandoned", "queue", label, "size", len(ids), "err", err)
			o.failedBatches++
			break
		}

		if err := o.led.Save(o.opts.LedgerPath); err != nil {
			logger.Error("ledger flush failed", "err", err)
		}

		if end < len(queue) {
			if err := o.sleep(ctx, o.opts.BatchPause); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *Orchestrator) reportDryRun(rec discovery.Reconciliation) {
	for _, r := range rec.New {
		logger.Info("would process", "classification", "new", "repo", r.FullName)
	}
	for _, r := range rec.Updated {
		logger.Info("would process", "classification", "updated", "repo", r.FullName)
	}
	for _, e := range rec.Removed {
		logger.Info("no longer discovered", "repo", e.Owner+"/"+e.Name)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
