// Package worker runs the poll-claim-process-ack loop that drains the
// durable job queue (spec.md §4.7): a pool of goroutines claims due jobs,
// fetches authoritative object state from the provider, and runs the
// pipeline, while a separate reaper loop recovers abandoned leases.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fin-sync/payments-backend/internal/domain"
	"github.com/fin-sync/payments-backend/internal/metrics"
	"github.com/fin-sync/payments-backend/internal/pipeline"
	"github.com/fin-sync/payments-backend/internal/provider"
	"github.com/fin-sync/payments-backend/internal/queue"
	"github.com/fin-sync/payments-backend/internal/store"
)

// claimBatchSize is the number of jobs pulled per iteration (spec.md §4.7).
const claimBatchSize = 10

// Config holds tuning parameters for the Runner. All fields have sensible
// defaults if zero-valued; call DefaultConfig() to get them.
type Config struct {
	Workers      int           // default 3
	PollInterval time.Duration // default 1s
	ReapInterval time.Duration // default 60s
}

// DefaultConfig returns spec.md §4.7's defaults.
func DefaultConfig() Config {
	return Config{Workers: 3, PollInterval: time.Second, ReapInterval: 60 * time.Second}
}

// Runner owns the worker pool and the reaper loop.
type Runner struct {
	queue    *queue.Queue
	store    *store.Store
	provider provider.Client
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Registry

	wg sync.WaitGroup
}

// NewRunner constructs a Runner. Call Start(ctx) to begin processing. reg may
// be nil, in which case metrics are skipped.
func NewRunner(qu *queue.Queue, st *store.Store, p provider.Client, cfg Config, logger *slog.Logger, reg *metrics.Registry) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = DefaultConfig().ReapInterval
	}
	return &Runner{queue: qu, store: st, provider: p, cfg: cfg, logger: logger, metrics: reg}
}

// Start launches the worker pool and the reaper. It blocks until ctx is
// cancelled, completing each goroutine's in-flight iteration first
// (spec.md §6 "Graceful shutdown").
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting", "workers", r.cfg.Workers, "poll_interval", r.cfg.PollInterval)

	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.loop(ctx, i)
	}

	r.wg.Add(1)
	go r.reap(ctx)

	r.wg.Wait()
	r.logger.Info("worker: stopped")
}

// loop is one worker's poll-claim-process-ack iteration (spec.md §4.7 steps 1-6).
func (r *Runner) loop(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("worker: stopping")
			return
		case <-ticker.C:
			r.runIteration(ctx, log)
		}
	}
}

func (r *Runner) runIteration(ctx context.Context, log *slog.Logger) {
	start := time.Now()
	jobs, err := r.queue.Claim(ctx, claimBatchSize)
	if r.metrics != nil {
		r.metrics.ClaimDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		log.Error("worker: claim failed", "error", err)
		return
	}

	for _, job := range jobs {
		jobStart := time.Now()
		r.processJob(ctx, job, log)
		if r.metrics != nil {
			r.metrics.ProcessDuration.Observe(time.Since(jobStart).Seconds())
		}
	}
}

// sourceName identifies the provider wired into this worker — used both as
// the payment's `source` column and the audit `actor` string
// ("worker:stripe"). There is only one provider in this deployment; a second
// would need its own Runner and its own source name.
const sourceName = "stripe"

func (r *Runner) processJob(ctx context.Context, job domain.Job, log *slog.Logger) {
	jobLog := log.With("job_id", job.ID, "event_id", job.EventID, "object_id", job.ObjectID)

	eventID, err := domain.NewEventId(job.EventID)
	if err != nil {
		jobLog.Warn("worker: invalid event id, discarding", "error", err)
		r.complete(ctx, job.ID, jobLog)
		return
	}
	objectID, err := domain.NewExternalId(job.ObjectID)
	if err != nil {
		jobLog.Warn("worker: invalid object id, discarding", "error", err)
		r.complete(ctx, job.ID, jobLog)
		return
	}

	fetched, err := r.provider.FetchPayment(ctx, objectID)
	if err != nil {
		if domain.Is(err, domain.KindValidation) {
			jobLog.Warn("worker: provider rejected object id, discarding", "error", err)
			r.complete(ctx, job.ID, jobLog)
			return
		}
		jobLog.Warn("worker: provider fetch failed, will retry", "error", err)
		r.fail(ctx, job.ID, err, jobLog)
		return
	}

	in := pipeline.IncomingPayment{
		ExternalID:       fetched.ExternalID,
		EventID:          eventID,
		Source:           sourceName,
		EventType:        job.EventType,
		Direction:        fetched.Direction,
		Money:            fetched.Money,
		Status:           fetched.Status,
		RawEvent:         job.RawEvent,
		ProviderTS:       job.ProviderTS,
		ParentExternalID: fetched.ParentExternalID,
	}

	outcome, err := pipeline.Process(ctx, r.store, in, "worker:"+sourceName)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindValidation, domain.KindSerialization:
			jobLog.Warn("worker: unrecoverable pipeline error, discarding", "error", err)
			r.complete(ctx, job.ID, jobLog)
		default:
			jobLog.Warn("worker: pipeline error, will retry", "error", err)
			r.fail(ctx, job.ID, err, jobLog)
		}
		return
	}

	jobLog.Info("worker: processed", "outcome", outcome.Kind)
	if r.metrics != nil {
		r.metrics.PipelineOutcomes.WithLabelValues(outcome.Kind.String()).Inc()
	}
	r.complete(ctx, job.ID, jobLog)
}

func (r *Runner) complete(ctx context.Context, id uuid.UUID, log *slog.Logger) {
	if err := r.queue.Complete(ctx, id); err != nil {
		log.Error("worker: failed to mark job complete", "error", err)
	}
}

func (r *Runner) fail(ctx context.Context, id uuid.UUID, cause error, log *slog.Logger) {
	if err := r.queue.Fail(ctx, id, cause); err != nil {
		log.Error("worker: failed to mark job failed", "error", err)
	}
}

func (r *Runner) reap(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.queue.ReapStale(ctx)
			if err != nil {
				r.logger.Error("reaper: failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Info("reaper: recovered stale jobs", "count", n)
				if r.metrics != nil {
					r.metrics.ReapedJobs.Add(float64(n))
				}
			}
		}
	}
}
