package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/promreg/promregistry/internal/domain"
	"github.com/promreg/promregistry/internal/health"
	"github.com/promreg/promregistry/internal/logger"
	"github.com/promreg/promregistry/internal/metrics"
	"github.com/promreg/promregistry/internal/registry"
	redisstore "github.com/promreg/promregistry/internal/store/redis"
)

const (
	// DefaultProbeTimeout bounds a single account's health probe.
	DefaultProbeTimeout = 5 * time.Second
	// DefaultProbeWorkers is the number of concurrent probes per sweep.
	DefaultProbeWorkers = 4
)

// HealthJobOptions configures the health job's timing.
type HealthJobOptions struct {
	// Interval between sweeps.
	Interval time.Duration
	// InitialDelay before the first sweep, giving backends time to come up
	// right after process start.
	InitialDelay time.Duration
	// ProbeTimeout bounds each account's probe independently.
	ProbeTimeout time.Duration
	// Workers caps how many probes run concurrently within one sweep.
	Workers int
}

// HealthJob periodically probes every eligible registered account and
// overwrites its verdict in the health cache. It is the cache's sole writer.
//
// Sweeps run on the loop goroutine, so two sweeps never overlap: a tick
// that fires while a sweep is still running is coalesced by the ticker's
// single-slot buffer into at most one back-to-back follow-up sweep.
type HealthJob struct {
	registry *registry.Registry
	cache    *health.Cache
	store    *redisstore.Store // nil when redis is disabled
	metrics  *metrics.Metrics
	logger   logger.Logger

	interval     time.Duration
	initialDelay time.Duration
	probeTimeout time.Duration
	workers      int

	stopCh chan struct{}
}

// NewHealthJob creates a health job over the given registry and cache.
// store may be nil; verdict mirroring is then skipped.
func NewHealthJob(
	reg *registry.Registry,
	cache *health.Cache,
	store *redisstore.Store,
	m *metrics.Metrics,
	log logger.Logger,
	opts HealthJobOptions,
) *HealthJob {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultProbeWorkers
	}

	return &HealthJob{
		registry:     reg,
		cache:        cache,
		store:        store,
		metrics:      m,
		logger:       log,
		interval:     opts.Interval,
		initialDelay: opts.InitialDelay,
		probeTimeout: opts.ProbeTimeout,
		workers:      opts.Workers,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the periodic sweep loop.
func (j *HealthJob) Start(ctx context.Context) error {
	go func() {
		if j.initialDelay > 0 {
			delay := time.NewTimer(j.initialDelay)
			select {
			case <-delay.C:
			case <-j.stopCh:
				delay.Stop()
				return
			case <-ctx.Done():
				delay.Stop()
				return
			}
		}

		j.Sweep(ctx)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.Sweep(ctx)
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweep loop. A sweep already in flight finishes.
func (j *HealthJob) Stop() {
	close(j.stopCh)
}

// Sweep runs one full health cycle: prune stale verdicts, snapshot the
// registry, probe every eligible account concurrently, and record one
// verdict per account. Per-account failures are contained; the sweep always
// completes.
func (j *HealthJob) Sweep(ctx context.Context) {
	start := time.Now()

	records := j.registry.All()
	eligible := make([]*domain.AccountRecord, 0, len(records))
	keep := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.Eligible() {
			eligible = append(eligible, record)
			keep[record.Name] = struct{}{}
		}
	}

	// Pruning is separate from probing: accounts that left the registry
	// since the last sweep lose their verdicts up front.
	for _, name := range j.cache.Prune(keep) {
		j.logger.Info("pruned verdict for deregistered account",
			logger.String("account", name))
		if j.store != nil {
			if err := j.store.DeleteVerdict(ctx, name); err != nil {
				j.logger.Warn("failed to delete verdict from redis",
					logger.String("account", name),
					logger.Error(err))
			}
		}
	}

	if len(eligible) == 0 {
		j.metrics.HealthSweeps.Inc()
		return
	}

	// Semaphore-based worker pool; one slow backend must not inflate the
	// whole cycle.
	sem := make(chan struct{}, j.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	verdicts := make(map[string]domain.HealthVerdict, len(eligible))

	for i := range eligible {
		sem <- struct{}{}
		wg.Add(1)
		go func(record *domain.AccountRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			verdict := j.probeOne(ctx, record)
			j.cache.Set(record.Name, verdict)

			mu.Lock()
			verdicts[record.Name] = verdict
			mu.Unlock()

			if !verdict.Healthy {
				j.metrics.ProbeFailures.WithLabelValues(record.Name).Inc()
				j.logger.Warn("account unhealthy",
					logger.String("account", record.Name),
					logger.String("detail", verdict.Error))
			}
		}(eligible[i])
	}
	wg.Wait()

	if j.store != nil {
		if err := j.store.SaveVerdictsMany(ctx, verdicts); err != nil {
			j.logger.Warn("failed to save verdicts to redis",
				logger.Error(err))
			// Don't fail - the memory cache is the primary source
		}
	}

	j.metrics.HealthSweeps.Inc()
	j.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	j.logger.Debugf("health sweep completed: %d accounts probed in %s",
		len(eligible), time.Since(start).Round(time.Millisecond))
}

// probeOne produces the verdict for a single account. It never lets a
// failure escape: errors, timeouts and even panics from the client become
// the account's verdict.
func (j *HealthJob) probeOne(ctx context.Context, record *domain.AccountRecord) (verdict domain.HealthVerdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = domain.HealthVerdict{
				Healthy:   false,
				CheckedAt: time.Now().UTC(),
				Error:     fmt.Sprintf("probe panicked: %v", r),
			}
		}
	}()

	probeCtx, cancel := context.WithTimeout(ctx, j.probeTimeout)
	defer cancel()

	err := record.Client.Healthy(probeCtx)
	checkedAt := time.Now().UTC()

	if err == nil {
		return domain.HealthVerdict{Healthy: true, CheckedAt: checkedAt}
	}

	detail := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		detail = fmt.Sprintf("probe timed out after %s", j.probeTimeout)
	}

	return domain.HealthVerdict{Healthy: false, CheckedAt: checkedAt, Error: detail}
}
