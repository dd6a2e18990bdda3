package scheduler

import (
	"context"
	"time"

	"github.com/promreg/promregistry/internal/descriptors"
	"github.com/promreg/promregistry/internal/logger"
	"github.com/promreg/promregistry/internal/registry"
)

// DescriptorsRefresher periodically refreshes the cached metric names of
// every METRICS_STORE account. Failures are per account and non-fatal: the
// previous cached names stay in place until a refresh succeeds.
type DescriptorsRefresher struct {
	registry *registry.Registry
	cache    *descriptors.Cache
	logger   logger.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
}

// NewDescriptorsRefresher creates a refresher over the given registry.
func NewDescriptorsRefresher(
	reg *registry.Registry,
	cache *descriptors.Cache,
	log logger.Logger,
	interval time.Duration,
	timeout time.Duration,
) *DescriptorsRefresher {
	return &DescriptorsRefresher{
		registry: reg,
		cache:    cache,
		logger:   log,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start refreshes once immediately, then on every interval.
func (dr *DescriptorsRefresher) Start(ctx context.Context) error {
	dr.Refresh(ctx)

	ticker := time.NewTicker(dr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				dr.Refresh(ctx)
			case <-dr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresher.
func (dr *DescriptorsRefresher) Stop() {
	close(dr.stopCh)
}

// Refresh fetches metric names for every eligible account once.
func (dr *DescriptorsRefresher) Refresh(ctx context.Context) {
	records := dr.registry.All()
	keep := make(map[string]struct{}, len(records))

	for _, record := range records {
		if !record.Eligible() {
			continue
		}
		keep[record.Name] = struct{}{}

		fetchCtx, cancel := context.WithTimeout(ctx, dr.timeout)
		names, err := record.Client.MetricNames(fetchCtx)
		cancel()

		if err != nil {
			dr.logger.Warn("failed to refresh metric descriptors",
				logger.String("account", record.Name),
				logger.Error(err))
			continue
		}

		dr.cache.Set(record.Name, names)
		dr.logger.Debugf("refreshed %d metric descriptors for account %s",
			len(names), record.Name)
	}

	dr.cache.Prune(keep)
}
