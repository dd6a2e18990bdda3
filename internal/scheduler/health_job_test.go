package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/promreg/promregistry/internal/domain"
	"github.com/promreg/promregistry/internal/health"
	"github.com/promreg/promregistry/internal/logger"
	"github.com/promreg/promregistry/internal/metrics"
	"github.com/promreg/promregistry/internal/registry"
)

// stubClient is a controllable remote client for job tests.
type stubClient struct {
	err       error
	delay     time.Duration
	names     []string
	namesErr  error
	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
	panics    bool
}

func (s *stubClient) Healthy(ctx context.Context) error {
	s.calls.Add(1)
	if s.panics {
		panic("backend client exploded")
	}

	active := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		max := s.maxActive.Load()
		if active <= max || s.maxActive.CompareAndSwap(max, active) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.err
}

func (s *stubClient) MetricNames(ctx context.Context) ([]string, error) {
	return s.names, s.namesErr
}

func newJob(t *testing.T, reg *registry.Registry, cache *health.Cache, opts HealthJobOptions) *HealthJob {
	t.Helper()
	return NewHealthJob(reg, cache, nil, metrics.New(), logger.NewNop(), opts)
}

func register(reg *registry.Registry, name string, client domain.RemoteClient) {
	reg.Register(&domain.AccountRecord{
		Name:           name,
		Endpoint:       "http://" + name + ":9090",
		SupportedTypes: []domain.CapabilityType{domain.CapabilityMetricsStore},
		Client:         client,
	})
}

func TestSweepProducesOneVerdictPerEligibleAccount(t *testing.T) {
	reg := registry.New()
	cache := health.NewCache()

	register(reg, "a", &stubClient{})
	register(reg, "b", &stubClient{err: errors.New("HTTP 500 Internal Server Error")})
	register(reg, "c", &stubClient{})
	// No client: not eligible, nothing to probe.
	reg.Register(&domain.AccountRecord{Name: "objects", Endpoint: "http://objects"})

	job := newJob(t, reg, cache, HealthJobOptions{Interval: time.Minute})
	job.Sweep(context.Background())

	if cache.Count() != 3 {
		t.Fatalf("cache holds %d verdicts, want 3 (one per eligible account)", cache.Count())
	}
	if _, ok := cache.Get("objects"); ok {
		t.Error("ineligible account should never appear in the cache")
	}

	for name, wantHealthy := range map[string]bool{"a": true, "b": false, "c": true} {
		verdict, ok := cache.Get(name)
		if !ok {
			t.Fatalf("missing verdict for %s", name)
		}
		if verdict.Healthy != wantHealthy {
			t.Errorf("verdict for %s = %+v, want healthy=%v", name, verdict, wantHealthy)
		}
		if verdict.CheckedAt.IsZero() {
			t.Errorf("verdict for %s has no timestamp", name)
		}
	}
}

func TestSweepTimeoutIsIsolatedPerAccount(t *testing.T) {
	reg := registry.New()
	cache := health.NewCache()

	register(reg, "fast1", &stubClient{})
	register(reg, "slow", &stubClient{delay: time.Second})
	register(reg, "fast2", &stubClient{})

	job := newJob(t, reg, cache, HealthJobOptions{
		Interval:     time.Minute,
		ProbeTimeout: 50 * time.Millisecond,
	})
	job.Sweep(context.Background())

	if cache.Count() != 3 {
		t.Fatalf("cache holds %d verdicts, want 3 even with a timed-out probe", cache.Count())
	}

	unhealthy := 0
	for name, verdict := range cache.All() {
		if verdict.Healthy {
			continue
		}
		unhealthy++
		if name != "slow" {
			t.Errorf("unexpected unhealthy account %s: %+v", name, verdict)
		}
		if !strings.Contains(verdict.Error, "timed out") {
			t.Errorf("timeout verdict detail = %q, want a timeout message", verdict.Error)
		}
	}
	if unhealthy != 1 {
		t.Errorf("%d unhealthy verdicts, want exactly 1", unhealthy)
	}

	if cache.Aggregate().Up {
		t.Error("aggregate status should be down with one unhealthy account")
	}
}

func TestSweepContainsPanics(t *testing.T) {
	reg := registry.New()
	cache := health.NewCache()

	register(reg, "boom", &stubClient{panics: true})
	register(reg, "ok", &stubClient{})

	job := newJob(t, reg, cache, HealthJobOptions{Interval: time.Minute})
	job.Sweep(context.Background())

	verdict, ok := cache.Get("boom")
	if !ok {
		t.Fatal("panicking account should still get a verdict")
	}
	if verdict.Healthy || !strings.Contains(verdict.Error, "panicked") {
		t.Errorf("verdict = %+v, want unhealthy with panic detail", verdict)
	}
	if v, _ := cache.Get("ok"); !v.Healthy {
		t.Errorf("healthy account should be unaffected by the panicking one")
	}
}

func TestSweepPrunesDeregisteredAccounts(t *testing.T) {
	reg := registry.New()
	cache := health.NewCache()

	register(reg, "stays", &stubClient{})
	register(reg, "leaves", &stubClient{})

	job := newJob(t, reg, cache, HealthJobOptions{Interval: time.Minute})
	job.Sweep(context.Background())

	if cache.Count() != 2 {
		t.Fatalf("cache holds %d verdicts after first sweep, want 2", cache.Count())
	}

	reg.Delete("leaves")
	job.Sweep(context.Background())

	if _, ok := cache.Get("leaves"); ok {
		t.Error("verdict for deregistered account should be pruned")
	}
	if _, ok := cache.Get("stays"); !ok {
		t.Error("verdict for remaining account should survive the prune")
	}
}

func TestSweepsNeverOverlap(t *testing.T) {
	reg := registry.New()
	cache := health.NewCache()

	// Each probe takes several intervals; overlapping sweeps would drive
	// the client's concurrency above one.
	slow := &stubClient{delay: 40 * time.Millisecond}
	register(reg, "slow", slow)

	job := newJob(t, reg, cache, HealthJobOptions{
		Interval:     5 * time.Millisecond,
		ProbeTimeout: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := job.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	job.Stop()

	if got := slow.maxActive.Load(); got != 1 {
		t.Errorf("max concurrent probes for one account = %d, want 1 (sweeps must not overlap)", got)
	}
	if slow.calls.Load() < 2 {
		t.Errorf("expected multiple sweeps, got %d probe calls", slow.calls.Load())
	}
}

func TestStartHonorsInitialDelay(t *testing.T) {
	reg := registry.New()
	cache := health.NewCache()
	client := &stubClient{}
	register(reg, "a", client)

	job := newJob(t, reg, cache, HealthJobOptions{
		Interval:     time.Minute,
		InitialDelay: 80 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := job.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer job.Stop()

	time.Sleep(20 * time.Millisecond)
	if client.calls.Load() != 0 {
		t.Fatal("no probe should run before the initial delay elapses")
	}

	deadline := time.Now().Add(time.Second)
	for client.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first sweep never ran after the initial delay")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProbeWorkersBoundConcurrency(t *testing.T) {
	reg := registry.New()
	cache := health.NewCache()

	shared := &stubClient{delay: 20 * time.Millisecond}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		register(reg, name, shared)
	}

	job := newJob(t, reg, cache, HealthJobOptions{
		Interval: time.Minute,
		Workers:  2,
	})
	job.Sweep(context.Background())

	if got := shared.maxActive.Load(); got > 2 {
		t.Errorf("max concurrent probes = %d, want at most the 2 configured workers", got)
	}
	if cache.Count() != 6 {
		t.Errorf("cache holds %d verdicts, want 6", cache.Count())
	}
}
