package health

import (
	"testing"
	"time"

	"github.com/promreg/promregistry/internal/domain"
)

func TestAggregateEmptyCacheIsUp(t *testing.T) {
	cache := NewCache()

	status := cache.Aggregate()
	if !status.Up {
		t.Error("Aggregate() with zero tracked accounts should be up")
	}
	if len(status.Accounts) != 0 {
		t.Errorf("Aggregate() accounts = %v, want none", status.Accounts)
	}
}

func TestAggregateFlipsWithSingleVerdict(t *testing.T) {
	cache := NewCache()
	now := time.Now().UTC()

	cache.Set("a", domain.HealthVerdict{Healthy: true, CheckedAt: now})
	cache.Set("b", domain.HealthVerdict{Healthy: true, CheckedAt: now})
	if !cache.Aggregate().Up {
		t.Fatal("Aggregate() should be up when every verdict is healthy")
	}

	cache.Set("b", domain.HealthVerdict{Healthy: false, CheckedAt: now, Error: "HTTP 500"})
	if cache.Aggregate().Up {
		t.Fatal("Aggregate() should be down when any verdict is unhealthy")
	}

	cache.Set("b", domain.HealthVerdict{Healthy: true, CheckedAt: now})
	if !cache.Aggregate().Up {
		t.Fatal("Aggregate() should recover when the verdict is restored")
	}
}

func TestSetOverwritesInPlace(t *testing.T) {
	cache := NewCache()

	cache.Set("a", domain.HealthVerdict{Healthy: false, Error: "timeout"})
	cache.Set("a", domain.HealthVerdict{Healthy: true})

	if cache.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (verdicts overwrite, no history)", cache.Count())
	}
	verdict, ok := cache.Get("a")
	if !ok {
		t.Fatal("Get() should find the account")
	}
	if !verdict.Healthy || verdict.Error != "" {
		t.Errorf("Get() = %+v, want the later verdict with error cleared", verdict)
	}
}

func TestPrune(t *testing.T) {
	cache := NewCache()
	cache.Set("keep", domain.HealthVerdict{Healthy: true})
	cache.Set("drop", domain.HealthVerdict{Healthy: false})

	dropped := cache.Prune(map[string]struct{}{"keep": {}})

	if len(dropped) != 1 || dropped[0] != "drop" {
		t.Errorf("Prune() dropped %v, want [drop]", dropped)
	}
	if _, ok := cache.Get("drop"); ok {
		t.Error("Get(drop) should miss after prune")
	}
	if _, ok := cache.Get("keep"); !ok {
		t.Error("Get(keep) should still hit after prune")
	}
}
