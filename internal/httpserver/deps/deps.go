package deps

import (
	"time"

	"github.com/promreg/promregistry/internal/descriptors"
	"github.com/promreg/promregistry/internal/health"
	"github.com/promreg/promregistry/internal/logger"
	"github.com/promreg/promregistry/internal/metrics"
	"github.com/promreg/promregistry/internal/registry"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Registry    *registry.Registry // registered accounts, read-only here
	HealthCache *health.Cache      // latest verdict per account, written by the health job
	Descriptors *descriptors.Cache // cached metric names per account

	// HealthEnabled is false when health checking was disabled by config or
	// no accounts were configured; account health then reports as disabled
	// instead of down.
	HealthEnabled bool

	Metrics *metrics.Metrics // self-telemetry, serves the /metrics route
}
