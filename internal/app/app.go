package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/promreg/promregistry/internal/bootstrap"
	"github.com/promreg/promregistry/internal/config"
	"github.com/promreg/promregistry/internal/descriptors"
	"github.com/promreg/promregistry/internal/domain"
	"github.com/promreg/promregistry/internal/health"
	"github.com/promreg/promregistry/internal/httpserver"
	"github.com/promreg/promregistry/internal/httpserver/deps"
	"github.com/promreg/promregistry/internal/logger"
	"github.com/promreg/promregistry/internal/metrics"
	"github.com/promreg/promregistry/internal/promclient"
	"github.com/promreg/promregistry/internal/redis"
	"github.com/promreg/promregistry/internal/registry"
	"github.com/promreg/promregistry/internal/scheduler"
	accountsrc "github.com/promreg/promregistry/internal/sources/accounts"
	redisstore "github.com/promreg/promregistry/internal/store/redis"
	"github.com/promreg/promregistry/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	healthJob   *scheduler.HealthJob
	refresher   *scheduler.DescriptorsRefresher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Load account descriptors - fail fast on a broken file
	loader := accountsrc.NewLoader(cfg.AccountsFile)
	accountDescriptors, err := loader.Load()
	if err != nil {
		loggerClient.Errorf("Failed to load accounts file %s: %v", cfg.AccountsFile, err)
		os.Exit(1)
	}
	loggerClient.Infof("Loaded %d account descriptor(s) from %s", len(accountDescriptors), cfg.AccountsFile)

	// Redis is optional: when configured, fail fast if unavailable
	var redisClient *goredis.Client
	var store *redisstore.Store
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		store = redisstore.NewStore(redisClient)
		loggerClient.Info("Redis initialized successfully")
	} else {
		loggerClient.Info("Redis not configured, verdict mirroring disabled")
	}

	// Initialize the account registry and register every descriptor,
	// isolating per-account failures
	reg := registry.New()
	factory := func(endpoint string, cred domain.Credential) (domain.RemoteClient, error) {
		return promclient.New(endpoint, cred, cfg.ProbeTimeout)
	}
	orchestrator := bootstrap.New(reg, factory, loggerClient)
	registered, failures := orchestrator.Bootstrap(accountDescriptors)
	for _, f := range failures {
		loggerClient.Warn("account skipped during bootstrap",
			logger.String("account", f.Name),
			logger.Error(f.Err))
	}

	m := metrics.New()
	m.AccountsRegistered.Set(float64(reg.Count()))

	healthCache := health.NewCache()
	descriptorCache := descriptors.NewCache()

	// Health checking activates only when enabled and at least one account
	// made it into the registry
	healthEnabled := cfg.HealthEnabled && registered > 0
	var healthJob *scheduler.HealthJob
	var refresher *scheduler.DescriptorsRefresher
	if healthEnabled {
		healthJob = scheduler.NewHealthJob(reg, healthCache, store, m, loggerClient, scheduler.HealthJobOptions{
			Interval:     cfg.HealthInterval,
			InitialDelay: cfg.HealthInitialDelay,
			ProbeTimeout: cfg.ProbeTimeout,
			Workers:      cfg.ProbeWorkers,
		})
		refresher = scheduler.NewDescriptorsRefresher(reg, descriptorCache, loggerClient,
			cfg.DescriptorRefreshInterval, cfg.ProbeTimeout)
	} else {
		loggerClient.Info("health checking disabled",
			logger.Bool("enabled_flag", cfg.HealthEnabled),
			logger.Int("registered_accounts", registered))
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		Registry:      reg,
		HealthCache:   healthCache,
		Descriptors:   descriptorCache,
		HealthEnabled: healthEnabled,
		Metrics:       m,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		healthJob:   healthJob,
		refresher:   refresher,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting promregistry v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("promregistry %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.healthJob != nil {
		if err := a.healthJob.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health job: %w", err)
		}
		a.logger.Info("health job started",
			logger.Duration("interval", a.cfg.HealthInterval),
			logger.Duration("initial_delay", a.cfg.HealthInitialDelay))
	}

	if a.refresher != nil {
		if err := a.refresher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start descriptors refresher: %w", err)
		}
		a.logger.Info("descriptors refresher started",
			logger.Duration("interval", a.cfg.DescriptorRefreshInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.healthJob != nil {
		a.healthJob.Stop()
	}
	if a.refresher != nil {
		a.refresher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ promregistry stopped cleanly")
	return nil
}
