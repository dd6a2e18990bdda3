package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	AccountsFile string // path to the accounts YAML file

	HealthEnabled      bool          // master switch for the health job
	HealthInterval     time.Duration // interval between health sweeps
	HealthInitialDelay time.Duration // delay before the first sweep
	ProbeTimeout       time.Duration // per-account probe timeout
	ProbeWorkers       int           // concurrent probes per sweep

	DescriptorRefreshInterval time.Duration // interval between metric-name refreshes

	// Redis (optional): empty RedisAddr disables verdict mirroring.
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PROMREG_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("PROMREG_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("PROMREG_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PROMREG_PRETTY_LOG", false),

		// Accounts
		AccountsFile: requireEnv("PROMREG_ACCOUNTS_FILE"),

		// Health job
		HealthEnabled:      mustBool("PROMREG_HEALTH_ENABLED", true),
		HealthInterval:     mustDuration("PROMREG_HEALTH_INTERVAL", 30*time.Second),
		HealthInitialDelay: mustDuration("PROMREG_HEALTH_INITIAL_DELAY", 10*time.Second),
		ProbeTimeout:       mustDuration("PROMREG_PROBE_TIMEOUT", 5*time.Second),
		ProbeWorkers:       getenvInt("PROMREG_PROBE_WORKERS", 4),

		// Metric descriptors
		DescriptorRefreshInterval: mustDuration("PROMREG_DESCRIPTOR_REFRESH_INTERVAL", 10*time.Minute),

		// Redis settings
		RedisAddr:           getenv("PROMREG_REDIS_ADDR", ""),
		RedisUser:           getenv("PROMREG_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("PROMREG_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("PROMREG_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
