// Package config loads runtime settings from the environment and .env files.
// file: config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"nilakkal-parking/logger"
)

// Backup drivers.
const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

type Config struct {
	ServerPort     string
	AppEnv         string
	AppName        string
	SessionSecret  string
	LogDir         string
	ApplicationURL string

	BackupDriver     string
	BackupDir        string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	AutoSaveInterval time.Duration

	SeedZones     int
	ZoneCapacity  int
	SeedOccupancy bool

	SimulateTraffic    bool
	SimulationInterval time.Duration

	MetricsEnabled   bool
	MetricsNamespace string
	MetricsInterval  time.Duration
	XRayEnabled      bool

	LoginRateLimit float64 // attempts per second per client
	LoginBurst     int

	AdminUsername string
	AdminPassword string
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn.Printf("[config.Load] Could not load .env file: %v", err)
	}

	var errs []string
	intVar := func(key, fallback string) int {
		v, err := strconv.Atoi(getEnv(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return v
	}
	boolVar := func(key, fallback string) bool {
		v, err := strconv.ParseBool(getEnv(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return v
	}
	floatVar := func(key, fallback string) float64 {
		v, err := strconv.ParseFloat(getEnv(key, fallback), 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return v
	}
	durationVar := func(key, fallback string) time.Duration {
		v, err := time.ParseDuration(getEnv(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return v
	}

	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AppName:        getEnv("APP_NAME", "nilakkal-police"),
		SessionSecret:  getEnv("SESSION_SECRET", "nilakkal-dev-secret"),
		LogDir:         getEnv("LOG_DIR", "logs"),
		ApplicationURL: getEnv("APPLICATION_URL", "http://localhost:8080"),

		BackupDriver:     strings.ToLower(getEnv("BACKUP_DRIVER", DriverFile)),
		BackupDir:        getEnv("BACKUP_DIR", "data"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          intVar("REDIS_DB", "0"),
		AutoSaveInterval: durationVar("AUTOSAVE_INTERVAL", "5m"),

		SeedZones:     intVar("SEED_ZONES", "20"),
		ZoneCapacity:  intVar("ZONE_CAPACITY", "50"),
		SeedOccupancy: boolVar("SEED_OCCUPANCY", "true"),

		SimulateTraffic:    boolVar("SIMULATE_TRAFFIC", "false"),
		SimulationInterval: durationVar("SIMULATION_INTERVAL", "3s"),

		MetricsEnabled:   boolVar("METRICS_ENABLED", "false"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "NilakkalParking"),
		MetricsInterval:  durationVar("METRICS_INTERVAL", "1m"),
		XRayEnabled:      boolVar("XRAY_ENABLED", "false"),

		LoginRateLimit: floatVar("LOGIN_RATE_LIMIT", "0.2"),
		LoginBurst:     intVar("LOGIN_BURST", "5"),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	switch cfg.BackupDriver {
	case DriverFile:
	case DriverRedis:
		if cfg.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required when BACKUP_DRIVER=redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("BACKUP_DRIVER: unknown driver %q", cfg.BackupDriver))
	}
	if cfg.SeedZones < 0 || cfg.ZoneCapacity < 0 {
		errs = append(errs, "SEED_ZONES and ZONE_CAPACITY must not be negative")
	}
	if cfg.Production() && cfg.SessionSecret == "nilakkal-dev-secret" {
		logger.Warn.Println("[config.Load] SESSION_SECRET is not set; using the development secret in production")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	logger.Debug.Printf("[config] %s not set, using default %q", key, fallback)
	return fallback
}
