package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "pos"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	LedgerDriverMemory = "memory"
	LedgerDriverSQLite = "sqlite"
)

type Config struct {
	App     AppConfig
	Station StationConfig
	Backend BackendConfig
	Redis   RedisConfig
	Ledger  LedgerConfig
	Refresh RefreshConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" default:"dev"`
	Port         string `envconfig:"POS_APP_PORT" default:"8090"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StationConfig identifies this POS terminal.
type StationConfig struct {
	Name         string `envconfig:"POS_STATION_NAME" default:"station-1"`
	DefaultTable string `envconfig:"POS_STATION_DEFAULT_TABLE" default:"N/A"`
}

// BackendConfig points at the remote cafeteria inventory service.
type BackendConfig struct {
	BaseURL        string        `envconfig:"POS_BACKEND_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"POS_BACKEND_REQUEST_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint has been configured at all. The
// station degrades to in-memory loyalty storage without one.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// LedgerConfig selects the sales history store.
type LedgerConfig struct {
	Driver       string `envconfig:"POS_LEDGER_DRIVER" default:"memory"`
	SQLitePath   string `envconfig:"POS_LEDGER_SQLITE_PATH" default:"pos_ledger.db"`
	DisplayLimit int    `envconfig:"POS_LEDGER_DISPLAY_LIMIT" default:"10"`
}

func (l LedgerConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Driver)) {
	case LedgerDriverMemory, LedgerDriverSQLite:
	default:
		return fmt.Errorf("ledger driver must be %q or %q", LedgerDriverMemory, LedgerDriverSQLite)
	}
	if l.Driver == LedgerDriverSQLite && strings.TrimSpace(l.SQLitePath) == "" {
		return fmt.Errorf("sqlite ledger requires a database path")
	}
	if l.DisplayLimit <= 0 {
		return fmt.Errorf("ledger display limit must be positive")
	}
	return nil
}

// UseSQLite reports whether the durable sqlite ledger is selected.
func (l LedgerConfig) UseSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(l.Driver), LedgerDriverSQLite)
}

// RefreshConfig drives the background catalog reload job.
type RefreshConfig struct {
	Enabled  bool          `envconfig:"POS_CATALOG_REFRESH_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"POS_CATALOG_REFRESH_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"POS_CATALOG_REFRESH_LOCK_TTL" default:"1m"`
}
