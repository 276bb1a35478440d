package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SHOPCORE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "SHOPCORE_APP_ENV"
	EnvPort     = "SHOPCORE_APP_PORT"
	EnvDBDSN    = "SHOPCORE_DB_DSN"
	EnvDBHost   = "SHOPCORE_DB_HOST"
	EnvDBUser   = "SHOPCORE_DB_USER"
	EnvDBName   = "SHOPCORE_DB_NAME"
	EnvRedisURL = "SHOPCORE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Inventory    InventoryConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPCORE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPCORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPCORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPCORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPCORE_DB_DSN"`
	Driver string `envconfig:"SHOPCORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPCORE_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPCORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPCORE_DB_USER"`
	LegacyPassword string `envconfig:"SHOPCORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPCORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPCORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPCORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPCORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPCORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPCORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPCORE_REDIS_URL"`
	Address      string        `envconfig:"SHOPCORE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPCORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPCORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPCORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPCORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPCORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPCORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPCORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all. The cache is
// optional; the service falls back to direct reads when it is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type InventoryConfig struct {
	AvailabilityCacheTTL time.Duration `envconfig:"SHOPCORE_INVENTORY_CACHE_TTL" default:"30s"`
	DefaultMaxStockLevel int           `envconfig:"SHOPCORE_INVENTORY_DEFAULT_MAX_STOCK" default:"1000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPCORE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
