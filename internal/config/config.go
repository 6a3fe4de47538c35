package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	SessionBackendSQL   = "sql"
	SessionBackendRedis = "redis"
)

type Config struct {
	Env          string `envconfig:"APP_ENV" default:"development"`
	Port         string `envconfig:"PORT" default:"8080"`
	DBDriver     string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN        string `envconfig:"DB_DSN" default:"storefront.db"`
	StaticDir    string `envconfig:"STATIC_DIR" default:"./web/static"`
	TemplatesDir string `envconfig:"TEMPLATES_DIR" default:"./web/templates"`
	LogFile      string `envconfig:"LOG_FILE"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"`

	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"sql"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	RedisURL       string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	ShippingFee string `envconfig:"SHIPPING_FEE" default:"1000.00"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"10"`

	RateLimitPerMinute  int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	LoginLimitPer10Min  int `envconfig:"LOGIN_LIMIT_PER_10_MIN" default:"5"`
	MaxRequestBodyBytes int `envconfig:"MAX_REQUEST_BODY_BYTES" default:"1048576"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Admin"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.SessionBackend {
	case SessionBackendSQL, SessionBackendRedis:
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return fmt.Errorf("invalid SHIPPING_FEE %q: %w", c.ShippingFee, err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("SHIPPING_FEE must not be negative")
	}
	return nil
}

func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Shipping returns the flat shipping surcharge. Validate guarantees it parses.
func (c Config) Shipping() decimal.Decimal {
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return decimal.Zero
	}
	return fee
}

// Default mirrors the envconfig defaults without reading the environment.
func Default() Config {
	return Config{
		Env:                 EnvDevelopment,
		Port:                "8080",
		DBDriver:            "sqlite",
		DBDSN:               "storefront.db",
		StaticDir:           "./web/static",
		TemplatesDir:        "./web/templates",
		LogLevel:            "info",
		LogFormat:           "json",
		SessionBackend:      SessionBackendSQL,
		SessionTTL:          7 * 24 * time.Hour,
		RedisURL:            "redis://localhost:6379/0",
		ShippingFee:         "1000.00",
		BcryptCost:          10,
		RateLimitPerMinute:  60,
		LoginLimitPer10Min:  5,
		MaxRequestBodyBytes: 1 << 20,
		AdminName:           "Admin",
	}
}
