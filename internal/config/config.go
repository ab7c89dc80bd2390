package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"home_energy/internal/apperr"
)

// EnvPrefix is prepended to every environment override, e.g. ENERGY_DB_PATH.
const EnvPrefix = "ENERGY"

// Config holds all configuration for the service
type Config struct {
	Port      string          `mapstructure:"port"`
	Timezone  string          `mapstructure:"timezone"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type PricingConfig struct {
	PricePerKWh float64 `mapstructure:"price_per_kwh"`
	Currency    string  `mapstructure:"currency"`
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

// TelemetryConfig tunes the realtime generator's retry policy.
type TelemetryConfig struct {
	RetryMax     int           `mapstructure:"retry_max"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

// CORSConfig lists browser origins allowed to call the API; empty disables CORS.
type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

// RateLimitConfig bounds auth attempts per client IP and device writes per
// account. Zero attempts disables a limiter.
type RateLimitConfig struct {
	AuthAttempts   int           `mapstructure:"auth_attempts"`
	AuthWindow     time.Duration `mapstructure:"auth_window"`
	DeviceAttempts int           `mapstructure:"device_attempts"`
	DeviceWindow   time.Duration `mapstructure:"device_window"`
}

// Location resolves Timezone. An empty value means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, apperr.Configuration("timezone %q: %v", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configs/config.yml (or the file at path when non-empty), applies
// ENERGY_* environment overrides and validates the result. A missing default
// config file is not an error; every key has a default.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("timezone", "Local")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("db.path", "energy.db")

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", "12h")

	// flat tariff
	v.SetDefault("pricing.price_per_kwh", 0.12)
	v.SetDefault("pricing.currency", "USD")

	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("telemetry.retry_max", 3)
	v.SetDefault("telemetry.retry_backoff", "500ms")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "home_energy")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("cors.max_age", "12h")

	v.SetDefault("ratelimit.auth_attempts", 5)
	v.SetDefault("ratelimit.auth_window", "15m")
	v.SetDefault("ratelimit.device_attempts", 20)
	v.SetDefault("ratelimit.device_window", "5m")
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return apperr.Configuration("port is required")
	case c.DB.Path == "":
		return apperr.Configuration("db.path is required")
	case c.Auth.SigningKey == "":
		return apperr.Configuration("auth.signing_key is required")
	case c.Auth.TokenTTL <= 0:
		return apperr.Configuration("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	case c.Pricing.PricePerKWh < 0 || math.IsNaN(c.Pricing.PricePerKWh) || math.IsInf(c.Pricing.PricePerKWh, 0):
		return apperr.Configuration("pricing.price_per_kwh must be a non-negative number, got %v", c.Pricing.PricePerKWh)
	case c.Pricing.Currency == "":
		return apperr.Configuration("pricing.currency is required")
	case c.Telemetry.RetryMax < 0:
		return apperr.Configuration("telemetry.retry_max must not be negative, got %d", c.Telemetry.RetryMax)
	case c.Telemetry.RetryBackoff < 0:
		return apperr.Configuration("telemetry.retry_backoff must not be negative, got %s", c.Telemetry.RetryBackoff)
	case c.MQTT.Enabled && c.MQTT.Broker == "":
		return apperr.Configuration("mqtt.broker is required when mqtt.enabled is set")
	case c.RateLimit.AuthAttempts < 0 || c.RateLimit.DeviceAttempts < 0:
		return apperr.Configuration("ratelimit attempts must not be negative")
	case c.RateLimit.AuthAttempts > 0 && c.RateLimit.AuthWindow <= 0:
		return apperr.Configuration("ratelimit.auth_window must be positive, got %s", c.RateLimit.AuthWindow)
	case c.RateLimit.DeviceAttempts > 0 && c.RateLimit.DeviceWindow <= 0:
		return apperr.Configuration("ratelimit.device_window must be positive, got %s", c.RateLimit.DeviceWindow)
	}
	for _, o := range c.CORS.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return apperr.Configuration("cors.allowed_origins: %q must be \"*\" or start with http:// or https://", o)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
