package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"dev"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	HTTPPort        int           `envconfig:"HTTP_PORT" default:"8080"`
	GRPCPort        int           `envconfig:"GRPC_PORT" default:"8081"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// An empty RedisAddr keeps cart snapshots in process memory.
	RedisAddr            string        `envconfig:"REDIS_ADDR"`
	RedisKeyPrefix       string        `envconfig:"REDIS_KEY_PREFIX" default:"storefront:session"`
	RedisConnectAttempts int           `envconfig:"REDIS_CONNECT_ATTEMPTS" default:"5"`
	CartTTL              time.Duration `envconfig:"CART_TTL" default:"720h"`

	SessionCacheSize int    `envconfig:"SESSION_CACHE_SIZE" default:"4096"`
	SessionCookie    string `envconfig:"SESSION_COOKIE" default:"shop_session-id"`

	// BackendURL skips port discovery when set.
	BackendURL          string        `envconfig:"BACKEND_URL"`
	BackendHost         string        `envconfig:"BACKEND_HOST" default:"localhost"`
	BackendPorts        []int         `envconfig:"BACKEND_PORTS" default:"5001,5002,5003,5004,5005"`
	BackendFallbackPort int           `envconfig:"BACKEND_FALLBACK_PORT" default:"5001"`
	BackendProbeTimeout time.Duration `envconfig:"BACKEND_PROBE_TIMEOUT" default:"2s"`
	BackendTimeout      time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	CheckoutMaxConcurrent int `envconfig:"CHECKOUT_MAX_CONCURRENT" default:"10"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var problems []string

	if !validPort(c.HTTPPort) {
		problems = append(problems, fmt.Sprintf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if !validPort(c.GRPCPort) {
		problems = append(problems, fmt.Sprintf("GRPC_PORT %d out of range", c.GRPCPort))
	}
	if c.HTTPPort == c.GRPCPort {
		problems = append(problems, "HTTP_PORT and GRPC_PORT must differ")
	}
	for _, p := range c.BackendPorts {
		if !validPort(p) {
			problems = append(problems, fmt.Sprintf("BACKEND_PORTS entry %d out of range", p))
		}
	}
	if !validPort(c.BackendFallbackPort) {
		problems = append(problems, fmt.Sprintf("BACKEND_FALLBACK_PORT %d out of range", c.BackendFallbackPort))
	}
	if c.SessionCacheSize <= 0 {
		problems = append(problems, "SESSION_CACHE_SIZE must be positive")
	}
	if strings.TrimSpace(c.SessionCookie) == "" {
		problems = append(problems, "SESSION_COOKIE is required")
	}
	if c.CartTTL < 0 {
		problems = append(problems, "CART_TTL cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// UseRedis reports whether cart snapshots go to Redis.
func (c Config) UseRedis() bool { return strings.TrimSpace(c.RedisAddr) != "" }

func validPort(p int) bool { return p > 0 && p < 65536 }
