package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/technosupport/live-urlgen/internal/ratelimit"
	"github.com/technosupport/live-urlgen/internal/urlgen"
)

const DefaultPath = "config/default.yaml"

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Example   urlgen.FormInput `yaml:"example"`
	Signing   SigningConfig    `yaml:"signing"`
	Redis     RedisConfig      `yaml:"redis"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
	Auth      AuthConfig       `yaml:"auth"`
	Events    EventsConfig     `yaml:"events"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For /
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

type SigningConfig struct {
	// TTL bounds the age accepted by /validate; 0 disables the check.
	TTL             time.Duration `yaml:"ttl"`
	ClockSkew       time.Duration `yaml:"clock_skew"`
	ReplayCacheSize int           `yaml:"replay_cache_size"`
	Debug           bool          `yaml:"debug"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type RateLimitConfig struct {
	Enabled bool                  `yaml:"enabled"`
	Salt    string                `yaml:"salt"`
	PerIP   ratelimit.LimitConfig `yaml:"per_ip"`
}

type AuthConfig struct {
	// When set, POST routes require a bearer token signed with this key.
	JWTSigningKey string `yaml:"jwt_signing_key"`
}

type EventsConfig struct {
	NatsURL    string `yaml:"nats_url"`
	Subject    string `yaml:"subject"`
	MaxRetries int    `yaml:"max_retries"`
}

// Example is the form data the original page pre-fills.
func Example() urlgen.FormInput {
	return urlgen.FormInput{
		IngestDomain:         "push.example.com",
		IngestValidationKey:  "ingestkey",
		StreamDomain:         "pull.example.com",
		StreamValidationKey:  "streamkey",
		TranscodingTemplates: "lhd,lud,lsd",
		AppName:              "live",
		StreamName:           "123",
	}
}

// Empty is the cleared form.
func Empty() urlgen.FormInput {
	return urlgen.FormInput{}
}

func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8090", ShutdownTimeout: 10 * time.Second},
		Example: Example(),
		Signing: SigningConfig{TTL: 30 * time.Minute, ClockSkew: 5 * time.Second, ReplayCacheSize: 4096},
		RateLimit: RateLimitConfig{
			Salt:  "urlgen-salt",
			PerIP: ratelimit.LimitConfig{Rate: 60, Window: time.Minute},
		},
		Events: EventsConfig{Subject: "urlgen.generated", MaxRetries: 2},
	}
}

// ResolvePath returns URLGEN_CONFIG or the default path.
func ResolvePath(custom string) string {
	if custom != "" {
		return custom
	}
	if p := os.Getenv("URLGEN_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path over the defaults, then applies env overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if cfg.RateLimit.Enabled {
		if err := cfg.RateLimit.PerIP.Validate(); err != nil {
			return nil, fmt.Errorf("config %s: rate_limit.per_ip: %w", path, err)
		}
	}
	return cfg, nil
}

// RestartRequired names the sections that differ between the running config
// and next but are only read at startup.
func RestartRequired(running, next *Config) []string {
	var out []string
	if running.Server != next.Server {
		out = append(out, "server")
	}
	if running.Signing.ReplayCacheSize != next.Signing.ReplayCacheSize {
		out = append(out, "signing.replay_cache_size")
	}
	if running.Redis != next.Redis {
		out = append(out, "redis")
	}
	if running.RateLimit != next.RateLimit {
		out = append(out, "rate_limit")
	}
	if running.Auth != next.Auth {
		out = append(out, "auth")
	}
	if running.Events != next.Events {
		out = append(out, "events")
	}
	return out
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("URLGEN_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.RateLimit.Enabled = true
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		cfg.Auth.JWTSigningKey = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.Events.NatsURL = v
	}
	if v := os.Getenv("URLGEN_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Signing.Debug = b
		}
	}
}

// Store holds the live config; readers always see a complete snapshot.
type Store struct {
	p atomic.Pointer[Config]
}

func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.p.Store(cfg)
	return s
}

func (s *Store) Get() *Config {
	return s.p.Load()
}

func (s *Store) Set(cfg *Config) {
	s.p.Store(cfg)
}
