package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jengzang/accident-risk-go/internal/engine"
	"github.com/jengzang/accident-risk-go/internal/index"
	"github.com/jengzang/accident-risk-go/internal/risk"
)

// ErrInvalidConfig is returned for configurations rejected at startup
var ErrInvalidConfig = engine.ErrInvalidConfig

// Source kinds
const (
	SourceCSV      = "csv"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Source    SourceConfig    `yaml:"source"`
	Query     QueryConfig     `yaml:"query"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Reload    ReloadConfig    `yaml:"reload"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Port string `yaml:"port" validate:"required"`
}

// SourceConfig selects the raw accident source
type SourceConfig struct {
	Kind      string `yaml:"kind" validate:"oneof=csv sqlite postgres"`
	Path      string `yaml:"path" validate:"required_unless=Kind postgres"`
	DSN       string `yaml:"dsn" validate:"required_if=Kind postgres"`
	HasHeader bool   `yaml:"has_header"`
	Comma     string `yaml:"comma"`
	Timezone  string `yaml:"timezone" validate:"required"`
}

// QueryConfig mirrors engine.Config in file/env form
type QueryConfig struct {
	SearchRadius   float64         `yaml:"search_radius" validate:"gte=0"`
	BoxEpsilon     float64         `yaml:"box_epsilon" validate:"gt=0"`
	HourHalfWidth  int             `yaml:"hour_half_width" validate:"gte=0,lte=12"`
	DayHalfWidth   int             `yaml:"day_half_width" validate:"gte=0,lte=183"`
	TemporalDesign string          `yaml:"temporal_design" validate:"oneof=interval grid"`
	GridLevel      int             `yaml:"grid_level" validate:"gte=0,lte=30"`
	BucketWidth    int             `yaml:"bucket_width" validate:"gt=0,lte=24"`
	BucketSpread   int             `yaml:"bucket_spread" validate:"gte=0"`
	RingRadius     int             `yaml:"ring_radius" validate:"gte=0"`
	Thresholds     risk.Thresholds `yaml:"thresholds"`
}

// AuthConfig enables bearer-token auth when JWTSecret is set
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// RateLimitConfig limits requests per client IP
type RateLimitConfig struct {
	Requests int           `yaml:"requests" validate:"gte=0"`
	Window   time.Duration `yaml:"window" validate:"gte=0"`
}

// ReloadConfig schedules periodic dataset reloads (cron expression, empty disables)
type ReloadConfig struct {
	Schedule string `yaml:"schedule"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: ":8080"},
		Source: SourceConfig{
			Kind:     SourceCSV,
			Path:     "./data/accidents.csv",
			Comma:    ",",
			Timezone: "Local",
		},
		Query: QueryConfig{
			SearchRadius:   0.0045,
			BoxEpsilon:     0.0001,
			HourHalfWidth:  1,
			DayHalfWidth:   30,
			TemporalDesign: string(index.DesignInterval),
			GridLevel:      14,
			BucketWidth:    1,
			RingRadius:     1,
			Thresholds:     risk.DefaultThresholds(),
		},
		RateLimit: RateLimitConfig{Requests: 120, Window: time.Minute},
	}
}

// Load 加载配置: defaults, then the YAML file named by RISK_CONFIG, then .env, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[Config] Warning: failed to read .env: %v", err)
	}

	cfg := Default()
	if path := os.Getenv("RISK_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays a YAML file onto cfg
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables; malformed numbers are ignored with a warning
func (c *Config) ApplyEnv(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				*dst = i
			} else {
				log.Printf("[Config] Warning: ignoring %s=%q: %v", key, v, err)
			}
		}
	}
	float := func(key string, dst *float64) {
		if v := getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			} else {
				log.Printf("[Config] Warning: ignoring %s=%q: %v", key, v, err)
			}
		}
	}

	str("PORT", &c.Server.Port)

	str("SOURCE_KIND", &c.Source.Kind)
	str("SOURCE_PATH", &c.Source.Path)
	str("SOURCE_DSN", &c.Source.DSN)
	str("SOURCE_TIMEZONE", &c.Source.Timezone)
	str("SOURCE_COMMA", &c.Source.Comma)
	if v := getenv("SOURCE_HAS_HEADER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Source.HasHeader = b
		}
	}

	float("QUERY_SEARCH_RADIUS", &c.Query.SearchRadius)
	float("QUERY_BOX_EPSILON", &c.Query.BoxEpsilon)
	num("QUERY_HOUR_HALF_WIDTH", &c.Query.HourHalfWidth)
	num("QUERY_DAY_HALF_WIDTH", &c.Query.DayHalfWidth)
	str("QUERY_TEMPORAL_DESIGN", &c.Query.TemporalDesign)
	num("QUERY_GRID_LEVEL", &c.Query.GridLevel)
	num("QUERY_BUCKET_WIDTH", &c.Query.BucketWidth)
	num("QUERY_BUCKET_SPREAD", &c.Query.BucketSpread)
	num("QUERY_RING_RADIUS", &c.Query.RingRadius)
	num("RISK_SEVERE_ABOVE", &c.Query.Thresholds.SevereAbove)
	num("RISK_DANGEROUS_AT_LEAST", &c.Query.Thresholds.DangerousAtLeast)
	num("RISK_MODERATE_AT_LEAST", &c.Query.Thresholds.ModerateAtLeast)

	str("JWT_SECRET", &c.Auth.JWTSecret)

	num("RATE_LIMIT_REQUESTS", &c.RateLimit.Requests)
	if v := getenv("RATE_LIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateLimit.Window = d
		}
	}

	str("RELOAD_SCHEDULE", &c.Reload.Schedule)
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules the engine relies on
func (c *Config) Validate() error {
	c.Query.TemporalDesign = strings.ToLower(strings.TrimSpace(c.Query.TemporalDesign))
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Source.CommaRune(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	ec, err := c.EngineConfig()
	if err != nil {
		return err
	}
	return ec.Validate()
}

// Location resolves the source timezone
func (c *Config) Location() (*time.Location, error) {
	if strings.EqualFold(c.Source.Timezone, "local") || c.Source.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Source.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Source.Timezone, err)
	}
	return loc, nil
}

// CommaRune returns the CSV field separator; empty means ','
func (s SourceConfig) CommaRune() (rune, error) {
	if s.Comma == "" {
		return ',', nil
	}
	sep := []rune(s.Comma)
	if len(sep) != 1 || sep[0] == '"' || sep[0] == '\r' || sep[0] == '\n' || sep[0] == utf8.RuneError {
		return 0, fmt.Errorf("invalid CSV separator %q", s.Comma)
	}
	return sep[0], nil
}

// EngineConfig converts the query section into the engine's configuration
func (c *Config) EngineConfig() (engine.Config, error) {
	design, err := index.ParseDesign(c.Query.TemporalDesign)
	if err != nil {
		return engine.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	loc, err := c.Location()
	if err != nil {
		return engine.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return engine.Config{
		SearchRadius:  c.Query.SearchRadius,
		BoxEpsilon:    c.Query.BoxEpsilon,
		HourHalfWidth: c.Query.HourHalfWidth,
		DayHalfWidth:  c.Query.DayHalfWidth,
		Design:        design,
		Grid: index.GridOptions{
			Level:        c.Query.GridLevel,
			BucketWidth:  c.Query.BucketWidth,
			BucketSpread: c.Query.BucketSpread,
			RingRadius:   c.Query.RingRadius,
		},
		Thresholds: c.Query.Thresholds,
		Location:   loc,
	}, nil
}
