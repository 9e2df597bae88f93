package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ugandalearn/learn-service/internal/events"
	"github.com/ugandalearn/learn-service/internal/llm"
)

const (
	AuthProviderCasdoor = "casdoor"
	AuthProviderJWT     = "jwt"
)

type Config struct {
	Port            string        `yaml:"port"`
	Environment     string        `yaml:"environment"`
	LogLevel        string        `yaml:"log_level"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Database DatabaseConfig `yaml:"database"`
	RedisURL string         `yaml:"redis_url"`

	Auth    AuthConfig    `yaml:"auth"`
	Casdoor CasdoorConfig `yaml:"casdoor"`

	LLM    llm.Config    `yaml:"llm"`
	Events events.Config `yaml:"events"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// AuthConfig selects how bearer tokens are verified
type AuthConfig struct {
	Provider  string `yaml:"provider"`
	JWTSecret string `yaml:"jwt_secret"`
}

type CasdoorConfig struct {
	Endpoint     string `yaml:"endpoint"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Cert         string `yaml:"cert"`
	Organization string `yaml:"organization"`
	Application  string `yaml:"application"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:            "8080",
		Environment:     "development",
		LogLevel:        "info",
		RequestTimeout:  90 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Auth: AuthConfig{
			Provider: AuthProviderCasdoor,
		},
		LLM: llm.DefaultConfig(),
		Events: events.Config{
			Driver:      events.DriverGoChannel,
			TopicPrefix: "learn.",
		},
	}
}

// LoadConfig reads .env when present, then the YAML file named by
// APP_CONFIG_FILE, then environment variables. Later sources win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := DefaultConfig()
	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	e := &envReader{}

	e.str("PORT", &c.Port)
	e.str("ENVIRONMENT", &c.Environment)
	e.str("LOG_LEVEL", &c.LogLevel)
	e.duration("REQUEST_TIMEOUT", &c.RequestTimeout)
	e.duration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)

	e.str("DATABASE_URL", &c.Database.URL)
	e.str("DB_HOST", &c.Database.Host)
	e.integer("DB_PORT", &c.Database.Port)
	e.str("DB_USER", &c.Database.User)
	e.str("DB_PASSWORD", &c.Database.Password)
	e.str("DB_NAME", &c.Database.Name)
	e.str("DB_SSLMODE", &c.Database.SSLMode)
	e.integer("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	e.integer("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	e.duration("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime)
	e.boolean("DB_AUTO_MIGRATE", &c.Database.AutoMigrate)

	e.str("REDIS_URL", &c.RedisURL)

	e.str("AUTH_PROVIDER", &c.Auth.Provider)
	e.str("JWT_SECRET", &c.Auth.JWTSecret)

	e.str("CASDOOR_ENDPOINT", &c.Casdoor.Endpoint)
	e.str("CASDOOR_CLIENT_ID", &c.Casdoor.ClientID)
	e.str("CASDOOR_CLIENT_SECRET", &c.Casdoor.ClientSecret)
	e.str("CASDOOR_CERT", &c.Casdoor.Cert)
	e.str("CASDOOR_ORGANIZATION", &c.Casdoor.Organization)
	e.str("CASDOOR_APPLICATION", &c.Casdoor.Application)

	e.str("LLM_PROVIDER", &c.LLM.Provider)
	e.str("LLM_GATEWAY_URL", &c.LLM.Gateway.URL)
	e.str("LLM_API_KEY", &c.LLM.Gateway.APIKey)
	e.str("LLM_MODEL", &c.LLM.Gateway.Model)
	e.duration("LLM_TIMEOUT", &c.LLM.Gateway.Timeout)
	e.str("OPENAI_API_KEY", &c.LLM.OpenAI.APIKey)
	e.str("OPENAI_MODEL", &c.LLM.OpenAI.Model)
	e.str("OPENAI_BASE_URL", &c.LLM.OpenAI.BaseURL)
	e.str("ANTHROPIC_API_KEY", &c.LLM.Anthropic.APIKey)
	e.str("ANTHROPIC_MODEL", &c.LLM.Anthropic.Model)
	e.str("ANTHROPIC_BASE_URL", &c.LLM.Anthropic.BaseURL)
	e.str("GEMINI_API_KEY", &c.LLM.Gemini.APIKey)
	e.str("GEMINI_MODEL", &c.LLM.Gemini.Model)
	e.integer("LLM_MAX_TOKENS", &c.LLM.MaxTokens)
	e.float("LLM_TEMPERATURE", &c.LLM.Temperature)

	e.str("EVENTS_DRIVER", &c.Events.Driver)
	e.list("KAFKA_BROKERS", &c.Events.KafkaBrokers)
	e.str("EVENTS_TOPIC_PREFIX", &c.Events.TopicPrefix)

	return errors.Join(e.errs...)
}

// Validate reports every missing or inconsistent value needed to serve
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.Database.URL == "" && c.Database.Name == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_NAME is required"))
	}

	switch c.Auth.Provider {
	case AuthProviderCasdoor:
		if c.Casdoor.Endpoint == "" || c.Casdoor.Cert == "" {
			errs = append(errs, errors.New("CASDOOR_ENDPOINT and CASDOOR_CERT are required for casdoor auth"))
		}
	case AuthProviderJWT:
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required for jwt auth"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth provider %q", c.Auth.Provider))
	}

	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Events.Driver == events.DriverKafka && len(c.Events.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka event driver"))
	}

	return errors.Join(errs...)
}

// DSN returns the postgres connection string, built from parts when no URL
// is configured
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// envReader applies set environment variables and collects parse errors
type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, v))
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: invalid number %q", key, v))
			return
		}
		*dst = f
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
			return
		}
		*dst = d
	}
}

func (e *envReader) list(key string, dst *[]string) {
	if v, ok := e.lookup(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
	}
}
