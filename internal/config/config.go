package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Environments recognized in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	// HTTP server
	Port               string
	CORSAllowedOrigins []string

	// Database
	DBPath string

	// Tokens and passwords
	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	// Credential endpoints are limited per client IP
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Federated login
	GoogleClientID           string
	AllowUnverifiedFederated bool

	// AMQP events, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string

	// Logging
	Env       string
	LogLevel  string
	LogFormat string

	// Malformed variables seen by Load, reported by Validate
	loadProblems []string
}

// Load reads the configuration from the environment. Variables from a .env
// file in the working directory are applied first, without overriding
// variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := &envReader{}
	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DBPath: getEnv("DB_PATH", "finease.db"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTL:     env.getDuration("JWT_TTL", 7*24*time.Hour),
		BcryptCost: env.getInt("BCRYPT_COST", bcrypt.DefaultCost),

		AuthRateLimit:  env.getInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: env.getDuration("AUTH_RATE_WINDOW", 15*time.Minute),

		GoogleClientID:           os.Getenv("GOOGLE_CLIENT_ID"),
		AllowUnverifiedFederated: env.getBool("ALLOW_UNVERIFIED_FEDERATED", false),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finease.events"),

		Env:       getEnv("APP_ENV", EnvDevelopment),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
	cfg.loadProblems = env.problems
	return cfg, nil
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.loadProblems...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if c.IsProduction() && len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters in production")
	}
	if c.JWTTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid token lifetime %v: must be at least 1 minute", c.JWTTTL))
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("invalid bcrypt cost %d: must be between %d and %d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	if c.AuthRateLimit < 0 {
		problems = append(problems, fmt.Sprintf("invalid auth rate limit %d: must not be negative", c.AuthRateLimit))
	}
	if c.AuthRateLimit > 0 && c.AuthRateWindow <= 0 {
		problems = append(problems, fmt.Sprintf("invalid auth rate window %v: must be positive", c.AuthRateWindow))
	}

	if c.GoogleClientID != "" && c.AllowUnverifiedFederated {
		problems = append(problems, "ALLOW_UNVERIFIED_FEDERATED cannot be combined with GOOGLE_CLIENT_ID")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		problems = append(problems, fmt.Sprintf("invalid environment '%s': must be one of development, production, test", c.Env))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables, remembering the ones it could not parse.
// Unparseable values fall back to the default.
type envReader struct {
	problems []string
}

func (e *envReader) invalid(key, value, want string) {
	e.problems = append(e.problems, fmt.Sprintf("invalid %s '%s': must be %s", key, value, want))
}

func (e *envReader) getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		e.invalid(key, value, "an integer")
		return defaultValue
	}
	return i
}

func (e *envReader) getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.invalid(key, value, "true or false")
		return defaultValue
	}
	return b
}

func (e *envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.invalid(key, value, "a duration such as 15m or 24h")
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
