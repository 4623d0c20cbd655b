package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultBackendURL = "http://localhost:5000"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Upload     UploadConfig     `yaml:"upload"`
	Limiter    LimiterConfig    `yaml:"limiter"`
	CORS       CORSConfig       `yaml:"cors"`
	Log        LogConfig        `yaml:"log"`
	HTTPClient HTTPClientConfig `yaml:"http_client"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// PublicURL is the origin the rendered pages use when calling the proxy API.
	PublicURL string `yaml:"public_url"`
	BodyLimit int    `yaml:"body_limit"`
	Debug     bool   `yaml:"debug"`
}

type BackendConfig struct {
	URL string `yaml:"url"`
}

type UploadConfig struct {
	TempDir string `yaml:"temp_dir"`
}

type LimiterConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type HTTPClientConfig struct {
	// Timeout of zero leaves backend calls unbounded.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "3000",
			BodyLimit: 50 * 1024 * 1024,
		},
		Backend: BackendConfig{
			URL: DefaultBackendURL,
		},
		Upload: UploadConfig{
			TempDir: os.TempDir(),
		},
		Limiter: LimiterConfig{
			Max:    100,
			Window: time.Minute,
		},
		CORS: CORSConfig{
			AllowOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from an optional .env file, an optional YAML file
// named by CONFIG_FILE and environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.PublicURL = getEnv("PUBLIC_URL", cfg.Server.PublicURL)
	cfg.Server.BodyLimit = getEnvInt("BODY_LIMIT", cfg.Server.BodyLimit)
	cfg.Server.Debug = getEnvBool("DEBUG", cfg.Server.Debug)
	cfg.Backend.URL = getEnv("BACKEND_API_URL", cfg.Backend.URL)
	cfg.Upload.TempDir = getEnv("UPLOAD_TEMP_DIR", cfg.Upload.TempDir)
	cfg.Limiter.Max = getEnvInt("RATE_LIMIT_MAX", cfg.Limiter.Max)
	cfg.Limiter.Window = getEnvSeconds("RATE_LIMIT_WINDOW_SEC", cfg.Limiter.Window)
	cfg.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", cfg.CORS.AllowOrigins)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.HTTPClient.Timeout = getEnvSeconds("HTTP_TIMEOUT_SEC", cfg.HTTPClient.Timeout)

	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://127.0.0.1:" + cfg.Server.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Server.Port)
	}
	if err := validateBaseURL("BACKEND_API_URL", c.Backend.URL); err != nil {
		return err
	}
	if err := validateBaseURL("PUBLIC_URL", c.Server.PublicURL); err != nil {
		return err
	}
	if c.Server.BodyLimit <= 0 {
		return fmt.Errorf("BODY_LIMIT must be positive")
	}
	if c.Upload.TempDir == "" {
		return fmt.Errorf("UPLOAD_TEMP_DIR cannot be empty")
	}
	if c.Limiter.Max < 0 {
		return fmt.Errorf("RATE_LIMIT_MAX cannot be negative")
	}
	if c.Limiter.Max > 0 && c.Limiter.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SEC must be positive")
	}
	if c.HTTPClient.Timeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SEC cannot be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	return nil
}

func validateBaseURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL", key)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		fmt.Fprintf(os.Stderr, "WARNING: Invalid integer value for %s: %s, using default: %d\n", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
		fmt.Fprintf(os.Stderr, "WARNING: Invalid integer value for %s: %s, using default: %s\n", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
