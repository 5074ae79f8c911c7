package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Session  SessionConfig  `yaml:"session"`
	Logger   LoggerConfig   `yaml:"logger"`
}

// APIConfig controls the REST gateway client.
type APIConfig struct {
	BaseURL          string `yaml:"base_url"`
	RequestTimeoutMS int    `yaml:"request_timeout_ms"`
}

// RealtimeConfig controls the push channel and its reconnection policy.
type RealtimeConfig struct {
	URL                 string `yaml:"url"`
	DialTimeoutMS       int    `yaml:"dial_timeout_ms"`
	ReconnectDelayMS    int    `yaml:"reconnect_delay_ms"`
	ReconnectDelayMaxMS int    `yaml:"reconnect_delay_max_ms"`
}

// SessionConfig locates the persisted bearer token.
type SessionConfig struct {
	TokenPath string `yaml:"token_path"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from environment variables, applying defaults
// where possible. An optional YAML file at path overrides env values; an
// empty path or a missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL:          getEnv("SUPPORTHUB_API_URL", "http://localhost:3333"),
			RequestTimeoutMS: getEnvAsInt("SUPPORTHUB_REQUEST_TIMEOUT_MS", 10000),
		},
		Realtime: RealtimeConfig{
			URL:                 getEnv("SUPPORTHUB_SOCKET_URL", "ws://localhost:3333/ws"),
			DialTimeoutMS:       getEnvAsInt("SUPPORTHUB_DIAL_TIMEOUT_MS", 20000),
			ReconnectDelayMS:    getEnvAsInt("SUPPORTHUB_RECONNECT_DELAY_MS", 1000),
			ReconnectDelayMaxMS: getEnvAsInt("SUPPORTHUB_RECONNECT_DELAY_MAX_MS", 5000),
		},
		Session: SessionConfig{
			TokenPath: getEnv("SUPPORTHUB_TOKEN_PATH", defaultTokenPath()),
		},
		Logger: LoggerConfig{
			Level: getEnv("SUPPORTHUB_LOG_LEVEL", "info"),
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	return cfg, nil
}

// RequestTimeout returns the configured HTTP request timeout.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.RequestTimeoutMS) * time.Millisecond
}

// DialTimeout returns the handshake deadline for a connection attempt.
func (r RealtimeConfig) DialTimeout() time.Duration {
	return millis(r.DialTimeoutMS, 20*time.Second)
}

// ReconnectDelay returns the delay before the first reconnection attempt.
func (r RealtimeConfig) ReconnectDelay() time.Duration {
	return millis(r.ReconnectDelayMS, time.Second)
}

// ReconnectDelayMax returns the ceiling on the delay between attempts.
func (r RealtimeConfig) ReconnectDelayMax() time.Duration {
	return millis(r.ReconnectDelayMaxMS, 5*time.Second)
}

func millis(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Millisecond
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".supporthub-token"
	}
	return filepath.Join(home, ".supporthub", "token")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
