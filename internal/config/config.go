package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Service ServiceConfig `yaml:"service"`
	Speech  SpeechConfig  `yaml:"speech"`
	Paths   PathsConfig   `yaml:"paths"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServiceConfig configures the document-intelligence service client.
type ServiceConfig struct {
	BaseURL        string  `yaml:"base_url"`
	RequestTimeout int     `yaml:"request_timeout_seconds"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	BreakerEnabled bool    `yaml:"breaker_enabled"`
}

type SpeechConfig struct {
	Binary string `yaml:"binary"`
	Rate   int    `yaml:"rate"`
	Pitch  int    `yaml:"pitch"`
}

type PathsConfig struct {
	Documents   string `yaml:"documents"`
	SessionDB   string `yaml:"session_db"`
	DefaultLang string `yaml:"default_lang"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type MetricsConfig struct {
	Port string `yaml:"port"`
}

func (s ServiceConfig) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load reads the optional YAML config file, applies defaults, and lets
// environment variables override individual fields.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Service.BaseURL = env("DOCVOICE_SERVICE_URL", c.Service.BaseURL)
	c.Service.RequestTimeout = envInt("REQUEST_TIMEOUT_SECONDS", c.Service.RequestTimeout)
	c.Service.RateLimitRPS = envFloat("SERVICE_RATE_LIMIT_RPS", c.Service.RateLimitRPS)
	c.Service.RateLimitBurst = envInt("SERVICE_RATE_LIMIT_BURST", c.Service.RateLimitBurst)
	if v := os.Getenv("SERVICE_BREAKER_ENABLED"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Service.BreakerEnabled = parsed
		}
	}

	c.Speech.Binary = env("SPEECH_BINARY", c.Speech.Binary)
	c.Speech.Rate = envInt("SPEECH_RATE", c.Speech.Rate)
	c.Speech.Pitch = envInt("SPEECH_PITCH", c.Speech.Pitch)

	c.Paths.Documents = env("DOCUMENTS_DIR", c.Paths.Documents)
	c.Paths.SessionDB = env("SESSION_DB_PATH", c.Paths.SessionDB)
	c.Paths.DefaultLang = env("DEFAULT_LANG", c.Paths.DefaultLang)

	c.Logging.Level = env("LOG_LEVEL", c.Logging.Level)
	c.Logging.File = env("LOG_FILE", c.Logging.File)
	c.Metrics.Port = env("METRICS_PORT", c.Metrics.Port)
}

// Validate fills defaults and rejects values the client cannot run with.
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = "http://127.0.0.1:8000"
	}
	if c.Service.RequestTimeout <= 0 {
		c.Service.RequestTimeout = 60
	}
	if c.Service.RateLimitRPS <= 0 {
		c.Service.RateLimitRPS = 4
	}
	if c.Service.RateLimitBurst <= 0 {
		c.Service.RateLimitBurst = 4
	}

	if c.Speech.Binary == "" {
		c.Speech.Binary = "espeak-ng"
	}
	if c.Speech.Rate <= 0 {
		c.Speech.Rate = 160
	}
	if c.Speech.Pitch < 0 || c.Speech.Pitch > 99 {
		return fmt.Errorf("speech.pitch must be within 0..99, got %d", c.Speech.Pitch)
	}
	if c.Speech.Pitch == 0 {
		c.Speech.Pitch = 50
	}

	if c.Paths.Documents == "" {
		c.Paths.Documents = "./documents"
	}
	if c.Paths.SessionDB == "" {
		c.Paths.SessionDB = "./data/docvoice.sqlite"
	}
	if c.Paths.DefaultLang == "" {
		c.Paths.DefaultLang = "fr"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.File == "" {
		c.Logging.File = "./data/docvoice.log"
	}

	return nil
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
