package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// ClientConfig represents the client configuration
type ClientConfig struct {
	Client ClientSettings `yaml:"client"`
}

// ClientSettings contains everything the client needs to reach a server
type ClientSettings struct {
	ServerURL string `yaml:"serverURL"`
	Name      string `yaml:"name"`
	Room      string `yaml:"room"`

	// Connection settings
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout"`
	WriteTimeout     time.Duration `yaml:"writeTimeout"`
	ReadLimit        int64         `yaml:"readLimit"`
	DirectoryTimeout time.Duration `yaml:"directoryTimeout"`

	// Outbound chat throttle (using golang.org/x/time/rate)
	ChatRateLimit float64 `yaml:"chatRateLimit"` // messages per second, 0 disables
	ChatRateBurst int     `yaml:"chatRateBurst"`

	// Monitoring
	EnableMetrics bool   `yaml:"enableMetrics"`
	MetricsAddr   string `yaml:"metricsAddr"`
	LogLevel      string `yaml:"logLevel"`
	LogFormat     string `yaml:"logFormat"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Client: ClientSettings{
			ServerURL: "http://localhost:3000",

			HandshakeTimeout: 10 * time.Second,
			WriteTimeout:     10 * time.Second,
			ReadLimit:        65536,
			DirectoryTimeout: 5 * time.Second,

			ChatRateLimit: 5,
			ChatRateBurst: 10,

			EnableMetrics: false,
			MetricsAddr:   "", // Must be set if metrics enabled
			LogLevel:      "info",
			LogFormat:     "text",
		},
	}
}

// Validate checks if the configuration is valid
func (c *ClientConfig) Validate() error {
	if _, err := c.Client.BaseURL(); err != nil {
		return err
	}

	// If metrics are enabled, an address must be set
	if c.Client.EnableMetrics && c.Client.MetricsAddr == "" {
		return fmt.Errorf("METRICS_ADDR must be set when ENABLE_METRICS is true")
	}

	if c.Client.HandshakeTimeout < 0 || c.Client.WriteTimeout < 0 || c.Client.DirectoryTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	if c.Client.ReadLimit < 0 {
		return fmt.Errorf("readLimit cannot be negative")
	}

	if c.Client.ChatRateLimit < 0 {
		return fmt.Errorf("chatRateLimit cannot be negative")
	}
	if c.Client.ChatRateLimit > 0 && c.Client.ChatRateBurst < 1 {
		return fmt.Errorf("chatRateBurst must be at least 1 when chatRateLimit is set")
	}

	switch strings.ToLower(c.Client.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("logFormat must be text or json, got %q", c.Client.LogFormat)
	}
	if _, err := zapcore.ParseLevel(strings.ToLower(c.Client.LogLevel)); err != nil {
		return fmt.Errorf("invalid logLevel %q", c.Client.LogLevel)
	}

	return nil
}

// BaseURL parses ServerURL, which must be http or https with a host
func (s ClientSettings) BaseURL() (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(s.ServerURL))
	if err != nil {
		return nil, fmt.Errorf("invalid serverURL %q: %w", s.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("serverURL must be http or https, got %q", s.ServerURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("serverURL %q has no host", s.ServerURL)
	}
	return u, nil
}
