package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"server":       "client.serverurl",
	"name":         "client.name",
	"room":         "client.room",
	"log-level":    "client.loglevel",
	"log-format":   "client.logformat",
	"metrics":      "client.enablemetrics",
	"metrics-addr": "client.metricsaddr",
}

// LoadConfig loads configuration using Viper
// Priority order: Flags > Environment variables > Config file > Defaults
func LoadConfig(configPath string, flags *pflag.FlagSet) (*ClientConfig, error) {
	v := viper.New()

	// Set config file details
	v.SetConfigName("crewlink")
	v.SetConfigType("yaml")

	// Add config paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/crewlink")
	}

	// Enable environment variable binding
	// These allow both CREWLINK_CLIENT_SERVERURL and SERVER_URL to work
	v.SetEnvPrefix("crewlink")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("client.serverurl", "SERVER_URL")
	v.BindEnv("client.name", "PLAYER_NAME")
	v.BindEnv("client.room", "ROOM")
	v.BindEnv("client.loglevel", "LOG_LEVEL")
	v.BindEnv("client.logformat", "LOG_FORMAT")
	v.BindEnv("client.enablemetrics", "ENABLE_METRICS")
	v.BindEnv("client.metricsaddr", "METRICS_ADDR")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	def := DefaultConfig().Client
	v.SetDefault("client.serverurl", def.ServerURL)
	v.SetDefault("client.name", "")
	v.SetDefault("client.room", "")

	// Connection defaults
	v.SetDefault("client.handshaketimeout", def.HandshakeTimeout.String())
	v.SetDefault("client.writetimeout", def.WriteTimeout.String())
	v.SetDefault("client.readlimit", def.ReadLimit)
	v.SetDefault("client.directorytimeout", def.DirectoryTimeout.String())

	// Throttle defaults
	v.SetDefault("client.chatratelimit", def.ChatRateLimit)
	v.SetDefault("client.chatrateburst", def.ChatRateBurst)

	// Monitoring defaults
	v.SetDefault("client.enablemetrics", false)
	v.SetDefault("client.metricsaddr", "")
	v.SetDefault("client.loglevel", def.LogLevel)
	v.SetDefault("client.logformat", def.LogFormat)

	// Try to read config file (it's optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A named file that does not exist is fine too
			if !strings.Contains(err.Error(), "no such file or directory") {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &ClientConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
