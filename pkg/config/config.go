// Package config holds the runtime configuration structs for a vibebot
// client and loads them from a YAML file, per spec §6's "structs, no
// sentinel strings from any particular ecosystem" requirement.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel is one of the five levels spec §6 names.
type LogLevel string

const (
	LogOff   LogLevel = "OFF"
	LogError LogLevel = "ERROR"
	LogWarn  LogLevel = "WARN"
	LogInfo  LogLevel = "INFO"
	LogDebug LogLevel = "DEBUG"
)

// Server is the endpoint a client dials.
type Server struct {
	Host            string `yaml:"host"`
	Port            uint16 `yaml:"port"`
	ProtocolVersion int32  `yaml:"protocolVersion"`
	ResolveSRV      bool   `yaml:"resolveSRV"`
}

// WorldCache tunes the client-side chunk cache's eviction policy.
type WorldCache struct {
	// KeepRange is the Chebyshev chunk-distance from the client's current
	// chunk kept loaded; anything farther is unloaded on each sweep.
	KeepRange int32 `yaml:"keepRange"`
	// SweepInterval is how often the stale-chunk sweep runs. Zero disables
	// the scheduled sweep (ClearDistantChunks remains callable directly).
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// Client is one bot identity.
type Client struct {
	Username   string `yaml:"username"`
	CustomUUID string `yaml:"customUUID,omitempty"`
}

// Supervisor tunes reconnect and keep-alive behavior for the launcher
// layer this package's consumer wires (the supervisor itself is an
// external collaborator per spec §1, not implemented here).
type Supervisor struct {
	ReconnectDelay       time.Duration `yaml:"reconnectDelay"`
	MaxReconnectAttempts int           `yaml:"maxReconnectAttempts"`
	KeepAliveInterval    time.Duration `yaml:"keepAliveInterval"`
}

// Metrics configures the optional Prometheus HTTP endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Config is the full tree a vibebot process runs from.
type Config struct {
	Server     Server     `yaml:"server"`
	Clients    []Client   `yaml:"clients"`
	Supervisor Supervisor `yaml:"supervisor"`
	LogLevel   LogLevel   `yaml:"logLevel"`
	Metrics    Metrics    `yaml:"metrics"`
	WorldCache WorldCache `yaml:"worldCache"`
}

// Default returns a config with the same baseline values a hand-built
// Config{} would need to be usable: single client, resolve SRV, sane
// reconnect policy.
func Default() Config {
	return Config{
		Server: Server{
			Host:            "localhost",
			Port:            25565,
			ProtocolVersion: 770,
			ResolveSRV:      true,
		},
		Clients: []Client{{Username: "vibebot"}},
		Supervisor: Supervisor{
			ReconnectDelay:       5 * time.Second,
			MaxReconnectAttempts: 5,
			KeepAliveInterval:    10 * time.Second,
		},
		LogLevel: LogInfo,
		Metrics: Metrics{
			Enabled: false,
			Addr:    ":9090",
		},
		WorldCache: WorldCache{
			KeepRange:     8,
			SweepInterval: 30 * time.Second,
		},
	}
}

// Load reads and parses a YAML config file, starting from Default() so
// unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
