package config

import (
	"time"

	redisclient "github.com/quangdm/mpath/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
	Multipath bool               `yaml:"multipath"`
	Workers   int                `yaml:"workers"`
	Subsystem SubsystemConfig    `yaml:"subsystem"`
	Redis     redisclient.Config `yaml:"redis"`
	Workload  WorkloadConfig     `yaml:"workload"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// SubsystemConfig describes the storage subsystem topology: which
// controllers exist and which namespaces they expose. Every namespace
// is reachable through every controller.
type SubsystemConfig struct {
	Instance    int                `yaml:"instance"`
	CMIC        uint8              `yaml:"cmic"`
	Controllers []ControllerConfig `yaml:"controllers"`
	Namespaces  []NamespaceConfig  `yaml:"namespaces"`
}

// ControllerConfig holds settings for one controller.
type ControllerConfig struct {
	ID         int           `yaml:"id"`
	ResetDelay time.Duration `yaml:"reset_delay"`
	Latency    time.Duration `yaml:"latency"`
}

// NamespaceConfig holds settings for one namespace.
type NamespaceConfig struct {
	NSID int `yaml:"nsid"`
}

// WorkloadConfig controls the built-in demo workload generator.
type WorkloadConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}
