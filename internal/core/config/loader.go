package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if len(cfg.Subsystem.Namespaces) == 0 {
		cfg.Subsystem.Namespaces = []NamespaceConfig{{NSID: 1}}
	}

	for i := range cfg.Subsystem.Controllers {
		if cfg.Subsystem.Controllers[i].ResetDelay == 0 {
			cfg.Subsystem.Controllers[i].ResetDelay = 2 * time.Second
		}
	}
	if cfg.Workload.Interval == 0 {
		cfg.Workload.Interval = 100 * time.Millisecond
	}

	return &cfg, nil
}
