package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// simConfig is the YAML shape accepted by --config. A zero TickHz falls
// back to 100 Hz in runSimulation, and run's --metrics-addr flag, when
// set, overrides MetricsAddr; other zero values are passed to ThreadInit
// as they are.
type simConfig struct {
	MaxThreads     uint32 `yaml:"max_threads"`
	StackSizeWords uint32 `yaml:"stack_size_words"`
	ProtectionMode string `yaml:"protection_mode"`
	MaxMutexes     uint32 `yaml:"max_mutexes"`
	TickHz         uint32 `yaml:"tick_hz"`
	MetricsAddr    string `yaml:"metrics_addr"`

	Threads []threadSpec `yaml:"threads"`
}

// threadSpec describes one periodic workload thread to create before
// starting the scheduler.
type threadSpec struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	Budget   uint32 `yaml:"budget"`
	Period   uint32 `yaml:"period"`
	Workload string `yaml:"workload"`
}

func loadConfig(path string) (simConfig, error) {
	var cfg simConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
