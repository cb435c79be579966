package cli

import (
	"os"

	"gopkg.in/yaml.v3"
)

// BenchConfig describes a synthetic layered-DAG load for the bench
// subcommand: depth layers of width jobs each, every job in layer L+1
// depending on one job in layer L (a bounded fan-in/fan-out shape wide
// enough to exercise stealing without the O(width^2) edge blowup a full
// bipartite dependency would cause).
type BenchConfig struct {
	Workers     int `yaml:"workers"`
	NumaNodes   int `yaml:"numaNodes"`
	CPUsPerNode int `yaml:"cpusPerNode"`
	Depth       int `yaml:"depth"`
	Width       int `yaml:"width"`
}

// LoadBenchConfig reads and parses a YAML bench config from path.
func LoadBenchConfig(path string) (BenchConfig, error) {
	var cfg BenchConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Depth <= 0 {
		cfg.Depth = 10
	}
	if cfg.Width <= 0 {
		cfg.Width = 100
	}
	return cfg, nil
}
