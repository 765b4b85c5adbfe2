// Package config provides configuration loading and management for sleepkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/XingXingYuoos/sleep-kit-project/channel"
)

// Config represents the complete sleepkit processing configuration.
type Config struct {
	Process ProcessConfig `yaml:"process"`
	Output  OutputConfig  `yaml:"output"`
	Influx  InfluxConfig  `yaml:"influx"`
}

// ProcessConfig configures the per-subject preprocessing pipeline.
type ProcessConfig struct {
	// SampleRate is the target sampling rate in Hz after resampling.
	SampleRate int `yaml:"sample_rate"`
	// EpochSeconds is the epoch duration in seconds.
	EpochSeconds int `yaml:"epoch_sec"`
	// SeqLen is the number of epochs per packaged sequence.
	SeqLen int `yaml:"seq_len"`
	// Channels are the canonical roles to extract, in output row order.
	Channels []string `yaml:"channels"`
	// Filter holds the band-pass and notch settings per filter class.
	Filter FilterConfig `yaml:"filter"`
	// Standardize enables per-channel z-scoring across all epochs.
	Standardize bool `yaml:"standardize"`
	// Workers is the number of concurrent subject workers.
	Workers int `yaml:"workers"`
}

// FilterConfig holds [low, high] band-pass cutoffs per signal class and the
// mains notch frequencies.
type FilterConfig struct {
	EEG   []float64 `yaml:"eeg"`
	EMG   []float64 `yaml:"emg"`
	Notch []float64 `yaml:"notch"`
}

// OutputConfig configures where processed tensors are written.
type OutputConfig struct {
	// Root is the output directory; per-dataset trees are created below it.
	Root string `yaml:"root"`
	// Overwrite allows reuse of an existing per-dataset output directory.
	Overwrite bool `yaml:"overwrite"`
}

// InfluxConfig configures the optional hypnogram exporter. Export is
// disabled unless URL is set.
type InfluxConfig struct {
	URL         string `yaml:"url"`
	AuthToken   string `yaml:"auth_token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// Enabled reports whether hypnogram export is configured.
func (c InfluxConfig) Enabled() bool {
	return c.URL != ""
}

// DefaultConfig returns a Config with the standard processing defaults:
// 100 Hz, 30 s epochs, sequences of 20, F4 and E1 channels, standardized.
func DefaultConfig() *Config {
	return &Config{
		Process: ProcessConfig{
			SampleRate:   100,
			EpochSeconds: 30,
			SeqLen:       20,
			Channels:     []string{"F4", "E1"},
			Filter: FilterConfig{
				EEG:   []float64{0.3, 35},
				EMG:   []float64{10, 49},
				Notch: []float64{50, 60},
			},
			Standardize: true,
			Workers:     1,
		},
		Output: OutputConfig{
			Root: "out",
		},
		Influx: InfluxConfig{
			Measurement: "hypnogram",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Process.SampleRate <= 0 {
		return fmt.Errorf("process.sample_rate must be positive")
	}
	if c.Process.EpochSeconds <= 0 {
		return fmt.Errorf("process.epoch_sec must be positive")
	}
	if c.Process.SeqLen <= 0 {
		return fmt.Errorf("process.seq_len must be positive")
	}
	if len(c.Process.Channels) == 0 {
		return fmt.Errorf("process.channels must name at least one channel")
	}
	if c.Process.Workers <= 0 {
		return fmt.Errorf("process.workers must be positive")
	}
	for _, band := range [][]float64{c.Process.Filter.EEG, c.Process.Filter.EMG} {
		if len(band) != 2 {
			return fmt.Errorf("filter bands must be [low, high] pairs")
		}
		if band[0] <= 0 || band[1] <= band[0] {
			return fmt.Errorf("filter band [%g, %g] is not an increasing positive pair", band[0], band[1])
		}
	}
	if c.Output.Root == "" {
		return fmt.Errorf("output.root is required")
	}
	if c.Influx.Enabled() {
		if c.Influx.Org == "" || c.Influx.Bucket == "" {
			return fmt.Errorf("influx.org and influx.bucket are required when influx.url is set")
		}
		if c.Influx.Measurement == "" {
			return fmt.Errorf("influx.measurement is required when influx.url is set")
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, layered over the
// defaults so that absent fields keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Merge overlays fields from other onto c. Scalar fields are taken when
// non-zero; booleans follow other unconditionally, so Merge expects configs
// produced by LoadFromFile, which layers files over the defaults.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Process.SampleRate != 0 {
		c.Process.SampleRate = other.Process.SampleRate
	}
	if other.Process.EpochSeconds != 0 {
		c.Process.EpochSeconds = other.Process.EpochSeconds
	}
	if other.Process.SeqLen != 0 {
		c.Process.SeqLen = other.Process.SeqLen
	}
	if len(other.Process.Channels) > 0 {
		c.Process.Channels = other.Process.Channels
	}
	if len(other.Process.Filter.EEG) > 0 {
		c.Process.Filter.EEG = other.Process.Filter.EEG
	}
	if len(other.Process.Filter.EMG) > 0 {
		c.Process.Filter.EMG = other.Process.Filter.EMG
	}
	if len(other.Process.Filter.Notch) > 0 {
		c.Process.Filter.Notch = other.Process.Filter.Notch
	}
	c.Process.Standardize = other.Process.Standardize
	if other.Process.Workers != 0 {
		c.Process.Workers = other.Process.Workers
	}
	if other.Output.Root != "" {
		c.Output.Root = other.Output.Root
	}
	c.Output.Overwrite = other.Output.Overwrite
	if other.Influx.URL != "" {
		c.Influx = other.Influx
	}
}

// NormalizeChannels trims the configured channel names and rewrites each to
// its canonical role spelling by case-insensitive match, so "f4, emgref" and
// "F4,EMGref" configure the same extraction. Names matching no role pass
// through trimmed and fail later at resolution.
func (c *Config) NormalizeChannels() {
	for i, ch := range c.Process.Channels {
		name := strings.TrimSpace(ch)
		for _, role := range channel.Roles {
			if strings.EqualFold(name, string(role)) {
				name = string(role)
				break
			}
		}
		c.Process.Channels[i] = name
	}
}
