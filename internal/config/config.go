// Package config provides unified configuration loading for spikenet.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nvandessel/spikenet/internal/constants"
	"gopkg.in/yaml.v3"
)

// Config contains all spikenet configuration settings.
type Config struct {
	// Network contains topology construction parameters.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Neuron contains membrane dynamics parameters shared by all neurons.
	Neuron NeuronConfig `json:"neuron" yaml:"neuron"`

	// Homeostat contains settings for the closed-loop activity controller.
	Homeostat HomeostatConfig `json:"homeostat" yaml:"homeostat"`

	// Recorder contains settings for the SQLite spike recorder.
	Recorder RecorderConfig `json:"recorder" yaml:"recorder"`

	// Logging contains settings for operational and spike-trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// NetworkConfig holds the topology construction parameters.
type NetworkConfig struct {
	// Neurons is the population size.
	Neurons int `json:"neurons" yaml:"neurons"`

	// OutDegree is the target number of outgoing synapses per neuron.
	OutDegree int `json:"out_degree" yaml:"out_degree"`

	// MaxConnectionDistance is the spatial cutoff for synapse candidates.
	// Neurons farther apart than this are never connected.
	MaxConnectionDistance float32 `json:"max_connection_distance" yaml:"max_connection_distance"`

	// WeightMin and WeightMax bound the uniform synaptic weight distribution.
	// WeightMin may be negative (inhibitory synapses).
	WeightMin float32 `json:"weight_min" yaml:"weight_min"`
	WeightMax float32 `json:"weight_max" yaml:"weight_max"`

	// ConnectionRetries is the budget of consecutive unproductive sampling
	// draws before a neuron's connection set is finalized early.
	ConnectionRetries int `json:"connection_retries" yaml:"connection_retries"`

	// ConductionSpeed converts distance into propagation delay.
	ConductionSpeed float32 `json:"conduction_speed" yaml:"conduction_speed"`

	// AspectRatio is the width of the layout rectangle (height is 1).
	AspectRatio float32 `json:"aspect_ratio" yaml:"aspect_ratio"`

	// Seed seeds topology construction and per-neuron background noise.
	// The same seed reproduces the same edge set and weights.
	Seed int64 `json:"seed" yaml:"seed"`
}

// NeuronConfig holds the leaky-integrate-and-fire membrane parameters.
type NeuronConfig struct {
	// Threshold is the membrane potential at which a neuron fires.
	Threshold float32 `json:"threshold" yaml:"threshold"`

	// DecayRate is the per-second decay applied to positive potential.
	DecayRate float32 `json:"decay_rate" yaml:"decay_rate"`

	// RecoveryRate is the per-second recovery applied to negative potential.
	RecoveryRate float32 `json:"recovery_rate" yaml:"recovery_rate"`

	// RefractoryPotential is the undershoot the potential is clamped to on firing.
	RefractoryPotential float32 `json:"refractory_potential" yaml:"refractory_potential"`

	// RefractoryDuration is the hard refractory window after a firing.
	RefractoryDuration time.Duration `json:"refractory_duration" yaml:"refractory_duration"`
}

// HomeostatConfig configures the closed-loop population activity controller.
type HomeostatConfig struct {
	// Enabled turns the controller on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// TargetRateLow and TargetRateHigh bound the target activity band,
	// in mean spikes per neuron per second.
	TargetRateLow  float64 `json:"target_rate_low" yaml:"target_rate_low"`
	TargetRateHigh float64 `json:"target_rate_high" yaml:"target_rate_high"`

	// BiasStep is the bias-mean adjustment per control interval.
	BiasStep float64 `json:"bias_step" yaml:"bias_step"`

	// BiasLimit bounds the bias mean to [-limit, +limit].
	BiasLimit float64 `json:"bias_limit" yaml:"bias_limit"`

	// BiasStd is the standard deviation of the background stimulus noise.
	BiasStd float64 `json:"bias_std" yaml:"bias_std"`

	// Interval is the controller sampling period.
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// RecorderConfig configures the SQLite spike recorder.
type RecorderConfig struct {
	// Enabled turns spike recording on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding spikes.db. Defaults to ".spikenet".
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// LoggingConfig configures spikenet's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables spike-trace logging to <dir>/spikes.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			Neurons:               constants.DefaultNeurons,
			OutDegree:             constants.DefaultOutDegree,
			MaxConnectionDistance: constants.DefaultMaxConnectionDistance,
			WeightMin:             constants.DefaultWeightMin,
			WeightMax:             constants.DefaultWeightMax,
			ConnectionRetries:     constants.DefaultConnectionRetries,
			ConductionSpeed:       constants.DefaultConductionSpeed,
			AspectRatio:           constants.DefaultAspectRatio,
			Seed:                  1,
		},
		Neuron: NeuronConfig{
			Threshold:           constants.DefaultThreshold,
			DecayRate:           constants.DefaultDecayRate,
			RecoveryRate:        constants.DefaultRecoveryRate,
			RefractoryPotential: constants.DefaultRefractoryPotential,
			RefractoryDuration:  constants.DefaultRefractoryDuration,
		},
		Homeostat: HomeostatConfig{
			Enabled:        false,
			TargetRateLow:  constants.DefaultTargetRateLow,
			TargetRateHigh: constants.DefaultTargetRateHigh,
			BiasStep:       constants.DefaultBiasStep,
			BiasLimit:      constants.DefaultBiasLimit,
			BiasStd:        1.0,
			Interval:       constants.DefaultControlInterval,
		},
		Recorder: RecorderConfig{
			Enabled: false,
			Dir:     ".spikenet",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.spikenet/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".spikenet", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid. Every construction
// parameter is range-checked before any network is built from it.
func (c *Config) Validate() error {
	n := c.Network
	if n.Neurons < 1 {
		return fmt.Errorf("neurons must be at least 1, got %d", n.Neurons)
	}
	if n.OutDegree < 1 {
		return fmt.Errorf("out_degree must be at least 1, got %d", n.OutDegree)
	}
	if n.OutDegree >= n.Neurons {
		return fmt.Errorf("out_degree %d must be less than neurons %d", n.OutDegree, n.Neurons)
	}
	if n.MaxConnectionDistance <= 0 {
		return fmt.Errorf("max_connection_distance must be positive, got %g", n.MaxConnectionDistance)
	}
	if n.WeightMin >= n.WeightMax {
		return fmt.Errorf("weight range invalid: min %g must be below max %g", n.WeightMin, n.WeightMax)
	}
	if n.ConnectionRetries < 1 {
		return fmt.Errorf("connection_retries must be at least 1, got %d", n.ConnectionRetries)
	}
	if n.ConductionSpeed <= 0 {
		return fmt.Errorf("conduction_speed must be positive, got %g", n.ConductionSpeed)
	}
	if n.AspectRatio <= 0 {
		return fmt.Errorf("aspect_ratio must be positive, got %g", n.AspectRatio)
	}

	d := c.Neuron
	if d.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %g", d.Threshold)
	}
	if d.DecayRate < 0 {
		return fmt.Errorf("decay_rate must be non-negative, got %g", d.DecayRate)
	}
	if d.RecoveryRate < 0 {
		return fmt.Errorf("recovery_rate must be non-negative, got %g", d.RecoveryRate)
	}
	if d.RefractoryPotential > 0 {
		return fmt.Errorf("refractory_potential must not be positive, got %g", d.RefractoryPotential)
	}
	if d.RefractoryDuration < 0 {
		return fmt.Errorf("refractory_duration must be non-negative, got %v", d.RefractoryDuration)
	}

	h := c.Homeostat
	if h.Enabled {
		if h.TargetRateLow < 0 || h.TargetRateHigh <= h.TargetRateLow {
			return fmt.Errorf("target rate band invalid: [%g, %g]", h.TargetRateLow, h.TargetRateHigh)
		}
		if h.BiasStep <= 0 {
			return fmt.Errorf("bias_step must be positive, got %g", h.BiasStep)
		}
		if h.BiasLimit <= 0 {
			return fmt.Errorf("bias_limit must be positive, got %g", h.BiasLimit)
		}
		if h.BiasStd < 0 {
			return fmt.Errorf("bias_std must be non-negative, got %g", h.BiasStd)
		}
		if h.Interval <= 0 {
			return fmt.Errorf("homeostat interval must be positive, got %v", h.Interval)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SPIKENET_NEURONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Network.Neurons = n
		}
	}

	if v := os.Getenv("SPIKENET_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Network.Seed = n
		}
	}

	if v := os.Getenv("SPIKENET_RECORDER"); v != "" {
		config.Recorder.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("SPIKENET_RECORDER_DIR"); v != "" {
		config.Recorder.Dir = v
	}

	if v := os.Getenv("SPIKENET_HOMEOSTAT"); v != "" {
		config.Homeostat.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("SPIKENET_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
