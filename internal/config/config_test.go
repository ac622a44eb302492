package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Network.Neurons != 1000 {
		t.Errorf("expected 1000 neurons, got %d", config.Network.Neurons)
	}
	if config.Network.OutDegree != 6 {
		t.Errorf("expected out_degree 6, got %d", config.Network.OutDegree)
	}
	if config.Neuron.Threshold != 1.0 {
		t.Errorf("expected threshold 1.0, got %g", config.Neuron.Threshold)
	}
	if config.Neuron.RefractoryDuration != 300*time.Millisecond {
		t.Errorf("expected refractory duration 300ms, got %v", config.Neuron.RefractoryDuration)
	}
	if config.Homeostat.Enabled {
		t.Error("expected Homeostat.Enabled to be false by default")
	}
	if config.Recorder.Enabled {
		t.Error("expected Recorder.Enabled to be false by default")
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
network:
  neurons: 50
  out_degree: 4
  max_connection_distance: 0.25
  seed: 42

neuron:
  threshold: 0.8
  refractory_duration: 150ms

homeostat:
  enabled: true
  target_rate_low: 1.0
  target_rate_high: 3.0

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Network.Neurons != 50 {
		t.Errorf("expected 50 neurons, got %d", config.Network.Neurons)
	}
	if config.Network.Seed != 42 {
		t.Errorf("expected seed 42, got %d", config.Network.Seed)
	}
	if config.Neuron.Threshold != 0.8 {
		t.Errorf("expected threshold 0.8, got %g", config.Neuron.Threshold)
	}
	if config.Neuron.RefractoryDuration != 150*time.Millisecond {
		t.Errorf("expected refractory duration 150ms, got %v", config.Neuron.RefractoryDuration)
	}
	if !config.Homeostat.Enabled {
		t.Error("expected Homeostat.Enabled true")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", config.Logging.Level)
	}

	// Fields absent from the file keep their defaults.
	if config.Network.ConnectionRetries != 50 {
		t.Errorf("expected default connection_retries 50, got %d", config.Network.ConnectionRetries)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero neurons", func(c *Config) { c.Network.Neurons = 0 }, "neurons"},
		{"zero out degree", func(c *Config) { c.Network.OutDegree = 0 }, "out_degree"},
		{"out degree too large", func(c *Config) { c.Network.Neurons = 5; c.Network.OutDegree = 5 }, "out_degree"},
		{"negative distance", func(c *Config) { c.Network.MaxConnectionDistance = -1 }, "max_connection_distance"},
		{"inverted weights", func(c *Config) { c.Network.WeightMin = 2; c.Network.WeightMax = 1 }, "weight range"},
		{"zero retries", func(c *Config) { c.Network.ConnectionRetries = 0 }, "connection_retries"},
		{"zero speed", func(c *Config) { c.Network.ConductionSpeed = 0 }, "conduction_speed"},
		{"zero aspect", func(c *Config) { c.Network.AspectRatio = 0 }, "aspect_ratio"},
		{"zero threshold", func(c *Config) { c.Neuron.Threshold = 0 }, "threshold"},
		{"negative decay", func(c *Config) { c.Neuron.DecayRate = -0.1 }, "decay_rate"},
		{"negative recovery", func(c *Config) { c.Neuron.RecoveryRate = -0.1 }, "recovery_rate"},
		{"positive undershoot", func(c *Config) { c.Neuron.RefractoryPotential = 0.5 }, "refractory_potential"},
		{"negative refractory", func(c *Config) { c.Neuron.RefractoryDuration = -time.Second }, "refractory_duration"},
		{"bad rate band", func(c *Config) { c.Homeostat.Enabled = true; c.Homeostat.TargetRateHigh = 0 }, "target rate band"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPIKENET_NEURONS", "25")
	t.Setenv("SPIKENET_SEED", "99")
	t.Setenv("SPIKENET_LOG_LEVEL", "trace")
	t.Setenv("SPIKENET_HOMEOSTAT", "1")

	config := Default()
	applyEnvOverrides(config)

	if config.Network.Neurons != 25 {
		t.Errorf("expected 25 neurons from env, got %d", config.Network.Neurons)
	}
	if config.Network.Seed != 99 {
		t.Errorf("expected seed 99 from env, got %d", config.Network.Seed)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected level trace from env, got %s", config.Logging.Level)
	}
	if !config.Homeostat.Enabled {
		t.Error("expected homeostat enabled from env")
	}
}
