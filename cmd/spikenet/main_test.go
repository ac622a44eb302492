package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nvandessel/spikenet/internal/export"
	"github.com/nvandessel/spikenet/internal/recorder"
)

// newTestRootCmd creates a root command with persistent flags for testing
// subcommands.
func newTestRootCmd(sub *cobra.Command) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spikenet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file")
	rootCmd.AddCommand(sub)
	return rootCmd
}

// writeTestConfig writes a small, densely connectable population config and
// returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := `network:
  neurons: 10
  out_degree: 3
  max_connection_distance: 2.0
  connection_retries: 50
  weight_min: -0.3
  weight_max: 1.2
  conduction_speed: 0.25
  aspect_ratio: 1.5
  seed: 7
`
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute(%v) error = %v\noutput: %s", args, err, buf.String())
	}
	return buf.String()
}

func TestNewVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	if cmd.Use != "version" {
		t.Errorf("Use = %q, want %q", cmd.Use, "version")
	}

	out := execute(t, newTestRootCmd(newVersionCmd()), "version", "--json")
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("version --json output not JSON: %v\n%s", err, out)
	}
	if got["version"] != version {
		t.Errorf("version = %q, want %q", got["version"], version)
	}
}

func TestTopoCmdJSON(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out := execute(t, newTestRootCmd(newTopoCmd()),
		"topo", "--config", cfgPath, "--format", "json")

	var graph struct {
		NodeCount int `json:"node_count"`
		EdgeCount int `json:"edge_count"`
	}
	if err := json.Unmarshal([]byte(out), &graph); err != nil {
		t.Fatalf("topo --format json output not JSON: %v\n%s", err, out)
	}
	if graph.NodeCount != 10 {
		t.Errorf("node_count = %d, want 10", graph.NodeCount)
	}
	if graph.EdgeCount == 0 {
		t.Error("edge_count = 0, want connected graph")
	}
}

func TestTopoCmdDeterministic(t *testing.T) {
	cfgPath := writeTestConfig(t)

	first := execute(t, newTestRootCmd(newTopoCmd()), "topo", "--config", cfgPath)
	second := execute(t, newTestRootCmd(newTopoCmd()), "topo", "--config", cfgPath)
	if first != second {
		t.Error("same seed produced different DOT output")
	}
	if !strings.HasPrefix(first, "digraph spikenet {") {
		t.Errorf("DOT output missing header:\n%s", first)
	}
}

func TestTopoCmdUnknownFormat(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cmd := newTestRootCmd(newTopoCmd())
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"topo", "--config", cfgPath, "--format", "svg"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown format, got nil")
	}
}

func TestRunCmdSummary(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out := execute(t, newTestRootCmd(newRunCmd()),
		"run", "--config", cfgPath, "--duration", "200ms", "--json")

	var summary runSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("run --json output not JSON: %v\n%s", err, out)
	}
	if summary.Neurons != 10 {
		t.Errorf("neurons = %d, want 10", summary.Neurons)
	}
	if summary.Spikes == 0 {
		t.Error("spikes = 0, want at least the force-fired seed neuron")
	}
	if summary.Seed != 7 {
		t.Errorf("seed = %d, want 7", summary.Seed)
	}
}

func TestExportCmd(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "spikes.arrow")

	rec, err := recorder.New(dir)
	if err != nil {
		t.Fatalf("recorder.New() error = %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rec.Record(ctx, recorder.Spike{Neuron: i, Potential: -0.9}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	rec.Close()

	execute(t, newTestRootCmd(newExportCmd()),
		"export", "--dir", dir, "--out", outPath)

	spikes, err := export.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(spikes) != 3 {
		t.Errorf("exported %d spikes, want 3", len(spikes))
	}
}

func TestConfigCmdDefaults(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out := execute(t, newTestRootCmd(newConfigCmd()), "config", "--config", cfgPath)
	if !strings.Contains(out, "neurons: 10") {
		t.Errorf("config output missing neurons:\n%s", out)
	}
	if !strings.Contains(out, "threshold: 1") {
		t.Errorf("config output missing threshold:\n%s", out)
	}
}
