package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/spikenet/internal/logging"
	"github.com/nvandessel/spikenet/internal/topology"
	"github.com/nvandessel/spikenet/internal/visualization"
)

func newTopoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topo",
		Short: "Build and dump the synapse graph without running it",
		Long: `Builds the topology from the effective configuration and writes it
as Graphviz DOT or JSON. The same seed always produces the same graph.`,
		RunE: dumpTopology,
	}

	cmd.Flags().Int64("seed", 0, "Override the construction seed")
	cmd.Flags().String("format", "dot", "Output format: dot or json")
	cmd.Flags().String("out", "", "Output file (default stdout)")

	return cmd
}

func dumpTopology(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if s, _ := cmd.Flags().GetInt64("seed"); s != 0 {
		cfg.Network.Seed = s
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	rng := rand.New(rand.NewSource(cfg.Network.Seed))
	topo, err := topology.Build(topology.Params{
		Neurons:         cfg.Network.Neurons,
		OutDegree:       cfg.Network.OutDegree,
		AspectRatio:     cfg.Network.AspectRatio,
		MaxDistance:     cfg.Network.MaxConnectionDistance,
		WeightMin:       cfg.Network.WeightMin,
		WeightMax:       cfg.Network.WeightMax,
		Retries:         cfg.Network.ConnectionRetries,
		ConductionSpeed: cfg.Network.ConductionSpeed,
	}, rng, log)
	if err != nil {
		return fmt.Errorf("building topology: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	var output []byte
	switch visualization.Format(format) {
	case visualization.FormatDOT:
		output = []byte(visualization.RenderDOT(topo))
	case visualization.FormatJSON:
		output, err = json.MarshalIndent(visualization.RenderJSON(topo), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling graph: %w", err)
		}
		output = append(output, '\n')
	default:
		return fmt.Errorf("unknown format %q (valid: dot, json)", format)
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(output)
		return err
	}
	if err := os.WriteFile(outPath, output, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
	return nil
}
