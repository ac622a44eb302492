package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/spikenet/internal/export"
	"github.com/nvandessel/spikenet/internal/recorder"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded spikes to an Arrow IPC file",
		RunE:  exportSpikes,
	}

	cmd.Flags().String("dir", ".spikenet", "Recorder directory holding spikes.db")
	cmd.Flags().String("out", "spikes.arrow", "Output Arrow file")

	return cmd
}

func exportSpikes(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	out, _ := cmd.Flags().GetString("out")

	rec, err := recorder.New(dir)
	if err != nil {
		return fmt.Errorf("opening recorder: %w", err)
	}
	defer rec.Close()

	spikes, err := rec.Spikes(cmd.Context(), 0)
	if err != nil {
		return err
	}
	if err := export.WriteFile(out, spikes); err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"spikes": len(spikes),
			"file":   out,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d spikes to %s\n", len(spikes), out)
	return nil
}
