package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/spikenet/internal/homeostat"
	"github.com/nvandessel/spikenet/internal/logging"
	"github.com/nvandessel/spikenet/internal/mailbox"
	"github.com/nvandessel/spikenet/internal/network"
	"github.com/nvandessel/spikenet/internal/neuron"
	"github.com/nvandessel/spikenet/internal/recorder"
)

// runSummary is the report printed after a run finishes.
type runSummary struct {
	Neurons   int     `json:"neurons"`
	Edges     int     `json:"edges"`
	Seed      int64   `json:"seed"`
	DurationS float64 `json:"duration_seconds"`
	Spikes    uint64  `json:"spikes"`
	Rate      float64 `json:"rate_hz"`
	Bias      float64 `json:"bias,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Builds a network from the effective configuration, starts one
goroutine per neuron, force-fires the requested seed neurons, and runs
until the duration elapses or an interrupt arrives.`,
		RunE: runSimulation,
	}

	cmd.Flags().Int("neurons", 0, "Override the population size")
	cmd.Flags().Int64("seed", 0, "Override the construction seed")
	cmd.Flags().Duration("duration", 5*time.Second, "How long to run (0 = until interrupted)")
	cmd.Flags().IntSlice("stimulate", []int{0}, "Neuron indexes to force-fire at start")
	cmd.Flags().Bool("homeostat", false, "Enable the closed-loop activity controller")
	cmd.Flags().Bool("record", false, "Enable the SQLite spike recorder")

	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if n, _ := cmd.Flags().GetInt("neurons"); n > 0 {
		cfg.Network.Neurons = n
	}
	if s, _ := cmd.Flags().GetInt64("seed"); s != 0 {
		cfg.Network.Seed = s
	}
	if on, _ := cmd.Flags().GetBool("homeostat"); on {
		cfg.Homeostat.Enabled = true
	}
	if on, _ := cmd.Flags().GetBool("record"); on {
		cfg.Recorder.Enabled = true
	}
	duration, _ := cmd.Flags().GetDuration("duration")
	stimulate, _ := cmd.Flags().GetIntSlice("stimulate")

	log := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	spikes := logging.NewSpikeLogger(cfg.Recorder.Dir, cfg.Logging.Level)
	defer spikes.Close()

	net, err := network.New(cfg, log, spikes)
	if err != nil {
		return err
	}

	var rec *recorder.Recorder
	if cfg.Recorder.Enabled {
		rec, err = recorder.New(cfg.Recorder.Dir)
		if err != nil {
			return fmt.Errorf("opening recorder: %w", err)
		}
		defer rec.Close()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var ctrl *homeostat.Controller
	var ctrlFeed *mailbox.Mailbox[neuron.State]
	ctrlDone := make(chan struct{})
	if cfg.Homeostat.Enabled {
		ctrl = homeostat.New(cfg.Homeostat, net, log)
		ctrlFeed = mailbox.New[neuron.State]()
		go func() {
			defer close(ctrlDone)
			ctrl.Run(ctx, ctrlFeed.C())
		}()
	} else {
		close(ctrlDone)
	}

	// Single consumer of the observation stream, teeing to the recorder
	// and the controller.
	var spikeCount uint64
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for s := range net.Observations() {
			if s.Firing {
				spikeCount++
				if rec != nil {
					if recErr := rec.Record(ctx, recorder.Spike{Neuron: s.Index, Potential: s.Potential, At: s.At}); recErr != nil {
						log.Warn("spike recording failed", "error", recErr)
						rec = nil
					}
				}
			}
			if ctrlFeed != nil {
				_ = ctrlFeed.Send(s)
			}
		}
	}()

	net.Start()
	start := time.Now()

	for _, i := range stimulate {
		if err := net.Stimulate(i); err != nil {
			net.Stop()
			<-collectorDone
			return err
		}
	}

	interrupt := make(chan os.Signal, 1)
	notifySignals(interrupt)

	var timeout <-chan time.Time
	if duration > 0 {
		timeout = time.After(duration)
	}
	select {
	case <-timeout:
	case <-interrupt:
		log.Info("interrupted, shutting down")
	}

	cancel()
	net.Stop()
	<-collectorDone
	<-ctrlDone
	if ctrlFeed != nil {
		// Closing alone is not enough: the mailbox pump only exits once
		// its queue is drained, and the controller has stopped reading.
		ctrlFeed.Close()
		for range ctrlFeed.C() {
		}
	}
	elapsed := time.Since(start)

	edges := 0
	for _, out := range net.Topology().Outgoing {
		edges += len(out)
	}
	summary := runSummary{
		Neurons:   net.Size(),
		Edges:     edges,
		Seed:      cfg.Network.Seed,
		DurationS: elapsed.Seconds(),
		Spikes:    spikeCount,
		Rate:      float64(spikeCount) / float64(net.Size()) / elapsed.Seconds(),
	}
	if ctrl != nil {
		summary.Bias = ctrl.Bias()
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "neurons:  %d\n", summary.Neurons)
	fmt.Fprintf(cmd.OutOrStdout(), "edges:    %d\n", summary.Edges)
	fmt.Fprintf(cmd.OutOrStdout(), "seed:     %d\n", summary.Seed)
	fmt.Fprintf(cmd.OutOrStdout(), "duration: %.2fs\n", summary.DurationS)
	fmt.Fprintf(cmd.OutOrStdout(), "spikes:   %d (%.3f Hz per neuron)\n", summary.Spikes, summary.Rate)
	if ctrl != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "bias:     %.3f\n", summary.Bias)
	}
	return nil
}
