package simulation

import (
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/nvandessel/spikenet/internal/network"
	"github.com/nvandessel/spikenet/internal/neuron"
)

// Runner orchestrates scenario experiments against a live neuron population.
type Runner struct {
	t *testing.T
}

// NewRunner creates a simulation runner.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Run executes the scenario and returns the collected results. The
// population is fully stopped and the observation stream drained before Run
// returns.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()

	dyn := DefaultDynamics()
	if scenario.Dynamics != nil {
		dyn = *scenario.Dynamics
	}

	net := network.FromTopology(scenario.ToTopology(), dyn, scenario.Seed, testLogger(r.t), nil)

	// Collect every snapshot until the stream closes.
	done := make(chan SimulationResult, 1)
	go func() {
		result := SimulationResult{Final: make(map[int]neuron.State)}
		for s := range net.Observations() {
			result.Snapshots = append(result.Snapshots, s)
			result.Final[s.Index] = s
			if s.Firing {
				result.Firings = append(result.Firings, FiringEvent{Neuron: s.Index, At: s.At})
			}
		}
		done <- result
	}()

	net.Start()
	r.applyStimuli(net, scenario)

	if scenario.Duration > 0 {
		time.Sleep(scenario.Duration)
	}
	net.Stop()

	return <-done
}

// applyStimuli replays the schedule in At order, sleeping between events.
func (r *Runner) applyStimuli(net *network.Network, scenario Scenario) {
	r.t.Helper()

	stimuli := make([]Stimulus, len(scenario.Stimuli))
	copy(stimuli, scenario.Stimuli)
	sort.SliceStable(stimuli, func(i, j int) bool { return stimuli[i].At < stimuli[j].At })

	start := time.Now()
	for _, st := range stimuli {
		if wait := st.At - time.Since(start); wait > 0 {
			time.Sleep(wait)
		}
		switch st.Kind {
		case StimulusForceFire:
			if err := net.Stimulate(st.Neuron); err != nil {
				r.t.Fatalf("scenario %s: Stimulate(%d): %v", scenario.Name, st.Neuron, err)
			}
		case StimulusInject:
			if err := net.Inject(st.Neuron, st.Weight); err != nil {
				r.t.Fatalf("scenario %s: Inject(%d): %v", scenario.Name, st.Neuron, err)
			}
		case StimulusBroadcast:
			net.Broadcast(st.Mean, st.Std)
		default:
			r.t.Fatalf("scenario %s: unknown stimulus kind %q", scenario.Name, st.Kind)
		}
	}
}
