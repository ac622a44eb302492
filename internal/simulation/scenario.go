package simulation

import (
	"time"

	"github.com/goki/mat32"

	"github.com/nvandessel/spikenet/internal/constants"
	"github.com/nvandessel/spikenet/internal/neuron"
	"github.com/nvandessel/spikenet/internal/topology"
)

// StimulusKind selects how a scheduled stimulus is applied.
type StimulusKind string

const (
	// StimulusForceFire injects a stimulus equal to the firing threshold,
	// firing any neuron at or above rest unless it is refractory.
	StimulusForceFire StimulusKind = "force-fire"
	// StimulusInject adds a raw weight to the target's potential.
	StimulusInject StimulusKind = "inject"
	// StimulusBroadcast updates the background bias of every neuron.
	StimulusBroadcast StimulusKind = "broadcast"
)

// Stimulus is one scheduled input event. At is relative to scenario start.
type Stimulus struct {
	At     time.Duration
	Kind   StimulusKind
	Neuron int     // target for force-fire and inject
	Weight float32 // inject magnitude

	// Broadcast parameters.
	Mean float64
	Std  float64
}

// EdgeSpec defines a pre-wired synapse in the scenario graph.
type EdgeSpec struct {
	Source int
	Target int
	Weight float32
	Delay  time.Duration
}

// Scenario defines a complete simulation experiment with an explicit layout
// instead of a randomly sampled one.
type Scenario struct {
	Name      string
	Positions []mat32.Vec2
	Edges     []EdgeSpec
	Stimuli   []Stimulus
	Duration  time.Duration

	// Dynamics, when non-nil, overrides the default membrane parameters.
	Dynamics *neuron.Dynamics

	// Seed feeds the per-neuron background RNGs. Zero is a valid seed.
	Seed int64
}

// ToTopology converts the scenario's explicit layout into a Topology.
func (s Scenario) ToTopology() *topology.Topology {
	outgoing := make([][]topology.Edge, len(s.Positions))
	for i := range outgoing {
		outgoing[i] = []topology.Edge{}
	}
	for _, e := range s.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], topology.Edge{
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
			Delay:  e.Delay,
		})
	}
	return &topology.Topology{Positions: s.Positions, Outgoing: outgoing}
}

// DefaultDynamics returns the membrane parameters scenarios run with unless
// they override them.
func DefaultDynamics() neuron.Dynamics {
	return neuron.Dynamics{
		Threshold:           constants.DefaultThreshold,
		DecayRate:           constants.DefaultDecayRate,
		RecoveryRate:        constants.DefaultRecoveryRate,
		RefractoryPotential: constants.DefaultRefractoryPotential,
		RefractoryDuration:  constants.DefaultRefractoryDuration,
	}
}

// FiringEvent is one observed firing, in publish order.
type FiringEvent struct {
	Neuron int
	At     time.Time
}

// SimulationResult captures everything the observation stream produced.
type SimulationResult struct {
	// Snapshots holds every published state change, in arrival order.
	Snapshots []neuron.State
	// Firings holds the firing subset of Snapshots, in arrival order.
	Firings []FiringEvent
	// Final maps neuron index to its last published snapshot. Neurons that
	// never published are absent.
	Final map[int]neuron.State
}

// FiringsFor returns the firing events of one neuron, in order.
func (r SimulationResult) FiringsFor(index int) []FiringEvent {
	var out []FiringEvent
	for _, f := range r.Firings {
		if f.Neuron == index {
			out = append(out, f)
		}
	}
	return out
}

// FiringCounts returns the number of firings per neuron index.
func (r SimulationResult) FiringCounts() map[int]int {
	counts := make(map[int]int)
	for _, f := range r.Firings {
		counts[f.Neuron]++
	}
	return counts
}
