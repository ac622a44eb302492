package simulation

import (
	"testing"
	"time"

	"github.com/goki/mat32"
)

// TestRingPropagation drives neuron 0 in a three-neuron ring with strongly
// excitatory edges. The wave visits each neuron once in ring order; by the
// time it returns to neuron 0 the refractory window is still open, so the
// returning spike is discarded and the wave dies.
func TestRingPropagation(t *testing.T) {
	r := NewRunner(t)
	result := r.Run(Scenario{
		Name: "ring",
		Positions: []mat32.Vec2{
			mat32.NewVec2(0.2, 0.2),
			mat32.NewVec2(0.8, 0.2),
			mat32.NewVec2(0.5, 0.8),
		},
		Edges: []EdgeSpec{
			{Source: 0, Target: 1, Weight: 1.5, Delay: 40 * time.Millisecond},
			{Source: 1, Target: 2, Weight: 1.5, Delay: 40 * time.Millisecond},
			{Source: 2, Target: 0, Weight: 1.5, Delay: 40 * time.Millisecond},
		},
		Stimuli: []Stimulus{
			{At: 0, Kind: StimulusForceFire, Neuron: 0},
		},
		Duration: 400 * time.Millisecond,
	})

	AssertFiringOrder(t, result, []int{0, 1, 2})
	AssertAllFired(t, result, 3)
	if len(result.Firings) != 3 {
		t.Errorf("got %d firings, want exactly 3: %v", len(result.Firings), result.Firings)
	}

	// Each hop waits out its edge delay. Allow a little slack below the
	// nominal 40ms for clock reads on either side of the delivery timer.
	for i := 1; i < len(result.Firings); i++ {
		if gap := result.Firings[i].At.Sub(result.Firings[i-1].At); gap < 35*time.Millisecond {
			t.Errorf("hop %d->%d took %v, want at least the edge delay", result.Firings[i-1].Neuron, result.Firings[i].Neuron, gap)
		}
	}
}

// TestInhibitoryEdgeSuppresses pairs an excitatory path with an inhibitory
// one arriving first. The inhibited target needs more than a single spike's
// worth of charge afterwards, so it stays quiet.
func TestInhibitoryEdgeSuppresses(t *testing.T) {
	r := NewRunner(t)
	result := r.Run(Scenario{
		Name: "inhibition",
		Positions: []mat32.Vec2{
			mat32.NewVec2(0.2, 0.5),
			mat32.NewVec2(0.5, 0.5),
			mat32.NewVec2(0.8, 0.5),
		},
		Edges: []EdgeSpec{
			// Inhibitory edge lands well before the excitatory one.
			{Source: 0, Target: 2, Weight: -0.8, Delay: 20 * time.Millisecond},
			{Source: 1, Target: 2, Weight: 1.1, Delay: 120 * time.Millisecond},
		},
		Stimuli: []Stimulus{
			{At: 0, Kind: StimulusForceFire, Neuron: 0},
			{At: 0, Kind: StimulusForceFire, Neuron: 1},
		},
		Duration: 300 * time.Millisecond,
	})

	AssertFiringCount(t, result, 0, 1)
	AssertFiringCount(t, result, 1, 1)
	AssertNeverFired(t, result, 2)
}
