// Package simulation provides a scenario-based test harness for validating
// emergent dynamics of running neuron populations.
//
// The simulation exercises the real actor loop, mailbox plumbing, and
// network wiring with no mocks. Scenarios are Go builders that construct
// explicit layouts and synapse edges, run a timed stimulus schedule against
// the live population, and capture every published snapshot for
// property-based assertions.
//
// Usage:
//
//	func TestRingPropagation(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:      "ring",
//	        Positions: []mat32.Vec2{...},
//	        Edges:     []simulation.EdgeSpec{...},
//	        Stimuli:   []simulation.Stimulus{{Neuron: 0, Kind: simulation.StimulusForceFire}},
//	        Duration:  500 * time.Millisecond,
//	    })
//	    simulation.AssertFiringOrder(t, result, []int{0, 1, 2})
//	}
package simulation
