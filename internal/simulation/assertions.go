package simulation

import (
	"testing"
	"time"
)

// AssertFiringOrder asserts that the observed firing sequence starts with
// exactly the given neuron indexes.
func AssertFiringOrder(t *testing.T, result SimulationResult, want []int) {
	t.Helper()
	if len(result.Firings) < len(want) {
		t.Fatalf("AssertFiringOrder: got %d firings, want at least %d: %v", len(result.Firings), len(want), result.Firings)
	}
	for i, neuron := range want {
		if result.Firings[i].Neuron != neuron {
			t.Errorf("AssertFiringOrder: firing %d from neuron %d, want %d (sequence: %v)", i, result.Firings[i].Neuron, neuron, result.Firings)
		}
	}
}

// AssertFiringCount asserts that a neuron fired exactly n times.
func AssertFiringCount(t *testing.T, result SimulationResult, neuron, n int) {
	t.Helper()
	got := len(result.FiringsFor(neuron))
	if got != n {
		t.Errorf("AssertFiringCount: neuron %d fired %d times, want %d", neuron, got, n)
	}
}

// AssertNeverFired asserts that a neuron produced no firing events.
func AssertNeverFired(t *testing.T, result SimulationResult, neuron int) {
	t.Helper()
	if got := len(result.FiringsFor(neuron)); got != 0 {
		t.Errorf("AssertNeverFired: neuron %d fired %d times", neuron, got)
	}
}

// AssertAllFired asserts that every neuron in the population fired at least
// once.
func AssertAllFired(t *testing.T, result SimulationResult, population int) {
	t.Helper()
	counts := result.FiringCounts()
	for i := 0; i < population; i++ {
		if counts[i] == 0 {
			t.Errorf("AssertAllFired: neuron %d never fired", i)
		}
	}
}

// AssertFinalPotentialNear asserts that a neuron's last published potential
// is within epsilon of want.
func AssertFinalPotentialNear(t *testing.T, result SimulationResult, neuron int, want, epsilon float32) {
	t.Helper()
	s, ok := result.Final[neuron]
	if !ok {
		t.Fatalf("AssertFinalPotentialNear: neuron %d never published a snapshot", neuron)
	}
	diff := s.Potential - want
	if diff < 0 {
		diff = -diff
	}
	if diff > epsilon {
		t.Errorf("AssertFinalPotentialNear: neuron %d potential = %v, want %v (±%v)", neuron, s.Potential, want, epsilon)
	}
}

// AssertMinFiringGap asserts that consecutive firings of a neuron are
// separated by at least gap.
func AssertMinFiringGap(t *testing.T, result SimulationResult, neuron int, gap time.Duration) {
	t.Helper()
	firings := result.FiringsFor(neuron)
	for i := 1; i < len(firings); i++ {
		if d := firings[i].At.Sub(firings[i-1].At); d < gap {
			t.Errorf("AssertMinFiringGap: neuron %d firings %d and %d only %v apart, want at least %v", neuron, i-1, i, d, gap)
		}
	}
}
