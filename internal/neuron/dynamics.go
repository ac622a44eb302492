// Package neuron implements the leaky-integrate-and-fire point neuron: the
// membrane update rule, the per-neuron delivery queue, and the actor loop
// that multiplexes inbound stimuli and self-scheduled deliveries through a
// single blocking wait.
package neuron

import "time"

// Dynamics holds the membrane parameters shared by every neuron in a
// network. All methods are pure with respect to Dynamics itself.
type Dynamics struct {
	// Threshold is the potential at which the neuron fires.
	Threshold float32

	// DecayRate is the per-second decay applied while potential is positive.
	DecayRate float32

	// RecoveryRate is the per-second recovery applied while potential is
	// negative (the post-firing undershoot climbing back toward rest).
	RecoveryRate float32

	// RefractoryPotential is the undershoot value the potential is clamped
	// to at the instant of firing.
	RefractoryPotential float32

	// RefractoryDuration is the hard refractory window after a firing.
	// The membrane is fully frozen for its duration: no decay, no input.
	RefractoryDuration time.Duration
}

// Membrane is one neuron's mutable dynamical state. It is owned by a single
// actor and never shared.
type Membrane struct {
	// Potential is the accumulated charge, decaying toward zero at rest.
	Potential float32

	// Firing reports whether the last update crossed the threshold. It is
	// cleared by the first update after the refractory window.
	Firing bool

	// LastUpdate is when the membrane was last advanced.
	LastUpdate time.Time

	// LastFired is the instant of the most recent firing; zero if the
	// neuron has never fired.
	LastFired time.Time
}

// State is the observation snapshot published after a stimulus is processed.
type State struct {
	Index     int
	Potential float32
	Firing    bool
	At        time.Time
}

// Refractory reports whether the membrane is inside its hard refractory
// window at the given instant.
func (d Dynamics) Refractory(m Membrane, now time.Time) bool {
	return !m.LastFired.IsZero() && now.Sub(m.LastFired) < d.RefractoryDuration
}

// Step advances the membrane from its last update to now and applies the
// incoming stimulus. It reports whether the neuron fired.
//
// Inside the hard refractory window (measured from the last firing instant)
// the membrane is frozen: no decay, no stimulus, no state change at all.
// Otherwise the firing flag is cleared, the potential decays toward zero
// without ever crossing it, the stimulus is added, and a threshold crossing
// fires: the flag is set and the potential clamps to the refractory
// undershoot.
func (d Dynamics) Step(m *Membrane, now time.Time, stimulus float32) bool {
	if d.Refractory(*m, now) {
		return false
	}

	if !m.LastUpdate.IsZero() {
		elapsed := float32(now.Sub(m.LastUpdate).Seconds())
		if m.Potential > 0 {
			m.Potential -= min(elapsed*d.DecayRate, m.Potential)
		} else if m.Potential < 0 {
			m.Potential += min(elapsed*d.RecoveryRate, -m.Potential)
		}
	}

	m.Firing = false
	m.Potential += stimulus
	m.LastUpdate = now

	if m.Potential >= d.Threshold {
		m.Firing = true
		m.LastFired = now
		m.Potential = d.RefractoryPotential
		return true
	}
	return false
}
