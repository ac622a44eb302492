// Package constants provides named defaults used throughout the spikenet codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

import "time"

// Population and topology defaults.
const (
	// DefaultNeurons is the default population size.
	DefaultNeurons = 1000

	// DefaultOutDegree is the target number of outgoing synapses per neuron.
	// Construction may yield fewer when sampling is exhausted, never more.
	DefaultOutDegree = 6

	// DefaultMaxConnectionDistance is the spatial cutoff for synapse candidates,
	// in layout units (the layout rectangle has height 1).
	DefaultMaxConnectionDistance = 0.1

	// DefaultConnectionRetries is the budget of consecutive unproductive sampling
	// draws before a neuron's connection set is finalized early.
	DefaultConnectionRetries = 50

	// DefaultAspectRatio is the width of the layout rectangle (height is 1).
	DefaultAspectRatio = 1.5
)

// Synaptic weight defaults. Negative weights are inhibitory.
const (
	// DefaultWeightMin is the lower bound of the uniform weight distribution.
	DefaultWeightMin = -0.3

	// DefaultWeightMax is the upper bound of the uniform weight distribution.
	DefaultWeightMax = 1.2
)

// Membrane dynamics defaults.
const (
	// DefaultThreshold is the membrane potential at which a neuron fires.
	DefaultThreshold = 1.0

	// DefaultDecayRate is the per-second decay applied to positive potential.
	DefaultDecayRate = 0.3

	// DefaultRecoveryRate is the per-second recovery applied to negative
	// (post-firing undershoot) potential.
	DefaultRecoveryRate = 0.2

	// DefaultRefractoryPotential is the undershoot value the potential is
	// clamped to at the instant of firing.
	DefaultRefractoryPotential = -0.9

	// DefaultRefractoryDuration is the hard refractory window after a firing,
	// during which the membrane is frozen and all input is ignored.
	DefaultRefractoryDuration = 300 * time.Millisecond

	// DefaultConductionSpeed converts spatial distance into propagation delay:
	// delay = distance * 1000 / speed, in milliseconds.
	DefaultConductionSpeed = 0.25
)

// Homeostat defaults. Rates are population-mean spikes per neuron per second.
const (
	// DefaultTargetRateLow is the lower edge of the target activity band.
	DefaultTargetRateLow = 0.5

	// DefaultTargetRateHigh is the upper edge of the target activity band.
	DefaultTargetRateHigh = 2.0

	// DefaultBiasStep is the bias-mean adjustment applied per control interval
	// when activity is outside the target band.
	DefaultBiasStep = 0.05

	// DefaultBiasLimit bounds the bias mean to [-limit, +limit].
	DefaultBiasLimit = 1.0

	// DefaultControlInterval is the homeostat sampling period.
	DefaultControlInterval = 500 * time.Millisecond
)
