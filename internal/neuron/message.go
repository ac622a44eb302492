package neuron

import (
	"time"

	"github.com/nvandessel/spikenet/internal/mailbox"
)

// Kind discriminates inbox message payloads.
type Kind int

const (
	// KindSpike is an action potential arriving from an upstream neuron.
	// The synaptic weight is resolved at the sender and carried in the
	// message, so the receiver never looks weights up by sender identity.
	KindSpike Kind = iota

	// KindForceFire is the reserved control sentinel: a stimulus equal to
	// the bare firing threshold, bypassing weight resolution entirely.
	KindForceFire

	// KindModulate updates the actor's background bias parameters.
	KindModulate
)

// Message is the single inbox payload type for neuron actors.
type Message struct {
	Kind Kind

	// From is the sending neuron's index; negative for external stimuli.
	From int

	// Weight is the delivered stimulus magnitude (KindSpike only).
	Weight float32

	// BiasMean and BiasStd parameterize background stimulus noise
	// (KindModulate only).
	BiasMean float64
	BiasStd  float64
}

// Axon is a send-capable handle to one downstream neuron, fixed at
// construction: the target's inbox plus this edge's weight and delay.
type Axon struct {
	Target int
	Weight float32
	Delay  time.Duration
	Inbox  *mailbox.Mailbox[Message]
}
