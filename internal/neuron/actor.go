package neuron

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nvandessel/spikenet/internal/logging"
	"github.com/nvandessel/spikenet/internal/mailbox"
)

// ActorConfig wires one actor at construction. All channel endpoints are
// fixed for the actor's lifetime; no memory is shared between actors.
type ActorConfig struct {
	// Index is this neuron's position in the population.
	Index int

	// Dynamics are the shared membrane parameters.
	Dynamics Dynamics

	// Inbox is the dendrite: the one channel this actor receives from.
	Inbox *mailbox.Mailbox[Message]

	// Axons are the outgoing handles to every downstream target.
	Axons []Axon

	// Observations is the shared fan-in channel for state snapshots.
	Observations *mailbox.Mailbox[State]

	// Spikes optionally traces firing events; may be nil.
	Spikes *logging.SpikeLogger

	// Log receives lifecycle and shortfall messages; may be nil.
	Log *slog.Logger

	// RNG is the actor-private source for background stimulus noise.
	RNG *rand.Rand
}

// Actor is one independent neuron: a single goroutine owning a membrane and
// a private queue of scheduled deliveries. It blocks in exactly one place
// per loop iteration, waiting on the inbox with a timeout equal to the time
// until the earliest pending delivery.
type Actor struct {
	index    int
	dyn      Dynamics
	inbox    *mailbox.Mailbox[Message]
	axons    []Axon
	obs      *mailbox.Mailbox[State]
	spikes   *logging.SpikeLogger
	log      *slog.Logger
	rng      *rand.Rand
	biasMean float64
	biasStd  float64

	mem   Membrane
	queue deliveryQueue
}

// NewActor creates an actor; call Run on its own goroutine to start it.
func NewActor(cfg ActorConfig) *Actor {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Actor{
		index:  cfg.Index,
		dyn:    cfg.Dynamics,
		inbox:  cfg.Inbox,
		axons:  cfg.Axons,
		obs:    cfg.Observations,
		spikes: cfg.Spikes,
		log:    log,
		rng:    cfg.RNG,
	}
}

// Run executes the actor loop until the inbox is closed or a downstream
// send fails. Both are contained, local terminations: the rest of the
// network keeps running.
func (a *Actor) Run() {
	for {
		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		if next, ok := a.queue.nextArrival(); ok {
			timer = time.NewTimer(time.Until(next))
			timerC = timer.C
		}

		select {
		case msg, ok := <-a.inbox.C():
			if timer != nil {
				timer.Stop()
			}
			if !ok {
				a.log.Debug("dendrite closed, neuron stopping", "neuron", a.index)
				return
			}
			a.handle(msg)

		case <-timerC:
			if err := a.deliver(); err != nil {
				a.log.Warn("downstream target gone, neuron stopping",
					"neuron", a.index, "error", err)
				return
			}
		}
	}
}

// handle processes one inbox message and publishes the resulting state.
// Modulation updates are control-plane only and publish nothing, and a
// stimulus discarded by the refractory window changes no state and likewise
// publishes nothing.
func (a *Actor) handle(msg Message) {
	now := time.Now()

	switch msg.Kind {
	case KindModulate:
		a.biasMean = msg.BiasMean
		a.biasStd = msg.BiasStd
		return
	case KindForceFire:
		if a.dyn.Refractory(a.mem, now) {
			return
		}
		a.integrate(now, a.dyn.Threshold)
	case KindSpike:
		a.log.Log(context.Background(), logging.LevelTrace, "stimulus",
			"neuron", a.index, "from", msg.From, "weight", msg.Weight)
		if a.dyn.Refractory(a.mem, now) {
			return
		}
		a.integrate(now, msg.Weight+a.background())
	}

	a.publish(now)
}

// integrate runs the membrane update and, on firing, schedules one delayed
// delivery per outgoing axon.
func (a *Actor) integrate(now time.Time, stimulus float32) {
	if !a.dyn.Step(&a.mem, now, stimulus) {
		return
	}
	for i, ax := range a.axons {
		a.queue.push(delivery{arrival: now.Add(ax.Delay), axon: i})
	}
	a.spikes.Spike(a.index, a.mem.Potential, now)
}

// background draws one sample of the modulated background stimulus.
func (a *Actor) background() float32 {
	if a.biasMean == 0 && a.biasStd == 0 {
		return 0
	}
	return float32(a.rng.NormFloat64()*a.biasStd + a.biasMean)
}

// deliver pops the earliest pending delivery and sends this neuron's index
// and the edge's weight to the target. A send failure means the receiver
// is gone; the caller terminates this actor.
func (a *Actor) deliver() error {
	d := a.queue.pop()
	ax := a.axons[d.axon]
	return ax.Inbox.Send(Message{Kind: KindSpike, From: a.index, Weight: ax.Weight})
}

// publish sends a state snapshot to the observation channel. The channel is
// unbounded and may already be closed during shutdown; either way the actor
// is never blocked or failed by its observer.
func (a *Actor) publish(now time.Time) {
	_ = a.obs.Send(State{
		Index:     a.index,
		Potential: a.mem.Potential,
		Firing:    a.mem.Firing,
		At:        now,
	})
}
