// Package network wires a topology into a running population of neuron
// actors: one goroutine and one inbox per neuron, send handles to every
// downstream target, and a shared unbounded observation stream.
package network

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/nvandessel/spikenet/internal/config"
	"github.com/nvandessel/spikenet/internal/logging"
	"github.com/nvandessel/spikenet/internal/mailbox"
	"github.com/nvandessel/spikenet/internal/neuron"
	"github.com/nvandessel/spikenet/internal/topology"
)

// Network owns the channel endpoints and actor handles for one simulated
// population. Channel wiring is fixed at construction and never modified.
type Network struct {
	topo    *topology.Topology
	inboxes []*mailbox.Mailbox[neuron.Message]
	obs     *mailbox.Mailbox[neuron.State]
	actors  []*neuron.Actor
	log     *slog.Logger

	wg      sync.WaitGroup
	started bool
}

// New validates cfg, builds a topology from its seed, and wires a network.
// Construction failures (an unreachable neuron) are fatal and returned.
func New(cfg *config.Config, log *slog.Logger, spikes *logging.SpikeLogger) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	rng := rand.New(rand.NewSource(cfg.Network.Seed))
	topo, err := topology.Build(topology.Params{
		Neurons:         cfg.Network.Neurons,
		OutDegree:       cfg.Network.OutDegree,
		AspectRatio:     cfg.Network.AspectRatio,
		MaxDistance:     cfg.Network.MaxConnectionDistance,
		WeightMin:       cfg.Network.WeightMin,
		WeightMax:       cfg.Network.WeightMax,
		Retries:         cfg.Network.ConnectionRetries,
		ConductionSpeed: cfg.Network.ConductionSpeed,
	}, rng, log)
	if err != nil {
		return nil, fmt.Errorf("building topology: %w", err)
	}

	dyn := neuron.Dynamics{
		Threshold:           cfg.Neuron.Threshold,
		DecayRate:           cfg.Neuron.DecayRate,
		RecoveryRate:        cfg.Neuron.RecoveryRate,
		RefractoryPotential: cfg.Neuron.RefractoryPotential,
		RefractoryDuration:  cfg.Neuron.RefractoryDuration,
	}

	return FromTopology(topo, dyn, cfg.Network.Seed, log, spikes), nil
}

// FromTopology wires actors for an already-built topology. Used directly by
// tests and scenario runs that need explicit layouts and edges.
func FromTopology(topo *topology.Topology, dyn neuron.Dynamics, seed int64, log *slog.Logger, spikes *logging.SpikeLogger) *Network {
	if log == nil {
		log = slog.Default()
	}

	n := len(topo.Positions)
	inboxes := make([]*mailbox.Mailbox[neuron.Message], n)
	for i := range inboxes {
		inboxes[i] = mailbox.New[neuron.Message]()
	}
	obs := mailbox.New[neuron.State]()

	actors := make([]*neuron.Actor, n)
	for i := range actors {
		out := topo.Outgoing[i]
		axons := make([]neuron.Axon, len(out))
		for j, e := range out {
			axons[j] = neuron.Axon{
				Target: e.Target,
				Weight: e.Weight,
				Delay:  e.Delay,
				Inbox:  inboxes[e.Target],
			}
		}
		actors[i] = neuron.NewActor(neuron.ActorConfig{
			Index:        i,
			Dynamics:     dyn,
			Inbox:        inboxes[i],
			Axons:        axons,
			Observations: obs,
			Spikes:       spikes,
			Log:          log,
			RNG:          rand.New(rand.NewSource(seed + int64(i) + 1)),
		})
	}

	return &Network{
		topo:    topo,
		inboxes: inboxes,
		obs:     obs,
		actors:  actors,
		log:     log,
	}
}

// Start launches one goroutine per neuron.
func (n *Network) Start() {
	if n.started {
		return
	}
	n.started = true
	for _, a := range n.actors {
		n.wg.Add(1)
		go func(a *neuron.Actor) {
			defer n.wg.Done()
			a.Run()
		}(a)
	}
	n.log.Info("network started", "neurons", len(n.actors))
}

// Stop closes every inbox, waits for all actors to drain and exit, then
// closes the observation stream.
func (n *Network) Stop() {
	for _, in := range n.inboxes {
		in.Close()
	}
	n.wg.Wait()
	n.obs.Close()
	n.log.Info("network stopped")
}

// Stimulate sends the force-fire sentinel to neuron i.
func (n *Network) Stimulate(i int) error {
	if i < 0 || i >= len(n.inboxes) {
		return fmt.Errorf("stimulate: neuron %d out of range [0, %d)", i, len(n.inboxes))
	}
	return n.inboxes[i].Send(neuron.Message{Kind: neuron.KindForceFire, From: -1})
}

// Inject sends an external stimulus of the given magnitude to neuron i,
// bypassing the synapse graph.
func (n *Network) Inject(i int, weight float32) error {
	if i < 0 || i >= len(n.inboxes) {
		return fmt.Errorf("inject: neuron %d out of range [0, %d)", i, len(n.inboxes))
	}
	return n.inboxes[i].Send(neuron.Message{Kind: neuron.KindSpike, From: -1, Weight: weight})
}

// Broadcast sends a background-bias update to every neuron's inbox.
// Inboxes already closed during shutdown are skipped.
func (n *Network) Broadcast(mean, std float64) {
	msg := neuron.Message{Kind: neuron.KindModulate, BiasMean: mean, BiasStd: std}
	for _, in := range n.inboxes {
		_ = in.Send(msg)
	}
}

// Observations returns the fan-in snapshot stream. It is closed by Stop
// after all actors have exited.
func (n *Network) Observations() <-chan neuron.State {
	return n.obs.C()
}

// Size returns the population size.
func (n *Network) Size() int {
	return len(n.actors)
}

// Topology returns the construction output, for connectivity reporting.
func (n *Network) Topology() *topology.Topology {
	return n.topo
}
