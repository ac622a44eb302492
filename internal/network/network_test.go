package network

import (
	"io"
	"testing"
	"time"

	"github.com/goki/mat32"
	"github.com/nvandessel/spikenet/internal/config"
	"github.com/nvandessel/spikenet/internal/logging"
	"github.com/nvandessel/spikenet/internal/neuron"
	"github.com/nvandessel/spikenet/internal/topology"
)

func chainTopology() *topology.Topology {
	// 0 -> 1, one excitatory synapse above threshold.
	return &topology.Topology{
		Positions: []mat32.Vec2{mat32.NewVec2(0.1, 0.5), mat32.NewVec2(0.2, 0.5)},
		Outgoing: [][]topology.Edge{
			{{Source: 0, Target: 1, Weight: 1.5, Delay: 20 * time.Millisecond}},
			{},
		},
	}
}

func testDyn() neuron.Dynamics {
	return neuron.Dynamics{
		Threshold:           1.0,
		DecayRate:           0.3,
		RecoveryRate:        0.2,
		RefractoryPotential: -0.9,
		RefractoryDuration:  time.Second,
	}
}

func TestChainPropagation(t *testing.T) {
	log := logging.NewLogger("info", io.Discard)
	net := FromTopology(chainTopology(), testDyn(), 1, log, nil)
	net.Start()

	if err := net.Stimulate(0); err != nil {
		t.Fatalf("Stimulate: %v", err)
	}

	var fired []int
	deadline := time.After(3 * time.Second)
	for len(fired) < 2 {
		select {
		case s, ok := <-net.Observations():
			if !ok {
				t.Fatal("observation stream closed early")
			}
			if s.Firing {
				fired = append(fired, s.Index)
			}
		case <-deadline:
			t.Fatalf("timed out; firings so far: %v", fired)
		}
	}
	net.Stop()

	if fired[0] != 0 || fired[1] != 1 {
		t.Errorf("firing order = %v, want [0 1]", fired)
	}
}

func TestStimulateOutOfRange(t *testing.T) {
	log := logging.NewLogger("info", io.Discard)
	net := FromTopology(chainTopology(), testDyn(), 1, log, nil)

	if err := net.Stimulate(-1); err == nil {
		t.Error("expected error for negative index")
	}
	if err := net.Stimulate(2); err == nil {
		t.Error("expected error for index past population")
	}
}

func TestStopClosesObservations(t *testing.T) {
	log := logging.NewLogger("info", io.Discard)
	net := FromTopology(chainTopology(), testDyn(), 1, log, nil)
	net.Start()
	net.Stop()

	select {
	case _, ok := <-net.Observations():
		if ok {
			t.Error("expected closed observation stream after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("observation stream not closed after Stop")
	}
}

func TestBroadcastReachesAllActors(t *testing.T) {
	log := logging.NewLogger("info", io.Discard)
	net := FromTopology(chainTopology(), testDyn(), 1, log, nil)
	net.Start()
	defer net.Stop()

	// A strong deterministic bias turns a tiny injection into a firing.
	net.Broadcast(2.0, 0)

	if err := net.Inject(1, 0.01); err != nil {
		t.Fatalf("Inject: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case s, ok := <-net.Observations():
			if !ok {
				t.Fatal("observation stream closed early")
			}
			if s.Index == 1 && s.Firing {
				return
			}
		case <-deadline:
			t.Fatal("biased neuron never fired")
		}
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Network.Neurons = 0

	if _, err := New(cfg, logging.NewLogger("info", io.Discard), nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewBuildsConfiguredPopulation(t *testing.T) {
	cfg := config.Default()
	cfg.Network.Neurons = 30
	cfg.Network.OutDegree = 3
	cfg.Network.MaxConnectionDistance = 0.8
	cfg.Network.Seed = 12

	net, err := New(cfg, logging.NewLogger("info", io.Discard), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if net.Size() != 30 {
		t.Errorf("Size = %d, want 30", net.Size())
	}
	if len(net.Topology().Positions) != 30 {
		t.Errorf("positions = %d, want 30", len(net.Topology().Positions))
	}
}

func TestViewLastWriteWins(t *testing.T) {
	v := NewView(3)
	t0 := time.Now()

	obs := make(chan neuron.State, 4)
	obs <- neuron.State{Index: 1, Potential: 0.2, At: t0}
	obs <- neuron.State{Index: 1, Potential: 0.6, Firing: true, At: t0.Add(time.Millisecond)}
	obs <- neuron.State{Index: 2, Potential: -0.1, At: t0}

	if n := v.Drain(obs); n != 3 {
		t.Fatalf("Drain applied %d snapshots, want 3", n)
	}

	s, ok := v.Latest(1)
	if !ok {
		t.Fatal("no state for neuron 1")
	}
	if s.Potential != 0.6 || !s.Firing {
		t.Errorf("latest state for neuron 1 = %+v, want the second snapshot", s)
	}

	if _, ok := v.Latest(0); ok {
		t.Error("neuron 0 should have no known state")
	}
	if v.Spikes() != 1 {
		t.Errorf("Spikes = %d, want 1", v.Spikes())
	}
}
