// Package topology constructs the spatial layout and directed synapse graph
// for a neuron population. Construction is a pure function of its parameters
// and the supplied random source: the same seed reproduces the same
// positions, edge set, weights and delays.
package topology

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/goki/mat32"
)

// ErrNoViableNeighbor is returned when a neuron has no candidate target
// within the connection distance cutoff. The topology is unusable; the
// whole construction aborts.
var ErrNoViableNeighbor = errors.New("no viable neighbor within connection range")

// Params are the topology construction inputs. All values must be
// range-checked by the caller (config.Validate) before construction.
type Params struct {
	// Neurons is the population size.
	Neurons int

	// OutDegree is the target number of outgoing synapses per neuron.
	OutDegree int

	// AspectRatio is the layout rectangle width; height is fixed at 1.
	AspectRatio float32

	// MaxDistance is the spatial cutoff beyond which no synapse forms.
	MaxDistance float32

	// WeightMin and WeightMax bound the uniform synaptic weight draw.
	WeightMin float32
	WeightMax float32

	// Retries is the budget of consecutive unproductive sampling draws
	// before a neuron's connection set is finalized early.
	Retries int

	// ConductionSpeed converts distance into propagation delay.
	ConductionSpeed float32
}

// Edge is a directed, weighted, delayed synapse. Immutable after
// construction; delivery is owned by the source neuron.
type Edge struct {
	// Source and Target are neuron indices.
	Source int
	Target int

	// Weight is the stimulus magnitude delivered at the target.
	// Negative weights are inhibitory.
	Weight float32

	// Delay is the axonal propagation delay: distance * 1000 / speed,
	// in milliseconds.
	Delay time.Duration
}

// Topology is the construction output: one position and one outgoing edge
// list per neuron index.
type Topology struct {
	Positions []mat32.Vec2
	Outgoing  [][]Edge
}

// Edges flattens all outgoing edge lists, in source order.
func (t *Topology) Edges() []Edge {
	var all []Edge
	for _, out := range t.Outgoing {
		all = append(all, out...)
	}
	return all
}

// Build samples neuron positions uniformly in the layout rectangle and,
// for each neuron, draws up to OutDegree distinct targets from a
// distance-weighted distribution (weight 1/d within MaxDistance, 0 beyond).
//
// A neuron with no reachable candidate aborts construction with
// ErrNoViableNeighbor. A neuron whose sampling exhausts the retry budget
// with at least one target proceeds with the partial set; the shortfall is
// logged.
func Build(p Params, rng *rand.Rand, log *slog.Logger) (*Topology, error) {
	if log == nil {
		log = slog.Default()
	}

	positions := make([]mat32.Vec2, p.Neurons)
	for i := range positions {
		positions[i] = mat32.NewVec2(rng.Float32()*p.AspectRatio, rng.Float32())
	}

	dist := distanceTable(positions)

	outgoing := make([][]Edge, p.Neurons)
	for i := range outgoing {
		targets, err := sampleTargets(dist[i], p.OutDegree, p.MaxDistance, p.Retries, rng)
		if err != nil {
			return nil, fmt.Errorf("neuron %d: %w", i, err)
		}
		if len(targets) < p.OutDegree {
			log.Warn("connection shortfall",
				"neuron", i, "connected", len(targets), "target", p.OutDegree)
		}

		edges := make([]Edge, 0, len(targets))
		for _, tgt := range targets {
			weight := p.WeightMin + rng.Float32()*(p.WeightMax-p.WeightMin)
			edges = append(edges, Edge{
				Source: i,
				Target: tgt,
				Weight: weight,
				Delay:  PropagationDelay(dist[i][tgt], p.ConductionSpeed),
			})
		}
		outgoing[i] = edges
	}

	return &Topology{Positions: positions, Outgoing: outgoing}, nil
}

// PropagationDelay converts a spatial distance into an axonal conduction
// delay at constant velocity.
func PropagationDelay(distance, speed float32) time.Duration {
	ms := float64(distance) * 1000.0 / float64(speed)
	return time.Duration(ms * float64(time.Millisecond))
}

// distanceTable computes the full pairwise distance matrix. A neuron's
// distance to itself is infinite, which excludes self-loops from sampling.
func distanceTable(positions []mat32.Vec2) [][]float32 {
	n := len(positions)
	table := make([][]float32, n)
	for i := range table {
		row := make([]float32, n)
		for j := range row {
			if i == j {
				row[j] = mat32.Infinity
				continue
			}
			row[j] = positions[i].DistTo(positions[j])
		}
		table[i] = row
	}
	return table
}

// sampleTargets draws distinct target indices from a distance-weighted
// distribution until outDegree targets are collected or retries consecutive
// draws land on an already-chosen index. Targets are returned in draw
// order, which keeps construction deterministic for a fixed random source.
func sampleTargets(distRow []float32, outDegree int, maxDistance float32, retries int, rng *rand.Rand) ([]int, error) {
	cum := make([]float64, len(distRow))
	total := 0.0
	for j, d := range distRow {
		if d <= maxDistance {
			total += 1.0 / float64(d)
		}
		cum[j] = total
	}
	if total == 0 {
		return nil, ErrNoViableNeighbor
	}

	chosen := make([]int, 0, outDegree)
	seen := make(map[int]bool, outDegree)
	misses := 0
	for len(chosen) < outDegree && misses < retries {
		r := rng.Float64() * total
		j := sort.Search(len(cum), func(k int) bool { return cum[k] > r })
		if j >= len(cum) || seen[j] {
			misses++
			continue
		}
		seen[j] = true
		chosen = append(chosen, j)
		misses = 0
	}

	return chosen, nil
}
