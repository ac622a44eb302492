package network

import "github.com/nvandessel/spikenet/internal/neuron"

// View is the observer read model: a per-index latest-known-state table
// reconciled from the observation stream. Intermediate snapshots coalesce;
// last write wins per index, with no cross-neuron ordering guarantee.
//
// A View belongs to a single consumer goroutine and is drained at that
// consumer's own cadence.
type View struct {
	latest []neuron.State
	known  []bool
	spikes uint64
}

// NewView creates a view over a population of n neurons.
func NewView(n int) *View {
	return &View{
		latest: make([]neuron.State, n),
		known:  make([]bool, n),
	}
}

// Drain consumes every snapshot currently buffered on obs without blocking
// and returns how many were applied.
func (v *View) Drain(obs <-chan neuron.State) int {
	count := 0
	for {
		select {
		case s, ok := <-obs:
			if !ok {
				return count
			}
			v.apply(s)
			count++
		default:
			return count
		}
	}
}

func (v *View) apply(s neuron.State) {
	if s.Firing {
		v.spikes++
	}
	v.latest[s.Index] = s
	v.known[s.Index] = true
}

// Latest returns the last known state for neuron i, if any snapshot for it
// has been observed.
func (v *View) Latest(i int) (neuron.State, bool) {
	if i < 0 || i >= len(v.latest) {
		return neuron.State{}, false
	}
	return v.latest[i], v.known[i]
}

// Spikes returns the cumulative number of firing snapshots observed.
func (v *View) Spikes() uint64 {
	return v.spikes
}

// Size returns the population size the view covers.
func (v *View) Size() int {
	return len(v.latest)
}
