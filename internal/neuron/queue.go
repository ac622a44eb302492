package neuron

import (
	"sort"
	"time"
)

// delivery is one scheduled outgoing action potential: the axon it travels
// down and the wall-clock instant it arrives. Deliveries are created at
// fire time and consumed by the same actor that created them.
type delivery struct {
	arrival time.Time
	axon    int
}

// deliveryQueue keeps pending deliveries in strictly ascending arrival
// order. Ties keep insertion order. The queue is private to one actor and
// is never compared across actors.
type deliveryQueue []delivery

// push inserts d in arrival order, after any equal arrivals.
func (q *deliveryQueue) push(d delivery) {
	i := sort.Search(len(*q), func(k int) bool {
		return (*q)[k].arrival.After(d.arrival)
	})
	*q = append(*q, delivery{})
	copy((*q)[i+1:], (*q)[i:])
	(*q)[i] = d
}

// pop removes and returns the earliest pending delivery.
func (q *deliveryQueue) pop() delivery {
	d := (*q)[0]
	*q = (*q)[1:]
	return d
}

// nextArrival returns the earliest pending arrival time, if any.
func (q deliveryQueue) nextArrival() (time.Time, bool) {
	if len(q) == 0 {
		return time.Time{}, false
	}
	return q[0].arrival, true
}
