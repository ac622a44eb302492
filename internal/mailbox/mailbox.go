// Package mailbox provides an unbounded FIFO channel used as the inbox
// primitive for neuron actors and for the observation fan-in stream.
//
// A regular Go channel applies backpressure once its buffer fills; the
// simulation instead requires that a stalled or slow receiver can never
// block a sender. Mailbox trades bounded memory for that guarantee: Send
// appends to an internal queue and always returns promptly, and a pump
// goroutine feeds the receive channel as the receiver drains it.
package mailbox

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send after the mailbox has been closed.
var ErrClosed = errors.New("mailbox: send on closed mailbox")

// Mailbox is an unbounded FIFO channel of T. The zero value is not usable;
// create one with New.
type Mailbox[T any] struct {
	mu     sync.Mutex
	in     chan T
	out    chan T
	closed bool
}

// New creates a mailbox and starts its pump goroutine. The pump exits when
// the mailbox is closed and its queue has drained, closing the receive
// channel behind it.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{
		in:  make(chan T),
		out: make(chan T),
	}
	go m.pump()
	return m
}

// Send enqueues v. It never blocks on the receiver; the only wait is the
// handoff to the pump goroutine, which is always ready to accept while the
// mailbox is open. Returns ErrClosed after Close.
func (m *Mailbox[T]) Send(v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.in <- v
	return nil
}

// C returns the receive channel. It yields values in send order and is
// closed once the mailbox is closed and fully drained.
func (m *Mailbox[T]) C() <-chan T {
	return m.out
}

// Close marks the mailbox closed. Values already sent remain receivable;
// subsequent Sends return ErrClosed. Close is idempotent.
//
// The pump goroutine exits only after the queue has drained: if values are
// still buffered at Close, the owner must keep receiving from C until it is
// closed, or the pump stays parked on its send.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.in)
}

// pump shuttles values from in to out through an elastic queue, so that
// senders are decoupled from the receiver's pace.
func (m *Mailbox[T]) pump() {
	var queue []T
	in := m.in

	for in != nil || len(queue) > 0 {
		var (
			out  chan T
			next T
		)
		if len(queue) > 0 {
			out = m.out
			next = queue[0]
		}

		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, v)
		case out <- next:
			queue = queue[1:]
		}
	}
	close(m.out)
}
