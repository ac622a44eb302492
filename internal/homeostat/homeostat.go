// Package homeostat implements a closed-loop controller that holds overall
// population firing activity inside a target band. It samples the
// observation stream on a fixed interval and broadcasts background-bias
// updates through the normal control channel; it never touches actor state
// directly.
package homeostat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nvandessel/spikenet/internal/config"
	"github.com/nvandessel/spikenet/internal/network"
	"github.com/nvandessel/spikenet/internal/neuron"
)

// Broadcaster is the slice of the network the controller drives.
type Broadcaster interface {
	Broadcast(mean, std float64)
	Size() int
}

// Controller adjusts the population background bias to keep the mean
// firing rate (spikes per neuron per second) inside the configured band.
// Bias may be read from any goroutine while Run is active.
type Controller struct {
	cfg config.HomeostatConfig
	net Broadcaster
	log *slog.Logger

	mu   sync.Mutex
	bias float64
}

// New creates a controller. The zero bias is broadcast on the first tick.
func New(cfg config.HomeostatConfig, net Broadcaster, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{cfg: cfg, net: net, log: log}
}

// Bias returns the current bias mean.
func (c *Controller) Bias() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bias
}

func (c *Controller) setBias(b float64) {
	c.mu.Lock()
	c.bias = b
	c.mu.Unlock()
}

// Run samples obs on the configured interval until ctx is cancelled. Each
// tick it measures the population firing rate over the elapsed interval,
// adjusts the bias, and broadcasts it.
func (c *Controller) Run(ctx context.Context, obs <-chan neuron.State) {
	view := network.NewView(c.net.Size())
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	last := time.Now()
	lastSpikes := view.Spikes()

	bias := c.Bias()
	c.net.Broadcast(bias, c.cfg.BiasStd)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			view.Drain(obs)

			now := time.Now()
			elapsed := now.Sub(last).Seconds()
			if elapsed <= 0 {
				continue
			}
			spikes := view.Spikes()
			rate := float64(spikes-lastSpikes) / float64(c.net.Size()) / elapsed
			last, lastSpikes = now, spikes

			next := c.adjust(bias, rate)
			if next != bias {
				c.log.Debug("homeostat adjusting bias",
					"rate", rate, "bias", next)
				bias = next
				c.setBias(next)
				c.net.Broadcast(bias, c.cfg.BiasStd)
			}
		}
	}
}

// adjust returns the next bias mean for the measured rate: one step up
// below the band, one step down above it, unchanged inside it, clamped to
// the configured limit.
func (c *Controller) adjust(bias, rate float64) float64 {
	next := bias
	switch {
	case rate < c.cfg.TargetRateLow:
		next += c.cfg.BiasStep
	case rate > c.cfg.TargetRateHigh:
		next -= c.cfg.BiasStep
	}
	if next > c.cfg.BiasLimit {
		next = c.cfg.BiasLimit
	}
	if next < -c.cfg.BiasLimit {
		next = -c.cfg.BiasLimit
	}
	return next
}
