package reservations

import (
	"context"
	"sync"
	"time"

	"ridepass/pkg/logger"
)

// Sweeper owns the periodic reclamation of lapsed holds. It is started once
// at boot, runs on a fixed interval, and is stopped explicitly on shutdown.
// Every expiry it performs goes through the same conditional transition the
// confirm path uses, so a racing confirm can never be overwritten.
type Sweeper struct {
	service Service
	config  *SweeperConfig
	done    chan struct{}

	mu    sync.Mutex
	state string
}

// SweeperConfig contains configuration for the expiration sweeper
type SweeperConfig struct {
	Interval  time.Duration
	BatchSize int
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() *SweeperConfig {
	return &SweeperConfig{
		Interval:  time.Minute,
		BatchSize: 100,
	}
}

// NewSweeper creates a new expiration sweeper
func NewSweeper(service Service, config *SweeperConfig) *Sweeper {
	if config == nil {
		config = DefaultSweeperConfig()
	}

	return &Sweeper{
		service: service,
		config:  config,
		done:    make(chan struct{}),
		state:   "idle",
	}
}

// Start launches the background sweep loop
func (sw *Sweeper) Start(ctx context.Context) {
	logger.GetDefault().Info("Starting reservation expiration sweeper",
		"interval", sw.config.Interval.String(),
		"batch_size", sw.config.BatchSize)

	sw.setState("running")
	go sw.run(ctx)
}

// Stop stops the sweep loop
func (sw *Sweeper) Stop() {
	logger.GetDefault().Info("Stopping reservation expiration sweeper")
	sw.setState("stopped")
	close(sw.done)
}

func (sw *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(sw.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.sweep(ctx)
		case <-sw.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	expired, err := sw.service.SweepExpired(ctx, sw.config.BatchSize)
	if err != nil {
		logger.GetDefault().Error("Sweep pass failed", "error", err.Error())
		return
	}

	if expired > 0 {
		logger.GetDefault().Info("Reclaimed expired reservations", "count", expired)
	}
}

func (sw *Sweeper) setState(state string) {
	sw.mu.Lock()
	sw.state = state
	sw.mu.Unlock()
}

// Status reports the sweeper's configuration and lifecycle state for health
// endpoints.
func (sw *Sweeper) Status() map[string]interface{} {
	sw.mu.Lock()
	state := sw.state
	sw.mu.Unlock()

	return map[string]interface{}{
		"interval":   sw.config.Interval.String(),
		"batch_size": sw.config.BatchSize,
		"status":     state,
	}
}
