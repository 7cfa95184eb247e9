package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperStatusTracksLifecycle(t *testing.T) {
	h := newHarness(t)
	sw := NewSweeper(h.service, &SweeperConfig{Interval: time.Hour, BatchSize: 10})

	assert.Equal(t, "idle", sw.Status()["status"])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw.Start(ctx)
	assert.Equal(t, "running", sw.Status()["status"])

	sw.Stop()
	assert.Equal(t, "stopped", sw.Status()["status"])
}

func TestSweeperDefaultConfig(t *testing.T) {
	sw := NewSweeper(newHarness(t).service, nil)

	status := sw.Status()
	require.Equal(t, time.Minute.String(), status["interval"])
	assert.Equal(t, 100, status["batch_size"])
	assert.Equal(t, "idle", status["status"])
}
