package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerPauseControllerWaits(t *testing.T) {
	t.Parallel()

	pauser := &timerPauseController{}
	start := time.Now()
	pauser.Pause(context.Background(), 10*time.Millisecond)
	require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestTimerPauseControllerHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pauser := &timerPauseController{}
	start := time.Now()
	pauser.Pause(ctx, 5*time.Second)
	require.Less(t, time.Since(start), time.Second, "pause should exit immediately when context is done")
}

func TestTimerPauseControllerZeroDelayReturns(t *testing.T) {
	t.Parallel()

	pauser := &timerPauseController{}
	start := time.Now()
	pauser.Pause(context.Background(), 0)
	require.Less(t, time.Since(start), 50*time.Millisecond)
}
