package shutdown

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestWithSignalsCancelsOnSIGTERM(t *testing.T) {
	ctx, cancel := WithSignals(context.Background())
	defer cancel()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
}

func TestGraceful(t *testing.T) {
	t.Run("stop finishes in time", func(t *testing.T) {
		var forced atomic.Bool
		ok := Graceful(time.Second, func() {}, func() { forced.Store(true) })
		if !ok || forced.Load() {
			t.Fatalf("got ok=%v forced=%v", ok, forced.Load())
		}
	})

	t.Run("stop hangs -> force", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		var forced atomic.Bool
		ok := Graceful(20*time.Millisecond, func() { <-release }, func() { forced.Store(true) })
		if ok || !forced.Load() {
			t.Fatalf("got ok=%v forced=%v", ok, forced.Load())
		}
	})
}
