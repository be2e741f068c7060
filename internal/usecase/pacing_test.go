package usecase

import (
	"context"
	"testing"
	"time"
)

func TestIntervalPacer(t *testing.T) {
	t.Run("first call passes immediately", func(t *testing.T) {
		pacer := NewIntervalPacer(time.Hour)
		start := time.Now()
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if time.Since(start) > 100*time.Millisecond {
			t.Error("first wait should not block")
		}
	})

	t.Run("second call waits out the interval", func(t *testing.T) {
		pacer := NewIntervalPacer(50 * time.Millisecond)
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		start := time.Now()
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if time.Since(start) < 40*time.Millisecond {
			t.Error("second wait should respect the interval")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		pacer := NewIntervalPacer(time.Hour)
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := pacer.Wait(ctx); err == nil {
			t.Error("expected context deadline error")
		}
	})
}
