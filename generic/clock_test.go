package generic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/warp/airline-engine/generic"
)

func TestClock_ListenersRunOncePerTickInOrder(t *testing.T) {
	// GIVEN: A clock with two listeners
	clock := generic.NewClock(100)
	var calls []string
	clock.Subscribe(func(_ context.Context, now generic.Tick) error {
		calls = append(calls, "a")
		return nil
	})
	clock.Subscribe(func(_ context.Context, now generic.Tick) error {
		calls = append(calls, "b")
		return nil
	})

	// WHEN: Advancing three ticks
	now, err := clock.AdvanceBy(context.Background(), 3)

	// THEN: Each listener ran once per tick, in subscription order
	if err != nil {
		t.Fatalf("AdvanceBy: %v", err)
	}
	if now != 103 || clock.Now() != 103 {
		t.Errorf("now = %d, want 103", now)
	}
	want := []string{"a", "b", "a", "b", "a", "b"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestClock_CancelStopsNotifications(t *testing.T) {
	clock := generic.NewClock(0)
	count := 0
	cancel := clock.Subscribe(func(context.Context, generic.Tick) error {
		count++
		return nil
	})

	clock.Advance(context.Background())
	cancel()
	clock.Advance(context.Background())

	if count != 1 {
		t.Errorf("listener ran %d times, want 1", count)
	}
}

func TestClock_ListenerErrorDoesNotStopOthers(t *testing.T) {
	clock := generic.NewClock(0)
	boom := errors.New("boom")
	ran := false
	clock.Subscribe(func(context.Context, generic.Tick) error { return boom })
	clock.Subscribe(func(context.Context, generic.Tick) error {
		ran = true
		return nil
	})

	_, err := clock.Advance(context.Background())

	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if !ran {
		t.Error("second listener should still run")
	}
}
