package adb

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedLister returns each scripted poll result in order, repeating the
// last one once the script is exhausted.
func scriptedLister(polls [][]Device, count *int) Lister {
	return func(ctx context.Context) ([]Device, error) {
		i := *count
		*count++
		if i >= len(polls) {
			i = len(polls) - 1
		}
		return polls[i], nil
	}
}

func TestWaitForDeviceFirstMatchOnThirdPoll(t *testing.T) {
	polls := [][]Device{
		{},
		{{Serial: "A", State: StateOffline}},
		{{Serial: "A", State: StateOnline}, {Serial: "B", State: StateOnline}},
	}

	count := 0
	serial, err := WaitForDevice(context.Background(), scriptedLister(polls, &count), time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForDevice failed: %v", err)
	}
	if serial != "A" {
		t.Errorf("serial = %q, want %q (first in bridge order)", serial, "A")
	}
	if count != 3 {
		t.Errorf("returned after %d polls, want 3", count)
	}
}

func TestWaitForDeviceIgnoresUnauthorizedAndOffline(t *testing.T) {
	polls := [][]Device{
		{{Serial: "A", State: StateUnauthorized}, {Serial: "B", State: StateOffline}},
	}

	count := 0
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := WaitForDevice(ctx, scriptedLister(polls, &count), time.Millisecond)
	if err == nil {
		t.Fatal("wait must never be satisfied by unauthorized or offline devices")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if count < 2 {
		t.Errorf("expected repeated polling, got %d polls", count)
	}
}

func TestWaitForDeviceCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	lister := func(ctx context.Context) ([]Device, error) {
		cancel()
		return nil, nil
	}

	_, err := WaitForDevice(ctx, lister, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForDeviceListerError(t *testing.T) {
	boom := errors.New("bridge missing")
	lister := func(ctx context.Context) ([]Device, error) {
		return nil, boom
	}

	_, err := WaitForDevice(context.Background(), lister, time.Millisecond)
	if !errors.Is(err, boom) {
		t.Fatalf("expected lister error to propagate, got %v", err)
	}
}
