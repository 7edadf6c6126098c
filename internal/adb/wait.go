package adb

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is how often the wait loop re-queries the bridge.
const DefaultPollInterval = 2 * time.Second

// Lister is the poll dependency of WaitForDevice. *Client.ListDevices
// satisfies it; tests script it.
type Lister func(ctx context.Context) ([]Device, error)

// WaitForDevice polls list on the given interval until a device in the
// online state appears, and returns that device's serial. When several are
// online the first in bridge order wins. Unauthorized and offline devices
// never satisfy the wait; an unauthorized sighting is surfaced as a hint
// since the fix is a tap on the device, not a replug.
//
// The wait is bounded by ctx: cancellation or deadline expiry returns the
// context error instead of blocking forever.
func WaitForDevice(ctx context.Context, list Lister, interval time.Duration) (string, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	hinted := map[string]bool{}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		devices, err := list(ctx)
		if err != nil {
			return "", fmt.Errorf("waiting for device: %w", err)
		}

		for _, d := range devices {
			if d.State == StateOnline {
				log.Info("device connected", "serial", d.Serial)
				return d.Serial, nil
			}
			if d.State == StateUnauthorized && !hinted[d.Serial] {
				hinted[d.Serial] = true
				log.Warn("device present but unauthorized, accept the USB debugging prompt on it", "serial", d.Serial)
			}
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for device: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
