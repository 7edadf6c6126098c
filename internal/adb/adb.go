// Package adb talks to the Android debug bridge executable. The bridge is
// treated as a black box: it is invoked as a subprocess and its text output
// is scraped. The matching rules live here so they can change with the
// bridge version without touching orchestration code.
package adb

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/apkforge/apkforge/internal/logging"
)

var log = logging.L("adb")

// State is the bridge-reported connection state of a device.
type State string

const (
	StateOnline       State = "online"
	StateUnauthorized State = "unauthorized"
	StateOffline      State = "offline"
)

// Device is one row of `adb devices` output. Records are a snapshot of the
// current query only and carry no identity across queries.
type Device struct {
	Serial string
	State  State
}

// ExecFunc runs the bridge executable and returns its combined
// stdout+stderr. Injected so output parsing is testable without a binary.
type ExecFunc func(ctx context.Context, name string, args ...string) (string, error)

// DefaultTimeout bounds a single bridge invocation. The bridge normally
// answers `devices` in well under a second; a hung server must not hang us.
const DefaultTimeout = 30 * time.Second

// deviceLine matches `<serial><whitespace><state>` rows. Everything else in
// the output (daemon banners, the "List of devices" header) is noise.
var deviceLine = regexp.MustCompile(`(?i)^(\S+)\s+(device|unauthorized|offline)\s*$`)

// Client queries the device bridge executable.
type Client struct {
	path    string
	timeout time.Duration
	exec    ExecFunc
}

// NewClient creates a Client for the bridge executable at path. A zero
// timeout means DefaultTimeout.
func NewClient(path string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		path:    path,
		timeout: timeout,
		exec:    runCombined,
	}
}

// ListDevices runs `<bridge> devices` and parses the tabular output into
// device records. Line order is preserved and duplicates are passed through.
// Lines that do not look like a device row are skipped silently.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.exec(ctx, c.path, "devices")
	if err != nil {
		// A non-zero exit with output still in hand is parseable; only a
		// failure to produce output at all is fatal.
		if out == "" {
			return nil, fmt.Errorf("device bridge %q: %w", c.path, err)
		}
		log.Debug("bridge exited non-zero, parsing output anyway", "error", err)
	}

	return ParseDevices(out), nil
}

// ParseDevices extracts device records from bridge output.
func ParseDevices(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		m := deviceLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		devices = append(devices, Device{
			Serial: m[1],
			State:  stateFromKeyword(m[2]),
		})
	}
	return devices
}

func stateFromKeyword(keyword string) State {
	switch strings.ToLower(keyword) {
	case "device":
		return StateOnline
	case "unauthorized":
		return StateUnauthorized
	default:
		return StateOffline
	}
}

// runCombined is the real ExecFunc: spawn, block until exit or ctx
// expiry, capture combined stdout+stderr.
func runCombined(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if ctx.Err() != nil {
		return string(out), fmt.Errorf("timed out: %w", ctx.Err())
	}
	return string(out), err
}
