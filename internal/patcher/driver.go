package patcher

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/apkforge/apkforge/internal/logging"
)

var log = logging.L("patcher")

// ListPatches runs a discovery-mode invocation to completion, bounded by
// ctx, and parses its combined output into the patch catalog. A non-zero
// exit is not an error as long as the process produced output; only failing
// to start the subprocess is fatal.
func ListPatches(ctx context.Context, javaPath string, opts Options) ([]Patch, error) {
	inv := BuildDiscovery(javaPath, opts)
	log.Debug("running discovery", "args", inv.Args())

	cmd := inv.command(ctx)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("patch discovery timed out: %w", ctx.Err())
		}
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("patch discovery: %w", err)
		}
		log.Debug("discovery exited non-zero, parsing output anyway", "error", err)
	}

	return ParseCatalog(combined.String()), nil
}

// Run is a started apply-mode subprocess. It owns the process handle and
// the merged stdout+stderr pipe; both are single-use and must not be shared.
type Run struct {
	cmd    *exec.Cmd
	output io.ReadCloser
}

// Apply builds an apply-mode invocation, starts the subprocess and returns
// immediately with a handle to the running process. Completion is observed
// through Stream.
func Apply(ctx context.Context, javaPath string, opts Options) (*Run, error) {
	inv := BuildApply(javaPath, opts)
	log.Debug("starting apply", "args", inv.Args())

	cmd := inv.command(ctx)

	// Both streams feed one pipe so progress text is forwarded regardless
	// of which channel the patcher writes it to.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("apply pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("starting patcher: %w", err)
	}
	// The child holds its own copy of the write end; closing ours makes the
	// read end see EOF when the child exits.
	pw.Close()

	return &Run{cmd: cmd, output: pr}, nil
}

// Stream forwards every output line to sink as it becomes available,
// blocks until the process has exited, and returns the raw exit code.
// The exit code is reported as-is: judging success is the operator's call,
// not ours.
func (r *Run) Stream(sink func(line string)) int {
	forwardLines(r.output, sink)
	r.output.Close()

	err := r.cmd.Wait()
	code := r.cmd.ProcessState.ExitCode()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			log.Warn("patcher wait failed", "error", err)
		}
	}
	log.Info("patcher exited", "exitCode", code)
	return code
}

func forwardLines(r io.Reader, sink func(line string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sink(scanner.Text())
	}
}
