package patcher

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeJava writes an executable script that ignores its arguments and runs
// the given shell body, standing in for the java binary.
func fakeJava(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake java script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "java")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestForwardLines(t *testing.T) {
	var got []string
	forwardLines(strings.NewReader("one\ntwo\nthree"), func(line string) {
		got = append(got, line)
	})

	if len(got) != 3 || got[0] != "one" || got[2] != "three" {
		t.Fatalf("unexpected lines: %v", got)
	}
}

func TestListPatchesParsesDiscoveryOutput(t *testing.T) {
	java := fakeJava(t, `echo "INFO: ad-removal: Removes all ads."
echo "INFO: gms-core: Adds GMS core support (v2)." 1>&2`)

	opts := testOptions()
	opts.TempDir = t.TempDir()

	patches, err := ListPatches(context.Background(), java, opts)
	if err != nil {
		t.Fatalf("ListPatches failed: %v", err)
	}
	if len(patches) != 2 {
		t.Fatalf("expected 2 patches from merged output, got %d: %v", len(patches), patches)
	}
}

func TestListPatchesToleratesNonZeroExit(t *testing.T) {
	java := fakeJava(t, `echo "INFO: still-here: Parsed despite exit code."
exit 1`)

	opts := testOptions()
	opts.TempDir = t.TempDir()

	patches, err := ListPatches(context.Background(), java, opts)
	if err != nil {
		t.Fatalf("non-zero exit with output must not fail discovery: %v", err)
	}
	if len(patches) != 1 || patches[0].Name != "still-here" {
		t.Fatalf("unexpected patches: %v", patches)
	}
}

func TestListPatchesMissingExecutable(t *testing.T) {
	opts := testOptions()
	opts.TempDir = t.TempDir()

	_, err := ListPatches(context.Background(), filepath.Join(t.TempDir(), "no-such-java"), opts)
	if err == nil {
		t.Fatal("expected error when the patcher cannot be started")
	}
}

func TestListPatchesTimeout(t *testing.T) {
	java := fakeJava(t, "sleep 30")

	opts := testOptions()
	opts.TempDir = t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := ListPatches(ctx, java, opts)
	if err == nil {
		t.Fatal("expected timeout error from a hung patcher")
	}
}

func TestApplyStreamsMergedOutputAndReportsExitCode(t *testing.T) {
	java := fakeJava(t, `echo "Patching resources"
echo "Signing failed, continuing" 1>&2
exit 3`)

	opts := testOptions()
	opts.TempDir = t.TempDir()

	run, err := Apply(context.Background(), java, opts)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	var lines []string
	code := run.Stream(func(line string) {
		lines = append(lines, line)
	})

	if code != 3 {
		t.Errorf("exit code = %d, want 3 (reported as-is, never classified)", code)
	}
	if len(lines) != 2 {
		t.Fatalf("expected both stdout and stderr lines, got %v", lines)
	}
	if lines[0] != "Patching resources" || lines[1] != "Signing failed, continuing" {
		t.Errorf("unexpected stream order: %v", lines)
	}
}

func TestApplyReturnsBeforeExit(t *testing.T) {
	java := fakeJava(t, `sleep 2
echo done`)

	opts := testOptions()
	opts.TempDir = t.TempDir()

	start := time.Now()
	run, err := Apply(context.Background(), java, opts)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Apply blocked for %v, must return before process exit", elapsed)
	}

	run.Stream(func(string) {})
}

func TestApplyMissingExecutable(t *testing.T) {
	opts := testOptions()
	opts.TempDir = t.TempDir()

	_, err := Apply(context.Background(), filepath.Join(t.TempDir(), "no-such-java"), opts)
	if err == nil {
		t.Fatal("expected error when the patcher cannot be started")
	}
}
