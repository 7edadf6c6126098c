package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/apkforge/apkforge/internal/adb"
	"github.com/apkforge/apkforge/internal/config"
	"github.com/apkforge/apkforge/internal/logging"
	"github.com/apkforge/apkforge/internal/patcher"
	"github.com/apkforge/apkforge/internal/prompt"
	"github.com/apkforge/apkforge/internal/provision"
)

// setup loads config, applies it, and returns a context cancelled on
// SIGINT/SIGTERM so every blocking step below is interruptible.
func setup() (*config.Config, context.Context, context.CancelFunc) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	for _, err := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "Config warning: %v\n", err)
	}

	logging.Init(cfg.LogFormat, cfg.LogLevel, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return cfg, ctx, cancel
}

func runWorkflow() {
	cfg, ctx, cancel := setup()
	defer cancel()

	fmt.Printf("APKForge v%s\n", version)

	toolchain, javaPath := provisionAll(ctx, cfg)

	ask := prompt.New(nil, nil)
	baseAPK, err := ask.FilePath("Base package", ".apk")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Aborted: %v\n", err)
		os.Exit(1)
	}

	tempDir, err := os.MkdirTemp("", "apkforge-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tempDir)

	opts := patcher.Options{
		BaseAPK:      baseAPK,
		OutputAPK:    outputPath(baseAPK),
		TempDir:      tempDir,
		Toolchain:    toolchain,
		KeystorePath: cfg.KeystorePath,
	}

	// Discovery: ask the patcher what it can do to this package.
	execTimeout := time.Duration(cfg.ExecTimeoutSeconds) * time.Second
	discoveryCtx, discoveryDone := context.WithTimeout(ctx, execTimeout)
	patches, err := patcher.ListPatches(discoveryCtx, javaPath, opts)
	discoveryDone()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Patch discovery failed: %v\n", err)
		os.Exit(1)
	}

	opts.Exclude, err = choosePatchExclusions(os.Stdout, ask, patches)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Aborted: %v\n", err)
		os.Exit(1)
	}

	opts.DeploySerial = chooseDeployTarget(ctx, cfg, ask)

	run, err := patcher.Apply(ctx, javaPath, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start the patcher: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Patching...")
	code := run.Stream(func(line string) {
		fmt.Println(line)
	})

	// The exit code is the patcher's verdict, not ours: report it and let
	// the operator judge.
	fmt.Printf("\nPatcher exited with code %d\n", code)
	fmt.Printf("Output package: %s\n", opts.OutputAPK)
}

// provisionAll makes the toolchain and a Java runtime available, aborting on
// any setup failure.
func provisionAll(ctx context.Context, cfg *config.Config) (patcher.Toolchain, string) {
	p := provision.New(cfg.ReleaseHost, cfg.DataDir)

	toolchain, err := p.EnsureToolchain(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Toolchain setup failed: %v\n", err)
		os.Exit(1)
	}

	javaPath, err := provision.LocateJava(ctx, cfg, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Java runtime setup failed: %v\n", err)
		os.Exit(1)
	}

	return toolchain, javaPath
}

// choosePatchExclusions prints the catalog on out and asks which patches to
// skip. An empty catalog asks nothing and excludes nothing.
func choosePatchExclusions(out io.Writer, ask *prompt.Reader, patches []patcher.Patch) ([]string, error) {
	if len(patches) == 0 {
		fmt.Fprintln(out, "The patcher reported no applicable patches.")
		return nil, nil
	}

	fmt.Fprintf(out, "\n%d patches available:\n", len(patches))
	names := make([]string, 0, len(patches))
	for _, p := range patches {
		fmt.Fprintf(out, "  %-28s %s\n", p.Name, p.Description)
		names = append(names, p.Name)
	}
	fmt.Fprintln(out)

	return ask.SelectNames("Patches to exclude", names)
}

// chooseDeployTarget asks whether to deploy and, if so, waits for an
// authorized device. Declining, or the wait timing out, means no deploy.
func chooseDeployTarget(ctx context.Context, cfg *config.Config, ask *prompt.Reader) string {
	deploy, err := ask.Confirm("Deploy to a connected device when done", false)
	if err != nil || !deploy {
		return ""
	}

	fmt.Println("Waiting for an authorized device (plug one in and accept the USB debugging prompt)...")

	client := adb.NewClient(cfg.BridgePath, time.Duration(cfg.ExecTimeoutSeconds)*time.Second)
	waitCtx, done := context.WithTimeout(ctx, time.Duration(cfg.DeviceWaitTimeoutSeconds)*time.Second)
	defer done()

	serial, err := adb.WaitForDevice(waitCtx, client.ListDevices,
		time.Duration(cfg.PollIntervalSeconds)*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "No device: %v -- continuing without deploy\n", err)
		return ""
	}
	return serial
}

func listPatches(baseAPK string) {
	cfg, ctx, cancel := setup()
	defer cancel()

	toolchain, javaPath := provisionAll(ctx, cfg)

	tempDir, err := os.MkdirTemp("", "apkforge-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tempDir)

	discoveryCtx, done := context.WithTimeout(ctx, time.Duration(cfg.ExecTimeoutSeconds)*time.Second)
	defer done()

	patches, err := patcher.ListPatches(discoveryCtx, javaPath, patcher.Options{
		BaseAPK:   baseAPK,
		TempDir:   tempDir,
		Toolchain: toolchain,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Patch discovery failed: %v\n", err)
		os.Exit(1)
	}

	for _, p := range patches {
		fmt.Printf("%-28s %s\n", p.Name, p.Description)
	}
}

func listDevices() {
	cfg, ctx, cancel := setup()
	defer cancel()

	client := adb.NewClient(cfg.BridgePath, time.Duration(cfg.ExecTimeoutSeconds)*time.Second)
	devices, err := client.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Device listing failed: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("No devices attached.")
		return
	}
	for _, d := range devices {
		fmt.Printf("%-24s %s\n", d.Serial, d.State)
	}
}

// outputPath derives the patched package path next to the input.
func outputPath(baseAPK string) string {
	ext := filepath.Ext(baseAPK)
	return strings.TrimSuffix(baseAPK, ext) + "-patched" + ext
}
