package patcher

import (
	"context"
	"os/exec"
	"path/filepath"
)

// Invocation is a configured-but-unstarted patcher subprocess. Construction
// and start are split so discovery and apply share the argument shape but
// differ in when and how output is consumed. An Invocation is single-use.
type Invocation struct {
	path string
	args []string
}

// BuildApply constructs an apply-mode invocation: one -e flag per excluded
// patch, plus the deploy and keystore flags when set.
func BuildApply(javaPath string, opts Options) *Invocation {
	extra := make([]string, 0, 2*len(opts.Exclude)+4)
	for _, name := range opts.Exclude {
		extra = append(extra, "-e", name)
	}
	if opts.DeploySerial != "" {
		extra = append(extra, "--deploy-on", opts.DeploySerial)
	}
	if opts.KeystorePath != "" {
		extra = append(extra, "--keystore", opts.KeystorePath)
	}
	return build(javaPath, opts, extra)
}

// BuildDiscovery constructs a discovery-mode invocation: --list plus a
// disposable output path, since the tool demands one even when only
// listing.
func BuildDiscovery(javaPath string, opts Options) *Invocation {
	opts.OutputAPK = filepath.Join(opts.TempDir, "discovery-unused.apk")
	return build(javaPath, opts, []string{"--list"})
}

// build produces the fixed argument shape shared by both modes, with the
// mode-specific extras appended verbatim at the end.
func build(javaPath string, opts Options, extra []string) *Invocation {
	args := []string{
		"--show-version",
		"-jar", opts.Toolchain.CLI,
		"--apk", opts.BaseAPK,
		"--out", opts.OutputAPK,
		"--bundles", opts.Toolchain.Patches,
		"--merge", opts.Toolchain.Integrations,
		"--temp-dir", opts.TempDir,
		"--clean",
	}
	args = append(args, extra...)

	return &Invocation{path: javaPath, args: args}
}

// Args exposes the argument list for logging.
func (inv *Invocation) Args() []string {
	return inv.args
}

// command materializes the subprocess bound to ctx. Called exactly once,
// by whichever run method starts the invocation.
func (inv *Invocation) command(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, inv.path, inv.args...)
}
