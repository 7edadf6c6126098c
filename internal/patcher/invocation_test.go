package patcher

import (
	"slices"
	"strings"
	"testing"
)

func testOptions() Options {
	return Options{
		BaseAPK:   "/in/base.apk",
		OutputAPK: "/out/patched.apk",
		TempDir:   "/tmp/work",
		Toolchain: Toolchain{
			CLI:          "/data/cli.jar",
			Integrations: "/data/integrations.apk",
			Patches:      "/data/patches.jar",
		},
	}
}

// hasFlagValue reports whether args contains flag immediately followed by value.
func hasFlagValue(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestBuildDiscoveryShape(t *testing.T) {
	inv := BuildDiscovery("/usr/bin/java", testOptions())
	args := inv.Args()

	if !slices.Contains(args, "--list") {
		t.Error("discovery invocation must include --list")
	}
	if !slices.Contains(args, "--show-version") || !slices.Contains(args, "--clean") {
		t.Error("fixed flags missing")
	}
	if !hasFlagValue(args, "-jar", "/data/cli.jar") {
		t.Errorf("missing -jar, args: %v", args)
	}
	if !hasFlagValue(args, "--bundles", "/data/patches.jar") {
		t.Errorf("missing --bundles, args: %v", args)
	}
	if !hasFlagValue(args, "--merge", "/data/integrations.apk") {
		t.Errorf("missing --merge, args: %v", args)
	}

	// The tool insists on an output path even when only listing, so a
	// disposable one under the temp dir is supplied.
	out := ""
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--out" {
			out = args[i+1]
		}
	}
	if out == "" {
		t.Fatal("discovery invocation has no --out")
	}
	if !strings.HasPrefix(out, "/tmp/work") {
		t.Errorf("discovery --out %q should live under the temp dir", out)
	}
}

func TestBuildApplyExclusions(t *testing.T) {
	opts := testOptions()
	opts.Exclude = []string{"a", "b"}

	args := BuildApply("/usr/bin/java", opts).Args()

	if !hasFlagValue(args, "-e", "a") || !hasFlagValue(args, "-e", "b") {
		t.Errorf("exclusion flags missing, args: %v", args)
	}
	if slices.Contains(args, "--list") {
		t.Error("apply invocation must not include --list")
	}
	if !hasFlagValue(args, "--out", "/out/patched.apk") {
		t.Errorf("apply must keep the real output path, args: %v", args)
	}
}

func TestBuildApplyOptionalFlagsOmitted(t *testing.T) {
	args := BuildApply("/usr/bin/java", testOptions()).Args()

	if slices.Contains(args, "--deploy-on") {
		t.Error("no deploy target given, --deploy-on must be absent")
	}
	if slices.Contains(args, "--keystore") {
		t.Error("no keystore given, --keystore must be absent")
	}
	if slices.Contains(args, "-e") {
		t.Error("no exclusions given, -e must be absent")
	}
}

func TestBuildApplyOptionalFlagsPresent(t *testing.T) {
	opts := testOptions()
	opts.DeploySerial = "emulator-5554"
	opts.KeystorePath = "/keys/release.keystore"

	args := BuildApply("/usr/bin/java", opts).Args()

	if !hasFlagValue(args, "--deploy-on", "emulator-5554") {
		t.Errorf("missing --deploy-on, args: %v", args)
	}
	if !hasFlagValue(args, "--keystore", "/keys/release.keystore") {
		t.Errorf("missing --keystore, args: %v", args)
	}
}

func TestModeExtrasComeLast(t *testing.T) {
	opts := testOptions()
	opts.Exclude = []string{"x"}

	args := BuildApply("/usr/bin/java", opts).Args()

	cleanIdx := slices.Index(args, "--clean")
	excludeIdx := slices.Index(args, "-e")
	if cleanIdx == -1 || excludeIdx == -1 || excludeIdx < cleanIdx {
		t.Errorf("mode extras must follow the fixed shape, args: %v", args)
	}
}
