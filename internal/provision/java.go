package provision

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/apkforge/apkforge/internal/config"
)

// LocateJava resolves a Java executable in order: explicit config path,
// JAVA_HOME, PATH, then a managed runtime under the data dir. When none is
// found, the managed runtime is installed once and the search re-runs — a
// plain retry that returns a result rather than mutating lookup state.
func LocateJava(ctx context.Context, cfg *config.Config, p *Provisioner) (string, error) {
	runtimeDir := cfg.JavaRuntimeDir()

	if path, ok := findJava(cfg.JavaPath, runtimeDir); ok {
		return path, nil
	}

	log.Info("no java runtime found, installing a managed one", "dir", runtimeDir)
	if err := installRuntime(ctx, p, cfg.JavaRuntime, runtimeDir); err != nil {
		return "", fmt.Errorf("installing java runtime: %w", err)
	}

	if path, ok := findJava(cfg.JavaPath, runtimeDir); ok {
		return path, nil
	}
	return "", fmt.Errorf("java runtime installed under %s but no java executable found in it", runtimeDir)
}

// findJava performs one pass over the candidate locations.
func findJava(explicit, runtimeDir string) (string, bool) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, true
		}
	}

	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", javaExecutable())
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	if path, err := exec.LookPath("java"); err == nil {
		return path, true
	}

	return managedJava(runtimeDir)
}

// managedJava searches an unpacked runtime dir for bin/java. Runtime
// archives nest everything under a versioned top-level directory, so this
// walks rather than assuming a layout.
func managedJava(dir string) (string, bool) {
	want := javaExecutable()
	var found string

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return fs.SkipAll
		}
		if !d.IsDir() && d.Name() == want && filepath.Base(filepath.Dir(path)) == "bin" {
			found = path
			return fs.SkipAll
		}
		return nil
	})

	return found, found != ""
}

func javaExecutable() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

// installRuntime downloads the runtime archive for the host platform and
// unpacks it under runtimeDir. The archive itself is cached in the data dir
// under its release asset name.
func installRuntime(ctx context.Context, p *Provisioner, spec config.Artifact, runtimeDir string) error {
	pattern, err := expandPlatformPattern(spec.AssetPattern)
	if err != nil {
		return err
	}

	rel, err := p.FetchRelease(ctx, spec.Repo, spec.Tag)
	if err != nil {
		return err
	}

	asset, err := SelectAsset(rel.Assets, pattern)
	if err != nil {
		return fmt.Errorf("%s release %s: %w", spec.Repo, rel.TagName, err)
	}

	archive := filepath.Join(p.dataDir, asset.Name)
	if _, statErr := os.Stat(archive); statErr != nil {
		log.Info("downloading java runtime", "asset", asset.Name)
		if err := p.DownloadAsset(ctx, asset, archive); err != nil {
			return err
		}
	}

	return extractArchive(archive, runtimeDir)
}

// expandPlatformPattern substitutes {os} and {arch} with the names release
// hosts use for the current platform. An unmapped platform is a fatal setup
// error, not something to guess around.
func expandPlatformPattern(pattern string) (string, error) {
	goos, goarch := config.Platform()

	osName, ok := map[string]string{
		"linux":   "linux",
		"darwin":  "mac",
		"windows": "windows",
	}[goos]
	if !ok {
		return "", fmt.Errorf("unsupported host os %q for the java runtime", goos)
	}

	archName, ok := map[string]string{
		"amd64": "x64",
		"arm64": "aarch64",
	}[goarch]
	if !ok {
		return "", fmt.Errorf("unsupported host architecture %q for the java runtime", goarch)
	}

	return strings.NewReplacer("{os}", osName, "{arch}", archName).Replace(pattern), nil
}
