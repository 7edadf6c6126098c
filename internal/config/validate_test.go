package config

import (
	"strings"
	"testing"
)

func TestValidateDefaultsClean(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("default config should validate, got %v", errs)
	}
}

func TestValidateBadReleaseHost(t *testing.T) {
	cfg := Default()
	cfg.ReleaseHost = "ftp://example.com"

	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "scheme") {
		t.Errorf("unexpected error: %v", errs[0])
	}
}

func TestValidateBadRepoSlug(t *testing.T) {
	cfg := Default()
	cfg.Patches.Repo = "not a slug"

	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "patches.repo") {
		t.Errorf("unexpected error: %v", errs[0])
	}
}

func TestValidateBadAssetPattern(t *testing.T) {
	cfg := Default()
	cfg.CLI.AssetPattern = "([unclosed"

	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestValidatePlaceholderPatternCompiles(t *testing.T) {
	cfg := Default()
	// The default runtime pattern contains {os}/{arch} placeholders, which are
	// not valid regexp until substituted. Validate must account for that.
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("placeholder pattern should validate, got %v", errs)
	}
}

func TestValidateClampsIntervals(t *testing.T) {
	cfg := Default()
	cfg.PollIntervalSeconds = 0
	cfg.DeviceWaitTimeoutSeconds = -5
	cfg.ExecTimeoutSeconds = 0

	cfg.Validate()

	if cfg.PollIntervalSeconds != 2 {
		t.Errorf("PollIntervalSeconds = %d, want 2", cfg.PollIntervalSeconds)
	}
	if cfg.DeviceWaitTimeoutSeconds != 300 {
		t.Errorf("DeviceWaitTimeoutSeconds = %d, want 300", cfg.DeviceWaitTimeoutSeconds)
	}
	if cfg.ExecTimeoutSeconds != 120 {
		t.Errorf("ExecTimeoutSeconds = %d, want 120", cfg.ExecTimeoutSeconds)
	}
}
