package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var repoSlugRegex = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config for invalid values and returns all errors found.
// Dangerous zero-values are clamped to safe defaults; other findings are
// returned for the caller to report.
func (c *Config) Validate() []error {
	var errs []error

	if c.ReleaseHost != "" {
		u, err := url.Parse(c.ReleaseHost)
		if err != nil {
			errs = append(errs, fmt.Errorf("release_host %q is not a valid URL: %w", c.ReleaseHost, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("release_host scheme must be http or https, got %q", u.Scheme))
		}
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}

	for _, a := range []struct {
		key  string
		spec Artifact
	}{
		{"cli", c.CLI},
		{"integrations", c.Integrations},
		{"patches", c.Patches},
		{"java_runtime", c.JavaRuntime},
	} {
		if a.spec.Repo != "" && !repoSlugRegex.MatchString(a.spec.Repo) {
			errs = append(errs, fmt.Errorf("%s.repo %q is not an owner/name slug", a.key, a.spec.Repo))
		}
		if a.spec.AssetPattern != "" {
			pattern := strings.NewReplacer("{os}", "x", "{arch}", "x").Replace(a.spec.AssetPattern)
			if _, err := regexp.Compile(pattern); err != nil {
				errs = append(errs, fmt.Errorf("%s.asset_pattern: %w", a.key, err))
			}
		}
	}

	// Clamp intervals so the wait loop and exec deadlines stay sane.
	if c.PollIntervalSeconds < 1 {
		c.PollIntervalSeconds = 2
	}
	if c.DeviceWaitTimeoutSeconds < c.PollIntervalSeconds {
		c.DeviceWaitTimeoutSeconds = 300
	}
	if c.ExecTimeoutSeconds < 1 {
		c.ExecTimeoutSeconds = 120
	}

	return errs
}
