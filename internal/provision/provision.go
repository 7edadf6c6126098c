// Package provision acquires the patcher toolchain and a Java runtime.
// Artifacts live at fixed paths under the data dir and are reused across
// runs when present; there is no staleness check, a present file wins.
package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/apkforge/apkforge/internal/config"
	"github.com/apkforge/apkforge/internal/logging"
	"github.com/apkforge/apkforge/internal/patcher"
)

var log = logging.L("provision")

// Release is the subset of release metadata the provisioner consumes.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Provisioner downloads release assets into the data dir.
type Provisioner struct {
	host    string // release host API base, e.g. https://api.github.com
	dataDir string
	client  *http.Client
}

// New creates a Provisioner rooted at dataDir.
func New(host, dataDir string) *Provisioner {
	return &Provisioner{
		host:    host,
		dataDir: dataDir,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// EnsureToolchain makes the three toolchain artifacts present under the
// data dir and returns their paths. Any failure here aborts the run; there
// is nothing to patch with half a toolchain.
func (p *Provisioner) EnsureToolchain(ctx context.Context, cfg *config.Config) (patcher.Toolchain, error) {
	cli, err := p.EnsureArtifact(ctx, cfg.CLI)
	if err != nil {
		return patcher.Toolchain{}, fmt.Errorf("patcher cli: %w", err)
	}
	integrations, err := p.EnsureArtifact(ctx, cfg.Integrations)
	if err != nil {
		return patcher.Toolchain{}, fmt.Errorf("integrations bundle: %w", err)
	}
	patches, err := p.EnsureArtifact(ctx, cfg.Patches)
	if err != nil {
		return patcher.Toolchain{}, fmt.Errorf("patch bundle: %w", err)
	}

	return patcher.Toolchain{
		CLI:          cli,
		Integrations: integrations,
		Patches:      patches,
	}, nil
}

// EnsureArtifact returns the path of the artifact described by spec,
// downloading it first unless it already exists. An existing file is
// returned without any network traffic.
func (p *Provisioner) EnsureArtifact(ctx context.Context, spec config.Artifact) (string, error) {
	target := filepath.Join(p.dataDir, spec.File)
	if _, err := os.Stat(target); err == nil {
		log.Debug("artifact cached", "file", spec.File)
		return target, nil
	}

	rel, err := p.FetchRelease(ctx, spec.Repo, spec.Tag)
	if err != nil {
		return "", err
	}

	asset, err := SelectAsset(rel.Assets, spec.AssetPattern)
	if err != nil {
		return "", fmt.Errorf("%s release %s: %w", spec.Repo, rel.TagName, err)
	}

	log.Info("downloading artifact", "repo", spec.Repo, "tag", rel.TagName, "asset", asset.Name)
	if err := p.DownloadAsset(ctx, asset, target); err != nil {
		return "", err
	}
	return target, nil
}

// FetchRelease retrieves release metadata for a repository slug and tag.
// The tag "latest" (or empty) resolves to the latest release.
func (p *Provisioner) FetchRelease(ctx context.Context, slug, tag string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/tags/%s", p.host, slug, tag)
	if tag == "" || tag == "latest" {
		url = fmt.Sprintf("%s/repos/%s/releases/latest", p.host, slug)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("release query for %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release query for %s failed with status %d", slug, resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("release metadata for %s: %w", slug, err)
	}
	return &rel, nil
}

// SelectAsset picks the first asset whose filename matches pattern.
func SelectAsset(assets []Asset, pattern string) (Asset, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Asset{}, fmt.Errorf("asset pattern %q: %w", pattern, err)
	}
	for _, a := range assets {
		if re.MatchString(a.Name) {
			return a, nil
		}
	}
	return Asset{}, fmt.Errorf("no asset matches %q", pattern)
}

// DownloadAsset fetches one asset to target, going through a temp file so a
// partial download never masquerades as a cached artifact.
func (p *Provisioner) DownloadAsset(ctx context.Context, asset Asset, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.BrowserDownloadURL, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s failed with status %d", asset.Name, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), target)
}
