// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// Query identifies an artifact in a manifest.
type Query struct {
	// Type of the artifact, like "kernel" or "disk".
	Type string

	// Name of the artifact. Empty matches any name of the type.
	Name string

	// Version to resolve. Empty means the latest version in the manifest.
	Version string

	// Tags the artifact must carry.
	Tags map[string]string
}

// Resolver downloads versioned test artifacts into a local cache.
//
// The bucket is public, so downloads are plain unauthenticated GETs against
// BaseURL.
type Resolver struct {
	// BaseURL of the artifact bucket.
	BaseURL string

	// Root is the local cache directory.
	Root string

	// Manifest describes the published artifacts.
	Manifest Manifest

	// Client to download with. [http.DefaultClient] is used if unset.
	Client *http.Client
}

// Resolve returns the local path of the first artifact matching the query.
//
// A cached artifact is returned as is. Otherwise it is downloaded from the
// bucket under its versioned key.
func (r *Resolver) Resolve(ctx context.Context, query Query) (string, error) {
	version := query.Version

	if version == "" {
		var err error

		version, err = r.Manifest.LatestVersion()
		if err != nil {
			return "", err
		}
	}

	resources, exists := r.Manifest[version]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrUnknownVersion, version)
	}

	idx := -1

	for i := range resources {
		if resources[i].matches(query) {
			idx = i
			break
		}
	}

	if idx < 0 {
		return "", fmt.Errorf("%w: type=%s name=%s version=%s",
			ErrNoMatch, query.Type, query.Name, version)
	}

	resource := resources[idx]

	dir := filepath.Join(r.Root, resource.RelativePath)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	path := filepath.Join(dir, resource.Name)

	if _, err := os.Stat(path); err == nil {
		slog.Debug("Artifact cached", slog.String("path", path))
		return path, nil
	}

	err = r.download(ctx, version, &resource, path)
	if err != nil {
		return "", err
	}

	return path, nil
}

func (r *Resolver) download(
	ctx context.Context,
	version string,
	resource *Resource,
	path string,
) error {
	objectURL, err := url.JoinPath(
		r.BaseURL, version, resource.Type, resource.Name,
	)
	if err != nil {
		return fmt.Errorf("object url: %w", err)
	}

	slog.Debug("Downloading artifact",
		slog.String("url", objectURL),
		slog.String("path", path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objectURL, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := r.client().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: %s", ErrDownloadFailed, objectURL,
			resp.Status)
	}

	// Download to a temporary file first, so a cancelled download does not
	// leave a truncated artifact behind that would be treated as cached.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+resource.Name+"-*")
	if err != nil {
		return fmt.Errorf("create download file: %w", err)
	}

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	_, err = io.Copy(tmp, resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("move download: %w", err)
	}

	return nil
}

func (r *Resolver) client() *http.Client {
	if r.Client == nil {
		return http.DefaultClient
	}

	return r.Client
}
