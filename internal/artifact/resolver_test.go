// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/vmmtest/internal/artifact"
)

func testManifest() artifact.Manifest {
	return artifact.Manifest{
		"v0.1": []artifact.Resource{
			{
				Type:         "kernel",
				Name:         "vmlinux-hello-busybox",
				RelativePath: "kernel/x86_64",
			},
		},
		"v0.2": []artifact.Resource{
			{
				Type:         "kernel",
				Name:         "vmlinux-hello-busybox",
				RelativePath: "kernel/x86_64",
			},
			{
				Type:         "kernel",
				Name:         "bzimage-hello-busybox",
				RelativePath: "kernel/x86_64",
			},
			{
				Type:         "disk",
				Name:         "ubuntu-focal-rootfs-x86_64.ext4",
				RelativePath: "disk",
				Tags:         map[string]string{"arch": "x86_64"},
			},
		},
	}
}

func TestManifestLatestVersion(t *testing.T) {
	version, err := testManifest().LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, "v0.2", version)

	_, err = artifact.Manifest{}.LatestVersion()
	require.ErrorIs(t, err, artifact.ErrEmptyManifest)
}

func TestLoadManifest(t *testing.T) {
	content := `
v0.1:
  - type: kernel
    name: vmlinux-hello-busybox
    relative_path: kernel/x86_64
  - type: disk
    name: ubuntu-focal-rootfs-x86_64.ext4
    relative_path: disk
    tags:
      arch: x86_64
`

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	manifest, err := artifact.LoadManifest(path)
	require.NoError(t, err)

	require.Len(t, manifest["v0.1"], 2)
	assert.Equal(t, "vmlinux-hello-busybox", manifest["v0.1"][0].Name)
	assert.Equal(t, "disk", manifest["v0.1"][1].RelativePath)
	assert.Equal(t, "x86_64", manifest["v0.1"][1].Tags["arch"])
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := artifact.LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolverDownload(t *testing.T) {
	var requestedPath string

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			_, _ = w.Write([]byte("kernel-image-data"))
		},
	))
	t.Cleanup(server.Close)

	resolver := &artifact.Resolver{
		BaseURL:  server.URL,
		Root:     t.TempDir(),
		Manifest: testManifest(),
		Client:   server.Client(),
	}

	path, err := resolver.Resolve(context.Background(), artifact.Query{
		Type: "kernel",
		Name: "vmlinux-hello-busybox",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v0.2/kernel/vmlinux-hello-busybox", requestedPath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "kernel-image-data", string(data))
}

func TestResolverCached(t *testing.T) {
	root := t.TempDir()

	dir := filepath.Join(root, "kernel/x86_64")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	cached := filepath.Join(dir, "vmlinux-hello-busybox")
	require.NoError(t, os.WriteFile(cached, []byte("cached"), 0o600))

	// No server: a cached artifact must resolve without any request.
	resolver := &artifact.Resolver{
		BaseURL:  "http://bucket.invalid",
		Root:     root,
		Manifest: testManifest(),
	}

	path, err := resolver.Resolve(context.Background(), artifact.Query{
		Type: "kernel",
		Name: "vmlinux-hello-busybox",
	})
	require.NoError(t, err)
	assert.Equal(t, cached, path)
}

func TestResolverByTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("rootfs"))
		},
	))
	t.Cleanup(server.Close)

	resolver := &artifact.Resolver{
		BaseURL:  server.URL,
		Root:     t.TempDir(),
		Manifest: testManifest(),
		Client:   server.Client(),
	}

	path, err := resolver.Resolve(context.Background(), artifact.Query{
		Type: "disk",
		Tags: map[string]string{"arch": "x86_64"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ubuntu-focal-rootfs-x86_64.ext4", filepath.Base(path))
}

func TestResolverErrors(t *testing.T) {
	tests := []struct {
		name        string
		query       artifact.Query
		errExpected error
	}{
		{
			name: "unknown version",
			query: artifact.Query{
				Type:    "kernel",
				Version: "v9.9",
			},
			errExpected: artifact.ErrUnknownVersion,
		},
		{
			name: "no match",
			query: artifact.Query{
				Type: "firmware",
			},
			errExpected: artifact.ErrNoMatch,
		},
		{
			name: "pinned version without the resource",
			query: artifact.Query{
				Type:    "disk",
				Version: "v0.1",
			},
			errExpected: artifact.ErrNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &artifact.Resolver{
				BaseURL:  "http://bucket.invalid",
				Root:     t.TempDir(),
				Manifest: testManifest(),
			}

			_, err := resolver.Resolve(context.Background(), tt.query)
			require.ErrorIs(t, err, tt.errExpected)
		})
	}
}

func TestResolverDownloadFailed(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	resolver := &artifact.Resolver{
		BaseURL:  server.URL,
		Root:     t.TempDir(),
		Manifest: testManifest(),
		Client:   server.Client(),
	}

	_, err := resolver.Resolve(context.Background(), artifact.Query{
		Type: "kernel",
		Name: "bzimage-hello-busybox",
	})
	require.ErrorIs(t, err, artifact.ErrDownloadFailed)
}
