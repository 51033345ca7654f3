// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Manifest maps resource versions to the artifacts published for them.
type Manifest map[string][]Resource

// Resource describes a single published artifact.
type Resource struct {
	// Type groups artifacts, like "kernel" or "disk".
	Type string `yaml:"type"`

	// Name is the artifact file name, which is also its name in the
	// bucket.
	Name string `yaml:"name"`

	// RelativePath is the cache directory for the artifact, relative to
	// the resolver's root.
	RelativePath string `yaml:"relative_path"`

	// Tags are additional attributes to select artifacts by.
	Tags map[string]string `yaml:"tags,omitempty"`
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest

	err = yaml.Unmarshal(data, &manifest)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return manifest, nil
}

// LatestVersion returns the highest version key in the manifest. Versions
// are compared lexically, which is correct for the zero-padded date based
// versions the resource bucket uses.
func (m Manifest) LatestVersion() (string, error) {
	if len(m) == 0 {
		return "", ErrEmptyManifest
	}

	versions := make([]string, 0, len(m))
	for version := range m {
		versions = append(versions, version)
	}

	return slices.Max(versions), nil
}

// matches reports whether the resource satisfies the query. An empty query
// name matches any name. All query tags must be present and equal.
func (r *Resource) matches(query Query) bool {
	if r.Type != query.Type {
		return false
	}

	if query.Name != "" && r.Name != query.Name {
		return false
	}

	for key, value := range query.Tags {
		if r.Tags[key] != value {
			return false
		}
	}

	return true
}
