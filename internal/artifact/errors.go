// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact

import "errors"

var (
	// ErrEmptyManifest is returned if the manifest contains no versions.
	ErrEmptyManifest = errors.New("manifest contains no versions")

	// ErrUnknownVersion is returned if the requested version is not
	// present in the manifest.
	ErrUnknownVersion = errors.New("unknown resource version")

	// ErrNoMatch is returned if no resource matches the query.
	ErrNoMatch = errors.New("no matching resource found")

	// ErrDownloadFailed is returned if the bucket did not serve the
	// artifact.
	ErrDownloadFailed = errors.New("artifact download failed")
)
