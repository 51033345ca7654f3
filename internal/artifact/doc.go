// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package artifact resolves named kernel and disk images to local file
// paths.
//
// Artifacts are published to a bucket under versioned keys and described
// by a manifest. A [Resolver] looks up an artifact by type, name and tags,
// downloads it into a local cache if necessary and returns its path. The
// rest of the tooling consumes that path as an opaque input.
package artifact
