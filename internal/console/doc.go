// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package console implements line-oriented interaction with a guest serial
// console that is exposed as a subprocess's standard streams.
//
// The console is polled with non-blocking reads. Raw byte chunks are
// reassembled into lines terminated by [LineEnd], and all pattern matching
// operates on those lines. [Expect] waits for a substring to show up in the
// output, [RunCommand] executes a command in the guest shell and captures
// its output.
//
// All operations are strictly sequential. A [Stream] must only ever be
// driven by one caller at a time.
package console
