// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package vmm spawns an externally built virtual machine monitor process
// and drives it through its emulated serial console.
//
// The VMM binary is a black box with byte-stream stdin and stdout. A
// [Session] owns one running process and exposes the console operations
// test scenarios are built from: expect a boot marker, run a command in the
// guest shell, verify guest configuration, shut down.
package vmm
