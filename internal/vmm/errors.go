// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vmm

import "errors"

var (
	// ErrVCPUMismatch is returned if the guest sees a different number of
	// processors than the VM was configured with.
	ErrVCPUMismatch = errors.New("unexpected guest vcpu count")

	// ErrMemoryMismatch is returned if the guest memory reported by the
	// kernel is outside the allowed tolerance.
	ErrMemoryMismatch = errors.New("guest memory outside tolerance")

	// ErrMemoryLineMalformed is returned if the kernel's memory boot line
	// does not have the expected shape.
	ErrMemoryLineMalformed = errors.New("malformed memory boot line")
)

// ArgumentError indicates an invalid [CommandSpec] field.
type ArgumentError struct {
	msg string
}

// Error implements the [error] interface.
func (e *ArgumentError) Error() string {
	return "argument error: " + e.msg
}

// Is implements the [errors.Is] interface.
func (*ArgumentError) Is(other error) bool {
	_, ok := other.(*ArgumentError)
	return ok
}

// StartError reports a VMM process that exited before the liveness check
// completed, usually because of an invalid configuration. It is distinct
// from a timed out wait.
type StartError struct {
	Err error
}

// Error implements the [error] interface.
func (e *StartError) Error() string {
	msg := "vmm process exited during startup"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Is implements the [errors.Is] interface.
func (*StartError) Is(other error) bool {
	_, ok := other.(*StartError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *StartError) Unwrap() error {
	return e.Err
}
