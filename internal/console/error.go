// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"fmt"
	"time"
)

// TimedOutError is returned when a console wait exceeds its deadline.
type TimedOutError struct {
	// Target is the substring or command that was awaited.
	Target string
	// Elapsed is the time spent waiting before giving up.
	Elapsed time.Duration
}

// Error implements the [error] interface.
func (e *TimedOutError) Error() string {
	return fmt.Sprintf(
		"timed out after %.1fs waiting for %q",
		e.Elapsed.Seconds(), e.Target,
	)
}

// Is implements the [errors.Is] interface.
func (*TimedOutError) Is(other error) bool {
	_, ok := other.(*TimedOutError)
	return ok
}

// StreamError wraps a fatal console I/O failure.
//
// Anything but [ErrWouldBlock] on the console streams means the subprocess
// or its pipes are in an unrecoverable state, so a StreamError is never
// retried.
type StreamError struct {
	Op  string
	Err error
}

// Error implements the [error] interface.
func (e *StreamError) Error() string {
	return "console " + e.Op + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*StreamError) Is(other error) bool {
	_, ok := other.(*StreamError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *StreamError) Unwrap() error {
	return e.Err
}
