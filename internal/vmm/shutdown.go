// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vmm

import (
	"time"

	"github.com/aibor/vmmtest/internal/console"
)

const (
	// shutdownCommand forces an immediate reboot in the guest, which makes
	// the VMM process exit.
	shutdownCommand = "reboot -f"

	// DefaultShutdownBound is how long the VMM process is given to exit
	// after the shutdown command was sent.
	DefaultShutdownBound = 3 * time.Second
)

// Shutdown sends the forced reboot command to the guest and waits for the
// VMM process to exit.
//
// The process exit status is not inspected. A process that keeps running
// past bound is unrecoverable for test purposes and reported as
// [console.TimedOutError]. There is no retry.
func (s *Session) Shutdown(bound time.Duration) error {
	if bound == 0 {
		bound = DefaultShutdownBound
	}

	_, err := s.in.Write([]byte(shutdownCommand + console.LineEnd))
	if err != nil {
		return &console.StreamError{Op: "write", Err: err}
	}

	start := time.Now()

	select {
	case <-s.done:
		s.exited = true
		return nil
	case <-time.After(bound):
		return &console.TimedOutError{
			Target:  shutdownCommand,
			Elapsed: time.Since(start),
		}
	}
}
