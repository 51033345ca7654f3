// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"errors"
	"strings"
	"time"
)

const (
	// pollInterval is the fixed backoff applied when the console has no
	// data ready. There is no event-driven wake-up, so responsiveness is
	// bounded below by this.
	pollInterval = time.Second

	// DefaultTimeout bounds waits for boot output.
	DefaultTimeout = 30 * time.Second
)

// Expect polls stream until a completed line contains target as a substring
// and returns that line.
//
// Matching operates on completed lines only. A partial line is never
// matched, even if target already shows up in the fragment. The fragment is
// carried over and matched once its terminator arrives, so a target split
// across two raw reads is still found.
//
// On a match the rest of the batch is abandoned. If a pass completes lines
// but none of them match, only the unconsumed remainder after the last
// terminator is retained. Callers must not assume earlier output lines are
// inspected again on later passes.
//
// The deadline is checked after each backoff. Expect fails with
// [TimedOutError] once it is exceeded and with [StreamError] on any console
// failure.
func Expect(stream *Stream, target string, timeout time.Duration) (string, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	start := time.Now()
	deadline := start.Add(timeout)

	var buf []byte

	for {
		data, err := stream.Read()

		switch {
		case err == nil:
			lines, rest := splitLines(buf, data)
			for _, line := range lines {
				if strings.Contains(string(line), target) {
					return string(line), nil
				}
			}

			buf = rest
		case errors.Is(err, ErrWouldBlock):
			time.Sleep(pollInterval)

			if time.Now().After(deadline) {
				return "", &TimedOutError{
					Target:  target,
					Elapsed: time.Since(start),
				}
			}
		default:
			return "", err
		}
	}
}
