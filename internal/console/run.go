// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"errors"
	"io"
	"strings"
	"time"
)

const (
	// DefaultCommandTimeout bounds in-guest command execution.
	DefaultCommandTimeout = 5 * time.Second

	// promptTailLines is the number of trailing prompt lines stripped from
	// command output. The reference console redraws the prompt after the
	// echoed command, so it shows up twice at the tail. This is a fixed
	// quirk of the console, not derived from the protocol, and might not
	// hold for other console drivers.
	promptTailLines = 2
)

// RunCommand writes command to in, terminated with [LineEnd], and collects
// console output until prompt shows up again at the head of a new input
// line.
//
// Unlike [Expect], every completed line is retained, since command output
// must be captured in full. The command is considered complete once the
// unterminated remainder of a pass equals prompt after trimming whitespace.
// The returned lines have the echoed command and the doubled trailing
// prompt removed.
//
// Fails with [TimedOutError] carrying the command once the deadline is
// exceeded, and with [StreamError] on any console failure.
func RunCommand(
	stream *Stream,
	in io.Writer,
	command string,
	prompt string,
	timeout time.Duration,
) ([]string, error) {
	if timeout == 0 {
		timeout = DefaultCommandTimeout
	}

	command = strings.TrimSpace(command)

	_, err := in.Write([]byte(command + LineEnd))
	if err != nil {
		return nil, &StreamError{Op: "write", Err: err}
	}

	start := time.Now()
	deadline := start.Add(timeout)

	var (
		buf    []byte
		output []string
	)

	for {
		data, err := stream.Read()

		switch {
		case err == nil:
			lines, rest := splitLines(buf, data)
			for _, line := range lines {
				output = append(output, string(line))
			}

			if strings.TrimSpace(string(rest)) == prompt {
				output = append(output, string(rest))
				return stripEchoAndPrompt(output), nil
			}

			buf = rest
		case errors.Is(err, ErrWouldBlock):
			time.Sleep(pollInterval)

			if time.Now().After(deadline) {
				return nil, &TimedOutError{
					Target:  command,
					Elapsed: time.Since(start),
				}
			}
		default:
			return nil, err
		}
	}
}

// stripEchoAndPrompt removes the echoed command at the head and the doubled
// prompt at the tail of the collected output.
func stripEchoAndPrompt(lines []string) []string {
	if len(lines) <= 1+promptTailLines {
		return nil
	}

	return lines[1 : len(lines)-promptTailLines]
}
