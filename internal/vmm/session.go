// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vmm

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"

	"github.com/aibor/vmmtest/internal/console"
)

// livenessWait is how long a freshly spawned process is given to die on an
// invalid configuration before it is considered up.
const livenessWait = 2 * time.Second

// Session owns a running VMM process, its writable input stream and the
// pollable console over its output.
//
// A Session must never be shared between concurrent test scenarios. All
// operations against it are strictly sequential. Independent Sessions own
// disjoint processes and pipes and may run concurrently.
type Session struct {
	cmd     *exec.Cmd
	in      *os.File
	out     *os.File
	console *console.Stream
	scratch string
	done    chan error
	exited  bool
}

// Start spawns the VMM process described by spec and returns a [Session]
// over its serial console.
//
// The console output is configured for non-blocking reads once, here. A
// process that exits before the liveness check completes is reported as
// [StartError].
func Start(spec CommandSpec) (*Session, error) {
	spec.AddDefaults()

	err := spec.Validate()
	if err != nil {
		return nil, err
	}

	scratch := ""

	if spec.Disk != "" {
		scratch, err = copyScratchDisk(spec.Disk)
		if err != nil {
			return nil, err
		}

		spec.Disk = scratch
	}

	cmd := exec.Command(spec.Executable, spec.arguments()...) //nolint:gosec

	slog.Debug("VMM command", slog.String("command", cmd.String()))

	in, out, err := startProcess(cmd, spec.UsePTY)
	if err != nil {
		removeScratch(scratch)
		return nil, err
	}

	session := &Session{
		cmd:     cmd,
		in:      in,
		out:     out,
		scratch: scratch,
		done:    make(chan error, 1),
	}

	go func() {
		session.done <- cmd.Wait()
	}()

	session.console, err = console.NewStream(out)
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	// The process dies quickly on an invalid configuration. Catch that here
	// so scenarios fail with a start error instead of timing out on their
	// first wait.
	select {
	case waitErr := <-session.done:
		session.exited = true
		_ = session.Close()

		return nil, &StartError{Err: waitErr}
	case <-time.After(livenessWait):
	}

	return session, nil
}

// startProcess starts cmd with its console attached to either a pty or a
// pair of pipes. It returns the input and output files for the console.
func startProcess(cmd *exec.Cmd, usePTY bool) (*os.File, *os.File, error) {
	if usePTY {
		ptmx, err := pty.Start(cmd)
		if err != nil {
			return nil, nil, fmt.Errorf("start on pty: %w", err)
		}

		return ptmx, ptmx, nil
	}

	inRead, inWrite, err := os.Pipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}

	outRead, outWrite, err := os.Pipe()
	if err != nil {
		_ = inRead.Close()
		_ = inWrite.Close()

		return nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}

	cmd.Stdin = inRead
	cmd.Stdout = outWrite
	cmd.Stderr = os.Stderr

	err = cmd.Start()

	// The child's ends belong to the child now.
	_ = inRead.Close()
	_ = outWrite.Close()

	if err != nil {
		_ = inWrite.Close()
		_ = outRead.Close()

		return nil, nil, fmt.Errorf("start: %w", err)
	}

	return inWrite, outRead, nil
}

// Expect waits until the console prints a line containing target and
// returns that line.
func (s *Session) Expect(target string, timeout time.Duration) (string, error) {
	return console.Expect(s.console, target, timeout)
}

// Run executes command in the guest shell and returns its output lines.
// The caller must have synchronized on prompt before, so boot output does
// not leak into the command output.
func (s *Session) Run(
	command string,
	prompt string,
	timeout time.Duration,
) ([]string, error) {
	return console.RunCommand(s.console, s.in, command, prompt, timeout)
}

// Close terminates the VMM process if it is still running and releases the
// session's resources. It is safe to call after [Session.Shutdown].
func (s *Session) Close() error {
	if !s.exited {
		_ = s.cmd.Process.Kill()
		<-s.done
		s.exited = true
	}

	if s.in != s.out {
		_ = s.in.Close()
	}

	err := s.out.Close()

	if s.scratch != "" {
		err = errors.Join(err, os.Remove(s.scratch))
		s.scratch = ""
	}

	return err
}

func removeScratch(path string) {
	if path == "" {
		return
	}

	err := os.Remove(path)
	if err != nil {
		slog.Error("Failed to remove scratch disk",
			slog.String("path", path),
			slog.Any("error", err))
	}
}
