// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// readChunk is the number of bytes requested per poll.
const readChunk = 4096

// Stream provides non-blocking polled reads over a console output file.
type Stream struct {
	file *os.File
	fd   int
}

// NewStream puts file into non-blocking mode and returns a [Stream] over
// it.
//
// The fcntl flag update is idempotent, so a file that is already in
// non-blocking mode is fine. It is a one-time setup step though. All
// operations on the Stream assume it stays in effect for the lifetime of
// the file.
func NewStream(file *os.File) (*Stream, error) {
	fd := int(file.Fd())

	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, &StreamError{Op: "fcntl", Err: err}
	}

	_, err = unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags|unix.O_NONBLOCK)
	if err != nil {
		return nil, &StreamError{Op: "fcntl", Err: err}
	}

	return &Stream{
		file: file,
		fd:   fd,
	}, nil
}

// Read performs a single non-blocking read and returns the bytes received.
//
// It never blocks the caller. If no data is available, it returns
// [ErrWouldBlock]. Any other failure, including a closed console, is
// returned as [StreamError] and is fatal.
func (s *Stream) Read() ([]byte, error) {
	buf := make([]byte, readChunk)

	n, err := unix.Read(s.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return nil, ErrWouldBlock
		}

		return nil, &StreamError{Op: "read", Err: err}
	}

	// A zero length read means the other end of the pipe is gone.
	if n == 0 {
		return nil, &StreamError{Op: "read", Err: io.EOF}
	}

	return buf[:n], nil
}
