// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import "bytes"

// LineEnd is the line terminator the serial console uses.
const LineEnd = "\r\n"

var lineEnd = []byte(LineEnd)

// splitLines splits the concatenation of buf and data on [LineEnd].
//
// All segments but the last are completed lines, in stream order. The final
// segment is returned as rest. It is the unconsumed remainder following the
// last terminator and must be carried into the next pass. It may be empty
// if the data ends with a terminator, and it may never be completed at all
// if the console stops mid line.
func splitLines(buf, data []byte) (lines [][]byte, rest []byte) {
	joined := make([]byte, 0, len(buf)+len(data))
	joined = append(joined, buf...)
	joined = append(joined, data...)

	segments := bytes.Split(joined, lineEnd)
	last := len(segments) - 1

	return segments[:last], segments[last]
}
