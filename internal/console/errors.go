// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import "errors"

// ErrWouldBlock is returned by [Stream.Read] if no data is available right
// now. It is a normal polling outcome, not a failure. Callers back off and
// retry until their deadline expires.
var ErrWouldBlock = errors.New("read would block")
