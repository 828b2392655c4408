// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import "syscall"

// fatalErrnos are inotify exhaustion errors. A project tree with large
// bin/ or node_modules/ folders can hit max_user_watches (ENOSPC) or the
// descriptor limits, after which edits to the add-in are no longer reported.
var fatalErrnos = []syscall.Errno{syscall.ENOSPC, syscall.EMFILE, syscall.ENFILE}
