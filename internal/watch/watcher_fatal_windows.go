// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import "syscall"

// fatalErrnos are the ReadDirectoryChangesW failures after which the add-in
// directory is no longer observed: the handle limit is reached (4), the
// project folder was deleted or unmounted (6), or no notification buffer
// can be allocated (8).
var fatalErrnos = []syscall.Errno{4, 6, 8}
