// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatalFsnotifyError(t *testing.T) {
	t.Parallel()

	for _, errno := range fatalErrnos {
		wrapped := fmt.Errorf("add watch for %s: %w", "Sample/obj", errno)
		if !isFatalFsnotifyError(wrapped) {
			t.Errorf("isFatalFsnotifyError(%v) = false, want true", wrapped)
		}
	}

	for _, err := range []error{
		syscall.Errno(0xdead),
		fmt.Errorf("remove watch: %w", syscall.Errno(0xbeef)),
		errors.New("queue overflow"),
		nil,
	} {
		if isFatalFsnotifyError(err) {
			t.Errorf("isFatalFsnotifyError(%v) = true, want false", err)
		}
	}
}
