//go:build !netbsd

package safefileio

import "syscall"

// noFollowErrnos are returned by open(2) with O_NOFOLLOW on a symlink:
// ELOOP on Linux and most BSDs, EMLINK on FreeBSD.
var noFollowErrnos = []syscall.Errno{syscall.ELOOP, syscall.EMLINK}
