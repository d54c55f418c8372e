//go:build netbsd

package safefileio

import "syscall"

// noFollowErrnos holds EFTYPE, NetBSD's answer to O_NOFOLLOW on a symlink.
var noFollowErrnos = []syscall.Errno{syscall.EFTYPE}
