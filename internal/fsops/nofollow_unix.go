//go:build unix

package fsops

import "syscall"

const noFollow = syscall.O_NOFOLLOW
