//go:build !unix

package fsops

const noFollow = 0
