//go:build unix

package serialkit

import "golang.org/x/sys/unix"

// canOpen reports whether the calling user has read and write permission on path
func canOpen(path string) bool {
	return unix.Access(path, unix.R_OK|unix.W_OK) == nil
}
