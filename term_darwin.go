//go:build darwin

package main

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// writerIsTerminal reports whether w is backed by a terminal.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	_, err := unix.IoctlGetTermios(int(f.Fd()), unix.TIOCGETA)
	return err == nil
}
