//go:build windows

package main

import "io"

// writerIsTerminal always reports false on Windows; diagnostics stay
// plain rather than emitting ANSI sequences the console may not
// understand.
func writerIsTerminal(w io.Writer) bool {
	return false
}
