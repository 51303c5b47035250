//go:build !release

// Package assert checks internal invariants. A failed check is a bug in this module, never a
// user error, so it panics. Release builds compile the checks away.
package assert

import "fmt"

// That panics with the formatted message when cond is false.
func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
