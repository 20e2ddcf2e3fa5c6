//go:build !release

// Package assert checks internal invariants that no caller input can violate. Dev builds panic on a
// broken invariant, release builds compile the checks away.
package assert

import "fmt"

func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
