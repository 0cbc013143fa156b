//go:build debug

package debug

// Enabled reports whether the binary was built with the 'debug' tag.
const Enabled = true

// Assert panics with msg when cond is false. Precondition violations fail
// fast in debug builds.
func Assert(cond bool, msg string) {
	if !cond {
		panic("assertion failed: " + msg)
	}
}
