package mvcc

import "fmt"

// debugEnabled gates Debug output. The teacher repo sniffed os.Args for a
// "--debug" flag; this module is a library with no main of its own, so
// callers flip the switch explicitly via SetDebug.
var debugEnabled bool

// SetDebug turns package-level diagnostic logging on or off. Off by
// default.
func SetDebug(on bool) {
	debugEnabled = on
}

// Debug prints a diagnostic line when debugging is enabled. It never
// touches the error-handling path; it exists purely for engineers
// stepping through conflicting transactions in tests.
func Debug(a ...any) {
	if !debugEnabled {
		return
	}
	args := append([]any{"[mvcc]"}, a...)
	fmt.Println(args...)
}
