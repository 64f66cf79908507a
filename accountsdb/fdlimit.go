//go:build unix

package accountsdb

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Maximum returns the process's hard file-descriptor limit.
func Maximum() (int, error) {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, fmt.Errorf("accountsdb: getrlimit: %w", err)
	}
	return int(limit.Max), nil
}

// Current returns the process's current soft file-descriptor limit.
func Current() (int, error) {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, fmt.Errorf("accountsdb: getrlimit: %w", err)
	}
	return int(limit.Cur), nil
}

// Raise tries to raise the soft file-descriptor limit towards target, never
// above the hard limit. It never lowers the current limit, and it never
// returns an error that should be treated as fatal by a caller opening a
// store: if raising fails, the caller keeps whatever limit it already had.
func Raise(target uint64) (uint64, error) {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, fmt.Errorf("accountsdb: getrlimit: %w", err)
	}
	if limit.Cur >= target {
		return limit.Cur, nil
	}
	want := target
	if want > limit.Max {
		want = limit.Max
	}
	limit.Cur = want
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, fmt.Errorf("accountsdb: setrlimit: %w", err)
	}
	return limit.Cur, nil
}
