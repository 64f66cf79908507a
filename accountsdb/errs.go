package accountsdb

import (
	"errors"
	"fmt"
)

// Error kinds from spec.md §7. Capacity exhaustion is deliberately not an
// error (append_accounts returns ok=false instead); parse errors during
// tolerant scans are swallowed by the caller rather than raised here.
var (
	// ErrMalformed is returned when a record at a claimed offset cannot be
	// parsed, or crosses the file's published length.
	ErrMalformed = errors.New("accountsdb: malformed record")

	// ErrOffsetOutOfRange is returned when an offset is beyond the
	// authoritative published length of a file. Store.CreateFile also
	// returns it when the initial batch does not fit in the new AppendVec.
	ErrOffsetOutOfRange = errors.New("accountsdb: offset out of range")

	// ErrUnsupported is returned when an operation defined only for one
	// backend (e.g. write-version, StoredMeta borrow) is invoked on the
	// other. Callers that hit this have a programming error.
	ErrUnsupported = errors.New("accountsdb: operation unsupported on this backend")

	// ErrSealed is returned by a Tiered writer invoked a second time.
	ErrSealed = errors.New("accountsdb: tiered file already sealed")

	// ErrUnableToLoad is the second OwnerMatch outcome: the account could
	// not be read at all (distinct from "read fine, owner didn't match").
	ErrUnableToLoad = errors.New("accountsdb: unable to load account for owner match")
)

// ioError wraps an underlying OS error so callers can errors.Is/As through
// it while still getting a message that names the failing path/op.
func ioError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("accountsdb: %s %s: %w", op, path, err)
}

// OwnerMatchResult is the three-valued outcome of account_matches_owners.
type OwnerMatchResult int

const (
	// OwnerMatchFound means owners[index] (the index returned alongside
	// the result) equals the account's owner, and no earlier entry in
	// owners matched.
	OwnerMatchFound OwnerMatchResult = iota
	// OwnerMatchNone means the account was read successfully but its
	// owner is not present in the candidate list.
	OwnerMatchNone
	// OwnerMatchUnableToLoad means the account itself could not be read.
	OwnerMatchUnableToLoad
)
