// Package accountsdb implements the per-slot account file layer of a
// validator's accounts storage engine: an mmap-backed append-only log
// (AppendVec) for hot slots, an immutable indexed columnar format
// (Tiered/Hot) for cold slots, and the AccountsFile façade that unifies
// both behind one offset-addressed, scan/read/append/archive contract.
package accountsdb

// Align is the on-disk alignment unit. Every byte offset observed outside
// this package is a multiple of Align.
const Align = 8

// Pubkey is an account's 32-byte address.
type Pubkey [32]byte

// Hash is a 32-byte account or data hash.
type Hash [32]byte

// ZeroHash is the sentinel value substituted for accounts resident in a
// Tiered file, which elides per-account hashes (spec.md §4.2).
var ZeroHash Hash

// align8 rounds n up to the next multiple of Align.
func align8(n uint64) uint64 {
	return (n + Align - 1) &^ (Align - 1)
}

// Slot identifies a version of global state. Monotonically increasing.
type Slot uint64
