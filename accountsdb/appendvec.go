package accountsdb

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/log"
	"github.com/gofrs/flock"
)

// AppendVec is an mmap-backed, append-only binary log of account records.
// Writers do not coordinate through the length word alone: AppendAccounts
// holds writeMu for the whole batch, so appends to one AppendVec run one
// at a time. currentLen is the single atomic word readers trust as the
// publication boundary (spec.md §4.1, §9): a writer, under writeMu,
// writes every record of its batch into the mmap and only then advances
// currentLen with one CompareAndSwap, so a reader never observes a length
// that claims bytes the writer hasn't finished writing. Readers take no
// lock.
type AppendVec struct {
	path     string
	file     *os.File
	mm       mmap.MMap
	capacity uint64

	// currentLen is the authoritative published length, in bytes. Readers
	// load it with Acquire-like semantics (plain atomic load, Go's memory
	// model gives happens-before via the CAS release in AppendAccounts).
	currentLen uint64

	readOnly bool
	writeMu  sync.Mutex
	lock     *flock.Flock
}

// New creates a new writable AppendVec at path, reserving capacity bytes
// via mmap. The file is zero-filled by the OS; CurrentLen starts at 0.
func New(path string, capacity uint64, takeLock bool) (*AppendVec, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, ioError("create", path, err)
	}
	if err := f.Truncate(int64(capacity)); err != nil {
		f.Close()
		return nil, ioError("truncate", path, err)
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, ioError("mmap", path, err)
	}
	av := &AppendVec{
		path:     path,
		file:     f,
		mm:       m,
		capacity: capacity,
	}
	if takeLock {
		av.lock = flock.New(path + ".lock")
		ok, err := av.lock.TryLock()
		if err != nil || !ok {
			m.Unmap()
			f.Close()
			return nil, fmt.Errorf("accountsdb: lock %s: %w", path, err)
		}
	}
	log.Debug("accountsdb: created appendvec", "path", path, "bytes", capacity)
	return av, nil
}

// NewFromFile opens an existing AppendVec, validating its records by
// scanning from offset 0 up to claimedLen and stopping at the first
// malformed or truncated record, per spec.md §4.1's "new_from_file"
// contract: the recovered length is the prefix that actually parses, not
// necessarily claimedLen itself.
func NewFromFile(path string, claimedLen uint64) (*AppendVec, int, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, 0, ioError("open", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, ioError("stat", path, err)
	}
	capacity := uint64(st.Size())
	if claimedLen > capacity {
		claimedLen = capacity
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, 0, ioError("mmap", path, err)
	}
	av := &AppendVec{
		path:     path,
		file:     f,
		mm:       m,
		capacity: capacity,
	}
	validLen, count := av.validatePrefix(claimedLen)
	atomic.StoreUint64(&av.currentLen, validLen)
	if validLen < claimedLen {
		log.Warn("accountsdb: appendvec truncated at first malformed record",
			"path", path, "claimed", claimedLen, "recovered", validLen)
	}
	return av, count, nil
}

// validatePrefix scans records from offset 0 until claimedLen, returning
// the offset of the first record that fails to parse (or claimedLen, if
// every record up to it is well-formed) and the number of well-formed
// records found. It never panics on malformed input; a record is
// rejected if its header or data would cross claimedLen, or if
// recordSize computes to zero.
func (av *AppendVec) validatePrefix(claimedLen uint64) (uint64, int) {
	var offset uint64
	var count int
	for offset < claimedLen {
		if offset+uint64(recordHeaderSize) > claimedLen {
			break
		}
		meta := decodeStoredMeta(av.mm[offset : offset+storedMetaSize])
		size := recordSize(meta.DataLen)
		if size == 0 || offset+size > claimedLen {
			break
		}
		offset += size
		count++
	}
	return offset, count
}

// Len returns the current published length in bytes.
func (av *AppendVec) Len() uint64 {
	return atomic.LoadUint64(&av.currentLen)
}

// IsEmpty reports whether no account has ever been published.
func (av *AppendVec) IsEmpty() bool {
	return av.Len() == 0
}

// Capacity returns the total reserved mmap size.
func (av *AppendVec) Capacity() uint64 {
	return av.capacity
}

// RemainingBytes returns how many bytes are free between the published
// length and the capacity.
func (av *AppendVec) RemainingBytes() uint64 {
	l := av.Len()
	if l >= av.capacity {
		return 0
	}
	return av.capacity - l
}

// Flush persists the mmap's dirty pages to disk. Callers that need
// durability (e.g. before archiving a slot) must call this explicitly;
// append_accounts itself does not fsync per record.
func (av *AppendVec) Flush() error {
	if err := av.mm.Flush(); err != nil {
		return ioError("flush", av.path, err)
	}
	return nil
}

// Close unmaps the file and releases any advisory lock. It does not
// truncate the file to its published length; callers that want a
// minimally-sized file on disk should do that before archiving.
func (av *AppendVec) Close() error {
	var firstErr error
	if err := av.mm.Unmap(); err != nil {
		firstErr = ioError("unmap", av.path, err)
	}
	if av.lock != nil {
		av.lock.Unlock()
	}
	if err := av.file.Close(); err != nil && firstErr == nil {
		firstErr = ioError("close", av.path, err)
	}
	return firstErr
}

// Reset truncates the AppendVec back to empty, for slot file reuse
// (spec.md §4.1 "reset"). The caller must guarantee no concurrent readers
// hold borrowed StoredAccountMeta values into this file.
func (av *AppendVec) Reset() {
	atomic.StoreUint64(&av.currentLen, 0)
}

// DataForArchive returns the byte range that actually holds published
// account data, for the archive contract in spec.md §6.
func (av *AppendVec) DataForArchive() []byte {
	return av.mm[:av.Len():av.Len()]
}
