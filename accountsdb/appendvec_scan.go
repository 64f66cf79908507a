package accountsdb

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/metrics"
)

var (
	scanRecordsMeter   = metrics.NewRegisteredMeter("accountsdb/appendvec/scan_records", nil)
	scanMalformedMeter = metrics.NewRegisteredMeter("accountsdb/appendvec/scan_malformed", nil)
)

// GetAccount returns the record at offset as a borrowed StoredAccountMeta,
// plus the offset of the next record, or ok=false if offset is at or
// past the published length or the record there is malformed
// (spec.md §4.1). The returned Data aliases the AppendVec's mmap and must
// not be retained past the AppendVec's lifetime.
func (av *AppendVec) GetAccount(offset uint64) (acc StoredAccountMeta, nextOffset uint64, ok bool) {
	length := atomic.LoadUint64(&av.currentLen)
	if offset+uint64(recordHeaderSize) > length {
		return StoredAccountMeta{}, 0, false
	}
	meta := decodeStoredMeta(av.mm[offset : offset+storedMetaSize])
	size := recordSize(meta.DataLen)
	if size == 0 || offset+size > length {
		return StoredAccountMeta{}, 0, false
	}
	am := decodeAccountMeta(av.mm[offset+storedMetaSize : offset+storedMetaSize+accountMetaSize])
	var hash Hash
	copy(hash[:], av.mm[offset+storedMetaSize+accountMetaSize:offset+recordHeaderSize])
	var data []byte
	if meta.DataLen > 0 {
		data = av.mm[offset+uint64(recordHeaderSize) : offset+uint64(recordHeaderSize)+meta.DataLen]
	}

	acc = StoredAccountMeta{
		Pubkey:      meta.Pubkey,
		Lamports:    am.Lamports,
		Owner:       am.Owner,
		Executable:  am.Executable,
		RentEpoch:   am.RentEpoch,
		Data:        data,
		AccountHash: hash,
		StoredSize:  size,
		Offset:      offset,
	}
	return acc, offset + size, true
}

// AccountMatchesOwners reads only the owner field at offset (never
// touching the data pages) and reports whether it equals any of owners,
// returning the index of the first match (spec.md §4.1 fast path).
func (av *AppendVec) AccountMatchesOwners(offset uint64, owners []Pubkey) (index int, result OwnerMatchResult) {
	length := atomic.LoadUint64(&av.currentLen)
	if offset+uint64(recordHeaderSize) > length {
		return 0, OwnerMatchUnableToLoad
	}
	meta := decodeStoredMeta(av.mm[offset : offset+storedMetaSize])
	size := recordSize(meta.DataLen)
	if size == 0 || offset+size > length {
		return 0, OwnerMatchUnableToLoad
	}
	ownerStart := offset + storedMetaSize + 16 // AccountMeta.Owner is at am[16:48]
	var owner Pubkey
	copy(owner[:], av.mm[ownerStart:ownerStart+32])
	for i, candidate := range owners {
		if owner == candidate {
			return i, OwnerMatchFound
		}
	}
	return 0, OwnerMatchNone
}

// ScanIndex walks every record from offset 0 to the published length,
// invoking cb with each record's pubkey, stored size, and offset. It
// stops at the first malformed record rather than erroring, per spec.md
// §7 "parse errors during tolerant scans are swallowed."
func (av *AppendVec) ScanIndex(cb func(pubkey Pubkey, offset uint64, size uint64)) {
	length := atomic.LoadUint64(&av.currentLen)
	var offset uint64
	var visited, malformed int64
	for offset < length {
		if offset+uint64(recordHeaderSize) > length {
			malformed++
			break
		}
		meta := decodeStoredMeta(av.mm[offset : offset+storedMetaSize])
		size := recordSize(meta.DataLen)
		if size == 0 || offset+size > length {
			malformed++
			break
		}
		cb(meta.Pubkey, offset, size)
		visited++
		offset += size
	}
	scanRecordsMeter.Mark(visited)
	if malformed > 0 {
		scanMalformedMeter.Mark(malformed)
	}
}

// ScanPubkeys is ScanIndex restricted to just the pubkey, for callers
// that don't need offsets (spec.md §4.1).
func (av *AppendVec) ScanPubkeys(cb func(pubkey Pubkey)) {
	av.ScanIndex(func(pubkey Pubkey, _ uint64, _ uint64) { cb(pubkey) })
}

// Accounts returns every record from offset to the end of the file as a
// slice, for callers (e.g. archival) that want the whole tail in memory.
func (av *AppendVec) Accounts(offset uint64) []StoredAccountMeta {
	var out []StoredAccountMeta
	for {
		acc, next, ok := av.GetAccount(offset)
		if !ok {
			break
		}
		out = append(out, acc)
		offset = next
	}
	return out
}

// GetAccountSizes returns the stored size of the record at each offset in
// sortedOffsets (which must be ascending and each a valid record start);
// an offset that fails to parse yields size 0 at that position.
func (av *AppendVec) GetAccountSizes(sortedOffsets []uint64) []uint64 {
	sizes := make([]uint64, len(sortedOffsets))
	length := atomic.LoadUint64(&av.currentLen)
	for i, offset := range sortedOffsets {
		if offset+uint64(recordHeaderSize) > length {
			continue
		}
		meta := decodeStoredMeta(av.mm[offset : offset+storedMetaSize])
		size := recordSize(meta.DataLen)
		if size == 0 || offset+size > length {
			continue
		}
		sizes[i] = size
	}
	return sizes
}
