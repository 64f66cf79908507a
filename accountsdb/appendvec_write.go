package accountsdb

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	appendBytesMeter   = metrics.NewRegisteredMeter("accountsdb/appendvec/bytes", nil)
	appendRecordsMeter = metrics.NewRegisteredMeter("accountsdb/appendvec/records", nil)
)

// AppendAccounts writes accounts[skip:] as a single batch and publishes
// them atomically: either every record in the batch fits and becomes
// visible to readers in one CompareAndSwap of CurrentLen, or none of it
// does. There is no partial-batch publication (spec.md §4.1, §8
// "Capacity boundary").
//
// On success it returns one StoredAccountInfo per written account, in
// the same order as accounts[skip:], plus a trailing entry whose Offset
// is the next append position (spec.md §4.1, literal scenario 2) — that
// last entry's Size is meaningless and must not be passed to GetAccount.
// If skip >= accounts.Len(), nothing is written and it returns (nil, true),
// with no trailing entry.
// On failure (ok=false) the caller is expected to retry the remaining
// accounts against a fresh AppendVec; this is not an error, it is the
// normal "this file is full" signal.
//
// The account bytes written are always the real ones: zero-lamport
// substitution (spec.md §4.5's account_default_if_zero_lamport) is a
// read-side view a caller opts into, never an automatic storage-time
// transform, so a closed account's true owner/data/rent_epoch survive
// on disk for any reader that wants them.
func (av *AppendVec) AppendAccounts(accounts *StorableAccountsWithHashes, skip int) ([]StoredAccountInfo, bool) {
	n := accounts.Len()
	if skip >= n {
		return nil, true
	}

	sizes := make([]uint64, 0, n-skip)
	var total uint64
	for i := skip; i < n; i++ {
		size := recordSize(uint64(len(accounts.Account(i).GetData())))
		sizes = append(sizes, size)
		total += size
	}

	av.writeMu.Lock()
	defer av.writeMu.Unlock()

	start := atomic.LoadUint64(&av.currentLen)
	if start+total > av.capacity {
		return nil, false
	}

	infos := make([]StoredAccountInfo, 0, n-skip)
	offset := start
	for idx, i := 0, skip; i < n; idx, i = idx+1, i+1 {
		var pubkey Pubkey
		var account ReadableAccount
		var hash Hash
		accounts.Get(i, func(pk Pubkey, acc ReadableAccount, h Hash) {
			pubkey, account, hash = pk, acc, h
		})
		size := sizes[idx]
		av.writeRecord(offset, pubkey, account, hash)
		infos = append(infos, StoredAccountInfo{Offset: offset, Size: size})
		offset += size
	}

	if !atomic.CompareAndSwapUint64(&av.currentLen, start, start+total) {
		// Single-writer discipline (enforced by writeMu) means this CAS
		// cannot lose a race; a failure here means another writer bypassed
		// the lock, which is a programming error in the caller.
		panic("accountsdb: concurrent writer bypassed AppendVec.writeMu")
	}

	infos = append(infos, StoredAccountInfo{Offset: start + total})

	appendBytesMeter.Mark(int64(total))
	appendRecordsMeter.Mark(int64(n - skip))
	log.Debug("accountsdb: appended accounts", "path", av.path, "count", n-skip, "bytes", total)
	return infos, true
}

// writeRecord encodes one record's header, hash, and data at offset. The
// caller guarantees offset+recordSize(len(data)) <= av.capacity.
func (av *AppendVec) writeRecord(offset uint64, pubkey Pubkey, account ReadableAccount, hash Hash) {
	data := account.GetData()
	meta := StoredMeta{WriteVersion: 0, DataLen: uint64(len(data)), Pubkey: pubkey}
	am := AccountMeta{
		Lamports:   account.GetLamports(),
		RentEpoch:  account.GetRentEpoch(),
		Owner:      account.GetOwner(),
		Executable: account.GetExecutable(),
	}

	buf := av.mm[offset:]
	meta.encode(buf[0:storedMetaSize])
	am.encode(buf[storedMetaSize : storedMetaSize+accountMetaSize])
	copy(buf[storedMetaSize+accountMetaSize:storedMetaSize+accountMetaSize+hashSize], hash[:])
	copy(buf[recordHeaderSize:recordHeaderSize+len(data)], data)

	size := recordSize(uint64(len(data)))
	for i := uint64(recordHeaderSize) + uint64(len(data)); i < size; i++ {
		buf[i] = 0
	}
}
