package accountsdb

import (
	"bytes"
	"hash/fnv"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/golang/snappy"
	"github.com/holiman/bloomfilter/v2"
)

// SealHotFile writes a complete, immutable Tiered/Hot file at path in one
// pass (spec.md §3.2, §4.2): accounts are written in the order the
// StorableAccounts batch yields them, owners are deduplicated into a
// shared table, a Bloom filter over those owners is built for the fast
// matching path (§11.3), and the data block is optionally snappy
// compressed per account (§11.2). There is no incremental append: a
// Tiered file is produced once, from a complete batch, and never
// reopened for writing (spec.md §4.2's "sealed" invariant).
//
// It returns one StoredAccountInfo per account with Offset set to the
// *reduced* IndexOffset (spec.md §4.3) — a slot-local sequential id, not
// a byte offset. Store.SealTieredFile translates these to byte offsets via
// reduced*8 before the result reaches outside code; the AccountsFile
// façade has no seal path of its own, so callers that invoke SealHotFile
// directly must apply that translation themselves before treating Offset
// as a byte offset into the façade.
// SealHotFile ignores hashing entirely: the Tiered format elides
// per-account hashes (spec.md §4.2), so it reads straight from accounts
// rather than wrapping it in a StorableAccountsWithHashes — a wrapper
// whose only job is gating access to a hash value this writer never
// looks at. The bytes stored are always accounts.Account(i)'s real data;
// zero-lamport substitution is a read-side view, never applied here.
func SealHotFile(path string, accounts StorableAccounts, compress bool) ([]StoredAccountInfo, error) {
	n := accounts.Len()

	ownerIndex := make(map[Pubkey]uint32)
	var owners []Pubkey
	var addresses []Pubkey
	metas := make([]hotAccountMeta, n)
	var dataBlock bytes.Buffer
	infos := make([]StoredAccountInfo, n)

	for i := 0; i < n; i++ {
		pubkey := accounts.Pubkey(i)
		account := accounts.Account(i)

		owner := account.GetOwner()
		oi, ok := ownerIndex[owner]
		if !ok {
			oi = uint32(len(owners))
			owners = append(owners, owner)
			ownerIndex[owner] = oi
		}

		raw := account.GetData()
		payload := raw
		if compress {
			payload = snappy.Encode(nil, raw)
		}

		dataOffset := uint64(dataBlock.Len())
		dataBlock.Write(payload)

		metas[i] = hotAccountMeta{
			OwnerIndex: oi,
			Lamports:   account.GetLamports(),
			RentEpoch:  account.GetRentEpoch(),
			Executable: account.GetExecutable(),
			DataOffset: dataOffset,
			DataLen:    uint64(len(raw)),
			StoredLen:  uint64(len(payload)),
		}
		addresses = append(addresses, pubkey)
		infos[i] = StoredAccountInfo{
			Offset: uint64(i),
			Size:   hotAccountMetaSize,
		}
	}

	filter, err := bloomfilter.NewOptimal(uint64(len(owners))+1, 0.01)
	if err != nil {
		return nil, err
	}
	for _, o := range owners {
		filter.AddHash(fnvHash(o))
	}

	metaBlock := make([]byte, n*hotAccountMetaSize)
	for i, m := range metas {
		m.encode(metaBlock[i*hotAccountMetaSize : (i+1)*hotAccountMetaSize])
	}

	indexBlock := make([]byte, n*hotIndexEntrySize)
	for i := range metas {
		e := hotIndexEntry{AddressIndex: uint32(i), MetaOffset: uint32(i * hotAccountMetaSize)}
		e.encode(indexBlock[i*hotIndexEntrySize : (i+1)*hotIndexEntrySize])
	}

	ownersBlock := make([]byte, len(owners)*32)
	for i, o := range owners {
		copy(ownersBlock[i*32:(i+1)*32], o[:])
	}

	addrBlock := make([]byte, len(addresses)*32)
	for i, a := range addresses {
		copy(addrBlock[i*32:(i+1)*32], a[:])
	}

	var bloomBuf bytes.Buffer
	if _, err := filter.WriteTo(&bloomBuf); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	dataOff := uint64(0)
	out.Write(dataBlock.Bytes())
	metaOff := uint64(out.Len())
	out.Write(metaBlock)
	ownersOff := uint64(out.Len())
	out.Write(ownersBlock)
	addrOff := uint64(out.Len())
	out.Write(addrBlock)
	indexOff := uint64(out.Len())
	out.Write(indexBlock)
	bloomOff := uint64(out.Len())
	out.Write(bloomBuf.Bytes())

	compressionTag := hotCompressionNone
	if compress {
		compressionTag = hotCompressionSnappy
	}
	footer := hotFooter{
		Version:      hotFormatVersion,
		Compression:  compressionTag,
		NumAccounts:  uint32(n),
		DataOffset:   dataOff,
		DataLen:      uint64(dataBlock.Len()),
		MetaOffset:   metaOff,
		MetaLen:      uint64(len(metaBlock)),
		OwnersOffset: ownersOff,
		OwnersLen:    uint64(len(ownersBlock)),
		AddrOffset:   addrOff,
		AddrLen:      uint64(len(addrBlock)),
		IndexOffset:  indexOff,
		IndexLen:     uint64(len(indexBlock)),
		BloomOffset:  bloomOff,
		BloomLen:     uint64(bloomBuf.Len()),
	}
	footerBuf := make([]byte, hotFooterSize)
	footer.encode(footerBuf)
	out.Write(footerBuf)

	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return nil, ioError("write", path, err)
	}
	log.Info("accountsdb: sealed tiered file", "path", path, "accounts", n, "bytes", out.Len())
	return infos, nil
}

func fnvHash(p Pubkey) uint64 {
	h := fnv.New64a()
	h.Write(p[:])
	return h.Sum64()
}
