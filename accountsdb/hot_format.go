package accountsdb

import "encoding/binary"

// hotFormatMagic tags a sealed Tiered/Hot file so OpenHotAccountsFile can
// tell it apart from an AppendVec at a glance (spec.md §3.2).
const hotFormatMagic uint64 = 0x686f745f76316621 // "hot_v1f!"

const hotFormatVersion uint32 = 1

// Compression tags stored in the footer.
const (
	hotCompressionNone   uint8 = 0
	hotCompressionSnappy uint8 = 1
)

// hotIndexEntrySize is deliberately 8 bytes: a reduced offset i addresses
// index entry i, and i*8 is simultaneously that entry's byte position
// within the index block and the byte offset AccountsFile exposes to
// callers outside this package (spec.md §3.4's reduced-offset law).
const hotIndexEntrySize = 8

// hotIndexEntry locates one account's address and meta record.
type hotIndexEntry struct {
	AddressIndex uint32
	MetaOffset   uint32
}

func (e hotIndexEntry) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], e.AddressIndex)
	binary.LittleEndian.PutUint32(buf[4:8], e.MetaOffset)
}

func decodeHotIndexEntry(buf []byte) hotIndexEntry {
	return hotIndexEntry{
		AddressIndex: binary.LittleEndian.Uint32(buf[0:4]),
		MetaOffset:   binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// hotAccountMetaSize is the fixed on-disk size of hotAccountMeta.
const hotAccountMetaSize = 4 + 4 + 8 + 8 + 1 + 7 + 8 + 8 + 8

// hotAccountMeta is the fixed-layout per-account record in the meta
// block. The address and hash are not duplicated here: the address comes
// from the address table (via the index entry), and Tiered files elide
// per-account hashes entirely (spec.md §4.2), so readers get ZeroHash.
type hotAccountMeta struct {
	OwnerIndex uint32
	Lamports   uint64
	RentEpoch  uint64
	Executable bool
	DataOffset uint64
	DataLen    uint64 // decompressed length
	StoredLen  uint64 // on-disk length (== DataLen if uncompressed)
}

func (m hotAccountMeta) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], m.OwnerIndex)
	// buf[4:8] padding
	binary.LittleEndian.PutUint64(buf[8:16], m.Lamports)
	binary.LittleEndian.PutUint64(buf[16:24], m.RentEpoch)
	if m.Executable {
		buf[24] = 1
	} else {
		buf[24] = 0
	}
	// buf[25:32] padding
	binary.LittleEndian.PutUint64(buf[32:40], m.DataOffset)
	binary.LittleEndian.PutUint64(buf[40:48], m.DataLen)
	binary.LittleEndian.PutUint64(buf[48:56], m.StoredLen)
}

func decodeHotAccountMeta(buf []byte) hotAccountMeta {
	var m hotAccountMeta
	m.OwnerIndex = binary.LittleEndian.Uint32(buf[0:4])
	m.Lamports = binary.LittleEndian.Uint64(buf[8:16])
	m.RentEpoch = binary.LittleEndian.Uint64(buf[16:24])
	m.Executable = buf[24] != 0
	m.DataOffset = binary.LittleEndian.Uint64(buf[32:40])
	m.DataLen = binary.LittleEndian.Uint64(buf[40:48])
	m.StoredLen = binary.LittleEndian.Uint64(buf[48:56])
	return m
}

// hotFooterSize is the fixed trailing footer every sealed Tiered file
// ends with, naming the byte range of each block so a reader can mmap
// once and slice directly (grounded on the concatenated-streams layout
// of InvisibleSymbol-go-ethereum's history.go).
const hotFooterSize = 8 + 4 + 1 + 3 + 4 + 4 + 8*12

type hotFooter struct {
	Version      uint32
	Compression  uint8
	NumAccounts  uint32
	DataOffset   uint64
	DataLen      uint64
	MetaOffset   uint64
	MetaLen      uint64
	OwnersOffset uint64
	OwnersLen    uint64
	AddrOffset   uint64
	AddrLen      uint64
	IndexOffset  uint64
	IndexLen     uint64
	BloomOffset  uint64
	BloomLen     uint64
}

func (f hotFooter) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], hotFormatMagic)
	binary.LittleEndian.PutUint32(buf[8:12], f.Version)
	buf[12] = f.Compression
	binary.LittleEndian.PutUint32(buf[16:20], f.NumAccounts)
	off := 24
	fields := []uint64{
		f.DataOffset, f.DataLen,
		f.MetaOffset, f.MetaLen,
		f.OwnersOffset, f.OwnersLen,
		f.AddrOffset, f.AddrLen,
		f.IndexOffset, f.IndexLen,
		f.BloomOffset, f.BloomLen,
	}
	for _, v := range fields {
		binary.LittleEndian.PutUint64(buf[off:off+8], v)
		off += 8
	}
}

func decodeHotFooter(buf []byte) (hotFooter, bool) {
	var f hotFooter
	if len(buf) != hotFooterSize {
		return f, false
	}
	if binary.LittleEndian.Uint64(buf[0:8]) != hotFormatMagic {
		return f, false
	}
	f.Version = binary.LittleEndian.Uint32(buf[8:12])
	f.Compression = buf[12]
	f.NumAccounts = binary.LittleEndian.Uint32(buf[16:20])
	off := 24
	vals := make([]uint64, 12)
	for i := range vals {
		vals[i] = binary.LittleEndian.Uint64(buf[off : off+8])
		off += 8
	}
	f.DataOffset, f.DataLen = vals[0], vals[1]
	f.MetaOffset, f.MetaLen = vals[2], vals[3]
	f.OwnersOffset, f.OwnersLen = vals[4], vals[5]
	f.AddrOffset, f.AddrLen = vals[6], vals[7]
	f.IndexOffset, f.IndexLen = vals[8], vals[9]
	f.BloomOffset, f.BloomLen = vals[10], vals[11]
	return f, true
}
