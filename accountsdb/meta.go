package accountsdb

import "encoding/binary"

// Fixed on-disk sizes for the AppendVec record header fields (spec.md §3.1).
// Every record is: StoredMeta | AccountMeta | Hash | data | padding-to-8.
const (
	storedMetaSize  = 8 + 8 + 32   // write_version, data_len, pubkey
	accountMetaSize = 8 + 8 + 32 + 8 // lamports, rent_epoch, owner, executable(+pad)
	hashSize        = 32
	recordHeaderSize = storedMetaSize + accountMetaSize + hashSize
)

// StoredMeta is the first fixed-layout header of an AppendVec record.
// WriteVersion is carried for cluster-wide compatibility but never
// consulted by this package; it is obsolete bookkeeping per spec.md §3.1.
type StoredMeta struct {
	WriteVersion uint64
	DataLen      uint64
	Pubkey       Pubkey
}

func (m StoredMeta) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], m.WriteVersion)
	binary.LittleEndian.PutUint64(buf[8:16], m.DataLen)
	copy(buf[16:48], m.Pubkey[:])
}

func decodeStoredMeta(buf []byte) StoredMeta {
	var m StoredMeta
	m.WriteVersion = binary.LittleEndian.Uint64(buf[0:8])
	m.DataLen = binary.LittleEndian.Uint64(buf[8:16])
	copy(m.Pubkey[:], buf[16:48])
	return m
}

// AccountMeta is the second fixed-layout header of an AppendVec record.
type AccountMeta struct {
	Lamports   uint64
	RentEpoch  uint64
	Owner      Pubkey
	Executable bool
}

func (m AccountMeta) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], m.Lamports)
	binary.LittleEndian.PutUint64(buf[8:16], m.RentEpoch)
	copy(buf[16:48], m.Owner[:])
	if m.Executable {
		buf[48] = 1
	} else {
		buf[48] = 0
	}
	// buf[49:56] is alignment padding, left zeroed.
}

func decodeAccountMeta(buf []byte) AccountMeta {
	var m AccountMeta
	m.Lamports = binary.LittleEndian.Uint64(buf[0:8])
	m.RentEpoch = binary.LittleEndian.Uint64(buf[8:16])
	copy(m.Owner[:], buf[16:48])
	m.Executable = buf[48] != 0
	return m
}

// recordSize returns the 8-byte-aligned total size of a record holding
// dataLen bytes of account data (spec.md §3.1 invariant).
func recordSize(dataLen uint64) uint64 {
	return align8(uint64(recordHeaderSize) + dataLen)
}

// StoredAccountMeta is a borrowed view into one record of an AppendVec's
// mmap, or into the decompressed buffers of a Tiered file. It must never
// outlive the file it was read from (spec.md §3.3/§9).
type StoredAccountMeta struct {
	Pubkey      Pubkey
	Lamports    uint64
	Owner       Pubkey
	Executable  bool
	RentEpoch   uint64
	Data        []byte
	AccountHash Hash
	StoredSize  uint64
	Offset      uint64
}

// ReadableAccount is the minimal capability StorableAccounts needs from
// whatever concrete account type a caller hands in (spec.md §4.5).
type ReadableAccount interface {
	GetLamports() uint64
	GetOwner() Pubkey
	GetExecutable() bool
	GetRentEpoch() uint64
	GetData() []byte
}

// GetLamports implements ReadableAccount.
func (s *StoredAccountMeta) GetLamports() uint64 { return s.Lamports }

// GetOwner implements ReadableAccount.
func (s *StoredAccountMeta) GetOwner() Pubkey { return s.Owner }

// GetExecutable implements ReadableAccount.
func (s *StoredAccountMeta) GetExecutable() bool { return s.Executable }

// GetRentEpoch implements ReadableAccount.
func (s *StoredAccountMeta) GetRentEpoch() uint64 { return s.RentEpoch }

// GetData implements ReadableAccount.
func (s *StoredAccountMeta) GetData() []byte { return s.Data }

// AccountData is a simple value-type ReadableAccount, used by callers that
// hold accounts in memory rather than borrowed from a file (e.g. the
// classic pair-list StorableAccounts shape).
type AccountData struct {
	Lamports   uint64
	Owner      Pubkey
	Executable bool
	RentEpoch  uint64
	Data       []byte
}

// GetLamports implements ReadableAccount.
func (a *AccountData) GetLamports() uint64 { return a.Lamports }

// GetOwner implements ReadableAccount.
func (a *AccountData) GetOwner() Pubkey { return a.Owner }

// GetExecutable implements ReadableAccount.
func (a *AccountData) GetExecutable() bool { return a.Executable }

// GetRentEpoch implements ReadableAccount.
func (a *AccountData) GetRentEpoch() uint64 { return a.RentEpoch }

// GetData implements ReadableAccount.
func (a *AccountData) GetData() []byte { return a.Data }

// StoredAccountInfo is what a writer returns to the caller's index:
// the byte offset (always in byte units after façade translation) and
// the stored size of the record (spec.md §3.3).
type StoredAccountInfo struct {
	Offset uint64
	Size   uint64
}
