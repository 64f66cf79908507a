package accountsdb

import (
	"bytes"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/golang/snappy"
	"github.com/holiman/bloomfilter/v2"
)

var (
	ownerFastPathHits  = metrics.NewRegisteredCounter("accountsdb/hot/owner_fastpath_hits", nil)
	ownerFastPathMiss  = metrics.NewRegisteredCounter("accountsdb/hot/owner_fastpath_misses", nil)
)

// HotAccountsFile is a read-only, mmap-backed view of a sealed Tiered
// file. Every public method is addressed by reduced offset: a u32 that,
// multiplied by 8, is the byte offset AccountsFile hands callers outside
// this package (spec.md §3.4).
type HotAccountsFile struct {
	path   string
	file   *os.File
	mm     mmap.MMap
	footer hotFooter
	bloom  *bloomfilter.Filter
}

// OpenHotAccountsFile mmaps path and parses its footer. It returns
// ErrMalformed if the trailing magic doesn't match hotFormatMagic.
func OpenHotAccountsFile(path string) (*HotAccountsFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ioError("stat", path, err)
	}
	if st.Size() < hotFooterSize {
		f.Close()
		return nil, fmt.Errorf("%w: %s shorter than footer", ErrMalformed, path)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, ioError("mmap", path, err)
	}
	footerBuf := m[len(m)-hotFooterSize:]
	footer, ok := decodeHotFooter(footerBuf)
	if !ok {
		m.Unmap()
		f.Close()
		return nil, fmt.Errorf("%w: %s bad footer magic", ErrMalformed, path)
	}

	hf := &HotAccountsFile{path: path, file: f, mm: m, footer: footer}
	if footer.BloomLen > 0 {
		r := bytes.NewReader(m[footer.BloomOffset : footer.BloomOffset+footer.BloomLen])
		filter, _, err := bloomfilter.ReadFrom(r)
		if err == nil {
			hf.bloom = filter
		}
	}
	return hf, nil
}

// Len returns the number of accounts sealed into this file.
func (h *HotAccountsFile) Len() uint32 { return h.footer.NumAccounts }

// Capacity is the same as Len for a sealed Tiered file: there is no
// reserved, unwritten tail the way AppendVec has (spec.md §4.2).
func (h *HotAccountsFile) Capacity() uint32 { return h.footer.NumAccounts }

func (h *HotAccountsFile) indexEntry(reducedOffset uint32) (hotIndexEntry, bool) {
	if uint64(reducedOffset) >= uint64(h.footer.NumAccounts) {
		return hotIndexEntry{}, false
	}
	start := h.footer.IndexOffset + uint64(reducedOffset)*hotIndexEntrySize
	return decodeHotIndexEntry(h.mm[start : start+hotIndexEntrySize]), true
}

// GetAccount returns the account at reducedOffset and the next reduced
// offset to continue a scan from, or ok=false past the end of the file.
func (h *HotAccountsFile) GetAccount(reducedOffset uint32) (acc StoredAccountMeta, next uint32, ok bool) {
	entry, ok := h.indexEntry(reducedOffset)
	if !ok {
		return StoredAccountMeta{}, 0, false
	}
	meta := decodeHotAccountMeta(h.mm[h.footer.MetaOffset+uint64(entry.MetaOffset) : h.footer.MetaOffset+uint64(entry.MetaOffset)+hotAccountMetaSize])
	var owner Pubkey
	ownerOff := h.footer.OwnersOffset + uint64(meta.OwnerIndex)*32
	copy(owner[:], h.mm[ownerOff:ownerOff+32])
	var addr Pubkey
	addrOff := h.footer.AddrOffset + uint64(entry.AddressIndex)*32
	copy(addr[:], h.mm[addrOff:addrOff+32])

	stored := h.mm[h.footer.DataOffset+meta.DataOffset : h.footer.DataOffset+meta.DataOffset+meta.StoredLen]
	data := stored
	if h.footer.Compression == hotCompressionSnappy {
		decoded, err := snappy.Decode(nil, stored)
		if err != nil {
			return StoredAccountMeta{}, 0, false
		}
		data = decoded
	}
	if meta.DataLen == 0 {
		data = nil
	}

	acc = StoredAccountMeta{
		Pubkey:      addr,
		Lamports:    meta.Lamports,
		Owner:       owner,
		Executable:  meta.Executable,
		RentEpoch:   meta.RentEpoch,
		Data:        data,
		AccountHash: ZeroHash,
		StoredSize:  hotAccountMetaSize,
		Offset:      uint64(reducedOffset) * hotIndexEntrySize,
	}
	return acc, reducedOffset + 1, true
}

// AccountMatchesOwners reports whether the account at reducedOffset's
// owner is among owners, consulting the sealed Bloom filter first: a
// definite miss there skips the meta and owners-table reads entirely (spec.md
// §11.3). The observable result is identical with or without the filter.
func (h *HotAccountsFile) AccountMatchesOwners(reducedOffset uint32, owners []Pubkey) (index int, result OwnerMatchResult) {
	entry, ok := h.indexEntry(reducedOffset)
	if !ok {
		return 0, OwnerMatchUnableToLoad
	}
	if h.bloom != nil {
		anyMaybe := false
		for _, candidate := range owners {
			if h.bloom.ContainsHash(fnvHash(candidate)) {
				anyMaybe = true
				break
			}
		}
		if !anyMaybe {
			ownerFastPathHits.Inc(1)
			return 0, OwnerMatchNone
		}
	}
	ownerFastPathMiss.Inc(1)
	meta := decodeHotAccountMeta(h.mm[h.footer.MetaOffset+uint64(entry.MetaOffset) : h.footer.MetaOffset+uint64(entry.MetaOffset)+hotAccountMetaSize])
	var owner Pubkey
	ownerOff := h.footer.OwnersOffset + uint64(meta.OwnerIndex)*32
	copy(owner[:], h.mm[ownerOff:ownerOff+32])
	for i, candidate := range owners {
		if owner == candidate {
			return i, OwnerMatchFound
		}
	}
	return 0, OwnerMatchNone
}

// ScanIndex walks every account in the file in stored order.
func (h *HotAccountsFile) ScanIndex(cb func(pubkey Pubkey, reducedOffset uint32)) {
	for i := uint32(0); i < h.footer.NumAccounts; i++ {
		entry, _ := h.indexEntry(i)
		var addr Pubkey
		addrOff := h.footer.AddrOffset + uint64(entry.AddressIndex)*32
		copy(addr[:], h.mm[addrOff:addrOff+32])
		cb(addr, i)
	}
}

// ScanPubkeys is ScanIndex without the offsets.
func (h *HotAccountsFile) ScanPubkeys(cb func(pubkey Pubkey)) {
	h.ScanIndex(func(pubkey Pubkey, _ uint32) { cb(pubkey) })
}

// Accounts returns every account from reducedOffset to the end of the file.
func (h *HotAccountsFile) Accounts(reducedOffset uint32) []StoredAccountMeta {
	var out []StoredAccountMeta
	for {
		acc, next, ok := h.GetAccount(reducedOffset)
		if !ok {
			break
		}
		out = append(out, acc)
		reducedOffset = next
	}
	return out
}

// DataForArchive returns the file's full byte contents, for spec.md §6's
// archive contract.
func (h *HotAccountsFile) DataForArchive() []byte {
	return h.mm[:]
}

// Close unmaps the file.
func (h *HotAccountsFile) Close() error {
	if err := h.mm.Unmap(); err != nil {
		return ioError("unmap", h.path, err)
	}
	return h.file.Close()
}
