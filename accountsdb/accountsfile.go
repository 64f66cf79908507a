package accountsdb

import "fmt"

// AccountsFile is the tagged-union façade over the two concrete backends.
// Every method operates in byte-offset units; Tiered's native reduced
// offset (a u32 index-entry count) is translated at this boundary only —
// reduced = byteOffset/8 going in, byteOffset = reduced*8 coming out
// (spec.md §3.4, §4.3).
type AccountsFile struct {
	provider ProviderKind
	av       *AppendVec
	hot      *HotAccountsFile
}

// FileName returns the canonical on-disk name for a (slot, id) account
// file, matching the original accounts-db's "<slot>.<id>" convention.
func FileName(slot Slot, id uint64) string {
	return fmt.Sprintf("%d.%d", slot, id)
}

// NewAppendVecFile wraps a freshly created AppendVec in the façade.
func NewAppendVecFile(av *AppendVec) *AccountsFile {
	return &AccountsFile{provider: ProviderAppendVec, av: av}
}

// NewHotAccountsFile wraps an opened Tiered file in the façade.
func NewHotAccountsFile(h *HotAccountsFile) *AccountsFile {
	return &AccountsFile{provider: ProviderHotStorage, hot: h}
}

// Provider reports which concrete backend this façade wraps.
func (a *AccountsFile) Provider() ProviderKind { return a.provider }

// toReduced converts a façade byte offset into Tiered's native reduced
// offset. Callers must only invoke this when Provider() == ProviderHotStorage.
func toReduced(byteOffset uint64) uint32 {
	return uint32(byteOffset / hotIndexEntrySize)
}

func fromReduced(reduced uint32) uint64 {
	return uint64(reduced) * hotIndexEntrySize
}

// GetAccount returns the account at byteOffset and the byte offset to
// continue scanning from, dispatching to whichever backend this façade
// wraps and translating Tiered's reduced offsets transparently.
func (a *AccountsFile) GetAccount(byteOffset uint64) (acc StoredAccountMeta, nextOffset uint64, ok bool) {
	switch a.provider {
	case ProviderAppendVec:
		return a.av.GetAccount(byteOffset)
	case ProviderHotStorage:
		acc, next, ok := a.hot.GetAccount(toReduced(byteOffset))
		return acc, fromReduced(next), ok
	default:
		return StoredAccountMeta{}, 0, false
	}
}

// AccountMatchesOwners is the owner-only fast path, dispatched to whichever
// backend this façade wraps.
func (a *AccountsFile) AccountMatchesOwners(byteOffset uint64, owners []Pubkey) (int, OwnerMatchResult) {
	switch a.provider {
	case ProviderAppendVec:
		return a.av.AccountMatchesOwners(byteOffset, owners)
	case ProviderHotStorage:
		return a.hot.AccountMatchesOwners(toReduced(byteOffset), owners)
	default:
		return 0, OwnerMatchUnableToLoad
	}
}

// ScanIndex walks every record, yielding (pubkey, byteOffset, size).
func (a *AccountsFile) ScanIndex(cb func(pubkey Pubkey, offset uint64, size uint64)) {
	switch a.provider {
	case ProviderAppendVec:
		a.av.ScanIndex(cb)
	case ProviderHotStorage:
		a.hot.ScanIndex(func(pubkey Pubkey, reduced uint32) {
			cb(pubkey, fromReduced(reduced), hotAccountMetaSize)
		})
	}
}

// ScanPubkeys walks every record, yielding only the pubkey.
func (a *AccountsFile) ScanPubkeys(cb func(pubkey Pubkey)) {
	a.ScanIndex(func(pubkey Pubkey, _ uint64, _ uint64) { cb(pubkey) })
}

// Accounts returns every record from byteOffset to the end of the file.
func (a *AccountsFile) Accounts(byteOffset uint64) []StoredAccountMeta {
	switch a.provider {
	case ProviderAppendVec:
		return a.av.Accounts(byteOffset)
	case ProviderHotStorage:
		return a.hot.Accounts(toReduced(byteOffset))
	default:
		return nil
	}
}

// GetAccountSizes returns stored sizes for an ascending list of byte
// offsets. Only meaningful for AppendVec, whose records vary in size;
// Tiered meta records are fixed-size, so this returns hotAccountMetaSize
// for every valid offset.
func (a *AccountsFile) GetAccountSizes(sortedOffsets []uint64) []uint64 {
	switch a.provider {
	case ProviderAppendVec:
		return a.av.GetAccountSizes(sortedOffsets)
	case ProviderHotStorage:
		sizes := make([]uint64, len(sortedOffsets))
		for i, off := range sortedOffsets {
			if toReduced(off) < a.hot.Len() {
				sizes[i] = hotAccountMetaSize
			}
		}
		return sizes
	default:
		return nil
	}
}

// Len returns the published length, in façade byte-offset units.
func (a *AccountsFile) Len() uint64 {
	switch a.provider {
	case ProviderAppendVec:
		return a.av.Len()
	case ProviderHotStorage:
		return fromReduced(a.hot.Len())
	default:
		return 0
	}
}

// IsEmpty reports whether the file holds zero accounts.
func (a *AccountsFile) IsEmpty() bool { return a.Len() == 0 }

// Capacity returns the file's capacity in façade byte-offset units.
func (a *AccountsFile) Capacity() uint64 {
	switch a.provider {
	case ProviderAppendVec:
		return a.av.Capacity()
	case ProviderHotStorage:
		return fromReduced(a.hot.Capacity())
	default:
		return 0
	}
}

// AppendAccounts is only supported on an AppendVec-backed façade; a
// Tiered file is sealed once by SealHotFile and never appended to again.
// Invoking it on a Tiered-backed façade is a programming error, distinct
// from the normal "this file is full" signal (ok=false): it returns
// ErrUnsupported rather than silently reporting capacity exhaustion
// (errs.go's own doc comment for ErrUnsupported names this exact case).
func (a *AccountsFile) AppendAccounts(accounts *StorableAccountsWithHashes, skip int) ([]StoredAccountInfo, bool, error) {
	if a.provider != ProviderAppendVec {
		return nil, false, ErrUnsupported
	}
	infos, ok := a.av.AppendAccounts(accounts, skip)
	return infos, ok, nil
}

// DataForArchive returns the byte stream spec.md §6's archive contract
// expects, dispatched to whichever backend this façade wraps.
func (a *AccountsFile) DataForArchive() []byte {
	switch a.provider {
	case ProviderAppendVec:
		return a.av.DataForArchive()
	case ProviderHotStorage:
		return a.hot.DataForArchive()
	default:
		return nil
	}
}

// Close releases the underlying backend's resources.
func (a *AccountsFile) Close() error {
	switch a.provider {
	case ProviderAppendVec:
		return a.av.Close()
	case ProviderHotStorage:
		return a.hot.Close()
	default:
		return nil
	}
}
