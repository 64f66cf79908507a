package accountsdb

// StorableAccountsWithHashes pairs a StorableAccounts batch with a hash
// source, for the AppendVec write path. Tiered files elide per-account
// hashes (spec.md §4.2), so SealHotFile takes a bare StorableAccounts
// instead and a caller writing into a Tiered file computes no hashes.
//
// Construction enforces spec.md §4.5/§170-171's preconditions exactly:
// the hash source is either the underlying accounts batch itself (when
// it already has one) or an explicit vector supplied alongside a batch
// that doesn't — never both, never neither. Once constructed, a real
// hash is always available for every index, from one side or the other.
type StorableAccountsWithHashes struct {
	StorableAccounts
	external bool
	hashes   []Hash
}

// NewStorableAccountsWithHashes wraps accounts that already carry their
// own hash (accounts.HasHash() must be true); Get sources the hash from
// accounts.Hash(i). Callers whose batch has no hash source must use
// NewStorableAccountsWithHashesAndHashes instead.
func NewStorableAccountsWithHashes(accounts StorableAccounts) *StorableAccountsWithHashes {
	if !accounts.HasHash() {
		panic("accountsdb: NewStorableAccountsWithHashes requires accounts.HasHash() == true")
	}
	return &StorableAccountsWithHashes{StorableAccounts: accounts}
}

// NewStorableAccountsWithHashesAndHashes wraps accounts that do not carry
// their own hash (accounts.HasHash() must be false) with an explicit
// per-account hash list; len(hashes) must equal accounts.Len(). Callers
// that violate either precondition have a programming error and this
// panics, the same way the original "stored_account_with_slot" contract
// panics on a length mismatch rather than silently truncating (spec.md
// §4.5).
func NewStorableAccountsWithHashesAndHashes(accounts StorableAccounts, hashes []Hash) *StorableAccountsWithHashes {
	if accounts.HasHash() {
		panic("accountsdb: NewStorableAccountsWithHashesAndHashes requires accounts.HasHash() == false")
	}
	if len(hashes) != accounts.Len() {
		panic("accountsdb: hashes length does not match accounts length")
	}
	return &StorableAccountsWithHashes{StorableAccounts: accounts, external: true, hashes: hashes}
}

// HasHash shadows the embedded StorableAccounts.HasHash: once wrapped,
// a real hash is always available (either from the accounts batch or
// from the explicit vector), regardless of what the underlying batch
// alone would report.
func (s *StorableAccountsWithHashes) HasHash() bool { return true }

// Get returns the pubkey, account, and hash for index i, invoking cb with
// them rather than allocating a struct, mirroring the borrow-style access
// pattern used everywhere else in this package. The account returned is
// the real, unsubstituted account — callers that want the zero-lamport
// default view call StorableAccounts.AccountDefaultIfZeroLamport
// themselves; Get never substitutes on their behalf (spec.md §4.5: the
// substitution is a view a caller opts into, not a storage-time
// transform, so the bytes actually written are always the real ones).
func (s *StorableAccountsWithHashes) Get(i int, cb func(pubkey Pubkey, account ReadableAccount, hash Hash)) {
	pubkey := s.Pubkey(i)
	account := s.Account(i)
	var hash Hash
	if s.external {
		hash = s.hashes[i]
	} else {
		hash = s.StorableAccounts.Hash(i)
	}
	cb(pubkey, account, hash)
}
