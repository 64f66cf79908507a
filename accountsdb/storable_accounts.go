package accountsdb

// StorableAccounts is the zero-copy ingestion contract accepted by
// append_accounts (spec.md §4.5). Three concrete types implement it: a
// classic (pubkey, account) pair list, a list where each entry also
// carries its own slot, and a bulk "moving slots" relocation batch —
// callers choose the shape that matches what they already have in
// memory rather than materializing a new slice to satisfy the writer.
type StorableAccounts interface {
	// Len returns the number of accounts in the batch.
	Len() int
	// Pubkey returns the address of the i'th account.
	Pubkey(i int) Pubkey
	// Account returns the i'th account's data, verbatim — callers that
	// want the zero-lamport substitution must go through
	// AccountDefaultIfZeroLamport instead; nothing derives it implicitly.
	Account(i int) ReadableAccount
	// Slot returns the slot the i'th account is associated with. Callers
	// whose batch is single-slot may return the same value for every i.
	Slot(i int) Slot
	// TargetSlot is the slot new records are written under.
	TargetSlot() Slot
	// ContainsMultipleSlots reports whether Slot(i) varies across the
	// batch, letting append_accounts skip a redundant is-same-slot check
	// per record (spec.md §4.5).
	ContainsMultipleSlots() bool
	// HasHash reports whether Hash(i) returns a real, previously computed
	// hash rather than being undefined to call.
	HasHash() bool
	// Hash returns the i'th account's previously computed hash. Only
	// valid when HasHash() is true.
	Hash(i int) Hash
	// IncludeSlotInHash is the hashing-policy tag spec.md §4.5 attaches
	// to every StorableAccounts batch: whether the account hash a
	// caller computes from this batch must fold in the slot as well as
	// the account bytes.
	IncludeSlotInHash() bool
	// AccountDefaultIfZeroLamport invokes cb with the i'th account's
	// real data, or a canonical empty substitute when lamports == 0
	// (spec.md §4.5). This is a caller-opt-in normalized *view*; it never
	// changes what Account(i) returns or what gets written to disk.
	AccountDefaultIfZeroLamport(i int, cb func(ReadableAccount))
}

// accountDefaultIfZeroLamport returns acc unchanged if it has nonzero
// lamports, and a canonical empty substitute otherwise: zero lamports,
// no data, the default owner, not executable, rent_epoch 0. This backs
// StorableAccounts.AccountDefaultIfZeroLamport; it is never applied
// automatically on the write path (spec.md §4.5's substitution is a
// view a caller asks for, not a storage-time transform — the real bytes
// are always what gets written).
func accountDefaultIfZeroLamport(acc ReadableAccount) ReadableAccount {
	if acc == nil || acc.GetLamports() == 0 {
		return &AccountData{}
	}
	return acc
}

// pairListAccounts is the classic StorableAccounts shape: a parallel
// (pubkeys, accounts) list for a single slot.
type pairListAccounts struct {
	slot               Slot
	pubkeys            []Pubkey
	accounts           []ReadableAccount
	includeSlotInHash  bool
}

// NewStorableAccountsFromPairs builds a single-slot StorableAccounts from
// parallel pubkey/account slices. len(pubkeys) must equal len(accounts).
// This shape never carries a precomputed hash (HasHash is always false).
func NewStorableAccountsFromPairs(slot Slot, pubkeys []Pubkey, accounts []ReadableAccount, includeSlotInHash bool) StorableAccounts {
	return &pairListAccounts{slot: slot, pubkeys: pubkeys, accounts: accounts, includeSlotInHash: includeSlotInHash}
}

func (p *pairListAccounts) Len() int                     { return len(p.pubkeys) }
func (p *pairListAccounts) Pubkey(i int) Pubkey          { return p.pubkeys[i] }
func (p *pairListAccounts) Account(i int) ReadableAccount { return p.accounts[i] }
func (p *pairListAccounts) Slot(i int) Slot               { return p.slot }
func (p *pairListAccounts) TargetSlot() Slot              { return p.slot }
func (p *pairListAccounts) ContainsMultipleSlots() bool   { return false }
func (p *pairListAccounts) HasHash() bool                 { return false }
func (p *pairListAccounts) Hash(i int) Hash {
	panic("accountsdb: Hash called on a StorableAccounts batch with HasHash() == false")
}
func (p *pairListAccounts) IncludeSlotInHash() bool { return p.includeSlotInHash }
func (p *pairListAccounts) AccountDefaultIfZeroLamport(i int, cb func(ReadableAccount)) {
	cb(accountDefaultIfZeroLamport(p.Account(i)))
}

// slottedAccount pairs one already-stored account (a borrowed
// StoredAccountMeta, which genuinely carries a computed hash) with the
// slot it was originally written under — spec.md §4.5 shape #2:
// "(&StoredAccountMeta, Slot)".
type slottedAccount struct {
	slot Slot
	meta StoredAccountMeta
}

// slottedListAccounts is StorableAccounts shape #2 from spec.md §4.5:
// already-stored accounts being relocated, each carrying its own source
// slot (which may differ account-by-account).
type slottedListAccounts struct {
	target            Slot
	entries           []slottedAccount
	includeSlotInHash bool
}

// NewStorableAccountsWithSlots builds a StorableAccounts batch whose
// entries each carry their own originating slot, for relocating accounts
// that don't all share one source slot. Because each entry is a borrowed
// StoredAccountMeta, this shape's HasHash is always true.
func NewStorableAccountsWithSlots(targetSlot Slot, entries []slottedAccount, includeSlotInHash bool) StorableAccounts {
	return &slottedListAccounts{target: targetSlot, entries: entries, includeSlotInHash: includeSlotInHash}
}

func (s *slottedListAccounts) Len() int            { return len(s.entries) }
func (s *slottedListAccounts) Pubkey(i int) Pubkey { return s.entries[i].meta.Pubkey }
func (s *slottedListAccounts) Account(i int) ReadableAccount {
	return &s.entries[i].meta
}
func (s *slottedListAccounts) Slot(i int) Slot  { return s.entries[i].slot }
func (s *slottedListAccounts) TargetSlot() Slot { return s.target }
func (s *slottedListAccounts) ContainsMultipleSlots() bool {
	for _, e := range s.entries {
		if e.slot != s.entries[0].slot {
			return true
		}
	}
	return false
}
func (s *slottedListAccounts) HasHash() bool { return true }
func (s *slottedListAccounts) Hash(i int) Hash {
	return s.entries[i].meta.AccountHash
}
func (s *slottedListAccounts) IncludeSlotInHash() bool { return s.includeSlotInHash }
func (s *slottedListAccounts) AccountDefaultIfZeroLamport(i int, cb func(ReadableAccount)) {
	cb(accountDefaultIfZeroLamport(s.Account(i)))
}

// movingSlotsAccounts is StorableAccounts shape #3 from spec.md §4.5: a
// bulk move where every source account shares one old_slot, relocated
// into one target_slot. Unlike slottedListAccounts, Slot(i) is constant
// across the whole batch.
type movingSlotsAccounts struct {
	oldSlot           Slot
	target            Slot
	pubkeys           []Pubkey
	accounts          []ReadableAccount
	includeSlotInHash bool
}

// NewStorableAccountsMovingSlots builds a bulk-relocation batch: every
// account originated at oldSlot and is written into targetSlot's file
// (spec.md §4.5 "moving slots" value type, literal scenario 6). This
// shape never carries a precomputed hash (HasHash is always false).
func NewStorableAccountsMovingSlots(oldSlot, targetSlot Slot, pubkeys []Pubkey, accounts []ReadableAccount, includeSlotInHash bool) StorableAccounts {
	return &movingSlotsAccounts{oldSlot: oldSlot, target: targetSlot, pubkeys: pubkeys, accounts: accounts, includeSlotInHash: includeSlotInHash}
}

func (m *movingSlotsAccounts) Len() int                     { return len(m.pubkeys) }
func (m *movingSlotsAccounts) Pubkey(i int) Pubkey          { return m.pubkeys[i] }
func (m *movingSlotsAccounts) Account(i int) ReadableAccount { return m.accounts[i] }
func (m *movingSlotsAccounts) Slot(i int) Slot               { return m.oldSlot }
func (m *movingSlotsAccounts) TargetSlot() Slot              { return m.target }
func (m *movingSlotsAccounts) ContainsMultipleSlots() bool   { return false }
func (m *movingSlotsAccounts) HasHash() bool                 { return false }
func (m *movingSlotsAccounts) Hash(i int) Hash {
	panic("accountsdb: Hash called on a StorableAccounts batch with HasHash() == false")
}
func (m *movingSlotsAccounts) IncludeSlotInHash() bool { return m.includeSlotInHash }
func (m *movingSlotsAccounts) AccountDefaultIfZeroLamport(i int, cb func(ReadableAccount)) {
	cb(accountDefaultIfZeroLamport(m.Account(i)))
}
