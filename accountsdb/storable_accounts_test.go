package accountsdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountDefaultIfZeroLamport(t *testing.T) {
	t.Parallel()

	nonZero := &AccountData{Lamports: 5, Data: []byte("keep me")}
	require.Same(t, nonZero, accountDefaultIfZeroLamport(nonZero))

	zero := &AccountData{Lamports: 0, Data: []byte("drop me"), Owner: pubkeyFromByte(1)}
	sub := accountDefaultIfZeroLamport(zero)
	require.Equal(t, uint64(0), sub.GetLamports())
	require.Empty(t, sub.GetData())
	require.Equal(t, Pubkey{}, sub.GetOwner())

	require.Equal(t, uint64(0), accountDefaultIfZeroLamport(nil).GetLamports())
}

func TestStorableAccountsWithSlots(t *testing.T) {
	t.Parallel()

	entries := []slottedAccount{
		{slot: 1, meta: StoredAccountMeta{Pubkey: pubkeyFromByte(1), Lamports: 1, AccountHash: Hash{1}}},
		{slot: 2, meta: StoredAccountMeta{Pubkey: pubkeyFromByte(2), Lamports: 2, AccountHash: Hash{2}}},
	}
	batch := NewStorableAccountsWithSlots(9, entries, true)
	require.Equal(t, 2, batch.Len())
	require.Equal(t, Slot(9), batch.TargetSlot())
	require.True(t, batch.ContainsMultipleSlots())
	require.Equal(t, Slot(1), batch.Slot(0))
	require.Equal(t, Slot(2), batch.Slot(1))
	require.True(t, batch.HasHash())
	require.Equal(t, Hash{1}, batch.Hash(0))
	require.Equal(t, Hash{2}, batch.Hash(1))
	require.True(t, batch.IncludeSlotInHash())

	single := NewStorableAccountsWithSlots(1, []slottedAccount{
		{slot: 1, meta: StoredAccountMeta{Pubkey: pubkeyFromByte(1), Lamports: 1}},
	}, false)
	require.False(t, single.ContainsMultipleSlots())
}

// TestStorableAccountsMovingSlots is literal end-to-end scenario 6:
// old_slot=10, target_slot=20, two accounts -> slot(i)==10 for all i,
// target_slot()==20, contains_multiple_slots()==false.
func TestStorableAccountsMovingSlots(t *testing.T) {
	t.Parallel()

	pubkeys := []Pubkey{pubkeyFromByte(1), pubkeyFromByte(2)}
	accounts := []ReadableAccount{&AccountData{Lamports: 1}, &AccountData{Lamports: 2}}
	batch := NewStorableAccountsMovingSlots(10, 20, pubkeys, accounts, false)

	require.Equal(t, 2, batch.Len())
	require.Equal(t, Slot(20), batch.TargetSlot())
	require.False(t, batch.ContainsMultipleSlots())
	for i := 0; i < batch.Len(); i++ {
		require.Equal(t, Slot(10), batch.Slot(i))
	}
	require.False(t, batch.HasHash())
	require.Panics(t, func() { batch.Hash(0) })
}

func TestStorableAccountsWithHashesPanicsOnLengthMismatch(t *testing.T) {
	t.Parallel()
	batch := NewStorableAccountsFromPairs(0, []Pubkey{pubkeyFromByte(1)}, []ReadableAccount{&AccountData{Lamports: 1}}, false)
	require.Panics(t, func() {
		NewStorableAccountsWithHashesAndHashes(batch, nil)
	})
}

func TestStorableAccountsWithHashesRequiresMatchingHasHash(t *testing.T) {
	t.Parallel()

	// batch.HasHash() == false: NewStorableAccountsWithHashes (the
	// already-has-a-hash constructor) must refuse it.
	pairs := NewStorableAccountsFromPairs(0, []Pubkey{pubkeyFromByte(1)}, []ReadableAccount{&AccountData{Lamports: 1}}, false)
	require.Panics(t, func() { NewStorableAccountsWithHashes(pairs) })

	hashed := NewStorableAccountsWithHashesAndHashes(pairs, []Hash{{9}})
	require.True(t, hashed.HasHash())
	hashed.Get(0, func(_ Pubkey, _ ReadableAccount, hash Hash) {
		require.Equal(t, Hash{9}, hash)
	})

	// batch.HasHash() == true: NewStorableAccountsWithHashesAndHashes (the
	// explicit-vector constructor) must refuse it, since the batch already
	// carries its own.
	slotted := NewStorableAccountsWithSlots(1, []slottedAccount{
		{slot: 1, meta: StoredAccountMeta{Pubkey: pubkeyFromByte(1), Lamports: 1, AccountHash: Hash{7}}},
	}, false)
	require.Panics(t, func() { NewStorableAccountsWithHashesAndHashes(slotted, []Hash{{1}}) })

	wrapped := NewStorableAccountsWithHashes(slotted)
	require.True(t, wrapped.HasHash())
	wrapped.Get(0, func(_ Pubkey, _ ReadableAccount, hash Hash) {
		require.Equal(t, Hash{7}, hash)
	})
}
