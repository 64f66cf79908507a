package accountsdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateAppendVecAndScanIndex(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.FileLock = false
	cfg.AppendVecCapacity = 64 * 1024

	store, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	file, err := store.CreateAppendVec(3, 0)
	require.NoError(t, err)

	pubkeys := []Pubkey{pubkeyFromByte(1), pubkeyFromByte(2)}
	accounts := []ReadableAccount{&AccountData{Lamports: 1}, &AccountData{Lamports: 2}}
	batch := NewStorableAccountsFromPairs(3, pubkeys, accounts, false)
	hashed := NewStorableAccountsWithHashesAndHashes(batch, zeroHashes(len(pubkeys)))
	_, ok, err := file.AppendAccounts(hashed, 0)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok := store.Get(3, 0)
	require.True(t, ok)
	require.Same(t, file, got)

	var seen []Pubkey
	store.ScanIndex(1, func(_ *AccountsFile, pubkey Pubkey, _ uint64) {
		seen = append(seen, pubkey)
	})
	require.ElementsMatch(t, pubkeys, seen)
}

func TestStoreSealTieredFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.FileLock = false

	store, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	pubkeys := []Pubkey{pubkeyFromByte(5)}
	accounts := []ReadableAccount{&AccountData{Lamports: 7, Data: []byte("tiered")}}
	batch := NewStorableAccountsFromPairs(8, pubkeys, accounts, false)

	infos, err := store.SealTieredFile(8, 0, batch)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	file, ok := store.Get(8, 0)
	require.True(t, ok)
	require.Equal(t, ProviderHotStorage, file.Provider())

	acc, _, ok := file.GetAccount(0)
	require.True(t, ok)
	require.Equal(t, pubkeys[0], acc.Pubkey)
}

func TestStoreCreateFileDispatchesOnProvider(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.FileLock = false
	cfg.AppendVecCapacity = 64 * 1024

	store, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	pubkeys := []Pubkey{pubkeyFromByte(1)}
	accounts := []ReadableAccount{&AccountData{Lamports: 1, Data: []byte("a")}}
	batch := NewStorableAccountsFromPairs(1, pubkeys, accounts, false)

	file, infos, err := store.CreateFile(1, 0, batch)
	require.NoError(t, err)
	require.Equal(t, ProviderAppendVec, file.Provider())
	require.Len(t, infos, 2) // 1 account + trailing next-offset entry

	cfg.Provider = ProviderHotStorage
	hotStore, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { hotStore.Close() })

	hotFile, hotInfos, err := hotStore.CreateFile(2, 0, batch)
	require.NoError(t, err)
	require.Equal(t, ProviderHotStorage, hotFile.Provider())
	require.Len(t, hotInfos, 1)
}

func TestStoreScanIndexVisitsFilesInSlotOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.FileLock = false
	cfg.AppendVecCapacity = 64 * 1024

	store, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	slots := []Slot{5, 1, 3}
	for _, slot := range slots {
		file, err := store.CreateAppendVec(slot, 0)
		require.NoError(t, err)
		pubkeys := []Pubkey{pubkeyFromByte(byte(slot))}
		accounts := []ReadableAccount{&AccountData{Lamports: 1}}
		batch := NewStorableAccountsFromPairs(slot, pubkeys, accounts, false)
		hashed := NewStorableAccountsWithHashesAndHashes(batch, zeroHashes(1))
		_, ok, err := file.AppendAccounts(hashed, 0)
		require.NoError(t, err)
		require.True(t, ok)
	}

	var seenSlots []Slot
	store.ScanIndex(1, func(_ *AccountsFile, pubkey Pubkey, _ uint64) {
		for _, s := range slots {
			if pubkey == pubkeyFromByte(byte(s)) {
				seenSlots = append(seenSlots, s)
				break
			}
		}
	})
	require.Equal(t, []Slot{1, 3, 5}, seenSlots)
}
