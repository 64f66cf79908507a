package accountsdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountsFileOffsetTranslationLaw(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hot.bin")
	pubkeys := []Pubkey{pubkeyFromByte(1), pubkeyFromByte(2)}
	accounts := []ReadableAccount{
		&AccountData{Lamports: 1, Data: []byte("x")},
		&AccountData{Lamports: 2, Data: []byte("yy")},
	}
	batch := NewStorableAccountsFromPairs(0, pubkeys, accounts, false)
	_, err := SealHotFile(path, batch, false)
	require.NoError(t, err)

	hot, err := OpenHotAccountsFile(path)
	require.NoError(t, err)
	defer hot.Close()

	facade := NewHotAccountsFile(hot)
	require.Equal(t, ProviderHotStorage, facade.Provider())

	// reduced -> byte -> reduced must round-trip for every valid index.
	for reduced := uint32(0); reduced < hot.Len(); reduced++ {
		byteOffset := fromReduced(reduced)
		require.Equal(t, uint64(reduced)*8, byteOffset)
		require.Equal(t, reduced, toReduced(byteOffset))
	}

	acc, next, ok := facade.GetAccount(0)
	require.True(t, ok)
	require.Equal(t, pubkeys[0], acc.Pubkey)
	require.Equal(t, uint64(8), next)

	acc, next, ok = facade.GetAccount(next)
	require.True(t, ok)
	require.Equal(t, pubkeys[1], acc.Pubkey)
	require.Equal(t, facade.Len(), next)
}

func TestAccountsFileAppendVecDispatch(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "0.0")
	av, err := New(path, 64*1024, false)
	require.NoError(t, err)
	facade := NewAppendVecFile(av)
	defer facade.Close()

	require.Equal(t, ProviderAppendVec, facade.Provider())
	pubkey := pubkeyFromByte(9)
	batch := NewStorableAccountsFromPairs(0, []Pubkey{pubkey}, []ReadableAccount{&AccountData{Lamports: 1, Data: []byte("z")}}, false)
	hashed := NewStorableAccountsWithHashesAndHashes(batch, zeroHashes(1))

	infos, ok, err := facade.AppendAccounts(hashed, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, infos, 2) // 1 account + trailing next-offset entry

	acc, _, ok := facade.GetAccount(0)
	require.True(t, ok)
	require.Equal(t, pubkey, acc.Pubkey)
}

func TestAccountsFileAppendAccountsUnsupportedOnHotStorage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hot.bin")
	pubkeys := []Pubkey{pubkeyFromByte(1)}
	accounts := []ReadableAccount{&AccountData{Lamports: 1, Data: []byte("x")}}
	batch := NewStorableAccountsFromPairs(0, pubkeys, accounts, false)
	_, err := SealHotFile(path, batch, false)
	require.NoError(t, err)

	hot, err := OpenHotAccountsFile(path)
	require.NoError(t, err)
	defer hot.Close()
	facade := NewHotAccountsFile(hot)

	hashed := NewStorableAccountsWithHashesAndHashes(batch, zeroHashes(1))
	_, ok, err := facade.AppendAccounts(hashed, 0)
	require.False(t, ok)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestAccountsFileIterator(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "0.0")
	av, err := New(path, 64*1024, false)
	require.NoError(t, err)
	facade := NewAppendVecFile(av)
	defer facade.Close()

	var pubkeys []Pubkey
	var accounts []ReadableAccount
	for i := byte(0); i < 5; i++ {
		pubkeys = append(pubkeys, pubkeyFromByte(i))
		accounts = append(accounts, &AccountData{Lamports: uint64(i) + 1})
	}
	batch := NewStorableAccountsFromPairs(0, pubkeys, accounts, false)
	hashed := NewStorableAccountsWithHashesAndHashes(batch, zeroHashes(len(pubkeys)))
	_, ok, err := facade.AppendAccounts(hashed, 0)
	require.NoError(t, err)
	require.True(t, ok)

	it := NewAccountsFileIter(facade)
	var seen []Pubkey
	for {
		acc, ok := it.Next()
		if !ok {
			break
		}
		seen = append(seen, acc.Pubkey)
	}
	require.Equal(t, pubkeys, seen)

	_, ok = it.Next()
	require.False(t, ok)
}
