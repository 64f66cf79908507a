package accountsdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sealTestFile(t *testing.T, compress bool) (*HotAccountsFile, []Pubkey, []ReadableAccount) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hot.bin")

	pubkeys := []Pubkey{pubkeyFromByte(1), pubkeyFromByte(2), pubkeyFromByte(3)}
	owner := pubkeyFromByte(50)
	accounts := []ReadableAccount{
		&AccountData{Lamports: 10, Owner: owner, Data: []byte("abcdefgh")},
		&AccountData{Lamports: 20, Owner: owner, Data: []byte("ijk")},
		&AccountData{Lamports: 30, Owner: pubkeyFromByte(60), Executable: true, RentEpoch: 3},
	}
	batch := NewStorableAccountsFromPairs(11, pubkeys, accounts, false)

	_, err := SealHotFile(path, batch, compress)
	require.NoError(t, err)

	hot, err := OpenHotAccountsFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { hot.Close() })
	return hot, pubkeys, accounts
}

func TestHotRoundTripUncompressed(t *testing.T) {
	t.Parallel()
	hot, pubkeys, accounts := sealTestFile(t, false)
	require.Equal(t, uint32(3), hot.Len())

	for i, pk := range pubkeys {
		acc, _, ok := hot.GetAccount(uint32(i))
		require.True(t, ok)
		require.Equal(t, pk, acc.Pubkey)
		require.Equal(t, accounts[i].GetData(), acc.Data)
		require.Equal(t, accounts[i].GetLamports(), acc.Lamports)
		require.Equal(t, ZeroHash, acc.AccountHash)
	}
	_, _, ok := hot.GetAccount(3)
	require.False(t, ok)
}

func TestHotRoundTripCompressed(t *testing.T) {
	t.Parallel()
	hot, pubkeys, accounts := sealTestFile(t, true)
	for i := range pubkeys {
		acc, _, ok := hot.GetAccount(uint32(i))
		require.True(t, ok)
		require.Equal(t, accounts[i].GetData(), acc.Data)
	}
}

func TestHotOwnerMatchWithBloomFastPath(t *testing.T) {
	t.Parallel()
	hot, _, accounts := sealTestFile(t, false)

	owner := accounts[0].GetOwner()
	idx, result := hot.AccountMatchesOwners(0, []Pubkey{pubkeyFromByte(200), owner})
	require.Equal(t, OwnerMatchFound, result)
	require.Equal(t, 1, idx)

	_, result = hot.AccountMatchesOwners(0, []Pubkey{pubkeyFromByte(200)})
	require.Equal(t, OwnerMatchNone, result)

	_, result = hot.AccountMatchesOwners(99, []Pubkey{owner})
	require.Equal(t, OwnerMatchUnableToLoad, result)
}

func TestHotScanPubkeysOrder(t *testing.T) {
	t.Parallel()
	hot, pubkeys, _ := sealTestFile(t, false)

	var seen []Pubkey
	hot.ScanPubkeys(func(pk Pubkey) { seen = append(seen, pk) })
	require.Equal(t, pubkeys, seen)
}

func TestHotFooterRejectsBadMagic(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, hotFooterSize+8), 0o644))

	_, err := OpenHotAccountsFile(path)
	require.Error(t, err)
}
