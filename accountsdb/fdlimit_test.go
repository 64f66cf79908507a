//go:build unix

package accountsdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFdlimitMaximumAndCurrent(t *testing.T) {
	max, err := Maximum()
	require.NoError(t, err)
	require.Greater(t, max, 0)

	cur, err := Current()
	require.NoError(t, err)
	require.Greater(t, cur, 0)
	require.LessOrEqual(t, cur, max)
}

func TestFdlimitRaiseNeverExceedsHardLimit(t *testing.T) {
	max, err := Maximum()
	require.NoError(t, err)

	got, err := Raise(uint64(max) + 1000)
	require.NoError(t, err)
	require.LessOrEqual(t, got, uint64(max))
}
