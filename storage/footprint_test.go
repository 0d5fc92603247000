package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenvm/lumenvm/types"
)

func TestFootprintAccessLevels(t *testing.T) {
	fp := NewFootprint()
	read := types.LedgerKey{Type: types.Persistent, Name: "r"}
	write := types.LedgerKey{Type: types.Persistent, Name: "w"}

	fp.RecordRead(read)
	fp.RecordWrite(write)

	require.True(t, fp.AllowsRead(read))
	require.False(t, fp.AllowsWrite(read))
	// Write access implies read access.
	require.True(t, fp.AllowsRead(write))
	require.True(t, fp.AllowsWrite(write))
	require.False(t, fp.AllowsRead(types.LedgerKey{Type: types.Persistent, Name: "other"}))
}

func TestFootprintUpgradeNotDowngrade(t *testing.T) {
	fp := NewFootprint()
	key := types.LedgerKey{Type: types.Temporary, Name: "k"}

	fp.RecordRead(key)
	fp.RecordWrite(key)
	// A later read does not lose the write declaration.
	fp.RecordRead(key)

	require.True(t, fp.AllowsWrite(key))
	require.Equal(t, 1, fp.Len())
}

func TestFootprintSetMembershipIgnoresOrder(t *testing.T) {
	build := func(names []string) *Footprint {
		fp := NewFootprint()
		for _, n := range names {
			fp.RecordRead(types.LedgerKey{Type: types.Persistent, Name: n})
		}
		return fp
	}
	a := build([]string{"x", "y", "z"})
	b := build([]string{"z", "x", "y", "x"})

	require.Equal(t, a.Len(), b.Len())
	require.Equal(t, a.Keys(), b.Keys())
}

func TestFootprintKeysDeterministic(t *testing.T) {
	fp := NewFootprint()
	for _, n := range []string{"c", "a", "b"} {
		fp.RecordWrite(types.LedgerKey{Type: types.Persistent, Name: n})
	}
	keys := fp.Keys()
	require.Len(t, keys, 3)
	require.Equal(t, "a", keys[0].Key.Name)
	require.Equal(t, "b", keys[1].Key.Name)
	require.Equal(t, "c", keys[2].Key.Name)
	require.Equal(t, ReadWrite, keys[0].Access)
}

func TestFootprintCloneIsIndependent(t *testing.T) {
	fp := NewFootprint()
	key := types.LedgerKey{Type: types.Persistent, Name: "k"}
	fp.RecordRead(key)

	cp := fp.Clone()
	cp.RecordWrite(types.LedgerKey{Type: types.Persistent, Name: "extra"})

	require.Equal(t, 1, fp.Len())
	require.Equal(t, 2, cp.Len())
}
