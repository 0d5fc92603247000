package storage

import (
	"testing"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/stretchr/testify/require"

	"github.com/lumenvm/lumenvm/types"
)

func TestDBSnapshotRoundTrip(t *testing.T) {
	snap := NewDBSnapshot(dbm.NewMemDB())
	key := types.LedgerKey{Type: types.Instance, Name: "meta"}

	require.NoError(t, snap.Write(key, &types.LedgerEntry{Data: []byte("payload")},
		types.TTL{LiveUntil: 12345, Tracked: true}))

	entry, ttl, err := snap.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), entry.Data)
	require.Equal(t, types.TTL{LiveUntil: 12345, Tracked: true}, ttl)

	ok, err := snap.Has(key)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDBSnapshotUntrackedTTL(t *testing.T) {
	snap := NewDBSnapshot(dbm.NewMemDB())
	key := types.LedgerKey{Type: types.Persistent, Name: "config"}

	require.NoError(t, snap.Write(key, &types.LedgerEntry{Data: []byte{0x01}}, types.TTL{}))
	_, ttl, err := snap.Get(key)
	require.NoError(t, err)
	require.False(t, ttl.Tracked)
}

func TestDBSnapshotMissing(t *testing.T) {
	snap := NewDBSnapshot(dbm.NewMemDB())
	_, _, err := snap.Get(types.LedgerKey{Type: types.Persistent, Name: "nope"})
	require.True(t, types.IsCode(err, types.CodeMissingEntry))

	ok, err := snap.Has(types.LedgerKey{Type: types.Persistent, Name: "nope"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDBSnapshotDelete(t *testing.T) {
	snap := NewDBSnapshot(dbm.NewMemDB())
	key := types.LedgerKey{Type: types.Temporary, Name: "scratch"}
	require.NoError(t, snap.Write(key, &types.LedgerEntry{Data: []byte("x")}, types.TTL{}))
	require.NoError(t, snap.Delete(key))

	_, _, err := snap.Get(key)
	require.True(t, types.IsCode(err, types.CodeMissingEntry))
}

func TestKeyEncodingDistinguishesTypes(t *testing.T) {
	snap := NewDBSnapshot(dbm.NewMemDB())
	temp := types.LedgerKey{Type: types.Temporary, Name: "same"}
	pers := types.LedgerKey{Type: types.Persistent, Name: "same"}

	require.NoError(t, snap.Write(temp, &types.LedgerEntry{Data: []byte("t")}, types.TTL{}))
	require.NoError(t, snap.Write(pers, &types.LedgerEntry{Data: []byte("p")}, types.TTL{}))

	entry, _, err := snap.Get(temp)
	require.NoError(t, err)
	require.Equal(t, []byte("t"), entry.Data)
	entry, _, err = snap.Get(pers)
	require.NoError(t, err)
	require.Equal(t, []byte("p"), entry.Data)
}
