package storage

import (
	"testing"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/stretchr/testify/require"

	"github.com/lumenvm/lumenvm/budget"
	"github.com/lumenvm/lumenvm/types"
)

// countingSnapshot counts backing-store fetches per key.
type countingSnapshot struct {
	inner SnapshotSource
	gets  map[types.LedgerKey]int
}

func newCountingSnapshot(inner SnapshotSource) *countingSnapshot {
	return &countingSnapshot{inner: inner, gets: make(map[types.LedgerKey]int)}
}

func (c *countingSnapshot) Get(key types.LedgerKey) (*types.LedgerEntry, types.TTL, error) {
	c.gets[key]++
	return c.inner.Get(key)
}

func (c *countingSnapshot) Has(key types.LedgerKey) (bool, error) {
	return c.inner.Has(key)
}

func persistentKey(name string) types.LedgerKey {
	return types.LedgerKey{Type: types.Persistent, Name: name}
}

func temporaryKey(name string) types.LedgerKey {
	return types.LedgerKey{Type: types.Temporary, Name: name}
}

func seed(t *testing.T, snap *DBSnapshot, key types.LedgerKey, data string, ttl types.TTL) {
	t.Helper()
	require.NoError(t, snap.Write(key, &types.LedgerEntry{Data: []byte(data)}, ttl))
}

func testStorage(t *testing.T, ledgerSeq uint32) (*Storage, *DBSnapshot, *countingSnapshot) {
	t.Helper()
	snap := NewDBSnapshot(dbm.NewMemDB())
	counting := newCountingSnapshot(snap)
	s := NewRecording(counting, budget.NewUnlimited(), ledgerSeq)
	return s, snap, counting
}

func TestGetMissingEntry(t *testing.T) {
	s, _, _ := testStorage(t, 100)
	_, _, err := s.Get(persistentKey("nope"))
	require.True(t, types.IsCode(err, types.CodeMissingEntry))
}

func TestPutGetRoundTrip(t *testing.T) {
	s, _, _ := testStorage(t, 100)
	key := persistentKey("balance")

	require.NoError(t, s.Put(key, &types.LedgerEntry{Data: []byte("10")}))
	entry, ttl, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("10"), entry.Data)
	require.True(t, ttl.Tracked)
}

func TestSingleSnapshotFetchPerKey(t *testing.T) {
	s, snap, counting := testStorage(t, 100)
	key := persistentKey("hot")
	seed(t, snap, key, "v", types.TTL{LiveUntil: 1_000_000, Tracked: true})

	for i := 0; i < 5; i++ {
		_, _, err := s.Get(key)
		require.NoError(t, err)
	}
	_, err := s.Has(key)
	require.NoError(t, err)
	require.Equal(t, 1, counting.gets[key])
}

func TestReadChargeSizedByEntry(t *testing.T) {
	s, snap, _ := testStorage(t, 100)
	key := persistentKey("sized")
	seed(t, snap, key, "0123456789", types.TTL{LiveUntil: 1_000_000, Tracked: true})

	b := budget.NewUnlimited()
	s.budget = b
	b.OverrideModel(budget.ReadLedgerEntry, budget.CostModel{ConstCpu: 10, LinCpu: 1})
	b.OverrideModel(budget.ExtendLedgerTTL, budget.CostModel{})

	_, _, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, uint64(20), b.CpuConsumed()) // 10 + 1*10 bytes
}

func TestEnforcingBlocksUndeclaredAccess(t *testing.T) {
	snap := NewDBSnapshot(dbm.NewMemDB())
	counting := newCountingSnapshot(snap)
	declared := persistentKey("declared")
	seed(t, snap, declared, "v", types.TTL{LiveUntil: 1_000_000, Tracked: true})

	fp := NewFootprint()
	fp.RecordRead(declared)
	s := NewEnforcing(counting, budget.NewUnlimited(), 100, fp)

	_, _, err := s.Get(declared)
	require.NoError(t, err)

	// Undeclared key: hard error, snapshot untouched.
	other := persistentKey("undeclared")
	_, _, err = s.Get(other)
	require.True(t, types.IsCode(err, types.CodeFootprintViolation))
	require.Zero(t, counting.gets[other])

	// Read-only key cannot be written.
	err = s.Put(declared, &types.LedgerEntry{Data: []byte("x")})
	require.True(t, types.IsCode(err, types.CodeFootprintViolation))
}

func TestRecordingGrowsFootprint(t *testing.T) {
	s, snap, _ := testStorage(t, 100)
	k1 := persistentKey("a")
	k2 := persistentKey("b")
	k3 := temporaryKey("c")
	seed(t, snap, k1, "v", types.TTL{LiveUntil: 1_000_000, Tracked: true})

	_, _, err := s.Get(k1)
	require.NoError(t, err)
	require.NoError(t, s.Put(k2, &types.LedgerEntry{Data: []byte("v")}))
	_, err = s.Has(k3)
	require.NoError(t, err)
	// Re-touching does not duplicate.
	_, _, err = s.Get(k1)
	require.NoError(t, err)

	fp := s.Footprint()
	require.Equal(t, 3, fp.Len())
	require.True(t, fp.AllowsRead(k1))
	require.False(t, fp.AllowsWrite(k1))
	require.True(t, fp.AllowsWrite(k2))
	require.True(t, fp.AllowsRead(k3))
}

func TestModeTransitionIsOneWay(t *testing.T) {
	s, _, _ := testStorage(t, 100)
	require.Equal(t, Recording, s.Mode())
	require.NoError(t, s.SetEnforcing(NewFootprint()))
	require.Equal(t, Enforcing, s.Mode())
	require.Error(t, s.SetEnforcing(NewFootprint()))
}

func TestExpiredDistinctFromMissing(t *testing.T) {
	s, snap, _ := testStorage(t, 5000)
	expired := persistentKey("expired")
	seed(t, snap, expired, "old", types.TTL{LiveUntil: 4999, Tracked: true})

	_, _, err := s.Get(expired)
	require.True(t, types.IsCode(err, types.CodeExpiredEntry))

	_, _, err = s.Get(persistentKey("never-written"))
	require.True(t, types.IsCode(err, types.CodeMissingEntry))
}

func TestHasExpiredSemantics(t *testing.T) {
	s, snap, _ := testStorage(t, 5000)
	expTemp := temporaryKey("gone")
	expPers := persistentKey("archived")
	seed(t, snap, expTemp, "v", types.TTL{LiveUntil: 4999, Tracked: true})
	seed(t, snap, expPers, "v", types.TTL{LiveUntil: 4999, Tracked: true})

	// Lapsed temporary data reads as absent.
	ok, err := s.Has(expTemp)
	require.NoError(t, err)
	require.False(t, ok)

	// Lapsed persistent data must be restored explicitly.
	_, err = s.Has(expPers)
	require.True(t, types.IsCode(err, types.CodeExpiredEntry))
}

func TestPutCannotResurrectExpiredPersistent(t *testing.T) {
	s, snap, _ := testStorage(t, 5000)
	key := persistentKey("archived")
	seed(t, snap, key, "v", types.TTL{LiveUntil: 4999, Tracked: true})

	err := s.Put(key, &types.LedgerEntry{Data: []byte("new")})
	require.True(t, types.IsCode(err, types.CodeExpiredEntry))
}

func TestPutOverwritesExpiredTemporary(t *testing.T) {
	s, snap, _ := testStorage(t, 5000)
	key := temporaryKey("scratch")
	seed(t, snap, key, "old", types.TTL{LiveUntil: 4999, Tracked: true})

	require.NoError(t, s.Put(key, &types.LedgerEntry{Data: []byte("new")}))
	entry, ttl, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("new"), entry.Data)
	require.Equal(t, uint32(5000+TemporaryExtendAmount), ttl.LiveUntil)
}

func TestAutoExtendOnFirstWrite(t *testing.T) {
	s, _, _ := testStorage(t, 0)
	key := persistentKey("balance")

	require.NoError(t, s.Put(key, &types.LedgerEntry{Data: []byte("10")}))
	_, ttl, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, uint32(30*17280), ttl.LiveUntil)
}

func TestAutoExtendAboveThresholdUnchanged(t *testing.T) {
	s, _, _ := testStorage(t, 0)
	key := persistentKey("balance")
	require.NoError(t, s.Put(key, &types.LedgerEntry{Data: []byte("10")}))

	// Reading again one ledger later: remaining lifetime is still above the
	// threshold, so the TTL stays put.
	s.ledgerSeq = 1
	_, ttl, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, uint32(30*17280), ttl.LiveUntil)
}

func TestExtendTTLThresholdRule(t *testing.T) {
	s, snap, _ := testStorage(t, 1000)
	key := temporaryKey("k")
	seed(t, snap, key, "v", types.TTL{LiveUntil: 1050, Tracked: true})

	// remaining = 50 >= threshold 60? No: 50 < 60, extend to 1000+500.
	require.NoError(t, s.ExtendTTL(key, 500, 60))
	_, ttl, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, uint32(1500), ttl.LiveUntil)
}

func TestExtendTTLAboveThresholdNoop(t *testing.T) {
	s, snap, _ := testStorage(t, 1000)
	key := temporaryKey("k")
	seed(t, snap, key, "v", types.TTL{LiveUntil: 1090, Tracked: true})

	// remaining = 90 >= threshold 60: unchanged.
	require.NoError(t, s.ExtendTTL(key, 500, 60))
	_, ttl, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, uint32(1090), ttl.LiveUntil)
}

func TestExtendTTLNeverShrinks(t *testing.T) {
	s, snap, _ := testStorage(t, 1000)
	key := temporaryKey("k")
	seed(t, snap, key, "v", types.TTL{LiveUntil: 1010, Tracked: true})

	// Below threshold, but the target (1000+5) is before the current
	// live-until; the value must not decrease.
	require.NoError(t, s.ExtendTTL(key, 5, 100))
	_, ttl, err := s.Get(key)
	require.NoError(t, err)
	require.GreaterOrEqual(t, ttl.LiveUntil, uint32(1010))
}

func TestExtendTTLMissingAndExpired(t *testing.T) {
	s, snap, _ := testStorage(t, 1000)
	require.True(t, types.IsCode(s.ExtendTTL(persistentKey("none"), 10, 10), types.CodeMissingEntry))

	key := persistentKey("old")
	seed(t, snap, key, "v", types.TTL{LiveUntil: 999, Tracked: true})
	require.True(t, types.IsCode(s.ExtendTTL(key, 10, 10), types.CodeExpiredEntry))
}

func TestDel(t *testing.T) {
	s, snap, _ := testStorage(t, 100)
	key := persistentKey("doomed")
	seed(t, snap, key, "v", types.TTL{LiveUntil: 1_000_000, Tracked: true})

	require.NoError(t, s.Del(key))
	_, _, err := s.Get(key)
	require.True(t, types.IsCode(err, types.CodeMissingEntry))

	// Deleting an absent key is a no-op, not an error.
	require.NoError(t, s.Del(persistentKey("never")))

	changes := s.Modified()
	require.Len(t, changes, 1)
	require.Nil(t, changes[0].Entry)
}

func TestJournalRollback(t *testing.T) {
	s, snap, _ := testStorage(t, 100)
	kept := persistentKey("kept")
	touched := persistentKey("touched")
	created := persistentKey("created")
	seed(t, snap, touched, "before", types.TTL{LiveUntil: 1_000_000, Tracked: true})

	require.NoError(t, s.Put(kept, &types.LedgerEntry{Data: []byte("keep")}))

	mark := s.JournalMark()
	require.NoError(t, s.Put(touched, &types.LedgerEntry{Data: []byte("after")}))
	require.NoError(t, s.Put(created, &types.LedgerEntry{Data: []byte("new")}))
	s.RollbackTo(mark)

	// The rolled-back frame's writes are gone.
	entry, _, err := s.Get(touched)
	require.NoError(t, err)
	require.Equal(t, []byte("before"), entry.Data)
	_, _, err = s.Get(created)
	require.True(t, types.IsCode(err, types.CodeMissingEntry))

	// Writes before the mark survive.
	entry, _, err = s.Get(kept)
	require.NoError(t, err)
	require.Equal(t, []byte("keep"), entry.Data)

	changes := s.Modified()
	require.Len(t, changes, 1)
	require.Equal(t, kept, changes[0].Key)
}

func TestModifiedDeterministicOrder(t *testing.T) {
	s, _, _ := testStorage(t, 100)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Put(persistentKey(name), &types.LedgerEntry{Data: []byte(name)}))
	}
	changes := s.Modified()
	require.Len(t, changes, 3)
	require.Equal(t, "alpha", changes[0].Key.Name)
	require.Equal(t, "mid", changes[1].Key.Name)
	require.Equal(t, "zeta", changes[2].Key.Name)
}
