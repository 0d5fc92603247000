package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerKeyEncodeOrdering(t *testing.T) {
	a := LedgerKey{Type: Temporary, Name: "a"}
	b := LedgerKey{Type: Temporary, Name: "b"}
	c := LedgerKey{Type: Persistent, Name: "a"}

	require.Negative(t, a.Compare(b))
	require.Positive(t, b.Compare(a))
	require.Zero(t, a.Compare(a))
	// Storage type participates in the ordering.
	require.Negative(t, a.Compare(c))

	require.Equal(t, uint64(len(a.Encode())), a.EncodedSize())
}

func TestLedgerKeyComparable(t *testing.T) {
	m := map[LedgerKey]int{}
	k := LedgerKey{Type: Instance, Name: "meta"}
	m[k] = 1
	m[LedgerKey{Type: Instance, Name: "meta"}] = 2
	require.Len(t, m, 1)
	require.Equal(t, 2, m[k])
}

func TestTTLLiveAt(t *testing.T) {
	tracked := TTL{LiveUntil: 100, Tracked: true}
	require.True(t, tracked.LiveAt(99))
	require.True(t, tracked.LiveAt(100))
	require.False(t, tracked.LiveAt(101))

	// Untracked entries never expire.
	require.True(t, TTL{}.LiveAt(1<<31))
}

func TestEntryClone(t *testing.T) {
	e := &LedgerEntry{Data: []byte("abc")}
	cp := e.Clone()
	cp.Data[0] = 'x'
	require.Equal(t, []byte("abc"), e.Data)

	var nilEntry *LedgerEntry
	require.Nil(t, nilEntry.Clone())
	require.Zero(t, nilEntry.EncodedSize())
}

func TestHostErrorCodes(t *testing.T) {
	err := NewHostError(CodeExpiredEntry, "entry %d", 7)
	require.True(t, IsCode(err, CodeExpiredEntry))
	require.False(t, IsCode(err, CodeMissingEntry))
	require.Contains(t, err.Error(), "expired entry")
	require.Contains(t, err.Error(), "entry 7")

	wrapped := fmt.Errorf("outer: %w", err)
	require.True(t, IsCode(wrapped, CodeExpiredEntry))

	require.False(t, IsCode(errors.New("plain"), CodeExpiredEntry))
	require.False(t, IsCode(nil, CodeExpiredEntry))
}

func TestTrapIsOpaque(t *testing.T) {
	trap := &Trap{}
	require.Equal(t, "host function trap", trap.Error())
}
