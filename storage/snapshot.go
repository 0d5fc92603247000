package storage

import (
	"encoding/binary"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/lumenvm/lumenvm/types"
)

// SnapshotSource supplies the ledger state an invocation executes against.
// The core reads it at most once per key per invocation and never writes
// it; the ledger/commit layer owns consistency.
type SnapshotSource interface {
	// Get returns the entry and its TTL, or a MissingEntry error.
	Get(key types.LedgerKey) (*types.LedgerEntry, types.TTL, error)
	// Has reports whether the key exists in the snapshot.
	Has(key types.LedgerKey) (bool, error)
}

// DBSnapshot adapts a cometbft-db database to SnapshotSource. MemDB serves
// tests and simulation; persistent backends serve a real ledger store.
type DBSnapshot struct {
	db dbm.DB
}

var _ SnapshotSource = (*DBSnapshot)(nil)

// NewDBSnapshot wraps an opened database.
func NewDBSnapshot(db dbm.DB) *DBSnapshot {
	return &DBSnapshot{db: db}
}

func (s *DBSnapshot) Get(key types.LedgerKey) (*types.LedgerEntry, types.TTL, error) {
	raw, err := s.db.Get(key.Encode())
	if err != nil {
		return nil, types.TTL{}, types.NewHostError(types.CodeInternal, "snapshot get: %v", err)
	}
	if raw == nil {
		return nil, types.TTL{}, types.NewHostError(types.CodeMissingEntry, "no entry for %s", key)
	}
	entry, ttl, err := decodeRecord(raw)
	if err != nil {
		return nil, types.TTL{}, err
	}
	return entry, ttl, nil
}

func (s *DBSnapshot) Has(key types.LedgerKey) (bool, error) {
	ok, err := s.db.Has(key.Encode())
	if err != nil {
		return false, types.NewHostError(types.CodeInternal, "snapshot has: %v", err)
	}
	return ok, nil
}

// Write stores an entry record, used by the ledger layer to seed snapshots
// and to apply committed changes.
func (s *DBSnapshot) Write(key types.LedgerKey, entry *types.LedgerEntry, ttl types.TTL) error {
	if err := s.db.Set(key.Encode(), encodeRecord(entry, ttl)); err != nil {
		return types.NewHostError(types.CodeInternal, "snapshot write: %v", err)
	}
	return nil
}

// Delete removes an entry record.
func (s *DBSnapshot) Delete(key types.LedgerKey) error {
	if err := s.db.Delete(key.Encode()); err != nil {
		return types.NewHostError(types.CodeInternal, "snapshot delete: %v", err)
	}
	return nil
}

// Record layout: one flag byte (1 = TTL tracked), 4 bytes big-endian
// live-until, then the entry payload.
const recordHeaderSize = 5

func encodeRecord(entry *types.LedgerEntry, ttl types.TTL) []byte {
	out := make([]byte, recordHeaderSize+len(entry.Data))
	if ttl.Tracked {
		out[0] = 1
		binary.BigEndian.PutUint32(out[1:5], ttl.LiveUntil)
	}
	copy(out[recordHeaderSize:], entry.Data)
	return out
}

func decodeRecord(raw []byte) (*types.LedgerEntry, types.TTL, error) {
	if len(raw) < recordHeaderSize {
		return nil, types.TTL{}, types.NewHostError(types.CodeInternal,
			"corrupt entry record: %d bytes", len(raw))
	}
	var ttl types.TTL
	if raw[0] == 1 {
		ttl = types.TTL{LiveUntil: binary.BigEndian.Uint32(raw[1:5]), Tracked: true}
	}
	data := make([]byte, len(raw)-recordHeaderSize)
	copy(data, raw[recordHeaderSize:])
	return &types.LedgerEntry{Data: data}, ttl, nil
}
