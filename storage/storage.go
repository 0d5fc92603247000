package storage

import (
	"sort"

	"github.com/lumenvm/lumenvm/budget"
	"github.com/lumenvm/lumenvm/types"
)

type cacheEntry struct {
	entry *types.LedgerEntry // nil = known absent
	ttl   types.TTL
	dirty bool
}

type journalRecord struct {
	key     types.LedgerKey
	hadPrev bool
	prev    cacheEntry
}

// Storage mediates all contract state access for one invocation: every
// operation is footprint-checked and metered, the backing snapshot is
// consulted at most once per key, and all mutations stay in the cache until
// the ledger layer commits them.
//
// A Storage belongs to a single invocation and is not safe for concurrent
// use.
type Storage struct {
	budget    *budget.Budget
	snapshot  SnapshotSource
	footprint *Footprint
	mode      Mode
	ledgerSeq uint32

	cache   map[types.LedgerKey]*cacheEntry
	journal []journalRecord
}

// NewRecording creates a storage in recording mode with an empty footprint,
// used to discover the footprint an invocation would need.
func NewRecording(snapshot SnapshotSource, b *budget.Budget, ledgerSeq uint32) *Storage {
	return &Storage{
		budget:    b,
		snapshot:  snapshot,
		footprint: NewFootprint(),
		mode:      Recording,
		ledgerSeq: ledgerSeq,
		cache:     make(map[types.LedgerKey]*cacheEntry),
	}
}

// NewEnforcing creates a storage that only permits access to the declared
// footprint, used for real (replayed) execution.
func NewEnforcing(snapshot SnapshotSource, b *budget.Budget, ledgerSeq uint32, fp *Footprint) *Storage {
	s := NewRecording(snapshot, b, ledgerSeq)
	s.footprint = fp.Clone()
	s.mode = Enforcing
	return s
}

// SetEnforcing switches a recording storage to enforcing mode with the
// given footprint. The transition is one-directional; enforcing never
// reverts to recording within an invocation's lifetime.
func (s *Storage) SetEnforcing(fp *Footprint) error {
	if s.mode == Enforcing {
		return types.NewHostError(types.CodeInternal, "storage is already enforcing")
	}
	s.footprint = fp.Clone()
	s.mode = Enforcing
	return nil
}

// Mode returns the current footprint mode.
func (s *Storage) Mode() Mode { return s.mode }

// Footprint returns the active footprint view.
func (s *Storage) Footprint() *Footprint { return s.footprint }

// LedgerSeq returns the ledger sequence this invocation executes at.
func (s *Storage) LedgerSeq() uint32 { return s.ledgerSeq }

func (s *Storage) checkRead(key types.LedgerKey) error {
	if s.mode == Enforcing {
		if !s.footprint.AllowsRead(key) {
			return types.NewHostError(types.CodeFootprintViolation,
				"read of %s outside declared footprint", key)
		}
		return nil
	}
	s.footprint.RecordRead(key)
	return nil
}

func (s *Storage) checkWrite(key types.LedgerKey) error {
	if s.mode == Enforcing {
		if !s.footprint.AllowsWrite(key) {
			return types.NewHostError(types.CodeFootprintViolation,
				"write of %s outside declared footprint", key)
		}
		return nil
	}
	s.footprint.RecordWrite(key)
	return nil
}

// load consults the cache, falling back to one snapshot fetch per key per
// invocation. Footprint checks happen before load, so an enforcing-mode
// violation never touches the backing snapshot.
func (s *Storage) load(key types.LedgerKey) (*cacheEntry, error) {
	if ce, ok := s.cache[key]; ok {
		return ce, nil
	}
	entry, ttl, err := s.snapshot.Get(key)
	if err != nil {
		if types.IsCode(err, types.CodeMissingEntry) {
			ce := &cacheEntry{}
			s.cache[key] = ce
			return ce, nil
		}
		return nil, err
	}
	ce := &cacheEntry{entry: entry.Clone(), ttl: ttl}
	s.cache[key] = ce
	return ce, nil
}

// record captures a key's cache state before its first mutation so a
// failing frame can be rolled back.
func (s *Storage) record(key types.LedgerKey) {
	if ce, ok := s.cache[key]; ok {
		s.journal = append(s.journal, journalRecord{
			key:     key,
			hadPrev: true,
			prev:    cacheEntry{entry: ce.entry.Clone(), ttl: ce.ttl, dirty: ce.dirty},
		})
		return
	}
	s.journal = append(s.journal, journalRecord{key: key})
}

// Get returns the entry bound to key and its TTL. The read is charged by
// the entry's encoded size and the entry's expiry is auto-extended per its
// storage class.
func (s *Storage) Get(key types.LedgerKey) (*types.LedgerEntry, types.TTL, error) {
	if err := s.checkRead(key); err != nil {
		return nil, types.TTL{}, err
	}
	ce, err := s.load(key)
	if err != nil {
		return nil, types.TTL{}, err
	}
	if err := s.budget.Charge(budget.ReadLedgerEntry, ce.entry.EncodedSize()); err != nil {
		return nil, types.TTL{}, err
	}
	if ce.entry == nil {
		return nil, types.TTL{}, types.NewHostError(types.CodeMissingEntry, "no entry for %s", key)
	}
	if !ce.ttl.LiveAt(s.ledgerSeq) {
		return nil, types.TTL{}, types.NewHostError(types.CodeExpiredEntry,
			"%s expired at ledger %d, current is %d", key, ce.ttl.LiveUntil, s.ledgerSeq)
	}
	policy := PolicyFor(key.Type)
	s.extend(key, ce, policy.ExtendAmount, policy.Threshold)
	return ce.entry.Clone(), ce.ttl, nil
}

// Put binds an entry to key, charged by the new entry's encoded size. The
// entry stays dirty in the cache until the ledger layer commits it.
func (s *Storage) Put(key types.LedgerKey, entry *types.LedgerEntry) error {
	if err := s.checkWrite(key); err != nil {
		return err
	}
	if err := s.budget.Charge(budget.WriteLedgerEntry, entry.EncodedSize()); err != nil {
		return err
	}
	ce, err := s.load(key)
	if err != nil {
		return err
	}
	if ce.entry != nil && !ce.ttl.LiveAt(s.ledgerSeq) {
		if key.Type != types.Temporary {
			return types.NewHostError(types.CodeExpiredEntry,
				"cannot overwrite expired %s", key)
		}
		// Lapsed temporary data is simply gone; the write creates a fresh
		// entry with a fresh TTL.
		s.record(key)
		ce.entry = nil
		ce.ttl = types.TTL{}
	}
	s.record(key)
	ce.entry = entry.Clone()
	ce.dirty = true
	policy := PolicyFor(key.Type)
	s.extend(key, ce, policy.ExtendAmount, policy.Threshold)
	return nil
}

// Del removes the entry bound to key. Deleting an absent entry is a no-op;
// the delete is still a write-footprint operation and is charged as one.
func (s *Storage) Del(key types.LedgerKey) error {
	if err := s.checkWrite(key); err != nil {
		return err
	}
	if err := s.budget.Charge(budget.WriteLedgerEntry, 0); err != nil {
		return err
	}
	ce, err := s.load(key)
	if err != nil {
		return err
	}
	if ce.entry == nil {
		return nil
	}
	s.record(key)
	ce.entry = nil
	ce.ttl = types.TTL{}
	ce.dirty = true
	return nil
}

// Has probes for key's existence, cheaper than a full read. A lapsed
// temporary entry reads as absent; a lapsed persistent or instance entry is
// an ExpiredEntry error since it must be restored out-of-band, never
// silently resurrected.
func (s *Storage) Has(key types.LedgerKey) (bool, error) {
	if err := s.checkRead(key); err != nil {
		return false, err
	}
	ce, err := s.load(key)
	if err != nil {
		return false, err
	}
	if err := s.budget.Charge(budget.HasLedgerEntry, 0); err != nil {
		return false, err
	}
	if ce.entry == nil {
		return false, nil
	}
	if !ce.ttl.LiveAt(s.ledgerSeq) {
		if key.Type == types.Temporary {
			return false, nil
		}
		return false, types.NewHostError(types.CodeExpiredEntry,
			"%s expired at ledger %d, current is %d", key, ce.ttl.LiveUntil, s.ledgerSeq)
	}
	return true, nil
}

// ExtendTTL pushes key's live-until ledger to current + extendAmount if its
// remaining lifetime is below threshold. The live-until value never
// decreases.
func (s *Storage) ExtendTTL(key types.LedgerKey, extendAmount, threshold uint32) error {
	if err := s.checkRead(key); err != nil {
		return err
	}
	ce, err := s.load(key)
	if err != nil {
		return err
	}
	if err := s.budget.Charge(budget.ExtendLedgerTTL, 0); err != nil {
		return err
	}
	if ce.entry == nil {
		return types.NewHostError(types.CodeMissingEntry, "no entry for %s", key)
	}
	if !ce.ttl.LiveAt(s.ledgerSeq) {
		return types.NewHostError(types.CodeExpiredEntry,
			"%s expired at ledger %d, current is %d", key, ce.ttl.LiveUntil, s.ledgerSeq)
	}
	s.extend(key, ce, extendAmount, threshold)
	return nil
}

// extend applies the TTL rule: if remaining lifetime is below threshold,
// live-until becomes current + extendAmount (capped at MaxEntryTTL, never
// shrinking). A changed TTL is a committable mutation.
func (s *Storage) extend(key types.LedgerKey, ce *cacheEntry, extendAmount, threshold uint32) {
	var remaining uint32
	if ce.ttl.Tracked {
		remaining = ce.ttl.LiveUntil - s.ledgerSeq
	}
	if ce.ttl.Tracked && remaining >= threshold {
		return
	}
	if extendAmount > MaxEntryTTL {
		extendAmount = MaxEntryTTL
	}
	target := s.ledgerSeq + extendAmount
	if ce.ttl.Tracked && target <= ce.ttl.LiveUntil {
		return
	}
	s.record(key)
	ce.ttl = types.TTL{LiveUntil: target, Tracked: true}
	ce.dirty = true
}

// JournalMark returns a position in the mutation journal. A call frame
// takes a mark on entry and rolls back to it on unwind.
func (s *Storage) JournalMark() int { return len(s.journal) }

// RollbackTo discards all cache mutations made after the given mark.
func (s *Storage) RollbackTo(mark int) {
	for i := len(s.journal) - 1; i >= mark; i-- {
		rec := s.journal[i]
		if !rec.hadPrev {
			delete(s.cache, rec.key)
			continue
		}
		prev := rec.prev
		s.cache[rec.key] = &cacheEntry{entry: prev.entry, ttl: prev.ttl, dirty: prev.dirty}
	}
	s.journal = s.journal[:mark]
}

// Change is one dirty cache entry for the ledger layer to commit. A nil
// Entry is a deletion.
type Change struct {
	Key   types.LedgerKey
	Entry *types.LedgerEntry
	TTL   types.TTL
}

// Modified returns the dirty entry set in deterministic key order. The
// ledger/commit layer alone decides whether to persist it.
func (s *Storage) Modified() []Change {
	out := make([]Change, 0)
	for key, ce := range s.cache {
		if !ce.dirty {
			continue
		}
		out = append(out, Change{Key: key, Entry: ce.entry.Clone(), TTL: ce.ttl})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Compare(out[j].Key) < 0
	})
	return out
}
