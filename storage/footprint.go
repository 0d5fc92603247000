package storage

import (
	"sort"

	"github.com/lumenvm/lumenvm/types"
)

// Mode selects how the footprint gates storage access.
type Mode uint8

const (
	// Recording grows the footprint as keys are touched; used to discover
	// the footprint an invocation would need.
	Recording Mode = iota
	// Enforcing fixes the footprint in advance; any access outside it is a
	// hard error.
	Enforcing
)

func (m Mode) String() string {
	if m == Recording {
		return "recording"
	}
	return "enforcing"
}

// AccessType is the level of access declared for one footprint key.
type AccessType uint8

const (
	ReadOnly AccessType = iota
	ReadWrite
)

// Footprint is the set of keys an invocation may touch, split into a
// read-set and a write-set. Write access implies read access.
type Footprint struct {
	access map[types.LedgerKey]AccessType
}

// NewFootprint returns an empty footprint.
func NewFootprint() *Footprint {
	return &Footprint{access: make(map[types.LedgerKey]AccessType)}
}

// RecordRead adds a key to the read-set. An existing read-write declaration
// is not downgraded.
func (f *Footprint) RecordRead(key types.LedgerKey) {
	if _, ok := f.access[key]; !ok {
		f.access[key] = ReadOnly
	}
}

// RecordWrite adds a key to the write-set.
func (f *Footprint) RecordWrite(key types.LedgerKey) {
	f.access[key] = ReadWrite
}

// AllowsRead reports whether the key may be read.
func (f *Footprint) AllowsRead(key types.LedgerKey) bool {
	_, ok := f.access[key]
	return ok
}

// AllowsWrite reports whether the key may be written.
func (f *Footprint) AllowsWrite(key types.LedgerKey) bool {
	return f.access[key] == ReadWrite
}

// Len returns the number of distinct keys in the footprint.
func (f *Footprint) Len() int { return len(f.access) }

// Keys returns all footprint keys with their access level, ordered by key
// encoding so output is deterministic.
func (f *Footprint) Keys() []FootprintEntry {
	out := make([]FootprintEntry, 0, len(f.access))
	for k, a := range f.access {
		out = append(out, FootprintEntry{Key: k, Access: a})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Compare(out[j].Key) < 0
	})
	return out
}

// FootprintEntry is one declared key with its access level.
type FootprintEntry struct {
	Key    types.LedgerKey
	Access AccessType
}

// Clone returns an independent copy of the footprint.
func (f *Footprint) Clone() *Footprint {
	cp := NewFootprint()
	for k, a := range f.access {
		cp.access[k] = a
	}
	return cp
}
