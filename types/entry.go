package types

// LedgerEntry is the value bound to a LedgerKey. The host treats the payload
// as opaque bytes; interpretation belongs to contract code.
type LedgerEntry struct {
	Data []byte
}

// EncodedSize is the metered size of the entry.
func (e *LedgerEntry) EncodedSize() uint64 {
	if e == nil {
		return 0
	}
	return uint64(len(e.Data))
}

// Clone returns a deep copy so cached entries cannot be aliased by callers.
func (e *LedgerEntry) Clone() *LedgerEntry {
	if e == nil {
		return nil
	}
	data := make([]byte, len(e.Data))
	copy(data, e.Data)
	return &LedgerEntry{Data: data}
}

// TTL is an entry's live-until-ledger number. Tracked is false for entries
// whose storage class does not track expiry, which are always live.
type TTL struct {
	LiveUntil uint32
	Tracked   bool
}

// LiveAt reports whether an entry with this TTL is still live at the given
// ledger sequence.
func (t TTL) LiveAt(ledgerSeq uint32) bool {
	return !t.Tracked || t.LiveUntil >= ledgerSeq
}

// LedgerInfo is the ledger-level context an invocation runs against,
// supplied by the ledger layer before execution starts.
type LedgerInfo struct {
	ProtocolVersion       uint32
	SequenceNumber        uint32
	Timestamp             uint64
	NetworkID             [32]byte
	MinPersistentEntryTTL uint32
	MinTempEntryTTL       uint32
	MaxEntryTTL           uint32
}

// DefaultLedgerInfo mirrors the network defaults used when the caller does
// not supply ledger context (tests, local estimation runs).
func DefaultLedgerInfo() LedgerInfo {
	return LedgerInfo{
		ProtocolVersion:       1,
		SequenceNumber:        0,
		Timestamp:             0,
		MinPersistentEntryTTL: 4096,
		MinTempEntryTTL:       16,
		MaxEntryTTL:           6_312_000,
	}
}
