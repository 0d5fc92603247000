package storage

import "github.com/lumenvm/lumenvm/types"

// DayInLedgers is one day expressed in ledger closes (5s ledgers).
const DayInLedgers = 17280

const (
	// Instance entries churn little and are touched on every invocation of
	// their contract; a medium extension keeps them alive cheaply.
	InstanceExtendAmount = 7 * DayInLedgers
	InstanceTTLThreshold = InstanceExtendAmount - DayInLedgers

	// Persistent data entries are pushed far out so hot entries rarely
	// touch the expiry machinery at all.
	PersistentExtendAmount = 30 * DayInLedgers
	PersistentTTLThreshold = PersistentExtendAmount - DayInLedgers

	// Temporary entries are allowed to lapse quickly.
	TemporaryExtendAmount = DayInLedgers
	TemporaryTTLThreshold = 16

	// MaxEntryTTL caps any single extension's distance into the future.
	MaxEntryTTL = 6_312_000
)

// TTLPolicy is the automatic-extension rule for one storage class: when an
// accessed entry's remaining lifetime drops below Threshold, its live-until
// ledger is pushed to current + ExtendAmount.
type TTLPolicy struct {
	ExtendAmount uint32
	Threshold    uint32
}

// PolicyFor returns the TTL policy of a storage class.
func PolicyFor(st types.StorageType) TTLPolicy {
	switch st {
	case types.Instance:
		return TTLPolicy{ExtendAmount: InstanceExtendAmount, Threshold: InstanceTTLThreshold}
	case types.Persistent:
		return TTLPolicy{ExtendAmount: PersistentExtendAmount, Threshold: PersistentTTLThreshold}
	default:
		return TTLPolicy{ExtendAmount: TemporaryExtendAmount, Threshold: TemporaryTTLThreshold}
	}
}
