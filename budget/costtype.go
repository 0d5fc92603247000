package budget

import "fmt"

// CostType tags a category of metered work. Every host operation that does
// nontrivial work charges under exactly one of these.
type CostType uint8

const (
	// WasmInsnExec is one unit of guest bytecode stepping.
	WasmInsnExec CostType = iota
	// MemAlloc is host-side allocation, sized in bytes.
	MemAlloc
	// MemCpy is host-side memory copying, sized in bytes.
	MemCpy
	// ComputeSha256Hash is SHA-256 hashing, sized by input bytes.
	ComputeSha256Hash
	// DispatchHostFunction is the fixed per-call overhead of crossing the
	// guest/host boundary.
	DispatchHostFunction
	// ReadLedgerEntry is a storage read, sized by the entry's encoded size.
	ReadLedgerEntry
	// WriteLedgerEntry is a storage write, sized by the new entry's encoded
	// size.
	WriteLedgerEntry
	// HasLedgerEntry is an existence probe, cheaper than a full read.
	HasLedgerEntry
	// ExtendLedgerTTL is an explicit or automatic expiry extension.
	ExtendLedgerTTL

	numCostTypes
)

// NumCostTypes is the number of distinct cost categories.
const NumCostTypes = int(numCostTypes)

var costTypeNames = [numCostTypes]string{
	WasmInsnExec:         "wasm_insn_exec",
	MemAlloc:             "mem_alloc",
	MemCpy:               "mem_cpy",
	ComputeSha256Hash:    "compute_sha256_hash",
	DispatchHostFunction: "dispatch_host_function",
	ReadLedgerEntry:      "read_ledger_entry",
	WriteLedgerEntry:     "write_ledger_entry",
	HasLedgerEntry:       "has_ledger_entry",
	ExtendLedgerTTL:      "extend_ledger_ttl",
}

func (t CostType) String() string {
	if t < numCostTypes {
		return costTypeNames[t]
	}
	return fmt.Sprintf("cost_type(%d)", uint8(t))
}

// CostTypeByName resolves a configuration name to a CostType.
func CostTypeByName(name string) (CostType, bool) {
	for i, n := range costTypeNames {
		if n == name {
			return CostType(i), true
		}
	}
	return 0, false
}
