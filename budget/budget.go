package budget

import (
	"math"

	"github.com/lumenvm/lumenvm/types"
)

// Usage is the consumed CPU and memory of one cost category.
type Usage struct {
	Cpu uint64
	Mem uint64
}

// Budget is the per-invocation resource accounting scope. A charge that
// would exceed either the CPU or the memory limit is rejected atomically
// and the budget stays exhausted for the remainder of the invocation.
//
// A Budget is owned by a single invocation and is not safe for concurrent
// use; independent invocations own independent budgets.
type Budget struct {
	cpuLimit uint64
	memLimit uint64
	cpuUsed  uint64
	memUsed  uint64

	models    [numCostTypes]CostModel
	perType   [numCostTypes]Usage
	exhausted bool
}

// New creates a budget from network configuration.
func New(cfg Config) (*Budget, error) {
	models, err := cfg.models()
	if err != nil {
		return nil, err
	}
	return &Budget{
		cpuLimit: cfg.CpuLimit,
		memLimit: cfg.MemLimit,
		models:   models,
	}, nil
}

// NewUnlimited creates a budget with no limits and the default models,
// for calibration and testing.
func NewUnlimited() *Budget {
	b, err := New(DefaultConfig())
	if err != nil {
		panic(err) // default config is always valid
	}
	b.ResetUnlimited()
	return b
}

// Charge meters one operation of the given cost category and input size.
// On success both running totals are updated; on failure neither is, and
// every later charge fails as well.
func (b *Budget) Charge(ty CostType, size uint64) error {
	if ty >= numCostTypes {
		return types.NewHostError(types.CodeInternal, "unknown cost type %d", ty)
	}
	if b.exhausted {
		return types.NewHostError(types.CodeResourceExhausted, "budget already exhausted")
	}
	model := b.models[ty]
	cpu := model.Cpu(size)
	mem := model.Mem(size)
	newCpu := saturatingAdd(b.cpuUsed, cpu)
	newMem := saturatingAdd(b.memUsed, mem)
	if newCpu > b.cpuLimit || newMem > b.memLimit {
		b.exhausted = true
		return types.NewHostError(types.CodeResourceExhausted,
			"%s charge (cpu=%d mem=%d size=%d) exceeds limits (cpu %d/%d, mem %d/%d)",
			ty, cpu, mem, size, b.cpuUsed, b.cpuLimit, b.memUsed, b.memLimit)
	}
	b.cpuUsed = newCpu
	b.memUsed = newMem
	b.perType[ty].Cpu += cpu
	b.perType[ty].Mem += mem
	return nil
}

// Reset establishes a fresh accounting scope with the given limits. Models
// are kept; consumed totals and the exhausted flag are cleared.
func (b *Budget) Reset(cpuLimit, memLimit uint64) {
	b.cpuLimit = cpuLimit
	b.memLimit = memLimit
	b.clear()
}

// ResetUnlimited establishes a fresh scope with no limits.
func (b *Budget) ResetUnlimited() {
	b.Reset(math.MaxUint64, math.MaxUint64)
}

func (b *Budget) clear() {
	b.cpuUsed = 0
	b.memUsed = 0
	b.perType = [numCostTypes]Usage{}
	b.exhausted = false
}

// OverrideModel installs a synthetic model for one cost category. This is a
// calibration/testing hook; production models come from network config.
func (b *Budget) OverrideModel(ty CostType, model CostModel) {
	if ty < numCostTypes {
		b.models[ty] = model
	}
}

// CpuConsumed returns the cumulative CPU consumed.
func (b *Budget) CpuConsumed() uint64 { return b.cpuUsed }

// MemConsumed returns the cumulative memory consumed.
func (b *Budget) MemConsumed() uint64 { return b.memUsed }

// CpuLimit returns the configured CPU limit.
func (b *Budget) CpuLimit() uint64 { return b.cpuLimit }

// MemLimit returns the configured memory limit.
func (b *Budget) MemLimit() uint64 { return b.memLimit }

// Exhausted reports whether a charge has been rejected.
func (b *Budget) Exhausted() bool { return b.exhausted }

// Report contains per-category and total usage, for fee estimation and
// diagnostics.
type Report struct {
	CpuLimit uint64
	MemLimit uint64
	CpuUsed  uint64
	MemUsed  uint64
	PerType  map[CostType]Usage
}

// Report snapshots current usage.
func (b *Budget) Report() Report {
	per := make(map[CostType]Usage, numCostTypes)
	for i := 0; i < NumCostTypes; i++ {
		if u := b.perType[i]; u.Cpu != 0 || u.Mem != 0 {
			per[CostType(i)] = u
		}
	}
	return Report{
		CpuLimit: b.cpuLimit,
		MemLimit: b.memLimit,
		CpuUsed:  b.cpuUsed,
		MemUsed:  b.memUsed,
		PerType:  per,
	}
}
