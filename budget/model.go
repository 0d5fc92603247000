package budget

import "math"

// CostModel computes the CPU and memory charge for one operation as
// const + lin*size, independently per dimension. Models are pure functions
// of the declared input size so replicas charge identically.
type CostModel struct {
	ConstCpu uint64
	LinCpu   uint64
	ConstMem uint64
	LinMem   uint64
}

// Cpu returns the CPU charge for an input of the given size. Overflow
// saturates; the resulting charge exceeds any finite limit.
func (m CostModel) Cpu(size uint64) uint64 {
	return saturatingAdd(m.ConstCpu, saturatingMul(m.LinCpu, size))
}

// Mem returns the memory charge for an input of the given size.
func (m CostModel) Mem(size uint64) uint64 {
	return saturatingAdd(m.ConstMem, saturatingMul(m.LinMem, size))
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func saturatingMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxUint64/b {
		return math.MaxUint64
	}
	return a * b
}
