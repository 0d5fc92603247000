package registry

import (
	"github.com/lumenvm/lumenvm/budget"
	"github.com/lumenvm/lumenvm/types"
)

// Env is the execution context a host function runs against. The concrete
// host implements it; keeping it an interface here keeps the registry free
// of host internals.
type Env interface {
	// Budget returns the invocation's budget; dispatch charges the per-call
	// overhead against it.
	Budget() *budget.Budget
	// NoteTrap records the host-side detail of a failure that is about to
	// be surfaced to the guest as an opaque trap.
	NoteTrap(err *types.HostError)
}

// HostFunc is a native host-function implementation. Arguments and result
// use the uniform word calling convention: a small fixed number of 64-bit
// words in, one word out or an error.
type HostFunc func(env Env, args []uint64) (uint64, error)

// FuncInfo describes one entry of the host-function manifest: where guest
// code imports it from, its fixed arity, and the native implementation.
type FuncInfo struct {
	Module string
	Name   string
	Arity  uint8
	Fn     HostFunc
}
