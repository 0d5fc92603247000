package lumenvm

import (
	"github.com/lumenvm/lumenvm/types"
)

// AuthContext is the authorization state active within one call frame:
// the set of contract ids whose authority the frame may exercise. It is
// snapshotted on frame entry and restored on exit, so a callee can never
// leak grants back into its caller.
type AuthContext struct {
	grants map[types.ContractID]struct{}
}

func newAuthContext() AuthContext {
	return AuthContext{grants: make(map[types.ContractID]struct{})}
}

func (a AuthContext) clone() AuthContext {
	cp := newAuthContext()
	for id := range a.grants {
		cp.grants[id] = struct{}{}
	}
	return cp
}

// Grant records that id's authority may be exercised in the current frame
// and its callees.
func (h *Host) Grant(id types.ContractID) {
	if h.auth.grants == nil {
		h.auth = newAuthContext()
	}
	h.auth.grants[id] = struct{}{}
}

// Authorized reports whether id's authority is active in the current frame.
func (h *Host) Authorized(id types.ContractID) bool {
	_, ok := h.auth.grants[id]
	return ok
}

// Frame is one level of nested contract invocation. Frames are created on
// entry into a contract and popped on return or unwind; no frame outlives
// its invocation.
type Frame struct {
	Invoker  types.ContractID // zero for the top-level frame
	Contract types.ContractID

	journalMark int
	savedAuth   AuthContext
}

// CurrentContract returns the contract of the innermost frame.
func (h *Host) CurrentContract() (types.ContractID, bool) {
	if len(h.frames) == 0 {
		return types.ContractID{}, false
	}
	return h.frames[len(h.frames)-1].Contract, true
}

// FrameDepth is the current call-stack depth.
func (h *Host) FrameDepth() int { return len(h.frames) }

func (h *Host) pushFrame(contract types.ContractID) *Frame {
	var invoker types.ContractID
	if cur, ok := h.CurrentContract(); ok {
		invoker = cur
	}
	f := &Frame{
		Invoker:     invoker,
		Contract:    contract,
		journalMark: h.storage.JournalMark(),
		savedAuth:   h.auth.clone(),
	}
	if h.auth.grants == nil {
		h.auth = newAuthContext()
		f.savedAuth = newAuthContext()
	}
	h.frames = append(h.frames, f)
	return f
}

// popFrame unwinds one frame. On failure the frame's storage mutations are
// discarded; either way the caller's authorization context is restored.
func (h *Host) popFrame(f *Frame, failed bool) {
	if failed {
		h.storage.RollbackTo(f.journalMark)
	}
	h.auth = f.savedAuth
	h.frames = h.frames[:len(h.frames)-1]
}

// callContract runs one contract inside its own frame with a scoped
// execution boundary: any abrupt termination, including panics from the
// guest/interpreter layer, becomes a typed error and unwinds exactly this
// frame. Nested cross-contract calls re-enter here.
func (h *Host) callContract(contract types.ContractID, args []uint64) (res uint64, err error) {
	fn, ok := h.contracts[contract]
	if !ok {
		return 0, types.NewHostError(types.CodeMissingEntry, "no contract registered for %s", contract)
	}
	frame := h.pushFrame(contract)
	defer func() {
		if r := recover(); r != nil {
			err = h.recoveredError(r)
		}
		h.popFrame(frame, err != nil)
	}()
	res, err = fn(h, args)
	return res, err
}

// recoveredError converts a recovered panic value into the error taxonomy.
// Interpreter layers propagate host traps by panicking with the error.
func (h *Host) recoveredError(r interface{}) error {
	switch v := r.(type) {
	case *types.HostError:
		return v
	case *types.Trap:
		return v
	case error:
		h.logger.Debug().Err(v).Msg("guest panic contained")
		return types.NewHostError(types.CodeGuestTrap, "guest panic: %v", v)
	default:
		h.logger.Debug().Interface("panic", v).Msg("guest panic contained")
		return types.NewHostError(types.CodeGuestTrap, "guest panic: %v", v)
	}
}
