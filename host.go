package lumenvm

import (
	"github.com/rs/zerolog"

	"github.com/lumenvm/lumenvm/budget"
	"github.com/lumenvm/lumenvm/registry"
	"github.com/lumenvm/lumenvm/storage"
	"github.com/lumenvm/lumenvm/types"
)

// Status is the host's invocation state machine. Trapped and
// ResourceExhausted are terminal for the invocation but never for the host
// process; the boundary always returns control to the caller.
type Status uint8

const (
	Idle Status = iota
	Running
	Returned
	Trapped
	ResourceExhausted
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Returned:
		return "returned"
	case Trapped:
		return "trapped"
	case ResourceExhausted:
		return "resource exhausted"
	default:
		return "unknown"
	}
}

// ContractFunc is a native contract implementation invocable by the host.
type ContractFunc func(h *Host, args []uint64) (uint64, error)

// Host is the execution context for contract invocations: it owns the
// budget, the footprint-gated storage, the host-function registry, the
// call-frame stack and the per-invocation object arena.
//
// A Host serves one top-level invocation at a time and is not safe for
// concurrent use; run parallel invocations on separate hosts.
type Host struct {
	budget   *budget.Budget
	storage  *storage.Storage
	registry *registry.Registry
	logger   zerolog.Logger
	ledger   types.LedgerInfo

	frames    []*Frame
	auth      AuthContext
	objects   [][]byte
	contracts map[types.ContractID]ContractFunc

	status   Status
	lastTrap *types.HostError
}

// NewHost creates a host in recording-footprint mode against the given
// snapshot. Use SetEnforcing before Invoke for replay-safe execution.
func NewHost(snapshot storage.SnapshotSource, cfg budget.Config, info types.LedgerInfo) (*Host, error) {
	b, err := budget.New(cfg)
	if err != nil {
		return nil, err
	}
	h := &Host{
		budget:    b,
		storage:   storage.NewRecording(snapshot, b, info.SequenceNumber),
		logger:    zerolog.Nop(),
		ledger:    info,
		contracts: make(map[types.ContractID]ContractFunc),
		status:    Idle,
	}
	reg, err := registry.New(ManifestVersion, Manifest(), h.logger)
	if err != nil {
		return nil, err
	}
	h.registry = reg
	return h, nil
}

// SetLogger installs a diagnostics logger. Trap detail goes here and only
// here; guests never observe it.
func (h *Host) SetLogger(logger zerolog.Logger) {
	h.logger = logger
	// Rebuild so the registry logs through the same sink. The manifest is
	// static, so this cannot fail after a successful NewHost.
	reg, err := registry.New(ManifestVersion, Manifest(), logger)
	if err != nil {
		panic(err)
	}
	h.registry = reg
}

// SetEnforcing fixes the storage footprint for real execution. One-way.
func (h *Host) SetEnforcing(fp *storage.Footprint) error {
	return h.storage.SetEnforcing(fp)
}

// RegisterContract binds a native contract implementation to an id.
func (h *Host) RegisterContract(id types.ContractID, fn ContractFunc) {
	h.contracts[id] = fn
}

// Budget implements registry.Env.
func (h *Host) Budget() *budget.Budget { return h.budget }

// NoteTrap implements registry.Env, retaining host-side failure detail.
func (h *Host) NoteTrap(err *types.HostError) {
	h.lastTrap = err
}

// LastTrap returns the detail of the most recent trap, for host-side
// diagnostics only.
func (h *Host) LastTrap() *types.HostError { return h.lastTrap }

// Registry exposes the host-function table to the guest interpreter.
func (h *Host) Registry() *registry.Registry { return h.registry }

// Storage exposes the invocation's storage view to built-in contract code.
func (h *Host) Storage() *storage.Storage { return h.storage }

// LedgerInfo returns the ledger context this invocation runs against.
func (h *Host) LedgerInfo() types.LedgerInfo { return h.ledger }

// Status returns the invocation state machine's current state.
func (h *Host) Status() Status { return h.status }

// Footprint returns the footprint recorded or enforced so far, for the
// simulate-then-submit workflow.
func (h *Host) Footprint() *storage.Footprint { return h.storage.Footprint() }

// Modified returns the dirty entry set for the ledger layer to commit.
func (h *Host) Modified() []storage.Change { return h.storage.Modified() }

// BudgetReport returns per-cost-type usage for fee estimation.
func (h *Host) BudgetReport() budget.Report { return h.budget.Report() }

// Invoke runs a top-level contract invocation to completion, trap or
// exhaustion. On failure the failing frames' storage mutations are
// discarded and a structured error is returned; the host process and the
// backing snapshot are never harmed.
func (h *Host) Invoke(contract types.ContractID, args []uint64) (uint64, error) {
	if h.status == Running {
		return 0, types.NewHostError(types.CodeInternal, "invocation already running")
	}
	h.status = Running
	h.lastTrap = nil

	res, err := h.callContract(contract, args)
	if err != nil {
		herr := h.classify(err)
		if herr.Code == types.CodeResourceExhausted {
			h.finish(ResourceExhausted)
		} else {
			h.finish(Trapped)
		}
		return 0, herr
	}
	h.finish(Returned)
	return res, nil
}

func (h *Host) finish(terminal Status) {
	h.logger.Debug().Str("status", terminal.String()).Msg("invocation finished")
	h.status = terminal
}

// AcknowledgeResult returns the state machine to Idle once the caller has
// consumed the invocation's outcome. Trapped and ResourceExhausted are
// terminal for the invocation, not for the host.
func (h *Host) AcknowledgeResult() {
	if h.status != Running {
		h.status = Idle
	}
}

// classify folds any failure into the structured taxonomy returned to the
// invocation's caller.
func (h *Host) classify(err error) *types.HostError {
	if herr, ok := err.(*types.HostError); ok {
		return herr
	}
	if _, ok := err.(*types.Trap); ok {
		if h.lastTrap != nil {
			return h.lastTrap
		}
		return types.NewHostError(types.CodeGuestTrap, "guest trapped")
	}
	return types.NewHostError(types.CodeInternal, "%v", err)
}
