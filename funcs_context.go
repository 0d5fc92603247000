package lumenvm

import (
	"github.com/lumenvm/lumenvm/types"
)

func getLedgerSequence(h *Host, _ []uint64) (uint64, error) {
	return uint64(h.ledger.SequenceNumber), nil
}

func getLedgerVersion(h *Host, _ []uint64) (uint64, error) {
	return uint64(h.ledger.ProtocolVersion), nil
}

// logFromBytes emits a guest debug message to the host's diagnostics sink.
// It has no observable effect on execution and is safe for guests to call
// on any path.
func logFromBytes(h *Host, args []uint64) (uint64, error) {
	data, err := h.ObjectBytes(args[0])
	if err != nil {
		return 0, err
	}
	contract, _ := h.CurrentContract()
	h.logger.Debug().Str("contract", contract.String()).Bytes("msg", data).Msg("guest log")
	return 0, nil
}

// failWithError lets contract logic abort with an explicit error code. The
// failure traps the current frame like any other host-side error.
func failWithError(h *Host, args []uint64) (uint64, error) {
	return 0, types.NewHostError(types.CodeContractError, "contract failed with code %d", args[0])
}

// callHostFn invokes another contract in a child frame. The callee's
// storage mutations are discarded if it fails, and the caller's
// authorization context is restored either way.
func callHostFn(h *Host, args []uint64) (uint64, error) {
	idBytes, err := h.ObjectBytes(args[0])
	if err != nil {
		return 0, err
	}
	if len(idBytes) != len(types.ContractID{}) {
		return 0, types.NewHostError(types.CodeContractError,
			"contract id must be %d bytes, got %d", len(types.ContractID{}), len(idBytes))
	}
	var id types.ContractID
	copy(id[:], idBytes)
	return h.callContract(id, []uint64{args[1]})
}
