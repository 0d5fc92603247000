package lumenvm

import (
	"github.com/lumenvm/lumenvm/registry"
	"github.com/lumenvm/lumenvm/types"
)

// ManifestVersion identifies the host-function manifest revision. Changing
// the manifest is a protocol-version event, not runtime configuration.
const ManifestVersion uint32 = 1

// hf adapts a host-bound implementation to the registry's calling
// convention.
func hf(fn func(h *Host, args []uint64) (uint64, error)) registry.HostFunc {
	return func(env registry.Env, args []uint64) (uint64, error) {
		h, ok := env.(*Host)
		if !ok {
			return 0, types.NewHostError(types.CodeInternal, "env is not a host")
		}
		return fn(h, args)
	}
}

// Manifest is the closed, versioned list of every function guest code is
// permitted to import. One entry per capability; the registry rejects
// anything else at instantiation time.
func Manifest() []registry.FuncInfo {
	return []registry.FuncInfo{
		// Ledger storage.
		{Module: "l", Name: "get_contract_data", Arity: 2, Fn: hf(getContractData)},
		{Module: "l", Name: "put_contract_data", Arity: 3, Fn: hf(putContractData)},
		{Module: "l", Name: "del_contract_data", Arity: 2, Fn: hf(delContractData)},
		{Module: "l", Name: "has_contract_data", Arity: 2, Fn: hf(hasContractData)},
		{Module: "l", Name: "extend_contract_data_ttl", Arity: 4, Fn: hf(extendContractDataTTL)},

		// Byte objects.
		{Module: "b", Name: "bytes_new", Arity: 1, Fn: hf(bytesNew)},
		{Module: "b", Name: "bytes_len", Arity: 1, Fn: hf(bytesLen)},
		{Module: "b", Name: "bytes_get", Arity: 2, Fn: hf(bytesGet)},
		{Module: "b", Name: "bytes_put", Arity: 3, Fn: hf(bytesPut)},
		{Module: "b", Name: "bytes_append", Arity: 2, Fn: hf(bytesAppend)},
		{Module: "b", Name: "bytes_slice", Arity: 3, Fn: hf(bytesSlice)},

		// Compute.
		{Module: "c", Name: "compute_sha256", Arity: 1, Fn: hf(computeSha256)},

		// Context.
		{Module: "x", Name: "get_ledger_sequence", Arity: 0, Fn: hf(getLedgerSequence)},
		{Module: "x", Name: "get_ledger_version", Arity: 0, Fn: hf(getLedgerVersion)},
		{Module: "x", Name: "log_from_bytes", Arity: 1, Fn: hf(logFromBytes)},
		{Module: "x", Name: "fail_with_error", Arity: 1, Fn: hf(failWithError)},

		// Cross-contract call.
		{Module: "d", Name: "call", Arity: 2, Fn: hf(callHostFn)},
	}
}
