package lumenvm

import (
	"github.com/lumenvm/lumenvm/types"
)

// ledgerKey builds the storage key for the current frame's contract from a
// key-name object handle and a storage-type word.
func (h *Host) ledgerKey(nameHandle, storageType uint64) (types.LedgerKey, error) {
	if storageType > uint64(types.Instance) {
		return types.LedgerKey{}, types.NewHostError(types.CodeContractError,
			"invalid storage type %d", storageType)
	}
	name, err := h.ObjectBytes(nameHandle)
	if err != nil {
		return types.LedgerKey{}, err
	}
	contract, _ := h.CurrentContract()
	return types.LedgerKey{
		Type:     types.StorageType(storageType),
		Contract: contract,
		Name:     string(name),
	}, nil
}

func getContractData(h *Host, args []uint64) (uint64, error) {
	key, err := h.ledgerKey(args[0], args[1])
	if err != nil {
		return 0, err
	}
	entry, _, err := h.storage.Get(key)
	if err != nil {
		return 0, err
	}
	return h.NewBytesObject(entry.Data)
}

func putContractData(h *Host, args []uint64) (uint64, error) {
	key, err := h.ledgerKey(args[0], args[2])
	if err != nil {
		return 0, err
	}
	value, err := h.ObjectBytes(args[1])
	if err != nil {
		return 0, err
	}
	if err := h.storage.Put(key, &types.LedgerEntry{Data: value}); err != nil {
		return 0, err
	}
	return 0, nil
}

func delContractData(h *Host, args []uint64) (uint64, error) {
	key, err := h.ledgerKey(args[0], args[1])
	if err != nil {
		return 0, err
	}
	if err := h.storage.Del(key); err != nil {
		return 0, err
	}
	return 0, nil
}

func hasContractData(h *Host, args []uint64) (uint64, error) {
	key, err := h.ledgerKey(args[0], args[1])
	if err != nil {
		return 0, err
	}
	ok, err := h.storage.Has(key)
	if err != nil {
		return 0, err
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}

func extendContractDataTTL(h *Host, args []uint64) (uint64, error) {
	key, err := h.ledgerKey(args[0], args[1])
	if err != nil {
		return 0, err
	}
	threshold := uint32(args[2])
	extend := uint32(args[3])
	if err := h.storage.ExtendTTL(key, extend, threshold); err != nil {
		return 0, err
	}
	return 0, nil
}
