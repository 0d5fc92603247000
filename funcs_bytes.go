package lumenvm

import (
	"crypto/sha256"

	"github.com/lumenvm/lumenvm/budget"
	"github.com/lumenvm/lumenvm/types"
)

func bytesNew(h *Host, args []uint64) (uint64, error) {
	size := args[0]
	if size > 1<<32 {
		return 0, types.NewHostError(types.CodeContractError, "bytes_new size %d too large", size)
	}
	return h.NewBytesObject(make([]byte, size))
}

func bytesLen(h *Host, args []uint64) (uint64, error) {
	data, err := h.ObjectBytes(args[0])
	if err != nil {
		return 0, err
	}
	return uint64(len(data)), nil
}

func bytesGet(h *Host, args []uint64) (uint64, error) {
	data, err := h.ObjectBytes(args[0])
	if err != nil {
		return 0, err
	}
	idx := args[1]
	if idx >= uint64(len(data)) {
		return 0, types.NewHostError(types.CodeContractError,
			"bytes_get index %d out of range %d", idx, len(data))
	}
	return uint64(data[idx]), nil
}

func bytesPut(h *Host, args []uint64) (uint64, error) {
	data, err := h.ObjectBytes(args[0])
	if err != nil {
		return 0, err
	}
	idx, val := args[1], args[2]
	if idx >= uint64(len(data)) {
		return 0, types.NewHostError(types.CodeContractError,
			"bytes_put index %d out of range %d", idx, len(data))
	}
	if val > 0xff {
		return 0, types.NewHostError(types.CodeContractError, "bytes_put value %d is not a byte", val)
	}
	if err := h.budget.Charge(budget.MemCpy, 1); err != nil {
		return 0, err
	}
	data[idx] = byte(val)
	return args[0], nil
}

func bytesAppend(h *Host, args []uint64) (uint64, error) {
	a, err := h.ObjectBytes(args[0])
	if err != nil {
		return 0, err
	}
	b, err := h.ObjectBytes(args[1])
	if err != nil {
		return 0, err
	}
	if err := h.budget.Charge(budget.MemCpy, uint64(len(a)+len(b))); err != nil {
		return 0, err
	}
	joined := make([]byte, 0, len(a)+len(b))
	joined = append(joined, a...)
	joined = append(joined, b...)
	return h.NewBytesObject(joined)
}

func bytesSlice(h *Host, args []uint64) (uint64, error) {
	data, err := h.ObjectBytes(args[0])
	if err != nil {
		return 0, err
	}
	start, end := args[1], args[2]
	if start > end || end > uint64(len(data)) {
		return 0, types.NewHostError(types.CodeContractError,
			"bytes_slice range [%d, %d) out of range %d", start, end, len(data))
	}
	if err := h.budget.Charge(budget.MemCpy, end-start); err != nil {
		return 0, err
	}
	return h.NewBytesObject(data[start:end])
}

func computeSha256(h *Host, args []uint64) (uint64, error) {
	data, err := h.ObjectBytes(args[0])
	if err != nil {
		return 0, err
	}
	if err := h.budget.Charge(budget.ComputeSha256Hash, uint64(len(data))); err != nil {
		return 0, err
	}
	sum := sha256.Sum256(data)
	return h.NewBytesObject(sum[:])
}
