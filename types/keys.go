package types

import (
	"bytes"
	"fmt"
)

// StorageType partitions ledger state by expiry policy. Each class carries
// its own TTL extension constants in the storage layer.
type StorageType uint8

const (
	Temporary StorageType = iota
	Persistent
	Instance
)

func (s StorageType) String() string {
	switch s {
	case Temporary:
		return "temporary"
	case Persistent:
		return "persistent"
	case Instance:
		return "instance"
	default:
		return fmt.Sprintf("storage_type(%d)", uint8(s))
	}
}

// ContractID identifies a contract instance on the ledger.
type ContractID [32]byte

func (c ContractID) String() string {
	return fmt.Sprintf("%X", c[:4])
}

// LedgerKey identifies one unit of persistent contract state. Keys are
// comparable (usable as map keys) and totally ordered via their encoding.
type LedgerKey struct {
	Type     StorageType
	Contract ContractID
	Name     string
}

// Encode returns the stable byte encoding of the key: one type byte, the
// contract id, then the raw name bytes. The encoding is order-preserving
// within a (type, contract) partition.
func (k LedgerKey) Encode() []byte {
	out := make([]byte, 0, 1+len(k.Contract)+len(k.Name))
	out = append(out, byte(k.Type))
	out = append(out, k.Contract[:]...)
	out = append(out, k.Name...)
	return out
}

// EncodedSize is the metered size of the key.
func (k LedgerKey) EncodedSize() uint64 {
	return uint64(1 + len(k.Contract) + len(k.Name))
}

// Compare orders two keys by their byte encoding.
func (k LedgerKey) Compare(other LedgerKey) int {
	return bytes.Compare(k.Encode(), other.Encode())
}

func (k LedgerKey) String() string {
	return fmt.Sprintf("%s/%s/%q", k.Type, k.Contract, k.Name)
}
