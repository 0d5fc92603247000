package types

import (
	"errors"
	"fmt"
)

// ErrorCode is the closed set of failure categories the host can produce.
// Codes are part of the host's public contract; detail text is not.
type ErrorCode uint8

const (
	CodeImportResolution ErrorCode = iota + 1
	CodeResourceExhausted
	CodeFootprintViolation
	CodeExpiredEntry
	CodeMissingEntry
	CodeContractError
	CodeGuestTrap
	CodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case CodeImportResolution:
		return "import resolution"
	case CodeResourceExhausted:
		return "resource exhausted"
	case CodeFootprintViolation:
		return "footprint violation"
	case CodeExpiredEntry:
		return "expired entry"
	case CodeMissingEntry:
		return "missing entry"
	case CodeContractError:
		return "contract error"
	case CodeGuestTrap:
		return "guest trap"
	case CodeInternal:
		return "internal error"
	default:
		return fmt.Sprintf("error_code(%d)", uint8(c))
	}
}

// HostError is a structured host-side failure: a category plus diagnostic
// detail. The detail never crosses the guest boundary.
type HostError struct {
	Code ErrorCode
	Msg  string
}

var _ error = (*HostError)(nil)

func (e *HostError) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// NewHostError builds a HostError with formatted detail.
func NewHostError(code ErrorCode, format string, args ...interface{}) *HostError {
	return &HostError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is a HostError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var he *HostError
	if errors.As(err, &he) {
		return he.Code == code
	}
	return false
}

// Trap is the opaque failure signal surfaced to guest code. Guests observe
// only that a trap occurred; the originating HostError is retained host-side
// for diagnostics.
type Trap struct{}

var _ error = (*Trap)(nil)

func (t *Trap) Error() string { return "host function trap" }
