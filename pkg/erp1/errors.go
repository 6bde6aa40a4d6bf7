package erp1

import (
	"errors"
	"fmt"
)

// ErrNotERP1 indicates the packet is not RADIO_ERP1.
var ErrNotERP1 = errors.New("not an ERP1 packet")

// UnknownRORGError indicates an unsupported telegram type.
type UnknownRORGError struct {
	RORG RORG
}

// Error implements error.
func (e *UnknownRORGError) Error() string {
	return fmt.Sprintf("unknown RORG %02X", byte(e.RORG))
}

// LengthError indicates the data length does not match the RORG.
type LengthError struct {
	RORG   RORG
	Length int
}

// Error implements error.
func (e *LengthError) Error() string {
	return fmt.Sprintf("invalid %s telegram length %d", e.RORG, e.Length)
}
