package eep

import (
	"encoding/binary"
	"errors"
)

// ErrNoTeachInProfile indicates a teach-in telegram without profile
// information (4BS teach-in variant 1).
var ErrNoTeachInProfile = errors.New("teach-in telegram without profile")

// DB0 bit 7 of a 4BS teach-in telegram, set when FUNC/TYPE are included.
const lrnTypeBit = 0x80

// TeachIn extracts the profile from a 4BS teach-in telegram:
// FFFFFFTT TTTTTMMM MMMMMMMM L000L000.
func TeachIn(data []byte) (Profile, uint16, error) {
	if len(data) != 4 {
		return 0, 0, &FormatError{Profile: NewProfile(0xa5, 0, 0), Length: len(data)}
	}
	word := binary.BigEndian.Uint32(data)
	if word&lrnBit != 0 {
		return 0, 0, errors.New("not a teach-in telegram")
	}
	if word&lrnTypeBit == 0 {
		return 0, 0, ErrNoTeachInProfile
	}
	fn := byte(word>>26) & 0x3f
	typ := byte(word>>19) & 0x7f
	manufacturer := uint16(word>>8) & 0x7ff
	return NewProfile(0xa5, fn, typ), manufacturer, nil
}
