package eep

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrTeachIn indicates a teach-in telegram which carries no measurement.
	ErrTeachIn = errors.New("teach-in telegram")
	// ErrUnsupportedProfile indicates the profile has no temperature decoder.
	ErrUnsupportedProfile = errors.New("unsupported profile")
)

// FormatError indicates the data does not fit the profile.
type FormatError struct {
	Profile Profile
	Length  int
}

// Error implements error.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: invalid data length %d", e.Profile, e.Length)
}

// 4BS LRN bit in DB0, cleared for teach-in telegrams.
const lrnBit = 0x08

// Reading is a temperature in tenths of a degree Celsius.
type Reading struct {
	Tenths int
}

// Celsius returns the temperature in degrees Celsius.
func (r Reading) Celsius() float64 {
	return float64(r.Tenths) / 10
}

// String formats the reading with one decimal, e.g. "-3.5".
func (r Reading) String() string {
	tenths, sign := r.Tenths, ""
	if tenths < 0 {
		tenths, sign = -tenths, "-"
	}
	return fmt.Sprintf("%s%d.%d", sign, tenths/10, tenths%10)
}

// Supported indicates p has a temperature decoder.
func Supported(p Profile) bool {
	switch p {
	case ProfileA50205, ProfileA50403, ProfileA50904:
		return true
	}
	return false
}

// DecodeTemperature decodes the telegram data (without RORG and sender)
// of a temperature profile.
func DecodeTemperature(p Profile, data []byte) (Reading, error) {
	if !Supported(p) {
		return Reading{}, ErrUnsupportedProfile
	}
	if len(data) != 4 {
		return Reading{}, &FormatError{Profile: p, Length: len(data)}
	}
	word := binary.BigEndian.Uint32(data)
	if word&lrnBit == 0 {
		return Reading{}, ErrTeachIn
	}
	switch p {
	case ProfileA50904:
		// HHHHHHHH CCCCCCCC TTTTTTTT 0000Lxx0, 0.2 °C per step
		return Reading{Tenths: int((word>>8)&0xff) * 2}, nil
	case ProfileA50403:
		// HHHHHHHH 000000TT TTTTTTTT 0000L00x, -20..+60 °C over 10 bits
		raw := int((word >> 8) & 0x3ff)
		return Reading{Tenths: raw*800/1024 - 200}, nil
	default:
		// 00000000 00000000 TTTTTTTT 0000L000, 255..0 maps 0..+40 °C
		raw := int((word >> 8) & 0xff)
		return Reading{Tenths: (255 - raw) * 400 / 255}, nil
	}
}

// Display renders the reading for a three digit seven-segment display,
// e.g. " 5.3", "21.4", "-0.5" or "-12". Readings of -1.0 °C and below drop
// the decimal. Values beyond three digits are clamped.
func (r Reading) Display() string {
	t := r.Tenths
	switch {
	case t <= -990:
		return "-99"
	case t <= -10:
		return fmt.Sprintf("-%02d", -t/10)
	case t < 0:
		return fmt.Sprintf("-%d.%d", -t/10, -t%10)
	case t > 999:
		t = 999
	}
	return fmt.Sprintf("%2d.%d", t/10, t%10)
}
