// Package eep decodes EnOcean Equipment Profile data.
package eep

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile is RORG-FUNC-TYPE packed as 0xRRFFTT.
type Profile uint32

// Temperature profiles
const (
	ProfileA50205 Profile = 0xA50205 // temperature sensor 0..+40 °C
	ProfileA50403 Profile = 0xA50403 // temperature and humidity, -20..+60 °C, 10 bit
	ProfileA50904 Profile = 0xA50904 // CO2, humidity and temperature
)

// NewProfile packs a profile.
func NewProfile(rorg, fn, typ byte) Profile {
	return Profile(uint32(rorg)<<16 | uint32(fn)<<8 | uint32(typ))
}

// ParseProfile parses "A5-09-04" or "A50904".
func ParseProfile(s string) (Profile, error) {
	digits := strings.Replace(s, "-", "", -1)
	if len(digits) != 6 {
		return 0, fmt.Errorf("invalid profile %q", s)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid profile %q: %v", s, err)
	}
	return Profile(v), nil
}

// RORG returns the telegram type of the profile.
func (p Profile) RORG() byte {
	return byte(p >> 16)
}

// Func returns the profile function.
func (p Profile) Func() byte {
	return byte(p >> 8)
}

// Type returns the profile type.
func (p Profile) Type() byte {
	return byte(p)
}

// String implements fmt.Stringer.
func (p Profile) String() string {
	return fmt.Sprintf("%02X-%02X-%02X", p.RORG(), p.Func(), p.Type())
}
