// Package erp1 decodes RADIO_ERP1 packets into radio telegrams.
package erp1

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/robotalks/tempair.go/pkg/esp3"
)

// RORG is the radio telegram type, the first data byte.
type RORG byte

// Supported RORGs
const (
	RORGRPS RORG = 0xF6 // repeated switch communication
	RORG1BS RORG = 0xD5 // 1 byte communication
	RORG4BS RORG = 0xA5 // 4 byte communication
	RORGVLD RORG = 0xD2 // variable length data
)

// String implements fmt.Stringer.
func (r RORG) String() string {
	switch r {
	case RORGRPS:
		return "RPS"
	case RORG1BS:
		return "1BS"
	case RORG4BS:
		return "4BS"
	case RORGVLD:
		return "VLD"
	}
	return fmt.Sprintf("RORG(%02X)", byte(r))
}

// sender ID (4) + status (1)
const trailerSize = 5

// OptionalDataSize is the size of the optional data of an ERP1 packet.
const OptionalDataSize = 7

// OptionalData is the receive information appended by the radio module.
type OptionalData struct {
	SubTelNum     byte
	Destination   uint32
	DBm           int
	SecurityLevel byte
}

// Telegram is a decoded ERP1 radio telegram.
type Telegram struct {
	RORG   RORG
	Data   []byte
	Sender uint32
	Status byte
	// Optional is nil when the packet carries no optional data.
	Optional *OptionalData
}

// Decode decodes the payload of a RADIO_ERP1 packet.
func Decode(typ esp3.PacketType, p *esp3.Payload) (*Telegram, error) {
	if typ != esp3.PacketTypeRadioErp1 {
		return nil, ErrNotERP1
	}
	data := p.Data()
	if len(data) < 1 {
		return nil, &LengthError{Length: 0}
	}
	t := &Telegram{RORG: RORG(data[0])}
	switch t.RORG {
	case RORGRPS, RORG1BS:
		if len(data) != 1+1+trailerSize {
			return nil, &LengthError{RORG: t.RORG, Length: len(data)}
		}
	case RORG4BS:
		if len(data) != 1+4+trailerSize {
			return nil, &LengthError{RORG: t.RORG, Length: len(data)}
		}
	case RORGVLD:
		if len(data) < 1+trailerSize {
			return nil, &LengthError{RORG: t.RORG, Length: len(data)}
		}
	default:
		return nil, &UnknownRORGError{RORG: t.RORG}
	}
	trailer := data[len(data)-trailerSize:]
	t.Data = make([]byte, len(data)-1-trailerSize)
	copy(t.Data, data[1:])
	t.Sender = binary.BigEndian.Uint32(trailer[:4])
	t.Status = trailer[4]

	if opt := p.OptionalData(); len(opt) >= OptionalDataSize {
		t.Optional = &OptionalData{
			SubTelNum:     opt[0],
			Destination:   binary.BigEndian.Uint32(opt[1:5]),
			DBm:           -int(opt[5]),
			SecurityLevel: opt[6],
		}
	}
	return t, nil
}

// DataWord returns Data as a big-endian 32-bit word, as used by 4BS profiles.
func (t *Telegram) DataWord() (uint32, bool) {
	if len(t.Data) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(t.Data), true
}

// String implements fmt.Stringer.
func (t *Telegram) String() string {
	s := fmt.Sprintf("%s from %s data=% X status=%02X", t.RORG, FormatID(t.Sender), t.Data, t.Status)
	if t.Optional != nil {
		s += fmt.Sprintf(" dBm=%d", t.Optional.DBm)
	}
	return s
}

// FormatID formats a device ID as 8 hex digits.
func FormatID(id uint32) string {
	return fmt.Sprintf("%08X", id)
}

// ParseID parses a device ID in hex, optional colons or dashes allowed.
func ParseID(s string) (uint32, error) {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if c := s[i]; c != ':' && c != '-' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 || len(digits) > 8 {
		return 0, fmt.Errorf("invalid device ID %q", s)
	}
	id, err := strconv.ParseUint(string(digits), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid device ID %q: %v", s, err)
	}
	return uint32(id), nil
}
