// Package pairing maps radio senders to the two display slots.
package pairing

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/robotalks/tempair.go/pkg/eep"
	"github.com/robotalks/tempair.go/pkg/erp1"
)

// Slot is a display position.
type Slot int

// Slots
const (
	SlotOutside Slot = iota // top display
	SlotInside              // bottom display
	numSlots
)

// String implements fmt.Stringer.
func (s Slot) String() string {
	switch s {
	case SlotOutside:
		return "outside"
	case SlotInside:
		return "inside"
	}
	return fmt.Sprintf("slot%d", int(s))
}

// ParseSlot parses a slot name.
func ParseSlot(name string) (Slot, error) {
	for s := Slot(0); s < numSlots; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown slot %q", name)
}

// Sensor identifies a paired sender and how to decode its telegrams.
type Sensor struct {
	Sender  uint32
	Profile eep.Profile
}

// Parse parses "SENDER:EEP", e.g. "0180A2B3:A5-09-04".
func Parse(s string) (Sensor, error) {
	pos := strings.LastIndex(s, ":")
	if pos < 0 {
		return Sensor{}, fmt.Errorf("invalid sensor %q, expect SENDER:EEP", s)
	}
	sender, err := erp1.ParseID(s[:pos])
	if err != nil {
		return Sensor{}, err
	}
	profile, err := eep.ParseProfile(s[pos+1:])
	if err != nil {
		return Sensor{}, err
	}
	return Sensor{Sender: sender, Profile: profile}, nil
}

// Paired indicates the sensor is set.
func (s Sensor) Paired() bool {
	return s.Sender != 0 && s.Sender != erasedSender
}

// String implements fmt.Stringer.
func (s Sensor) String() string {
	if !s.Paired() {
		return "-"
	}
	return erp1.FormatID(s.Sender) + ":" + s.Profile.String()
}

// EncodedSize is the size of the binary table.
const EncodedSize = int(numSlots) * sensorSize

const (
	sensorSize   = 7
	erasedSender = 0xffffffff
)

// Table holds the sensor of each slot.
type Table struct {
	sensors [numSlots]Sensor
}

// Set pairs sensor to slot.
func (t *Table) Set(slot Slot, sensor Sensor) {
	t.sensors[slot] = sensor
}

// Get returns the sensor of slot.
func (t *Table) Get(slot Slot) Sensor {
	return t.sensors[slot]
}

// Clear unpairs slot.
func (t *Table) Clear(slot Slot) {
	t.sensors[slot] = Sensor{}
}

// Match finds the slot a telegram belongs to.
func (t *Table) Match(tel *erp1.Telegram) (Slot, Sensor, bool) {
	for n, sensor := range t.sensors {
		if sensor.Paired() && sensor.Sender == tel.Sender &&
			sensor.Profile.RORG() == byte(tel.RORG) {
			return Slot(n), sensor, true
		}
	}
	return 0, Sensor{}, false
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return fmt.Sprintf("%s=%s %s=%s",
		SlotOutside, t.sensors[SlotOutside], SlotInside, t.sensors[SlotInside])
}

// MarshalBinary encodes each slot as a big-endian 32-bit sender followed by
// a 24-bit profile.
func (t *Table) MarshalBinary() ([]byte, error) {
	data := make([]byte, EncodedSize)
	for n, sensor := range t.sensors {
		b := data[n*sensorSize:]
		binary.BigEndian.PutUint32(b, sensor.Sender)
		b[4], b[5], b[6] = sensor.Profile.RORG(), sensor.Profile.Func(), sensor.Profile.Type()
	}
	return data, nil
}

// UnmarshalBinary decodes data from MarshalBinary. Erased slots (all 0xFF)
// decode as unpaired.
func (t *Table) UnmarshalBinary(data []byte) error {
	if len(data) != EncodedSize {
		return fmt.Errorf("invalid pairing table size %d", len(data))
	}
	for n := range t.sensors {
		b := data[n*sensorSize:]
		sensor := Sensor{
			Sender:  binary.BigEndian.Uint32(b),
			Profile: eep.NewProfile(b[4], b[5], b[6]),
		}
		if !sensor.Paired() {
			sensor = Sensor{}
		}
		t.sensors[n] = sensor
	}
	return nil
}

// Load reads a table from file.
func Load(fn string) (*Table, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	t := &Table{}
	if err := t.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%s: %v", fn, err)
	}
	return t, nil
}

// Save writes the table to file.
func (t *Table) Save(fn string) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(fn, data, 0644)
}
