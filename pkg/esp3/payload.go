package esp3

import "errors"

// PayloadCapacity bounds data plus optional data of an accepted frame.
const PayloadCapacity = 128

// ErrPayloadTooLarge indicates data and optional data exceed PayloadCapacity.
var ErrPayloadTooLarge = errors.New("payload too large")

// Payload holds the data and optional data regions of a received frame.
type Payload struct {
	buf     [PayloadCapacity]byte
	dataLen int
	optLen  int
}

// NewPayload copies data and optional data into a Payload.
func NewPayload(data, optional []byte) (*Payload, error) {
	if len(data)+len(optional) > PayloadCapacity {
		return nil, ErrPayloadTooLarge
	}
	p := &Payload{dataLen: len(data), optLen: len(optional)}
	copy(p.buf[:], data)
	copy(p.buf[len(data):], optional)
	return p, nil
}

// Data returns the data region.
func (p *Payload) Data() []byte {
	return p.buf[:p.dataLen]
}

// OptionalData returns the optional data region.
func (p *Payload) OptionalData() []byte {
	return p.buf[p.dataLen : p.dataLen+p.optLen]
}

// Len returns the total occupied length.
func (p *Payload) Len() int {
	return p.dataLen + p.optLen
}
