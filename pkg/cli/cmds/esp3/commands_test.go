package esp3

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/tempair.go/pkg/esp3"
)

func TestDecode(t *testing.T) {
	frame := (&esp3.Packet{Type: esp3.PacketTypeRadioErp1, Data: []byte{0xf6, 0x50, 1, 2, 3, 4, 0x30}}).Bytes()
	var in []byte
	in = append(in, 0x00, 0x01)
	in = append(in, frame...)
	in = append(in, frame[:3]...)

	results := Decode(in)
	require.Len(t, results, 2)
	assert.Equal(t, esp3.PacketReceived, results[0].Outcome)
	assert.Equal(t, 2+len(frame), results[0].Consumed)
	assert.Equal(t, esp3.NotEnoughBytes, results[1].Outcome)

	results = Decode(nil)
	require.Len(t, results, 1)
	assert.Equal(t, esp3.BufferEmpty, results[0].Outcome)
}

func TestDecodeLongStream(t *testing.T) {
	frame := (&esp3.Packet{Type: esp3.PacketTypeEvent, Data: []byte{byte(esp3.EventDutyCycleLimit)}}).Bytes()
	in := bytes.Repeat(frame, 100)
	results := Decode(in)
	require.Len(t, results, 101)
	for _, r := range results[:100] {
		assert.Equal(t, esp3.PacketReceived, r.Outcome)
	}
	assert.Equal(t, esp3.BufferEmpty, results[100].Outcome)
}
