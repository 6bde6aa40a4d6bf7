package sh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/tempair.go/pkg/esp3"
)

func TestParseHex(t *testing.T) {
	testCases := []struct {
		args   []string
		expect []byte
	}{
		{[]string{"55", "00", "01"}, []byte{0x55, 0x00, 0x01}},
		{[]string{"550001"}, []byte{0x55, 0x00, 0x01}},
		{[]string{"0x55 0x0 0x1"}, []byte{0x55, 0x00, 0x01}},
		{[]string{"01:80:a2:b3"}, []byte{0x01, 0x80, 0xa2, 0xb3}},
		{[]string{"A5-09-04"}, []byte{0xa5, 0x09, 0x04}},
		{nil, []byte{}},
	}
	for _, tc := range testCases {
		data, err := ParseHex(tc.args...)
		require.NoError(t, err, "%v", tc.args)
		assert.Equal(t, tc.expect, data, "%v", tc.args)
	}
	_, err := ParseHex("zz")
	assert.True(t, errors.Is(err, ErrBadHex))
}

func TestParsePacket(t *testing.T) {
	pkt, err := ParsePacket("common_command", "3E 01")
	require.NoError(t, err)
	assert.Equal(t, esp3.TransparentModeCommand(true), pkt)

	pkt, err = ParsePacket("0x01", "A5 00 00 64 08 01 80 A2 B3 00", "01", "FF FF FF FF 47 00")
	require.NoError(t, err)
	assert.Equal(t, esp3.PacketTypeRadioErp1, pkt.Type)
	assert.Len(t, pkt.Data, 10)
	assert.Equal(t, []byte{0x01, 0xff, 0xff, 0xff, 0xff, 0x47, 0x00}, pkt.OptionalData)

	_, err = ParsePacket("event")
	assert.Error(t, err)
	_, err = ParsePacket("bogus", "00")
	assert.Error(t, err)
	_, err = ParsePacket("event", "0g")
	assert.Error(t, err)
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "NotSynced consumed=3", FormatResult(&esp3.Result{Outcome: esp3.NotSynced, Consumed: 3}))

	payload, err := esp3.NewPayload([]byte{0x04}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Packet EVENT data=[04] CO_READY",
		FormatResult(&esp3.Result{Outcome: esp3.PacketReceived, Type: esp3.PacketTypeEvent, Payload: payload}))

	payload, err = esp3.NewPayload(
		[]byte{0xa5, 0x00, 0x00, 0x64, 0x08, 0x01, 0x80, 0xa2, 0xb3, 0x00},
		[]byte{0x01, 0xff, 0xff, 0xff, 0xff, 0x47, 0x00})
	require.NoError(t, err)
	s := FormatResult(&esp3.Result{Outcome: esp3.PacketReceived, Type: esp3.PacketTypeRadioErp1, Payload: payload})
	assert.Contains(t, s, "opt=[01 FF FF FF FF 47 00]")
	assert.Contains(t, s, "from 0180A2B3")
	assert.Contains(t, s, "dBm=-71")
}
