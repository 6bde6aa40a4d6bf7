package env

import (
	"bytes"
	"context"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/tempair.go/pkg/eep"
	"github.com/robotalks/tempair.go/pkg/esp3"
	"github.com/robotalks/tempair.go/pkg/pairing"
	"github.com/robotalks/tempair.go/pkg/uart"
)

func TestNewConfig(t *testing.T) {
	c := NewConfig()
	assert.NotEmpty(t, c.NodeID)
	c.NodeID = "changed"
	assert.NotEqual(t, "changed", Default().NodeID)
}

func TestPairing(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "pairing.bin")
	c := &Config{PairingFile: fn, Inside: "0A0B0C0D:A5-04-03"}

	tbl, err := c.Pairing()
	require.NoError(t, err)
	assert.False(t, tbl.Get(pairing.SlotOutside).Paired())
	assert.Equal(t, pairing.Sensor{Sender: 0x0a0b0c0d, Profile: eep.ProfileA50403}, tbl.Get(pairing.SlotInside))

	var saved pairing.Table
	saved.Set(pairing.SlotOutside, pairing.Sensor{Sender: 0x01020304, Profile: eep.ProfileA50205})
	saved.Set(pairing.SlotInside, pairing.Sensor{Sender: 0x05060708, Profile: eep.ProfileA50904})
	require.NoError(t, saved.Save(fn))
	tbl, err = c.Pairing()
	require.NoError(t, err)
	assert.Equal(t, saved.Get(pairing.SlotOutside), tbl.Get(pairing.SlotOutside))
	assert.Equal(t, uint32(0x0a0b0c0d), tbl.Get(pairing.SlotInside).Sender)

	c.Outside = "bad"
	_, err = c.Pairing()
	assert.Error(t, err)
}

func TestNewEnvErrors(t *testing.T) {
	_, err := (&Config{SourceURL: "udp://x:1"}).NewEnv(context.Background())
	assert.Error(t, err)
	_, err = (&Config{SourceURL: "tcp://x:1", Encoding: "xml"}).NewEnv(context.Background())
	assert.Error(t, err)
	_, err = (&Config{SourceURL: "tcp://x:1", QueueSize: 4}).NewEnv(context.Background())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		size int
		ok   bool
	}{
		{0, true},
		{1, false},
		{uart.MinQueueSize - 1, false},
		{uart.MinQueueSize, true},
		{uart.DefaultQueueSize, true},
	}
	for _, tc := range testCases {
		err := (&Config{QueueSize: tc.size}).Validate()
		if tc.ok {
			assert.NoError(t, err, "size %d", tc.size)
		} else {
			assert.Error(t, err, "size %d", tc.size)
		}
	}
}

func TestEnvRun(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	connCh := make(chan net.Conn, 1)
	go func() {
		if conn, err := ln.Accept(); err == nil {
			connCh <- conn
		}
	}()

	c := &Config{
		NodeID:    "test",
		SourceURL: "tcp://" + ln.Addr().String(),
		Inside:    "0180A2B3:A5-09-04",
		Encoding:  "json",
		Interval:  10 * time.Millisecond,
		QueueSize: 128,
	}
	e, err := c.NewEnv(context.Background())
	require.NoError(t, err)
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	var conn net.Conn
	select {
	case conn = <-connCh:
	case <-time.After(5 * time.Second):
		t.Fatal("source not connected")
	}
	defer conn.Close()

	ready := (&esp3.Packet{Type: esp3.PacketTypeEvent, Data: []byte{byte(esp3.EventReady)}}).Bytes()
	reading := (&esp3.Packet{
		Type: esp3.PacketTypeRadioErp1,
		Data: []byte{0xa5, 0x00, 0x00, 0x64, 0x08, 0x01, 0x80, 0xa2, 0xb3, 0x00},
	}).Bytes()
	_, err = conn.Write(append(ready, reading...))
	require.NoError(t, err)

	// the version probe and the transparent mode request, in any order
	transparent := esp3.TransparentModeCommand(true).Bytes()
	version := esp3.ReadVersionCommand().Bytes()
	sent := make([]byte, len(transparent)+len(version))
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = io.ReadFull(conn, sent)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(sent, transparent), "% x", sent)
	assert.True(t, bytes.Contains(sent, version), "% x", sent)

	require.Eventually(t, func() bool {
		return e.Handler.Latest(pairing.SlotInside) != nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 200, e.Handler.Latest(pairing.SlotInside).Tenths)

	e.handlePairCommand("test/pair/outside", []byte("01020304:A5-02-05"))
	tbl := e.Handler.Pairing()
	assert.Equal(t, uint32(0x01020304), tbl.Get(pairing.SlotOutside).Sender)

	cancel()
	select {
	case err := <-errCh:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		t.Fatal("node not stopped")
	}
	assert.NoError(t, e.Close())
}
