package source

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		in     string
		expect *Config
	}{
		{"serial:///dev/ttyUSB0", &Config{Scheme: "serial", Address: "/dev/ttyUSB0", Baud: 57600}},
		{"serial:///dev/ttyAMA0?baud=115200", &Config{Scheme: "serial", Address: "/dev/ttyAMA0", Baud: 115200}},
		{"serial://COM3", &Config{Scheme: "serial", Address: "COM3", Baud: 57600}},
		{"/dev/ttyUSB1", &Config{Scheme: "serial", Address: "/dev/ttyUSB1", Baud: 57600}},
		{"tcp://gw:2000", &Config{Scheme: "tcp", Address: "gw:2000"}},
		{"ws://gw/esp3", &Config{Scheme: "ws", Address: "ws://gw/esp3"}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			c, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, c)
		})
	}
	_, err := Parse("udp://gw:2000")
	assert.True(t, errors.Is(err, ErrUnknownScheme))
	_, err = Parse("tcp://")
	assert.True(t, errors.Is(err, ErrNoAddress))
	for _, in := range []string{"udp://gw:2000", "tcp://", "serial:///dev/tty?baud=x", "serial:///dev/tty?baud=-1"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestOpenTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(conn, conn)
	}()

	rwc, err := Open(context.Background(), "tcp://"+ln.Addr().String())
	require.NoError(t, err)
	defer rwc.Close()
	_, err = rwc.Write([]byte{0x55, 0x00})
	require.NoError(t, err)
	buf := make([]byte, 2)
	_, err = io.ReadFull(rwc, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x55, 0x00}, buf)
}

func TestOpenWebSocket(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		io.Copy(ws, ws)
	}))
	defer srv.Close()

	rwc, err := Open(context.Background(), "ws://"+strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	defer rwc.Close()
	_, err = rwc.Write([]byte{0x55, 0x01, 0x02})
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = io.ReadFull(rwc, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x55, 0x01, 0x02}, buf)
}

func TestOpenWebSocketDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, err = Open(ctx, "ws://"+ln.Addr().String()+"/esp3")
	assert.Error(t, err)
}

func TestOpenSerialMissing(t *testing.T) {
	_, err := Open(context.Background(), "serial:///dev/tempair-does-not-exist")
	assert.Error(t, err)
}
