// Package source opens the byte stream of an ESP3 radio module.
package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"time"

	"go.bug.st/serial"
	"golang.org/x/net/websocket"
)

// DefaultBaudRate is the ESP3 line rate.
const DefaultBaudRate = 57600

// DefaultReadTimeout bounds a single serial read.
const DefaultReadTimeout = time.Second

// Config describes a source.
type Config struct {
	Scheme  string
	Address string
	Baud    int
}

// Parse parses a source URL:
//
//	serial:///dev/ttyUSB0?baud=57600
//	/dev/ttyUSB0
//	tcp://host:port
//	ws://host:port/path
func Parse(rawURL string) (*Config, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	c := &Config{Scheme: u.Scheme}
	switch u.Scheme {
	case "":
		c.Scheme, c.Address = "serial", u.Path
	case "serial":
		c.Address = u.Path
		if c.Address == "" {
			c.Address = u.Host
		}
	case "tcp":
		c.Address = u.Host
	case "ws", "wss":
		c.Address = rawURL
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, u.Scheme)
	}
	if c.Address == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoAddress, rawURL)
	}
	if c.Scheme == "serial" {
		c.Baud = DefaultBaudRate
		if val := u.Query().Get("baud"); val != "" {
			if c.Baud, err = strconv.Atoi(val); err != nil || c.Baud <= 0 {
				return nil, fmt.Errorf("invalid baud rate %q", val)
			}
		}
	}
	return c, nil
}

// Open opens the source described by rawURL.
func Open(ctx context.Context, rawURL string) (io.ReadWriteCloser, error) {
	c, err := Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return c.Open(ctx)
}

// Open opens the source.
func (c *Config) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	switch c.Scheme {
	case "serial":
		return openSerial(c.Address, c.Baud)
	case "tcp":
		var d net.Dialer
		return d.DialContext(ctx, "tcp", c.Address)
	default:
		return openWebSocket(ctx, c.Address)
	}
}

func openSerial(path string, baud int) (io.ReadWriteCloser, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", path, err)
	}
	if err := port.SetReadTimeout(DefaultReadTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

func openWebSocket(ctx context.Context, rawURL string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host
	if u.Scheme == "wss" {
		origin = "https://" + u.Host
	}
	config, err := websocket.NewConfig(rawURL, origin)
	if err != nil {
		return nil, err
	}
	config.Dialer = &net.Dialer{}
	if deadline, ok := ctx.Deadline(); ok {
		config.Dialer.Deadline = deadline
	}
	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}
