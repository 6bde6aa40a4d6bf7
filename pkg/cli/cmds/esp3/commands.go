// Package esp3 provides shell commands to decode and encode ESP3 frames.
package esp3

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tempair.go/pkg/cli/sh"
	"github.com/robotalks/tempair.go/pkg/crc8"
	"github.com/robotalks/tempair.go/pkg/esp3"
	"github.com/robotalks/tempair.go/pkg/uart"
)

// Decode runs the framing engine over data as if it arrived on the wire.
// Outcomes which consumed bytes are reported along with the final outcome.
func Decode(data []byte) []esp3.Result {
	rx := uart.NewReceiver(nil, 0)
	engine := esp3.NewEngine(rx, nil)
	var results []esp3.Result
	for {
		free := rx.Cap() - rx.Stats().Buffered
		if free > len(data) {
			free = len(data)
		}
		rx.Feed(data[:free])
		data = data[free:]
		for {
			r := engine.ProcessOne()
			if !r.Outcome.MadeProgress() {
				if len(data) == 0 {
					return append(results, r)
				}
				break
			}
			results = append(results, r)
		}
	}
}

var (
	// DecodeCmd decodes a byte stream.
	DecodeCmd = ishell.Cmd{
		Name:    "decode",
		Aliases: []string{"dec"},
		Help:    "HEX...",
		Func: func(c *ishell.Context) {
			data, err := sh.ParseHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			for _, r := range Decode(data) {
				c.Println(sh.FormatResult(&r))
			}
		},
	}

	// FrameCmd encodes a frame.
	FrameCmd = ishell.Cmd{
		Name: "frame",
		Help: "TYPE DATA [OPTIONAL-DATA]",
		Func: func(c *ishell.Context) {
			pkt, err := sh.ParsePacket(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			out := sh.FormatHex(pkt.Bytes())
			sh.Print(c, map[string]string{"frame": out}, out)
		},
	}

	// CRCCmd computes CRC8 of bytes.
	CRCCmd = ishell.Cmd{
		Name: "crc",
		Help: "HEX...",
		Func: func(c *ishell.Context) {
			data, err := sh.ParseHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			crc := crc8.Checksum(data)
			sh.Print(c, map[string]byte{"crc8": crc}, fmt.Sprintf("%02X", crc))
		},
	}
)

func init() {
	sh.AddCmds(
		&DecodeCmd,
		&FrameCmd,
		&CRCCmd,
	)
}
