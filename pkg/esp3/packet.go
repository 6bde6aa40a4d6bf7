package esp3

import (
	"encoding/binary"
	"io"

	"github.com/robotalks/tempair.go/pkg/crc8"
)

// Frame layout constants.
const (
	// SyncByte starts every frame.
	SyncByte byte = 0x55
	// HeaderSize covers sync, lengths, packet type and header crc8.
	HeaderSize = 6
	// MinFrameSize is a frame with empty data and optional data.
	MinFrameSize = HeaderSize + 1
	// MaxDataLength is the largest data length field value.
	MaxDataLength = 0xffff
	// MaxOptionalLength is the largest optional length field value.
	MaxOptionalLength = 0xff
)

// Packet is an ESP3 packet to be encoded.
type Packet struct {
	Type         PacketType
	Data         []byte
	OptionalData []byte
}

// TransparentModeCommand creates the CO_WR_TRANSPARENT_MODE command.
func TransparentModeCommand(enable bool) *Packet {
	var flag byte
	if enable {
		flag = 0x01
	}
	return &Packet{
		Type: PacketTypeCommonCommand,
		Data: []byte{byte(CmdWriteTransparentMode), flag},
	}
}

// Size returns the encoded frame size.
func (p *Packet) Size() int {
	dataLen, optLen := p.lengths()
	return MinFrameSize + dataLen + optLen
}

// Bytes returns the encoded frame. Data beyond MaxDataLength and optional
// data beyond MaxOptionalLength is truncated.
func (p *Packet) Bytes() []byte {
	dataLen, optLen := p.lengths()
	b := make([]byte, MinFrameSize+dataLen+optLen)
	p.encodeHeader(b[:HeaderSize], dataLen, optLen)
	copy(b[HeaderSize:], p.Data[:dataLen])
	copy(b[HeaderSize+dataLen:], p.OptionalData[:optLen])
	b[len(b)-1] = crc8.Checksum(b[HeaderSize : len(b)-1])
	return b
}

// WriteTo implements io.WriterTo.
func (p *Packet) WriteTo(w io.Writer) (n int64, err error) {
	dataLen, optLen := p.lengths()
	head := make([]byte, HeaderSize)
	p.encodeHeader(head, dataLen, optLen)
	crc := crc8.Update(0, p.Data[:dataLen])
	crc = crc8.Update(crc, p.OptionalData[:optLen])
	for _, chunk := range [][]byte{head, p.Data[:dataLen], p.OptionalData[:optLen], {crc}} {
		if len(chunk) == 0 {
			continue
		}
		var n1 int
		n1, err = w.Write(chunk)
		n += int64(n1)
		if err != nil {
			return
		}
	}
	return
}

func (p *Packet) lengths() (dataLen, optLen int) {
	if dataLen = len(p.Data); dataLen > MaxDataLength {
		dataLen = MaxDataLength
	}
	if optLen = len(p.OptionalData); optLen > MaxOptionalLength {
		optLen = MaxOptionalLength
	}
	return
}

func (p *Packet) encodeHeader(head []byte, dataLen, optLen int) {
	head[0] = SyncByte
	binary.BigEndian.PutUint16(head[1:3], uint16(dataLen))
	head[3] = byte(optLen)
	head[4] = byte(p.Type)
	head[5] = crc8.Checksum(head[1:5])
}
