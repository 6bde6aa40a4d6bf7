package esp3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/tempair.go/pkg/crc8"
)

// SnapshotSize is the look-ahead window of one ProcessOne call.
// It also bounds the largest frame the Engine accepts.
const SnapshotSize = 128

// Outcome classifies the result of one ProcessOne call.
type Outcome int

// Outcomes
const (
	// BufferEmpty means no bytes are queued.
	BufferEmpty Outcome = iota
	// NotSynced means noise or a false sync byte was discarded.
	NotSynced
	// NotEnoughBytes means a sync byte leads the queue but a header is incomplete.
	NotEnoughBytes
	// Short means the header is valid but the frame is incomplete.
	Short
	// PacketReceived means a validated frame was consumed.
	PacketReceived
)

var outcomeNames = [...]string{
	BufferEmpty:    "BufferEmpty",
	NotSynced:      "NotSynced",
	NotEnoughBytes: "NotEnoughBytes",
	Short:          "Short",
	PacketReceived: "Packet",
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MadeProgress indicates bytes were consumed and another call may yield more.
func (o Outcome) MadeProgress() bool {
	return o == NotSynced || o == PacketReceived
}

// Result is produced by each ProcessOne call.
type Result struct {
	Outcome Outcome
	// Type and Payload are set only when Outcome is PacketReceived.
	Type    PacketType
	Payload *Payload
	// Consumed is the number of bytes removed from the Source.
	Consumed int
}

// Source is the consumer side of the receive queue.
type Source interface {
	// CopyBuffer copies queued bytes into dst without consuming them.
	CopyBuffer(dst []byte) int
	// TakeByte consumes one byte.
	TakeByte() (byte, bool)
	// Discard consumes up to n bytes.
	Discard(n int) int
}

// Engine extracts frames from a Source.
type Engine struct {
	Source Source
	// Sink receives automatic replies (transparent mode request).
	Sink io.Writer

	snapshot [SnapshotSize]byte
}

// NewEngine creates an Engine.
func NewEngine(src Source, sink io.Writer) *Engine {
	return &Engine{Source: src, Sink: sink}
}

// MaxFrameSize returns the largest frame the Engine can accept.
func (e *Engine) MaxFrameSize() int {
	size := SnapshotSize
	if c, ok := e.Source.(interface{ Cap() int }); ok && c.Cap() < size {
		size = c.Cap()
	}
	return size
}

// ProcessOne makes exactly one decision on the currently queued bytes:
// it either consumes at least one byte or reports more bytes are needed.
func (e *Engine) ProcessOne() (r Result) {
	n := e.Source.CopyBuffer(e.snapshot[:])
	if n == 0 {
		r.Outcome = BufferEmpty
		return
	}

	pos := bytes.IndexByte(e.snapshot[:n], SyncByte)
	if pos < 0 {
		r.Consumed = e.Source.Discard(n)
		r.Outcome = NotSynced
		glog.V(2).Infof("esp3: no sync in %d bytes", r.Consumed)
		return
	}
	r.Consumed = e.Source.Discard(pos)

	n = e.Source.CopyBuffer(e.snapshot[:])
	frame := e.snapshot[:n]
	if n < MinFrameSize {
		r.Outcome = NotEnoughBytes
		return
	}

	if crc8.Checksum(frame[1:5]) != frame[5] {
		glog.V(2).Info("esp3: header crc8 mismatch")
		return e.dropSync(r)
	}

	dataLen := int(binary.BigEndian.Uint16(frame[1:3]))
	optLen := int(frame[3])
	size := MinFrameSize + dataLen + optLen
	if size > e.MaxFrameSize() {
		glog.V(2).Infof("esp3: frame size %d exceeds %d", size, e.MaxFrameSize())
		return e.dropSync(r)
	}
	if size > n {
		r.Outcome = Short
		return
	}

	body := frame[HeaderSize : size-1]
	if crc8.Checksum(body) != frame[size-1] {
		glog.V(2).Info("esp3: data crc8 mismatch")
		return e.dropSync(r)
	}

	r.Consumed += e.Source.Discard(size)
	payload, err := NewPayload(body[:dataLen], body[dataLen:])
	if err != nil {
		// size is bounded by MaxFrameSize which fits PayloadCapacity.
		panic(err)
	}
	r.Outcome, r.Type, r.Payload = PacketReceived, PacketType(frame[4]), payload
	glog.V(2).Infof("esp3: %s data=% x opt=% x", r.Type, payload.Data(), payload.OptionalData())

	if r.Type == PacketTypeEvent && dataLen > 0 && EventType(body[0]) == EventReady {
		e.requestTransparentMode()
	}
	return
}

// dropSync consumes the sync byte at the front, which turned out not to
// start a frame.
func (e *Engine) dropSync(r Result) Result {
	if _, ok := e.Source.TakeByte(); ok {
		r.Consumed++
	}
	r.Outcome = NotSynced
	return r
}

func (e *Engine) requestTransparentMode() {
	if e.Sink == nil {
		glog.Warning("esp3: module ready but no sink for transparent mode request")
		return
	}
	glog.Info("esp3: module ready, requesting transparent mode")
	if _, err := e.Sink.Write(TransparentModeCommand(true).Bytes()); err != nil {
		glog.Errorf("esp3: transparent mode request error: %v", err)
	}
}
