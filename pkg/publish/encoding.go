package publish

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/golang/protobuf/proto"
)

// Encoder serializes events for the wire.
type Encoder interface {
	Name() string
	Encode(ev *Event) ([]byte, error)
}

// Encoders
var (
	JSON  Encoder = jsonEncoder{}
	Proto Encoder = protoEncoder{}
)

// EncoderByName finds an Encoder by name.
func EncoderByName(name string) (Encoder, error) {
	switch name {
	case "", JSON.Name():
		return JSON, nil
	case Proto.Name():
		return Proto, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

type jsonEncoder struct{}

func (jsonEncoder) Name() string { return "json" }

func (jsonEncoder) Encode(ev *Event) ([]byte, error) {
	return sonic.Marshal(ev)
}

type protoEncoder struct{}

func (protoEncoder) Name() string { return "proto" }

func (protoEncoder) Encode(ev *Event) ([]byte, error) {
	return proto.Marshal(NewReading(ev))
}

// Reading is the protobuf form of Event.
type Reading struct {
	Node    string `protobuf:"bytes,1,opt,name=node,proto3" json:"node,omitempty"`
	Slot    string `protobuf:"bytes,2,opt,name=slot,proto3" json:"slot,omitempty"`
	Sender  string `protobuf:"bytes,3,opt,name=sender,proto3" json:"sender,omitempty"`
	Profile string `protobuf:"bytes,4,opt,name=profile,proto3" json:"profile,omitempty"`
	Tenths  int32  `protobuf:"zigzag32,5,opt,name=tenths,proto3" json:"tenths,omitempty"`
	Rssi    int32  `protobuf:"zigzag32,6,opt,name=rssi,proto3" json:"rssi,omitempty"`
	TimeMs  int64  `protobuf:"varint,7,opt,name=time_ms,json=timeMs,proto3" json:"time_ms,omitempty"`
}

// NewReading converts an Event.
func NewReading(ev *Event) *Reading {
	r := &Reading{
		Node:    ev.Node,
		Slot:    ev.Slot,
		Sender:  ev.Sender,
		Profile: ev.Profile,
		Tenths:  int32(ev.Tenths),
		Rssi:    int32(ev.RSSI),
	}
	if !ev.Time.IsZero() {
		r.TimeMs = ev.Time.UnixNano() / 1e6
	}
	return r
}

// ProtoMessage implements proto.Message.
func (m *Reading) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Reading) Reset() { *m = Reading{} }

// String implements proto.Message.
func (m *Reading) String() string { return proto.CompactTextString(m) }
