package publish

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/tempair.go/pkg/framework"
)

func testEvent() *Event {
	return &Event{
		Node:    "node1",
		Slot:    "inside",
		Sender:  "0180A2B3",
		Profile: "A5-04-03",
		Tenths:  -6,
		Celsius: -0.6,
		RSSI:    -71,
		Time:    time.Unix(1700000000, 250000000).UTC(),
	}
}

func TestEventString(t *testing.T) {
	ev := testEvent()
	assert.Equal(t, "node1/inside 0180A2B3(A5-04-03) -0.6°C -71dBm", ev.String())
	ev.RSSI = 0
	assert.Equal(t, "node1/inside 0180A2B3(A5-04-03) -0.6°C", ev.String())
}

func TestJSONEncoder(t *testing.T) {
	data, err := JSON.Encode(testEvent())
	require.NoError(t, err)
	var decoded Event
	require.NoError(t, sonic.Unmarshal(data, &decoded))
	assert.Equal(t, testEvent().Sender, decoded.Sender)
	assert.Equal(t, testEvent().Tenths, decoded.Tenths)
	assert.True(t, testEvent().Time.Equal(decoded.Time))

	var fields map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &fields))
	assert.Equal(t, "inside", fields["slot"])
	assert.Equal(t, -0.6, fields["celsius"])
}

func TestProtoEncoder(t *testing.T) {
	data, err := Proto.Encode(testEvent())
	require.NoError(t, err)
	var r Reading
	require.NoError(t, proto.Unmarshal(data, &r))
	assert.Equal(t, "node1", r.Node)
	assert.Equal(t, "A5-04-03", r.Profile)
	assert.Equal(t, int32(-6), r.Tenths)
	assert.Equal(t, int32(-71), r.Rssi)
	assert.Equal(t, int64(1700000000250), r.TimeMs)
}

func TestEncoderByName(t *testing.T) {
	for name, expect := range map[string]Encoder{"": JSON, "json": JSON, "proto": Proto} {
		enc, err := EncoderByName(name)
		require.NoError(t, err)
		assert.Equal(t, expect, enc)
	}
	_, err := EncoderByName("xml")
	assert.Error(t, err)
}

type recordSink struct {
	lock   sync.Mutex
	events []*Event
	err    error
}

func (s *recordSink) Publish(ctx context.Context, ev *Event) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func TestMulti(t *testing.T) {
	s1, s2, s3 := &recordSink{}, &recordSink{err: errors.New("e2")}, &recordSink{err: errors.New("e3")}
	ev := testEvent()

	require.NoError(t, Multi{s1, Log}.Publish(context.Background(), ev))
	assert.Equal(t, []*Event{ev}, s1.events)

	err := Multi{s1, s2, s3}.Publish(context.Background(), ev)
	require.Error(t, err)
	aggErr, ok := err.(*fx.AggregatedError)
	require.True(t, ok)
	assert.Len(t, aggErr.Errors, 2)
	assert.Len(t, s1.events, 2)
	assert.Len(t, s2.events, 1)
	assert.Len(t, s3.events, 1)

	err = Multi{s2, s1}.Publish(context.Background(), ev)
	require.Error(t, err)
	assert.Equal(t, "e2", err.Error())
	assert.Len(t, s1.events, 3)

	assert.NoError(t, Multi{}.Publish(context.Background(), ev))
}
