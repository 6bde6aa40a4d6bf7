package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/tempair.go/pkg/publish"
)

type msg struct {
	subj string
	data []byte
}

type testConn struct {
	msgs []msg
}

func (c *testConn) Publish(subj string, data []byte) error {
	c.msgs = append(c.msgs, msg{subj: subj, data: data})
	return nil
}

func TestSink(t *testing.T) {
	conn := &testConn{}
	s := NewSink(conn, publish.Proto)
	ev := &publish.Event{Node: "kitchen.pi", Slot: "inside", Tenths: 215}
	require.NoError(t, s.Publish(context.Background(), ev))
	require.Len(t, conn.msgs, 1)
	assert.Equal(t, "tempair.kitchen_pi.inside", conn.msgs[0].subj)
	expected, err := publish.Proto.Encode(ev)
	require.NoError(t, err)
	assert.Equal(t, expected, conn.msgs[0].data)

	s.SubjectPrefix = ""
	assert.Equal(t, "kitchen_pi.inside", s.Subject(ev))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, s.Publish(ctx, ev))
	assert.Len(t, conn.msgs, 1)
}
