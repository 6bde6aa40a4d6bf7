package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/tempair.go/pkg/publish"
)

func TestSink(t *testing.T) {
	srv := miniredis.RunT(t)
	client := NewClient(srv.Addr())
	defer client.Close()

	s := NewSink(client)
	ev := &publish.Event{
		Node:    "node1",
		Slot:    "outside",
		Sender:  "0180A2B3",
		Profile: "A5-02-05",
		Tenths:  -35,
		Celsius: -3.5,
		RSSI:    -80,
		Time:    time.Unix(1700000000, 0),
	}
	ctx := context.Background()
	require.NoError(t, s.Publish(ctx, ev))

	assert.Equal(t, "tempair:node1:outside", s.Key(ev))
	assert.Equal(t, "-3.5", srv.HGet("tempair:node1:outside", "celsius"))
	assert.Equal(t, "0180A2B3", srv.HGet("tempair:node1:outside", "sender"))
	assert.Equal(t, DefaultTTL, srv.TTL("tempair:node1:outside"))

	latest, err := s.Latest(ctx, "node1", "outside")
	require.NoError(t, err)
	assert.Equal(t, ev, latest)

	_, err = s.Latest(ctx, "node1", "inside")
	assert.Equal(t, redis.Nil, err)
}

func TestNewClient(t *testing.T) {
	c := NewClient("redis://:secret@cache:6380/2")
	assert.Equal(t, "cache:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)
	assert.Equal(t, "secret", c.Options().Password)

	c = NewClient("cache:6379")
	assert.Equal(t, "cache:6379", c.Options().Addr)
}
