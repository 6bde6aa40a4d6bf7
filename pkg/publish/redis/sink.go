// Package redis keeps the latest reading of each slot in Redis hashes.
package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robotalks/tempair.go/pkg/publish"
)

// DefaultTTL expires readings of sensors which stopped reporting.
const DefaultTTL = time.Hour

// DefaultKeyPrefix prefixes all keys.
const DefaultKeyPrefix = "tempair:"

// Sink writes HSET <prefix><node>:<slot> and refreshes the TTL.
type Sink struct {
	Client    redis.Cmdable
	KeyPrefix string
	TTL       time.Duration
}

// NewClient creates a client from redis://... URL or a host:port address.
func NewClient(addr string) *redis.Client {
	if opts, err := redis.ParseURL(addr); err == nil {
		return redis.NewClient(opts)
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewSink creates a Sink.
func NewSink(client redis.Cmdable) *Sink {
	return &Sink{Client: client, KeyPrefix: DefaultKeyPrefix, TTL: DefaultTTL}
}

// Key returns the hash key of an event.
func (s *Sink) Key(ev *publish.Event) string {
	return s.KeyPrefix + ev.Node + ":" + ev.Slot
}

// Publish implements publish.Sink.
func (s *Sink) Publish(ctx context.Context, ev *publish.Event) error {
	key := s.Key(ev)
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"sender", ev.Sender,
			"profile", ev.Profile,
			"tenths", ev.Tenths,
			"celsius", strconv.FormatFloat(ev.Celsius, 'f', 1, 64),
			"rssi", ev.RSSI,
			"ts", ev.Time.Unix())
		if s.TTL > 0 {
			pipe.Expire(ctx, key, s.TTL)
		}
		return nil
	})
	return err
}

// Latest reads back the reading stored for node/slot.
func (s *Sink) Latest(ctx context.Context, node, slot string) (*publish.Event, error) {
	key := s.KeyPrefix + node + ":" + slot
	fields, err := s.Client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, redis.Nil
	}
	ev := &publish.Event{
		Node:    node,
		Slot:    slot,
		Sender:  fields["sender"],
		Profile: fields["profile"],
	}
	ev.Tenths, _ = strconv.Atoi(fields["tenths"])
	ev.Celsius = float64(ev.Tenths) / 10
	ev.RSSI, _ = strconv.Atoi(fields["rssi"])
	if ts, err := strconv.ParseInt(fields["ts"], 10, 64); err == nil {
		ev.Time = time.Unix(ts, 0)
	}
	return ev, nil
}
