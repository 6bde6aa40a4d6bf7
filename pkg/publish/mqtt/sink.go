package mqtt

import (
	"context"

	"github.com/robotalks/tempair.go/pkg/publish"
)

// Sink publishes events retained to <prefix><node>/<slot>.
type Sink struct {
	Client  *Client
	Encoder publish.Encoder
}

// NewSink creates a Sink.
func NewSink(client *Client, enc publish.Encoder) *Sink {
	return &Sink{Client: client, Encoder: enc}
}

// Topic returns the topic of an event relative to the prefix.
func Topic(ev *publish.Event) string {
	return ev.Node + "/" + ev.Slot
}

// Publish implements publish.Sink.
func (s *Sink) Publish(ctx context.Context, ev *publish.Event) error {
	payload, err := s.Encoder.Encode(ev)
	if err != nil {
		return err
	}
	return s.Client.Pub(ctx, Topic(ev), payload, true)
}
