// Package publish forwards temperature readings to external systems.
package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	fx "github.com/robotalks/tempair.go/pkg/framework"
)

// Event is a decoded temperature reading of a paired sensor.
type Event struct {
	Node    string    `json:"node"`
	Slot    string    `json:"slot"`
	Sender  string    `json:"sender"`
	Profile string    `json:"profile"`
	Tenths  int       `json:"tenths"`
	Celsius float64   `json:"celsius"`
	RSSI    int       `json:"rssi,omitempty"`
	Time    time.Time `json:"time"`
}

// String implements fmt.Stringer.
func (e *Event) String() string {
	s := fmt.Sprintf("%s/%s %s(%s) %.1f°C", e.Node, e.Slot, e.Sender, e.Profile, e.Celsius)
	if e.RSSI != 0 {
		s += fmt.Sprintf(" %ddBm", e.RSSI)
	}
	return s
}

// Sink receives events.
type Sink interface {
	Publish(ctx context.Context, ev *Event) error
}

// SinkFunc is the func form of Sink.
type SinkFunc func(ctx context.Context, ev *Event) error

// Publish implements Sink.
func (f SinkFunc) Publish(ctx context.Context, ev *Event) error {
	return f(ctx, ev)
}

// Multi publishes to all sinks concurrently.
type Multi []Sink

// Publish implements Sink. All sinks are attempted, errors are aggregated.
// The group is not bound to ctx: one failing broker must not cancel the
// others.
func (m Multi) Publish(ctx context.Context, ev *Event) error {
	errs := make([]error, len(m))
	var g errgroup.Group
	for n, sink := range m {
		n, sink := n, sink
		g.Go(func() error {
			errs[n] = sink.Publish(ctx, ev)
			return errs[n]
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}
	return (&fx.AggregatedError{}).Add(errs...).Aggregate()
}

// Log writes events to the log.
var Log Sink = SinkFunc(func(ctx context.Context, ev *Event) error {
	glog.Infof("READING %s", ev)
	return nil
})
