// Package nats publishes readings to NATS subjects.
package nats

import (
	"context"
	"strings"

	"github.com/golang/glog"
	"github.com/nats-io/nats.go"

	"github.com/robotalks/tempair.go/pkg/publish"
)

// DefaultSubjectPrefix prefixes all subjects.
const DefaultSubjectPrefix = "tempair"

// Publisher is the part of *nats.Conn used by Sink.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Sink publishes events to <prefix>.<node>.<slot>.
type Sink struct {
	Conn          Publisher
	Encoder       publish.Encoder
	SubjectPrefix string
}

// Dial connects to the NATS server at url.
func Dial(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				glog.Warningf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			glog.Infof("nats reconnected to %s", nc.ConnectedUrl())
		}))
}

// NewSink creates a Sink.
func NewSink(conn Publisher, enc publish.Encoder) *Sink {
	return &Sink{Conn: conn, Encoder: enc, SubjectPrefix: DefaultSubjectPrefix}
}

// Subject returns the subject of an event.
func (s *Sink) Subject(ev *publish.Event) string {
	tokens := []string{token(ev.Node), token(ev.Slot)}
	if s.SubjectPrefix != "" {
		tokens = append([]string{s.SubjectPrefix}, tokens...)
	}
	return strings.Join(tokens, ".")
}

// Publish implements publish.Sink.
func (s *Sink) Publish(ctx context.Context, ev *publish.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.Encoder.Encode(ev)
	if err != nil {
		return err
	}
	return s.Conn.Publish(s.Subject(ev), data)
}

// token replaces characters not allowed in a subject token.
func token(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, s)
}
