package env

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang/glog"

	"github.com/robotalks/tempair.go/pkg/esp3"
	fx "github.com/robotalks/tempair.go/pkg/framework"
	"github.com/robotalks/tempair.go/pkg/node"
	"github.com/robotalks/tempair.go/pkg/publish"
	"github.com/robotalks/tempair.go/pkg/publish/mqtt"
	"github.com/robotalks/tempair.go/pkg/publish/nats"
	"github.com/robotalks/tempair.go/pkg/publish/redis"
	"github.com/robotalks/tempair.go/pkg/source"
	"github.com/robotalks/tempair.go/pkg/uart"
)

const probeTimeout = 2 * time.Second

// Env is an assembled node with its connections.
type Env struct {
	Config   *Config
	Receiver *uart.Receiver
	Node     *node.Node
	Handler  *node.TemperatureHandler
	// Commander sends commands to the radio module.
	Commander *node.Commander
	Sinks     publish.Multi
	MQTT      *mqtt.Client

	closers []io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// onceCloser is shared by the receiver, which closes the source on cancel,
// and Env.Close.
type onceCloser struct {
	io.ReadWriteCloser
	once sync.Once
	err  error
}

func (c *onceCloser) Close() error {
	c.once.Do(func() {
		c.err = c.ReadWriteCloser.Close()
	})
	return c.err
}

// NewEnv connects the configured source and sinks and assembles the node.
func (c *Config) NewEnv(ctx context.Context) (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	table, err := c.Pairing()
	if err != nil {
		return nil, err
	}
	enc, err := publish.EncoderByName(c.Encoding)
	if err != nil {
		return nil, err
	}

	e := &Env{Config: c, Sinks: publish.Multi{publish.Log}}
	e.Handler = node.NewTemperatureHandler(c.NodeID, table, e.Sinks)
	e.Handler.PairingFile = c.PairingFile

	if err := e.connectSinks(ctx, enc); err != nil {
		e.Close()
		return nil, err
	}
	e.Handler.Sink = e.Sinks

	src, err := source.Open(ctx, c.SourceURL)
	if err != nil {
		e.Close()
		return nil, err
	}
	src = &onceCloser{ReadWriteCloser: src}
	e.closers = append(e.closers, src)
	glog.Infof("source %s opened", c.SourceURL)

	e.Receiver = uart.NewReceiver(src, c.QueueSize)
	e.Node = node.New(e.Receiver)
	e.Node.Interval = c.Interval
	e.Commander = node.NewCommander(e.Receiver)
	e.Node.AddHandler(e.Handler, e.Commander)
	e.Node.AddRunnable(
		fx.NamedRun("uart", fx.RunFunc(e.Receiver.Run)),
		fx.NamedRun("probe", fx.RunFunc(e.probe)))
	if c.StatsInterval > 0 {
		e.Node.AddRunnable(fx.NamedRun("stats", fx.RunFunc(e.reportStats)))
	}
	glog.Infof("node %s: %s", c.NodeID, table.String())
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(ctx context.Context) *Env {
	e, err := c.NewEnv(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

func (e *Env) connectSinks(ctx context.Context, enc publish.Encoder) error {
	c := e.Config
	if c.MQTTURL != "" {
		client, err := mqtt.NewClientFromURL(c.MQTTURL, c.NodeID+"/status")
		if err != nil {
			return err
		}
		if err := client.Connect(ctx); err != nil {
			return err
		}
		e.closers = append(e.closers, client)
		e.MQTT = client
		e.Sinks = append(e.Sinks, mqtt.NewSink(client, enc))
		client.Sub(c.NodeID+"/pair/+", e.handlePairCommand)
	}
	if c.NATSURL != "" {
		conn, err := nats.Dial(c.NATSURL, "tempair-"+c.NodeID)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, closerFunc(func() error {
			return conn.Drain()
		}))
		e.Sinks = append(e.Sinks, nats.NewSink(conn, enc))
	}
	if c.RedisAddr != "" {
		client := redis.NewClient(c.RedisAddr)
		e.closers = append(e.closers, client)
		if err := client.Ping(ctx).Err(); err != nil {
			glog.Warningf("redis %s: %v", c.RedisAddr, err)
		}
		e.Sinks = append(e.Sinks, redis.NewSink(client))
	}
	return nil
}

// handlePairCommand handles <node>/pair/<slot> messages.
func (e *Env) handlePairCommand(topic string, payload []byte) {
	slot := topic[strings.LastIndex(topic, "/")+1:]
	if err := e.Handler.Command(slot, string(payload)); err != nil {
		glog.Errorf("pair %s: %v", slot, err)
	}
}

// ReadVersion queries the radio module version.
func (e *Env) ReadVersion(ctx context.Context) (*esp3.VersionInfo, error) {
	res, err := e.Commander.Exec(ctx, esp3.ReadVersionCommand())
	if err != nil {
		return nil, err
	}
	return esp3.ParseVersion(res.Data)
}

// probe logs the module version once the node runs.
func (e *Env) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	v, err := e.ReadVersion(probeCtx)
	cancel()
	if err != nil {
		glog.Warningf("read module version: %v", err)
	} else {
		glog.Infof("module %s", v)
	}
	<-ctx.Done()
	return ctx.Err()
}

// NodeStats is the periodic statistics report.
type NodeStats struct {
	Node     string     `json:"node"`
	Engine   node.Stats `json:"engine"`
	Receiver uart.Stats `json:"receiver"`
}

func (e *Env) reportStats(ctx context.Context) error {
	ticker := time.NewTicker(e.Config.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		stats := &NodeStats{
			Node:     e.Config.NodeID,
			Engine:   e.Node.Stats(),
			Receiver: e.Receiver.Stats(),
		}
		glog.Infof("stats %+v %+v", stats.Engine, stats.Receiver)
		if e.MQTT == nil {
			continue
		}
		data, err := sonic.Marshal(stats)
		if err != nil {
			glog.Errorf("encode stats: %v", err)
			continue
		}
		if err := e.MQTT.Pub(ctx, e.Config.NodeID+"/stats", data, false); err != nil {
			glog.Warningf("publish stats: %v", err)
		}
	}
}

// Run runs the node until ctx is done.
func (e *Env) Run(ctx context.Context) error {
	return e.Node.Run(ctx)
}

// Close closes all connections.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for n := len(e.closers) - 1; n >= 0; n-- {
		errs.Add(e.closers[n].Close())
	}
	e.closers = nil
	return errs.Aggregate()
}
