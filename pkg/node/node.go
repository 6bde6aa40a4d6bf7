// Package node runs the receive/decode loop of a tempair node.
package node

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tempair.go/pkg/esp3"
	fx "github.com/robotalks/tempair.go/pkg/framework"
	"github.com/robotalks/tempair.go/pkg/uart"
)

// DefaultInterval is the polling interval when no bytes arrive.
const DefaultInterval = 100 * time.Millisecond

// PacketHandler handles received packets.
type PacketHandler interface {
	HandlePacket(ctx context.Context, r *esp3.Result) error
}

// HandlePacketFunc is the func form of PacketHandler.
type HandlePacketFunc func(ctx context.Context, r *esp3.Result) error

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, r *esp3.Result) error {
	return f(ctx, r)
}

// Stats counts engine outcomes.
type Stats struct {
	Packets        uint64
	NotSynced      uint64
	NotEnoughBytes uint64
	Short          uint64
	// SkippedBytes are consumed without producing a packet.
	SkippedBytes  uint64
	HandlerErrors uint64
}

// Node polls the Engine over the bytes queued by a Receiver.
type Node struct {
	Interval time.Duration
	Receiver *uart.Receiver
	Engine   *esp3.Engine

	handlers []PacketHandler
	runners  []fx.Runnable

	statsLock sync.Mutex
	stats     Stats
}

// New creates a Node. Replies of the Engine are transmitted via rx.
func New(rx *uart.Receiver) *Node {
	return &Node{
		Interval: DefaultInterval,
		Receiver: rx,
		Engine:   esp3.NewEngine(rx, rx),
	}
}

// AddHandler registers packet handlers, called in order.
func (n *Node) AddHandler(handlers ...PacketHandler) *Node {
	n.handlers = append(n.handlers, handlers...)
	return n
}

// AddRunnable adds Runnables to run along with the Node.
func (n *Node) AddRunnable(runnables ...fx.Runnable) *Node {
	n.runners = append(n.runners, runnables...)
	return n
}

// Stats returns a copy of the counters.
func (n *Node) Stats() Stats {
	n.statsLock.Lock()
	defer n.statsLock.Unlock()
	return n.stats
}

// Run implements Runnable.
func (n *Node) Run(ctx context.Context) error {
	runner := fx.NewRunnerWith(ctx)
	runner.Go(n.runners...)
	err := n.loop(runner.Context)
	runner.Stop()
	if runErr := runner.Wait(); runErr != nil {
		return runErr
	}
	return err
}

func (n *Node) loop(ctx context.Context) error {
	interval := n.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.Poll(ctx)
		case <-n.Receiver.Notify():
			n.Poll(ctx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the node.
func (n *Node) RunOrFail() {
	if err := n.Run(context.TODO()); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

// Poll calls ProcessOne until no more progress can be made and dispatches
// every received packet. It returns the number of packets.
func (n *Node) Poll(ctx context.Context) int {
	var packets int
	for {
		r := n.Engine.ProcessOne()
		n.count(&r)
		if r.Outcome == esp3.PacketReceived {
			packets++
			n.dispatch(ctx, &r)
		}
		if !r.Outcome.MadeProgress() {
			return packets
		}
	}
}

func (n *Node) dispatch(ctx context.Context, r *esp3.Result) {
	for _, h := range n.handlers {
		if err := h.HandlePacket(ctx, r); err != nil {
			glog.Warningf("handle %s error: %v", r.Type, err)
			n.statsLock.Lock()
			n.stats.HandlerErrors++
			n.statsLock.Unlock()
		}
	}
}

func (n *Node) count(r *esp3.Result) {
	n.statsLock.Lock()
	defer n.statsLock.Unlock()
	switch r.Outcome {
	case esp3.PacketReceived:
		n.stats.Packets++
		n.stats.SkippedBytes += uint64(r.Consumed - r.Payload.Len() - esp3.MinFrameSize)
	case esp3.NotSynced:
		n.stats.NotSynced++
		n.stats.SkippedBytes += uint64(r.Consumed)
	case esp3.NotEnoughBytes:
		n.stats.NotEnoughBytes++
		n.stats.SkippedBytes += uint64(r.Consumed)
	case esp3.Short:
		n.stats.Short++
		n.stats.SkippedBytes += uint64(r.Consumed)
	}
}
