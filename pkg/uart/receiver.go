// Package uart bridges asynchronous byte arrival to the polling main loop.
//
// The receive side mirrors a UART receive interrupt: HandleInterrupt drains a
// receive register into a ring.Queue. The main loop only snapshots and
// consumes bytes. Both sides go through the same lock, which is the only
// access path to the queue.
package uart

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/tempair.go/pkg/esp3"
	fx "github.com/robotalks/tempair.go/pkg/framework"
	"github.com/robotalks/tempair.go/pkg/ring"
)

// DefaultQueueSize is the slot count of the receive queue.
const DefaultQueueSize = 128

// MinQueueSize is the smallest slot count that holds a complete ESP3 header.
// A smaller queue could fill up with a partial header and never drain.
const MinQueueSize = esp3.MinFrameSize + 1

const readChunkSize = 64

// RxRegister abstracts the hardware receive data register.
type RxRegister interface {
	// DataReady reports whether a received byte is pending.
	DataReady() bool
	// ReadData pops the pending byte.
	ReadData() byte
}

// Stats are receive counters.
type Stats struct {
	Received uint64
	Dropped  uint64
	Buffered int
}

// Receiver owns the receive queue of a serial link.
type Receiver struct {
	ReadWriter io.ReadWriter

	lock     sync.Mutex
	queue    *ring.Queue
	received uint64
	dropped  uint64

	writeLock sync.Mutex
	notifyCh  chan struct{}
}

// NewReceiver creates a Receiver with a queue of size slots. A size of 0
// selects DefaultQueueSize, sizes below MinQueueSize are raised to it.
func NewReceiver(rw io.ReadWriter, size int) *Receiver {
	switch {
	case size <= 0:
		size = DefaultQueueSize
	case size < MinQueueSize:
		glog.Warningf("uart: queue size %d raised to %d", size, MinQueueSize)
		size = MinQueueSize
	}
	return &Receiver{
		ReadWriter: rw,
		queue:      ring.New(size),
		notifyCh:   make(chan struct{}, 1),
	}
}

// HandleInterrupt drains all pending bytes from reg into the queue.
// Bytes arriving while the queue is full are dropped.
func (r *Receiver) HandleInterrupt(reg RxRegister) {
	var n int
	for reg.DataReady() {
		r.lock.Lock()
		b := reg.ReadData()
		r.received++
		if !r.queue.Write(b) {
			r.dropped++
		}
		r.lock.Unlock()
		n++
	}
	if n > 0 {
		select {
		case r.notifyCh <- struct{}{}:
		default:
		}
	}
}

// Feed pushes p through the receive path as if it arrived on the wire.
// It returns the number of bytes accepted into the queue.
func (r *Receiver) Feed(p []byte) int {
	before := r.Stats().Dropped
	r.HandleInterrupt(&chunkRegister{p: p})
	return len(p) - int(r.Stats().Dropped-before)
}

// Notify delivers a signal after new bytes are queued.
func (r *Receiver) Notify() <-chan struct{} {
	return r.notifyCh
}

// CopyBuffer copies the oldest queued bytes into dst without consuming them.
func (r *Receiver) CopyBuffer(dst []byte) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.queue.Snapshot(dst)
}

// TakeByte consumes the oldest queued byte.
func (r *Receiver) TakeByte() (byte, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.queue.Read()
}

// Discard consumes up to n queued bytes.
func (r *Receiver) Discard(n int) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.queue.Discard(n)
}

// Cap returns the usable capacity of the queue.
func (r *Receiver) Cap() int {
	return r.queue.Cap()
}

// Stats returns a copy of the counters.
func (r *Receiver) Stats() Stats {
	r.lock.Lock()
	defer r.lock.Unlock()
	return Stats{Received: r.received, Dropped: r.dropped, Buffered: r.queue.Len()}
}

// Write implements io.Writer and transmits p on the link.
func (r *Receiver) Write(p []byte) (int, error) {
	if r.ReadWriter == nil {
		return 0, io.ErrClosedPipe
	}
	r.writeLock.Lock()
	defer r.writeLock.Unlock()
	return r.ReadWriter.Write(p)
}

// Run reads the link until ctx is done or the reader fails, feeding every
// chunk through HandleInterrupt.
func (r *Receiver) Run(ctx context.Context) error {
	if r.ReadWriter == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	var onCancel func()
	if closer, ok := r.ReadWriter.(io.Closer); ok {
		onCancel = func() { closer.Close() }
	}
	return fx.RunWithContextCancel(ctx, onCancel, func() error {
		buf := make([]byte, readChunkSize)
		for ctx.Err() == nil {
			n, err := r.ReadWriter.Read(buf)
			if n > 0 {
				glog.V(4).Infof("uart: rx % x", buf[:n])
				r.HandleInterrupt(&chunkRegister{p: buf[:n]})
			}
			if err != nil {
				if os.IsTimeout(err) {
					continue
				}
				return err
			}
		}
		return ctx.Err()
	})
}

type chunkRegister struct {
	p []byte
}

func (c *chunkRegister) DataReady() bool {
	return len(c.p) > 0
}

func (c *chunkRegister) ReadData() byte {
	b := c.p[0]
	c.p = c.p[1:]
	return b
}
