package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/tempair.go/pkg/esp3"
)

// ErrNoReply indicates the module restarted before replying.
var ErrNoReply = errors.New("no reply")

// CommandError is a Response with a return code other than RET_OK.
type CommandError struct {
	Code esp3.ReturnCode
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed: %s", e.Code)
}

// CommandResult is the Response of a command.
type CommandResult struct {
	Err  error
	Code esp3.ReturnCode
	Data []byte
}

// Command is a command waiting for its Response.
type Command struct {
	Packet   *esp3.Packet
	resultCh chan CommandResult
}

// ResultChan returns the chan to retrieve result.
func (c *Command) ResultChan() <-chan CommandResult {
	return c.resultCh
}

// Commander sends commands to the module and pairs them with Response
// packets. The module replies in order, so pending commands are a FIFO.
type Commander struct {
	Writer io.Writer

	lock    sync.Mutex
	pending []*Command
	// Responses expected for requests not sent by Commander.
	unsolicited int
}

// NewCommander creates a Commander.
func NewCommander(w io.Writer) *Commander {
	return &Commander{Writer: w}
}

// Do sends pkt and returns a Command for the result.
func (c *Commander) Do(pkt *esp3.Packet) *Command {
	cmd := &Command{Packet: pkt, resultCh: make(chan CommandResult, 1)}
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, err := pkt.WriteTo(c.Writer); err != nil {
		cmd.resultCh <- CommandResult{Err: err}
		return cmd
	}
	c.pending = append(c.pending, cmd)
	return cmd
}

// Exec sends pkt and waits for the Response.
func (c *Commander) Exec(ctx context.Context, pkt *esp3.Packet) (*CommandResult, error) {
	cmd := c.Do(pkt)
	select {
	case res := <-cmd.ResultChan():
		return &res, res.Err
	case <-ctx.Done():
		c.cancel(cmd)
		return nil, ctx.Err()
	}
}

// Pending returns the number of commands waiting for a Response.
func (c *Commander) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

func (c *Commander) cancel(cmd *Command) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for n, pending := range c.pending {
		if pending == cmd {
			// keep the position so later Responses still pair correctly.
			c.pending[n] = &Command{resultCh: make(chan CommandResult, 1)}
			return
		}
	}
}

// HandlePacket implements PacketHandler.
func (c *Commander) HandlePacket(ctx context.Context, r *esp3.Result) error {
	data := r.Payload.Data()
	switch r.Type {
	case esp3.PacketTypeEvent:
		if len(data) > 0 && esp3.EventType(data[0]) == esp3.EventReady {
			c.reset()
		}
	case esp3.PacketTypeResponse:
		if len(data) == 0 {
			return fmt.Errorf("empty response")
		}
		c.reply(esp3.ReturnCode(data[0]), data[1:])
	}
	return nil
}

// reset fails all pending commands. The Engine requests transparent mode
// on a Ready event, whose Response is expected next.
func (c *Commander) reset() {
	c.lock.Lock()
	pending := c.pending
	c.pending, c.unsolicited = nil, 1
	c.lock.Unlock()
	for _, cmd := range pending {
		cmd.resultCh <- CommandResult{Err: ErrNoReply}
	}
}

func (c *Commander) reply(code esp3.ReturnCode, data []byte) {
	c.lock.Lock()
	if c.unsolicited > 0 {
		c.unsolicited--
		c.lock.Unlock()
		glog.V(2).Infof("unsolicited response %s", code)
		return
	}
	if len(c.pending) == 0 {
		c.lock.Unlock()
		glog.V(2).Infof("unexpected response %s", code)
		return
	}
	cmd := c.pending[0]
	c.pending = c.pending[1:]
	c.lock.Unlock()

	res := CommandResult{Code: code, Data: append([]byte(nil), data...)}
	if code != esp3.RetOK {
		res.Err = &CommandError{Code: code}
	}
	cmd.resultCh <- res
}
