// Package sh provides the interactive shell of tpecli.
package sh

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tempair.go/pkg/env"
	"github.com/robotalks/tempair.go/pkg/esp3"
	"github.com/robotalks/tempair.go/pkg/node"
	"github.com/robotalks/tempair.go/pkg/pairing"
	"github.com/robotalks/tempair.go/pkg/publish"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Config  *env.Config
	Monitor *Monitor
}

// Monitor is an opened source printing received packets.
type Monitor struct {
	Ctx    context.Context
	Cancel func()
	URL    string
	Env    *env.Env

	doneCh chan struct{}
}

const (
	shellKey       = "$shell"
	closedPrompt   = "[none] > "
	commandTimeout = time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&StatusCmd,
		&PairCmd,
		&LearnCmd,
		&SendCmd,
		&VersionCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an open source.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Monitor == nil {
			c.Err(ErrNotOpen)
			return
		}
		fn(c)
	}
}

// Open opens the source at url and prints every packet and reading.
// Only the source of Config is used, no readings are published.
func (s *Shell) Open(url string) error {
	conf := *s.Config
	conf.SourceURL = url
	conf.MQTTURL, conf.NATSURL, conf.RedisAddr = "", "", ""
	conf.StatsInterval = 0

	m := &Monitor{URL: url, doneCh: make(chan struct{})}
	m.Ctx, m.Cancel = context.WithCancel(context.Background())
	e, err := conf.NewEnv(m.Ctx)
	if err != nil {
		m.Cancel()
		return err
	}
	m.Env = e
	e.Handler.Sink = publish.SinkFunc(func(ctx context.Context, ev *publish.Event) error {
		s.Shell.Printf("%s %s\n", ev, ev.Time.Format("15:04:05"))
		return nil
	})
	e.Node.AddHandler(node.HandlePacketFunc(func(ctx context.Context, r *esp3.Result) error {
		s.Shell.Println(FormatResult(r))
		return nil
	}))

	s.Close()
	s.Monitor = m
	go func() {
		defer close(m.doneCh)
		if err := e.Run(m.Ctx); err != nil && err != context.Canceled {
			s.Shell.Printf("%s closed: %v\n", url, err)
		}
		e.Close()
	}()
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", url))
	return nil
}

// Close closes the current source.
func (s *Shell) Close() {
	if m := s.Monitor; m != nil {
		m.Cancel()
		<-m.doneCh
		s.Monitor = nil
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		s.Close()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens a source.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[SOURCE-URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			url := s.Config.SourceURL
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			if err := s.Open(url); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the source.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// StatusCmd shows the counters and pairing of the open source.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: MustBeOpen(func(c *ishell.Context) {
			e := ShellFrom(c).Monitor.Env
			stats := &env.NodeStats{
				Node:     e.Config.NodeID,
				Engine:   e.Node.Stats(),
				Receiver: e.Receiver.Stats(),
			}
			tbl := e.Handler.Pairing()
			Print(c, stats, fmt.Sprintf("engine: %+v\nreceiver: %+v\npairing: %s",
				stats.Engine, stats.Receiver, tbl.String()))
		}),
	}

	// PairCmd pairs a sensor to a slot of the open source.
	PairCmd = ishell.Cmd{
		Name: "pair",
		Help: "outside|inside SENDER:EEP|clear",
		Func: MustBeOpen(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("SLOT and SENDER:EEP required"))
				return
			}
			h := ShellFrom(c).Monitor.Env.Handler
			if err := h.Command(c.Args[0], c.Args[1]); err != nil {
				c.Err(err)
				return
			}
			tbl := h.Pairing()
			c.Println(tbl.String())
		}),
	}

	// LearnCmd pairs the next teach-in sender to a slot.
	LearnCmd = ishell.Cmd{
		Name: "learn",
		Help: "outside|inside",
		Func: MustBeOpen(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("SLOT required"))
				return
			}
			slot, err := pairing.ParseSlot(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			ShellFrom(c).Monitor.Env.Handler.Learn(slot)
			c.Printf("press the teach-in button of the %s sensor\n", slot)
		}),
	}

	// SendCmd transmits a packet to the radio module.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "TYPE DATA [OPTIONAL-DATA]",
		Func: MustBeOpen(func(c *ishell.Context) {
			pkt, err := ParsePacket(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			e := ShellFrom(c).Monitor.Env
			c.Printf("sent %s\n", FormatHex(pkt.Bytes()))
			if pkt.Type != esp3.PacketTypeCommonCommand {
				if _, err := pkt.WriteTo(e.Receiver); err != nil {
					c.Err(err)
				}
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			res, err := e.Commander.Exec(ctx, pkt)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s [%s]\n", res.Code, FormatHex(res.Data))
		}),
	}

	// VersionCmd reads the radio module version.
	VersionCmd = ishell.Cmd{
		Name:    "version",
		Aliases: []string{"ver"},
		Help:    "",
		Func: MustBeOpen(func(c *ishell.Context) {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			v, err := ShellFrom(c).Monitor.Env.ReadVersion(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			Print(c, v, v.String())
		}),
	}
)

// ParsePacket parses TYPE DATA [OPTIONAL-DATA] arguments.
func ParsePacket(args ...string) (*esp3.Packet, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("TYPE and DATA required")
	}
	typ, err := esp3.ParsePacketType(args[0])
	if err != nil {
		return nil, err
	}
	pkt := &esp3.Packet{Type: typ}
	if pkt.Data, err = ParseHex(args[1]); err != nil {
		return nil, err
	}
	if len(args) > 2 {
		if pkt.OptionalData, err = ParseHex(args[2:]...); err != nil {
			return nil, err
		}
	}
	return pkt, nil
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).Run(flag.Args()...)
}
