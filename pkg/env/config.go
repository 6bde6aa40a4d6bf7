// Package env assembles a tempair node from configuration.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/tempair.go/pkg/node"
	"github.com/robotalks/tempair.go/pkg/pairing"
	"github.com/robotalks/tempair.go/pkg/uart"
)

// Config provides options to setup a node.
type Config struct {
	NodeID string
	// SourceURL specifies the ESP3 byte stream,
	// e.g. serial:///dev/ttyUSB0, tcp://host:port, ws://host/path.
	SourceURL string
	// MQTTURL specifies the MQTT broker,
	// e.g. mqtt://host:1883/tempair/
	MQTTURL   string
	NATSURL   string
	RedisAddr string
	Encoding  string

	// Outside and Inside pair sensors as SENDER:EEP, overriding PairingFile.
	Outside     string
	Inside      string
	PairingFile string

	Interval      time.Duration
	QueueSize     int
	StatsInterval time.Duration
	GopsAddr      string
}

var defaultConfig = Config{
	SourceURL:     "serial:///dev/ttyUSB0",
	Encoding:      "json",
	Interval:      node.DefaultInterval,
	QueueSize:     uart.DefaultQueueSize,
	StatsInterval: time.Minute,
}

func init() {
	defaultConfig.NodeID = MachineID()
	envVars := map[string]*string{
		"TEMPAIR_NODE_ID":      &defaultConfig.NodeID,
		"TEMPAIR_SOURCE":       &defaultConfig.SourceURL,
		"TEMPAIR_MQTT_URL":     &defaultConfig.MQTTURL,
		"TEMPAIR_NATS_URL":     &defaultConfig.NATSURL,
		"TEMPAIR_REDIS_ADDR":   &defaultConfig.RedisAddr,
		"TEMPAIR_ENCODING":     &defaultConfig.Encoding,
		"TEMPAIR_OUTSIDE":      &defaultConfig.Outside,
		"TEMPAIR_INSIDE":       &defaultConfig.Inside,
		"TEMPAIR_PAIRING_FILE": &defaultConfig.PairingFile,
	}
	for name, ptr := range envVars {
		if val := os.Getenv(name); val != "" {
			*ptr = val
		}
	}
	if val := os.Getenv("TEMPAIR_QUEUE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			defaultConfig.QueueSize = n
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.NodeID, "id", defaultConfig.NodeID, "Node ID")
	flag.StringVar(&defaultConfig.SourceURL, "source", defaultConfig.SourceURL, "ESP3 source URL")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.NATSURL, "nats", defaultConfig.NATSURL, "NATS server URL")
	flag.StringVar(&defaultConfig.RedisAddr, "redis", defaultConfig.RedisAddr, "Redis address or URL")
	flag.StringVar(&defaultConfig.Encoding, "encoding", defaultConfig.Encoding, "Payload encoding: json, proto")
	flag.StringVar(&defaultConfig.Outside, "outside", defaultConfig.Outside, "Outside sensor SENDER:EEP")
	flag.StringVar(&defaultConfig.Inside, "inside", defaultConfig.Inside, "Inside sensor SENDER:EEP")
	flag.StringVar(&defaultConfig.PairingFile, "pairing", defaultConfig.PairingFile, "Pairing table file")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Polling interval")
	flag.IntVar(&defaultConfig.QueueSize, "queue-size", defaultConfig.QueueSize, "Receive queue slots")
	flag.DurationVar(&defaultConfig.StatsInterval, "stats-interval", defaultConfig.StatsInterval, "Statistics report interval, 0 to disable")
	flag.StringVar(&defaultConfig.GopsAddr, "gops", defaultConfig.GopsAddr, "Address of gops agent, empty to disable")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks option values.
func (c *Config) Validate() error {
	if c.QueueSize != 0 && c.QueueSize < uart.MinQueueSize {
		return fmt.Errorf("queue size %d is less than %d", c.QueueSize, uart.MinQueueSize)
	}
	return nil
}

// Pairing builds the pairing table from PairingFile and the slot options.
func (c *Config) Pairing() (pairing.Table, error) {
	var tbl pairing.Table
	if c.PairingFile != "" {
		loaded, err := pairing.Load(c.PairingFile)
		switch {
		case err == nil:
			tbl = *loaded
		case !os.IsNotExist(err):
			return tbl, err
		}
	}
	for slot, val := range map[pairing.Slot]string{
		pairing.SlotOutside: c.Outside,
		pairing.SlotInside:  c.Inside,
	} {
		if val == "" {
			continue
		}
		sensor, err := pairing.Parse(val)
		if err != nil {
			return tbl, fmt.Errorf("%s: %v", slot, err)
		}
		tbl.Set(slot, sensor)
	}
	return tbl, nil
}
