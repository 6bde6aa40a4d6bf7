package node

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tempair.go/pkg/eep"
	"github.com/robotalks/tempair.go/pkg/erp1"
	"github.com/robotalks/tempair.go/pkg/esp3"
	"github.com/robotalks/tempair.go/pkg/pairing"
	"github.com/robotalks/tempair.go/pkg/publish"
)

// TemperatureHandler decodes radio telegrams of paired sensors and
// publishes the readings.
type TemperatureHandler struct {
	NodeID string
	Sink   publish.Sink
	// PairingFile persists pairing changes when set.
	PairingFile string

	lock     sync.RWMutex
	table    pairing.Table
	latest   map[pairing.Slot]*publish.Event
	learning *pairing.Slot

	now func() time.Time
}

// NewTemperatureHandler creates a TemperatureHandler.
func NewTemperatureHandler(nodeID string, table pairing.Table, sink publish.Sink) *TemperatureHandler {
	return &TemperatureHandler{
		NodeID: nodeID,
		Sink:   sink,
		table:  table,
		latest: make(map[pairing.Slot]*publish.Event),
		now:    time.Now,
	}
}

// Pairing returns a copy of the pairing table.
func (h *TemperatureHandler) Pairing() pairing.Table {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.table
}

// Pair assigns sensor to slot, replacing the current one.
func (h *TemperatureHandler) Pair(slot pairing.Slot, sensor pairing.Sensor) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.pairLocked(slot, sensor)
}

func (h *TemperatureHandler) pairLocked(slot pairing.Slot, sensor pairing.Sensor) error {
	h.table.Set(slot, sensor)
	delete(h.latest, slot)
	glog.Infof("paired %s: %s", slot, sensor)
	if h.PairingFile != "" {
		return h.table.Save(h.PairingFile)
	}
	return nil
}

// Learn pairs the sender of the next teach-in telegram which carries
// a supported profile to slot.
func (h *TemperatureHandler) Learn(slot pairing.Slot) {
	h.lock.Lock()
	h.learning = &slot
	h.lock.Unlock()
	glog.Infof("learning %s", slot)
}

// Learning returns the slot waiting for a teach-in telegram.
func (h *TemperatureHandler) Learning() (pairing.Slot, bool) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if h.learning == nil {
		return 0, false
	}
	return *h.learning, true
}

// Latest returns the last reading published for slot.
func (h *TemperatureHandler) Latest(slot pairing.Slot) *publish.Event {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.latest[slot]
}

// HandlePacket implements PacketHandler.
func (h *TemperatureHandler) HandlePacket(ctx context.Context, r *esp3.Result) error {
	if r.Type != esp3.PacketTypeRadioErp1 {
		return nil
	}
	tel, err := erp1.Decode(r.Type, r.Payload)
	if err != nil {
		if _, ok := err.(*erp1.UnknownRORGError); ok {
			glog.V(2).Info(err)
			return nil
		}
		return err
	}
	glog.V(3).Infof("telegram %s", tel)

	h.lock.Lock()
	if h.learning != nil && tel.RORG == erp1.RORG4BS {
		if learned, err := h.learnLocked(tel); learned {
			h.lock.Unlock()
			return err
		}
	}
	slot, sensor, ok := h.table.Match(tel)
	h.lock.Unlock()
	if !ok {
		glog.V(3).Infof("ignore telegram from %s", erp1.FormatID(tel.Sender))
		return nil
	}

	reading, err := eep.DecodeTemperature(sensor.Profile, tel.Data)
	if err == eep.ErrTeachIn {
		glog.V(2).Infof("ignore teach-in from %s", erp1.FormatID(tel.Sender))
		return nil
	}
	if err != nil {
		return err
	}

	ev := &publish.Event{
		Node:    h.NodeID,
		Slot:    slot.String(),
		Sender:  erp1.FormatID(tel.Sender),
		Profile: sensor.Profile.String(),
		Tenths:  reading.Tenths,
		Celsius: reading.Celsius(),
		Time:    h.now(),
	}
	if tel.Optional != nil {
		ev.RSSI = tel.Optional.DBm
	}
	h.lock.Lock()
	h.latest[slot] = ev
	h.lock.Unlock()
	if h.Sink == nil {
		return nil
	}
	return h.Sink.Publish(ctx, ev)
}

// learnLocked pairs the sender of a teach-in telegram to the learning slot.
func (h *TemperatureHandler) learnLocked(tel *erp1.Telegram) (bool, error) {
	profile, _, err := eep.TeachIn(tel.Data)
	if err != nil {
		if err == eep.ErrNoTeachInProfile {
			glog.Warningf("teach-in from %s carries no profile, pair it manually", erp1.FormatID(tel.Sender))
		}
		return false, nil
	}
	if !eep.Supported(profile) {
		glog.Warningf("teach-in from %s with unsupported profile %s", erp1.FormatID(tel.Sender), profile)
		return false, nil
	}
	slot := *h.learning
	h.learning = nil
	return true, h.pairLocked(slot, pairing.Sensor{Sender: tel.Sender, Profile: profile})
}

// Command applies a pairing command to the slot named slotName:
// "learn" waits for a teach-in telegram, "clear" unpairs, otherwise
// the command is a sensor in the form of SENDER:EEP.
func (h *TemperatureHandler) Command(slotName, cmd string) error {
	slot, err := pairing.ParseSlot(slotName)
	if err != nil {
		return err
	}
	switch cmd = strings.TrimSpace(cmd); cmd {
	case "learn":
		h.Learn(slot)
		return nil
	case "", "clear":
		return h.Pair(slot, pairing.Sensor{})
	}
	sensor, err := pairing.Parse(cmd)
	if err != nil {
		return err
	}
	if !eep.Supported(sensor.Profile) {
		return fmt.Errorf("%s: %v", sensor.Profile, eep.ErrUnsupportedProfile)
	}
	return h.Pair(slot, sensor)
}
