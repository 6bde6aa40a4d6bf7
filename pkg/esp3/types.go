package esp3

import (
	"fmt"
	"strconv"
	"strings"
)

// PacketType is the ESP3 packet type byte.
type PacketType byte

// Packet types
const (
	PacketTypeRadioErp1        PacketType = 0x01
	PacketTypeResponse         PacketType = 0x02
	PacketTypeRadioSubTelegram PacketType = 0x03
	PacketTypeEvent            PacketType = 0x04
	PacketTypeCommonCommand    PacketType = 0x05
	PacketTypeSmartAckCommand  PacketType = 0x06
	PacketTypeRemoteManCommand PacketType = 0x07
	PacketTypeRadioMessage     PacketType = 0x09
	PacketTypeRadioErp2        PacketType = 0x0A
	PacketTypeConfigCommand    PacketType = 0x0B
	PacketTypeCommandAccepted  PacketType = 0x0C
	PacketTypeRaw802154        PacketType = 0x10
	PacketTypeRaw24            PacketType = 0x11
)

var packetTypeNames = map[PacketType]string{
	PacketTypeRadioErp1:        "RADIO_ERP1",
	PacketTypeResponse:         "RESPONSE",
	PacketTypeRadioSubTelegram: "RADIO_SUB_TEL",
	PacketTypeEvent:            "EVENT",
	PacketTypeCommonCommand:    "COMMON_COMMAND",
	PacketTypeSmartAckCommand:  "SMART_ACK_COMMAND",
	PacketTypeRemoteManCommand: "REMOTE_MAN_COMMAND",
	PacketTypeRadioMessage:     "RADIO_MESSAGE",
	PacketTypeRadioErp2:        "RADIO_ERP2",
	PacketTypeConfigCommand:    "CONFIG_COMMAND",
	PacketTypeCommandAccepted:  "COMMAND_ACCEPTED",
	PacketTypeRaw802154:        "RADIO_802_15_4",
	PacketTypeRaw24:            "COMMAND_2_4",
}

// String implements fmt.Stringer.
func (t PacketType) String() string {
	if name, ok := packetTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PacketType(0x%02x)", byte(t))
}

// EventType is the first data byte of an Event packet.
type EventType byte

// Event types
const (
	EventSAReclaimNotSuccessful EventType = 0x01
	EventSAConfirmLearn         EventType = 0x02
	EventSALearnAck             EventType = 0x03
	EventReady                  EventType = 0x04
	EventSecureDevices          EventType = 0x05
	EventDutyCycleLimit         EventType = 0x06
	EventTransmitFailed         EventType = 0x07
	EventTxDone                 EventType = 0x08
	EventLearnModeDisabled      EventType = 0x09
)

var eventTypeNames = map[EventType]string{
	EventSAReclaimNotSuccessful: "SA_RECLAIM_NOT_SUCCESSFUL",
	EventSAConfirmLearn:         "SA_CONFIRM_LEARN",
	EventSALearnAck:             "SA_LEARN_ACK",
	EventReady:                  "CO_READY",
	EventSecureDevices:          "CO_EVENT_SECUREDEVICES",
	EventDutyCycleLimit:         "CO_DUTYCYCLE_LIMIT",
	EventTransmitFailed:         "CO_TRANSMIT_FAILED",
	EventTxDone:                 "CO_TX_DONE",
	EventLearnModeDisabled:      "CO_LRN_MODE_DISABLED",
}

// String implements fmt.Stringer.
func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(0x%02x)", byte(t))
}

// CommonCommand is the first data byte of a CommonCommand packet.
// Only the codes used by this package and its tools are listed.
type CommonCommand byte

// Common commands
const (
	CmdWriteSleep           CommonCommand = 0x01
	CmdWriteReset           CommonCommand = 0x02
	CmdReadVersion          CommonCommand = 0x03
	CmdReadSysLog           CommonCommand = 0x04
	CmdReadIDBase           CommonCommand = 0x08
	CmdWriteRepeater        CommonCommand = 0x09
	CmdReadRepeater         CommonCommand = 0x0A
	CmdWriteLearnMode       CommonCommand = 0x17
	CmdReadLearnMode        CommonCommand = 0x18
	CmdWriteMode            CommonCommand = 0x1C
	CmdSetBaudRate          CommonCommand = 0x24
	CmdGetFrequencyInfo     CommonCommand = 0x25
	CmdWriteTransparentMode CommonCommand = 0x3E
	CmdReadTransparentMode  CommonCommand = 0x3F
	CmdWriteTxOnlyMode      CommonCommand = 0x40
	CmdReadTxOnlyMode       CommonCommand = 0x41
)

var commonCommandNames = map[CommonCommand]string{
	CmdWriteSleep:           "CO_WR_SLEEP",
	CmdWriteReset:           "CO_WR_RESET",
	CmdReadVersion:          "CO_RD_VERSION",
	CmdReadSysLog:           "CO_RD_SYS_LOG",
	CmdReadIDBase:           "CO_RD_IDBASE",
	CmdWriteRepeater:        "CO_WR_REPEATER",
	CmdReadRepeater:         "CO_RD_REPEATER",
	CmdWriteLearnMode:       "CO_WR_LEARNMODE",
	CmdReadLearnMode:        "CO_RD_LEARNMODE",
	CmdWriteMode:            "CO_WR_MODE",
	CmdSetBaudRate:          "CO_SET_BAUDRATE",
	CmdGetFrequencyInfo:     "CO_GET_FREQUENCY_INFO",
	CmdWriteTransparentMode: "CO_WR_TRANSPARENT_MODE",
	CmdReadTransparentMode:  "CO_RD_TRANSPARENT_MODE",
	CmdWriteTxOnlyMode:      "CO_WR_TX_ONLY_MODE",
	CmdReadTxOnlyMode:       "CO_RD_TX_ONLY_MODE",
}

// String implements fmt.Stringer.
func (c CommonCommand) String() string {
	if name, ok := commonCommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CommonCommand(0x%02x)", byte(c))
}

// ReturnCode is the first data byte of a Response packet.
type ReturnCode byte

// Return codes
const (
	RetOK              ReturnCode = 0x00
	RetError           ReturnCode = 0x01
	RetNotSupported    ReturnCode = 0x02
	RetWrongParam      ReturnCode = 0x03
	RetOperationDenied ReturnCode = 0x04
	RetLockSet         ReturnCode = 0x05
	RetBufferTooSmall  ReturnCode = 0x06
	RetNoFreeBuffer    ReturnCode = 0x07
)

var returnCodeNames = map[ReturnCode]string{
	RetOK:              "RET_OK",
	RetError:           "RET_ERROR",
	RetNotSupported:    "RET_NOT_SUPPORTED",
	RetWrongParam:      "RET_WRONG_PARAM",
	RetOperationDenied: "RET_OPERATION_DENIED",
	RetLockSet:         "RET_LOCK_SET",
	RetBufferTooSmall:  "RET_BUFFER_TO_SMALL",
	RetNoFreeBuffer:    "RET_NO_FREE_BUFFER",
}

// String implements fmt.Stringer.
func (c ReturnCode) String() string {
	if name, ok := returnCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ReturnCode(0x%02x)", byte(c))
}

// ParsePacketType parses a packet type name, e.g. "RADIO_ERP1" or
// "radio_erp1", or a hex value like "0x01".
func ParsePacketType(s string) (PacketType, error) {
	for typ, name := range packetTypeNames {
		if strings.EqualFold(name, s) {
			return typ, nil
		}
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid packet type %q", s)
	}
	return PacketType(v), nil
}
