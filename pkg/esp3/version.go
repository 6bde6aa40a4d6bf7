package esp3

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// VersionResponseSize is the CO_RD_VERSION response data size after the
// return code.
const VersionResponseSize = 32

// VersionInfo is the response of CO_RD_VERSION.
type VersionInfo struct {
	AppVersion  [4]byte
	APIVersion  [4]byte
	ChipID      uint32
	ChipVersion uint32
	Description string
}

// ReadVersionCommand creates the CO_RD_VERSION command.
func ReadVersionCommand() *Packet {
	return &Packet{Type: PacketTypeCommonCommand, Data: []byte{byte(CmdReadVersion)}}
}

// ParseVersion parses the response data following the return code.
func ParseVersion(data []byte) (*VersionInfo, error) {
	if len(data) < VersionResponseSize {
		return nil, fmt.Errorf("version response too short: %d", len(data))
	}
	v := &VersionInfo{
		ChipID:      binary.BigEndian.Uint32(data[8:12]),
		ChipVersion: binary.BigEndian.Uint32(data[12:16]),
		Description: strings.TrimRight(string(data[16:32]), "\x00 "),
	}
	copy(v.AppVersion[:], data[0:4])
	copy(v.APIVersion[:], data[4:8])
	return v, nil
}

// String implements fmt.Stringer.
func (v *VersionInfo) String() string {
	return fmt.Sprintf("%s app=%d.%d.%d.%d api=%d.%d.%d.%d chip=%08X/%08X",
		v.Description,
		v.AppVersion[0], v.AppVersion[1], v.AppVersion[2], v.AppVersion[3],
		v.APIVersion[0], v.APIVersion[1], v.APIVersion[2], v.APIVersion[3],
		v.ChipID, v.ChipVersion)
}
