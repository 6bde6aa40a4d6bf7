// Package esp3 implements framing of the EnOcean Serial Protocol 3.
package esp3

// A frame on the wire (multi-byte integers big-endian):
//
//	sync(1) | data length(2) | optional length(1) | packet type(1) | header crc8(1)
//	| data | optional data | data crc8(1)
//
// The sync byte 0x55 is not escaped and may appear inside data. Frame
// boundaries are established by the two CRC8 fields, not by the marker.
//
// The Engine keeps no state between calls. Each call re-derives the protocol
// state from the bytes currently queued, so recovery after data loss is just
// dropping bytes until a header and data checksum both match again.
