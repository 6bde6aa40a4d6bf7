// Package crc8 computes the 8-bit checksum used by ESP3 frames.
package crc8

import "github.com/sigurn/crc8"

// Params is CRC-8 with polynomial 0x07, zero init, no reflection and
// no final xor.
var Params = crc8.CRC8

var table = crc8.MakeTable(Params)

// Checksum calculates the CRC8 of b. Empty input yields 0.
func Checksum(b []byte) byte {
	return crc8.Checksum(b, table)
}

// Update continues a checksum with more bytes.
func Update(crc byte, b []byte) byte {
	return crc8.Update(crc, b, table)
}
