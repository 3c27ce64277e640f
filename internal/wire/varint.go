// Package wire provides low-level encoding primitives for the SeriaLib
// wire format: the marker-byte variable-width integer encoding and the
// presence-bitmap helpers generated code and the pkg/wire runtime build on.
package wire

import (
	"encoding/binary"
	"errors"
)

// Marker bytes. A value in [0x00, 0xFC] encodes as itself, one byte.
// Values above that range are prefixed by one of these markers followed by
// a fixed-width little-endian payload.
const (
	Marker2Byte uint8 = 0xFD // payload: 2-byte LE, value in (0xFC, 0xFFFF]
	Marker4Byte uint8 = 0xFE // payload: 4-byte LE, value in (0xFFFF, 0xFFFFFFFF]
	Marker8Byte uint8 = 0xFF // payload: 8-byte LE, value > 0xFFFFFFFF

	// MaxSmallValue is the largest value that encodes as a single byte.
	MaxSmallValue uint64 = 0xFC
)

// ErrVarintTruncated indicates the input was too short to contain a
// complete varint.
var ErrVarintTruncated = errors.New("serialib: varint truncated")

// AppendUvarint appends the marker-byte encoding of v to buf and returns the
// extended buffer.
//
// Encoding:
//
//	v <= 0xFC:                 [v]
//	0xFC < v <= 0xFFFF:        [0xFD, v lo, v hi]
//	0xFFFF < v <= 0xFFFFFFFF:  [0xFE, 4 bytes LE]
//	v > 0xFFFFFFFF:            [0xFF, 8 bytes LE]
func AppendUvarint(buf []byte, v uint64) []byte {
	switch {
	case v <= MaxSmallValue:
		return append(buf, byte(v))
	case v <= 0xFFFF:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(v))
		return append(append(buf, Marker2Byte), tmp[:]...)
	case v <= 0xFFFFFFFF:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v))
		return append(append(buf, Marker4Byte), tmp[:]...)
	default:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], v)
		return append(append(buf, Marker8Byte), tmp[:]...)
	}
}

// UvarintSize returns the number of bytes AppendUvarint would write for v.
func UvarintSize(v uint64) int {
	switch {
	case v <= MaxSmallValue:
		return 1
	case v <= 0xFFFF:
		return 3
	case v <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// PutUvarint encodes v into buf, which must be at least UvarintSize(v)
// bytes long, and returns the number of bytes written.
func PutUvarint(buf []byte, v uint64) int {
	switch {
	case v <= MaxSmallValue:
		buf[0] = byte(v)
		return 1
	case v <= 0xFFFF:
		buf[0] = Marker2Byte
		binary.LittleEndian.PutUint16(buf[1:3], uint16(v))
		return 3
	case v <= 0xFFFFFFFF:
		buf[0] = Marker4Byte
		binary.LittleEndian.PutUint32(buf[1:5], uint32(v))
		return 5
	default:
		buf[0] = Marker8Byte
		binary.LittleEndian.PutUint64(buf[1:9], v)
		return 9
	}
}

// DecodeUvarint decodes a marker-byte varint from data and returns the
// value and the number of bytes consumed. Encoders always choose the
// narrowest marker for a value, but decoders accept any marker regardless
// of whether a narrower one would have sufficed.
func DecodeUvarint(data []byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, ErrVarintTruncated
	}

	marker := data[0]
	switch {
	case marker <= 0xFC:
		return uint64(marker), 1, nil

	case marker == Marker2Byte:
		if len(data) < 3 {
			return 0, 0, ErrVarintTruncated
		}
		return uint64(binary.LittleEndian.Uint16(data[1:3])), 3, nil

	case marker == Marker4Byte:
		if len(data) < 5 {
			return 0, 0, ErrVarintTruncated
		}
		return uint64(binary.LittleEndian.Uint32(data[1:5])), 5, nil

	default: // Marker8Byte
		if len(data) < 9 {
			return 0, 0, ErrVarintTruncated
		}
		return binary.LittleEndian.Uint64(data[1:9]), 9, nil
	}
}
