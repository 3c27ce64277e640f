package wire

import "encoding/binary"

// Size constants for fixed-width integer encodings used by fixed-size
// vectors, where every element occupies its primitive's natural byte width
// rather than a variable-width varint.
const (
	Fixed16Size = 2
	Fixed32Size = 4
	Fixed64Size = 8
)

// AppendFixed16 appends a 16-bit value in little-endian format.
func AppendFixed16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// AppendFixed32 appends a 32-bit value in little-endian format.
func AppendFixed32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// AppendFixed64 appends a 64-bit value in little-endian format.
func AppendFixed64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// DecodeFixed16 decodes a little-endian 16-bit value.
func DecodeFixed16(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, ErrVarintTruncated
	}
	return binary.LittleEndian.Uint16(data), nil
}

// DecodeFixed32 decodes a little-endian 32-bit value.
func DecodeFixed32(data []byte) (uint32, error) {
	if len(data) < 4 {
		return 0, ErrVarintTruncated
	}
	return binary.LittleEndian.Uint32(data), nil
}

// DecodeFixed64 decodes a little-endian 64-bit value.
func DecodeFixed64(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, ErrVarintTruncated
	}
	return binary.LittleEndian.Uint64(data), nil
}

// PutFixed16 writes a 16-bit value to buf in little-endian format.
func PutFixed16(buf []byte, v uint16) {
	binary.LittleEndian.PutUint16(buf, v)
}

// PutFixed32 writes a 32-bit value to buf in little-endian format.
func PutFixed32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// PutFixed64 writes a 64-bit value to buf in little-endian format.
func PutFixed64(buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf, v)
}

// AppendFixedWidth appends v to buf using exactly width bytes, little-endian.
// width must be 1, 2, 4, or 8, matching a primitive's ByteWidth. This is the
// encoding used for fixed-size vector elements, which are packed at their
// natural width rather than varint-encoded.
func AppendFixedWidth(buf []byte, v uint64, width int) []byte {
	switch width {
	case 1:
		return append(buf, byte(v))
	case 2:
		return AppendFixed16(buf, uint16(v))
	case 4:
		return AppendFixed32(buf, uint32(v))
	default:
		return AppendFixed64(buf, v)
	}
}

// DecodeFixedWidth decodes a width-byte little-endian integer from data.
func DecodeFixedWidth(data []byte, width int) (uint64, error) {
	switch width {
	case 1:
		if len(data) < 1 {
			return 0, ErrVarintTruncated
		}
		return uint64(data[0]), nil
	case 2:
		v, err := DecodeFixed16(data)
		return uint64(v), err
	case 4:
		v, err := DecodeFixed32(data)
		return uint64(v), err
	default:
		return DecodeFixed64(data)
	}
}
