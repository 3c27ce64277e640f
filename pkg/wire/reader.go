package wire

import (
	"unicode/utf8"

	ivwire "github.com/blockberries/serialib/internal/wire"
)

// Reader consumes an encoded message from a fixed byte slice via a cursor.
// It is not safe for concurrent use.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data. data is not
// copied; the caller must not mutate it while the Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current cursor offset into the underlying buffer.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Done reports whether the cursor has reached the end of the buffer.
func (r *Reader) Done() bool {
	return r.pos >= len(r.data)
}

func (r *Reader) errf(msg string, cause error) error {
	return NewDecodeError(r.pos, msg, cause)
}

// ReadVarint reads a marker-byte varint, as used for table_id, vector
// counts, string lengths and nested frame lengths.
func (r *Reader) ReadVarint() (uint64, error) {
	v, n, err := ivwire.DecodeUvarint(r.data[r.pos:])
	if err != nil {
		return 0, r.errf("ReadVarint", err)
	}
	r.pos += n
	return v, nil
}

// ReadFixedWidth reads a raw width-byte little-endian value, as used for
// integer and enum field payloads and fixed-size vector elements.
func (r *Reader) ReadFixedWidth(width int) (uint64, error) {
	if r.Remaining() < width {
		return 0, r.errf("ReadFixedWidth", ErrTruncated)
	}
	v, err := ivwire.DecodeFixedWidth(r.data[r.pos:r.pos+width], width)
	if err != nil {
		return 0, r.errf("ReadFixedWidth", err)
	}
	r.pos += width
	return v, nil
}

// ReadBool reads a single boolean byte.
func (r *Reader) ReadBool() (bool, error) {
	if r.Remaining() < 1 {
		return false, r.errf("ReadBool", ErrTruncated)
	}
	v := r.data[r.pos]
	r.pos++
	return v != 0, nil
}

// ReadString reads varint(byte_length) followed by that many UTF-8 bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return "", err
	}
	if uint64(r.Remaining()) < n {
		return "", r.errf("ReadString", ErrTruncated)
	}
	b := r.data[r.pos : r.pos+int(n)]
	if !utf8.Valid(b) {
		return "", r.errf("ReadString", ErrInvalidUTF8)
	}
	r.pos += int(n)
	return string(b), nil
}

// ReadBitmap reads a presence bitmap of the size implied by fieldCount.
func (r *Reader) ReadBitmap(fieldCount int) ([]byte, error) {
	size := ivwire.BitmapSize(fieldCount)
	if r.Remaining() < size {
		return nil, r.errf("ReadBitmap", ErrTruncated)
	}
	b := r.data[r.pos : r.pos+size]
	r.pos += size
	return b, nil
}

// ReadFrame reads varint(frame_length) followed by exactly that many bytes,
// returning the inner frame slice (not copied) for recursive decoding of a
// nested struct or table.
func (r *Reader) ReadFrame() ([]byte, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if uint64(r.Remaining()) < n {
		return nil, r.errf("ReadFrame", ErrFrameOverrun)
	}
	b := r.data[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// ReadRawBytes reads exactly n raw bytes with no length prefix.
func (r *Reader) ReadRawBytes(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, r.errf("ReadRawBytes", ErrTruncated)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBoolVector reads a packed boolean vector of count elements:
// ceil(count/8) bytes, MSB-first.
func (r *Reader) ReadBoolVector(count int) ([]bool, error) {
	size := ivwire.BitmapSize(count)
	packed, err := r.ReadRawBytes(size)
	if err != nil {
		return nil, err
	}
	out := make([]bool, count)
	for i := range out {
		out[i] = ivwire.IsPresent(packed, i)
	}
	return out, nil
}

// BeginTable reads a table_id followed by a presence bitmap of fieldCount
// bits, returning both. Generated Deserialize methods call this first, then
// check IsFieldPresent for each field_id before reading its payload.
func (r *Reader) BeginTable(fieldCount int) (tableID int, bitmap []byte, err error) {
	id, err := r.ReadVarint()
	if err != nil {
		return 0, nil, err
	}
	bitmap, err = r.ReadBitmap(fieldCount)
	if err != nil {
		return 0, nil, err
	}
	return int(id), bitmap, nil
}

// IsFieldPresent reports whether fieldID's bit is set in bitmap.
func (r *Reader) IsFieldPresent(bitmap []byte, fieldID int) bool {
	return ivwire.IsPresent(bitmap, fieldID)
}
