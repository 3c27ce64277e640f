// Package wire implements the executable runtime for the SeriaLib binary
// wire format: a pooled byte-buffer Writer and a cursor-based Reader, plus
// the table-frame helpers generated code uses to assemble and parse
// messages. The low-level marker-byte varint, presence-bitmap and
// fixed-width helpers live in internal/wire; this package builds the
// message-shaped API on top of them.
package wire

import (
	"sync"
	"unicode/utf8"

	ivwire "github.com/blockberries/serialib/internal/wire"
)

// defaultBufferSize is the initial capacity handed out by the Writer pool.
const defaultBufferSize = 256

var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: make([]byte, 0, defaultBufferSize)}
	},
}

// Writer accumulates an encoded message into an internal buffer. It is not
// safe for concurrent use. Obtain one from GetWriter and return it with
// PutWriter when done; a Writer taken from the pool is already Reset.
type Writer struct {
	buf    []byte
	err    error
	frozen bool
}

// GetWriter returns a Writer from the shared pool, ready to use.
func GetWriter() *Writer {
	return writerPool.Get().(*Writer)
}

// PutWriter resets w and returns it to the shared pool. Do not use w after
// calling PutWriter.
func PutWriter(w *Writer) {
	w.Reset()
	writerPool.Put(w)
}

// NewWriter allocates a standalone Writer outside the pool.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, defaultBufferSize)}
}

// Reset clears w's buffer and error state so it can be reused.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.err = nil
	w.frozen = false
}

// Err returns the first error encountered during writing, if any.
func (w *Writer) Err() error {
	return w.err
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the writer's internal buffer directly, without copying, and
// freezes the writer: further Write* calls will fail with ErrWriterFrozen.
// Callers that need to keep writing after inspecting the buffer should use
// BytesCopy instead.
func (w *Writer) Bytes() []byte {
	w.frozen = true
	return w.buf
}

// BytesCopy returns a fresh copy of the writer's buffer and does not freeze
// the writer.
func (w *Writer) BytesCopy() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

func (w *Writer) setError(err error) {
	if w.err == nil {
		w.err = err
	}
}

// checkWrite reports whether the writer is still accepting writes.
func (w *Writer) checkWrite() bool {
	if w.err != nil {
		return false
	}
	if w.frozen {
		w.setError(ErrWriterFrozen)
		return false
	}
	return true
}

func (w *Writer) grow(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	grown := make([]byte, len(w.buf), 2*cap(w.buf)+n)
	copy(grown, w.buf)
	w.buf = grown
}

// WriteVarint appends v using the marker-byte varint encoding. This is the
// encoding used for table_id, vector element counts, string byte lengths
// and nested frame lengths -- never for integer or enum field payloads.
func (w *Writer) WriteVarint(v uint64) {
	if !w.checkWrite() {
		return
	}
	w.grow(ivwire.UvarintSize(v))
	w.buf = ivwire.AppendUvarint(w.buf, v)
}

// WriteFixedWidth appends v as a raw width-byte little-endian value. This
// is the encoding used for integer primitive and enum field payloads, and
// for elements of fixed-size vectors. width must be 1, 2, 4 or 8.
func (w *Writer) WriteFixedWidth(v uint64, width int) {
	if !w.checkWrite() {
		return
	}
	w.grow(width)
	w.buf = ivwire.AppendFixedWidth(w.buf, v, width)
}

// WriteBool appends a single boolean byte: 0x01 for true, 0x00 for false.
func (w *Writer) WriteBool(v bool) {
	if !w.checkWrite() {
		return
	}
	w.grow(1)
	if v {
		w.buf = append(w.buf, 0x01)
	} else {
		w.buf = append(w.buf, 0x00)
	}
}

// WriteString appends a UTF-8 string as varint(byte_length) followed by the
// raw UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	if !w.checkWrite() {
		return
	}
	if !utf8.ValidString(s) {
		w.setError(NewEncodeError("WriteString", ErrInvalidUTF8))
		return
	}
	w.grow(ivwire.UvarintSize(uint64(len(s))) + len(s))
	w.buf = ivwire.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteRawBytes appends b with no length prefix. WriteBitmap and
// EncodeTableFrame use it to append bytes that are already encoded.
func (w *Writer) WriteRawBytes(b []byte) {
	if !w.checkWrite() {
		return
	}
	w.grow(len(b))
	w.buf = append(w.buf, b...)
}

// WriteFrame appends a nested struct or table frame as
// varint(frame_length) followed by the frame bytes. frame is typically the
// BytesCopy (or Bytes) output of a nested Writer.
func (w *Writer) WriteFrame(frame []byte) {
	if !w.checkWrite() {
		return
	}
	w.grow(ivwire.UvarintSize(uint64(len(frame))) + len(frame))
	w.buf = ivwire.AppendUvarint(w.buf, uint64(len(frame)))
	w.buf = append(w.buf, frame...)
}

// WriteBitmap appends a presence bitmap verbatim, with no length prefix
// (its length is implied by the field count known to both ends).
func (w *Writer) WriteBitmap(bitmap []byte) {
	w.WriteRawBytes(bitmap)
}

// WriteBoolVector appends a packed boolean vector: ceil(len(bits)/8) bytes,
// bits packed MSB-first within each byte. The element count itself is not
// written here; callers write it separately via WriteVarint when the
// vector is unbounded.
func (w *Writer) WriteBoolVector(bits []bool) {
	if !w.checkWrite() {
		return
	}
	size := ivwire.BitmapSize(len(bits))
	w.grow(size)
	start := len(w.buf)
	w.buf = append(w.buf, make([]byte, size)...)
	packed := w.buf[start:]
	for i, b := range bits {
		if b {
			ivwire.SetPresent(packed, i)
		}
	}
}

// BeginTable starts a table frame by writing its table_id and an
// all-clear presence bitmap of the given field count, and returns the
// offset of the bitmap within w's buffer so the caller can flip presence
// bits in place as fields are set with SetFieldPresent.
func (w *Writer) BeginTable(tableID int, fieldCount int) (bitmapOffset int) {
	w.WriteVarint(uint64(tableID))
	size := ivwire.BitmapSize(fieldCount)
	w.grow(size)
	bitmapOffset = len(w.buf)
	w.buf = append(w.buf, make([]byte, size)...)
	return bitmapOffset
}

// SetFieldPresent flips the presence bit for fieldID within the bitmap
// previously reserved by BeginTable at bitmapOffset.
func (w *Writer) SetFieldPresent(bitmapOffset, fieldID int) {
	ivwire.SetPresent(w.buf[bitmapOffset:], fieldID)
}
