package wire

import ivwire "github.com/blockberries/serialib/internal/wire"

// PeekTableID reads the table_id at the start of data without consuming it,
// for dispatch-by-table-id decoding where the caller doesn't yet know which
// generated type to construct.
func PeekTableID(data []byte) (int, error) {
	v, _, err := ivwire.DecodeUvarint(data)
	if err != nil {
		return 0, NewDecodeError(0, "PeekTableID", err)
	}
	return int(v), nil
}

// WriteVectorCount writes a vector's element count. Callers only invoke
// this for unbounded vectors; fixed-size vectors carry no count on the
// wire because both ends already know the size from the schema.
func (w *Writer) WriteVectorCount(n int) {
	w.WriteVarint(uint64(n))
}

// ReadVectorCount reads an unbounded vector's element count.
func (r *Reader) ReadVectorCount() (int, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// VerifyExhausted reports an error if the reader has not consumed its
// entire buffer. Generated Deserialize methods (and so Verify, which calls
// Deserialize) call this after decoding a top-level message, since a table frame at the outermost level carries no
// length prefix of its own and must exactly fill the supplied buffer.
func (r *Reader) VerifyExhausted() error {
	if !r.Done() {
		return r.errf("VerifyExhausted", ErrTrailingBytes)
	}
	return nil
}

// EncodeTableFrame assembles a complete table frame from a table_id, a
// presence bitmap and the already-encoded field payloads in ascending
// field_id order. It is a convenience for tests and for callers that have
// already produced each piece independently; generated Serialize methods typically use
// Writer.BeginTable/SetFieldPresent directly instead, to avoid the extra
// allocation of assembling payloads before the bitmap is finalized.
func EncodeTableFrame(tableID int, bitmap []byte, fields [][]byte) []byte {
	w := NewWriter()
	w.WriteVarint(uint64(tableID))
	w.WriteBitmap(bitmap)
	for _, f := range fields {
		w.WriteRawBytes(f)
	}
	return w.Bytes()
}
