package wire

import (
	"bytes"
	"testing"
)

// TestScenarioAPixel exercises spec scenario A: a table with three uint8
// fields and an enum field, all set.
func TestScenarioAPixel(t *testing.T) {
	w := NewWriter()
	bm := w.BeginTable(0, 4)
	w.WriteFixedWidth(1, 1)
	w.SetFieldPresent(bm, 0)
	w.WriteFixedWidth(2, 1)
	w.SetFieldPresent(bm, 1)
	w.WriteFixedWidth(3, 1)
	w.SetFieldPresent(bm, 2)
	w.WriteFixedWidth(2, 1) // Color.GREEN == 2
	w.SetFieldPresent(bm, 3)

	want := []byte{0x00, 0xF0, 0x01, 0x02, 0x03, 0x02}
	if got := w.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Pixel encode = %x, want %x", got, want)
	}
}

// TestScenarioBEmptyStruct exercises spec scenario B: a zero-field struct.
func TestScenarioBEmptyStruct(t *testing.T) {
	w := NewWriter()
	w.BeginTable(0, 0)

	want := []byte{0x00}
	if got := w.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Empty encode = %x, want %x", got, want)
	}
}

// TestScenarioCDefaultString exercises spec scenario C: an unset string
// field falls back to its declared default at read time, not at encode
// time -- the wire bytes carry only the all-absent bitmap.
func TestScenarioCDefaultString(t *testing.T) {
	w := NewWriter()
	w.BeginTable(0, 1)

	want := []byte{0x00, 0x00}
	encoded := w.BytesCopy()
	if !bytes.Equal(encoded, want) {
		t.Errorf("S() encode = %x, want %x", encoded, want)
	}

	r := NewReader(encoded)
	id, bitmap, err := r.BeginTable(1)
	if err != nil {
		t.Fatalf("BeginTable: %v", err)
	}
	if id != 0 {
		t.Errorf("table_id = %d, want 0", id)
	}
	if r.IsFieldPresent(bitmap, 0) {
		t.Error("expected field 0 (name) absent")
	}
	if err := r.VerifyExhausted(); err != nil {
		t.Errorf("VerifyExhausted: %v", err)
	}
}

// TestScenarioDBoolVector exercises spec scenario D: an unbounded vector of
// booleans, count-prefixed then bit-packed MSB-first.
func TestScenarioDBoolVector(t *testing.T) {
	w := NewWriter()
	bm := w.BeginTable(0, 1)
	bits := []bool{true, false, true, true, false, false, false, false, true}
	w.WriteVectorCount(len(bits))
	w.WriteBoolVector(bits)
	w.SetFieldPresent(bm, 0)

	// First packed byte covers bits[0:8] MSB-first: 1,0,1,1,0,0,0,0 = 0xB0.
	want := []byte{0x00, 0x80, 0x09, 0xB0, 0x80}
	if got := w.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Bag encode = %x, want %x", got, want)
	}
}

// TestScenarioENestedTables exercises spec scenario E: a table field whose
// payload is a length-prefixed nested table frame.
func TestScenarioENestedTables(t *testing.T) {
	inner := NewWriter()
	bmInner := inner.BeginTable(0, 1)
	inner.WriteFixedWidth(0x0102, 2)
	inner.SetFieldPresent(bmInner, 0)
	innerFrame := inner.Bytes()

	outer := NewWriter()
	bmOuter := outer.BeginTable(1, 1)
	outer.WriteFrame(innerFrame)
	outer.SetFieldPresent(bmOuter, 0)

	want := []byte{0x01, 0x80, 0x04, 0x00, 0x80, 0x02, 0x01}
	if got := outer.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Outer encode = %x, want %x", got, want)
	}
}

// TestScenarioFFixedVector exercises spec scenario F: a fixed-size vector
// of uint32, which carries no count prefix.
func TestScenarioFFixedVector(t *testing.T) {
	w := NewWriter()
	bm := w.BeginTable(0, 1)
	for _, v := range []uint64{1, 2, 3} {
		w.WriteFixedWidth(v, 4)
	}
	w.SetFieldPresent(bm, 0)

	want := []byte{0x00, 0x80, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00}
	if got := w.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("T encode = %x, want %x", got, want)
	}
}

// TestReaderRoundTripScenarioD decodes scenario D's bytes back to the
// original boolean slice.
func TestReaderRoundTripScenarioD(t *testing.T) {
	data := []byte{0x00, 0x80, 0x09, 0xB0, 0x80}
	r := NewReader(data)
	id, bitmap, err := r.BeginTable(1)
	if err != nil {
		t.Fatalf("BeginTable: %v", err)
	}
	if id != 0 {
		t.Errorf("table_id = %d, want 0", id)
	}
	if !r.IsFieldPresent(bitmap, 0) {
		t.Fatal("expected bits field present")
	}
	count, err := r.ReadVectorCount()
	if err != nil {
		t.Fatalf("ReadVectorCount: %v", err)
	}
	bits, err := r.ReadBoolVector(count)
	if err != nil {
		t.Fatalf("ReadBoolVector: %v", err)
	}
	want := []bool{true, false, true, true, false, false, false, false, true}
	if len(bits) != len(want) {
		t.Fatalf("got %d bits, want %d", len(bits), len(want))
	}
	for i := range want {
		if bits[i] != want[i] {
			t.Errorf("bit %d = %v, want %v", i, bits[i], want[i])
		}
	}
	if err := r.VerifyExhausted(); err != nil {
		t.Errorf("VerifyExhausted: %v", err)
	}
}

// TestReaderRoundTripScenarioE decodes scenario E's nested frame.
func TestReaderRoundTripScenarioE(t *testing.T) {
	data := []byte{0x01, 0x80, 0x04, 0x00, 0x80, 0x02, 0x01}
	r := NewReader(data)
	id, bitmap, err := r.BeginTable(1)
	if err != nil {
		t.Fatalf("BeginTable: %v", err)
	}
	if id != 1 {
		t.Errorf("outer table_id = %d, want 1", id)
	}
	if !r.IsFieldPresent(bitmap, 0) {
		t.Fatal("expected i field present")
	}
	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if err := r.VerifyExhausted(); err != nil {
		t.Errorf("outer VerifyExhausted: %v", err)
	}

	ir := NewReader(frame)
	innerID, innerBitmap, err := ir.BeginTable(1)
	if err != nil {
		t.Fatalf("inner BeginTable: %v", err)
	}
	if innerID != 0 {
		t.Errorf("inner table_id = %d, want 0", innerID)
	}
	if !ir.IsFieldPresent(innerBitmap, 0) {
		t.Fatal("expected inner x field present")
	}
	x, err := ir.ReadFixedWidth(2)
	if err != nil {
		t.Fatalf("ReadFixedWidth: %v", err)
	}
	if x != 0x0102 {
		t.Errorf("x = %#x, want 0x0102", x)
	}
	if err := ir.VerifyExhausted(); err != nil {
		t.Errorf("inner VerifyExhausted: %v", err)
	}
}

// TestPeekTableID confirms PeekTableID returns the leading table_id of a
// table frame.
func TestPeekTableID(t *testing.T) {
	data := []byte{0x01, 0x80, 0x04, 0x00, 0x80, 0x02, 0x01}
	id, err := PeekTableID(data)
	if err != nil {
		t.Fatalf("PeekTableID: %v", err)
	}
	if id != 1 {
		t.Errorf("PeekTableID = %d, want 1", id)
	}
}
