// Package bench holds hand-written Go bindings for the benchmark schema
// (benchmark/schema.seria), modelled on the native emitter's template in
// pkg/codegen/native_go.go and producing the same wire layout and
// table_ids. It is a reduced form of that emitter's output: each type has
// only New, Set<M>, Serialize and Deserialize (no Copy, Free, Get<M>,
// Has<M> or Verify), id members are named ID rather than Id, and
// SetAuthor copies the Address fields inline.
package bench

import (
	"fmt"

	"github.com/blockberries/serialib/pkg/wire"
)

// SmallMessage is a generated table (table_id 0).
type SmallMessage struct {
	ID           int64
	IDPresent    bool
	Name         string
	NamePresent  bool
	Active       bool
	ActivePresent bool
}

func NewSmallMessage() *SmallMessage { return &SmallMessage{} }

func (m *SmallMessage) SetID(v int64) bool {
	m.ID = v
	m.IDPresent = true
	return true
}

func (m *SmallMessage) SetName(v string) bool {
	m.Name = v
	m.NamePresent = true
	return true
}

func (m *SmallMessage) SetActive(v bool) bool {
	m.Active = v
	m.ActivePresent = true
	return true
}

func (m *SmallMessage) Serialize() ([]byte, error) {
	w := wire.GetWriter()
	defer wire.PutWriter(w)
	bm := w.BeginTable(0, 3)
	if m.IDPresent {
		w.WriteFixedWidth(uint64(m.ID), 8)
		w.SetFieldPresent(bm, 0)
	}
	if m.NamePresent {
		w.WriteString(m.Name)
		w.SetFieldPresent(bm, 1)
	}
	if m.ActivePresent {
		w.WriteBool(m.Active)
		w.SetFieldPresent(bm, 2)
	}
	if w.Err() != nil {
		return nil, w.Err()
	}
	return w.BytesCopy(), nil
}

func (m *SmallMessage) Deserialize(data []byte) error {
	r := wire.NewReader(data)
	id, bitmap, err := r.BeginTable(3)
	if err != nil {
		return err
	}
	if id != 0 {
		return fmt.Errorf("serialib: table_id mismatch decoding SmallMessage: got %d, want 0", id)
	}
	if r.IsFieldPresent(bitmap, 0) {
		v, derr := r.ReadFixedWidth(8)
		if derr != nil {
			return derr
		}
		m.ID = int64(v)
		m.IDPresent = true
	}
	if r.IsFieldPresent(bitmap, 1) {
		v, derr := r.ReadString()
		if derr != nil {
			return derr
		}
		m.Name = v
		m.NamePresent = true
	}
	if r.IsFieldPresent(bitmap, 2) {
		v, derr := r.ReadBool()
		if derr != nil {
			return derr
		}
		m.Active = v
		m.ActivePresent = true
	}
	return r.VerifyExhausted()
}

// Address is a generated struct (table_id 1).
type Address struct {
	Street        string
	StreetPresent bool
	City          string
	CityPresent   bool
}

func NewAddress() *Address { return &Address{} }

func (m *Address) SetStreet(v string) bool {
	m.Street = v
	m.StreetPresent = true
	return true
}

func (m *Address) SetCity(v string) bool {
	m.City = v
	m.CityPresent = true
	return true
}

func (m *Address) Serialize() ([]byte, error) {
	w := wire.GetWriter()
	defer wire.PutWriter(w)
	bm := w.BeginTable(1, 2)
	if m.StreetPresent {
		w.WriteString(m.Street)
		w.SetFieldPresent(bm, 0)
	}
	if m.CityPresent {
		w.WriteString(m.City)
		w.SetFieldPresent(bm, 1)
	}
	if w.Err() != nil {
		return nil, w.Err()
	}
	return w.BytesCopy(), nil
}

func (m *Address) Deserialize(data []byte) error {
	r := wire.NewReader(data)
	id, bitmap, err := r.BeginTable(2)
	if err != nil {
		return err
	}
	if id != 1 {
		return fmt.Errorf("serialib: table_id mismatch decoding Address: got %d, want 1", id)
	}
	if r.IsFieldPresent(bitmap, 0) {
		v, derr := r.ReadString()
		if derr != nil {
			return derr
		}
		m.Street = v
		m.StreetPresent = true
	}
	if r.IsFieldPresent(bitmap, 1) {
		v, derr := r.ReadString()
		if derr != nil {
			return derr
		}
		m.City = v
		m.CityPresent = true
	}
	return r.VerifyExhausted()
}

// Document is a generated table (table_id 2): nested aggregate plus an
// unbounded string vector, exercising the heavier encode/decode path.
type Document struct {
	ID              int64
	IDPresent       bool
	Title           string
	TitlePresent    bool
	Content         string
	ContentPresent  bool
	Tags            []string
	TagsPresent     bool
	Author          *Address
	AuthorPresent   bool
	Published       bool
	PublishedPresent bool
}

func NewDocument() *Document { return &Document{} }

func (m *Document) SetID(v int64) bool {
	m.ID = v
	m.IDPresent = true
	return true
}

func (m *Document) SetTitle(v string) bool {
	m.Title = v
	m.TitlePresent = true
	return true
}

func (m *Document) SetContent(v string) bool {
	m.Content = v
	m.ContentPresent = true
	return true
}

func (m *Document) SetTags(v []string) bool {
	cp := make([]string, len(v))
	copy(cp, v)
	m.Tags = cp
	m.TagsPresent = true
	return true
}

func (m *Document) SetAuthor(v *Address) bool {
	var cp *Address
	if v != nil {
		cp = &Address{Street: v.Street, StreetPresent: v.StreetPresent, City: v.City, CityPresent: v.CityPresent}
	}
	m.Author = cp
	m.AuthorPresent = true
	return true
}

func (m *Document) SetPublished(v bool) bool {
	m.Published = v
	m.PublishedPresent = true
	return true
}

func (m *Document) Serialize() ([]byte, error) {
	w := wire.GetWriter()
	defer wire.PutWriter(w)
	bm := w.BeginTable(2, 6)
	if m.IDPresent {
		w.WriteFixedWidth(uint64(m.ID), 8)
		w.SetFieldPresent(bm, 0)
	}
	if m.TitlePresent {
		w.WriteString(m.Title)
		w.SetFieldPresent(bm, 1)
	}
	if m.ContentPresent {
		w.WriteString(m.Content)
		w.SetFieldPresent(bm, 2)
	}
	if m.TagsPresent {
		w.WriteVectorCount(len(m.Tags))
		for _, t := range m.Tags {
			w.WriteString(t)
		}
		w.SetFieldPresent(bm, 3)
	}
	if m.AuthorPresent {
		nested, nerr := m.Author.Serialize()
		if nerr != nil {
			return nil, nerr
		}
		w.WriteFrame(nested)
		w.SetFieldPresent(bm, 4)
	}
	if m.PublishedPresent {
		w.WriteBool(m.Published)
		w.SetFieldPresent(bm, 5)
	}
	if w.Err() != nil {
		return nil, w.Err()
	}
	return w.BytesCopy(), nil
}

func (m *Document) Deserialize(data []byte) error {
	r := wire.NewReader(data)
	id, bitmap, err := r.BeginTable(6)
	if err != nil {
		return err
	}
	if id != 2 {
		return fmt.Errorf("serialib: table_id mismatch decoding Document: got %d, want 2", id)
	}
	if r.IsFieldPresent(bitmap, 0) {
		v, derr := r.ReadFixedWidth(8)
		if derr != nil {
			return derr
		}
		m.ID = int64(v)
		m.IDPresent = true
	}
	if r.IsFieldPresent(bitmap, 1) {
		v, derr := r.ReadString()
		if derr != nil {
			return derr
		}
		m.Title = v
		m.TitlePresent = true
	}
	if r.IsFieldPresent(bitmap, 2) {
		v, derr := r.ReadString()
		if derr != nil {
			return derr
		}
		m.Content = v
		m.ContentPresent = true
	}
	if r.IsFieldPresent(bitmap, 3) {
		count, derr := r.ReadVectorCount()
		if derr != nil {
			return derr
		}
		vals := make([]string, count)
		for i := 0; i < count; i++ {
			v, derr := r.ReadString()
			if derr != nil {
				return derr
			}
			vals[i] = v
		}
		m.Tags = vals
		m.TagsPresent = true
	}
	if r.IsFieldPresent(bitmap, 4) {
		frame, derr := r.ReadFrame()
		if derr != nil {
			return derr
		}
		nested := NewAddress()
		if derr := nested.Deserialize(frame); derr != nil {
			return derr
		}
		m.Author = nested
		m.AuthorPresent = true
	}
	if r.IsFieldPresent(bitmap, 5) {
		v, derr := r.ReadBool()
		if derr != nil {
			return derr
		}
		m.Published = v
		m.PublishedPresent = true
	}
	return r.VerifyExhausted()
}
