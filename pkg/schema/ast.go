// Package schema provides types and parsing for SeriaLib schema files.
//
// Schema files declare enumerations, fixed-layout structs, and versionable
// tables used to generate wire-compatible native and dynamic-language
// bindings.
package schema

import "fmt"

// Position represents a position in source code.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
}

// Primitive is a tagged builtin type: boolean, string, or a fixed-width
// integer. Integer primitives carry ByteWidth (1, 2, 4, or 8) and Signed.
type Primitive struct {
	Name      string // canonical name, e.g. "uint16"
	ByteWidth int    // 0 for Boolean/String
	Signed    bool
	IsBoolean bool
	IsString  bool
}

func (p *Primitive) typeRef() {}

// IsInteger reports whether p is one of the fixed-width integer primitives.
func (p *Primitive) IsInteger() bool {
	return !p.IsBoolean && !p.IsString
}

// Declaration is implemented by EnumDeclaration and AggregateDeclaration.
type Declaration interface {
	Node
	DeclName() string
}

// TypeRef is a resolved, in-place type reference on a Member: a *Primitive,
// *EnumDeclaration, or *AggregateDeclaration.
type TypeRef interface {
	typeRef()
}

func (e *EnumDeclaration) typeRef()      {}
func (a *AggregateDeclaration) typeRef() {}

// EnumDeclaration declares a named set of integer constants.
type EnumDeclaration struct {
	Position   Position
	Name       string
	SizeName   string // unresolved identifier for the underlying primitive
	Underlying *Primitive
	Members    []*EnumMember
	ValueSet   map[int64]bool // populated during resolution
}

func (e *EnumDeclaration) Pos() Position     { return e.Position }
func (e *EnumDeclaration) DeclName() string  { return e.Name }

// EnumMember is a single named constant within an enum.
type EnumMember struct {
	Position         Position
	Name             string
	Value            int64
	HasExplicitValue bool
}

// Kind distinguishes struct from table declarations. Wire behavior is
// identical; the distinction is preserved only for source fidelity.
type Kind int

const (
	KindStruct Kind = iota
	KindTable
)

func (k Kind) String() string {
	if k == KindTable {
		return "table"
	}
	return "struct"
}

// AggregateDeclaration is a struct or table: an ordered list of members
// assigned a stable TableID during resolution.
type AggregateDeclaration struct {
	Position Position
	Name     string
	Kind     Kind
	Members  []*Member
	TableID  int // assigned by the resolver, source order starting at 0
}

func (a *AggregateDeclaration) Pos() Position    { return a.Position }
func (a *AggregateDeclaration) DeclName() string { return a.Name }

// Literal is a default value attached to a Member: either a number or a
// string, as produced by the parser from a NUMBER_LITERAL or STRING_LITERAL.
type Literal struct {
	Position Position
	IsString bool
	Int      int64
	Str      string
}

// Member is a single named, typed slot within a struct or table.
type Member struct {
	Position Position
	Name     string

	TypeName string // unresolved identifier, possibly from inside brackets
	Resolved TypeRef

	Default *Literal

	Vector        bool
	HasVectorSize bool
	VectorSize    int

	FieldID int // assigned by the resolver, declaration order starting at 0
}

// Schema is an insertion-ordered collection of enum/struct/table
// declarations parsed from one schema source.
type Schema struct {
	Position Position
	Order    []string // declaration names in source order
	Decls    map[string]Declaration
}

// NewSchema creates an empty Schema.
func NewSchema() *Schema {
	return &Schema{Decls: make(map[string]Declaration)}
}

// Add appends a declaration, recording its source order.
func (s *Schema) Add(d Declaration) {
	if s.Decls == nil {
		s.Decls = make(map[string]Declaration)
	}
	s.Order = append(s.Order, d.DeclName())
	s.Decls[d.DeclName()] = d
}

// Lookup returns the declaration with the given name, if any.
func (s *Schema) Lookup(name string) (Declaration, bool) {
	d, ok := s.Decls[name]
	return d, ok
}

// Enums returns every enum declaration, in source order.
func (s *Schema) Enums() []*EnumDeclaration {
	var out []*EnumDeclaration
	for _, name := range s.Order {
		if e, ok := s.Decls[name].(*EnumDeclaration); ok {
			out = append(out, e)
		}
	}
	return out
}

// Aggregates returns every struct/table declaration, in source order.
func (s *Schema) Aggregates() []*AggregateDeclaration {
	var out []*AggregateDeclaration
	for _, name := range s.Order {
		if a, ok := s.Decls[name].(*AggregateDeclaration); ok {
			out = append(out, a)
		}
	}
	return out
}

// BuiltinTypes maps every case-sensitive builtin type name and alias to its
// canonical Primitive, per the GLOSSARY's builtin alias mapping.
var BuiltinTypes = map[string]*Primitive{
	"boolean": {Name: "boolean", IsBoolean: true},
	"bool":    {Name: "boolean", IsBoolean: true},

	"string": {Name: "string", IsString: true},
	"str":    {Name: "string", IsString: true},

	"int8":  {Name: "int8", ByteWidth: 1, Signed: true},
	"char":  {Name: "int8", ByteWidth: 1, Signed: true},
	"schar": {Name: "int8", ByteWidth: 1, Signed: true},
	"sbyte": {Name: "int8", ByteWidth: 1, Signed: true},

	"uint8": {Name: "uint8", ByteWidth: 1, Signed: false},
	"byte":  {Name: "uint8", ByteWidth: 1, Signed: false},
	"ubyte": {Name: "uint8", ByteWidth: 1, Signed: false},
	"uchar": {Name: "uint8", ByteWidth: 1, Signed: false},

	"int16":  {Name: "int16", ByteWidth: 2, Signed: true},
	"short":  {Name: "int16", ByteWidth: 2, Signed: true},
	"sshort": {Name: "int16", ByteWidth: 2, Signed: true},

	"uint16": {Name: "uint16", ByteWidth: 2, Signed: false},
	"ushort": {Name: "uint16", ByteWidth: 2, Signed: false},

	"int32": {Name: "int32", ByteWidth: 4, Signed: true},
	"int":   {Name: "int32", ByteWidth: 4, Signed: true},
	"sint":  {Name: "int32", ByteWidth: 4, Signed: true},

	"uint32": {Name: "uint32", ByteWidth: 4, Signed: false},
	"uint":   {Name: "uint32", ByteWidth: 4, Signed: false},

	"int64": {Name: "int64", ByteWidth: 8, Signed: true},
	"long":  {Name: "int64", ByteWidth: 8, Signed: true},
	"slong": {Name: "int64", ByteWidth: 8, Signed: true},

	"uint64": {Name: "uint64", ByteWidth: 8, Signed: false},
	"ulong":  {Name: "uint64", ByteWidth: 8, Signed: false},
}

// IsBuiltin reports whether name is a recognized builtin type name.
func IsBuiltin(name string) bool {
	_, ok := BuiltinTypes[name]
	return ok
}
