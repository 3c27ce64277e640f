package codegen

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/blockberries/serialib/pkg/schema"
)

// GoGenerator is the Native Emitter (spec.md 4.6): it produces Go structs
// that serialize directly through pkg/wire, with one storage slot plus one
// presence bit per member, and the New/Copy/Free/Set<M>/Get<M>/Has<M>/
// Serialize/Deserialize/Verify method set.
type GoGenerator struct{}

// NewGoGenerator creates a new Go code generator.
func NewGoGenerator() *GoGenerator {
	return &GoGenerator{}
}

func (g *GoGenerator) Language() Language { return LanguageGo }

func (g *GoGenerator) FileExtension() string { return ".go" }

func (g *GoGenerator) Generate(w io.Writer, s *schema.Schema, opts Options) error {
	ctx := &goContext{Schema: s, Options: opts}

	tmpl, err := template.New("go").Funcs(ctx.funcMap()).Parse(goTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse go template: %w", err)
	}
	return tmpl.Execute(w, ctx)
}

// GenerateHeader emits the declarations-only half of the native emitter's
// output: enum and struct/table type definitions with no method bodies and
// no pkg/wire dependency. Go has no header/source split, but the CLI
// contract (spec.md 6) still names a --native-header output distinct from
// --native-source, mirroring the C header generated by the implementation
// this emitter is descended from; this is that artifact's Go analogue.
func (g *GoGenerator) GenerateHeader(w io.Writer, s *schema.Schema, opts Options) error {
	ctx := &goContext{Schema: s, Options: opts}

	tmpl, err := template.New("go-header").Funcs(ctx.funcMap()).Parse(goHeaderTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse go header template: %w", err)
	}
	return tmpl.Execute(w, ctx)
}

type goContext struct {
	Schema  *schema.Schema
	Options Options
}

func (c *goContext) funcMap() template.FuncMap {
	return template.FuncMap{
		"goPackage":        c.goPackage,
		"goEnumType":       c.goEnumType,
		"goAggregateType":  c.goAggregateType,
		"goEnumValueName":  c.goEnumValueName,
		"goFieldStorage":   c.goFieldStorage,
		"goFieldAccessor":  c.goFieldAccessor,
		"generateComments": func() bool { return c.Options.GenerateComments },
		"comment":          GoComment,
		"toPascal":         ToPascalCase,
		"bitmapBytes":      bitmapBytes,
		"members":          func(a *schema.AggregateDeclaration) []*schema.Member { return a.Members },
		"setMember":        c.setMember,
		"getMember":        c.getMember,
		"encodeMember":     c.encodeMember,
		"decodeMember":     c.decodeMember,
		"freeMember":       c.freeMember,
		"copyMember":       c.copyMember,
		"fieldGoType":      c.fieldGoType,
	}
}

func bitmapBytes(n int) int {
	if n == 0 {
		return 0
	}
	return (n + 7) / 8
}

func (c *goContext) goPackage() string {
	if c.Options.Package != "" {
		return c.Options.Package
	}
	return "generated"
}

func (c *goContext) goEnumType(e *schema.EnumDeclaration) string {
	return c.Options.TypePrefix + ToPascalCase(e.Name) + c.Options.TypeSuffix
}

func (c *goContext) goAggregateType(a *schema.AggregateDeclaration) string {
	return c.Options.TypePrefix + ToPascalCase(a.Name) + c.Options.TypeSuffix
}

func (c *goContext) goEnumValueName(e *schema.EnumDeclaration, v *schema.EnumMember) string {
	return c.goEnumType(e) + ToPascalCase(v.Name)
}

// goScalarType returns the Go builtin type for a resolved Primitive.
func goScalarType(p *schema.Primitive) string {
	switch {
	case p.IsBoolean:
		return "bool"
	case p.IsString:
		return "string"
	case p.Signed:
		switch p.ByteWidth {
		case 1:
			return "int8"
		case 2:
			return "int16"
		case 4:
			return "int32"
		default:
			return "int64"
		}
	default:
		switch p.ByteWidth {
		case 1:
			return "uint8"
		case 2:
			return "uint16"
		case 4:
			return "uint32"
		default:
			return "uint64"
		}
	}
}

// elementGoType returns the Go type for a single element of m (ignoring
// vector-ness), used both for scalar members and vector element types.
func (c *goContext) elementGoType(m *schema.Member) string {
	switch t := m.Resolved.(type) {
	case *schema.Primitive:
		return goScalarType(t)
	case *schema.EnumDeclaration:
		return c.goEnumType(t)
	case *schema.AggregateDeclaration:
		return "*" + c.goAggregateType(t)
	default:
		return "any"
	}
}

// goFieldStorage returns the Go field declaration(s) for m's storage slot
// and its presence bit, as they appear inside the struct body.
func (c *goContext) goFieldStorage(m *schema.Member) string {
	base := c.elementGoType(m)
	var typ string
	switch {
	case m.Vector && m.HasVectorSize:
		typ = fmt.Sprintf("[%d]%s", m.VectorSize, base)
	case m.Vector:
		typ = "[]" + base
	default:
		typ = base
	}
	field := ToPascalCase(m.Name)
	return fmt.Sprintf("%s %s\n\t%sPresent bool", field, typ, field)
}

// goFieldAccessor returns the PascalCase accessor suffix used for
// Set<M>/Get<M>/Has<M> method names.
func (c *goContext) goFieldAccessor(m *schema.Member) string {
	return ToPascalCase(m.Name)
}

func widthOf(m *schema.Member) int {
	switch t := m.Resolved.(type) {
	case *schema.Primitive:
		return t.ByteWidth
	case *schema.EnumDeclaration:
		return t.Underlying.ByteWidth
	default:
		return 0
	}
}

func isBoolean(m *schema.Member) bool {
	p, ok := m.Resolved.(*schema.Primitive)
	return ok && p.IsBoolean
}

func isString(m *schema.Member) bool {
	p, ok := m.Resolved.(*schema.Primitive)
	return ok && p.IsString
}

func isAggregateRef(m *schema.Member) bool {
	_, ok := m.Resolved.(*schema.AggregateDeclaration)
	return ok
}

func isIntegerLike(m *schema.Member) bool {
	switch m.Resolved.(type) {
	case *schema.Primitive:
		return !isBoolean(m) && !isString(m)
	case *schema.EnumDeclaration:
		return true
	}
	return false
}

// setMember generates the body of Set<M>, after the struct field name and
// accessor name have been filled into the enclosing template.
func (c *goContext) setMember(m *schema.Member) string {
	field := ToPascalCase(m.Name)
	goType := c.elementGoType(m)
	var paramType string
	switch {
	case m.Vector && m.HasVectorSize:
		paramType = fmt.Sprintf("[%d]%s", m.VectorSize, goType)
	case m.Vector:
		paramType = "[]" + goType
	default:
		paramType = goType
	}

	var b strings.Builder
	if m.Vector && m.HasVectorSize {
		fmt.Fprintf(&b, "if len(v) != %d {\n\t\treturn false\n\t}\n\t", m.VectorSize)
	}

	switch {
	case isAggregateRef(m) && m.Vector:
		fmt.Fprintf(&b, "cp := make(%s, len(v))\n\tfor i, e := range v {\n\t\tif e != nil {\n\t\t\tcp[i] = e.Copy()\n\t\t}\n\t}\n\tm.%s = cp\n\t", paramType, field)
	case isAggregateRef(m):
		fmt.Fprintf(&b, "var cp %s\n\tif v != nil {\n\t\tcp = v.Copy()\n\t}\n\tm.%s = cp\n\t", goType, field)
	case m.Vector && !m.HasVectorSize:
		fmt.Fprintf(&b, "cp := make(%s, len(v))\n\tcopy(cp, v)\n\tm.%s = cp\n\t", paramType, field)
	default:
		fmt.Fprintf(&b, "m.%s = v\n\t", field)
	}
	fmt.Fprintf(&b, "m.%sPresent = true\n\treturn true", field)
	return b.String()
}

// getMember generates the body of Get<M>.
func (c *goContext) getMember(m *schema.Member) string {
	field := ToPascalCase(m.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "if m.%sPresent {\n\t\treturn m.%s, true\n\t}\n\t", field, field)
	if m.Default != nil {
		fmt.Fprintf(&b, "return %s, true", c.defaultLiteral(m))
	} else {
		fmt.Fprintf(&b, "var zero %s\n\treturn zero, false", c.fieldGoType(m))
	}
	return b.String()
}

func (c *goContext) fieldGoType(m *schema.Member) string {
	base := c.elementGoType(m)
	switch {
	case m.Vector && m.HasVectorSize:
		return fmt.Sprintf("[%d]%s", m.VectorSize, base)
	case m.Vector:
		return "[]" + base
	default:
		return base
	}
}

func (c *goContext) defaultLiteral(m *schema.Member) string {
	if m.Default == nil {
		return "0"
	}
	if m.Default.IsString {
		return fmt.Sprintf("%q", m.Default.Str)
	}
	if isBoolean(m) {
		if m.Default.Int != 0 {
			return "true"
		}
		return "false"
	}
	if _, ok := m.Resolved.(*schema.EnumDeclaration); ok {
		return fmt.Sprintf("%s(%d)", c.elementGoType(m), m.Default.Int)
	}
	return fmt.Sprintf("%d", m.Default.Int)
}

// freeMember generates the statement that releases m's storage when
// Free runs, recursing into nested aggregates.
func (c *goContext) freeMember(m *schema.Member) string {
	field := ToPascalCase(m.Name)
	if isAggregateRef(m) && !m.Vector {
		return fmt.Sprintf("if m.%s != nil {\n\t\tm.%s.Free()\n\t}\n\tm.%s = nil\n\tm.%sPresent = false", field, field, field, field)
	}
	var zero string
	switch {
	case m.Vector:
		zero = "nil"
		if m.HasVectorSize {
			zero = fmt.Sprintf("%s{}", c.fieldGoType(m))
		}
	default:
		zero = fmt.Sprintf("%s(0)", c.elementGoType(m))
		if isBoolean(m) {
			zero = "false"
		} else if isString(m) {
			zero = `""`
		} else if _, ok := m.Resolved.(*schema.AggregateDeclaration); ok {
			zero = "nil"
		}
	}
	return fmt.Sprintf("m.%s = %s\n\tm.%sPresent = false", field, zero, field)
}

// copyMember generates the statement that deep-copies m from src into the
// receiver inside Copy().
func (c *goContext) copyMember(m *schema.Member) string {
	field := ToPascalCase(m.Name)
	switch {
	case isAggregateRef(m) && m.Vector:
		return fmt.Sprintf("if src.%s != nil {\n\t\tcp.%s = make(%s, len(src.%s))\n\t\tfor i, e := range src.%s {\n\t\t\tif e != nil {\n\t\t\t\tcp.%s[i] = e.Copy()\n\t\t\t}\n\t\t}\n\t}\n\tcp.%sPresent = src.%sPresent", field, field, c.fieldGoType(m), field, field, field, field, field)
	case isAggregateRef(m):
		return fmt.Sprintf("if src.%s != nil {\n\t\tcp.%s = src.%s.Copy()\n\t}\n\tcp.%sPresent = src.%sPresent", field, field, field, field, field)
	case m.Vector && !m.HasVectorSize:
		return fmt.Sprintf("if src.%s != nil {\n\t\tcp.%s = make(%s, len(src.%s))\n\t\tcopy(cp.%s, src.%s)\n\t}\n\tcp.%sPresent = src.%sPresent", field, field, c.fieldGoType(m), field, field, field, field, field)
	default:
		return fmt.Sprintf("cp.%s = src.%s\n\tcp.%sPresent = src.%sPresent", field, field, field, field)
	}
}

// encodeMember generates the code that writes m's payload and then sets
// its presence bit via SetFieldPresent, assuming m.<Field>Present is true.
func (c *goContext) encodeMember(m *schema.Member) string {
	field := ToPascalCase(m.Name)
	id := m.FieldID

	switch {
	case m.Vector:
		return c.encodeVector(m, field, id)
	case isBoolean(m):
		return fmt.Sprintf("w.WriteBool(m.%s)\n\tw.SetFieldPresent(bm, %d)", field, id)
	case isString(m):
		return fmt.Sprintf("w.WriteString(m.%s)\n\tw.SetFieldPresent(bm, %d)", field, id)
	case isAggregateRef(m):
		return fmt.Sprintf(`nested, nerr := m.%s.Serialize()
	if nerr != nil {
		return nil, nerr
	}
	w.WriteFrame(nested)
	w.SetFieldPresent(bm, %d)`, field, id)
	case isIntegerLike(m):
		return fmt.Sprintf("w.WriteFixedWidth(uint64(m.%s), %d)\n\tw.SetFieldPresent(bm, %d)", field, widthOf(m), id)
	default:
		return "// unsupported member kind"
	}
}

func (c *goContext) encodeVector(m *schema.Member, field string, id int) string {
	var b strings.Builder
	if !m.HasVectorSize {
		fmt.Fprintf(&b, "w.WriteVectorCount(len(m.%s))\n\t", field)
	}
	switch {
	case isBoolean(m):
		fmt.Fprintf(&b, "w.WriteBoolVector(m.%s)\n\t", field)
	case isString(m):
		fmt.Fprintf(&b, "for _, e := range m.%s {\n\t\tw.WriteString(e)\n\t}\n\t", field)
	case isAggregateRef(m):
		fmt.Fprintf(&b, `for _, e := range m.%s {
		nested, nerr := e.Serialize()
		if nerr != nil {
			return nil, nerr
		}
		w.WriteFrame(nested)
	}
	`, field)
	case isIntegerLike(m):
		fmt.Fprintf(&b, "for _, e := range m.%s {\n\t\tw.WriteFixedWidth(uint64(e), %d)\n\t}\n\t", field, widthOf(m))
	}
	fmt.Fprintf(&b, "w.SetFieldPresent(bm, %d)", id)
	return b.String()
}

// decodeMember generates the code that reads m's payload once its presence
// bit has been found set, assigning into m.<Field> and setting
// m.<Field>Present.
func (c *goContext) decodeMember(m *schema.Member) string {
	field := ToPascalCase(m.Name)

	switch {
	case m.Vector:
		return c.decodeVector(m, field)
	case isBoolean(m):
		return fmt.Sprintf(`v, derr := r.ReadBool()
		if derr != nil {
			return derr
		}
		m.%s = v
		m.%sPresent = true`, field, field)
	case isString(m):
		return fmt.Sprintf(`v, derr := r.ReadString()
		if derr != nil {
			return derr
		}
		m.%s = v
		m.%sPresent = true`, field, field)
	case isAggregateRef(m):
		agg := m.Resolved.(*schema.AggregateDeclaration)
		return fmt.Sprintf(`frame, derr := r.ReadFrame()
		if derr != nil {
			return derr
		}
		nested := New%s()
		if derr := nested.Deserialize(frame); derr != nil {
			return derr
		}
		m.%s = nested
		m.%sPresent = true`, c.goAggregateType(agg), field, field)
	case isIntegerLike(m):
		return fmt.Sprintf(`v, derr := r.ReadFixedWidth(%d)
		if derr != nil {
			return derr
		}
		m.%s = %s(v)
		m.%sPresent = true`, widthOf(m), field, c.elementGoType(m), field)
	default:
		return "// unsupported member kind"
	}
}

func (c *goContext) decodeVector(m *schema.Member, field string) string {
	elemType := c.elementGoType(m)
	var b strings.Builder
	if m.HasVectorSize {
		fmt.Fprintf(&b, "count := %d\n\t\t", m.VectorSize)
	} else {
		fmt.Fprintf(&b, `count, derr := r.ReadVectorCount()
		if derr != nil {
			return derr
		}
		`)
	}

	switch {
	case isBoolean(m):
		fmt.Fprintf(&b, `bits, derr := r.ReadBoolVector(count)
		if derr != nil {
			return derr
		}
		`)
		if m.HasVectorSize {
			fmt.Fprintf(&b, "var arr [%d]bool\n\t\tcopy(arr[:], bits)\n\t\tm.%s = arr\n\t\t", m.VectorSize, field)
		} else {
			fmt.Fprintf(&b, "m.%s = bits\n\t\t", field)
		}
	case isString(m):
		fmt.Fprintf(&b, "vals := make([]%s, count)\n\t\tfor i := 0; i < count; i++ {\n\t\t\tv, derr := r.ReadString()\n\t\t\tif derr != nil {\n\t\t\t\treturn derr\n\t\t\t}\n\t\t\tvals[i] = v\n\t\t}\n\t\t", elemType)
		b.WriteString(assignVector(m, field, elemType))
	case isAggregateRef(m):
		agg := m.Resolved.(*schema.AggregateDeclaration)
		fmt.Fprintf(&b, `vals := make([]%s, count)
		for i := 0; i < count; i++ {
			frame, derr := r.ReadFrame()
			if derr != nil {
				return derr
			}
			e := New%s()
			if derr := e.Deserialize(frame); derr != nil {
				return derr
			}
			vals[i] = e
		}
		`, elemType, c.goAggregateType(agg))
		b.WriteString(assignVector(m, field, elemType))
	case isIntegerLike(m):
		fmt.Fprintf(&b, "vals := make([]%s, count)\n\t\tfor i := 0; i < count; i++ {\n\t\t\tv, derr := r.ReadFixedWidth(%d)\n\t\t\tif derr != nil {\n\t\t\t\treturn derr\n\t\t\t}\n\t\t\tvals[i] = %s(v)\n\t\t}\n\t\t", elemType, widthOf(m), elemType)
		b.WriteString(assignVector(m, field, elemType))
	}
	fmt.Fprintf(&b, "\n\t\tm.%sPresent = true", field)
	return b.String()
}

func assignVector(m *schema.Member, field, elemType string) string {
	if m.HasVectorSize {
		return fmt.Sprintf("var arr [%d]%s\n\t\tcopy(arr[:], vals)\n\t\tm.%s = arr", m.VectorSize, elemType, field)
	}
	return fmt.Sprintf("m.%s = vals", field)
}

func init() {
	Register(NewGoGenerator())
}

const goHeaderTemplate = `// Code generated by serialibc. DO NOT EDIT.
// Declarations for: {{.Schema.Position.Filename}}

package {{goPackage}}
{{range $enum := .Schema.Enums}}
{{if generateComments}}// {{goEnumType $enum}} is a generated enum over {{$enum.SizeName}}.
{{end -}}
type {{goEnumType $enum}} {{$enum.Underlying.Name}}

const (
{{- range $v := $enum.Members}}
	{{goEnumValueName $enum $v}} {{goEnumType $enum}} = {{$v.Value}}
{{- end}}
)
{{end}}
{{range $agg := .Schema.Aggregates}}
{{if generateComments}}// {{goAggregateType $agg}} is a generated {{$agg.Kind}} (table_id {{$agg.TableID}}).
{{end -}}
type {{goAggregateType $agg}} struct {
{{- range $m := members $agg}}
	{{goFieldStorage $m}}
{{- end}}
}
{{end}}
`

const goTemplate = `// Code generated by serialibc. DO NOT EDIT.
// Source: {{.Schema.Position.Filename}}

package {{goPackage}}
{{if .Schema.Aggregates}}
import (
	"fmt"

	"github.com/blockberries/serialib/pkg/wire"
)
{{end}}
{{range $enum := .Schema.Enums}}
{{if generateComments}}// {{goEnumType $enum}} is a generated enum over {{$enum.SizeName}}.
{{end -}}
type {{goEnumType $enum}} {{$enum.Underlying.Name}}

const (
{{- range $v := $enum.Members}}
	{{goEnumValueName $enum $v}} {{goEnumType $enum}} = {{$v.Value}}
{{- end}}
)

// IsValid reports whether e is one of {{goEnumType $enum}}'s declared values.
func (e {{goEnumType $enum}}) IsValid() bool {
	switch e {
{{- range $v := $enum.Members}}
	case {{goEnumValueName $enum $v}}:
		return true
{{- end}}
	default:
		return false
	}
}
{{end}}
{{range $agg := .Schema.Aggregates}}
{{if generateComments}}// {{goAggregateType $agg}} is a generated {{$agg.Kind}} (table_id {{$agg.TableID}}).
{{end -}}
type {{goAggregateType $agg}} struct {
{{- range $m := members $agg}}
	{{goFieldStorage $m}}
{{- end}}
}

// New{{goAggregateType $agg}} returns a zeroed instance with every member absent.
func New{{goAggregateType $agg}}() *{{goAggregateType $agg}} {
	return &{{goAggregateType $agg}}{}
}

// Copy returns a deep copy of m; mutating one does not affect the other.
func (m *{{goAggregateType $agg}}) Copy() *{{goAggregateType $agg}} {
	cp := &{{goAggregateType $agg}}{}
	src := m
{{- range $mb := members $agg}}
	{{copyMember $mb}}
{{- end}}
	return cp
}

// Free releases all present members recursively and clears presence.
func (m *{{goAggregateType $agg}}) Free() {
{{- range $mb := members $agg}}
	{{freeMember $mb}}
{{- end}}
}
{{range $mb := members $agg}}
// Set{{goFieldAccessor $mb}} stores v and marks the member present.
func (m *{{goAggregateType $agg}}) Set{{goFieldAccessor $mb}}(v {{fieldGoType $mb}}) bool {
	{{setMember $mb}}
}

// Get{{goFieldAccessor $mb}} returns the member's value, or its declared
// default (second return true) if absent with one, or the zero value
// (second return false) if absent with no default.
func (m *{{goAggregateType $agg}}) Get{{goFieldAccessor $mb}}() ({{fieldGoType $mb}}, bool) {
	{{getMember $mb}}
}

// Has{{goFieldAccessor $mb}} reports whether the member is present.
func (m *{{goAggregateType $agg}}) Has{{goFieldAccessor $mb}}() bool {
	return m.{{toPascal $mb.Name}}Present
}
{{end}}
// Serialize encodes m per the wire format: table_id {{$agg.TableID}}, a
// presence bitmap, then each present member's payload in field_id order.
func (m *{{goAggregateType $agg}}) Serialize() ([]byte, error) {
	w := wire.GetWriter()
	defer wire.PutWriter(w)
	bm := w.BeginTable({{$agg.TableID}}, {{len (members $agg)}})
{{range $mb := members $agg}}
	if m.{{toPascal $mb.Name}}Present {
		{{encodeMember $mb}}
	}
{{- end}}
	if w.Err() != nil {
		return nil, w.Err()
	}
	return w.BytesCopy(), nil
}

// Deserialize reconstructs m from data, rejecting any table_id mismatch.
func (m *{{goAggregateType $agg}}) Deserialize(data []byte) error {
	r := wire.NewReader(data)
	id, bitmap, err := r.BeginTable({{len (members $agg)}})
	if err != nil {
		return err
	}
	if id != {{$agg.TableID}} {
		return fmt.Errorf("serialib: table_id mismatch decoding {{goAggregateType $agg}}: got %d, want {{$agg.TableID}}", id)
	}
{{range $mb := members $agg}}
	if r.IsFieldPresent(bitmap, {{$mb.FieldID}}) {
		{{decodeMember $mb}}
	}
{{- end}}
	return r.VerifyExhausted()
}

// Verify reports whether data decodes as a valid {{goAggregateType $agg}}
// without retaining the decoded value.
func (m *{{goAggregateType $agg}}) Verify(data []byte) bool {
	tmp := New{{goAggregateType $agg}}()
	return tmp.Deserialize(data) == nil
}
{{end}}
`
