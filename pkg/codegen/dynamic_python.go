package codegen

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/blockberries/serialib/pkg/schema"
)

// PythonGenerator is the Dynamic Emitter (spec.md 4.7): it produces one
// Python class per enum and per struct/table, with keyword-only
// constructors, property accessors that coerce enum values and reject
// fixed-vector length mismatches, a readable repr listing only present
// members, serialize()/deserialize() per §4.5, and a module-level
// deserialize() that dispatches on the leading table_id varint.
type PythonGenerator struct{}

// NewPythonGenerator creates a new Python code generator.
func NewPythonGenerator() *PythonGenerator {
	return &PythonGenerator{}
}

func (g *PythonGenerator) Language() Language { return LanguagePython }

func (g *PythonGenerator) FileExtension() string { return ".py" }

func (g *PythonGenerator) Generate(w io.Writer, s *schema.Schema, opts Options) error {
	ctx := &pyContext{Schema: s, Options: opts}

	tmpl, err := template.New("python").Funcs(ctx.funcMap()).Parse(pyTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse python template: %w", err)
	}
	return tmpl.Execute(w, ctx)
}

type pyContext struct {
	Schema  *schema.Schema
	Options Options
}

func (c *pyContext) funcMap() template.FuncMap {
	return template.FuncMap{
		"pyEnumType":       c.pyEnumType,
		"pyAggregateType":  c.pyAggregateType,
		"pyEnumValueName":  c.pyEnumValueName,
		"generateComments": func() bool { return c.Options.GenerateComments },
		"members":          func(a *schema.AggregateDeclaration) []*schema.Member { return a.Members },
		"pyFieldName":      pyFieldName,
		"pyInitParam":      c.pyInitParam,
		"pySetterBody":     c.pySetterBody,
		"pyDefaultExpr":    c.pyDefaultExpr,
		"pyEncodeMember":   c.pyEncodeMember,
		"pyDecodeMember":   c.pyDecodeMember,
		"pyReprPart":       pyReprPart,
	}
}

func pyFieldName(m *schema.Member) string {
	return ToSnakeCase(m.Name)
}

func (c *pyContext) pyEnumType(e *schema.EnumDeclaration) string {
	return c.Options.TypePrefix + ToPascalCase(e.Name) + c.Options.TypeSuffix
}

func (c *pyContext) pyAggregateType(a *schema.AggregateDeclaration) string {
	return c.Options.TypePrefix + ToPascalCase(a.Name) + c.Options.TypeSuffix
}

func (c *pyContext) pyEnumValueName(v *schema.EnumMember) string {
	return ToUpperSnakeCase(v.Name)
}

func isBooleanPy(m *schema.Member) bool {
	p, ok := m.Resolved.(*schema.Primitive)
	return ok && p.IsBoolean
}

func isStringPy(m *schema.Member) bool {
	p, ok := m.Resolved.(*schema.Primitive)
	return ok && p.IsString
}

func isAggregateRefPy(m *schema.Member) bool {
	_, ok := m.Resolved.(*schema.AggregateDeclaration)
	return ok
}

func isEnumPy(m *schema.Member) bool {
	_, ok := m.Resolved.(*schema.EnumDeclaration)
	return ok
}

func widthOfPy(m *schema.Member) int {
	switch t := m.Resolved.(type) {
	case *schema.Primitive:
		return t.ByteWidth
	case *schema.EnumDeclaration:
		return t.Underlying.ByteWidth
	default:
		return 0
	}
}

// pyInitParam returns the `name=None` fragment for m in the constructor
// signature: every member is optional and absent by default.
func (c *pyContext) pyInitParam(m *schema.Member) string {
	return fmt.Sprintf("%s=None", pyFieldName(m))
}

func (c *pyContext) pyDefaultExpr(m *schema.Member) string {
	if m.Default == nil {
		return "None"
	}
	if m.Default.IsString {
		return fmt.Sprintf("%q", m.Default.Str)
	}
	if isBooleanPy(m) {
		if m.Default.Int != 0 {
			return "True"
		}
		return "False"
	}
	if e, ok := m.Resolved.(*schema.EnumDeclaration); ok {
		return fmt.Sprintf("%s(%d)", c.pyEnumType(e), m.Default.Int)
	}
	return fmt.Sprintf("%d", m.Default.Int)
}

// pySetterBody generates the validation/coercion body for member m's
// property setter. `value` holds the incoming value, which may be None to
// clear the member.
func (c *pyContext) pySetterBody(m *schema.Member) string {
	field := pyFieldName(m)
	var b strings.Builder

	fmt.Fprintf(&b, "if value is None:\n")
	fmt.Fprintf(&b, "            self._%s = None\n", field)
	fmt.Fprintf(&b, "            self._%s_present = False\n", field)
	fmt.Fprintf(&b, "            return\n")

	if m.Vector && m.HasVectorSize {
		fmt.Fprintf(&b, "        value = list(value)\n")
		fmt.Fprintf(&b, "        if len(value) != %d:\n", m.VectorSize)
		fmt.Fprintf(&b, "            raise ValueError(\"%s must have exactly %d elements\")\n", field, m.VectorSize)
	} else if m.Vector {
		fmt.Fprintf(&b, "        value = list(value)\n")
	}

	switch {
	case m.Vector && isEnumPy(m):
		enumType := c.pyEnumType(m.Resolved.(*schema.EnumDeclaration))
		fmt.Fprintf(&b, "        value = [v if isinstance(v, %s) else %s(v) for v in value]\n", enumType, enumType)
	case isEnumPy(m):
		enumType := c.pyEnumType(m.Resolved.(*schema.EnumDeclaration))
		fmt.Fprintf(&b, "        value = value if isinstance(value, %s) else %s(value)\n", enumType, enumType)
	}

	fmt.Fprintf(&b, "        self._%s = value\n", field)
	fmt.Fprintf(&b, "        self._%s_present = True", field)
	return b.String()
}

// pyEncodeMember generates the statements that append m's payload to
// `w` (a _Writer), assuming self._<field>_present is true.
func (c *pyContext) pyEncodeMember(m *schema.Member) string {
	field := pyFieldName(m)
	id := m.FieldID

	if m.Vector {
		return c.pyEncodeVector(m, field, id)
	}

	switch {
	case isBooleanPy(m):
		return fmt.Sprintf("w.write_bool(self._%s)\n            bitmap_set(bitmap, %d)", field, id)
	case isStringPy(m):
		return fmt.Sprintf("w.write_string(self._%s)\n            bitmap_set(bitmap, %d)", field, id)
	case isAggregateRefPy(m):
		return fmt.Sprintf("w.write_frame(self._%s.serialize())\n            bitmap_set(bitmap, %d)", field, id)
	case isEnumPy(m):
		return fmt.Sprintf("w.write_fixed(int(self._%s.value), %d)\n            bitmap_set(bitmap, %d)", field, widthOfPy(m), id)
	default:
		return fmt.Sprintf("w.write_fixed(self._%s, %d)\n            bitmap_set(bitmap, %d)", field, widthOfPy(m), id)
	}
}

func (c *pyContext) pyEncodeVector(m *schema.Member, field string, id int) string {
	var b strings.Builder
	if !m.HasVectorSize {
		fmt.Fprintf(&b, "w.write_varint(len(self._%s))\n            ", field)
	}
	switch {
	case isBooleanPy(m):
		fmt.Fprintf(&b, "w.write_bool_vector(self._%s)\n            ", field)
	case isStringPy(m):
		fmt.Fprintf(&b, "for e in self._%s:\n                w.write_string(e)\n            ", field)
	case isAggregateRefPy(m):
		fmt.Fprintf(&b, "for e in self._%s:\n                w.write_frame(e.serialize())\n            ", field)
	case isEnumPy(m):
		fmt.Fprintf(&b, "for e in self._%s:\n                w.write_fixed(int(e.value), %d)\n            ", field, widthOfPy(m))
	default:
		fmt.Fprintf(&b, "for e in self._%s:\n                w.write_fixed(e, %d)\n            ", field, widthOfPy(m))
	}
	fmt.Fprintf(&b, "bitmap_set(bitmap, %d)", id)
	return b.String()
}

// pyDecodeMember generates the statements that read m's payload from `r`
// (a _Reader) once its presence bit has been found set.
func (c *pyContext) pyDecodeMember(m *schema.Member) string {
	field := pyFieldName(m)

	if m.Vector {
		return c.pyDecodeVector(m, field)
	}

	switch {
	case isBooleanPy(m):
		return fmt.Sprintf("obj._%s = r.read_bool()\n            obj._%s_present = True", field, field)
	case isStringPy(m):
		return fmt.Sprintf("obj._%s = r.read_string()\n            obj._%s_present = True", field, field)
	case isAggregateRefPy(m):
		agg := m.Resolved.(*schema.AggregateDeclaration)
		return fmt.Sprintf("obj._%s = %s.deserialize(r.read_frame())\n            obj._%s_present = True", field, c.pyAggregateType(agg), field)
	case isEnumPy(m):
		e := m.Resolved.(*schema.EnumDeclaration)
		return fmt.Sprintf("obj._%s = %s(r.read_fixed(%d))\n            obj._%s_present = True", field, c.pyEnumType(e), widthOfPy(m), field)
	default:
		return fmt.Sprintf("obj._%s = r.read_fixed(%d)\n            obj._%s_present = True", field, widthOfPy(m), field)
	}
}

func (c *pyContext) pyDecodeVector(m *schema.Member, field string) string {
	var b strings.Builder
	if m.HasVectorSize {
		fmt.Fprintf(&b, "count = %d\n            ", m.VectorSize)
	} else {
		fmt.Fprintf(&b, "count = r.read_varint()\n            ")
	}

	switch {
	case isBooleanPy(m):
		fmt.Fprintf(&b, "obj._%s = r.read_bool_vector(count)\n            ", field)
	case isStringPy(m):
		fmt.Fprintf(&b, "obj._%s = [r.read_string() for _ in range(count)]\n            ", field)
	case isAggregateRefPy(m):
		agg := m.Resolved.(*schema.AggregateDeclaration)
		fmt.Fprintf(&b, "obj._%s = [%s.deserialize(r.read_frame()) for _ in range(count)]\n            ", field, c.pyAggregateType(agg))
	case isEnumPy(m):
		e := m.Resolved.(*schema.EnumDeclaration)
		fmt.Fprintf(&b, "obj._%s = [%s(r.read_fixed(%d)) for _ in range(count)]\n            ", field, c.pyEnumType(e), widthOfPy(m))
	default:
		fmt.Fprintf(&b, "obj._%s = [r.read_fixed(%d) for _ in range(count)]\n            ", field, widthOfPy(m))
	}
	fmt.Fprintf(&b, "obj._%s_present = True", field)
	return b.String()
}

func pyReprPart(m *schema.Member) string {
	field := pyFieldName(m)
	return fmt.Sprintf("(\"%s\", self._%s) if self._%s_present else None", field, field, field)
}

func init() {
	Register(NewPythonGenerator())
}

const pyTemplate = `# Code generated by serialibc. DO NOT EDIT.
# Source: {{.Schema.Position.Filename}}

"""Dynamic bindings: lazily-validated classes over the SeriaLib wire format."""

from __future__ import annotations

import enum
import struct


class SerialibError(Exception):
    """Raised when encoded bytes do not decode as a valid declaration."""


def _marker_for(v):
    if v <= 0xFC:
        return 1
    if v <= 0xFFFF:
        return 3
    if v <= 0xFFFFFFFF:
        return 5
    return 9


class _Writer:
    def __init__(self):
        self.buf = bytearray()

    def write_varint(self, v):
        if v <= 0xFC:
            self.buf.append(v)
        elif v <= 0xFFFF:
            self.buf.append(0xFD)
            self.buf.extend(struct.pack("<H", v))
        elif v <= 0xFFFFFFFF:
            self.buf.append(0xFE)
            self.buf.extend(struct.pack("<I", v))
        else:
            self.buf.append(0xFF)
            self.buf.extend(struct.pack("<Q", v))

    def write_fixed(self, v, width):
        self.buf.extend(int(v).to_bytes(width, "little", signed=v < 0))

    def write_bool(self, v):
        self.buf.append(1 if v else 0)

    def write_string(self, s):
        data = s.encode("utf-8")
        self.write_varint(len(data))
        self.buf.extend(data)

    def write_bitmap(self, bitmap):
        self.buf.extend(bitmap)

    def write_frame(self, frame):
        self.write_varint(len(frame))
        self.buf.extend(frame)

    def write_bool_vector(self, bits):
        n = (len(bits) + 7) // 8
        packed = bytearray(n)
        for i, bit in enumerate(bits):
            if bit:
                packed[i // 8] |= 1 << (7 - (i % 8))
        self.buf.extend(packed)

    def bytes(self):
        return bytes(self.buf)


class _Reader:
    def __init__(self, data):
        self.data = data
        self.pos = 0

    def _need(self, n):
        if self.pos + n > len(self.data):
            raise SerialibError("truncated buffer")

    def read_varint(self):
        self._need(1)
        marker = self.data[self.pos]
        if marker <= 0xFC:
            self.pos += 1
            return marker
        if marker == 0xFD:
            self._need(3)
            v = struct.unpack_from("<H", self.data, self.pos + 1)[0]
            self.pos += 3
            return v
        if marker == 0xFE:
            self._need(5)
            v = struct.unpack_from("<I", self.data, self.pos + 1)[0]
            self.pos += 5
            return v
        self._need(9)
        v = struct.unpack_from("<Q", self.data, self.pos + 1)[0]
        self.pos += 9
        return v

    def read_fixed(self, width):
        self._need(width)
        v = int.from_bytes(self.data[self.pos:self.pos + width], "little")
        self.pos += width
        return v

    def read_bool(self):
        return self.read_fixed(1) != 0

    def read_string(self):
        n = self.read_varint()
        self._need(n)
        raw = self.data[self.pos:self.pos + n]
        try:
            s = raw.decode("utf-8")
        except UnicodeDecodeError as e:
            raise SerialibError("invalid utf-8 in string field") from e
        self.pos += n
        return s

    def read_bitmap(self, nbytes):
        self._need(nbytes)
        b = self.data[self.pos:self.pos + nbytes]
        self.pos += nbytes
        return b

    def read_frame(self):
        n = self.read_varint()
        self._need(n)
        frame = self.data[self.pos:self.pos + n]
        self.pos += n
        return frame

    def read_bool_vector(self, count):
        nbytes = (count + 7) // 8
        packed = self.read_bitmap(nbytes)
        return [bool(packed[i // 8] & (1 << (7 - (i % 8)))) for i in range(count)]

    def remaining(self):
        return len(self.data) - self.pos


def bitmap_set(bitmap, field_id):
    bitmap[field_id // 8] |= 1 << (7 - (field_id & 7))


def bitmap_get(bitmap, field_id):
    return bool(bitmap[field_id // 8] & (1 << (7 - (field_id & 7))))

{{$ctx := .}}
{{range $enum := .Schema.Enums}}
class {{pyEnumType $enum}}(enum.IntEnum):
{{if generateComments}}    """Generated enum over {{$enum.SizeName}}."""
{{end -}}
{{- range $v := $enum.Members}}
    {{pyEnumValueName $v}} = {{$v.Value}}
{{- end}}

{{end}}
_TABLE_ID_TO_CLASS = {}


{{range $agg := .Schema.Aggregates}}
class {{pyAggregateType $agg}}:
{{if generateComments}}    """Generated {{$agg.Kind}} (table_id {{$agg.TableID}})."""
{{end -}}
    TABLE_ID = {{$agg.TableID}}
    FIELD_COUNT = {{len (members $agg)}}

    def __init__(self, *{{range $mb := members $agg}}, {{pyInitParam $mb}}{{end}}):
{{- range $mb := members $agg}}
        self._{{pyFieldName $mb}} = None
        self._{{pyFieldName $mb}}_present = False
{{- end}}
{{range $mb := members $agg}}
        if {{pyFieldName $mb}} is not None:
            self.{{pyFieldName $mb}} = {{pyFieldName $mb}}
{{- end}}
{{range $mb := members $agg}}
    @property
    def {{pyFieldName $mb}}(self):
        if self._{{pyFieldName $mb}}_present:
            return self._{{pyFieldName $mb}}
        return {{pyDefaultExpr $mb}}

    @{{pyFieldName $mb}}.setter
    def {{pyFieldName $mb}}(self, value):
        {{pySetterBody $mb}}

    def has_{{pyFieldName $mb}}(self):
        return self._{{pyFieldName $mb}}_present
{{end}}
    def __repr__(self):
        parts = [p for p in [
{{- range $mb := members $agg}}
            {{pyReprPart $mb}},
{{- end}}
        ] if p is not None]
        inner = ", ".join("{}={!r}".format(k, v) for k, v in parts)
        return "{{pyAggregateType $agg}}({})".format(inner)

    def serialize(self):
        w = _Writer()
        w.write_varint(self.TABLE_ID)
        bitmap = bytearray((self.FIELD_COUNT + 7) // 8)
        w.write_bitmap(bitmap)
        bitmap_offset = _marker_for(self.TABLE_ID)
{{range $mb := members $agg}}
        if self._{{pyFieldName $mb}}_present:
            {{pyEncodeMember $mb}}
{{- end}}
        data = w.bytes()
        out = bytearray(data)
        out[bitmap_offset:bitmap_offset + len(bitmap)] = bitmap
        return bytes(out)

    @classmethod
    def deserialize(cls, data):
        r = _Reader(data)
        table_id = r.read_varint()
        if table_id != cls.TABLE_ID:
            raise SerialibError(
                "table_id mismatch decoding {{pyAggregateType $agg}}: got {}, want {}".format(
                    table_id, cls.TABLE_ID))
        bitmap = r.read_bitmap((cls.FIELD_COUNT + 7) // 8)
        obj = cls.__new__(cls)
{{- range $mb := members $agg}}
        obj._{{pyFieldName $mb}} = None
        obj._{{pyFieldName $mb}}_present = False
{{- end}}
{{range $mb := members $agg}}
        if bitmap_get(bitmap, {{$mb.FieldID}}):
            {{pyDecodeMember $mb}}
{{- end}}
        if r.remaining() != 0:
            raise SerialibError("trailing bytes after {{pyAggregateType $agg}}")
        return obj

    @classmethod
    def verify(cls, data):
        try:
            cls.deserialize(data)
            return True
        except SerialibError:
            return False


_TABLE_ID_TO_CLASS[{{$agg.TableID}}] = {{pyAggregateType $agg}}

{{end}}
def deserialize(data):
    """Decodes data by peeking its leading table_id varint and dispatching
    to the matching generated class."""
    r = _Reader(data)
    table_id = r.read_varint()
    cls = _TABLE_ID_TO_CLASS.get(table_id)
    if cls is None:
        raise SerialibError("unknown table_id {}".format(table_id))
    return cls.deserialize(data)
`
