package extract

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"github.com/blockberries/serialib/pkg/schema"
)

// SchemaBuilder converts collected Go type information into a SeriaLib
// schema AST, assigning table_id/field_id the same way the resolver would
// for schema text: table_id contiguous across structs+tables in order of
// appearance, field_id from each member's `seriagen` tag when present, and
// otherwise the previous member's field_id plus one (starting at 0; a field
// whose type cannot be mapped is skipped and consumes no field_id).
//
// Go source carries no single cross-package declaration order, so
// "order of appearance" here is the sorted qualified type name — the same
// order go/types.Scope.Names() already returns within one package.
type SchemaBuilder struct {
	types    map[string]*TypeInfo
	enums    map[string]*EnumInfo
	warnings []string
}

// NewSchemaBuilder creates a new schema builder.
func NewSchemaBuilder(types map[string]*TypeInfo, enums map[string]*EnumInfo) *SchemaBuilder {
	return &SchemaBuilder{types: types, enums: enums}
}

// Warnings returns any warnings generated during schema building.
func (b *SchemaBuilder) Warnings() []string {
	return b.warnings
}

func (b *SchemaBuilder) addWarning(msg string) {
	b.warnings = append(b.warnings, msg)
}

// Build constructs a schema from the collected types.
func (b *SchemaBuilder) Build() (*schema.Schema, error) {
	s := schema.NewSchema()

	var enumNames []string
	for name := range b.enums {
		enumNames = append(enumNames, name)
	}
	sort.Strings(enumNames)

	enumDecls := make(map[string]*schema.EnumDeclaration, len(enumNames))
	for _, qn := range enumNames {
		decl := b.buildEnum(b.enums[qn])
		enumDecls[qn] = decl
		s.Add(decl)
	}

	var typeNames []string
	for name := range b.types {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	aggDecls := make(map[string]*schema.AggregateDeclaration, len(typeNames))
	tableID := 0
	for _, qn := range typeNames {
		info := b.types[qn]
		kind := schema.KindTable
		if info.AsStruct {
			kind = schema.KindStruct
		}
		aggDecls[qn] = &schema.AggregateDeclaration{Name: info.Name, Kind: kind, TableID: tableID}
		tableID++
	}

	for _, qn := range typeNames {
		info := b.types[qn]
		decl := aggDecls[qn]

		usedFieldIDs := make(map[int]string)
		nextFieldID := 0
		for _, field := range info.Fields {
			m, err := b.buildMember(field, enumDecls, aggDecls)
			if err != nil {
				b.addWarning(fmt.Sprintf("type %q field %q: %v", info.Name, field.Name, err))
				continue
			}

			if field.HasFieldID {
				m.FieldID = field.FieldID
			} else {
				m.FieldID = nextFieldID
			}
			nextFieldID = m.FieldID + 1

			if existing, exists := usedFieldIDs[m.FieldID]; exists {
				b.addWarning(fmt.Sprintf("field_id collision in type %q: fields %q and %q both have field_id %d",
					info.Name, existing, field.Name, m.FieldID))
			}
			usedFieldIDs[m.FieldID] = field.Name

			decl.Members = append(decl.Members, m)
		}

		s.Add(decl)
	}

	return s, nil
}

func (b *SchemaBuilder) buildEnum(info *EnumInfo) *schema.EnumDeclaration {
	values := make([]*EnumValueInfo, len(info.Values))
	copy(values, info.Values)
	sort.Slice(values, func(i, j int) bool { return values[i].Value < values[j].Value })

	underlyingName := "uint16"
	switch {
	case info.ByteWidth == 1 && info.Signed:
		underlyingName = "int8"
	case info.ByteWidth == 1:
		underlyingName = "uint8"
	case info.ByteWidth == 2 && info.Signed:
		underlyingName = "int16"
	case info.ByteWidth == 2:
		underlyingName = "uint16"
	case info.ByteWidth == 4 && info.Signed:
		underlyingName = "int32"
	case info.ByteWidth == 4:
		underlyingName = "uint32"
	case info.ByteWidth == 8 && info.Signed:
		underlyingName = "int64"
	case info.ByteWidth == 8:
		underlyingName = "uint64"
	}

	decl := &schema.EnumDeclaration{
		Name:       info.Name,
		SizeName:   underlyingName,
		Underlying: schema.BuiltinTypes[underlyingName],
	}
	for _, v := range values {
		decl.Members = append(decl.Members, &schema.EnumMember{
			Name:             v.Name,
			Value:            v.Value,
			HasExplicitValue: true,
		})
	}
	return decl
}

// buildMember converts a collected field into a schema.Member, resolving
// its element type against the enum/aggregate declarations built so far.
func (b *SchemaBuilder) buildMember(field *FieldInfo, enumDecls map[string]*schema.EnumDeclaration, aggDecls map[string]*schema.AggregateDeclaration) (*schema.Member, error) {
	resolved, typeName, err := b.resolveGoType(field.GoType, enumDecls, aggDecls)
	if err != nil {
		return nil, err
	}

	return &schema.Member{
		Name:          toSnakeCase(field.Name),
		TypeName:      typeName,
		Resolved:      resolved,
		Vector:        field.Vector,
		HasVectorSize: field.HasVectorSize,
		VectorSize:    field.VectorSize,
	}, nil
}

// resolveGoType maps a (possibly named) Go type to the SeriaLib type it
// stands for: a builtin Primitive, or a reference to an already-built enum
// or aggregate declaration.
func (b *SchemaBuilder) resolveGoType(t types.Type, enumDecls map[string]*schema.EnumDeclaration, aggDecls map[string]*schema.AggregateDeclaration) (schema.TypeRef, string, error) {
	if named, ok := t.(*types.Named); ok && named.Obj().Pkg() != nil {
		qn := named.Obj().Pkg().Path() + "." + named.Obj().Name()
		if decl, ok := enumDecls[qn]; ok {
			return decl, decl.Name, nil
		}
		if decl, ok := aggDecls[qn]; ok {
			return decl, decl.Name, nil
		}
		return b.resolveGoType(named.Underlying(), enumDecls, aggDecls)
	}

	basic, ok := t.(*types.Basic)
	if !ok {
		return nil, "", fmt.Errorf("unsupported Go type %s", t.String())
	}

	name, ok := builtinNameFor(basic, b)
	if !ok {
		return nil, "", fmt.Errorf("unsupported basic type %s", basic.String())
	}
	return schema.BuiltinTypes[name], name, nil
}

func builtinNameFor(t *types.Basic, b *SchemaBuilder) (string, bool) {
	switch t.Kind() {
	case types.Bool:
		return "boolean", true
	case types.String:
		return "string", true
	case types.Int8:
		return "int8", true
	case types.Uint8:
		return "uint8", true
	case types.Int16:
		return "int16", true
	case types.Uint16:
		return "uint16", true
	case types.Int32:
		return "int32", true
	case types.Uint32:
		return "uint32", true
	case types.Int64:
		return "int64", true
	case types.Uint64:
		return "uint64", true
	case types.Int:
		b.addWarning("type 'int' is platform-dependent (32 or 64 bits); mapped to int32")
		return "int32", true
	case types.Uint:
		b.addWarning("type 'uint' is platform-dependent (32 or 64 bits); mapped to uint32")
		return "uint32", true
	default:
		return "", false
	}
}

// toSnakeCase converts CamelCase to snake_case, handling runs of uppercase
// letters (e.g. "HTTPServer" -> "http_server").
func toSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prev := runes[i-1]
				isLowerPrev := prev >= 'a' && prev <= 'z'
				isUpperNext := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if isLowerPrev || isUpperNext {
					result.WriteByte('_')
				}
			}
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
