package schema

import (
	"fmt"
	"sort"
)

// ResolveError is a fatal, positional resolution failure (unknown type,
// duplicate member or enum value, non-positive fixed vector size, field_id
// overflow, or an unbounded aggregate cycle).
type ResolveError struct {
	Position Position
	Message  string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Position, e.Message)
}

// maxFieldID is the largest field_id a member may be assigned (spec field_id
// is a 15-bit quantity).
const maxFieldID = 0x7FFF

// Resolve performs the two-pass binding described for SeriaLib schemas:
//
//  1. every member's TypeName is resolved to a *Primitive, *EnumDeclaration,
//     or *AggregateDeclaration, and every enum member is assigned a value
//     (explicit values kept as-is, implicit values taking the previous
//     member's value plus one, starting at 0);
//  2. table_id is assigned to every struct and table, contiguously, in
//     source declaration order (enums do not consume table_ids), and
//     field_id is assigned to every member in per-aggregate declaration
//     order starting at 0.
//
// Resolve returns every error it finds rather than stopping at the first.
func Resolve(s *Schema) []*ResolveError {
	var errs []*ResolveError

	errs = append(errs, resolveEnumValues(s)...)
	errs = append(errs, resolveEnumUnderlying(s)...)
	errs = append(errs, resolveMemberTypes(s)...)
	assignIDs(s)
	errs = append(errs, checkCycles(s)...)

	return errs
}

func resolveEnumUnderlying(s *Schema) []*ResolveError {
	var errs []*ResolveError
	for _, e := range s.Enums() {
		prim, ok := BuiltinTypes[e.SizeName]
		if !ok || !prim.IsInteger() {
			errs = append(errs, &ResolveError{
				Position: e.Position,
				Message:  fmt.Sprintf("enum %q: underlying type %q is not an integer primitive", e.Name, e.SizeName),
			})
			continue
		}
		e.Underlying = prim
	}
	return errs
}

func resolveEnumValues(s *Schema) []*ResolveError {
	var errs []*ResolveError
	for _, e := range s.Enums() {
		e.ValueSet = make(map[int64]bool)
		seen := make(map[string]bool)
		var next int64
		for _, m := range e.Members {
			if seen[m.Name] {
				errs = append(errs, &ResolveError{
					Position: m.Position,
					Message:  fmt.Sprintf("enum %q: duplicate member %q", e.Name, m.Name),
				})
				continue
			}
			seen[m.Name] = true

			if !m.HasExplicitValue {
				m.Value = next
			}
			next = m.Value + 1

			if e.ValueSet[m.Value] {
				errs = append(errs, &ResolveError{
					Position: m.Position,
					Message:  fmt.Sprintf("enum %q: duplicate value %d for member %q", e.Name, m.Value, m.Name),
				})
			}
			e.ValueSet[m.Value] = true
		}
	}
	return errs
}

func resolveMemberTypes(s *Schema) []*ResolveError {
	var errs []*ResolveError
	for _, a := range s.Aggregates() {
		if len(a.Members) > maxFieldID+1 {
			errs = append(errs, &ResolveError{
				Position: a.Position,
				Message:  fmt.Sprintf("%s %q: %d members exceed the largest field_id %d", a.Kind, a.Name, len(a.Members), maxFieldID),
			})
		}
		seen := make(map[string]bool)
		for _, m := range a.Members {
			if seen[m.Name] {
				errs = append(errs, &ResolveError{
					Position: m.Position,
					Message:  fmt.Sprintf("%s %q: duplicate member %q", a.Kind, a.Name, m.Name),
				})
				continue
			}
			seen[m.Name] = true

			ref, err := resolveTypeName(s, m.TypeName)
			if err != nil {
				errs = append(errs, &ResolveError{Position: m.Position, Message: err.Error()})
				continue
			}
			m.Resolved = ref

			if m.Vector && m.HasVectorSize && m.VectorSize <= 0 {
				errs = append(errs, &ResolveError{
					Position: m.Position,
					Message:  fmt.Sprintf("member %q: fixed vector size must be positive", m.Name),
				})
			}
		}
	}
	return errs
}

func resolveTypeName(s *Schema, name string) (TypeRef, error) {
	if prim, ok := BuiltinTypes[name]; ok {
		return prim, nil
	}
	decl, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	switch d := decl.(type) {
	case *EnumDeclaration:
		return d, nil
	case *AggregateDeclaration:
		return d, nil
	default:
		return nil, fmt.Errorf("%q does not name a type", name)
	}
}

// assignIDs assigns table_id to every struct/table in source order and
// field_id to every member of each aggregate in declaration order.
func assignIDs(s *Schema) {
	tableID := 0
	for _, a := range s.Aggregates() {
		a.TableID = tableID
		tableID++

		for i, m := range a.Members {
			m.FieldID = i
		}
	}
}

// checkCycles reports aggregate members (directly or transitively)
// containing themselves, forming a cycle with no vector indirection to
// bound it. Structs and tables are checked identically: both generate a
// pointer-typed field for an aggregate-typed member (pkg/codegen's
// elementGoType draws no distinction between them), so neither kind is
// exempt from the other.
func checkCycles(s *Schema) []*ResolveError {
	var errs []*ResolveError
	color := make(map[string]int) // 0=white 1=gray 2=black

	var visit func(a *AggregateDeclaration) bool
	visit = func(a *AggregateDeclaration) bool {
		switch color[a.Name] {
		case 1:
			return true
		case 2:
			return false
		}
		color[a.Name] = 1
		for _, m := range a.Members {
			if m.Vector {
				continue // vectors hold references/elements, never inline cycles
			}
			agg, ok := m.Resolved.(*AggregateDeclaration)
			if !ok {
				continue
			}
			if visit(agg) {
				errs = append(errs, &ResolveError{
					Position: m.Position,
					Message:  fmt.Sprintf("%s %q: member %q forms an unbounded-size cycle through %q", a.Kind, a.Name, m.Name, agg.Name),
				})
			}
		}
		color[a.Name] = 2
		return false
	}

	names := make([]string, 0, len(s.Decls))
	for _, a := range s.Aggregates() {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		if a, ok := s.Lookup(name); ok {
			if agg, ok := a.(*AggregateDeclaration); ok {
				visit(agg)
			}
		}
	}
	return errs
}
