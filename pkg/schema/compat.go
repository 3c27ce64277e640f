package schema

import "fmt"

// BreakingChangeType indicates the kind of breaking change detected between
// two revisions of the same schema.
type BreakingChangeType int

const (
	// AggregateRemoved indicates a struct or table present in the old schema
	// is missing from the new one.
	AggregateRemoved BreakingChangeType = iota
	// AggregateKindChanged indicates a struct became a table or vice versa.
	AggregateKindChanged
	// FieldIDRetyped indicates a field_id was reused with an incompatible type.
	FieldIDRetyped
	// FieldRemoved indicates a field_id present in the old schema is absent
	// from the new one.
	FieldRemoved
	// EnumRemoved indicates an enum present in the old schema is missing.
	EnumRemoved
	// EnumValueRetyped indicates an enum value number was reused for a
	// different member name.
	EnumValueRetyped
)

// String returns a human-readable description of the breaking change type.
func (t BreakingChangeType) String() string {
	switch t {
	case AggregateRemoved:
		return "struct/table removed"
	case AggregateKindChanged:
		return "struct/table kind changed"
	case FieldIDRetyped:
		return "field_id reused with incompatible type"
	case FieldRemoved:
		return "field removed"
	case EnumRemoved:
		return "enum removed"
	case EnumValueRetyped:
		return "enum value reused with a different name"
	default:
		return "unknown breaking change"
	}
}

// BreakingChange represents one incompatible change between two schema
// revisions.
type BreakingChange struct {
	Type     BreakingChangeType
	Message  string
	Location string
}

func (b BreakingChange) Error() string {
	if b.Location != "" {
		return fmt.Sprintf("%s: %s (%s)", b.Type, b.Message, b.Location)
	}
	return fmt.Sprintf("%s: %s", b.Type, b.Message)
}

// CompatibilityReport is the result of comparing two resolved schemas.
type CompatibilityReport struct {
	Breaking []BreakingChange
	Warnings []string
}

// IsCompatible reports whether newSchema is wire-compatible with oldSchema:
// every reader built against oldSchema can still decode messages written
// against newSchema, because every surviving field keeps its field_id and
// type, and new fields only ever appear at higher field_ids guarded by the
// presence bitmap.
func (r *CompatibilityReport) IsCompatible() bool {
	return len(r.Breaking) == 0
}

// CheckCompatibility compares an old and a new revision of a schema and
// reports whether the change is additive-only, per the single compatibility
// rule SeriaLib supports: new fields may be appended with higher field_ids,
// nothing else about an existing field_id may change, and no declaration
// may be removed or change kind.
func CheckCompatibility(oldSchema, newSchema *Schema) *CompatibilityReport {
	report := &CompatibilityReport{}

	for _, oldAgg := range oldSchema.Aggregates() {
		decl, ok := newSchema.Lookup(oldAgg.Name)
		if !ok {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     AggregateRemoved,
				Message:  fmt.Sprintf("%s %q was removed", oldAgg.Kind, oldAgg.Name),
				Location: oldAgg.Name,
			})
			continue
		}
		newAgg, ok := decl.(*AggregateDeclaration)
		if !ok {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     AggregateKindChanged,
				Message:  fmt.Sprintf("%q is no longer a struct/table", oldAgg.Name),
				Location: oldAgg.Name,
			})
			continue
		}
		if newAgg.Kind != oldAgg.Kind {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     AggregateKindChanged,
				Message:  fmt.Sprintf("%q changed from %s to %s", oldAgg.Name, oldAgg.Kind, newAgg.Kind),
				Location: oldAgg.Name,
			})
		}
		checkFieldCompat(oldAgg, newAgg, report)
	}

	for _, oldEnum := range oldSchema.Enums() {
		decl, ok := newSchema.Lookup(oldEnum.Name)
		if !ok {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     EnumRemoved,
				Message:  fmt.Sprintf("enum %q was removed", oldEnum.Name),
				Location: oldEnum.Name,
			})
			continue
		}
		newEnum, ok := decl.(*EnumDeclaration)
		if !ok {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     EnumRemoved,
				Message:  fmt.Sprintf("%q is no longer an enum", oldEnum.Name),
				Location: oldEnum.Name,
			})
			continue
		}
		checkEnumCompat(oldEnum, newEnum, report)
	}

	return report
}

func checkFieldCompat(oldAgg, newAgg *AggregateDeclaration, report *CompatibilityReport) {
	newByID := make(map[int]*Member, len(newAgg.Members))
	for _, m := range newAgg.Members {
		newByID[m.FieldID] = m
	}

	for _, oldM := range oldAgg.Members {
		newM, ok := newByID[oldM.FieldID]
		if !ok {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     FieldRemoved,
				Message:  fmt.Sprintf("field %q (field_id %d) was removed", oldM.Name, oldM.FieldID),
				Location: fmt.Sprintf("%s.%s", oldAgg.Name, oldM.Name),
			})
			continue
		}
		if !typesCompatible(oldM, newM) {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     FieldIDRetyped,
				Message:  fmt.Sprintf("field_id %d changed type from %s to %s", oldM.FieldID, describeMemberType(oldM), describeMemberType(newM)),
				Location: fmt.Sprintf("%s.%s", oldAgg.Name, oldM.Name),
			})
		}
		if oldM.Name != newM.Name {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s: field_id %d renamed from %q to %q", oldAgg.Name, oldM.FieldID, oldM.Name, newM.Name))
		}
	}
}

func typesCompatible(oldM, newM *Member) bool {
	if oldM.Vector != newM.Vector || oldM.HasVectorSize != newM.HasVectorSize || oldM.VectorSize != newM.VectorSize {
		return false
	}
	return describeMemberType(oldM) == describeMemberType(newM)
}

func describeMemberType(m *Member) string {
	switch ref := m.Resolved.(type) {
	case *Primitive:
		return ref.Name
	case *EnumDeclaration:
		return "enum:" + ref.Name
	case *AggregateDeclaration:
		return ref.Kind.String() + ":" + ref.Name
	default:
		return m.TypeName
	}
}

func checkEnumCompat(oldEnum, newEnum *EnumDeclaration, report *CompatibilityReport) {
	newByValue := make(map[int64]string, len(newEnum.Members))
	for _, v := range newEnum.Members {
		newByValue[v.Value] = v.Name
	}
	for _, oldV := range oldEnum.Members {
		if newName, ok := newByValue[oldV.Value]; ok && newName != oldV.Name {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     EnumValueRetyped,
				Message:  fmt.Sprintf("value %d renamed from %q to %q", oldV.Value, oldV.Name, newName),
				Location: fmt.Sprintf("%s.%s", oldEnum.Name, oldV.Name),
			})
		}
	}
}
