package schema

import "fmt"

// ValidationError represents a schema validation error.
type ValidationError struct {
	Position Position
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Position, e.Severity, e.Message)
}

// Severity indicates the severity of a validation error.
type Severity int

const (
	// SeverityError is a fatal error that prevents code generation.
	SeverityError Severity = iota
	// SeverityWarning is a non-fatal issue.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Validator checks default-value rules against an already-resolved Schema.
// Resolve must be called, and must have returned no errors, before Validate.
type Validator struct {
	schema *Schema
	errors []ValidationError
}

// NewValidator creates a validator for the given resolved schema.
func NewValidator(s *Schema) *Validator {
	return &Validator{schema: s}
}

// Validate checks every aggregate member's default value against its
// resolved type, per the defaulting rules:
//
//   - a member of aggregate type (struct or table), or a vector of one,
//     may not carry a default; a vector of any other element type may,
//     and its default is checked against the element type;
//   - a boolean default must be the integer literal 0 or 1;
//   - an integer default must be a numeric literal, and must fit the
//     member's resolved width and signedness;
//   - a string default must be a string literal;
//   - an enum default must be a numeric literal naming a value present in
//     the enum's value set.
func (v *Validator) Validate() []ValidationError {
	v.errors = nil
	for _, a := range v.schema.Aggregates() {
		for _, m := range a.Members {
			v.validateMember(a, m)
		}
	}
	return v.errors
}

func (v *Validator) validateMember(a *AggregateDeclaration, m *Member) {
	if m.Default == nil {
		return
	}

	switch ref := m.Resolved.(type) {
	case *AggregateDeclaration:
		if m.Vector {
			v.errorf(m.Position, "%s %q: member %q is a vector of aggregate type %q and cannot carry a default", a.Kind, a.Name, m.Name, ref.Name)
		} else {
			v.errorf(m.Position, "%s %q: member %q is of aggregate type %q and cannot carry a default", a.Kind, a.Name, m.Name, ref.Name)
		}

	case *EnumDeclaration:
		if m.Default.IsString {
			v.errorf(m.Position, "%s %q: member %q: enum default must be a numeric literal", a.Kind, a.Name, m.Name)
			return
		}
		if ref.ValueSet != nil && !ref.ValueSet[m.Default.Int] {
			v.errorf(m.Position, "%s %q: member %q: default %d is not a member of enum %q", a.Kind, a.Name, m.Name, m.Default.Int, ref.Name)
		}

	case *Primitive:
		v.validatePrimitiveDefault(a, m, ref)

	default:
		v.errorf(m.Position, "%s %q: member %q: type was not resolved before validation", a.Kind, a.Name, m.Name)
	}
}

func (v *Validator) validatePrimitiveDefault(a *AggregateDeclaration, m *Member, prim *Primitive) {
	switch {
	case prim.IsBoolean:
		if m.Default.IsString || (m.Default.Int != 0 && m.Default.Int != 1) {
			v.errorf(m.Position, "%s %q: member %q: boolean default must be 0 or 1", a.Kind, a.Name, m.Name)
		}

	case prim.IsString:
		if !m.Default.IsString {
			v.errorf(m.Position, "%s %q: member %q: string default must be a string literal", a.Kind, a.Name, m.Name)
		}

	default: // integer
		if m.Default.IsString {
			v.errorf(m.Position, "%s %q: member %q: integer default must be a numeric literal", a.Kind, a.Name, m.Name)
			return
		}
		if !fitsWidth(m.Default.Int, prim.ByteWidth, prim.Signed) {
			v.errorf(m.Position, "%s %q: member %q: default %d does not fit %s", a.Kind, a.Name, m.Name, m.Default.Int, prim.Name)
		}
	}
}

func fitsWidth(value int64, byteWidth int, signed bool) bool {
	bits := byteWidth * 8
	if signed {
		lo := -(int64(1) << (bits - 1))
		hi := (int64(1) << (bits - 1)) - 1
		return value >= lo && value <= hi
	}
	if value < 0 {
		return false
	}
	if bits >= 64 {
		return true
	}
	hi := (uint64(1) << bits) - 1
	return uint64(value) <= hi
}

func (v *Validator) errorf(pos Position, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	})
}
