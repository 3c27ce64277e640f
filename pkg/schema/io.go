package schema

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loader loads, parses, resolves, and validates a single schema file.
// SeriaLib schemas do not import one another, so unlike older generations of
// schema compilers in this family there is no search path or import cache
// here — just the one file.
type Loader struct{}

// NewLoader creates a new schema loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile reads, parses, resolves, and validates the schema at path. The
// returned errors slice mixes *ParseError, *ResolveError, and
// ValidationError values; any non-empty result means code generation must
// not proceed.
func (l *Loader) LoadFile(path string) (*Schema, []error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to resolve path: %w", err)}
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read file %s: %w", absPath, err)}
	}

	return LoadSchema(absPath, string(content))
}

// LoadSchema runs the full parse/resolve/validate pipeline over in-memory
// schema source, as if it had been read from filename.
func LoadSchema(filename, content string) (*Schema, []error) {
	s, parseErrors := ParseFile(filename, content)
	if len(parseErrors) > 0 {
		errs := make([]error, len(parseErrors))
		for i, e := range parseErrors {
			errs[i] = e
		}
		return s, errs
	}

	var errs []error
	for _, e := range Resolve(s) {
		errs = append(errs, e)
	}
	if len(errs) > 0 {
		return s, errs
	}

	for _, e := range NewValidator(s).Validate() {
		if e.Severity == SeverityError {
			errs = append(errs, e)
		}
	}
	return s, errs
}

// LoadAndValidate is a convenience function combining NewLoader and LoadFile.
func LoadAndValidate(path string) (*Schema, []error) {
	return NewLoader().LoadFile(path)
}

// Writer formats a Schema back to SeriaLib schema source text.
type Writer struct {
	indent string
}

// NewWriter creates a new schema writer using two-space indentation.
func NewWriter() *Writer {
	return &Writer{indent: "  "}
}

// SetIndent sets the indentation string.
func (w *Writer) SetIndent(indent string) {
	w.indent = indent
}

// WriteSchema writes every declaration in s, in source order, to out.
func (w *Writer) WriteSchema(out io.Writer, s *Schema) error {
	for i, name := range s.Order {
		decl, _ := s.Lookup(name)
		switch d := decl.(type) {
		case *EnumDeclaration:
			w.writeEnum(out, d)
		case *AggregateDeclaration:
			w.writeAggregate(out, d)
		}
		if i < len(s.Order)-1 {
			fmt.Fprintln(out)
		}
	}
	return nil
}

func (w *Writer) writeEnum(out io.Writer, e *EnumDeclaration) {
	fmt.Fprintf(out, "enum %s : %s {\n", e.Name, e.SizeName)
	for i, m := range e.Members {
		sep := ","
		if i == len(e.Members)-1 {
			sep = ""
		}
		if m.HasExplicitValue {
			fmt.Fprintf(out, "%s%s = %d%s\n", w.indent, m.Name, m.Value, sep)
		} else {
			fmt.Fprintf(out, "%s%s%s\n", w.indent, m.Name, sep)
		}
	}
	fmt.Fprintln(out, "}")
}

func (w *Writer) writeAggregate(out io.Writer, a *AggregateDeclaration) {
	fmt.Fprintf(out, "%s %s {\n", a.Kind, a.Name)
	for _, m := range a.Members {
		fmt.Fprintf(out, "%s%s\n", w.indent, w.formatMember(m))
	}
	fmt.Fprintln(out, "}")
}

func (w *Writer) formatMember(m *Member) string {
	typeStr := m.TypeName
	switch {
	case m.Vector && m.HasVectorSize:
		typeStr = fmt.Sprintf("[%s:%d]", m.TypeName, m.VectorSize)
	case m.Vector:
		typeStr = fmt.Sprintf("[%s]", m.TypeName)
	}

	defaultStr := ""
	if m.Default != nil {
		if m.Default.IsString {
			defaultStr = fmt.Sprintf(" = %q", m.Default.Str)
		} else {
			defaultStr = fmt.Sprintf(" = %d", m.Default.Int)
		}
	}

	return fmt.Sprintf("%s: %s%s;", m.Name, typeStr, defaultStr)
}

// FormatSchema returns a formatted string representation of a schema.
func FormatSchema(s *Schema) string {
	var sb strings.Builder
	_ = NewWriter().WriteSchema(&sb, s)
	return sb.String()
}

// WriteToFile writes a formatted schema to a file.
func WriteToFile(path string, s *Schema) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return NewWriter().WriteSchema(f, s)
}
