// Package extract recovers a SeriaLib schema from Go source code: exported
// struct types become tables (or structs, when their doc comment carries an
// `@seriagen:struct` marker), with field_ids taken from `seriagen:"<field_id>"`
// tags or assigned sequentially, and named integer types become enums,
// whether or not typed constants are declared for them. It is the inverse
// of the native emitter's code generation.
package extract

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// PackageLoader loads Go packages for analysis.
type PackageLoader struct {
	config *packages.Config
}

// NewPackageLoader creates a new package loader.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{
		config: &packages.Config{
			Mode: packages.NeedName |
				packages.NeedTypes |
				packages.NeedTypesInfo |
				packages.NeedSyntax |
				packages.NeedImports |
				packages.NeedDeps,
		},
	}
}

// Load loads packages matching the given patterns.
func (l *PackageLoader) Load(patterns []string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(l.config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			errs = append(errs, err)
		}
	})

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs[0])
	}

	return pkgs, nil
}

// TypeInfo describes a Go struct collected as a candidate struct/table.
type TypeInfo struct {
	Name       string
	Package    string
	PkgPath    string
	Doc        string
	Fields     []*FieldInfo
	GoType     types.Type
	IsExported bool
	AsStruct   bool // from a "@seriagen:struct" doc annotation; default is table
}

// FieldInfo describes a single struct field collected as a candidate member.
type FieldInfo struct {
	Name          string
	FieldID       int
	HasFieldID    bool
	GoType        types.Type
	TypeName      string // SeriaLib type identifier, resolved against builtins/collected names
	Doc           string
	Vector        bool
	HasVectorSize bool
	VectorSize    int
}

// EnumInfo describes a Go named integer type collected as a candidate enum.
type EnumInfo struct {
	Name      string
	Package   string
	PkgPath   string
	Doc       string
	Values    []*EnumValueInfo
	ByteWidth int
	Signed    bool
}

// EnumValueInfo describes a single typed constant collected as a candidate
// enum member.
type EnumValueInfo struct {
	Name  string
	Value int64
	Doc   string
}

// StructTag represents a parsed `seriagen` struct tag.
type StructTag struct {
	FieldID    int
	HasFieldID bool
	Skip       bool
}

// extractDoc extracts documentation from an AST node.
func extractDoc(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return cg.Text()
}
