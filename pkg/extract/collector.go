package extract

import (
	"go/ast"
	"go/types"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Config configures the type collector.
type Config struct {
	IncludePrivate  bool     // Include unexported types
	IncludePatterns []string // Type name patterns to include (glob)
	ExcludePatterns []string // Type name patterns to exclude (glob)
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{IncludePrivate: false}
}

// TypeCollector collects candidate struct/table and enum information from
// Go packages.
type TypeCollector struct {
	packages []*packages.Package
	config   *Config
	types    map[string]*TypeInfo
	enums    map[string]*EnumInfo
}

// NewTypeCollector creates a new type collector.
func NewTypeCollector(pkgs []*packages.Package, cfg *Config) *TypeCollector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &TypeCollector{
		packages: pkgs,
		config:   cfg,
		types:    make(map[string]*TypeInfo),
		enums:    make(map[string]*EnumInfo),
	}
}

// Collect analyzes all packages and collects type information.
func (c *TypeCollector) Collect() error {
	for _, pkg := range c.packages {
		c.collectPackage(pkg)
	}
	return nil
}

// Types returns collected struct/table candidates.
func (c *TypeCollector) Types() map[string]*TypeInfo {
	return c.types
}

// Enums returns collected enum candidates.
func (c *TypeCollector) Enums() map[string]*EnumInfo {
	return c.enums
}

func (c *TypeCollector) collectPackage(pkg *packages.Package) {
	typeComments := make(map[string]string)
	fieldComments := make(map[string]map[string]string)
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := extractDoc(genDecl.Doc)
				if doc == "" {
					doc = extractDoc(typeSpec.Doc)
				}
				typeComments[typeSpec.Name.Name] = strings.TrimSpace(doc)

				if structType, ok := typeSpec.Type.(*ast.StructType); ok {
					fc := make(map[string]string)
					for _, field := range structType.Fields.List {
						d := strings.TrimSpace(extractDoc(field.Doc))
						for _, name := range field.Names {
							fc[name.Name] = d
						}
					}
					fieldComments[typeSpec.Name.Name] = fc
				}
			}
		}
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if obj == nil {
			continue
		}
		if !c.config.IncludePrivate && !obj.Exported() {
			continue
		}
		if !c.matchesPatterns(name) {
			continue
		}
		if typeName, ok := obj.(*types.TypeName); ok {
			c.collectType(typeName, pkg.PkgPath, typeComments[name], fieldComments[name])
		}
	}

	c.collectEnumValues(pkg)
}

func (c *TypeCollector) collectType(typeName *types.TypeName, pkgPath string, doc string, fieldDocs map[string]string) {
	underlying := typeName.Type().Underlying()
	qualifiedName := pkgPath + "." + typeName.Name()

	switch t := underlying.(type) {
	case *types.Struct:
		info := &TypeInfo{
			Name:       typeName.Name(),
			Package:    typeName.Pkg().Name(),
			PkgPath:    pkgPath,
			Doc:        doc,
			GoType:     typeName.Type(),
			IsExported: typeName.Exported(),
			AsStruct:   hasStructAnnotation(doc),
		}

		for i := 0; i < t.NumFields(); i++ {
			field := t.Field(i)
			if !c.config.IncludePrivate && !field.Exported() {
				continue
			}

			tag := c.parseTag(t.Tag(i))
			if tag.Skip {
				continue
			}

			vector, hasSize, size, elem := classifyGoType(field.Type())

			fieldInfo := &FieldInfo{
				Name:          field.Name(),
				FieldID:       tag.FieldID,
				HasFieldID:    tag.HasFieldID,
				GoType:        elem,
				Doc:           fieldDocs[field.Name()],
				Vector:        vector,
				HasVectorSize: hasSize,
				VectorSize:    size,
			}
			info.Fields = append(info.Fields, fieldInfo)
		}

		c.types[qualifiedName] = info

	case *types.Basic:
		if t.Info()&types.IsInteger != 0 {
			width, signed := basicIntWidth(t)
			info := &EnumInfo{
				Name:      typeName.Name(),
				Package:   typeName.Pkg().Name(),
				PkgPath:   pkgPath,
				Doc:       doc,
				ByteWidth: width,
				Signed:    signed,
			}
			c.enums[qualifiedName] = info
		}
	}
}

// classifyGoType unwraps a slice/array wrapper from t, reporting whether it
// is a vector, whether it carries a fixed size, and the element type.
func classifyGoType(t types.Type) (vector, hasSize bool, size int, elem types.Type) {
	switch typ := t.(type) {
	case *types.Slice:
		return true, false, 0, typ.Elem()
	case *types.Array:
		return true, true, int(typ.Len()), typ.Elem()
	default:
		return false, false, 0, t
	}
}

func basicIntWidth(t *types.Basic) (width int, signed bool) {
	switch t.Kind() {
	case types.Int8:
		return 1, true
	case types.Uint8:
		return 1, false
	case types.Int16:
		return 2, true
	case types.Uint16:
		return 2, false
	case types.Int32, types.Int:
		return 4, true
	case types.Uint32, types.Uint:
		return 4, false
	case types.Int64:
		return 8, true
	case types.Uint64:
		return 8, false
	default:
		return 2, false
	}
}

func (c *TypeCollector) collectEnumValues(pkg *packages.Package) {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if obj == nil {
			continue
		}
		cnst, ok := obj.(*types.Const)
		if !ok {
			continue
		}
		named, ok := cnst.Type().(*types.Named)
		if !ok || named.Obj().Pkg() == nil {
			continue
		}
		qualifiedName := named.Obj().Pkg().Path() + "." + named.Obj().Name()
		enumInfo, exists := c.enums[qualifiedName]
		if !exists {
			continue
		}
		val, ok := constantToInt64(cnst)
		if !ok {
			continue
		}
		enumInfo.Values = append(enumInfo.Values, &EnumValueInfo{
			Name:  cnst.Name(),
			Value: val,
		})
	}
}

func constantToInt64(cnst *types.Const) (int64, bool) {
	if cnst.Val() == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(cnst.Val().String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *TypeCollector) parseTag(tag string) *StructTag {
	st := &StructTag{}
	structTag := reflect.StructTag(tag)
	seriagenTag := structTag.Get("seriagen")

	if seriagenTag == "-" {
		st.Skip = true
		return st
	}
	if seriagenTag == "" {
		return st
	}

	parts := strings.Split(seriagenTag, ",")
	if num, err := strconv.Atoi(parts[0]); err == nil && num >= 0 {
		st.FieldID = num
		st.HasFieldID = true
	}
	return st
}

func (c *TypeCollector) matchesPatterns(name string) bool {
	if len(c.config.IncludePatterns) == 0 {
		for _, pattern := range c.config.ExcludePatterns {
			if matchGlob(pattern, name) {
				return false
			}
		}
		return true
	}

	matched := false
	for _, pattern := range c.config.IncludePatterns {
		if matchGlob(pattern, name) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, pattern := range c.config.ExcludePatterns {
		if matchGlob(pattern, name) {
			return false
		}
	}
	return true
}

func matchGlob(pattern, name string) bool {
	regexPattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, `.*`) + "$"
	matched, _ := regexp.MatchString(regexPattern, name)
	return matched
}

// hasStructAnnotation reports whether doc carries a "@seriagen:struct"
// marker, which selects the struct (not table) declaration kind. The two
// have identical wire behavior; the distinction is preserved for source
// fidelity only.
func hasStructAnnotation(doc string) bool {
	return regexp.MustCompile(`@seriagen:struct\b`).MatchString(doc)
}
