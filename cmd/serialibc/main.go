// Command serialibc is the SeriaLib schema compiler and code generator.
//
// Usage:
//
//	serialibc generate [options] <schema-file>
//	serialibc validate <schema-file>...
//	serialibc format <schema-file>...
//	serialibc extract [options] <go-package>...
//	serialibc version
//
// Generate Command:
//
//	Generate native (Go) and/or dynamic (Python) bindings from a schema file.
//
//	Options:
//	  -native-header string   Native emitter declarations output path
//	  -native-source string   Native emitter implementation output path
//	  -dynamic string         Dynamic emitter (Python) output path
//	  -package string         Override package name
//	  -prefix string          Add prefix to all type names
//	  -suffix string          Add suffix to all type names
//
// Validate Command:
//
//	Validate schema files without generating code.
//
// Format Command:
//
//	Format schema files to stdout, or rewrite them in place with -w.
//
// Extract Command:
//
//	Recover a schema from tagged Go source code.
//
//	Options:
//	  -out string       Output file (default: stdout)
//	  -private          Include unexported types
//	  -include string   Type name pattern to include (glob, can be repeated)
//	  -exclude string   Type name pattern to exclude (glob, can be repeated)
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blockberries/serialib/pkg/codegen"
	"github.com/blockberries/serialib/pkg/extract"
	"github.com/blockberries/serialib/pkg/schema"
)

// version identifies this build of serialibc. There is no VCS-embedded
// build metadata here, matching the rest of the toolchain's preference for
// simple constants over a dedicated version package.
const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate", "gen", "g":
		cmdGenerate(os.Args[2:])
	case "validate", "val", "v":
		cmdValidate(os.Args[2:])
	case "format", "fmt", "f":
		cmdFormat(os.Args[2:])
	case "extract", "schema", "s":
		cmdExtract(os.Args[2:])
	case "version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`SeriaLib Schema Compiler

Usage:
  serialibc <command> [options] <files>...

Commands:
  generate    Generate native and/or dynamic bindings from a schema file
  validate    Validate schema files
  format      Format schema files
  extract     Recover a schema from tagged Go source code
  version     Print version information
  help        Print this help message

Run 'serialibc <command> -h' for command-specific help.`)
}

// stringSliceFlag allows a flag to be repeated, accumulating each value.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)

	nativeHeader := fs.String("native-header", "", "Native emitter declarations output path")
	nativeSource := fs.String("native-source", "", "Native emitter implementation output path")
	dynamic := fs.String("dynamic", "", "Dynamic emitter (Python) output path")
	pkg := fs.String("package", "", "Override package name")
	prefix := fs.String("prefix", "", "Add prefix to all type names")
	suffix := fs.String("suffix", "", "Add suffix to all type names")

	fs.Usage = func() {
		fmt.Println(`Usage: serialibc generate [options] <schema-file>

Generate native (Go) and/or dynamic (Python) bindings from a SeriaLib
schema file. When neither -native-header nor -native-source is given, the
native source is written to <stem>.go, the schema file's name without its
extension. Python output is written only when -dynamic is given.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one schema file")
		fs.Usage()
		os.Exit(1)
	}
	schemaPath := fs.Arg(0)

	s, errs := schema.NewLoader().LoadFile(schemaPath)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}

	stem := strings.TrimSuffix(filepath.Base(schemaPath), filepath.Ext(schemaPath))

	opts := codegen.DefaultOptions()
	opts.Package = *pkg
	opts.TypePrefix = *prefix
	opts.TypeSuffix = *suffix

	goGen, _ := codegen.Get(codegen.LanguageGo)
	nativeGoGen, _ := goGen.(*codegen.GoGenerator)

	headerPath := *nativeHeader
	sourcePath := *nativeSource
	if headerPath == "" && sourcePath == "" {
		sourcePath = stem + ".go"
	}

	if headerPath != "" {
		if err := writeGenerated(headerPath, func(w *os.File) error {
			return nativeGoGen.GenerateHeader(w, s, opts)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating native header: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated: %s\n", headerPath)
	}

	if sourcePath != "" {
		if err := writeGenerated(sourcePath, func(w *os.File) error {
			return nativeGoGen.Generate(w, s, opts)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating native source: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated: %s\n", sourcePath)
	}

	dynamicPath := *dynamic
	if dynamicPath != "" {
		pyGen, ok := codegen.Get(codegen.LanguagePython)
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: dynamic emitter is not registered")
			os.Exit(1)
		}
		if err := writeGenerated(dynamicPath, func(w *os.File) error {
			return pyGen.Generate(w, s, opts)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating dynamic bindings: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated: %s\n", dynamicPath)
	}
}

func writeGenerated(path string, gen func(*os.File) error) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := gen(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Println(`Usage: serialibc validate [options] <schema-file>...

Validate SeriaLib schema files without generating code.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	loader := schema.NewLoader()
	hasErrors := false
	hasWarnings := false

	for _, inputFile := range fs.Args() {
		_, errs := loader.LoadFile(inputFile)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
				if valErr, ok := e.(schema.ValidationError); ok && valErr.Severity == schema.SeverityWarning {
					hasWarnings = true
				} else {
					hasErrors = true
				}
			}
		} else {
			fmt.Printf("Valid: %s\n", inputFile)
		}
	}

	if hasErrors {
		os.Exit(1)
	}
	if hasWarnings {
		os.Exit(2)
	}
}

func cmdFormat(args []string) {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	write := fs.Bool("w", false, "Write result to (source) file instead of stdout")

	fs.Usage = func() {
		fmt.Println(`Usage: serialibc format [options] <schema-file>...

Format SeriaLib schema files.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	hasErrors := false
	for _, inputFile := range fs.Args() {
		content, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", inputFile, err)
			hasErrors = true
			continue
		}

		s, parseErrors := schema.ParseFile(inputFile, string(content))
		if len(parseErrors) > 0 {
			for _, e := range parseErrors {
				fmt.Fprintln(os.Stderr, e)
			}
			hasErrors = true
			continue
		}

		formatted := schema.FormatSchema(s)

		if *write {
			if err := os.WriteFile(inputFile, []byte(formatted), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", inputFile, err)
				hasErrors = true
				continue
			}
			fmt.Printf("Formatted: %s\n", inputFile)
		} else {
			fmt.Print(formatted)
		}
	}

	if hasErrors {
		os.Exit(1)
	}
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	outFile := fs.String("out", "", "Output file (default: stdout)")
	private := fs.Bool("private", false, "Include unexported types")
	var includePatterns stringSliceFlag
	fs.Var(&includePatterns, "include", "Type name pattern to include (glob, can be repeated)")
	var excludePatterns stringSliceFlag
	fs.Var(&excludePatterns, "exclude", "Type name pattern to exclude (glob, can be repeated)")

	fs.Usage = func() {
		fmt.Println(`Usage: serialibc extract [options] <go-package>...

Recover a SeriaLib schema from Go source code tagged with seriagen.

Examples:
  serialibc extract ./...
  serialibc extract -out schema.seria ./pkg/models
  serialibc extract -include "User*" -exclude "*Internal" ./...

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no Go packages specified")
		fs.Usage()
		os.Exit(1)
	}

	cfg := &extract.ExtractorConfig{
		Config: &extract.Config{
			IncludePrivate:  *private,
			IncludePatterns: includePatterns,
			ExcludePatterns: excludePatterns,
		},
		Patterns:   fs.Args(),
		OutputPath: *outFile,
	}

	extractor := extract.NewExtractor()
	warnings, err := extractor.ExtractAndWrite(cfg)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *outFile != "" {
		fmt.Printf("Extracted: %s\n", *outFile)
	}
}

func cmdVersion() {
	fmt.Printf("serialibc version %s\n", version)
}
