package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blockberries/serialib/pkg/schema"
)

// Extractor recovers a SeriaLib schema from Go packages.
type Extractor struct {
	loader *PackageLoader
}

// NewExtractor creates a new schema extractor.
func NewExtractor() *Extractor {
	return &Extractor{loader: NewPackageLoader()}
}

// ExtractorConfig configures the extraction process.
type ExtractorConfig struct {
	Config     *Config  // Type collector configuration
	Patterns   []string // Go package patterns to load
	OutputPath string   // Output file path (empty for stdout)
}

// Extract extracts a schema from Go packages.
func (e *Extractor) Extract(cfg *ExtractorConfig) (*schema.Schema, []string, error) {
	pkgs, err := e.loader.Load(cfg.Patterns)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, nil, fmt.Errorf("no packages matched patterns: %v", cfg.Patterns)
	}

	collectorCfg := cfg.Config
	if collectorCfg == nil {
		collectorCfg = DefaultConfig()
	}
	collector := NewTypeCollector(pkgs, collectorCfg)
	if err := collector.Collect(); err != nil {
		return nil, nil, fmt.Errorf("failed to collect types: %w", err)
	}

	builder := NewSchemaBuilder(collector.Types(), collector.Enums())
	s, err := builder.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build schema: %w", err)
	}

	return s, builder.Warnings(), nil
}

// ExtractAndWrite extracts a schema and writes its formatted schema text to
// the configured output.
func (e *Extractor) ExtractAndWrite(cfg *ExtractorConfig) ([]string, error) {
	s, warnings, err := e.Extract(cfg)
	if err != nil {
		return warnings, err
	}

	var out io.Writer = os.Stdout
	if cfg.OutputPath != "" {
		dir := filepath.Dir(cfg.OutputPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return warnings, fmt.Errorf("failed to create output directory: %w", err)
		}

		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return warnings, fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return warnings, schema.NewWriter().WriteSchema(out, s)
}

// ExtractToString is a convenience function that extracts a schema and
// returns it as formatted schema text.
func ExtractToString(patterns []string, config *Config) (string, []string, error) {
	extractor := NewExtractor()
	s, warnings, err := extractor.Extract(&ExtractorConfig{
		Config:   config,
		Patterns: patterns,
	})
	if err != nil {
		return "", warnings, err
	}
	return schema.FormatSchema(s), warnings, nil
}
