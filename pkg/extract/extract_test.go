package extract

import (
	"go/types"
	"strings"
	"testing"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ID", "id"},
		{"UserName", "user_name"},
		{"FirstName", "first_name"},
		{"HTTPRequest", "http_request"},
		{"HTTPServer", "http_server"},
		{"XMLParser", "xml_parser"},
		{"simple", "simple"},
		{"userID", "user_id"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := toSnakeCase(tt.input)
			if result != tt.expected {
				t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern  string
		name     string
		expected bool
	}{
		{"User*", "User", true},
		{"User*", "UserInfo", true},
		{"User*", "Admin", false},
		{"*Info", "UserInfo", true},
		{"*Info", "User", false},
		{"*", "Anything", true},
		{"User", "User", true},
		{"User", "Admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.name, func(t *testing.T) {
			result := matchGlob(tt.pattern, tt.name)
			if result != tt.expected {
				t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, result, tt.expected)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.IncludePrivate {
		t.Error("IncludePrivate should be false by default")
	}
	if len(cfg.IncludePatterns) != 0 {
		t.Error("IncludePatterns should be empty by default")
	}
	if len(cfg.ExcludePatterns) != 0 {
		t.Error("ExcludePatterns should be empty by default")
	}
}

func TestSchemaBuilderBuildEmpty(t *testing.T) {
	builder := NewSchemaBuilder(map[string]*TypeInfo{}, map[string]*EnumInfo{})
	s, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s == nil {
		t.Fatal("Build() returned nil schema")
	}
	if len(s.Order) != 0 {
		t.Errorf("expected empty schema, got %d declarations", len(s.Order))
	}
}

// TestExtractToString exercises extraction against testdata/models.go, which
// declares a Status enum, a Priority enum, a User table, and an Address
// struct.
func TestExtractToString(t *testing.T) {
	result, warnings, err := ExtractToString([]string{"github.com/blockberries/serialib/pkg/extract/testdata"}, DefaultConfig())
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if !strings.Contains(result, "table User {") {
		t.Errorf("result should contain the User table, got: %s", result)
	}
	if !strings.Contains(result, "struct Address {") {
		t.Errorf("result should contain the Address struct, got: %s", result)
	}
	if !strings.Contains(result, "enum Status : uint16 {") {
		t.Errorf("result should contain the Status enum, got: %s", result)
	}
	if !strings.Contains(result, "enum Priority : uint8 {") {
		t.Errorf("result should contain the Priority enum, got: %s", result)
	}
	if !strings.Contains(result, "address: Address;") {
		t.Errorf("result should contain the nested address member, got: %s", result)
	}
	if !strings.Contains(result, "tags: [string];") {
		t.Errorf("result should contain the unbounded tags vector, got: %s", result)
	}
	if !strings.Contains(result, "scores: [uint8:3];") {
		t.Errorf("result should contain the fixed scores vector, got: %s", result)
	}
	if strings.Contains(result, "internal") {
		t.Error("result should NOT contain the skipped 'internal' field")
	}
	if strings.Contains(result, "privateType") {
		t.Error("result should NOT contain 'privateType' (unexported)")
	}
}

func TestExtractWithPrivate(t *testing.T) {
	cfg := &Config{IncludePrivate: true}
	result, _, err := ExtractToString([]string{"github.com/blockberries/serialib/pkg/extract/testdata"}, cfg)
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}
	if !strings.Contains(result, "privateType") {
		t.Error("result should contain 'privateType' when IncludePrivate is true")
	}
}

func TestExtractWithPatterns(t *testing.T) {
	cfg := &Config{IncludePatterns: []string{"User*"}}
	result, _, err := ExtractToString([]string{"github.com/blockberries/serialib/pkg/extract/testdata"}, cfg)
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}
	if !strings.Contains(result, "table User {") {
		t.Error("result should contain 'User'")
	}
	if strings.Contains(result, "struct Address {") {
		t.Error("result should NOT contain 'Address' (not matching User* pattern)")
	}
}

func TestExtractWithExclude(t *testing.T) {
	cfg := &Config{ExcludePatterns: []string{"Address"}}
	result, _, err := ExtractToString([]string{"github.com/blockberries/serialib/pkg/extract/testdata"}, cfg)
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}
	if strings.Contains(result, "struct Address {") {
		t.Error("result should NOT contain 'Address' (excluded by pattern)")
	}
	if !strings.Contains(result, "table User {") {
		t.Error("result should contain 'User'")
	}
}

func TestExtractor(t *testing.T) {
	extractor := NewExtractor()
	cfg := &ExtractorConfig{
		Config:   DefaultConfig(),
		Patterns: []string{"github.com/blockberries/serialib/pkg/extract/testdata"},
	}

	s, _, err := extractor.Extract(cfg)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if s == nil {
		t.Fatal("Extract() returned nil schema")
	}
	if _, ok := s.Lookup("User"); !ok {
		t.Error("expected schema to contain User")
	}
}

func TestHasStructAnnotation(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{"@seriagen:struct", true},
		{"Some comment\n@seriagen:struct\nmore", true},
		{"no annotation here", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := hasStructAnnotation(tt.doc); got != tt.want {
			t.Errorf("hasStructAnnotation(%q) = %v, want %v", tt.doc, got, tt.want)
		}
	}
}

func TestUintAndIntBasedEnumDetection(t *testing.T) {
	result, _, err := ExtractToString([]string{"github.com/blockberries/serialib/pkg/extract/testdata"}, DefaultConfig())
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}

	if !strings.Contains(result, "StatusUnknown") || !strings.Contains(result, "StatusActive") {
		t.Error("result should contain Status enum values")
	}
	if !strings.Contains(result, "PriorityLow") || !strings.Contains(result, "PriorityHigh") {
		t.Error("result should contain Priority enum values")
	}
}

func TestFieldIDCollisionWarning(t *testing.T) {
boolType := types.Typ[types.Bool]
	infos := map[string]*TypeInfo{
		"pkg.Collision": {
			Name: "Collision",
			Fields: []*FieldInfo{
				{Name: "First", FieldID: 1, HasFieldID: true, GoType: boolType},
				{Name: "Second", FieldID: 2, HasFieldID: true, GoType: boolType},
				{Name: "Third", FieldID: 1, HasFieldID: true, GoType: boolType},
			},
		},
	}

	builder := NewSchemaBuilder(infos, nil)
	if _, err := builder.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	warnings := builder.Warnings()
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "field_id collision") && strings.Contains(w, "First") && strings.Contains(w, "Third") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected a field_id collision warning between First and Third, got: %v", warnings)
	}
}

func TestPlatformDependentTypeWarnings(t *testing.T) {
	builder := NewSchemaBuilder(map[string]*TypeInfo{}, map[string]*EnumInfo{})
	if len(builder.Warnings()) != 0 {
		t.Errorf("expected no warnings initially, got %d", len(builder.Warnings()))
	}
	if _, err := builder.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(builder.Warnings()) != 0 {
		t.Errorf("expected no warnings for an empty schema, got %d", len(builder.Warnings()))
	}

	platform := NewSchemaBuilder(map[string]*TypeInfo{
		"pkg.P": {Name: "P", Fields: []*FieldInfo{{Name: "N", GoType: types.Typ[types.Int]}}},
	}, map[string]*EnumInfo{})
	if _, err := platform.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	found := false
	for _, w := range platform.Warnings() {
		if strings.Contains(w, "platform-dependent") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a platform-dependent warning for an int field, got %v", platform.Warnings())
	}
}
