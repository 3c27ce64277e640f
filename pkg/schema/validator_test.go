package schema

import "testing"

func mustResolve(t *testing.T, src string) *Schema {
	t.Helper()
	s := mustParse(t, src)
	if errs := Resolve(s); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	return s
}

func TestValidateNoDefaults(t *testing.T) {
	s := mustResolve(t, `
		table User {
			id: uint32;
			name: string;
		}
	`)
	errs := NewValidator(s).Validate()
	if len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestValidateStringDefault(t *testing.T) {
	s := mustResolve(t, `table S { name: string = "anon"; }`)
	if errs := NewValidator(s).Validate(); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestValidateStringDefaultMustBeString(t *testing.T) {
	s := mustResolve(t, `table S { name: string = 5; }`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for a numeric default on a string member")
	}
}

func TestValidateIntegerDefaultMustBeNumeric(t *testing.T) {
	s := mustResolve(t, `table S { n: uint32 = "nope"; }`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for a string default on an integer member")
	}
}

func TestValidateIntegerDefaultOverflow(t *testing.T) {
	s := mustResolve(t, `table S { n: uint8 = 256; }`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for a uint8 default of 256")
	}
}

func TestValidateSignedIntegerDefaultRange(t *testing.T) {
	s := mustResolve(t, `table S { n: int8 = -129; }`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for an int8 default of -129")
	}
}

func TestValidateSignedIntegerDefaultNegativeOK(t *testing.T) {
	s := mustResolve(t, `table S { n: int8 = -1; }`)
	if errs := NewValidator(s).Validate(); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestValidateBooleanDefault(t *testing.T) {
	s := mustResolve(t, `
		table S {
			a: bool = 0;
			b: bool = 1;
		}
	`)
	if errs := NewValidator(s).Validate(); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestValidateBooleanDefaultMustBeZeroOrOne(t *testing.T) {
	s := mustResolve(t, `table S { a: bool = 2; }`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for a boolean default of 2")
	}
}

func TestValidateEnumDefaultInValueSet(t *testing.T) {
	s := mustResolve(t, `
		enum Color : uint8 { Red, Green, Blue }
		table Pixel {
			color: Color = 1;
		}
	`)
	if errs := NewValidator(s).Validate(); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestValidateEnumDefaultNotInValueSet(t *testing.T) {
	s := mustResolve(t, `
		enum Color : uint8 { Red, Green, Blue }
		table Pixel {
			color: Color = 99;
		}
	`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for an enum default outside the value set")
	}
}

func TestValidateEnumDefaultMustBeNumeric(t *testing.T) {
	s := mustResolve(t, `
		enum Color : uint8 { Red, Green }
		table Pixel {
			color: Color = "Red";
		}
	`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for a string default on an enum member")
	}
}

func TestValidateAggregateMemberCannotHaveDefault(t *testing.T) {
	s := mustResolve(t, `
		table Inner { x: uint8; }
		table Outer { inner: Inner = 1; }
	`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for a default on an aggregate-typed member")
	}
}

// TestValidateScalarVectorDefaultAllowed covers the per-element default
// allowed on scalar and string vectors (spec.md:39): the literal is
// checked against the vector's element type exactly as it would be for a
// scalar member of that type.
func TestValidateScalarVectorDefaultAllowed(t *testing.T) {
	s := mustResolve(t, `table S { flags: [bool] = 1; }`)
	if errs := NewValidator(s).Validate(); len(errs) != 0 {
		t.Errorf("unexpected validation errors for a boolean vector default: %v", errs)
	}
}

func TestValidateStringVectorDefaultAllowed(t *testing.T) {
	s := mustResolve(t, `table S { names: [string] = "anon"; }`)
	if errs := NewValidator(s).Validate(); len(errs) != 0 {
		t.Errorf("unexpected validation errors for a string vector default: %v", errs)
	}
}

func TestValidateScalarVectorDefaultStillChecksElementType(t *testing.T) {
	s := mustResolve(t, `table S { flags: [bool] = 2; }`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for a boolean vector default of 2")
	}
}

func TestValidateAggregateVectorCannotHaveDefault(t *testing.T) {
	s := mustResolve(t, `
		table Inner { x: uint8; }
		table Outer { inners: [Inner] = 1; }
	`)
	errs := NewValidator(s).Validate()
	if len(errs) == 0 {
		t.Fatal("expected an error for a default on an aggregate-typed vector member")
	}
}
