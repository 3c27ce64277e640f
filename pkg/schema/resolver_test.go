package schema

import "testing"

func mustParse(t *testing.T, src string) *Schema {
	t.Helper()
	s, errs := ParseFile("test.seria", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return s
}

func TestResolveTableIDsContiguousAcrossKinds(t *testing.T) {
	s := mustParse(t, `
		struct Empty {}
		enum Color : uint8 { Red, Green }
		table Pixel {
			color: Color;
		}
	`)
	if errs := Resolve(s); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}

	empty, _ := s.Lookup("Empty")
	pixel, _ := s.Lookup("Pixel")

	if empty.(*AggregateDeclaration).TableID != 0 {
		t.Errorf("expected Empty table_id 0, got %d", empty.(*AggregateDeclaration).TableID)
	}
	if pixel.(*AggregateDeclaration).TableID != 1 {
		t.Errorf("expected Pixel table_id 1 (enum does not consume an id), got %d", pixel.(*AggregateDeclaration).TableID)
	}
}

func TestResolveFieldIDsDeclarationOrder(t *testing.T) {
	s := mustParse(t, `
		table Pixel {
			x: uint8;
			y: uint8;
			z: uint8;
		}
	`)
	if errs := Resolve(s); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	decl, _ := s.Lookup("Pixel")
	agg := decl.(*AggregateDeclaration)
	for i, m := range agg.Members {
		if m.FieldID != i {
			t.Errorf("member %s: expected field_id %d, got %d", m.Name, i, m.FieldID)
		}
	}
}

func TestResolveEnumImplicitValues(t *testing.T) {
	s := mustParse(t, `
		enum Color : uint8 {
			Red,
			Green = 5,
			Blue,
		}
	`)
	if errs := Resolve(s); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	decl, _ := s.Lookup("Color")
	e := decl.(*EnumDeclaration)
	want := map[string]int64{"Red": 0, "Green": 5, "Blue": 6}
	for _, m := range e.Members {
		if m.Value != want[m.Name] {
			t.Errorf("member %s: expected value %d, got %d", m.Name, want[m.Name], m.Value)
		}
	}
}

func TestResolveEnumDuplicateValue(t *testing.T) {
	s := mustParse(t, `
		enum Color : uint8 {
			Red = 1,
			Green = 1,
		}
	`)
	errs := Resolve(s)
	if len(errs) == 0 {
		t.Fatal("expected a resolve error for duplicate enum value")
	}
}

func TestResolveUnknownType(t *testing.T) {
	s := mustParse(t, `
		table S {
			x: NoSuchType;
		}
	`)
	errs := Resolve(s)
	if len(errs) == 0 {
		t.Fatal("expected a resolve error for unknown type")
	}
}

func TestResolveMemberTypesBuiltin(t *testing.T) {
	s := mustParse(t, `
		table S {
			x: uint32;
		}
	`)
	if errs := Resolve(s); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	decl, _ := s.Lookup("S")
	agg := decl.(*AggregateDeclaration)
	prim, ok := agg.Members[0].Resolved.(*Primitive)
	if !ok {
		t.Fatalf("expected *Primitive, got %T", agg.Members[0].Resolved)
	}
	if prim.Name != "uint32" || prim.ByteWidth != 4 || prim.Signed {
		t.Errorf("unexpected primitive: %+v", prim)
	}
}

func TestResolveMemberTypesAlias(t *testing.T) {
	s := mustParse(t, `
		table S {
			x: int;
			y: byte;
		}
	`)
	if errs := Resolve(s); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	decl, _ := s.Lookup("S")
	agg := decl.(*AggregateDeclaration)
	xPrim := agg.Members[0].Resolved.(*Primitive)
	if xPrim.Name != "int32" {
		t.Errorf("expected int alias to resolve to int32, got %s", xPrim.Name)
	}
	yPrim := agg.Members[1].Resolved.(*Primitive)
	if yPrim.Name != "uint8" {
		t.Errorf("expected byte alias to resolve to uint8, got %s", yPrim.Name)
	}
}

func TestResolveNestedAggregateReference(t *testing.T) {
	s := mustParse(t, `
		table Inner {
			value: uint32;
		}
		table Outer {
			inner: Inner;
		}
	`)
	if errs := Resolve(s); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	decl, _ := s.Lookup("Outer")
	agg := decl.(*AggregateDeclaration)
	inner, ok := agg.Members[0].Resolved.(*AggregateDeclaration)
	if !ok || inner.Name != "Inner" {
		t.Fatalf("expected resolved reference to Inner, got %+v", agg.Members[0].Resolved)
	}
}

func TestResolveStructCycleRejected(t *testing.T) {
	s := mustParse(t, `
		struct A {
			b: B;
		}
		struct B {
			a: A;
		}
	`)
	errs := Resolve(s)
	if len(errs) == 0 {
		t.Fatal("expected a cycle error between struct A and struct B")
	}
}

func TestResolveTableSelfReferenceThroughVectorAllowed(t *testing.T) {
	s := mustParse(t, `
		table Node {
			children: [Node];
		}
	`)
	errs := Resolve(s)
	if len(errs) != 0 {
		t.Fatalf("expected table self-reference through a vector to be allowed, got: %v", errs)
	}
}

// TestResolveTableCycleRejected checks that a direct, non-vector table
// cycle is rejected the same way a struct cycle is: pkg/codegen emits a
// pointer field for an aggregate-typed member regardless of struct vs.
// table, so the two kinds are not exempt from each other here.
func TestResolveTableCycleRejected(t *testing.T) {
	s := mustParse(t, `
		table A {
			b: B;
		}
		table B {
			a: A;
		}
	`)
	errs := Resolve(s)
	if len(errs) == 0 {
		t.Fatal("expected a cycle error between table A and table B")
	}
}

func TestResolveDuplicateMemberName(t *testing.T) {
	s := mustParse(t, `
		table S {
			x: uint8;
			x: uint16;
		}
	`)
	errs := Resolve(s)
	if len(errs) == 0 {
		t.Fatal("expected a resolve error for duplicate member name")
	}
}

func TestResolveFixedVectorSizeMustBePositive(t *testing.T) {
	s := mustParse(t, `
		table S {
			x: [uint8:0];
		}
	`)
	errs := Resolve(s)
	if len(errs) == 0 {
		t.Fatal("expected a resolve error for non-positive fixed vector size")
	}
}
