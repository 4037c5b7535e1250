package types

import (
	"testing"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/parser"
)

// parseType parses a standalone type expression by wrapping it in a
// type definition statement and pulling the TypeDefinition's Type back
// out, since the parser has no entry point that parses a bare TypeExpr.
func parseType(t *testing.T, src string) ast.TypeExpr {
	t.Helper()
	p := parser.New(lexer.New(), false)
	prog, err := p.Parse("type "+src, "t")
	if err != nil {
		t.Fatalf("parsing type %q: %v", src, err)
	}
	def, ok := prog.Statements[0].(*ast.TypeDefinition)
	if !ok {
		t.Fatalf("expected *ast.TypeDefinition, got %T", prog.Statements[0])
	}
	return def.Type
}

func TestTypeOf_Primitives(t *testing.T) {
	c := New()
	cases := []struct {
		value any
		want  string
	}{
		{nil, "Null"},
		{true, "Bool"},
		{int64(1), "Int"},
		{float64(1.5), "Num"},
		{"hi", "Str"},
	}
	for _, tc := range cases {
		got := c.TypeOf(object.NewValue(tc.value))
		name, ok := primitiveName(got)
		if !ok || name != tc.want {
			t.Errorf("TypeOf(%v): expected %s, got %v", tc.value, tc.want, got)
		}
	}
}

func TestTypeOf_EmptyArrayIsAnyArray(t *testing.T) {
	c := New()
	got := c.TypeOf(object.NewValue([]object.MObject{}))
	arr, ok := got.(*ast.TypeArray)
	if !ok {
		t.Fatalf("expected *ast.TypeArray, got %T", got)
	}
	if name, ok := primitiveName(arr.Element); !ok || name != "Any" {
		t.Errorf("expected element type Any, got %v", arr.Element)
	}
}

func TestTypeOf_ArrayOfSameTypeWidensNoFurther(t *testing.T) {
	c := New()
	arr := []object.MObject{object.NewValue(int64(1)), object.NewValue(int64(2))}
	got := c.TypeOf(object.NewValue(arr)).(*ast.TypeArray)
	if name, ok := primitiveName(got.Element); !ok || name != "Int" {
		t.Errorf("expected element type Int, got %v", got.Element)
	}
}

func TestTypeOf_ArrayWithNullWidensToOptional(t *testing.T) {
	c := New()
	arr := []object.MObject{object.NewValue(int64(1)), object.NewValue(nil)}
	got := c.TypeOf(object.NewValue(arr)).(*ast.TypeArray)
	un, ok := got.Element.(*ast.TypeUnary)
	if !ok || un.Op != ast.TOptional {
		t.Fatalf("expected an optional element type, got %v", got.Element)
	}
	if name, ok := primitiveName(un.Operand); !ok || name != "Int" {
		t.Errorf("expected the optional's operand to be Int, got %v", un.Operand)
	}
}

func TestTypeOf_ArrayOfUnrelatedTypesWidensToAny(t *testing.T) {
	c := New()
	arr := []object.MObject{object.NewValue(int64(1)), object.NewValue("x")}
	got := c.TypeOf(object.NewValue(arr)).(*ast.TypeArray)
	if name, ok := primitiveName(got.Element); !ok || name != "Any" {
		t.Errorf("expected element type Any for unrelated elements, got %v", got.Element)
	}
}

func TestIsSubtype_PrimitiveSelf(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	intT := parseType(t, "Int")
	if !c.IsSubtype(intT, env, intT, env) {
		t.Error("expected Int <: Int")
	}
	strT := parseType(t, "Str")
	if c.IsSubtype(intT, env, strT, env) {
		t.Error("expected Int not <: Str")
	}
}

func TestIsSubtype_AnyIsTop(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	anyT := parseType(t, "Any")
	intT := parseType(t, "Int")
	if !c.IsSubtype(intT, env, anyT, env) {
		t.Error("expected Int <: Any")
	}
}

func TestIsSubtype_ArrayCovariant(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	if !c.IsSubtype(parseType(t, "[Int]"), env, parseType(t, "[Any]"), env) {
		t.Error("expected [Int] <: [Any]")
	}
	if c.IsSubtype(parseType(t, "[Any]"), env, parseType(t, "[Int]"), env) {
		t.Error("expected [Any] not <: [Int]")
	}
}

func TestIsSubtype_MapWidthAndDepth(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	narrow := parseType(t, "{name!: Str}")
	wide := parseType(t, "{name!: Str, age?: Int}")
	if !c.IsSubtype(narrow, env, wide, env) {
		t.Error("expected a map missing an optional field to satisfy the wider map")
	}
	if c.IsSubtype(wide, env, parseType(t, "{name!: Str, age!: Int}"), env) {
		t.Error("expected a map with an optional field not to satisfy a required field")
	}
}

func TestIsSubtype_OptionalAcceptsNullAndOperand(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	intT := parseType(t, "Int")
	optIntT := parseType(t, "Int?")
	nullT := parseType(t, "Null")
	if !c.IsSubtype(intT, env, optIntT, env) {
		t.Error("expected Int <: Int?")
	}
	if !c.IsSubtype(nullT, env, optIntT, env) {
		t.Error("expected Null <: Int?")
	}
}

func TestIsSubtype_FunctionContravariantParamCovariantResult(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	// (Any) -> Int should be a subtype of (Int) -> Any: wider param accepted,
	// narrower result accepted, matching contravariance/covariance.
	wide := parseType(t, "(Any) -> Int")
	narrow := parseType(t, "(Int) -> Any")
	if !c.IsSubtype(wide, env, narrow, env) {
		t.Error("expected (Any)->Int <: (Int)->Any under contravariant/covariant function subtyping")
	}
	if c.IsSubtype(narrow, env, wide, env) {
		t.Error("expected (Int)->Any not <: (Any)->Int")
	}
}

func TestCheckType_ValueDirected(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	if !c.CheckType(object.NewValue(int64(3)), parseType(t, "Int"), env) {
		t.Error("expected 3 to check against Int")
	}
	if c.CheckType(object.NewValue("x"), parseType(t, "Int"), env) {
		t.Error("expected \"x\" not to check against Int")
	}
	if !c.CheckType(object.NewValue(nil), parseType(t, "Str?"), env) {
		t.Error("expected null to check against Str?")
	}
}

func TestCheckType_EnumMembership(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	enumT := parseType(t, `Enum["a", "b"]`)
	if !c.CheckType(object.NewValue("a"), enumT, env) {
		t.Error("expected \"a\" to check against Enum[\"a\", \"b\"]")
	}
	if c.CheckType(object.NewValue("c"), enumT, env) {
		t.Error("expected \"c\" not to check against Enum[\"a\", \"b\"]")
	}
}

func TestCheckType_NamedTypeResolvesThroughEnvironment(t *testing.T) {
	c := New()
	env := object.NewEnvironment()
	env.Define("Age", object.NewType(parseType(t, "Int"), env))
	named := parseType(t, "Age")
	if !c.CheckType(object.NewValue(int64(30)), named, env) {
		t.Error("expected a named type alias to resolve and check structurally")
	}
}

func TestCompare_DeepStructuralEquality(t *testing.T) {
	c := New()
	a := object.NewValue(map[string]object.MObject{
		"x": object.NewValue(int64(1)),
		"y": object.NewValue([]object.MObject{object.NewValue("a")}),
	})
	b := object.NewValue(map[string]object.MObject{
		"x": object.NewValue(int64(1)),
		"y": object.NewValue([]object.MObject{object.NewValue("a")}),
	})
	if !c.Compare(a, b) {
		t.Error("expected deep structural equality for identical nested maps")
	}
	if !c.Compare(object.NewValue(int64(1)), object.NewValue(float64(1))) {
		t.Error("expected int64(1) == float64(1) under numeric comparison")
	}
}
