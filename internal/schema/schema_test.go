package schema

import (
	"testing"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/parser"
	"github.com/DAIOS-AI/mindscript/internal/printer"
	"github.com/gkampitakis/go-snaps/snaps"
)

// parseMType parses a standalone type expression into an *object.MType
// bound against a fresh environment, the shape both renderers consume.
func parseMType(t *testing.T, src string) *object.MType {
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
	return object.NewType(def.Type, object.NewEnvironment())
}

func TestJSONSchema_Primitive(t *testing.T) {
	out, err := New().PrintSchema(parseMType(t, "Int"))
	if err != nil {
		t.Fatalf("PrintSchema() returned unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestJSONSchema_Map(t *testing.T) {
	out, err := New().PrintSchema(parseMType(t, `{name!: Str, age?: Int}`))
	if err != nil {
		t.Fatalf("PrintSchema() returned unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestJSONSchema_OptionalWrapsTypeInNull(t *testing.T) {
	out, err := New().PrintSchema(parseMType(t, "Str?"))
	if err != nil {
		t.Fatalf("PrintSchema() returned unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestJSONSchema_ArrayOfMaps(t *testing.T) {
	out, err := New().PrintSchema(parseMType(t, `[{x!: Int}]`))
	if err != nil {
		t.Fatalf("PrintSchema() returned unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestJSONSchema_FunctionTypeIsRejected(t *testing.T) {
	if _, err := New().PrintSchema(parseMType(t, "(Int) -> Str")); err == nil {
		t.Error("expected an error for a function type, JSON schema has no function representation")
	}
}

func TestJSONSchema_NamedTypeResolvesThroughEnvironment(t *testing.T) {
	env := object.NewEnvironment()
	env.Define("Age", object.NewType(parseMType(t, "Int").Definition, env))
	named := object.NewType(parseMType(t, "Age").Definition, env)
	dict, err := New().DictSchema(named)
	if err != nil {
		t.Fatalf("DictSchema() returned unexpected error for a named type: %v", err)
	}
	m, ok := dict.(map[string]any)
	if !ok || m["type"] != "integer" {
		t.Errorf("expected the named type to resolve to Int's schema, got %v", dict)
	}
}

func TestBNF_Primitive(t *testing.T) {
	out, err := NewBNFFormatter(printer.New()).Format(parseMType(t, "Int"))
	if err != nil {
		t.Fatalf("Format() returned unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestBNF_OptionalIsNullOrOperand(t *testing.T) {
	out, err := NewBNFFormatter(printer.New()).Format(parseMType(t, "Int?"))
	if err != nil {
		t.Fatalf("Format() returned unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestBNF_Enum(t *testing.T) {
	out, err := NewBNFFormatter(printer.New()).Format(parseMType(t, `Enum["a", "b"]`))
	if err != nil {
		t.Fatalf("Format() returned unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestBNF_FunctionTypeIsRejected(t *testing.T) {
	if _, err := NewBNFFormatter(printer.New()).Format(parseMType(t, "(Int) -> Str")); err == nil {
		t.Error("expected an error for a function type, BNF has no function representation")
	}
}
