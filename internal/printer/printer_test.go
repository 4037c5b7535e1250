package printer

import (
	"testing"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/parser"
)

func parseOne(t *testing.T, code string) ast.Expr {
	t.Helper()
	p := parser.New(lexer.New(), false)
	prog, err := p.Parse(code, "t")
	if err != nil {
		t.Fatalf("parsing %q: %v", code, err)
	}
	return prog.Statements[0]
}

func TestPrintSource_BinaryRoundTrips(t *testing.T) {
	got := New().PrintSource(parseOne(t, "1 + 2 * 3"))
	want := "1 + 2 * 3"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrintSource_LetAssign(t *testing.T) {
	got := New().PrintSource(parseOne(t, "let x = 5"))
	want := "let x = 5"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrintSource_MemberAndIndexChain(t *testing.T) {
	got := New().PrintSource(parseOne(t, "a.b[0]"))
	want := "a.b[0]"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrintValue_Primitives(t *testing.T) {
	p := New()
	if got := p.PrintValue(object.NewValue(int64(42))); got != "42" {
		t.Errorf("expected 42, got %q", got)
	}
	if got := p.PrintValue(object.NewValue("hi")); got != `"hi"` {
		t.Errorf("expected a quoted string, got %q", got)
	}
	if got := p.PrintValue(object.NewValue(nil)); got != "null" {
		t.Errorf("expected null, got %q", got)
	}
	if got := p.PrintValue(object.NewValue(true)); got != "true" {
		t.Errorf("expected true, got %q", got)
	}
}

func TestPrintValue_ShortArrayCollapsesToOneLine(t *testing.T) {
	arr := object.NewValue([]object.MObject{object.NewValue(int64(1)), object.NewValue(int64(2))})
	got := New().PrintValue(arr)
	want := "[1, 2]"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrintValue_SingleKeyMapCollapsesToOneLine(t *testing.T) {
	m := object.NewValue(map[string]object.MObject{"x": object.NewValue(int64(1))})
	got := New().PrintValue(m)
	want := `{"x": 1}`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrintValue_MaxDepthTruncatesNestedArrays(t *testing.T) {
	p := New()
	var nested object.MObject = object.NewValue(int64(1))
	for i := 0; i < maxDepth+2; i++ {
		nested = object.NewValue([]object.MObject{nested})
	}
	got := p.PrintValue(nested)
	if !contains(got, "...") {
		t.Errorf("expected a truncated representation past max depth, got %q", got)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
