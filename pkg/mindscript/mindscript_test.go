package mindscript

import (
	"testing"

	"github.com/DAIOS-AI/mindscript/internal/object"
)

func TestEval_Arithmetic(t *testing.T) {
	engine := New()
	result, err := engine.Eval("1 + 2 * 3", "<test>")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	v, ok := result.(*object.MValue)
	if !ok {
		t.Fatalf("expected *object.MValue, got %T", result)
	}
	n, ok := v.Value.(int64)
	if !ok || n != 7 {
		t.Errorf("expected 7, got %v", v.Value)
	}
}

func TestEval_LetAndPrint(t *testing.T) {
	engine := New()
	result, err := engine.Eval(`
		let x = "hello"
		str(x)
	`, "<test>")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	if engine.PrintValue(result) != `"hello"` {
		t.Errorf("expected a quoted string, got %s", engine.PrintValue(result))
	}
}

func TestEval_SyntaxErrorReported(t *testing.T) {
	engine := New()
	if _, err := engine.Eval("let = ", "<test>"); err == nil {
		t.Fatal("expected a syntax error, got nil")
	}
}

func TestEval_IncrementalBuffers(t *testing.T) {
	engine := New()
	if _, err := engine.Eval("let x = 10", "<repl>"); err != nil {
		t.Fatalf("first statement failed: %v", err)
	}
	result, err := engine.Eval("x + 1", "<repl>")
	if err != nil {
		t.Fatalf("second statement failed: %v", err)
	}
	v := result.(*object.MValue)
	if v.Value.(int64) != 11 {
		t.Errorf("expected 11, got %v", v.Value)
	}
}
