package interp_test

import (
	"testing"

	"github.com/DAIOS-AI/mindscript/internal/builtins"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
)

func newEngine(t *testing.T) *interp.Interpreter {
	t.Helper()
	ip := interp.New(nil, false)
	builtins.Register(ip)
	return ip
}

func evalInt(t *testing.T, ip *interp.Interpreter, code string) int64 {
	t.Helper()
	result, err := ip.Eval(code, "t")
	if err != nil {
		t.Fatalf("Eval(%q) returned unexpected error: %v", code, err)
	}
	v, ok := result.(*object.MValue)
	if !ok {
		t.Fatalf("Eval(%q): expected *object.MValue, got %T", code, result)
	}
	n, ok := v.Value.(int64)
	if !ok {
		t.Fatalf("Eval(%q): expected an int64, got %v (%T)", code, v.Value, v.Value)
	}
	return n
}

func TestEval_ArithmeticPrecedenceAndDivisionByZero(t *testing.T) {
	ip := newEngine(t)
	if got := evalInt(t, ip, "2 + 3 * 4"); got != 14 {
		t.Errorf("expected 14, got %d", got)
	}
	if _, err := ip.Eval("1 / 0", "t"); err == nil {
		t.Error("expected a division-by-zero runtime error")
	}
}

func TestEval_StringConcatenation(t *testing.T) {
	ip := newEngine(t)
	result, err := ip.Eval(`"foo" + "bar"`, "t")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	if ip.PrintValue(result) != `"foobar"` {
		t.Errorf("expected \"foobar\", got %s", ip.PrintValue(result))
	}
}

func TestEval_LetBindingPersistsAcrossStatements(t *testing.T) {
	ip := newEngine(t)
	if _, err := ip.Eval("let x = 10", "t"); err != nil {
		t.Fatalf("first statement failed: %v", err)
	}
	if got := evalInt(t, ip, "x = x + 5"); got != 15 {
		t.Errorf("expected 15, got %d", got)
	}
	if got := evalInt(t, ip, "x"); got != 15 {
		t.Errorf("expected the rebinding to persist, got %d", got)
	}
}

func TestEval_UndefinedVariableIsRuntimeError(t *testing.T) {
	ip := newEngine(t)
	_, err := ip.Eval("y", "t")
	if _, ok := err.(*interp.RuntimeError); !ok {
		t.Fatalf("expected *interp.RuntimeError, got %v (%T)", err, err)
	}
}

func TestEval_FunctionClosureCapturesDefiningScope(t *testing.T) {
	ip := newEngine(t)
	_, err := ip.Eval(`
		let make = fun(n: Int) -> (Int) -> Int do
			fun(m: Int) -> Int do return(n + m) end
		end
		let addFive = make(5)
	`, "t")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	if got := evalInt(t, ip, "addFive(10)"); got != 15 {
		t.Errorf("expected the closure to retain n=5, got %d", got)
	}
}

func TestEval_ConditionalBranches(t *testing.T) {
	ip := newEngine(t)
	if got := evalInt(t, ip, "if false then 1 elif true then 2 else 3 end"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := evalInt(t, ip, "if false then 1 else 3 end"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestEval_ForLoopOverIterAccumulatesAcrossSharedScope(t *testing.T) {
	ip := newEngine(t)
	result, err := ip.Eval(`
		let total = 0
		for x in iter([1, 2, 3]) do
			total = total + x
		end
		total
	`, "t")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	v := result.(*object.MValue)
	if v.Value.(int64) != 6 {
		t.Errorf("expected 6, got %v", v.Value)
	}
}

func TestEval_ArrayAndObjectIndexing(t *testing.T) {
	ip := newEngine(t)
	if got := evalInt(t, ip, "[10, 20, 30][1]"); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
	if got := evalInt(t, ip, "[10, 20, 30][-1]"); got != 30 {
		t.Errorf("expected negative indices to wrap from the end, got %d", got)
	}
	if got := evalInt(t, ip, `{a: 1, b: 2}.b`); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestEval_ArrayIndexOutOfRangeIsRuntimeError(t *testing.T) {
	ip := newEngine(t)
	if _, err := ip.Eval("[1, 2][5]", "t"); err == nil {
		t.Error("expected a runtime error for an out-of-range index")
	}
}

func TestEval_FunctionArgTypeMismatchIsRuntimeError(t *testing.T) {
	ip := newEngine(t)
	if _, err := ip.Eval(`
		let f = fun(n: Int) -> Int do return(n) end
		f("not an int")
	`, "t"); err == nil {
		t.Error("expected a type-mismatch runtime error")
	}
}

func TestEval_PartialApplicationReturnsAFunction(t *testing.T) {
	ip := newEngine(t)
	result, err := ip.Eval(`
		let add = fun(a: Int, b: Int) -> Int do return(a + b) end
		let addTen = add(10)
		addTen(5)
	`, "t")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	if result.(*object.MValue).Value.(int64) != 15 {
		t.Errorf("expected partial application then full call to yield 15, got %v", result)
	}
}

func TestEval_BreakExitsLoopWithValue(t *testing.T) {
	ip := newEngine(t)
	result, err := ip.Eval(`
		for x in iter([1, 2, 3, 4]) do
			if x == 3 then break(x) end
			x
		end
	`, "t")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	if result.(*object.MValue).Value.(int64) != 3 {
		t.Errorf("expected break(3) to stop the loop with value 3, got %v", result)
	}
}

func TestEval_ArrayDestructuringAssignment(t *testing.T) {
	ip := newEngine(t)
	_, err := ip.Eval("let [a, b] = [1, 2]", "t")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	if got := evalInt(t, ip, "a + b"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestEval_TypeDefinitionAndIsType(t *testing.T) {
	ip := newEngine(t)
	_, err := ip.Eval("let Age = type Int", "t")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	result, err := ip.Eval("isType(5, Age)", "t")
	if err != nil {
		t.Fatalf("Eval() returned unexpected error: %v", err)
	}
	if b, ok := result.(*object.MValue).Value.(bool); !ok || !b {
		t.Errorf("expected 5 to check against the Age alias, got %v", result)
	}
}
