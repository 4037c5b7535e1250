package parser

import (
	"testing"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
)

func parse(t *testing.T, code string, interactive bool) (*ast.Program, error) {
	t.Helper()
	p := New(lexer.New(), interactive)
	return p.Parse(code, "t")
}

func TestParse_ArithmeticPrecedence(t *testing.T) {
	prog, err := parse(t, "1 + 2 * 3", false)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	bin, ok := prog.Statements[0].(*ast.Binary)
	if !ok {
		t.Fatalf("expected a *ast.Binary at the top, got %T", prog.Statements[0])
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Errorf("expected multiplication to bind tighter than addition, got rhs %T", bin.Right)
	}
}

func TestParse_LetDeclarationAndAssign(t *testing.T) {
	prog, err := parse(t, "let x = 1", false)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	assign, ok := prog.Statements[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected *ast.Assign, got %T", prog.Statements[0])
	}
	if _, ok := assign.Target.(*ast.Declaration); !ok {
		t.Errorf("expected the assignment target to be a declaration, got %T", assign.Target)
	}
}

func TestParse_FunctionLiteral(t *testing.T) {
	prog, err := parse(t, "fun(n: Int) -> Int do return(n) end", false)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	if _, ok := prog.Statements[0].(*ast.Function); !ok {
		t.Fatalf("expected *ast.Function, got %T", prog.Statements[0])
	}
}

func TestParse_OracleFromExamples(t *testing.T) {
	prog, err := parse(t, `oracle(x: Int) -> Int from [{input: 1, output: 2}]`, false)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	fn, ok := prog.Statements[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected *ast.Function, got %T", prog.Statements[0])
	}
	if !fn.Oracle {
		t.Error("expected the function to be marked as an oracle")
	}
	if fn.Examples == nil {
		t.Error("expected the 'from' examples array to be captured")
	}
}

func TestParse_CallIndexAndMemberChain(t *testing.T) {
	prog, err := parse(t, `a.b[0](1, 2)`, false)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	call, ok := prog.Statements[0].(*ast.Call)
	if !ok {
		t.Fatalf("expected the outermost node to be a call, got %T", prog.Statements[0])
	}
	idx, ok := call.Callee.(*ast.ArrayGet)
	if !ok {
		t.Fatalf("expected the callee to be an index expression, got %T", call.Callee)
	}
	if _, ok := idx.Object.(*ast.ObjectGet); !ok {
		t.Errorf("expected the indexed object to be a member access, got %T", idx.Object)
	}
}

func TestParse_ConditionalChain(t *testing.T) {
	prog, err := parse(t, "if true then 1 elif false then 2 else 3 end", false)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	if _, ok := prog.Statements[0].(*ast.Conditional); !ok {
		t.Fatalf("expected *ast.Conditional, got %T", prog.Statements[0])
	}
}

func TestParse_ForLoop(t *testing.T) {
	prog, err := parse(t, "for x in iter([1, 2]) do x end", false)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	if _, ok := prog.Statements[0].(*ast.For); !ok {
		t.Fatalf("expected *ast.For, got %T", prog.Statements[0])
	}
}

func TestParse_TypeMapWithRequiredKey(t *testing.T) {
	prog, err := parse(t, `type {name!: Str, age: Int?}`, false)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	def, ok := prog.Statements[0].(*ast.TypeDefinition)
	if !ok {
		t.Fatalf("expected *ast.TypeDefinition, got %T", prog.Statements[0])
	}
	tm, ok := def.Type.(*ast.TypeMap)
	if !ok {
		t.Fatalf("expected the type expression to be a TypeMap, got %T", def.Type)
	}
	fieldsByKey := map[string]ast.TypeMapField{}
	for _, f := range tm.Fields {
		fieldsByKey[f.Key] = f
	}
	if !fieldsByKey["name"].Required {
		t.Error("expected 'name' to be marked required")
	}
	if fieldsByKey["age"].Required {
		t.Error("expected 'age' to be optional")
	}
}

func TestParse_IncompleteBlockIsIncompleteExpressionInteractiveMode(t *testing.T) {
	_, err := parse(t, "do 1 + 1", true)
	if _, ok := err.(*IncompleteExpression); !ok {
		t.Fatalf("expected *IncompleteExpression in interactive mode, got %v (%T)", err, err)
	}
}

func TestParse_IncompleteBlockIsSyntaxErrorNonInteractive(t *testing.T) {
	_, err := parse(t, "do 1 + 1", false)
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError outside interactive mode, got %v (%T)", err, err)
	}
}
