// Package interp implements MindScript's tree-walking evaluator: the
// Interpreter type that walks an *ast.Program and produces MObject
// values, mirroring
// _examples/original_source/src/mindscript/runtime.py's Interpreter and
// Environment classes.
//
// Interpreter implements object.Runtime so function values (user,
// oracle, native) can type-check and print without internal/object
// needing to import this package.
package interp

import (
	"fmt"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/oracle"
	"github.com/DAIOS-AI/mindscript/internal/parser"
	"github.com/DAIOS-AI/mindscript/internal/printer"
	"github.com/DAIOS-AI/mindscript/internal/types"
)

// Interpreter is MindScript's evaluator. Its Env field is the current
// top-level environment; it changes transiently while walking blocks,
// function bodies and loops, and each evaluated function or type literal
// leaves a fresh child frame behind as the new current environment.
type Interpreter struct {
	Env *object.Environment

	checker *types.Checker
	printer *printer.Printer
	parser  *parser.Parser
	lex     *lexer.Lexer
	buffer  string
	backend oracle.Backend

	// pendingTask carries a doc-comment's text down into VisitFunction
	// when it wraps an oracle function literal, since oracle.New needs
	// the task description at construction time but the annotation
	// text is only available one frame up, in VisitAnnotation.
	pendingTask string
}

// New creates an Interpreter with a fresh root environment. backend is
// consulted by any oracle function literals the program defines;
// interactive enables the parser's incomplete-expression handling for a
// REPL.
func New(backend oracle.Backend, interactive bool) *Interpreter {
	lex := lexer.New()
	return &Interpreter{
		Env:     object.NewEnvironment(),
		checker: types.New(),
		printer: printer.New(),
		parser:  parser.New(lex, interactive),
		lex:     lex,
		buffer:  "<interpreter>",
		backend: backend,
	}
}

// SetBuffer points subsequent Eval calls at a new named source buffer,
// e.g. when a REPL starts reading a fresh line.
func (ip *Interpreter) SetBuffer(buffer string) {
	ip.lex.SetStream(buffer)
	ip.buffer = buffer
}

// Eval parses code (appended to buffer, or the interpreter's current
// buffer when empty) and evaluates it in the current environment
// (spec §4.3's top-level evaluation rule, mirroring runtime.py's
// eval()). A break/continue/return that escapes every enclosing
// loop/function is reported as a runtime error rather than panicking.
func (ip *Interpreter) Eval(code, buffer string) (object.MObject, error) {
	if buffer == "" {
		buffer = ip.buffer
	}
	ip.buffer = buffer

	tree, err := ip.parser.Parse(code, buffer)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return object.Null(), nil
	}

	val, err := ip.eval(tree)
	if err != nil {
		switch err.(type) {
		case *breakSignal, *continueSignal, *returnSignal:
			return object.Null(), ip.RuntimeError(tree, "unexpected control flow expression")
		}
		return nil, err
	}
	return val, nil
}

// EvalSource implements object.Runtime for oracle functions: it parses
// and evaluates code in the interpreter's current environment and
// buffer.
func (ip *Interpreter) EvalSource(code string) (object.MObject, error) {
	return ip.Eval(code, ip.buffer)
}

// RuntimeError implements object.Runtime.
func (ip *Interpreter) RuntimeError(pos ast.Node, msg string) error {
	return &RuntimeError{Pos: pos.Pos(), Msg: msg}
}

// CheckType implements object.Runtime.
func (ip *Interpreter) CheckType(value object.MObject, typ *object.MType) bool {
	return ip.checker.CheckType(value, typ.Definition, typ.Env)
}

// TypeOf implements object.Runtime.
func (ip *Interpreter) TypeOf(value object.MObject) *object.MType {
	return object.NewType(ip.checker.TypeOf(value), ip.Env)
}

// IsSubtype reports whether sub is a subtype of super, used by the
// `isSubtype` native (spec §4.2's subtyping rule).
func (ip *Interpreter) IsSubtype(sub, super *object.MType) bool {
	return ip.checker.IsSubtype(sub.Definition, sub.Env, super.Definition, super.Env)
}

// PrintValue implements object.Runtime.
func (ip *Interpreter) PrintValue(value object.MObject) string {
	return ip.printer.PrintValue(value)
}

// eval evaluates e in the current environment and type-asserts the
// result back to object.MObject, the only concrete type any Visit
// method ever actually returns.
func (ip *Interpreter) eval(e ast.Expr) (object.MObject, error) {
	v, err := e.Accept(ip)
	if err != nil {
		return nil, err
	}
	mo, _ := v.(object.MObject)
	return mo, nil
}

func (ip *Interpreter) VisitProgram(n *ast.Program) (any, error) {
	var value object.MObject = object.Null()
	for _, stmt := range n.Statements {
		v, err := ip.eval(stmt)
		if err != nil {
			return nil, err
		}
		value = v
	}
	return value, nil
}

func (ip *Interpreter) VisitAnnotation(n *ast.Annotation) (any, error) {
	task := ""
	if fn, ok := n.Value.(*ast.Function); ok && fn.Oracle {
		task = n.Text
	}
	previousTask := ip.pendingTask
	ip.pendingTask = task
	value, err := ip.eval(n.Value)
	ip.pendingTask = previousTask
	if err != nil {
		return nil, err
	}
	value.SetAnnotation(n.Text)
	return value, nil
}

func (ip *Interpreter) VisitDeclaration(n *ast.Declaration) (any, error) {
	ip.Env.Define(n.Name, nil)
	return object.Null(), nil
}

func (ip *Interpreter) VisitAssign(n *ast.Assign) (any, error) {
	// Capture the environment before evaluating the right-hand side: a
	// function or type literal on the rhs pushes a new child scope as
	// its own closure protection, and a plain identifier/declaration
	// target should still bind in the scope active before that happened
	// (destructure's ObjectSet/ArraySet cases deliberately do NOT use
	// this captured environment; see destructure).
	previous := ip.Env
	value, err := ip.eval(n.Value)
	if err != nil {
		return nil, err
	}
	return ip.destructure(previous, n.Target, n, value, false)
}

// destructure binds value against the pattern target, recursing through
// annotations and array/map patterns (spec §4.3's destructuring rule,
// mirroring runtime.py's destructure). The env parameter is used for
// Terminal/Declaration identifier binding; ObjectSet/ArraySet targets
// instead evaluate their object/index sub-expressions against the
// interpreter's current live environment, matching the original's
// asymmetry between a captured assignment-time environment and the
// environment active when a mutation's object/index are resolved.
func (ip *Interpreter) destructure(env *object.Environment, target ast.Expr, pos ast.Node, value object.MObject, define bool) (object.MObject, error) {
	switch t := target.(type) {
	case *ast.Terminal:
		if !t.IsIdent() {
			return nil, ip.RuntimeError(pos, "attempted to assign to a wrong target")
		}
		name := fmt.Sprintf("%v", t.Token.Literal)
		if define {
			env.Define(name, nil)
		}
		if err := env.Set(name, value); err != nil {
			return nil, ip.RuntimeError(pos, "attempted to assign to an uninitialized variable")
		}
		return value, nil
	case *ast.Annotation:
		value.SetAnnotation(t.Text)
		return ip.destructure(env, t.Value, pos, value, define)
	case *ast.Declaration:
		env.Define(t.Name, value)
		return value, nil
	case *ast.ObjectSet:
		setterVal, err := ip.eval(t.Object)
		if err != nil {
			return nil, err
		}
		mv, ok := setterVal.(*object.MValue)
		if !ok {
			return nil, ip.RuntimeError(pos, "attempted to assign to a non-object")
		}
		m, ok := mv.Value.(map[string]object.MObject)
		if !ok {
			return nil, ip.RuntimeError(pos, "attempted to assign to a non-object")
		}
		m[t.Key] = value
		return value, nil
	case *ast.ArraySet:
		setterVal, err := ip.eval(t.Object)
		if err != nil {
			return nil, err
		}
		mv, ok := setterVal.(*object.MValue)
		if !ok {
			return nil, ip.RuntimeError(pos, "attempted to assign to a member of a non-array")
		}
		arr, ok := mv.Value.([]object.MObject)
		if !ok {
			return nil, ip.RuntimeError(pos, "attempted to assign to a member of a non-array")
		}
		indexVal, err := ip.eval(t.Index)
		if err != nil {
			return nil, err
		}
		idx, ok := indexOf(indexVal)
		if !ok {
			return nil, ip.RuntimeError(pos, "attempted to use a non-integer index")
		}
		n := len(arr)
		if n == 0 || abs(idx) >= n {
			return nil, ip.RuntimeError(pos, "array index out of range")
		}
		arr[normalizeIndex(idx, n)] = value
		return value, nil
	case *ast.Array:
		mv, ok := value.(*object.MValue)
		var source []object.MObject
		if ok {
			source, ok = mv.Value.([]object.MObject)
		}
		if !ok {
			return nil, ip.RuntimeError(pos, "attempted to assign to a wrong target")
		}
		if len(t.Elements) > len(source) {
			return nil, ip.RuntimeError(pos, "the assignment expects a larger array on the right-hand side")
		}
		res := make([]object.MObject, len(t.Elements))
		for i, el := range t.Elements {
			if _, err := ip.destructure(env, el, pos, source[i], define); err != nil {
				return nil, err
			}
			res[i] = source[i]
		}
		return object.NewValue(res), nil
	case *ast.Map:
		mv, ok := value.(*object.MValue)
		var source map[string]object.MObject
		if ok {
			source, ok = mv.Value.(map[string]object.MObject)
		}
		if !ok {
			return nil, ip.RuntimeError(pos, "attempted to assign to a wrong target")
		}
		res := make(map[string]object.MObject, len(t.Entries))
		for _, entry := range t.Entries {
			sub, present := source[entry.Key]
			if !present {
				return nil, ip.RuntimeError(pos, fmt.Sprintf("attempted to extract the unknown key %q from the right-hand side", entry.Key))
			}
			if _, err := ip.destructure(env, entry.Value, pos, sub, define); err != nil {
				return nil, err
			}
			res[entry.Key] = sub
		}
		return object.NewValue(res), nil
	}
	return nil, ip.RuntimeError(pos, "attempted to assign to a wrong target")
}

var binaryOpNames = map[ast.BinaryOp]string{
	ast.BAdd: "+", ast.BSub: "-", ast.BMul: "*", ast.BDiv: "/", ast.BMod: "%",
}

func (ip *Interpreter) VisitBinary(n *ast.Binary) (any, error) {
	if n.Op == ast.BOr {
		left, err := ip.eval(n.Left)
		if err != nil {
			return nil, err
		}
		lb, ok := asBool(left)
		if !ok {
			return nil, ip.RuntimeError(n, "operands must be boolean")
		}
		if lb {
			return object.NewValue(true), nil
		}
		right, err := ip.eval(n.Right)
		if err != nil {
			return nil, err
		}
		rb, ok := asBool(right)
		if !ok {
			return nil, ip.RuntimeError(n, "operands must be boolean")
		}
		return object.NewValue(rb), nil
	}
	if n.Op == ast.BAnd {
		left, err := ip.eval(n.Left)
		if err != nil {
			return nil, err
		}
		lb, ok := asBool(left)
		if !ok {
			return nil, ip.RuntimeError(n, "operands must be boolean")
		}
		if !lb {
			return object.NewValue(false), nil
		}
		right, err := ip.eval(n.Right)
		if err != nil {
			return nil, err
		}
		rb, ok := asBool(right)
		if !ok {
			return nil, ip.RuntimeError(n, "operands must be boolean")
		}
		return object.NewValue(rb), nil
	}

	left, err := ip.eval(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := ip.eval(n.Right)
	if err != nil {
		return nil, err
	}

	if n.Op == ast.BEq {
		return object.NewValue(ip.checker.Compare(left, right)), nil
	}
	if n.Op == ast.BNeq {
		return object.NewValue(!ip.checker.Compare(left, right)), nil
	}

	lv, lok := left.(*object.MValue)
	rv, rok := right.(*object.MValue)
	if !lok || !rok {
		return nil, ip.RuntimeError(n, "wrong operand types")
	}

	if li, lIsInt := lv.Value.(int64); lIsInt {
		if ri, rIsInt := rv.Value.(int64); rIsInt {
			switch n.Op {
			case ast.BAdd:
				return object.NewValue(li + ri), nil
			case ast.BSub:
				return object.NewValue(li - ri), nil
			case ast.BMul:
				return object.NewValue(li * ri), nil
			case ast.BDiv:
				if ri == 0 {
					return nil, ip.RuntimeError(n, "division by zero")
				}
				return object.NewValue(li / ri), nil
			case ast.BMod:
				if ri == 0 {
					return nil, ip.RuntimeError(n, "division by zero")
				}
				return object.NewValue(li % ri), nil
			case ast.BGreater:
				return object.NewValue(li > ri), nil
			case ast.BGreaterEq:
				return object.NewValue(li >= ri), nil
			case ast.BLess:
				return object.NewValue(li < ri), nil
			case ast.BLessEq:
				return object.NewValue(li <= ri), nil
			}
			return nil, ip.RuntimeError(n, "unexpected operator for integer operands")
		}
	}

	if lf, lok := numeric(lv.Value); lok {
		if rf, rok := numeric(rv.Value); rok {
			switch n.Op {
			case ast.BAdd:
				return object.NewValue(lf + rf), nil
			case ast.BSub:
				return object.NewValue(lf - rf), nil
			case ast.BMul:
				return object.NewValue(lf * rf), nil
			case ast.BDiv:
				if rf == 0 {
					return nil, ip.RuntimeError(n, "division by zero")
				}
				return object.NewValue(lf / rf), nil
			case ast.BGreater:
				return object.NewValue(lf > rf), nil
			case ast.BGreaterEq:
				return object.NewValue(lf >= rf), nil
			case ast.BLess:
				return object.NewValue(lf < rf), nil
			case ast.BLessEq:
				return object.NewValue(lf <= rf), nil
			}
			return nil, ip.RuntimeError(n, "unexpected operator for number operands")
		}
	}

	if ls, lIsStr := lv.Value.(string); lIsStr {
		if rs, rIsStr := rv.Value.(string); rIsStr {
			switch n.Op {
			case ast.BAdd:
				return object.NewValue(ls + rs), nil
			case ast.BGreater:
				return object.NewValue(ls > rs), nil
			case ast.BGreaterEq:
				return object.NewValue(ls >= rs), nil
			case ast.BLess:
				return object.NewValue(ls < rs), nil
			case ast.BLessEq:
				return object.NewValue(ls <= rs), nil
			}
			return nil, ip.RuntimeError(n, "unexpected operator for string operands")
		}
	}

	if la, lIsArr := lv.Value.([]object.MObject); lIsArr {
		if ra, rIsArr := rv.Value.([]object.MObject); rIsArr && n.Op == ast.BAdd {
			res := make([]object.MObject, 0, len(la)+len(ra))
			res = append(res, la...)
			res = append(res, ra...)
			return object.NewValue(res), nil
		}
	}

	if lm, lIsMap := lv.Value.(map[string]object.MObject); lIsMap {
		if rm, rIsMap := rv.Value.(map[string]object.MObject); rIsMap && n.Op == ast.BAdd {
			res := make(map[string]object.MObject, len(lm)+len(rm))
			for k, v := range lm {
				res[k] = v
			}
			for k, v := range rm {
				res[k] = v
			}
			return object.NewValue(res), nil
		}
	}

	return nil, ip.RuntimeError(n, "wrong operand types")
}

func asBool(m object.MObject) (bool, bool) {
	v, ok := m.(*object.MValue)
	if !ok {
		return false, false
	}
	b, ok := v.Value.(bool)
	return b, ok
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func (ip *Interpreter) VisitUnary(n *ast.Unary) (any, error) {
	operand, err := ip.eval(n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.UNot:
		b, ok := asBool(operand)
		if !ok {
			return nil, ip.RuntimeError(n, "expected a boolean")
		}
		return object.NewValue(!b), nil
	case ast.UNeg:
		switch v := valueOf(operand).(type) {
		case int64:
			return object.NewValue(-v), nil
		case float64:
			return object.NewValue(-v), nil
		}
		return nil, ip.RuntimeError(n, "expected a number")
	case ast.UReturn:
		return nil, &returnSignal{signal{Pos: n.Pos(), Value: operand}}
	case ast.UBreak:
		return nil, &breakSignal{signal{Pos: n.Pos(), Value: operand}}
	case ast.UContinue:
		return nil, &continueSignal{signal{Pos: n.Pos(), Value: operand}}
	}
	return nil, ip.RuntimeError(n, "wrong unary operation")
}

func valueOf(m object.MObject) any {
	v, ok := m.(*object.MValue)
	if !ok {
		return nil
	}
	return v.Value
}

func (ip *Interpreter) VisitGrouping(n *ast.Grouping) (any, error) {
	return ip.eval(n.Inner)
}

func (ip *Interpreter) VisitTerminal(n *ast.Terminal) (any, error) {
	if n.IsIdent() {
		name := fmt.Sprintf("%v", n.Token.Literal)
		v, err := ip.Env.Get(name)
		if err != nil {
			return nil, ip.RuntimeError(n, "undefined variable")
		}
		return v, nil
	}
	return object.NewValue(n.Token.Literal), nil
}

func indexOf(m object.MObject) (int, bool) {
	v, ok := m.(*object.MValue)
	if !ok {
		return 0, false
	}
	i, ok := v.Value.(int64)
	return int(i), ok
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func normalizeIndex(idx, n int) int {
	idx = idx % n
	if idx < 0 {
		idx += n
	}
	return idx
}

func (ip *Interpreter) VisitArrayGet(n *ast.ArrayGet) (any, error) {
	obj, err := ip.eval(n.Object)
	if err != nil {
		return nil, err
	}
	idxVal, err := ip.eval(n.Index)
	if err != nil {
		return nil, err
	}
	ov, ok := obj.(*object.MValue)
	if !ok {
		return nil, ip.RuntimeError(n, "attempted to access a member on a non-array")
	}
	arr, ok := ov.Value.([]object.MObject)
	if !ok {
		return nil, ip.RuntimeError(n, "attempted to access a member on a non-array")
	}
	idx, ok := indexOf(idxVal)
	if !ok {
		return nil, ip.RuntimeError(n, "array index must be an integer")
	}
	if len(arr) == 0 || abs(idx) >= len(arr) {
		return nil, ip.RuntimeError(n, "array index out of range")
	}
	return arr[normalizeIndex(idx, len(arr))], nil
}

func (ip *Interpreter) VisitObjectGet(n *ast.ObjectGet) (any, error) {
	obj, err := ip.eval(n.Object)
	if err != nil {
		return nil, err
	}
	ov, ok := obj.(*object.MValue)
	if !ok {
		return nil, ip.RuntimeError(n, "attempted to access a property on a non-object")
	}
	m, ok := ov.Value.(map[string]object.MObject)
	if !ok {
		return nil, ip.RuntimeError(n, "attempted to access a property on a non-object")
	}
	v, present := m[n.Key]
	if !present {
		return nil, ip.RuntimeError(n, fmt.Sprintf("unknown property %q", n.Key))
	}
	return v, nil
}

func (ip *Interpreter) VisitArraySet(n *ast.ArraySet) (any, error) {
	return nil, ip.RuntimeError(n, "set should not be interpreted directly")
}

func (ip *Interpreter) VisitObjectSet(n *ast.ObjectSet) (any, error) {
	return nil, ip.RuntimeError(n, "set should not be interpreted directly")
}

func (ip *Interpreter) VisitArray(n *ast.Array) (any, error) {
	previous := ip.Env
	thisVal := object.NewValue([]object.MObject{})
	ip.Env = previous.Push()
	ip.Env.Define("this", thisVal)

	values := make([]object.MObject, 0, len(n.Elements))
	for _, e := range n.Elements {
		v, err := ip.eval(e)
		if err != nil {
			ip.Env = previous
			return nil, err
		}
		values = append(values, v)
		thisVal.Value = values
	}
	ip.Env = previous
	return object.NewValue(values), nil
}

func (ip *Interpreter) VisitMap(n *ast.Map) (any, error) {
	previous := ip.Env
	thisVal := object.NewValue(map[string]object.MObject{})
	ip.Env = previous.Push()
	ip.Env.Define("this", thisVal)

	values := map[string]object.MObject{}
	for _, entry := range n.Entries {
		v, err := ip.eval(entry.Value)
		if err != nil {
			ip.Env = previous
			return nil, err
		}
		values[entry.Key] = v
		thisVal.Value = values
	}
	ip.Env = previous
	return object.NewValue(values), nil
}

// executeBlock runs block's expressions in env, restoring the previously
// current environment on every exit path (mirroring runtime.py's
// execute_block).
func (ip *Interpreter) executeBlock(block *ast.Block, env *object.Environment) (object.MObject, error) {
	previous := ip.Env
	ip.Env = env
	defer func() { ip.Env = previous }()

	var value object.MObject = object.Null()
	for _, e := range block.Exprs {
		v, err := ip.eval(e)
		if err != nil {
			return nil, err
		}
		value = v
	}
	return value, nil
}

func (ip *Interpreter) VisitBlock(n *ast.Block) (any, error) {
	return ip.executeBlock(n, ip.Env.Push())
}

func (ip *Interpreter) VisitConditional(n *ast.Conditional) (any, error) {
	for _, branch := range n.Branches {
		cond, err := ip.eval(branch.Guard)
		if err != nil {
			return nil, err
		}
		b, ok := asBool(cond)
		if !ok {
			return nil, ip.RuntimeError(n, "condition must evaluate to a boolean value")
		}
		if b {
			return ip.eval(branch.Result)
		}
	}
	if n.Else != nil {
		return ip.eval(n.Else)
	}
	return object.Null(), nil
}

// VisitFor evaluates a for-loop (spec §4.3's iterator protocol). Unlike
// an ordinary block, the loop body runs in a single child environment
// shared across every iteration rather than a fresh one each time — a
// `let` inside the body is visible to the next iteration, matching
// runtime.py's forloop, which calls execute_block directly on the same
// Environment instead of dispatching through block().
func (ip *Interpreter) VisitFor(n *ast.For) (any, error) {
	iterVal, err := ip.eval(n.Iterator)
	if err != nil {
		return nil, err
	}
	iterFn, ok := iterVal.(object.MFunction)
	if !ok {
		return nil, ip.RuntimeError(n, "can only iterate over an iterator function")
	}
	body, ok := n.Body.(*ast.Block)
	if !ok {
		return nil, ip.RuntimeError(n, "for-loop body must be a block")
	}

	loopEnv := ip.Env.Push()
	var result object.MObject = object.Null()

	item, err := iterFn.Call([]object.MObject{object.Null()}, n)
	if err != nil {
		return nil, err
	}
	for !object.IsNull(item) {
		if _, err := ip.destructure(loopEnv, n.Pattern, n, item, true); err != nil {
			return nil, err
		}
		val, err := ip.executeBlock(body, loopEnv)
		if err != nil {
			if bs, ok := err.(*breakSignal); ok {
				result = bs.Value
				break
			}
			if _, ok := err.(*continueSignal); !ok {
				return nil, err
			}
		} else {
			result = val
		}
		item, err = iterFn.Call([]object.MObject{object.Null()}, n)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (ip *Interpreter) VisitCall(n *ast.Call) (any, error) {
	callee, err := ip.eval(n.Callee)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(object.MFunction)
	if !ok {
		return nil, ip.RuntimeError(n, "not a function")
	}
	args := make([]object.MObject, len(n.Args))
	for i, a := range n.Args {
		v, err := ip.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn.Call(args, n)
}

// userInvoker is the object.Invoker behind an ordinary (non-oracle)
// function literal: it pushes a fresh scope enclosed by the closure
// environment, binds parameters, and executes the body, catching a
// returnSignal as the call's result (mirroring runtime.py's
// MUserFunction.func).
type userInvoker struct {
	ip         *Interpreter
	closureEnv *object.Environment
	params     []ast.Param
	body       *ast.Block
}

func (u *userInvoker) Invoke(args []object.MObject) (object.MObject, error) {
	env := u.closureEnv.Push()
	for i, p := range u.params {
		if i < len(args) {
			env.Define(p.Name, args[i])
		}
	}
	value, err := u.ip.executeBlock(u.body, env)
	if err != nil {
		if rs, ok := err.(*returnSignal); ok {
			return rs.Value, nil
		}
		return nil, err
	}
	return value, nil
}

func (ip *Interpreter) VisitFunction(n *ast.Function) (any, error) {
	if !n.Oracle {
		body, ok := n.Body.(*ast.Block)
		if !ok {
			return nil, ip.RuntimeError(n, "function body must be a block")
		}
		inv := &userInvoker{ip: ip, closureEnv: ip.Env, params: n.Params, body: body}
		fn := object.NewFunction(ip, ip.Env, n.Params, n.ReturnType, inv)
		ip.Env = ip.Env.Push()
		return fn, nil
	}

	task := ip.pendingTask
	examples, err := ip.eval(n.Examples)
	if err != nil {
		return object.Null(), nil
	}
	fn, err := oracle.New(ip, ip.Env, n.Params, n.ReturnType, examples, task, ip.backend)
	if err != nil {
		return object.Null(), nil
	}
	ip.Env = ip.Env.Push()
	return fn, nil
}

func (ip *Interpreter) VisitTypeDefinition(n *ast.TypeDefinition) (any, error) {
	usertype := object.NewType(n.Type, ip.Env)
	// Create a new environment to protect the closure environment, the
	// same way a function literal does.
	ip.Env = ip.Env.Push()
	return usertype, nil
}
