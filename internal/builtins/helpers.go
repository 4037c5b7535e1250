// Package builtins wires MindScript's native prelude — the functions
// and constants every script gets for free without an explicit
// `import` — into a fresh interpreter's root environment. Grounded on
// _examples/original_source/src/mindscript/builtins.py and
// libnative/*.py.
package builtins

import (
	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/token"
)

var zeroPos token.Position

// zeroNode is the source position native functions report errors at:
// they have no call-site node of their own since they're invoked
// through baseFunction.Call rather than a parsed ast.Call.
type zeroNode struct{}

func (zeroNode) Pos() token.Position { return zeroPos }
func (zeroNode) String() string      { return "<native>" }

func callZero() ast.Node { return zeroNode{} }

func typename(name string) ast.TypeExpr {
	return ast.NewTypeTerminal(zeroPos, token.Token{Kind: token.TYPENAME, Literal: name})
}

func tAny() ast.TypeExpr  { return typename("Any") }
func tStr() ast.TypeExpr  { return typename("Str") }
func tInt() ast.TypeExpr  { return typename("Int") }
func tNum() ast.TypeExpr  { return typename("Num") }
func tBool() ast.TypeExpr { return typename("Bool") }
func tNull() ast.TypeExpr { return typename("Null") }
func tType() ast.TypeExpr { return typename("Type") }

// tObject is MindScript's `{}` type: a map with no required fields,
// matching any object.
func tObject() ast.TypeExpr { return ast.NewTypeMap(zeroPos, nil) }

func tArray(elem ast.TypeExpr) ast.TypeExpr { return ast.NewTypeArray(zeroPos, elem) }

func opt(t ast.TypeExpr) ast.TypeExpr { return ast.NewTypeUnary(zeroPos, ast.TOptional, t) }

func param(name string, t ast.TypeExpr) ast.Param { return ast.Param{Name: name, Type: t} }

// nativeInvoker adapts a plain Go function into an object.Invoker, the
// shape every native built-in takes (spec §9's Built-ins glue,
// mirroring libnative's MNativeFunction.func).
type nativeInvoker struct {
	fn func(args []object.MObject) (object.MObject, error)
}

func (n *nativeInvoker) Invoke(args []object.MObject) (object.MObject, error) {
	return n.fn(args)
}

// define builds a native function value and binds it to name in the
// interpreter's root environment.
func define(ip *interp.Interpreter, name, doc string, params []ast.Param, ret ast.TypeExpr, fn func(args []object.MObject) (object.MObject, error)) {
	f := object.NewFunction(ip, ip.Env, params, ret, &nativeInvoker{fn: fn})
	f.SetAnnotation(doc)
	ip.Env.Define(name, f)
}

// asValue extracts an MObject's concrete Go value, or nil if it isn't
// an MValue.
func asValue(m object.MObject) any {
	v, ok := m.(*object.MValue)
	if !ok {
		return nil
	}
	return v.Value
}

func asString(m object.MObject) (string, bool) {
	s, ok := asValue(m).(string)
	return s, ok
}

func asInt(m object.MObject) (int64, bool) {
	i, ok := asValue(m).(int64)
	return i, ok
}

func asFloat(m object.MObject) (float64, bool) {
	switch v := asValue(m).(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func asArray(m object.MObject) ([]object.MObject, bool) {
	a, ok := asValue(m).([]object.MObject)
	return a, ok
}

func asMap(m object.MObject) (map[string]object.MObject, bool) {
	a, ok := asValue(m).(map[string]object.MObject)
	return a, ok
}

// iteratorFunction builds a zero-argument MFunction that yields the
// elements of items one at a time, then null forever after, the
// protocol a `for` loop consumes (spec §4.3's iterator protocol,
// mirroring collections.py's Iter.ArrayIterator/ObjectIterator).
func iteratorFunction(ip *interp.Interpreter, items []object.MObject) object.MFunction {
	index := 0
	fn := func(args []object.MObject) (object.MObject, error) {
		if index < len(items) {
			v := items[index]
			index++
			return v, nil
		}
		return object.Null(), nil
	}
	f := object.NewFunction(ip, ip.Env, []ast.Param{param("_", tNull())}, opt(tAny()), &nativeInvoker{fn: fn})
	return f
}
