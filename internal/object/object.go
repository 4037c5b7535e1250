// Package object defines MindScript's runtime value representation:
// MObject and its three concrete shapes (MValue, MType, MFunction),
// mirroring _examples/original_source/src/mindscript/objects.py.
//
// MFunction implementations need services from the evaluator (type
// checking, printing, error reporting) that would otherwise create an
// import cycle with internal/interp. Runtime breaks that cycle: the
// interpreter implements it and hands itself to every function value it
// constructs.
package object

import (
	"fmt"

	"github.com/DAIOS-AI/mindscript/internal/ast"
)

// MObject is any MindScript runtime value: a concrete value, a type, or
// a callable.
type MObject interface {
	Annotation() string
	SetAnnotation(string)
}

// MValue is a concrete runtime value. Value holds one of: nil, bool,
// int64, float64, string, []MObject (array), or map[string]MObject
// (map) — the last two hold further MObjects, nested all the way down,
// matching the wrap/unwrap convention of the Python original.
type MValue struct {
	Value      any
	annotation string
}

// NewValue wraps a raw Go value with no annotation.
func NewValue(v any) *MValue { return &MValue{Value: v} }

func (v *MValue) Annotation() string     { return v.annotation }
func (v *MValue) SetAnnotation(a string) { v.annotation = a }

// Null is the canonical null value; a fresh *MValue is still valid and
// comparisons should never rely on pointer identity, only on Value.
func Null() *MValue { return &MValue{Value: nil} }

// IsNull reports whether m is a concrete null value.
func IsNull(m MObject) bool {
	v, ok := m.(*MValue)
	return ok && v.Value == nil
}

// Wrap converts a native Go value (as produced by builtins, JSON
// decoding, etc.) into the MObject tree it denotes. Supported native
// shapes: nil, bool, int64, float64, string, []any, map[string]any.
func Wrap(v any) (*MValue, error) {
	switch val := v.(type) {
	case nil, bool, int64, float64, string:
		return &MValue{Value: val}, nil
	case int:
		return &MValue{Value: int64(val)}, nil
	case []any:
		elems := make([]MObject, len(val))
		for i, sub := range val {
			w, err := Wrap(sub)
			if err != nil {
				return nil, err
			}
			elems[i] = w
		}
		return &MValue{Value: elems}, nil
	case map[string]any:
		m := make(map[string]MObject, len(val))
		for k, sub := range val {
			w, err := Wrap(sub)
			if err != nil {
				return nil, err
			}
			m[k] = w
		}
		return &MValue{Value: m}, nil
	}
	return nil, fmt.Errorf("cannot wrap a value of type %T", v)
}

// Unwrap converts an MObject tree back to plain Go values for JSON
// encoding or native interop. Non-MValue objects (types, functions)
// unwrap to nil unless ignore is false, in which case they error.
func Unwrap(m MObject, ignore bool) (any, error) {
	v, ok := m.(*MValue)
	if !ok {
		if ignore {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot unwrap a non-value object")
	}
	switch val := v.Value.(type) {
	case nil, bool, int64, float64, string:
		return val, nil
	case []MObject:
		out := make([]any, len(val))
		for i, sub := range val {
			u, err := Unwrap(sub, ignore)
			if err != nil {
				return nil, err
			}
			out[i] = u
		}
		return out, nil
	case map[string]MObject:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			u, err := Unwrap(sub, ignore)
			if err != nil {
				return nil, err
			}
			out[k] = u
		}
		return out, nil
	}
	if ignore {
		return nil, nil
	}
	return nil, fmt.Errorf("cannot unwrap a value of type %T", v.Value)
}

// MType is a first-class type value: a TypeExpr together with the
// environment it was evaluated in, so identifier references inside it
// (named type aliases) resolve against the bindings visible at the
// point the type was written.
type MType struct {
	Definition ast.TypeExpr
	Env        *Environment
	annotation string
}

// NewType wraps a type expression with its defining environment.
func NewType(def ast.TypeExpr, env *Environment) *MType {
	return &MType{Definition: def, Env: env}
}

func (t *MType) Annotation() string     { return t.annotation }
func (t *MType) SetAnnotation(a string) { t.annotation = a }

// Checker is the type-checking service that function values need in
// order to validate arguments and results (internal/interp.Interpreter
// implements it on top of internal/types.Checker).
type Checker interface {
	CheckType(value MObject, typ *MType) bool
	TypeOf(value MObject) *MType
}

// Printer renders an MObject as MindScript source text, used to build
// the diagnostic messages MFunction.Call raises on a type mismatch.
type Printer interface {
	PrintValue(value MObject) string
}

// Runtime is what an MFunction needs from its owning interpreter:
// type-checking, printing, and reporting a runtime error at a source
// position. internal/interp.Interpreter implements this.
type Runtime interface {
	Checker
	Printer
	RuntimeError(pos ast.Node, msg string) error
	// EvalSource parses and evaluates a string of MindScript source in
	// the interpreter's current environment, used by oracle functions to
	// turn a backend's generated completion back into a value (spec
	// §4.6's oracle-call rule).
	EvalSource(code string) (MObject, error)
}

// MFunction is any callable MindScript value: a user-defined function,
// an oracle, or a native built-in.
type MFunction interface {
	MObject
	Params() []ast.Param
	InTypes() []*MType
	OutType() *MType
	// Call type-checks args against InTypes, invokes the underlying
	// implementation (or returns a partial application if too few args
	// were supplied), then type-checks the result against OutType.
	Call(args []MObject, callSite ast.Node) (MObject, error)
}

// Invoker is the part of a function value specific to its kind: how to
// actually run the body given a fully-applied argument list. Call
// (below) handles arity/type-checking uniformly across all kinds.
type Invoker interface {
	Invoke(args []MObject) (MObject, error)
}

// baseFunction implements the shared arity/type-checking ceremony of
// MFunction.Call, common to user functions, oracle functions and native
// functions alike (spec §4.3's function-call rule, §4.6's oracle-call
// rule).
type baseFunction struct {
	rt         Runtime
	env        *Environment
	params     []ast.Param
	intypes    []*MType
	outtype    *MType
	annotation string
	invoke     Invoker
}

// newBaseFunction builds the per-parameter MType witnesses from the
// declared parameter types and return type, mirroring objects.py's
// MFunction.__init__ walking of the right-associative TypeBinary chain
// — here the chain is reconstructed on demand from Params/ReturnType
// rather than carried as a single field, since internal/ast keeps those
// structured instead of flattened.
func newBaseFunction(rt Runtime, env *Environment, params []ast.Param, returnType ast.TypeExpr, invoke Invoker) *baseFunction {
	intypes := make([]*MType, len(params))
	for i, p := range params {
		intypes[i] = NewType(p.Type, env)
	}
	return &baseFunction{
		rt:      rt,
		env:     env,
		params:  params,
		intypes: intypes,
		outtype: NewType(returnType, env),
		invoke:  invoke,
	}
}

// NewFunction builds an MFunction from a parameter/return-type signature
// and an Invoker supplying the body — the constructor user functions,
// oracle functions and native functions alike use to get the shared
// arity/type-checking ceremony of baseFunction.Call.
func NewFunction(rt Runtime, env *Environment, params []ast.Param, returnType ast.TypeExpr, invoke Invoker) MFunction {
	return newBaseFunction(rt, env, params, returnType, invoke)
}

func (f *baseFunction) Params() []ast.Param { return f.params }
func (f *baseFunction) InTypes() []*MType   { return f.intypes }
func (f *baseFunction) OutType() *MType     { return f.outtype }
func (f *baseFunction) Annotation() string  { return f.annotation }
func (f *baseFunction) SetAnnotation(a string) {
	f.annotation = a
}

func (f *baseFunction) Call(args []MObject, callSite ast.Node) (MObject, error) {
	if len(args) < len(f.params) {
		return f.partial(args), nil
	}
	for i, arg := range args[:len(f.params)] {
		if !f.rt.CheckType(arg, f.intypes[i]) {
			return nil, f.rt.RuntimeError(callSite, fmt.Sprintf(
				"wrong type of function argument: expected %s but got value %s of %s",
				f.rt.PrintValue(f.intypes[i]), f.rt.PrintValue(arg), f.rt.PrintValue(f.rt.TypeOf(arg))))
		}
	}
	result, err := f.invoke.Invoke(args)
	if err != nil {
		return nil, err
	}
	if !f.rt.CheckType(result, f.outtype) {
		return nil, f.rt.RuntimeError(callSite, fmt.Sprintf(
			"wrong type of function output: expected %s but got value %s of %s",
			f.rt.PrintValue(f.outtype), f.rt.PrintValue(result), f.rt.PrintValue(f.rt.TypeOf(result))))
	}
	return result, nil
}

// partialInvoker closes over already-supplied args so a later Call with
// the rest completes the application.
type partialInvoker struct {
	inner Invoker
	bound []MObject
}

func (p *partialInvoker) Invoke(rest []MObject) (MObject, error) {
	return p.inner.Invoke(append(append([]MObject{}, p.bound...), rest...))
}

// partial builds the partially-applied function value described in
// spec §9: fewer arguments than declared parameters narrows Params and
// InTypes to the remaining suffix, keeps OutType, and defers invocation
// until the rest arrive.
func (f *baseFunction) partial(args []MObject) *baseFunction {
	n := len(args)
	return &baseFunction{
		rt:      f.rt,
		env:     f.env,
		params:  f.params[n:],
		intypes: f.intypes[n:],
		outtype: f.outtype,
		invoke:  &partialInvoker{inner: f.invoke, bound: append([]MObject{}, args...)},
	}
}
