// Package types implements MindScript's structural type system:
// typeof, issubtype and checktype, mirroring
// _examples/original_source/src/mindscript/types.py.
//
// Checker is deliberately independent of internal/interp — it only
// needs internal/object's Environment and MObject, so the evaluator can
// depend on it without an import cycle.
package types

import (
	"fmt"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/token"
)

// Checker implements typeof/issubtype/checktype against the structural
// rules of spec §4.4.
type Checker struct{}

// New creates a Checker. It carries no state of its own: every method
// takes the environment(s) it needs to resolve named types.
func New() *Checker { return &Checker{} }

func primitiveName(t ast.TypeExpr) (string, bool) {
	tt, ok := t.(*ast.TypeTerminal)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", tt.Token.Literal), true
}

// resolve follows TypeAnnotation/TypeGrouping wrappers and named-type
// identifier references until it reaches a structural type node,
// returning the environment that node's remaining identifiers (if any)
// should resolve against.
func resolve(t ast.TypeExpr, env *object.Environment) (ast.TypeExpr, *object.Environment, error) {
	for {
		switch n := t.(type) {
		case *ast.TypeAnnotation:
			t = n.Type
		case *ast.TypeGrouping:
			t = n.Inner
		case *ast.TypeTerminal:
			if !n.IsIdent() {
				return t, env, nil
			}
			name := fmt.Sprintf("%v", n.Token.Literal)
			v, err := env.Get(name)
			if err != nil {
				return nil, nil, fmt.Errorf("unknown type %q", name)
			}
			mt, ok := v.(*object.MType)
			if !ok {
				return nil, nil, fmt.Errorf("referencing %q, which is not a type", name)
			}
			t, env = mt.Definition, mt.Env
		default:
			return t, env, nil
		}
	}
}

// CheckType reports whether value conforms to the type denoted by
// (target, env) (spec §4.4's checktype).
func (c *Checker) CheckType(value object.MObject, target ast.TypeExpr, env *object.Environment) bool {
	ok, _ := c.checkType(value, target, env)
	return ok
}

func (c *Checker) checkType(value object.MObject, target ast.TypeExpr, env *object.Environment) (bool, error) {
	target, env, err := resolve(target, env)
	if err != nil {
		return false, err
	}
	if name, ok := primitiveName(target); ok && name == "Any" {
		return true, nil
	}

	switch val := value.(type) {
	case *object.MValue:
		switch tv := target.(type) {
		case *ast.TypeTerminal:
			name := fmt.Sprintf("%v", tv.Token.Literal)
			switch val.Value.(type) {
			case nil:
				return name == "Null", nil
			case bool:
				return name == "Bool", nil
			case int64:
				return name == "Int" || name == "Num", nil
			case float64:
				return name == "Num", nil
			case string:
				return name == "Str", nil
			}
			return false, nil
		case *ast.TypeArray:
			elems, ok := val.Value.([]object.MObject)
			if !ok {
				return false, nil
			}
			for _, e := range elems {
				if !c.CheckType(e, tv.Element, env) {
					return false, nil
				}
			}
			return true, nil
		case *ast.TypeMap:
			m, ok := val.Value.(map[string]object.MObject)
			if !ok {
				return false, nil
			}
			required := map[string]bool{}
			for _, f := range tv.Fields {
				if f.Required {
					required[f.Key] = true
				}
			}
			for _, f := range tv.Fields {
				sub, present := m[f.Key]
				if present {
					if !c.CheckType(sub, f.Type, env) {
						return false, nil
					}
				} else if required[f.Key] {
					return false, nil
				}
				if present && required[f.Key] {
					delete(required, f.Key)
				}
			}
			return len(required) == 0, nil
		case *ast.TypeEnum:
			for _, allowedExpr := range tv.Values {
				allowed, err := evalLiteral(allowedExpr)
				if err != nil {
					return false, err
				}
				if c.Compare(value, allowed) {
					return true, nil
				}
			}
			return false, nil
		case *ast.TypeUnary:
			if val.Value == nil {
				return true, nil
			}
			return c.checkType(value, tv.Operand, env)
		}
		return false, nil
	case *object.MType:
		name, ok := primitiveName(target)
		return ok && name == "Type", nil
	case object.MFunction:
		fdef := functionTypeExpr(val)
		return c.IsSubtype(fdef, env, target, env), nil
	}
	return false, nil
}

// EvalLiteral turns a parsed literal Expr (as appears inside an
// Enum[...] array) into an MObject without a full evaluator — enum
// members are restricted to self-evaluating literals, arrays and maps
// of the same. Exported so internal/schema can render enum members
// without depending on internal/interp.
func EvalLiteral(e ast.Expr) (object.MObject, error) { return evalLiteral(e) }

func evalLiteral(e ast.Expr) (object.MObject, error) {
	switch n := e.(type) {
	case *ast.Terminal:
		if n.IsIdent() {
			return nil, fmt.Errorf("enum member must be a literal, not an identifier")
		}
		return object.NewValue(n.Token.Literal), nil
	case *ast.Array:
		elems := make([]object.MObject, len(n.Elements))
		for i, el := range n.Elements {
			v, err := evalLiteral(el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return object.NewValue(elems), nil
	case *ast.Map:
		m := make(map[string]object.MObject, len(n.Entries))
		for _, entry := range n.Entries {
			v, err := evalLiteral(entry.Value)
			if err != nil {
				return nil, err
			}
			m[entry.Key] = v
		}
		return object.NewValue(m), nil
	case *ast.Grouping:
		return evalLiteral(n.Inner)
	}
	return nil, fmt.Errorf("enum member must be a literal expression")
}

// functionTypeExpr reconstructs the right-associative TypeBinary arrow
// chain for a function value's declared signature, the same shape
// objects.py stores directly on MFunction.definition.types.
func functionTypeExpr(f object.MFunction) ast.TypeExpr {
	params := f.Params()
	result := f.OutType().Definition
	for i := len(params) - 1; i >= 0; i-- {
		result = ast.NewTypeBinary(params[i].Type.Pos(), params[i].Type, result)
	}
	return result
}

// IsSubtype reports whether (t1, env1) is structurally a subtype of
// (t2, env2) (spec §4.4's issubtype).
func (c *Checker) IsSubtype(t1 ast.TypeExpr, env1 *object.Environment, t2 ast.TypeExpr, env2 *object.Environment) bool {
	return c.subtype(t1, env1, t2, env2, map[[2]ast.TypeExpr]bool{})
}

func (c *Checker) subtype(t1 ast.TypeExpr, env1 *object.Environment, t2 ast.TypeExpr, env2 *object.Environment, visited map[[2]ast.TypeExpr]bool) bool {
	rt1, renv1, err1 := resolve(t1, env1)
	rt2, renv2, err2 := resolve(t2, env2)
	if err1 != nil || err2 != nil {
		return false
	}
	t1, env1, t2, env2 = rt1, renv1, rt2, renv2

	key := [2]ast.TypeExpr{t1, t2}
	rkey := [2]ast.TypeExpr{t2, t1}
	if visited[key] || visited[rkey] {
		return true
	}
	visited[key] = true

	if name, ok := primitiveName(t2); ok && name == "Any" {
		return true
	}

	switch a := t1.(type) {
	case *ast.TypeTerminal:
		if b, ok := t2.(*ast.TypeTerminal); ok {
			return fmt.Sprintf("%v", a.Token.Literal) == fmt.Sprintf("%v", b.Token.Literal)
		}
	case *ast.TypeArray:
		if b, ok := t2.(*ast.TypeArray); ok {
			return c.subtype(a.Element, env1, b.Element, env2, visited)
		}
	case *ast.TypeMap:
		if b, ok := t2.(*ast.TypeMap); ok {
			req1 := map[string]bool{}
			for _, f := range a.Fields {
				if f.Required {
					req1[f.Key] = true
				}
			}
			for _, f := range b.Fields {
				if f.Required && !req1[f.Key] {
					return false
				}
			}
			fields1 := map[string]ast.TypeExpr{}
			for _, f := range a.Fields {
				fields1[f.Key] = f.Type
			}
			for _, f := range b.Fields {
				if ft1, ok := fields1[f.Key]; ok {
					if !c.subtype(ft1, env1, f.Type, env2, visited) {
						return false
					}
				}
			}
			return true
		}
	case *ast.TypeEnum:
		if b, ok := t2.(*ast.TypeEnum); !ok {
			for _, valExpr := range a.Values {
				val, err := evalLiteral(valExpr)
				if err != nil {
					return false
				}
				if !c.CheckType(val, t2, env2) {
					return false
				}
			}
			return true
		} else {
			for _, v1e := range a.Values {
				v1, err := evalLiteral(v1e)
				if err != nil {
					return false
				}
				found := false
				for _, v2e := range b.Values {
					v2, err := evalLiteral(v2e)
					if err != nil {
						continue
					}
					if c.Compare(v1, v2) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		}
	}

	if b, ok := t2.(*ast.TypeUnary); ok {
		if a, ok := t1.(*ast.TypeUnary); ok {
			return c.subtype(a.Operand, env1, b.Operand, env2, visited)
		}
		if name, ok := primitiveName(t1); ok && name == "Null" {
			return true
		}
		return c.subtype(t1, env1, b.Operand, env2, visited)
	}

	if a, ok := t1.(*ast.TypeBinary); ok {
		if b, ok := t2.(*ast.TypeBinary); ok {
			// Function subtyping is contravariant in the parameter and
			// covariant in the result.
			return c.subtype(b.Param, env2, a.Param, env1, visited) &&
				c.subtype(a.Rest, env1, b.Rest, env2, visited)
		}
	}

	return false
}

// Compare implements MindScript's deep structural equality (`==`),
// shared between the evaluator's binary-equality rule and the type
// checker's enum-membership and MType-equality rules.
func (c *Checker) Compare(lhs, rhs object.MObject) bool {
	if lv, ok := lhs.(*object.MValue); ok {
		rv, ok := rhs.(*object.MValue)
		if !ok {
			return false
		}
		return compareValues(c, lv.Value, rv.Value)
	}
	if lt, ok := lhs.(*object.MType); ok {
		rt, ok := rhs.(*object.MType)
		if !ok {
			return false
		}
		return c.IsSubtype(lt.Definition, lt.Env, rt.Definition, rt.Env) &&
			c.IsSubtype(rt.Definition, rt.Env, lt.Definition, lt.Env)
	}
	if lf, ok := lhs.(object.MFunction); ok {
		rf, ok := rhs.(object.MFunction)
		return ok && sameFunction(lf, rf)
	}
	return false
}

func sameFunction(a, b object.MFunction) bool {
	return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
}

func compareValues(c *Checker, x, y any) bool {
	switch xv := x.(type) {
	case nil:
		return y == nil
	case bool:
		yv, ok := y.(bool)
		return ok && xv == yv
	case int64:
		switch yv := y.(type) {
		case int64:
			return xv == yv
		case float64:
			return float64(xv) == yv
		}
		return false
	case float64:
		switch yv := y.(type) {
		case int64:
			return xv == float64(yv)
		case float64:
			return xv == yv
		}
		return false
	case string:
		yv, ok := y.(string)
		return ok && xv == yv
	case []object.MObject:
		yv, ok := y.([]object.MObject)
		if !ok || len(xv) != len(yv) {
			return false
		}
		for i := range xv {
			if !c.Compare(xv[i], yv[i]) {
				return false
			}
		}
		return true
	case map[string]object.MObject:
		yv, ok := y.(map[string]object.MObject)
		if !ok || len(xv) != len(yv) {
			return false
		}
		for k, sub := range xv {
			other, ok := yv[k]
			if !ok || !c.Compare(sub, other) {
				return false
			}
		}
		return true
	}
	return false
}

// TypeOf computes the most specific structural type describing value
// (spec §4.4's typeof), following the most-general-type widening rule
// for arrays: empty arrays type as [Any], mixed-but-related element
// types widen to their common supertype, unrelated element types widen
// to Any, and a run of nulls among otherwise-typed elements widens the
// element type to optional.
func (c *Checker) TypeOf(value object.MObject) ast.TypeExpr {
	switch v := value.(type) {
	case *object.MValue:
		return c.typeOfValue(v)
	case *object.MType:
		return leafTerminal("Type")
	case object.MFunction:
		return functionTypeExpr(v)
	}
	return leafTerminal("Null")
}

// leafTerminal builds a synthetic TypeTerminal for a primitive type name
// with a zero source position, used for types synthesized by typeof
// rather than parsed from source (spec's any_type_terminal/
// null_type_terminal helpers).
func leafTerminal(name string) *ast.TypeTerminal {
	return ast.NewTypeTerminal(token.Position{}, token.Token{Kind: token.TYPENAME, Literal: name})
}

func (c *Checker) typeOfValue(v *object.MValue) ast.TypeExpr {
	switch val := v.Value.(type) {
	case nil:
		return leafTerminal("Null")
	case bool:
		return leafTerminal("Bool")
	case int64:
		return leafTerminal("Int")
	case float64:
		return leafTerminal("Num")
	case string:
		return leafTerminal("Str")
	case []object.MObject:
		if len(val) == 0 {
			return ast.NewTypeArray(leafTerminal("Any").Pos(), leafTerminal("Any"))
		}
		var gtype ast.TypeExpr
		nullable, anytype := false, false
		for _, item := range val {
			subtype := c.TypeOf(item)
			if name, ok := primitiveName(subtype); ok && name == "Null" {
				nullable = true
				continue
			}
			if gtype == nil {
				gtype = subtype
				continue
			}
			if !c.subtype(subtype, nil, gtype, nil, map[[2]ast.TypeExpr]bool{}) {
				if c.subtype(gtype, nil, subtype, nil, map[[2]ast.TypeExpr]bool{}) {
					gtype = subtype
				} else {
					anytype = true
					break
				}
			}
		}
		switch {
		case anytype:
			gtype = leafTerminal("Any")
		case gtype == nil:
			gtype = leafTerminal("Null")
		case nullable:
			gtype = ast.NewTypeUnary(gtype.Pos(), ast.TOptional, gtype)
		}
		return ast.NewTypeArray(gtype.Pos(), gtype)
	case map[string]object.MObject:
		var fields []ast.TypeMapField
		for key, item := range val {
			fields = append(fields, ast.TypeMapField{Key: key, Type: c.TypeOf(item)})
		}
		return ast.NewTypeMap(leafTerminal("Any").Pos(), fields)
	}
	return leafTerminal("Null")
}
