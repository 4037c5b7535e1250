package builtins

import (
	"fmt"
	"os"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/printer"
	"github.com/DAIOS-AI/mindscript/internal/schema"
	"github.com/google/uuid"
)

// defineStd wires the core prelude: conversions, printing, environment
// introspection and type reflection (std.py).
func defineStd(ip *interp.Interpreter) {
	define(ip, "str", "Converts a value into a string.",
		[]ast.Param{param("value", tAny())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			if s, ok := asString(args[0]); ok {
				return object.NewValue(s), nil
			}
			return object.NewValue(ip.PrintValue(args[0])), nil
		})

	define(ip, "bool", "Converts a value into a boolean.",
		[]ast.Param{param("value", tAny())}, opt(tBool()),
		func(args []object.MObject) (object.MObject, error) {
			switch v := asValue(args[0]).(type) {
			case bool:
				return object.NewValue(v), nil
			case int64:
				return object.NewValue(v != 0), nil
			case float64:
				return object.NewValue(v != 0), nil
			case string:
				return object.NewValue(v != ""), nil
			}
			return object.Null(), nil
		})

	define(ip, "int", "Converts a value into an integer.",
		[]ast.Param{param("value", tAny())}, opt(tInt()),
		func(args []object.MObject) (object.MObject, error) {
			switch v := asValue(args[0]).(type) {
			case int64:
				return object.NewValue(v), nil
			case float64:
				return object.NewValue(int64(v)), nil
			case bool:
				if v {
					return object.NewValue(int64(1)), nil
				}
				return object.NewValue(int64(0)), nil
			case string:
				var n int64
				if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
					return object.NewValue(n), nil
				}
			}
			return object.Null(), nil
		})

	define(ip, "num", "Converts a value into a number.",
		[]ast.Param{param("value", tAny())}, opt(tNum()),
		func(args []object.MObject) (object.MObject, error) {
			switch v := asValue(args[0]).(type) {
			case float64:
				return object.NewValue(v), nil
			case int64:
				return object.NewValue(float64(v)), nil
			case string:
				var f float64
				if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
					return object.NewValue(f), nil
				}
			}
			return object.Null(), nil
		})

	define(ip, "print", "Prints a value.",
		[]ast.Param{param("value", tAny())}, tAny(),
		func(args []object.MObject) (object.MObject, error) {
			if s, ok := asString(args[0]); ok {
				fmt.Print(s)
			} else {
				fmt.Print(ip.PrintValue(args[0]))
			}
			return args[0], nil
		})

	define(ip, "println", "Prints a value followed by a newline.",
		[]ast.Param{param("value", tAny())}, tAny(),
		func(args []object.MObject) (object.MObject, error) {
			if s, ok := asString(args[0]); ok {
				fmt.Println(s)
			} else {
				fmt.Println(ip.PrintValue(args[0]))
			}
			return args[0], nil
		})

	define(ip, "getEnv", "Returns the name of an environment variable's value.",
		[]ast.Param{param("name", tStr())}, opt(tStr()),
		func(args []object.MObject) (object.MObject, error) {
			name, ok := asString(args[0])
			if !ok {
				return object.Null(), nil
			}
			v, present := os.LookupEnv(name)
			if !present {
				return object.Null(), nil
			}
			return object.NewValue(v), nil
		})

	define(ip, "typeOf", "Returns the type of the value.",
		[]ast.Param{param("value", tAny())}, tType(),
		func(args []object.MObject) (object.MObject, error) {
			return ip.TypeOf(args[0]), nil
		})

	define(ip, "isType", "Checks whether a value conforms to a given type.",
		[]ast.Param{param("value", tAny()), param("ttype", tType())}, tBool(),
		func(args []object.MObject) (object.MObject, error) {
			typ, ok := args[1].(*object.MType)
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected a type value")
			}
			return object.NewValue(ip.CheckType(args[0], typ)), nil
		})

	define(ip, "assert", "Asserts the condition.",
		[]ast.Param{param("condition", tBool())}, tBool(),
		func(args []object.MObject) (object.MObject, error) {
			b, _ := asValue(args[0]).(bool)
			if !b {
				return nil, ip.RuntimeError(callZero(), "assertion failed")
			}
			return object.NewValue(true), nil
		})

	define(ip, "error", "Throws a runtime error.",
		[]ast.Param{param("message", opt(tStr()))}, tNull(),
		func(args []object.MObject) (object.MObject, error) {
			msg, _ := asString(args[0])
			return nil, ip.RuntimeError(callZero(), msg)
		})

	define(ip, "size", "Returns the size of a collection or a string.",
		[]ast.Param{param("value", tAny())}, opt(tInt()),
		func(args []object.MObject) (object.MObject, error) {
			switch v := asValue(args[0]).(type) {
			case string:
				return object.NewValue(int64(len(v))), nil
			case []object.MObject:
				return object.NewValue(int64(len(v))), nil
			case map[string]object.MObject:
				return object.NewValue(int64(len(v))), nil
			}
			return object.Null(), nil
		})

	define(ip, "clone", "Makes a deep clone of a value.",
		[]ast.Param{param("value", tAny())}, tAny(),
		func(args []object.MObject) (object.MObject, error) {
			return deepClone(args[0]), nil
		})

	define(ip, "uid", "Returns a fresh unique identifier.",
		[]ast.Param{param("value", tAny())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			return object.NewValue(uuid.NewString()), nil
		})

	define(ip, "setNote", "Annotates a value.",
		[]ast.Param{param("value", tAny()), param("annotation", opt(tStr()))}, tAny(),
		func(args []object.MObject) (object.MObject, error) {
			note, _ := asString(args[1])
			args[0].SetAnnotation(note)
			return args[0], nil
		})

	define(ip, "getNote", "Gets a value's annotation.",
		[]ast.Param{param("value", tAny())}, opt(tStr()),
		func(args []object.MObject) (object.MObject, error) {
			note := args[0].Annotation()
			if note == "" {
				return object.Null(), nil
			}
			return object.NewValue(note), nil
		})

	define(ip, "isSubtype", "Checks whether a type is a subtype of another type.",
		[]ast.Param{param("subtype", tType()), param("supertype", tType())}, tBool(),
		func(args []object.MObject) (object.MObject, error) {
			sub, ok1 := args[0].(*object.MType)
			super, ok2 := args[1].(*object.MType)
			if !ok1 || !ok2 {
				return nil, ip.RuntimeError(callZero(), "expected two type values")
			}
			return object.NewValue(ip.IsSubtype(sub, super)), nil
		})

	js := schema.New()
	define(ip, "schema", "Returns the JSON schema of a type.",
		[]ast.Param{param("value", tType())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			typ, ok := args[0].(*object.MType)
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected a type value")
			}
			text, err := js.PrintSchema(typ)
			if err != nil {
				return nil, ip.RuntimeError(callZero(), err.Error())
			}
			return object.NewValue(text), nil
		})

	bnf := schema.NewBNFFormatter(printer.New())
	define(ip, "bnf", "Returns the BNF grammar of a type.",
		[]ast.Param{param("value", tType())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			typ, ok := args[0].(*object.MType)
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected a type value")
			}
			text, err := bnf.Format(typ)
			if err != nil {
				return nil, ip.RuntimeError(callZero(), err.Error())
			}
			return object.NewValue(text), nil
		})

	define(ip, "exit", "Exits the program.",
		[]ast.Param{param("_", tNull())}, tNull(),
		func(args []object.MObject) (object.MObject, error) {
			os.Exit(0)
			return object.Null(), nil
		})
}

// deepClone recursively copies an MObject's value tree, mirroring
// std.py's Clone (Python's copy.deepcopy).
func deepClone(m object.MObject) object.MObject {
	v, ok := m.(*object.MValue)
	if !ok {
		return m
	}
	switch val := v.Value.(type) {
	case []object.MObject:
		out := make([]object.MObject, len(val))
		for i, e := range val {
			out[i] = deepClone(e)
		}
		return object.NewValue(out)
	case map[string]object.MObject:
		out := make(map[string]object.MObject, len(val))
		for k, e := range val {
			out[k] = deepClone(e)
		}
		return object.NewValue(out)
	default:
		return object.NewValue(val)
	}
}

