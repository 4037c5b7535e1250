package builtins

import (
	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
)

// defineCollections wires array/object manipulation: iteration,
// slicing, stack-like mutation, and property access (collections.py).
func defineCollections(ip *interp.Interpreter) {
	define(ip, "iter", "Creates an iterator function from the value.",
		[]ast.Param{param("value", tAny())}, opt(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			if arr, ok := asArray(args[0]); ok {
				items := append([]object.MObject{}, arr...)
				return iteratorFunction(ip, items), nil
			}
			if m, ok := asMap(args[0]); ok {
				items := make([]object.MObject, 0, len(m))
				for k, v := range m {
					items = append(items, object.NewValue([]object.MObject{object.NewValue(k), v}))
				}
				return iteratorFunction(ip, items), nil
			}
			return object.Null(), nil
		})

	define(ip, "slice", "Slices an array between two indexes.",
		[]ast.Param{param("array", tArray(tAny())), param("s", tInt()), param("e", tInt())}, tArray(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			arr, _ := asArray(args[0])
			s, _ := asInt(args[1])
			e, _ := asInt(args[2])
			s, e = clampSlice(s, e, int64(len(arr)))
			out := append([]object.MObject{}, arr[s:e]...)
			return object.NewValue(out), nil
		})

	define(ip, "push", "Adds a value to the end of an array.",
		[]ast.Param{param("array", tArray(tAny())), param("value", tAny())}, tArray(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			mv, ok := args[0].(*object.MValue)
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected an array")
			}
			arr, _ := mv.Value.([]object.MObject)
			mv.Value = append(arr, args[1])
			return mv, nil
		})

	define(ip, "pop", "Pops the last value from the array.",
		[]ast.Param{param("array", tArray(tAny()))}, opt(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			mv, ok := args[0].(*object.MValue)
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected an array")
			}
			arr, _ := mv.Value.([]object.MObject)
			if len(arr) < 1 {
				v := object.Null()
				v.SetAnnotation("can't pop value from empty array")
				return v, nil
			}
			last := arr[len(arr)-1]
			mv.Value = arr[:len(arr)-1]
			return last, nil
		})

	define(ip, "shift", "Inserts a value at the front of an array.",
		[]ast.Param{param("array", tArray(tAny())), param("value", tAny())}, tArray(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			mv, ok := args[0].(*object.MValue)
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected an array")
			}
			arr, _ := mv.Value.([]object.MObject)
			mv.Value = append([]object.MObject{args[1]}, arr...)
			return mv, nil
		})

	define(ip, "unshift", "Pops the first value from the array.",
		[]ast.Param{param("array", tArray(tAny()))}, opt(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			mv, ok := args[0].(*object.MValue)
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected an array")
			}
			arr, _ := mv.Value.([]object.MObject)
			if len(arr) < 1 {
				v := object.Null()
				v.SetAnnotation("can't unshift value from an empty array")
				return v, nil
			}
			first := arr[0]
			mv.Value = arr[1:]
			return first, nil
		})

	define(ip, "delete", "Deletes a property from an object.",
		[]ast.Param{param("obj", tObject()), param("prop", tStr())}, opt(tObject()),
		func(args []object.MObject) (object.MObject, error) {
			m, ok := asMap(args[0])
			prop, _ := asString(args[1])
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected an object")
			}
			if _, present := m[prop]; !present {
				v := object.Null()
				v.SetAnnotation("the property does not exist")
				return v, nil
			}
			delete(m, prop)
			return args[0], nil
		})

	define(ip, "keys", "Returns an iterator over an object's keys.",
		[]ast.Param{param("obj", tObject())}, opt(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			m, ok := asMap(args[0])
			if !ok {
				return object.Null(), nil
			}
			items := make([]object.MObject, 0, len(m))
			for k := range m {
				items = append(items, object.NewValue(k))
			}
			return iteratorFunction(ip, items), nil
		})

	define(ip, "values", "Returns an iterator over an object's values.",
		[]ast.Param{param("obj", tObject())}, opt(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			m, ok := asMap(args[0])
			if !ok {
				return object.Null(), nil
			}
			items := make([]object.MObject, 0, len(m))
			for _, v := range m {
				items = append(items, v)
			}
			return iteratorFunction(ip, items), nil
		})

	define(ip, "exists", "Checks whether a key exists.",
		[]ast.Param{param("obj", tObject()), param("key", tStr())}, tBool(),
		func(args []object.MObject) (object.MObject, error) {
			m, _ := asMap(args[0])
			key, _ := asString(args[1])
			_, present := m[key]
			return object.NewValue(present), nil
		})

	define(ip, "get", "Returns a property.",
		[]ast.Param{param("obj", tObject()), param("key", tStr())}, opt(tAny()),
		func(args []object.MObject) (object.MObject, error) {
			m, _ := asMap(args[0])
			key, _ := asString(args[1])
			v, present := m[key]
			if !present {
				out := object.Null()
				out.SetAnnotation("the property does not exist")
				return out, nil
			}
			return v, nil
		})

	define(ip, "set", "Sets a property to a given value.",
		[]ast.Param{param("obj", tObject()), param("key", tStr()), param("value", tAny())}, tAny(),
		func(args []object.MObject) (object.MObject, error) {
			m, ok := asMap(args[0])
			if !ok {
				return nil, ip.RuntimeError(callZero(), "expected an object")
			}
			key, _ := asString(args[1])
			m[key] = args[2]
			return args[2], nil
		})
}
