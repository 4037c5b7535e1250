package builtins

import (
	"math"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
)

// defineMath wires the trigonometric/exponential constants and
// functions of math.py.
func defineMath(ip *interp.Interpreter) {
	pi := object.NewValue(3.14159265359)
	pi.SetAnnotation("π")
	ip.Env.Define("PI", pi)

	e := object.NewValue(2.7182818284)
	e.SetAnnotation("Euler's number")
	ip.Env.Define("E", e)

	unary := func(name, doc string, f func(float64) float64) {
		define(ip, name, doc, []ast.Param{param("value", tNum())}, tNum(),
			func(args []object.MObject) (object.MObject, error) {
				x, _ := asFloat(args[0])
				return object.NewValue(f(x)), nil
			})
	}

	unary("sin", "Sine function.", math.Sin)
	unary("cos", "Cosine function.", math.Cos)
	unary("tan", "Tangent function.", math.Tan)
	unary("sqrt", "Square-root function.", math.Sqrt)

	define(ip, "log", "Logarithm function.",
		[]ast.Param{param("value", tNum())}, opt(tNum()),
		func(args []object.MObject) (object.MObject, error) {
			x, _ := asFloat(args[0])
			if x <= 0.0 {
				return object.Null(), nil
			}
			return object.NewValue(math.Log(x)), nil
		})

	define(ip, "exp", "Exponential function.",
		[]ast.Param{param("value", tNum())}, opt(tNum()),
		func(args []object.MObject) (object.MObject, error) {
			x, _ := asFloat(args[0])
			if x <= 0.0 {
				return object.Null(), nil
			}
			return object.NewValue(math.Exp(x)), nil
		})

	define(ip, "pow", "Power function.",
		[]ast.Param{param("base", tNum()), param("exp", tNum())}, tNum(),
		func(args []object.MObject) (object.MObject, error) {
			base, _ := asFloat(args[0])
			exp, _ := asFloat(args[1])
			return object.NewValue(math.Pow(base, exp)), nil
		})
}
