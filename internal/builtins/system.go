package builtins

import (
	"math/rand"
	"time"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
)

// defineSystem wires clock and randomness access (system.py).
func defineSystem(ip *interp.Interpreter) {
	define(ip, "tsNow", "Returns the current timestamp in milliseconds.",
		[]ast.Param{param("_", tNull())}, tInt(),
		func(args []object.MObject) (object.MObject, error) {
			return object.NewValue(time.Now().UnixMilli()), nil
		})

	define(ip, "dateNow", "Returns the current date.",
		[]ast.Param{param("_", tNull())}, tObject(),
		func(args []object.MObject) (object.MObject, error) {
			now := time.Now()
			return object.NewValue(map[string]object.MObject{
				"year":        object.NewValue(int64(now.Year())),
				"month":       object.NewValue(int64(now.Month())),
				"day":         object.NewValue(int64(now.Day())),
				"hour":        object.NewValue(int64(now.Hour())),
				"second":      object.NewValue(int64(now.Second())),
				"millisecond": object.NewValue(int64(now.Nanosecond() / 1_000_000)),
			}), nil
		})

	define(ip, "random", "Returns a uniform random variate.",
		[]ast.Param{param("_", tNull())}, tNum(),
		func(args []object.MObject) (object.MObject, error) {
			return object.NewValue(rand.Float64()), nil
		})
}
