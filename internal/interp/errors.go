package interp

import (
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/token"
)

// RuntimeError is a type or logic error raised while evaluating a
// program, carrying the source position that triggered it (spec §4.3's
// runtime-error rule, mirroring runtime.py's Interpreter.error).
type RuntimeError struct {
	Pos token.Position
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

// signal is the base of the three control-flow exceptions (spec §4.3's
// return/break/continue rule, mirroring ast.py's Return/Break/Continue
// exception classes). They are returned as ordinary Go errors from
// Accept and type-switched on by the constructs that catch them
// (function calls for Return, for-loops for Break/Continue).
type signal struct {
	Pos   token.Position
	Value object.MObject
}

func (s *signal) Error() string { return "uncaught control-flow signal" }

// returnSignal unwinds to the nearest enclosing function call.
type returnSignal struct{ signal }

// breakSignal unwinds to the nearest enclosing for-loop, ending it.
type breakSignal struct{ signal }

// continueSignal unwinds to the nearest enclosing for-loop, skipping to
// its next iteration.
type continueSignal struct{ signal }
