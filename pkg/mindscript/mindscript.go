// Package mindscript is the embeddable entry point for the MindScript
// interpreter: construct an Engine, feed it source, get back MObject
// values. Grounded on the teacher's pkg/dwscript embedding package
// (construction + Eval) and on
// _examples/original_source/src/mindscript/__init__.py's interpreter()
// factory, which builtins.Register here replaces.
package mindscript

import (
	"fmt"
	"os"

	"github.com/DAIOS-AI/mindscript/internal/builtins"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/oracle"
)

// Engine is a fully-wired MindScript interpreter: lexer, parser,
// evaluator, type checker, printer and the native prelude, ready to
// evaluate source text.
type Engine struct {
	ip *interp.Interpreter
}

// Option configures an Engine at construction time.
type Option func(*config)

type config struct {
	backend     oracle.Backend
	interactive bool
}

// WithBackend attaches an LLM backend so oracle functions in evaluated
// code can be consulted. Without one, declaring an oracle function
// still succeeds (schema/grammar construction doesn't need a backend),
// but calling it yields null annotated with an error.
func WithBackend(backend oracle.Backend) Option {
	return func(c *config) { c.backend = backend }
}

// Interactive marks the engine as backing a REPL, so the parser treats
// an unterminated expression as incomplete input rather than a syntax
// error (spec §4.2's IncompleteExpression rule).
func Interactive() Option {
	return func(c *config) { c.interactive = true }
}

// New builds an Engine with the native prelude already loaded into its
// root environment.
func New(opts ...Option) *Engine {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	ip := interp.New(cfg.backend, cfg.interactive)
	builtins.Register(ip)
	return &Engine{ip: ip}
}

// Eval parses and evaluates code, attributing diagnostics to buffer
// (used in error messages and, for the REPL, the `<repl>` label).
func (e *Engine) Eval(code, buffer string) (object.MObject, error) {
	return e.ip.Eval(code, buffer)
}

// EvalFile reads path and evaluates its contents, attributing
// diagnostics to path itself.
func (e *Engine) EvalFile(path string) (object.MObject, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return e.Eval(string(content), path)
}

// SetBuffer points subsequent Eval calls at a new named source buffer
// without otherwise touching interpreter state.
func (e *Engine) SetBuffer(buffer string) {
	e.ip.SetBuffer(buffer)
}

// PrintValue renders value using MindScript's canonical pretty-printer.
func (e *Engine) PrintValue(value object.MObject) string {
	return e.ip.PrintValue(value)
}

// TypeOf returns value's structural type.
func (e *Engine) TypeOf(value object.MObject) *object.MType {
	return e.ip.TypeOf(value)
}
