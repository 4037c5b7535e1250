package oracle

import (
	"encoding/json"
	"fmt"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/printer"
	"github.com/DAIOS-AI/mindscript/internal/schema"
)

// header prefixes every prompt with the schemas the completion must
// conform to, mirroring oracle.py's HEADER constant.
const header = `
You are a helpful assistant, and your task is to provide answers
respecting the formatting instructions. Only output a JSON, with
no ` + "```" + ` delimiters!

INPUT JSON SCHEMA:

%s

OUTPUT JSON SCHEMA:

%s
`

// example renders one few-shot example, mirroring oracle.py's EXAMPLE
// constant.
const example = `
TASK:

%s

INPUT:

%s

OUTPUT:

%s
`

// query renders the final, answer-less prompt section, mirroring
// oracle.py's QUERY constant.
const query = `
TASK:

%s

INPUT:

%s

OUTPUT:

`

// defaultTask is used when an oracle function carries no doc-comment
// annotation describing its task.
const defaultTask = "Determine the output from the input."

// New builds an oracle MFunction: params/returnType declare its
// signature, examples is the few-shot example array literal (an
// MValue holding []MObject of [param1, param2, ..., output] rows, or
// nil for none), task is the function's doc-comment text (empty for
// "determine the output from the input"), and backend is the LLM
// consulted per call (spec §4.6's oracle-function rule).
func New(rt object.Runtime, env *object.Environment, params []ast.Param, returnType ast.TypeExpr, examples object.MObject, task string, backend Backend) (object.MFunction, error) {
	pos := returnType.Pos()

	fields := make([]ast.TypeMapField, len(params))
	for i, p := range params {
		fields[i] = ast.TypeMapField{Key: p.Name, Type: p.Type, Required: true}
	}
	var inType ast.TypeExpr = ast.NewTypeMap(pos, fields)
	if task != "" {
		inType = ast.NewTypeAnnotation(pos, task, inType)
	}

	js := schema.New()
	bnf := schema.NewBNFFormatter(printer.New())

	inputSchema, err := js.PrintSchema(object.NewType(inType, env))
	if err != nil {
		return nil, fmt.Errorf("building oracle input schema: %w", err)
	}

	outputSchemaDict, err := js.DictSchema(object.NewType(returnType, env))
	if err != nil {
		return nil, fmt.Errorf("building oracle output schema: %w", err)
	}
	outputSchemaRaw, err := json.Marshal(outputSchemaDict)
	if err != nil {
		return nil, fmt.Errorf("encoding oracle output schema: %w", err)
	}
	outputGrammar, err := bnf.Format(object.NewType(returnType, env))
	if err != nil {
		return nil, fmt.Errorf("building oracle output grammar: %w", err)
	}

	inv := &invoker{
		rt:               rt,
		env:              env,
		params:           params,
		outType:          returnType,
		task:             task,
		inputSchema:      inputSchema,
		outputSchema:     string(outputSchemaRaw),
		outputSchemaDict: asMap(outputSchemaDict),
		outputGrammar:    outputGrammar,
		backend:          backend,
	}

	rows, err := inv.validateExamples(examples)
	if err != nil {
		return nil, err
	}
	inv.examples = rows

	// Add null return: an oracle's synthesized value may always fail to
	// conform, in which case the call yields null with an error
	// annotation rather than a type-check failure.
	if _, ok := returnType.(*ast.TypeUnary); !ok {
		returnType = ast.NewTypeUnary(pos, ast.TOptional, returnType)
	}

	return object.NewFunction(rt, env, params, returnType, inv), nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// invoker is the object.Invoker backing an oracle MFunction: each call
// builds a prompt from the function's schemas, task and few-shot
// examples, consults backend, and parses the resulting completion back
// into a value.
type invoker struct {
	rt      object.Runtime
	env     *object.Environment
	params  []ast.Param
	outType ast.TypeExpr
	task    string

	inputSchema      string
	outputSchema     string
	outputSchemaDict map[string]any
	outputGrammar    string

	examples [][]object.MObject
	backend  Backend
}

func (o *invoker) prepareTask() string {
	if o.task != "" {
		return o.task
	}
	return defaultTask
}

func (o *invoker) prepareInput(args []object.MObject) string {
	data := make(map[string]object.MObject, len(o.params))
	for i, p := range o.params {
		if i < len(args) {
			data[p.Name] = args[i]
		}
	}
	return o.rt.PrintValue(object.NewValue(data))
}

// validateExamples checks the few-shot examples literal against the
// declared parameter and return types, mirroring oracle.py's
// validate_examples.
func (o *invoker) validateExamples(examples object.MObject) ([][]object.MObject, error) {
	if examples == nil || object.IsNull(examples) {
		return nil, nil
	}
	mv, ok := examples.(*object.MValue)
	if !ok {
		return nil, fmt.Errorf("the examples must be of type [[Any]]")
	}
	rows, ok := mv.Value.([]object.MObject)
	if !ok {
		return nil, fmt.Errorf("the examples must be of type [[Any]]")
	}

	length := len(o.params) + 1
	intypes := make([]*object.MType, len(o.params))
	for i, p := range o.params {
		intypes[i] = object.NewType(p.Type, o.env)
	}
	outtype := object.NewType(o.outType, o.env)

	out := make([][]object.MObject, len(rows))
	for i, row := range rows {
		rv, ok := row.(*object.MValue)
		var cols []object.MObject
		if ok {
			cols, ok = rv.Value.([]object.MObject)
		}
		if !ok || len(cols) != length {
			return nil, fmt.Errorf("each example must be an array of length %d, but found %s", length, o.rt.PrintValue(row))
		}
		for n := range o.params {
			if !o.rt.CheckType(cols[n], intypes[n]) {
				return nil, fmt.Errorf("expected value of type %q but found: %s", o.rt.PrintValue(intypes[n]), o.rt.PrintValue(cols[n]))
			}
		}
		if !o.rt.CheckType(cols[length-1], outtype) {
			return nil, fmt.Errorf("expected output value of type %q but found: %s", o.rt.PrintValue(outtype), o.rt.PrintValue(cols[length-1]))
		}
		out[i] = cols
	}
	return out, nil
}

func (o *invoker) prepareExamples() string {
	task := o.prepareTask()
	var body string
	for _, row := range o.examples {
		input := o.prepareInput(row[:len(row)-1])
		output := o.rt.PrintValue(row[len(row)-1])
		body += fmt.Sprintf(example, task, input, output)
	}
	return body
}

func (o *invoker) Invoke(args []object.MObject) (object.MObject, error) {
	prompt := fmt.Sprintf(header, o.inputSchema, o.outputSchema)
	prompt += o.prepareExamples()
	prompt += fmt.Sprintf(query, o.prepareTask(), o.prepareInput(args))

	code, err := Consult(o.backend, prompt, o.outputGrammar, o.outputSchemaDict)
	if err != nil {
		v := object.Null()
		v.SetAnnotation(err.Error())
		return v, nil
	}

	result, err := o.rt.EvalSource(code)
	if err != nil {
		v := object.Null()
		v.SetAnnotation(fmt.Sprintf("error: could not parse oracle output: %s", err))
		return v, nil
	}
	if !o.rt.CheckType(result, object.NewType(o.outType, o.env)) {
		v := object.Null()
		v.SetAnnotation(fmt.Sprintf("error: oracle output does not match the declared output type: %s", o.rt.PrintValue(result)))
		return v, nil
	}
	return result, nil
}
