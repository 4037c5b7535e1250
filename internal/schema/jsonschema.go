// Package schema renders MindScript structural types as JSON Schema
// documents and as BNF grammars, mirroring
// _examples/original_source/src/mindscript/schema.py and bnf.py. Both
// outputs feed oracle functions (spec §4.6): the JSON Schemas are
// embedded in every oracle prompt and the output schema constrains an
// Ollama backend's `format` field (the OpenAI backend does not send it);
// the BNF grammar constrains a llama.cpp backend's sampler.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/types"
	"github.com/tidwall/pretty"
)

// JSONSchema renders a *object.MType as a JSON Schema object tree.
type JSONSchema struct{}

// New creates a JSONSchema renderer.
func New() *JSONSchema { return &JSONSchema{} }

// DictSchema walks value's type definition into a plain Go value tree
// suitable for json.Marshal (a map[string]any / []any / string shape).
func (j *JSONSchema) DictSchema(value *object.MType) (any, error) {
	visited := map[ast.TypeExpr]bool{value.Definition: true}
	return j.build(value.Definition, value.Env, visited)
}

// PrintSchema renders value's type definition as indented JSON text.
func (j *JSONSchema) PrintSchema(value *object.MType) (string, error) {
	dict, err := j.DictSchema(value)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(dict)
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty(raw)), nil
}

func (j *JSONSchema) resolveRef(name string, env *object.Environment, visited map[ast.TypeExpr]bool) (ast.TypeExpr, *object.Environment, error) {
	v, err := env.Get(name)
	if err != nil {
		return nil, nil, fmt.Errorf("unknown type %q", name)
	}
	mt, ok := v.(*object.MType)
	if !ok {
		return nil, nil, fmt.Errorf("the value %q is not a type", name)
	}
	if visited[mt.Definition] {
		return nil, nil, fmt.Errorf("recursive types such as %q are not allowed", name)
	}
	visited[mt.Definition] = true
	return mt.Definition, mt.Env, nil
}

func (j *JSONSchema) build(t ast.TypeExpr, env *object.Environment, visited map[ast.TypeExpr]bool) (map[string]any, error) {
	switch n := t.(type) {
	case *ast.TypeAnnotation:
		obj, err := j.build(n.Type, env, visited)
		if err != nil {
			return nil, err
		}
		obj["description"] = n.Text
		return obj, nil
	case *ast.TypeGrouping:
		return j.build(n.Inner, env, visited)
	case *ast.TypeTerminal:
		if n.IsIdent() {
			name := fmt.Sprintf("%v", n.Token.Literal)
			resolved, renv, err := j.resolveRef(name, env, visited)
			if err != nil {
				return nil, err
			}
			return j.build(resolved, renv, visited)
		}
		obj := map[string]any{}
		switch fmt.Sprintf("%v", n.Token.Literal) {
		case "Int":
			obj["type"] = "integer"
		case "Num":
			obj["type"] = "number"
		case "Str":
			obj["type"] = "string"
		case "Bool":
			obj["type"] = "boolean"
		case "Null":
			obj["type"] = "null"
		case "Any":
			obj["type"] = []string{"array", "boolean", "number", "null", "object", "string"}
		default:
			return nil, fmt.Errorf("unknown type %q", n.Token.Literal)
		}
		return obj, nil
	case *ast.TypeUnary:
		obj, err := j.build(n.Operand, env, visited)
		if err != nil {
			return nil, err
		}
		switch tv := obj["type"].(type) {
		case string:
			obj["type"] = []string{tv, "null"}
		case []string:
			found := false
			for _, s := range tv {
				if s == "null" {
					found = true
				}
			}
			if !found {
				obj["type"] = append(tv, "null")
			}
		}
		return obj, nil
	case *ast.TypeEnum:
		values := make([]any, len(n.Values))
		for i, e := range n.Values {
			mo, err := types.EvalLiteral(e)
			if err != nil {
				return nil, err
			}
			v, err := object.Unwrap(mo, false)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return map[string]any{"enum": values}, nil
	case *ast.TypeArray:
		items, err := j.build(n.Element, env, visited)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil
	case *ast.TypeMap:
		required := []string{}
		properties := map[string]any{}
		for _, f := range n.Fields {
			if f.Required {
				required = append(required, f.Key)
			}
			prop, err := j.build(f.Type, env, visited)
			if err != nil {
				return nil, err
			}
			properties[f.Key] = prop
		}
		return map[string]any{
			"type":       "object",
			"required":   required,
			"properties": properties,
		}, nil
	case *ast.TypeBinary:
		return nil, fmt.Errorf("JSON schemas for function types are not supported")
	}
	return nil, fmt.Errorf("unknown type expression %T", t)
}
