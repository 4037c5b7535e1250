package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/printer"
)

// coreGrammar is the fixed set of BNF terminal rules every grammar
// needs regardless of the type being constrained (spec §4.6's
// llama.cpp-grammar rule), mirroring bnf.py's GRAMMAR constant.
const coreGrammar = `
boolean     ::= "true" | "false"
string      ::=
  "\"" (
    [^"\\] |
    "\\" (["\\/bfnrt] | "u" [0-9a-fA-F] [0-9a-fA-F] [0-9a-fA-F] [0-9a-fA-F])
  )* "\""
integer     ::= "-"? ([0-9] | [1-9] [0-9]*)
number      ::= ("-"? ([0-9] | [1-9] [0-9]*)) "." [0-9]* ([eE] [-+]? [0-9]+)?
ws          ::= ([ \t\n] ws)?
identifier  ::= [_a-zA-Z] [_a-zA-Z0-9]*
`

var quoteEscape = regexp.MustCompile(`"`)

// rule is one named BNF production plus the body text of any
// sub-productions it depends on, mirroring bnf.py's BNFRule.
type rule struct {
	ID   string
	Body string
}

// BNFFormatter renders a *object.MType as a GBNF grammar constraining a
// llama.cpp completion to that type's shape.
type BNFFormatter struct {
	printer *printer.Printer
	tags    map[ast.TypeExpr]string
	next    int
}

// NewBNFFormatter creates a BNFFormatter. p is used to render enum member literals.
func NewBNFFormatter(p *printer.Printer) *BNFFormatter {
	return &BNFFormatter{printer: p}
}

func (b *BNFFormatter) tag(node ast.TypeExpr) string {
	if b.tags == nil {
		b.tags = map[ast.TypeExpr]string{}
	}
	if t, ok := b.tags[node]; ok {
		return t
	}
	b.next++
	t := fmt.Sprintf("%x", b.next)
	b.tags[node] = t
	return t
}

func (b *BNFFormatter) resolve(t ast.TypeExpr, env *object.Environment) (ast.TypeExpr, *object.Environment, error) {
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

// Format renders value's type definition as a full GBNF grammar with
// "root" as its entry rule.
func (b *BNFFormatter) Format(value *object.MType) (string, error) {
	b.tags = map[ast.TypeExpr]string{}
	b.next = 0
	r, err := b.build(value.Definition, value.Env, map[ast.TypeExpr]bool{})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("root ::= %s\n%s%s", r.ID, r.Body, coreGrammar), nil
}

func (b *BNFFormatter) build(t ast.TypeExpr, env *object.Environment, seen map[ast.TypeExpr]bool) (rule, error) {
	resolved, renv, err := b.resolve(t, env)
	if err != nil {
		return rule{}, err
	}
	t, env = resolved, renv

	switch n := t.(type) {
	case *ast.TypeTerminal:
		var term string
		switch fmt.Sprintf("%v", n.Token.Literal) {
		case "Int":
			term = "integer"
		case "Num":
			term = "number"
		case "Str":
			term = "string"
		case "Bool":
			term = "boolean"
		case "Null":
			term = `"null"`
		case "Any":
			term = `("null" | boolean | integer | number | string | array | object)`
		default:
			return rule{}, fmt.Errorf("unknown terminal type %q", n.Token.Literal)
		}
		return rule{ID: term}, nil
	case *ast.TypeUnary:
		head := "optional" + b.tag(n)
		if seen[n] {
			return rule{ID: head}, nil
		}
		seen[n] = true
		sub, err := b.build(n.Operand, env, seen)
		if err != nil {
			return rule{}, err
		}
		return rule{ID: head, Body: fmt.Sprintf("%s ::= \"null\" | %s\n%s", head, sub.ID, sub.Body)}, nil
	case *ast.TypeEnum:
		head := "enum" + b.tag(n)
		if seen[n] {
			return rule{ID: head}, nil
		}
		seen[n] = true
		subs := make([]string, len(n.Values))
		for i, e := range n.Values {
			txt := b.printer.PrintSource(e)
			txt = `"` + quoteEscape.ReplaceAllString(txt, `\"`) + `"`
			subs[i] = txt
		}
		return rule{ID: head, Body: fmt.Sprintf("%s ::= %s\n", head, strings.Join(subs, "| "))}, nil
	case *ast.TypeArray:
		head := "array" + b.tag(n)
		if seen[n] {
			return rule{ID: head}, nil
		}
		seen[n] = true
		sub, err := b.build(n.Element, env, seen)
		if err != nil {
			return rule{}, err
		}
		body := fmt.Sprintf("%s ::= \"[\" ws (%s)? (ws \",\" ws %s)* ws \"]\"\n%s", head, sub.ID, sub.ID, sub.Body)
		return rule{ID: head, Body: body}, nil
	case *ast.TypeMap:
		head := "object" + b.tag(n)
		if seen[n] {
			return rule{ID: head}, nil
		}
		seen[n] = true
		var items strings.Builder
		var bodies strings.Builder
		for i, f := range n.Fields {
			sub, err := b.build(f.Type, env, seen)
			if err != nil {
				return rule{}, err
			}
			if i == 0 {
				fmt.Fprintf(&items, `"{" ws "\"%s\"" ws ":" ws %s`, f.Key, sub.ID)
			} else {
				fmt.Fprintf(&items, ` ws "," ws "\"%s\"" ws ":" ws %s`, f.Key, sub.ID)
			}
			bodies.WriteString(sub.Body)
		}
		items.WriteString(` ws "}"`)
		body := fmt.Sprintf("%s ::= ( %s )\n%s", head, items.String(), bodies.String())
		return rule{ID: head, Body: body}, nil
	case *ast.TypeBinary:
		return rule{}, fmt.Errorf("BNF grammars for function types are not supported")
	}
	return rule{}, fmt.Errorf("unknown type expression %T", t)
}
