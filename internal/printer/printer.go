// Package printer renders MindScript source trees and runtime values
// back into MindScript source text, mirroring
// _examples/original_source/src/mindscript/printer.py. It backs the
// diagnostics interp.Interpreter raises on type mismatches and the
// `print`/`str` built-ins.
package printer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/token"
)

const (
	tabLen   = 4
	maxDepth = 4
	lineLen  = 80
)

var (
	runsOfSpaces = regexp.MustCompile(` +`)
	spaceBefore  = regexp.MustCompile(` (\]|\)|\})`)
	spaceAfter   = regexp.MustCompile(`(\[|\(|\{) `)
)

// Printer is stateful only in its current indent depth, matching the
// original's reset-between-calls discipline.
type Printer struct {
	indent int
	prefix string
}

// New creates a Printer at indent depth zero.
func New() *Printer { return &Printer{} }

func (p *Printer) incr() {
	p.indent++
	p.prefix = strings.Repeat(" ", p.indent*tabLen)
}

func (p *Printer) decr() {
	p.indent--
	p.prefix = strings.Repeat(" ", p.indent*tabLen)
}

func (p *Printer) remainingLineSpace() int {
	return lineLen - p.indent*tabLen
}

func (p *Printer) isMaxDepth() bool { return p.indent >= maxDepth }

func shorten(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = runsOfSpaces.ReplaceAllString(s, " ")
	s = spaceBefore.ReplaceAllString(s, "$1")
	s = spaceAfter.ReplaceAllString(s, "$1")
	return s
}

func (p *Printer) shortenIfPossible(long string) string {
	short := shorten(long)
	if len(short) < p.remainingLineSpace() {
		return short
	}
	return long
}

// PrintSource renders an AST expression as MindScript source.
func (p *Printer) PrintSource(e ast.Expr) string {
	out, _ := e.Accept(p)
	return p.shortenIfPossible(fmt.Sprintf("%v", out))
}

// PrintValue renders a runtime MObject as MindScript source, satisfying
// object.Printer.
func (p *Printer) PrintValue(value object.MObject) string {
	return p.shortenIfPossible(p.printValue(value))
}

func (p *Printer) printValue(value object.MObject) string {
	switch v := value.(type) {
	case *object.MValue:
		switch val := v.Value.(type) {
		case nil:
			return "null"
		case string:
			return strconv.Quote(val)
		case int64:
			return strconv.FormatInt(val, 10)
		case float64:
			return strconv.FormatFloat(val, 'g', -1, 64)
		case bool:
			if val {
				return "true"
			}
			return "false"
		case []object.MObject:
			if p.isMaxDepth() {
				return "[...]"
			}
			p.incr()
			items := make([]string, len(val))
			for i, item := range val {
				items[i] = p.prefix + p.printValue(item)
			}
			p.decr()
			return "[\n" + strings.Join(items, ",\n") + "\n" + p.prefix + "]"
		case map[string]object.MObject:
			if p.isMaxDepth() {
				return "{...}"
			}
			p.incr()
			items := make([]string, 0, len(val))
			for key, item := range val {
				items = append(items, p.prefix+strconv.Quote(key)+": "+p.printValue(item))
			}
			p.decr()
			return "{\n" + strings.Join(items, ",\n") + "\n" + p.prefix + "}"
		}
		return "null"
	case object.MFunction:
		params := v.Params()
		intypes := v.InTypes()
		items := make([]string, len(params))
		for i, param := range params {
			typeTxt, _ := intypes[i].Definition.AcceptType(p)
			items[i] = param.Name + ":" + fmt.Sprintf("%v", typeTxt)
		}
		p.incr()
		arrow := "\n" + p.prefix + " -> "
		p.decr()
		outTxt, _ := v.OutType().Definition.AcceptType(p)
		return strings.Join(items, arrow) + arrow + fmt.Sprintf("%v", outTxt)
	case *object.MType:
		txt, _ := v.Definition.AcceptType(p)
		return "type " + fmt.Sprintf("%v", txt)
	}
	return ""
}

// --- ast.Visitor: value expressions ----------------------------------

func (p *Printer) VisitProgram(n *ast.Program) (any, error) {
	var sb strings.Builder
	for _, e := range n.Statements {
		txt, _ := e.Accept(p)
		sb.WriteString(fmt.Sprintf("%v", txt))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (p *Printer) VisitAnnotation(n *ast.Annotation) (any, error) {
	return n.Value.Accept(p)
}

func (p *Printer) VisitDeclaration(n *ast.Declaration) (any, error) {
	return "let " + n.Name, nil
}

func (p *Printer) VisitAssign(n *ast.Assign) (any, error) {
	target, _ := n.Target.Accept(p)
	expr, _ := n.Value.Accept(p)
	return fmt.Sprintf("%v = %v", target, expr), nil
}

var binaryOpText = map[ast.BinaryOp]string{
	ast.BAdd: "+", ast.BSub: "-", ast.BMul: "*", ast.BDiv: "/", ast.BMod: "%",
	ast.BEq: "==", ast.BNeq: "!=", ast.BLess: "<", ast.BLessEq: "<=",
	ast.BGreater: ">", ast.BGreaterEq: ">=", ast.BAnd: "and", ast.BOr: "or",
}

func (p *Printer) VisitBinary(n *ast.Binary) (any, error) {
	left, _ := n.Left.Accept(p)
	right, _ := n.Right.Accept(p)
	return fmt.Sprintf("%v %s %v", left, binaryOpText[n.Op], right), nil
}

func (p *Printer) VisitUnary(n *ast.Unary) (any, error) {
	expr, _ := n.Operand.Accept(p)
	switch n.Op {
	case ast.UNeg:
		return fmt.Sprintf("-%v", expr), nil
	case ast.UNot:
		return fmt.Sprintf("not %v", expr), nil
	case ast.UReturn:
		return fmt.Sprintf("return(%v)", expr), nil
	case ast.UBreak:
		return fmt.Sprintf("break(%v)", expr), nil
	case ast.UContinue:
		return fmt.Sprintf("continue(%v)", expr), nil
	}
	return fmt.Sprintf("(%v)", expr), nil
}

func (p *Printer) VisitGrouping(n *ast.Grouping) (any, error) {
	if p.isMaxDepth() {
		return "(...)", nil
	}
	expr, _ := n.Inner.Accept(p)
	return fmt.Sprintf("(%v)", expr), nil
}

func (p *Printer) VisitTerminal(n *ast.Terminal) (any, error) {
	if n.IsIdent() {
		return fmt.Sprintf("%v", n.Token.Literal), nil
	}
	switch n.Token.Kind {
	case token.NULLTOK:
		return "null", nil
	case token.BOOLEAN:
		if n.Token.Literal == true {
			return "true", nil
		}
		return "false", nil
	case token.STRING:
		return strconv.Quote(fmt.Sprintf("%v", n.Token.Literal)), nil
	case token.INTEGER:
		return fmt.Sprintf("%v", n.Token.Literal), nil
	case token.NUMBER:
		return fmt.Sprintf("%v", n.Token.Literal), nil
	}
	return fmt.Sprintf("%v", n.Token.Literal), nil
}

func (p *Printer) VisitArray(n *ast.Array) (any, error) {
	p.incr()
	items := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		txt, _ := e.Accept(p)
		items[i] = p.prefix + fmt.Sprintf("%v", txt)
	}
	p.decr()
	if p.isMaxDepth() {
		return "[...]", nil
	}
	return "[\n" + strings.Join(items, ",\n") + "\n" + p.prefix + "]", nil
}

func (p *Printer) VisitMap(n *ast.Map) (any, error) {
	p.incr()
	items := make([]string, len(n.Entries))
	for i, e := range n.Entries {
		txt, _ := e.Value.Accept(p)
		items[i] = p.prefix + e.Key + ": " + fmt.Sprintf("%v", txt)
	}
	p.decr()
	if p.isMaxDepth() {
		return "{...}", nil
	}
	return "{\n" + strings.Join(items, ",\n") + "\n" + p.prefix + "}", nil
}

func (p *Printer) printChunk(exprs []ast.Expr) string {
	if p.isMaxDepth() {
		return "..."
	}
	p.incr()
	var sb strings.Builder
	for _, e := range exprs {
		txt, _ := e.Accept(p)
		sb.WriteString(p.prefix)
		sb.WriteString(fmt.Sprintf("%v", txt))
		sb.WriteString("\n")
	}
	p.decr()
	return sb.String()
}

func (p *Printer) VisitBlock(n *ast.Block) (any, error) {
	if p.isMaxDepth() {
		return "do ... end", nil
	}
	return "do\n" + p.printChunk(n.Exprs) + p.prefix + "end", nil
}

func (p *Printer) VisitConditional(n *ast.Conditional) (any, error) {
	if p.isMaxDepth() {
		return "if ... end", nil
	}
	var sb strings.Builder
	for i, branch := range n.Branches {
		cond, _ := branch.Guard.Accept(p)
		keyword := "if "
		if i > 0 {
			keyword = p.prefix + "elif "
		}
		body := branch.Result
		var exprs []ast.Expr
		if blk, ok := body.(*ast.Block); ok {
			exprs = blk.Exprs
		} else {
			exprs = []ast.Expr{body}
		}
		sb.WriteString(keyword)
		sb.WriteString(fmt.Sprintf("%v", cond))
		sb.WriteString(" then\n")
		sb.WriteString(p.printChunk(exprs))
	}
	if n.Else != nil {
		var exprs []ast.Expr
		if blk, ok := n.Else.(*ast.Block); ok {
			exprs = blk.Exprs
		} else {
			exprs = []ast.Expr{n.Else}
		}
		sb.WriteString(p.prefix)
		sb.WriteString("else\n")
		sb.WriteString(p.printChunk(exprs))
	}
	sb.WriteString(p.prefix)
	sb.WriteString("end")
	return sb.String(), nil
}

func (p *Printer) VisitFor(n *ast.For) (any, error) {
	if p.isMaxDepth() {
		return "for ... end", nil
	}
	target, _ := n.Pattern.Accept(p)
	iterator, _ := n.Iterator.Accept(p)
	body, _ := n.Body.Accept(p)
	return fmt.Sprintf("for %v in %v %v", target, iterator, body), nil
}

func (p *Printer) VisitCall(n *ast.Call) (any, error) {
	callee, _ := n.Callee.Accept(p)
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		txt, _ := a.Accept(p)
		args[i] = fmt.Sprintf("%v", txt)
	}
	return fmt.Sprintf("%v(%s)", callee, strings.Join(args, ", ")), nil
}

func (p *Printer) VisitArrayGet(n *ast.ArrayGet) (any, error) {
	obj, _ := n.Object.Accept(p)
	idx, _ := n.Index.Accept(p)
	return fmt.Sprintf("%v[%v]", obj, idx), nil
}

func (p *Printer) VisitObjectGet(n *ast.ObjectGet) (any, error) {
	obj, _ := n.Object.Accept(p)
	return fmt.Sprintf("%v.%s", obj, n.Key), nil
}

func (p *Printer) VisitArraySet(n *ast.ArraySet) (any, error) {
	obj, _ := n.Object.Accept(p)
	idx, _ := n.Index.Accept(p)
	val, _ := n.Value.Accept(p)
	return fmt.Sprintf("%v[%v] = %v", obj, idx, val), nil
}

func (p *Printer) VisitObjectSet(n *ast.ObjectSet) (any, error) {
	obj, _ := n.Object.Accept(p)
	val, _ := n.Value.Accept(p)
	return fmt.Sprintf("%v.%s = %v", obj, n.Key, val), nil
}

func (p *Printer) VisitFunction(n *ast.Function) (any, error) {
	parts := make([]string, len(n.Params))
	for i, param := range n.Params {
		typeTxt, _ := param.Type.AcceptType(p)
		parts[i] = fmt.Sprintf("%s: %v", param.Name, typeTxt)
	}
	outType, _ := n.ReturnType.AcceptType(p)
	body, _ := n.Body.Accept(p)
	keyword := "fun"
	if n.Oracle {
		keyword = "oracle"
	}
	return fmt.Sprintf("%s(%s) -> %v %v", keyword, strings.Join(parts, ", "), outType, body), nil
}

func (p *Printer) VisitTypeDefinition(n *ast.TypeDefinition) (any, error) {
	expr, _ := n.Type.AcceptType(p)
	return fmt.Sprintf("type %v", expr), nil
}

// --- ast.TypeVisitor: type expressions --------------------------------

func (p *Printer) VisitTypeAnnotation(n *ast.TypeAnnotation) (any, error) {
	return n.Type.AcceptType(p)
}

func (p *Printer) VisitTypeTerminal(n *ast.TypeTerminal) (any, error) {
	return fmt.Sprintf("%v", n.Token.Literal), nil
}

func (p *Printer) VisitTypeGrouping(n *ast.TypeGrouping) (any, error) {
	if p.isMaxDepth() {
		return "(...)", nil
	}
	expr, _ := n.Inner.AcceptType(p)
	return fmt.Sprintf("(%v)", expr), nil
}

func (p *Printer) VisitTypeUnary(n *ast.TypeUnary) (any, error) {
	expr, _ := n.Operand.AcceptType(p)
	return fmt.Sprintf("%v?", expr), nil
}

func (p *Printer) VisitTypeBinary(n *ast.TypeBinary) (any, error) {
	p.incr()
	left, _ := n.Param.AcceptType(p)
	right, _ := n.Rest.AcceptType(p)
	content := fmt.Sprintf("%v\n", left)
	content += p.prefix + fmt.Sprintf(" -> %v\n", right)
	p.decr()
	return p.shortenIfPossible(content), nil
}

func (p *Printer) VisitTypeEnum(n *ast.TypeEnum) (any, error) {
	if p.isMaxDepth() {
		return "Enum(...)", nil
	}
	items := make([]string, len(n.Values))
	for i, v := range n.Values {
		txt, _ := v.Accept(p)
		items[i] = fmt.Sprintf("%v", txt)
	}
	return "Enum[" + strings.Join(items, ", ") + "]", nil
}

func (p *Printer) VisitTypeArray(n *ast.TypeArray) (any, error) {
	if p.isMaxDepth() {
		return "[...]", nil
	}
	expr, _ := n.Element.AcceptType(p)
	return fmt.Sprintf("[%v]", expr), nil
}

func (p *Printer) VisitTypeMap(n *ast.TypeMap) (any, error) {
	if p.isMaxDepth() {
		return "{...}", nil
	}
	p.incr()
	items := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		key := f.Key
		if f.Required {
			key += "!"
		}
		txt, _ := f.Type.AcceptType(p)
		items[i] = p.prefix + key + ": " + fmt.Sprintf("%v", txt)
	}
	p.decr()
	return "{\n" + strings.Join(items, ",\n") + "\n" + p.prefix + "}", nil
}
