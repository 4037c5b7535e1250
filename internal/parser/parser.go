// Package parser implements MindScript's recursive-descent parser,
// turning a token stream from internal/lexer into the Expr/TypeExpr
// trees defined by internal/ast.
//
// The grammar below is the authoritative reference for this file; every
// parseX method corresponds to one production.
//
//	program     ::= chunk EOF
//	chunk       ::= expression*
//	expression  ::= ANNOTATION? "return" "(" expression ")"
//	              | ANNOTATION? "break" "(" expression ")"
//	              | ANNOTATION? "continue" "(" expression ")"
//	              | ANNOTATION? assignment
//	assignment  ::= disjunction "=" expression | disjunction
//	disjunction ::= conjunction ("or" conjunction)*
//	conjunction ::= equality ("and" equality)*
//	equality    ::= comparison (("=="|"!=") comparison)*
//	comparison  ::= term (("<"|"<="|">"|">=") term)*
//	term        ::= factor (("+"|"-") factor)*
//	factor      ::= unary (("*"|"/"|"%") unary)*
//	unary       ::= ("not"|"-") call | call
//	call        ::= primary ( "(" expression* ")" | "." ID | "[" expression "]" )*
//	primary     ::= INTEGER | NUMBER | STRING | BOOLEAN | NULL | array | map |
//	                type | function | oracle | target | "(" expression ")" |
//	                block | conditional | for
//	array       ::= "[" (expression ("," expression)*)? "]"
//	map         ::= "{" (item ("," item)*)? "}"
//	item        ::= ANNOTATION? key ":" expression
//	key         ::= STRING | IDENT
//	block       ::= "do" chunk "end"
//	conditional ::= "if" expression "then" chunk
//	                ("elif" expression "then" chunk)* ("else" chunk)? "end"
//	for         ::= "for" expression "in" expression block
//	target      ::= ID | declaration
//	declaration ::= "let" ID
//	function    ::= ("fun"|"oracle") "(" parameter* ")"
//	                ("->" type_expr)? (block | ("from" array)?)
//	parameter   ::= ANNOTATION? ID (":" type_expr)?
//	type        ::= "type" type_expr
//	type_expr   ::= ANNOTATION? type_binary
//	type_binary ::= type_unary "->" type_expr | type_unary
//	type_unary  ::= type_prim "?" | type_prim
//	type_prim   ::= ID | TYPENAME | Enum array | "[" type_expr "]" |
//	                "{" type_item* "}" | "(" type_expr ")"
//	type_item   ::= ANNOTATION? key ("!" | "?")? ":" type_expr
package parser

import (
	"fmt"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
	"github.com/DAIOS-AI/mindscript/internal/token"
)

// SyntaxError is returned for a malformed but complete program; its
// message carries the source position of the first offending token.
type SyntaxError struct{ Msg string }

func (e *SyntaxError) Error() string { return e.Msg }

// IncompleteExpression signals that, in interactive mode, the token
// stream ended mid-production — the REPL should read another line and
// retry rather than report a hard syntax error.
type IncompleteExpression struct{}

func (e *IncompleteExpression) Error() string { return "incomplete expression" }

// Parser consumes a token slice produced by one lexer.Scan call.
type Parser struct {
	lex         *lexer.Lexer
	interactive bool

	tokens  []token.Token
	current int
	errored bool
}

// New creates a Parser that reports lexical positions through lex.
func New(lex *lexer.Lexer, interactive bool) *Parser {
	return &Parser{lex: lex, interactive: interactive}
}

// Parse scans code appended to the named buffer and parses it into a
// Program. It returns (nil, *IncompleteExpression) when interactive mode
// is on and the input ends mid-expression, so the caller can re-prompt
// and call Parse again with more code appended to the same buffer.
func (p *Parser) Parse(code, buffer string) (*ast.Program, error) {
	p.tokens = nil
	p.current = 0
	p.errored = false

	tokens, err := p.lex.Scan(code, buffer)
	if err != nil {
		if _, incomplete := err.(*lexer.IncompleteExpression); incomplete && p.interactive {
			return nil, &IncompleteExpression{}
		}
		return nil, &SyntaxError{Msg: err.Error()}
	}
	p.tokens = tokens
	return p.parseProgram()
}

func (p *Parser) isAtEnd() bool  { return p.tokens[p.current].Kind == token.EOF }
func (p *Parser) peek() token.Token { return p.tokens[p.current] }
func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}
func (p *Parser) check(k token.Kind) bool {
	return !p.isAtEnd() && p.tokens[p.current].Kind == k
}
func (p *Parser) advance() token.Token {
	t := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return t
}
func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) fail(tok token.Token, msg string) error {
	p.errored = true
	return &SyntaxError{Msg: fmt.Sprintf("%s: %s", tok.Pos.String(), msg)}
}

func (p *Parser) consume(k token.Kind, failMsg string) (token.Token, error) {
	if p.interactive && p.isAtEnd() {
		return token.Token{}, &IncompleteExpression{}
	}
	if p.isAtEnd() || !p.check(k) {
		return token.Token{}, p.fail(p.peek(), failMsg)
	}
	return p.advance(), nil
}

// synchronize discards tokens through the next line boundary after a
// syntax error, so parse_program can keep collecting further errors
// instead of aborting on the first one.
func (p *Parser) synchronize() {
	tok := p.peek()
	lineBefore, _ := p.lex.LineCol(tok.Pos.Buffer, tok.Pos.Index)
	for !p.isAtEnd() {
		p.advance()
		tok = p.peek()
		lineCurrent, _ := p.lex.LineCol(tok.Pos.Buffer, tok.Pos.Index)
		if !p.isAtEnd() && lineBefore < lineCurrent {
			return
		}
	}
}

func anyTypeTerminal(pos token.Position) *ast.TypeTerminal {
	return ast.NewTypeTerminal(pos, token.Token{Kind: token.TYPENAME, Literal: "Any", Pos: pos})
}

func nullTypeTerminal(pos token.Position) *ast.TypeTerminal {
	return ast.NewTypeTerminal(pos, token.Token{Kind: token.TYPENAME, Literal: "Null", Pos: pos})
}

func nullTerminal(pos token.Position) *ast.Terminal {
	return ast.NewTerminal(pos, token.Token{Kind: token.NULLTOK, Literal: nil, Pos: pos})
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	start := p.peek().Pos
	var statements []ast.Expr
	var firstErr error
	for !p.isAtEnd() {
		expr, err := p.parseExpression()
		if err != nil {
			if _, incomplete := err.(*IncompleteExpression); incomplete {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
			p.synchronize()
			continue
		}
		statements = append(statements, expr)
	}
	if firstErr != nil {
		return nil, &SyntaxError{Msg: "the code contains errors: " + firstErr.Error()}
	}
	return ast.NewProgram(start, statements), nil
}

func (p *Parser) parseExpression() (ast.Expr, error) {
	var annotationTok *token.Token
	if p.match(token.ANNOTATION) {
		t := p.previous()
		annotationTok = &t
	}

	var expr ast.Expr
	var err error
	if p.match(token.RETURN, token.BREAK, token.CONTINUE) {
		op := p.previous()
		if _, cErr := p.consume(token.LPAREN_CLOSED, fmt.Sprintf("expected '(' after '%s'", op.Lexeme())); cErr != nil {
			return nil, cErr
		}
		inner, iErr := p.parseExpression()
		if iErr != nil {
			return nil, iErr
		}
		if _, cErr := p.consume(token.RPAREN, "expected closing ')' after expression"); cErr != nil {
			return nil, cErr
		}
		var uop ast.UnaryOp
		switch op.Kind {
		case token.RETURN:
			uop = ast.UReturn
		case token.BREAK:
			uop = ast.UBreak
		case token.CONTINUE:
			uop = ast.UContinue
		}
		expr = ast.NewUnary(op.Pos, uop, inner)
	} else {
		expr, err = p.parseAssignment()
		if err != nil {
			return nil, err
		}
	}

	if annotationTok != nil {
		return ast.NewAnnotation(annotationTok.Pos, annotationTok.Lexeme(), expr), nil
	}
	return expr, nil
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	target, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if !p.match(token.ASSIGN) {
		return target, nil
	}
	op := p.previous()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case *ast.Terminal:
		if t.IsIdent() {
			return ast.NewAssign(op.Pos, t, value), nil
		}
	case *ast.Declaration:
		return ast.NewAssign(op.Pos, t, value), nil
	case *ast.ArrayGet:
		setter := ast.NewArraySet(t.Pos(), t.Object, t.Index, value)
		return ast.NewAssign(op.Pos, setter, value), nil
	case *ast.ObjectGet:
		setter := ast.NewObjectSet(t.Pos(), t.Object, t.Key, value)
		return ast.NewAssign(op.Pos, setter, value), nil
	case *ast.Array:
		return ast.NewAssign(op.Pos, t, value), nil
	case *ast.Map:
		return ast.NewAssign(op.Pos, t, value), nil
	}
	return nil, p.fail(op, "invalid assignment target")
}

func (p *Parser) binaryChain(next func() (ast.Expr, error), ops map[token.Kind]ast.BinaryOp) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		binOp, ok := ops[tok.Kind]
		if !ok || p.isAtEnd() {
			break
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(tok.Pos, binOp, left, right)
	}
	return left, nil
}

func (p *Parser) parseDisjunction() (ast.Expr, error) {
	return p.binaryChain(p.parseConjunction, map[token.Kind]ast.BinaryOp{token.OR: ast.BOr})
}

func (p *Parser) parseConjunction() (ast.Expr, error) {
	return p.binaryChain(p.parseEquality, map[token.Kind]ast.BinaryOp{token.AND: ast.BAnd})
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.binaryChain(p.parseComparison, map[token.Kind]ast.BinaryOp{
		token.EQ: ast.BEq, token.NEQ: ast.BNeq,
	})
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.binaryChain(p.parseTerm, map[token.Kind]ast.BinaryOp{
		token.LESS: ast.BLess, token.LESS_EQ: ast.BLessEq,
		token.GREATER: ast.BGreater, token.GREATER_EQ: ast.BGreaterEq,
	})
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	return p.binaryChain(p.parseFactor, map[token.Kind]ast.BinaryOp{
		token.PLUS: ast.BAdd, token.MINUS: ast.BSub,
	})
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	return p.binaryChain(p.parseUnary, map[token.Kind]ast.BinaryOp{
		token.STAR: ast.BMul, token.SLASH: ast.BDiv, token.PERCENT: ast.BMod,
	})
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.match(token.MINUS, token.NOT) {
		op := p.previous()
		operand, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		uop := ast.UNeg
		if op.Kind == token.NOT {
			uop = ast.UNot
		}
		return ast.NewUnary(op.Pos, uop, operand), nil
	}
	return p.parseCall()
}

func (p *Parser) parseCall() (ast.Expr, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.match(token.LPAREN_CLOSED, token.PERIOD, token.LBRACK_CLOSED) {
		op := p.previous()
		switch op.Kind {
		case token.LPAREN_CLOSED:
			var args []ast.Expr
			if !p.check(token.RPAREN) {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				for p.match(token.COMMA) {
					arg, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
				}
			}
			if _, err := p.consume(token.RPAREN, "expected closing ')'"); err != nil {
				return nil, err
			}
			if len(args) == 0 {
				args = append(args, nullTerminal(op.Pos))
			}
			primary = ast.NewCall(op.Pos, primary, args)
		case token.LBRACK_CLOSED:
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACK, "expected closing ']'"); err != nil {
				return nil, err
			}
			primary = ast.NewArrayGet(op.Pos, primary, index)
		case token.PERIOD:
			if !p.match(token.IDENT, token.STRING) {
				return nil, p.fail(op, "expected a property name")
			}
			keyTok := p.previous()
			primary = ast.NewObjectGet(op.Pos, primary, fmt.Sprintf("%v", keyTok.Literal))
		}
	}
	return primary, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	if p.match(token.IDENT, token.INTEGER, token.NUMBER, token.STRING, token.BOOLEAN, token.NULLTOK) {
		tok := p.previous()
		return ast.NewTerminal(tok.Pos, tok), nil
	}
	if p.match(token.TYPENAME, token.ENUM) {
		return nil, p.fail(p.previous(), "type atom without a type constructor")
	}
	switch {
	case p.check(token.LBRACK) || p.check(token.LBRACK_CLOSED):
		return p.parseArray()
	case p.check(token.LBRACE):
		return p.parseMap()
	case p.check(token.TYPECONS):
		return p.parseTypeDef()
	case p.check(token.DO):
		return p.parseBlock()
	case p.check(token.IF):
		return p.parseConditional()
	case p.check(token.FOR):
		return p.parseFor()
	case p.check(token.FUN) || p.check(token.ORACLE):
		return p.parseFunction()
	}
	if p.match(token.LPAREN, token.LPAREN_CLOSED) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return ast.NewGrouping(expr.Pos(), expr), nil
	}
	if p.check(token.IDENT) || p.check(token.LET) {
		return p.parseTarget()
	}
	if k := p.peek().Kind; k == token.RETURN || k == token.BREAK || k == token.CONTINUE {
		return nil, p.fail(p.peek(), fmt.Sprintf("invalid '%s' expression", p.peek().Lexeme()))
	}
	if p.check(token.EOF) && p.interactive {
		return nil, &IncompleteExpression{}
	}
	return nil, p.fail(p.peek(), "expected an expression")
}

func (p *Parser) parseArray() (*ast.Array, error) {
	if !p.match(token.LBRACK, token.LBRACK_CLOSED) {
		return nil, p.fail(p.peek(), "expected an array expression")
	}
	start := p.previous().Pos
	if p.match(token.RBRACK) {
		return ast.NewArray(start, nil), nil
	}
	var elems []ast.Expr
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	elems = append(elems, expr)
	for p.match(token.COMMA) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, expr)
	}
	if _, err := p.consume(token.RBRACK, "expected closing ']' after list of expressions"); err != nil {
		return nil, err
	}
	return ast.NewArray(start, elems), nil
}

func (p *Parser) parseMap() (*ast.Map, error) {
	start, err := p.consume(token.LBRACE, "expected opening '{'")
	if err != nil {
		return nil, err
	}
	if p.match(token.RBRACE) {
		return ast.NewMap(start.Pos, nil), nil
	}
	var entries []ast.MapEntry
	entry, err := p.parseMapItem()
	if err != nil {
		return nil, err
	}
	entries = append(entries, entry)
	for p.match(token.COMMA) {
		entry, err := p.parseMapItem()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if _, err := p.consume(token.RBRACE, "expected closing '}' after list of members"); err != nil {
		return nil, err
	}
	return ast.NewMap(start.Pos, entries), nil
}

func (p *Parser) parseMapItem() (ast.MapEntry, error) {
	var annotationTok *token.Token
	if p.match(token.ANNOTATION) {
		t := p.previous()
		annotationTok = &t
	}
	key, err := p.parseKey()
	if err != nil {
		return ast.MapEntry{}, err
	}
	if _, err := p.consume(token.COLON, "expected ':' after member key"); err != nil {
		return ast.MapEntry{}, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return ast.MapEntry{}, err
	}
	if annotationTok != nil {
		value = ast.NewAnnotation(annotationTok.Pos, annotationTok.Lexeme(), value)
	}
	return ast.MapEntry{Key: key, Value: value}, nil
}

func (p *Parser) parseKey() (string, error) {
	if p.match(token.IDENT) {
		return fmt.Sprintf("%v", p.previous().Literal), nil
	}
	if p.match(token.STRING) {
		return fmt.Sprintf("%v", p.previous().Literal), nil
	}
	if p.check(token.EOF) && p.interactive {
		return "", &IncompleteExpression{}
	}
	return "", p.fail(p.peek(), "expected a member key")
}

func (p *Parser) parseChunkUntil(ends ...token.Kind) (*ast.Block, error) {
	start := p.peek().Pos
	var exprs []ast.Expr
	for {
		if p.isAtEnd() {
			break
		}
		done := false
		for _, e := range ends {
			if p.peek().Kind == e {
				done = true
				break
			}
		}
		if done {
			break
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return ast.NewBlock(start, exprs), nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	if _, err := p.consume(token.DO, "expected 'do' keyword"); err != nil {
		return nil, err
	}
	block, err := p.parseChunkUntil(token.END)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.END, "expected 'end' keyword"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseConditional() (ast.Expr, error) {
	if !p.match(token.IF) {
		return nil, p.fail(p.peek(), "expected 'if'")
	}
	start := p.previous().Pos
	var branches []ast.ConditionalBranch

	guard, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.THEN, "expected 'then' after condition"); err != nil {
		return nil, err
	}
	result, err := p.parseChunkUntil(token.END, token.ELIF, token.ELSE)
	if err != nil {
		return nil, err
	}
	branches = append(branches, ast.ConditionalBranch{Guard: guard, Result: result})

	for p.match(token.ELIF) {
		guard, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.THEN, "expected 'then' after condition"); err != nil {
			return nil, err
		}
		result, err := p.parseChunkUntil(token.END, token.ELIF, token.ELSE)
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.ConditionalBranch{Guard: guard, Result: result})
	}

	var elseExpr ast.Expr
	if p.match(token.ELSE) {
		elseExpr, err = p.parseChunkUntil(token.END)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.END, "expected closing 'end' after conditional expression"); err != nil {
		return nil, err
	}
	return ast.NewConditional(start, branches, elseExpr), nil
}

func (p *Parser) parseFor() (ast.Expr, error) {
	if !p.match(token.FOR) {
		return nil, p.fail(p.peek(), "expected 'for'")
	}
	start := p.previous().Pos
	pattern, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.IN, "expected 'in' keyword"); err != nil {
		return nil, err
	}
	iterator, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(start, pattern, iterator, body), nil
}

func (p *Parser) parseFunction() (ast.Expr, error) {
	if !p.match(token.FUN, token.ORACLE) {
		return nil, p.fail(p.peek(), "expected 'fun' or 'oracle'")
	}
	op := p.previous()
	oracle := op.Kind == token.ORACLE

	if _, err := p.consume(token.LPAREN_CLOSED, fmt.Sprintf("expected '(' after '%s' keyword", op.Lexeme())); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.check(token.RPAREN) {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		for p.match(token.COMMA) {
			param, err := p.parseParameter()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
		}
	}
	if _, err := p.consume(token.RPAREN, "expected closing ')' after function parameters"); err != nil {
		return nil, err
	}
	if len(params) == 0 {
		params = append(params, ast.Param{Name: "_", Type: nullTypeTerminal(op.Pos)})
	}

	var returnType ast.TypeExpr
	var err error
	if p.match(token.ARROW) {
		returnType, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	} else {
		returnType = anyTypeTerminal(op.Pos)
	}

	var body ast.Expr
	var examples ast.Expr
	if !oracle {
		body, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	} else if p.match(token.FROM) {
		examples, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	} else {
		examples = ast.NewArray(op.Pos, nil)
	}

	return ast.NewFunction(op.Pos, params, returnType, body, oracle, examples), nil
}

func (p *Parser) parseParameter() (ast.Param, error) {
	var annotationTok *token.Token
	if p.match(token.ANNOTATION) {
		t := p.previous()
		annotationTok = &t
	}
	nameTok, err := p.consume(token.IDENT, "expected a parameter name")
	if err != nil {
		return ast.Param{}, err
	}

	var ptype ast.TypeExpr
	if p.match(token.COLON) {
		ptype, err = p.parseTypeExpr()
		if err != nil {
			return ast.Param{}, err
		}
		if tb, ok := ptype.(*ast.TypeBinary); ok {
			ptype = ast.NewTypeGrouping(tb.Pos(), tb)
		}
	} else {
		ptype = anyTypeTerminal(p.previous().Pos)
	}
	if annotationTok != nil {
		ptype = ast.NewTypeAnnotation(annotationTok.Pos, annotationTok.Lexeme(), ptype)
	}
	return ast.Param{Name: fmt.Sprintf("%v", nameTok.Literal), Type: ptype}, nil
}

func (p *Parser) parseTarget() (ast.Expr, error) {
	if p.match(token.IDENT) {
		tok := p.previous()
		return ast.NewTerminal(tok.Pos, tok), nil
	}
	return p.parseDeclaration()
}

func (p *Parser) parseDeclaration() (ast.Expr, error) {
	if !p.match(token.LET) {
		return nil, p.fail(p.peek(), "invalid expression")
	}
	op := p.previous()
	nameTok, err := p.consume(token.IDENT, "expected an identifier")
	if err != nil {
		return nil, err
	}
	return ast.NewDeclaration(op.Pos, fmt.Sprintf("%v", nameTok.Literal)), nil
}

func (p *Parser) parseTypeDef() (ast.Expr, error) {
	if !p.match(token.TYPECONS) {
		return nil, p.fail(p.peek(), "expected 'type'")
	}
	op := p.previous()
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewTypeDefinition(op.Pos, typ), nil
}

func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	if p.match(token.ANNOTATION) {
		op := p.previous()
		inner, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewTypeAnnotation(op.Pos, op.Lexeme(), inner), nil
	}
	return p.parseTypeBinary()
}

func (p *Parser) parseTypeBinary() (ast.TypeExpr, error) {
	left, err := p.parseTypeUnary()
	if err != nil {
		return nil, err
	}
	if !p.match(token.ARROW) {
		return left, nil
	}
	rest, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	for {
		if g, ok := rest.(*ast.TypeGrouping); ok {
			rest = g.Inner
			continue
		}
		break
	}
	return ast.NewTypeBinary(left.Pos(), left, rest), nil
}

func (p *Parser) parseTypeUnary() (ast.TypeExpr, error) {
	inner, err := p.parseTypePrim()
	if err != nil {
		return nil, err
	}
	if p.match(token.QUESTION) {
		return ast.NewTypeUnary(inner.Pos(), ast.TOptional, inner), nil
	}
	return inner, nil
}

func (p *Parser) parseTypePrim() (ast.TypeExpr, error) {
	if p.match(token.IDENT, token.TYPENAME) {
		tok := p.previous()
		return ast.NewTypeTerminal(tok.Pos, tok), nil
	}
	if p.check(token.ENUM) {
		return p.parseTypeEnum()
	}
	if p.check(token.LBRACK) || p.check(token.LBRACK_CLOSED) {
		return p.parseTypeArray()
	}
	if p.check(token.LBRACE) {
		return p.parseTypeMap()
	}
	if p.match(token.LPAREN, token.LPAREN_CLOSED) {
		expr, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "expected ')' after type expression"); err != nil {
			return nil, err
		}
		return ast.NewTypeGrouping(expr.Pos(), expr), nil
	}
	if p.check(token.EOF) && p.interactive {
		return nil, &IncompleteExpression{}
	}
	return nil, p.fail(p.peek(), "expected a type expression")
}

func (p *Parser) parseTypeEnum() (ast.TypeExpr, error) {
	if !p.match(token.ENUM) {
		return nil, p.fail(p.peek(), "expected an Enum expression")
	}
	op := p.previous()
	if p.check(token.EOF) && p.interactive {
		return nil, &IncompleteExpression{}
	}
	if !p.check(token.LBRACK) && !p.check(token.LBRACK_CLOSED) {
		return nil, p.fail(p.peek(), "expected an array after Enum")
	}
	arr, err := p.parseArray()
	if err != nil {
		return nil, err
	}
	return ast.NewTypeEnum(op.Pos, arr.Elements), nil
}

func (p *Parser) parseTypeArray() (ast.TypeExpr, error) {
	if !p.match(token.LBRACK, token.LBRACK_CLOSED) {
		return nil, p.fail(p.peek(), "expected '['")
	}
	start := p.previous().Pos
	elem, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RBRACK, "expected closing ']' after type expression"); err != nil {
		return nil, err
	}
	return ast.NewTypeArray(start, elem), nil
}

func (p *Parser) parseTypeMap() (ast.TypeExpr, error) {
	start, err := p.consume(token.LBRACE, "expected opening '{'")
	if err != nil {
		return nil, err
	}
	if p.match(token.RBRACE) {
		return ast.NewTypeMap(start.Pos, nil), nil
	}
	var fields []ast.TypeMapField
	field, err := p.parseTypeItem()
	if err != nil {
		return nil, err
	}
	fields = append(fields, field)
	for p.match(token.COMMA) {
		field, err := p.parseTypeItem()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	if _, err := p.consume(token.RBRACE, "expected closing '}' after list of members"); err != nil {
		return nil, err
	}
	return ast.NewTypeMap(start.Pos, fields), nil
}

func (p *Parser) parseTypeItem() (ast.TypeMapField, error) {
	var annotationTok *token.Token
	if p.match(token.ANNOTATION) {
		t := p.previous()
		annotationTok = &t
	}
	key, err := p.parseKey()
	if err != nil {
		return ast.TypeMapField{}, err
	}
	required := p.match(token.BANG)
	if !required {
		p.match(token.QUESTION)
	}
	if _, err := p.consume(token.COLON, "expected ':' after member key"); err != nil {
		return ast.TypeMapField{}, err
	}
	typ, err := p.parseTypeExpr()
	if err != nil {
		return ast.TypeMapField{}, err
	}
	if annotationTok != nil {
		typ = ast.NewTypeAnnotation(annotationTok.Pos, annotationTok.Lexeme(), typ)
	}
	return ast.TypeMapField{Key: key, Type: typ, Required: required}, nil
}
