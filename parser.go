// parser.go — recursive-descent parser for PAWX that produces compact
// S-expressions.
//
// OVERVIEW
// --------
// This module consumes the token stream produced by lexer.go and builds a
// compact, Lisp-style S-expression AST. Statements are parsed by recursive
// descent; expressions use precedence climbing (a Pratt loop over a binding
// power table).
//
// Design goals:
//   - Keep the grammar readable via precedence rules.
//   - Encode the AST in a tiny, serialisable structure (S-expressions).
//   - Support an "interactive" mode that surfaces *Error{Kind:DiagIncomplete}
//     at EOF instead of hard parse errors, suitable for REPLs.
//
// Nodes
// -----
// The AST is a tree of S-expressions: []any whose first element is a string
// tag. **This list is the most important reference.**
//
// Statements (each carries a trailing Pos for diagnostics):
//
//	("prog",  s1, s2, ...)                 // no Pos
//	("block", s1, s2, ...)                 // no Pos
//	("decl", name, valueExpr, pos)         // snuggle/den/lair
//	("func", name, []string params, bodyBlock, isAsync, pos)
//	("expr", e, pos)                       // expression statement
//	("purr", e, pos)                       // print
//	("nap",  e, pos)                       // sleep (milliseconds)
//	("if", cond, thenStmt, elseStmtOrNil, pos)
//	("while", cond, bodyStmt, pos)
//	("return", exprOrNil, pos)
//	("break", pos)
//	("continue", pos)
//	("throw", e, pos)
//	("try", tryBlock, catchName, catchBlockOrNil, finallyBlockOrNil, pos)
//	("clowder", name, parentName, ("members", m...), pos)
//
// Class members:
//
//	("field",  name, defaultExprOrNil)
//	("method", name, []string params, bodyBlock, isStatic)
//	("getter", name, bodyBlock)
//	("setter", name, paramName, bodyBlock)
//
// Expressions:
//
//	("null") ("bool", b) ("num", f) ("str", s) ("id", name) ("this")
//	("unop",  op, rhs)                     // prefix "!" or "-"
//	("binop", op, lhs, rhs)                // arithmetic, comparison, equality
//	("logic", op, lhs, rhs)                // "&&", "||" (short-circuit)
//	("assign", name, value)                // x = v
//	("set", obj, name, value)              // obj.name = v
//	("idxset", obj, idxExpr, value)        // obj[i] = v
//	("postincr", target) ("postdecr", target)
//	("call", callee, arg1, ...)
//	("get", obj, name)
//	("idx", obj, idxExpr)
//	("lambda", []string params, bodyBlock, isAsync)
//	("array", e1, ...) ("tuple", e1, ...)
//	("object", ("pair", key, value)*)
//	("new", className, arg1, ...)
//
// The tuple/grouping rule: "(e)" is a grouped expression and produces no node
// of its own; "(e1, e2, ...)" with two or more elements is a tuple literal.
// "(...) ->" is always a lambda parameter list.
//
// Dependencies
// ------------
//   - lexer.go
//   - errors.go (*Error, DiagParse, DiagIncomplete, IsIncomplete)
package pawx

import (
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

type S = []any

func L(tag string, parts ...any) S { return append([]any{tag}, parts...) }

// Pos marks where a statement begins (1-based line, 1-based column).
type Pos struct {
	Line int
	Col  int
}

// Parse parses a complete PAWX source string and returns its AST.
func Parse(src string) (S, error) {
	lex := NewLexer(src)
	toks, err := lex.Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

// ParseInteractive parses in REPL-friendly mode. Unterminated constructs at
// EOF produce *Error{Kind:DiagIncomplete}.
func ParseInteractive(src string) (S, error) {
	lex := NewLexer(src)
	toks, err := lex.Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, interactive: true}
	return p.program()
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
///////////////////////////// PRIVATE IMPLEMENTATION ///////////////////////////
////////////////////////////////////////////////////////////////////////////////

type parser struct {
	toks        []Token
	i           int
	interactive bool
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) atEnd() bool { return p.peek().Type == EOF }
func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}
func (p *parser) peekN(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}
func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	g := p.peek()
	if g.Type == EOF {
		kind := DiagParse
		if p.interactive {
			kind = DiagIncomplete
		}
		return Token{}, &Error{Kind: kind, Msg: msg, Line: g.Line, Col: g.Col + 1}
	}
	return Token{}, &Error{Kind: DiagParse, Msg: msg, Line: g.Line, Col: g.Col + 1}
}

func (p *parser) errAt(t Token, msg string) error {
	if t.Type == EOF && p.interactive {
		return &Error{Kind: DiagIncomplete, Msg: msg, Line: t.Line, Col: t.Col + 1}
	}
	return &Error{Kind: DiagParse, Msg: msg, Line: t.Line, Col: t.Col + 1}
}

func (p *parser) posOf(t Token) Pos { return Pos{Line: t.Line, Col: t.Col + 1} }

func tokText(t Token) string {
	if s, ok := t.Literal.(string); ok {
		return s
	}
	return t.Lexeme
}

// needSemi consumes the ';' that terminates a simple statement.
func (p *parser) needSemi() error {
	_, err := p.need(SEMI, "expected ';'")
	return err
}

// ───────────────────────── precedence / associativity ──────────────────────

func lbp(t TokenType) (int, bool) {
	switch t {
	case ASSIGN:
		return 10, true
	case ARROW:
		return 15, true
	case OR_OR:
		return 20, true
	case AND_AND:
		return 30, true
	case EQ, NEQ, EQ_STRICT, NEQ_STRICT:
		return 40, true
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 50, true
	case PLUS, MINUS:
		return 60, true
	case MULT, DIV, MOD:
		return 70, true
	}
	return 0, false
}

func isRightAssoc(tt TokenType) bool { return tt == ASSIGN || tt == ARROW }

// ───────────────────────── program / statements ────────────────────────────

func (p *parser) program() (S, error) {
	var items []any
	for !p.atEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return L("prog", items...), nil
}

func (p *parser) statement() (S, error) {
	t := p.peek()
	pos := p.posOf(t)

	switch t.Type {
	case SNUGGLE, DEN, LAIR:
		p.i++
		return p.declStatement(pos)

	case PURR:
		// "purr name -> (params) -> { body }" declares a function; any
		// other shape after purr prints.
		if p.peekN(1).Type == ID && p.peekN(2).Type == ARROW {
			p.i++
			return p.funcStatement(pos, false)
		}
		p.i++
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.needSemi(); err != nil {
			return nil, err
		}
		return L("purr", e, pos), nil

	case ZOOM:
		// "zoom purr name -> ..." declares an async function. A bare zoom
		// lambda falls through to the expression statement below.
		if p.peekN(1).Type == PURR && p.peekN(2).Type == ID && p.peekN(3).Type == ARROW {
			p.i += 2
			return p.funcStatement(pos, true)
		}

	case NAP:
		p.i++
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.needSemi(); err != nil {
			return nil, err
		}
		return L("nap", e, pos), nil

	case IF:
		p.i++
		return p.ifStatement(pos)

	case WHILE:
		p.i++
		if _, err := p.need(LROUND, "expected '(' after 'while'"); err != nil {
			return nil, err
		}
		cond, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RROUND, "expected ')' after while condition"); err != nil {
			return nil, err
		}
		body, err := p.blockOrStatement()
		if err != nil {
			return nil, err
		}
		return L("while", cond, body, pos), nil

	case RETURN:
		p.i++
		if p.match(SEMI) {
			return L("return", nil, pos), nil
		}
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.needSemi(); err != nil {
			return nil, err
		}
		return L("return", e, pos), nil

	case BREAK:
		p.i++
		if err := p.needSemi(); err != nil {
			return nil, err
		}
		return L("break", pos), nil

	case CONTINUE:
		p.i++
		if err := p.needSemi(); err != nil {
			return nil, err
		}
		return L("continue", pos), nil

	case THROW:
		p.i++
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.needSemi(); err != nil {
			return nil, err
		}
		return L("throw", e, pos), nil

	case TRY:
		p.i++
		return p.tryStatement(pos)

	case CLOWDER:
		p.i++
		return p.clowderStatement(pos)

	case LCURLY:
		return p.block()
	}

	// expression statement
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if err := p.needSemi(); err != nil {
		return nil, err
	}
	return L("expr", e, pos), nil
}

// funcStatement parses "name -> (params) -> { body }" (the leading keyword
// tokens are already consumed). The body must be braced.
func (p *parser) funcStatement(pos Pos, isAsync bool) (S, error) {
	nameTok, err := p.need(ID, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ARROW, "expected '->' after function name"); err != nil {
		return nil, err
	}
	if _, err := p.need(LROUND, "expected '(' to open parameter list"); err != nil {
		return nil, err
	}
	params, err := p.paramListAfterOpen()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ARROW, "expected '->' before function body"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return L("func", tokText(nameTok), params, body, isAsync, pos), nil
}

// declStatement parses the remainder of "snuggle name = expr;" (the keyword
// token is already consumed). den/lair declare the same way.
func (p *parser) declStatement(pos Pos) (S, error) {
	nameTok, err := p.need(ID, "expected variable name")
	if err != nil {
		return nil, err
	}
	var value any
	if p.match(ASSIGN) {
		v, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if err := p.needSemi(); err != nil {
		return nil, err
	}
	return L("decl", tokText(nameTok), value, pos), nil
}

func (p *parser) ifStatement(pos Pos) (S, error) {
	if _, err := p.need(LROUND, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RROUND, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.blockOrStatement()
	if err != nil {
		return nil, err
	}
	var alt any
	if p.match(ELSE) {
		if p.check(IF) {
			elifPos := p.posOf(p.peek())
			p.i++
			e, err := p.ifStatement(elifPos)
			if err != nil {
				return nil, err
			}
			alt = e
		} else {
			e, err := p.blockOrStatement()
			if err != nil {
				return nil, err
			}
			alt = e
		}
	}
	return L("if", cond, then, alt, pos), nil
}

func (p *parser) tryStatement(pos Pos) (S, error) {
	tryBlk, err := p.block()
	if err != nil {
		return nil, err
	}
	catchName := ""
	var catchBlk any
	var finallyBlk any
	if p.match(CATCH) {
		if _, err := p.need(LROUND, "expected '(' after 'catch'"); err != nil {
			return nil, err
		}
		nameTok, err := p.need(ID, "expected catch parameter name")
		if err != nil {
			return nil, err
		}
		catchName = tokText(nameTok)
		if _, err := p.need(RROUND, "expected ')' after catch parameter"); err != nil {
			return nil, err
		}
		blk, err := p.block()
		if err != nil {
			return nil, err
		}
		catchBlk = blk
	}
	if p.match(FINALLY) {
		blk, err := p.block()
		if err != nil {
			return nil, err
		}
		finallyBlk = blk
	}
	if catchBlk == nil && finallyBlk == nil {
		return nil, p.errAt(p.peek(), "expected 'catch' or 'finally' after try block")
	}
	return L("try", tryBlk, catchName, catchBlk, finallyBlk, pos), nil
}

func (p *parser) clowderStatement(pos Pos) (S, error) {
	nameTok, err := p.need(ID, "expected class name after 'clowder'")
	if err != nil {
		return nil, err
	}
	parent := ""
	if p.match(INHERITS) {
		parentTok, err := p.need(ID, "expected parent class name after 'inherits'")
		if err != nil {
			return nil, err
		}
		parent = tokText(parentTok)
	}
	if _, err := p.need(LCURLY, "expected '{' to open class body"); err != nil {
		return nil, err
	}

	var members []any
	for !p.atEnd() && !p.check(RCURLY) {
		m, err := p.classMember()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if _, err := p.need(RCURLY, "expected '}' to close class body"); err != nil {
		return nil, err
	}
	return L("clowder", tokText(nameTok), parent, L("members", members...), pos), nil
}

func (p *parser) classMember() (S, error) {
	switch {
	case p.match(STATIC):
		nameTok, err := p.need(ID, "expected method name after 'static'")
		if err != nil {
			return nil, err
		}
		params, body, err := p.methodTail()
		if err != nil {
			return nil, err
		}
		return L("method", tokText(nameTok), params, body, true), nil

	case p.match(GET):
		nameTok, err := p.need(ID, "expected getter name after 'get'")
		if err != nil {
			return nil, err
		}
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return L("getter", tokText(nameTok), body), nil

	case p.match(SET):
		nameTok, err := p.need(ID, "expected setter name after 'set'")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(LROUND, "expected '(' after setter name"); err != nil {
			return nil, err
		}
		paramTok, err := p.need(ID, "expected setter parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RROUND, "expected ')' after setter parameter"); err != nil {
			return nil, err
		}
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return L("setter", tokText(nameTok), tokText(paramTok), body), nil

	case p.match(NEW):
		// constructor: new(params) { ... }
		params, body, err := p.methodTail()
		if err != nil {
			return nil, err
		}
		return L("method", "new", params, body, false), nil

	case p.check(ID):
		nameTok := p.peek()
		p.i++
		if p.check(LROUND) {
			params, body, err := p.methodTail()
			if err != nil {
				return nil, err
			}
			return L("method", tokText(nameTok), params, body, false), nil
		}
		// field with optional default
		var value any
		if p.match(ASSIGN) {
			v, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			value = v
		}
		if err := p.needSemi(); err != nil {
			return nil, err
		}
		return L("field", tokText(nameTok), value), nil
	}

	return nil, p.errAt(p.peek(), "expected class member (field, method, get, set, or static)")
}

// methodTail parses "(params) { body }" after a method name.
func (p *parser) methodTail() ([]string, S, error) {
	if _, err := p.need(LROUND, "expected '(' after method name"); err != nil {
		return nil, nil, err
	}
	params, err := p.paramListAfterOpen()
	if err != nil {
		return nil, nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, nil, err
	}
	return params, body, nil
}

// paramListAfterOpen parses "p1, p2, ... )" (the '(' is already consumed).
func (p *parser) paramListAfterOpen() ([]string, error) {
	params := []string{}
	if p.match(RROUND) {
		return params, nil
	}
	for {
		nameTok, err := p.need(ID, "expected parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, tokText(nameTok))
		if p.match(COMMA) {
			continue
		}
		break
	}
	if _, err := p.need(RROUND, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	return params, nil
}

// block parses "{ statement* }".
func (p *parser) block() (S, error) {
	if _, err := p.need(LCURLY, "expected '{'"); err != nil {
		return nil, err
	}
	var items []any
	for !p.atEnd() && !p.check(RCURLY) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if _, err := p.need(RCURLY, "expected '}'"); err != nil {
		return nil, err
	}
	return L("block", items...), nil
}

// blockOrStatement parses a braced block or a single statement (if/while
// bodies).
func (p *parser) blockOrStatement() (S, error) {
	if p.check(LCURLY) {
		return p.block()
	}
	return p.statement()
}

// ───────────────────────────── prefix / postfix / infix ────────────────────

func (p *parser) expr(minBP int) (S, error) {
	t := p.peek()
	p.i++

	left, err := p.prefix(t)
	if err != nil {
		return nil, err
	}

	// postfix: call, index, member access, ++/--
	left, err = p.parsePostfix(left)
	if err != nil {
		return nil, err
	}

	// infix loop
	for {
		op := p.peek()
		bp, ok := lbp(op.Type)
		if !ok || bp <= minBP {
			break
		}
		p.i++

		switch op.Type {
		case ASSIGN:
			rhs, err := p.expr(bp - 1)
			if err != nil {
				return nil, err
			}
			target, err := p.assignTarget(left, op)
			if err != nil {
				return nil, err
			}
			left = append(target, rhs)

		case ARROW:
			// bare-identifier lambda: x -> body
			params, err := lambdaParamsFrom(left)
			if err != nil {
				return nil, p.errAt(op, "invalid lambda parameter list before '->'")
			}
			body, err := p.lambdaBody()
			if err != nil {
				return nil, err
			}
			left = L("lambda", params, body, false)

		case AND_AND:
			rhs, err := p.expr(bp)
			if err != nil {
				return nil, err
			}
			left = L("logic", "&&", left, rhs)

		case OR_OR:
			rhs, err := p.expr(bp)
			if err != nil {
				return nil, err
			}
			left = L("logic", "||", left, rhs)

		default:
			rhs, err := p.expr(bp)
			if err != nil {
				return nil, err
			}
			left = L("binop", op.Lexeme, left, rhs)
		}

		// An assignment/lambda may itself be followed by postfix forms only
		// through grouping, so no postfix re-scan here.
	}
	return left, nil
}

// assignTarget converts an already-parsed lvalue expression into the head of
// the matching assignment node (missing only the value).
func (p *parser) assignTarget(lhs S, at Token) (S, error) {
	switch tag(lhs) {
	case "id":
		return L("assign", lhs[1]), nil
	case "get":
		return L("set", lhs[1], lhs[2]), nil
	case "idx":
		return L("idxset", lhs[1], lhs[2]), nil
	}
	return nil, p.errAt(at, "invalid assignment target")
}

func (p *parser) prefix(t Token) (S, error) {
	switch t.Type {
	case ID:
		return L("id", tokText(t)), nil
	case NUMBER:
		return L("num", t.Literal), nil
	case STRING:
		return L("str", t.Literal), nil
	case BOOLEAN:
		return L("bool", t.Literal), nil
	case NULL:
		return L("null"), nil
	case THIS:
		return L("this"), nil

	case BANG, MINUS:
		rhs, err := p.expr(80)
		if err != nil {
			return nil, err
		}
		return L("unop", t.Lexeme, rhs), nil

	case ZOOM:
		// async lambda: zoom (a, b) -> { ... }
		fn, err := p.expr(14)
		if err != nil {
			return nil, err
		}
		if tag(fn) != "lambda" {
			return nil, p.errAt(t, "expected lambda after 'zoom'")
		}
		fn[3] = true
		return fn, nil

	case LROUND:
		return p.groupingOrTupleOrLambda(t)

	case LSQUARE:
		return p.arrayLiteralAfterOpen()

	case LCURLY:
		return p.objectLiteralAfterOpen()

	case NEW:
		nameTok, err := p.need(ID, "expected class name after 'new'")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(LROUND, "expected '(' after class name"); err != nil {
			return nil, err
		}
		args, err := p.argListAfterOpen()
		if err != nil {
			return nil, err
		}
		parts := append([]any{tokText(nameTok)}, args...)
		return L("new", parts...), nil
	}

	if t.Type == EOF {
		return nil, p.errAt(t, "unexpected end of input")
	}
	return nil, p.errAt(t, fmt.Sprintf("unexpected token '%s'", t.Lexeme))
}

func (p *parser) parsePostfix(left S) (S, error) {
	for {
		switch p.peek().Type {
		case LROUND:
			p.i++
			args, err := p.argListAfterOpen()
			if err != nil {
				return nil, err
			}
			parts := append([]any{any(left)}, args...)
			left = L("call", parts...)

		case LSQUARE:
			p.i++
			idx, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RSQUARE, "expected ']' after index"); err != nil {
				return nil, err
			}
			left = L("idx", left, idx)

		case PERIOD:
			p.i++
			nameTok, err := p.need(ID, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			left = L("get", left, tokText(nameTok))

		case INCR:
			p.i++
			n, err := p.stepTarget(left, "++")
			if err != nil {
				return nil, err
			}
			left = n

		case DECR:
			p.i++
			n, err := p.stepTarget(left, "--")
			if err != nil {
				return nil, err
			}
			left = n

		default:
			return left, nil
		}
	}
}

func (p *parser) stepTarget(left S, op string) (S, error) {
	switch tag(left) {
	case "id", "get", "idx":
	default:
		return nil, p.errAt(p.prev(), fmt.Sprintf("invalid operand for '%s'", op))
	}
	if op == "++" {
		return L("postincr", left), nil
	}
	return L("postdecr", left), nil
}

// argListAfterOpen parses "e1, e2, ... )" (the '(' is already consumed).
func (p *parser) argListAfterOpen() ([]any, error) {
	var args []any
	if p.match(RROUND) {
		return args, nil
	}
	for {
		a, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.match(COMMA) {
			continue
		}
		break
	}
	if _, err := p.need(RROUND, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

// groupingOrTupleOrLambda disambiguates the three '(' forms. A parameter
// list followed by '->' is a lambda; otherwise one expression is a grouping
// and two or more are a tuple.
func (p *parser) groupingOrTupleOrLambda(open Token) (S, error) {
	if p.looksLikeLambdaParams() {
		params, err := p.paramListAfterOpen()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(ARROW, "expected '->' after lambda parameters"); err != nil {
			return nil, err
		}
		body, err := p.lambdaBody()
		if err != nil {
			return nil, err
		}
		return L("lambda", params, body, false), nil
	}

	if p.check(RROUND) {
		return nil, p.errAt(p.peek(), "expected expression inside parentheses")
	}

	first, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if p.match(RROUND) {
		// single parenthesized expression: NOT a tuple
		return first, nil
	}

	elems := []any{first}
	for p.match(COMMA) {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.need(RROUND, "expected ')' after tuple elements"); err != nil {
		return nil, err
	}
	return L("tuple", elems...), nil
}

// looksLikeLambdaParams scans ahead (without consuming) from just after a
// consumed '(' for the matching ')' and reports whether '->' follows it.
func (p *parser) looksLikeLambdaParams() bool {
	depth := 1
	j := 0
	for {
		t := p.peekN(j)
		switch t.Type {
		case EOF:
			return false
		case LROUND:
			depth++
		case RROUND:
			depth--
			if depth == 0 {
				return p.peekN(j+1).Type == ARROW
			}
		}
		j++
	}
}

// lambdaBody parses either "{ statements }" or a bare expression (implicit
// return).
func (p *parser) lambdaBody() (S, error) {
	if p.check(LCURLY) {
		return p.block()
	}
	bodyPos := p.posOf(p.peek())
	e, err := p.expr(14)
	if err != nil {
		return nil, err
	}
	return L("block", L("return", e, bodyPos)), nil
}

// lambdaParamsFrom extracts parameter names from an lvalue parsed before
// '->': a bare identifier or a tuple of identifiers.
func lambdaParamsFrom(lhs S) ([]string, error) {
	switch tag(lhs) {
	case "id":
		return []string{lhs[1].(string)}, nil
	case "tuple":
		names := make([]string, 0, len(lhs)-1)
		for _, el := range lhs[1:] {
			sub, ok := el.(S)
			if !ok || tag(sub) != "id" {
				return nil, fmt.Errorf("not a parameter list")
			}
			names = append(names, sub[1].(string))
		}
		return names, nil
	}
	return nil, fmt.Errorf("not a parameter list")
}

// arrayLiteralAfterOpen parses "e1, e2, ... ]" (the '[' is consumed).
func (p *parser) arrayLiteralAfterOpen() (S, error) {
	var elems []any
	if p.match(RSQUARE) {
		return L("array"), nil
	}
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.match(COMMA) {
			if p.check(RSQUARE) { // trailing comma
				break
			}
			continue
		}
		break
	}
	if _, err := p.need(RSQUARE, "expected ']' after array elements"); err != nil {
		return nil, err
	}
	return L("array", elems...), nil
}

// objectLiteralAfterOpen parses `key: value, ... }` (the '{' is consumed).
// Keys are identifiers or string literals.
func (p *parser) objectLiteralAfterOpen() (S, error) {
	var pairs []any
	if p.match(RCURLY) {
		return L("object"), nil
	}
	for {
		keyTok := p.peek()
		var key string
		switch keyTok.Type {
		case ID, STRING:
			key = tokText(keyTok)
			p.i++
		default:
			return nil, p.errAt(keyTok, "expected property key")
		}
		if _, err := p.need(COLON, "expected ':' after property key"); err != nil {
			return nil, err
		}
		v, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, L("pair", key, v))
		if p.match(COMMA) {
			if p.check(RCURLY) { // trailing comma
				break
			}
			continue
		}
		break
	}
	if _, err := p.need(RCURLY, "expected '}' after object literal"); err != nil {
		return nil, err
	}
	return L("object", pairs...), nil
}

// tag returns the node tag, or "" for malformed nodes.
func tag(n S) string {
	if len(n) == 0 {
		return ""
	}
	s, _ := n[0].(string)
	return s
}
