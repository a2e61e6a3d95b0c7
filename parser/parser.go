// Package parser is a reference implementation of ast.Parser: a small
// recursive-descent parser over lexer.Lexer, Pratt-parsing expressions
// the same way the teacher's parser does (precedence table + prefix/
// infix dispatch), just over a far smaller grammar.
//
// The surface syntax is the parser's concern alone (spec.md §5): the
// rest of this module only depends on the AST shape this package
// produces, never on lexing or grammar details.
package parser

import (
	"fmt"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/errs"
	"github.com/mcuelenaere/b2/lexer"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	lowest
	orPrec
	andPrec
	equals
	relational
	sum
	product
	prefix
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:      orPrec,
	lexer.AND:     andPrec,
	lexer.EQ:      equals,
	lexer.NEQ:     equals,
	lexer.GT:      relational,
	lexer.GTE:     relational,
	lexer.LT:      relational,
	lexer.LTE:     relational,
	lexer.PLUS:    sum,
	lexer.MINUS:   sum,
	lexer.STAR:    product,
	lexer.SLASH:   product,
	lexer.PERCENT: product,
}

// Parser implements ast.Parser.
type Parser struct{}

// New returns a reference Parser.
func New() *Parser { return &Parser{} }

// Parse compiles source into a statement tree. filename is used only
// for diagnostics.
func (Parser) Parse(source, filename string) (ast.Node, error) {
	p := &parseState{l: lexer.New(source), filename: filename}
	p.next()
	p.next()

	stmts, err := p.parseStatements(stopAtEOF)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.EOF {
		return nil, p.errorf(p.cur.Pos, "unexpected %s", p.cur)
	}
	return stmts, nil
}

type parseState struct {
	l        *lexer.Lexer
	filename string
	cur, peek lexer.Token
}

func (p *parseState) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *parseState) errorf(pos lexer.Position, format string, args ...any) error {
	return &errs.SyntaxError{
		Diagnostic: errs.Diagnostic{
			Pos:     pos,
			Message: fmt.Sprintf(format, args...),
			File:    p.filename,
		},
	}
}

func (p *parseState) expect(t lexer.TokenType) (lexer.Token, error) {
	if p.cur.Type != t {
		return lexer.Token{}, p.errorf(p.cur.Pos, "expected %s, got %s", tokenName(t), p.cur)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func tokenName(t lexer.TokenType) string {
	return lexer.Token{Type: t}.String()
}

// stopSet names the tag keywords that end the current block of
// statements: EOF for the top level, or one of the matching
// terminator keywords for a nested block (elif/else/endif, else/endfor).
type stopSet map[lexer.TokenType]bool

var stopAtEOF = stopSet{lexer.EOF: true}
var stopAtIfEnd = stopSet{lexer.ELIF: true, lexer.ELSE: true, lexer.ENDIF: true}
var stopAtForEnd = stopSet{lexer.ELSE: true, lexer.ENDFOR: true}

// parseStatements consumes statements until it sees EOF or, while
// inside a {% %} tag lookahead, one of stop's keywords.
func (p *parseState) parseStatements(stop stopSet) (ast.Node, error) {
	pos := p.cur.Pos
	var children []ast.Node

	for {
		if p.cur.Type == lexer.EOF {
			break
		}
		if p.cur.Type == lexer.TAG_OPEN && stop[p.peek.Type] {
			break
		}

		n, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return &ast.Statements{Position: pos, Children: children}, nil
}

func (p *parseState) parseOne() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.TEXT:
		n := &ast.Raw{Position: p.cur.Pos, Text: p.cur.Literal}
		p.next()
		return n, nil
	case lexer.PRINT_OPEN:
		return p.parsePrint()
	case lexer.TAG_OPEN:
		return p.parseTag()
	default:
		return nil, p.errorf(p.cur.Pos, "unexpected %s", p.cur)
	}
}

func (p *parseState) parsePrint() (ast.Node, error) {
	pos := p.cur.Pos
	p.next() // consume {{
	expr, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.PRINT_CLOSE); err != nil {
		return nil, err
	}
	return &ast.Print{Position: pos, Expr: expr}, nil
}

func (p *parseState) parseTag() (ast.Node, error) {
	p.next() // consume {%
	switch p.cur.Type {
	case lexer.IF:
		return p.parseIf()
	case lexer.FOR:
		return p.parseFor()
	case lexer.INCLUDE:
		return p.parseInclude()
	default:
		return nil, p.errorf(p.cur.Pos, "unexpected %s inside tag", p.cur)
	}
}

func (p *parseState) parseIf() (ast.Node, error) {
	pos := p.cur.Pos
	p.next() // consume 'if'/'elif'
	cond, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TAG_CLOSE); err != nil {
		return nil, err
	}

	then, err := p.parseStatements(stopAtIfEnd)
	if err != nil {
		return nil, err
	}

	node := &ast.If{Position: pos, Cond: cond, Then: then}

	if _, err := p.expect(lexer.TAG_OPEN); err != nil {
		return nil, err
	}
	switch p.cur.Type {
	case lexer.ELIF:
		elseIf, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		node.Else = elseIf
		return node, nil
	case lexer.ELSE:
		p.next()
		if _, err := p.expect(lexer.TAG_CLOSE); err != nil {
			return nil, err
		}
		elseBody, err := p.parseStatements(stopAtIfEnd)
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
		if _, err := p.expect(lexer.TAG_OPEN); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.ENDIF); err != nil {
			return nil, err
		}
	case lexer.ENDIF:
		p.next()
	default:
		return nil, p.errorf(p.cur.Pos, "expected elif/else/endif, got %s", p.cur)
	}
	if _, err := p.expect(lexer.TAG_CLOSE); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parseState) parseFor() (ast.Node, error) {
	pos := p.cur.Pos
	p.next() // consume 'for'

	first, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	var key, value *ast.VariableRef
	if p.cur.Type == lexer.COMMA {
		p.next()
		second, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		key = &ast.VariableRef{Position: first.Pos, Name: first.Literal}
		value = &ast.VariableRef{Position: second.Pos, Name: second.Literal}
	} else {
		value = &ast.VariableRef{Position: first.Pos, Name: first.Literal}
	}

	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TAG_CLOSE); err != nil {
		return nil, err
	}

	body, err := p.parseStatements(stopAtForEnd)
	if err != nil {
		return nil, err
	}
	node := &ast.For{Position: pos, Key: key, Value: value, Iterable: iterable, Body: body}

	if _, err := p.expect(lexer.TAG_OPEN); err != nil {
		return nil, err
	}
	if p.cur.Type == lexer.ELSE {
		p.next()
		if _, err := p.expect(lexer.TAG_CLOSE); err != nil {
			return nil, err
		}
		elseBody, err := p.parseStatements(stopAtForEnd)
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
		if _, err := p.expect(lexer.TAG_OPEN); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.ENDFOR); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TAG_CLOSE); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parseState) parseInclude() (ast.Node, error) {
	pos := p.cur.Pos
	p.next() // consume 'include'

	nameTok, err := p.expect(lexer.STRING)
	if err != nil {
		return nil, err
	}
	node := &ast.Include{Position: pos, Name: nameTok.Literal}

	if p.cur.Type == lexer.WITH {
		p.next()
		if p.cur.Type == lexer.LBRACE {
			p.next()
			bindings := map[string]ast.Expression{}
			for p.cur.Type != lexer.RBRACE {
				nameTok, err := p.expect(lexer.IDENT)
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(lexer.COLON); err != nil {
					return nil, err
				}
				val, err := p.parseExpr(lowest)
				if err != nil {
					return nil, err
				}
				bindings[nameTok.Literal] = val
				if p.cur.Type == lexer.COMMA {
					p.next()
				}
			}
			p.next() // consume }
			node.Bindings = bindings
		} else {
			scope, err := p.parseExpr(lowest)
			if err != nil {
				return nil, err
			}
			node.Scope = scope
		}
	}

	if _, err := p.expect(lexer.TAG_CLOSE); err != nil {
		return nil, err
	}
	return node, nil
}
