package parser

import (
	"strconv"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/lexer"
)

// parseExpr is a standard Pratt loop: parse one prefix expression,
// then keep absorbing infix operators whose precedence is above min.
func (p *parseState) parseExpr(min int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		pr, ok := precedences[p.cur.Type]
		if !ok || pr <= min {
			break
		}
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parseState) parsePrefix() (ast.Expression, error) {
	tok := p.cur
	switch tok.Type {
	case lexer.MINUS, lexer.PLUS, lexer.NOT:
		p.next()
		operand, err := p.parseExpr(prefix)
		if err != nil {
			return nil, err
		}
		op := ast.Pos
		switch tok.Type {
		case lexer.MINUS:
			op = ast.Neg
		case lexer.NOT:
			op = ast.Not
		}
		return &ast.UnaryOp{Position: tok.Pos, Operand: operand, Op: op}, nil

	case lexer.LPAREN:
		p.next()
		expr, err := p.parseExpr(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case lexer.INT:
		p.next()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid integer literal %q", tok.Literal)
		}
		return &ast.IntegerLiteral{Position: tok.Pos, Value: v}, nil

	case lexer.FLOAT:
		p.next()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid double literal %q", tok.Literal)
		}
		return &ast.DoubleLiteral{Position: tok.Pos, Value: v}, nil

	case lexer.TRUE, lexer.FALSE:
		p.next()
		return &ast.BooleanLiteral{Position: tok.Pos, Value: tok.Type == lexer.TRUE}, nil

	case lexer.STRING:
		p.next()
		return &ast.StringLiteral{Position: tok.Pos, Value: tok.Literal}, nil

	case lexer.IDENT:
		return p.parseIdentExpr()

	default:
		return nil, p.errorf(tok.Pos, "unexpected %s in expression", tok)
	}
}

// parseIdentExpr parses a variable reference, a method call (an
// identifier immediately followed by "("), and any chain of ".attr"
// get-attribute accesses layered on top of either.
func (p *parseState) parseIdentExpr() (ast.Expression, error) {
	tok := p.cur
	p.next()

	var expr ast.Expression
	if p.cur.Type == lexer.LPAREN {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		expr = &ast.MethodCall{Position: tok.Pos, Name: tok.Literal, Args: args}
	} else {
		expr = &ast.VariableRef{Position: tok.Pos, Name: tok.Literal}
	}

	for p.cur.Type == lexer.DOT {
		dotPos := p.cur.Pos
		p.next()
		name, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		expr = &ast.GetAttribute{Position: dotPos, Container: expr, Name: name.Literal}
	}
	return expr, nil
}

func (p *parseState) parseArgs() ([]ast.Expression, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for p.cur.Type != lexer.RPAREN {
		arg, err := p.parseExpr(lowest)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.next() // consume )
	return args, nil
}

func (p *parseState) parseInfix(left ast.Expression) (ast.Expression, error) {
	tok := p.cur
	pr := precedences[tok.Type]
	p.next()

	right, err := p.parseExpr(pr)
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case lexer.PLUS:
		return &ast.BinaryOp{Position: tok.Pos, Left: left, Right: right, Op: ast.Add}, nil
	case lexer.MINUS:
		return &ast.BinaryOp{Position: tok.Pos, Left: left, Right: right, Op: ast.Sub}, nil
	case lexer.STAR:
		return &ast.BinaryOp{Position: tok.Pos, Left: left, Right: right, Op: ast.Mul}, nil
	case lexer.SLASH:
		return &ast.BinaryOp{Position: tok.Pos, Left: left, Right: right, Op: ast.Div}, nil
	case lexer.PERCENT:
		return &ast.BinaryOp{Position: tok.Pos, Left: left, Right: right, Op: ast.Mod}, nil

	case lexer.EQ:
		return &ast.Comparison{Position: tok.Pos, Left: left, Right: right, Op: ast.Eq}, nil
	case lexer.NEQ:
		return &ast.Comparison{Position: tok.Pos, Left: left, Right: right, Op: ast.Ne}, nil
	case lexer.GT:
		return &ast.Comparison{Position: tok.Pos, Left: left, Right: right, Op: ast.Gt}, nil
	case lexer.GTE:
		return &ast.Comparison{Position: tok.Pos, Left: left, Right: right, Op: ast.Ge}, nil
	case lexer.LT:
		return &ast.Comparison{Position: tok.Pos, Left: left, Right: right, Op: ast.Lt}, nil
	case lexer.LTE:
		return &ast.Comparison{Position: tok.Pos, Left: left, Right: right, Op: ast.Le}, nil
	case lexer.AND:
		return &ast.Comparison{Position: tok.Pos, Left: left, Right: right, Op: ast.And}, nil
	case lexer.OR:
		return &ast.Comparison{Position: tok.Pos, Left: left, Right: right, Op: ast.Or}, nil

	default:
		return nil, p.errorf(tok.Pos, "unexpected operator %s", tok)
	}
}
