// Package mathexpr evaluates restricted arithmetic expressions with a small
// recursive-descent parser. Only numeric literals and + - * / ** ( ) are
// accepted; there is deliberately no identifier or call syntax, so nothing
// resembling general expression evaluation can be smuggled in.
package mathexpr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrDivideByZero    = errors.New("division by zero")
	ErrDisallowedChar  = errors.New("disallowed character")
	ErrEmptyExpression = errors.New("empty expression")
)

// Eval parses and evaluates an arithmetic expression.
func Eval(expr string) (float64, error) {
	p := &parser{input: expr}
	if err := p.checkAlphabet(); err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.eof() {
		return 0, ErrEmptyExpression
	}

	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.eof() {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

// Format renders a result the way a calculator would: integral values
// without a trailing fraction, everything else with minimal digits.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type parser struct {
	input string
	pos   int
}

func (p *parser) checkAlphabet() error {
	for i := 0; i < len(p.input); i++ {
		c := p.input[i]
		if strings.IndexByte("0123456789+-*/(). \t", c) < 0 {
			return fmt.Errorf("%w %q at position %d: only numbers and + - * / ** ( ) are allowed", ErrDisallowedChar, string(c), i)
		}
	}
	return nil
}

// expr   = term (('+' | '-') term)*
// term   = unary (('*' | '/') unary)*
// unary  = '-' unary | power
// power  = primary ('**' unary)?      right-associative, binds tighter than
//                                     a unary minus on its right operand
// primary = number | '(' expr ')'

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.accept('+'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.peekMinusOperator():
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.peekStarOperator():
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.accept('/'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, ErrDivideByZero
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.accept('-') {
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.acceptWord("**") {
		exp, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (float64, error) {
	p.skipSpace()
	if p.eof() {
		return 0, errors.New("unexpected end of expression")
	}

	if p.accept('(') {
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if !p.accept(')') {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		return v, nil
	}

	start := p.pos
	for !p.eof() && isDigit(p.input[p.pos]) {
		p.pos++
	}
	if !p.eof() && p.input[p.pos] == '.' {
		p.pos++
		for !p.eof() && isDigit(p.input[p.pos]) {
			p.pos++
		}
	}
	if p.pos == start || p.input[start:p.pos] == "." {
		return 0, fmt.Errorf("expected a number at position %d", start)
	}

	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) accept(c byte) bool {
	if p.eof() || p.input[p.pos] != c {
		return false
	}
	p.pos++
	return true
}

func (p *parser) acceptWord(w string) bool {
	if !strings.HasPrefix(p.input[p.pos:], w) {
		return false
	}
	p.pos += len(w)
	return true
}

// peekStarOperator distinguishes '*' from the '**' power operator.
func (p *parser) peekStarOperator() bool {
	return !p.eof() && p.input[p.pos] == '*' && !strings.HasPrefix(p.input[p.pos:], "**")
}

// peekMinusOperator is a plain '-'; the unary case is handled in parseUnary.
func (p *parser) peekMinusOperator() bool {
	return !p.eof() && p.input[p.pos] == '-'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
