package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "rico-bot/backend/pkg/errors"
)

// calculate safely evaluates an arithmetic expression. Only the whitelisted
// operators (+ - * / ** and unary negation) are accepted; anything else in
// the input is rejected, so arbitrary code never runs.
func (ts *toolset) calculate(_ context.Context, input string) string {
	ts.logger.Info("calculator called", zap.String("expr", input))

	result, err := EvalArithmetic(input)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmptyExpression):
			return "Error: Empty expression"
		case errors.Is(err, apperrors.ErrDivisionByZero):
			return "Error: Division by zero"
		case errors.Is(err, apperrors.ErrUnsupportedOperator):
			return fmt.Sprintf("Error: %v", err)
		default:
			return fmt.Sprintf("Error: Invalid syntax - %v", err)
		}
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return "Error: Result too large"
	}
	return strconv.FormatFloat(result, 'f', -1, 64)
}

// EvalArithmetic evaluates expr with conventional precedence: "**" binds
// tightest and associates to the right, then unary sign, then "*" and "/",
// then "+" and "-". So -2**2 is -(2**2) and 2**3**2 is 2**(3**2).
func EvalArithmetic(expr string) (float64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, apperrors.ErrEmptyExpression
	}

	p := &exprParser{input: expr}
	value, err := p.parseAdditive()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("%w: unexpected %q", apperrors.ErrUnsupportedOperator, rest(p.input, p.pos))
	}
	return value, nil
}

// exprParser is a precedence-climbing parser over the five whitelisted
// operators. It works on bytes; every accepted token is ASCII.
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// peek returns the next non-space byte without consuming it, or 0 at the end
func (p *exprParser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseAdditive() (float64, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseMultiplicative()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseMultiplicative()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseMultiplicative() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		// A lone '*' multiplies; "**" belongs to the power level.
		switch {
		case p.peek() == '*' && !strings.HasPrefix(p.input[p.pos:], "**"):
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.peek() == '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, apperrors.ErrDivisionByZero
			}
			left /= right
		default:
			return left, nil
		}
	}
}

// parseUnary sits below the power level, so -2**2 negates the power. The
// exponent re-enters here, keeping 2**-1 valid.
func (p *exprParser) parseUnary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if strings.HasPrefix(p.input[p.pos:], "**") {
		p.pos += 2
		exponent, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exponent), nil
	}
	return base, nil
}

func (p *exprParser) parsePrimary() (float64, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		value, err := p.parseAdditive()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", apperrors.ErrInvalidSyntax)
		}
		p.pos++
		return value, nil
	case c >= '0' && c <= '9', c == '.':
		return p.parseNumber()
	case c == 0:
		return 0, fmt.Errorf("%w: unexpected end of expression", apperrors.ErrInvalidSyntax)
	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedOperator, rest(p.input, p.pos))
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", apperrors.ErrInvalidSyntax, p.input[start:p.pos])
	}
	return value, nil
}

// rest returns a short window of the unconsumed input for error messages
func rest(input string, pos int) string {
	tail := input[pos:]
	if len(tail) > 10 {
		tail = tail[:10]
	}
	return tail
}
