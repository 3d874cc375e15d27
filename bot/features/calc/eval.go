package calc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Evaluate computes an infix integer expression supporting + - * / % ^,
// unary minus, and parentheses. ^ is exponentiation and binds tightest,
// associating to the right.
func Evaluate(expr string) (int64, error) {
	p := &parser{tokens: tokenize(expr)}
	value, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok != "" {
		return 0, fmt.Errorf("unexpected %q", tok)
	}
	return value, nil
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) next() string {
	tok := p.peek()
	if tok != "" {
		p.pos++
	}
	return tok
}

// precedence per binary operator; 0 means not an operator
var precedence = map[string]int{
	"+": 1,
	"-": 1,
	"*": 2,
	"/": 2,
	"%": 2,
	"^": 3,
}

// parseExpr is a precedence climber: it consumes operators whose
// precedence is at least min, recursing with a higher floor for the
// right-hand side so tighter operators group first.
func (p *parser) parseExpr(min int) (int64, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	for {
		op := p.peek()
		prec, isOp := precedence[op]
		if !isOp || prec < min {
			return left, nil
		}
		p.next()

		// right-associative ^ keeps the same floor, the rest climb
		nextMin := prec + 1
		if op == "^" {
			nextMin = prec
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return 0, err
		}
		left, err = apply(op, left, right)
		if err != nil {
			return 0, err
		}
	}
}

func (p *parser) parsePrimary() (int64, error) {
	switch tok := p.next(); {
	case tok == "":
		return 0, errors.New("expression ended early")
	case tok == "(":
		value, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing != ")" {
			return 0, errors.New("missing closing parenthesis")
		}
		return value, nil
	case tok == "-":
		value, err := p.parsePrimary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	default:
		value, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unexpected %q", tok)
		}
		return value, nil
	}
}

func apply(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a % b, nil
	case "^":
		return pow(a, b)
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}

func pow(base, exp int64) (int64, error) {
	if exp < 0 {
		return 0, errors.New("negative exponent")
	}
	if exp > 63 {
		return 0, errors.New("exponent too large")
	}
	result := int64(1)
	for range exp {
		result *= base
	}
	return result, nil
}

func tokenize(expr string) []string {
	var tokens []string
	var num strings.Builder
	flush := func() {
		if num.Len() > 0 {
			tokens = append(tokens, num.String())
			num.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case unicode.IsDigit(r):
			num.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}
