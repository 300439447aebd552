package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// RegisterBuiltins adds the general-purpose tools every agent gets:
// a calculator and a clock.
func RegisterBuiltins(r *Registry) {
	r.Register(&Tool{
		Name:        "calculator",
		Description: "Evaluate an arithmetic expression. Supports +, -, *, /, %, ^ (power), and parentheses. Example: (2 + 3) * 4 ^ 2",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "The arithmetic expression to evaluate",
				},
			},
			"required": []string{"expression"},
		},
		Handler: handleCalculator,
	})

	r.Register(&Tool{
		Name:        "current_time",
		Description: "Get the current date and time, optionally in a specific IANA timezone (e.g., America/New_York).",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"timezone": map[string]any{
					"type":        "string",
					"description": "IANA timezone name (default: local time)",
				},
			},
		},
		Handler: handleCurrentTime,
	})
}

func handleCalculator(ctx context.Context, args map[string]any) (string, error) {
	expr, _ := args["expression"].(string)
	if strings.TrimSpace(expr) == "" {
		return "", fmt.Errorf("expression is required")
	}

	result, err := evalExpr(expr)
	if err != nil {
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}

	return strconv.FormatFloat(result, 'f', -1, 64), nil
}

func handleCurrentTime(ctx context.Context, args map[string]any) (string, error) {
	now := time.Now()
	if tz, _ := args["timezone"].(string); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return "", fmt.Errorf("unknown timezone %q", tz)
		}
		now = now.In(loc)
	}
	return now.Format("Monday, January 2, 2006 at 3:04 PM MST"), nil
}

// evalExpr evaluates an arithmetic expression with precedence climbing.
// No names, no function calls, just numbers and operators.
func evalExpr(input string) (float64, error) {
	p := &exprParser{input: input}
	v, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

type exprParser struct {
	input string
	pos   int
}

// Binding powers. Exponent binds tightest and is right-associative.
var binaryPrec = map[byte]int{
	'+': 1, '-': 1,
	'*': 2, '/': 2, '%': 2,
	'^': 3,
}

func (p *exprParser) parseExpr(minPrec int) (float64, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return left, nil
		}
		op := p.input[p.pos]
		prec, ok := binaryPrec[op]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.pos++

		nextMin := prec + 1
		if op == '^' { // right-associative
			nextMin = prec
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return 0, err
		}

		switch op {
		case '+':
			left += right
		case '-':
			left -= right
		case '*':
			left *= right
		case '/':
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case '%':
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left = math.Mod(left, right)
		case '^':
			left = math.Pow(left, right)
		}
	}
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch c := p.input[p.pos]; {
	case c == '(':
		p.pos++
		v, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil

	case c == '-':
		p.pos++
		v, err := p.parsePrimary()
		if err != nil {
			return 0, err
		}
		return -v, nil

	case c == '+':
		p.pos++
		return p.parsePrimary()

	case unicode.IsDigit(rune(c)) || c == '.':
		start := p.pos
		for p.pos < len(p.input) && (unicode.IsDigit(rune(p.input[p.pos])) || p.input[p.pos] == '.') {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
		}
		return v, nil

	default:
		return 0, fmt.Errorf("unexpected %q at position %d", c, p.pos)
	}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
