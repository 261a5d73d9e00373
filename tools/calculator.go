package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kardolus/agentic/trace"
)

const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("integer overflow")
)

const calculatorSchema = `{
  "type": "object",
  "properties": {
    "operation": {"type": "string", "enum": ["add", "subtract", "multiply", "divide"]},
    "x": {"type": "integer"},
    "y": {"type": "integer"}
  },
  "required": ["x", "y"]
}`

// Calculator performs integer arithmetic on two operands.
type Calculator struct{}

var _ Tool = Calculator{}

func NewCalculator() Calculator { return Calculator{} }

func (Calculator) Name() string { return trace.ToolCalculator }

func (Calculator) Description() string {
	return "Performs basic arithmetic operations on two integers. operation defaults to add."
}

func (Calculator) Schema() string { return calculatorSchema }

func (c Calculator) Run(ctx context.Context, args map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, err := operand(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := operand(args, "y")
	if err != nil {
		return nil, err
	}

	op := OpAdd
	if raw, ok := args["operation"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field 'operation' must be a string", ErrInvalidArguments)
		}
		op = strings.ToLower(strings.TrimSpace(s))
	}

	return Compute(op, x, y)
}

// Compute applies op to x and y.
func Compute(op string, x, y int64) (int64, error) {
	switch op {
	case OpAdd:
		if (y > 0 && x > math.MaxInt64-y) || (y < 0 && x < math.MinInt64-y) {
			return 0, ErrOverflow
		}
		return x + y, nil
	case OpSubtract:
		if (y < 0 && x > math.MaxInt64+y) || (y > 0 && x < math.MinInt64+y) {
			return 0, ErrOverflow
		}
		return x - y, nil
	case OpMultiply:
		if x != 0 && y != 0 {
			r := x * y
			if r/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
				return 0, ErrOverflow
			}
			return r, nil
		}
		return 0, nil
	case OpDivide:
		if y == 0 {
			return 0, ErrDivisionByZero
		}
		if x%y != 0 {
			return 0, fmt.Errorf("%w: %d is not divisible by %d", ErrInvalidArguments, x, y)
		}
		return x / y, nil
	default:
		return 0, fmt.Errorf("%w: unknown operation %q", ErrInvalidArguments, op)
	}
}

func operand(args map[string]any, name string) (int64, error) {
	raw, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("%w: field '%s' is required", ErrInvalidArguments, name)
	}
	v, ok := trace.AsInt(raw)
	if !ok {
		return 0, fmt.Errorf("%w: field '%s' must be an integer, got %v", ErrInvalidArguments, name, raw)
	}
	return v, nil
}
