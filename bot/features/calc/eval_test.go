package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"2+3", 5},
		{"2 + 3 * 4", 14},
		{"(2+3)*4", 20},
		{"10-4-3", 3},
		{"20/4/5", 1},
		{"17 % 5", 2},
		{"2^10", 1024},
		{"2^3^2", 512},
		{"-5+3", -2},
		{"2*-3", -6},
		{"-(2+3)", -5},
		{"((1+2)*(3+4))", 21},
		{"1000000*1000000", 1000000000000},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"division by zero", "1/0"},
		{"modulo by zero", "7%0"},
		{"unbalanced paren", "(1+2"},
		{"trailing operator", "1+"},
		{"trailing garbage", "1+2)"},
		{"letters", "two+2"},
		{"negative exponent", "2^-1"},
		{"huge exponent", "2^99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.expr)
			assert.Error(t, err)
		})
	}
}
