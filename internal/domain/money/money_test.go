package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50", "50.00"},
		{"25.5", "25.50"},
		{"10.01", "10.01"},
		{"3.335", "3.335"},
		{"3.3300", "3.33"},
		{"-4", "-4.00"},
		{"0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatNull(t *testing.T) {
	assert.Nil(t, FormatNull(decimal.NullDecimal{}))

	got := FormatNull(decimal.NewNullDecimal(decimal.NewFromInt(150)))
	if assert.NotNil(t, got) {
		assert.Equal(t, "150.00", *got)
	}
}
