package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"5.5", "5.50"},
		{"999.99", "999.99"},
		{"1000", "1,000.00"},
		{"1234567.891", "1,234,567.89"},
		{"-1500.2", "-1,500.20"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	body := BuildOrderConfirmationBody("Ada <script>", 42, decimal.RequireFromString("1050"), []OrderItem{
		{ProductID: 10, Name: "Trail Shoe", Quantity: 2, UnitPrice: decimal.RequireFromString("25"), LineTotal: decimal.RequireFromString("50")},
		{ProductID: 11, Quantity: 1, UnitPrice: decimal.RequireFromString("1000"), LineTotal: decimal.RequireFromString("1000")},
	})

	assert.Contains(t, body, "#42")
	assert.Contains(t, body, "Trail Shoe")
	assert.Contains(t, body, "Product 11")
	assert.Contains(t, body, "$25.00")
	assert.Contains(t, body, "$1,050.00")
	assert.Contains(t, body, "Ada &lt;script&gt;")
	assert.NotContains(t, body, "<script>")
}

func TestService_SendOrderConfirmation(t *testing.T) {
	svc := NewService("smtp.local", "2525", "shop@example.com")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := svc.SendOrderConfirmation("ada@example.com", "Ada", 7, decimal.RequireFromString("50"), nil)

	require.NoError(t, err)
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, "shop@example.com", gotFrom)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	msg := string(gotMsg)
	assert.True(t, strings.HasPrefix(msg, "From: shop@example.com\r\nTo: ada@example.com\r\n"))
	assert.Contains(t, msg, "Subject: Order confirmation #7\r\n")
	assert.Contains(t, msg, "$50.00")
}

func TestService_SendError(t *testing.T) {
	svc := NewService("smtp.local", "2525", "shop@example.com")
	svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 try later") }

	err := svc.SendOrderConfirmation("ada@example.com", "Ada", 7, decimal.Zero, nil)
	assert.EqualError(t, err, "421 try later")
}
