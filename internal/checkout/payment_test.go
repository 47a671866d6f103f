package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardValid(t *testing.T) {
	tests := []struct {
		name string
		card Card
		want bool
	}{
		{"well formed", Card{Number: "4242424242424242", Expiry: "12/30", CVV: "123"}, true},
		{"four digit cvv", Card{Number: "4242424242424242", Expiry: "12/30", CVV: "1234"}, true},
		{"number too short", Card{Number: "42424242", Expiry: "12/30", CVV: "123"}, false},
		{"number with spaces", Card{Number: "4242 4242 4242 4242", Expiry: "12/30", CVV: "123"}, false},
		{"expiry missing slash", Card{Number: "4242424242424242", Expiry: "1230", CVV: "123"}, false},
		{"cvv too short", Card{Number: "4242424242424242", Expiry: "12/30", CVV: "12"}, false},
		{"cvv too long", Card{Number: "4242424242424242", Expiry: "12/30", CVV: "12345"}, false},
		{"empty", Card{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.card.Valid())
		})
	}
}

func TestFieldValidators(t *testing.T) {
	assert.True(t, ValidCardNumber("4242424242424242"))
	assert.False(t, ValidCardNumber("4242-4242-4242-4242"))
	assert.True(t, ValidExpiry("01/27"))
	assert.False(t, ValidExpiry("1/27"))
	assert.True(t, ValidCVV("999"))
	assert.False(t, ValidCVV("99a"))
}
