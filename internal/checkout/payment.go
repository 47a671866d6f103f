package checkout

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
)

var ErrPaymentDeclined = errors.New("payment declined")

// Card carries the payment form fields. Nothing here is ever persisted.
type Card struct {
	Number string
	Expiry string
	CVV    string
}

// PaymentGateway authorizes a charge and returns an opaque payment id.
// Authorization is all-or-nothing; a declined charge is ErrPaymentDeclined.
type PaymentGateway interface {
	Authorize(ctx context.Context, card Card, amount float64) (string, error)
}

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
)

// Field validators shared by the checkout form and the gateway, so the two
// contracts cannot drift apart.

func ValidCardNumber(s string) bool { return cardNumberRe.MatchString(s) }
func ValidExpiry(s string) bool     { return expiryRe.MatchString(s) }
func ValidCVV(s string) bool        { return cvvRe.MatchString(s) }

// Valid reports whether every card field is well-formed: a 16-digit number,
// an MM/YY expiry and a 3 or 4 digit CVV.
func (c Card) Valid() bool {
	return ValidCardNumber(c.Number) && ValidExpiry(c.Expiry) && ValidCVV(c.CVV)
}

// SimulatedGateway stands in for a real payment processor. It accepts any
// well-formed card and declines everything else.
type SimulatedGateway struct{}

func (SimulatedGateway) Authorize(ctx context.Context, card Card, amount float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if amount <= 0 {
		return "", ErrPaymentDeclined
	}
	if !card.Valid() {
		return "", ErrPaymentDeclined
	}
	return uuid.NewString(), nil
}
