package checkout

import (
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Pricing policy constants.
var (
	freeShippingThreshold = decimal.NewFromInt(100)
	shippingFee           = decimal.NewFromInt(10)
	taxRate               = decimal.NewFromFloat(0.08)
)

// Totals is the checkout price breakdown, each figure rounded to two
// decimal places.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grand_total"`
}

// ComputeTotals derives the price breakdown from cart lines. Shipping is
// free from a 100.00 subtotal upward, 10.00 below; tax is 8% of the
// subtotal. Arithmetic runs at full precision, rounding happens once per
// output figure. Crossing the free-shipping threshold can lower the grand
// total (99.99 ships for 10.00, 100.00 for free); that step is intentional.
func ComputeTotals(lines []domain.CartLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		price := decimal.NewFromFloat(l.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	shipping := decimal.Zero
	if subtotal.LessThan(freeShippingThreshold) {
		shipping = shippingFee
	}

	tax := subtotal.Mul(taxRate)
	grand := subtotal.Add(shipping).Add(tax)

	return Totals{
		Subtotal:   round2(subtotal),
		Shipping:   round2(shipping),
		Tax:        round2(tax),
		GrandTotal: round2(grand),
	}
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
