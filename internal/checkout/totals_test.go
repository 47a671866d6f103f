package checkout

import (
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
)

func lineWith(price float64, qty int) domain.CartLine {
	return domain.CartLine{Price: price, Quantity: qty}
}

func TestComputeTotals_Subtotal(t *testing.T) {
	totals := ComputeTotals([]domain.CartLine{
		lineWith(19.99, 2),
		lineWith(5.25, 3),
	})

	assert.InDelta(t, 55.73, totals.Subtotal, 0.001)
}

func TestComputeTotals_ShippingThreshold(t *testing.T) {
	tests := []struct {
		name         string
		price        float64
		wantShipping float64
	}{
		{"zero subtotal still ships for a fee", 0.00, 10.00},
		{"just under threshold", 99.99, 10.00},
		{"exactly at threshold", 100.00, 0.00},
		{"above threshold", 150.00, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []domain.CartLine
			if tt.price > 0 {
				lines = []domain.CartLine{lineWith(tt.price, 1)}
			}
			totals := ComputeTotals(lines)
			assert.Equal(t, tt.wantShipping, totals.Shipping)
		})
	}
}

func TestComputeTotals_Tax(t *testing.T) {
	totals := ComputeTotals([]domain.CartLine{lineWith(50.00, 1)})
	assert.Equal(t, 4.00, totals.Tax)
}

func TestComputeTotals_GrandTotal(t *testing.T) {
	totals := ComputeTotals([]domain.CartLine{lineWith(150.00, 1)})

	assert.Equal(t, 150.00, totals.Subtotal)
	assert.Equal(t, 0.00, totals.Shipping)
	assert.Equal(t, 12.00, totals.Tax)
	assert.Equal(t, 162.00, totals.GrandTotal)
}

// Crossing the free-shipping threshold from below makes the grand total dip:
// 99.99 pays shipping, 100.00 does not. Inherited storefront behavior.
func TestComputeTotals_ThresholdDip(t *testing.T) {
	below := ComputeTotals([]domain.CartLine{lineWith(99.99, 1)})
	at := ComputeTotals([]domain.CartLine{lineWith(100.00, 1)})

	assert.Equal(t, 117.99, below.GrandTotal)
	assert.Equal(t, 108.00, at.GrandTotal)
	assert.Less(t, at.GrandTotal, below.GrandTotal)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.Equal(t, 0.00, totals.Subtotal)
	assert.Equal(t, 10.00, totals.Shipping)
	assert.Equal(t, 0.00, totals.Tax)
	assert.Equal(t, 10.00, totals.GrandTotal)
}

// Many small lines must not accumulate float error: 0.10 a hundred times is
// exactly 10.00, not 9.999999.
func TestComputeTotals_NoRoundingDrift(t *testing.T) {
	var lines []domain.CartLine
	for i := 0; i < 100; i++ {
		lines = append(lines, lineWith(0.10, 1))
	}

	totals := ComputeTotals(lines)
	assert.Equal(t, 10.00, totals.Subtotal)
	assert.Equal(t, 0.80, totals.Tax)
}
