package domain

import "github.com/google/uuid"

// CartLine is one product's presence in a user's cart, joined with the
// product's current name, price and image at load time.
type CartLine struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url"`
}

// Cart is a snapshot of a user's cart lines, ordered by insertion.
// Totals are derived on demand, never stored.
type Cart struct {
	UserID uuid.UUID  `json:"user_id"`
	Lines  []CartLine `json:"lines"`
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() float64 {
	var sum float64
	for _, l := range c.Lines {
		sum += l.Price * float64(l.Quantity)
	}
	return sum
}
