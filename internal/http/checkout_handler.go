package http

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

// CheckoutService covers order placement and order history.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, address domain.ShippingAddress, card checkout.Card) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkouts CheckoutService
	timeout   time.Duration
}

func NewCheckoutHandler(checkouts CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		timeout:   timeout,
	}
}

type CheckoutRequestDTO struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

var zipRe = regexp.MustCompile(`^\d{5,10}$`)

// validate mirrors the storefront checkout form constraints. Nothing is sent
// to a store or gateway while any field is invalid.
func (req *CheckoutRequestDTO) validate() (code, message string, ok bool) {
	switch {
	case req.FirstName == "" || len(req.FirstName) > 50:
		return "invalid_first_name", "first name required", false
	case req.LastName == "" || len(req.LastName) > 50:
		return "invalid_last_name", "last name required", false
	case len(req.Address) < 5 || len(req.Address) > 200:
		return "invalid_address", "address required", false
	case len(req.City) < 2 || len(req.City) > 100:
		return "invalid_city", "city required", false
	case len(req.State) < 2 || len(req.State) > 50:
		return "invalid_state", "state required", false
	case !zipRe.MatchString(req.ZipCode):
		return "invalid_zip_code", "valid zip code required", false
	case !checkout.ValidCardNumber(req.CardNumber):
		return "invalid_card_number", "enter a 16-digit card number", false
	case !checkout.ValidExpiry(req.Expiry):
		return "invalid_expiry", "expiry format: MM/YY", false
	case !checkout.ValidCVV(req.CVV):
		return "invalid_cvv", "enter a 3 or 4 digit CVV", false
	}
	return "", "", true
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if code, message, ok := req.validate(); !ok {
		respondError(w, http.StatusBadRequest, code, message)
		return
	}

	address := domain.ShippingAddress{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
	}
	card := checkout.Card{
		Number: req.CardNumber,
		Expiry: req.Expiry,
		CVV:    req.CVV,
	}

	order, err := h.checkouts.PlaceOrder(ctx, user.ID, address, card)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
