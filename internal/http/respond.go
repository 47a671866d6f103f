package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondServiceError maps known service errors onto HTTP statuses. Anything
// unrecognized is a store failure: logged, generic body, no retry scheduled.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, "auth_required", err.Error())
	case errors.Is(err, session.ErrNoSession):
		respondError(w, http.StatusUnauthorized, "auth_required", "sign in required")
	case errors.Is(err, session.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, session.ErrEmailTaken), errors.Is(err, repository.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email_taken", "email already registered")
	case errors.Is(err, session.ErrPasswordTooShort):
		respondError(w, http.StatusBadRequest, "invalid_password", err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrPaymentDeclined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", err.Error())
	default:
		log.Printf("unhandled service error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, please try again")
	}
}
