package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Services bundles everything the router exposes.
type Services struct {
	Sessions SessionService
	Catalog  Catalog
	Carts    CartService
	Checkout CheckoutService
	Timeout  time.Duration
}

func NewRouter(s Services) http.Handler {
	auth := NewAuthHandler(s.Sessions, s.Timeout)
	products := NewProductHandler(s.Catalog, s.Timeout)
	carts := NewCartHandler(s.Carts, s.Timeout)
	checkouts := NewCheckoutHandler(s.Checkout, s.Timeout)
	orders := NewOrdersHandler(s.Checkout, s.Timeout)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(WithSession(s.Sessions))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/auth/signup", auth.SignUp)
	r.Post("/auth/signin", auth.SignIn)
	r.Post("/auth/signout", auth.SignOut)

	r.Get("/categories", products.ListCategories)
	r.Get("/products", products.ListProducts)
	r.Get("/products/{slug}", products.GetProduct)

	r.Get("/cart", carts.GetCart)
	r.Post("/cart/items", carts.AddItem)
	r.Put("/cart/items/{product_id}", carts.UpdateQuantity)
	r.Delete("/cart/items/{product_id}", carts.RemoveItem)
	r.Delete("/cart", carts.ClearCart)

	r.Post("/checkout", checkouts.PlaceOrder)

	r.Get("/orders", orders.ListOrders)
	r.Get("/orders/{id}", orders.GetOrder)

	return r
}
