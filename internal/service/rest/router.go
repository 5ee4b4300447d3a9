package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions задаёт дополнительные зависимости маршрутизатора.
type RouterOptions struct {
	// Idempotency, если задан, защищает POST /api/orders от повторной
	// обработки по заголовку Idempotency-Key.
	Idempotency *IdempotencyMiddleware
}

// NewRouter собирает chi-маршрутизатор REST API.
func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics)

	placeOrder := http.HandlerFunc(handler.PlaceOrder)
	var placeOrderHandler http.Handler = placeOrder
	if opts.Idempotency != nil {
		placeOrderHandler = opts.Idempotency.Wrap(placeOrder)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Method(http.MethodPost, "/", placeOrderHandler)
			r.Get("/", handler.ListOrders)
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", handler.GetOrder)
				r.Delete("/", handler.DeleteOrder)
				r.Patch("/status", handler.UpdateStatus)
				r.Get("/timeline", handler.GetTimeline)
				r.Post("/items", handler.AddItem)
				r.Delete("/items/{itemID}", handler.RemoveItem)
			})
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", handler.ListProducts)
			r.Get("/{productID}", handler.GetProduct)
		})
	})

	return r
}
