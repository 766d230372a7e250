/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client IP behind proxies
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend
  6. Bearer auth on all /api routes except /api/login (only when auth
     is enabled in the config)

ROUTE GROUPS:
  /api/login              Token issuance
  /api/customers/*        Customer CRUD, erase, ledger, bills
  /api/dashboard          Daily shift-split stats
  /api/reports/master     Master report
  /api/balances           Per-customer financial summary
  /api/logs/*             Delivery entries
  /api/payments/*         Payments
  /api/translit           Script conversion helper

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Login and bearer middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the full route tree for the given handler.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", h.ListCustomers)
				r.Post("/", h.CreateCustomer)
				r.Patch("/{id}", h.UpdateCustomer)
				r.Delete("/{id}", h.DeleteCustomer)
				r.Post("/{id}/erase", h.EraseCustomer)
				r.Get("/{id}/ledger", h.GetLedger)
				r.Get("/{id}/bill", h.GetBill)
				r.Get("/{id}/bill.xlsx", h.DownloadBill)
				r.Get("/{id}/bill/message", h.BillMessage)
			})

			r.Get("/dashboard", h.Dashboard)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/master", h.MasterReport)
			})
			r.Get("/balances", h.Balances)

			r.Route("/logs", func(r chi.Router) {
				r.Get("/", h.ListLogs)
				r.Put("/{date}/{customerId}", h.SaveLog)
				r.Delete("/{date}/{customerId}", h.DeleteLog)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", h.ListPayments)
				r.Post("/", h.CreatePayment)
				r.Delete("/{id}", h.DeletePayment)
			})

			r.Post("/translit", h.TransformText)
		})
	})

	return r
}
