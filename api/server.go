/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from forwarding headers
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontend
  6. RateLimit:  Per-client token bucket (429 when exceeded)

ROUTE GROUPS:
  /api/ledger           Whole snapshot
  /api/sales/*          Sales, their receipts and explicit payments
  /api/purchases/*      Purchases (creation also records the payment)
  /api/payments/*       Purchase payments and settlement
  /api/receipts/*       Receipts and their documents
  /api/scenarios/*      Demo scenarios
  /api/reset            Ledger reset (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - csv.go: Import/export handlers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/bizledger/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(NewClientRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ledger", h.GetLedger)
		r.Post("/reset", h.ResetLedger)

		// Sales
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Post("/", h.CreateSale)
			r.Patch("/filter", h.SetSalesFilter)
			r.Get("/export", h.ExportSales)
			r.Post("/import", h.ImportSales)
			r.Get("/{id}", h.GetSale)
			r.Put("/{id}", h.UpdateSale)
			r.Patch("/{id}", h.UpdateSale)
			r.Delete("/{id}", h.DeleteSale)
			r.Get("/{id}/receipts", h.ListSaleReceipts)
			r.Post("/{id}/receipts", h.CreateSaleReceipt)
			r.Post("/{id}/payments", h.CreateSalePayment)
		})

		// Purchases
		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", h.ListPurchases)
			r.Post("/", h.CreatePurchase)
			r.Patch("/filter", h.SetPurchasesFilter)
			r.Get("/export", h.ExportPurchases)
			r.Post("/import", h.ImportPurchases)
			r.Get("/{id}", h.GetPurchase)
			r.Put("/{id}", h.UpdatePurchase)
			r.Patch("/{id}", h.UpdatePurchase)
			r.Delete("/{id}", h.DeletePurchase)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Patch("/filter", h.SetPaymentsFilter)
			r.Get("/export", h.ExportPayments)
			r.Get("/{id}", h.GetPayment)
			r.Post("/{id}/settle", h.SettlePayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		// Receipts
		r.Route("/receipts", func(r chi.Router) {
			r.Get("/", h.ListReceipts)
			r.Patch("/filter", h.SetReceiptsFilter)
			r.Delete("/filter", h.ClearReceiptsFilter)
			r.Get("/export", h.ExportReceipts)
			r.Get("/{id}", h.GetReceipt)
			r.Put("/{id}", h.UpdateReceipt)
			r.Patch("/{id}", h.UpdateReceipt)
			r.Delete("/{id}", h.DeleteReceipt)
			r.Post("/{id}/docs", h.AttachReceiptDoc)
			r.Delete("/{id}/docs/{index}", h.RemoveReceiptDoc)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
