/*
handlers.go - HTTP API handlers for the business ledger

PURPOSE:
  Exposes the ledger via REST API. Handles HTTP request/response and JSON
  serialization, and delegates every state change to the ledger Book.

ENDPOINTS:
  Ledger:
    GET    /api/ledger                         Whole ledger snapshot

  Sales:
    GET    /api/sales                          Filtered view
    POST   /api/sales                          Create sale (no payment)
    PATCH  /api/sales/filter                   Merge filter state
    GET    /api/sales/{id}                     Lookup
    PUT    /api/sales/{id}                     Merge fields present in body
                                               (PATCH is an alias; amount recomputed)
    DELETE /api/sales/{id}                     Remove (idempotent)
    GET    /api/sales/{id}/receipts            Receipts for sale
    POST   /api/sales/{id}/receipts            Create receipt (policy required)
    POST   /api/sales/{id}/payments            Explicit sale payment

  Purchases:
    Same shape as sales; POST also creates the Unpaid payment.

  Payments:
    GET    /api/payments                       Filtered view (purchase payments)
    PATCH  /api/payments/filter                Merge filter state
    GET    /api/payments/{id}                  Lookup
    POST   /api/payments/{id}/settle           Mark paid with receipt details
    DELETE /api/payments/{id}                  Remove (idempotent)

  Receipts:
    GET    /api/receipts                       Filtered view
    PATCH  /api/receipts/filter                Merge filter state
    DELETE /api/receipts/filter                Clear filter state
    GET    /api/receipts/{id}                  Lookup
    PUT    /api/receipts/{id}                  Merge collector details (PATCH alias)
    DELETE /api/receipts/{id}                  Remove (idempotent)
    POST   /api/receipts/{id}/docs             Attach document
    DELETE /api/receipts/{id}/docs/{index}     Remove document

  Import/export: see csv.go.

READ FILTERS:
  List endpoints use the collection's stored filters. Passing ?q= or
  ?status= filters that one response without changing the stored state.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid body
  - 404: Unknown id for an operation that must produce a result
  - 422: Validation failure (nothing was stored)
  - 500: Internal errors

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/bizledger/generic"
	"github.com/warp/bizledger/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Book *ledger.Book

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler around book.
func NewHandler(book *ledger.Book) *Handler {
	return &Handler{Book: book}
}

// GetLedger returns the whole ledger in snapshot form.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.TakeSnapshot(h.Book.Ledger()))
}

// =============================================================================
// SALES
// =============================================================================

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	l := h.Book.Ledger().SetSalesFilter(readQuery(r))
	items := l.SalesView()
	writeJSON(w, http.StatusOK, ViewResponse[ledger.Sale]{Items: items, Filters: l.Sales.Filters(), Count: len(items), Total: l.Sales.Len()})
}

func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s := h.Book.CreateSale(r.Context(), ledger.SaleDraft{
		Date:           req.Date,
		Customer:       req.Customer,
		Items:          req.Items,
		InvoiceNumbers: req.InvoiceNumbers,
		InvoiceDocs:    req.InvoiceDocs,
	})
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.Book.Ledger().SaleByID(id)
	if !ok {
		writeLedgerError(w, generic.NotFound("sale", id))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	var req UpdateSaleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.Book.UpdateSale(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	h.Book.RemoveSale(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetSalesFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.Book.SetSalesFilter(r.Context(), req)
	writeJSON(w, http.StatusOK, h.Book.Ledger().Sales.Filters())
}

// ListSaleReceipts returns the receipts recorded against a sale.
func (h *Handler) ListSaleReceipts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l := h.Book.Ledger()
	if _, ok := l.SaleByID(id); !ok {
		writeLedgerError(w, generic.NotFound("sale", id))
		return
	}
	receipts := l.ReceiptsBySale(id)
	if receipts == nil {
		receipts = []ledger.Receipt{}
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (h *Handler) CreateSaleReceipt(w http.ResponseWriter, r *http.Request) {
	var req CreateReceiptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rc, err := h.Book.CreateReceiptForSale(r.Context(), chi.URLParam(r, "id"), req.ReceiptDetails, req.Policy)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rc)
}

func (h *Handler) CreateSalePayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Book.CreatePaymentForSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// =============================================================================
// PURCHASES
// =============================================================================

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	l := h.Book.Ledger().SetPurchasesFilter(readQuery(r))
	items := l.PurchasesView()
	writeJSON(w, http.StatusOK, ViewResponse[ledger.Purchase]{Items: items, Filters: l.Purchases.Filters(), Count: len(items), Total: l.Purchases.Len()})
}

// CreatePurchase stores the purchase and its Unpaid payment.
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, pay := h.Book.CreatePurchase(r.Context(), ledger.PurchaseDraft{
		Date:        req.Date,
		Supplier:    req.Supplier,
		Items:       req.Items,
		BillNumbers: req.BillNumbers,
		Docs:        req.Docs,
	})
	writeJSON(w, http.StatusCreated, PurchaseCreatedResponse{Purchase: p, Payment: pay})
}

func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.Book.Ledger().PurchaseByID(id)
	if !ok {
		writeLedgerError(w, generic.NotFound("purchase", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdatePurchase(w http.ResponseWriter, r *http.Request) {
	var req UpdatePurchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.Book.UpdatePurchase(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	h.Book.RemovePurchase(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetPurchasesFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.Book.SetPurchasesFilter(r.Context(), req)
	writeJSON(w, http.StatusOK, h.Book.Ledger().Purchases.Filters())
}

// =============================================================================
// PAYMENTS
// =============================================================================

// ListPayments returns purchase payments; legacy sale payments are hidden.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	l := h.Book.Ledger().SetPaymentsFilter(readQuery(r))
	items := l.PurchasePaymentsView()
	writeJSON(w, http.StatusOK, ViewResponse[ledger.Payment]{Items: items, Filters: l.Payments.Filters(), Count: len(items), Total: l.Payments.Len()})
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.Book.Ledger().PaymentByID(id)
	if !ok {
		writeLedgerError(w, generic.NotFound("payment", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	var req ledger.ReceiptDetails
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.Book.SettlePayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	h.Book.RemovePayment(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetPaymentsFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.Book.SetPaymentsFilter(r.Context(), req)
	writeJSON(w, http.StatusOK, h.Book.Ledger().Payments.Filters())
}

// =============================================================================
// RECEIPTS
// =============================================================================

func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	l := h.Book.Ledger().SetReceiptsFilter(readQuery(r))
	items := l.ReceiptsView()
	writeJSON(w, http.StatusOK, ViewResponse[ledger.Receipt]{Items: items, Filters: l.Receipts.Filters(), Count: len(items), Total: l.Receipts.Len()})
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rc, ok := h.Book.Ledger().ReceiptByID(id)
	if !ok {
		writeLedgerError(w, generic.NotFound("receipt", id))
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (h *Handler) UpdateReceipt(w http.ResponseWriter, r *http.Request) {
	var req UpdateReceiptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rc, err := h.Book.UpdateReceipt(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	h.Book.RemoveReceipt(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AttachReceiptDoc(w http.ResponseWriter, r *http.Request) {
	var doc ledger.Blob
	if !decodeBody(w, r, &doc) {
		return
	}
	id := chi.URLParam(r, "id")
	h.Book.AttachReceiptDoc(r.Context(), id, doc)
	rc, ok := h.Book.Ledger().ReceiptByID(id)
	if !ok {
		writeLedgerError(w, generic.NotFound("receipt", id))
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (h *Handler) RemoveReceiptDoc(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document index", err)
		return
	}
	h.Book.RemoveReceiptDoc(r.Context(), chi.URLParam(r, "id"), index)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetReceiptsFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.Book.SetReceiptsFilter(r.Context(), req)
	writeJSON(w, http.StatusOK, h.Book.Ledger().Receipts.Filters())
}

func (h *Handler) ClearReceiptsFilter(w http.ResponseWriter, r *http.Request) {
	h.Book.ClearReceiptsFilter(r.Context())
	writeJSON(w, http.StatusOK, h.Book.Ledger().Receipts.Filters())
}

// =============================================================================
// HELPERS
// =============================================================================

// readQuery turns ?q= and ?status= into a patch. Applying it to a Ledger
// value read from the Book affects only that value.
func readQuery(r *http.Request) generic.FilterPatch {
	var p generic.FilterPatch
	values := r.URL.Query()
	if values.Has("q") {
		q := values.Get("q")
		p.Query = &q
	}
	if values.Has("status") {
		st := values.Get("status")
		p.Status = &st
	}
	return p
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeLedgerError maps ledger errors to HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	var (
		nf *generic.NotFoundError
		ve *generic.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, "Validation failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
