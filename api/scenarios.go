/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the ledger with realistic
	data for demos. Each scenario goes through the same Book operations a
	client would use, so derived amounts and linked payments are real.

AVAILABLE SCENARIOS:

	empty:          Nothing, just the default filters
	small-shop:     A few sales and purchases, one bill settled by cheque
	collections:    One sale collected in installments (append policy)
	                and one with a corrected receipt (upsert policy)

HOW SCENARIOS WORK:
 1. Reset the ledger
 2. Create purchases (each gets its Unpaid payment)
 3. Create sales and record receipts
 4. Settle some payments

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "small-shop"}

NOTE:

	Scenarios reset the ledger. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Other handlers
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/bizledger/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty Ledger",
		Description: "No records; default filters",
	},
	{
		ID:          "small-shop",
		Name:        "Small Shop",
		Description: "Sales, purchases and a bill settled by cheque",
	},
	{
		ID:          "collections",
		Name:        "Collections",
		Description: "Installment receipts and a corrected receipt",
	},
}

var scenarioLoaders = map[string]func(ctx context.Context, b *ledger.Book) error{
	"empty":       func(context.Context, *ledger.Book) error { return nil },
	"small-shop":  loadSmallShopScenario,
	"collections": loadCollectionsScenario,
}

// =============================================================================
// HANDLERS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	for _, s := range scenarios {
		if s.ID == h.scenario() {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}
	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	h.Book.Reset(ctx)
	h.setScenario("")

	if err := load(ctx, h.Book); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.setScenario(req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetLedger clears every collection and filter.
func (h *Handler) ResetLedger(w http.ResponseWriter, r *http.Request) {
	h.Book.Reset(r.Context())
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

// =============================================================================
// LOADERS
// =============================================================================

func loadSmallShopScenario(ctx context.Context, b *ledger.Book) error {
	_, flourPay := b.CreatePurchase(ctx, ledger.PurchaseDraft{
		Date:        "2026-03-02",
		Supplier:    "Grain Co",
		Items:       []ledger.LineItem{ledger.Item("Flour 25kg", 10, 18.5)},
		BillNumbers: []string{"GC-1041"},
	})
	b.CreatePurchase(ctx, ledger.PurchaseDraft{
		Date:        "2026-03-05",
		Supplier:    "Pack & Ship",
		Items:       []ledger.LineItem{ledger.Item("Boxes", 200, 0.35), ledger.Item("Tape", 12, 2.1)},
		BillNumbers: []string{"PS-77", "PS-78"},
	})

	b.CreateSale(ctx, ledger.SaleDraft{
		Date:           "2026-03-06",
		Customer:       "Corner Cafe",
		Items:          []ledger.LineItem{ledger.Item("Bread", 40, 2.5), ledger.Item("Croissant", 60, 1.2)},
		InvoiceNumbers: []string{"INV-001"},
	})
	b.CreateSale(ctx, ledger.SaleDraft{
		Date:           "2026-03-07",
		Customer:       "Hotel Lido",
		Items:          []ledger.LineItem{ledger.Item("Bread", 120, 2.4)},
		InvoiceNumbers: []string{"INV-002"},
	})

	_, err := b.SettlePayment(ctx, flourPay.ID, ledger.ReceiptDetails{
		Date:        "2026-03-20",
		VoucherNo:   "V-100",
		PaymentType: ledger.PayCheque,
		ChequeNo:    "004512",
		ChequeBank:  "First Bank",
	})
	return err
}

func loadCollectionsScenario(ctx context.Context, b *ledger.Book) error {
	big := b.CreateSale(ctx, ledger.SaleDraft{
		Date:           "2026-04-01",
		Customer:       "City Catering",
		Items:          []ledger.LineItem{ledger.Item("Cake", 30, 25)},
		InvoiceNumbers: []string{"INV-101"},
	})
	for i, voucher := range []string{"R-1", "R-2", "R-3"} {
		_, err := b.CreateReceiptForSale(ctx, big.ID, ledger.ReceiptDetails{
			Date:        fmt.Sprintf("2026-04-%02d", 10+i*10),
			VoucherNo:   voucher,
			PaymentType: ledger.PayBank,
		}, ledger.ReceiptAppend)
		if err != nil {
			return err
		}
	}

	small := b.CreateSale(ctx, ledger.SaleDraft{
		Date:           "2026-04-03",
		Customer:       "Mrs. Okafor",
		Items:          []ledger.LineItem{ledger.Item("Birthday cake", 1, 45)},
		InvoiceNumbers: []string{"INV-102"},
	})
	if _, err := b.CreateReceiptForSale(ctx, small.ID, ledger.ReceiptDetails{
		Date:        "2026-04-03",
		VoucherNo:   "R-9",
		PaymentType: ledger.PayCash,
	}, ledger.ReceiptUpsertBySale); err != nil {
		return err
	}
	// Corrected: it was paid online, not cash.
	_, err := b.CreateReceiptForSale(ctx, small.ID, ledger.ReceiptDetails{
		Date:        "2026-04-03",
		VoucherNo:   "R-9",
		PaymentType: ledger.PayOnline,
	}, ledger.ReceiptUpsertBySale)
	return err
}
