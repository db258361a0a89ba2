/*
handlers_test.go - HTTP tests for the ledger API

Tests for:
- Sales, purchases, payments and receipts endpoints
- Error status mapping (400, 404, 422)
- Read-only query overrides on list endpoints
- CSV export and import
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bizledger/config"
	"github.com/warp/bizledger/generic"
	"github.com/warp/bizledger/ledger"
	"github.com/warp/bizledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testConfig() *config.Config {
	return &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	book := ledger.NewBook(context.Background(), ledger.NewGateway(store, ledger.DefaultSnapshotKey))
	h := NewHandler(book)
	return h, NewRouter(h, testConfig())
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var pipePurchase = map[string]any{
	"supplier": "Acme",
	"date":     "2026-01-10",
	"items":    []map[string]any{{"name": "Pipe", "qty": 2, "price": 50}},
	"amount":   1,
}

var valveSale = map[string]any{
	"customer": "Beta",
	"date":     "2026-01-11",
	"items":    []map[string]any{{"name": "Valve", "qty": 1, "price": "75"}},
}

// =============================================================================
// PURCHASES AND PAYMENTS
// =============================================================================

func TestCreatePurchase_ReturnsPurchaseAndPayment(t *testing.T) {
	// GIVEN: An empty ledger
	_, router := newTestServer(t)

	// WHEN: Posting a purchase with a bogus amount
	rec := do(t, router, http.MethodPost, "/api/purchases", pipePurchase)

	// THEN: Amount is derived and an Unpaid payment is linked
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[PurchaseCreatedResponse](t, rec)
	assert.Equal(t, "100", resp.Purchase.Amount.String())
	assert.Equal(t, resp.Purchase.ID, resp.Payment.PurchaseID)
	assert.Equal(t, ledger.StatusUnpaid, resp.Payment.Status)

	list := decode[ViewResponse[ledger.Payment]](t, do(t, router, http.MethodGet, "/api/payments", nil))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, generic.StatusAll, list.Filters.Status)
}

func TestSettlePayment_Endpoint(t *testing.T) {
	_, router := newTestServer(t)
	created := decode[PurchaseCreatedResponse](t, do(t, router, http.MethodPost, "/api/purchases", pipePurchase))

	rec := do(t, router, http.MethodPost, "/api/payments/"+created.Payment.ID+"/settle", map[string]any{
		"voucherNo":   "V-1",
		"paymentType": "Cheque",
		"chequeNo":    "0099",
		"chequeBank":  "First Bank",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pay := decode[ledger.Payment](t, rec)
	assert.Equal(t, ledger.StatusPaid, pay.Status)
	require.NotNil(t, pay.Receipt)
	assert.Equal(t, "0099", pay.Receipt.ChequeNo)

	got := decode[ledger.Payment](t, do(t, router, http.MethodGet, "/api/payments/"+created.Payment.ID, nil))
	assert.Equal(t, ledger.StatusPaid, got.Status)
}

func TestSettlePayment_UnknownIs404(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/payments/PAY_unknown/settle", map[string]any{"voucherNo": "V1"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Contains(t, resp.Details, "PAY_unknown")
}

func TestSettlePayment_ValidationIs422(t *testing.T) {
	_, router := newTestServer(t)
	created := decode[PurchaseCreatedResponse](t, do(t, router, http.MethodPost, "/api/purchases", pipePurchase))

	rec := do(t, router, http.MethodPost, "/api/payments/"+created.Payment.ID+"/settle", map[string]any{"paymentType": "LC"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPayments_StatusQueryDoesNotPersist(t *testing.T) {
	// GIVEN: One paid and one unpaid payment
	h, router := newTestServer(t)
	first := decode[PurchaseCreatedResponse](t, do(t, router, http.MethodPost, "/api/purchases", pipePurchase))
	do(t, router, http.MethodPost, "/api/purchases", pipePurchase)
	do(t, router, http.MethodPost, "/api/payments/"+first.Payment.ID+"/settle", map[string]any{"voucherNo": "V1"})

	// WHEN: Listing with ?status=Unpaid
	list := decode[ViewResponse[ledger.Payment]](t, do(t, router, http.MethodGet, "/api/payments?status=Unpaid", nil))

	// THEN: One shown; stored filter still ALL
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, generic.StatusAll, h.Book.Ledger().Payments.Filters().Status)
}

func TestPayments_StoredFilter(t *testing.T) {
	h, router := newTestServer(t)
	do(t, router, http.MethodPost, "/api/purchases", pipePurchase)

	rec := do(t, router, http.MethodPatch, "/api/payments/filter", map[string]any{"status": "Paid"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, generic.Filters{Status: "Paid"}, h.Book.Ledger().Payments.Filters())
	list := decode[ViewResponse[ledger.Payment]](t, do(t, router, http.MethodGet, "/api/payments", nil))
	assert.Equal(t, 0, list.Count)
}

func TestPayments_HidesSalePayments(t *testing.T) {
	_, router := newTestServer(t)
	sale := decode[ledger.Sale](t, do(t, router, http.MethodPost, "/api/sales", valveSale))

	rec := do(t, router, http.MethodPost, "/api/sales/"+sale.ID+"/payments", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	list := decode[ViewResponse[ledger.Payment]](t, do(t, router, http.MethodGet, "/api/payments", nil))
	assert.Equal(t, 0, list.Count)
	assert.Equal(t, 1, list.Total)
}

// =============================================================================
// SALES AND RECEIPTS
// =============================================================================

func TestSales_CRUD(t *testing.T) {
	h, router := newTestServer(t)

	// Create
	rec := do(t, router, http.MethodPost, "/api/sales", valveSale)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[ledger.Sale](t, rec)
	assert.Equal(t, "75", sale.Amount.String())
	assert.Equal(t, 0, h.Book.Ledger().Payments.Len())

	// Update
	rec = do(t, router, http.MethodPut, "/api/sales/"+sale.ID, map[string]any{
		"customer": "Beta",
		"items":    []map[string]any{{"name": "Valve", "qty": 4, "price": 75}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "300", decode[ledger.Sale](t, rec).Amount.String())

	// Get
	got := decode[ledger.Sale](t, do(t, router, http.MethodGet, "/api/sales/"+sale.ID, nil))
	assert.Equal(t, "300", got.Amount.String())

	// Delete twice
	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/sales/"+sale.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/sales/"+sale.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/sales/"+sale.ID, nil).Code)
}

func TestUpdateSale_PartialBodyKeepsStoredFields(t *testing.T) {
	// GIVEN: A stored sale with date, items and an invoice number
	h, router := newTestServer(t)
	sale := decode[ledger.Sale](t, do(t, router, http.MethodPost, "/api/sales", map[string]any{
		"customer":       "Beta",
		"date":           "2025-01-02",
		"items":          []map[string]any{{"name": "Valve", "qty": 1, "price": 75}},
		"invoiceNumbers": []string{"INV-1"},
	}))

	// WHEN: Sending only the customer, by PUT then by PATCH
	rec := do(t, router, http.MethodPut, "/api/sales/"+sale.ID, map[string]any{"customer": "Gamma"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, router, http.MethodPatch, "/api/sales/"+sale.ID, map[string]any{"customer": "Delta"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Only the customer changed
	stored, ok := h.Book.Ledger().SaleByID(sale.ID)
	require.True(t, ok)
	assert.Equal(t, "Delta", stored.Customer)
	assert.Equal(t, "2025-01-02", stored.Date)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Valve", stored.Items[0].Name)
	assert.Equal(t, "75", stored.Amount.String())
	assert.Equal(t, []string{"INV-1"}, stored.InvoiceNumbers)
}

func TestUpdatePurchase_PartialBodyKeepsStoredFields(t *testing.T) {
	h, router := newTestServer(t)
	created := decode[PurchaseCreatedResponse](t, do(t, router, http.MethodPost, "/api/purchases", pipePurchase))

	rec := do(t, router, http.MethodPut, "/api/purchases/"+created.Purchase.ID, map[string]any{"supplier": "Acme Ltd"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored, _ := h.Book.Ledger().PurchaseByID(created.Purchase.ID)
	assert.Equal(t, "Acme Ltd", stored.Supplier)
	assert.Equal(t, "2026-01-10", stored.Date)
	assert.Equal(t, "100", stored.Amount.String())
}

func TestUpdateReceipt_PartialBodyKeepsDocs(t *testing.T) {
	// GIVEN: A receipt with one attached document
	h, router := newTestServer(t)
	sale := decode[ledger.Sale](t, do(t, router, http.MethodPost, "/api/sales", valveSale))
	r := decode[ledger.Receipt](t, do(t, router, http.MethodPost, "/api/sales/"+sale.ID+"/receipts",
		map[string]any{"policy": "append", "voucherNo": "V1", "date": "2026-01-12"}))
	do(t, router, http.MethodPost, "/api/receipts/"+r.ID+"/docs", map[string]any{"name": "scan.png", "dataUrl": "data:image/png;base64,AA=="})

	// WHEN: Sending only a new voucher number
	rec := do(t, router, http.MethodPut, "/api/receipts/"+r.ID, map[string]any{"voucherNo": "V2"})

	// THEN: The document and date are kept
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored, _ := h.Book.Ledger().ReceiptByID(r.ID)
	assert.Equal(t, "V2", stored.VoucherNo)
	assert.Equal(t, "2026-01-12", stored.Date)
	assert.Len(t, stored.Docs, 1)
}

func TestUpdateSale_UnknownIs404(t *testing.T) {
	_, router := newTestServer(t)
	rec := do(t, router, http.MethodPut, "/api/sales/S_missing", valveSale)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSale_BadBodyIs400(t *testing.T) {
	_, router := newTestServer(t)
	rec := do(t, router, http.MethodPost, "/api/sales", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSales_QueryOverride(t *testing.T) {
	h, router := newTestServer(t)
	do(t, router, http.MethodPost, "/api/sales", valveSale)
	do(t, router, http.MethodPost, "/api/sales", map[string]any{"customer": "Gamma"})

	list := decode[ViewResponse[ledger.Sale]](t, do(t, router, http.MethodGet, "/api/sales?q=valve", nil))

	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Beta", list.Items[0].Customer)
	assert.Equal(t, "valve", list.Filters.Query)
	assert.Equal(t, "", h.Book.Ledger().Sales.Filters().Query)
}

func TestSaleReceipts_Policies(t *testing.T) {
	// GIVEN: A sale
	_, router := newTestServer(t)
	sale := decode[ledger.Sale](t, do(t, router, http.MethodPost, "/api/sales", valveSale))
	path := "/api/sales/" + sale.ID + "/receipts"

	// WHEN: Omitting the policy
	rec := do(t, router, http.MethodPost, path, map[string]any{"voucherNo": "V1"})

	// THEN: Rejected
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// WHEN: Upserting twice
	rec = do(t, router, http.MethodPost, path, map[string]any{"policy": "upsert-by-sale", "voucherNo": "V1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[ledger.Receipt](t, rec)
	assert.Equal(t, "Beta", first.Customer)
	assert.Equal(t, "75", first.Amount.String())
	second := decode[ledger.Receipt](t, do(t, router, http.MethodPost, path, map[string]any{"policy": "upsert-by-sale", "voucherNo": "V2"}))

	// THEN: Same receipt replaced
	assert.Equal(t, first.ID, second.ID)
	receipts := decode[[]ledger.Receipt](t, do(t, router, http.MethodGet, path, nil))
	require.Len(t, receipts, 1)
	assert.Equal(t, "V2", receipts[0].VoucherNo)

	// AND: Append adds a second one
	do(t, router, http.MethodPost, path, map[string]any{"policy": "append", "voucherNo": "V3"})
	receipts = decode[[]ledger.Receipt](t, do(t, router, http.MethodGet, path, nil))
	assert.Len(t, receipts, 2)
}

func TestSaleReceipts_UnknownSale(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/sales/S_missing/receipts", map[string]any{"policy": "append"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/sales/S_missing/receipts", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReceipts_UpdateDocsAndFilter(t *testing.T) {
	h, router := newTestServer(t)
	sale := decode[ledger.Sale](t, do(t, router, http.MethodPost, "/api/sales", valveSale))
	r := decode[ledger.Receipt](t, do(t, router, http.MethodPost, "/api/sales/"+sale.ID+"/receipts",
		map[string]any{"policy": "append", "voucherNo": "V1"}))

	// Update details
	rec := do(t, router, http.MethodPut, "/api/receipts/"+r.ID, map[string]any{"voucherNo": "V1-b", "paymentType": "Online"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.PayOnline, decode[ledger.Receipt](t, rec).PaymentType)

	// Attach and remove a document
	rec = do(t, router, http.MethodPost, "/api/receipts/"+r.ID+"/docs", map[string]any{"name": "scan.png", "dataUrl": "data:image/png;base64,AA=="})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[ledger.Receipt](t, rec).Docs, 1)
	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/receipts/"+r.ID+"/docs/0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodDelete, "/api/receipts/"+r.ID+"/docs/x", nil).Code)
	stored, _ := h.Book.Ledger().ReceiptByID(r.ID)
	assert.Empty(t, stored.Docs)

	// Filter then clear
	do(t, router, http.MethodPatch, "/api/receipts/filter", map[string]any{"q": "nomatch"})
	list := decode[ViewResponse[ledger.Receipt]](t, do(t, router, http.MethodGet, "/api/receipts", nil))
	assert.Equal(t, 0, list.Count)
	do(t, router, http.MethodDelete, "/api/receipts/filter", nil)
	list = decode[ViewResponse[ledger.Receipt]](t, do(t, router, http.MethodGet, "/api/receipts", nil))
	assert.Equal(t, 1, list.Count)

	// Delete
	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/receipts/"+r.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/receipts/"+r.ID, nil).Code)
}

// =============================================================================
// CSV
// =============================================================================

func TestPurchases_ExportImport(t *testing.T) {
	// GIVEN: A purchase exported as CSV
	h, router := newTestServer(t)
	do(t, router, http.MethodPost, "/api/purchases", pipePurchase)
	rec := do(t, router, http.MethodGet, "/api/purchases/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "purchases.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,date,supplier,items,amount,billNumbers\n"))
	assert.Contains(t, rec.Body.String(), "Pipe:2@50")

	// WHEN: Importing the same file as multipart
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "purchases.csv")
	require.NoError(t, err)
	_, err = part.Write(rec.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/purchases/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	imp := httptest.NewRecorder()
	router.ServeHTTP(imp, req)

	// THEN: A second purchase with a fresh id and its own payment
	require.Equal(t, http.StatusOK, imp.Code, imp.Body.String())
	assert.Equal(t, 1, decode[ImportResponse](t, imp).Imported)
	l := h.Book.Ledger()
	assert.Equal(t, 2, l.Purchases.Len())
	assert.Equal(t, 2, l.Payments.Len())
}

func TestSales_ImportRawCSV(t *testing.T) {
	h, router := newTestServer(t)
	csv := "id,date,customer,items,amount,invoiceNumbers\nS_KEEP,2026-02-01,Beta,Valve:2@75,0,INV-9\n"

	req := httptest.NewRequest(http.MethodPost, "/api/sales/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s, ok := h.Book.Ledger().SaleByID("S_KEEP")
	require.True(t, ok)
	assert.Equal(t, "150", s.Amount.String())
	assert.Equal(t, []string{"INV-9"}, s.InvoiceNumbers)
	assert.Equal(t, 0, h.Book.Ledger().Payments.Len())
}

func TestPayments_Export(t *testing.T) {
	_, router := newTestServer(t)
	do(t, router, http.MethodPost, "/api/purchases", pipePurchase)

	rec := do(t, router, http.MethodGet, "/api/payments/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,purchaseId,supplier,amount,status,date,voucherNo,paymentType", lines[0])
	assert.Contains(t, lines[1], ",Acme,100,Unpaid,2026-01-10,,")
}

// =============================================================================
// LEDGER
// =============================================================================

func TestGetLedger_AndReset(t *testing.T) {
	h, router := newTestServer(t)
	do(t, router, http.MethodPost, "/api/purchases", pipePurchase)

	rec := do(t, router, http.MethodGet, "/api/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "sales")
	assert.Contains(t, raw, "payments")

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/reset", nil).Code)
	assert.Equal(t, 0, h.Book.Ledger().Purchases.Len())
}

func TestUnknownRoute(t *testing.T) {
	_, router := newTestServer(t)
	rec := do(t, router, http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
