/*
csv.go - Flat-file import and export

PURPOSE:
  Moves ledger records in and out as CSV using the row shapes from the
  ledger package.

ENDPOINTS:
  GET  /api/sales/export         Sales as CSV
  POST /api/sales/import         Add sales from CSV
  GET  /api/purchases/export     Purchases as CSV
  POST /api/purchases/import     Add purchases (and their payments) from CSV
  GET  /api/payments/export      Payments as CSV (export only)
  GET  /api/receipts/export      Receipts as CSV

IMPORT BODY:
  Either a raw text/csv body or a multipart form with a "file" field.
  Row ids are kept when free; amounts are always recomputed from items.

SEE ALSO:
  - csvio/csvio.go: File format
  - ledger/rows.go: Row shapes
*/
package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/warp/bizledger/csvio"
	"github.com/warp/bizledger/ledger"
)

const maxImportSize = 32 << 20

func (h *Handler) ExportSales(w http.ResponseWriter, r *http.Request) {
	writeCSV(w, "sales", ledger.SaleColumns, ledger.SaleRows(h.Book.Ledger().Sales.List()))
}

func (h *Handler) ExportPurchases(w http.ResponseWriter, r *http.Request) {
	writeCSV(w, "purchases", ledger.PurchaseColumns, ledger.PurchaseRows(h.Book.Ledger().Purchases.List()))
}

func (h *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	writeCSV(w, "payments", ledger.PaymentColumns, ledger.PaymentRows(h.Book.Ledger().Payments.List()))
}

func (h *Handler) ExportReceipts(w http.ResponseWriter, r *http.Request) {
	writeCSV(w, "receipts", ledger.ReceiptColumns, ledger.ReceiptRows(h.Book.Ledger().Receipts.List()))
}

func (h *Handler) ImportSales(w http.ResponseWriter, r *http.Request) {
	rows, ok := readCSV(w, r)
	if !ok {
		return
	}
	sales := h.Book.ImportSales(r.Context(), ledger.SaleDraftsFromRows(rows))
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(sales)})
}

func (h *Handler) ImportPurchases(w http.ResponseWriter, r *http.Request) {
	rows, ok := readCSV(w, r)
	if !ok {
		return
	}
	purchases := h.Book.ImportPurchases(r.Context(), ledger.PurchaseDraftsFromRows(rows))
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(purchases)})
}

func writeCSV(w http.ResponseWriter, name string, columns []string, rows []ledger.Row) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	if err := csvio.Write(w, columns, rows); err != nil {
		// Headers are already sent.
		log.Printf("csv export %s: %v", name, err)
	}
}

func readCSV(w http.ResponseWriter, r *http.Request) ([]ledger.Row, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Missing file", err)
			return nil, false
		}
		defer file.Close()
		src = file
	}

	rows, err := csvio.Read(src)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid CSV", err)
		return nil, false
	}
	return rows, true
}
