package ledger

import (
	"strings"
)

// =============================================================================
// FLAT ROWS - Per-entity row shape for CSV interchange
// =============================================================================
//
// Multi-valued fields (invoice/bill numbers) are joined with "|". Items use
// the line-item codec. The text-level file format lives in package csvio.

// Row is one flat record keyed by column name.
type Row map[string]string

var (
	SaleColumns     = []string{"id", "date", "customer", "items", "amount", "invoiceNumbers"}
	PurchaseColumns = []string{"id", "date", "supplier", "items", "amount", "billNumbers"}
	PaymentColumns  = []string{"id", "purchaseId", "supplier", "amount", "status", "date", "voucherNo", "paymentType"}
	ReceiptColumns  = []string{"id", "saleId", "customer", "amount", "date", "voucherNo", "paymentType"}
)

const numberSep = "|"

func SaleRows(sales []Sale) []Row {
	rows := make([]Row, len(sales))
	for i, s := range sales {
		rows[i] = Row{
			"id":             s.ID,
			"date":           s.Date,
			"customer":       s.Customer,
			"items":          EncodeItems(s.Items),
			"amount":         s.Amount.String(),
			"invoiceNumbers": strings.Join(s.InvoiceNumbers, numberSep),
		}
	}
	return rows
}

func PurchaseRows(purchases []Purchase) []Row {
	rows := make([]Row, len(purchases))
	for i, p := range purchases {
		rows[i] = Row{
			"id":          p.ID,
			"date":        p.Date,
			"supplier":    p.Supplier,
			"items":       EncodeItems(p.Items),
			"amount":      p.Amount.String(),
			"billNumbers": strings.Join(p.BillNumbers, numberSep),
		}
	}
	return rows
}

// PaymentRows flattens payments. Receipt columns are blank until settled.
func PaymentRows(payments []Payment) []Row {
	rows := make([]Row, len(payments))
	for i, p := range payments {
		row := Row{
			"id":          p.ID,
			"purchaseId":  p.PurchaseID,
			"supplier":    p.CounterpartyName,
			"amount":      p.Amount.String(),
			"status":      string(p.Status),
			"date":        p.Date,
			"voucherNo":   "",
			"paymentType": "",
		}
		if p.Receipt != nil {
			row["voucherNo"] = p.Receipt.VoucherNo
			row["paymentType"] = string(p.Receipt.PaymentType)
		}
		rows[i] = row
	}
	return rows
}

func ReceiptRows(receipts []Receipt) []Row {
	rows := make([]Row, len(receipts))
	for i, r := range receipts {
		rows[i] = Row{
			"id":          r.ID,
			"saleId":      r.SaleID,
			"customer":    r.Customer,
			"amount":      r.Amount.String(),
			"date":        r.Date,
			"voucherNo":   r.VoucherNo,
			"paymentType": string(r.PaymentType),
		}
	}
	return rows
}

// =============================================================================
// IMPORT - Rows back to drafts
// =============================================================================
//
// Amounts in rows are ignored: sales and purchases always recompute their
// amount from the decoded items when stored.

func SaleDraftsFromRows(rows []Row) []SaleDraft {
	drafts := make([]SaleDraft, len(rows))
	for i, r := range rows {
		drafts[i] = SaleDraft{
			ID:             strings.TrimSpace(r["id"]),
			Date:           strings.TrimSpace(r["date"]),
			Customer:       r["customer"],
			Items:          DecodeItems(r["items"]),
			InvoiceNumbers: splitNumbers(r["invoiceNumbers"]),
		}
	}
	return drafts
}

func PurchaseDraftsFromRows(rows []Row) []PurchaseDraft {
	drafts := make([]PurchaseDraft, len(rows))
	for i, r := range rows {
		drafts[i] = PurchaseDraft{
			ID:          strings.TrimSpace(r["id"]),
			Date:        strings.TrimSpace(r["date"]),
			Supplier:    r["supplier"],
			Items:       DecodeItems(r["items"]),
			BillNumbers: splitNumbers(r["billNumbers"]),
		}
	}
	return drafts
}

// splitNumbers splits on "|" only when the raw value contains it;
// otherwise the raw value is the single element.
func splitNumbers(raw string) []string {
	if !strings.Contains(raw, numberSep) {
		return []string{strings.TrimSpace(raw)}
	}
	var out []string
	for _, n := range strings.Split(raw, numberSep) {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
