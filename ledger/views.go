package ledger

import (
	"github.com/warp/bizledger/generic"
)

// =============================================================================
// SEARCH FIELDS - What the free-text query looks at, per entity
// =============================================================================

func itemFields(items []LineItem) []string {
	out := make([]string, 0, len(items))
	for _, li := range items {
		out = append(out, li.Name+" "+li.Qty.String()+" "+li.Price.String())
	}
	return out
}

func SaleFields(s Sale) []string {
	fields := append([]string{s.Customer}, itemFields(s.Items)...)
	return append(fields, s.InvoiceNumbers...)
}

func PurchaseFields(p Purchase) []string {
	fields := append([]string{p.Supplier}, itemFields(p.Items)...)
	return append(fields, p.BillNumbers...)
}

func PaymentFields(p Payment) []string {
	return []string{p.CounterpartyName, p.Amount.String(), p.PurchaseID}
}

func ReceiptFields(r Receipt) []string {
	return []string{r.SaleID, r.Customer, r.Amount.String(), r.VoucherNo}
}

func paymentStatus(p Payment) string { return string(p.Status) }

// =============================================================================
// VIEWS - Visible subsets using each collection's stored filters
// =============================================================================

// SalesView returns the sales matching the stored sales filter.
func (l Ledger) SalesView() []Sale {
	f := l.Sales.Filters()
	return generic.Filter(l.Sales.List(), f.Query, "", SaleFields, nil)
}

func (l Ledger) PurchasesView() []Purchase {
	f := l.Purchases.Filters()
	return generic.Filter(l.Purchases.List(), f.Query, "", PurchaseFields, nil)
}

// PaymentsView returns the payments matching the stored query and status.
func (l Ledger) PaymentsView() []Payment {
	f := l.Payments.Filters()
	return generic.Filter(l.Payments.List(), f.Query, f.Status, PaymentFields, paymentStatus)
}

// PurchasePaymentsView is PaymentsView without legacy "sale" payments.
func (l Ledger) PurchasePaymentsView() []Payment {
	all := l.PaymentsView()
	out := make([]Payment, 0, len(all))
	for _, p := range all {
		if p.Type != PaymentForSale {
			out = append(out, p)
		}
	}
	return out
}

func (l Ledger) ReceiptsView() []Receipt {
	f := l.Receipts.Filters()
	return generic.Filter(l.Receipts.List(), f.Query, "", ReceiptFields, nil)
}
