/*
Package ledger implements the business ledger: sales, purchases, the
payments owed against purchases, and the receipts collected against sales.

KEY CONCEPTS IN THIS FILE (types.go):
  - LineItem:  (name, qty, price) with LineTotal = qty * price
  - Blob:      An opaque attachment, addressable by name and content handle
  - Sale:      A sales invoice; amount derived from items
  - Purchase:  A supplier bill; amount derived from items
  - Payment:   What is owed against a purchase (or, explicitly, a sale)
  - Receipt:   What was collected against a sale

DERIVED TOTALS:
  Sale.Amount and Purchase.Amount are never set independently. Every add
  or update recomputes them from Items, ignoring any supplied amount.

SNAPSHOT FIELDS:
  Receipt.Customer and Receipt.Amount are copied from the Sale when the
  receipt is created and are not kept in sync afterwards.

SEE ALSO:
  - ledger.go:    The Ledger value and per-collection operations
  - linkage.go:   Cross-entity rules
  - lineitems.go: Flat-file encoding of line items
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// VALUE OBJECTS
// =============================================================================

// LineItem is one product line on a sale or purchase.
type LineItem struct {
	Name  string          `json:"name"`
	Qty   decimal.Decimal `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// LineTotal returns qty * price.
func (li LineItem) LineTotal() decimal.Decimal { return li.Qty.Mul(li.Price) }

// Item is a convenience constructor for tests and seed data.
func Item(name string, qty, price float64) LineItem {
	return LineItem{Name: name, Qty: decimal.NewFromFloat(qty), Price: decimal.NewFromFloat(price)}
}

// Total sums LineTotal over items.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.LineTotal())
	}
	return sum
}

// Blob is an attachment produced from a file. DataURL is the content
// handle; the ledger never inspects it.
type Blob struct {
	Name    string `json:"name"`
	DataURL string `json:"dataUrl"`
}

// =============================================================================
// SALE / PURCHASE
// =============================================================================

const (
	SalePrefix     = "S"
	PurchasePrefix = "P"
	PaymentPrefix  = "PAY"
	ReceiptPrefix  = "RCPT"
)

type Sale struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	Customer       string          `json:"customer"`
	Items          []LineItem      `json:"items"`
	Amount         decimal.Decimal `json:"amount"`
	InvoiceNumbers []string        `json:"invoiceNumbers"`
	InvoiceDocs    []Blob          `json:"invoiceDocs"`
}

func (s Sale) RecordID() string { return s.ID }

// SaleDraft is the caller input for creating a sale. ID is only honored by
// imports (see ImportSales); AddSale always assigns a fresh one.
type SaleDraft struct {
	ID             string     `json:"id,omitempty"`
	Date           string     `json:"date"`
	Customer       string     `json:"customer"`
	Items          []LineItem `json:"items"`
	InvoiceNumbers []string   `json:"invoiceNumbers"`
	InvoiceDocs    []Blob     `json:"invoiceDocs"`
}

type Purchase struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Supplier    string          `json:"supplier"`
	Items       []LineItem      `json:"items"`
	Amount      decimal.Decimal `json:"amount"`
	BillNumbers []string        `json:"billNumbers"`
	Docs        []Blob          `json:"docs"`
}

func (p Purchase) RecordID() string { return p.ID }

type PurchaseDraft struct {
	ID          string     `json:"id,omitempty"`
	Date        string     `json:"date"`
	Supplier    string     `json:"supplier"`
	Items       []LineItem `json:"items"`
	BillNumbers []string   `json:"billNumbers"`
	Docs        []Blob     `json:"docs"`
}

// =============================================================================
// PAYMENT
// =============================================================================

type PaymentKind string

const (
	PaymentForSale     PaymentKind = "sale"
	PaymentForPurchase PaymentKind = "purchase"
)

type PaymentStatus string

const (
	StatusUnpaid PaymentStatus = "Unpaid"
	StatusPaid   PaymentStatus = "Paid"
)

// Payment is owed against exactly one document. Type says which of SaleID
// and PurchaseID is populated; the other is empty.
type Payment struct {
	ID               string          `json:"id"`
	Type             PaymentKind     `json:"type"`
	SaleID           string          `json:"saleId,omitempty"`
	PurchaseID       string          `json:"purchaseId,omitempty"`
	CounterpartyName string          `json:"counterpartyName"`
	Amount           decimal.Decimal `json:"amount"`
	Date             string          `json:"date"`
	Status           PaymentStatus   `json:"status"`
	Receipt          *ReceiptDetails `json:"receipt"`
}

func (p Payment) RecordID() string { return p.ID }

// DocumentID returns the id of the sale or purchase the payment is for.
func (p Payment) DocumentID() string {
	if p.Type == PaymentForSale {
		return p.SaleID
	}
	return p.PurchaseID
}

// =============================================================================
// RECEIPT
// =============================================================================

type PaymentType string

const (
	PayCash   PaymentType = "Cash"
	PayCheque PaymentType = "Cheque"
	PayLC     PaymentType = "LC"
	PayBank   PaymentType = "Bank"
	PayOnline PaymentType = "Online"
)

// PaymentTypes lists the accepted payment types in display order.
var PaymentTypes = []PaymentType{PayCash, PayCheque, PayLC, PayBank, PayOnline}

// Valid reports whether t is one of PaymentTypes.
func (t PaymentType) Valid() bool {
	for _, v := range PaymentTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ReceiptDetails is what a collector supplies: when, how, and the proof.
// It is used both to create a Receipt against a Sale and to settle a Payment.
type ReceiptDetails struct {
	Date        string      `json:"date,omitempty"`
	VoucherNo   string      `json:"voucherNo"`
	PaymentType PaymentType `json:"paymentType"`
	ChequeNo    string      `json:"chequeNo,omitempty"`
	ChequeBank  string      `json:"chequeBank,omitempty"`
	LCNo        string      `json:"lcNo,omitempty"`
	LCBank      string      `json:"lcBank,omitempty"`
	Docs        []Blob      `json:"docs,omitempty"`
}

type Receipt struct {
	ID          string          `json:"id"`
	SaleID      string          `json:"saleId"`
	Customer    string          `json:"customer"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	VoucherNo   string          `json:"voucherNo"`
	PaymentType PaymentType     `json:"paymentType"`
	ChequeNo    string          `json:"chequeNo"`
	ChequeBank  string          `json:"chequeBank"`
	LCNo        string          `json:"lcNo"`
	LCBank      string          `json:"lcBank"`
	Docs        []Blob          `json:"docs"`
}

func (r Receipt) RecordID() string { return r.ID }

// Details returns the collector-supplied part of the receipt.
func (r Receipt) Details() ReceiptDetails {
	return ReceiptDetails{
		Date:        r.Date,
		VoucherNo:   r.VoucherNo,
		PaymentType: r.PaymentType,
		ChequeNo:    r.ChequeNo,
		ChequeBank:  r.ChequeBank,
		LCNo:        r.LCNo,
		LCBank:      r.LCBank,
		Docs:        r.Docs,
	}
}

// ReceiptPolicy selects how a new receipt for a sale is inserted.
type ReceiptPolicy string

const (
	// ReceiptAppend always creates a new receipt; a sale may have many.
	ReceiptAppend ReceiptPolicy = "append"
	// ReceiptUpsertBySale replaces the sale's existing receipt, keeping its
	// id, so a sale has at most one.
	ReceiptUpsertBySale ReceiptPolicy = "upsert-by-sale"
)

func (p ReceiptPolicy) Valid() bool {
	return p == ReceiptAppend || p == ReceiptUpsertBySale
}

// =============================================================================
// PATCHES - Partial updates merged onto a stored record
// =============================================================================
//
// A nil field keeps the stored value. An explicit empty list ([] in JSON)
// clears it.

type SalePatch struct {
	Date           *string     `json:"date,omitempty"`
	Customer       *string     `json:"customer,omitempty"`
	Items          *[]LineItem `json:"items,omitempty"`
	InvoiceNumbers *[]string   `json:"invoiceNumbers,omitempty"`
	InvoiceDocs    *[]Blob     `json:"invoiceDocs,omitempty"`
}

func (p SalePatch) apply(s Sale) Sale {
	setString(&s.Date, p.Date)
	setString(&s.Customer, p.Customer)
	if p.Items != nil {
		s.Items = *p.Items
	}
	if p.InvoiceNumbers != nil {
		s.InvoiceNumbers = *p.InvoiceNumbers
	}
	if p.InvoiceDocs != nil {
		s.InvoiceDocs = *p.InvoiceDocs
	}
	return s
}

type PurchasePatch struct {
	Date        *string     `json:"date,omitempty"`
	Supplier    *string     `json:"supplier,omitempty"`
	Items       *[]LineItem `json:"items,omitempty"`
	BillNumbers *[]string   `json:"billNumbers,omitempty"`
	Docs        *[]Blob     `json:"docs,omitempty"`
}

func (p PurchasePatch) apply(pu Purchase) Purchase {
	setString(&pu.Date, p.Date)
	setString(&pu.Supplier, p.Supplier)
	if p.Items != nil {
		pu.Items = *p.Items
	}
	if p.BillNumbers != nil {
		pu.BillNumbers = *p.BillNumbers
	}
	if p.Docs != nil {
		pu.Docs = *p.Docs
	}
	return pu
}

// ReceiptPatch updates the collector-supplied part of a receipt.
type ReceiptPatch struct {
	Date        *string      `json:"date,omitempty"`
	VoucherNo   *string      `json:"voucherNo,omitempty"`
	PaymentType *PaymentType `json:"paymentType,omitempty"`
	ChequeNo    *string      `json:"chequeNo,omitempty"`
	ChequeBank  *string      `json:"chequeBank,omitempty"`
	LCNo        *string      `json:"lcNo,omitempty"`
	LCBank      *string      `json:"lcBank,omitempty"`
	Docs        *[]Blob      `json:"docs,omitempty"`
}

func (p ReceiptPatch) apply(d ReceiptDetails) ReceiptDetails {
	setString(&d.Date, p.Date)
	setString(&d.VoucherNo, p.VoucherNo)
	if p.PaymentType != nil {
		d.PaymentType = *p.PaymentType
	}
	setString(&d.ChequeNo, p.ChequeNo)
	setString(&d.ChequeBank, p.ChequeBank)
	setString(&d.LCNo, p.LCNo)
	setString(&d.LCBank, p.LCBank)
	if p.Docs != nil {
		d.Docs = *p.Docs
	}
	return d
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
