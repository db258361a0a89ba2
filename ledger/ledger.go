/*
ledger.go - The ledger value and its per-collection operations

PURPOSE:
  A Ledger is the full set of four entity collections plus their filter
  state. It is a value: every operation returns a new Ledger and leaves the
  receiver untouched, so a snapshot handed to a reader (or to the
  persistence gateway) can never change under it.

OPERATIONS:
  Sales:     AddSale, UpdateSale, RemoveSale, SetSalesFilter
  Purchases: UpdatePurchase, RemovePurchase, SetPurchasesFilter
             (creation lives in linkage.go: CreatePurchase)
  Payments:  RemovePayment, SetPaymentsFilter
             (creation and settlement live in linkage.go)
  Receipts:  UpdateReceipt, UpsertReceiptByID, RemoveReceipt,
             AttachReceiptDoc, RemoveReceiptDoc, SetReceiptsFilter,
             ClearReceiptsFilter
  Lookups:   SaleByID, PurchaseByID, PaymentByID, ReceiptByID,
             ReceiptsBySale, PaymentsForPurchase

IDEMPOTENCY:
  Remove* and Set*Filter never fail; removing an absent id returns the
  ledger unchanged. Update* report NotFound but also leave the ledger
  unchanged.

UPDATES MERGE:
  Update* take a patch and merge it onto the stored record by id; fields
  the patch leaves nil keep their stored value.

NO CASCADES:
  Removing a purchase keeps its payment, removing a payment keeps its
  purchase, removing a sale keeps its receipts.

SEE ALSO:
  - linkage.go: Cross-entity operations
  - book.go:    The handle that owns the current Ledger value
*/
package ledger

import (
	"encoding/json"
	"strings"

	"github.com/warp/bizledger/generic"
)

// Collection names, as used in snapshots and error messages.
const (
	CollectionSales     = "sales"
	CollectionPurchases = "purchases"
	CollectionPayments  = "payments"
	CollectionReceipts  = "receipts"
)

// =============================================================================
// LEDGER VALUE
// =============================================================================

type Ledger struct {
	Sales     generic.Collection[Sale]
	Purchases generic.Collection[Purchase]
	Payments  generic.Collection[Payment]
	Receipts  generic.Collection[Receipt]

	// extra holds snapshot collections this package does not model (e.g.
	// bank guarantees) so a save does not drop them. Never mutated.
	extra map[string]json.RawMessage
}

// InitialFilters returns the filter state a fresh collection starts with.
func InitialFilters(collection string) generic.Filters {
	if collection == CollectionPayments {
		return generic.Filters{Status: generic.StatusAll}
	}
	return generic.Filters{}
}

// New returns the empty default ledger.
func New() Ledger {
	return Ledger{
		Sales:     generic.NewCollection[Sale](nil, InitialFilters(CollectionSales)),
		Purchases: generic.NewCollection[Purchase](nil, InitialFilters(CollectionPurchases)),
		Payments:  generic.NewCollection[Payment](nil, InitialFilters(CollectionPayments)),
		Receipts:  generic.NewCollection[Receipt](nil, InitialFilters(CollectionReceipts)),
	}
}

// =============================================================================
// SALES
// =============================================================================

// AddSale stores a new sale with a fresh id and returns it.
// Amount is computed from the items.
func (l Ledger) AddSale(d SaleDraft) (Ledger, Sale) {
	d.ID = ""
	return l.insertSale(d)
}

func (l Ledger) insertSale(d SaleDraft) (Ledger, Sale) {
	id := d.ID
	if id == "" || l.Sales.Has(id) {
		id = generic.NewIDNotIn(SalePrefix, l.Sales.Has)
	}
	s := normalizeSale(Sale{
		ID:             id,
		Date:           d.Date,
		Customer:       d.Customer,
		Items:          d.Items,
		InvoiceNumbers: d.InvoiceNumbers,
		InvoiceDocs:    d.InvoiceDocs,
	})
	l.Sales = l.Sales.Add(s)
	return l, s
}

// UpdateSale merges p onto the stored sale with id. Amount is recomputed
// from the merged items.
func (l Ledger) UpdateSale(id string, p SalePatch) (Ledger, Sale, error) {
	var out Sale
	sales, ok := l.Sales.Update(id, func(existing Sale) Sale {
		out = normalizeSale(p.apply(existing))
		return out
	})
	if !ok {
		return l, Sale{}, generic.NotFound("sale", id)
	}
	l.Sales = sales
	return l, out, nil
}

// RemoveSale drops the sale with id, if any.
func (l Ledger) RemoveSale(id string) Ledger {
	l.Sales = l.Sales.Remove(id)
	return l
}

func (l Ledger) SetSalesFilter(p generic.FilterPatch) Ledger {
	l.Sales = l.Sales.SetFilter(p)
	return l
}

func normalizeSale(s Sale) Sale {
	if s.Date == "" {
		s.Date = generic.Today()
	}
	s.Items = cloneItems(s.Items)
	s.Amount = Total(s.Items)
	s.InvoiceNumbers = defaultNumbers(s.InvoiceNumbers)
	s.InvoiceDocs = cloneBlobs(s.InvoiceDocs)
	return s
}

// =============================================================================
// PURCHASES
// =============================================================================

func (l Ledger) insertPurchase(d PurchaseDraft) (Ledger, Purchase) {
	id := d.ID
	if id == "" || l.Purchases.Has(id) {
		id = generic.NewIDNotIn(PurchasePrefix, l.Purchases.Has)
	}
	p := normalizePurchase(Purchase{
		ID:          id,
		Date:        d.Date,
		Supplier:    d.Supplier,
		Items:       d.Items,
		BillNumbers: d.BillNumbers,
		Docs:        d.Docs,
	})
	l.Purchases = l.Purchases.Add(p)
	return l, p
}

// UpdatePurchase merges p onto the stored purchase with id. The payment
// created with the purchase is not touched.
func (l Ledger) UpdatePurchase(id string, p PurchasePatch) (Ledger, Purchase, error) {
	var out Purchase
	purchases, ok := l.Purchases.Update(id, func(existing Purchase) Purchase {
		out = normalizePurchase(p.apply(existing))
		return out
	})
	if !ok {
		return l, Purchase{}, generic.NotFound("purchase", id)
	}
	l.Purchases = purchases
	return l, out, nil
}

func (l Ledger) RemovePurchase(id string) Ledger {
	l.Purchases = l.Purchases.Remove(id)
	return l
}

func (l Ledger) SetPurchasesFilter(p generic.FilterPatch) Ledger {
	l.Purchases = l.Purchases.SetFilter(p)
	return l
}

func normalizePurchase(p Purchase) Purchase {
	if p.Date == "" {
		p.Date = generic.Today()
	}
	p.Items = cloneItems(p.Items)
	p.Amount = Total(p.Items)
	p.BillNumbers = defaultNumbers(p.BillNumbers)
	p.Docs = cloneBlobs(p.Docs)
	return p
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (l Ledger) RemovePayment(id string) Ledger {
	l.Payments = l.Payments.Remove(id)
	return l
}

func (l Ledger) SetPaymentsFilter(p generic.FilterPatch) Ledger {
	l.Payments = l.Payments.SetFilter(p)
	return l
}

// =============================================================================
// RECEIPTS
// =============================================================================

// UpdateReceipt merges p onto the receipt's collector-supplied fields. The
// sale link and the customer/amount snapshot are kept.
func (l Ledger) UpdateReceipt(id string, p ReceiptPatch) (Ledger, Receipt, error) {
	existing, ok := l.Receipts.Get(id)
	if !ok {
		return l, Receipt{}, generic.NotFound("receipt", id)
	}
	d, err := normalizeDetails(p.apply(existing.Details()))
	if err != nil {
		return l, Receipt{}, err
	}
	updated := applyDetails(existing, d)
	l.Receipts, _ = l.Receipts.Update(id, func(Receipt) Receipt { return updated })
	return l, updated, nil
}

// UpsertReceiptByID stores r, replacing any receipt with the same id. An
// empty id gets a fresh one.
func (l Ledger) UpsertReceiptByID(r Receipt) (Ledger, Receipt, error) {
	d, err := normalizeDetails(r.Details())
	if err != nil {
		return l, Receipt{}, err
	}
	r = applyDetails(r, d)
	r.SaleID = strings.TrimSpace(r.SaleID)
	r.Customer = strings.TrimSpace(r.Customer)
	if r.ID == "" {
		r.ID = generic.NewIDNotIn(ReceiptPrefix, l.Receipts.Has)
	}
	if receipts, ok := l.Receipts.Update(r.ID, func(Receipt) Receipt { return r }); ok {
		l.Receipts = receipts
	} else {
		l.Receipts = l.Receipts.Add(r)
	}
	return l, r, nil
}

func (l Ledger) RemoveReceipt(id string) Ledger {
	l.Receipts = l.Receipts.Remove(id)
	return l
}

// AttachReceiptDoc appends doc to the receipt's documents. No-op if the
// receipt is absent.
func (l Ledger) AttachReceiptDoc(id string, doc Blob) Ledger {
	l.Receipts, _ = l.Receipts.Update(id, func(r Receipt) Receipt {
		docs := make([]Blob, 0, len(r.Docs)+1)
		r.Docs = append(append(docs, r.Docs...), doc)
		return r
	})
	return l
}

// RemoveReceiptDoc drops the document at index. No-op if the receipt is
// absent or index is out of range.
func (l Ledger) RemoveReceiptDoc(id string, index int) Ledger {
	l.Receipts, _ = l.Receipts.Update(id, func(r Receipt) Receipt {
		if index < 0 || index >= len(r.Docs) {
			return r
		}
		docs := make([]Blob, 0, len(r.Docs)-1)
		docs = append(docs, r.Docs[:index]...)
		r.Docs = append(docs, r.Docs[index+1:]...)
		return r
	})
	return l
}

func (l Ledger) SetReceiptsFilter(p generic.FilterPatch) Ledger {
	l.Receipts = l.Receipts.SetFilter(p)
	return l
}

// ClearReceiptsFilter resets the receipts search to its initial state.
func (l Ledger) ClearReceiptsFilter() Ledger {
	l.Receipts = l.Receipts.WithFilters(InitialFilters(CollectionReceipts))
	return l
}

// =============================================================================
// LOOKUPS (read-only)
// =============================================================================

func (l Ledger) SaleByID(id string) (Sale, bool)         { return l.Sales.Get(id) }
func (l Ledger) PurchaseByID(id string) (Purchase, bool) { return l.Purchases.Get(id) }
func (l Ledger) PaymentByID(id string) (Payment, bool)   { return l.Payments.Get(id) }
func (l Ledger) ReceiptByID(id string) (Receipt, bool)   { return l.Receipts.Get(id) }

// ReceiptsBySale returns every receipt recorded against saleID, in order.
func (l Ledger) ReceiptsBySale(saleID string) []Receipt {
	saleID = strings.TrimSpace(saleID)
	return l.Receipts.Find(func(r Receipt) bool { return r.SaleID == saleID })
}

// PaymentsForPurchase returns the payments referencing purchaseID.
func (l Ledger) PaymentsForPurchase(purchaseID string) []Payment {
	return l.Payments.Find(func(p Payment) bool {
		return p.Type == PaymentForPurchase && p.PurchaseID == purchaseID
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// defaultNumbers guarantees at least one (possibly empty) number slot.
func defaultNumbers(ns []string) []string {
	if len(ns) == 0 {
		return []string{""}
	}
	out := make([]string, len(ns))
	copy(out, ns)
	return out
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func cloneBlobs(blobs []Blob) []Blob {
	out := make([]Blob, len(blobs))
	copy(out, blobs)
	return out
}
