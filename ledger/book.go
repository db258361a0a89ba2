package ledger

import (
	"context"
	"sync"

	"github.com/warp/bizledger/generic"
)

// =============================================================================
// BOOK - Explicit handle owning the current ledger value
// =============================================================================

// Book holds one ledger. Mutations are applied one at a time; each produces
// a new Ledger value that is written through the gateway and then
// published. Readers get immutable values from Ledger().
//
// Independent Books (e.g. one per test) share nothing.
type Book struct {
	mu     sync.RWMutex
	write  sync.Mutex
	gw     *Gateway
	ledger Ledger
}

// NewBook restores the ledger from gw. A missing or corrupt snapshot gives
// an empty ledger.
func NewBook(ctx context.Context, gw *Gateway) *Book {
	l, _ := gw.Restore(ctx)
	return &Book{gw: gw, ledger: l}
}

// Ledger returns the current value.
func (b *Book) Ledger() Ledger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger
}

// apply runs op against the current value. When op fails nothing changes.
func (b *Book) apply(ctx context.Context, op func(Ledger) (Ledger, error)) error {
	b.write.Lock()
	defer b.write.Unlock()

	next, err := op(b.Ledger())
	if err != nil {
		return err
	}
	// The save outlives the caller: a cancelled request must not drop it.
	b.gw.Save(context.WithoutCancel(ctx), TakeSnapshot(next))

	b.mu.Lock()
	b.ledger = next
	b.mu.Unlock()
	return nil
}

// Reset replaces the ledger with the empty default.
func (b *Book) Reset(ctx context.Context) {
	b.apply(ctx, func(Ledger) (Ledger, error) { return New(), nil })
}

// Replace installs l as the current value. Used by imports of whole
// snapshots.
func (b *Book) Replace(ctx context.Context, l Ledger) {
	b.apply(ctx, func(Ledger) (Ledger, error) { return l, nil })
}

// =============================================================================
// SALES
// =============================================================================

func (b *Book) CreateSale(ctx context.Context, d SaleDraft) Sale {
	var s Sale
	b.apply(ctx, func(l Ledger) (Ledger, error) {
		l, s = l.CreateSale(d)
		return l, nil
	})
	return s
}

func (b *Book) UpdateSale(ctx context.Context, id string, p SalePatch) (Sale, error) {
	var out Sale
	err := b.apply(ctx, func(l Ledger) (Ledger, error) {
		var err error
		l, out, err = l.UpdateSale(id, p)
		return l, err
	})
	return out, err
}

func (b *Book) RemoveSale(ctx context.Context, id string) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.RemoveSale(id), nil })
}

func (b *Book) SetSalesFilter(ctx context.Context, p generic.FilterPatch) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.SetSalesFilter(p), nil })
}

// ImportSales adds every draft, keeping draft ids that are free.
func (b *Book) ImportSales(ctx context.Context, drafts []SaleDraft) []Sale {
	var out []Sale
	b.apply(ctx, func(l Ledger) (Ledger, error) {
		out = out[:0]
		for _, d := range drafts {
			var s Sale
			l, s = l.insertSale(d)
			out = append(out, s)
		}
		return l, nil
	})
	return out
}

// =============================================================================
// PURCHASES
// =============================================================================

func (b *Book) CreatePurchase(ctx context.Context, d PurchaseDraft) (Purchase, Payment) {
	var (
		p   Purchase
		pay Payment
	)
	b.apply(ctx, func(l Ledger) (Ledger, error) {
		l, p, pay = l.CreatePurchase(d)
		return l, nil
	})
	return p, pay
}

func (b *Book) UpdatePurchase(ctx context.Context, id string, p PurchasePatch) (Purchase, error) {
	var out Purchase
	err := b.apply(ctx, func(l Ledger) (Ledger, error) {
		var err error
		l, out, err = l.UpdatePurchase(id, p)
		return l, err
	})
	return out, err
}

func (b *Book) RemovePurchase(ctx context.Context, id string) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.RemovePurchase(id), nil })
}

func (b *Book) SetPurchasesFilter(ctx context.Context, p generic.FilterPatch) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.SetPurchasesFilter(p), nil })
}

// ImportPurchases creates every draft through CreatePurchase semantics, so
// each imported purchase gets its Unpaid payment.
func (b *Book) ImportPurchases(ctx context.Context, drafts []PurchaseDraft) []Purchase {
	var out []Purchase
	b.apply(ctx, func(l Ledger) (Ledger, error) {
		out = out[:0]
		for _, d := range drafts {
			var p Purchase
			l, p, _ = l.createPurchase(d)
			out = append(out, p)
		}
		return l, nil
	})
	return out
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (b *Book) CreatePaymentForSale(ctx context.Context, saleID string) (Payment, error) {
	var out Payment
	err := b.apply(ctx, func(l Ledger) (Ledger, error) {
		var err error
		l, out, err = l.CreatePaymentForSale(saleID)
		return l, err
	})
	return out, err
}

func (b *Book) SettlePayment(ctx context.Context, id string, d ReceiptDetails) (Payment, error) {
	var out Payment
	err := b.apply(ctx, func(l Ledger) (Ledger, error) {
		var err error
		l, out, err = l.SettlePayment(id, d)
		return l, err
	})
	return out, err
}

func (b *Book) RemovePayment(ctx context.Context, id string) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.RemovePayment(id), nil })
}

func (b *Book) SetPaymentsFilter(ctx context.Context, p generic.FilterPatch) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.SetPaymentsFilter(p), nil })
}

// =============================================================================
// RECEIPTS
// =============================================================================

func (b *Book) CreateReceiptForSale(ctx context.Context, saleID string, d ReceiptDetails, policy ReceiptPolicy) (Receipt, error) {
	var out Receipt
	err := b.apply(ctx, func(l Ledger) (Ledger, error) {
		var err error
		l, out, err = l.CreateReceiptForSale(saleID, d, policy)
		return l, err
	})
	return out, err
}

func (b *Book) UpdateReceipt(ctx context.Context, id string, p ReceiptPatch) (Receipt, error) {
	var out Receipt
	err := b.apply(ctx, func(l Ledger) (Ledger, error) {
		var err error
		l, out, err = l.UpdateReceipt(id, p)
		return l, err
	})
	return out, err
}

func (b *Book) UpsertReceiptByID(ctx context.Context, r Receipt) (Receipt, error) {
	var out Receipt
	err := b.apply(ctx, func(l Ledger) (Ledger, error) {
		var err error
		l, out, err = l.UpsertReceiptByID(r)
		return l, err
	})
	return out, err
}

func (b *Book) RemoveReceipt(ctx context.Context, id string) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.RemoveReceipt(id), nil })
}

func (b *Book) AttachReceiptDoc(ctx context.Context, id string, doc Blob) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.AttachReceiptDoc(id, doc), nil })
}

func (b *Book) RemoveReceiptDoc(ctx context.Context, id string, index int) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.RemoveReceiptDoc(id, index), nil })
}

func (b *Book) SetReceiptsFilter(ctx context.Context, p generic.FilterPatch) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.SetReceiptsFilter(p), nil })
}

func (b *Book) ClearReceiptsFilter(ctx context.Context) {
	b.apply(ctx, func(l Ledger) (Ledger, error) { return l.ClearReceiptsFilter(), nil })
}
