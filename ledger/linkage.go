/*
linkage.go - Cross-entity rules between sales, purchases, payments, receipts

PURPOSE:
  Keeps the four collections consistently cross-referenced.

RULES:
  1. PURCHASE → PAYMENT: creating a purchase creates exactly one Unpaid
     payment of type "purchase" referencing it. Both land in the same new
     Ledger value, so no reader ever sees one without the other.
  2. SALE: creating a sale creates nothing else. A sale payment exists only
     if a caller asks for one explicitly (CreatePaymentForSale).
  3. RECEIPT → SALE: a receipt references exactly one sale. Customer and
     amount are copied from the sale at creation time.
  4. SETTLEMENT: Unpaid → Paid with receipt details attached. Settling an
     already-paid payment overwrites the details.

RECEIPT POLICIES:
  Two insertion policies exist and the caller must pick one:
    ReceiptAppend        many receipts per sale
    ReceiptUpsertBySale  at most one; replaces the existing one in place,
                         keyed by the sale id (the receipt id is kept)

VALIDATION:
  Cheque receipts need chequeNo and chequeBank; LC receipts need lcNo and
  lcBank. Other payment types clear those four fields. An empty payment
  type means Cash.
*/
package ledger

import (
	"strings"

	"github.com/warp/bizledger/generic"
)

// CreateSale stores a new sale. It never creates a payment.
func (l Ledger) CreateSale(d SaleDraft) (Ledger, Sale) {
	return l.AddSale(d)
}

// CreatePurchase stores a new purchase and its Unpaid payment.
func (l Ledger) CreatePurchase(d PurchaseDraft) (Ledger, Purchase, Payment) {
	d.ID = ""
	return l.createPurchase(d)
}

func (l Ledger) createPurchase(d PurchaseDraft) (Ledger, Purchase, Payment) {
	l, p := l.insertPurchase(d)
	pay := Payment{
		ID:               generic.NewIDNotIn(PaymentPrefix, l.Payments.Has),
		Type:             PaymentForPurchase,
		PurchaseID:       p.ID,
		CounterpartyName: p.Supplier,
		Amount:           p.Amount,
		Date:             p.Date,
		Status:           StatusUnpaid,
	}
	l.Payments = l.Payments.Add(pay)
	return l, p, pay
}

// CreatePaymentForSale records an Unpaid payment of type "sale" for an
// existing sale.
func (l Ledger) CreatePaymentForSale(saleID string) (Ledger, Payment, error) {
	s, ok := l.Sales.Get(saleID)
	if !ok {
		return l, Payment{}, generic.NotFound("sale", saleID)
	}
	pay := Payment{
		ID:               generic.NewIDNotIn(PaymentPrefix, l.Payments.Has),
		Type:             PaymentForSale,
		SaleID:           s.ID,
		CounterpartyName: s.Customer,
		Amount:           s.Amount,
		Date:             s.Date,
		Status:           StatusUnpaid,
	}
	l.Payments = l.Payments.Add(pay)
	return l, pay, nil
}

// CreateReceiptForSale records a receipt against saleID using policy.
func (l Ledger) CreateReceiptForSale(saleID string, d ReceiptDetails, policy ReceiptPolicy) (Ledger, Receipt, error) {
	if !policy.Valid() {
		return l, Receipt{}, generic.Invalid("policy", "must be \"append\" or \"upsert-by-sale\"")
	}
	saleID = strings.TrimSpace(saleID)
	s, ok := l.Sales.Get(saleID)
	if !ok {
		return l, Receipt{}, generic.NotFound("sale", saleID)
	}
	d, err := normalizeDetails(d)
	if err != nil {
		return l, Receipt{}, err
	}

	r := applyDetails(Receipt{
		SaleID:   s.ID,
		Customer: strings.TrimSpace(s.Customer),
		Amount:   s.Amount,
	}, d)

	if policy == ReceiptUpsertBySale {
		receipts, replaced := l.Receipts.ReplaceFirst(
			func(x Receipt) bool { return x.SaleID == s.ID },
			func(x Receipt) Receipt {
				r.ID = x.ID
				return r
			},
		)
		if replaced {
			l.Receipts = receipts
			return l, r, nil
		}
	}

	r.ID = generic.NewIDNotIn(ReceiptPrefix, l.Receipts.Has)
	l.Receipts = l.Receipts.Add(r)
	return l, r, nil
}

// SettlePayment marks the payment Paid and stores the receipt details.
func (l Ledger) SettlePayment(id string, d ReceiptDetails) (Ledger, Payment, error) {
	if !l.Payments.Has(id) {
		return l, Payment{}, generic.NotFound("payment", id)
	}
	d, err := normalizeDetails(d)
	if err != nil {
		return l, Payment{}, err
	}
	var settled Payment
	l.Payments, _ = l.Payments.Update(id, func(p Payment) Payment {
		p.Status = StatusPaid
		p.Receipt = &d
		settled = p
		return p
	})
	return l, settled, nil
}

// =============================================================================
// RECEIPT DETAILS
// =============================================================================

// normalizeDetails trims, applies defaults and validates d.
func normalizeDetails(d ReceiptDetails) (ReceiptDetails, error) {
	d.Date = strings.TrimSpace(d.Date)
	if d.Date == "" {
		d.Date = generic.Today()
	}
	d.VoucherNo = strings.TrimSpace(d.VoucherNo)
	d.PaymentType = PaymentType(strings.TrimSpace(string(d.PaymentType)))
	if d.PaymentType == "" {
		d.PaymentType = PayCash
	}
	d.ChequeNo = strings.TrimSpace(d.ChequeNo)
	d.ChequeBank = strings.TrimSpace(d.ChequeBank)
	d.LCNo = strings.TrimSpace(d.LCNo)
	d.LCBank = strings.TrimSpace(d.LCBank)
	d.Docs = cloneBlobs(d.Docs)

	if !d.PaymentType.Valid() {
		return d, generic.Invalid("paymentType", "unknown payment type "+string(d.PaymentType))
	}

	switch d.PaymentType {
	case PayCheque:
		if d.ChequeNo == "" {
			return d, generic.Invalid("chequeNo", "required for cheque payments")
		}
		if d.ChequeBank == "" {
			return d, generic.Invalid("chequeBank", "required for cheque payments")
		}
		d.LCNo, d.LCBank = "", ""
	case PayLC:
		if d.LCNo == "" {
			return d, generic.Invalid("lcNo", "required for LC payments")
		}
		if d.LCBank == "" {
			return d, generic.Invalid("lcBank", "required for LC payments")
		}
		d.ChequeNo, d.ChequeBank = "", ""
	default:
		d.ChequeNo, d.ChequeBank, d.LCNo, d.LCBank = "", "", "", ""
	}
	return d, nil
}

// applyDetails copies normalized details onto r.
func applyDetails(r Receipt, d ReceiptDetails) Receipt {
	r.Date = d.Date
	r.VoucherNo = d.VoucherNo
	r.PaymentType = d.PaymentType
	r.ChequeNo = d.ChequeNo
	r.ChequeBank = d.ChequeBank
	r.LCNo = d.LCNo
	r.LCBank = d.LCBank
	r.Docs = d.Docs
	return r
}
