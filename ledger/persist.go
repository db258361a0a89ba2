/*
persist.go - Snapshot/restore of the whole ledger

PURPOSE:
  The persistence gateway writes the entire ledger through to a durable
  key-value store after every mutation, and reads it back once at startup.

SNAPSHOT SHAPE (JSON, one key):
  {
    "sales":     {"items": [...], "filters": {"q": ""}},
    "purchases": {"items": [...], "filters": {"q": ""}},
    "payments":  {"items": [...], "filters": {"q": "", "status": "ALL"}},
    "receipts":  {"items": [...], "filters": {"q": ""}},
    "<other>":   <passed through untouched>
  }

BEST-EFFORT WRITES:
  Save never returns an error. A failing store (disk full, medium gone) is
  logged and the ledger mutation that triggered the save stands.

PARTIAL HYDRATION:
  Restore decodes each collection on its own. A missing or malformed
  collection falls back to its empty initial state without affecting the
  others. A missing or unreadable snapshot yields the empty ledger.

SEE ALSO:
  - generic/store.go: KVStore interface
  - book.go:          Calls Save after every mutation, Restore at startup
*/
package ledger

import (
	"context"
	"encoding/json"
	"log"

	"github.com/warp/bizledger/generic"
)

// DefaultSnapshotKey is the store key the ledger is saved under.
const DefaultSnapshotKey = "ledger"

// =============================================================================
// SNAPSHOT - Serializable form of a Ledger
// =============================================================================

// CollectionSnapshot is one collection's records and filter state.
type CollectionSnapshot[T any] struct {
	Items   []T             `json:"items"`
	Filters generic.Filters `json:"filters"`
}

// Snapshot is the serializable capture of a Ledger.
type Snapshot struct {
	Sales     CollectionSnapshot[Sale]
	Purchases CollectionSnapshot[Purchase]
	Payments  CollectionSnapshot[Payment]
	Receipts  CollectionSnapshot[Receipt]

	// Extra holds collections this package does not model.
	Extra map[string]json.RawMessage
}

// TakeSnapshot captures l.
func TakeSnapshot(l Ledger) Snapshot {
	return Snapshot{
		Sales:     snapshotOf(l.Sales),
		Purchases: snapshotOf(l.Purchases),
		Payments:  snapshotOf(l.Payments),
		Receipts:  snapshotOf(l.Receipts),
		Extra:     l.extra,
	}
}

func snapshotOf[T generic.Record](c generic.Collection[T]) CollectionSnapshot[T] {
	return CollectionSnapshot[T]{Items: c.List(), Filters: c.Filters()}
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}
	out[CollectionSales] = s.Sales
	out[CollectionPurchases] = s.Purchases
	out[CollectionPayments] = s.Payments
	out[CollectionReceipts] = s.Receipts
	return json.Marshal(out)
}

// DecodeSnapshot rebuilds a Ledger from data, hydrating each collection
// independently. It never fails: unusable parts become empty defaults.
// ok is false when data is not a JSON object at all.
func DecodeSnapshot(data []byte) (l Ledger, ok bool) {
	l = New()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return l, false
	}

	if items, f, ok := decodeCollection[Sale](raw[CollectionSales], CollectionSales); ok {
		for i := range items {
			items[i] = normalizeSale(items[i])
		}
		l.Sales = generic.NewCollection(items, f)
	}
	if items, f, ok := decodeCollection[Purchase](raw[CollectionPurchases], CollectionPurchases); ok {
		for i := range items {
			items[i] = normalizePurchase(items[i])
		}
		l.Purchases = generic.NewCollection(items, f)
	}
	if items, f, ok := decodeCollection[Payment](raw[CollectionPayments], CollectionPayments); ok {
		l.Payments = generic.NewCollection(items, f)
	}
	if items, f, ok := decodeCollection[Receipt](raw[CollectionReceipts], CollectionReceipts); ok {
		l.Receipts = generic.NewCollection(items, f)
	}

	for k, v := range raw {
		switch k {
		case CollectionSales, CollectionPurchases, CollectionPayments, CollectionReceipts:
			continue
		}
		if l.extra == nil {
			l.extra = make(map[string]json.RawMessage)
		}
		l.extra[k] = v
	}
	return l, true
}

func decodeCollection[T any](data json.RawMessage, name string) ([]T, generic.Filters, bool) {
	if len(data) == 0 {
		return nil, generic.Filters{}, false
	}
	var c struct {
		Items   []T              `json:"items"`
		Filters *generic.Filters `json:"filters"`
	}
	if err := json.Unmarshal(data, &c); err != nil {
		log.Printf("restore: dropping %s collection: %v", name, err)
		return nil, generic.Filters{}, false
	}
	f := InitialFilters(name)
	if c.Filters != nil {
		f = *c.Filters
	}
	return c.Items, f, true
}

// =============================================================================
// GATEWAY - Best-effort write-through to a KVStore
// =============================================================================

type Gateway struct {
	kv  generic.KVStore
	key string

	// OnError, if set, is called with every swallowed persistence error.
	OnError func(error)
}

func NewGateway(kv generic.KVStore, key string) *Gateway {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &Gateway{kv: kv, key: key}
}

// Key returns the store key snapshots are written to.
func (g *Gateway) Key() string { return g.key }

// Save writes snap to the store. Failures are logged and swallowed.
func (g *Gateway) Save(ctx context.Context, snap Snapshot) {
	if err := g.write(ctx, snap); err != nil {
		log.Printf("persist: %v", err)
		if g.OnError != nil {
			g.OnError(err)
		}
	}
}

func (g *Gateway) write(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return &generic.PersistenceError{Op: "encode", Key: g.key, Err: err}
	}
	if err := g.kv.Put(ctx, g.key, data); err != nil {
		return &generic.PersistenceError{Op: "write", Key: g.key, Err: err}
	}
	return nil
}

// Restore reads the last snapshot. ok is false when nothing usable was
// stored, in which case l is the empty default ledger.
func (g *Gateway) Restore(ctx context.Context) (l Ledger, ok bool) {
	data, found, err := g.kv.Get(ctx, g.key)
	if err != nil {
		err = &generic.PersistenceError{Op: "read", Key: g.key, Err: err}
		log.Printf("restore: %v", err)
		if g.OnError != nil {
			g.OnError(err)
		}
		return New(), false
	}
	if !found {
		return New(), false
	}
	l, ok = DecodeSnapshot(data)
	if !ok {
		log.Printf("restore: snapshot %q is corrupt, starting empty", g.key)
	}
	return l, ok
}
