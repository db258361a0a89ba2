/*
store.go - Persistence interface for ledger snapshots

PURPOSE:
  Defines the interface between the ledger and durable storage. The ledger
  is persisted as whole snapshots written through after every mutation, so
  the storage contract is a plain key-value store: one key, one blob.

KEY INTERFACES:
  KVStore: Get/Put/Delete of opaque byte values

SEMANTICS:
  - Get on a missing key returns (nil, false, nil), not an error.
  - Put replaces the previous value atomically.
  - Delete of a missing key is a no-op.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:  SQLite, the production store
  - generic/store/memory.go: In-memory for testing, with failure injection

EXAMPLE:
  kv, _ := sqlite.New("./ledger.db")
  gw := ledger.NewGateway(kv, ledger.DefaultSnapshotKey)
  book := ledger.NewBook(ctx, gw)

SEE ALSO:
  - ledger/persist.go: Snapshot encoding and best-effort writes
*/
package generic

import "context"

// =============================================================================
// STORE - Interface for durable key-value persistence
// =============================================================================

// KVStore is a durable, process-external key-value store.
type KVStore interface {
	// Get returns the value stored under key. ok is false when absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
