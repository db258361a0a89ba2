/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Ledger records are
  already JSON-tagged and are returned as-is; these types cover request
  bodies and response envelopes.

NAMING CONVENTION:
  - *Request:  Request body types from clients
  - *Response: Response wrappers

NUMBERS:
  Quantities, prices and amounts are decimals. Requests may send them as
  JSON numbers or strings; responses always use strings.

VALIDATION:
  Validation is done in the ledger package, not here. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Record shapes
*/
package api

import (
	"github.com/warp/bizledger/generic"
	"github.com/warp/bizledger/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SaleRequest creates a sale. Any amount sent is ignored.
type SaleRequest struct {
	Date           string            `json:"date"`
	Customer       string            `json:"customer"`
	Items          []ledger.LineItem `json:"items"`
	InvoiceNumbers []string          `json:"invoiceNumbers"`
	InvoiceDocs    []ledger.Blob     `json:"invoiceDocs"`
}

// PurchaseRequest creates a purchase. Any amount sent is ignored.
type PurchaseRequest struct {
	Date        string            `json:"date"`
	Supplier    string            `json:"supplier"`
	Items       []ledger.LineItem `json:"items"`
	BillNumbers []string          `json:"billNumbers"`
	Docs        []ledger.Blob     `json:"docs"`
}

// UpdateSaleRequest changes only the fields present in the body. Amount
// is recomputed from the resulting items.
type UpdateSaleRequest = ledger.SalePatch

// UpdatePurchaseRequest changes only the fields present in the body.
type UpdatePurchaseRequest = ledger.PurchasePatch

// UpdateReceiptRequest changes only the collector fields present in the body.
type UpdateReceiptRequest = ledger.ReceiptPatch

// CreateReceiptRequest records a receipt against a sale. Policy is
// required: "append" or "upsert-by-sale".
type CreateReceiptRequest struct {
	Policy ledger.ReceiptPolicy `json:"policy"`
	ledger.ReceiptDetails
}

// FilterRequest shallow-merges into a collection's filters.
type FilterRequest = generic.FilterPatch

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ViewResponse is a filtered collection view.
type ViewResponse[T any] struct {
	Items   []T             `json:"items"`
	Filters generic.Filters `json:"filters"`
	Count   int             `json:"count"`
	Total   int             `json:"total"`
}

// PurchaseCreatedResponse returns both records created with a purchase.
type PurchaseCreatedResponse struct {
	Purchase ledger.Purchase `json:"purchase"`
	Payment  ledger.Payment  `json:"payment"`
}

// ImportResponse reports an import.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is returned on any failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
