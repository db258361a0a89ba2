package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LINE-ITEM CODEC - One interchange token per item list
// =============================================================================
//
// FORMAT (v1):
//   name:qty@price|name:qty@price|...
//
// Any "|" inside a name is replaced by "/" before encoding. The substitution
// is lossy and kept as-is so files exported by earlier versions read back
// identically. Names containing ":" or "@" do not round-trip either.

// ItemCodecVersion tags the token format produced by EncodeItems.
const ItemCodecVersion = "v1"

const (
	itemSep  = "|"
	qtySep   = ":"
	priceSep = "@"
)

// EncodeItems renders items as a single token.
func EncodeItems(items []LineItem) string {
	tokens := make([]string, len(items))
	for i, li := range items {
		name := strings.ReplaceAll(li.Name, itemSep, "/")
		tokens[i] = name + qtySep + li.Qty.String() + priceSep + li.Price.String()
	}
	return strings.Join(tokens, itemSep)
}

// DecodeItems parses a token produced by EncodeItems. Empty pieces are
// skipped; unparsable or missing numbers decode as zero.
func DecodeItems(token string) []LineItem {
	var items []LineItem
	for _, piece := range strings.Split(token, itemSep) {
		if piece == "" {
			continue
		}
		left, price, _ := strings.Cut(piece, priceSep)
		name, qty, _ := strings.Cut(left, qtySep)
		items = append(items, LineItem{
			Name:  strings.TrimSpace(name),
			Qty:   parseNumber(qty),
			Price: parseNumber(price),
		})
	}
	return items
}

// parseNumber reads a decimal, defaulting to zero.
func parseNumber(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
