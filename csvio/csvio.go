// Package csvio reads and writes ledger rows as comma-separated files with
// a header line.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/warp/bizledger/ledger"
)

// Write emits a header with columns, then one line per row in column order.
// Missing keys are written as empty cells.
func Write(w io.Writer, columns []string, rows []ledger.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("cannot write csv header: %w", err)
	}
	record := make([]string, len(columns))
	for i, r := range rows {
		for j, c := range columns {
			record[j] = r[c]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses a file written by Write (or by a spreadsheet). The first line
// names the columns; blank lines are skipped and short lines are padded.
func Read(r io.Reader) ([]ledger.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []ledger.Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read csv line %d: %w", line, err)
		}
		row := make(ledger.Row, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
