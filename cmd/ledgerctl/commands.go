package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/warp/bizledger/csvio"
	"github.com/warp/bizledger/generic"
	"github.com/warp/bizledger/ledger"
	"github.com/warp/bizledger/store/sqlite"
)

var dbPath = flag.String("db", "ledger.db", "Path to the SQLite ledger database")
var snapshotKey = flag.String("key", ledger.DefaultSnapshotKey, "Key the ledger snapshot is stored under")

var commands = []subcommands.Command{
	&showCmd{},
	&exportCmd{},
	&importCmd{},
	&resetCmd{},
}

// saveErrors records every error the gateway swallows, so a command that
// exists to write can still fail when nothing was saved.
type saveErrors struct {
	mu   sync.Mutex
	errs []error
}

func (s *saveErrors) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *saveErrors) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}

// newBook restores the ledger stored under -key in kv.
func newBook(ctx context.Context, kv generic.KVStore) (*ledger.Book, *saveErrors) {
	errs := &saveErrors{}
	gw := ledger.NewGateway(kv, *snapshotKey)
	gw.OnError = errs.record
	return ledger.NewBook(ctx, gw), errs
}

// openBook restores the ledger stored in -db. The returned func closes the
// database.
func openBook(ctx context.Context) (*ledger.Book, func(), error) {
	book, store, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return book, func() { store.Close() }, nil
}

func openStore(ctx context.Context) (*ledger.Book, *sqlite.Store, error) {
	store, err := sqlite.New(*dbPath)
	if err != nil {
		return nil, nil, err
	}
	book, _ := newBook(ctx, store)
	return book, store, nil
}

// =============================================================================
// show
// =============================================================================

type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "summarize the stored ledger" }
func (*showCmd) Usage() string {
	return `ledgerctl [-db <path>] show

  Prints record counts and totals for each collection, and what is still
  owed on unpaid purchase payments.
`
}
func (*showCmd) SetFlags(*flag.FlagSet) {}

func (*showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, store, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	entries, err := store.Keys(ctx, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	for _, e := range entries {
		fmt.Printf("key %-12s %8d bytes  updated %s\n", e.Key, e.Size, e.UpdatedAt.Format(time.RFC3339))
	}
	writeSummary(os.Stdout, book.Ledger())
	return subcommands.ExitSuccess
}

func writeSummary(w io.Writer, l ledger.Ledger) {
	sales, purchases, receipts, unpaid := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, s := range l.Sales.List() {
		sales = sales.Add(s.Amount)
	}
	for _, p := range l.Purchases.List() {
		purchases = purchases.Add(p.Amount)
	}
	for _, r := range l.Receipts.List() {
		receipts = receipts.Add(r.Amount)
	}
	unpaidCount := 0
	for _, p := range l.Payments.List() {
		if p.Type == ledger.PaymentForPurchase && p.Status == ledger.StatusUnpaid {
			unpaid = unpaid.Add(p.Amount)
			unpaidCount++
		}
	}
	fmt.Fprintf(w, "sales      %5d  %s\n", l.Sales.Len(), sales.StringFixed(2))
	fmt.Fprintf(w, "purchases  %5d  %s\n", l.Purchases.Len(), purchases.StringFixed(2))
	fmt.Fprintf(w, "payments   %5d  (%d unpaid, %s owed)\n", l.Payments.Len(), unpaidCount, unpaid.StringFixed(2))
	fmt.Fprintf(w, "receipts   %5d  %s\n", l.Receipts.Len(), receipts.StringFixed(2))
}

// =============================================================================
// export
// =============================================================================

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write one collection as CSV" }
func (*exportCmd) Usage() string {
	return `ledgerctl [-db <path>] export [-o <file>] <sales|purchases|payments|receipts>

  Writes the collection with a header line. Without -o the CSV goes to
  standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file (defaults to stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "export: expected exactly one collection name")
		return subcommands.ExitUsageError
	}
	book, closeDB, err := openBook(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeDB()

	columns, rows, err := exportRows(book.Ledger(), f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	var w io.Writer = os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}
	if err := csvio.Write(w, columns, rows); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func exportRows(l ledger.Ledger, collection string) ([]string, []ledger.Row, error) {
	switch collection {
	case ledger.CollectionSales:
		return ledger.SaleColumns, ledger.SaleRows(l.Sales.List()), nil
	case ledger.CollectionPurchases:
		return ledger.PurchaseColumns, ledger.PurchaseRows(l.Purchases.List()), nil
	case ledger.CollectionPayments:
		return ledger.PaymentColumns, ledger.PaymentRows(l.Payments.List()), nil
	case ledger.CollectionReceipts:
		return ledger.ReceiptColumns, ledger.ReceiptRows(l.Receipts.List()), nil
	}
	return nil, nil, fmt.Errorf("unknown collection %q", collection)
}

// =============================================================================
// import
// =============================================================================

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "add sales or purchases from CSV" }
func (*importCmd) Usage() string {
	return `ledgerctl [-db <path>] import <sales|purchases> <file>

  Adds one record per row. Row ids are kept when not already used. Each
  imported purchase also gets its Unpaid payment.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "import: expected a collection name and a file")
		return subcommands.ExitUsageError
	}
	file, err := os.Open(f.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	rows, err := csvio.Read(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	n, err := importRows(ctx, store, f.Arg(0), rows)
	if errors.Is(err, errUnknownCollection) {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("imported %d %s\n", n, f.Arg(0))
	return subcommands.ExitSuccess
}

var errUnknownCollection = errors.New("only sales and purchases can be imported")

// importRows adds rows to the ledger stored in kv. It fails if the stored
// ledger could not be read, so an import never overwrites data it did not
// load, and if the result could not be written back.
func importRows(ctx context.Context, kv generic.KVStore, collection string, rows []ledger.Row) (int, error) {
	if collection != ledger.CollectionSales && collection != ledger.CollectionPurchases {
		return 0, fmt.Errorf("%w: %q", errUnknownCollection, collection)
	}
	book, errs := newBook(ctx, kv)
	if err := errs.Err(); err != nil {
		return 0, fmt.Errorf("cannot load ledger: %w", err)
	}

	var n int
	switch collection {
	case ledger.CollectionSales:
		n = len(book.ImportSales(ctx, ledger.SaleDraftsFromRows(rows)))
	case ledger.CollectionPurchases:
		n = len(book.ImportPurchases(ctx, ledger.PurchaseDraftsFromRows(rows)))
	}
	if err := errs.Err(); err != nil {
		return 0, fmt.Errorf("%d %s not saved: %w", n, collection, err)
	}
	return n, nil
}

// =============================================================================
// reset
// =============================================================================

type resetCmd struct {
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete everything stored in the database" }
func (*resetCmd) Usage() string {
	return `ledgerctl [-db <path>] reset -yes

  Removes every stored key, including snapshots kept under other keys.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm the reset")
}

func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "reset: refusing without -yes")
		return subcommands.ExitUsageError
	}
	store, err := sqlite.New(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.Reset(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
