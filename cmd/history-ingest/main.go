// Command history-ingest loads gzipped JSONL order-history exports into the
// database. Exports from different registers overlap, so each order key is
// checked against a bloom filter before hitting the database; the insert
// itself is idempotent.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/eloom/holybean-server/internal/domain/order"
	"github.com/eloom/holybean-server/internal/repository"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 10_000
)

// historyRecord is one line of a register export. Field names follow the POS
// client's wire format.
type historyRecord struct {
	OrderDate    string          `json:"orderDate"`
	OrderNum     int             `json:"orderNum"`
	CustomerName string          `json:"customerName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	CreditStatus int             `json:"creditStatus"`
	Items        []struct {
		Name  string          `json:"name"`
		Count int             `json:"count"`
		Price decimal.Decimal `json:"price"`
		Total decimal.Decimal `json:"total"`
	} `json:"orderItems"`
	Payments []struct {
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"paymentMethods"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz export files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("history ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("history ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob export files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	ing := &ingester{
		orders: repository.NewOrderRepository(pool),
		seen:   bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}

	slog.Info("ingesting export files", slog.Int("files", len(files)))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(ing.ingestFile(ctx, i, f))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("ingest summary",
		slog.Uint64("read", ing.read),
		slog.Uint64("inserted", ing.inserted),
		slog.Uint64("skipped", ing.skipped),
	)

	return nil
}

// ingester shares the dedup filter and counters across file workers.
type ingester struct {
	orders *repository.OrderRepository

	mu   sync.Mutex
	seen *bloom.BloomFilter

	read     uint64
	inserted uint64
	skipped  uint64
}

// markSeen records the order key in the filter. It reports true when the key
// was possibly ingested before, in which case the insert still runs and the
// database decides.
func (ing *ingester) markSeen(key string) bool {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.seen.TestAndAddString(key)
}

func (ing *ingester) ingestFile(ctx context.Context, idx int, path string) func() error {
	return func() error {
		var count uint64

		err := streamGzLines(ctx, path, func(line []byte) error {
			var rec historyRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return errors.Wrap(err, "parse record")
			}

			o := rec.toOrder()
			key := fmt.Sprintf("%s#%d", o.OrderDate, o.OrderNum)
			dup := ing.markSeen(key)

			written, err := ing.orders.Import(ctx, o)
			if err != nil {
				return err
			}

			ing.mu.Lock()
			ing.read++
			if written {
				ing.inserted++
			} else {
				ing.skipped++
				if !dup {
					slog.Warn("order already in database", slog.String("key", key))
				}
			}
			ing.mu.Unlock()

			count++
			if count%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Int("file", idx+1),
					slog.Uint64("records", count),
				)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "ingest %s", path)
		}

		slog.Info("file complete",
			slog.Int("file", idx+1),
			slog.String("path", path),
			slog.Uint64("records", count),
		)
		return nil
	}
}

func (rec *historyRecord) toOrder() *order.Order {
	o := &order.Order{
		OrderDate:    rec.OrderDate,
		OrderNum:     rec.OrderNum,
		CustomerName: rec.CustomerName,
		TotalAmount:  rec.TotalAmount,
		CreditStatus: rec.CreditStatus,
	}
	for _, it := range rec.Items {
		o.Items = append(o.Items, order.LineItem{
			ItemName:  it.Name,
			Quantity:  it.Count,
			UnitPrice: it.Price,
			Subtotal:  it.Total,
		})
	}
	for _, p := range rec.Payments {
		o.Payments = append(o.Payments, order.Payment{
			Method: p.Type,
			Amount: p.Amount,
		})
	}
	return o
}

// streamGzLines opens a gzip-compressed file and calls fn for each line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
