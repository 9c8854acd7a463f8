package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/eloom/holybean-server/internal/domain/menu"
	"github.com/eloom/holybean-server/internal/domain/order"
	"github.com/eloom/holybean-server/internal/repository"
)

type menuItemJSON struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Placement int             `json:"placement"`
}

func main() {
	var (
		databaseURL  string
		menuFile     string
		sampleOrders bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu board JSON file")
	flag.BoolVar(&sampleOrders, "sample-orders", false, "insert a few sample orders for local development")
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

	if err := run(ctx, databaseURL, menuFile, sampleOrders); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile string, sampleOrders bool) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedMenuBoard(ctx, repository.NewMenuRepository(pool), menuFile); err != nil {
		return errors.Wrap(err, "seed menu board")
	}

	if sampleOrders {
		if err := seedSampleOrders(ctx, repository.NewOrderRepository(pool)); err != nil {
			return errors.Wrap(err, "seed sample orders")
		}
	}

	return nil
}

func seedMenuBoard(ctx context.Context, menus *repository.MenuRepository, menuFile string) error {
	slog.Info("reading menu file", slog.String("path", menuFile))

	data, err := os.ReadFile(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu file")
	}

	var items []menuItemJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "parse menu JSON")
	}

	board := menu.Board{SavedAt: time.Now().UTC()}
	for _, it := range items {
		board.Items = append(board.Items, menu.Item{
			ID:        it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Placement: it.Placement,
		})
	}

	slog.Info("saving menu board", slog.Int("items", len(board.Items)))

	if err := menus.SaveBoard(ctx, board); err != nil {
		return errors.Wrap(err, "save board")
	}

	return nil
}

func seedSampleOrders(ctx context.Context, orders *repository.OrderRepository) error {
	slog.Info("seeding sample orders")

	today := time.Now().UTC().Format("2006-01-02")
	samples := []order.Order{
		{
			OrderDate:    today,
			OrderNum:     1,
			CustomerName: "홍길동",
			TotalAmount:  decimal.NewFromInt(8000),
			CreditStatus: order.CreditSettled,
			Items: []order.LineItem{
				{ItemName: "Americano", Quantity: 2, UnitPrice: decimal.NewFromInt(3000), Subtotal: decimal.NewFromInt(6000)},
				{ItemName: "Croissant", Quantity: 1, UnitPrice: decimal.NewFromInt(2000), Subtotal: decimal.NewFromInt(2000)},
			},
			Payments: []order.Payment{
				{Method: "Card", Amount: decimal.NewFromInt(8000)},
			},
		},
		{
			OrderDate:    today,
			OrderNum:     2,
			CustomerName: "김영희",
			TotalAmount:  decimal.NewFromInt(4500),
			CreditStatus: order.CreditPending,
			Items: []order.LineItem{
				{ItemName: "Latte", Quantity: 1, UnitPrice: decimal.NewFromInt(4500), Subtotal: decimal.NewFromInt(4500)},
			},
			Payments: []order.Payment{
				{Method: "Credit", Amount: decimal.NewFromInt(4500)},
			},
		},
	}

	for i := range samples {
		o := &samples[i]
		if err := orders.Create(ctx, o); err != nil {
			return errors.Wrapf(err, "insert order %s#%d", o.OrderDate, o.OrderNum)
		}

		slog.Info("inserted order",
			slog.String("date", o.OrderDate),
			slog.Int("num", o.OrderNum),
			slog.String("total", o.TotalAmount.String()))
	}

	return nil
}
