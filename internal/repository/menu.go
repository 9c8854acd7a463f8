package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eloom/holybean-server/internal/domain/menu"
)

const (
	saveBoardSQL = `INSERT INTO menu_boards (saved_at, items) VALUES ($1, $2)`

	latestBoardSQL = `SELECT saved_at, items FROM menu_boards
		ORDER BY saved_at DESC, id DESC LIMIT 1`
)

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL. Each board
// is one append-only JSONB snapshot row.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// SaveBoard stores a new menu snapshot.
func (r *MenuRepository) SaveBoard(ctx context.Context, b menu.Board) error {
	itemsJSON, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("marshaling menu items: %w", err)
	}

	if _, err := r.pool.Exec(ctx, saveBoardSQL, b.SavedAt, itemsJSON); err != nil {
		return fmt.Errorf("saving menu board: %w", err)
	}
	return nil
}

// LatestBoard returns the most recently saved snapshot.
func (r *MenuRepository) LatestBoard(ctx context.Context) (*menu.Board, error) {
	var (
		b         menu.Board
		itemsJSON []byte
	)
	err := r.pool.QueryRow(ctx, latestBoardSQL).Scan(&b.SavedAt, &itemsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNoBoard
		}
		return nil, fmt.Errorf("loading latest menu board: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &b.Items); err != nil {
		return nil, fmt.Errorf("decoding menu items: %w", err)
	}
	return &b, nil
}
