// Package menu models the shop's menu board as versioned snapshots: every
// save stores a complete new board, and clients always read the latest one.
package menu

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNoBoard is returned when no menu board has been saved yet.
var ErrNoBoard = errors.New("no menu board saved")

// Item is a single sellable menu entry. Placement controls the tile position
// on the POS home screen.
type Item struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Placement int             `json:"placement"`
}

// Board is one immutable snapshot of the full menu.
type Board struct {
	SavedAt time.Time `json:"savedAt"`
	Items   []Item    `json:"items"`
}

// Repository defines persistence operations for menu boards.
type Repository interface {
	// SaveBoard stores a new snapshot.
	SaveBoard(ctx context.Context, b Board) error
	// LatestBoard returns the most recently saved snapshot, or ErrNoBoard.
	LatestBoard(ctx context.Context) (*Board, error)
}
