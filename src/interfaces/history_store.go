package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IHistoryStore is the read-only bar history store keyed by symbol.
// -----------------------------------------------------------------------------

type IHistoryStore interface {

	// RecentBars returns the limit most recent bars of symbol, ascending by date.
	RecentBars(ctx context.Context, symbol string, limit int) ([]models.MBar, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}

// -----------------------------------------------------------------------------
// IHistoryDatabase adds the maintenance side used by local seeding.
// -----------------------------------------------------------------------------

type IHistoryDatabase interface {
	IHistoryStore

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the history table if missing.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveBars upserts bars by (symbol, date).
	SaveBars(ctx context.Context, bars []models.MBar) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes bars older than the retention policy.
	CleanupOldData(ctx context.Context) (int64, error)
}
