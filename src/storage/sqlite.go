package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// SQLiteHistoryStore serves the history table from a local file, for
// development without the pipeline database.
type SQLiteHistoryStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Table  string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteHistoryStore(cfg *models.MConfig, log *logger.Logger) *SQLiteHistoryStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &SQLiteHistoryStore{
		Config: cfg,
		Table:  cfg.Storage.HistoryTable,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteHistoryStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// SQLite types: REAL for float64, TEXT for YYYY-MM-DD dates
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol TEXT NOT NULL,
			date TEXT NOT NULL,
			open REAL,
			high REAL,
			low REAL,
			close REAL,
			volume REAL,
			PRIMARY KEY (symbol, date)
		);
	`, d.Table)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.Table, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// RecentBars selects the newest limit rows and returns them oldest first.
func (d *SQLiteHistoryStore) RecentBars(ctx context.Context, symbol string, limit int) ([]models.MBar, error) {
	if d.DB == nil {
		return nil, fmt.Errorf("history store not initialized")
	}

	query := fmt.Sprintf(`
		SELECT date, open, high, low, close, volume
		FROM (
			SELECT date, open, high, low, close, volume
			FROM %s
			WHERE symbol = ?
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC
	`, d.Table)

	rows, err := d.DB.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBars(rows, symbol)
}

// -----------------------------------------------------------------------------

func (d *SQLiteHistoryStore) SaveBars(ctx context.Context, bars []models.MBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`, d.Table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if err := validateBar(b); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteHistoryStore) CleanupOldData(ctx context.Context) (int64, error) {
	cutoff := retentionCutoff(d.Config.Storage.RetentionDays, time.Now())
	if cutoff == "" {
		return 0, nil
	}

	d.Logger.Info("Cleaning up bars older than %s...", cutoff)
	res, err := d.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE date < ?", d.Table), cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup %s: %w", d.Table, err)
	}

	n, err := res.RowsAffected()
	if err == nil {
		d.Logger.Info("Cleanup completed (%d rows)", n)
	}
	return n, err
}

// -----------------------------------------------------------------------------

func (d *SQLiteHistoryStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
