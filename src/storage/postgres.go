package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresHistoryStore reads bars from the history table the pipeline fills.
type PostgresHistoryStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Table  string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresHistoryStore(cfg *models.MConfig, log *logger.Logger) *PostgresHistoryStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &PostgresHistoryStore{
		Config: cfg,
		Table:  cfg.Storage.HistoryTable,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s" (
			symbol TEXT NOT NULL,
			date DATE NOT NULL,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			close DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			PRIMARY KEY (symbol, date)
		);
	`, d.Table)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.Table, err)
	}

	d.Logger.Info("PostgresHistoryStore initialized successfully (Table: %s)", d.Table)
	return nil
}

// -----------------------------------------------------------------------------

// RecentBars selects the newest limit rows and returns them oldest first.
func (d *PostgresHistoryStore) RecentBars(ctx context.Context, symbol string, limit int) ([]models.MBar, error) {
	if d.DB == nil {
		return nil, fmt.Errorf("history store not initialized")
	}

	query := fmt.Sprintf(`
		SELECT to_char(date, 'YYYY-MM-DD'), open, high, low, close, volume
		FROM (
			SELECT date, open, high, low, close, volume
			FROM "%s"
			WHERE symbol = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
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

func (d *PostgresHistoryStore) SaveBars(ctx context.Context, bars []models.MBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s" (symbol, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`, d.Table)
	stmt, err := tx.PrepareContext(ctx, query)
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

func (d *PostgresHistoryStore) CleanupOldData(ctx context.Context) (int64, error) {
	cutoff := retentionCutoff(d.Config.Storage.RetentionDays, time.Now())
	if cutoff == "" {
		return 0, nil
	}

	d.Logger.Info("Cleaning up bars older than %s...", cutoff)
	res, err := d.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM "%s" WHERE date < $1`, d.Table), cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup %s: %w", d.Table, err)
	}
	return res.RowsAffected()
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
