package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

const dateLayout = "2006-01-02"

// -----------------------------------------------------------------------------

// NewHistoryDatabase returns the store selected by storage.db_type. The store
// is not yet initialized.
func NewHistoryDatabase(cfg *models.MConfig, log *logger.Logger) (interfaces.IHistoryDatabase, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		return NewPostgresHistoryStore(cfg, log), nil
	case "sqlite", "":
		return NewSQLiteHistoryStore(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown database type '%s'", cfg.Storage.DBType)
	}
}

// -----------------------------------------------------------------------------

// scanBars reads (date, open, high, low, close, volume) rows.
func scanBars(rows *sql.Rows, symbol string) ([]models.MBar, error) {
	bars := []models.MBar{}
	for rows.Next() {
		var (
			date            string
			o, h, l, c, vol sql.NullFloat64
		)
		if err := rows.Scan(&date, &o, &h, &l, &c, &vol); err != nil {
			return nil, err
		}
		bars = append(bars, models.MBar{
			Symbol: symbol,
			Date:   normalizeDate(date),
			Open:   o.Float64,
			High:   h.Float64,
			Low:    l.Float64,
			Close:  c.Float64,
			Volume: vol.Float64,
		})
	}
	return bars, rows.Err()
}

// -----------------------------------------------------------------------------

// normalizeDate keeps the calendar date of stored values that carry a time.
func normalizeDate(date string) string {
	if len(date) > len(dateLayout) && (date[len(dateLayout)] == 'T' || date[len(dateLayout)] == ' ') {
		return date[:len(dateLayout)]
	}
	return date
}

// -----------------------------------------------------------------------------

func validateBar(b models.MBar) error {
	if strings.TrimSpace(b.Symbol) == "" {
		return fmt.Errorf("bar without symbol")
	}
	if _, err := time.Parse(dateLayout, b.Date); err != nil {
		return fmt.Errorf("bar %s has invalid date '%s'", b.Symbol, b.Date)
	}
	return nil
}

// -----------------------------------------------------------------------------

// retentionCutoff returns the first date kept by the retention policy, or ""
// when retention is disabled.
func retentionCutoff(days int, now time.Time) string {
	if days <= 0 {
		return ""
	}
	return now.UTC().AddDate(0, 0, -days).Format(dateLayout)
}
