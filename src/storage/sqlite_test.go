package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteHistoryStore {
	t.Helper()
	cfg := &models.MConfig{Storage: models.MStorageConfig{
		DBType:       "sqlite",
		DBPath:       filepath.Join(t.TempDir(), "history.db"),
		HistoryTable: "stock_history",
	}}
	store := NewSQLiteHistoryStore(cfg, nil)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })
	return store
}

func dailyBars(symbol string, start time.Time, n int) []models.MBar {
	bars := make([]models.MBar, 0, n)
	for i := 0; i < n; i++ {
		price := float64(100 + i)
		bars = append(bars, models.MBar{
			Symbol: symbol,
			Date:   start.AddDate(0, 0, i).Format(dateLayout),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price + 0.5,
			Volume: 1000,
		})
	}
	return bars
}

func TestRecentBarsReturnsNewestWindowAscending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveBars(ctx, dailyBars("NVDA", start, 70)))
	require.NoError(t, store.SaveBars(ctx, dailyBars("AAPL", start, 5)))

	bars, err := store.RecentBars(ctx, "NVDA", 60)
	require.NoError(t, err)
	require.Len(t, bars, 60)

	assert.Equal(t, start.AddDate(0, 0, 10).Format(dateLayout), bars[0].Date)
	assert.Equal(t, start.AddDate(0, 0, 69).Format(dateLayout), bars[59].Date)
	for i := 1; i < len(bars); i++ {
		assert.Less(t, bars[i-1].Date, bars[i].Date)
		assert.Equal(t, "NVDA", bars[i].Symbol)
	}
}

func TestRecentBarsUnknownSymbol(t *testing.T) {
	store := newTestStore(t)

	bars, err := store.RecentBars(context.Background(), "NONE", 60)
	require.NoError(t, err)
	assert.NotNil(t, bars)
	assert.Empty(t, bars)
}

func TestSaveBarsUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bar := models.MBar{Symbol: "005930.KS", Date: "2025-03-10", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
	require.NoError(t, store.SaveBars(ctx, []models.MBar{bar}))
	bar.Close = 1.8
	require.NoError(t, store.SaveBars(ctx, []models.MBar{bar}))

	bars, err := store.RecentBars(ctx, "005930.KS", 60)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 1.8, bars[0].Close)
}

func TestSaveBarsRejectsInvalidRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveBars(ctx, []models.MBar{
		{Symbol: "AAPL", Date: "2025-03-10"},
		{Symbol: "AAPL", Date: "10/03/2025"},
	})
	require.Error(t, err)

	bars, err := store.RecentBars(ctx, "AAPL", 60)
	require.NoError(t, err)
	assert.Empty(t, bars, "failed batch must be rolled back")
}

func TestNullColumnsReadAsZero(t *testing.T) {
	store := newTestStore(t)
	_, err := store.DB.Exec(`INSERT INTO stock_history (symbol, date, close) VALUES ('TSLA', '2025-03-10', 250.5)`)
	require.NoError(t, err)

	bars, err := store.RecentBars(context.Background(), "TSLA", 60)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 250.5, bars[0].Close)
	assert.Zero(t, bars[0].Volume)
}

func TestCleanupOldData(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveBars(ctx, dailyBars("NVDA", now.AddDate(0, 0, -40), 40)))

	removed, err := store.CleanupOldData(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "retention disabled")

	store.Config.Storage.RetentionDays = 30
	removed, err = store.CleanupOldData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), removed)
}

func TestRecentBarsCancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.RecentBars(ctx, "NVDA", 60)
	assert.Error(t, err)
}

func TestNewHistoryDatabase(t *testing.T) {
	for dbType, want := range map[string]string{
		"sqlite":   "*storage.SQLiteHistoryStore",
		"":         "*storage.SQLiteHistoryStore",
		"postgres": "*storage.PostgresHistoryStore",
	} {
		db, err := NewHistoryDatabase(&models.MConfig{Storage: models.MStorageConfig{DBType: dbType}}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, fmt.Sprintf("%T", db))
	}

	_, err := NewHistoryDatabase(&models.MConfig{Storage: models.MStorageConfig{DBType: "mongo"}}, nil)
	assert.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-03-10", normalizeDate("2025-03-10"))
	assert.Equal(t, "2025-03-10", normalizeDate("2025-03-10T00:00:00Z"))
	assert.Equal(t, "2025-03-10", normalizeDate("2025-03-10 00:00:00"))
}
