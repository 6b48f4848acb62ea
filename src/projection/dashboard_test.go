package projection

import (
	"testing"
	"time"

	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildDashboardViewWaiting(t *testing.T) {
	view := BuildDashboardView(nil, ViewOptions{Now: time.Now()})

	assert.True(t, view.Loading)
	assert.Equal(t, models.CategoryMacro, view.News.Tab)
	assert.Empty(t, view.Header.Indicators)
	assert.Empty(t, view.Portfolio)
	assert.NotNil(t, view.Watchlist)
}

func TestBuildDashboardViewEmptySnapshot(t *testing.T) {
	view := BuildDashboardView(&models.MFeedSnapshot{}, ViewOptions{Tab: models.CategoryWatchlist})

	assert.False(t, view.Loading)
	assert.Empty(t, view.Header.Indices)
	assert.Empty(t, view.Portfolio)
	assert.Empty(t, view.Markets.Domestic)
	assert.Empty(t, view.News.News)
	assert.Nil(t, view.News.Summary)
}

func TestBuildDashboardViewComposesSections(t *testing.T) {
	user := &models.MUser{UID: "u1", DisplayName: "Investor"}
	session := &models.MMarketSession{DomesticMIC: "xkrx", GlobalMIC: "xnys", GlobalOpen: true}
	snapshot := &models.MFeedSnapshot{
		UpdatedAt:     "2025-03-10T12:00:00Z",
		KeyIndicators: valueMap(named("USD_KRW", 1385, 0.2)),
		MarketIndices: &models.MMarketIndices{
			Domestic: valueMap(named("KOSPI", 2650, -0.3)),
			Global:   valueMap(named("SPX", 5200, 0.8)),
		},
		StockData: stockMap(
			models.MStockData{Symbol: "NVDA", Name: "NVIDIA", Price: 900, ChangePercent: 2, Volume: vol(50)},
			models.MStockData{Symbol: "005930.KS", Name: "Samsung Electronics", Price: 71500, ChangePercent: -1, Volume: vol(20)},
		),
		PortfolioList: []string{"NVDA", "005930.KS", "TSLA"},
		WatchlistList: []string{"AAPL"},
		AISummaries:   &models.MAISummaries{Portfolio: "- 실적 호조\n📊 종합평가: 호재"},
		NewsFeed:      &models.MNewsFeed{Portfolio: []models.MNewsItem{{Title: "t", Link: "l", Name: "n"}}},
	}

	view := BuildDashboardView(snapshot, ViewOptions{
		Tab:              models.CategoryPortfolio,
		Now:              time.Now(),
		User:             user,
		Session:          session,
		DomesticSuffixes: []string{".KS"},
	})

	assert.False(t, view.Loading)
	assert.Equal(t, "2025-03-10T12:00:00Z", view.UpdatedAt)
	assert.Equal(t, "USD KRW", view.Header.Indicators[0].Label)
	assert.Equal(t, []string{"KOSPI", "SPX"}, []string{view.Header.Indices[0].Name, view.Header.Indices[1].Name})
	assert.Same(t, user, view.Header.User)
	assert.Same(t, session, view.Header.Session)

	assert.Len(t, view.Portfolio, 3)
	assert.Equal(t, "Samsung Electronics", view.Portfolio[1].Name)
	assert.Equal(t, "TSLA", view.Portfolio[2].Name)
	assert.Equal(t, "AAPL", view.Watchlist[0].Symbol)

	assert.Equal(t, "005930.KS", view.Markets.Domestic[0].Symbol)
	assert.Equal(t, "NVDA", view.Markets.Global[0].Symbol)

	assert.Equal(t, models.CategoryPortfolio, view.News.Tab)
	if assert.NotNil(t, view.News.Summary) {
		assert.Equal(t, models.SentimentPositive, view.News.Summary.Sentiment)
	}
	assert.Len(t, view.News.News, 1)
}

func TestBuildDashboardViewDoesNotCarryStaleData(t *testing.T) {
	first := &models.MFeedSnapshot{
		KeyIndicators: valueMap(named("USD_KRW", 1385, 0.2)),
		PortfolioList: []string{"NVDA"},
		StockData:     stockMap(models.MStockData{Symbol: "NVDA", Name: "NVIDIA", Price: 900}),
	}
	second := &models.MFeedSnapshot{
		PortfolioList: []string{"NVDA"},
	}

	_ = BuildDashboardView(first, ViewOptions{})
	view := BuildDashboardView(second, ViewOptions{})

	assert.Empty(t, view.Header.Indicators)
	assert.Equal(t, PlaceholderStock("NVDA").Name, view.Portfolio[0].Name)
	assert.Equal(t, 0.0, view.Portfolio[0].Price)
}
