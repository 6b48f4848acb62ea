package feed

import (
	"errors"
	"testing"

	"market-dashboard/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullTree = `{
  "updated_at": "2025-03-10 12:00:00",
  "key_indicators": {
    "USD_KRW": {"price": 1385.2, "change_percent": 0.21},
    "US_10Y": {"price": 4.31, "change_percent": -0.5},
    "WTI": {"price": "78.10", "change_percent": "1,234.5"}
  },
  "market_indices": {
    "domestic": {"KOSPI": {"price": 2650.1, "change_percent": -0.3}},
    "global": {"S&P_500": {"price": 5200, "change_percent": 0.8}, "NASDAQ": {"price": 16300, "change_percent": 1.1}}
  },
  "stock_data": {
    "005930_KS": {"symbol": "005930.KS", "name": "Samsung Electronics", "price": 71500, "change_percent": -1.2, "volume": 1200000, "country": "KR"},
    "NVDA": {"symbol": "NVDA", "company_name": "NVIDIA", "price": 900, "change_percent": 2.0, "country": " us "}
  },
  "portfolio_list": ["NVDA", "005930.KS"],
  "watchlist_list": {"0": "AAPL", "2": "MSFT"},
  "ai_summaries": {"macro": "- 금리 동결", "portfolio": null},
  "news_feed": {
    "macro": [{"title": "Fed holds", "link": "https://news.example/fed", "name": "Reuters", "pubDate": "Mon, 10 Mar 2025 09:00:00 GMT"}]
  }
}`

func TestDecodeSnapshotFullTree(t *testing.T) {
	snapshot, issues := DecodeSnapshot([]byte(fullTree))
	require.NotNil(t, snapshot)
	assert.Empty(t, issues)

	assert.Equal(t, "2025-03-10 12:00:00", snapshot.UpdatedAt)

	require.NotNil(t, snapshot.KeyIndicators)
	var names []string
	for pair := snapshot.KeyIndicators.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	assert.Equal(t, []string{"USD_KRW", "US_10Y", "WTI"}, names)
	wti, _ := snapshot.KeyIndicators.Get("WTI")
	assert.Equal(t, 78.10, wti.Price)
	assert.Equal(t, 1234.5, wti.ChangePercent)

	require.NotNil(t, snapshot.MarketIndices)
	assert.Equal(t, 1, snapshot.MarketIndices.Domestic.Len())
	assert.Equal(t, "S&P_500", snapshot.MarketIndices.Global.Oldest().Key)

	samsung, ok := snapshot.StockData.Get("005930_KS")
	require.True(t, ok)
	require.NotNil(t, samsung.Volume)
	assert.Equal(t, 1200000.0, *samsung.Volume)
	assert.Equal(t, "KR", samsung.Country)
	nvda, _ := snapshot.StockData.Get("NVDA")
	assert.Equal(t, "NVIDIA", nvda.Name)
	assert.Equal(t, "US", nvda.Country)
	assert.Nil(t, nvda.Volume)

	assert.Equal(t, []string{"NVDA", "005930.KS"}, snapshot.PortfolioList)
	assert.Equal(t, []string{"AAPL", "MSFT"}, snapshot.WatchlistList)

	require.NotNil(t, snapshot.AISummaries)
	assert.Equal(t, "- 금리 동결", snapshot.AISummaries.Macro)
	assert.Empty(t, snapshot.AISummaries.Portfolio)

	require.NotNil(t, snapshot.NewsFeed)
	assert.Len(t, snapshot.NewsFeed.Macro, 1)
	assert.Equal(t, "Reuters", snapshot.NewsFeed.Macro[0].Name)
	assert.Nil(t, snapshot.NewsFeed.Portfolio)
}

func TestDecodeSnapshotAbsentTree(t *testing.T) {
	for _, raw := range []string{"", "null", "  null \n"} {
		snapshot, issues := DecodeSnapshot([]byte(raw))
		assert.Nil(t, snapshot)
		assert.Empty(t, issues)
	}
}

func TestDecodeSnapshotMalformedRoot(t *testing.T) {
	snapshot, issues := DecodeSnapshot([]byte(`["not", "a", "tree"]`))
	assert.Nil(t, snapshot)
	require.Len(t, issues, 1)

	var malformed *helpers.MalformedDataError
	require.True(t, errors.As(issues[0], &malformed))
	assert.Equal(t, SectionRoot, malformed.Section)
}

func TestDecodeSnapshotIsolatesMalformedSections(t *testing.T) {
	raw := `{
	  "key_indicators": "oops",
	  "stock_data": {
	    "AAPL": {"symbol": "AAPL", "name": "Apple", "price": "n/a"},
	    "MSFT": {"symbol": "MSFT", "name": "Microsoft", "price": 410.5, "change_percent": 0.4},
	    "TSLA": null
	  },
	  "portfolio_list": ["AAPL", 42, {"x": 1}, "MSFT"],
	  "news_feed": {"macro": [{"title": "ok", "link": "l"}, "garbage"], "portfolio": 7}
	}`

	snapshot, issues := DecodeSnapshot([]byte(raw))
	require.NotNil(t, snapshot)

	assert.Nil(t, snapshot.KeyIndicators)
	assert.Equal(t, 1, snapshot.StockData.Len())
	_, ok := snapshot.StockData.Get("MSFT")
	assert.True(t, ok)
	assert.Equal(t, []string{"AAPL", "42", "MSFT"}, snapshot.PortfolioList)
	assert.Len(t, snapshot.NewsFeed.Macro, 1)
	assert.Nil(t, snapshot.NewsFeed.Portfolio)

	sections := map[string]int{}
	for _, issue := range issues {
		var malformed *helpers.MalformedDataError
		require.True(t, errors.As(issue, &malformed))
		sections[malformed.Section]++
	}
	assert.Equal(t, 1, sections[SectionKeyIndicators])
	assert.Equal(t, 1, sections[SectionStockData])
	assert.Equal(t, 1, sections[SectionPortfolioList])
	assert.Equal(t, 2, sections[SectionNewsFeed])
}

func TestDecodeSnapshotEmptyObject(t *testing.T) {
	snapshot, issues := DecodeSnapshot([]byte(`{}`))
	require.NotNil(t, snapshot)
	assert.Empty(t, issues)
	assert.True(t, snapshot.IsEmpty())
}

func TestDecodeNumber(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		ok      bool
		wantErr bool
	}{
		{`12.5`, 12.5, true, false},
		{`"1,234.5"`, 1234.5, true, false},
		{`"+0.8%"`, 0.8, true, false},
		{`""`, 0, false, false},
		{`null`, 0, false, false},
		{`"abc"`, 0, false, true},
		{`true`, 0, false, true},
		{`"NaN"`, 0, false, true},
	}
	for _, tt := range tests {
		got, ok, err := decodeNumber([]byte(tt.raw))
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		assert.NoError(t, err, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
