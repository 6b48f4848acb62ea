package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// -----------------------------------------------------------------------------
// Feed Snapshot (root of the pushed tree)
// -----------------------------------------------------------------------------

// MMarketValue is a single quoted value (index level, FX rate, yield...).
type MMarketValue struct {
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// MStockData is the quote of one tradable symbol. Symbol is the display ticker;
// the key under stock_data is its normalized variant.
type MStockData struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	ChangePercent float64  `json:"change_percent"`
	Volume        *float64 `json:"volume,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Country       string   `json:"country,omitempty"`
}

// MNewsItem is one headline of the news feed.
type MNewsItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Name    string `json:"name"`
	PubDate string `json:"pubDate,omitempty"`
}

// MValueMap keeps the order in which names appear in the pushed JSON object.
type MValueMap = orderedmap.OrderedMap[string, MMarketValue]

// MStockMap is keyed by normalized symbol ("005930_KS").
type MStockMap = orderedmap.OrderedMap[string, MStockData]

type MMarketIndices struct {
	Domestic *MValueMap `json:"domestic,omitempty"`
	Global   *MValueMap `json:"global,omitempty"`
}

type MAISummaries struct {
	Macro     string `json:"macro,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Watchlist string `json:"watchlist,omitempty"`
}

type MNewsFeed struct {
	Macro     []MNewsItem `json:"macro,omitempty"`
	Portfolio []MNewsItem `json:"portfolio,omitempty"`
	Watchlist []MNewsItem `json:"watchlist,omitempty"`
}

// MFeedSnapshot is one complete delivery of the feed tree. Every field is
// optional; a nil section means the producer has not written it yet.
// A snapshot is never mutated after it has been delivered.
type MFeedSnapshot struct {
	MarketIndices *MMarketIndices `json:"market_indices,omitempty"`
	KeyIndicators *MValueMap      `json:"key_indicators,omitempty"`
	StockData     *MStockMap      `json:"stock_data,omitempty"`
	AISummaries   *MAISummaries   `json:"ai_summaries,omitempty"`
	PortfolioList []string        `json:"portfolio_list,omitempty"`
	WatchlistList []string        `json:"watchlist_list,omitempty"`
	NewsFeed      *MNewsFeed      `json:"news_feed,omitempty"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
}

// NewValueMap returns an empty ordered MMarketValue map.
func NewValueMap() *MValueMap {
	return orderedmap.New[string, MMarketValue]()
}

// NewStockMap returns an empty ordered MStockData map.
func NewStockMap() *MStockMap {
	return orderedmap.New[string, MStockData]()
}

// IsEmpty reports a snapshot with no populated section.
func (s *MFeedSnapshot) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.MarketIndices == nil &&
		s.KeyIndicators == nil &&
		s.StockData == nil &&
		s.AISummaries == nil &&
		len(s.PortfolioList) == 0 &&
		len(s.WatchlistList) == 0 &&
		s.NewsFeed == nil &&
		s.UpdatedAt == ""
}
