package models

// -----------------------------------------------------------------------------
// Projected views (data contract of the presentation surfaces)
// -----------------------------------------------------------------------------

// MNamedValue is one (name, value) entry flattened from an ordered map.
type MNamedValue struct {
	Name  string       `json:"name"`
	Value MMarketValue `json:"value"`
}

// Sentiment is the tag extracted from an AI summary.
type Sentiment string

const (
	SentimentNone     Sentiment = ""
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// MParsedSummary is the structured form of an AI summary. When Bullets is
// empty the presentation shows Raw as-is.
type MParsedSummary struct {
	Bullets         []string  `json:"bullets"`
	Sentiment       Sentiment `json:"sentiment,omitempty"`
	SentimentDetail string    `json:"sentimentDetail,omitempty"`
	Raw             string    `json:"raw"`
}

// MNewsSelection is the news list and summary of the active tab.
type MNewsSelection struct {
	News       []MNewsItem `json:"news"`
	Summary    string      `json:"summary,omitempty"`
	HasSummary bool        `json:"hasSummary"`
}

// MQuoteCard is a header ticker entry.
type MQuoteCard struct {
	Name          string  `json:"name"`
	Label         string  `json:"label"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
	Direction     string  `json:"direction"`
	PriceText     string  `json:"priceText"`
	ChangeText    string  `json:"changeText"`
	ArrowText     string  `json:"arrowText"`
}

// MStockRow is a portfolio/watchlist/market row.
type MStockRow struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Initial       string   `json:"initial"`
	Sector        string   `json:"sector,omitempty"`
	Price         float64  `json:"price"`
	ChangePercent float64  `json:"changePercent"`
	Volume        *float64 `json:"volume,omitempty"`
	Direction     string   `json:"direction"`
	PriceText     string   `json:"priceText"`
	ChangeText    string   `json:"changeText"`
}

// MMarketGroups splits all quoted stocks into domestic and global, each
// ranked by volume.
type MMarketGroups struct {
	Domestic []MStockData `json:"domestic"`
	Global   []MStockData `json:"global"`
}

type MNewsCard struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source"`
	PubDate string `json:"pubDate,omitempty"`
	Age     string `json:"age,omitempty"`
}

// MNewsView is the tabbed news region. Summary is nil while the summary for
// the tab has not been generated yet.
type MNewsView struct {
	Tab     Category        `json:"tab"`
	Summary *MParsedSummary `json:"summary,omitempty"`
	News    []MNewsCard     `json:"news"`
}

type MMarketSession struct {
	DomesticMIC  string `json:"domesticMic"`
	DomesticOpen bool   `json:"domesticOpen"`
	GlobalMIC    string `json:"globalMic"`
	GlobalOpen   bool   `json:"globalOpen"`
}

type MHeaderView struct {
	Indicators []MQuoteCard    `json:"indicators"`
	Indices    []MQuoteCard    `json:"indices"`
	Session    *MMarketSession `json:"session,omitempty"`
	User       *MUser          `json:"user,omitempty"`
}

type MMarketsView struct {
	Domestic []MStockRow `json:"domestic"`
	Global   []MStockRow `json:"global"`
}

// MDashboardView is everything one render of the dashboard needs. Loading is
// true until the first snapshot arrives.
type MDashboardView struct {
	Loading   bool         `json:"loading"`
	UpdatedAt string       `json:"updatedAt,omitempty"`
	Header    MHeaderView  `json:"header"`
	Portfolio []MStockRow  `json:"portfolio"`
	Watchlist []MStockRow  `json:"watchlist"`
	Markets   MMarketsView `json:"markets"`
	News      MNewsView    `json:"news"`
}
