package projection

import (
	"time"

	"market-dashboard/src/models"
)

// ViewOptions carries the per-render inputs that are not part of the feed.
type ViewOptions struct {
	Tab              models.Category
	Now              time.Time
	User             *models.MUser
	Session          *models.MMarketSession
	DomesticCountry  string
	DomesticSuffixes []string
}

// BuildDashboardView composes every region from one snapshot. A nil snapshot
// yields the waiting view.
func BuildDashboardView(snapshot *models.MFeedSnapshot, opts ViewOptions) models.MDashboardView {
	if opts.Tab == "" {
		opts.Tab = models.CategoryMacro
	}

	view := models.MDashboardView{
		Loading: snapshot == nil,
		Header: models.MHeaderView{
			Indicators: QuoteCards(ProjectIndicators(snapshot)),
			Indices:    QuoteCards(ProjectIndices(snapshot)),
			Session:    opts.Session,
			User:       opts.User,
		},
		Portfolio: []models.MStockRow{},
		Watchlist: []models.MStockRow{},
		Markets: models.MMarketsView{
			Domestic: []models.MStockRow{},
			Global:   []models.MStockRow{},
		},
		News: NewsView(snapshot, opts.Tab, opts.Now),
	}
	if snapshot == nil {
		return view
	}

	view.UpdatedAt = snapshot.UpdatedAt
	view.Portfolio = StockRows(ResolveStocks(snapshot.PortfolioList, snapshot.StockData))
	view.Watchlist = StockRows(ResolveStocks(snapshot.WatchlistList, snapshot.StockData))

	groups := GroupByMarket(snapshot.StockData, opts.DomesticCountry, opts.DomesticSuffixes)
	view.Markets.Domestic = StockRows(groups.Domestic)
	view.Markets.Global = StockRows(groups.Global)
	return view
}
