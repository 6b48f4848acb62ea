package projection

import (
	"testing"

	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveStocksPlaceholder(t *testing.T) {
	got := ResolveStocks([]string{"AAPL"}, models.NewStockMap())

	assert.Equal(t, []models.MStockData{{Symbol: "AAPL", Name: "AAPL", Price: 0, ChangePercent: 0}}, got)
}

func TestResolveStocksNilTable(t *testing.T) {
	got := ResolveStocks([]string{"NVDA", "005930.KS"}, nil)

	assert.Equal(t, []models.MStockData{PlaceholderStock("NVDA"), PlaceholderStock("005930.KS")}, got)
}

func TestResolveStocksUsesNormalizedKeyAndKeepsOrder(t *testing.T) {
	table := stockMap(
		models.MStockData{Symbol: "NVDA", Name: "NVIDIA", Price: 900.5, ChangePercent: 2.1},
		models.MStockData{Symbol: "005930.KS", Name: "Samsung Electronics", Price: 71500, ChangePercent: -0.7},
	)
	symbols := []string{"005930.KS", "TSLA", "NVDA", "005930.KS"}

	got := ResolveStocks(symbols, table)

	assert.Len(t, got, len(symbols))
	assert.Equal(t, "005930.KS", got[0].Symbol)
	assert.Equal(t, "Samsung Electronics", got[0].Name)
	assert.Equal(t, PlaceholderStock("TSLA"), got[1])
	assert.Equal(t, "NVIDIA", got[2].Name)
	assert.Equal(t, got[0], got[3])
}

func TestResolveStocksLengthAndOrderInvariant(t *testing.T) {
	tables := []*models.MStockMap{
		nil,
		models.NewStockMap(),
		stockMap(models.MStockData{Symbol: "MSFT", Name: "Microsoft"}),
	}
	symbols := []string{"AAPL", "MSFT", "035420.KS", "", "AAPL"}

	for _, table := range tables {
		got := ResolveStocks(symbols, table)
		assert.Len(t, got, len(symbols))
		for i, s := range symbols {
			assert.Equal(t, s, got[i].Symbol)
		}
	}
}

func TestResolveStocksFillsMissingDisplayFields(t *testing.T) {
	table := models.NewStockMap()
	table.Set("BRK_B", models.MStockData{Price: 410})

	got := ResolveStocks([]string{"BRK.B"}, table)

	assert.Equal(t, "BRK.B", got[0].Symbol)
	assert.Equal(t, "BRK.B", got[0].Name)
	assert.Equal(t, 410.0, got[0].Price)
}

func TestNormalizeSymbolKey(t *testing.T) {
	assert.Equal(t, "005930_KS", NormalizeSymbolKey("005930.KS"))
	assert.Equal(t, "AAPL", NormalizeSymbolKey("AAPL"))
}

func TestRankByVolume(t *testing.T) {
	stocks := []models.MStockData{
		{Symbol: "A", Volume: vol(100)},
		{Symbol: "B"},
		{Symbol: "C", Volume: vol(300)},
		{Symbol: "D"},
		{Symbol: "E", Volume: vol(200)},
	}

	got := RankByVolume(stocks)

	order := make([]string, 0, len(got))
	for _, s := range got {
		order = append(order, s.Symbol)
	}
	assert.Equal(t, []string{"C", "E", "A", "B", "D"}, order)
	assert.Equal(t, "A", stocks[0].Symbol, "input must not be reordered")
}

func TestGroupByMarket(t *testing.T) {
	table := stockMap(
		models.MStockData{Symbol: "NVDA", Volume: vol(10)},
		models.MStockData{Symbol: "005930.KS", Volume: vol(5)},
		models.MStockData{Symbol: "AAPL", Volume: vol(30)},
		models.MStockData{Symbol: "035420.KS", Volume: vol(8)},
	)
	table.Set("247540_KQ", models.MStockData{Name: "EcoPro BM"})

	groups := GroupByMarket(table, "KR", []string{".KS", ".KQ"})

	var domestic, global []string
	for _, s := range groups.Domestic {
		domestic = append(domestic, s.Symbol)
	}
	for _, s := range groups.Global {
		global = append(global, s.Symbol)
	}
	assert.Equal(t, []string{"035420.KS", "005930.KS", "247540.KQ"}, domestic)
	assert.Equal(t, []string{"AAPL", "NVDA"}, global)
}

func TestGroupByMarketNilTable(t *testing.T) {
	groups := GroupByMarket(nil, "KR", []string{".KS"})
	assert.NotNil(t, groups.Domestic)
	assert.NotNil(t, groups.Global)
	assert.Empty(t, groups.Domestic)
	assert.Empty(t, groups.Global)
}

func TestStockRows(t *testing.T) {
	rows := StockRows([]models.MStockData{
		{Symbol: "TSLA", Name: "Tesla", Price: 175.25, ChangePercent: -3.2, Sector: "EV & Automotive"},
		PlaceholderStock("AAPL"),
	})

	assert.Equal(t, "T", rows[0].Initial)
	assert.Equal(t, DirectionDown, rows[0].Direction)
	assert.Equal(t, "-3.20%", rows[0].ChangeText)
	assert.Equal(t, "EV & Automotive", rows[0].Sector)
	assert.Equal(t, DirectionNeutral, rows[1].Direction)
	assert.Equal(t, "0", rows[1].PriceText)
}

func TestGroupByMarketPrefersCountry(t *testing.T) {
	table := stockMap(
		models.MStockData{Symbol: "005930", Country: "KR", Volume: vol(5)},
		models.MStockData{Symbol: "CPNG.KS", Country: "US", Volume: vol(7)},
		models.MStockData{Symbol: "035420.KS", Volume: vol(8)},
		models.MStockData{Symbol: "TSM", Country: "kr", Volume: vol(1)},
		models.MStockData{Symbol: "AAPL", Volume: vol(30)},
	)

	groups := GroupByMarket(table, "KR", []string{".KS", ".KQ"})

	var domestic, global []string
	for _, s := range groups.Domestic {
		domestic = append(domestic, s.Symbol)
	}
	for _, s := range groups.Global {
		global = append(global, s.Symbol)
	}
	assert.Equal(t, []string{"035420.KS", "005930", "TSM"}, domestic)
	assert.Equal(t, []string{"AAPL", "CPNG.KS"}, global)
}

func TestGroupByMarketWithoutDomesticCountryUsesSuffix(t *testing.T) {
	table := stockMap(
		models.MStockData{Symbol: "005930.KS", Country: "US"},
		models.MStockData{Symbol: "NVDA", Country: "KR"},
	)

	groups := GroupByMarket(table, "", []string{".KS"})

	assert.Len(t, groups.Domestic, 1)
	assert.Equal(t, "005930.KS", groups.Domestic[0].Symbol)
	assert.Len(t, groups.Global, 1)
	assert.Equal(t, "NVDA", groups.Global[0].Symbol)
}
