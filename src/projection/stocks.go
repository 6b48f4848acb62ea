package projection

import (
	"sort"
	"strings"
	"unicode/utf8"

	"market-dashboard/src/models"
)

// NormalizeSymbolKey turns a display ticker into its stock_data key. The feed
// tree forbids '.' in keys. Only lookups use the result.
func NormalizeSymbolKey(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "_")
}

// symbolFromKey recovers a display ticker from a stock_data key for entries
// that carry no symbol field.
func symbolFromKey(key string) string {
	return strings.ReplaceAll(key, "_", ".")
}

// PlaceholderStock is substituted for a listed symbol with no quote yet.
func PlaceholderStock(symbol string) models.MStockData {
	return models.MStockData{Symbol: symbol, Name: symbol, Price: 0, ChangePercent: 0}
}

// ResolveStocks looks every listed symbol up in the quote table. The result
// has one entry per input symbol, in input order.
func ResolveStocks(symbols []string, stocks *models.MStockMap) []models.MStockData {
	out := make([]models.MStockData, 0, len(symbols))
	for _, symbol := range symbols {
		out = append(out, resolveOne(symbol, stocks))
	}
	return out
}

func resolveOne(symbol string, stocks *models.MStockMap) models.MStockData {
	if stocks == nil {
		return PlaceholderStock(symbol)
	}
	stock, ok := stocks.Get(NormalizeSymbolKey(symbol))
	if !ok {
		return PlaceholderStock(symbol)
	}
	if stock.Symbol == "" {
		stock.Symbol = symbol
	}
	if stock.Name == "" {
		stock.Name = stock.Symbol
	}
	return stock
}

// RankByVolume returns a copy sorted by descending volume. Stocks without a
// volume rank last and keep their relative order.
func RankByVolume(stocks []models.MStockData) []models.MStockData {
	ranked := make([]models.MStockData, len(stocks))
	copy(ranked, stocks)
	sort.SliceStable(ranked, func(i, j int) bool {
		vi, vj := ranked[i].Volume, ranked[j].Volume
		if vi == nil {
			return false
		}
		if vj == nil {
			return true
		}
		return *vi > *vj
	})
	return ranked
}

// GroupByMarket splits every quoted stock into domestic and global, each
// ranked by volume. The producer's country code decides when present; the
// symbol suffix rule covers stocks without one.
func GroupByMarket(stocks *models.MStockMap, domesticCountry string, domesticSuffixes []string) models.MMarketGroups {
	groups := models.MMarketGroups{
		Domestic: []models.MStockData{},
		Global:   []models.MStockData{},
	}
	if stocks == nil {
		return groups
	}
	for pair := stocks.Oldest(); pair != nil; pair = pair.Next() {
		stock := pair.Value
		if stock.Symbol == "" {
			stock.Symbol = symbolFromKey(pair.Key)
		}
		if stock.Name == "" {
			stock.Name = stock.Symbol
		}
		if isDomestic(stock, domesticCountry, domesticSuffixes) {
			groups.Domestic = append(groups.Domestic, stock)
		} else {
			groups.Global = append(groups.Global, stock)
		}
	}
	groups.Domestic = RankByVolume(groups.Domestic)
	groups.Global = RankByVolume(groups.Global)
	return groups
}

func isDomestic(stock models.MStockData, domesticCountry string, domesticSuffixes []string) bool {
	if stock.Country != "" && domesticCountry != "" {
		return strings.EqualFold(strings.TrimSpace(stock.Country), strings.TrimSpace(domesticCountry))
	}
	return hasAnySuffix(strings.ToUpper(stock.Symbol), domesticSuffixes)
}

func hasAnySuffix(symbol string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(symbol, strings.ToUpper(suffix)) {
			return true
		}
	}
	return false
}

// StockRows formats resolved stocks for display.
func StockRows(stocks []models.MStockData) []models.MStockRow {
	rows := make([]models.MStockRow, 0, len(stocks))
	for _, s := range stocks {
		rows = append(rows, models.MStockRow{
			Symbol:        s.Symbol,
			Name:          s.Name,
			Initial:       initial(s.Symbol),
			Sector:        s.Sector,
			Price:         s.Price,
			ChangePercent: s.ChangePercent,
			Volume:        s.Volume,
			Direction:     Direction(s.ChangePercent),
			PriceText:     FormatPrice(s.Price),
			ChangeText:    FormatChange(s.ChangePercent),
		})
	}
	return rows
}

func initial(symbol string) string {
	r, size := utf8.DecodeRuneInString(symbol)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}
