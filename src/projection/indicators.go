package projection

import (
	"market-dashboard/src/models"
)

// ProjectIndicators flattens key_indicators into entries, in source order.
func ProjectIndicators(snapshot *models.MFeedSnapshot) []models.MNamedValue {
	if snapshot == nil {
		return []models.MNamedValue{}
	}
	return appendEntries(make([]models.MNamedValue, 0, mapLen(snapshot.KeyIndicators)), snapshot.KeyIndicators)
}

// ProjectIndices returns domestic entries followed by global entries, each
// group in source order.
func ProjectIndices(snapshot *models.MFeedSnapshot) []models.MNamedValue {
	if snapshot == nil || snapshot.MarketIndices == nil {
		return []models.MNamedValue{}
	}
	domestic := snapshot.MarketIndices.Domestic
	global := snapshot.MarketIndices.Global

	out := make([]models.MNamedValue, 0, mapLen(domestic)+mapLen(global))
	out = appendEntries(out, domestic)
	return appendEntries(out, global)
}

func appendEntries(out []models.MNamedValue, values *models.MValueMap) []models.MNamedValue {
	if values == nil {
		return out
	}
	for pair := values.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, models.MNamedValue{Name: pair.Key, Value: pair.Value})
	}
	return out
}

func mapLen(values *models.MValueMap) int {
	if values == nil {
		return 0
	}
	return values.Len()
}

// QuoteCards formats projected entries for the header tickers.
func QuoteCards(entries []models.MNamedValue) []models.MQuoteCard {
	cards := make([]models.MQuoteCard, 0, len(entries))
	for _, e := range entries {
		cards = append(cards, models.MQuoteCard{
			Name:          e.Name,
			Label:         IndexLabel(e.Name),
			Price:         e.Value.Price,
			ChangePercent: e.Value.ChangePercent,
			Direction:     Direction(e.Value.ChangePercent),
			PriceText:     FormatPrice(e.Value.Price),
			ChangeText:    FormatChange(e.Value.ChangePercent),
			ArrowText:     FormatArrowChange(e.Value.ChangePercent),
		})
	}
	return cards
}
