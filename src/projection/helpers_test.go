package projection

import "market-dashboard/src/models"

func valueMap(entries ...models.MNamedValue) *models.MValueMap {
	m := models.NewValueMap()
	for _, e := range entries {
		m.Set(e.Name, e.Value)
	}
	return m
}

func named(name string, price, change float64) models.MNamedValue {
	return models.MNamedValue{Name: name, Value: models.MMarketValue{Price: price, ChangePercent: change}}
}

func stockMap(stocks ...models.MStockData) *models.MStockMap {
	m := models.NewStockMap()
	for _, s := range stocks {
		m.Set(NormalizeSymbolKey(s.Symbol), s)
	}
	return m
}

func vol(v float64) *float64 {
	return &v
}
