package models

// Category tags a news tab and its AI summary.
type Category string

const (
	CategoryMacro     Category = "macro"
	CategoryPortfolio Category = "portfolio"
	CategoryWatchlist Category = "watchlist"
)

// Categories lists the tabs in display order.
var Categories = []Category{CategoryMacro, CategoryPortfolio, CategoryWatchlist}

// ParseCategory maps a tab name to a Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
