package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// -----------------------------------------------------------------------------
// Snapshot decoding
// -----------------------------------------------------------------------------

// Section names used in MalformedDataError.
const (
	SectionRoot          = "root"
	SectionMarketIndices = "market_indices"
	SectionKeyIndicators = "key_indicators"
	SectionStockData     = "stock_data"
	SectionAISummaries   = "ai_summaries"
	SectionPortfolioList = "portfolio_list"
	SectionWatchlistList = "watchlist_list"
	SectionNewsFeed      = "news_feed"
	SectionUpdatedAt     = "updated_at"
)

type rawMarketValue struct {
	Price         json.RawMessage `json:"price"`
	ChangePercent json.RawMessage `json:"change_percent"`
	UpdatedAt     json.RawMessage `json:"updated_at"`
}

type rawStock struct {
	Symbol        json.RawMessage `json:"symbol"`
	Name          json.RawMessage `json:"name"`
	CompanyName   json.RawMessage `json:"company_name"`
	Price         json.RawMessage `json:"price"`
	ChangePercent json.RawMessage `json:"change_percent"`
	Volume        json.RawMessage `json:"volume"`
	Sector        json.RawMessage `json:"sector"`
	Country       json.RawMessage `json:"country"`
}

type rawNewsItem struct {
	Title   json.RawMessage `json:"title"`
	Link    json.RawMessage `json:"link"`
	Name    json.RawMessage `json:"name"`
	PubDate json.RawMessage `json:"pubDate"`
}

// decoder collects malformed-data issues while a tree is decoded.
type decoder struct {
	issues []error
}

func (d *decoder) report(section, key string, cause error) {
	d.issues = append(d.issues, helpers.NewMalformedDataError(section, key, cause))
}

// -----------------------------------------------------------------------------

// DecodeSnapshot decodes the raw tree at the feed root. Sections are decoded
// independently: a section or map entry with an unexpected shape is dropped and
// reported, everything else is kept. An absent or null tree yields nil.
func DecodeSnapshot(raw []byte) (*models.MFeedSnapshot, []error) {
	if isNull(raw) {
		return nil, nil
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, []error{helpers.NewMalformedDataError(SectionRoot, "", err)}
	}

	d := &decoder{}
	snapshot := &models.MFeedSnapshot{}

	if v, ok := present(root, SectionMarketIndices); ok {
		snapshot.MarketIndices = d.marketIndices(v)
	}
	if v, ok := present(root, SectionKeyIndicators); ok {
		snapshot.KeyIndicators = d.valueMap(SectionKeyIndicators, "", v)
	}
	if v, ok := present(root, SectionStockData); ok {
		snapshot.StockData = d.stockMap(v)
	}
	if v, ok := present(root, SectionAISummaries); ok {
		snapshot.AISummaries = d.aiSummaries(v)
	}
	if v, ok := present(root, SectionPortfolioList); ok {
		snapshot.PortfolioList = d.symbolList(SectionPortfolioList, v)
	}
	if v, ok := present(root, SectionWatchlistList); ok {
		snapshot.WatchlistList = d.symbolList(SectionWatchlistList, v)
	}
	if v, ok := present(root, SectionNewsFeed); ok {
		snapshot.NewsFeed = d.newsFeed(v)
	}
	if v, ok := present(root, SectionUpdatedAt); ok {
		if s, err := decodeText(v); err != nil {
			d.report(SectionUpdatedAt, "", err)
		} else {
			snapshot.UpdatedAt = s
		}
	}

	return snapshot, d.issues
}

// -----------------------------------------------------------------------------
// Sections
// -----------------------------------------------------------------------------

func (d *decoder) marketIndices(raw json.RawMessage) *models.MMarketIndices {
	var groups map[string]json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil {
		d.report(SectionMarketIndices, "", err)
		return nil
	}
	indices := &models.MMarketIndices{}
	if v, ok := present(groups, "domestic"); ok {
		indices.Domestic = d.valueMap(SectionMarketIndices, "domestic", v)
	}
	if v, ok := present(groups, "global"); ok {
		indices.Global = d.valueMap(SectionMarketIndices, "global", v)
	}
	if indices.Domestic == nil && indices.Global == nil {
		return nil
	}
	return indices
}

// valueMap decodes a name -> MMarketValue object, keeping source order.
func (d *decoder) valueMap(section, group string, raw json.RawMessage) *models.MValueMap {
	entries, err := orderedEntries(raw)
	if err != nil {
		d.report(section, group, err)
		return nil
	}

	out := models.NewValueMap()
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		if isNull(pair.Value) {
			continue
		}
		value, err := decodeMarketValue(pair.Value)
		if err != nil {
			d.report(section, joinKey(group, pair.Key), err)
			continue
		}
		out.Set(pair.Key, value)
	}
	return out
}

func (d *decoder) stockMap(raw json.RawMessage) *models.MStockMap {
	entries, err := orderedEntries(raw)
	if err != nil {
		d.report(SectionStockData, "", err)
		return nil
	}

	out := models.NewStockMap()
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		if isNull(pair.Value) {
			continue
		}
		stock, err := decodeStock(pair.Value)
		if err != nil {
			d.report(SectionStockData, pair.Key, err)
			continue
		}
		out.Set(pair.Key, stock)
	}
	return out
}

func (d *decoder) aiSummaries(raw json.RawMessage) *models.MAISummaries {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		d.report(SectionAISummaries, "", err)
		return nil
	}

	summaries := &models.MAISummaries{}
	targets := map[models.Category]*string{
		models.CategoryMacro:     &summaries.Macro,
		models.CategoryPortfolio: &summaries.Portfolio,
		models.CategoryWatchlist: &summaries.Watchlist,
	}
	for _, category := range models.Categories {
		v, ok := present(fields, string(category))
		if !ok {
			continue
		}
		text, err := decodeText(v)
		if err != nil {
			d.report(SectionAISummaries, string(category), err)
			continue
		}
		*targets[category] = text
	}
	return summaries
}

func (d *decoder) newsFeed(raw json.RawMessage) *models.MNewsFeed {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		d.report(SectionNewsFeed, "", err)
		return nil
	}

	feed := &models.MNewsFeed{}
	targets := map[models.Category]*[]models.MNewsItem{
		models.CategoryMacro:     &feed.Macro,
		models.CategoryPortfolio: &feed.Portfolio,
		models.CategoryWatchlist: &feed.Watchlist,
	}
	for _, category := range models.Categories {
		v, ok := present(fields, string(category))
		if !ok {
			continue
		}
		elements, err := listElements(v)
		if err != nil {
			d.report(SectionNewsFeed, string(category), err)
			continue
		}
		items := make([]models.MNewsItem, 0, len(elements))
		for i, element := range elements {
			item, err := decodeNewsItem(element)
			if err != nil {
				d.report(SectionNewsFeed, fmt.Sprintf("%s.%d", category, i), err)
				continue
			}
			items = append(items, item)
		}
		*targets[category] = items
	}
	return feed
}

func (d *decoder) symbolList(section string, raw json.RawMessage) []string {
	elements, err := listElements(raw)
	if err != nil {
		d.report(section, "", err)
		return nil
	}
	symbols := make([]string, 0, len(elements))
	for i, element := range elements {
		symbol, err := decodeText(element)
		if err != nil || strings.TrimSpace(symbol) == "" {
			d.report(section, strconv.Itoa(i), err)
			continue
		}
		symbols = append(symbols, strings.TrimSpace(symbol))
	}
	return symbols
}

// -----------------------------------------------------------------------------
// Entries
// -----------------------------------------------------------------------------

func decodeMarketValue(raw json.RawMessage) (models.MMarketValue, error) {
	var r rawMarketValue
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.MMarketValue{}, err
	}
	price, ok, err := decodeNumber(r.Price)
	if err != nil {
		return models.MMarketValue{}, fmt.Errorf("price: %w", err)
	}
	if !ok {
		return models.MMarketValue{}, fmt.Errorf("price missing")
	}
	change, _, err := decodeNumber(r.ChangePercent)
	if err != nil {
		return models.MMarketValue{}, fmt.Errorf("change_percent: %w", err)
	}
	updatedAt, _ := decodeText(r.UpdatedAt)
	return models.MMarketValue{Price: price, ChangePercent: change, UpdatedAt: updatedAt}, nil
}

func decodeStock(raw json.RawMessage) (models.MStockData, error) {
	var r rawStock
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.MStockData{}, err
	}

	price, ok, err := decodeNumber(r.Price)
	if err != nil {
		return models.MStockData{}, fmt.Errorf("price: %w", err)
	}
	if !ok {
		return models.MStockData{}, fmt.Errorf("price missing")
	}
	change, _, err := decodeNumber(r.ChangePercent)
	if err != nil {
		return models.MStockData{}, fmt.Errorf("change_percent: %w", err)
	}

	stock := models.MStockData{Price: price, ChangePercent: change}
	if volume, ok, err := decodeNumber(r.Volume); err != nil {
		return models.MStockData{}, fmt.Errorf("volume: %w", err)
	} else if ok {
		stock.Volume = &volume
	}

	stock.Symbol, _ = decodeText(r.Symbol)
	stock.Name, _ = decodeText(r.Name)
	if stock.Name == "" {
		stock.Name, _ = decodeText(r.CompanyName)
	}
	stock.Sector, _ = decodeText(r.Sector)
	country, _ := decodeText(r.Country)
	stock.Country = strings.ToUpper(strings.TrimSpace(country))
	return stock, nil
}

func decodeNewsItem(raw json.RawMessage) (models.MNewsItem, error) {
	var r rawNewsItem
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.MNewsItem{}, err
	}
	title, err := decodeText(r.Title)
	if err != nil {
		return models.MNewsItem{}, fmt.Errorf("title: %w", err)
	}
	link, err := decodeText(r.Link)
	if err != nil {
		return models.MNewsItem{}, fmt.Errorf("link: %w", err)
	}
	if title == "" && link == "" {
		return models.MNewsItem{}, fmt.Errorf("news item without title or link")
	}
	item := models.MNewsItem{Title: title, Link: link}
	item.Name, _ = decodeText(r.Name)
	item.PubDate, _ = decodeText(r.PubDate)
	return item, nil
}

// -----------------------------------------------------------------------------
// Primitives
// -----------------------------------------------------------------------------

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

func orderedEntries(raw json.RawMessage) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected an object")
	}
	entries := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(trimmed, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// listElements accepts a JSON array or the sparse object form path-addressed
// trees use for arrays with holes ({"0": .., "2": ..}), ordered by index.
// Null elements are skipped.
func listElements(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty list")
	}

	var elements []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, err
		}
	case '{':
		var sparse map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &sparse); err != nil {
			return nil, err
		}
		indices := make([]int, 0, len(sparse))
		byIndex := make(map[int]json.RawMessage, len(sparse))
		for key, v := range sparse {
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 {
				return nil, fmt.Errorf("non-index key %q in list", key)
			}
			indices = append(indices, i)
			byIndex[i] = v
		}
		sort.Ints(indices)
		for _, i := range indices {
			elements = append(elements, byIndex[i])
		}
	default:
		return nil, fmt.Errorf("expected a list")
	}

	out := elements[:0]
	for _, e := range elements {
		if !isNull(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// decodeText accepts a JSON string, or a number rendered as text. Absent
// yields "".
func decodeText(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[', 't', 'f':
		return "", fmt.Errorf("expected text, got %s", kind(trimmed))
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
}

// decodeNumber accepts a JSON number or a numeric string ("1,234.5", "+0.8%").
// ok is false when the value is absent.
func decodeNumber(raw json.RawMessage) (value float64, ok bool, err error) {
	if isNull(raw) {
		return 0, false, nil
	}
	trimmed := bytes.TrimSpace(raw)

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, false, err
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, nil
		}
		value, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("not a number: %q", s)
		}
	} else if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, false, fmt.Errorf("expected a number, got %s", kind(trimmed))
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false, fmt.Errorf("not a finite number")
	}
	return value, true, nil
}

func kind(raw []byte) string {
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}
