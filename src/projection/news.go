package projection

import (
	"fmt"
	"math"
	"strings"
	"time"

	"market-dashboard/src/models"
)

// SelectNewsAndSummary picks the news list and AI summary of the active tab.
// An absent tab, feed or summary yields an empty list / no summary.
func SelectNewsAndSummary(feed *models.MNewsFeed, summaries *models.MAISummaries, tab models.Category) models.MNewsSelection {
	selection := models.MNewsSelection{News: []models.MNewsItem{}}

	if feed != nil {
		var items []models.MNewsItem
		switch tab {
		case models.CategoryMacro:
			items = feed.Macro
		case models.CategoryPortfolio:
			items = feed.Portfolio
		case models.CategoryWatchlist:
			items = feed.Watchlist
		}
		if len(items) > 0 {
			selection.News = append(selection.News, items...)
		}
	}

	if summaries != nil {
		switch tab {
		case models.CategoryMacro:
			selection.Summary = summaries.Macro
		case models.CategoryPortfolio:
			selection.Summary = summaries.Portfolio
		case models.CategoryWatchlist:
			selection.Summary = summaries.Watchlist
		}
		selection.HasSummary = strings.TrimSpace(selection.Summary) != ""
	}
	return selection
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePubDate accepts the date formats news sources use. ok is false when no
// layout matches.
func ParsePubDate(pubDate string) (time.Time, bool) {
	pubDate = strings.TrimSpace(pubDate)
	if pubDate == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, pubDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RelativeTime renders the age of a news item: "방금 전" under an hour,
// "N시간 전" under a day, "N일 전" otherwise. Unknown dates render empty.
func RelativeTime(pubDate string, now time.Time) string {
	t, ok := ParsePubDate(pubDate)
	if !ok {
		return ""
	}
	hours := int(math.Floor(now.Sub(t).Hours()))
	if hours < 1 {
		return "방금 전"
	}
	if hours < 24 {
		return fmt.Sprintf("%d시간 전", hours)
	}
	return fmt.Sprintf("%d일 전", hours/24)
}

// NewsView builds the tabbed news region.
func NewsView(snapshot *models.MFeedSnapshot, tab models.Category, now time.Time) models.MNewsView {
	var feed *models.MNewsFeed
	var summaries *models.MAISummaries
	if snapshot != nil {
		feed = snapshot.NewsFeed
		summaries = snapshot.AISummaries
	}
	selection := SelectNewsAndSummary(feed, summaries, tab)

	view := models.MNewsView{Tab: tab, News: make([]models.MNewsCard, 0, len(selection.News))}
	if selection.HasSummary {
		parsed := ParseSummaryStructure(selection.Summary)
		view.Summary = &parsed
	}
	for _, item := range selection.News {
		view.News = append(view.News, models.MNewsCard{
			Title:   item.Title,
			Link:    item.Link,
			Source:  item.Name,
			PubDate: item.PubDate,
			Age:     RelativeTime(item.PubDate, now),
		})
	}
	return view
}
