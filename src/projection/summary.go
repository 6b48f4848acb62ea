package projection

import (
	"regexp"
	"strings"

	"market-dashboard/src/models"
)

// The summary text is free-form model output; parsing is best-effort.

var bulletMarkers = []string{"- ", "• ", "* "}

// Checked in order on each line; the first line that matches any keyword
// decides the sentiment.
var sentimentKeywords = []struct {
	keyword   string
	sentiment models.Sentiment
}{
	{"호재", models.SentimentPositive},
	{"악재", models.SentimentNegative},
	{"중립", models.SentimentNeutral},
}

// englishVerdict only applies to non-bullet lines and only when no Korean
// keyword appears anywhere. Hyphenated forms ("non-negative") do not count.
var englishVerdict = regexp.MustCompile(`(?i)(?:^|[^\w-])(positive|negative|neutral)(?:$|[^\w-])`)

var englishSentiments = map[string]models.Sentiment{
	"positive": models.SentimentPositive,
	"negative": models.SentimentNegative,
	"neutral":  models.SentimentNeutral,
}

// labelPrefix matches the "📊 종합평가: " label in front of a verdict.
var labelPrefix = regexp.MustCompile(`📊[^:]*:\s*`)

// ParseSummaryStructure extracts bullets and a sentiment verdict from an AI
// summary. Raw keeps the original text for the unparsed fallback.
func ParseSummaryStructure(text string) models.MParsedSummary {
	parsed := models.MParsedSummary{Bullets: []string{}, Raw: text}

	var verdictLines []string
	for _, line := range strings.Split(text, "\n") {
		cleaned := strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if cleaned == "" {
			continue
		}

		if bullet, ok := stripBullet(cleaned); ok {
			parsed.Bullets = append(parsed.Bullets, bullet)
		} else {
			verdictLines = append(verdictLines, cleaned)
		}

		if parsed.Sentiment != models.SentimentNone {
			continue
		}
		for _, k := range sentimentKeywords {
			if strings.Contains(cleaned, k.keyword) {
				parsed.Sentiment = k.sentiment
				parsed.SentimentDetail = stripLabel(cleaned)
				break
			}
		}
	}

	if parsed.Sentiment == models.SentimentNone {
		for _, line := range verdictLines {
			if m := englishVerdict.FindStringSubmatch(line); m != nil {
				parsed.Sentiment = englishSentiments[strings.ToLower(m[1])]
				parsed.SentimentDetail = stripLabel(line)
				break
			}
		}
	}
	return parsed
}

func stripBullet(line string) (string, bool) {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}

func stripLabel(line string) string {
	loc := labelPrefix.FindStringIndex(line)
	if loc == nil {
		return line
	}
	return strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
}
