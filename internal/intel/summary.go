package intel

import (
	"fmt"
	"strings"
)

// maxInsightLen caps each summary insight, trimmed at a sentence boundary.
const maxInsightLen = 400

var insightTopics = map[Category]string{
	CategoryPositioning:     "competitive positioning",
	CategoryCustomers:       "customer adoption",
	CategoryStrategicMoves:  "strategic activity",
	CategoryProductStrategy: "product innovation",
}

// synthesize distills one insight per category from the top-ranked record.
func synthesize(ci *CompanyIntelligence) Summary {
	return Summary{
		MarketPosition: keyInsight(ci.Positioning),
		KeyCustomers:   keyInsight(ci.Customers),
		RecentMoves:    keyInsight(ci.StrategicMoves),
		ProductFocus:   keyInsight(ci.ProductStrategy),
	}
}

func keyInsight(section CategoryResults) string {
	topic := insightTopics[section.Category]
	if len(section.Records) == 0 {
		return fmt.Sprintf("No recent %s data found", topic)
	}

	top := section.Records[0]
	title := strings.TrimSpace(top.Title)
	snippet := strings.TrimSpace(top.Snippet)

	var insight string
	switch {
	case title != "" && snippet != "":
		insight = title + " - " + snippet
	case title != "":
		insight = title
	case snippet != "":
		insight = snippet
	default:
		return fmt.Sprintf("No recent %s data found", topic)
	}

	return truncateAtSentence(insight, maxInsightLen)
}

// truncateAtSentence shortens text to at most max runes, preferring to cut
// at a sentence boundary. Falls back to a hard cut with an ellipsis when the
// first sentence alone is too long.
func truncateAtSentence(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	var b strings.Builder
	for _, sentence := range splitSentences(text) {
		candidate := len([]rune(sentence))
		if b.Len() > 0 {
			candidate++ // joining space
		}
		if len([]rune(b.String()))+candidate > max {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sentence)
	}
	if b.Len() > 0 {
		return b.String()
	}

	return strings.TrimSpace(string(runes[:max-3])) + "..."
}

// splitSentences breaks text on terminal punctuation followed by whitespace.
// Deliberately naive; SERP snippets are short and rarely contain
// abbreviations worth special-casing.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
