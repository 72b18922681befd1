package suggest

import (
	"regexp"
	"strings"
)

// Segment is a run of suggestion text that either matched the query or
// did not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Highlight splits text into segments so the UI can emphasize the parts
// matching the query. Matching is case-insensitive and treats the query
// as literal text. A blank query yields a single unmatched segment.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	if strings.TrimSpace(query) == "" {
		return []Segment{{Text: text}}
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return []Segment{{Text: text}}
	}

	var segments []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}
