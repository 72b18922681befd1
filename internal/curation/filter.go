package curation

import (
	"strings"

	"github.com/cinebase/cinebase/internal/tmdb"
)

// Policy decides which catalogue entries are presentable. Matching is
// case-insensitive substring matching on the title, and optionally the
// overview.
type Policy struct {
	BlockedTitles   map[string]struct{}
	BlockedKeywords []string
	RequirePoster   bool
	ExcludeAdult    bool
	MatchOverview   bool
}

// homeBlockedKeywords is the keyword blocklist applied to browse sections
// and search results.
var homeBlockedKeywords = []string{
	"desire",
	"erotic",
	"sex",
	"love",
	"stepmom",
	"cream",
	"affair",
	"lust",
	"pleasure",
	"obsession",
	"temptation",
	"seduction",
}

// relatedBlockedKeywords is the wider blocklist used for related-movie
// rails, where entries arrive without user intent behind them.
var relatedBlockedKeywords = []string{
	"desire", "erotic", "sex", "sexual", "seductive", "seduction", "lust", "pleasure", "obsession",
	"temptation", "affair", "fantasy", "fantasies", "sensual", "intimate", "passion", "steamy",
	"explicit", "adult", "incest", "taboo", "forbidden", "provocative", "nude", "nudity", "orgy",
	"thralls", "romance", "romantic", "attractive stranger", "seduce", "seduces", "seduced", "seducing",
	"affairs", "affection", "flirt", "flirting", "flirtation", "flings", "one night stand", "cheat",
	"cheating", "cheated", "cheats", "mistress", "lover", "lovers", "sensuality", "arousal", "arouse",
	"aroused", "arousing", "provocation", "tempting", "tempted", "tempts", "infidelity",
	"adultery", "fornication", "carnal", "libido", "passionate", "seductress", "seductor", "allure",
	"alluring", "ravish", "ravishing", "ravished", "ravishes", "sultry", "sultriness", "sultrily",
}

// DefaultPolicy returns the content policy for browse sections and search.
func DefaultPolicy() Policy {
	return Policy{
		BlockedTitles: map[string]struct{}{
			"the bad guys 2": {},
		},
		BlockedKeywords: homeBlockedKeywords,
		RequirePoster:   true,
		ExcludeAdult:    true,
	}
}

// RelatedCurationPolicy returns the stricter content policy for related
// rails. It also scans the overview text.
func RelatedCurationPolicy() Policy {
	return Policy{
		BlockedKeywords: relatedBlockedKeywords,
		RequirePoster:   true,
		ExcludeAdult:    true,
		MatchOverview:   true,
	}
}

// Allows reports whether a movie passes the policy.
func (p Policy) Allows(m tmdb.Movie) bool {
	if p.RequirePoster && !m.HasPoster() {
		return false
	}
	if p.ExcludeAdult && m.Adult {
		return false
	}

	title := strings.ToLower(m.Title)
	if _, blocked := p.BlockedTitles[title]; blocked {
		return false
	}

	overview := ""
	if p.MatchOverview {
		overview = strings.ToLower(m.Overview)
	}
	for _, word := range p.BlockedKeywords {
		if strings.Contains(title, word) {
			return false
		}
		if p.MatchOverview && strings.Contains(overview, word) {
			return false
		}
	}

	return true
}

// Curate filters movies against the policy, preserving input order. The
// input slice is never modified.
func Curate(movies []tmdb.Movie, p Policy) []tmdb.Movie {
	out := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if p.Allows(m) {
			out = append(out, m)
		}
	}
	return out
}
