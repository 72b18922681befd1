package curation

import (
	"math"
	"sort"
	"strings"

	"github.com/cinebase/cinebase/internal/tmdb"
)

// RelatedPolicy holds the quality gates and ranking parameters for the
// related-movie aggregator.
type RelatedPolicy struct {
	MinVoteCount     int
	MinVoteAverage   float64
	AllowedLanguages []string
	Limit            int
	Curation         Policy
}

// DefaultRelatedPolicy returns the standard related-rail policy.
func DefaultRelatedPolicy() RelatedPolicy {
	return RelatedPolicy{
		MinVoteCount:     50,
		MinVoteAverage:   5.5,
		AllowedLanguages: []string{"en", "ja"},
		Limit:            12,
		Curation:         RelatedCurationPolicy(),
	}
}

// Score ranks a movie for the related rail. Rating is weighted by how many
// votes back it, with popularity as a tiebreaker.
func Score(m tmdb.Movie) float64 {
	return m.VoteAverage*math.Log10(float64(m.VoteCount)+1) + m.Popularity/10
}

// AggregateRelated merges the similar and recommended lists for a movie
// into one ranked rail. Similar entries take precedence on duplicates,
// the subject movie itself is dropped, and everything passes the quality
// gates and content policy before ranking. The result holds at most
// p.Limit entries, ordered by descending score; ties keep their
// pre-ranking order.
func AggregateRelated(similar, recommended []tmdb.Movie, subjectID int, p RelatedPolicy) []tmdb.Movie {
	merged := make([]tmdb.Movie, 0, len(similar)+len(recommended))
	seen := make(map[int]struct{}, len(similar)+len(recommended))

	for _, list := range [][]tmdb.Movie{similar, recommended} {
		for _, m := range list {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			merged = append(merged, m)
		}
	}

	out := make([]tmdb.Movie, 0, len(merged))
	for _, m := range merged {
		if m.ID == subjectID {
			continue
		}
		if !p.passesQualityGates(m) {
			continue
		}
		if !p.Curation.Allows(m) {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return Score(out[i]) > Score(out[j])
	})

	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}

func (p RelatedPolicy) passesQualityGates(m tmdb.Movie) bool {
	if m.VoteCount <= p.MinVoteCount {
		return false
	}
	if m.VoteAverage < p.MinVoteAverage {
		return false
	}

	release := strings.ToLower(m.ReleaseDate)
	if release == "" || release == "unknown" {
		return false
	}

	// A missing original language is not held against the entry.
	if m.OriginalLanguage != "" && len(p.AllowedLanguages) > 0 {
		lang := strings.ToLower(m.OriginalLanguage)
		allowed := false
		for _, l := range p.AllowedLanguages {
			if lang == strings.ToLower(l) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	return true
}
