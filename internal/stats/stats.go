// Package stats aggregates a profile's judgements into the figures shown on
// the analytics and statistics pages.
package stats

import (
	"sort"

	"github.com/MJE43/swipematch/internal/store"
	"github.com/shopspring/decimal"
)

// TagCount is how often a tag appeared among judged entities.
type TagCount struct {
	Tag      string `json:"tag"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
}

// Summary is the analytics view over all judgements of a profile.
type Summary struct {
	Total    int `json:"total"`
	Liked    int `json:"liked"`
	Disliked int `json:"disliked"`
	// LikeRatio is the liked share of judged entities in percent, rounded
	// to two places. Zero when nothing has been judged.
	LikeRatio decimal.Decimal `json:"like_ratio"`
	// Tags is sorted by likes descending, ties broken by name.
	Tags          []TagCount `json:"tags"`
	MostLikedTag  *TagCount  `json:"most_liked_tag,omitempty"`
	LeastLikedTag *TagCount  `json:"least_liked_tag,omitempty"`
}

// Summarize computes the analytics summary. Entities left NotJudged are
// ignored.
func Summarize(records []store.JudgementRecord) Summary {
	var s Summary
	counts := map[string]*TagCount{}

	for _, r := range records {
		switch r.Judgement {
		case store.Like:
			s.Liked++
		case store.Dislike:
			s.Disliked++
		default:
			continue
		}
		for _, tag := range r.Tags {
			tc, ok := counts[tag]
			if !ok {
				tc = &TagCount{Tag: tag}
				counts[tag] = tc
			}
			if r.Judgement == store.Like {
				tc.Likes++
			} else {
				tc.Dislikes++
			}
		}
	}
	s.Total = s.Liked + s.Disliked
	s.LikeRatio = Ratio(s.Liked, s.Total)

	s.Tags = sortedCounts(counts)
	if len(s.Tags) > 0 {
		most := s.Tags[0]
		s.MostLikedTag = &most
		// least liked is the lowest like count, first by name on ties
		least := s.Tags[len(s.Tags)-1]
		for i := len(s.Tags) - 2; i >= 0 && s.Tags[i].Likes == least.Likes; i-- {
			least = s.Tags[i]
		}
		s.LeastLikedTag = &least
	}
	return s
}

// Ratio returns part/total as a percentage rounded to two decimal places.
func Ratio(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}

func sortedCounts(counts map[string]*TagCount) []TagCount {
	out := make([]TagCount, 0, len(counts))
	for _, tc := range counts {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// TypeStats is the type distribution over liked Pokémon.
type TypeStats struct {
	LikedCount   int            `json:"liked_count"`
	Distribution map[string]int `json:"distribution"`
	MostLiked    *TagCount      `json:"most_liked_type,omitempty"`
}

// PokemonTypes counts type tags across liked records. Each record's tags are
// its type names.
func PokemonTypes(records []store.JudgementRecord) TypeStats {
	ts := TypeStats{Distribution: map[string]int{}}
	for _, r := range records {
		if r.Judgement != store.Like {
			continue
		}
		ts.LikedCount++
		for _, t := range r.Tags {
			ts.Distribution[t]++
		}
	}

	var best *TagCount
	for t, n := range ts.Distribution {
		if best == nil || n > best.Likes || (n == best.Likes && t < best.Tag) {
			best = &TagCount{Tag: t, Likes: n}
		}
	}
	ts.MostLiked = best
	return ts
}
