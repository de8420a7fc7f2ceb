package search

import (
	"slices"
	"strings"
	"unicode"

	"github.com/poiesic/firstaid/core"
)

// OverlapWeight is the per-keyword boost applied during reranking.
const OverlapWeight = 0.02

// Rerank scores each candidate by keyword overlap with the query and
// returns them ordered by boosted score descending. The boost breaks ties
// between chunks with near-identical vector similarity without letting
// lexical overlap dominate the semantic signal.
//
// The sort is stable: equal boosted scores keep their incoming order.
func Rerank(candidates []*core.Candidate, queryKeywords []string) []*core.RankedCandidate {
	ranked := make([]*core.RankedCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		overlap := keywordOverlap(candidate.Chunk.Text, queryKeywords)
		ranked = append(ranked, &core.RankedCandidate{
			Candidate:      *candidate,
			KeywordOverlap: overlap,
			BoostedScore:   candidate.Score + float32(overlap)*OverlapWeight,
		})
	}

	slices.SortStableFunc(ranked, func(a, b *core.RankedCandidate) int {
		if a.BoostedScore > b.BoostedScore {
			return -1
		}
		if a.BoostedScore < b.BoostedScore {
			return 1
		}
		return 0
	})

	return ranked
}

// keywordOverlap counts how many query keywords appear as whole tokens in
// the chunk text. Substring matching would let "cut" hit "acute" or "old"
// hit "cold", so the text is tokenized and compared as a set.
func keywordOverlap(text string, keywords []string) int {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}

	count := 0
	for _, keyword := range keywords {
		if tokens[keyword] {
			count++
		}
	}
	return count
}
