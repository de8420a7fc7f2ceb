package respond

import "github.com/poiesic/firstaid/core"

const (
	// HighConfidenceThreshold is the minimum average relevance for a high
	// confidence answer.
	HighConfidenceThreshold = 0.75

	// MediumConfidenceThreshold is the minimum average relevance for a
	// medium confidence answer.
	MediumConfidenceThreshold = 0.60
)

// ConfidenceTier classifies an average relevance score.
func ConfidenceTier(avg float32) core.Tier {
	switch {
	case avg >= HighConfidenceThreshold:
		return core.TierHigh
	case avg >= MediumConfidenceThreshold:
		return core.TierMedium
	default:
		return core.TierLow
	}
}

// AverageScore returns the mean retrieval score of the ranked candidates.
// An empty set averages to zero.
func AverageScore(ranked []*core.RankedCandidate) float32 {
	if len(ranked) == 0 {
		return 0
	}
	var sum float32
	for _, rc := range ranked {
		sum += rc.Score
	}
	return sum / float32(len(ranked))
}
