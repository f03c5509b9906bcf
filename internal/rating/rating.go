// Package rating computes confidence-adjusted release scores.
package rating

import "github.com/calvares/digger/internal/constants"

// Score returns the Bayesian average of a release's community rating.
//
// Releases with few ratings are pulled toward the prior mean (2.5 on the
// 0-5 scale); releases with many ratings converge to their raw average.
// A release with no ratings scores 0.
func Score(avgRating float64, numRatings int) float64 {
	return ScoreWithPrior(avgRating, numRatings, constants.ScorePriorMean, constants.ScoreMinRatings)
}

// ScoreWithPrior is Score with an explicit prior mean and normalization count.
func ScoreWithPrior(avgRating float64, numRatings int, priorMean float64, minRatings int) float64 {
	if numRatings == 0 {
		return 0
	}
	n := float64(numRatings)
	m := float64(minRatings)
	return (avgRating*n + priorMean*m) / (n + m)
}
