package model

import (
	"math"

	"supplyscore/internal/feature"
)

// Score bounds shared by the heuristic label and model predictions.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Penalty weights of the heuristic label. The share of late orders weighs most,
// then returns, then cancellations, then the raw delay in days.
const (
	delayPenalty    = 5.0
	latePenalty     = 30.0
	returnPenalty   = 20.0
	canceledPenalty = 15.0
)

// Heuristic computes the baseline reliability of a supplier used to supervise training.
// The result is always within [MinScore, MaxScore].
func Heuristic(v feature.Vector) float64 {
	raw := MaxScore - (v.AvgDelayDays*delayPenalty +
		v.AvgIsLate*latePenalty +
		v.AvgHasReturn*returnPenalty +
		v.AvgIsCanceled*canceledPenalty)
	return Clip(raw)
}

// Labels returns the heuristic label of every vector, in order.
func Labels(vectors []feature.Vector) []float64 {
	labels := make([]float64, len(vectors))
	for i, v := range vectors {
		labels[i] = Heuristic(v)
	}
	return labels
}

// Clip bounds x to [MinScore, MaxScore]. NaN maps to MinScore.
func Clip(x float64) float64 {
	switch {
	case math.IsNaN(x), x < MinScore:
		return MinScore
	case x > MaxScore:
		return MaxScore
	default:
		return x
	}
}
