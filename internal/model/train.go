package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"supplyscore/internal/feature"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TrainingError is returned when a model cannot be fitted.
type TrainingError struct {
	Err error
}

// Error returns the training failure prefixed with its kind.
func (e *TrainingError) Error() string {
	return "train model: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *TrainingError) Unwrap() error {
	return e.Err
}

// NewTrainingError wraps err into a TrainingError.
func NewTrainingError(err error) *TrainingError {
	return &TrainingError{Err: err}
}

// Train fits an ordinary least squares regression with intercept mapping the vectors
// to their labels.
//
// Features and labels are centered and the coefficients are the minimum-norm least squares
// solution obtained from a thin SVD, so collinear features and batches with fewer suppliers
// than features still produce a model. The in-sample R² and MSE are computed and logged;
// they never reject a fit.
func Train(vectors []feature.Vector, labels []float64) (*Model, error) {
	n := len(vectors)
	if n == 0 {
		return nil, NewTrainingError(errors.New("no feature vectors"))
	}
	if len(labels) != n {
		return nil, NewTrainingError(fmt.Errorf("got %d labels for %d feature vectors", len(labels), n))
	}

	x := mat.NewDense(n, feature.Count, nil)
	for i, v := range vectors {
		x.SetRow(i, v.Values())
	}

	means := make([]float64, feature.Count)
	for j := range means {
		col := mat.Col(nil, j, x)
		means[j] = stat.Mean(col, nil)
		floats.AddConst(-means[j], col)
		x.SetCol(j, col)
	}
	yMean := stat.Mean(labels, nil)
	y := mat.NewVecDense(n, slices.Clone(labels))
	for i := 0; i < n; i++ {
		y.SetVec(i, y.AtVec(i)-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, NewTrainingError(errors.New("singular value decomposition failed"))
	}

	coefficients := make([]float64, feature.Count)
	rcond := float64(max(n, feature.Count)) * 2.220446049250313e-16
	if rank := svd.Rank(rcond); rank > 0 {
		var beta mat.VecDense
		svd.SolveVecTo(&beta, y, rank)
		for j := range coefficients {
			coefficients[j] = beta.AtVec(j)
		}
	}

	m := &Model{
		Version:      ArtifactVersion,
		Features:     slices.Clone(feature.Names),
		Coefficients: coefficients,
		Intercept:    yMean - floats.Dot(means, coefficients),
		TrainedAt:    time.Now().UTC(),
		Samples:      n,
	}
	if err := m.Validate(); err != nil {
		return nil, NewTrainingError(err)
	}

	m.Metrics = Evaluate(m, vectors, labels)
	slog.Info("Model evaluated", "r2", m.Metrics.R2, "mse", m.Metrics.MSE, "samples", n)
	return m, nil
}

const perfectFitTolerance = 1e-12

// Evaluate computes the R² and mean squared error of the raw predictions of m.
// When all labels are equal R² is 1 for a perfect fit and 0 otherwise.
func Evaluate(m *Model, vectors []feature.Vector, labels []float64) Metrics {
	if len(vectors) == 0 {
		return Metrics{}
	}

	estimates := make([]float64, len(vectors))
	var sse float64
	for i, v := range vectors {
		estimates[i] = m.Raw(v)
		d := estimates[i] - labels[i]
		sse += d * d
	}
	mse := sse / float64(len(vectors))

	r2 := stat.RSquaredFrom(estimates, labels, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) || floats.Max(labels) == floats.Min(labels) {
		r2 = 0
		if sse < perfectFitTolerance {
			r2 = 1
		}
	}
	return Metrics{R2: r2, MSE: mse}
}
