package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"supplyscore/internal/feature"
)

// ArtifactVersion is the version of the serialized model document.
const ArtifactVersion = 1

// ErrInvalidArtifact is wrapped by Decode when a document is not a usable model.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// Metrics holds in-sample fit quality. The values are diagnostic only.
type Metrics struct {
	R2  float64 `json:"r2"`
	MSE float64 `json:"mse"`
}

// Model is a linear regressor over the features of a feature.Vector.
type Model struct {
	Version      int       `json:"version"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	TrainedAt    time.Time `json:"trainedAt"`
	Samples      int       `json:"samples"`
	Metrics      Metrics   `json:"metrics"`
}

// Raw returns the unclipped prediction for v.
func (m *Model) Raw(v feature.Vector) float64 {
	raw := m.Intercept
	for i, x := range v.Values() {
		raw += m.Coefficients[i] * x
	}
	return raw
}

// Validate reports whether the model can be applied to feature vectors.
func (m *Model) Validate() error {
	if m.Version != ArtifactVersion {
		return fmt.Errorf("unsupported version %d", m.Version)
	}
	if !slices.Equal(m.Features, feature.Names) {
		return fmt.Errorf("feature mismatch: %v", m.Features)
	}
	if len(m.Coefficients) != feature.Count {
		return fmt.Errorf("expected %d coefficients, got %d", feature.Count, len(m.Coefficients))
	}
	for _, c := range append([]float64{m.Intercept}, m.Coefficients...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.New("non-finite parameter")
		}
	}
	return nil
}

// Encode serializes the model into its artifact document.
func Encode(m *Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return json.MarshalIndent(m, "", "  ")
}

// Decode parses an artifact document. Any document that is not a valid model
// yields an error wrapping ErrInvalidArtifact.
func Decode(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return &m, nil
}
