package model

import "supplyscore/internal/feature"

// SupplierScore is the reliability score returned for one supplier.
type SupplierScore struct {
	SupplierID string  `json:"fournisseurId"`
	Score      float64 `json:"score"`
}

// Predict applies m to every vector, clips each prediction to [MinScore, MaxScore]
// and keeps the order of vectors.
func Predict(m *Model, vectors []feature.Vector) []SupplierScore {
	scores := make([]SupplierScore, len(vectors))
	for i, v := range vectors {
		scores[i] = SupplierScore{
			SupplierID: v.SupplierID,
			Score:      Clip(m.Raw(v)),
		}
	}
	return scores
}
