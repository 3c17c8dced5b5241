package feature

// Names of the numeric features, in the order returned by Vector.Values.
var Names = []string{
	"avg_delay_days",
	"avg_is_late",
	"avg_has_return",
	"total_quantity",
	"avg_is_canceled",
	"order_count",
}

// Count is the number of numeric features of a Vector.
const Count = 6

// Vector summarizes the orders of one supplier within a single batch.
// Averages are means over exactly that supplier's records; OrderCount is at least 1.
type Vector struct {
	SupplierID    string  `json:"fournisseurId"`
	AvgDelayDays  float64 `json:"avg_delay_days"`
	AvgIsLate     float64 `json:"avg_is_late"`
	AvgHasReturn  float64 `json:"avg_has_return"`
	TotalQuantity int     `json:"total_quantity"`
	AvgIsCanceled float64 `json:"avg_is_canceled"`
	OrderCount    int     `json:"order_count"`
}

// Values returns the numeric features in the order of Names.
func (v Vector) Values() []float64 {
	return []float64{
		v.AvgDelayDays,
		v.AvgIsLate,
		v.AvgHasReturn,
		float64(v.TotalQuantity),
		v.AvgIsCanceled,
		float64(v.OrderCount),
	}
}
