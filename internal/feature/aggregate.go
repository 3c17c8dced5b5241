package feature

import (
	"fmt"
	"math"
	"sort"

	"supplyscore/internal/order"
)

// accumulator collects the running sums of one supplier.
type accumulator struct {
	delay    float64
	late     int
	returns  int
	quantity int
	canceled int
	count    int
}

func (a *accumulator) add(r order.Record) error {
	if r.TotalQuantity < 0 {
		return fmt.Errorf("%w: supplier %s: negative total_quantity %d", order.ErrInvalidRecord, r.SupplierID, r.TotalQuantity)
	}
	if a.quantity > math.MaxInt-r.TotalQuantity {
		return fmt.Errorf("%w: supplier %s: total_quantity sum overflows", order.ErrInvalidRecord, r.SupplierID)
	}
	a.delay += r.DelayDays
	a.late += *r.IsLate
	a.returns += r.HasReturn
	a.quantity += r.TotalQuantity
	a.canceled += r.IsCanceled
	a.count++
	return nil
}

func (a *accumulator) vector(id string) Vector {
	n := float64(a.count)
	return Vector{
		SupplierID:    id,
		AvgDelayDays:  a.delay / n,
		AvgIsLate:     float64(a.late) / n,
		AvgHasReturn:  float64(a.returns) / n,
		TotalQuantity: a.quantity,
		AvgIsCanceled: float64(a.canceled) / n,
		OrderCount:    a.count,
	}
}

// Aggregate sanitizes the records and reduces them to one Vector per supplier.
// The result is sorted by supplier id. An empty batch yields order.ErrEmptyData;
// a negative quantity or a quantity sum beyond the int range yields order.ErrInvalidRecord.
func Aggregate(records []order.Record) ([]Vector, error) {
	if len(records) == 0 {
		return nil, order.ErrEmptyData
	}

	groups := make(map[string]*accumulator)
	for _, r := range records {
		r = r.Sanitize()
		acc, found := groups[r.SupplierID]
		if !found {
			acc = &accumulator{}
			groups[r.SupplierID] = acc
		}
		if err := acc.add(r); err != nil {
			return nil, err
		}
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	vectors := make([]Vector, 0, len(ids))
	for _, id := range ids {
		vectors = append(vectors, groups[id].vector(id))
	}
	return vectors, nil
}
