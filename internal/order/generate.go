package order

import (
	"github.com/jaswdr/faker"
)

// Generate produces count synthetic order records spread over the given number of suppliers.
// Every supplier receives at least one record when count >= suppliers.
// Supplied late flags are omitted so consumers exercise derivation from the delay.
func Generate(fake faker.Faker, suppliers, count int) []Record {
	if suppliers <= 0 || count <= 0 {
		return []Record{}
	}

	ids := make([]string, suppliers)
	for i := range ids {
		ids[i] = fake.UUID().V4()
	}

	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		id := ids[i%suppliers]
		if i >= suppliers {
			id = ids[fake.IntBetween(0, suppliers-1)]
		}

		delay := 0.0
		if fake.IntBetween(0, 99) < 35 {
			delay = fake.Float64(2, 0, 20)
		} else if fake.IntBetween(0, 99) < 20 {
			delay = -fake.Float64(2, 0, 5)
		}

		rec := Record{
			SupplierID:    id,
			DelayDays:     delay,
			TotalQuantity: fake.IntBetween(1, 500),
		}
		if fake.IntBetween(0, 99) < 10 {
			rec.HasReturn = 1
		}
		if fake.IntBetween(0, 99) < 8 {
			rec.IsCanceled = 1
		}
		records = append(records, rec)
	}
	return records
}
