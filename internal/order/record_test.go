package order

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_FullRecords(t *testing.T) {
	payload := `[
		{"fournisseurId": "S1", "delay_days": 2.5, "is_late": 1, "has_return": 0, "total_quantity": 4, "is_canceled": 0},
		{"fournisseurId": "S2", "delay_days": -1, "has_return": true, "total_quantity": 3.9, "is_canceled": false}
	]`

	records, err := Decode([]byte(payload))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "S1", records[0].SupplierID)
	assert.Equal(t, 2.5, records[0].DelayDays)
	require.NotNil(t, records[0].IsLate)
	assert.Equal(t, 1, *records[0].IsLate)

	assert.Equal(t, 1, records[1].HasReturn, "booleans should coerce to integers")
	assert.Equal(t, 3, records[1].TotalQuantity, "numbers should truncate like an integer cast")
	assert.Nil(t, records[1].IsLate, "late flag should stay unset when not supplied")
}

func TestDecode_EmptyBatch(t *testing.T) {
	records, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecode_MalformedPayload(t *testing.T) {
	_, err := Decode([]byte(`{"not": "an array"}`))
	assert.Error(t, err)

	var missing *MissingFieldsError
	assert.False(t, errors.As(err, &missing))
}

func TestDecode_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{
			name:    "single absent column",
			payload: `[{"fournisseurId": "S1", "delay_days": 1, "has_return": 0, "total_quantity": 1}]`,
			want:    []string{FieldIsCanceled},
		},
		{
			name:    "several absent columns keep canonical order",
			payload: `[{"total_quantity": 1, "has_return": 0}]`,
			want:    []string{FieldSupplierID, FieldDelayDays, FieldIsCanceled},
		},
		{
			name: "integer field absent from one record",
			payload: `[
				{"fournisseurId": "S1", "delay_days": 1, "has_return": 0, "total_quantity": 1, "is_canceled": 0},
				{"fournisseurId": "S1", "delay_days": 1, "total_quantity": 1, "is_canceled": 0}
			]`,
			want: []string{FieldHasReturn},
		},
		{
			name: "null supplier id",
			payload: `[
				{"fournisseurId": null, "delay_days": 1, "has_return": 0, "total_quantity": 1, "is_canceled": 0}
			]`,
			want: []string{FieldSupplierID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Decode([]byte(tt.payload))
			assert.Nil(t, records)

			var missing *MissingFieldsError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.want, missing.Fields)
		})
	}
}

func TestDecode_DelayNormalization(t *testing.T) {
	payload := `[
		{"fournisseurId": "S1", "delay_days": null, "has_return": 0, "total_quantity": 1, "is_canceled": 0},
		{"fournisseurId": "S1", "delay_days": "Infinity", "has_return": 0, "total_quantity": 1, "is_canceled": 0},
		{"fournisseurId": "S1", "delay_days": "-Infinity", "has_return": 0, "total_quantity": 1, "is_canceled": 0},
		{"fournisseurId": "S1", "delay_days": "NaN", "has_return": 0, "total_quantity": 1, "is_canceled": 0},
		{"fournisseurId": "S1", "has_return": 0, "total_quantity": 1, "is_canceled": 0},
		{"fournisseurId": "S1", "delay_days": 1e999, "has_return": 0, "total_quantity": 1, "is_canceled": 0},
		{"fournisseurId": "S1", "delay_days": -1e999, "has_return": 0, "total_quantity": 1, "is_canceled": 0},
		{"fournisseurId": "S1", "delay_days": "1e999", "has_return": 0, "total_quantity": 1, "is_canceled": 0},
		{"fournisseurId": "S1", "delay_days": "3.5", "has_return": 0, "total_quantity": 1, "is_canceled": 0}
	]`

	records, err := Decode([]byte(payload))
	require.NoError(t, err)
	require.Len(t, records, 9)

	for i := 0; i < 8; i++ {
		assert.Zero(t, records[i].DelayDays, "record %d should normalize to 0", i)
	}
	assert.Equal(t, 3.5, records[8].DelayDays)

	sanitized := records[1].Sanitize()
	assert.Equal(t, 0, *sanitized.IsLate, "an infinite delay is not late")
}

func TestDecode_InvalidValue(t *testing.T) {
	tests := []struct {
		name   string
		record string
		field  string
	}{
		{"non numeric flag", `"has_return": "yes", "total_quantity": 1, "is_canceled": 0`, FieldHasReturn},
		{"quantity beyond int range", `"has_return": 0, "total_quantity": 1e20, "is_canceled": 0`, FieldTotalQuantity},
		{"quantity overflowing float", `"has_return": 0, "total_quantity": 1e999, "is_canceled": 0`, FieldTotalQuantity},
		{"negative quantity", `"has_return": 0, "total_quantity": -5, "is_canceled": 0`, FieldTotalQuantity},
		{"flag beyond int range", `"has_return": 0, "total_quantity": 1, "is_canceled": -1e30`, FieldIsCanceled},
		{"delay not a number", `"has_return": 0, "total_quantity": 1, "is_canceled": 0, "delay_days": "soon"`, FieldDelayDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `[{"fournisseurId": "S1", ` + tt.record + `}]`
			if !strings.Contains(tt.record, FieldDelayDays) {
				payload = `[{"fournisseurId": "S1", "delay_days": 1, ` + tt.record + `}]`
			}

			records, err := Decode([]byte(payload))
			assert.Nil(t, records)
			assert.ErrorIs(t, err, ErrInvalidRecord)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestDecode_LargeQuantity(t *testing.T) {
	payload := `[{"fournisseurId": "S1", "delay_days": 0, "has_return": 0, "total_quantity": 1e15, "is_canceled": 0}]`

	records, err := Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 1_000_000_000_000_000, records[0].TotalQuantity)
}

func TestDecode_NumericSupplierID(t *testing.T) {
	payload := `[{"fournisseurId": 42, "delay_days": 0, "has_return": 0, "total_quantity": 1, "is_canceled": 0}]`

	records, err := Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "42", records[0].SupplierID)
}

func TestRecord_Sanitize(t *testing.T) {
	tests := []struct {
		name      string
		record    Record
		wantDelay float64
		wantLate  int
	}{
		{"positive delay derives late", Record{DelayDays: 4}, 4, 1},
		{"zero delay is on time", Record{DelayDays: 0}, 0, 0},
		{"early delivery is on time", Record{DelayDays: -2}, -2, 0},
		{"positive infinity", Record{DelayDays: math.Inf(1)}, 0, 0},
		{"negative infinity", Record{DelayDays: math.Inf(-1)}, 0, 0},
		{"nan", Record{DelayDays: math.NaN()}, 0, 0},
		{"supplied flag wins", Record{DelayDays: 0, IsLate: intPtr(1)}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.Sanitize()
			assert.Equal(t, tt.wantDelay, got.DelayDays)
			require.NotNil(t, got.IsLate)
			assert.Equal(t, tt.wantLate, *got.IsLate)
		})
	}
}

func TestRecord_MarshalWireFormat(t *testing.T) {
	body, err := json.Marshal([]Record{{SupplierID: "S1", DelayDays: 1, HasReturn: 1, TotalQuantity: 3}})
	require.NoError(t, err)

	records, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, "S1", records[0].SupplierID)
	assert.Equal(t, 3, records[0].TotalQuantity)
}

func intPtr(v int) *int {
	return &v
}
