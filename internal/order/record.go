package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field names of an order record as delivered by the upstream provider.
const (
	FieldSupplierID    = "fournisseurId"
	FieldDelayDays     = "delay_days"
	FieldHasReturn     = "has_return"
	FieldTotalQuantity = "total_quantity"
	FieldIsCanceled    = "is_canceled"
	FieldIsLate        = "is_late"
)

// RequiredFields lists the fields every batch must carry, in the order they are reported.
var RequiredFields = []string{
	FieldSupplierID,
	FieldDelayDays,
	FieldHasReturn,
	FieldTotalQuantity,
	FieldIsCanceled,
}

// ErrEmptyData is returned when a batch holds no order records.
var ErrEmptyData = errors.New("no order data available")

// ErrInvalidRecord is wrapped by errors describing a field value that cannot be coerced.
var ErrInvalidRecord = errors.New("invalid order record")

// MissingFieldsError reports required fields absent from a batch.
// Fields always follows the order of RequiredFields.
type MissingFieldsError struct {
	Fields []string
}

// Error lists the missing fields.
func (e *MissingFieldsError) Error() string {
	return "missing fields in order data: " + strings.Join(e.Fields, ", ")
}

// NewMissingFieldsError creates a MissingFieldsError for the given fields.
func NewMissingFieldsError(fields []string) *MissingFieldsError {
	return &MissingFieldsError{Fields: fields}
}

// Record is a single order of a supplier.
// IsLate is nil when the provider did not supply it; Sanitize derives it from DelayDays.
type Record struct {
	SupplierID    string  `json:"fournisseurId"`
	DelayDays     float64 `json:"delay_days"`
	HasReturn     int     `json:"has_return"`
	TotalQuantity int     `json:"total_quantity"`
	IsCanceled    int     `json:"is_canceled"`
	IsLate        *int    `json:"is_late,omitempty"`
}

// Sanitize returns a copy of r with a finite delay and an explicit late flag.
// Infinite and NaN delays are normalized to 0 before the late flag is derived.
func (r Record) Sanitize() Record {
	if math.IsInf(r.DelayDays, 0) || math.IsNaN(r.DelayDays) {
		r.DelayDays = 0
	}
	if r.IsLate == nil {
		late := 0
		if r.DelayDays > 0 {
			late = 1
		}
		r.IsLate = &late
	}
	return r
}

// Decode parses a JSON array of order records.
//
// A required field is missing when no record carries it. The supplier id and the integer
// flags are also missing when any record lacks them, since such a record cannot be coerced.
// A delay that is absent, null, one of "Infinity", "-Infinity", "NaN", or a number
// beyond the float64 range becomes 0. A negative total_quantity or an integer field
// outside the int range is rejected with ErrInvalidRecord.
// All missing fields are reported together in a *MissingFieldsError and no record is returned.
func Decode(data []byte) ([]Record, error) {
	var raws []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode order data: %w", err)
	}
	if len(raws) == 0 {
		return []Record{}, nil
	}

	if missing := missingFields(raws); len(missing) > 0 {
		return nil, NewMissingFieldsError(missing)
	}

	records := make([]Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidRecord, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func missingFields(raws []map[string]json.RawMessage) []string {
	var missing []string
	for _, field := range RequiredFields {
		present := 0
		for _, raw := range raws {
			if value, ok := raw[field]; ok && (field == FieldDelayDays || !isNull(value)) {
				present++
			}
		}
		switch {
		case present == 0:
			missing = append(missing, field)
		case present < len(raws) && field != FieldDelayDays:
			missing = append(missing, field)
		}
	}
	return missing
}

func decodeRecord(raw map[string]json.RawMessage) (Record, error) {
	var rec Record
	var err error

	if rec.SupplierID, err = decodeID(raw[FieldSupplierID]); err != nil {
		return rec, fmt.Errorf("%s: %w", FieldSupplierID, err)
	}
	if rec.DelayDays, err = decodeDelay(raw[FieldDelayDays]); err != nil {
		return rec, fmt.Errorf("%s: %w", FieldDelayDays, err)
	}

	flags := []struct {
		field string
		dst   *int
	}{
		{FieldHasReturn, &rec.HasReturn},
		{FieldTotalQuantity, &rec.TotalQuantity},
		{FieldIsCanceled, &rec.IsCanceled},
	}
	for _, f := range flags {
		if *f.dst, err = decodeInt(raw[f.field]); err != nil {
			return rec, fmt.Errorf("%s: %w", f.field, err)
		}
	}
	if rec.TotalQuantity < 0 {
		return rec, fmt.Errorf("%s: must not be negative, got %d", FieldTotalQuantity, rec.TotalQuantity)
	}

	if value, ok := raw[FieldIsLate]; ok && !isNull(value) {
		late, err := decodeInt(value)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", FieldIsLate, err)
		}
		rec.IsLate = &late
	}

	return rec, nil
}

func isNull(value json.RawMessage) bool {
	return len(value) == 0 || bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func decodeID(value json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(value, &id); err == nil {
		return id, nil
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err != nil {
		return "", fmt.Errorf("expected string, got %s", value)
	}
	return n.String(), nil
}

func decodeDelay(value json.RawMessage) (float64, error) {
	if isNull(value) {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		// A numeric literal beyond the float64 range, e.g. 1e999, is an infinite delay.
		if overflowsFloat(string(value)) {
			return 0, nil
		}
		return 0, fmt.Errorf("expected number, got %s", value)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "infinity", "+infinity", "-infinity", "inf", "-inf", "nan", "":
		return 0, nil
	}
	if overflowsFloat(s) {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("expected number, got %q", s)
	}
	return f, nil
}

// overflowsFloat reports whether s is a well-formed number whose magnitude exceeds float64.
func overflowsFloat(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)
}

// decodeInt accepts numbers, truncated toward zero, and booleans.
// Numbers outside the int range are rejected.
func decodeInt(value json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		if math.IsNaN(f) || f < minIntFloat || f >= maxIntFloat {
			return 0, fmt.Errorf("integer out of range: %s", value)
		}
		return int(f), nil
	}
	var b bool
	if err := json.Unmarshal(value, &b); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("expected integer, got %s", value)
}

// Bounds of the float64 values that convert to int by truncation.
const (
	minIntFloat = float64(math.MinInt)
	maxIntFloat = -float64(math.MinInt)
)
