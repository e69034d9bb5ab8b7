package explore

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// ErrNoRecords is returned by SelectBrightest when there is nothing to
// choose from.
var ErrNoRecords = errors.New("no dead-end records to select from")

// SelectBrightest returns the record with the greatest light intensity.
// Ties go to the earliest record.
func SelectBrightest(records []Record) (Record, error) {
	if len(records) == 0 {
		return Record{}, ErrNoRecords
	}
	lights := make([]float64, len(records))
	for i, r := range records {
		lights[i] = r.Light
	}
	// floats.MaxIdx keeps the first index among equal maxima.
	return records[floats.MaxIdx(lights)], nil
}
