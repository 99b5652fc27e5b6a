package analysis

import "errors"

var (
	// ErrNoData is returned when there are no joint frames to analyze.
	ErrNoData = errors.New("insufficient data")

	// ErrDegenerateMeasurement is returned when the mean waist width is zero
	// and the shoulder-to-waist ratio is undefined.
	ErrDegenerateMeasurement = errors.New("degenerate measurement: waist width is zero")

	// ErrMissingMeasurements is returned when scores are requested without measurements.
	ErrMissingMeasurements = errors.New("measurements are required")
)
