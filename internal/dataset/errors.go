package dataset

import "errors"

var (
	// ErrMissingColumn is returned when a required header column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyFile is returned when a CSV file has no header row.
	ErrEmptyFile = errors.New("csv file has no header")
)
