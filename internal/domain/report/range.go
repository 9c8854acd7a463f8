package report

import (
	"time"

	"github.com/go-faster/errors"
)

// dateLayout is the fixed-width calendar date format used throughout the
// system. Fixed width means plain string comparison orders dates correctly.
const dateLayout = "2006-01-02"

// Validation errors for report date ranges. All are client errors detected
// before any order stream is touched.
var (
	ErrMissingRange = errors.New("start and end dates are required")
	ErrBadFormat    = errors.New("dates must be in YYYY-MM-DD format")
	ErrInvalidRange = errors.New("start date must not be after end date")
)

// DateRange is a validated, inclusive [Start, End] calendar-date window.
type DateRange struct {
	Start string
	End   string
}

// NewDateRange validates the two boundary strings and returns a usable
// range. Both boundaries are required, must parse as real calendar dates,
// and must be in chronological order.
func NewDateRange(start, end string) (DateRange, error) {
	if start == "" || end == "" {
		return DateRange{}, ErrMissingRange
	}

	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateRange{}, ErrBadFormat
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return DateRange{}, ErrBadFormat
	}

	if startDate.After(endDate) {
		return DateRange{}, ErrInvalidRange
	}

	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether date falls inside the range, boundaries included.
// Lexicographic comparison is valid because the format is fixed-width.
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}
