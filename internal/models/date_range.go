package models

import "time"

const day = 24 * time.Hour

// DateRange is the half-open interval [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: start, End: end}
}

func (r DateRange) IsValid() bool {
	return r.Start.Before(r.End)
}

// Overlaps reports whether the two ranges share any instant. Ranges that only
// touch at an endpoint do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Days is the number of whole days in the range; partial days are dropped.
func (r DateRange) Days() int {
	if !r.IsValid() {
		return 0
	}
	return int(r.End.Sub(r.Start) / day)
}
