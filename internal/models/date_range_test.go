package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(day int) time.Time {
	return time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
}

func TestDateRange_Overlaps(t *testing.T) {
	existing := NewDateRange(date(10), date(12))

	tests := []struct {
		name  string
		query DateRange
		want  bool
	}{
		{"shares the 11th", NewDateRange(date(11), date(13)), true},
		{"starts when existing ends", NewDateRange(date(12), date(14)), false},
		{"ends when existing starts", NewDateRange(date(5), date(10)), false},
		{"contains existing", NewDateRange(date(1), date(20)), true},
		{"inside existing", NewDateRange(date(10).Add(time.Hour), date(11)), true},
		{"identical", NewDateRange(date(10), date(12)), true},
		{"entirely before", NewDateRange(date(1), date(3)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(tt.query))
			assert.Equal(t, tt.want, tt.query.Overlaps(existing), "overlap must be symmetric")
		})
	}
}

func TestDateRange_Days(t *testing.T) {
	assert.Equal(t, 2, NewDateRange(date(10), date(12)).Days())
	assert.Equal(t, 1, NewDateRange(date(10), date(11).Add(23*time.Hour)).Days())
	assert.Equal(t, 0, NewDateRange(date(10), date(10).Add(5*time.Hour)).Days())
	assert.Equal(t, 0, NewDateRange(date(12), date(10)).Days())
}

func TestDateRange_IsValid(t *testing.T) {
	assert.True(t, NewDateRange(date(1), date(2)).IsValid())
	assert.False(t, NewDateRange(date(2), date(2)).IsValid())
	assert.False(t, NewDateRange(date(3), date(2)).IsValid())
}
