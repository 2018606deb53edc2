package schedule

import (
	"testing"
	"time"

	"github.com/kaan/pocketledger/pkg/models"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name      string
		from      time.Time
		freq      models.Frequency
		anchorDay int
		want      time.Time
	}{
		{"daily", date(2024, time.March, 14), models.Daily, 14, date(2024, time.March, 15)},
		{"daily across month end", date(2024, time.January, 31), models.Daily, 31, date(2024, time.February, 1)},
		{"weekly", date(2024, time.March, 14), models.Weekly, 14, date(2024, time.March, 21)},
		{"weekly across year end", date(2023, time.December, 28), models.Weekly, 28, date(2024, time.January, 4)},
		{"monthly plain", date(2024, time.March, 15), models.Monthly, 15, date(2024, time.April, 15)},
		{"monthly clamps to short month", date(2024, time.January, 31), models.Monthly, 31, date(2024, time.February, 29)},
		{"monthly clamps non-leap february", date(2023, time.January, 31), models.Monthly, 31, date(2023, time.February, 28)},
		{"monthly restores anchor after clamp", date(2024, time.February, 29), models.Monthly, 31, date(2024, time.March, 31)},
		{"monthly 30 anchor over february", date(2023, time.February, 28), models.Monthly, 30, date(2023, time.March, 30)},
		{"monthly december wraps year", date(2024, time.December, 31), models.Monthly, 31, date(2025, time.January, 31)},
		{"yearly plain", date(2024, time.June, 1), models.Yearly, 1, date(2025, time.June, 1)},
		{"yearly feb 29 clamps on non-leap", date(2024, time.February, 29), models.Yearly, 29, date(2025, time.February, 28)},
		{"yearly feb 29 restored on leap", date(2027, time.February, 28), models.Yearly, 29, date(2028, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.from, tt.freq, tt.anchorDay)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextPreservesClock(t *testing.T) {
	from := time.Date(2024, time.January, 31, 9, 30, 0, 0, time.UTC)
	got := Next(from, models.Monthly, 31)
	assert.Equal(t, time.Date(2024, time.February, 29, 9, 30, 0, 0, time.UTC), got)
}

func TestNextUnknownFrequency(t *testing.T) {
	from := date(2024, time.March, 14)
	assert.Equal(t, from, Next(from, models.Frequency("fortnightly"), 14))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 31, DaysIn(2024, time.December))
	assert.Equal(t, 30, DaysIn(2024, time.April))
}
