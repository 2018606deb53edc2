// Package schedule implements calendar advancement for recurring payment
// due dates.
//
// Monthly and yearly steps clamp to the last valid day of the target month
// while remembering the anchor day-of-month, so a payment anchored on the
// 31st walks Jan 31 -> Feb 28 -> Mar 31 instead of drifting to the 28th
// forever.
package schedule

import (
	"time"

	"github.com/kaan/pocketledger/pkg/models"
)

// Next returns the due date one schedule unit after date.
//
// anchorDay is the day-of-month the schedule was created on (normally the
// start date's day). It only matters for monthly and yearly frequencies,
// where the result is clamped to the last valid day of the target month.
// An unknown frequency returns date unchanged; callers validate first.
func Next(date time.Time, freq models.Frequency, anchorDay int) time.Time {
	switch freq {
	case models.Daily:
		return date.AddDate(0, 0, 1)
	case models.Weekly:
		return date.AddDate(0, 0, 7)
	case models.Monthly:
		year, month, _ := date.Date()
		return onDay(year, month+1, anchorDay, date)
	case models.Yearly:
		year, month, _ := date.Date()
		return onDay(year+1, month, anchorDay, date)
	}
	return date
}

// onDay builds a date in the given month on the anchor day, clamped to the
// month's last day. Month may be out of [1,12]; time.Date normalizes it.
func onDay(year int, month time.Month, day int, ref time.Time) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	h, m, s := ref.Clock()
	return time.Date(year, month, day, h, m, s, ref.Nanosecond(), ref.Location())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
