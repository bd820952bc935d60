package sla_test

import (
	"testing"
	"time"

	"bugbounty_sla_bot/internal/domain/sla"

	"github.com/m-mizutani/gt"
)

func newCalendar(t *testing.T) *sla.Calendar {
	t.Helper()
	cal, err := sla.NewCalendar(sla.DefaultTimezone, sla.USFederalHolidays)
	gt.NoError(t, err).Required()
	return cal
}

func utc(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestElapsedBusinessDays(t *testing.T) {
	cal := newCalendar(t)

	testCases := []struct {
		name     string
		a, b     time.Time
		expected int
	}{
		{"same instant", utc(2017, time.June, 19, 14), utc(2017, time.June, 19, 14), 0},
		{"same business date", utc(2017, time.June, 19, 14), utc(2017, time.June, 19, 20), 0},
		{"monday to following monday", utc(2017, time.June, 19, 14), utc(2017, time.June, 26, 14), 5},
		{"friday to monday", utc(2017, time.June, 23, 14), utc(2017, time.June, 26, 14), 1},
		{"saturday to tuesday", utc(2017, time.June, 24, 14), utc(2017, time.June, 27, 14), 1},
		{"monday to saturday", utc(2017, time.June, 19, 14), utc(2017, time.June, 24, 14), 4},
		{"saturday to saturday", utc(2017, time.June, 24, 14), utc(2017, time.July, 1, 14), 5},
		{"friday to saturday", utc(2017, time.June, 23, 14), utc(2017, time.June, 24, 14), 0},
		{"created on labor day", utc(2017, time.September, 4, 14), utc(2017, time.September, 6, 14), 1},
		{"week containing independence day", utc(2017, time.July, 3, 14), utc(2017, time.July, 10, 14), 4},
		{"reversed is negative", utc(2017, time.June, 26, 14), utc(2017, time.June, 19, 14), -5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, cal.ElapsedBusinessDays(tc.a, tc.b)).Equal(tc.expected)
		})
	}
}

func TestElapsedUsesBusinessTimezone(t *testing.T) {
	cal := newCalendar(t)
	created := utc(2017, time.June, 19, 14)

	// 02:00 UTC on Tuesday is still Monday evening in New York.
	gt.Value(t, cal.ElapsedBusinessDays(created, utc(2017, time.June, 20, 2))).Equal(0)
	gt.Value(t, cal.ElapsedBusinessDays(created, utc(2017, time.June, 20, 5))).Equal(1)

	// The same instant expressed in another zone gives the same answer.
	berlin := time.FixedZone("CEST", 2*60*60)
	gt.Value(t, cal.ElapsedBusinessDays(created.In(berlin), utc(2017, time.June, 20, 5).In(berlin))).Equal(1)
}

func TestElapsedIsMonotonic(t *testing.T) {
	cal := newCalendar(t)
	a := utc(2017, time.November, 1, 9)

	prev := 0
	for b := a; b.Before(a.AddDate(0, 3, 0)); b = b.Add(5 * time.Hour) {
		n := cal.ElapsedBusinessDays(a, b)
		gt.Bool(t, n >= prev).True()
		prev = n
	}
}

func TestIsBusinessDay(t *testing.T) {
	cal := newCalendar(t)
	gt.Bool(t, cal.IsBusinessDay(date(2017, time.June, 19))).True()
	gt.Bool(t, cal.IsBusinessDay(date(2017, time.June, 24))).False()
	gt.Bool(t, cal.IsBusinessDay(date(2017, time.June, 25))).False()
	gt.Bool(t, cal.IsBusinessDay(date(2017, time.December, 25))).False()
}

func TestLocalDate(t *testing.T) {
	cal := newCalendar(t)
	gt.Value(t, cal.LocalDate(utc(2017, time.September, 1, 2))).Equal(date(2017, time.August, 31))
	gt.Value(t, cal.Location().String()).Equal(sla.DefaultTimezone)
}

func TestNewCalendarRejectsUnknownZone(t *testing.T) {
	_, err := sla.NewCalendar("Mars/Olympus_Mons", sla.USFederalHolidays)
	gt.Error(t, err)
}
