// internal/domain/sla/holidays.go
package sla

import (
	"time"

	"cloud.google.com/go/civil"
)

// LastWeek selects the last occurrence of a weekday in a month.
const LastWeek = -1

// HolidayRule describes one recurring holiday.
// A rule is either a fixed date (Day > 0) or the Nth Weekday of Month
// (Week 1..4, or LastWeek). Fixed-date holidays falling on a weekend are
// observed on the nearest weekday: Saturday moves to Friday, Sunday to Monday.
type HolidayRule struct {
	Name    string
	Month   time.Month
	Day     int
	Weekday time.Weekday
	Week    int
	Since   int // First year the holiday applies; 0 means always
}

// Observed returns the date the holiday is observed for the given year.
// The observed date of a fixed holiday may fall in the previous year
// (New Year's Day on a Saturday is observed on December 31).
func (h HolidayRule) Observed(year int) (civil.Date, bool) {
	if h.Since != 0 && year < h.Since {
		return civil.Date{}, false
	}
	if h.Day > 0 {
		d := civil.Date{Year: year, Month: h.Month, Day: h.Day}
		switch d.Weekday() {
		case time.Saturday:
			return d.AddDays(-1), true
		case time.Sunday:
			return d.AddDays(1), true
		}
		return d, true
	}
	return nthWeekday(year, h.Month, h.Weekday, h.Week), true
}

func nthWeekday(year int, month time.Month, wd time.Weekday, week int) civil.Date {
	if week == LastWeek {
		last := civil.Date{Year: year, Month: month, Day: 1}.AddMonths(1).AddDays(-1)
		back := (int(last.Weekday()) - int(wd) + 7) % 7
		return last.AddDays(-back)
	}
	first := civil.Date{Year: year, Month: month, Day: 1}
	ahead := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDays(ahead + 7*(week-1))
}

// HolidaySet is a table of holiday rules.
type HolidaySet []HolidayRule

// USFederalHolidays is the US federal holiday calendar (5 U.S.C. 6103).
var USFederalHolidays = HolidaySet{
	{Name: "New Year's Day", Month: time.January, Day: 1},
	{Name: "Birthday of Martin Luther King, Jr.", Month: time.January, Weekday: time.Monday, Week: 3},
	{Name: "Washington's Birthday", Month: time.February, Weekday: time.Monday, Week: 3},
	{Name: "Memorial Day", Month: time.May, Weekday: time.Monday, Week: LastWeek},
	{Name: "Juneteenth National Independence Day", Month: time.June, Day: 19, Since: 2021},
	{Name: "Independence Day", Month: time.July, Day: 4},
	{Name: "Labor Day", Month: time.September, Weekday: time.Monday, Week: 1},
	{Name: "Columbus Day", Month: time.October, Weekday: time.Monday, Week: 2},
	{Name: "Veterans Day", Month: time.November, Day: 11},
	{Name: "Thanksgiving Day", Month: time.November, Weekday: time.Thursday, Week: 4},
	{Name: "Christmas Day", Month: time.December, Day: 25},
}

// Holiday returns the name of the holiday observed on d, if any.
func (s HolidaySet) Holiday(d civil.Date) (string, bool) {
	// A holiday of the following year can be observed on December 31.
	for _, year := range []int{d.Year, d.Year + 1} {
		for _, h := range s {
			if obs, ok := h.Observed(year); ok && obs == d {
				return h.Name, true
			}
		}
	}
	return "", false
}

// IsHoliday reports whether d is an observed holiday.
func (s HolidaySet) IsHoliday(d civil.Date) bool {
	_, ok := s.Holiday(d)
	return ok
}

// InYear lists the observed holiday dates belonging to year, in rule order.
func (s HolidaySet) InYear(year int) []civil.Date {
	dates := make([]civil.Date, 0, len(s))
	for _, h := range s {
		if obs, ok := h.Observed(year); ok {
			dates = append(dates, obs)
		}
	}
	return dates
}
