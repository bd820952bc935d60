// internal/domain/sla/calendar.go
package sla

import (
	"fmt"
	"time"
	_ "time/tzdata" // Business timezone must resolve on hosts without zoneinfo

	"cloud.google.com/go/civil"
)

// DefaultTimezone is the zone all business-day arithmetic is based on.
const DefaultTimezone = "America/New_York"

// Calendar counts business days: Monday to Friday, minus observed holidays,
// with every instant judged by its wall-clock date in the business location.
type Calendar struct {
	loc      *time.Location
	holidays HolidaySet
}

func NewCalendar(timezone string, holidays HolidaySet) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", timezone, err)
	}
	return &Calendar{loc: loc, holidays: holidays}, nil
}

// Location returns the business location.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// LocalDate returns the calendar date of t in the business location.
func (c *Calendar) LocalDate(t time.Time) civil.Date {
	return civil.DateOf(t.In(c.loc))
}

// IsBusinessDay reports whether d is a weekday that is not an observed holiday.
func (c *Calendar) IsBusinessDay(d civil.Date) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.holidays.IsHoliday(d)
}

// ElapsedBusinessDays counts the whole business days between a and b, judged
// by their dates in the business location. Time of day is ignored. When b is
// before a the result is the negated count from b to a.
func (c *Calendar) ElapsedBusinessDays(a, b time.Time) int {
	from, to := c.LocalDate(a), c.LocalDate(b)
	if to.Before(from) {
		return -c.countBetween(to, from)
	}
	return c.countBetween(from, to)
}

// countBetween counts the business days strictly between from and to. When
// both ends are business days their partial days add up to one more whole
// day. A start on a weekend or holiday therefore starts the clock on the
// next business day, and an end on one stops it at the previous business day.
func (c *Calendar) countBetween(from, to civil.Date) int {
	if !from.Before(to) {
		return 0
	}
	n := 0
	for d := from.AddDays(1); d.Before(to); d = d.AddDays(1) {
		if c.IsBusinessDay(d) {
			n++
		}
	}
	if c.IsBusinessDay(from) && c.IsBusinessDay(to) {
		n++
	}
	return n
}
