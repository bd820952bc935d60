package sla_test

import (
	"testing"
	"time"

	"bugbounty_sla_bot/internal/domain/sla"

	"cloud.google.com/go/civil"
	"github.com/m-mizutani/gt"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestUSFederalHolidays2017(t *testing.T) {
	expected := []civil.Date{
		date(2017, time.January, 2), // Sunday, observed Monday
		date(2017, time.January, 16),
		date(2017, time.February, 20),
		date(2017, time.May, 29),
		date(2017, time.July, 4),
		date(2017, time.September, 4),
		date(2017, time.October, 9),
		date(2017, time.November, 10), // Saturday, observed Friday
		date(2017, time.November, 23),
		date(2017, time.December, 25),
	}
	gt.Value(t, sla.USFederalHolidays.InYear(2017)).Equal(expected)
}

func TestHolidayObservance(t *testing.T) {
	testCases := []struct {
		name    string
		date    civil.Date
		holiday bool
	}{
		{"fixed date on weekday", date(2017, time.July, 4), true},
		{"saturday holiday observed friday", date(2020, time.July, 3), true},
		{"saturday itself is not observed", date(2020, time.July, 4), false},
		{"sunday holiday observed monday", date(2017, time.January, 2), true},
		{"new year observed in previous year", date(2021, time.December, 31), true},
		{"juneteenth before it existed", date(2020, time.June, 19), false},
		{"juneteenth on saturday observed friday", date(2021, time.June, 18), true},
		{"last monday of may", date(2021, time.May, 31), true},
		{"thanksgiving", date(2021, time.November, 25), true},
		{"ordinary day", date(2017, time.June, 20), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, sla.USFederalHolidays.IsHoliday(tc.date)).Equal(tc.holiday)
		})
	}
}

func TestHolidayName(t *testing.T) {
	name, ok := sla.USFederalHolidays.Holiday(date(2021, time.December, 31))
	gt.Bool(t, ok).True()
	gt.Value(t, name).Equal("New Year's Day")

	_, ok = sla.USFederalHolidays.Holiday(date(2021, time.December, 30))
	gt.Bool(t, ok).False()
}

func TestCustomHolidaySet(t *testing.T) {
	set := sla.HolidaySet{
		{Name: "Company Day", Month: time.March, Weekday: time.Friday, Week: 2},
	}
	d, ok := set[0].Observed(2024)
	gt.Bool(t, ok).True()
	gt.Value(t, d).Equal(date(2024, time.March, 8))
	gt.Bool(t, set.IsHoliday(date(2024, time.March, 8))).True()
	gt.Bool(t, set.IsHoliday(date(2024, time.July, 4))).False()
}
