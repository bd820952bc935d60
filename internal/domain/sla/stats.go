// internal/domain/sla/stats.go
package sla

import (
	"sort"

	"bugbounty_sla_bot/internal/domain/report"

	"cloud.google.com/go/civil"
)

// Counts are the tracked SLA figures for a set of triaged reports.
type Counts struct {
	Count               int
	TriagedAccurately   int
	FalseNegatives      int
	TriagedWithinOneDay int
}

func (c *Counts) add(o Counts) {
	c.Count += o.Count
	c.TriagedAccurately += o.TriagedAccurately
	c.FalseNegatives += o.FalseNegatives
	c.TriagedWithinOneDay += o.TriagedWithinOneDay
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func (c Counts) AccuracyRate() float64      { return ratio(c.TriagedAccurately, c.Count) }
func (c Counts) FalseNegativeRate() float64 { return ratio(c.FalseNegatives, c.Count) }
func (c Counts) WithinOneDayRate() float64  { return ratio(c.TriagedWithinOneDay, c.Count) }

// MonthStats are the counts for one contract month.
type MonthStats struct {
	Counts
	FirstDay civil.Date
	LastDay  civil.Date
}

// Stats maps each contract month's first day to its counts.
type Stats struct {
	Months map[civil.Date]*MonthStats
	Totals Counts
}

// Sorted returns the months ordered by first day.
func (s *Stats) Sorted() []*MonthStats {
	months := make([]*MonthStats, 0, len(s.Months))
	for _, m := range s.Months {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].FirstDay.Before(months[j].FirstDay)
	})
	return months
}

// Aggregator buckets triaged reports into contract months.
type Aggregator struct {
	cal *Calendar
}

func NewAggregator(cal *Calendar) *Aggregator {
	return &Aggregator{cal: cal}
}

// Stats computes per-month and total figures over the triaged records.
// Records without a days-until-triage value are ignored. A record belongs to
// the contract month of its creation date in the business location.
func (a *Aggregator) Stats(records []*report.Record, startDay int) (*Stats, error) {
	if err := ValidateStartDay(startDay); err != nil {
		return nil, err
	}

	stats := &Stats{Months: make(map[civil.Date]*MonthStats)}
	for _, r := range records {
		if !r.DaysUntilTriage.Valid {
			continue
		}
		month, err := ContractMonth(a.cal.LocalDate(r.CreatedAt), startDay)
		if err != nil {
			return nil, err
		}

		c := Counts{Count: 1}
		if r.IsAccurate {
			c.TriagedAccurately = 1
		}
		if r.IsFalseNegative {
			c.FalseNegatives = 1
		}
		if r.DaysUntilTriage.Int32 <= 1 {
			c.TriagedWithinOneDay = 1
		}

		ms, ok := stats.Months[month.First]
		if !ok {
			ms = &MonthStats{FirstDay: month.First, LastDay: month.Last}
			stats.Months[month.First] = ms
		}
		ms.add(c)
		stats.Totals.add(c)
	}
	return stats, nil
}
