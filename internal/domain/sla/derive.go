// internal/domain/sla/derive.go
package sla

import (
	"database/sql"

	"bugbounty_sla_bot/internal/domain/report"
)

// Deriver computes a report's cached SLA fields.
type Deriver struct {
	cal   *Calendar
	sched *NagScheduler
}

func NewDeriver(cal *Calendar, sched *NagScheduler) *Deriver {
	return &Deriver{cal: cal, sched: sched}
}

// Derive returns the days until triage and the next nag instant of r.
// It only reads r.
func (d *Deriver) Derive(r *report.Report) report.Derived {
	var out report.Derived

	if ts := r.TriageTimestamp(); ts.Valid {
		out.DaysUntilTriage = sql.NullInt32{
			Int32: int32(d.cal.ElapsedBusinessDays(r.CreatedAt, ts.Time)),
			Valid: true,
		}
	}

	if r.IsNaggable() {
		out.NextNagAt = sql.NullTime{
			Time:  d.sched.NextNag(r.CreatedAt, r.LastNaggedAt),
			Valid: true,
		}
	}
	return out
}

// Func adapts Derive to report.DeriveFunc for repositories.
func (d *Deriver) Func() report.DeriveFunc {
	return d.Derive
}
