// internal/domain/sla/nag.go
package sla

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	// DefaultSLADays is the number of business days we have to fix a vulnerability.
	DefaultSLADays = 90
)

// DefaultNagOffsets are the business days before the deadline at which we nag.
var DefaultNagOffsets = []int{45, 22, 11, 5, 3, 2, 1}

// NagPolicy is the SLA deadline and the reminder ladder counting down to it.
type NagPolicy struct {
	SLADays int
	Offsets []int // Descending days-before-deadline
}

func DefaultNagPolicy() NagPolicy {
	return NagPolicy{
		SLADays: DefaultSLADays,
		Offsets: append([]int(nil), DefaultNagOffsets...),
	}
}

// Validate checks that the ladder is strictly ascending in time and ends
// before the deadline.
func (p NagPolicy) Validate() error {
	if p.SLADays <= 0 {
		return fmt.Errorf("SLA days must be positive, got %d", p.SLADays)
	}
	for i, off := range p.Offsets {
		if off <= 0 || off >= p.SLADays {
			return fmt.Errorf("nag offset %d must be between 1 and %d", off, p.SLADays-1)
		}
		if i > 0 && off >= p.Offsets[i-1] {
			return fmt.Errorf("nag offsets must be strictly descending, got %d after %d", off, p.Offsets[i-1])
		}
	}
	return nil
}

// Targets returns the ladder as business days since creation, ascending.
func (p NagPolicy) Targets() []int {
	targets := make([]int, len(p.Offsets))
	for i, off := range p.Offsets {
		targets[i] = p.SLADays - off
	}
	return targets
}

// NagScheduler computes when a report's next reminder is due.
type NagScheduler struct {
	cal    *Calendar
	policy NagPolicy
}

func NewNagScheduler(cal *Calendar, policy NagPolicy) (*NagScheduler, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &NagScheduler{cal: cal, policy: policy}, nil
}

func (s *NagScheduler) Policy() NagPolicy {
	return s.policy
}

// NextNag returns the instant of the next reminder for a report created at
// createdAt. The next target is the first ladder entry past the last nag;
// once the ladder is used up we nag every business day. The result is found
// by stepping forward from createdAt in whole 24 hour increments until the
// business-day count reaches the target.
func (s *NagScheduler) NextNag(createdAt time.Time, lastNaggedAt sql.NullTime) time.Time {
	lastNagDay := 0
	if lastNaggedAt.Valid {
		lastNagDay = s.cal.ElapsedBusinessDays(createdAt, lastNaggedAt.Time)
	}

	target := lastNagDay + 1
	for _, day := range s.policy.Targets() {
		if day > lastNagDay {
			target = day
			break
		}
	}

	dt := createdAt
	for {
		dt = dt.Add(24 * time.Hour)
		if s.cal.ElapsedBusinessDays(createdAt, dt) >= target {
			return dt
		}
	}
}

// Remaining returns the business days left until the SLA deadline as of at.
// It goes negative once the deadline has passed.
func (s *NagScheduler) Remaining(createdAt, at time.Time) int {
	return s.policy.SLADays - s.cal.ElapsedBusinessDays(createdAt, at)
}
