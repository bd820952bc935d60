// internal/domain/report/report.go
package report

import (
	"database/sql"
	"fmt"
	"time"
)

// Report is a bug bounty report mirrored from the disclosure platform.
// Corresponds to the 'reports' table.
type Report struct {
	ID              int64
	Title           string
	State           string
	Weakness        string
	AssetIdentifier string
	AssetType       string
	IssueTrackerURL string

	CreatedAt    time.Time    // Set at ingestion, never changes afterwards
	TriagedAt    sql.NullTime // Platform triage timestamp
	ClosedAt     sql.NullTime
	DisclosedAt  sql.NullTime
	SLATriagedAt sql.NullTime // Override: when we consider the report triaged for SLA purposes

	LastNaggedAt        sql.NullTime // Written by the notifier after a reminder was delivered
	IsEligibleForBounty sql.NullBool // Invalid means unknown

	// Data we own; sync never overwrites these.
	IsAccurate      bool // Whether we agree with the platform's triage assessment
	IsFalseNegative bool // Whether the platform wrongly classified the report as invalid or duplicate

	LastSyncedAt time.Time
}

// New returns a report with the locally owned defaults applied.
func New(id int64, title string, createdAt time.Time) *Report {
	return &Report{
		ID:         id,
		Title:      title,
		CreatedAt:  createdAt,
		IsAccurate: true,
	}
}

// TriageTimestamp resolves the instant that stops the time-to-triage clock:
// the SLA override first, then the platform triage time, then the close time.
func (r *Report) TriageTimestamp() sql.NullTime {
	switch {
	case r.SLATriagedAt.Valid:
		return r.SLATriagedAt
	case r.TriagedAt.Valid:
		return r.TriagedAt
	case r.ClosedAt.Valid:
		return r.ClosedAt
	default:
		return sql.NullTime{}
	}
}

// IsClosed reports whether the platform closed the report.
func (r *Report) IsClosed() bool {
	return r.ClosedAt.Valid
}

// IsNaggable reports whether SLA reminders apply: the report is open and
// explicitly eligible for a bounty.
func (r *Report) IsNaggable() bool {
	return !r.IsClosed() && r.IsEligibleForBounty.Valid && r.IsEligibleForBounty.Bool
}

// URL returns the platform link for the report given a template such as
// "https://hackerone.com/reports/%d".
func (r *Report) URL(template string) string {
	return fmt.Sprintf(template, r.ID)
}

// Derived holds the cached values computed from a report's source fields.
// They are produced by a DeriveFunc right before every write and are never
// set by callers.
type Derived struct {
	DaysUntilTriage sql.NullInt32
	NextNagAt       sql.NullTime
}

// DeriveFunc computes the derived fields of a report.
type DeriveFunc func(r *Report) Derived

// Record is a stored report together with its derived fields.
type Record struct {
	Report
	Derived
}
