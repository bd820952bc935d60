package app

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bugbounty_sla_bot/internal/domain/report"
	"bugbounty_sla_bot/internal/domain/sla"
)

const timeLayout = "2006-01-02 15:04 MST"

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func formatCounts(b *strings.Builder, c sla.Counts) {
	fmt.Fprintf(b, "  Triaged: %d\n", c.Count)
	fmt.Fprintf(b, "  Accurate: %d (%s)\n", c.TriagedAccurately, percent(c.AccuracyRate()))
	fmt.Fprintf(b, "  False negatives: %d (%s)\n", c.FalseNegatives, percent(c.FalseNegativeRate()))
	fmt.Fprintf(b, "  Within one business day: %d (%s)\n", c.TriagedWithinOneDay, percent(c.WithinOneDayRate()))
}

// FormatStats renders per-month and total SLA figures as plain text.
func FormatStats(stats *sla.Stats, startDay int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SLA stats (contract months start on day %d)\n", startDay)

	months := stats.Sorted()
	if len(months) == 0 {
		b.WriteString("\nNo triaged reports yet.\n")
		return b.String()
	}
	for _, m := range months {
		fmt.Fprintf(&b, "\n%s..%s\n", m.FirstDay, m.LastDay)
		formatCounts(&b, m.Counts)
	}
	b.WriteString("\nTotal\n")
	formatCounts(&b, stats.Totals)
	return b.String()
}

// ReportView is a report with the SLA figures needed to describe it.
type ReportView struct {
	Record    *report.Record
	Remaining int // Business days until the SLA deadline
	URL       string
}

func formatNullTime(t sql.NullTime, loc *time.Location) string {
	if !t.Valid {
		return "-"
	}
	return t.Time.In(loc).Format(timeLayout)
}

// FormatReport renders the details shown by the report command.
func FormatReport(v ReportView, loc *time.Location) string {
	rec := v.Record
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s\n", rec.ID, rec.Title)
	fmt.Fprintf(&b, "%s\n\n", v.URL)
	if rec.State != "" {
		fmt.Fprintf(&b, "State: %s\n", rec.State)
	}
	if rec.Weakness != "" {
		fmt.Fprintf(&b, "Weakness: %s\n", rec.Weakness)
	}
	if rec.AssetIdentifier != "" {
		fmt.Fprintf(&b, "Asset: %s (%s)\n", rec.AssetIdentifier, rec.AssetType)
	}
	fmt.Fprintf(&b, "Created: %s\n", rec.CreatedAt.In(loc).Format(timeLayout))
	fmt.Fprintf(&b, "Triaged: %s\n", formatNullTime(rec.TriageTimestamp(), loc))
	fmt.Fprintf(&b, "Closed: %s\n", formatNullTime(rec.ClosedAt, loc))

	if rec.DaysUntilTriage.Valid {
		fmt.Fprintf(&b, "Days until triage: %d\n", rec.DaysUntilTriage.Int32)
	} else {
		b.WriteString("Days until triage: -\n")
	}

	eligible := "unknown"
	if rec.IsEligibleForBounty.Valid {
		eligible = yesNo(rec.IsEligibleForBounty.Bool)
	}
	fmt.Fprintf(&b, "Eligible for bounty: %s\n", eligible)
	fmt.Fprintf(&b, "Accurate: %s\n", yesNo(rec.IsAccurate))
	fmt.Fprintf(&b, "False negative: %s\n", yesNo(rec.IsFalseNegative))

	if rec.NextNagAt.Valid {
		fmt.Fprintf(&b, "Business days left: %d\n", v.Remaining)
		fmt.Fprintf(&b, "Next nag: %s\n", formatNullTime(rec.NextNagAt, loc))
	}
	return b.String()
}

// FormatNag renders the reminder sent for an open report.
func FormatNag(v ReportView) string {
	rec := v.Record
	if v.Remaining <= 0 {
		return fmt.Sprintf("Report #%d (%s) is past its SLA by %d business day(s) and must be fixed now.\n%s",
			rec.ID, rec.Title, -v.Remaining, v.URL)
	}
	return fmt.Sprintf("Report #%d (%s) has %d business day(s) left before its SLA deadline.\n%s",
		rec.ID, rec.Title, v.Remaining, v.URL)
}

// FormatDue renders a list of upcoming reminders.
func FormatDue(views []ReportView, loc *time.Location) string {
	if len(views) == 0 {
		return "No nags due."
	}
	var b strings.Builder
	b.WriteString("Upcoming nags\n")
	for _, v := range views {
		fmt.Fprintf(&b, "#%d %s: %s, %d business day(s) left\n",
			v.Record.ID, v.Record.Title, formatNullTime(v.Record.NextNagAt, loc), v.Remaining)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
