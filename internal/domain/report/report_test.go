package report_test

import (
	"database/sql"
	"testing"
	"time"

	"bugbounty_sla_bot/internal/domain/report"

	"github.com/m-mizutani/gt"
)

func at(hours int) sql.NullTime {
	base := time.Date(2017, 9, 11, 14, 0, 0, 0, time.UTC)
	return sql.NullTime{Time: base.Add(time.Duration(hours) * time.Hour), Valid: true}
}

func TestTriageTimestamp(t *testing.T) {
	t.Run("override wins over triaged and closed", func(t *testing.T) {
		r := report.New(1, "a report", time.Now())
		r.SLATriagedAt = at(1)
		r.TriagedAt = at(2)
		r.ClosedAt = at(3)
		gt.Bool(t, r.TriageTimestamp().Time.Equal(at(1).Time)).True()
	})

	t.Run("triaged wins over closed", func(t *testing.T) {
		r := report.New(1, "a report", time.Now())
		r.TriagedAt = at(2)
		r.ClosedAt = at(3)
		gt.Bool(t, r.TriageTimestamp().Time.Equal(at(2).Time)).True()
	})

	t.Run("falls back to closed", func(t *testing.T) {
		r := report.New(1, "a report", time.Now())
		r.ClosedAt = at(3)
		gt.Bool(t, r.TriageTimestamp().Time.Equal(at(3).Time)).True()
	})

	t.Run("untriaged is null", func(t *testing.T) {
		r := report.New(1, "a report", time.Now())
		gt.Bool(t, r.TriageTimestamp().Valid).False()
	})
}

func TestIsNaggable(t *testing.T) {
	r := report.New(1, "a report", time.Now())
	gt.Bool(t, r.IsNaggable()).False()

	r.IsEligibleForBounty = sql.NullBool{Bool: false, Valid: true}
	gt.Bool(t, r.IsNaggable()).False()

	r.IsEligibleForBounty = sql.NullBool{Bool: true, Valid: true}
	gt.Bool(t, r.IsNaggable()).True()

	r.ClosedAt = at(5)
	gt.Bool(t, r.IsNaggable()).False()
}

func TestNewDefaults(t *testing.T) {
	r := report.New(4567, "xss", time.Now())
	gt.Bool(t, r.IsAccurate).True()
	gt.Bool(t, r.IsFalseNegative).False()
	gt.Value(t, r.URL("https://hackerone.com/reports/%d")).Equal("https://hackerone.com/reports/4567")
}

func TestApplyActivity(t *testing.T) {
	r := report.New(1, "a report", time.Now())

	comment := &report.Activity{ID: 1, Type: report.ActivityComment, CreatedAt: at(1).Time}
	gt.Bool(t, r.ApplyActivity(comment)).False()
	gt.Bool(t, r.SLATriagedAt.Valid).False()

	notApplicable := &report.Activity{ID: 2, Type: report.ActivityBugNotApplicable, CreatedAt: at(3).Time}
	gt.Bool(t, r.ApplyActivity(notApplicable)).True()
	gt.Bool(t, r.SLATriagedAt.Time.Equal(at(3).Time)).True()

	resolved := &report.Activity{ID: 3, Type: report.ActivityBugResolved, CreatedAt: at(6).Time}
	gt.Bool(t, r.ApplyActivity(resolved)).False()
	gt.Bool(t, r.SLATriagedAt.Time.Equal(at(3).Time)).True()
}

func TestGroupAssignment(t *testing.T) {
	assign := func(group string) *report.Activity {
		return &report.Activity{
			ID:         1,
			Type:       report.ActivityGroupAssignedToBug,
			CreatedAt:  at(1).Time,
			Attributes: map[string]string{report.AttrGroup: group},
		}
	}

	t.Run("our group counts as triage", func(t *testing.T) {
		r := report.New(1, "a report", time.Now())
		gt.Bool(t, r.ApplyActivity(assign("TTS"))).True()
		gt.Bool(t, r.SLATriagedAt.Time.Equal(at(1).Time)).True()
	})

	t.Run("platform group does not", func(t *testing.T) {
		r := report.New(1, "a report", time.Now())
		gt.Bool(t, r.ApplyActivity(assign("H1-triage"))).False()
		gt.Bool(t, r.SLATriagedAt.Valid).False()
	})
}

func TestActivityAccessors(t *testing.T) {
	a := &report.Activity{Attributes: map[string]string{
		report.AttrActor:     "joe",
		report.AttrActorType: "user",
		report.AttrGroup:     "18f",
	}}
	gt.Value(t, a.Actor()).Equal("<user: joe>")
	gt.Value(t, a.Group()).Equal("18f")

	empty := &report.Activity{}
	gt.Value(t, empty.Actor()).Equal("")
	gt.Value(t, empty.Group()).Equal("")
}
