package snapshot_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bugbounty_sla_bot/internal/domain/report"
	"bugbounty_sla_bot/internal/infra/snapshot"

	"github.com/m-mizutani/gt"
)

const sampleYAML = `
reports:
  - id: 1001
    title: "Stored XSS in profile"
    state: triaged
    weakness: "Cross-site Scripting (XSS) - Stored"
    asset_identifier: "www.example.com"
    asset_type: URL
    created_at: "2017-06-19T10:00:00-04:00"
    triaged_at: "2017-06-21T10:00:00-04:00"
    last_activity_at: "2017-06-21T10:00:00-04:00"
    eligible_for_bounty: true
    activities:
      - id: 1
        type: activity-group-assigned-to-bug
        created_at: "2017-06-20T10:00:00-04:00"
        actor: alice
        actor_type: user
        group: Security
  - id: 1002
    title: "Open redirect"
    state: new
    created_at: "2017-06-22T10:00:00Z"
    last_activity_at: "2017-06-25T10:00:00Z"
`

func TestParse(t *testing.T) {
	snaps, err := snapshot.Parse([]byte(sampleYAML), sql.NullTime{})
	gt.NoError(t, err).Required()
	gt.Array(t, snaps).Length(2)

	first := snaps[0]
	gt.Value(t, first.Report.ID).Equal(int64(1001))
	gt.Value(t, first.Report.Title).Equal("Stored XSS in profile")
	gt.Value(t, first.Report.AssetType).Equal("URL")
	gt.Bool(t, first.Report.IsAccurate).True()
	gt.Bool(t, first.Report.CreatedAt.Equal(time.Date(2017, time.June, 19, 14, 0, 0, 0, time.UTC))).True()
	gt.Bool(t, first.Report.TriagedAt.Valid).True()
	gt.Bool(t, first.Report.ClosedAt.Valid).False()
	gt.Value(t, first.Report.IsEligibleForBounty).Equal(sql.NullBool{Bool: true, Valid: true})

	gt.Array(t, first.Activities).Length(1)
	act := first.Activities[0]
	gt.Value(t, act.ReportID).Equal(int64(1001))
	gt.Value(t, act.Type).Equal(report.ActivityGroupAssignedToBug)
	gt.Value(t, act.Actor()).Equal("<user: alice>")
	gt.Value(t, act.Group()).Equal("Security")
	gt.Bool(t, act.IndicatesTriage()).True()

	gt.Bool(t, snaps[1].Report.IsEligibleForBounty.Valid).False()
}

func TestParseSince(t *testing.T) {
	since := sql.NullTime{Time: time.Date(2017, time.June, 22, 0, 0, 0, 0, time.UTC), Valid: true}
	snaps, err := snapshot.Parse([]byte(sampleYAML), since)
	gt.NoError(t, err).Required()
	gt.Array(t, snaps).Length(1)
	gt.Value(t, snaps[0].Report.ID).Equal(int64(1002))
}

func TestParseJSON(t *testing.T) {
	data := `{"reports": [{"id": 5, "title": "csrf", "created_at": "2017-01-03T09:00:00+01:00", "eligible_for_bounty": false}]}`
	snaps, err := snapshot.Parse([]byte(data), sql.NullTime{})
	gt.NoError(t, err).Required()
	gt.Array(t, snaps).Length(1)
	gt.Value(t, snaps[0].Report.IsEligibleForBounty).Equal(sql.NullBool{Bool: false, Valid: true})
	gt.Bool(t, snaps[0].Report.CreatedAt.Equal(time.Date(2017, time.January, 3, 8, 0, 0, 0, time.UTC))).True()
}

func TestParseRejectsBadInput(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"missing id", `reports: [{title: x, created_at: "2017-01-03T09:00:00Z"}]`},
		{"missing created_at", `reports: [{id: 1}]`},
		{"timestamp without offset", `reports: [{id: 1, created_at: "2017-01-03T09:00:00"}]`},
		{"bad activity timestamp", `reports: [{id: 1, created_at: "2017-01-03T09:00:00Z", activities: [{id: 2, type: x, created_at: "yesterday"}]}]`},
		{"not yaml", `reports: [`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := snapshot.Parse([]byte(tc.data), sql.NullTime{})
			gt.Error(t, err)
		})
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644)).Required()

	snaps, err := snapshot.NewFileSource(path).FindReports(context.Background(), sql.NullTime{})
	gt.NoError(t, err).Required()
	gt.Array(t, snaps).Length(2)

	_, err = snapshot.NewFileSource(filepath.Join(t.TempDir(), "missing.yaml")).FindReports(context.Background(), sql.NullTime{})
	gt.Error(t, err)
}
