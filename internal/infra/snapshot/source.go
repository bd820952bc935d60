// internal/infra/snapshot/source.go
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"bugbounty_sla_bot/internal/domain/report"

	"gopkg.in/yaml.v3"
)

// File is the document produced by the platform exporter. JSON exports are
// read the same way.
type File struct {
	Reports []Report `yaml:"reports"`
}

type Report struct {
	ID                int64      `yaml:"id"`
	Title             string     `yaml:"title"`
	State             string     `yaml:"state"`
	Weakness          string     `yaml:"weakness"`
	AssetIdentifier   string     `yaml:"asset_identifier"`
	AssetType         string     `yaml:"asset_type"`
	IssueTrackerURL   string     `yaml:"issue_tracker_url"`
	CreatedAt         string     `yaml:"created_at"`
	TriagedAt         string     `yaml:"triaged_at"`
	ClosedAt          string     `yaml:"closed_at"`
	DisclosedAt       string     `yaml:"disclosed_at"`
	LastActivityAt    string     `yaml:"last_activity_at"`
	EligibleForBounty *bool      `yaml:"eligible_for_bounty"`
	Activities        []Activity `yaml:"activities"`
}

type Activity struct {
	ID        int64  `yaml:"id"`
	Type      string `yaml:"type"`
	CreatedAt string `yaml:"created_at"`
	Actor     string `yaml:"actor"`
	ActorType string `yaml:"actor_type"`
	Group     string `yaml:"group"`
}

// FileSource reads report snapshots from a file on disk. The file is re-read
// on every call so the exporter can replace it between syncs.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) FindReports(ctx context.Context, since sql.NullTime) ([]report.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", s.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(data, since)
}

// Parse decodes a snapshot document and keeps the reports with activity
// after since, or all of them when since is null.
func Parse(data []byte, since sql.NullTime) ([]report.Snapshot, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	out := make([]report.Snapshot, 0, len(f.Reports))
	for _, r := range f.Reports {
		snap, lastActivity, err := r.toSnapshot()
		if err != nil {
			return nil, fmt.Errorf("report %d: %w", r.ID, err)
		}
		if since.Valid && lastActivity.Valid && !lastActivity.Time.After(since.Time) {
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

func (r Report) toSnapshot() (report.Snapshot, sql.NullTime, error) {
	var snap report.Snapshot
	if r.ID <= 0 {
		return snap, sql.NullTime{}, fmt.Errorf("missing id")
	}

	created, err := parseTime("created_at", r.CreatedAt)
	if err != nil {
		return snap, sql.NullTime{}, err
	}
	if !created.Valid {
		return snap, sql.NullTime{}, fmt.Errorf("missing created_at")
	}

	rep := report.New(r.ID, r.Title, created.Time)
	rep.State = r.State
	rep.Weakness = r.Weakness
	rep.AssetIdentifier = r.AssetIdentifier
	rep.AssetType = r.AssetType
	rep.IssueTrackerURL = r.IssueTrackerURL
	if r.EligibleForBounty != nil {
		rep.IsEligibleForBounty = sql.NullBool{Bool: *r.EligibleForBounty, Valid: true}
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  *sql.NullTime
	}{
		{"triaged_at", r.TriagedAt, &rep.TriagedAt},
		{"closed_at", r.ClosedAt, &rep.ClosedAt},
		{"disclosed_at", r.DisclosedAt, &rep.DisclosedAt},
	} {
		if *f.dst, err = parseTime(f.name, f.raw); err != nil {
			return snap, sql.NullTime{}, err
		}
	}

	lastActivity, err := parseTime("last_activity_at", r.LastActivityAt)
	if err != nil {
		return snap, sql.NullTime{}, err
	}

	activities := make([]*report.Activity, 0, len(r.Activities))
	for _, a := range r.Activities {
		at, err := parseTime("activity created_at", a.CreatedAt)
		if err != nil {
			return snap, sql.NullTime{}, err
		}
		if !at.Valid {
			return snap, sql.NullTime{}, fmt.Errorf("activity %d: missing created_at", a.ID)
		}
		attrs := make(map[string]string)
		if a.Actor != "" {
			attrs[report.AttrActor] = a.Actor
			attrs[report.AttrActorType] = a.ActorType
		}
		if a.Group != "" {
			attrs[report.AttrGroup] = a.Group
		}
		activities = append(activities, &report.Activity{
			ID:         a.ID,
			ReportID:   r.ID,
			Type:       report.ActivityType(a.Type),
			CreatedAt:  at.Time,
			Attributes: attrs,
		})
	}

	snap.Report = *rep
	snap.Activities = activities
	return snap, lastActivity, nil
}

// parseTime accepts RFC 3339 timestamps with an explicit offset. An empty
// value is null.
func parseTime(field, raw string) (sql.NullTime, error) {
	if raw == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}
