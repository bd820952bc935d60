// internal/domain/report/activity.go
package report

import (
	"strings"
	"time"
)

// ActivityType is the platform's activity type string.
type ActivityType string

const (
	ActivityComment             ActivityType = "activity-comment"
	ActivityBugTriaged          ActivityType = "activity-bug-triaged"
	ActivityBugNotApplicable    ActivityType = "activity-bug-not-applicable"
	ActivityBugResolved         ActivityType = "activity-bug-resolved"
	ActivityBugDuplicate        ActivityType = "activity-bug-duplicate"
	ActivityBugInformative      ActivityType = "activity-bug-informative"
	ActivityBugSpam             ActivityType = "activity-bug-spam"
	ActivityBugNeedsMoreInfo    ActivityType = "activity-bug-needs-more-info"
	ActivityGroupAssignedToBug  ActivityType = "activity-group-assigned-to-bug"
	ActivityUserAssignedToBug   ActivityType = "activity-user-assigned-to-bug"
	ActivityBountyAwarded       ActivityType = "activity-bounty-awarded"
	ActivityReportTitleUpdated  ActivityType = "activity-report-title-updated"
	ActivityExternalUserJoined  ActivityType = "activity-external-user-joined"
	ActivityAgreedOnGoingPublic ActivityType = "activity-agreed-on-going-public"
)

// Attribute keys for relationship data stored alongside activity attributes.
const (
	AttrActor     = "H1_actor"
	AttrActorType = "H1_actor_type"
	AttrGroup     = "H1_group"
)

// platformGroupPrefix marks groups that belong to the platform's own triage team.
const platformGroupPrefix = "H1-"

// Activity is a single event in a report's timeline.
type Activity struct {
	ID         int64
	ReportID   int64
	Type       ActivityType
	CreatedAt  time.Time
	Attributes map[string]string
}

// Actor renders the activity actor as "<type: name>", or "" if unknown.
func (a *Activity) Actor() string {
	name, ok := a.Attributes[AttrActor]
	if !ok {
		return ""
	}
	return "<" + a.Attributes[AttrActorType] + ": " + name + ">"
}

// Group returns the assigned group name, or "" if the activity has none.
func (a *Activity) Group() string {
	return a.Attributes[AttrGroup]
}

// IndicatesTriage reports whether the activity means we acted on the report.
func (a *Activity) IndicatesTriage() bool {
	switch a.Type {
	case ActivityBugTriaged,
		ActivityBugNotApplicable,
		ActivityBugResolved,
		ActivityBugDuplicate,
		ActivityBugInformative,
		ActivityBugSpam,
		ActivityBugNeedsMoreInfo:
		return true
	case ActivityGroupAssignedToBug:
		group := a.Group()
		return group != "" && !strings.HasPrefix(group, platformGroupPrefix)
	default:
		return false
	}
}

// ApplyActivity sets the report's SLA triage override from the activity if it
// is not already set. It returns true when the report changed.
func (r *Report) ApplyActivity(a *Activity) bool {
	if r.SLATriagedAt.Valid || !a.IndicatesTriage() {
		return false
	}
	r.SLATriagedAt.Time = a.CreatedAt
	r.SLATriagedAt.Valid = true
	return true
}
