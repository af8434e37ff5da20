package events

var TableChangedTopic = "TableChangedEvent"

// TableChanged is the store change feed: repositories publish one after
// every successful mutation so read-side caches can re-fetch. The
// payload carries no row data on purpose; consumers re-run their own
// query and replace what they had.
type TableChanged struct {
	Table string
	IDs   []string
}

const (
	TableJobs       = "jobs"
	TableCandidates = "candidates"
	TableActivities = "candidate_activities"
	TableTemplates  = "email_templates"
	TableInterviews = "interviews"
)
