package events

var StageChangedTopic = "StageChangedEvent"

// StageChanged is published after a candidate's new stage has been
// persisted. Subscribers run best-effort side effects only; nothing
// downstream of this event may roll the transition back.
type StageChanged struct {
	CandidateID    string
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	OldStage       string
	NewStage       string

	// RecordActivity marks transitions whose origin appends a timeline
	// entry. Not every mutation path does.
	RecordActivity bool
	Author         string
}
