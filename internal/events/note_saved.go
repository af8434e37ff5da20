package events

var NoteSavedTopic = "NoteSavedEvent"

type NoteSaved struct {
	CandidateID string
	Note        string
	Author      string
}
