package services

import (
	"context"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
)

type mockActivities struct {
	mock.Mock
}

func (m *mockActivities) Add(ctx context.Context, activity entities.Activity) error {
	return m.Called(ctx, activity).Error(0)
}

func Test_Recorder_WhenTransitionFlagged_ShouldAppendActivity(t *testing.T) {

	activities := &mockActivities{}
	activities.On("Add", mock.Anything, mock.MatchedBy(func(activity entities.Activity) bool {
		return activity.CandidateID == "c1" &&
			activity.ActivityType == entities.ActivityStageChange &&
			activity.Description == "Stage changed from applied to interview" &&
			activity.Author == "recruiter@acme.io"
	})).Return(nil)

	bus := EventBus.New()
	_, err := NewActivityRecorder(bus, activities)
	assert.NoError(t, err)

	bus.Publish(events.StageChangedTopic, events.StageChanged{
		CandidateID:    "c1",
		OldStage:       "applied",
		NewStage:       "interview",
		RecordActivity: true,
		Author:         "recruiter@acme.io",
	})
	bus.WaitAsync()

	activities.AssertExpectations(t)
}

func Test_Recorder_WhenTransitionNotFlagged_ShouldStaySilent(t *testing.T) {

	activities := &mockActivities{}

	bus := EventBus.New()
	_, err := NewActivityRecorder(bus, activities)
	assert.NoError(t, err)

	bus.Publish(events.StageChangedTopic, events.StageChanged{
		CandidateID: "c1",
		OldStage:    "applied",
		NewStage:    "interview",
	})
	bus.WaitAsync()

	activities.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func Test_Recorder_WhenNoteSaved_ShouldAppendNoteActivity(t *testing.T) {

	activities := &mockActivities{}
	activities.On("Add", mock.Anything, mock.MatchedBy(func(activity entities.Activity) bool {
		return activity.CandidateID == "c1" && activity.ActivityType == entities.ActivityNote
	})).Return(nil)

	bus := EventBus.New()
	_, err := NewActivityRecorder(bus, activities)
	assert.NoError(t, err)

	bus.Publish(events.NoteSavedTopic, events.NoteSaved{CandidateID: "c1", Note: "strong"})
	bus.WaitAsync()

	activities.AssertExpectations(t)
}
