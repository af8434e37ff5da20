package services

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"github.com/talentflow/ats/internal/logger"
	log "github.com/sirupsen/logrus"
)

type activityAppender interface {
	Add(ctx context.Context, activity entities.Activity) error
}

// ActivityRecorder appends timeline entries for the pipeline events
// that request one. It only ever appends; activities are immutable.
type ActivityRecorder struct {
	activities activityAppender
}

func NewActivityRecorder(bus EventBus.Bus, activities activityAppender) (*ActivityRecorder, error) {

	r := &ActivityRecorder{activities: activities}

	if err := bus.Subscribe(events.StageChangedTopic, r.onStageChanged); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to stage changes")
	}
	if err := bus.Subscribe(events.NoteSavedTopic, r.onNoteSaved); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to note saves")
	}

	return r, nil
}

func (r *ActivityRecorder) onStageChanged(change events.StageChanged) {

	if !change.RecordActivity {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	activity := entities.NewActivity(change.CandidateID, entities.ActivityStageChange,
		fmt.Sprintf("Stage changed from %s to %s", change.OldStage, change.NewStage),
		change.Author)

	if err := r.activities.Add(ctx, activity); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to record stage change for candidate %v: %v", change.CandidateID, err)
	}
}

func (r *ActivityRecorder) onNoteSaved(saved events.NoteSaved) {

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	activity := entities.NewActivity(saved.CandidateID, entities.ActivityNote,
		"Notes updated", saved.Author)

	if err := r.activities.Add(ctx, activity); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to record note for candidate %v: %v", saved.CandidateID, err)
	}
}
