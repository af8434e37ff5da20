package services

import (
	"context"
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"github.com/talentflow/ats/internal/logger"
	"github.com/talentflow/ats/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type candidateRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Candidate, error)
	GetByIDs(ctx context.Context, ids []string) ([]entities.Candidate, error)
	UpdateStage(ctx context.Context, id string, stage string) error
	UpdateStageBulk(ctx context.Context, ids []string, stage string) error
	UpdateRating(ctx context.Context, id string, rating int) error
	UpdateRatingBulk(ctx context.Context, ids []string, rating int) error
	UpdateNotes(ctx context.Context, id string, notes string) error
	RemoveBulk(ctx context.Context, ids []string) error
}

type jobRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Job, error)
}

type stageNotifier interface {
	Notify(ctx context.Context, change events.StageChanged) error
}

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInvalidRating     = errors.New("rating must be between 0 and 5")
	ErrEmptyStage        = errors.New("target stage must not be empty")
	ErrEmptySelection    = errors.New("no candidates selected")
)

// TransitionRequest describes one "move candidate to stage" operation.
type TransitionRequest struct {
	CandidateID string
	NewStage    string

	// Origin labels the transition source for metrics (drag, bulk, detail).
	Origin string

	// RecordActivity appends a timeline entry for the transition. Only
	// the detail-page path sets it; drag-drop and bulk updates do not.
	RecordActivity bool
	Author         string
}

// TransitionResult reports the outcome of the best-effort side effects.
// The stage update itself succeeded whenever the error returned
// alongside this result is nil.
type TransitionResult struct {
	OldStage         string
	NewStage         string
	NotificationSent bool
	NotificationErr  string
}

// BulkReport is the "updated N of M" summary of a bulk stage change.
// Notification failures are listed per candidate and never undo the
// persisted batch.
type BulkReport struct {
	Requested      int
	Updated        int
	NotifyFailures []NotifyFailure
}

type NotifyFailure struct {
	CandidateID string
	Reason      string
}

// Pipeline mediates candidate movement through a job's stage list and
// the side effects each transition carries.
type Pipeline struct {
	bus        EventBus.Bus
	candidates candidateRepository
	jobs       jobRepository
	notifier   stageNotifier
}

func NewPipeline(bus EventBus.Bus, candidates candidateRepository, jobs jobRepository,
	notifier stageNotifier) *Pipeline {

	return &Pipeline{
		bus:        bus,
		candidates: candidates,
		jobs:       jobs,
		notifier:   notifier,
	}
}

// MoveToStage persists the transition, then runs the best-effort side
// effects. Only the persistence step can fail the operation; a
// notification failure is reported in the result and must never roll
// the stage update back.
func (p *Pipeline) MoveToStage(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {

	if req.NewStage == "" {
		return nil, ErrEmptyStage
	}

	candidate, err := p.candidates.GetByID(ctx, req.CandidateID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch candidate")
	}
	if candidate == nil {
		return nil, ErrCandidateNotFound
	}

	if err = p.candidates.UpdateStage(ctx, candidate.ID, req.NewStage); err != nil {
		return nil, errors.Wrap(err, "persist stage")
	}

	origin := req.Origin
	if origin == "" {
		origin = metrics.TransitionOriginDrag
	}
	metrics.StageTransitionsCounter.WithLabelValues(origin).Inc()

	change := events.StageChanged{
		CandidateID:    candidate.ID,
		CandidateName:  candidate.FullName,
		CandidateEmail: candidate.Email,
		JobTitle:       p.jobTitle(ctx, candidate.JobID),
		OldStage:       candidate.CurrentStage,
		NewStage:       req.NewStage,
		RecordActivity: req.RecordActivity,
		Author:         req.Author,
	}
	p.bus.Publish(events.StageChangedTopic, change)

	result := &TransitionResult{OldStage: candidate.CurrentStage, NewStage: req.NewStage}

	if err = p.notifier.Notify(ctx, change); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeEmail).
			Warnf("stage updated but notification failed for candidate %v: %v", candidate.ID, err)
		result.NotificationErr = err.Error()
	} else {
		result.NotificationSent = true
	}

	return result, nil
}

// BulkMoveToStage applies one target stage to a set of candidates as a
// single persistence batch, then notifies each candidate independently,
// collecting failures instead of failing fast.
func (p *Pipeline) BulkMoveToStage(ctx context.Context, ids []string, stage string) (*BulkReport, error) {

	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	if stage == "" {
		return nil, ErrEmptyStage
	}

	// Read first so old stages survive for the notifications.
	candidates, err := p.candidates.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "fetch candidates")
	}

	if err = p.candidates.UpdateStageBulk(ctx, ids, stage); err != nil {
		return nil, errors.Wrap(err, "persist stage batch")
	}

	report := &BulkReport{Requested: len(ids), Updated: len(candidates)}

	for _, candidate := range candidates {
		metrics.StageTransitionsCounter.WithLabelValues(metrics.TransitionOriginBulk).Inc()

		change := events.StageChanged{
			CandidateID:    candidate.ID,
			CandidateName:  candidate.FullName,
			CandidateEmail: candidate.Email,
			JobTitle:       p.jobTitle(ctx, candidate.JobID),
			OldStage:       candidate.CurrentStage,
			NewStage:       stage,
		}
		p.bus.Publish(events.StageChangedTopic, change)

		if notifyErr := p.notifier.Notify(ctx, change); notifyErr != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeEmail).
				Warnf("notification failed for candidate %v: %v", candidate.ID, notifyErr)
			report.NotifyFailures = append(report.NotifyFailures, NotifyFailure{
				CandidateID: candidate.ID,
				Reason:      notifyErr.Error(),
			})
		}
	}

	return report, nil
}

func (p *Pipeline) UpdateRating(ctx context.Context, candidateID string, rating int) error {
	if rating < entities.MinRating || rating > entities.MaxRating {
		return ErrInvalidRating
	}
	return p.candidates.UpdateRating(ctx, candidateID, rating)
}

func (p *Pipeline) BulkSetRating(ctx context.Context, ids []string, rating int) error {
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	if rating < entities.MinRating || rating > entities.MaxRating {
		return ErrInvalidRating
	}
	return p.candidates.UpdateRatingBulk(ctx, ids, rating)
}

func (p *Pipeline) UpdateNotes(ctx context.Context, candidateID, notes, author string) error {
	if err := p.candidates.UpdateNotes(ctx, candidateID, notes); err != nil {
		return err
	}
	p.bus.Publish(events.NoteSavedTopic, events.NoteSaved{
		CandidateID: candidateID,
		Note:        notes,
		Author:      author,
	})
	return nil
}

func (p *Pipeline) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	return p.candidates.RemoveBulk(ctx, ids)
}

func (p *Pipeline) jobTitle(ctx context.Context, jobID string) string {
	job, err := p.jobs.GetByID(ctx, jobID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to fetch job %v: %v", jobID, err)
	}
	if job == nil {
		return "Position"
	}
	return job.Title
}

func (r BulkReport) String() string {
	return fmt.Sprintf("updated %d of %d", r.Updated, r.Requested)
}
