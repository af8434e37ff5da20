package repositories

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"gorm.io/gorm"
)

type Candidates struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewCandidatesRepository(db *gorm.DB, bus EventBus.Bus) *Candidates {
	return &Candidates{db: db, bus: bus}
}

// CandidateFilter narrows list queries. Zero values mean "no filter".
type CandidateFilter struct {
	JobID     string
	Stage     string
	Search    string
	MinRating int
}

func (repo *Candidates) Add(ctx context.Context, candidate entities.Candidate) error {
	if candidate.CurrentStage == "" {
		candidate.CurrentStage = entities.StageApplied
	}
	if err := repo.db.WithContext(ctx).Create(&candidate).Error; err != nil {
		return err
	}
	publishChange(repo.bus, events.TableCandidates, candidate.ID)
	return nil
}

func (repo *Candidates) GetByID(ctx context.Context, id string) (*entities.Candidate, error) {

	var candidate entities.Candidate
	err := repo.db.WithContext(ctx).First(&candidate, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &candidate, nil
}

func (repo *Candidates) GetByIDs(ctx context.Context, ids []string) ([]entities.Candidate, error) {

	var candidates []entities.Candidate
	if err := repo.db.WithContext(ctx).Find(&candidates, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (repo *Candidates) Get(ctx context.Context, filter CandidateFilter) ([]entities.Candidate, error) {

	query := repo.db.WithContext(ctx).Order("created_at DESC")

	if filter.JobID != "" {
		query = query.Where("job_id = ?", filter.JobID)
	}
	if filter.Stage != "" {
		query = query.Where("current_stage = ?", filter.Stage)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("full_name LIKE ? OR email LIKE ?", pattern, pattern)
	}
	if filter.MinRating > 0 {
		query = query.Where("rating >= ?", filter.MinRating)
	}

	var candidates []entities.Candidate
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (repo *Candidates) UpdateStage(ctx context.Context, id string, stage string) error {
	err := repo.db.WithContext(ctx).Model(&entities.Candidate{}).Where("id = ?", id).
		Updates(map[string]any{"current_stage": stage}).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableCandidates, id)
	return nil
}

// UpdateStageBulk applies one stage to a set of ids as a single batch
// statement. The batch succeeds or fails as one call; it is never
// decomposed into per-id updates.
func (repo *Candidates) UpdateStageBulk(ctx context.Context, ids []string, stage string) error {
	err := repo.db.WithContext(ctx).Model(&entities.Candidate{}).Where("id IN ?", ids).
		Updates(map[string]any{"current_stage": stage}).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableCandidates, ids...)
	return nil
}

func (repo *Candidates) UpdateRating(ctx context.Context, id string, rating int) error {
	err := repo.db.WithContext(ctx).Model(&entities.Candidate{}).Where("id = ?", id).
		Updates(map[string]any{"rating": rating}).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableCandidates, id)
	return nil
}

func (repo *Candidates) UpdateRatingBulk(ctx context.Context, ids []string, rating int) error {
	err := repo.db.WithContext(ctx).Model(&entities.Candidate{}).Where("id IN ?", ids).
		Updates(map[string]any{"rating": rating}).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableCandidates, ids...)
	return nil
}

func (repo *Candidates) UpdateNotes(ctx context.Context, id string, notes string) error {
	err := repo.db.WithContext(ctx).Model(&entities.Candidate{}).Where("id = ?", id).
		Updates(map[string]any{"notes": notes}).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableCandidates, id)
	return nil
}

func (repo *Candidates) UpdateResumeURL(ctx context.Context, id string, resumeURL string) error {
	err := repo.db.WithContext(ctx).Model(&entities.Candidate{}).Where("id = ?", id).
		Updates(map[string]any{"resume_url": resumeURL}).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableCandidates, id)
	return nil
}

func (repo *Candidates) RemoveBulk(ctx context.Context, ids []string) error {
	err := repo.db.WithContext(ctx).Delete(&entities.Candidate{}, "id IN ?", ids).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableCandidates, ids...)
	return nil
}

func (repo *Candidates) CountByJob(ctx context.Context, jobID string) (int64, error) {

	var count int64
	err := repo.db.WithContext(ctx).Model(&entities.Candidate{}).
		Where("job_id = ?", jobID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *Candidates) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {

	var count int64
	err := repo.db.WithContext(ctx).Model(&entities.Candidate{}).
		Where("created_at >= ?", since).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
