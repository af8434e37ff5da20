package repositories

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"gorm.io/gorm"
)

type Jobs struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewJobsRepository(db *gorm.DB, bus EventBus.Bus) *Jobs {
	return &Jobs{db: db, bus: bus}
}

func (repo *Jobs) Add(ctx context.Context, job entities.Job) error {
	if err := repo.db.WithContext(ctx).Create(&job).Error; err != nil {
		return err
	}
	publishChange(repo.bus, events.TableJobs, job.ID)
	return nil
}

func (repo *Jobs) GetByID(ctx context.Context, id string) (*entities.Job, error) {

	var job entities.Job
	err := repo.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) Get(ctx context.Context, status entities.JobStatus) ([]entities.Job, error) {

	var jobs []entities.Job
	query := repo.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) Update(ctx context.Context, job entities.Job) error {
	err := repo.db.WithContext(ctx).Model(&entities.Job{}).Where("id = ?", job.ID).Updates(job).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableJobs, job.ID)
	return nil
}

func (repo *Jobs) UpdateStatus(ctx context.Context, id string, status entities.JobStatus) error {
	err := repo.db.WithContext(ctx).Model(&entities.Job{}).Where("id = ?", id).
		Updates(map[string]any{"status": status}).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableJobs, id)
	return nil
}

func (repo *Jobs) UpdateStages(ctx context.Context, id string, stages entities.StageList) error {
	err := repo.db.WithContext(ctx).Model(&entities.Job{}).Where("id = ?", id).
		Updates(map[string]any{"stages": stages}).Error
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableJobs, id)
	return nil
}

// Remove deletes a job and its candidates in one transaction, matching
// the cascade the hosted store used to enforce.
func (repo *Jobs) Remove(ctx context.Context, id string) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entities.Candidate{}, "job_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Job{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	publishChange(repo.bus, events.TableJobs, id)
	publishChange(repo.bus, events.TableCandidates)
	return nil
}
