package repositories

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"gorm.io/gorm"
)

type Interviews struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewInterviewsRepository(db *gorm.DB, bus EventBus.Bus) *Interviews {
	return &Interviews{db: db, bus: bus}
}

func (repo *Interviews) Add(ctx context.Context, interview entities.Interview) error {
	if err := repo.db.WithContext(ctx).Create(&interview).Error; err != nil {
		return err
	}
	publishChange(repo.bus, events.TableInterviews, interview.ID)
	return nil
}

func (repo *Interviews) GetByCandidate(ctx context.Context, candidateID string) ([]entities.Interview, error) {

	var interviews []entities.Interview
	err := repo.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("scheduled_at DESC").
		Find(&interviews).Error
	if err != nil {
		return nil, err
	}
	return interviews, nil
}

func (repo *Interviews) CountScheduled(ctx context.Context) (int64, error) {

	var count int64
	err := repo.db.WithContext(ctx).Model(&entities.Interview{}).
		Where("status = ?", entities.InterviewStatusScheduled).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
