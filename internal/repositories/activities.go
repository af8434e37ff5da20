package repositories

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"gorm.io/gorm"
)

// Activities is append-only: there is no update or delete path.
type Activities struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewActivitiesRepository(db *gorm.DB, bus EventBus.Bus) *Activities {
	return &Activities{db: db, bus: bus}
}

func (repo *Activities) Add(ctx context.Context, activity entities.Activity) error {
	if err := repo.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return err
	}
	publishChange(repo.bus, events.TableActivities, activity.ID)
	return nil
}

func (repo *Activities) GetByCandidate(ctx context.Context, candidateID string) ([]entities.Activity, error) {

	var activities []entities.Activity
	err := repo.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
