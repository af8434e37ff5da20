package repositories

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"gorm.io/gorm"
)

type Templates struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewTemplatesRepository(db *gorm.DB, bus EventBus.Bus) *Templates {
	return &Templates{db: db, bus: bus}
}

// ActiveByStage returns the single active template keyed to a stage, or
// nil when none exists.
func (repo *Templates) ActiveByStage(ctx context.Context, stage string) (*entities.EmailTemplate, error) {

	var template entities.EmailTemplate
	err := repo.db.WithContext(ctx).
		Where("stage = ? AND is_active = ?", stage, true).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (repo *Templates) All(ctx context.Context) ([]entities.EmailTemplate, error) {

	var templates []entities.EmailTemplate
	if err := repo.db.WithContext(ctx).Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Upsert replaces the active template for the stage, updating in place
// when one exists.
func (repo *Templates) Upsert(ctx context.Context, template entities.EmailTemplate) error {

	existing, err := repo.ActiveByStage(ctx, template.Stage)
	if err != nil {
		return err
	}

	if existing != nil {
		err = repo.db.WithContext(ctx).Model(&entities.EmailTemplate{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"subject":   template.Subject,
				"body_html": template.BodyHTML,
			}).Error
		if err != nil {
			return err
		}
		publishChange(repo.bus, events.TableTemplates, existing.ID)
		return nil
	}

	if err = repo.db.WithContext(ctx).Create(&template).Error; err != nil {
		return err
	}
	publishChange(repo.bus, events.TableTemplates, template.ID)
	return nil
}
