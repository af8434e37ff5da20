package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/talentflow/ats/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.Job{})
	if err != nil {
		return fmt.Errorf("failed to migrate Job entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Candidate{})
	if err != nil {
		return fmt.Errorf("failed to migrate Candidate entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Activity{})
	if err != nil {
		return fmt.Errorf("failed to migrate Activity entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.EmailTemplate{})
	if err != nil {
		return fmt.Errorf("failed to migrate EmailTemplate entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Interview{})
	if err != nil {
		return fmt.Errorf("failed to migrate Interview entity: %w", err)
	}

	if err = c.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_active_template_per_stage " +
		"ON email_templates (stage) WHERE is_active;").Error; err != nil {
		return fmt.Errorf("failed to create template index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
