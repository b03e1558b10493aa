package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.JudgingGroup{},
		&models.Evaluator{},
		&models.Contest{},
		&models.Entry{},
		&models.Evaluation{},
		&models.EntryVote{},
		&models.Message{},
		&models.Task{},
		&models.ActivityLog{},
	)
}
