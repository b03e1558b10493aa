package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// VoteRepository records evaluator votes and keeps the entry vote counter in step.
type VoteRepository interface {
	Cast(ctx context.Context, entryID, evaluatorID uint) (int, error)
	Retract(ctx context.Context, entryID, evaluatorID uint) (int, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository constructs the vote repository.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Cast(ctx context.Context, entryID, evaluatorID uint) (int, error) {
	var votes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := models.EntryVote{EntryID: entryID, EvaluatorID: evaluatorID}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE entries SET entry_votes = entry_votes + 1 WHERE id = ?", entryID).Error; err != nil {
			return err
		}
		return tx.Raw("SELECT entry_votes FROM entries WHERE id = ?", entryID).Scan(&votes).Error
	})
	return votes, err
}

func (r *voteRepository) Retract(ctx context.Context, entryID, evaluatorID uint) (int, error) {
	var votes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("entry_id = ? AND evaluator_id = ?", entryID, evaluatorID).Delete(&models.EntryVote{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Exec("UPDATE entries SET entry_votes = entry_votes - 1 WHERE id = ? AND entry_votes > 0", entryID).Error; err != nil {
			return err
		}
		return tx.Raw("SELECT entry_votes FROM entries WHERE id = ?", entryID).Scan(&votes).Error
	})
	return votes, err
}
