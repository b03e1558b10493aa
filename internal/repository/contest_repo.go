package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// ContestRepository persists contests.
type ContestRepository interface {
	List(ctx context.Context) ([]models.Contest, error)
	GetByID(ctx context.Context, id uint) (models.Contest, error)
	Create(ctx context.Context, contest *models.Contest) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository constructs the contest repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) List(ctx context.Context) ([]models.Contest, error) {
	var contests []models.Contest
	err := r.db.WithContext(ctx).Order("date_start DESC, id DESC").Find(&contests).Error
	return contests, err
}

func (r *contestRepository) GetByID(ctx context.Context, id uint) (models.Contest, error) {
	var contest models.Contest
	if err := r.db.WithContext(ctx).First(&contest, id).Error; err != nil {
		return models.Contest{}, err
	}
	return contest, nil
}

func (r *contestRepository) Create(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).Create(contest).Error
}

func (r *contestRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &models.Contest{}, id, updates)
}

func (r *contestRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Contest{}, id)
}
