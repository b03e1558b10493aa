package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// EvaluationFilter narrows evaluation listings.
type EvaluationFilter struct {
	ContestID   uint
	EvaluatorID *uint
}

// EvaluationRepository persists evaluator scorings.
type EvaluationRepository interface {
	List(ctx context.Context, filter EvaluationFilter) ([]models.Evaluation, error)
	GetByID(ctx context.Context, id uint) (models.Evaluation, error)
	Create(ctx context.Context, evaluation *models.Evaluation) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository constructs the evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) List(ctx context.Context, filter EvaluationFilter) ([]models.Evaluation, error) {
	query := r.db.WithContext(ctx).Model(&models.Evaluation{})
	if filter.ContestID != 0 {
		query = query.Where("entry_id IN (SELECT id FROM entries WHERE contest_id = ?)", filter.ContestID)
	}
	if filter.EvaluatorID != nil {
		query = query.Where("evaluator_id = ?", *filter.EvaluatorID)
	}

	var evaluations []models.Evaluation
	err := query.Order("id DESC").Find(&evaluations).Error
	return evaluations, err
}

func (r *evaluationRepository) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).First(&evaluation, id).Error; err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &models.Evaluation{}, id, updates)
}

func (r *evaluationRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Evaluation{}, id)
}
