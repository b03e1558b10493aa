package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/models"
)

// EvaluatorRepository persists evaluator accounts.
type EvaluatorRepository interface {
	List(ctx context.Context) ([]models.Evaluator, error)
	GetByID(ctx context.Context, id uint) (models.Evaluator, error)
	Create(ctx context.Context, evaluator *models.Evaluator) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	UpdatePermissions(ctx context.Context, id uint, permissions datatypes.JSONMap, isAdmin *bool) error
	ClearRefreshFlag(ctx context.Context, id uint) error
	SessionState(ctx context.Context, id uint) (auth.SessionState, error)
}

type evaluatorRepository struct {
	db *gorm.DB
}

// NewEvaluatorRepository constructs the evaluator repository.
func NewEvaluatorRepository(db *gorm.DB) EvaluatorRepository {
	return &evaluatorRepository{db: db}
}

func (r *evaluatorRepository) List(ctx context.Context) ([]models.Evaluator, error) {
	var evaluators []models.Evaluator
	err := r.db.WithContext(ctx).Order("evaluator_name ASC").Order("id ASC").Find(&evaluators).Error
	return evaluators, err
}

func (r *evaluatorRepository) GetByID(ctx context.Context, id uint) (models.Evaluator, error) {
	var evaluator models.Evaluator
	if err := r.db.WithContext(ctx).First(&evaluator, id).Error; err != nil {
		return models.Evaluator{}, err
	}
	return evaluator, nil
}

func (r *evaluatorRepository) Create(ctx context.Context, evaluator *models.Evaluator) error {
	return r.db.WithContext(ctx).Create(evaluator).Error
}

func (r *evaluatorRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &models.Evaluator{}, id, updates)
}

func (r *evaluatorRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Evaluator{}, id)
}

// UpdatePermissions writes the permission bag and then flags the account so
// its next request must refresh the token. The two statements are not atomic.
func (r *evaluatorRepository) UpdatePermissions(ctx context.Context, id uint, permissions datatypes.JSONMap, isAdmin *bool) error {
	updates := map[string]interface{}{"permissions": permissions}
	if isAdmin != nil {
		updates["is_admin"] = *isAdmin
	}
	if err := updateByID(ctx, r.db, &models.Evaluator{}, id, updates); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&models.Evaluator{}).
		Where("id = ?", id).
		Update("token_refresh_required", true).Error
}

func (r *evaluatorRepository) ClearRefreshFlag(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Evaluator{}).
		Where("id = ?", id).
		Update("token_refresh_required", false).Error
}

// SessionState reads the lock and refresh flags by primary key.
func (r *evaluatorRepository) SessionState(ctx context.Context, id uint) (auth.SessionState, error) {
	var row struct {
		AccountLocked        bool
		TokenRefreshRequired bool
	}
	result := r.db.WithContext(ctx).
		Model(&models.Evaluator{}).
		Select("account_locked", "token_refresh_required").
		Where("id = ?", id).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return auth.SessionState{}, result.Error
	}
	return auth.SessionState{
		Found:           result.RowsAffected > 0,
		Locked:          row.AccountLocked,
		RefreshRequired: row.TokenRefreshRequired,
	}, nil
}
