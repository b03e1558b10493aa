package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// GroupRepository persists judging groups.
type GroupRepository interface {
	List(ctx context.Context) ([]models.JudgingGroup, error)
	ListActiveIDs(ctx context.Context) ([]uint, error)
	Create(ctx context.Context, group *models.JudgingGroup) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository constructs the judging group repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) List(ctx context.Context) ([]models.JudgingGroup, error) {
	var groups []models.JudgingGroup
	err := r.db.WithContext(ctx).Order("id ASC").Find(&groups).Error
	return groups, err
}

func (r *groupRepository) ListActiveIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.JudgingGroup{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *groupRepository) Create(ctx context.Context, group *models.JudgingGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &models.JudgingGroup{}, id, updates)
}

// Delete removes the group and detaches any entries and evaluators assigned to it.
func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Entry{}).Where("assigned_group_id = ?", id).Update("assigned_group_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Evaluator{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return err
		}
		return deleteByID(ctx, tx, &models.JudgingGroup{}, id)
	})
}
