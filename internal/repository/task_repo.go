package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// TaskRepository persists internal tasks.
type TaskRepository interface {
	List(ctx context.Context, assignee *uint) ([]models.Task, error)
	GetByID(ctx context.Context, id uint) (models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository constructs the task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) List(ctx context.Context, assignee *uint) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if assignee != nil {
		query = query.Where("assigned_member = ?", *assignee)
	}

	var tasks []models.Task
	err := query.Order("due_date ASC").Order("id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &models.Task{}, id, updates)
}

func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Task{}, id)
}
