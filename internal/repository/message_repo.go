package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// MessageRepository persists announcements.
type MessageRepository interface {
	List(ctx context.Context, publicOnly bool) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs the message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) List(ctx context.Context, publicOnly bool) ([]models.Message, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{})
	if publicOnly {
		query = query.Where("public = ?", true)
	}

	var messages []models.Message
	err := query.Order("created_at DESC").Order("id DESC").Find(&messages).Error
	return messages, err
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &models.Message{}, id, updates)
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Message{}, id)
}
