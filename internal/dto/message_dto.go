package dto

import (
	"time"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// MessageRequest describes a new announcement.
type MessageRequest struct {
	Title   string `json:"message_title" validate:"required,max=255"`
	Content string `json:"message_content" validate:"required"`
	Public  bool   `json:"public"`
}

// MessageUpdateRequest describes a partial announcement edit.
type MessageUpdateRequest struct {
	Title   *string `json:"message_title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"message_content" validate:"omitempty,min=1"`
	Public  *bool   `json:"public"`
}

// MessageResponse is the serialized announcement.
type MessageResponse struct {
	ID         uint      `json:"id"`
	Title      string    `json:"message_title"`
	Content    string    `json:"message_content"`
	AuthorName string    `json:"message_author"`
	Public     bool      `json:"public"`
	CreatedAt  time.Time `json:"message_date"`
}

// MessageListResponse wraps announcements with the caller's visibility.
type MessageListResponse struct {
	Visibility
	Messages []MessageResponse `json:"messages"`
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, MessageResponse{
			ID:         message.ID,
			Title:      message.Title,
			Content:    message.Content,
			AuthorName: message.AuthorName,
			Public:     message.Public,
			CreatedAt:  message.CreatedAt,
		})
	}
	return responses
}
