package dto

import (
	"time"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// TaskRequest describes a new task.
type TaskRequest struct {
	Title          string `json:"task_title" validate:"required,max=255"`
	DueDate        string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AssignedMember *uint  `json:"assigned_member"`
	Status         string `json:"task_status" validate:"omitempty,oneof='Not Started' Started Completed"`
}

// TaskUpdateRequest describes a partial task edit.
type TaskUpdateRequest struct {
	Title          *string `json:"task_title" validate:"omitempty,min=1,max=255"`
	DueDate        *string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AssignedMember *uint   `json:"assigned_member"`
	Status         *string `json:"task_status" validate:"omitempty,oneof='Not Started' Started Completed"`
}

// TaskResponse is the serialized task.
type TaskResponse struct {
	ID             uint              `json:"id"`
	Title          string            `json:"task_title"`
	DueDate        *time.Time        `json:"due_date"`
	AssignedMember *uint             `json:"assigned_member"`
	Status         models.TaskStatus `json:"task_status"`
	CreatedAt      time.Time         `json:"created_at"`
}

// TaskListResponse wraps tasks with the caller's visibility.
type TaskListResponse struct {
	Visibility
	Tasks []TaskResponse `json:"tasks"`
}

// NewTaskResponseSlice converts a slice of models into DTOs.
func NewTaskResponseSlice(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, TaskResponse{
			ID:             task.ID,
			Title:          task.Title,
			DueDate:        task.DueDate,
			AssignedMember: task.AssignedMember,
			Status:         task.Status,
			CreatedAt:      task.CreatedAt,
		})
	}
	return responses
}
