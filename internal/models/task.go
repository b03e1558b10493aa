package models

import "time"

// TaskStatus tracks the progress of an internal task.
type TaskStatus string

// Task statuses.
const (
	TaskStatusNotStarted TaskStatus = "Not Started"
	TaskStatusStarted    TaskStatus = "Started"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// Task is an internal to-do item assigned to an evaluator.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"column:task_title;size:255;not null" json:"task_title"`
	DueDate        *time.Time `json:"due_date"`
	AssignedMember *uint      `gorm:"index" json:"assigned_member"`
	Status         TaskStatus `gorm:"column:task_status;size:32;not null;default:'Not Started'" json:"task_status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
