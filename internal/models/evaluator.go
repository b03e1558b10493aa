package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluator is an internal judge or administrator account.
type Evaluator struct {
	ID                   uint              `gorm:"primaryKey" json:"id"`
	Name                 string            `gorm:"column:evaluator_name;size:255;not null" json:"evaluator_name"`
	Username             string            `gorm:"size:64;uniqueIndex" json:"username"`
	Email                string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	KAID                 string            `gorm:"column:evaluator_kaid;size:64" json:"evaluator_kaid"`
	IsAdmin              bool              `gorm:"not null;default:false" json:"is_admin"`
	AccountLocked        bool              `gorm:"not null;default:false" json:"account_locked"`
	GroupID              *uint             `gorm:"index" json:"group_id"`
	Permissions          datatypes.JSONMap `gorm:"type:json" json:"permissions"`
	TokenRefreshRequired bool              `gorm:"not null;default:false" json:"token_refresh_required"`
	TermStart            *time.Time        `json:"term_start"`
	TermEnd              *time.Time        `json:"term_end"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// JudgingGroup partitions entries and evaluators so each judge sees a slice of the field.
type JudgingGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"group_name"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
