package dto

import (
	"time"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/models"
)

// EvaluatorCreateRequest describes a new evaluator account.
type EvaluatorCreateRequest struct {
	Name        string   `json:"evaluator_name" validate:"required,max=255"`
	Username    string   `json:"username" validate:"required,alphanum,max=64"`
	Email       string   `json:"email" validate:"required,email"`
	KAID        string   `json:"evaluator_kaid" validate:"omitempty,max=64"`
	IsAdmin     bool     `json:"is_admin"`
	GroupID     *uint    `json:"group_id"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}

// EvaluatorUpdateRequest describes a profile edit.
type EvaluatorUpdateRequest struct {
	Name      *string `json:"evaluator_name" validate:"omitempty,min=1,max=255"`
	Username  *string `json:"username" validate:"omitempty,alphanum,max=64"`
	Email     *string `json:"email" validate:"omitempty,email"`
	KAID      *string `json:"evaluator_kaid" validate:"omitempty,max=64"`
	TermStart *string `json:"term_start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	TermEnd   *string `json:"term_end" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// PermissionsUpdateRequest replaces an evaluator's permission bag.
type PermissionsUpdateRequest struct {
	Permissions map[string]bool `json:"permissions" validate:"required"`
	IsAdmin     *bool           `json:"is_admin"`
}

// AccountLockRequest locks or unlocks an evaluator account.
type AccountLockRequest struct {
	Locked bool `json:"account_locked"`
}

// GroupAssignmentRequest moves an evaluator into a judging group, nil clears it.
type GroupAssignmentRequest struct {
	GroupID *uint `json:"group_id"`
}

// EvaluatorResponse is the serialized evaluator account.
type EvaluatorResponse struct {
	ID                   uint       `json:"id"`
	Name                 string     `json:"evaluator_name"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	KAID                 string     `json:"evaluator_kaid"`
	IsAdmin              bool       `json:"is_admin"`
	AccountLocked        bool       `json:"account_locked"`
	TokenRefreshRequired bool       `json:"token_refresh_required"`
	GroupID              *uint      `json:"group_id"`
	Permissions          []string   `json:"permissions"`
	TermStart            *time.Time `json:"term_start"`
	TermEnd              *time.Time `json:"term_end"`
	CreatedAt            time.Time  `json:"created_at"`
}

// EvaluatorListResponse wraps evaluators with the caller's visibility.
type EvaluatorListResponse struct {
	Visibility
	Evaluators []EvaluatorResponse `json:"evaluators"`
}

// NewEvaluatorResponse converts a model into a DTO.
func NewEvaluatorResponse(model models.Evaluator) EvaluatorResponse {
	permissions, _ := auth.FromMap(model.Permissions)
	return EvaluatorResponse{
		ID:                   model.ID,
		Name:                 model.Name,
		Username:             model.Username,
		Email:                model.Email,
		KAID:                 model.KAID,
		IsAdmin:              model.IsAdmin,
		AccountLocked:        model.AccountLocked,
		TokenRefreshRequired: model.TokenRefreshRequired,
		GroupID:              model.GroupID,
		Permissions:          permissions.Names(),
		TermStart:            model.TermStart,
		TermEnd:              model.TermEnd,
		CreatedAt:            model.CreatedAt,
	}
}

// NewEvaluatorResponseSlice converts a slice of models into DTOs.
func NewEvaluatorResponseSlice(evaluators []models.Evaluator) []EvaluatorResponse {
	responses := make([]EvaluatorResponse, 0, len(evaluators))
	for _, evaluator := range evaluators {
		responses = append(responses, NewEvaluatorResponse(evaluator))
	}
	return responses
}

// GroupRequest describes a judging group create or update.
type GroupRequest struct {
	Name     string `json:"group_name" validate:"required,max=128"`
	IsActive *bool  `json:"is_active"`
}

// GroupResponse is the serialized judging group.
type GroupResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"group_name"`
	IsActive bool   `json:"is_active"`
}

// NewGroupResponseSlice converts a slice of models into DTOs.
func NewGroupResponseSlice(groups []models.JudgingGroup) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, GroupResponse{ID: group.ID, Name: group.Name, IsActive: group.IsActive})
	}
	return responses
}
