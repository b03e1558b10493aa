package dto

import (
	"time"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// EvaluationListRequest filters the evaluation listing.
type EvaluationListRequest struct {
	ContestID   uint
	EvaluatorID uint
}

// EvaluationUpdateRequest describes an edit of a recorded evaluation.
type EvaluationUpdateRequest struct {
	Creativity     *float64 `json:"creativity" validate:"omitempty,min=0,max=10"`
	Complexity     *float64 `json:"complexity" validate:"omitempty,min=0,max=10"`
	Execution      *float64 `json:"execution" validate:"omitempty,min=0,max=10"`
	Interpretation *float64 `json:"interpretation" validate:"omitempty,min=0,max=10"`
	Level          *string  `json:"evaluation_level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Complete       *bool    `json:"evaluation_complete"`
}

// EvaluationResponse is the serialized evaluation.
type EvaluationResponse struct {
	ID             uint         `json:"id"`
	EntryID        uint         `json:"entry_id"`
	EvaluatorID    uint         `json:"evaluator_id"`
	Creativity     float64      `json:"creativity"`
	Complexity     float64      `json:"complexity"`
	Execution      float64      `json:"execution"`
	Interpretation float64      `json:"interpretation"`
	Total          float64      `json:"total_score"`
	Level          models.Level `json:"evaluation_level"`
	Complete       bool         `json:"evaluation_complete"`
	CreatedAt      time.Time    `json:"created_at"`
}

// EvaluationListResponse wraps evaluations with the caller's visibility.
type EvaluationListResponse struct {
	Visibility
	Evaluations []EvaluationResponse `json:"evaluations"`
}

// NewEvaluationResponse converts a model into a DTO.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:             model.ID,
		EntryID:        model.EntryID,
		EvaluatorID:    model.EvaluatorID,
		Creativity:     model.Creativity,
		Complexity:     model.Complexity,
		Execution:      model.Execution,
		Interpretation: model.Interpretation,
		Total:          model.Total(),
		Level:          model.Level,
		Complete:       model.Complete,
		CreatedAt:      model.CreatedAt,
	}
}

// NewEvaluationResponseSlice converts a slice of models into DTOs.
func NewEvaluationResponseSlice(evaluations []models.Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, NewEvaluationResponse(evaluation))
	}
	return responses
}
