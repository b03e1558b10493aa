package dto

import (
	"time"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// ContestCreateRequest describes the payload for creating a contest.
type ContestCreateRequest struct {
	Name          string `json:"contest_name" validate:"required,min=3,max=255"`
	URL           string `json:"contest_url" validate:"omitempty,url"`
	Author        string `json:"contest_author" validate:"omitempty,max=255"`
	BadgeName     string `json:"badge_name" validate:"omitempty,max=255"`
	BadgeImageURL string `json:"badge_img_url" validate:"omitempty,url"`
	StartDate     string `json:"date_start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate       string `json:"date_end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Current       bool   `json:"current"`
	VotingEnabled bool   `json:"voting_enabled"`
}

// ContestUpdateRequest describes a partial contest update.
type ContestUpdateRequest struct {
	Name          *string `json:"contest_name" validate:"omitempty,min=3,max=255"`
	URL           *string `json:"contest_url" validate:"omitempty,url"`
	Author        *string `json:"contest_author" validate:"omitempty,max=255"`
	BadgeName     *string `json:"badge_name" validate:"omitempty,max=255"`
	BadgeImageURL *string `json:"badge_img_url" validate:"omitempty,url"`
	StartDate     *string `json:"date_start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate       *string `json:"date_end" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Current       *bool   `json:"current"`
	VotingEnabled *bool   `json:"voting_enabled"`
}

// ContestResponse is the serialized representation of a contest.
type ContestResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"contest_name"`
	URL           string    `json:"contest_url"`
	Author        string    `json:"contest_author"`
	BadgeName     string    `json:"badge_name"`
	BadgeImageURL string    `json:"badge_img_url"`
	StartDate     time.Time `json:"date_start"`
	EndDate       time.Time `json:"date_end"`
	Current       bool      `json:"current"`
	VotingEnabled bool      `json:"voting_enabled"`
}

// ContestListResponse wraps contests with the caller's visibility.
type ContestListResponse struct {
	Visibility
	Contests []ContestResponse `json:"contests"`
}

// NewContestResponse converts a model into a DTO.
func NewContestResponse(model models.Contest) ContestResponse {
	return ContestResponse{
		ID:            model.ID,
		Name:          model.Name,
		URL:           model.URL,
		Author:        model.Author,
		BadgeName:     model.BadgeName,
		BadgeImageURL: model.BadgeImageURL,
		StartDate:     model.StartDate,
		EndDate:       model.EndDate,
		Current:       model.Current,
		VotingEnabled: model.VotingEnabled,
	}
}

// NewContestResponseSlice converts a slice of models into DTOs.
func NewContestResponseSlice(contests []models.Contest) []ContestResponse {
	responses := make([]ContestResponse, 0, len(contests))
	for _, contest := range contests {
		responses = append(responses, NewContestResponse(contest))
	}
	return responses
}
