package dto

import (
	"time"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// EntryCreateRequest describes a single entry added by hand or by import.
type EntryCreateRequest struct {
	ContestID    uint   `json:"contest_id" validate:"required"`
	URL          string `json:"entry_url" validate:"required,url"`
	KAID         string `json:"entry_kaid" validate:"required,max=64"`
	Title        string `json:"entry_title" validate:"required,max=255"`
	Author       string `json:"entry_author" validate:"required,max=255"`
	Level        string `json:"entry_level" validate:"omitempty,oneof=Beginner Intermediate Advanced TBD"`
	EntryCreated string `json:"entry_created" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// EntryUpdateRequest describes an administrative edit of an entry.
type EntryUpdateRequest struct {
	URL             *string `json:"entry_url" validate:"omitempty,url"`
	Title           *string `json:"entry_title" validate:"omitempty,max=255"`
	Author          *string `json:"entry_author" validate:"omitempty,max=255"`
	Level           *string `json:"entry_level" validate:"omitempty,oneof=Beginner Intermediate Advanced TBD"`
	LevelLocked     *bool   `json:"level_locked"`
	Flagged         *bool   `json:"flagged"`
	Disqualified    *bool   `json:"disqualified"`
	AssignedGroupID *uint   `json:"assigned_group_id"`
}

// EntryImportRequest carries entries supplied as JSON instead of a spreadsheet.
type EntryImportRequest struct {
	ContestID uint                 `json:"contest_id" validate:"required"`
	Entries   []EntryCreateRequest `json:"entries" validate:"required,min=1,dive"`
}

// EntryImportResult summarises an import run.
type EntryImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// EntryGroupAssignmentRequest asks for a contest's entries to be spread across groups.
type EntryGroupAssignmentRequest struct {
	ContestID uint `json:"contest_id" validate:"required"`
}

// EntryGroupAssignmentResponse summarises a group assignment run.
type EntryGroupAssignmentResponse struct {
	Assigned int `json:"assigned"`
	Groups   int `json:"groups"`
}

// EntryResponse is the serialized entry. Internal-only fields are omitted for anonymous callers.
type EntryResponse struct {
	ID              uint         `json:"id"`
	ContestID       uint         `json:"contest_id"`
	URL             string       `json:"entry_url"`
	KAID            string       `json:"entry_kaid"`
	Title           string       `json:"entry_title"`
	Author          string       `json:"entry_author"`
	Level           models.Level `json:"entry_level"`
	EntryCreated    time.Time    `json:"entry_created"`
	IsWinner        bool         `json:"is_winner"`
	LevelLocked     *bool        `json:"level_locked,omitempty"`
	Votes           *int         `json:"entry_votes,omitempty"`
	Flagged         *bool        `json:"flagged,omitempty"`
	Disqualified    *bool        `json:"disqualified,omitempty"`
	AssignedGroupID *uint        `json:"assigned_group_id,omitempty"`
}

// EntryListResponse wraps entries with the caller's visibility.
type EntryListResponse struct {
	Visibility
	Entries []EntryResponse `json:"entries"`
}

// VoteResponse reports the vote tally after a vote change.
type VoteResponse struct {
	EntryID uint `json:"entry_id"`
	Votes   int  `json:"entry_votes"`
}

// NewEntryResponse converts a model into a DTO, exposing internal fields when internal is true.
func NewEntryResponse(model models.Entry, internal bool) EntryResponse {
	response := EntryResponse{
		ID:           model.ID,
		ContestID:    model.ContestID,
		URL:          model.URL,
		KAID:         model.KAID,
		Title:        model.Title,
		Author:       model.Author,
		Level:        model.Level,
		EntryCreated: model.EntryCreated,
		IsWinner:     model.IsWinner,
	}
	if internal {
		locked := model.LevelLocked
		votes := model.Votes
		flagged := model.Flagged
		disqualified := model.Disqualified
		response.LevelLocked = &locked
		response.Votes = &votes
		response.Flagged = &flagged
		response.Disqualified = &disqualified
		response.AssignedGroupID = model.AssignedGroupID
	}
	return response
}

// NewEntryResponseSlice converts a slice of models into DTOs.
func NewEntryResponseSlice(entries []models.Entry, internal bool) []EntryResponse {
	responses := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewEntryResponse(entry, internal))
	}
	return responses
}
