package dto

import (
	"time"

	"github.com/noah-isme/judging-admin-api/internal/auth"
)

const isoLayout = time.RFC3339

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Visibility tells clients which view of a list endpoint they were served.
type Visibility struct {
	LoggedIn bool `json:"logged_in"`
	IsAdmin  bool `json:"is_admin"`
}

// NewVisibility derives the visibility flags from the caller identity.
func NewVisibility(identity auth.Identity) Visibility {
	return Visibility{
		LoggedIn: identity.Authenticated(),
		IsAdmin:  identity.Authenticated() && identity.IsAdmin,
	}
}

// CreatedResponse acknowledges a create operation with the new identifier.
type CreatedResponse struct {
	ID uint `json:"id"`
}

// ParseTimestamp parses an RFC3339 timestamp, returning nil for blank input.
func ParseTimestamp(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(isoLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
