package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// UnknownMarker replaces figures withheld from anonymous callers.
const UnknownMarker = "Unknown"

// Count is a tally that serializes as the UnknownMarker when hidden.
type Count struct {
	Value  int64
	Hidden bool
}

// KnownCount wraps a real tally.
func KnownCount(n int64) Count {
	return Count{Value: n}
}

// UnknownCount is the withheld tally.
var UnknownCount = Count{Hidden: true}

// MarshalJSON implements json.Marshaler.
func (c Count) MarshalJSON() ([]byte, error) {
	if c.Hidden {
		return json.Marshal(UnknownMarker)
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var marker string
		if err := json.Unmarshal(trimmed, &marker); err != nil {
			return err
		}
		if marker != UnknownMarker {
			return fmt.Errorf("unexpected count marker %q", marker)
		}
		*c = UnknownCount
		return nil
	}

	var value int64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*c = KnownCount(value)
	return nil
}

// LevelCount is the number of entries at one level.
type LevelCount struct {
	Level string `json:"entry_level"`
	Count Count  `json:"count"`
}

// EvaluatorTally is one evaluator's completed-evaluation count.
type EvaluatorTally struct {
	EvaluatorID     *uint    `json:"evaluator_id,omitempty"`
	EvaluatorName   string   `json:"evaluator_name"`
	EvaluationCount Count    `json:"evaluation_count"`
	AverageGroup    *float64 `json:"average_group"`
}

// EntryScore is the per-entry score rollup visible to evaluators.
type EntryScore struct {
	EntryID     uint         `json:"entry_id"`
	Title       string       `json:"entry_title"`
	Author      string       `json:"entry_author"`
	Level       models.Level `json:"entry_level"`
	Evaluations int64        `json:"evaluations"`
	MinScore    float64      `json:"min_score"`
	MaxScore    float64      `json:"max_score"`
	AvgScore    float64      `json:"avg_score"`
	Votes       int          `json:"entry_votes"`
	VotedByMe   bool         `json:"voted_by_me"`
}

// GroupCount is the number of entries assigned to one judging group.
type GroupCount struct {
	GroupID    *uint `json:"group_id"`
	EntryCount int64 `json:"entry_count"`
}

// PublicResultEntry is an evaluated entry as shown to the public.
type PublicResultEntry struct {
	EntryID uint   `json:"entry_id"`
	Title   string `json:"entry_title"`
	Author  string `json:"entry_author"`
}

// InternalResults holds the sections only evaluators may see.
type InternalResults struct {
	EntriesByScore  []EntryScore `json:"entries_by_score"`
	EntriesPerGroup []GroupCount `json:"entries_per_group"`
}

// PublicResults holds the sections served to anonymous callers.
type PublicResults struct {
	Entries []PublicResultEntry `json:"entries"`
}

// ResultsResponse is a contest standings snapshot. Exactly one of the embedded
// section pointers is set, depending on whether the caller is logged in.
type ResultsResponse struct {
	Visibility
	ContestID               uint             `json:"contest_id"`
	Winners                 []WinnerResponse `json:"winners"`
	EntryCounts             []LevelCount     `json:"entry_counts"`
	EvaluationsPerEvaluator []EvaluatorTally `json:"evaluations_per_evaluator"`
	*InternalResults
	*PublicResults
	CacheHit bool `json:"cache_hit"`
}

// WinnerRequest marks or unmarks an entry as a winner.
type WinnerRequest struct {
	EntryID uint `json:"entry_id" validate:"required"`
}

// WinnerResponse is a winning entry.
type WinnerResponse struct {
	EntryID   uint         `json:"entry_id"`
	ContestID uint         `json:"contest_id"`
	URL       string       `json:"entry_url"`
	Title     string       `json:"entry_title"`
	Author    string       `json:"entry_author"`
	KAID      string       `json:"entry_kaid"`
	Level     models.Level `json:"entry_level"`
}

// WinnerListResponse wraps winners with the caller's visibility.
type WinnerListResponse struct {
	Visibility
	Winners []WinnerResponse `json:"winners"`
}

// NewWinnerResponseSlice converts winning entries into DTOs.
func NewWinnerResponseSlice(entries []models.Entry) []WinnerResponse {
	responses := make([]WinnerResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, WinnerResponse{
			EntryID:   entry.ID,
			ContestID: entry.ContestID,
			URL:       entry.URL,
			Title:     entry.Title,
			Author:    entry.Author,
			KAID:      entry.KAID,
			Level:     entry.Level,
		})
	}
	return responses
}

// ContestantResponse summarises one contestant across contests.
type ContestantResponse struct {
	KAID          string `json:"entry_kaid"`
	Name          string `json:"entry_author"`
	EntryCount    int64  `json:"entry_count"`
	ContestCount  int64  `json:"contest_count"`
	LatestEntryID uint   `json:"latest_entry_id"`
}

// ContestantListResponse wraps contestants with the caller's visibility.
type ContestantListResponse struct {
	Visibility
	Contestants []ContestantResponse `json:"contestants"`
}

// ContestantEntriesResponse lists every entry of one contestant.
type ContestantEntriesResponse struct {
	KAID    string          `json:"entry_kaid"`
	Entries []EntryResponse `json:"entries"`
}
