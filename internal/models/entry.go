package models

import "time"

// Entry is a contestant's submission to a contest.
type Entry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ContestID       uint      `gorm:"index;not null" json:"contest_id"`
	URL             string    `gorm:"column:entry_url;size:512" json:"entry_url"`
	KAID            string    `gorm:"column:entry_kaid;size:64;index;not null" json:"entry_kaid"`
	Title           string    `gorm:"column:entry_title;size:255" json:"entry_title"`
	Author          string    `gorm:"column:entry_author;size:255" json:"entry_author"`
	Level           Level     `gorm:"column:entry_level;size:16;not null;default:TBD" json:"entry_level"`
	LevelLocked     bool      `gorm:"column:level_locked;not null;default:false" json:"level_locked"`
	Votes           int       `gorm:"column:entry_votes;not null;default:0" json:"entry_votes"`
	IsWinner        bool      `gorm:"column:is_winner;not null;default:false" json:"is_winner"`
	Flagged         bool      `gorm:"not null;default:false" json:"flagged"`
	Disqualified    bool      `gorm:"not null;default:false" json:"disqualified"`
	AssignedGroupID *uint     `gorm:"index" json:"assigned_group_id"`
	EntryCreated    time.Time `gorm:"column:entry_created" json:"entry_created"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EntryVote records that an evaluator voted for an entry.
type EntryVote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EntryID     uint      `gorm:"not null;uniqueIndex:idx_entry_vote_voter" json:"entry_id"`
	EvaluatorID uint      `gorm:"not null;uniqueIndex:idx_entry_vote_voter" json:"evaluator_id"`
	CreatedAt   time.Time `json:"created_at"`
}
