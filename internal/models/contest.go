package models

import "time"

// Contest is a single programming contest that entries are submitted to.
type Contest struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"column:contest_name;size:255;not null" json:"contest_name"`
	URL           string    `gorm:"column:contest_url;size:512" json:"contest_url"`
	Author        string    `gorm:"column:contest_author;size:255" json:"contest_author"`
	BadgeName     string    `gorm:"size:255" json:"badge_name"`
	BadgeImageURL string    `gorm:"column:badge_img_url;size:512" json:"badge_img_url"`
	StartDate     time.Time `gorm:"column:date_start" json:"date_start"`
	EndDate       time.Time `gorm:"column:date_end" json:"date_end"`
	Current       bool      `gorm:"not null;default:false" json:"current"`
	VotingEnabled bool      `gorm:"not null;default:false" json:"voting_enabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
