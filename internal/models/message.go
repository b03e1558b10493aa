package models

import "time"

// Message is an announcement posted by an evaluator, optionally visible to the public.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"column:message_title;size:255;not null" json:"message_title"`
	Content    string    `gorm:"column:message_content;type:text" json:"message_content"`
	AuthorID   uint      `gorm:"index" json:"author_id"`
	AuthorName string    `gorm:"column:message_author;size:255" json:"message_author"`
	Public     bool      `gorm:"not null;default:false" json:"public"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
