package models

import "time"

// Rubric score bounds shared by every dimension.
const (
	MinRubricScore = 0
	MaxRubricScore = 10
)

// Evaluation is one evaluator's scoring of one entry.
type Evaluation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EntryID        uint      `gorm:"not null;uniqueIndex:idx_evaluation_entry_evaluator" json:"entry_id"`
	EvaluatorID    uint      `gorm:"not null;uniqueIndex:idx_evaluation_entry_evaluator" json:"evaluator_id"`
	Creativity     float64   `gorm:"not null;default:0" json:"creativity"`
	Complexity     float64   `gorm:"not null;default:0" json:"complexity"`
	Execution      float64   `gorm:"not null;default:0" json:"execution"`
	Interpretation float64   `gorm:"not null;default:0" json:"interpretation"`
	Level          Level     `gorm:"column:evaluation_level;size:16;not null;default:TBD" json:"evaluation_level"`
	Complete       bool      `gorm:"column:evaluation_complete;not null;default:false" json:"evaluation_complete"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Total is the combined rubric score.
func (e Evaluation) Total() float64 {
	return e.Creativity + e.Complexity + e.Execution + e.Interpretation
}
