package dto

// JudgingSubmitRequest records a judge's scores for an entry.
type JudgingSubmitRequest struct {
	EntryID        uint    `json:"entry_id" validate:"required"`
	Creativity     float64 `json:"creativity" validate:"min=0,max=10"`
	Complexity     float64 `json:"complexity" validate:"min=0,max=10"`
	Execution      float64 `json:"execution" validate:"min=0,max=10"`
	Interpretation float64 `json:"interpretation" validate:"min=0,max=10"`
	Level          string  `json:"evaluation_level" validate:"required,oneof=Beginner Intermediate Advanced"`
}

// JudgingFlagRequest marks an entry for administrative review.
type JudgingFlagRequest struct {
	EntryID uint `json:"entry_id" validate:"required"`
}

// LevelDecision describes what the promotion rule did after a submission.
type LevelDecision string

// Level decisions.
const (
	LevelDecisionSkippedLocked LevelDecision = "skipped_locked"
	LevelDecisionLocked        LevelDecision = "locked_advanced"
	LevelDecisionRecomputed    LevelDecision = "recomputed"
)

// JudgingSubmitResponse acknowledges a submission.
type JudgingSubmitResponse struct {
	EvaluationID uint          `json:"evaluation_id"`
	Decision     LevelDecision `json:"level_decision"`
}
