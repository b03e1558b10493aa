package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

const scoreExpr = "(ev.creativity + ev.complexity + ev.execution + ev.interpretation)"

// LevelCountRow is the number of entries recorded at one level.
type LevelCountRow struct {
	Level models.Level `gorm:"column:entry_level"`
	Count int64        `gorm:"column:entry_count"`
}

// EntryScoreRow is the score rollup of one entry.
type EntryScoreRow struct {
	EntryID     uint         `gorm:"column:entry_id"`
	Title       string       `gorm:"column:entry_title"`
	Author      string       `gorm:"column:entry_author"`
	Level       models.Level `gorm:"column:entry_level"`
	Votes       int          `gorm:"column:entry_votes"`
	Evaluations int64        `gorm:"column:evaluations"`
	MinScore    float64      `gorm:"column:min_score"`
	MaxScore    float64      `gorm:"column:max_score"`
	AvgScore    float64      `gorm:"column:avg_score"`
	VotedByMe   int64        `gorm:"column:voted_by_me"`
}

// EvaluatorTallyRow counts one evaluator's completed evaluations.
type EvaluatorTallyRow struct {
	EvaluatorID     uint     `gorm:"column:evaluator_id"`
	EvaluatorName   string   `gorm:"column:evaluator_name"`
	EvaluationCount int64    `gorm:"column:evaluation_count"`
	AverageGroup    *float64 `gorm:"column:average_group"`
}

// GroupCountRow counts the entries assigned to one group. A nil group means unassigned.
type GroupCountRow struct {
	GroupID    *uint `gorm:"column:group_id"`
	EntryCount int64 `gorm:"column:entry_count"`
}

// PublicEntryRow is an evaluated entry without any scoring data.
type PublicEntryRow struct {
	EntryID uint   `gorm:"column:entry_id"`
	Title   string `gorm:"column:entry_title"`
	Author  string `gorm:"column:entry_author"`
}

// ResultsRepository runs the read-only aggregation statements behind contest results.
type ResultsRepository interface {
	Winners(ctx context.Context, contestID uint) ([]models.Entry, error)
	EntryCountsByLevel(ctx context.Context, contestID uint) ([]LevelCountRow, error)
	EntryScores(ctx context.Context, contestID, viewerID uint) ([]EntryScoreRow, error)
	EvaluatorTallies(ctx context.Context, contestID uint) ([]EvaluatorTallyRow, error)
	GroupCounts(ctx context.Context, contestID uint) ([]GroupCountRow, error)
	EvaluatedEntries(ctx context.Context, contestID uint) ([]PublicEntryRow, error)
}

type resultsRepository struct {
	db *gorm.DB
}

// NewResultsRepository constructs the results repository.
func NewResultsRepository(db *gorm.DB) ResultsRepository {
	return &resultsRepository{db: db}
}

func (r *resultsRepository) Winners(ctx context.Context, contestID uint) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.WithContext(ctx).Raw(
		"SELECT * FROM entries WHERE contest_id = ? AND is_winner = ? ORDER BY "+models.LevelRankSQL("entry_level")+", id ASC",
		contestID, true,
	).Scan(&entries).Error
	return entries, err
}

func (r *resultsRepository) EntryCountsByLevel(ctx context.Context, contestID uint) ([]LevelCountRow, error) {
	var rows []LevelCountRow
	err := r.db.WithContext(ctx).Raw(
		"SELECT entry_level, COUNT(*) AS entry_count FROM entries WHERE contest_id = ? AND disqualified = ? GROUP BY entry_level ORDER BY "+models.LevelRankSQL("entry_level"),
		contestID, false,
	).Scan(&rows).Error
	return rows, err
}

func (r *resultsRepository) EntryScores(ctx context.Context, contestID, viewerID uint) ([]EntryScoreRow, error) {
	query := "SELECT e.id AS entry_id, e.entry_title, e.entry_author, e.entry_level, e.entry_votes," +
		" COUNT(ev.id) AS evaluations," +
		" MIN" + scoreExpr + " AS min_score," +
		" MAX" + scoreExpr + " AS max_score," +
		" AVG" + scoreExpr + " AS avg_score," +
		" (SELECT COUNT(*) FROM entry_votes v WHERE v.entry_id = e.id AND v.evaluator_id = ?) AS voted_by_me" +
		" FROM entries e" +
		" JOIN evaluations ev ON ev.entry_id = e.id AND ev.evaluation_complete = ?" +
		" WHERE e.contest_id = ? AND e.flagged = ? AND e.disqualified = ?" +
		" GROUP BY e.id, e.entry_title, e.entry_author, e.entry_level, e.entry_votes" +
		" ORDER BY " + models.LevelRankSQL("e.entry_level") + ", avg_score DESC, e.id ASC"

	var rows []EntryScoreRow
	err := r.db.WithContext(ctx).Raw(query, viewerID, true, contestID, false, false).Scan(&rows).Error
	return rows, err
}

func (r *resultsRepository) EvaluatorTallies(ctx context.Context, contestID uint) ([]EvaluatorTallyRow, error) {
	query := "SELECT ev.evaluator_id, u.evaluator_name, COUNT(*) AS evaluation_count," +
		" AVG(e.assigned_group_id) AS average_group" +
		" FROM evaluations ev" +
		" JOIN entries e ON e.id = ev.entry_id" +
		" JOIN evaluators u ON u.id = ev.evaluator_id" +
		" WHERE e.contest_id = ? AND ev.evaluation_complete = ?" +
		" GROUP BY ev.evaluator_id, u.evaluator_name" +
		" ORDER BY evaluation_count DESC, ev.evaluator_id ASC"

	var rows []EvaluatorTallyRow
	err := r.db.WithContext(ctx).Raw(query, contestID, true).Scan(&rows).Error
	return rows, err
}

func (r *resultsRepository) GroupCounts(ctx context.Context, contestID uint) ([]GroupCountRow, error) {
	var rows []GroupCountRow
	err := r.db.WithContext(ctx).Raw(
		"SELECT assigned_group_id AS group_id, COUNT(*) AS entry_count FROM entries WHERE contest_id = ? AND disqualified = ? GROUP BY assigned_group_id ORDER BY assigned_group_id",
		contestID, false,
	).Scan(&rows).Error
	return rows, err
}

func (r *resultsRepository) EvaluatedEntries(ctx context.Context, contestID uint) ([]PublicEntryRow, error) {
	query := "SELECT e.id AS entry_id, e.entry_title, e.entry_author FROM entries e" +
		" WHERE e.contest_id = ?" +
		" AND EXISTS (SELECT 1 FROM evaluations ev WHERE ev.entry_id = e.id AND ev.evaluation_complete = ?)" +
		" ORDER BY e.id ASC"

	var rows []PublicEntryRow
	err := r.db.WithContext(ctx).Raw(query, contestID, true).Scan(&rows).Error
	return rows, err
}
