package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// JudgingRepository holds the individual statements of the judging workflow.
// Each call is a single statement; callers sequence them without a transaction.
type JudgingRepository interface {
	IsLevelLocked(ctx context.Context, entryID uint) (bool, error)
	EntryAuthor(ctx context.Context, entryID uint) (string, error)
	RecentOtherEntryLevels(ctx context.Context, kaid string, excludeEntryID uint, limit int) ([]models.Level, error)
	LockLevel(ctx context.Context, entryID uint, level models.Level) error
	RecomputeLevel(ctx context.Context, entryID uint) (models.Level, error)
	NextEntry(ctx context.Context, evaluatorID uint, groupID *uint) (models.Entry, error)
	FlagEntry(ctx context.Context, entryID uint) error
}

type judgingRepository struct {
	db *gorm.DB
}

// NewJudgingRepository constructs the judging repository.
func NewJudgingRepository(db *gorm.DB) JudgingRepository {
	return &judgingRepository{db: db}
}

func (r *judgingRepository) IsLevelLocked(ctx context.Context, entryID uint) (bool, error) {
	var row struct {
		LevelLocked bool `gorm:"column:level_locked"`
	}
	result := r.db.WithContext(ctx).Raw("SELECT level_locked FROM entries WHERE id = ?", entryID).Scan(&row)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return row.LevelLocked, nil
}

func (r *judgingRepository) EntryAuthor(ctx context.Context, entryID uint) (string, error) {
	var row struct {
		KAID string `gorm:"column:entry_kaid"`
	}
	result := r.db.WithContext(ctx).Raw("SELECT entry_kaid FROM entries WHERE id = ?", entryID).Scan(&row)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return row.KAID, nil
}

func (r *judgingRepository) RecentOtherEntryLevels(ctx context.Context, kaid string, excludeEntryID uint, limit int) ([]models.Level, error) {
	var rows []struct {
		Level models.Level `gorm:"column:entry_level"`
	}
	err := r.db.WithContext(ctx).Raw(
		"SELECT entry_level FROM entries WHERE entry_kaid = ? AND id <> ? ORDER BY id DESC LIMIT ?",
		kaid, excludeEntryID, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	levels := make([]models.Level, 0, len(rows))
	for _, row := range rows {
		levels = append(levels, row.Level)
	}
	return levels, nil
}

func (r *judgingRepository) LockLevel(ctx context.Context, entryID uint, level models.Level) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE entries SET entry_level = ?, level_locked = ? WHERE id = ?",
		level, true, entryID,
	).Error
}

// RecomputeLevel sets the entry level to the consensus of its completed
// evaluations. Locked entries are left untouched.
func (r *judgingRepository) RecomputeLevel(ctx context.Context, entryID uint) (models.Level, error) {
	var rows []struct {
		Level models.Level `gorm:"column:evaluation_level"`
		Votes int          `gorm:"column:votes"`
	}
	err := r.db.WithContext(ctx).Raw(
		"SELECT evaluation_level, COUNT(*) AS votes FROM evaluations WHERE entry_id = ? AND evaluation_complete = ? GROUP BY evaluation_level",
		entryID, true,
	).Scan(&rows).Error
	if err != nil {
		return "", err
	}

	tally := make(map[models.Level]int, len(rows))
	for _, row := range rows {
		tally[row.Level] += row.Votes
	}
	level := models.ConsensusLevel(tally)

	err = r.db.WithContext(ctx).Exec(
		"UPDATE entries SET entry_level = ? WHERE id = ? AND level_locked = ?",
		level, entryID, false,
	).Error
	if err != nil {
		return "", err
	}
	return level, nil
}

func (r *judgingRepository) NextEntry(ctx context.Context, evaluatorID uint, groupID *uint) (models.Entry, error) {
	query := r.db.WithContext(ctx).
		Table("entries AS e").
		Select("e.*").
		Joins("JOIN contests c ON c.id = e.contest_id").
		Where("c.current = ?", true).
		Where("e.flagged = ? AND e.disqualified = ?", false, false).
		Where("NOT EXISTS (SELECT 1 FROM evaluations ev WHERE ev.entry_id = e.id AND ev.evaluator_id = ?)", evaluatorID)
	if groupID != nil {
		query = query.Where("e.assigned_group_id = ?", *groupID)
	}

	var entries []models.Entry
	if err := query.Order("e.id ASC").Limit(1).Find(&entries).Error; err != nil {
		return models.Entry{}, err
	}
	if len(entries) == 0 {
		return models.Entry{}, gorm.ErrRecordNotFound
	}
	return entries[0], nil
}

func (r *judgingRepository) FlagEntry(ctx context.Context, entryID uint) error {
	result := r.db.WithContext(ctx).Exec("UPDATE entries SET flagged = ? WHERE id = ?", true, entryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
