package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// ContestantRow summarises one contestant across every contest.
type ContestantRow struct {
	KAID          string `gorm:"column:entry_kaid"`
	Name          string `gorm:"column:entry_author"`
	EntryCount    int64  `gorm:"column:entry_count"`
	ContestCount  int64  `gorm:"column:contest_count"`
	LatestEntryID uint   `gorm:"column:latest_entry_id"`
}

// ContestantRepository reads contestants, which only exist as authors of entries.
type ContestantRepository interface {
	List(ctx context.Context, search string) ([]ContestantRow, error)
	Entries(ctx context.Context, kaid string) ([]models.Entry, error)
}

type contestantRepository struct {
	db *gorm.DB
}

// NewContestantRepository constructs the contestant repository.
func NewContestantRepository(db *gorm.DB) ContestantRepository {
	return &contestantRepository{db: db}
}

func (r *contestantRepository) List(ctx context.Context, search string) ([]ContestantRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Entry{}).
		Select("entry_kaid, MAX(entry_author) AS entry_author, COUNT(*) AS entry_count, COUNT(DISTINCT contest_id) AS contest_count, MAX(id) AS latest_entry_id").
		Group("entry_kaid")

	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(entry_author) LIKE ? OR LOWER(entry_kaid) LIKE ?", like, like)
	}

	var rows []ContestantRow
	err := query.Order("entry_author ASC").Scan(&rows).Error
	return rows, err
}

func (r *contestantRepository) Entries(ctx context.Context, kaid string) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.WithContext(ctx).
		Where("entry_kaid = ?", kaid).
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}
