package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

// EntryFilter narrows entry listings.
type EntryFilter struct {
	ContestID     uint
	IncludeHidden bool
}

// EntryRepository persists contest entries, their winner flags and group assignment.
type EntryRepository interface {
	List(ctx context.Context, filter EntryFilter) ([]models.Entry, error)
	GetByID(ctx context.Context, id uint) (models.Entry, error)
	Create(ctx context.Context, entry *models.Entry) error
	CreateMany(ctx context.Context, entries []models.Entry) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	ListWinners(ctx context.Context, contestID *uint) ([]models.Entry, error)
	SetWinner(ctx context.Context, id uint, winner bool) error
	AssignGroups(ctx context.Context, contestID uint, groupIDs []uint) (int, error)
}

type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository constructs the entry repository.
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) List(ctx context.Context, filter EntryFilter) ([]models.Entry, error) {
	query := r.db.WithContext(ctx).Model(&models.Entry{})
	if filter.ContestID != 0 {
		query = query.Where("contest_id = ?", filter.ContestID)
	}
	if !filter.IncludeHidden {
		query = query.Where("flagged = ? AND disqualified = ?", false, false)
	}

	var entries []models.Entry
	err := query.Order("id ASC").Find(&entries).Error
	return entries, err
}

func (r *entryRepository) GetByID(ctx context.Context, id uint) (models.Entry, error) {
	var entry models.Entry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

func (r *entryRepository) Create(ctx context.Context, entry *models.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateMany inserts the entries in one transaction, either all rows land or none do.
func (r *entryRepository) CreateMany(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(entries, 100).Error
	})
}

func (r *entryRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &models.Entry{}, id, updates)
}

func (r *entryRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Entry{}, id)
}

func (r *entryRepository) ListWinners(ctx context.Context, contestID *uint) ([]models.Entry, error) {
	query := r.db.WithContext(ctx).Model(&models.Entry{}).Where("is_winner = ?", true)
	if contestID != nil {
		query = query.Where("contest_id = ?", *contestID)
	}

	var entries []models.Entry
	err := query.Order("contest_id DESC").
		Order(models.LevelRankSQL("entry_level")).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *entryRepository) SetWinner(ctx context.Context, id uint, winner bool) error {
	return updateByID(ctx, r.db, &models.Entry{}, id, map[string]interface{}{"is_winner": winner})
}

// AssignGroups deals the contest's entries round-robin across the given groups in id order.
func (r *entryRepository) AssignGroups(ctx context.Context, contestID uint, groupIDs []uint) (int, error) {
	if len(groupIDs) == 0 {
		return 0, nil
	}

	assigned := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Entry{}).
			Where("contest_id = ?", contestID).
			Order("id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		for i, id := range ids {
			groupID := groupIDs[i%len(groupIDs)]
			if err := tx.Model(&models.Entry{}).Where("id = ?", id).Update("assigned_group_id", groupID).Error; err != nil {
				return err
			}
			assigned++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return assigned, nil
}
