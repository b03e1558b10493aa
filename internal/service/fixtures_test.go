package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/database"
	"github.com/noah-isme/judging-admin-api/internal/models"
)

type stubActivityRecorder struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (s *stubActivityRecorder) Record(_ context.Context, entry ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

type recordingInvalidator struct {
	contests []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, contestID uint) {
	r.contests = append(r.contests, contestID)
}

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) {
	p.events = append(p.events, event)
}

func (p *recordingPublisher) names() []string {
	names := make([]string, 0, len(p.events))
	for _, event := range p.events {
		names = append(names, event.Name)
	}
	return names
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func judge(id uint, caps ...auth.Capability) auth.Identity {
	return auth.Identity{EvaluatorID: id, Name: "Judge", Permissions: auth.NewSet(caps...)}
}

func admin(id uint) auth.Identity {
	return auth.Identity{EvaluatorID: id, Name: "Admin", IsAdmin: true}
}

func seedContest(t *testing.T, db *gorm.DB, voting bool) models.Contest {
	t.Helper()
	contest := models.Contest{
		Name:          "Spring Contest",
		StartDate:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		Current:       true,
		VotingEnabled: voting,
	}
	require.NoError(t, db.Create(&contest).Error)
	return contest
}

func seedEntry(t *testing.T, db *gorm.DB, contestID uint, kaid string, level models.Level, mutate ...func(*models.Entry)) models.Entry {
	t.Helper()
	entry := models.Entry{
		ContestID:    contestID,
		URL:          "https://www.khanacademy.org/computer-programming/" + uuid.NewString(),
		KAID:         kaid,
		Title:        "Entry " + kaid,
		Author:       "Author " + kaid,
		Level:        level,
		EntryCreated: time.Now().UTC(),
	}
	for _, fn := range mutate {
		fn(&entry)
	}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func seedEvaluator(t *testing.T, db *gorm.DB, name string) models.Evaluator {
	t.Helper()
	evaluator := models.Evaluator{
		Name:     name,
		Username: uuid.NewString()[:8],
		Email:    uuid.NewString() + "@judges.test",
	}
	require.NoError(t, db.Create(&evaluator).Error)
	return evaluator
}

func reloadEntry(t *testing.T, db *gorm.DB, id uint) models.Entry {
	t.Helper()
	var entry models.Entry
	require.NoError(t, db.First(&entry, id).Error)
	return entry
}
