package repository

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/database"
	"github.com/noah-isme/judging-admin-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

type fixtures struct {
	t     *testing.T
	db    *gorm.DB
	faker *gofakeit.Faker
}

func newFixtures(t *testing.T, db *gorm.DB) *fixtures {
	return &fixtures{t: t, db: db, faker: gofakeit.New(42)}
}

func (f *fixtures) contest(current bool) models.Contest {
	f.t.Helper()
	contest := models.Contest{
		Name:      f.faker.Company(),
		URL:       f.faker.URL(),
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		Current:   current,
	}
	require.NoError(f.t, f.db.Create(&contest).Error)
	return contest
}

func (f *fixtures) entry(contestID uint, kaid string, level models.Level, mutate ...func(*models.Entry)) models.Entry {
	f.t.Helper()
	entry := models.Entry{
		ContestID:    contestID,
		URL:          f.faker.URL(),
		KAID:         kaid,
		Title:        f.faker.Word(),
		Author:       f.faker.Name(),
		Level:        level,
		EntryCreated: time.Now(),
	}
	for _, fn := range mutate {
		fn(&entry)
	}
	require.NoError(f.t, f.db.Create(&entry).Error)
	return entry
}

func (f *fixtures) evaluator(name string) models.Evaluator {
	f.t.Helper()
	evaluator := models.Evaluator{
		Name:     name,
		Username: f.faker.Username() + f.faker.Numerify("####"),
		Email:    f.faker.Numerify("judge####") + "@" + f.faker.DomainName(),
	}
	require.NoError(f.t, f.db.Create(&evaluator).Error)
	return evaluator
}

func (f *fixtures) evaluation(entryID, evaluatorID uint, score float64, level models.Level, complete bool) models.Evaluation {
	f.t.Helper()
	evaluation := models.Evaluation{
		EntryID:        entryID,
		EvaluatorID:    evaluatorID,
		Creativity:     score,
		Complexity:     score,
		Execution:      score,
		Interpretation: score,
		Level:          level,
		Complete:       complete,
	}
	require.NoError(f.t, f.db.Create(&evaluation).Error)
	return evaluation
}

func (f *fixtures) reload(entryID uint) models.Entry {
	f.t.Helper()
	var entry models.Entry
	require.NoError(f.t, f.db.First(&entry, entryID).Error)
	return entry
}
