package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

func newEntryServiceForTest(t *testing.T) (EntryService, *gorm.DB, *recordingInvalidator) {
	t.Helper()
	db := setupServiceDB(t)
	results := &recordingInvalidator{}
	svc := NewEntryService(
		repository.NewEntryRepository(db),
		repository.NewContestRepository(db),
		repository.NewGroupRepository(db),
		results,
		&stubActivityRecorder{},
		newValidator(),
		zerolog.Nop(),
	)
	return svc, db, results
}

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestImportEntriesFromWorkbook(t *testing.T) {
	svc, db, results := newEntryServiceForTest(t)
	contest := seedContest(t, db, false)

	data := workbook(t, [][]interface{}{
		{"Title", "Author", "KAID", "URL", "Level"},
		{"Solar System", "Ada", "kaid_1", "https://www.khanacademy.org/computer-programming/solar/1", "Advanced"},
		{"Snake", "Grace", "kaid_2", "https://www.khanacademy.org/computer-programming/snake/2", ""},
		{"Broken", "Linus", "kaid_3", "not a url", ""},
	})

	result, err := svc.Import(context.Background(), judge(1, auth.AddEntries), contest.ID, data)
	require.NoError(t, err)
	require.Equal(t, 2, result.Imported)
	require.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "row 3")

	var entries []models.Entry
	require.NoError(t, db.Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	require.Equal(t, models.LevelAdvanced, entries[0].Level)
	require.Equal(t, models.LevelTBD, entries[1].Level)
	require.Equal(t, []uint{contest.ID}, results.contests)
}

func TestImportEntriesFromJSON(t *testing.T) {
	svc, db, _ := newEntryServiceForTest(t)
	contest := seedContest(t, db, false)

	data, err := json.Marshal(dto.EntryImportRequest{Entries: []dto.EntryCreateRequest{{
		URL:    "https://www.khanacademy.org/computer-programming/maze/3",
		KAID:   "kaid_9",
		Title:  "Maze",
		Author: "Alan",
	}}})
	require.NoError(t, err)

	result, err := svc.Import(context.Background(), admin(1), contest.ID, data)
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)
	require.Zero(t, result.Skipped)
}

func TestImportIsAllOrNothing(t *testing.T) {
	svc, db, results := newEntryServiceForTest(t)
	contest := seedContest(t, db, false)
	require.NoError(t, db.Exec(`CREATE TRIGGER reject_second_entry BEFORE INSERT ON entries
		WHEN NEW.entry_title = 'Snake'
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`).Error)

	data := workbook(t, [][]interface{}{
		{"Title", "Author", "KAID", "URL"},
		{"Solar System", "Ada", "kaid_1", "https://www.khanacademy.org/computer-programming/solar/1"},
		{"Snake", "Grace", "kaid_2", "https://www.khanacademy.org/computer-programming/snake/2"},
	})

	result, err := svc.Import(context.Background(), admin(1), contest.ID, data)
	var dataErr *DataAccessError
	require.ErrorAs(t, err, &dataErr)
	require.Equal(t, "import entries", dataErr.Op)
	require.Zero(t, result.Imported)

	var persisted int64
	require.NoError(t, db.Model(&models.Entry{}).Count(&persisted).Error)
	require.Zero(t, persisted)
	require.Empty(t, results.contests)
}

func TestImportRejectsUnknownFormats(t *testing.T) {
	svc, db, _ := newEntryServiceForTest(t)
	contest := seedContest(t, db, false)

	_, err := svc.Import(context.Background(), admin(1), contest.ID, []byte("title,author\nMaze,Alan\n"))
	require.ErrorIs(t, err, ErrUnsupportedImport)

	_, err = svc.Import(context.Background(), admin(1), contest.ID, workbook(t, [][]interface{}{{"Title"}, {"Maze"}}))
	require.ErrorIs(t, err, ErrUnsupportedImport)

	_, err = svc.Import(context.Background(), judge(1, auth.EditEntries), contest.ID, nil)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Import(context.Background(), admin(1), contest.ID+100, []byte(`{"entries":[]}`))
	require.ErrorIs(t, err, ErrContestNotFound)
}

func TestEntryVisibilityForAnonymousCallers(t *testing.T) {
	svc, db, _ := newEntryServiceForTest(t)
	contest := seedContest(t, db, false)
	visible := seedEntry(t, db, contest.ID, "kaid_v", models.LevelBeginner)
	hidden := seedEntry(t, db, contest.ID, "kaid_h", models.LevelBeginner, func(e *models.Entry) { e.Flagged = true })

	public, err := svc.List(context.Background(), auth.Anonymous, contest.ID)
	require.NoError(t, err)
	require.False(t, public.LoggedIn)
	require.Len(t, public.Entries, 1)
	require.Equal(t, visible.ID, public.Entries[0].ID)
	require.Nil(t, public.Entries[0].Flagged)

	internal, err := svc.List(context.Background(), judge(2), contest.ID)
	require.NoError(t, err)
	require.Len(t, internal.Entries, 2)

	_, err = svc.Get(context.Background(), auth.Anonymous, hidden.ID)
	require.ErrorIs(t, err, ErrEntryNotFound)

	got, err := svc.Get(context.Background(), judge(2), hidden.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Flagged)
	require.True(t, *got.Flagged)
}

func TestAssignGroupsNeedsActiveGroups(t *testing.T) {
	svc, db, _ := newEntryServiceForTest(t)
	contest := seedContest(t, db, false)
	for i := 0; i < 4; i++ {
		seedEntry(t, db, contest.ID, "kaid_g", models.LevelTBD)
	}
	identity := judge(1, auth.AssignEntryGroups)

	_, err := svc.AssignGroups(context.Background(), identity, dto.EntryGroupAssignmentRequest{ContestID: contest.ID})
	require.ErrorIs(t, err, ErrGroupNotFound)

	require.NoError(t, db.Create(&models.JudgingGroup{Name: "Red", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.JudgingGroup{Name: "Blue", IsActive: true}).Error)

	resp, err := svc.AssignGroups(context.Background(), identity, dto.EntryGroupAssignmentRequest{ContestID: contest.ID})
	require.NoError(t, err)
	require.Equal(t, 4, resp.Assigned)
	require.Equal(t, 2, resp.Groups)

	var unassigned int64
	require.NoError(t, db.Model(&models.Entry{}).Where("assigned_group_id IS NULL").Count(&unassigned).Error)
	require.Zero(t, unassigned)
}
