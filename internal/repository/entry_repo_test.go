package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judging-admin-api/internal/models"
)

func TestEntryListHidesFlaggedAndDisqualified(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	repo := NewEntryRepository(db)
	contest := f.contest(true)

	visible := f.entry(contest.ID, "k1", models.LevelTBD)
	f.entry(contest.ID, "k2", models.LevelTBD, func(e *models.Entry) { e.Flagged = true })
	f.entry(contest.ID, "k3", models.LevelTBD, func(e *models.Entry) { e.Disqualified = true })

	public, err := repo.List(context.Background(), EntryFilter{ContestID: contest.ID})
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Equal(t, visible.ID, public[0].ID)

	all, err := repo.List(context.Background(), EntryFilter{ContestID: contest.ID, IncludeHidden: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestEntryUpdateAndDeleteMissing(t *testing.T) {
	repo := NewEntryRepository(setupTestDB(t))
	ctx := context.Background()

	require.True(t, IsNotFound(repo.Update(ctx, 99, map[string]interface{}{"entry_title": "x"})))
	require.True(t, IsNotFound(repo.Delete(ctx, 99)))
	require.True(t, IsNotFound(repo.SetWinner(ctx, 99, true)))
}

func TestAssignGroupsRoundRobin(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	repo := NewEntryRepository(db)
	contest := f.contest(true)

	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, f.entry(contest.ID, "k", models.LevelTBD).ID)
	}

	assigned, err := repo.AssignGroups(context.Background(), contest.ID, []uint{10, 20})
	require.NoError(t, err)
	require.Equal(t, 5, assigned)

	want := []uint{10, 20, 10, 20, 10}
	for i, id := range ids {
		entry := f.reload(id)
		require.NotNil(t, entry.AssignedGroupID)
		require.Equal(t, want[i], *entry.AssignedGroupID)
	}
}

func TestVoteCastIsUniquePerEvaluator(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	repo := NewVoteRepository(db)
	ctx := context.Background()
	contest := f.contest(true)
	entry := f.entry(contest.ID, "k1", models.LevelTBD)
	judge := f.evaluator("Judge")

	votes, err := repo.Cast(ctx, entry.ID, judge.ID)
	require.NoError(t, err)
	require.Equal(t, 1, votes)

	_, err = repo.Cast(ctx, entry.ID, judge.ID)
	require.True(t, IsUniqueViolation(err))
	require.Equal(t, 1, f.reload(entry.ID).Votes)

	votes, err = repo.Retract(ctx, entry.ID, judge.ID)
	require.NoError(t, err)
	require.Equal(t, 0, votes)

	_, err = repo.Retract(ctx, entry.ID, judge.ID)
	require.True(t, IsNotFound(err))
}
