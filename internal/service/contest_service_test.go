package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

func TestContestLifecycle(t *testing.T) {
	db := setupServiceDB(t)
	activity := &stubActivityRecorder{}
	svc := NewContestService(repository.NewContestRepository(db), newValidator(), activity, zerolog.Nop())
	ctx := context.Background()

	payload := dto.ContestCreateRequest{
		Name:      "Autumn Contest",
		StartDate: "2024-09-01T00:00:00Z",
		EndDate:   "2024-09-30T00:00:00Z",
		Current:   true,
	}

	_, err := svc.Create(ctx, auth.Anonymous, payload)
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Create(ctx, judge(1, auth.EditContests), payload)
	require.ErrorIs(t, err, ErrForbidden)

	var count int64
	require.NoError(t, db.Model(&models.Contest{}).Count(&count).Error)
	require.Zero(t, count)

	reversed := payload
	reversed.EndDate = "2024-08-01T00:00:00Z"
	_, err = svc.Create(ctx, judge(1, auth.AddContests), reversed)
	require.ErrorIs(t, err, ErrInvalidDateRange)

	created, err := svc.Create(ctx, judge(1, auth.AddContests), payload)
	require.NoError(t, err)

	name := "Autumn Contest 2024"
	require.NoError(t, svc.Update(ctx, judge(1, auth.EditContests), created.ID, dto.ContestUpdateRequest{Name: &name}))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, name, got.Name)

	list, err := svc.List(ctx, auth.Anonymous)
	require.NoError(t, err)
	require.False(t, list.LoggedIn)
	require.Len(t, list.Contests, 1)

	require.ErrorIs(t, svc.Delete(ctx, judge(1, auth.EditContests), created.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, judge(1, auth.DeleteContests), created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrContestNotFound)
	require.ErrorIs(t, svc.Delete(ctx, judge(1, auth.DeleteContests), created.ID), ErrContestNotFound)

	require.Len(t, activity.entries, 3)
}

func TestWinnersAndContestants(t *testing.T) {
	db := setupServiceDB(t)
	results := &recordingInvalidator{}
	events := &recordingPublisher{}
	winners := NewWinnerService(repository.NewEntryRepository(db), results, events, &stubActivityRecorder{}, zerolog.Nop())
	contestants := NewContestantService(repository.NewContestantRepository(db), zerolog.Nop())
	ctx := context.Background()

	spring := seedContest(t, db, false)
	autumn := seedContest(t, db, false)
	first := seedEntry(t, db, spring.ID, "kaid_ada", models.LevelAdvanced)
	seedEntry(t, db, autumn.ID, "kaid_ada", models.LevelAdvanced)
	seedEntry(t, db, autumn.ID, "kaid_bob", models.LevelBeginner)

	require.ErrorIs(t, winners.Set(ctx, judge(1), first.ID, true), ErrForbidden)
	require.NoError(t, winners.Set(ctx, judge(1, auth.ManageWinners), first.ID, true))
	require.ErrorIs(t, winners.Set(ctx, admin(1), 999, true), ErrEntryNotFound)
	require.Equal(t, []string{EventWinnersChanged}, events.names())
	require.Equal(t, []uint{spring.ID}, results.contests)

	list, err := winners.List(ctx, auth.Anonymous, &spring.ID)
	require.NoError(t, err)
	require.Len(t, list.Winners, 1)
	require.Equal(t, first.ID, list.Winners[0].EntryID)

	_, err = contestants.List(ctx, auth.Anonymous, "")
	require.ErrorIs(t, err, ErrUnauthenticated)

	all, err := contestants.List(ctx, judge(1), "")
	require.NoError(t, err)
	require.Len(t, all.Contestants, 2)

	ada, err := contestants.Entries(ctx, judge(1), "kaid_ada")
	require.NoError(t, err)
	require.Len(t, ada.Entries, 2)

	_, err = contestants.Entries(ctx, judge(1), "kaid_nobody")
	require.ErrorIs(t, err, ErrContestantNotFound)
}

func TestGroupManagement(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewGroupService(repository.NewGroupRepository(db), &stubActivityRecorder{}, newValidator(), zerolog.Nop())
	ctx := context.Background()
	manager := judge(1, auth.ManageJudgingGroups)

	_, err := svc.Create(ctx, judge(1), dto.GroupRequest{Name: "Red"})
	require.ErrorIs(t, err, ErrForbidden)

	created, err := svc.Create(ctx, manager, dto.GroupRequest{Name: "Red"})
	require.NoError(t, err)

	groups, err := svc.List(ctx, judge(2))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.True(t, groups[0].IsActive)

	require.NoError(t, svc.Delete(ctx, manager, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, manager, created.ID), ErrGroupNotFound)
}
