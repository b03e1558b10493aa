package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

func TestVotingLifecycle(t *testing.T) {
	db := setupServiceDB(t)
	results := &recordingInvalidator{}
	svc := NewVoteService(
		repository.NewVoteRepository(db),
		repository.NewEntryRepository(db),
		repository.NewContestRepository(db),
		results,
		&stubActivityRecorder{},
		zerolog.Nop(),
	)
	ctx := context.Background()
	voter := judge(7, auth.VoteEntries)

	open := seedContest(t, db, true)
	closed := seedContest(t, db, false)
	entry := seedEntry(t, db, open.ID, "kaid_v", models.LevelBeginner)
	frozen := seedEntry(t, db, closed.ID, "kaid_f", models.LevelBeginner)

	resp, err := svc.Cast(ctx, voter, entry.ID)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Votes)

	_, err = svc.Cast(ctx, voter, entry.ID)
	require.ErrorIs(t, err, ErrDuplicateVote)

	resp, err = svc.Retract(ctx, voter, entry.ID)
	require.NoError(t, err)
	require.Zero(t, resp.Votes)

	_, err = svc.Retract(ctx, voter, entry.ID)
	require.ErrorIs(t, err, ErrVoteNotFound)

	_, err = svc.Cast(ctx, voter, frozen.ID)
	require.ErrorIs(t, err, ErrVotingClosed)

	_, err = svc.Cast(ctx, judge(7), entry.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Cast(ctx, voter, 999)
	require.ErrorIs(t, err, ErrEntryNotFound)

	require.Equal(t, []uint{open.ID, open.ID}, results.contests)
}
