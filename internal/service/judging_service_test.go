package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

type fakeJudgingRepo struct {
	locked bool
	kaid   string
	recent []models.Level
	failOn string
	calls  []string
}

func (f *fakeJudgingRepo) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New("connection reset")
	}
	return nil
}

func (f *fakeJudgingRepo) IsLevelLocked(context.Context, uint) (bool, error) {
	return f.locked, f.step("IsLevelLocked")
}

func (f *fakeJudgingRepo) EntryAuthor(context.Context, uint) (string, error) {
	return f.kaid, f.step("EntryAuthor")
}

func (f *fakeJudgingRepo) RecentOtherEntryLevels(_ context.Context, _ string, _ uint, limit int) ([]models.Level, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], f.step("RecentOtherEntryLevels")
	}
	return f.recent, f.step("RecentOtherEntryLevels")
}

func (f *fakeJudgingRepo) LockLevel(context.Context, uint, models.Level) error {
	return f.step("LockLevel")
}

func (f *fakeJudgingRepo) RecomputeLevel(context.Context, uint) (models.Level, error) {
	return models.LevelBeginner, f.step("RecomputeLevel")
}

func (f *fakeJudgingRepo) NextEntry(context.Context, uint, *uint) (models.Entry, error) {
	return models.Entry{}, gorm.ErrRecordNotFound
}

func (f *fakeJudgingRepo) FlagEntry(context.Context, uint) error {
	return f.step("FlagEntry")
}

func TestLevelRuleSteps(t *testing.T) {
	advanced := models.LevelAdvanced
	cases := []struct {
		name     string
		repo     fakeJudgingRepo
		decision dto.LevelDecision
		calls    []string
	}{
		{
			name:     "locked entry is left alone",
			repo:     fakeJudgingRepo{locked: true, recent: []models.Level{advanced, advanced, advanced}},
			decision: dto.LevelDecisionSkippedLocked,
			calls:    []string{"IsLevelLocked"},
		},
		{
			name:     "three advanced entries lock the level",
			repo:     fakeJudgingRepo{kaid: "k", recent: []models.Level{advanced, advanced, advanced}},
			decision: dto.LevelDecisionLocked,
			calls:    []string{"IsLevelLocked", "EntryAuthor", "RecentOtherEntryLevels", "LockLevel"},
		},
		{
			name:     "fewer than three entries never lock",
			repo:     fakeJudgingRepo{kaid: "k", recent: []models.Level{advanced, advanced}},
			decision: dto.LevelDecisionRecomputed,
			calls:    []string{"IsLevelLocked", "EntryAuthor", "RecentOtherEntryLevels", "RecomputeLevel"},
		},
		{
			name:     "no prior entries recompute",
			repo:     fakeJudgingRepo{kaid: "k"},
			decision: dto.LevelDecisionRecomputed,
			calls:    []string{"IsLevelLocked", "EntryAuthor", "RecentOtherEntryLevels", "RecomputeLevel"},
		},
		{
			name:     "any non advanced level recomputes",
			repo:     fakeJudgingRepo{kaid: "k", recent: []models.Level{advanced, models.LevelIntermediate, advanced}},
			decision: dto.LevelDecisionRecomputed,
			calls:    []string{"IsLevelLocked", "EntryAuthor", "RecentOtherEntryLevels", "RecomputeLevel"},
		},
		{
			name:     "tbd level recomputes",
			repo:     fakeJudgingRepo{kaid: "k", recent: []models.Level{advanced, advanced, models.LevelTBD}},
			decision: dto.LevelDecisionRecomputed,
			calls:    []string{"IsLevelLocked", "EntryAuthor", "RecentOtherEntryLevels", "RecomputeLevel"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.repo
			svc := &judgingService{judging: &repo, logger: zerolog.Nop()}

			decision, err := svc.applyLevelRule(context.Background(), 4)
			require.NoError(t, err)
			require.Equal(t, tc.decision, decision)
			if diff := cmp.Diff(tc.calls, repo.calls); diff != "" {
				t.Fatalf("unexpected steps (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLevelRuleStopsAtFirstFailure(t *testing.T) {
	repo := &fakeJudgingRepo{kaid: "k", failOn: "EntryAuthor"}
	svc := &judgingService{judging: repo, logger: zerolog.Nop()}

	_, err := svc.applyLevelRule(context.Background(), 4)
	require.Error(t, err)

	var dataErr *DataAccessError
	require.ErrorAs(t, err, &dataErr)
	require.False(t, dataErr.Read)
	require.Equal(t, []string{"IsLevelLocked", "EntryAuthor"}, repo.calls)
}

type judgingHarness struct {
	db        *gorm.DB
	service   JudgingService
	events    *recordingPublisher
	results   *recordingInvalidator
	activity  *stubActivityRecorder
	evaluator models.Evaluator
	contest   models.Contest
}

func setupJudging(t *testing.T) judgingHarness {
	t.Helper()
	db := setupServiceDB(t)
	h := judgingHarness{
		db:       db,
		events:   &recordingPublisher{},
		results:  &recordingInvalidator{},
		activity: &stubActivityRecorder{},
	}
	h.service = NewJudgingService(
		repository.NewJudgingRepository(db),
		repository.NewEntryRepository(db),
		repository.NewEvaluationRepository(db),
		repository.NewEvaluatorRepository(db),
		h.results,
		h.events,
		h.activity,
		newValidator(),
		zerolog.Nop(),
	)
	h.evaluator = seedEvaluator(t, db, "Judge Judy")
	h.contest = seedContest(t, db, false)
	return h
}

func (h judgingHarness) submit(entryID uint, level models.Level) (dto.JudgingSubmitResponse, error) {
	return h.service.Submit(context.Background(), judge(h.evaluator.ID, auth.JudgeEntries), dto.JudgingSubmitRequest{
		EntryID:        entryID,
		Creativity:     7,
		Complexity:     6,
		Execution:      8,
		Interpretation: 5,
		Level:          string(level),
	})
}

func TestSubmitLocksAfterThreeAdvancedEntries(t *testing.T) {
	h := setupJudging(t)
	for i := 0; i < 3; i++ {
		seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelAdvanced)
	}
	e4 := seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelTBD)

	resp, err := h.submit(e4.ID, models.LevelBeginner)
	require.NoError(t, err)
	require.Equal(t, dto.LevelDecisionLocked, resp.Decision)

	stored := reloadEntry(t, h.db, e4.ID)
	require.Equal(t, models.LevelAdvanced, stored.Level)
	require.True(t, stored.LevelLocked)
	require.Equal(t, []string{EventEvaluationSubmitted, EventEntryLevelLocked}, h.events.names())
	require.Equal(t, []uint{h.contest.ID}, h.results.contests)
}

func TestSubmitRecomputesWhenStreakBroken(t *testing.T) {
	h := setupJudging(t)
	seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelAdvanced)
	seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelIntermediate)
	seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelAdvanced)
	e4 := seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelTBD)

	resp, err := h.submit(e4.ID, models.LevelBeginner)
	require.NoError(t, err)
	require.Equal(t, dto.LevelDecisionRecomputed, resp.Decision)

	stored := reloadEntry(t, h.db, e4.ID)
	require.Equal(t, models.LevelBeginner, stored.Level)
	require.False(t, stored.LevelLocked)
	require.Equal(t, []string{EventEvaluationSubmitted}, h.events.names())
}

func TestSubmitNeverChangesLockedLevel(t *testing.T) {
	h := setupJudging(t)
	locked := seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelIntermediate, func(e *models.Entry) { e.LevelLocked = true })

	resp, err := h.submit(locked.ID, models.LevelAdvanced)
	require.NoError(t, err)
	require.Equal(t, dto.LevelDecisionSkippedLocked, resp.Decision)
	require.Equal(t, models.LevelIntermediate, reloadEntry(t, h.db, locked.ID).Level)
}

func TestSubmitRejectsDuplicateAndDisqualified(t *testing.T) {
	h := setupJudging(t)
	entry := seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelTBD)
	dq := seedEntry(t, h.db, h.contest.ID, "kaid_q", models.LevelTBD, func(e *models.Entry) { e.Disqualified = true })

	_, err := h.submit(entry.ID, models.LevelBeginner)
	require.NoError(t, err)

	_, err = h.submit(entry.ID, models.LevelBeginner)
	require.ErrorIs(t, err, ErrDuplicateEvaluation)

	_, err = h.submit(dq.ID, models.LevelBeginner)
	require.ErrorIs(t, err, ErrEntryNotFound)

	_, err = h.submit(9999, models.LevelBeginner)
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestSubmitRequiresJudgeCapability(t *testing.T) {
	h := setupJudging(t)
	entry := seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelTBD)
	payload := dto.JudgingSubmitRequest{EntryID: entry.ID, Level: "Beginner"}

	_, err := h.service.Submit(context.Background(), auth.Anonymous, payload)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = h.service.Submit(context.Background(), judge(h.evaluator.ID, auth.VoteEntries), payload)
	require.ErrorIs(t, err, ErrForbidden)

	var count int64
	require.NoError(t, h.db.Model(&models.Evaluation{}).Count(&count).Error)
	require.Zero(t, count)
	require.Empty(t, h.activity.entries)
}

func TestSubmitValidatesScores(t *testing.T) {
	h := setupJudging(t)
	entry := seedEntry(t, h.db, h.contest.ID, "kaid_k", models.LevelTBD)

	_, err := h.service.Submit(context.Background(), admin(h.evaluator.ID), dto.JudgingSubmitRequest{
		EntryID:    entry.ID,
		Creativity: 11,
		Level:      "Advanced",
	})
	require.Error(t, err)

	_, err = h.service.Submit(context.Background(), admin(h.evaluator.ID), dto.JudgingSubmitRequest{
		EntryID: entry.ID,
		Level:   "TBD",
	})
	require.Error(t, err)
}

func TestNextEntryAndFlag(t *testing.T) {
	h := setupJudging(t)
	first := seedEntry(t, h.db, h.contest.ID, "kaid_a", models.LevelTBD)
	second := seedEntry(t, h.db, h.contest.ID, "kaid_b", models.LevelTBD)
	identity := judge(h.evaluator.ID, auth.JudgeEntries)

	next, err := h.service.NextEntry(context.Background(), identity)
	require.NoError(t, err)
	require.Equal(t, first.ID, next.ID)

	require.NoError(t, h.service.Flag(context.Background(), identity, dto.JudgingFlagRequest{EntryID: first.ID}))
	next, err = h.service.NextEntry(context.Background(), identity)
	require.NoError(t, err)
	require.Equal(t, second.ID, next.ID)

	_, err = h.submit(second.ID, models.LevelBeginner)
	require.NoError(t, err)
	_, err = h.service.NextEntry(context.Background(), identity)
	require.ErrorIs(t, err, ErrNoEntryAvailable)
}
