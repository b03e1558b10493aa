package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/observability"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// promotionStreak is how many of an author's most recent other entries must
// all be Advanced for a newly judged entry to be locked at Advanced.
const promotionStreak = 3

// JudgingService records evaluations and applies the skill-level rule.
type JudgingService interface {
	Submit(ctx context.Context, identity auth.Identity, payload dto.JudgingSubmitRequest) (dto.JudgingSubmitResponse, error)
	NextEntry(ctx context.Context, identity auth.Identity) (dto.EntryResponse, error)
	Flag(ctx context.Context, identity auth.Identity, payload dto.JudgingFlagRequest) error
}

type judgingService struct {
	judging     repository.JudgingRepository
	entries     repository.EntryRepository
	evaluations repository.EvaluationRepository
	evaluators  repository.EvaluatorRepository
	results     ResultsInvalidator
	events      EventPublisher
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewJudgingService constructs the judging service.
func NewJudgingService(
	judging repository.JudgingRepository,
	entries repository.EntryRepository,
	evaluations repository.EvaluationRepository,
	evaluators repository.EvaluatorRepository,
	results ResultsInvalidator,
	events EventPublisher,
	activity ActivityRecorder,
	validator *validator.Validate,
	logger zerolog.Logger,
) JudgingService {
	return &judgingService{
		judging:     judging,
		entries:     entries,
		evaluations: evaluations,
		evaluators:  evaluators,
		results:     results,
		events:      events,
		activity:    activity,
		validator:   validator,
		logger:      logger.With().Str("component", "judging_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/judging-admin-api/internal/service/judging"),
	}
}

func (s *judgingService) Submit(ctx context.Context, identity auth.Identity, payload dto.JudgingSubmitRequest) (dto.JudgingSubmitResponse, error) {
	if err := authorize(identity, auth.JudgeEntries); err != nil {
		return dto.JudgingSubmitResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.JudgingSubmitResponse{}, err
	}
	level, ok := models.ParseLevel(payload.Level)
	if !ok || !level.Assignable() {
		return dto.JudgingSubmitResponse{}, ErrInvalidLevel
	}

	ctx, span := s.tracer.Start(ctx, "judging.submit", trace.WithAttributes(
		attribute.Int64("entry.id", int64(payload.EntryID)),
		attribute.Int64("evaluator.id", int64(identity.EvaluatorID)),
	))
	defer span.End()

	entry, err := s.entries.GetByID(ctx, payload.EntryID)
	if err != nil {
		return dto.JudgingSubmitResponse{}, s.fail(span, lookupFailure("load entry", err, ErrEntryNotFound))
	}
	if entry.Disqualified {
		return dto.JudgingSubmitResponse{}, ErrEntryNotFound
	}

	evaluation := models.Evaluation{
		EntryID:        entry.ID,
		EvaluatorID:    identity.EvaluatorID,
		Creativity:     payload.Creativity,
		Complexity:     payload.Complexity,
		Execution:      payload.Execution,
		Interpretation: payload.Interpretation,
		Level:          level,
		Complete:       true,
	}
	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		if repository.IsUniqueViolation(err) {
			return dto.JudgingSubmitResponse{}, ErrDuplicateEvaluation
		}
		return dto.JudgingSubmitResponse{}, s.fail(span, writeFailure("insert evaluation", err))
	}
	observability.EvaluationsSubmitted().Inc()

	decision, err := s.applyLevelRule(ctx, entry.ID)
	if err != nil {
		return dto.JudgingSubmitResponse{}, s.fail(span, err)
	}
	span.SetAttributes(attribute.String("level.decision", string(decision)))
	observability.LevelDecisions().WithLabelValues(string(decision)).Inc()

	s.results.Invalidate(ctx, entry.ContestID)
	s.events.Publish(ctx, Event{
		Name:       EventEvaluationSubmitted,
		ContestID:  entry.ContestID,
		EntryID:    entry.ID,
		ActorID:    identity.EvaluatorID,
		Attributes: map[string]interface{}{"evaluation_id": evaluation.ID, "level_decision": string(decision)},
	})
	if decision == dto.LevelDecisionLocked {
		s.events.Publish(ctx, Event{
			Name:      EventEntryLevelLocked,
			ContestID: entry.ContestID,
			EntryID:   entry.ID,
			ActorID:   identity.EvaluatorID,
		})
	}
	audit(ctx, s.activity, s.logger, identity, "evaluation.submit", "entry", entry.ID, map[string]interface{}{
		"evaluation_id":  evaluation.ID,
		"level_decision": string(decision),
	})

	return dto.JudgingSubmitResponse{EvaluationID: evaluation.ID, Decision: decision}, nil
}

// applyLevelRule decides the entry level after a new evaluation. A locked
// entry is left alone. If the author's three most recent other entries are all
// Advanced the entry is locked at Advanced, otherwise its level is recomputed
// from evaluations. The reads and the write are separate statements without a
// transaction, so concurrent submissions for one author may race.
func (s *judgingService) applyLevelRule(ctx context.Context, entryID uint) (dto.LevelDecision, error) {
	locked, err := s.judging.IsLevelLocked(ctx, entryID)
	if err != nil {
		return "", writeFailure("check level lock", err)
	}
	if locked {
		return dto.LevelDecisionSkippedLocked, nil
	}

	kaid, err := s.judging.EntryAuthor(ctx, entryID)
	if err != nil {
		return "", writeFailure("load entry author", err)
	}

	recent, err := s.judging.RecentOtherEntryLevels(ctx, kaid, entryID, promotionStreak)
	if err != nil {
		return "", writeFailure("load recent entry levels", err)
	}

	if qualifiesForLock(recent) {
		if err := s.judging.LockLevel(ctx, entryID, models.LevelAdvanced); err != nil {
			return "", writeFailure("lock entry level", err)
		}
		return dto.LevelDecisionLocked, nil
	}

	if _, err := s.judging.RecomputeLevel(ctx, entryID); err != nil {
		return "", writeFailure("recompute entry level", err)
	}
	return dto.LevelDecisionRecomputed, nil
}

func qualifiesForLock(levels []models.Level) bool {
	if len(levels) != promotionStreak {
		return false
	}
	for _, level := range levels {
		if level != models.LevelAdvanced {
			return false
		}
	}
	return true
}

func (s *judgingService) NextEntry(ctx context.Context, identity auth.Identity) (dto.EntryResponse, error) {
	if err := authorize(identity, auth.JudgeEntries); err != nil {
		return dto.EntryResponse{}, err
	}

	evaluator, err := s.evaluators.GetByID(ctx, identity.EvaluatorID)
	if err != nil {
		return dto.EntryResponse{}, lookupFailure("load evaluator", err, ErrEvaluatorNotFound)
	}

	entry, err := s.judging.NextEntry(ctx, evaluator.ID, evaluator.GroupID)
	if err != nil {
		return dto.EntryResponse{}, lookupFailure("load next entry", err, ErrNoEntryAvailable)
	}
	return dto.NewEntryResponse(entry, true), nil
}

func (s *judgingService) Flag(ctx context.Context, identity auth.Identity, payload dto.JudgingFlagRequest) error {
	if err := authorize(identity, auth.JudgeEntries); err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	entry, err := s.entries.GetByID(ctx, payload.EntryID)
	if err != nil {
		return lookupFailure("load entry", err, ErrEntryNotFound)
	}
	if err := s.judging.FlagEntry(ctx, entry.ID); err != nil {
		return mutationFailure("flag entry", err, ErrEntryNotFound)
	}

	s.results.Invalidate(ctx, entry.ContestID)
	audit(ctx, s.activity, s.logger, identity, "entry.flag", "entry", entry.ID, nil)
	return nil
}

func (s *judgingService) fail(span trace.Span, err error) error {
	var dataErr *DataAccessError
	if errors.As(err, &dataErr) {
		span.RecordError(err)
		span.SetStatus(codes.Error, dataErr.Op)
		s.logger.Error().Err(err).Str("op", dataErr.Op).Msg("judging submission failed")
	}
	return err
}
