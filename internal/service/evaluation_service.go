package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// EvaluationService exposes recorded evaluations to their owners and reviewers.
type EvaluationService interface {
	List(ctx context.Context, identity auth.Identity, req dto.EvaluationListRequest) (dto.EvaluationListResponse, error)
	Update(ctx context.Context, identity auth.Identity, id uint, payload dto.EvaluationUpdateRequest) error
	Delete(ctx context.Context, identity auth.Identity, id uint) error
}

type evaluationService struct {
	repo      repository.EvaluationRepository
	entries   repository.EntryRepository
	results   ResultsInvalidator
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEvaluationService constructs the evaluation service.
func NewEvaluationService(repo repository.EvaluationRepository, entries repository.EntryRepository, results ResultsInvalidator, activity ActivityRecorder, validator *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		repo:      repo,
		entries:   entries,
		results:   results,
		activity:  activity,
		validator: validator,
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
	}
}

// List returns the caller's evaluations. Holders of view_all_evaluations may
// list everyone's or filter by evaluator.
func (s *evaluationService) List(ctx context.Context, identity auth.Identity, req dto.EvaluationListRequest) (dto.EvaluationListResponse, error) {
	if err := requireUser(identity); err != nil {
		return dto.EvaluationListResponse{}, err
	}

	filter := repository.EvaluationFilter{ContestID: req.ContestID}
	switch {
	case !identity.Can(auth.ViewAllEvaluations):
		if req.EvaluatorID != 0 && req.EvaluatorID != identity.EvaluatorID {
			return dto.EvaluationListResponse{}, ErrForbidden
		}
		own := identity.EvaluatorID
		filter.EvaluatorID = &own
	case req.EvaluatorID != 0:
		evaluatorID := req.EvaluatorID
		filter.EvaluatorID = &evaluatorID
	}

	evaluations, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.EvaluationListResponse{}, readFailure("list evaluations", err)
	}
	return dto.EvaluationListResponse{
		Visibility:  dto.NewVisibility(identity),
		Evaluations: dto.NewEvaluationResponseSlice(evaluations),
	}, nil
}

func (s *evaluationService) Update(ctx context.Context, identity auth.Identity, id uint, payload dto.EvaluationUpdateRequest) error {
	evaluation, err := s.owned(ctx, identity, id, auth.EditAllEvaluations)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if payload.Creativity != nil {
		updates["creativity"] = *payload.Creativity
	}
	if payload.Complexity != nil {
		updates["complexity"] = *payload.Complexity
	}
	if payload.Execution != nil {
		updates["execution"] = *payload.Execution
	}
	if payload.Interpretation != nil {
		updates["interpretation"] = *payload.Interpretation
	}
	if payload.Level != nil {
		level, ok := models.ParseLevel(*payload.Level)
		if !ok || !level.Assignable() {
			return ErrInvalidLevel
		}
		updates["evaluation_level"] = level
	}
	if payload.Complete != nil {
		updates["evaluation_complete"] = *payload.Complete
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return mutationFailure("update evaluation", err, ErrEvaluationNotFound)
	}

	s.invalidateFor(ctx, evaluation.EntryID)
	audit(ctx, s.activity, s.logger, identity, "evaluation.update", "evaluation", id, nil)
	return nil
}

func (s *evaluationService) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	evaluation, err := s.owned(ctx, identity, id, auth.DeleteAllEvaluations)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationFailure("delete evaluation", err, ErrEvaluationNotFound)
	}

	s.invalidateFor(ctx, evaluation.EntryID)
	audit(ctx, s.activity, s.logger, identity, "evaluation.delete", "evaluation", id, map[string]interface{}{"entry_id": evaluation.EntryID})
	return nil
}

// owned loads the evaluation and checks the caller owns it or holds override.
func (s *evaluationService) owned(ctx context.Context, identity auth.Identity, id uint, override auth.Capability) (models.Evaluation, error) {
	if err := requireUser(identity); err != nil {
		return models.Evaluation{}, err
	}

	evaluation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Evaluation{}, lookupFailure("get evaluation", err, ErrEvaluationNotFound)
	}
	if err := authorizeOwnerOr(identity, evaluation.EvaluatorID, override); err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (s *evaluationService) invalidateFor(ctx context.Context, entryID uint) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("entry_id", entryID).Msg("could not resolve contest for cache invalidation")
		return
	}
	s.results.Invalidate(ctx, entry.ContestID)
}
