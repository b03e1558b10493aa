package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// ContestService manages contests.
type ContestService interface {
	List(ctx context.Context, identity auth.Identity) (dto.ContestListResponse, error)
	Get(ctx context.Context, id uint) (dto.ContestResponse, error)
	Create(ctx context.Context, identity auth.Identity, payload dto.ContestCreateRequest) (dto.CreatedResponse, error)
	Update(ctx context.Context, identity auth.Identity, id uint, payload dto.ContestUpdateRequest) error
	Delete(ctx context.Context, identity auth.Identity, id uint) error
}

type contestService struct {
	repo      repository.ContestRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewContestService constructs the contest service.
func NewContestService(repo repository.ContestRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ContestService {
	return &contestService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		logger:    logger.With().Str("component", "contest_service").Logger(),
	}
}

func (s *contestService) List(ctx context.Context, identity auth.Identity) (dto.ContestListResponse, error) {
	contests, err := s.repo.List(ctx)
	if err != nil {
		return dto.ContestListResponse{}, readFailure("list contests", err)
	}
	return dto.ContestListResponse{
		Visibility: dto.NewVisibility(identity),
		Contests:   dto.NewContestResponseSlice(contests),
	}, nil
}

func (s *contestService) Get(ctx context.Context, id uint) (dto.ContestResponse, error) {
	contest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ContestResponse{}, lookupFailure("get contest", err, ErrContestNotFound)
	}
	return dto.NewContestResponse(contest), nil
}

func (s *contestService) Create(ctx context.Context, identity auth.Identity, payload dto.ContestCreateRequest) (dto.CreatedResponse, error) {
	if err := authorize(identity, auth.AddContests); err != nil {
		return dto.CreatedResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CreatedResponse{}, err
	}

	start, _ := time.Parse(time.RFC3339, payload.StartDate)
	end, _ := time.Parse(time.RFC3339, payload.EndDate)
	if end.Before(start) {
		return dto.CreatedResponse{}, ErrInvalidDateRange
	}

	contest := models.Contest{
		Name:          strings.TrimSpace(payload.Name),
		URL:           strings.TrimSpace(payload.URL),
		Author:        strings.TrimSpace(payload.Author),
		BadgeName:     strings.TrimSpace(payload.BadgeName),
		BadgeImageURL: strings.TrimSpace(payload.BadgeImageURL),
		StartDate:     start.UTC(),
		EndDate:       end.UTC(),
		Current:       payload.Current,
		VotingEnabled: payload.VotingEnabled,
	}
	if err := s.repo.Create(ctx, &contest); err != nil {
		return dto.CreatedResponse{}, writeFailure("create contest", err)
	}

	audit(ctx, s.activity, s.logger, identity, "contest.create", "contest", contest.ID, map[string]interface{}{"name": contest.Name})
	return dto.CreatedResponse{ID: contest.ID}, nil
}

func (s *contestService) Update(ctx context.Context, identity auth.Identity, id uint, payload dto.ContestUpdateRequest) error {
	if err := authorize(identity, auth.EditContests); err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["contest_name"] = strings.TrimSpace(*payload.Name)
	}
	if payload.URL != nil {
		updates["contest_url"] = strings.TrimSpace(*payload.URL)
	}
	if payload.Author != nil {
		updates["contest_author"] = strings.TrimSpace(*payload.Author)
	}
	if payload.BadgeName != nil {
		updates["badge_name"] = strings.TrimSpace(*payload.BadgeName)
	}
	if payload.BadgeImageURL != nil {
		updates["badge_img_url"] = strings.TrimSpace(*payload.BadgeImageURL)
	}
	if payload.StartDate != nil {
		start, _ := time.Parse(time.RFC3339, *payload.StartDate)
		updates["date_start"] = start.UTC()
	}
	if payload.EndDate != nil {
		end, _ := time.Parse(time.RFC3339, *payload.EndDate)
		updates["date_end"] = end.UTC()
	}
	if start, ok := updates["date_start"].(time.Time); ok {
		if end, ok := updates["date_end"].(time.Time); ok && end.Before(start) {
			return ErrInvalidDateRange
		}
	}
	if payload.Current != nil {
		updates["current"] = *payload.Current
	}
	if payload.VotingEnabled != nil {
		updates["voting_enabled"] = *payload.VotingEnabled
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return mutationFailure("update contest", err, ErrContestNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "contest.update", "contest", id, nil)
	return nil
}

func (s *contestService) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	if err := authorize(identity, auth.DeleteContests); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationFailure("delete contest", err, ErrContestNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "contest.delete", "contest", id, nil)
	return nil
}
