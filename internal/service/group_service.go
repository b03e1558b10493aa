package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// GroupService manages judging groups.
type GroupService interface {
	List(ctx context.Context, identity auth.Identity) ([]dto.GroupResponse, error)
	Create(ctx context.Context, identity auth.Identity, payload dto.GroupRequest) (dto.CreatedResponse, error)
	Update(ctx context.Context, identity auth.Identity, id uint, payload dto.GroupRequest) error
	Delete(ctx context.Context, identity auth.Identity, id uint) error
}

type groupService struct {
	repo      repository.GroupRepository
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGroupService constructs the judging group service.
func NewGroupService(repo repository.GroupRepository, activity ActivityRecorder, validator *validator.Validate, logger zerolog.Logger) GroupService {
	return &groupService{
		repo:      repo,
		activity:  activity,
		validator: validator,
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

func (s *groupService) List(ctx context.Context, identity auth.Identity) ([]dto.GroupResponse, error) {
	if err := requireUser(identity); err != nil {
		return nil, err
	}
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, readFailure("list groups", err)
	}
	return dto.NewGroupResponseSlice(groups), nil
}

func (s *groupService) Create(ctx context.Context, identity auth.Identity, payload dto.GroupRequest) (dto.CreatedResponse, error) {
	if err := authorize(identity, auth.ManageJudgingGroups); err != nil {
		return dto.CreatedResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CreatedResponse{}, err
	}

	group := models.JudgingGroup{Name: strings.TrimSpace(payload.Name), IsActive: true}
	if payload.IsActive != nil {
		group.IsActive = *payload.IsActive
	}
	if err := s.repo.Create(ctx, &group); err != nil {
		return dto.CreatedResponse{}, writeFailure("create group", err)
	}

	audit(ctx, s.activity, s.logger, identity, "group.create", "judging_group", group.ID, nil)
	return dto.CreatedResponse{ID: group.ID}, nil
}

func (s *groupService) Update(ctx context.Context, identity auth.Identity, id uint, payload dto.GroupRequest) error {
	if err := authorize(identity, auth.ManageJudgingGroups); err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	updates := map[string]interface{}{"name": strings.TrimSpace(payload.Name)}
	if payload.IsActive != nil {
		updates["is_active"] = *payload.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return mutationFailure("update group", err, ErrGroupNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "group.update", "judging_group", id, nil)
	return nil
}

func (s *groupService) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	if err := authorize(identity, auth.ManageJudgingGroups); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationFailure("delete group", err, ErrGroupNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "group.delete", "judging_group", id, nil)
	return nil
}
