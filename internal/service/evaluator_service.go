package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// EvaluatorService manages evaluator accounts and their permissions.
type EvaluatorService interface {
	List(ctx context.Context, identity auth.Identity) (dto.EvaluatorListResponse, error)
	Get(ctx context.Context, identity auth.Identity, id uint) (dto.EvaluatorResponse, error)
	Create(ctx context.Context, identity auth.Identity, payload dto.EvaluatorCreateRequest) (dto.CreatedResponse, error)
	Update(ctx context.Context, identity auth.Identity, id uint, payload dto.EvaluatorUpdateRequest) error
	SetLocked(ctx context.Context, identity auth.Identity, id uint, payload dto.AccountLockRequest) error
	AssignGroup(ctx context.Context, identity auth.Identity, id uint, payload dto.GroupAssignmentRequest) error
	UpdatePermissions(ctx context.Context, identity auth.Identity, id uint, payload dto.PermissionsUpdateRequest) error
	Delete(ctx context.Context, identity auth.Identity, id uint) error
}

type evaluatorService struct {
	repo      repository.EvaluatorRepository
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEvaluatorService constructs the evaluator service.
func NewEvaluatorService(repo repository.EvaluatorRepository, activity ActivityRecorder, validator *validator.Validate, logger zerolog.Logger) EvaluatorService {
	return &evaluatorService{
		repo:      repo,
		activity:  activity,
		validator: validator,
		logger:    logger.With().Str("component", "evaluator_service").Logger(),
	}
}

func (s *evaluatorService) List(ctx context.Context, identity auth.Identity) (dto.EvaluatorListResponse, error) {
	if err := authorize(identity, auth.ViewAllUsers); err != nil {
		return dto.EvaluatorListResponse{}, err
	}
	evaluators, err := s.repo.List(ctx)
	if err != nil {
		return dto.EvaluatorListResponse{}, readFailure("list evaluators", err)
	}
	return dto.EvaluatorListResponse{
		Visibility: dto.NewVisibility(identity),
		Evaluators: dto.NewEvaluatorResponseSlice(evaluators),
	}, nil
}

func (s *evaluatorService) Get(ctx context.Context, identity auth.Identity, id uint) (dto.EvaluatorResponse, error) {
	if err := authorizeOwnerOr(identity, id, auth.ViewAllUsers); err != nil {
		return dto.EvaluatorResponse{}, err
	}
	evaluator, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.EvaluatorResponse{}, lookupFailure("get evaluator", err, ErrEvaluatorNotFound)
	}
	return dto.NewEvaluatorResponse(evaluator), nil
}

func (s *evaluatorService) Create(ctx context.Context, identity auth.Identity, payload dto.EvaluatorCreateRequest) (dto.CreatedResponse, error) {
	if err := authorize(identity, auth.AddUsers); err != nil {
		return dto.CreatedResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CreatedResponse{}, err
	}
	if payload.IsAdmin && !identity.IsAdmin {
		return dto.CreatedResponse{}, ErrForbidden
	}

	var permissions auth.Set
	for _, name := range payload.Permissions {
		capability, ok := auth.ParseCapability(name)
		if !ok {
			return dto.CreatedResponse{}, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
		}
		permissions = permissions.Add(capability)
	}

	evaluator := models.Evaluator{
		Name:        strings.TrimSpace(payload.Name),
		Username:    strings.ToLower(strings.TrimSpace(payload.Username)),
		Email:       strings.ToLower(strings.TrimSpace(payload.Email)),
		KAID:        strings.TrimSpace(payload.KAID),
		IsAdmin:     payload.IsAdmin,
		GroupID:     payload.GroupID,
		Permissions: permissionColumn(permissions),
	}
	if err := s.repo.Create(ctx, &evaluator); err != nil {
		if repository.IsUniqueViolation(err) {
			return dto.CreatedResponse{}, ErrDuplicateEvaluator
		}
		return dto.CreatedResponse{}, writeFailure("create evaluator", err)
	}

	audit(ctx, s.activity, s.logger, identity, "evaluator.create", "evaluator", evaluator.ID, map[string]interface{}{
		"permissions": permissions.Names(),
	})
	return dto.CreatedResponse{ID: evaluator.ID}, nil
}

func (s *evaluatorService) Update(ctx context.Context, identity auth.Identity, id uint, payload dto.EvaluatorUpdateRequest) error {
	if err := authorizeOwnerOr(identity, id, auth.EditUserProfiles); err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["evaluator_name"] = strings.TrimSpace(*payload.Name)
	}
	if payload.Username != nil {
		updates["username"] = strings.ToLower(strings.TrimSpace(*payload.Username))
	}
	if payload.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.KAID != nil {
		updates["evaluator_kaid"] = strings.TrimSpace(*payload.KAID)
	}
	if payload.TermStart != nil {
		start, err := parseOptionalTime(*payload.TermStart)
		if err != nil {
			return err
		}
		updates["term_start"] = start
	}
	if payload.TermEnd != nil {
		end, err := parseOptionalTime(*payload.TermEnd)
		if err != nil {
			return err
		}
		updates["term_end"] = end
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if repository.IsUniqueViolation(err) {
			return ErrDuplicateEvaluator
		}
		return mutationFailure("update evaluator", err, ErrEvaluatorNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "evaluator.update", "evaluator", id, nil)
	return nil
}

func (s *evaluatorService) SetLocked(ctx context.Context, identity auth.Identity, id uint, payload dto.AccountLockRequest) error {
	if err := authorize(identity, auth.EditUserProfiles); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"account_locked": payload.Locked}); err != nil {
		return mutationFailure("lock evaluator", err, ErrEvaluatorNotFound)
	}

	action := "evaluator.unlock"
	if payload.Locked {
		action = "evaluator.lock"
	}
	audit(ctx, s.activity, s.logger, identity, action, "evaluator", id, nil)
	return nil
}

func (s *evaluatorService) AssignGroup(ctx context.Context, identity auth.Identity, id uint, payload dto.GroupAssignmentRequest) error {
	if err := authorize(identity, auth.AssignEvaluatorGroups); err != nil {
		return err
	}

	var group interface{}
	if payload.GroupID != nil && *payload.GroupID != 0 {
		group = *payload.GroupID
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"group_id": group}); err != nil {
		return mutationFailure("assign evaluator group", err, ErrEvaluatorNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "evaluator.assign_group", "evaluator", id, map[string]interface{}{"group_id": group})
	return nil
}

// UpdatePermissions replaces the permission bag and flags the account for a
// token refresh. Unknown capability names are rejected rather than ignored.
func (s *evaluatorService) UpdatePermissions(ctx context.Context, identity auth.Identity, id uint, payload dto.PermissionsUpdateRequest) error {
	if err := authorize(identity, auth.ChangeUserPermissions); err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	if payload.IsAdmin != nil && !identity.IsAdmin {
		return ErrForbidden
	}

	bag := make(map[string]interface{}, len(payload.Permissions))
	for name, granted := range payload.Permissions {
		bag[name] = granted
	}
	permissions, unknown := auth.FromMap(bag)
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCapability, strings.Join(unknown, ", "))
	}

	if err := s.repo.UpdatePermissions(ctx, id, permissionColumn(permissions), payload.IsAdmin); err != nil {
		return mutationFailure("update permissions", err, ErrEvaluatorNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "evaluator.permissions", "evaluator", id, map[string]interface{}{
		"permissions": permissions.Names(),
	})
	return nil
}

func (s *evaluatorService) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	if err := authorize(identity, auth.DeleteUsers); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationFailure("delete evaluator", err, ErrEvaluatorNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "evaluator.delete", "evaluator", id, nil)
	return nil
}

func permissionColumn(set auth.Set) datatypes.JSONMap {
	column := datatypes.JSONMap{}
	for name, granted := range set.ToMap() {
		column[name] = granted
	}
	return column
}

// IdentityFromEvaluator derives the token identity of an evaluator row.
func IdentityFromEvaluator(evaluator models.Evaluator) auth.Identity {
	permissions, _ := auth.FromMap(evaluator.Permissions)
	return auth.Identity{
		EvaluatorID: evaluator.ID,
		Name:        evaluator.Name,
		IsAdmin:     evaluator.IsAdmin,
		Permissions: permissions,
	}
}
