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

// TaskService manages internal tasks.
type TaskService interface {
	List(ctx context.Context, identity auth.Identity) (dto.TaskListResponse, error)
	Create(ctx context.Context, identity auth.Identity, payload dto.TaskRequest) (dto.CreatedResponse, error)
	Update(ctx context.Context, identity auth.Identity, id uint, payload dto.TaskUpdateRequest) error
	Delete(ctx context.Context, identity auth.Identity, id uint) error
}

type taskService struct {
	repo            repository.TaskRepository
	activity        ActivityRecorder
	validator       *validator.Validate
	logger          zerolog.Logger
	strictOwnership bool
}

// NewTaskService constructs the task service. With strictOwnership false any
// authenticated evaluator may edit any task, matching the historical behaviour.
func NewTaskService(repo repository.TaskRepository, activity ActivityRecorder, validator *validator.Validate, strictOwnership bool, logger zerolog.Logger) TaskService {
	return &taskService{
		repo:            repo,
		activity:        activity,
		validator:       validator,
		logger:          logger.With().Str("component", "task_service").Logger(),
		strictOwnership: strictOwnership,
	}
}

func (s *taskService) List(ctx context.Context, identity auth.Identity) (dto.TaskListResponse, error) {
	if err := requireUser(identity); err != nil {
		return dto.TaskListResponse{}, err
	}

	var assignee *uint
	if !identity.Can(auth.ViewAllTasks) {
		own := identity.EvaluatorID
		assignee = &own
	}

	tasks, err := s.repo.List(ctx, assignee)
	if err != nil {
		return dto.TaskListResponse{}, readFailure("list tasks", err)
	}
	return dto.TaskListResponse{Visibility: dto.NewVisibility(identity), Tasks: dto.NewTaskResponseSlice(tasks)}, nil
}

func (s *taskService) Create(ctx context.Context, identity auth.Identity, payload dto.TaskRequest) (dto.CreatedResponse, error) {
	if err := authorize(identity, auth.AddTasks); err != nil {
		return dto.CreatedResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CreatedResponse{}, err
	}

	due, err := parseOptionalTime(payload.DueDate)
	if err != nil {
		return dto.CreatedResponse{}, err
	}
	status := models.TaskStatusNotStarted
	if payload.Status != "" {
		status = models.TaskStatus(payload.Status)
	}

	task := models.Task{
		Title:          strings.TrimSpace(payload.Title),
		DueDate:        due,
		AssignedMember: payload.AssignedMember,
		Status:         status,
	}
	if err := s.repo.Create(ctx, &task); err != nil {
		return dto.CreatedResponse{}, writeFailure("create task", err)
	}

	audit(ctx, s.activity, s.logger, identity, "task.create", "task", task.ID, nil)
	return dto.CreatedResponse{ID: task.ID}, nil
}

// Update edits a task. Unless strict ownership is enabled, any authenticated
// caller may edit any task; non-owner edits are logged.
func (s *taskService) Update(ctx context.Context, identity auth.Identity, id uint, payload dto.TaskUpdateRequest) error {
	if err := requireUser(identity); err != nil {
		return err
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return lookupFailure("get task", err, ErrTaskNotFound)
	}

	owner := task.AssignedMember != nil && identity.Owns(*task.AssignedMember)
	if !owner && !identity.Can(auth.EditAllTasks) {
		if s.strictOwnership {
			return ErrForbidden
		}
		s.logger.Warn().
			Uint("task_id", id).
			Uint("evaluator_id", identity.EvaluatorID).
			Msg("task edited by an evaluator who is neither assignee nor holder of edit_all_tasks")
	}

	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if payload.Title != nil {
		updates["task_title"] = strings.TrimSpace(*payload.Title)
	}
	if payload.DueDate != nil {
		due, err := parseOptionalTime(*payload.DueDate)
		if err != nil {
			return err
		}
		updates["due_date"] = due
	}
	if payload.AssignedMember != nil {
		if *payload.AssignedMember == 0 {
			updates["assigned_member"] = nil
		} else {
			updates["assigned_member"] = *payload.AssignedMember
		}
	}
	if payload.Status != nil {
		updates["task_status"] = models.TaskStatus(*payload.Status)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return mutationFailure("update task", err, ErrTaskNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "task.update", "task", id, map[string]interface{}{"owner": owner})
	return nil
}

func (s *taskService) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	if err := authorize(identity, auth.DeleteAllTasks); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationFailure("delete task", err, ErrTaskNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "task.delete", "task", id, nil)
	return nil
}

func parseOptionalTime(value string) (*time.Time, error) {
	parsed, err := dto.ParseTimestamp(strings.TrimSpace(value))
	if err != nil || parsed == nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}
