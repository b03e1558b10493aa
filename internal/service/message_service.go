package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// MessageService manages announcements.
type MessageService interface {
	List(ctx context.Context, identity auth.Identity) (dto.MessageListResponse, error)
	Create(ctx context.Context, identity auth.Identity, payload dto.MessageRequest) (dto.CreatedResponse, error)
	Update(ctx context.Context, identity auth.Identity, id uint, payload dto.MessageUpdateRequest) error
	Delete(ctx context.Context, identity auth.Identity, id uint) error
}

type messageService struct {
	repo      repository.MessageRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewMessageService constructs the message service.
func NewMessageService(repo repository.MessageRepository, activity ActivityRecorder, validator *validator.Validate, logger zerolog.Logger) MessageService {
	return &messageService{
		repo:      repo,
		activity:  activity,
		validator: validator,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "message_service").Logger(),
	}
}

// List returns public announcements to anonymous callers and every
// announcement to evaluators.
func (s *messageService) List(ctx context.Context, identity auth.Identity) (dto.MessageListResponse, error) {
	messages, err := s.repo.List(ctx, !identity.Authenticated())
	if err != nil {
		return dto.MessageListResponse{}, readFailure("list messages", err)
	}
	return dto.MessageListResponse{
		Visibility: dto.NewVisibility(identity),
		Messages:   dto.NewMessageResponseSlice(messages),
	}, nil
}

func (s *messageService) Create(ctx context.Context, identity auth.Identity, payload dto.MessageRequest) (dto.CreatedResponse, error) {
	if err := authorize(identity, auth.ManageAnnouncements); err != nil {
		return dto.CreatedResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CreatedResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.CreatedResponse{}, ErrEmptyContent
	}

	message := models.Message{
		Title:      strings.TrimSpace(payload.Title),
		Content:    content,
		AuthorID:   identity.EvaluatorID,
		AuthorName: identity.Name,
		Public:     payload.Public,
	}
	if err := s.repo.Create(ctx, &message); err != nil {
		return dto.CreatedResponse{}, writeFailure("create message", err)
	}

	audit(ctx, s.activity, s.logger, identity, "message.create", "message", message.ID, map[string]interface{}{"public": message.Public})
	return dto.CreatedResponse{ID: message.ID}, nil
}

func (s *messageService) Update(ctx context.Context, identity auth.Identity, id uint, payload dto.MessageUpdateRequest) error {
	if err := authorize(identity, auth.ManageAnnouncements); err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if payload.Title != nil {
		updates["message_title"] = strings.TrimSpace(*payload.Title)
	}
	if payload.Content != nil {
		content := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Content))
		if content == "" {
			return ErrEmptyContent
		}
		updates["message_content"] = content
	}
	if payload.Public != nil {
		updates["public"] = *payload.Public
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return mutationFailure("update message", err, ErrMessageNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "message.update", "message", id, nil)
	return nil
}

func (s *messageService) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	if err := authorize(identity, auth.ManageAnnouncements); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationFailure("delete message", err, ErrMessageNotFound)
	}

	audit(ctx, s.activity, s.logger, identity, "message.delete", "message", id, nil)
	return nil
}
