package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// WinnerService manages winning entries.
type WinnerService interface {
	List(ctx context.Context, identity auth.Identity, contestID *uint) (dto.WinnerListResponse, error)
	Set(ctx context.Context, identity auth.Identity, entryID uint, winner bool) error
}

type winnerService struct {
	entries  repository.EntryRepository
	results  ResultsInvalidator
	events   EventPublisher
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewWinnerService constructs the winner service.
func NewWinnerService(entries repository.EntryRepository, results ResultsInvalidator, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger) WinnerService {
	return &winnerService{
		entries:  entries,
		results:  results,
		events:   events,
		activity: activity,
		logger:   logger.With().Str("component", "winner_service").Logger(),
	}
}

func (s *winnerService) List(ctx context.Context, identity auth.Identity, contestID *uint) (dto.WinnerListResponse, error) {
	winners, err := s.entries.ListWinners(ctx, contestID)
	if err != nil {
		return dto.WinnerListResponse{}, readFailure("list winners", err)
	}
	return dto.WinnerListResponse{
		Visibility: dto.NewVisibility(identity),
		Winners:    dto.NewWinnerResponseSlice(winners),
	}, nil
}

func (s *winnerService) Set(ctx context.Context, identity auth.Identity, entryID uint, winner bool) error {
	if err := authorize(identity, auth.ManageWinners); err != nil {
		return err
	}

	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return lookupFailure("get entry", err, ErrEntryNotFound)
	}
	if err := s.entries.SetWinner(ctx, entryID, winner); err != nil {
		return mutationFailure("set winner", err, ErrEntryNotFound)
	}

	s.results.Invalidate(ctx, entry.ContestID)
	s.events.Publish(ctx, Event{
		Name:       EventWinnersChanged,
		ContestID:  entry.ContestID,
		EntryID:    entryID,
		ActorID:    identity.EvaluatorID,
		Attributes: map[string]interface{}{"winner": winner},
	})

	action := "winner.set"
	if !winner {
		action = "winner.unset"
	}
	audit(ctx, s.activity, s.logger, identity, action, "entry", entryID, nil)
	return nil
}
