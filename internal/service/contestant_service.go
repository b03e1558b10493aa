package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// ContestantService lists contestants, who exist only as entry authors.
type ContestantService interface {
	List(ctx context.Context, identity auth.Identity, search string) (dto.ContestantListResponse, error)
	Entries(ctx context.Context, identity auth.Identity, kaid string) (dto.ContestantEntriesResponse, error)
}

type contestantService struct {
	repo   repository.ContestantRepository
	logger zerolog.Logger
}

// NewContestantService constructs the contestant service.
func NewContestantService(repo repository.ContestantRepository, logger zerolog.Logger) ContestantService {
	return &contestantService{
		repo:   repo,
		logger: logger.With().Str("component", "contestant_service").Logger(),
	}
}

func (s *contestantService) List(ctx context.Context, identity auth.Identity, search string) (dto.ContestantListResponse, error) {
	if err := requireUser(identity); err != nil {
		return dto.ContestantListResponse{}, err
	}

	rows, err := s.repo.List(ctx, search)
	if err != nil {
		return dto.ContestantListResponse{}, readFailure("list contestants", err)
	}

	contestants := make([]dto.ContestantResponse, 0, len(rows))
	for _, row := range rows {
		contestants = append(contestants, dto.ContestantResponse{
			KAID:          row.KAID,
			Name:          row.Name,
			EntryCount:    row.EntryCount,
			ContestCount:  row.ContestCount,
			LatestEntryID: row.LatestEntryID,
		})
	}
	return dto.ContestantListResponse{Visibility: dto.NewVisibility(identity), Contestants: contestants}, nil
}

func (s *contestantService) Entries(ctx context.Context, identity auth.Identity, kaid string) (dto.ContestantEntriesResponse, error) {
	if err := requireUser(identity); err != nil {
		return dto.ContestantEntriesResponse{}, err
	}

	kaid = strings.TrimSpace(kaid)
	entries, err := s.repo.Entries(ctx, kaid)
	if err != nil {
		return dto.ContestantEntriesResponse{}, readFailure("list contestant entries", err)
	}
	if len(entries) == 0 {
		return dto.ContestantEntriesResponse{}, ErrContestantNotFound
	}
	return dto.ContestantEntriesResponse{KAID: kaid, Entries: dto.NewEntryResponseSlice(entries, true)}, nil
}
