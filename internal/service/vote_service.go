package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// VoteService lets evaluators vote for entries of contests with voting enabled.
type VoteService interface {
	Cast(ctx context.Context, identity auth.Identity, entryID uint) (dto.VoteResponse, error)
	Retract(ctx context.Context, identity auth.Identity, entryID uint) (dto.VoteResponse, error)
}

type voteService struct {
	votes    repository.VoteRepository
	entries  repository.EntryRepository
	contests repository.ContestRepository
	results  ResultsInvalidator
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewVoteService constructs the vote service.
func NewVoteService(votes repository.VoteRepository, entries repository.EntryRepository, contests repository.ContestRepository, results ResultsInvalidator, activity ActivityRecorder, logger zerolog.Logger) VoteService {
	return &voteService{
		votes:    votes,
		entries:  entries,
		contests: contests,
		results:  results,
		activity: activity,
		logger:   logger.With().Str("component", "vote_service").Logger(),
	}
}

func (s *voteService) Cast(ctx context.Context, identity auth.Identity, entryID uint) (dto.VoteResponse, error) {
	contestID, err := s.votable(ctx, identity, entryID)
	if err != nil {
		return dto.VoteResponse{}, err
	}

	votes, err := s.votes.Cast(ctx, entryID, identity.EvaluatorID)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return dto.VoteResponse{}, ErrDuplicateVote
		}
		return dto.VoteResponse{}, writeFailure("cast vote", err)
	}

	s.results.Invalidate(ctx, contestID)
	audit(ctx, s.activity, s.logger, identity, "vote.cast", "entry", entryID, nil)
	return dto.VoteResponse{EntryID: entryID, Votes: votes}, nil
}

func (s *voteService) Retract(ctx context.Context, identity auth.Identity, entryID uint) (dto.VoteResponse, error) {
	contestID, err := s.votable(ctx, identity, entryID)
	if err != nil {
		return dto.VoteResponse{}, err
	}

	votes, err := s.votes.Retract(ctx, entryID, identity.EvaluatorID)
	if err != nil {
		return dto.VoteResponse{}, mutationFailure("retract vote", err, ErrVoteNotFound)
	}

	s.results.Invalidate(ctx, contestID)
	audit(ctx, s.activity, s.logger, identity, "vote.retract", "entry", entryID, nil)
	return dto.VoteResponse{EntryID: entryID, Votes: votes}, nil
}

// votable checks the capability, the entry and that its contest accepts votes.
func (s *voteService) votable(ctx context.Context, identity auth.Identity, entryID uint) (uint, error) {
	if err := authorize(identity, auth.VoteEntries); err != nil {
		return 0, err
	}

	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return 0, lookupFailure("get entry", err, ErrEntryNotFound)
	}
	contest, err := s.contests.GetByID(ctx, entry.ContestID)
	if err != nil {
		return 0, lookupFailure("get contest", err, ErrContestNotFound)
	}
	if !contest.VotingEnabled {
		return 0, ErrVotingClosed
	}
	return contest.ID, nil
}
