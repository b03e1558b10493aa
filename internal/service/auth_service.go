package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// AuthService re-issues session tokens from the current evaluator row.
type AuthService interface {
	Refresh(ctx context.Context, identity auth.Identity) (dto.TokenResponse, error)
}

type authService struct {
	evaluators repository.EvaluatorRepository
	secret     string
	ttl        time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService constructs the token refresh service.
func NewAuthService(evaluators repository.EvaluatorRepository, secret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		evaluators: evaluators,
		secret:     secret,
		ttl:        ttl,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

func (s *authService) Refresh(ctx context.Context, identity auth.Identity) (dto.TokenResponse, error) {
	if err := requireUser(identity); err != nil {
		return dto.TokenResponse{}, err
	}

	evaluator, err := s.evaluators.GetByID(ctx, identity.EvaluatorID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.TokenResponse{}, ErrUnauthenticated
		}
		return dto.TokenResponse{}, readFailure("load evaluator", err)
	}
	if evaluator.AccountLocked {
		return dto.TokenResponse{}, ErrAccountLocked
	}

	now := s.now()
	token, err := auth.Sign(s.secret, IdentityFromEvaluator(evaluator), s.ttl, now)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	if evaluator.TokenRefreshRequired {
		if err := s.evaluators.ClearRefreshFlag(ctx, evaluator.ID); err != nil {
			return dto.TokenResponse{}, writeFailure("clear refresh flag", err)
		}
	}

	s.logger.Info().Uint("evaluator_id", evaluator.ID).Msg("session token refreshed")
	return dto.TokenResponse{Token: token, ExpiresAt: now.Add(s.ttl).UTC()}, nil
}
