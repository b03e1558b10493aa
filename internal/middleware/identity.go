package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

// SessionStore reports the current account status behind a signed token.
type SessionStore interface {
	SessionState(ctx context.Context, evaluatorID uint) (auth.SessionState, error)
}

// Session statuses recorded on the request by Identify.
const (
	sessionLocalsKey       = "session_status"
	sessionLocked          = "locked"
	sessionRefreshRequired = "refresh_required"
)

// Identify decodes the session token from the Authorization header or the
// auth cookie and stores the caller identity on the request context. A missing
// or invalid token leaves the caller anonymous; rejection is left to WithAuth
// and the services.
//
// When sessions is set every signed token is checked against the evaluator
// row. Tokens of deleted or locked accounts resolve to an anonymous caller.
// Tokens whose account is flagged for refresh keep their identity but are
// refused by WithAuth until the caller refreshes.
func Identify(secret, cookieName string, sessions SessionStore, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" && cookieName != "" {
			token = strings.TrimSpace(c.Cookies(cookieName))
		}
		if token == "" || secret == "" {
			return c.Next()
		}

		identity, err := auth.Parse(secret, token)
		if err != nil {
			logger.Debug().
				Str("correlation_id", GetCorrelationID(c)).
				Msg("ignoring invalid session token")
			return c.Next()
		}

		if sessions != nil {
			state, err := sessions.SessionState(c.UserContext(), identity.EvaluatorID)
			if err != nil {
				logger.Error().
					Err(err).
					Str("correlation_id", GetCorrelationID(c)).
					Uint("evaluator_id", identity.EvaluatorID).
					Msg("failed to load session state")
				return utils.SendError(c, fiber.StatusInternalServerError, utils.UnexpectedErrorMessage)
			}
			switch {
			case !state.Found:
				return c.Next()
			case state.Locked:
				c.Locals(sessionLocalsKey, sessionLocked)
				return c.Next()
			case state.RefreshRequired:
				c.Locals(sessionLocalsKey, sessionRefreshRequired)
			}
		}

		c.SetUserContext(auth.WithIdentity(c.UserContext(), identity))
		return c.Next()
	}
}

// IdentityFrom returns the caller identity resolved for the request.
func IdentityFrom(c *fiber.Ctx) auth.Identity {
	return auth.FromContext(c.UserContext())
}

func sessionStatus(c *fiber.Ctx) string {
	status, _ := c.Locals(sessionLocalsKey).(string)
	return status
}

func bearerToken(header string) string {
	const bearer = "bearer "
	header = strings.TrimSpace(header)
	if len(header) <= len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return ""
	}
	return strings.TrimSpace(header[len(bearer):])
}
