package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

// Messages sent by the authorization gate.
const (
	MessageUnauthenticated = "Unauthenticated"
	MessageForbidden       = "Unauthorized"
	MessageAccountLocked   = "Account locked"
	MessageRefreshRequired = "Token refresh required"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	// Capability, when set, must be held by the caller unless they are an admin.
	Capability *auth.Capability
	// RequireUser rejects anonymous callers even when no capability is needed.
	RequireUser bool
	// AllowStale admits callers whose account is flagged for a token refresh.
	AllowStale bool
}

// Require is a shorthand for AuthOptions gated on one capability.
func Require(c auth.Capability) AuthOptions {
	return AuthOptions{Capability: &c, RequireUser: true}
}

// WithAuth wraps a handler with the authentication and capability checks. The
// wrapped handler never runs when the caller is rejected.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	requireUser := opts.RequireUser || opts.Capability != nil

	return func(c *fiber.Ctx) error {
		if requireUser {
			switch sessionStatus(c) {
			case sessionLocked:
				return utils.SendError(c, fiber.StatusForbidden, MessageAccountLocked)
			case sessionRefreshRequired:
				if !opts.AllowStale {
					return utils.SendError(c, fiber.StatusUnauthorized, MessageRefreshRequired)
				}
			}
		}

		identity := IdentityFrom(c)
		if requireUser && !identity.Authenticated() {
			return utils.SendError(c, fiber.StatusUnauthorized, MessageUnauthenticated)
		}
		if opts.Capability != nil && !identity.Can(*opts.Capability) {
			return utils.SendError(c, fiber.StatusForbidden, MessageForbidden)
		}
		return handler(c)
	}
}
