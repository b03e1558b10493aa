package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/middleware"
	"github.com/noah-isme/judging-admin-api/internal/service"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

// AuthHandler re-issues session tokens.
type AuthHandler struct {
	service    service.AuthService
	cookieName string
	secure     bool
	logger     zerolog.Logger
}

// NewAuthHandler constructs the handler. The refreshed token is also written
// to cookieName when it is non-empty.
func NewAuthHandler(service service.AuthService, cookieName string, secure bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		cookieName: cookieName,
		secure:     secure,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/refresh", middleware.WithAuth(h.refresh, middleware.AuthOptions{RequireUser: true, AllowStale: true}))
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	token, err := h.service.Refresh(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, h.logger, err, "refresh token")
	}

	if h.cookieName != "" {
		c.Cookie(&fiber.Cookie{
			Name:     h.cookieName,
			Value:    token.Token,
			Expires:  token.ExpiresAt,
			HTTPOnly: true,
			Secure:   h.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return utils.SendSuccess(c, "token refreshed", token)
}
