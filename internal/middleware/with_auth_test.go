package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/middleware"
)

const testSecret = "test-secret"

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zerolog.Nop())})
	app.Use(middleware.Identify(testSecret, "jwtToken", nil, zerolog.Nop()))
	return app
}

func token(t *testing.T, identity auth.Identity) string {
	t.Helper()
	signed, err := auth.Sign(testSecret, identity, time.Hour, time.Now())
	require.NoError(t, err)
	return signed
}

func perform(t *testing.T, app *fiber.App, bearer string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestWithAuthRejectsAnonymousWithoutCallingHandler(t *testing.T) {
	app := newApp(t)
	called := false
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		called = true
		return c.SendStatus(fiber.StatusOK)
	}, middleware.Require(auth.EditContests)))

	resp := perform(t, app, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.False(t, called)

	resp = perform(t, app, "not-a-token")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.False(t, called)
}

func TestWithAuthRejectsMissingCapability(t *testing.T) {
	app := newApp(t)
	called := false
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		called = true
		return c.SendStatus(fiber.StatusOK)
	}, middleware.Require(auth.EditContests)))

	resp := perform(t, app, token(t, auth.Identity{EvaluatorID: 3, Permissions: auth.NewSet(auth.JudgeEntries)}))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.False(t, called)

	resp = perform(t, app, token(t, auth.Identity{EvaluatorID: 3, Permissions: auth.NewSet(auth.EditContests)}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, called)
}

func TestWithAuthLetsAdminsThrough(t *testing.T) {
	app := newApp(t)
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}, middleware.Require(auth.DeleteUsers)))

	resp := perform(t, app, token(t, auth.Identity{EvaluatorID: 1, IsAdmin: true}))
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestWithAuthAllowsAnonymousWhenOptedIn(t *testing.T) {
	app := newApp(t)
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		if middleware.IdentityFrom(c).Authenticated() {
			return c.SendStatus(fiber.StatusAccepted)
		}
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{}))

	require.Equal(t, fiber.StatusOK, perform(t, app, "").StatusCode)
	require.Equal(t, fiber.StatusAccepted, perform(t, app, token(t, auth.Identity{EvaluatorID: 4})).StatusCode)
}

func TestIdentifyReadsCookie(t *testing.T) {
	app := newApp(t)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"evaluator_id": middleware.IdentityFrom(c).EvaluatorID})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwtToken", Value: token(t, auth.Identity{EvaluatorID: 12})})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]uint
	decode(t, resp, &body)
	require.Equal(t, uint(12), body["evaluator_id"])
}

func TestErrorHandlerHidesUnexpectedFaults(t *testing.T) {
	app := newApp(t)
	app.Get("/", func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused")
	})

	resp := perform(t, app, "")
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	require.Equal(t, "An unexpected error occurred.", body["message"])
	require.Equal(t, float64(500), body["status"])
}

type stubSessions struct {
	states map[uint]auth.SessionState
	err    error
}

func (s stubSessions) SessionState(_ context.Context, evaluatorID uint) (auth.SessionState, error) {
	return s.states[evaluatorID], s.err
}

func TestIdentifyChecksSessionState(t *testing.T) {
	sessions := stubSessions{states: map[uint]auth.SessionState{
		1: {Found: true},
		2: {Found: true, Locked: true},
		3: {Found: true, RefreshRequired: true},
	}}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zerolog.Nop())})
	app.Use(middleware.Identify(testSecret, "jwtToken", sessions, zerolog.Nop()))

	calls := 0
	gated := middleware.WithAuth(func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(fiber.StatusOK)
	}, middleware.Require(auth.EditContests))
	app.Get("/", gated)
	app.Post("/refresh", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{RequireUser: true, AllowStale: true}))
	app.Get("/public", func(c *fiber.Ctx) error {
		if middleware.IdentityFrom(c).Authenticated() {
			return c.SendStatus(fiber.StatusAccepted)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	caps := auth.NewSet(auth.EditContests)
	cases := []struct {
		name       string
		evaluator  uint
		status     int
		message    string
		public     int
		refreshing int
	}{
		{name: "active", evaluator: 1, status: fiber.StatusOK, public: fiber.StatusAccepted, refreshing: fiber.StatusOK},
		{name: "locked", evaluator: 2, status: fiber.StatusForbidden, message: middleware.MessageAccountLocked, public: fiber.StatusOK, refreshing: fiber.StatusForbidden},
		{name: "refresh required", evaluator: 3, status: fiber.StatusUnauthorized, message: middleware.MessageRefreshRequired, public: fiber.StatusAccepted, refreshing: fiber.StatusOK},
		{name: "deleted", evaluator: 4, status: fiber.StatusUnauthorized, message: middleware.MessageUnauthenticated, public: fiber.StatusOK, refreshing: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bearer := token(t, auth.Identity{EvaluatorID: tc.evaluator, Permissions: caps})

			resp := perform(t, app, bearer)
			require.Equal(t, tc.status, resp.StatusCode)
			if tc.message != "" {
				var body map[string]interface{}
				decode(t, resp, &body)
				require.Equal(t, tc.message, body["message"])
			}

			req := httptest.NewRequest(http.MethodGet, "/public", nil)
			req.Header.Set("Authorization", "Bearer "+bearer)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, tc.public, resp.StatusCode)

			req = httptest.NewRequest(http.MethodPost, "/refresh", nil)
			req.Header.Set("Authorization", "Bearer "+bearer)
			resp, err = app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, tc.refreshing, resp.StatusCode)
		})
	}
	require.Equal(t, 1, calls)
}

func TestIdentifyFailsClosedWhenSessionLookupFails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zerolog.Nop())})
	app.Use(middleware.Identify(testSecret, "jwtToken", stubSessions{err: errors.New("db down")}, zerolog.Nop()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp := perform(t, app, token(t, auth.Identity{EvaluatorID: 1}))
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp = perform(t, app, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
