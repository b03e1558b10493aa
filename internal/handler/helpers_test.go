package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judging-admin-api/internal/service"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

func TestClassify(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	validationErr := validator.New().Struct(payload{})
	require.Error(t, validationErr)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthenticated", service.ErrUnauthenticated, fiber.StatusUnauthorized, "Unauthenticated"},
		{"forbidden", service.ErrForbidden, fiber.StatusForbidden, "Unauthorized"},
		{"wrapped forbidden", fmt.Errorf("update task: %w", service.ErrForbidden), fiber.StatusForbidden, "Unauthorized"},
		{"locked", service.ErrAccountLocked, fiber.StatusForbidden, service.ErrAccountLocked.Error()},
		{"missing contest", service.ErrContestNotFound, fiber.StatusNotFound, "contest not found"},
		{"nothing to judge", service.ErrNoEntryAvailable, fiber.StatusNotFound, service.ErrNoEntryAvailable.Error()},
		{"duplicate evaluation", service.ErrDuplicateEvaluation, fiber.StatusConflict, service.ErrDuplicateEvaluation.Error()},
		{"validation", validationErr, fiber.StatusBadRequest, validationErr.Error()},
		{"voting closed", service.ErrVotingClosed, fiber.StatusBadRequest, service.ErrVotingClosed.Error()},
		{"read failure", &service.DataAccessError{Op: "list entries", Read: true, Err: errors.New("db down")}, fiber.StatusInternalServerError, "failed to list entries"},
		{"write failure", &service.DataAccessError{Op: "create entry", Err: errors.New("constraint")}, fiber.StatusBadRequest, "failed to create entry"},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, utils.UnexpectedErrorMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, message := classify(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.message, message)
		})
	}
}

func TestDataAccessErrorHidesDriverDetail(t *testing.T) {
	_, message := classify(&service.DataAccessError{Op: "load results", Read: true, Err: errors.New("pq: password authentication failed")})
	require.NotContains(t, message, "pq:")
}
