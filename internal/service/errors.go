package service

import (
	"errors"
	"fmt"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

var (
	// ErrUnauthenticated is returned when the caller presented no valid identity.
	ErrUnauthenticated = errors.New("you must be logged in to perform this action")
	// ErrForbidden is returned when the caller lacks the required capability.
	ErrForbidden = errors.New("you do not have permission to perform this action")

	ErrContestNotFound    = errors.New("contest not found")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrEvaluatorNotFound  = errors.New("evaluator not found")
	ErrGroupNotFound      = errors.New("judging group not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrContestantNotFound = errors.New("contestant not found")
	ErrNoEntryAvailable   = errors.New("no entries left to judge")
	ErrVoteNotFound       = errors.New("vote not found")

	ErrDuplicateEvaluation = errors.New("entry has already been evaluated by this evaluator")
	ErrDuplicateVote       = errors.New("entry has already been voted for by this evaluator")
	ErrDuplicateEvaluator  = errors.New("an evaluator with this username or email already exists")

	ErrVotingClosed      = errors.New("voting is not enabled for this contest")
	ErrAccountLocked     = errors.New("account is locked")
	ErrUnknownCapability = errors.New("unknown permission")
	ErrInvalidLevel      = errors.New("invalid skill level")
	ErrUnsupportedImport = errors.New("unsupported import format")
	ErrEmptyContent      = errors.New("content is empty after sanitization")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
)

// DataAccessError wraps a failed persistence step. Read failures surface as
// 500, write failures as 400.
type DataAccessError struct {
	Op   string
	Read bool
	Err  error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

func readFailure(op string, err error) error {
	return &DataAccessError{Op: op, Read: true, Err: err}
}

func writeFailure(op string, err error) error {
	return &DataAccessError{Op: op, Err: err}
}

// lookupFailure maps a missing row to notFound and anything else to a read failure.
func lookupFailure(op string, err error, notFound error) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return readFailure(op, err)
}

// mutationFailure maps a missing row to notFound and anything else to a write failure.
func mutationFailure(op string, err error, notFound error) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return writeFailure(op, err)
}

// authorize gates an operation on a capability. Admins pass every gate.
func authorize(identity auth.Identity, capability auth.Capability) error {
	if !identity.Authenticated() {
		return ErrUnauthenticated
	}
	if !identity.Can(capability) {
		return ErrForbidden
	}
	return nil
}

func requireUser(identity auth.Identity) error {
	if !identity.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// authorizeOwnerOr passes the owner, admins and holders of the override capability.
func authorizeOwnerOr(identity auth.Identity, ownerID uint, override auth.Capability) error {
	if !identity.Authenticated() {
		return ErrUnauthenticated
	}
	if identity.Owns(ownerID) || identity.Can(override) {
		return nil
	}
	return ErrForbidden
}
