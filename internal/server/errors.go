// Package server provides the HTTP REST API.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/proofdin/proofdin/internal/db"
	"github.com/proofdin/proofdin/internal/ingestion"
	"github.com/proofdin/proofdin/internal/jobs"
	"github.com/proofdin/proofdin/internal/llm"
)

// Errors raised by the job service, re-exported for handlers and tests.
type (
	ErrValidation = jobs.ValidationError
	ErrNotFound   = jobs.NotFoundError
	ErrForbidden  = jobs.ForbiddenError
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// Fixed response messages. errAIUnavailable is the message of every 503.
const (
	errAIUnavailable = "AI service unavailable"
	errInternal      = "Internal server error"
	errFetchFailed   = "Failed to fetch job page"
	errParseFailed   = "Failed to parse job description"
	errResumeFailed  = "Failed to generate resume"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailErr      *ErrEmailAlreadyExists
		credErr       *ErrInvalidCredentials
		validationErr *ErrValidation
		notFoundErr   *ErrNotFound
		forbiddenErr  *ErrForbidden
		fetchErr      *ingestion.FetchError
	)
	switch {
	case errors.As(err, &emailErr), errors.Is(err, db.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.As(err, &credErr):
		return http.StatusUnauthorized
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
