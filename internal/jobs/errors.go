package jobs

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError indicates request validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NotFoundError indicates a job or candidate does not exist
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ForbiddenError indicates the caller does not own the resource
type ForbiddenError struct {
	Resource string
	ID       uuid.UUID
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("access to %s %s is forbidden", e.Resource, e.ID)
}
