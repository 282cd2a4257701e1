package services

import (
	"errors"

	"github.com/mintlabs/mint-backend/internal/database"
)

var (
	// ErrValidation means caller-supplied data violates a field constraint.
	ErrValidation = errors.New("validation error")

	// ErrInvalidTimestamp means a caller-supplied instant cannot be represented.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrStoreUnavailable means the backend could not be reached or the
	// operation against it failed. Callers decide whether to retry.
	ErrStoreUnavailable = database.ErrStoreUnavailable
)
