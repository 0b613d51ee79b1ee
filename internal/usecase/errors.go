package usecase

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
)

// surface passes classified errors through untouched. Anything else is an
// infrastructure fault: it is logged with its cause and replaced by an opaque
// ErrPersistence so internals never reach the caller.
func surface(logger zerolog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}

	if domain.IsClassified(err) {
		return err
	}

	logger.Error().Err(err).Str("op", op).Msg("persistence failure")

	return fmt.Errorf("%s: %w", op, domain.ErrPersistence)
}

// errorReason maps an error to a low-cardinality metric label.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "persistence"
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
