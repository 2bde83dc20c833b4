// Package store holds the gorm-backed repositories.
package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evmeri/internal/apperr"
)

// translate maps gorm errors onto the application's sentinel errors.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, apperr.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// validUUID guards uuid columns from malformed path values, which postgres
// would reject with a syntax error instead of an empty result.
func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
