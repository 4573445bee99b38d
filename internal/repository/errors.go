package repository

import (
	"errors"

	"gorm.io/gorm"

	apperrors "socialbook/internal/errors"
)

// translate maps translated GORM constraint errors onto storage sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrUniqueViolation
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.ErrForeignKeyViolation
	default:
		return err
	}
}
