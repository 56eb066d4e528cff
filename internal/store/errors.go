package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrConstraint           = errors.New("constraint violation")
)

// StorageError is returned for any failed read or write issued by the store.
type StorageError struct {
	Op     string
	Entity string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// postgres SQLSTATE codes
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

func wrap(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Entity: entity, Err: classify(err)}
}

// classify tags driver errors with the store's sentinels while keeping the
// original error in the chain.
func classify(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %w", ErrReferentialIntegrity, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrReferentialIntegrity, err)
		case pgUniqueViolation, pgNotNullViolation, pgCheckViolation:
			return fmt.Errorf("%w: %w", ErrConstraint, err)
		}
	}
	return err
}
