package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidReference = errors.New("invalid reference")
	ErrConstraint       = errors.New("constraint violation")

	// ErrInvalidValue is a value Postgres cannot parse or store in the column.
	ErrInvalidValue = errors.New("invalid value")
)

// Postgres SQLSTATE codes we translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"

	codeInvalidText      = "22P02"
	codeNumericRange     = "22003"
	codeDatetimeFormat   = "22007"
	codeDatetimeOverflow = "22008"
)

// translate maps driver errors onto the storage sentinels, keeping the
// Postgres detail in the message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, detail(pqErr))
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInvalidReference, detail(pqErr))
		case codeCheckViolation, codeNotNullViolation:
			return fmt.Errorf("%w: %s", ErrConstraint, detail(pqErr))
		case codeInvalidText, codeNumericRange, codeDatetimeFormat, codeDatetimeOverflow:
			return fmt.Errorf("%w: %s", ErrInvalidValue, detail(pqErr))
		}
	}
	return err
}

func detail(e *pq.Error) string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
