// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	// ErrCheckViolation means a row failed a CHECK constraint, an unknown
	// status or an exhausted use budget for instance.
	ErrCheckViolation = errors.New("check constraint violation")
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
	pgErrCodeCheckViolation      = "23514"
)

var constraintErrors = map[string]error{
	pgErrCodeUniqueViolation:     ErrDuplicateKey,
	pgErrCodeForeignKeyViolation: ErrForeignKeyViolation,
	pgErrCodeCheckViolation:      ErrCheckViolation,
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return pgCode(err) == pgErrCodeUniqueViolation
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgErrCodeForeignKeyViolation
}

// classify turns constraint violations into the matching sentinel error
// prefixed with detail. Any other error is wrapped with op.
func classify(err error, op, detail string) error {
	if sentinel, ok := constraintErrors[pgCode(err)]; ok {
		return fmt.Errorf("%s: %w", detail, sentinel)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
