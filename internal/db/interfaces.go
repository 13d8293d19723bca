// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// DBClientInterface hands out statement builders bound to the transaction in
// the context when there is one, to the pool otherwise.
type DBClientInterface interface {
	Statement(context.Context) sq.StatementBuilderType
	// WithTx commits when fn returns nil. The transaction only opens on the
	// first statement, so fn may run no query at all.
	WithTx(context.Context, func(context.Context) error) error
	// Ping backs the readiness probe.
	Ping(context.Context) error
	Close()
}

type TxInterface interface {
	Commit() error
	Rollback() error
	sq.BaseRunner
}
