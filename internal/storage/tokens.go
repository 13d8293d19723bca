// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-access-service/internal/types"
)

var tokenColumns = []string{"id", "token", "purpose", "target_id", "expires_at", "max_uses", "uses_count", "created_at"}

func scanToken(row sq.RowScanner) (*types.AccessToken, error) {
	var (
		t       types.AccessToken
		purpose string
	)

	if err := row.Scan(&t.ID, &t.Token, &purpose, &t.TargetID, &t.ExpiresAt, &t.MaxUses, &t.UsesCount, &t.CreatedAt); err != nil {
		return nil, err
	}

	t.Purpose = types.TokenPurpose(purpose)
	return &t, nil
}

func (s *Storage) CreateAccessToken(ctx context.Context, t *types.AccessToken) (*types.AccessToken, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateAccessToken")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("access_tokens").
		Columns("id", "token", "purpose", "target_id", "expires_at", "max_uses", "uses_count").
		Values(id.String(), t.Token, string(t.Purpose), t.TargetID, t.ExpiresAt, t.MaxUses, 0).
		Suffix("RETURNING " + strings.Join(tokenColumns, ", ")).
		QueryRowContext(ctx)

	created, err := scanToken(row)
	if err != nil {
		return nil, classify(err, "insert access token", "access token collision")
	}

	return created, nil
}

func (s *Storage) GetAccessToken(ctx context.Context, token string) (*types.AccessToken, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetAccessToken")
	defer span.End()

	t, err := scanToken(
		s.db.Statement(ctx).
			Select(tokenColumns...).
			From("access_tokens").
			Where(sq.Eq{"token": token}).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return t, nil
}

// ConsumeAccessToken validates and consumes one use of a token in a single
// conditional update, two concurrent callers racing for the last use cannot
// both succeed. ErrNotFound covers every reason the token is unusable.
func (s *Storage) ConsumeAccessToken(ctx context.Context, token string, purpose types.TokenPurpose, now time.Time) (*types.AccessToken, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ConsumeAccessToken")
	defer span.End()

	t, err := scanToken(
		s.db.Statement(ctx).
			Update("access_tokens").
			Set("uses_count", sq.Expr("uses_count + 1")).
			Where(sq.Eq{"token": token, "purpose": string(purpose)}).
			Where(sq.Gt{"expires_at": now}).
			Where("uses_count < max_uses").
			Suffix("RETURNING " + strings.Join(tokenColumns, ", ")).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to consume access token: %w", err)
	}

	return t, nil
}
