// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
)

const (
	tokenBytes     = 32
	tokenLength    = tokenBytes * 2
	tokenQueryName = "token"
)

var ErrInvalidBasePath = errors.New("invalid token base path")

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	now     func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Issue mints a token for purpose, scoped to targetID when it is not empty.
func (s *Service) Issue(ctx context.Context, purpose types.TokenPurpose, targetID string, c Constraints) (*types.AccessToken, error) {
	ctx, span := s.tracer.Start(ctx, "tokens.Service.Issue")
	defer span.End()

	constraints, err := resolveConstraints(purpose, c)
	if err != nil {
		return nil, err
	}

	raw, err := generate()
	if err != nil {
		return nil, err
	}

	t := &types.AccessToken{
		Token:     raw,
		Purpose:   purpose,
		ExpiresAt: s.now().UTC().Add(constraints.ExpiresIn),
		MaxUses:   constraints.MaxUses,
	}
	if targetID != "" {
		t.TargetID = &targetID
	}

	created, err := s.storage.CreateAccessToken(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}

	return created, nil
}

// Validate consumes one use of token for purpose. Any failure, including a
// storage error, reports the token as invalid.
func (s *Service) Validate(ctx context.Context, token string, purpose types.TokenPurpose) (*types.AccessToken, bool) {
	ctx, span := s.tracer.Start(ctx, "tokens.Service.Validate")
	defer span.End()

	outcome := "invalid"
	defer func() {
		s.monitor.IncTokenValidation(map[string]string{"purpose": string(purpose), "outcome": outcome})
	}()

	if !wellFormed(token) {
		outcome = "malformed"
		return nil, false
	}

	t, err := s.storage.ConsumeAccessToken(ctx, token, purpose, s.now().UTC())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			outcome = "error"
			s.logger.Errorf("failed to validate access token: %v", err)
		}
		return nil, false
	}

	outcome = "valid"
	return t, true
}

func generate() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func wellFormed(token string) bool {
	if len(token) != tokenLength {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

// BuildURL appends token to basePath. basePath must be an absolute path or
// URL with no query string or fragment of its own.
func BuildURL(basePath, token string) (string, error) {
	if basePath == "" || strings.ContainsAny(basePath, "?#") {
		return "", ErrInvalidBasePath
	}

	u, err := url.Parse(basePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	if !u.IsAbs() && !strings.HasPrefix(u.Path, "/") {
		return "", ErrInvalidBasePath
	}

	if u.IsAbs() && u.Host == "" {
		return "", ErrInvalidBasePath
	}

	if !wellFormed(token) {
		return "", fmt.Errorf("malformed token")
	}

	return basePath + "?" + url.Values{tokenQueryName: {token}}.Encode(), nil
}

func NewService(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.storage = storage
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
