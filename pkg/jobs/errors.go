// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import "errors"

var (
	ErrNotRetryable = errors.New("job is not in failed state")
	// ErrAlreadyQueued is returned by Enqueue when a live job holds the same
	// dedupe key.
	ErrAlreadyQueued = errors.New("job is already queued")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying, the job goes straight to failed.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
