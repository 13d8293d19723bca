// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
)

// memoryStore implements the claim and transition rules of the SQL storage
// under one mutex.
type memoryStore struct {
	mu   sync.Mutex
	seq  int
	jobs map[string]*types.Job
}

func newMemoryStore() *memoryStore {
	return &memoryStore{jobs: map[string]*types.Job{}}
}

func (m *memoryStore) InsertJob(_ context.Context, j *types.Job) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if j.DedupeKey != nil {
		for _, live := range m.jobs {
			if live.DedupeKey != nil && *live.DedupeKey == *j.DedupeKey &&
				(live.Status == types.JobPending || live.Status == types.JobProcessing) {
				return nil, storage.ErrDuplicateKey
			}
		}
	}

	m.seq++
	stored := *j
	stored.ID = fmt.Sprintf("job-%03d", m.seq)
	stored.Status = types.JobPending
	stored.CreatedAt = time.Date(2026, 3, 1, 0, 0, m.seq, 0, time.UTC)
	m.jobs[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (m *memoryStore) GetJobByID(_ context.Context, id string) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *j
	return &out, nil
}

func claimableAt(j *types.Job, now time.Time) bool {
	switch j.Status {
	case types.JobPending:
		return !j.ScheduledFor.After(now)
	case types.JobProcessing:
		return j.ClaimedUntil != nil && !j.ClaimedUntil.After(now)
	}
	return false
}

func (m *memoryStore) ClaimJobs(_ context.Context, jobTypes []types.JobType, limit uint64, now time.Time, lease time.Duration) ([]*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*types.Job
	for _, j := range m.jobs {
		if slices.Contains(jobTypes, j.Type) && j.Attempts < j.MaxAttempts && claimableAt(j, now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, k int) bool { return due[i].CreatedAt.Before(due[k].CreatedAt) })

	if uint64(len(due)) > limit {
		due = due[:limit]
	}

	until := now.Add(lease)
	claimed := make([]*types.Job, 0, len(due))
	for _, j := range due {
		j.Status = types.JobProcessing
		j.Attempts++
		j.ClaimedUntil = &until
		out := *j
		claimed = append(claimed, &out)
	}

	return claimed, nil
}

func (m *memoryStore) FailAbandonedJobs(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, j := range m.jobs {
		if j.Status == types.JobProcessing && claimableAt(j, now) && j.Attempts >= j.MaxAttempts {
			msg := "claim lease expired on the last attempt"
			j.Status = types.JobFailed
			j.LastError = &msg
			j.ProcessedAt = &now
			j.ClaimedUntil = nil
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) CountUnhandledJobs(_ context.Context, known []types.JobType) (map[types.JobType]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[types.JobType]int{}
	for _, j := range m.jobs {
		if j.Status == types.JobPending && !slices.Contains(known, j.Type) {
			counts[j.Type]++
		}
	}
	return counts, nil
}

func (m *memoryStore) transition(id string, from types.JobStatus, fn func(j *types.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok || j.Status != from {
		return storage.ErrNotFound
	}
	fn(j)
	return nil
}

func (m *memoryStore) CompleteJob(_ context.Context, id string, now time.Time) error {
	return m.transition(id, types.JobProcessing, func(j *types.Job) {
		j.Status = types.JobCompleted
		j.ProcessedAt = &now
		j.LastError = nil
		j.ClaimedUntil = nil
	})
}

func (m *memoryStore) FailJob(_ context.Context, id string, lastError string, terminal bool, retryAt time.Time) error {
	return m.transition(id, types.JobProcessing, func(j *types.Job) {
		j.LastError = &lastError
		j.ClaimedUntil = nil
		if terminal {
			j.Status = types.JobFailed
			j.ProcessedAt = &retryAt
			return
		}
		j.Status = types.JobPending
		j.ScheduledFor = retryAt
	})
}

func (m *memoryStore) RetryJob(_ context.Context, id string, now time.Time) error {
	return m.transition(id, types.JobFailed, func(j *types.Job) {
		j.Status = types.JobPending
		j.Attempts = 0
		j.ScheduledFor = now
		j.ProcessedAt = nil
	})
}

func (m *memoryStore) ListJobsByStatus(_ context.Context, status types.JobStatus, _, _ int64) ([]*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*types.Job
	for _, j := range m.jobs {
		if j.Status == status {
			c := *j
			out = append(out, &c)
		}
	}
	return out, nil
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestQueue(store StorageInterface) *Queue {
	logger := logging.NewNoopLogger()
	q := NewQueue(store, 3, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	q.now = func() time.Time { return testNow }
	return q
}

func newTestWorker(store StorageInterface, backoff time.Duration) *Worker {
	logger := logging.NewNoopLogger()
	w := NewWorker(store, 10, backoff, time.Minute, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	w.now = func() time.Time { return testNow }
	return w
}

func TestSweepAttemptsAreMonotonicAndBounded(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)

	w.Register(types.JobSendEmail, HandlerFunc(func(context.Context, *types.Job) error {
		return errors.New("smtp unavailable")
	}))

	job, err := q.Enqueue(context.Background(), SendEmail{To: "a@example.com", TemplateKey: "welcome"}, EnqueueOptions{})
	require.NoError(t, err)

	previous := 0
	for i := 0; i < 5; i++ {
		_, err := w.Sweep(context.Background())
		require.NoError(t, err)

		current, err := store.GetJobByID(context.Background(), job.ID)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, current.Attempts, previous)
		assert.LessOrEqual(t, current.Attempts, current.MaxAttempts)
		previous = current.Attempts
	}

	final, err := store.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)

	assert.Equal(t, types.JobFailed, final.Status)
	assert.Equal(t, 3, final.Attempts)
	require.NotNil(t, final.LastError)
	assert.Equal(t, "smtp unavailable", *final.LastError)
}

func TestSweepProcessesOldestFirst(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)

	var order []string
	w.Register(types.JobSendEmail, HandlerFunc(func(_ context.Context, job *types.Job) error {
		p, err := Decode[SendEmail](job)
		if err != nil {
			return err
		}
		order = append(order, p.To)
		return nil
	}))

	for _, to := range []string{"first@example.com", "second@example.com", "third@example.com"} {
		_, err := q.Enqueue(context.Background(), SendEmail{To: to, TemplateKey: "welcome"}, EnqueueOptions{})
		require.NoError(t, err)
	}

	res, err := w.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SweepResult{Claimed: 3, Completed: 3}, res)
	assert.Equal(t, []string{"first@example.com", "second@example.com", "third@example.com"}, order)
}

func TestSweepSkipsUnknownTypesWithoutBlockingTheQueue(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)
	w.batchSize = 2

	handled := 0
	w.Register(types.JobSendEmail, HandlerFunc(func(context.Context, *types.Job) error {
		handled++
		return nil
	}))

	var unknown []*types.Job
	for _, tenant := range []string{"tenant-1", "tenant-2"} {
		job, err := q.Enqueue(context.Background(), ProvisionLicense{TenantID: tenant}, EnqueueOptions{})
		require.NoError(t, err)
		unknown = append(unknown, job)
	}

	email, err := q.Enqueue(context.Background(), SendEmail{To: "a@example.com", TemplateKey: "welcome"}, EnqueueOptions{})
	require.NoError(t, err)

	res, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Claimed: 1, Completed: 1}, res)
	assert.Equal(t, 1, handled)

	current, err := store.GetJobByID(context.Background(), email.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobCompleted, current.Status)

	for _, job := range unknown {
		current, err := store.GetJobByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, types.JobPending, current.Status)
		assert.Zero(t, current.Attempts)
	}
}

func TestSweepRecoversFromHandlerPanic(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)

	calls := 0
	w.Register(types.JobSendEmail, HandlerFunc(func(context.Context, *types.Job) error {
		calls++
		if calls == 1 {
			panic("nil template")
		}
		return nil
	}))

	job, err := q.Enqueue(context.Background(), SendEmail{To: "a@example.com", TemplateKey: "welcome"}, EnqueueOptions{})
	require.NoError(t, err)

	var res SweepResult
	require.NotPanics(t, func() { res, err = w.Sweep(context.Background()) })
	require.NoError(t, err)
	assert.Equal(t, 1, res.Retried)

	current, err := store.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobPending, current.Status)
	assert.Equal(t, 1, current.Attempts)
	require.NotNil(t, current.LastError)
	assert.Contains(t, *current.LastError, "panicked")

	res, err = w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Completed)
}

func TestSweepReclaimsJobWhoseLeaseExpired(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)

	clock := testNow
	w.now = func() time.Time { return clock }

	handled := 0
	w.Register(types.JobSendEmail, HandlerFunc(func(context.Context, *types.Job) error {
		handled++
		return nil
	}))

	job, err := q.Enqueue(context.Background(), SendEmail{To: "a@example.com", TemplateKey: "welcome"}, EnqueueOptions{})
	require.NoError(t, err)

	// a worker claims the job and dies before reporting back
	_, err = store.ClaimJobs(context.Background(), []types.JobType{types.JobSendEmail}, 10, clock, w.lease)
	require.NoError(t, err)

	res, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Claimed, "the lease is still running")

	clock = clock.Add(w.lease)

	res, err = w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Completed)
	assert.Equal(t, 1, handled)

	current, err := store.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobCompleted, current.Status)
	assert.Equal(t, 2, current.Attempts, "the lost claim counts against the budget")
}

func TestSweepFailsJobAbandonedOnLastAttempt(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)

	clock := testNow
	w.now = func() time.Time { return clock }
	w.Register(types.JobSendEmail, HandlerFunc(func(context.Context, *types.Job) error { return nil }))

	job, err := q.Enqueue(context.Background(), SendEmail{To: "a@example.com", TemplateKey: "welcome"}, EnqueueOptions{MaxAttempts: 1})
	require.NoError(t, err)

	_, err = store.ClaimJobs(context.Background(), []types.JobType{types.JobSendEmail}, 10, clock, w.lease)
	require.NoError(t, err)

	clock = clock.Add(w.lease + time.Second)

	res, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Abandoned)
	assert.Zero(t, res.Claimed)

	current, err := store.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobFailed, current.Status)
	assert.Equal(t, 1, current.Attempts)
}

func TestSweepHandlerContextIsBoundedByTheLease(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)

	var deadline time.Time
	w.Register(types.JobSendEmail, HandlerFunc(func(ctx context.Context, _ *types.Job) error {
		deadline, _ = ctx.Deadline()
		return nil
	}))

	_, err := q.Enqueue(context.Background(), SendEmail{To: "a@example.com", TemplateKey: "welcome"}, EnqueueOptions{})
	require.NoError(t, err)

	_, err = w.Sweep(context.Background())
	require.NoError(t, err)
	assert.False(t, deadline.IsZero())
}

func TestSweepRunsTasksFirst(t *testing.T) {
	store := newMemoryStore()
	w := newTestWorker(store, 0)

	var ran []string
	w.RegisterTask("expire", func(context.Context) error {
		ran = append(ran, "expire")
		return errors.New("database unavailable")
	})
	w.RegisterTask("cleanup", func(context.Context) error {
		ran = append(ran, "cleanup")
		return nil
	})

	_, err := w.Sweep(context.Background())
	require.NoError(t, err, "task failures do not fail the sweep")
	assert.Equal(t, []string{"expire", "cleanup"}, ran)
}

func TestQueueDedupeKey(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)
	w.Register(types.JobSuspendLicense, HandlerFunc(func(context.Context, *types.Job) error { return nil }))

	opts := EnqueueOptions{DedupeKey: "suspend:lic-1"}

	_, err := q.Enqueue(context.Background(), SuspendLicense{LicenseID: "lic-1"}, opts)
	require.NoError(t, err)

	_, err = q.Enqueue(context.Background(), SuspendLicense{LicenseID: "lic-1"}, opts)
	assert.ErrorIs(t, err, ErrAlreadyQueued)

	_, err = w.Sweep(context.Background())
	require.NoError(t, err)

	_, err = q.Enqueue(context.Background(), SuspendLicense{LicenseID: "lic-1"}, opts)
	assert.NoError(t, err, "a finished job frees its key")
}

func TestSweepPermanentErrorFailsImmediately(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)

	w.Register(types.JobSuspendLicense, HandlerFunc(func(context.Context, *types.Job) error {
		return Permanent(errors.New("license does not exist"))
	}))

	job, err := q.Enqueue(context.Background(), SuspendLicense{LicenseID: "lic-404"}, EnqueueOptions{})
	require.NoError(t, err)

	res, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	current, err := store.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobFailed, current.Status)
	assert.Equal(t, 1, current.Attempts)
}

func TestSweepBackoffDelaysRetry(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, time.Minute)

	w.Register(types.JobSendEmail, HandlerFunc(func(context.Context, *types.Job) error {
		return errors.New("timeout")
	}))

	job, err := q.Enqueue(context.Background(), SendEmail{To: "a@example.com", TemplateKey: "welcome"}, EnqueueOptions{})
	require.NoError(t, err)

	_, err = w.Sweep(context.Background())
	require.NoError(t, err)

	current, err := store.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobPending, current.Status)
	assert.Equal(t, testNow.Add(time.Minute), current.ScheduledFor)

	res, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Claimed, "job is not due yet")
}

func TestConcurrentSweepersNeverDoubleProcess(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)

	var (
		mu    sync.Mutex
		seen  = map[string]int{}
		total = 50
	)

	handler := HandlerFunc(func(_ context.Context, job *types.Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.ID]++
		return nil
	})

	for i := 0; i < total; i++ {
		_, err := q.Enqueue(context.Background(), SendEmail{To: "a@example.com", TemplateKey: "welcome"}, EnqueueOptions{})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		w := newTestWorker(store, 0)
		w.Register(types.JobSendEmail, handler)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = w.Sweep(context.Background())
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "job %s processed more than once", id)
	}
}

func TestQueueRetry(t *testing.T) {
	store := newMemoryStore()
	q := newTestQueue(store)
	w := newTestWorker(store, 0)

	w.Register(types.JobSendEmail, HandlerFunc(func(context.Context, *types.Job) error {
		return Permanent(errors.New("bad address"))
	}))

	job, err := q.Enqueue(context.Background(), SendEmail{To: "x", TemplateKey: "welcome"}, EnqueueOptions{})
	require.NoError(t, err)

	assert.ErrorIs(t, q.Retry(context.Background(), job.ID), ErrNotRetryable, "pending jobs cannot be retried")

	_, err = w.Sweep(context.Background())
	require.NoError(t, err)

	require.NoError(t, q.Retry(context.Background(), job.ID))

	current, err := store.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobPending, current.Status)
	assert.Zero(t, current.Attempts)
}

func TestDecodeRejectsMismatchedType(t *testing.T) {
	job := &types.Job{ID: "job-1", Type: types.JobSendEmail, Payload: []byte(`{"to":"a@example.com"}`)}

	_, err := Decode[SuspendLicense](job)
	assert.True(t, IsPermanent(err))

	p, err := Decode[SendEmail](job)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.To)
}
