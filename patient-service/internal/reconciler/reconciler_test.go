package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu        sync.Mutex
	pending   []*models.Patient
	err       error
	olderThan time.Time
	states    []models.SyncState
	limit     int
	calls     int
	touched   []string
	touchErr  error
}

func (f *fakeLister) ListPending(_ context.Context, states []models.SyncState, olderThan time.Time, limit int) ([]*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.states, f.olderThan, f.limit = states, olderThan, limit
	return f.pending, f.err
}

func (f *fakeLister) Touch(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return f.touchErr
}

type fakeResumer struct {
	failFor map[string]bool
	resumed []string
}

func (f *fakeResumer) Resume(_ context.Context, p *models.Patient) error {
	if f.failFor[p.ID] {
		return errors.New("billing down")
	}
	f.resumed = append(f.resumed, p.ID)
	return nil
}

func TestRunOnce(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{pending: []*models.Patient{
		{ID: "a", SyncState: models.SyncCreated},
		{ID: "b", SyncState: models.SyncProvisioned},
		{ID: "c", SyncState: models.SyncCreated},
	}}
	resumer := &fakeResumer{failFor: map[string]bool{"b": true}}
	r := New(lister, resumer, Config{MinAge: time.Minute, BatchSize: 10}, zerolog.Nop())
	r.now = func() time.Time { return now }

	res, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Resumed: 2, Failed: 1}, res)
	assert.Equal(t, []string{"a", "c"}, resumer.resumed)
	assert.Equal(t, []string{"b"}, lister.touched)

	assert.Equal(t, now.Add(-time.Minute), lister.olderThan)
	assert.Equal(t, []models.SyncState{models.SyncCreated, models.SyncProvisioned}, lister.states)
	assert.Equal(t, 10, lister.limit)
}

func TestRunOnce_RequeueFailureIsNotFatal(t *testing.T) {
	lister := &fakeLister{
		pending:  []*models.Patient{{ID: "a", SyncState: models.SyncCreated}, {ID: "b", SyncState: models.SyncCreated}},
		touchErr: errors.New("db down"),
	}
	resumer := &fakeResumer{failFor: map[string]bool{"a": true}}
	r := New(lister, resumer, Config{}, zerolog.Nop())

	res, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Resumed: 1, Failed: 1}, res)
	assert.Equal(t, []string{"b"}, resumer.resumed)
}

func TestRunOnce_ListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("db down")}
	r := New(lister, &fakeResumer{}, Config{}, zerolog.Nop())

	_, err := r.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
	assert.Equal(t, 50, lister.limit)
}

func TestRun_DisabledWithZeroInterval(t *testing.T) {
	lister := &fakeLister{}
	r := New(lister, &fakeResumer{}, Config{}, zerolog.Nop())

	assert.NoError(t, r.Run(context.Background()))
	assert.Zero(t, lister.calls)
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	lister := &fakeLister{}
	r := New(lister, &fakeResumer{}, Config{Interval: 5 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		lister.mu.Lock()
		defer lister.mu.Unlock()
		return lister.calls >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
