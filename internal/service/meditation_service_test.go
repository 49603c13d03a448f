package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMeditationService(t *testing.T) (*MeditationService, *testStore, *time.Time) {
	t.Helper()
	store := newTestStore(t)
	svc := NewMeditationService(store.meditations, nil)
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, store, &now
}

func TestMeditationService_StartAndComplete(t *testing.T) {
	svc, store, now := newMeditationService(t)
	ctx := context.Background()

	started, err := svc.Start(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, started.Duration)
	assert.False(t, started.Completed)
	assert.Nil(t, started.CompletedAt)
	assert.True(t, started.StartedAt.Equal(*now))

	*now = now.Add(10 * time.Minute)
	done, err := svc.Complete(ctx, 1, started.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	firstCompletion := *done.CompletedAt

	// 再次完成保留第一次的完成时间
	*now = now.Add(time.Hour)
	again, err := svc.Complete(ctx, 1, started.ID)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, again.CompletedAt.Equal(firstCompletion))

	stored, err := store.meditations.GetByID(ctx, started.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)

	n, err := store.meditations.CountCompletedByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMeditationService_OtherUserCannotComplete(t *testing.T) {
	svc, store, _ := newMeditationService(t)
	ctx := context.Background()

	started, err := svc.Start(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMeditationMinutes, started.Duration)

	_, err = svc.Complete(ctx, 2, started.ID)
	assert.ErrorIs(t, err, ErrMeditationNotFound)

	stored, err := store.meditations.GetByID(ctx, started.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed, "a foreign completion must not change the record")

	for _, id := range []string{"", "  ", "missing"} {
		_, err = svc.Complete(ctx, 1, id)
		assert.ErrorIs(t, err, ErrMeditationNotFound, id)
	}
}

func TestMeditationService_InvalidDuration(t *testing.T) {
	svc, _, _ := newMeditationService(t)

	for _, minutes := range []int{-1, MaxMeditationMinutes + 1} {
		_, err := svc.Start(context.Background(), 1, minutes)
		assert.ErrorIs(t, err, ErrInvalidDuration, minutes)
	}
	_, err := svc.Start(context.Background(), 1, MaxMeditationMinutes)
	assert.NoError(t, err)
}
