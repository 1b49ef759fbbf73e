package calendar

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/calgate/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T, uid string) (context.Context, *RepositoryImpl, int) {
	ctx, u := test_utils.CreateTestUser(t, db, uid)
	return ctx, NewRepository(db), u.Id
}

func TestRepositoryImpl_StoreAndGetEvents(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t, "calendar-repo-1")
	start := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	// when
	uid, err := repo.StoreEvent(ctx, userId, Event{
		Title:     "Team Meeting",
		StartTime: start,
		EndTime:   start.Add(90 * time.Minute),
		Color:     "#257e4a",
		Metadata:  EventMetadata{Description: "Weekly team sync", Location: "Conference Room A"},
	})
	require.NoError(t, err)

	// then
	events, err := repo.GetEvents(ctx, userId, start.Add(time.Hour), start.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uid, events[0].UID)
	assert.Equal(t, "Conference Room A", events[0].Metadata.Location)
	assert.True(t, start.Equal(events[0].StartTime))

	outside, err := repo.GetEvents(ctx, userId, start.Add(2*time.Hour), start.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, outside)
}

func TestRepositoryImpl_GetEvents_RangeEndsAreExclusive(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t, "calendar-repo-4")
	from := time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	for _, e := range []Event{
		{Title: "ends at from", StartTime: from.Add(-time.Hour), EndTime: from},
		{Title: "starts at to", StartTime: to, EndTime: to.Add(time.Hour)},
		{Title: "inside", StartTime: from.Add(15 * time.Minute), EndTime: from.Add(30 * time.Minute)},
	} {
		_, err := repo.StoreEvent(ctx, userId, e)
		require.NoError(t, err)
	}

	// when
	events, err := repo.GetEvents(ctx, userId, from, to)

	// then
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "inside", events[0].Title)
}

func TestRepositoryImpl_UpdateAndDelete(t *testing.T) {
	ctx, repo, userId := setupTestRepository(t, "calendar-repo-2")
	start := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)
	uid, err := repo.StoreEvent(ctx, userId, Event{Title: "Lunch Break", StartTime: start, EndTime: start.Add(time.Hour)})
	require.NoError(t, err)

	err = repo.UpdateEvent(ctx, userId, Event{UID: uid, Title: "Long Lunch", StartTime: start, EndTime: start.Add(2 * time.Hour)})
	require.NoError(t, err)
	stored, err := repo.GetEvent(ctx, userId, uid)
	require.NoError(t, err)
	assert.Equal(t, "Long Lunch", stored.Title)

	assert.ErrorIs(t, repo.UpdateEvent(ctx, userId+1000, stored), ErrEventNotFound)

	require.NoError(t, repo.DeleteEvent(ctx, userId, uid))
	_, err = repo.GetEvent(ctx, userId, uid)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, repo.DeleteEvent(ctx, userId, uid), ErrEventNotFound)
}

func TestRepositoryImpl_WithTransactionRollsBack(t *testing.T) {
	ctx, repo, userId := setupTestRepository(t, "calendar-repo-3")
	start := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)

	err := repo.WithTransaction(ctx, func(tx Repository) error {
		_, err := tx.StoreEvent(ctx, userId, Event{Title: "Discarded", StartTime: start, EndTime: start.Add(time.Hour)})
		require.NoError(t, err)
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	events, err := repo.GetEvents(ctx, userId, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}
