package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillmatch/internal/jobs"
)

func posting(id string) jobs.Posting {
	return jobs.Posting{
		ID:          id,
		Title:       "Frontend Engineer",
		Company:     "Meta",
		Location:    "Remote",
		Salary:      "$135k-$175k",
		Skills:      []string{"React", "TypeScript"},
		Description: "Build UI",
		URL:         "https://jobs.example/" + id,
		Match:       72,
	}
}

func TestSaveJobDeduplicatesByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	added, err := s.SaveJob(ctx, posting("1"))
	require.NoError(t, err)
	assert.True(t, added)

	again := posting("1")
	again.Title = "Changed"
	added, err = s.SaveJob(ctx, again)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = s.SaveJob(ctx, posting("2"))
	require.NoError(t, err)

	saved, err := s.SavedJobs(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "1", saved[0].ID)
	assert.Equal(t, "Frontend Engineer", saved[0].Title)
	assert.Equal(t, []string{"React", "TypeScript"}, saved[0].Skills)
	assert.Equal(t, 72, saved[0].Match)
	assert.False(t, saved[0].SavedAt.IsZero())
	assert.Equal(t, "2", saved[1].ID)
}

func TestSaveJobRequiresID(t *testing.T) {
	t.Parallel()

	_, err := openStore(t).SaveJob(context.Background(), jobs.Posting{Title: "No id"})
	require.Error(t, err)
}

func TestUnsaveJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	_, err := s.SaveJob(ctx, posting("1"))
	require.NoError(t, err)

	saved, err := s.IsJobSaved(ctx, "1")
	require.NoError(t, err)
	assert.True(t, saved)

	removed, err := s.UnsaveJob(ctx, "1")
	require.NoError(t, err)
	assert.True(t, removed)

	saved, err = s.IsJobSaved(ctx, "1")
	require.NoError(t, err)
	assert.False(t, saved)

	removed, err = s.UnsaveJob(ctx, "1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClearSavedJobs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	for _, id := range []string{"1", "2"} {
		_, err := s.SaveJob(ctx, posting(id))
		require.NoError(t, err)
	}
	require.NoError(t, s.ClearSavedJobs(ctx))

	saved, err := s.SavedJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestApplicationLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	app, err := s.AddApplication(ctx, ApplicationFromPosting(posting("7")))
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, StatusApplied, app.Status)
	assert.Equal(t, app.AppliedAt, app.UpdatedAt)

	require.NoError(t, s.UpdateApplicationStatus(ctx, app.ID, StatusInterview))
	require.NoError(t, s.UpdateApplicationNotes(ctx, app.ID, "call on monday"))

	got, ok, err := s.ApplicationByJobID(ctx, "7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, app.ID, got.ID)
	assert.Equal(t, StatusInterview, got.Status)
	assert.Equal(t, "call on monday", got.Notes)
	assert.Equal(t, "Meta", got.Company)
	assert.True(t, got.AppliedAt.Equal(app.AppliedAt))
	assert.False(t, got.UpdatedAt.Before(got.AppliedAt))

	require.NoError(t, s.RemoveApplication(ctx, app.ID))

	_, ok, err = s.ApplicationByJobID(ctx, "7")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplicationErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	_, err := s.AddApplication(ctx, Application{Title: "No job"})
	require.Error(t, err)

	_, err = s.AddApplication(ctx, Application{JobID: "1", Status: "ghosted"})
	require.Error(t, err)

	require.ErrorIs(t, s.UpdateApplicationStatus(ctx, "missing", StatusOffer), ErrNotFound)
	require.ErrorIs(t, s.UpdateApplicationNotes(ctx, "missing", "x"), ErrNotFound)
	require.ErrorIs(t, s.RemoveApplication(ctx, "missing"), ErrNotFound)

	app, err := s.AddApplication(ctx, Application{JobID: "1"})
	require.NoError(t, err)
	require.Error(t, s.UpdateApplicationStatus(ctx, app.ID, "hired"))
}

func TestApplicationsOrderAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	first, err := s.AddApplication(ctx, ApplicationFromPosting(posting("1")))
	require.NoError(t, err)
	second, err := s.AddApplication(ctx, Application{JobID: "2", Status: "OFFER"})
	require.NoError(t, err)
	assert.Equal(t, StatusOffer, second.Status)

	apps, err := s.Applications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, first.ID, apps[0].ID)
	assert.Equal(t, second.ID, apps[1].ID)

	require.NoError(t, s.ClearApplications(ctx))
	apps, err = s.Applications(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for in, expect := range map[string]Status{"applied": StatusApplied, " Interview ": StatusInterview, "OFFER": StatusOffer, "rejected": StatusRejected} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, expect, got)
	}

	_, err := ParseStatus("saved")
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")
	assert.False(t, Exists(path))
	assert.False(t, Exists(dir))

	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.True(t, Exists(path))
}
