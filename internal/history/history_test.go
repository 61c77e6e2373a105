package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillmatch/internal/jobs"
	"github.com/spigell/skillmatch/internal/matching"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older, err := s.Save(ctx, Record{
		Profile:     "ada",
		Kind:        KindProfile,
		Target:      "frontend",
		Score:       49,
		Matched:     []string{"React", "HTML"},
		Missing:     []string{"TypeScript"},
		Recommended: []string{"TypeScript"},
		CreatedAt:   base,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, older.ID)

	newer, err := s.Save(ctx, Record{
		Profile:   "ada",
		Kind:      KindJob,
		Target:    "Full Stack Engineer at Globex",
		Score:     50,
		Matched:   []string{"React", "Docker"},
		Missing:   nil,
		CreatedAt: base.Add(time.Second),
	})
	require.NoError(t, err)

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, KindJob, got[0].Kind)
	assert.Equal(t, []string{}, got[0].Missing)
	assert.Equal(t, []string{}, got[0].Recommended)
	assert.True(t, got[0].CreatedAt.Equal(newer.CreatedAt))

	assert.Equal(t, older.ID, got[1].ID)
	assert.Equal(t, "frontend", got[1].Target)
	assert.Equal(t, 49, got[1].Score)
	assert.Equal(t, []string{"React", "HTML"}, got[1].Matched)
	assert.Equal(t, []string{"TypeScript"}, got[1].Recommended)

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newer.ID, limited[0].ID)
}

func TestSaveFillsDefaults(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	before := time.Now().Add(-time.Second)

	saved, err := s.Save(context.Background(), Record{Kind: KindProfile})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.True(t, saved.CreatedAt.After(before))
	assert.Equal(t, time.UTC, saved.CreatedAt.Location())
}

func TestSaveRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := openStore(t).Save(context.Background(), Record{Kind: "vacancy"})
	require.Error(t, err)
}

func TestSaveDuplicateID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)
	id := uuid.New()

	_, err := s.Save(ctx, Record{ID: id, Kind: KindProfile})
	require.NoError(t, err)
	_, err = s.Save(ctx, Record{ID: id, Kind: KindProfile})
	require.Error(t, err)
}

func TestListEmpty(t *testing.T) {
	t.Parallel()

	got, err := openStore(t).List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReopenKeepsRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	saved, err := s.Save(ctx, Record{Profile: "ada", Kind: KindProfile, Score: 10})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, saved.ID, got[0].ID)
}

func TestOpenEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestFromResult(t *testing.T) {
	t.Parallel()

	r := FromResult("ada", []string{"frontend", "design"}, matching.Result{
		Score:             49,
		MatchedSkills:     []string{"React"},
		MissingSkills:     []string{"CSS"},
		RecommendedSkills: []string{"CSS"},
	})

	assert.Equal(t, Record{
		Profile:     "ada",
		Kind:        KindProfile,
		Target:      "frontend,design",
		Score:       49,
		Matched:     []string{"React"},
		Missing:     []string{"CSS"},
		Recommended: []string{"CSS"},
	}, r)
}

func TestFromJobMatch(t *testing.T) {
	t.Parallel()

	m := matching.JobMatch{JobID: "2", Match: 50, MatchedSkills: []string{"React"}, MissingSkills: []string{"Node.js"}}

	r := FromJobMatch("ada", jobs.Posting{ID: "2", Title: "Full Stack Engineer", Company: "Globex"}, m)
	assert.Equal(t, KindJob, r.Kind)
	assert.Equal(t, "Full Stack Engineer at Globex", r.Target)
	assert.Equal(t, 50, r.Score)
	assert.Equal(t, []string{"Node.js"}, r.Missing)

	r = FromJobMatch("ada", jobs.Posting{Title: "Designer"}, m)
	assert.Equal(t, "Designer", r.Target)
}
