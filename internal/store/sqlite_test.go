package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosight/ipastat/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProjectRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateProject(ctx, "left-bank canal", 1250)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "left-bank canal", got.Name)
	assert.Equal(t, 1250.0, got.CCA)
}

func TestGetProject_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.GetProject(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestThresholdsRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, "scheme", 1000)
	require.NoError(t, err)

	require.NoError(t, s.SaveThresholds(ctx, p.ID, model.DefaultThresholds()))

	got, err := s.GetThresholds(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Adequacy)
	assert.Equal(t, 0.5, got.Adequacy.Critical)

	// Saving again replaces the previous payload.
	updated := model.DefaultThresholds()
	updated.Adequacy = &model.Threshold{Critical: 0.6, Target: 0.2}
	require.NoError(t, s.SaveThresholds(ctx, p.ID, updated))

	got, err = s.GetThresholds(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.6, got.Adequacy.Critical)
}

func TestSaveThresholds_RejectsEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.SaveThresholds(context.Background(), "p1", model.ThresholdSet{})
	assert.ErrorIs(t, err, model.ErrEmptyThresholds)
}

func TestGetThresholds_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.GetThresholds(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	r, err := s.CreateRun(ctx, "p1", "adequacy")
	require.NoError(t, err)
	assert.Equal(t, RunStatusPending, r.Status)

	require.NoError(t, s.CompleteRun(ctx, r.ID, `{"kind":"adequacy"}`))

	got, err := s.GetRun(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusComplete, got.Status)
	assert.Equal(t, `{"kind":"adequacy"}`, got.Result)
	assert.Empty(t, got.Error)
}

func TestFailRun(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	r, err := s.CreateRun(ctx, "p1", "equity")
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, r.ID, "no rows"))

	got, err := s.GetRun(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "no rows", got.Error)
	assert.Empty(t, got.Result)
}

func TestUpdateRun_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.CompleteRun(ctx, "no-such-run", "{}"), ErrNotFound)
	assert.ErrorIs(t, s.FailRun(ctx, "no-such-run", "boom"), ErrNotFound)
	_, err := s.GetRun(ctx, "no-such-run")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns_Filters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "p1", "adequacy")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "p1", "equity")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "p2", "adequacy")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, "{}"))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byProject, err := s.ListRuns(ctx, RunFilter{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Len(t, byProject, 2)

	byIndicator, err := s.ListRuns(ctx, RunFilter{Indicator: "adequacy"})
	require.NoError(t, err)
	assert.Len(t, byIndicator, 2)

	byStatus, err := s.ListRuns(ctx, RunFilter{Status: RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, a.ID, byStatus[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
