package trajectory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateInitialAndGetCurrent(t *testing.T) {
	s := tempDB(t)
	start := Initial(sentropy.Coord{Sk: 0.1, St: 0.2, Se: 0.3})

	rec, err := s.CreateInitial("run-a", start)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.VersionID)
	assert.Empty(t, rec.ParentID)
	assert.Equal(t, 0, rec.Step)

	cur, err := s.GetCurrent("run-a")
	require.NoError(t, err)
	assert.Equal(t, rec.VersionID, cur.VersionID)
	assert.Equal(t, start, cur.State)

	_, err = s.GetCurrent("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateInitialAssignsRunID(t *testing.T) {
	s := tempDB(t)
	rec, err := s.CreateInitial("", Initial(sentropy.Origin()))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.RunID)

	runs, err := s.Runs()
	require.NoError(t, err)
	assert.Equal(t, []string{rec.RunID}, runs)
}

func TestCommitAndRollback(t *testing.T) {
	s := tempDB(t)
	v1, err := s.CreateInitial("run", Initial(sentropy.Origin()))
	require.NoError(t, err)

	v2 := NewRecord(v1, v1.State.TransitionTo(sentropy.Coord{Sk: 0.5}))
	v2.MetricsJSON = `{"distance":0.5}`
	require.NoError(t, s.Commit(v2))

	cur, err := s.GetCurrent("run")
	require.NoError(t, err)
	assert.Equal(t, v2.VersionID, cur.VersionID)
	assert.Equal(t, v1.VersionID, cur.ParentID)
	assert.Equal(t, 1, cur.Step)
	assert.Equal(t, []sentropy.Coord{sentropy.Origin()}, cur.State.History)
	assert.Equal(t, `{"distance":0.5}`, cur.MetricsJSON)

	require.NoError(t, s.Rollback(v1.VersionID))
	cur, err = s.GetCurrent("run")
	require.NoError(t, err)
	assert.Equal(t, v1.VersionID, cur.VersionID)

	// v2 survives rollback
	got, err := s.GetVersion(v2.VersionID)
	require.NoError(t, err)
	assert.Equal(t, v2.VersionID, got.VersionID)

	assert.ErrorIs(t, s.Rollback("nope"), ErrNotFound)
}

func TestCommitRejectsUnknownParent(t *testing.T) {
	s := tempDB(t)
	_, err := s.CreateInitial("run", Initial(sentropy.Origin()))
	require.NoError(t, err)

	orphan := Record{
		VersionID: "orphan",
		ParentID:  "does-not-exist",
		RunID:     "run",
		Step:      1,
		State:     Initial(sentropy.Origin()),
		CreatedAt: time.Now().UTC(),
	}
	assert.Error(t, s.Commit(orphan))
}

func TestListVersionsAndLineage(t *testing.T) {
	s := tempDB(t)
	root, err := s.CreateInitial("run", Initial(sentropy.Origin()))
	require.NoError(t, err)
	other, err := s.CreateInitial("other", Initial(sentropy.Origin()))
	require.NoError(t, err)

	prev := root
	for i := 1; i <= 4; i++ {
		next := NewRecord(prev, prev.State.TransitionTo(sentropy.Coord{Sk: float64(i) / 10}))
		require.NoError(t, s.Commit(next))
		prev = next
	}

	list, err := s.ListVersions("run", 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 4, list[0].Step)
	assert.Equal(t, 2, list[2].Step)

	all, err := s.ListVersions("other", 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other.VersionID, all[0].VersionID)

	chain, err := s.Lineage(prev.VersionID)
	require.NoError(t, err)
	require.Len(t, chain, 5)
	assert.Equal(t, root.VersionID, chain[0].VersionID)
	for i, rec := range chain {
		assert.Equal(t, i, rec.Step)
		assert.Len(t, rec.State.History, i)
	}

	_, err = s.Lineage("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
