package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-service/internal/reconcile/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sample() model.Result {
	rec := model.Record{Left: model.Key{"acme"}, Right: model.Key{"acme"}, Score: 100, Status: model.StatusMatched}
	return model.Result{
		Records: []model.Record{rec},
		Matched: []model.Record{rec},
		Stats:   model.Stats{TotalA: 1, TotalB: 1, Matched: 1, PercentA: "100.00%", PercentB: "100.00%"},
		Opts:    model.Options{Threshold: 80, Scorer: "token_sort", Dedupe: true},
		MapA:    model.Mapping{Sheet: "A", Columns: []string{"Name"}, HeaderRow: 1},
		MapB:    model.Mapping{Sheet: "B", Columns: []string{"Name"}, HeaderRow: 1},
	}
}

func TestStore_PutGet(t *testing.T) {
	s := openTemp(t)

	id, err := s.Put(sample())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Get(id)
	require.NoError(t, err)
	want := sample()
	want.ID = id
	assert.Equal(t, want, got)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTemp(t)

	_, err := s.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := openTemp(t)

	id, err := s.Put(sample())
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	_, err = s.Get(id)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Delete(id), ErrNotFound)
}

func TestStore_Prune(t *testing.T) {
	s := openTemp(t)

	id, err := s.Put(sample())
	require.NoError(t, err)

	n, err := s.Prune(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// при отрицательном возрасте устарело всё
	n, err = s.Prune(-time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReopenKeepsResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Put(sample())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}
