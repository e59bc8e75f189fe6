package filekv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/store"
	"github.com/Makepad-fr/cardboard/internal/store/storetest"
)

func TestFileBackedLocal(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		f, err := Open(filepath.Join(t.TempDir(), DataFileName))
		require.NoError(t, err)
		return store.NewLocal(f)
	})
}

func TestOpenSeedsEmptySections(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", DataFileName)
	_, err := Open(p, "todo", "links")
	require.NoError(t, err)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	var doc map[string][]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, map[string][]any{"todo": {}, "links": {}}, doc)
}

func TestOpenKeepsExistingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), DataFileName)
	require.NoError(t, os.WriteFile(p, []byte(`{"todo":[{"id":3,"title":"kept"}]}`), 0o644))

	f, err := Open(p, "todo")
	require.NoError(t, err)
	st := store.NewLocal(f)
	items, err := st.List(context.Background(), model.SectionTodo)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "kept", items[0].(*model.Todo).Title)
}

func TestReadsNaiveCreatedAt(t *testing.T) {
	p := filepath.Join(t.TempDir(), DataFileName)
	doc := `{"todo":[{"id":1,"title":"old","description":"","completed":true,"created_at":"2025-10-15T18:00:00.123456"}],"links":[]}`
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))

	f, err := Open(p, "todo", "links")
	require.NoError(t, err)
	st := store.NewLocal(f)
	ctx := context.Background()

	items, err := st.List(ctx, model.SectionTodo)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, time.Date(2025, 10, 15, 18, 0, 0, 123456000, time.UTC), items[0].Base().CreatedAt.Time)

	// Rewriting the section stores RFC 3339.
	_, err = st.Toggle(ctx, model.SectionTodo, 1)
	require.NoError(t, err)
	raw, err := f.Get(ctx, "todo")
	require.NoError(t, err)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "2025-10-15T18:00:00.123456Z", stored[0]["created_at"])
}

func TestPutKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	f, err := Open(filepath.Join(t.TempDir(), DataFileName), "todo", "jobs")
	require.NoError(t, err)

	require.NoError(t, f.Put(ctx, "jobs", []byte(`[{"id":1}]`)))
	v, err := f.Get(ctx, "todo")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v))

	assert.Error(t, f.Put(ctx, "todo", []byte("{not json")))
}

func TestGetMissingKeyAndEmptyFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), DataFileName)
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	f, err := Open(p)
	require.NoError(t, err)
	v, err := f.Get(context.Background(), "links")
	require.NoError(t, err)
	assert.Nil(t, v)
}
