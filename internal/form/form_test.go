package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/store"
)

// failingStore fails every mutation with err.
type failingStore struct {
	store.Store
	err error
}

func (f failingStore) Create(context.Context, model.Section, model.Item) (model.Item, error) {
	return nil, f.err
}

func (f failingStore) Update(context.Context, model.Section, int, model.Item) (model.Item, error) {
	return nil, f.err
}

func newController(t *testing.T) (*Controller, store.Store) {
	t.Helper()
	st := store.NewLocal(store.NewMemoryKV())
	return New(st), st
}

func TestOpenCreateClearsAndSwitchesSection(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.OpenCreate(model.SectionLinks))
	require.NoError(t, c.Set("title", "draft"))

	require.NoError(t, c.OpenCreate(model.SectionJobs))
	assert.Equal(t, Creating, c.State())
	assert.Equal(t, model.SectionJobs, c.Section())
	assert.Equal(t, map[string]string{"job_title": "", "company": "", "requirements": "", "you_do": ""}, c.Values())
}

func TestSaveCreateClosesForm(t *testing.T) {
	ctx := context.Background()
	c, st := newController(t)
	require.NoError(t, c.OpenCreate(model.SectionTodo))
	require.NoError(t, c.Set("title", "Buy milk"))

	section, saved, err := c.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SectionTodo, section)
	assert.Equal(t, 1, saved.Base().ID)
	assert.Equal(t, Closed, c.State())

	items, err := st.List(ctx, model.SectionTodo)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSaveValidationKeepsState(t *testing.T) {
	c, st := newController(t)
	require.NoError(t, c.OpenCreate(model.SectionLinks))
	require.NoError(t, c.Set("title", "Go"))

	_, _, err := c.Save(context.Background())
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"url"}, verr.Missing)
	assert.Equal(t, Creating, c.State())
	v, _ := c.Value("title")
	assert.Equal(t, "Go", v)

	items, err := st.List(context.Background(), model.SectionLinks)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOpenEditPopulatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	c, st := newController(t)
	created, err := st.Create(ctx, model.SectionAssignments, &model.Assignment{Subject: "Math", Title: "HW", Due: "2025-05-01"})
	require.NoError(t, err)

	require.NoError(t, c.OpenEdit(ctx, model.SectionAssignments, created.Base().ID))
	assert.Equal(t, Editing, c.State())
	assert.Equal(t, created.Base().ID, c.EditingID())
	assert.Equal(t, "Math", c.Values()["subject"])

	require.NoError(t, c.Set("title", "HW 2"))
	_, saved, err := c.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.Base().ID, saved.Base().ID)
	assert.Equal(t, "HW 2", saved.(*model.Assignment).Title)

	items, err := st.List(ctx, model.SectionAssignments)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestOpenEditUnchangedSaveKeepsItem(t *testing.T) {
	ctx := context.Background()
	c, st := newController(t)
	created, err := st.Create(ctx, model.SectionTodo, &model.Todo{Title: "x", Description: "d"})
	require.NoError(t, err)
	_, err = st.Toggle(ctx, model.SectionTodo, created.Base().ID)
	require.NoError(t, err)

	require.NoError(t, c.OpenEdit(ctx, model.SectionTodo, created.Base().ID))
	_, saved, err := c.Save(ctx)
	require.NoError(t, err)

	got := saved.(*model.Todo)
	assert.Equal(t, created.Base().ID, got.ID)
	assert.Equal(t, "x", got.Title)
	assert.Equal(t, "d", got.Description)
	assert.True(t, got.Completed)
}

func TestOpenEditMissingLeavesState(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.OpenCreate(model.SectionJobs))
	err := c.OpenEdit(context.Background(), model.SectionJobs, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, Creating, c.State())
}

func TestSaveStoreFailureKeepsState(t *testing.T) {
	boom := errors.New("boom")
	c := New(failingStore{err: boom})
	require.NoError(t, c.OpenCreate(model.SectionTodo))
	require.NoError(t, c.Set("title", "x"))

	_, _, err := c.Save(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Creating, c.State())
	assert.Equal(t, "x", c.Values()["title"])
}

func TestClosedForm(t *testing.T) {
	c, _ := newController(t)
	_, _, err := c.Save(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Set("title", "x"), ErrClosed)

	require.NoError(t, c.OpenCreate(model.SectionTodo))
	c.Cancel()
	assert.False(t, c.IsOpen())
	assert.Nil(t, c.Draft())
}
