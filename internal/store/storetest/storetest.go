// Package storetest exercises any store.Store against the behaviour every
// backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/store"
)

// Run runs the shared suite. newStore must return an empty store for each call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("CreateAssignsUniqueIDs", func(t *testing.T) { testCreateAssignsUniqueIDs(t, newStore(t)) })
	t.Run("DeleteRemovesExactlyOne", func(t *testing.T) { testDeleteRemovesExactlyOne(t, newStore(t)) })
	t.Run("ToggleRoundTrip", func(t *testing.T) { testToggleRoundTrip(t, newStore(t)) })
	t.Run("EditWithoutChanges", func(t *testing.T) { testEditWithoutChanges(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("Validation", func(t *testing.T) { testValidation(t, newStore(t)) })
	t.Run("ToggleOnlyTodo", func(t *testing.T) { testToggleOnlyTodo(t, newStore(t)) })
	t.Run("BuyMilkScenario", func(t *testing.T) { testBuyMilkScenario(t, newStore(t)) })
}

// Samples returns one valid draft per section.
func Samples() map[model.Section]model.Item {
	return map[model.Section]model.Item{
		model.SectionTodo:        &model.Todo{Title: "Buy milk", Description: "2L"},
		model.SectionLinks:       &model.Link{Title: "Go", URL: "https://go.dev", Description: "docs"},
		model.SectionAssignments: &model.Assignment{Subject: "Math", Title: "Homework 3", Due: "2025-05-01"},
		model.SectionJobs:        &model.Job{JobTitle: "Backend engineer", Company: "Acme", Requirements: "Go", YouDo: "APIs"},
	}
}

func testCreateAssignsUniqueIDs(t *testing.T, st store.Store) {
	ctx := context.Background()
	for section, draft := range Samples() {
		a, err := st.Create(ctx, section, draft)
		require.NoError(t, err, section)
		b, err := st.Create(ctx, section, draft)
		require.NoError(t, err, section)
		assert.NotEqual(t, a.Base().ID, b.Base().ID, section)
		assert.False(t, a.Base().CreatedAt.IsZero(), section)

		items, err := st.List(ctx, section)
		require.NoError(t, err, section)
		require.Len(t, items, 2, section)
		assert.Equal(t, a.Base().ID, items[0].Base().ID, "insertion order")
		assert.Equal(t, b.Base().ID, items[1].Base().ID, "insertion order")
	}
}

func testDeleteRemovesExactlyOne(t *testing.T, st store.Store) {
	ctx := context.Background()
	draft := Samples()[model.SectionLinks]
	var ids []int
	for range 3 {
		it, err := st.Create(ctx, model.SectionLinks, draft)
		require.NoError(t, err)
		ids = append(ids, it.Base().ID)
	}
	require.NoError(t, st.Delete(ctx, model.SectionLinks, ids[1]))

	items, err := st.List(ctx, model.SectionLinks)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ids[0], items[0].Base().ID)
	assert.Equal(t, ids[2], items[1].Base().ID)

	_, err = st.Get(ctx, model.SectionLinks, ids[1])
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
}

func testToggleRoundTrip(t *testing.T, st store.Store) {
	ctx := context.Background()
	it, err := st.Create(ctx, model.SectionTodo, &model.Todo{Title: "Walk"})
	require.NoError(t, err)
	id := it.Base().ID

	once, err := st.Toggle(ctx, model.SectionTodo, id)
	require.NoError(t, err)
	assert.True(t, once.(*model.Todo).Completed)

	twice, err := st.Toggle(ctx, model.SectionTodo, id)
	require.NoError(t, err)
	assert.False(t, twice.(*model.Todo).Completed)
}

func testEditWithoutChanges(t *testing.T, st store.Store) {
	ctx := context.Background()
	for section, draft := range Samples() {
		created, err := st.Create(ctx, section, draft)
		require.NoError(t, err, section)
		got, err := st.Get(ctx, section, created.Base().ID)
		require.NoError(t, err, section)

		updated, err := st.Update(ctx, section, created.Base().ID, got)
		require.NoError(t, err, section)
		assert.Equal(t, got.Base().ID, updated.Base().ID, section)
		assert.True(t, got.Base().CreatedAt.Equal(updated.Base().CreatedAt.Time), section)
		assertSameFields(t, got, updated)
	}
}

func testNotFound(t *testing.T, st store.Store) {
	ctx := context.Background()
	_, err := st.Get(ctx, model.SectionJobs, 42)
	assert.True(t, errors.Is(err, store.ErrNotFound), "get: %v", err)
	_, err = st.Update(ctx, model.SectionJobs, 42, Samples()[model.SectionJobs])
	assert.True(t, errors.Is(err, store.ErrNotFound), "update: %v", err)
	err = st.Delete(ctx, model.SectionJobs, 42)
	assert.True(t, errors.Is(err, store.ErrNotFound), "delete: %v", err)
	_, err = st.Toggle(ctx, model.SectionTodo, 42)
	assert.True(t, errors.Is(err, store.ErrNotFound), "toggle: %v", err)
}

func testValidation(t *testing.T, st store.Store) {
	ctx := context.Background()
	_, err := st.Create(ctx, model.SectionLinks, &model.Link{Title: "no url"})
	require.Error(t, err)
	items, err := st.List(ctx, model.SectionLinks)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func testToggleOnlyTodo(t *testing.T, st store.Store) {
	ctx := context.Background()
	it, err := st.Create(ctx, model.SectionJobs, Samples()[model.SectionJobs])
	require.NoError(t, err)
	_, err = st.Toggle(ctx, model.SectionJobs, it.Base().ID)
	assert.Error(t, err)
}

func testBuyMilkScenario(t *testing.T, st store.Store) {
	ctx := context.Background()
	created, err := st.Create(ctx, model.SectionTodo, &model.Todo{Title: "Buy milk"})
	require.NoError(t, err)

	items, err := st.List(ctx, model.SectionTodo)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].(*model.Todo).Completed)

	id := created.Base().ID
	it, err := st.Toggle(ctx, model.SectionTodo, id)
	require.NoError(t, err)
	assert.True(t, it.(*model.Todo).Completed)
	it, err = st.Toggle(ctx, model.SectionTodo, id)
	require.NoError(t, err)
	assert.False(t, it.(*model.Todo).Completed)

	require.NoError(t, st.Delete(ctx, model.SectionTodo, id))
	items, err = st.List(ctx, model.SectionTodo)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func assertSameFields(t *testing.T, want, got model.Item) {
	t.Helper()
	for _, f := range model.FieldsOf(want.Section()) {
		w, err := model.Value(want, f.Name)
		require.NoError(t, err)
		g, err := model.Value(got, f.Name)
		require.NoError(t, err)
		assert.Equal(t, w, g, "%s.%s", want.Section(), f.Name)
	}
	if w, ok := want.(*model.Todo); ok {
		assert.Equal(t, w.Completed, got.(*model.Todo).Completed)
	}
}
