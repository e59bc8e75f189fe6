package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/Makepad-fr/cardboard/internal/form"
	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/render"
	"github.com/Makepad-fr/cardboard/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type brokenStore struct {
	store.Store
	section model.Section
}

func (b brokenStore) List(ctx context.Context, s model.Section) ([]model.Item, error) {
	if s == b.section {
		return nil, errors.New("HTTP 500")
	}
	return b.Store.List(ctx, s)
}

func newDashboard(t *testing.T) (*Dashboard, store.Store) {
	t.Helper()
	st := store.NewLocal(store.NewMemoryKV())
	return New(st, zaptest.NewLogger(t)), st
}

func TestLoadAllRendersPlaceholders(t *testing.T) {
	ctx := context.Background()
	d, st := newDashboard(t)
	_, err := st.Create(ctx, model.SectionLinks, &model.Link{Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)

	require.NoError(t, d.LoadAll(ctx))
	for _, s := range model.Sections {
		v := d.View(s)
		assert.True(t, v.Loaded, s)
		if s == model.SectionLinks {
			assert.Len(t, v.Cards, 1)
			assert.Empty(t, v.Placeholder)
			continue
		}
		assert.True(t, v.Empty(), s)
		assert.Equal(t, render.Placeholder(s), v.Placeholder)
	}
}

func TestLoadAllKeepsGoodSectionsOnFailure(t *testing.T) {
	ctx := context.Background()
	st := brokenStore{Store: store.NewLocal(store.NewMemoryKV()), section: model.SectionJobs}
	_, err := st.Create(ctx, model.SectionTodo, &model.Todo{Title: "x"})
	require.NoError(t, err)

	d := New(st, zaptest.NewLogger(t))
	err = d.LoadAll(ctx)
	require.Error(t, err)
	assert.Len(t, d.View(model.SectionTodo).Cards, 1)
	assert.False(t, d.View(model.SectionJobs).Loaded)
}

func TestBuyMilkScenario(t *testing.T) {
	ctx := context.Background()
	d, _ := newDashboard(t)
	require.NoError(t, d.LoadAll(ctx))

	res, err := d.Dispatch(ctx, Action{Kind: ActionOpen, Section: model.SectionTodo})
	require.NoError(t, err)
	assert.Equal(t, form.Creating, res.Form)
	require.NoError(t, d.SetField("title", "Buy milk"))

	res, err = d.Dispatch(ctx, Action{Kind: ActionSave})
	require.NoError(t, err)
	assert.Equal(t, model.SectionTodo, res.Refreshed)
	assert.Equal(t, form.Closed, res.Form)

	v := d.View(model.SectionTodo)
	require.Len(t, v.Cards, 1)
	card := v.Cards[0]
	assert.False(t, card.Done)
	assert.Equal(t, "Mark Done", card.Controls[0].Label)

	_, err = d.Dispatch(ctx, Action{Kind: ActionToggle, Section: model.SectionTodo, ID: card.ID})
	require.NoError(t, err)
	assert.True(t, d.View(model.SectionTodo).Cards[0].Done)

	_, err = d.Dispatch(ctx, Action{Kind: ActionToggle, Section: model.SectionTodo, ID: card.ID})
	require.NoError(t, err)
	assert.False(t, d.View(model.SectionTodo).Cards[0].Done)

	_, err = d.Dispatch(ctx, Action{Kind: ActionDelete, Section: model.SectionTodo, ID: card.ID})
	require.NoError(t, err)
	v = d.View(model.SectionTodo)
	assert.True(t, v.Empty())
	assert.Equal(t, render.Placeholder(model.SectionTodo), v.Placeholder)
}

func TestEditFlow(t *testing.T) {
	ctx := context.Background()
	d, st := newDashboard(t)
	created, err := st.Create(ctx, model.SectionJobs, &model.Job{JobTitle: "dev", Company: "acme"})
	require.NoError(t, err)
	require.NoError(t, d.LoadAll(ctx))

	res, err := d.Dispatch(ctx, Action{Kind: ActionEdit, Section: model.SectionJobs, ID: created.Base().ID})
	require.NoError(t, err)
	assert.Equal(t, form.Editing, res.Form)

	snap := d.Form()
	assert.Equal(t, model.SectionJobs, snap.Section)
	assert.Equal(t, created.Base().ID, snap.ID)
	assert.Equal(t, "acme", snap.Values["company"])

	require.NoError(t, d.SetField("company", "Initech"))
	res, err = d.Dispatch(ctx, Action{Kind: ActionSave})
	require.NoError(t, err)
	assert.Equal(t, model.SectionJobs, res.Refreshed)

	card, ok := d.View(model.SectionJobs).Card(created.Base().ID)
	require.True(t, ok)
	assert.Equal(t, "• Initech", card.Meta[0].Text)
}

func TestSaveValidationFailureChangesNothing(t *testing.T) {
	ctx := context.Background()
	d, _ := newDashboard(t)
	require.NoError(t, d.LoadAll(ctx))
	_, err := d.Dispatch(ctx, Action{Kind: ActionOpen, Section: model.SectionAssignments})
	require.NoError(t, err)

	res, err := d.Dispatch(ctx, Action{Kind: ActionSave})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, form.Creating, res.Form)
	assert.Empty(t, res.Refreshed)
	assert.True(t, d.View(model.SectionAssignments).Empty())
}

func TestDeleteMissingKeepsView(t *testing.T) {
	ctx := context.Background()
	d, st := newDashboard(t)
	_, err := st.Create(ctx, model.SectionLinks, &model.Link{Title: "a", URL: "https://a.example"})
	require.NoError(t, err)
	require.NoError(t, d.LoadAll(ctx))

	_, err = d.Dispatch(ctx, Action{Kind: ActionDelete, Section: model.SectionLinks, ID: 99})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Len(t, d.View(model.SectionLinks).Cards, 1)
}

func TestDispatchRejectsUnknown(t *testing.T) {
	d, _ := newDashboard(t)
	_, err := d.Dispatch(context.Background(), Action{Kind: "archive", Section: model.SectionTodo})
	assert.Error(t, err)
	_, err = d.Dispatch(context.Background(), Action{Kind: ActionReload, Section: "projects"})
	assert.ErrorIs(t, err, model.ErrUnknownSection)
}

func TestOnlyOneFormOpen(t *testing.T) {
	ctx := context.Background()
	d, _ := newDashboard(t)
	_, err := d.Dispatch(ctx, Action{Kind: ActionOpen, Section: model.SectionTodo})
	require.NoError(t, err)
	require.NoError(t, d.SetField("title", "half typed"))
	_, err = d.Dispatch(ctx, Action{Kind: ActionOpen, Section: model.SectionLinks})
	require.NoError(t, err)

	snap := d.Form()
	assert.Equal(t, model.SectionLinks, snap.Section)
	assert.Equal(t, "", snap.Values["title"])

	res, err := d.Dispatch(ctx, Action{Kind: ActionCancel})
	require.NoError(t, err)
	assert.Equal(t, form.Closed, res.Form)
}

type gatedStore struct {
	store.Store
	entered, release chan struct{}
}

func (g gatedStore) Delete(ctx context.Context, s model.Section, id int) error {
	close(g.entered)
	<-g.release
	return g.Store.Delete(ctx, s, id)
}

func TestViewsReadableDuringDispatch(t *testing.T) {
	ctx := context.Background()
	local := store.NewLocal(store.NewMemoryKV())
	_, err := local.Create(ctx, model.SectionTodo, &model.Todo{Title: "x"})
	require.NoError(t, err)
	st := gatedStore{Store: local, entered: make(chan struct{}), release: make(chan struct{})}
	d := New(st, zaptest.NewLogger(t))
	require.NoError(t, d.LoadAll(ctx))

	errc := make(chan error, 1)
	go func() {
		_, err := d.Dispatch(ctx, Action{Kind: ActionDelete, Section: model.SectionTodo, ID: 1})
		errc <- err
	}()
	<-st.entered

	got := make(chan map[model.Section]View, 1)
	go func() { got <- d.Views() }()
	select {
	case views := <-got:
		assert.Len(t, views[model.SectionTodo].Cards, 1)
	case <-time.After(time.Second):
		t.Error("Views blocked on the store call")
	}

	close(st.release)
	require.NoError(t, <-errc)
	assert.True(t, d.View(model.SectionTodo).Empty())
}
