package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Makepad-fr/cardboard/internal/dashboard"
	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/store"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

type harness struct {
	t  *testing.T
	m  Model
	st store.Store
}

func newHarness(t *testing.T, st store.Store) *harness {
	t.Helper()
	if st == nil {
		st = store.NewLocal(store.NewMemoryKV())
	}
	d := dashboard.New(st, zaptest.NewLogger(t))
	h := &harness{t: t, m: New(context.Background(), d, zaptest.NewLogger(t)), st: st}
	h.settle(h.m.Init())
	return h
}

// settle runs cmd and feeds back the store-bound messages it produces.
// Slow commands (cursor blinks) and anything else are not followed.
func (h *harness) settle(cmd tea.Cmd) {
	h.t.Helper()
	for cmd != nil {
		c := cmd
		out := make(chan tea.Msg, 1)
		go func() { out <- c() }()
		var msg tea.Msg
		select {
		case msg = <-out:
		case <-time.After(200 * time.Millisecond):
			return
		}
		switch msg.(type) {
		case loadedMsg, actionMsg:
		default:
			return
		}
		var next tea.Model
		next, cmd = h.m.Update(msg)
		h.m = next.(Model)
	}
}

func (h *harness) press(msgs ...tea.Msg) {
	h.t.Helper()
	for _, msg := range msgs {
		next, cmd := h.m.Update(msg)
		h.m = next.(Model)
		h.settle(cmd)
	}
}

func (h *harness) items(section model.Section) []model.Item {
	h.t.Helper()
	items, err := h.st.List(context.Background(), section)
	require.NoError(h.t, err)
	return items
}

func TestAddToggleDeleteTask(t *testing.T) {
	h := newHarness(t, nil)
	assert.Contains(t, h.m.View(), "No tasks yet")

	h.press(runes("a"))
	require.NotNil(t, h.m.form)
	assert.Contains(t, h.m.View(), "Add task")

	h.press(runes("Buy milk"), keyCtrlS)
	assert.Nil(t, h.m.form)
	items := h.items(model.SectionTodo)
	require.Len(t, items, 1)
	assert.Equal(t, "Buy milk", items[0].(*model.Todo).Title)
	assert.Contains(t, h.m.View(), "Buy milk")

	h.press(keySpace)
	assert.True(t, h.items(model.SectionTodo)[0].(*model.Todo).Completed)
	h.press(keySpace)
	assert.False(t, h.items(model.SectionTodo)[0].(*model.Todo).Completed)

	h.press(runes("d"))
	require.NotNil(t, h.m.confirm)
	assert.Contains(t, h.m.View(), `Delete "Buy milk"?`)
	h.press(runes("n"))
	assert.Len(t, h.items(model.SectionTodo), 1)

	h.press(runes("d"), runes("y"))
	assert.Empty(t, h.items(model.SectionTodo))
	assert.Contains(t, h.m.View(), "No tasks yet")
}

func TestValidationKeepsFormOpenAndShakes(t *testing.T) {
	h := newHarness(t, nil)
	h.press(keyTab) // links
	assert.Equal(t, model.SectionLinks, h.m.section())

	h.press(runes("a"), runes("Go"), keyCtrlS)
	require.NotNil(t, h.m.form)
	assert.Equal(t, "missing required field(s): url", h.m.form.err)
	assert.Equal(t, 0, h.m.shake)
	assert.Empty(t, h.items(model.SectionLinks))

	h.press(shakeMsg{})
	assert.Equal(t, 1, h.m.shake)

	h.press(keyEnter, runes("https://go.dev"), keyEnter, runes("docs"), keyCtrlS)
	assert.Nil(t, h.m.form)
	items := h.items(model.SectionLinks)
	require.Len(t, items, 1)
	assert.Equal(t, "https://go.dev", items[0].(*model.Link).URL)
	assert.Equal(t, "docs", items[0].(*model.Link).Description)
}

func TestEditPrefillsAndCancel(t *testing.T) {
	st := store.NewLocal(store.NewMemoryKV())
	_, err := st.Create(context.Background(), model.SectionJobs, &model.Job{JobTitle: "Dev", Company: "Acme"})
	require.NoError(t, err)
	h := newHarness(t, st)

	h.press(keyTab, keyTab, keyTab) // jobs
	h.press(runes("e"))
	require.NotNil(t, h.m.form)
	assert.Equal(t, "Acme", h.m.form.values()["company"])
	assert.Contains(t, h.m.View(), "Edit job #1")

	h.press(keyEsc)
	assert.Nil(t, h.m.form)

	h.press(runes("e"), runes("!"), keyCtrlS)
	job := h.items(model.SectionJobs)[0].(*model.Job)
	assert.Equal(t, "Dev!", job.JobTitle)
	assert.Equal(t, "Acme", job.Company)
}

func TestToggleOnlyOnTasks(t *testing.T) {
	h := newHarness(t, nil)
	h.press(keyTab, keySpace)
	assert.Equal(t, "only tasks can be marked done", h.m.status)
}

type brokenStore struct{ store.Store }

func (brokenStore) Delete(context.Context, model.Section, int) error {
	return errors.New("disk on fire")
}

func TestStoreFailureShowsAlert(t *testing.T) {
	st := store.NewLocal(store.NewMemoryKV())
	_, err := st.Create(context.Background(), model.SectionTodo, &model.Todo{Title: "x"})
	require.NoError(t, err)
	h := newHarness(t, brokenStore{st})

	h.press(runes("d"), runes("y"))
	assert.Contains(t, h.m.alert, "disk on fire")
	assert.Contains(t, h.m.View(), "disk on fire")

	h.press(runes("z"))
	assert.Empty(t, h.m.alert)
	assert.Len(t, h.items(model.SectionTodo), 1)
}

func TestExternalChangeReloads(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.st.Create(context.Background(), model.SectionTodo, &model.Todo{Title: "from elsewhere"})
	require.NoError(t, err)
	assert.NotContains(t, h.m.View(), "from elsewhere")

	h.press(externalChangeMsg{})
	assert.Contains(t, h.m.View(), "from elsewhere")
}

func TestQuit(t *testing.T) {
	h := newHarness(t, nil)
	_, cmd := h.m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// slowStore holds Toggle until released.
type slowStore struct {
	store.Store
	entered chan struct{}
	release chan struct{}
}

func (s slowStore) Toggle(ctx context.Context, section model.Section, id int) (model.Item, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.Store.Toggle(ctx, section, id)
}

func TestRenderingDoesNotWaitForStore(t *testing.T) {
	st := store.NewLocal(store.NewMemoryKV())
	_, err := st.Create(context.Background(), model.SectionTodo, &model.Todo{Title: "slow one"})
	require.NoError(t, err)
	slow := slowStore{Store: st, entered: make(chan struct{}), release: make(chan struct{})}
	var once sync.Once
	release := func() { once.Do(func() { close(slow.release) }) }
	t.Cleanup(release)
	h := newHarness(t, slow)

	next, cmd := h.m.Update(keySpace)
	h.m = next.(Model)
	require.NotNil(t, cmd)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	<-slow.entered

	rendered := make(chan string, 1)
	go func() {
		m, _ := h.m.Update(keyTab)
		rendered <- m.View()
	}()
	select {
	case v := <-rendered:
		assert.Contains(t, v, "No saved links yet.")
	case <-time.After(time.Second):
		t.Fatal("rendering blocked on an in-flight store call")
	}

	release()
	next, _ = h.m.Update(<-done)
	h.m = next.(Model)
	assert.Equal(t, "updated", h.m.status)
	assert.True(t, h.items(model.SectionTodo)[0].(*model.Todo).Completed)
	assert.True(t, h.m.views[model.SectionTodo].Cards[0].Done)
}
