// Package tui is the interactive terminal dashboard: one tab per section,
// a card list in each, and a form overlay for adding and editing.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Makepad-fr/cardboard/internal/dashboard"
	"github.com/Makepad-fr/cardboard/internal/form"
	"github.com/Makepad-fr/cardboard/internal/model"
)

type (
	// Messages from store-bound commands carry the section views as they
	// were when the command finished, so rendering never touches the
	// dashboard.
	loadedMsg struct {
		views map[model.Section]dashboard.View
		err   error
	}

	actionMsg struct {
		action dashboard.Action
		res    dashboard.Result
		views  map[model.Section]dashboard.View
		form   *dashboard.FormSnapshot // set when a form was opened
		err    error
	}

	// externalChangeMsg is sent when the data file changed on disk.
	externalChangeMsg struct{}

	shakeMsg struct{}
)

// shakeFrames are the horizontal offsets of the form after a failed save.
var shakeFrames = []int{2, -2, 2, -2, 1, -1, 0}

const shakeInterval = 35 * time.Millisecond

type Model struct {
	ctx  context.Context
	dash *dashboard.Dashboard
	log  *zap.Logger

	keys     keyMap
	formKeys formKeys
	help     help.Model

	active int
	views  map[model.Section]dashboard.View
	lists  []list.Model
	loaded bool

	form    *formView
	shake   int // index into shakeFrames, -1 when still
	confirm *dashboard.Action
	alert   string
	status  string

	width, height int
}

func New(ctx context.Context, dash *dashboard.Dashboard, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		ctx:      ctx,
		dash:     dash,
		log:      log,
		keys:     defaultKeys(),
		formKeys: defaultFormKeys(),
		help:     help.New(),
		shake:    -1,
		views:    make(map[model.Section]dashboard.View, len(model.Sections)),
		width:    80,
		height:   24,
	}
	for range model.Sections {
		l := list.New(nil, cardDelegate{}, 0, 0)
		l.SetShowTitle(false)
		l.SetShowHelp(false)
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(false)
		l.SetShowPagination(true)
		l.DisableQuitKeybindings()
		l.Styles.PaginationStyle = helpStyle
		m.lists = append(m.lists, l)
	}
	m.resize()
	return m
}

func (m Model) Init() tea.Cmd { return m.loadAll() }

func (m Model) section() model.Section { return model.Sections[m.active] }

func (m Model) loadAll() tea.Cmd {
	ctx, d := m.ctx, m.dash
	return func() tea.Msg {
		err := d.LoadAll(ctx)
		return loadedMsg{views: d.Views(), err: err}
	}
}

func (m Model) dispatch(a dashboard.Action) tea.Cmd {
	ctx, d := m.ctx, m.dash
	return func() tea.Msg { return finish(ctx, d, a) }
}

// finish dispatches a and snapshots what the model needs to render the
// outcome.
func finish(ctx context.Context, d *dashboard.Dashboard, a dashboard.Action) actionMsg {
	res, err := d.Dispatch(ctx, a)
	msg := actionMsg{action: a, res: res, views: d.Views(), err: err}
	if err == nil && (a.Kind == dashboard.ActionOpen || a.Kind == dashboard.ActionEdit) {
		f := d.Form()
		msg.form = &f
	}
	return msg
}

// save pushes the form inputs into the dashboard form, then saves it.
func (m Model) save() tea.Cmd {
	ctx, d := m.ctx, m.dash
	values := m.form.values()
	a := dashboard.Action{Kind: dashboard.ActionSave, Section: m.form.section}
	return func() tea.Msg {
		for name, v := range values {
			if err := d.SetField(name, v); err != nil {
				return actionMsg{action: a, views: d.Views(), err: err}
			}
		}
		return finish(ctx, d, a)
	}
}

func shakeTick() tea.Cmd {
	return tea.Tick(shakeInterval, func(time.Time) tea.Msg { return shakeMsg{} })
}

// sync stores the views and copies them into the lists, keeping each
// cursor.
func (m *Model) sync(views map[model.Section]dashboard.View) {
	next := make(map[model.Section]dashboard.View, len(model.Sections))
	for s, v := range m.views {
		next[s] = v
	}
	for s, v := range views {
		next[s] = v
	}
	m.views = next
	for i, s := range model.Sections {
		v := m.views[s]
		idx := m.lists[i].Index()
		m.lists[i].SetItems(cardItems(v.Cards))
		if n := len(v.Cards); n > 0 {
			if idx >= n {
				idx = n - 1
			}
			m.lists[i].Select(idx)
		}
	}
}

func (m *Model) resize() {
	h := m.height - 7
	if h < 3 {
		h = 3
	}
	for i := range m.lists {
		m.lists[i].SetSize(m.width-4, h)
	}
	m.help.Width = m.width
}

func (m Model) selected() (cardItem, bool) {
	it, ok := m.lists[m.active].SelectedItem().(cardItem)
	return it, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.loaded = true
		m.sync(msg.views)
		if msg.err != nil {
			m.alert = msg.err.Error()
		}
		return m, nil

	case externalChangeMsg:
		m.status = "data file changed, reloading"
		return m, m.loadAll()

	case actionMsg:
		return m.onAction(msg)

	case shakeMsg:
		if m.shake < 0 {
			return m, nil
		}
		m.shake++
		if m.shake >= len(shakeFrames) {
			m.shake = -1
			return m, nil
		}
		return m, shakeTick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.alert != "":
			m.alert = ""
			return m, nil
		case m.confirm != nil:
			return m.onConfirmKey(msg)
		case m.form != nil:
			return m.onFormKey(msg)
		}
		return m.onListKey(msg)
	}

	if m.form != nil {
		return m, m.form.current().update(msg)
	}
	var cmd tea.Cmd
	m.lists[m.active], cmd = m.lists[m.active].Update(msg)
	return m, cmd
}

func (m Model) onAction(msg actionMsg) (tea.Model, tea.Cmd) {
	m.sync(msg.views)
	if msg.err != nil {
		m.log.Debug("action failed", zap.Stringer("action", msg.action), zap.Error(msg.err))
		var verr *model.ValidationError
		if m.form != nil && msg.action.Kind == dashboard.ActionSave && errors.As(msg.err, &verr) {
			m.form.err = verr.Error()
			m.shake = 0
			return m, shakeTick()
		}
		m.alert = msg.err.Error()
		return m, nil
	}

	switch msg.action.Kind {
	case dashboard.ActionOpen, dashboard.ActionEdit:
		if msg.res.Form != form.Closed && msg.form != nil {
			m.form = newFormView(*msg.form)
			return m, m.form.focusFirst()
		}
	case dashboard.ActionSave:
		m.form, m.shake = nil, -1
		m.status = "saved"
	case dashboard.ActionCancel:
		m.form, m.shake = nil, -1
	case dashboard.ActionDelete:
		m.status = "deleted"
	case dashboard.ActionToggle:
		m.status = "updated"
	case dashboard.ActionReload:
		m.status = "reloaded"
	}
	return m, nil
}

func (m Model) onListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	section := m.section()
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.active = (m.active + 1) % len(model.Sections)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.active = (m.active - 1 + len(model.Sections)) % len(model.Sections)
		return m, nil
	case key.Matches(msg, m.keys.Add):
		return m, m.dispatch(dashboard.Action{Kind: dashboard.ActionOpen, Section: section})
	case key.Matches(msg, m.keys.Reload):
		return m, m.dispatch(dashboard.Action{Kind: dashboard.ActionReload, Section: section})
	case key.Matches(msg, m.keys.Edit):
		if it, ok := m.selected(); ok {
			return m, m.dispatch(dashboard.Action{Kind: dashboard.ActionEdit, Section: section, ID: it.card.ID})
		}
		return m, nil
	case key.Matches(msg, m.keys.Del):
		if it, ok := m.selected(); ok {
			m.confirm = &dashboard.Action{Kind: dashboard.ActionDelete, Section: section, ID: it.card.ID}
		}
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if !section.Toggleable() {
			m.status = "only tasks can be marked done"
			return m, nil
		}
		if it, ok := m.selected(); ok {
			return m, m.dispatch(dashboard.Action{Kind: dashboard.ActionToggle, Section: section, ID: it.card.ID})
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.lists[m.active], cmd = m.lists[m.active].Update(msg)
	return m, cmd
}

func (m Model) onConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := *m.confirm
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.confirm = nil
		return m, m.dispatch(a)
	case "n", "esc", "q":
		m.confirm = nil
	}
	return m, nil
}

func (m Model) onFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		return m, m.dispatch(dashboard.Action{Kind: dashboard.ActionCancel, Section: f.section})
	case key.Matches(msg, m.formKeys.Save):
		return m, m.save()
	case key.Matches(msg, m.formKeys.Next):
		return m, f.move(1)
	case key.Matches(msg, m.formKeys.Prev):
		return m, f.move(-1)
	case msg.String() == "enter" && !f.current().field.Multiline:
		if f.onLast() {
			return m, m.save()
		}
		return m, f.move(1)
	}
	return m, f.current().update(msg)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	switch {
	case m.alert != "":
		b.WriteString(alertStyle.Render(errorStyle.Render("Error") + "\n\n" + m.alert + "\n\n" + helpStyle.Render("press any key")))
	case m.form != nil:
		offset := 0
		if m.shake >= 0 && m.shake < len(shakeFrames) {
			offset = shakeFrames[m.shake]
		}
		b.WriteString(m.form.view(offset))
		b.WriteString("\n" + m.help.View(m.formKeys))
		return b.String()
	case m.confirm != nil:
		title := ""
		if c, ok := m.views[m.confirm.Section].Card(m.confirm.ID); ok {
			title = c.Title
		}
		b.WriteString(alertStyle.Render(fmt.Sprintf("Delete %q? %s", title, helpStyle.Render("(y/n)"))))
	case !m.loaded:
		b.WriteString(mutedStyle.Render("  Loading…"))
	default:
		v := m.views[m.section()]
		if v.Empty() {
			b.WriteString("  " + mutedStyle.Render(v.Placeholder))
		} else {
			b.WriteString(m.lists[m.active].View())
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(helpStyle.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return panelStyle.Render(b.String())
}

func (m Model) tabs() string {
	var tabs []string
	for i, s := range model.Sections {
		label := s.Label()
		v := m.views[s]
		if v.Loaded {
			label = fmt.Sprintf("%s %d", label, len(v.Cards))
		}
		if s.Toggleable() && v.Loaded && len(v.Cards) > 0 {
			done := 0
			for _, c := range v.Cards {
				if c.Done {
					done++
				}
			}
			label += " " + successStyle.Render(fmt.Sprintf("✔%d", done)) + pendingStyle.Render(fmt.Sprintf("•%d", len(v.Cards)-done))
		}
		st := tabStyle
		if i == m.active {
			st = activeTabStyle
		}
		tabs = append(tabs, st.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
