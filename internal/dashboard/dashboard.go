// Package dashboard drives the four sections: it loads items from the store,
// keeps their rendered cards, and routes card and form actions back into the
// store through a single dispatch table.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Makepad-fr/cardboard/internal/form"
	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/render"
	"github.com/Makepad-fr/cardboard/internal/store"
)

// View is the rendered state of one section. Placeholder is only set when
// Cards is empty.
type View struct {
	Section     model.Section
	Cards       []render.Card
	Placeholder string
	Loaded      bool
}

func newView(section model.Section, items []model.Item) View {
	v := View{Section: section, Cards: render.NewCards(items), Loaded: true}
	if len(v.Cards) == 0 {
		v.Placeholder = render.Placeholder(section)
	}
	return v
}

// Empty reports whether the section shows its placeholder.
func (v View) Empty() bool { return len(v.Cards) == 0 }

// Card returns the card with the given id.
func (v View) Card(id int) (render.Card, bool) {
	for _, c := range v.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return render.Card{}, false
}

// Dashboard owns the section views and the form. Every exported method is
// safe to call from any goroutine; actions run one at a time. Reading views
// never waits on the store.
type Dashboard struct {
	run      sync.Mutex // serializes actions, loads and form access
	mu       sync.Mutex // guards views
	store    store.Store
	form     *form.Controller
	views    map[model.Section]View
	handlers map[ActionKind]handler
	log      *zap.Logger
}

func New(st store.Store, log *zap.Logger) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dashboard{
		store: st,
		form:  form.New(st),
		views: make(map[model.Section]View, len(model.Sections)),
		log:   log,
	}
	for _, s := range model.Sections {
		d.views[s] = View{Section: s}
	}
	d.handlers = d.dispatchTable()
	return d
}

// View returns a snapshot of a section.
func (d *Dashboard) View(section model.Section) View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.views[section]
}

// Views returns a snapshot of every section, keyed by section.
func (d *Dashboard) Views() map[model.Section]View {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[model.Section]View, len(d.views))
	for s, v := range d.views {
		out[s] = v
	}
	return out
}

func (d *Dashboard) setView(v View) {
	d.mu.Lock()
	d.views[v.Section] = v
	d.mu.Unlock()
}

// Load fetches the section and re-renders it.
func (d *Dashboard) Load(ctx context.Context, section model.Section) error {
	d.run.Lock()
	defer d.run.Unlock()
	return d.reload(ctx, section)
}

// LoadAll fetches every section concurrently. A failing section keeps its
// previous view and is logged; the first error is returned once all
// sections have been attempted.
func (d *Dashboard) LoadAll(ctx context.Context) error {
	d.run.Lock()
	defer d.run.Unlock()

	results := make([]*View, len(model.Sections))
	var g errgroup.Group
	for i, s := range model.Sections {
		g.Go(func() error {
			items, err := d.store.List(ctx, s)
			if err != nil {
				d.log.Warn("load section failed", zap.String("section", string(s)), zap.Error(err))
				return fmt.Errorf("load %s: %w", s, err)
			}
			v := newView(s, items)
			results[i] = &v
			return nil
		})
	}
	err := g.Wait()
	for _, v := range results {
		if v != nil {
			d.setView(*v)
		}
	}
	return err
}

func (d *Dashboard) reload(ctx context.Context, section model.Section) error {
	items, err := d.store.List(ctx, section)
	if err != nil {
		d.log.Warn("load section failed", zap.String("section", string(section)), zap.Error(err))
		return fmt.Errorf("load %s: %w", section, err)
	}
	d.setView(newView(section, items))
	d.log.Debug("section loaded", zap.String("section", string(section)), zap.Int("items", len(items)))
	return nil
}
