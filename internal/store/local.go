package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Makepad-fr/cardboard/internal/model"
)

// Local keeps each section as a JSON array under its own key and assigns
// ids as max+1. Mutations are serialised so ids stay unique when the API
// server handles requests concurrently.
type Local struct {
	mu  sync.Mutex
	kv  KV
	now func() time.Time
}

func NewLocal(kv KV) *Local {
	return &Local{kv: kv, now: func() time.Time { return time.Now().UTC() }}
}

// Close releases the underlying KV when it holds resources.
func (l *Local) Close() error {
	if c, ok := l.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (l *Local) load(ctx context.Context, section model.Section) ([]model.Item, error) {
	if !section.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownSection, section)
	}
	b, err := l.kv.Get(ctx, string(section))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", section, err)
	}
	return model.DecodeList(section, b)
}

func (l *Local) save(ctx context.Context, section model.Section, items []model.Item) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := l.kv.Put(ctx, string(section), b); err != nil {
		return fmt.Errorf("save %s: %w", section, err)
	}
	return nil
}

func (l *Local) List(ctx context.Context, section model.Section) ([]model.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, section)
}

func (l *Local) Get(ctx context.Context, section model.Section, id int) (model.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx, section)
	if err != nil {
		return nil, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return nil, notFound(section, id)
	}
	return items[i], nil
}

func (l *Local) Create(ctx context.Context, section model.Section, fields model.Item) (model.Item, error) {
	if fields == nil || fields.Section() != section {
		return nil, fmt.Errorf("create %s: fields of wrong section", section)
	}
	it := fields.Clone()
	if err := model.Normalize(it); err != nil {
		return nil, err
	}
	if err := model.CheckRequired(it); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx, section)
	if err != nil {
		return nil, err
	}
	base := it.Base()
	base.ID = nextID(items)
	base.CreatedAt = model.Timestamp{Time: l.now()}
	if t, ok := it.(*model.Todo); ok {
		t.Completed = false
	}
	items = append(items, it)
	if err := l.save(ctx, section, items); err != nil {
		return nil, err
	}
	return it.Clone(), nil
}

func (l *Local) Update(ctx context.Context, section model.Section, id int, fields model.Item) (model.Item, error) {
	if fields == nil || fields.Section() != section {
		return nil, fmt.Errorf("update %s: fields of wrong section", section)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx, section)
	if err != nil {
		return nil, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return nil, notFound(section, id)
	}
	merged, err := model.Merge(items[i], fields)
	if err != nil {
		return nil, err
	}
	items[i] = merged
	if err := l.save(ctx, section, items); err != nil {
		return nil, err
	}
	return merged.Clone(), nil
}

func (l *Local) Delete(ctx context.Context, section model.Section, id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx, section)
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return notFound(section, id)
	}
	items = append(items[:i], items[i+1:]...)
	return l.save(ctx, section, items)
}

func (l *Local) Toggle(ctx context.Context, section model.Section, id int) (model.Item, error) {
	if !section.Toggleable() {
		return nil, fmt.Errorf("toggle %s: %w", section, ErrNotToggleable)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx, section)
	if err != nil {
		return nil, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return nil, notFound(section, id)
	}
	t := items[i].(*model.Todo)
	t.Completed = !t.Completed
	if err := l.save(ctx, section, items); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

func indexOf(items []model.Item, id int) int {
	for i, it := range items {
		if it.Base().ID == id {
			return i
		}
	}
	return -1
}

func nextID(items []model.Item) int {
	hi := 0
	for _, it := range items {
		if id := it.Base().ID; id > hi {
			hi = id
		}
	}
	return hi + 1
}

func notFound(section model.Section, id int) error {
	return fmt.Errorf("%s %d: %w", section, id, ErrNotFound)
}
