// Package store persists dashboard items per section.
//
// Two kinds of backends satisfy Store: Local, which runs the CRUD rules over
// a key-value store (file, sqlite or memory), and apistore, which talks to a
// remote dashboard API.
package store

import (
	"context"
	"errors"

	"github.com/Makepad-fr/cardboard/internal/model"
)

var (
	ErrNotFound      = errors.New("item not found")
	ErrNotToggleable = errors.New("section items cannot be toggled")
)

// Store is the persistence contract shared by every backend. Items returned
// are copies; mutating them does not touch the store.
type Store interface {
	List(ctx context.Context, section model.Section) ([]model.Item, error)
	Get(ctx context.Context, section model.Section, id int) (model.Item, error)
	Create(ctx context.Context, section model.Section, fields model.Item) (model.Item, error)
	Update(ctx context.Context, section model.Section, id int, fields model.Item) (model.Item, error)
	Delete(ctx context.Context, section model.Section, id int) error
	Toggle(ctx context.Context, section model.Section, id int) (model.Item, error)
}

// KV is a byte-oriented key-value store. Get returns nil, nil for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
